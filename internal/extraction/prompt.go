package extraction

const systemPrompt = `You are an expert at reading Kosovo business receipts and invoices, ` +
	`including low-quality thermal prints. You read NUI tax numbers, fiscal numbers, ` +
	`amounts and line items with perfect accuracy. Always respond with valid JSON.`

const extractionPrompt = `Extract all data from the attached receipt/invoice pages (in order).

Rules:
- NUI (business tax number): Kosovo NUI numbers usually start with "81". Extract exactly as printed.
- VAT: Kosovo uses 8% (reduced) and 18% (standard). Report the VAT code per line item: "8", "18", "0" or "EX".
- Category: classify each line item with a Kosovo ATK 665 expense code:
  665-04 food and beverages, 665-09 fuel and lubricants, 665-11 professional services,
  665-12 office supplies, 665-13 utilities, 665-14 transportation,
  665-15 maintenance and repairs, 665-99 other.
- Currency is EUR unless the document clearly states otherwise.
- Dates: prefer YYYY-MM-DD; keep the printed value if the format is ambiguous.
- Extract EVERY line item with its amount. Never invent data; leave a field empty if unreadable.
- For each line item record the page number it appears on, starting at 1.

Respond with a JSON object:
{
  "vendor_name": string,
  "vendor_tax_id": string,
  "bill_number": string,
  "bill_date": string,
  "subtotal": string,
  "vat_8": string,
  "vat_18": string,
  "total_vat": string,
  "total_amount": string,
  "currency": string,
  "line_items": [
    {
      "description": string,
      "category_code": string,
      "amount": string,
      "date": string,
      "counterparty": string,
      "vat_code": string,
      "vat_rate": number,
      "fiscal_number": string,
      "unit_number": string,
      "cert_number": string,
      "quantity": number,
      "unit": string,
      "note": string,
      "page_number": number
    }
  ]
}`
