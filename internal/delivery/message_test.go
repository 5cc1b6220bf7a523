package delivery

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJobMessage(t *testing.T) {
	billID := uuid.New()
	companyID := uuid.New()

	data := []byte(`{
		"bill_id": "` + billID.String() + `",
		"company_id": "` + companyID.String() + `",
		"storage_paths": ["bills/a-1.jpg", "bills/a-2.jpg"],
		"mime_type": "image/jpeg",
		"uploaded_at": "2025-03-14T10:30:00Z"
	}`)

	msg, err := DecodeJobMessage(data)
	require.NoError(t, err)
	assert.Equal(t, billID, msg.BillID)
	assert.Equal(t, companyID, msg.CompanyID)
	assert.Equal(t, []string{"bills/a-1.jpg", "bills/a-2.jpg"}, msg.StoragePaths)
	assert.Equal(t, "image/jpeg", msg.MIMEType)
	assert.Equal(t, 2025, msg.UploadedAt.Year())
}

func TestDecodeJobMessageLegacySinglePath(t *testing.T) {
	data := []byte(`{
		"bill_id": "` + uuid.New().String() + `",
		"company_id": "` + uuid.New().String() + `",
		"storage_path": "bills/legacy.pdf",
		"mime_type": "application/pdf"
	}`)

	msg, err := DecodeJobMessage(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"bills/legacy.pdf"}, msg.StoragePaths)
}

func TestDecodeJobMessageCamelCase(t *testing.T) {
	billID := uuid.New()
	companyID := uuid.New()
	userID := uuid.New()
	batchID := uuid.New()

	data := []byte(`{
		"submissionId": "` + billID.String() + `",
		"tenantId": "` + companyID.String() + `",
		"userId": "` + userID.String() + `",
		"batchId": "` + batchID.String() + `",
		"storagePaths": ["bills/b-1.png"],
		"mimeType": "image/png"
	}`)

	msg, err := DecodeJobMessage(data)
	require.NoError(t, err)
	assert.Equal(t, billID, msg.BillID)
	assert.Equal(t, companyID, msg.CompanyID)
	assert.Equal(t, userID, msg.UserID)
	require.NotNil(t, msg.BatchID)
	assert.Equal(t, batchID, *msg.BatchID)
	assert.Equal(t, []string{"bills/b-1.png"}, msg.StoragePaths)
	assert.Equal(t, "image/png", msg.MIMEType)
}

func TestDecodeJobMessageMalformed(t *testing.T) {
	cases := map[string][]byte{
		"not json":        []byte(`{{{`),
		"missing ids":     []byte(`{"storage_path": "x"}`),
		"bad bill id":     []byte(`{"bill_id": "nope", "company_id": "` + uuid.New().String() + `"}`),
		"bad company id":  []byte(`{"bill_id": "` + uuid.New().String() + `", "company_id": "42"}`),
		"empty payload":   []byte(``),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeJobMessage(data)
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestDecodeJobMessageIgnoresBadTimestamp(t *testing.T) {
	data := []byte(`{
		"bill_id": "` + uuid.New().String() + `",
		"company_id": "` + uuid.New().String() + `",
		"uploaded_at": "yesterday"
	}`)

	msg, err := DecodeJobMessage(data)
	require.NoError(t, err)
	assert.True(t, msg.UploadedAt.IsZero())
}
