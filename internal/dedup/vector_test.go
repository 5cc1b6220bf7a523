package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeVector(t *testing.T) {
	assert.Equal(t, "[0.5,-1,0.25]", EncodeVector([]float32{0.5, -1, 0.25}))
	assert.Equal(t, "[]", EncodeVector(nil))
}

func TestDecodeVector(t *testing.T) {
	vec, err := DecodeVector("[0.5, -1, 0.25]")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1, 0.25}, vec)

	roundTrip, err := DecodeVector(EncodeVector([]float32{0.125, 3.75, -0.5}))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.125, 3.75, -0.5}, roundTrip)
}

func TestDecodeVectorMalformed(t *testing.T) {
	for _, input := range []string{"", "0.5,1", "[0.5,abc]", "["} {
		_, err := DecodeVector(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	c := []float32{0, 1, 0}
	d := []float32{-1, 0, 0}

	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity(a, c), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity(a, d), 1e-9)

	// Mismatched or degenerate inputs collapse to zero
	assert.Equal(t, 0.0, CosineSimilarity(a, []float32{1, 0}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{0, 0}))
}

func TestThreshold(t *testing.T) {
	threshold := Threshold(0.95)

	assert.True(t, threshold.IsDuplicate(0.95))
	assert.True(t, threshold.IsDuplicate(0.999))
	assert.False(t, threshold.IsDuplicate(0.9499))
	assert.False(t, threshold.IsDuplicate(0))
}
