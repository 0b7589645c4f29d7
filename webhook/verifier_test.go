package webhook

import (
	"math"
	"testing"
	"time"

	errorutils "github.com/infini-money/infini-go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// known-good vector: base64(HMAC-SHA256("s3cr3t", "1700000000" + `{"a":1}`))
const knownSignature = "VN0xtaxyRS+iai1Rh9SILE3fsWqefqH5demY/1JT4os="

func TestVerifyKnownVector(t *testing.T) {
	v := NewVerifier("s3cr3t")

	ok, err := v.Verify([]byte(`{"a":1}`), knownSignature, "1700000000")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyDeterminism(t *testing.T) {
	v := NewVerifier("s3cr3t")
	for i := 0; i < 5; i++ {
		ok, err := v.Verify([]byte(`{"a":1}`), knownSignature, "1700000000")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestVerifyMismatchIsFalseNotError(t *testing.T) {
	v := NewVerifier("s3cr3t")

	ok, err := v.Verify([]byte("x"), "wrong", "1700000000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyBodyBytesMatter(t *testing.T) {
	v := NewVerifier("s3cr3t")

	// re-serialized body with extra whitespace must fail
	ok, err := v.Verify([]byte(`{"a": 1}`), knownSignature, "1700000000")
	require.NoError(t, err)
	assert.False(t, ok)

	// timestamp is part of the signed content
	ok, err = v.Verify([]byte(`{"a":1}`), knownSignature, "1700000001")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyNoSecret(t *testing.T) {
	v := NewVerifier("")

	ok, err := v.Verify([]byte(`{"a":1}`), knownSignature, "1700000000")
	assert.False(t, ok)
	assert.ErrorIs(t, err, errorutils.ErrNoWebhookSecret)
}

func TestVerifyPackageLevel(t *testing.T) {
	ok, err := Verify([]byte(`{"a":1}`), knownSignature, "1700000000", "s3cr3t")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Verify([]byte(`{"a":1}`), knownSignature, "1700000000", "")
	assert.ErrorIs(t, err, errorutils.ErrNoWebhookSecret)
}

// TestVerifyTimingVariance samples verification time for a correct signature
// and for a same-length incorrect signature and checks the means are within
// an order of magnitude. It bounds gross short-circuiting, not microarch
// noise, so the tolerance is deliberately loose.
func TestVerifyTimingVariance(t *testing.T) {
	if testing.Short() {
		t.Skip("timing sampling skipped in short mode")
	}

	v := NewVerifier("s3cr3t")
	body := []byte(`{"a":1}`)

	// same length as the correct signature, differs at the first byte
	wrong := "A" + knownSignature[1:]

	const rounds = 2000
	sample := func(sig string) time.Duration {
		start := time.Now()
		for i := 0; i < rounds; i++ {
			_, _ = v.Verify(body, sig, "1700000000")
		}
		return time.Since(start)
	}

	// warm up
	sample(knownSignature)
	sample(wrong)

	good := sample(knownSignature).Seconds()
	bad := sample(wrong).Seconds()

	ratio := math.Abs(good-bad) / math.Max(good, bad)
	assert.Less(t, ratio, 0.5, "match and mismatch timings diverged: %v vs %v", good, bad)
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	b, err := GenerateSecret()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
