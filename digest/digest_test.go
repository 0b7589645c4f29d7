package digest

import (
	"crypto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBody(t *testing.T) {
	d := FromBody([]byte(`{"a":1}`))
	assert.Equal(t, crypto.SHA256, d.Hash)
	assert.Equal(t, "SHA-256=AVq9f1zFei3ZS3WQ8ErYCEJzkF7jPsXOvq5iJ2qX+GI=", d.String())

	// deterministic over the same bytes
	again := FromBody([]byte(`{"a":1}`))
	assert.Equal(t, d.Digest, again.Digest)

	// sensitive to every byte, including whitespace
	spaced := FromBody([]byte(`{"a": 1}`))
	assert.NotEqual(t, d.Digest, spaced.Digest)
}

func TestFromBodyEmpty(t *testing.T) {
	d := FromBody([]byte{})
	assert.Equal(t, "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", d.Digest)
}

func TestVerify(t *testing.T) {
	d := FromBody([]byte("hello world"))
	assert.True(t, d.Verify([]byte("hello world")))
	assert.False(t, d.Verify([]byte("hello worlds")))
}

func TestUnmarshalText(t *testing.T) {
	var d Instance
	err := d.UnmarshalText([]byte("SHA-256=AVq9f1zFei3ZS3WQ8ErYCEJzkF7jPsXOvq5iJ2qX+GI="))
	assert.NoError(t, err)
	assert.Equal(t, crypto.SHA256, d.Hash)
	assert.True(t, d.Verify([]byte(`{"a":1}`)))

	err = d.UnmarshalText([]byte("MD5=deadbeef"))
	assert.Error(t, err)

	err = d.UnmarshalText([]byte("garbage"))
	assert.Error(t, err)
}
