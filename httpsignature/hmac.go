package httpsignature

import (
	"crypto"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"io"
)

// HMACKey is a symmetric key that can be used for HMAC-SHA256 request signing and verification
type HMACKey string

func hmacSign(key HMACKey, message []byte) ([]byte, error) {
	hhash := hmac.New(sha256.New, []byte(key))
	// writing the message (the signing string) to it
	_, err := hhash.Write(message)
	if err != nil {
		return nil, err
	}
	// Get the hash sum, do not base64 encode it since sig was decoded already
	return hhash.Sum(nil), nil
}

// Sign the message using the hmac key
func (key HMACKey) Sign(rand io.Reader, message []byte, opts crypto.SignerOpts) ([]byte, error) {
	return hmacSign(key, message)
}

// Verify the signature sig for message using the hmac key
func (key HMACKey) Verify(message, sig []byte, opts crypto.SignerOpts) (bool, error) {
	hashSum, err := hmacSign(key, message)
	if err != nil {
		return false, err
	}
	// comparison must not short-circuit on the first mismatched byte
	return subtle.ConstantTimeCompare(hashSum, sig) == 1, nil
}

func (key HMACKey) String() string {
	return string(key)
}
