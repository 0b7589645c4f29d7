package httpsignature

import (
	"errors"
)

// Algorithm is an enum-like representing an algorithm that can be used for http signatures
type Algorithm int

const (
	invalid Algorithm = iota
	// HMACSHA256 is the shared-secret scheme the payment api accepts
	HMACSHA256
)

var algorithmName = map[Algorithm]string{
	HMACSHA256: "hmac-sha256",
}

var algorithmID = map[string]Algorithm{
	"hmac-sha256": HMACSHA256,
}

func (a Algorithm) String() string {
	return algorithmName[a]
}

// MarshalText marshalls the algorithm into text.
func (a *Algorithm) MarshalText() (text []byte, err error) {
	if *a == invalid {
		return nil, errors.New("not a supported algorithm")
	}
	text = []byte(a.String())
	return
}

// UnmarshalText unmarshalls the algorithm from text.
func (a *Algorithm) UnmarshalText(text []byte) (err error) {
	var exists bool
	*a, exists = algorithmID[string(text)]
	if !exists {
		return errors.New("not a supported algorithm")
	}
	return nil
}
