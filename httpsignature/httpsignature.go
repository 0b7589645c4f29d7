// Package httpsignature signs outbound requests to the Infini payment api
// with the provider's shared-secret HMAC scheme. The canonical signing
// string is line based:
//
//	<keyId>\n
//	<METHOD> <path>\n
//	date: <http-date>\n
//	digest: SHA-256=<base64>\n   (only when a body is present)
//
// and the resulting signature is carried in an Authorization header of the
// form Signature keyId="..",algorithm="hmac-sha256",headers="..",signature="..".
package httpsignature

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/infini-money/infini-go/digest"
	errorutils "github.com/infini-money/infini-go/errors"
	"github.com/infini-money/infini-go/requestutils"
)

// SignatureParams contains parameters needed to create and verify signatures
type SignatureParams struct {
	Algorithm Algorithm
	KeyID     string
}

// signature is an internal representation of an http signature and it's parameters
type signature struct {
	SignatureParams
	Headers []string
	Sig     string
}

// Signator is an interface for cryptographic signature creation
// NOTE that this is a subset of the crypto.Signer interface
type Signator interface {
	Sign(rand io.Reader, message []byte, opts crypto.SignerOpts) (signature []byte, err error)
}

// Verifier is an interface for cryptographic signature verification
type Verifier interface {
	Verify(message, sig []byte, opts crypto.SignerOpts) (bool, error)
	String() string
}

// ParameterizedSignator contains the parameters / options needed to create signatures and a signator
type ParameterizedSignator struct {
	SignatureParams
	Signator Signator
	Opts     crypto.SignerOpts
}

const (
	// DateHeader is the header carrying the signed timestamp
	DateHeader = "Date"
	// DigestHeader is the header where a digest of the body will be stored
	DigestHeader = "Digest"
	// RequestTargetHeader is a pseudo header consisting of the HTTP method and request path
	RequestTargetHeader = "@request-target"
)

var (
	signatureRegex = regexp.MustCompile(`(\w+)="([^"]*)"`)

	recognizedMethods = map[string]bool{
		http.MethodGet:     true,
		http.MethodHead:    true,
		http.MethodPost:    true,
		http.MethodPut:     true,
		http.MethodPatch:   true,
		http.MethodDelete:  true,
		http.MethodOptions: true,
	}
)

// IsMalformed returns true if the signature parameters are invalid
func (sp *SignatureParams) IsMalformed() bool {
	return sp.Algorithm == invalid
}

// BuildSigningString builds the canonical signing string for the key id in sp,
// the method, path and date given, and the optional body digest d. Each
// included line is terminated by a line feed, including the final one.
func (sp *SignatureParams) BuildSigningString(method, path, date string, d *digest.Instance) ([]byte, error) {
	if sp.IsMalformed() {
		return nil, errors.New("refusing to build signing string with malformed params")
	}
	if sp.KeyID == "" {
		return nil, errorutils.ErrNoCredentials
	}
	if !recognizedMethods[strings.ToUpper(method)] {
		return nil, errorutils.ErrInvalidMethod
	}
	if path == "" || !strings.HasPrefix(path, "/") {
		return nil, errorutils.ErrInvalidPath
	}

	var b bytes.Buffer
	b.WriteString(sp.KeyID)
	b.WriteByte('\n')
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(' ')
	b.WriteString(path)
	b.WriteByte('\n')
	b.WriteString("date: ")
	b.WriteString(date)
	b.WriteByte('\n')
	if d != nil {
		b.WriteString("digest: ")
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.Bytes(), nil
}

// signedHeaders is the headers declaration matching a signing string built
// with or without a digest line
func signedHeaders(withDigest bool) []string {
	headers := []string{RequestTargetHeader, "date"}
	if withDigest {
		headers = append(headers, "digest")
	}
	return headers
}

// Sign the included HTTP request req using signator and options opts.
// The request body, when present, must already hold the exact bytes that
// will be transmitted; the digest binds the signature to those bytes.
func (sp *SignatureParams) Sign(signator Signator, opts crypto.SignerOpts, req *http.Request) error {
	if signator == nil {
		return errorutils.ErrNoCredentials
	}

	date := time.Now().UTC().Format(http.TimeFormat)

	var d *digest.Instance
	if req.Body != nil {
		body, err := requestutils.Read(context.Background(), req.Body)
		if err != nil {
			return err
		}
		req.Body = io.NopCloser(bytes.NewBuffer(body))
		inst := digest.FromBody(body)
		d = &inst
	}

	ss, err := sp.BuildSigningString(req.Method, req.URL.Path, date, d)
	if err != nil {
		return err
	}

	sig, err := signator.Sign(rand.Reader, ss, opts)
	if err != nil {
		return err
	}
	s := signature{
		SignatureParams: *sp,
		Headers:         signedHeaders(d != nil),
		Sig:             base64.StdEncoding.EncodeToString(sig),
	}

	sHeader, err := s.MarshalText()
	if err != nil {
		return err
	}

	req.Header.Set(DateHeader, date)
	if d != nil {
		req.Header.Set(DigestHeader, d.String())
	}
	req.Header.Set("Authorization", string(sHeader))
	return nil
}

// SignRequest using signator and options opts in the parameterized signator
func (p *ParameterizedSignator) SignRequest(req *http.Request) error {
	return p.SignatureParams.Sign(p.Signator, p.Opts, req)
}

// Verify the HTTP signature over HTTP request req using verifier with options
// opts. The signing string is reconstructed from the request's method, path,
// Date header and Digest header, so a request that round-trips through Sign
// must verify against the same key.
func (sp *SignatureParams) Verify(verifier Verifier, opts crypto.SignerOpts, req *http.Request) (bool, error) {
	var tmp signature
	err := tmp.UnmarshalText([]byte(req.Header.Get("Authorization")))
	if err != nil {
		return false, err
	}

	var d *digest.Instance
	if dh := req.Header.Get(DigestHeader); dh != "" {
		var inst digest.Instance
		if err := inst.UnmarshalText([]byte(dh)); err != nil {
			return false, err
		}
		d = &inst
	}

	ss, err := sp.BuildSigningString(req.Method, req.URL.Path, req.Header.Get(DateHeader), d)
	if err != nil {
		return false, err
	}

	sig, err := base64.StdEncoding.DecodeString(tmp.Sig)
	if err != nil {
		return false, err
	}
	return verifier.Verify(ss, sig, opts)
}

// MarshalText marshalls the signature into the Authorization header value.
func (s *signature) MarshalText() (text []byte, err error) {
	if s.IsMalformed() {
		return nil, errors.New("not a valid Algorithm")
	}

	algo, err := s.Algorithm.MarshalText()
	if err != nil {
		return nil, err
	}

	headers := ""
	if len(s.Headers) > 0 {
		headers = fmt.Sprintf(",headers=\"%s\"", strings.Join(s.Headers, " "))
	}

	text = []byte(fmt.Sprintf("Signature keyId=\"%s\",algorithm=\"%s\"%s,signature=\"%s\"", s.KeyID, algo, headers, s.Sig))
	return text, nil
}

// UnmarshalText unmarshalls the signature from an Authorization header value.
func (s *signature) UnmarshalText(text []byte) (err error) {
	if len(text) == 0 {
		return errors.New("authorization header is empty")
	}

	str := strings.TrimPrefix(string(text), "Signature ")

	s.Algorithm = invalid
	s.KeyID = ""
	s.Sig = ""

	for _, m := range signatureRegex.FindAllStringSubmatch(str, -1) {
		key := m[1]
		value := m[2]

		switch key {
		case "keyId":
			s.KeyID = value
		case "algorithm":
			if err := s.Algorithm.UnmarshalText([]byte(value)); err != nil {
				return err
			}
		case "headers":
			s.Headers = strings.Split(value, " ")
		case "signature":
			s.Sig = value
		default:
			return errors.New("invalid key in signature")
		}
	}

	// Check that all required fields were present
	if s.Algorithm == invalid || len(s.KeyID) == 0 || len(s.Sig) == 0 {
		return errors.New("a valid signature MUST have algorithm, keyId, and signature keys")
	}

	return nil
}

// SignatureParamsFromRequest extracts the signature parameters from a signed http request
func SignatureParamsFromRequest(req *http.Request) (*SignatureParams, error) {
	var s signature
	err := s.UnmarshalText([]byte(req.Header.Get("Authorization")))
	if err != nil {
		return nil, err
	}
	return &s.SignatureParams, nil
}
