package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	stderrors "errors"

	errorutils "github.com/infini-money/infini-go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoDecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("accept"))
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"hello":"world"}`))
	}))
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	req, err := client.NewRequest(context.Background(), "GET", "/test", nil, nil)
	require.NoError(t, err)

	var body map[string]string
	resp, err := client.Do(context.Background(), req, &body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "world", body["hello"])
}

func TestDoErrorCarriesHTTPState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"code":418,"message":"short and stout"}`))
	}))
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	req, err := client.NewRequest(context.Background(), "GET", "/test", nil, nil)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), req, nil)
	require.Error(t, err)

	var eb *errorutils.ErrorBundle
	require.True(t, stderrors.As(err, &eb))
	state, ok := eb.Data().(HTTPState)
	require.True(t, ok)
	assert.Equal(t, http.StatusTeapot, state.Status)
}

func TestDoDecodesProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"code":1001,"message":"insufficient balance"}`))
	}))
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	req, err := client.NewRequest(context.Background(), "GET", "/test", nil, nil)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), req, nil)
	require.Error(t, err)

	var infiniErr *InfiniError
	require.True(t, stderrors.As(err, &infiniErr))
	assert.Equal(t, 1001, infiniErr.Code)
	assert.Equal(t, "insufficient balance", infiniErr.Message)
	assert.Equal(t, http.StatusPaymentRequired, infiniErr.HTTPStatusCode)
}

func TestRedactSensitiveHeaders(t *testing.T) {
	dump := []byte("POST /order HTTP/1.1\n" +
		"Authorization: Signature keyId=\"k\",signature=\"c2ln\"\n" +
		"Infini-Signature: c2ln\n" +
		"Date: Tue, 14 Nov 2023 22:13:20 GMT\n")

	redacted := string(RedactSensitiveHeaders(dump))
	assert.NotContains(t, redacted, "c2ln")
	assert.Contains(t, redacted, "Authorization: Signature <sig>")
	assert.Contains(t, redacted, "Infini-Signature: <sig>")
	assert.Contains(t, redacted, "Date: Tue, 14 Nov 2023 22:13:20 GMT")
}
