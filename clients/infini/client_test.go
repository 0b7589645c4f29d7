package infini

import (
	"context"
	"crypto"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/infini-money/infini-go/httpsignature"
	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey = "test-api-key"
	testSecret = "test-secret"
)

func newTestClient(t *testing.T, serverURL string) Client {
	t.Helper()
	client, err := NewWithConfig(Config{
		Server: serverURL,
		APIKey: testAPIKey,
		Secret: testSecret,
	})
	require.NoError(t, err)
	return client
}

// verifySignedRequest checks the signature on an inbound request the way the
// remote api would, using the shared secret
func verifySignedRequest(t *testing.T, req *http.Request) {
	t.Helper()

	sp, err := httpsignature.SignatureParamsFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, testAPIKey, sp.KeyID)
	assert.Equal(t, httpsignature.HMACSHA256, sp.Algorithm)

	valid, err := sp.Verify(httpsignature.HMACKey(testSecret), crypto.Hash(0), req)
	require.NoError(t, err)
	assert.True(t, valid, "request signature must verify with the shared secret")
}

func TestCreateOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/order", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("Date"))
		assert.NotEmpty(t, r.Header.Get("Digest"), "requests with a body must carry a digest")
		verifySignedRequest(t, r)

		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode(Order{
			OrderID:     "ord_123",
			RequestID:   "f4d01794-1f40-4a86-b9ab-631ffd3b9d6b",
			Amount:      decimal.RequireFromString("12.50"),
			Status:      "pending",
			CheckoutURL: "https://checkout.infini.money/ord_123",
		})
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	order, err := client.CreateOrder(context.Background(), &CreateOrderRequest{
		RequestID: uuid.FromStringOrNil("f4d01794-1f40-4a86-b9ab-631ffd3b9d6b"),
		Amount:    decimal.RequireFromString("12.50"),
		ExpiresIn: 3600,
	})
	require.NoError(t, err)
	assert.Equal(t, "ord_123", order.OrderID)
	assert.Equal(t, "pending", order.Status)
	assert.True(t, order.Amount.Equal(decimal.RequireFromString("12.50")))
}

func TestCreateOrderRejectsMissingRequestID(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	_, err := client.CreateOrder(context.Background(), &CreateOrderRequest{
		RequestID: uuid.Nil,
		Amount:    decimal.RequireFromString("1"),
	})
	assert.Error(t, err)
	assert.False(t, called, "invalid payloads must be rejected before any request is sent")
}

func TestGetOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/order", r.URL.Path)
		assert.Equal(t, "ord_123", r.URL.Query().Get("order_id"))
		assert.Empty(t, r.Header.Get("Digest"), "bodyless requests must not carry a digest")
		verifySignedRequest(t, r)

		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode(Order{OrderID: "ord_123", Status: "paid"})
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	order, err := client.GetOrder(context.Background(), "ord_123")
	require.NoError(t, err)
	assert.Equal(t, "paid", order.Status)
}

func TestGetOrderRequiresOrderID(t *testing.T) {
	client := newTestClient(t, "http://localhost")
	_, err := client.GetOrder(context.Background(), "")
	assert.Error(t, err)
}

func TestListOrdersAppliesDefaultPagination(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/list", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		assert.Equal(t, "USDC", r.URL.Query().Get("currency"))
		verifySignedRequest(t, r)

		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode(ListOrdersResponse{
			Orders: []Order{{OrderID: "ord_1"}, {OrderID: "ord_2"}},
			Page:   1, PageSize: 10, Total: 2,
		})
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	page, err := client.ListOrders(context.Background(), &ListOrdersParams{Currency: "USDC"})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)
	assert.Equal(t, 2, page.Total)
}

func TestReissueOrderToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/order/token/reissue", r.URL.Path)
		verifySignedRequest(t, r)

		var body reissueTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ord_123", body.OrderID)

		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode(ReissueTokenResponse{
			OrderID:     "ord_123",
			CheckoutURL: "https://checkout.infini.money/ord_123?t=fresh",
		})
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	resp, err := client.ReissueOrderToken(context.Background(), "ord_123")
	require.NoError(t, err)
	assert.Contains(t, resp.CheckoutURL, "t=fresh")
}

func TestGetSupportedCurrenciesIsCached(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/currency", r.URL.Path)
		verifySignedRequest(t, r)

		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode([]CurrencyInfo{
			{Currency: "USDC", Chains: []string{"ethereum", "solana"}},
			{Currency: "USDT", Chains: []string{"tron"}},
		})
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)

	currencies, err := client.GetSupportedCurrencies(context.Background())
	require.NoError(t, err)
	require.Len(t, *currencies, 2)
	assert.Equal(t, "USDC", (*currencies)[0].Currency)

	_, err = client.GetSupportedCurrencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second lookup must be served from the cache")
}

func TestWithdraw(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/fund/withdraw", r.URL.Path)
		verifySignedRequest(t, r)

		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode(WithdrawResponse{WithdrawID: "wd_1", Status: "submitted"})
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	resp, err := client.Withdraw(context.Background(), &WithdrawRequest{
		Chain:         "ethereum",
		TokenType:     "USDC",
		Amount:        decimal.RequireFromString("100"),
		WalletAddress: "0x737d634BCca1B3F24a32b10d601C27d1aE4aEC2C",
	})
	require.NoError(t, err)
	assert.Equal(t, "submitted", resp.Status)
}

func TestWithdrawRequiresDestination(t *testing.T) {
	client := newTestClient(t, "http://localhost")
	_, err := client.Withdraw(context.Background(), &WithdrawRequest{
		Chain:  "ethereum",
		Amount: decimal.RequireFromString("100"),
	})
	assert.Error(t, err)
}

func TestWithdrawRejectsMalformedAddress(t *testing.T) {
	client := newTestClient(t, "http://localhost")

	_, err := client.Withdraw(context.Background(), &WithdrawRequest{
		Chain:         "ethereum",
		TokenType:     "USDC",
		Amount:        decimal.RequireFromString("100"),
		WalletAddress: "not-an-eth-address",
	})
	assert.Error(t, err)

	_, err = client.Withdraw(context.Background(), &WithdrawRequest{
		Chain:         "bitcoin",
		TokenType:     "BTC",
		Amount:        decimal.RequireFromString("1"),
		WalletAddress: "0x737d634BCca1B3F24a32b10d601C27d1aE4aEC2C",
	})
	assert.Error(t, err)
}

func TestWithdrawRejectsNonPositiveAmount(t *testing.T) {
	client := newTestClient(t, "http://localhost")
	_, err := client.Withdraw(context.Background(), &WithdrawRequest{
		Chain:         "ethereum",
		TokenType:     "USDC",
		Amount:        decimal.Zero,
		WalletAddress: "0x737d634BCca1B3F24a32b10d601C27d1aE4aEC2C",
	})
	assert.Error(t, err)
}

func TestNewWithConfigRequiresCredentials(t *testing.T) {
	_, err := NewWithConfig(Config{Environment: "sandbox"})
	assert.Error(t, err)

	_, err = NewWithConfig(Config{APIKey: testAPIKey})
	assert.Error(t, err)
}

func TestEnvironmentBaseURLs(t *testing.T) {
	assert.Equal(t, "https://openapi.infini.money", environmentBaseURLs["production"])
	assert.Equal(t, "https://openapi-sandbox.infini.money", environmentBaseURLs["sandbox"])
}
