// Package infini provides a client for the Infini payment api. All calls are
// authenticated with the provider's shared-secret HMAC scheme; request bodies
// are marshalled once and the exact transmitted bytes are bound into the
// signature via the Digest header.
package infini

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/go-querystring/query"
	"github.com/infini-money/infini-go/clients"
	appctx "github.com/infini-money/infini-go/context"
	errorutils "github.com/infini-money/infini-go/errors"
	"github.com/infini-money/infini-go/httpsignature"
	"github.com/infini-money/infini-go/validators"
	cache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"
)

var (
	countOrderCreation = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "count_infini_order_creation",
			Help: "Counts the number of infini order creations partitioned by status",
		},
		[]string{"status"},
	)

	countWithdrawals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "count_infini_withdrawals",
			Help: "Counts the number of infini withdrawal submissions partitioned by chain",
		},
		[]string{"chain"},
	)
)

func init() {
	prometheus.MustRegister(countOrderCreation)
	prometheus.MustRegister(countWithdrawals)
}

// base urls per environment
var environmentBaseURLs = map[string]string{
	"production": "https://openapi.infini.money",
	"sandbox":    "https://openapi-sandbox.infini.money",
}

const currencyCacheKey = "supported_currencies"

// Config holds the credential and endpoint configuration for a client.
// It is constructed once at process start and passed in; signing logic
// never reads the environment on its own.
type Config struct {
	// Server overrides the environment base url when set
	Server string
	// Environment selects the base url, sandbox or production
	Environment string
	// APIKey is the key identifier issued by the provider
	APIKey string
	// Secret is the shared signing secret, never logged
	Secret string
}

// Client abstracts over the underlying client
type Client interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListOrders(ctx context.Context, params *ListOrdersParams) (*ListOrdersResponse, error)
	ReissueOrderToken(ctx context.Context, orderID string) (*ReissueTokenResponse, error)
	GetSupportedCurrencies(ctx context.Context) (*[]CurrencyInfo, error)
	Withdraw(ctx context.Context, req *WithdrawRequest) (*WithdrawResponse, error)
}

// HTTPClient wraps http.Client for interacting with the infini server
type HTTPClient struct {
	client   *clients.SimpleHTTPClient
	signator httpsignature.ParameterizedSignator

	currencyCache       *cache.Cache
	currencyCacheExpiry time.Duration
}

// NewWithConfig returns a new HTTPClient bound to the given configuration
func NewWithConfig(cfg Config) (Client, error) {
	if cfg.APIKey == "" || cfg.Secret == "" {
		return nil, errorutils.ErrNoCredentials
	}

	serverURL := cfg.Server
	if serverURL == "" {
		var ok bool
		serverURL, ok = environmentBaseURLs[cfg.Environment]
		if !ok {
			serverURL = environmentBaseURLs["sandbox"]
		}
	}

	client, err := clients.NewInstrumented("infini_client", serverURL)
	if err != nil {
		return nil, err
	}

	return &HTTPClient{
		client: client,
		signator: httpsignature.ParameterizedSignator{
			SignatureParams: httpsignature.SignatureParams{
				Algorithm: httpsignature.HMACSHA256,
				KeyID:     cfg.APIKey,
			},
			Signator: httpsignature.HMACKey(cfg.Secret),
			Opts:     crypto.Hash(0),
		},
		currencyCache:       cache.New(1*time.Hour, 4*time.Hour),
		currencyCacheExpiry: 1 * time.Hour,
	}, nil
}

// New returns a new HTTPClient, retrieving the configuration from the context
func New(ctx context.Context) (Client, error) {
	apiKey, err := appctx.GetStringFromContext(ctx, appctx.InfiniAPIKeyCTXKey)
	if err != nil {
		return nil, errorutils.ErrNoCredentials
	}
	secret, err := appctx.GetStringFromContext(ctx, appctx.InfiniSecretCTXKey)
	if err != nil {
		return nil, errorutils.ErrNoCredentials
	}

	// optional overrides
	server, _ := appctx.GetStringFromContext(ctx, appctx.InfiniServerCTXKey)
	env, _ := appctx.GetStringFromContext(ctx, appctx.EnvironmentCTXKey)

	client, err := NewWithConfig(Config{
		Server:      server,
		Environment: env,
		APIKey:      apiKey,
		Secret:      secret,
	})
	if err != nil {
		return nil, err
	}

	if hc, ok := client.(*HTTPClient); ok {
		if expiry, ok := ctx.Value(appctx.CurrencyCacheExpiryDurationCTXKey).(time.Duration); ok {
			purge, ok := ctx.Value(appctx.CurrencyCachePurgeDurationCTXKey).(time.Duration)
			if !ok {
				purge = 4 * expiry
			}
			hc.currencyCache = cache.New(expiry, purge)
			hc.currencyCacheExpiry = expiry
		}
	}

	return client, nil
}

// CreateOrderRequest is the payload for creating a payment order
type CreateOrderRequest struct {
	RequestID       uuid.UUID       `json:"request_id" valid:"requiredUUID"`
	Amount          decimal.Decimal `json:"amount"`
	ClientReference string          `json:"client_reference,omitempty" valid:"-"`
	OrderDesc       string          `json:"order_desc,omitempty" valid:"-"`
	MerchantAlias   string          `json:"merchant_alias,omitempty" valid:"-"`
	ExpiresIn       int64           `json:"expires_in"`
	SuccessURL      string          `json:"success_url,omitempty" valid:"url,optional"`
	FailureURL      string          `json:"failure_url,omitempty" valid:"url,optional"`
}

// Order contains details about a created or fetched payment order
type Order struct {
	OrderID     string          `json:"order_id"`
	RequestID   string          `json:"request_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	CheckoutURL string          `json:"checkout_url"`
	CreatedAt   int64           `json:"created_at"`
	ExpiresAt   int64           `json:"expires_at"`
}

// getOrderParams - the query parameters for the order lookup call
type getOrderParams struct {
	OrderID string `url:"order_id"`
}

// GenerateQueryString - implement the QueryStringBody interface
func (p *getOrderParams) GenerateQueryString() (url.Values, error) {
	return query.Values(p)
}

// ListOrdersParams are the filters for the order listing call
type ListOrdersParams struct {
	Currency string `url:"currency,omitempty"`
	Status   string `url:"status,omitempty"`
	Page     int    `url:"page"`
	PageSize int    `url:"page_size"`
}

// GenerateQueryString - implement the QueryStringBody interface
func (p *ListOrdersParams) GenerateQueryString() (url.Values, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 10
	}
	return query.Values(p)
}

// ListOrdersResponse is a single page of orders
type ListOrdersResponse struct {
	Orders   []Order `json:"orders"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Total    int     `json:"total"`
}

// reissueTokenRequest is the payload to reissue a checkout token
type reissueTokenRequest struct {
	OrderID string `json:"order_id"`
}

// ReissueTokenResponse contains the fresh checkout url for an order
type ReissueTokenResponse struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	CheckoutURL string `json:"checkout_url"`
}

// CurrencyInfo describes one currency accepted for orders
type CurrencyInfo struct {
	Currency string   `json:"currency"`
	Chains   []string `json:"chains"`
}

// WithdrawRequest is the payload for withdrawing funds to an external wallet
type WithdrawRequest struct {
	Chain         string          `json:"chain"`
	TokenType     string          `json:"token_type"`
	Amount        decimal.Decimal `json:"amount"`
	WalletAddress string          `json:"wallet_address"`
	Note          string          `json:"note,omitempty"`
}

// validate checks the destination shape for the chains with a known
// address format; other chains only require a non-empty address
func (wr *WithdrawRequest) validate() error {
	if wr.Chain == "" || wr.TokenType == "" || wr.WalletAddress == "" {
		return errors.New("chain, token type and wallet address are required")
	}
	switch strings.ToLower(wr.Chain) {
	case "ethereum":
		if !validators.IsETHAddress(wr.WalletAddress) {
			return fmt.Errorf("%s is not a valid ethereum address", wr.WalletAddress)
		}
	case "bitcoin":
		if !validators.IsBTCAddress(wr.WalletAddress) {
			return fmt.Errorf("%s is not a valid bitcoin address", wr.WalletAddress)
		}
	}
	if wr.Amount.Sign() <= 0 {
		return errors.New("withdraw amount must be positive")
	}
	return nil
}

// WithdrawResponse contains details about a submitted withdrawal
type WithdrawResponse struct {
	WithdrawID string `json:"withdraw_id"`
	Status     string `json:"status"`
}

// CreateOrder creates a new payment order
func (c *HTTPClient) CreateOrder(ctx context.Context, createReq *CreateOrderRequest) (*Order, error) {
	if createReq == nil {
		return nil, errors.New("create order request must not be nil")
	}
	if _, err := govalidator.ValidateStruct(createReq); err != nil {
		return nil, errorutils.Wrap(err, "invalid create order request")
	}

	req, err := c.client.NewRequest(ctx, "POST", "/order", createReq, nil)
	if err != nil {
		return nil, err
	}
	if err := c.signator.SignRequest(req); err != nil {
		return nil, errorutils.Wrap(err, errorutils.ErrSignRequest.Error())
	}

	var order Order
	if _, err := c.client.Do(ctx, req, &order); err != nil {
		countOrderCreation.With(prometheus.Labels{"status": "failed"}).Inc()
		return nil, err
	}
	countOrderCreation.With(prometheus.Labels{"status": "created"}).Inc()
	return &order, nil
}

// GetOrder fetches order details by order id
func (c *HTTPClient) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, errors.New("order id must not be empty")
	}

	req, err := c.client.NewRequest(ctx, "GET", "/order", nil, &getOrderParams{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	if err := c.signator.SignRequest(req); err != nil {
		return nil, errorutils.Wrap(err, errorutils.ErrSignRequest.Error())
	}

	var order Order
	if _, err := c.client.Do(ctx, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders lists orders matching the given filters
func (c *HTTPClient) ListOrders(ctx context.Context, params *ListOrdersParams) (*ListOrdersResponse, error) {
	if params == nil {
		params = &ListOrdersParams{}
	}

	req, err := c.client.NewRequest(ctx, "GET", "/order/list", nil, params)
	if err != nil {
		return nil, err
	}
	if err := c.signator.SignRequest(req); err != nil {
		return nil, errorutils.Wrap(err, errorutils.ErrSignRequest.Error())
	}

	var page ListOrdersResponse
	if _, err := c.client.Do(ctx, req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ReissueOrderToken reissues the checkout url token for an existing order
func (c *HTTPClient) ReissueOrderToken(ctx context.Context, orderID string) (*ReissueTokenResponse, error) {
	if orderID == "" {
		return nil, errors.New("order id must not be empty")
	}

	req, err := c.client.NewRequest(ctx, "POST", "/order/token/reissue", &reissueTokenRequest{OrderID: orderID}, nil)
	if err != nil {
		return nil, err
	}
	if err := c.signator.SignRequest(req); err != nil {
		return nil, errorutils.Wrap(err, errorutils.ErrSignRequest.Error())
	}

	var resp ReissueTokenResponse
	if _, err := c.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSupportedCurrencies returns the currencies accepted for new orders.
// The list changes rarely, so results are cached in process.
func (c *HTTPClient) GetSupportedCurrencies(ctx context.Context) (*[]CurrencyInfo, error) {
	if cached, found := c.currencyCache.Get(currencyCacheKey); found {
		currencies := cached.([]CurrencyInfo)
		return &currencies, nil
	}

	req, err := c.client.NewRequest(ctx, "GET", "/currency", nil, nil)
	if err != nil {
		return nil, err
	}
	if err := c.signator.SignRequest(req); err != nil {
		return nil, errorutils.Wrap(err, errorutils.ErrSignRequest.Error())
	}

	var currencies []CurrencyInfo
	if _, err := c.client.Do(ctx, req, &currencies); err != nil {
		return nil, err
	}

	c.currencyCache.Set(currencyCacheKey, currencies, c.currencyCacheExpiry)
	return &currencies, nil
}

// Withdraw submits a withdrawal to an external wallet
func (c *HTTPClient) Withdraw(ctx context.Context, withdrawReq *WithdrawRequest) (*WithdrawResponse, error) {
	if withdrawReq == nil {
		return nil, errors.New("withdraw request must not be nil")
	}
	if err := withdrawReq.validate(); err != nil {
		return nil, err
	}

	req, err := c.client.NewRequest(ctx, "POST", "/fund/withdraw", withdrawReq, nil)
	if err != nil {
		return nil, err
	}
	if err := c.signator.SignRequest(req); err != nil {
		return nil, errorutils.Wrap(err, errorutils.ErrSignRequest.Error())
	}

	var resp WithdrawResponse
	if _, err := c.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	countWithdrawals.With(prometheus.Labels{"chain": withdrawReq.Chain}).Inc()
	return &resp, nil
}
