package stripe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Pinned gateway API version for ephemeral keys. The mobile SDK
// negotiates the key against this exact version.
const apiVersion = "2025-09-30.clover"

type Customer struct {
	ID string `json:"id"`
}

type EphemeralKey struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// IntentSucceeded is the terminal gateway status meaning the charge
// went through.
const IntentSucceeded = "succeeded"

type IntentParams struct {
	Amount         int64
	Currency       string
	CustomerID     string
	ReceiptEmail   string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the payment gateway's REST API with form-encoded
// requests. It never retries; retry policy belongs to the caller.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: httpClient,
	}
}

func (c *Client) CreateCustomer(ctx context.Context) (Customer, error) {
	var customer Customer
	err := c.do(ctx, http.MethodPost, "/v1/customers", url.Values{}, nil, &customer)
	if err != nil {
		return Customer{}, errors.Wrap(err, "create customer")
	}
	return customer, nil
}

func (c *Client) CreateEphemeralKey(ctx context.Context, customerID string) (EphemeralKey, error) {
	form := url.Values{}
	form.Set("customer", customerID)

	headers := map[string]string{"Stripe-Version": apiVersion}

	var key EphemeralKey
	err := c.do(ctx, http.MethodPost, "/v1/ephemeral_keys", form, headers, &key)
	if err != nil {
		return EphemeralKey{}, errors.Wrap(err, "create ephemeral key")
	}
	return key, nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, params IntentParams) (PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", params.Currency)
	form.Set("customer", params.CustomerID)
	form.Set("automatic_payment_methods[enabled]", "true")
	if params.ReceiptEmail != "" {
		form.Set("receipt_email", params.ReceiptEmail)
	}
	if params.Description != "" {
		form.Set("description", params.Description)
	}
	for k, v := range params.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	var headers map[string]string
	if params.IdempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": params.IdempotencyKey}
	}

	var intent PaymentIntent
	err := c.do(ctx, http.MethodPost, "/v1/payment_intents", form, headers, &intent)
	if err != nil {
		return PaymentIntent{}, errors.Wrap(err, "create payment intent")
	}
	return intent, nil
}

// GetPaymentIntent reads the authoritative charge state, used by the
// reconciler to settle orders whose status write was lost.
func (c *Client) GetPaymentIntent(ctx context.Context, id string) (PaymentIntent, error) {
	var intent PaymentIntent
	err := c.do(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(id), nil, nil, &intent)
	if err != nil {
		return PaymentIntent{}, errors.Wrapf(err, "get payment intent %s", id)
	}
	return intent, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, headers map[string]string, v any) error {
	var body io.Reader
	if method != http.MethodGet && form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return errors.Errorf("gateway responded %d: %s (%s)",
				resp.StatusCode, apiErr.Error.Message, apiErr.Error.Type)
		}
		return errors.Errorf("gateway responded %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
