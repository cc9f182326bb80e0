package stripe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreatePaymentIntent(t *testing.T) {
	var gotForm map[string]string
	var gotIdemKey, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotIdemKey = r.Header.Get("Idempotency-Key")

		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm failed: %v", err)
		}
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}

		json.NewEncoder(w).Encode(PaymentIntent{
			ID:           "pi_123",
			ClientSecret: "pi_123_secret",
			Status:       "requires_payment_method",
			Amount:       5000,
			Currency:     "eur",
		})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "sk_test_x", srv.Client())
	intent, err := c.CreatePaymentIntent(context.Background(), IntentParams{
		Amount:         5000,
		Currency:       "eur",
		CustomerID:     "cus_1",
		ReceiptEmail:   "a@b.fr",
		Description:    "Commande boutique",
		Metadata:       map[string]string{"user_email": "a@b.fr"},
		IdempotencyKey: "idem-1",
	})
	if err != nil {
		t.Fatalf("CreatePaymentIntent failed: %v", err)
	}

	if intent.ClientSecret != "pi_123_secret" {
		t.Fatalf("unexpected client secret: %s", intent.ClientSecret)
	}
	if gotAuth != "Bearer sk_test_x" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
	if gotIdemKey != "idem-1" {
		t.Fatalf("idempotency key not sent, got %q", gotIdemKey)
	}

	want := map[string]string{
		"amount":                             "5000",
		"currency":                           "eur",
		"customer":                           "cus_1",
		"automatic_payment_methods[enabled]": "true",
		"receipt_email":                      "a@b.fr",
		"description":                        "Commande boutique",
		"metadata[user_email]":               "a@b.fr",
	}
	for k, v := range want {
		if gotForm[k] != v {
			t.Fatalf("form field %s: want %q, got %q", k, v, gotForm[k])
		}
	}
}

func TestCreateEphemeralKeyPinsVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Stripe-Version"); got != apiVersion {
			t.Errorf("expected pinned version %s, got %s", apiVersion, got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm failed: %v", err)
		}
		if got := r.PostForm.Get("customer"); got != "cus_1" {
			t.Errorf("expected customer cus_1, got %s", got)
		}
		json.NewEncoder(w).Encode(EphemeralKey{ID: "ek_1", Secret: "ek_1_secret"})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "sk_test_x", srv.Client())
	key, err := c.CreateEphemeralKey(context.Background(), "cus_1")
	if err != nil {
		t.Fatalf("CreateEphemeralKey failed: %v", err)
	}
	if key.Secret != "ek_1_secret" {
		t.Fatalf("unexpected secret: %s", key.Secret)
	}
}

func TestGatewayErrorIncludesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"type":    "rate_limit_error",
				"message": "Too many requests",
			},
		})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "sk_test_x", srv.Client())
	_, err := c.CreateCustomer(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "Too many requests") || !strings.Contains(got, "429") {
		t.Fatalf("error should carry gateway detail, got %q", got)
	}
}
