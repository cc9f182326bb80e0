package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clvmartin/boutique/internal/checkout/app"
	"github.com/gorilla/mux"
)

type CheckoutService interface {
	Checkout(ctx context.Context, email string, price float64) (app.Artifacts, error)
}

type Handler struct {
	svc CheckoutService
	log *slog.Logger
}

func NewHandler(svc CheckoutService, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.HandleFunc("/checkout", h.checkout).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
}

type checkoutRequest struct {
	Email string  `json:"email"`
	Price float64 `json:"price"`
}

type checkoutResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	PaymentIntent string `json:"paymentIntent,omitempty"`
	EphemeralKey  string `json:"ephemeralKey,omitempty"`
	Customer      string `json:"customer,omitempty"`
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, checkoutResponse{
			Success: false,
			Message: "invalid price",
		})
		return
	}

	artifacts, err := h.svc.Checkout(r.Context(), req.Email, req.Price)
	if errors.Is(err, app.ErrInvalidPrice) {
		writeJSON(w, http.StatusBadRequest, checkoutResponse{
			Success: false,
			Message: "invalid price",
		})
		return
	}
	if err != nil {
		// The real cause stays in the logs; the caller only sees a
		// generic failure.
		h.log.Error("checkout failed", slog.String("email", req.Email), slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, checkoutResponse{
			Success: false,
			Message: "payment failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		Success:       true,
		Message:       "payment initiated",
		PaymentIntent: artifacts.PaymentIntentSecret,
		EphemeralKey:  artifacts.EphemeralKeySecret,
		Customer:      artifacts.CustomerID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
