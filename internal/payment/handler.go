package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	errors "github.com/debtflow/collections/internal"
	"github.com/debtflow/collections/internal/transport"
)

type ServiceAPI interface {
	RecordIntake(req *IntakeRequest) ([]*Payment, error)
	Submit(ctx context.Context, id string) (*Payment, error)
	Rerun(ctx context.Context, id string) (*Payment, error)
	Post(id string) (*Payment, error)
	PostAllProcessed() (*BatchPostResult, error)
	Reverse(id, reason string) (*ReverseResult, error)
	GetPayment(id string) (*Payment, error)
	ListPayments(status, debtorID string, limit, offset int) ([]*Payment, error)
}

// ActivityAPI exposes the recent lifecycle activity feed maintained by the
// event handler.
type ActivityAPI interface {
	Recent(limit int) []ActivityEntry
}

type Handler struct {
	transport.BaseHandler
	PaymentService ServiceAPI
	Activity       ActivityAPI
	Logger         *slog.Logger
}

func NewHandler(paymentService ServiceAPI, activity ActivityAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler:    transport.BaseHandler{Logger: logger},
		PaymentService: paymentService,
		Activity:       activity,
		Logger:         logger,
	}
}

// RecordIntake handles POST /api/v1/payments
func (h *Handler) RecordIntake(w http.ResponseWriter, r *http.Request) {
	var req IntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("RecordIntake: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	payments, err := h.PaymentService.RecordIntake(&req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"payments": payments,
	})
}

// Submit handles POST /api/v1/payments/{id}/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payment, err := h.PaymentService.Submit(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, payment)
}

// Rerun handles POST /api/v1/payments/{id}/rerun
func (h *Handler) Rerun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payment, err := h.PaymentService.Rerun(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, payment)
}

// Post handles POST /api/v1/payments/{id}/post
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payment, err := h.PaymentService.Post(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, payment)
}

// PostAllProcessed handles POST /api/v1/payments/post-all
func (h *Handler) PostAllProcessed(w http.ResponseWriter, r *http.Request) {
	result, err := h.PaymentService.PostAllProcessed()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// Reverse handles POST /api/v1/payments/{id}/reverse
func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ReverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("Reverse: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	if err := req.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.PaymentService.Reverse(id, req.Reason)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// GetPayment handles GET /api/v1/payments/{id}
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payment, err := h.PaymentService.GetPayment(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, payment)
}

// ListPayments handles GET /api/v1/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	debtorID := r.URL.Query().Get("debtor_id")

	limit := parseIntParam(r.URL.Query().Get("limit"), 100)
	offset := parseIntParam(r.URL.Query().Get("offset"), 0)

	payments, err := h.PaymentService.ListPayments(status, debtorID, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"payments": payments,
	})
}

// ListActivity handles GET /api/v1/payments/activity
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r.URL.Query().Get("limit"), 50)

	entries := []ActivityEntry{}
	if h.Activity != nil {
		entries = h.Activity.Recent(limit)
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"activity": entries,
	})
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
