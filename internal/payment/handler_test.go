package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/go-chi/chi"

	apperrors "github.com/debtflow/collections/internal"
	"github.com/debtflow/collections/internal/core/events"
	"github.com/debtflow/collections/internal/payment"
)

// Mock service for handler testing
type mockPaymentService struct {
	payments    map[string]*payment.Payment
	intakeErr   error
	submitErr   error
	reverseErr  error
	lastReason  string
	batchResult *payment.BatchPostResult
}

func newMockPaymentService() *mockPaymentService {
	return &mockPaymentService{payments: make(map[string]*payment.Payment)}
}

func (m *mockPaymentService) RecordIntake(req *payment.IntakeRequest) ([]*payment.Payment, error) {
	if m.intakeErr != nil {
		return nil, m.intakeErr
	}
	p := &payment.Payment{
		ID:          "pay-1",
		DebtorID:    req.DebtorID,
		AmountCents: req.AmountCents,
		Method:      req.Method,
		Frequency:   req.Frequency,
		Status:      payment.StatusPending,
	}
	m.payments[p.ID] = p
	return []*payment.Payment{p}, nil
}

func (m *mockPaymentService) Submit(ctx context.Context, id string) (*payment.Payment, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	p, ok := m.payments[id]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	p.Status = payment.StatusProcessed
	return p, nil
}

func (m *mockPaymentService) Rerun(ctx context.Context, id string) (*payment.Payment, error) {
	return m.Submit(ctx, id)
}

func (m *mockPaymentService) Post(id string) (*payment.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	p.Status = payment.StatusPosted
	return p, nil
}

func (m *mockPaymentService) PostAllProcessed() (*payment.BatchPostResult, error) {
	if m.batchResult != nil {
		return m.batchResult, nil
	}
	return &payment.BatchPostResult{Outcomes: []payment.BatchOutcome{}}, nil
}

func (m *mockPaymentService) Reverse(id, reason string) (*payment.ReverseResult, error) {
	if m.reverseErr != nil {
		return nil, m.reverseErr
	}
	m.lastReason = reason
	p, ok := m.payments[id]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	p.Status = payment.StatusReversed
	return &payment.ReverseResult{Payment: p}, nil
}

func (m *mockPaymentService) GetPayment(id string) (*payment.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	return p, nil
}

func (m *mockPaymentService) ListPayments(status, debtorID string, limit, offset int) ([]*payment.Payment, error) {
	var out []*payment.Payment
	for _, p := range m.payments {
		out = append(out, p)
	}
	return out, nil
}

var _ = Describe("Payment Handler", func() {
	var (
		handler     *payment.Handler
		mockService *mockPaymentService
		activity    *payment.EventHandler
		router      *chi.Mux
	)

	BeforeEach(func() {
		mockService = newMockPaymentService()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		activity = payment.NewEventHandler(logger)
		handler = payment.NewHandler(mockService, activity, logger)

		router = chi.NewRouter()
		router.Post("/payments", handler.RecordIntake)
		router.Get("/payments/{id}", handler.GetPayment)
		router.Post("/payments/{id}/submit", handler.Submit)
		router.Post("/payments/{id}/reverse", handler.Reverse)
		router.Post("/payments/post-all", handler.PostAllProcessed)
		router.Get("/payments/activity", handler.ListActivity)
	})

	Describe("RecordIntake", func() {
		It("returns 201 with the created payments", func() {
			body, _ := json.Marshal(map[string]any{
				"debtor_id":    "debtor-1",
				"collector_id": "collector-1",
				"amount_cents": 12550,
				"method":       "ach",
				"frequency":    "one_time",
			})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(body))
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))

			var resp struct {
				Payments []payment.Payment `json:"payments"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Payments).To(HaveLen(1))
			Expect(resp.Payments[0].Status).To(Equal(payment.StatusPending))
		})

		It("returns 400 on a malformed body", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader([]byte("{not json")))
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps validation failures to 400", func() {
			mockService.intakeErr = apperrors.NewValidationError("amount must be a positive number of cents", apperrors.ErrCodeInvalidAmount)

			body, _ := json.Marshal(map[string]any{"debtor_id": "debtor-1"})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(body))
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Submit", func() {
		It("returns the processed payment", func() {
			mockService.payments["pay-1"] = &payment.Payment{ID: "pay-1", Status: payment.StatusPending}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments/pay-1/submit", nil)
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp payment.Payment
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal(payment.StatusProcessed))
		})

		It("maps unknown payments to 404", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments/missing/submit", nil)
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("maps gateway declines to 422", func() {
			mockService.submitErr = apperrors.NewExternalError("insufficient_funds", apperrors.ErrCodeGatewayDeclined, http.StatusUnprocessableEntity)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments/pay-1/submit", nil)
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("maps gateway outages to 502", func() {
			mockService.submitErr = apperrors.ErrGatewayUnavailable

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments/pay-1/submit", nil)
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("Reverse", func() {
		It("passes the reason through to the service", func() {
			mockService.payments["pay-1"] = &payment.Payment{ID: "pay-1", Status: payment.StatusPosted}

			body, _ := json.Marshal(map[string]string{"reason": "debtor disputed the charge"})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments/pay-1/reverse", bytes.NewReader(body))
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockService.lastReason).To(Equal("debtor disputed the charge"))
		})

		It("rejects a missing reason with 400", func() {
			body, _ := json.Marshal(map[string]string{})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments/pay-1/reverse", bytes.NewReader(body))
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps invalid transitions to 409", func() {
			mockService.reverseErr = apperrors.ErrInvalidPaymentState

			body, _ := json.Marshal(map[string]string{"reason": "mistake"})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments/pay-1/reverse", bytes.NewReader(body))
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("PostAllProcessed", func() {
		It("returns the batch outcome", func() {
			mockService.batchResult = &payment.BatchPostResult{
				PostedCount: 2,
				Outcomes: []payment.BatchOutcome{
					{PaymentID: "pay-1", Applied: true},
					{PaymentID: "pay-2", Applied: true},
				},
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments/post-all", nil)
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp payment.BatchPostResult
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.PostedCount).To(Equal(2))
		})
	})

	Describe("ListActivity", func() {
		It("returns recent lifecycle activity newest first", func() {
			err := activity.HandlePaymentPosted(context.Background(),
				events.NewPaymentPostedEvent("pay-1", "debtor-1", 12550))
			Expect(err).NotTo(HaveOccurred())
			err = activity.HandlePaymentReversed(context.Background(),
				events.NewPaymentReversedEvent("pay-2", "debtor-1", "debtor disputed the charge", 0))
			Expect(err).NotTo(HaveOccurred())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/payments/activity", nil)
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp struct {
				Activity []payment.ActivityEntry `json:"activity"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Activity).To(HaveLen(2))
			Expect(resp.Activity[0].PaymentID).To(Equal("pay-2"))
			Expect(resp.Activity[1].PaymentID).To(Equal("pay-1"))
		})
	})
})
