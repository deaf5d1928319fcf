package payment_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/debtflow/collections/internal"
	cardDatamodel "github.com/debtflow/collections/internal/core/datamodel/card"
	paymentDatamodel "github.com/debtflow/collections/internal/core/datamodel/payment"
	"github.com/debtflow/collections/internal/core/events"
	"github.com/debtflow/collections/internal/gateway"
	"github.com/debtflow/collections/internal/payment"
)

// Mock repository for testing
type mockPaymentRepository struct {
	records          map[string]*paymentDatamodel.PaymentRecord
	createError      error
	updateError      error
	updateErrorForID map[string]error
	saveError        error
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{
		records:          make(map[string]*paymentDatamodel.PaymentRecord),
		updateErrorForID: make(map[string]error),
	}
}

func (m *mockPaymentRepository) Create(r *paymentDatamodel.PaymentRecord) error {
	if m.createError != nil {
		return m.createError
	}
	clone := *r
	m.records[r.ID] = &clone
	return nil
}

func (m *mockPaymentRepository) CreateAll(rs []*paymentDatamodel.PaymentRecord) error {
	for _, r := range rs {
		if err := m.Create(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockPaymentRepository) GetByID(id string) (*paymentDatamodel.PaymentRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, errors.New("payment not found")
	}
	clone := *r
	return &clone, nil
}

func (m *mockPaymentRepository) ListByStatus(status string) ([]*paymentDatamodel.PaymentRecord, error) {
	var out []*paymentDatamodel.PaymentRecord
	for _, r := range m.records {
		if r.Status == status {
			clone := *r
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockPaymentRepository) ListBySeriesID(seriesID string) ([]*paymentDatamodel.PaymentRecord, error) {
	var out []*paymentDatamodel.PaymentRecord
	for _, r := range m.records {
		if r.SeriesID != nil && *r.SeriesID == seriesID {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockPaymentRepository) ListByDebtorID(debtorID string, limit, offset int) ([]*paymentDatamodel.PaymentRecord, error) {
	var out []*paymentDatamodel.PaymentRecord
	for _, r := range m.records {
		if r.DebtorID == debtorID {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockPaymentRepository) UpdateFromStatus(r *paymentDatamodel.PaymentRecord, expectedStatus string) error {
	if m.updateError != nil {
		return m.updateError
	}
	if err, ok := m.updateErrorForID[r.ID]; ok {
		return err
	}
	current, ok := m.records[r.ID]
	if !ok {
		return errors.New("payment not found")
	}
	if current.Status != expectedStatus {
		return apperrors.ErrStalePaymentState
	}
	clone := *r
	m.records[r.ID] = &clone
	return nil
}

func (m *mockPaymentRepository) Save(r *paymentDatamodel.PaymentRecord) error {
	if m.saveError != nil {
		return m.saveError
	}
	clone := *r
	m.records[r.ID] = &clone
	return nil
}

// Mock card service for testing
type mockCardService struct {
	cards       map[string]*cardDatamodel.StoredCard
	createError error
}

func newMockCardService() *mockCardService {
	return &mockCardService{cards: make(map[string]*cardDatamodel.StoredCard)}
}

func (m *mockCardService) CreateStoredCard(debtorID, rawNumber, expiry string) (*cardDatamodel.StoredCard, error) {
	if m.createError != nil {
		return nil, m.createError
	}
	stored := &cardDatamodel.StoredCard{
		ID:          "card-" + debtorID,
		DebtorID:    debtorID,
		Brand:       "Visa",
		Last4:       rawNumber[len(rawNumber)-4:],
		ExpiryMonth: 12,
		ExpiryYear:  2030,
	}
	m.cards[stored.ID] = stored
	return stored, nil
}

func (m *mockCardService) GetStoredCard(id string) (*cardDatamodel.StoredCard, error) {
	c, ok := m.cards[id]
	if !ok {
		return nil, apperrors.ErrCardNotFound
	}
	return c, nil
}

// Mock gateway for testing
type mockGateway struct {
	result         *gateway.ChargeResult
	err            error
	chargeCount    int
	lastRequest    *gateway.ChargeRequest
	resultSequence []*gateway.ChargeResult
}

func (m *mockGateway) Charge(ctx context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	m.chargeCount++
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	if len(m.resultSequence) > 0 {
		next := m.resultSequence[0]
		m.resultSequence = m.resultSequence[1:]
		return next, nil
	}
	return m.result, nil
}

var _ = Describe("PaymentService", func() {
	var (
		service  *payment.PaymentService
		mockRepo *mockPaymentRepository
		mockCard *mockCardService
		mockGw   *mockGateway
		eventBus *events.EventBus
	)

	BeforeEach(func() {
		mockRepo = newMockPaymentRepository()
		mockCard = newMockCardService()
		mockGw = &mockGateway{result: &gateway.ChargeResult{
			Outcome:         gateway.OutcomeApproved,
			ReferenceNumber: "REF-001",
		}}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		eventBus = events.NewEventBus(logger)
		service = payment.NewPaymentService(mockRepo, mockCard, mockGw, eventBus, logger)
	})

	achIntake := func() *payment.IntakeRequest {
		return &payment.IntakeRequest{
			DebtorID:    "debtor-1001",
			CollectorID: "collector-7",
			AmountCents: 12550,
			Method:      payment.MethodACH,
			Frequency:   "one_time",
		}
	}

	Describe("RecordIntake", func() {
		It("creates a single pending record for one-time payments", func() {
			payments, err := service.RecordIntake(achIntake())
			Expect(err).NotTo(HaveOccurred())
			Expect(payments).To(HaveLen(1))

			p := payments[0]
			Expect(p.Status).To(Equal(payment.StatusPending))
			Expect(p.AmountCents).To(Equal(int64(12550)))
			Expect(p.SeriesID).To(BeNil())
			Expect(p.NextPaymentDate).To(BeNil())
		})

		It("creates one record per explicit date under a shared series", func() {
			req := achIntake()
			req.Frequency = "specific_dates"
			req.Dates = []string{"2030-03-01", "2030-01-15", "2030-02-01", "2030-01-15"}

			payments, err := service.RecordIntake(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(payments).To(HaveLen(3))

			Expect(payments[0].ScheduledDate.Before(payments[1].ScheduledDate)).To(BeTrue())
			Expect(payments[1].ScheduledDate.Before(payments[2].ScheduledDate)).To(BeTrue())

			series := payments[0].SeriesID
			Expect(series).NotTo(BeNil())
			for _, p := range payments {
				Expect(*p.SeriesID).To(Equal(*series))
				Expect(p.Status).To(Equal(payment.StatusPending))
			}
		})

		It("rejects explicit dates in the past", func() {
			req := achIntake()
			req.Frequency = "specific_dates"
			req.Dates = []string{"2030-01-15", "2001-01-01"}

			_, err := service.RecordIntake(req)
			Expect(err).To(HaveOccurred())
			Expect(mockRepo.records).To(BeEmpty())
		})

		It("creates only the first occurrence of a recurring series with a forward pointer", func() {
			req := achIntake()
			req.Frequency = "monthly"
			req.ScheduledDate = "2030-01-31"

			payments, err := service.RecordIntake(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(payments).To(HaveLen(1))

			p := payments[0]
			Expect(p.SeriesID).NotTo(BeNil())
			Expect(p.NextPaymentDate).NotTo(BeNil())
			// monthly clamps to the last day of February
			Expect(p.NextPaymentDate.Month()).To(Equal(time.February))
			Expect(p.NextPaymentDate.Day()).To(Equal(28))
		})

		It("resolves an existing stored card for card payments", func() {
			mockCard.cards["card-9"] = &cardDatamodel.StoredCard{ID: "card-9", DebtorID: "debtor-1001"}

			req := achIntake()
			req.Method = payment.MethodCard
			cardID := "card-9"
			req.CardID = &cardID

			payments, err := service.RecordIntake(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(*payments[0].CardID).To(Equal("card-9"))
		})

		It("rejects card payments referencing a missing stored card", func() {
			req := achIntake()
			req.Method = payment.MethodCard
			cardID := "missing"
			req.CardID = &cardID

			_, err := service.RecordIntake(req)
			Expect(err).To(Equal(apperrors.ErrCardNotFound))
			Expect(mockRepo.records).To(BeEmpty())
		})

		It("tokenizes fresh card data before creating records", func() {
			req := achIntake()
			req.Method = payment.MethodCard
			req.CardNumber = "4111111111111111"
			req.CardExpiry = "12/30"

			payments, err := service.RecordIntake(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(payments[0].CardID).NotTo(BeNil())
			Expect(*payments[0].CardID).To(Equal("card-debtor-1001"))
		})

		It("rejects card payments with structurally invalid card numbers", func() {
			req := achIntake()
			req.Method = payment.MethodCard
			req.CardNumber = "4111111111111112"
			req.CardExpiry = "12/30"

			_, err := service.RecordIntake(req)
			Expect(err).To(HaveOccurred())
			Expect(mockRepo.records).To(BeEmpty())
		})
	})

	Describe("Submit", func() {
		var paymentID string

		BeforeEach(func() {
			payments, err := service.RecordIntake(achIntake())
			Expect(err).NotTo(HaveOccurred())
			paymentID = payments[0].ID
		})

		It("marks the payment processed on gateway approval", func() {
			p, err := service.Submit(context.Background(), paymentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(payment.StatusProcessed))
			Expect(*p.ReferenceNumber).To(Equal("REF-001"))
			Expect(p.ProcessedAt).NotTo(BeNil())

			persisted := mockRepo.records[paymentID]
			Expect(persisted.Status).To(Equal(payment.StatusProcessed))
		})

		It("marks the payment declined when the gateway declines", func() {
			mockGw.result = &gateway.ChargeResult{
				Outcome: gateway.OutcomeDeclined,
				Reason:  "insufficient_funds",
			}

			_, err := service.Submit(context.Background(), paymentID)
			Expect(err).To(HaveOccurred())

			var appErr *apperrors.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeGatewayDeclined))

			persisted := mockRepo.records[paymentID]
			Expect(persisted.Status).To(Equal(payment.StatusDeclined))
			Expect(*persisted.DeclineReason).To(Equal("insufficient_funds"))
		})

		It("marks the payment failed and retryable on transport errors", func() {
			mockGw.err = errors.New("connection refused")

			_, err := service.Submit(context.Background(), paymentID)
			Expect(err).To(Equal(apperrors.ErrGatewayUnavailable))

			persisted := mockRepo.records[paymentID]
			Expect(persisted.Status).To(Equal(payment.StatusFailed))
			Expect(persisted.DeclineReason).NotTo(BeNil())
		})

		It("refuses to submit a non-pending payment", func() {
			_, err := service.Submit(context.Background(), paymentID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Submit(context.Background(), paymentID)
			Expect(err).To(HaveOccurred())
			Expect(mockGw.chargeCount).To(Equal(1))
		})

		It("sends stored card metadata with the charge, never a PAN", func() {
			req := achIntake()
			req.Method = payment.MethodCard
			req.CardNumber = "4111111111111111"
			req.CardExpiry = "12/30"

			payments, err := service.RecordIntake(req)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Submit(context.Background(), payments[0].ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(mockGw.lastRequest.CardID).To(Equal("card-debtor-1001"))
			Expect(mockGw.lastRequest.Details).To(HaveKeyWithValue("last4", "1111"))
			Expect(mockGw.lastRequest.Details).NotTo(HaveKey("card_number"))
		})

		It("flags the payment for review when the outcome write loses a race", func() {
			mockRepo.updateErrorForID[paymentID] = apperrors.ErrStalePaymentState

			_, err := service.Submit(context.Background(), paymentID)
			Expect(err).NotTo(HaveOccurred())

			persisted := mockRepo.records[paymentID]
			Expect(persisted.Status).To(Equal(payment.StatusFailed))
			Expect(persisted.NeedsReview).To(BeTrue())
		})
	})

	Describe("Rerun", func() {
		It("retries a declined payment on the same record id", func() {
			mockGw.resultSequence = []*gateway.ChargeResult{
				{Outcome: gateway.OutcomeDeclined, Reason: "insufficient_funds"},
				{Outcome: gateway.OutcomeApproved, ReferenceNumber: "REF-002"},
			}

			payments, err := service.RecordIntake(achIntake())
			Expect(err).NotTo(HaveOccurred())
			paymentID := payments[0].ID

			_, err = service.Submit(context.Background(), paymentID)
			Expect(err).To(HaveOccurred())
			Expect(mockRepo.records[paymentID].Status).To(Equal(payment.StatusDeclined))

			p, err := service.Rerun(context.Background(), paymentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(Equal(paymentID))
			Expect(p.Status).To(Equal(payment.StatusProcessed))
			Expect(*p.ReferenceNumber).To(Equal("REF-002"))
			Expect(p.DeclineReason).To(BeNil())
		})

		It("refuses to rerun a pending payment", func() {
			payments, err := service.RecordIntake(achIntake())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Rerun(context.Background(), payments[0].ID)
			Expect(err).To(HaveOccurred())
			Expect(mockGw.chargeCount).To(Equal(0))
		})
	})

	Describe("Post", func() {
		var paymentID string

		BeforeEach(func() {
			payments, err := service.RecordIntake(achIntake())
			Expect(err).NotTo(HaveOccurred())
			paymentID = payments[0].ID

			_, err = service.Submit(context.Background(), paymentID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("posts a processed payment", func() {
			p, err := service.Post(paymentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(payment.StatusPosted))
			Expect(p.PostedAt).NotTo(BeNil())
		})

		It("treats posting an already posted payment as a no-op success", func() {
			_, err := service.Post(paymentID)
			Expect(err).NotTo(HaveOccurred())

			p, err := service.Post(paymentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(payment.StatusPosted))
		})

		It("refuses to post a pending payment", func() {
			payments, err := service.RecordIntake(achIntake())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Post(payments[0].ID)
			Expect(err).To(HaveOccurred())

			var appErr *apperrors.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidPaymentState))
		})

		It("materializes the next occurrence of a recurring series", func() {
			req := achIntake()
			req.Frequency = "weekly"
			req.ScheduledDate = "2030-06-01"

			payments, err := service.RecordIntake(req)
			Expect(err).NotTo(HaveOccurred())
			first := payments[0]

			_, err = service.Submit(context.Background(), first.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Post(first.ID)
			Expect(err).NotTo(HaveOccurred())

			siblings, err := mockRepo.ListBySeriesID(*first.SeriesID)
			Expect(err).NotTo(HaveOccurred())
			Expect(siblings).To(HaveLen(2))

			var next *paymentDatamodel.PaymentRecord
			for _, s := range siblings {
				if s.ID != first.ID {
					next = s
				}
			}
			Expect(next).NotTo(BeNil())
			Expect(next.Status).To(Equal(payment.StatusPending))
			Expect(next.ScheduledDate.Format("2006-01-02")).To(Equal("2030-06-08"))
			Expect(next.NextPaymentDate).NotTo(BeNil())
			Expect(next.NextPaymentDate.Format("2006-01-02")).To(Equal("2030-06-15"))
		})
	})

	Describe("PostAllProcessed", func() {
		It("posts every processed payment and reports per-record outcomes", func() {
			var ids []string
			for i := 0; i < 3; i++ {
				payments, err := service.RecordIntake(achIntake())
				Expect(err).NotTo(HaveOccurred())
				_, err = service.Submit(context.Background(), payments[0].ID)
				Expect(err).NotTo(HaveOccurred())
				ids = append(ids, payments[0].ID)
			}

			result, err := service.PostAllProcessed()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.PostedCount).To(Equal(3))
			Expect(result.Outcomes).To(HaveLen(3))

			for _, id := range ids {
				Expect(mockRepo.records[id].Status).To(Equal(payment.StatusPosted))
			}
		})

		It("continues past records that fail to post", func() {
			var ids []string
			for i := 0; i < 3; i++ {
				payments, err := service.RecordIntake(achIntake())
				Expect(err).NotTo(HaveOccurred())
				_, err = service.Submit(context.Background(), payments[0].ID)
				Expect(err).NotTo(HaveOccurred())
				ids = append(ids, payments[0].ID)
			}

			mockRepo.updateErrorForID[ids[1]] = errors.New("connection reset")

			result, err := service.PostAllProcessed()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.PostedCount).To(Equal(2))

			applied := 0
			for _, outcome := range result.Outcomes {
				if outcome.Applied {
					applied++
				} else {
					Expect(outcome.PaymentID).To(Equal(ids[1]))
					Expect(outcome.Error).NotTo(BeEmpty())
				}
			}
			Expect(applied).To(Equal(2))
			Expect(mockRepo.records[ids[1]].Status).To(Equal(payment.StatusProcessed))
		})

		It("reports an empty batch when nothing is processed", func() {
			result, err := service.PostAllProcessed()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.PostedCount).To(Equal(0))
			Expect(result.Outcomes).To(BeEmpty())
		})
	})

	Describe("Reverse", func() {
		It("reverses a processed payment with the given reason", func() {
			payments, err := service.RecordIntake(achIntake())
			Expect(err).NotTo(HaveOccurred())
			paymentID := payments[0].ID

			_, err = service.Submit(context.Background(), paymentID)
			Expect(err).NotTo(HaveOccurred())

			result, err := service.Reverse(paymentID, "debtor disputed the charge")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Payment.Status).To(Equal(payment.StatusReversed))
			Expect(*result.Payment.ReversalReason).To(Equal("debtor disputed the charge"))
			Expect(result.CanceledCount).To(Equal(0))
		})

		It("requires a reason", func() {
			_, err := service.Reverse("any", "")
			Expect(err).To(HaveOccurred())
		})

		It("refuses to reverse a pending payment", func() {
			payments, err := service.RecordIntake(achIntake())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Reverse(payments[0].ID, "mistake")
			Expect(err).To(HaveOccurred())
		})

		It("cancels pending future occurrences of the same series", func() {
			req := achIntake()
			req.Frequency = "specific_dates"
			req.Dates = []string{"2030-01-15", "2030-02-15", "2030-03-15"}

			payments, err := service.RecordIntake(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(payments).To(HaveLen(3))

			first := payments[0]
			_, err = service.Submit(context.Background(), first.ID)
			Expect(err).NotTo(HaveOccurred())

			result, err := service.Reverse(first.ID, "payment returned")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.CanceledCount).To(Equal(2))
			Expect(mockRepo.records[first.ID].AmountCents).To(Equal(int64(12550)))

			for _, p := range payments[1:] {
				persisted := mockRepo.records[p.ID]
				Expect(persisted.Status).To(Equal(payment.StatusCancelled))
				Expect(*persisted.CancelReason).To(Equal("series reversed"))
				Expect(persisted.AmountCents).To(Equal(int64(12550)))
			}
		})

		It("announces each cascade cancellation on the event bus", func() {
			canceled := make(chan events.Event, 4)
			eventBus.Subscribe(events.EventTypePaymentSeriesCanceled, func(ctx context.Context, e events.Event) error {
				canceled <- e
				return nil
			})

			req := achIntake()
			req.Frequency = "specific_dates"
			req.Dates = []string{"2030-01-15", "2030-02-15", "2030-03-15"}

			payments, err := service.RecordIntake(req)
			Expect(err).NotTo(HaveOccurred())

			first := payments[0]
			_, err = service.Submit(context.Background(), first.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Reverse(first.ID, "payment returned")
			Expect(err).NotTo(HaveOccurred())

			var event events.Event
			Eventually(canceled).Should(Receive(&event))
			Eventually(canceled).Should(Receive())
			Consistently(canceled).ShouldNot(Receive())

			canceledEvent, ok := event.(*events.PaymentSeriesCanceledEvent)
			Expect(ok).To(BeTrue())
			Expect(canceledEvent.ReversedID).To(Equal(first.ID))
			Expect(canceledEvent.SeriesID).To(Equal(*first.SeriesID))
		})

		It("leaves settled siblings untouched when cascading", func() {
			req := achIntake()
			req.Frequency = "specific_dates"
			req.Dates = []string{"2030-01-15", "2030-02-15"}

			payments, err := service.RecordIntake(req)
			Expect(err).NotTo(HaveOccurred())

			// settle both occurrences, then reverse only the first
			for _, p := range payments {
				_, err = service.Submit(context.Background(), p.ID)
				Expect(err).NotTo(HaveOccurred())
			}

			result, err := service.Reverse(payments[0].ID, "payment returned")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.CanceledCount).To(Equal(0))
			Expect(mockRepo.records[payments[1].ID].Status).To(Equal(payment.StatusProcessed))
		})
	})

	Describe("end-to-end flows", func() {
		It("settles a one-time ACH payment through posting", func() {
			payments, err := service.RecordIntake(achIntake())
			Expect(err).NotTo(HaveOccurred())
			paymentID := payments[0].ID

			submitted, err := service.Submit(context.Background(), paymentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(submitted.Status).To(Equal(payment.StatusProcessed))

			posted, err := service.Post(paymentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(posted.Status).To(Equal(payment.StatusPosted))
			Expect(posted.AmountCents).To(Equal(int64(12550)))
		})

		It("recovers a declined card payment through rerun", func() {
			mockGw.resultSequence = []*gateway.ChargeResult{
				{Outcome: gateway.OutcomeDeclined, Reason: "insufficient_funds"},
				{Outcome: gateway.OutcomeApproved, ReferenceNumber: "REF-100"},
			}

			req := achIntake()
			req.Method = payment.MethodCard
			req.CardNumber = "4111111111111111"
			req.CardExpiry = "12/30"

			payments, err := service.RecordIntake(req)
			Expect(err).NotTo(HaveOccurred())
			paymentID := payments[0].ID

			_, err = service.Submit(context.Background(), paymentID)
			Expect(err).To(HaveOccurred())
			Expect(mockRepo.records[paymentID].Status).To(Equal(payment.StatusDeclined))

			recovered, err := service.Rerun(context.Background(), paymentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(recovered.ID).To(Equal(paymentID))
			Expect(recovered.Status).To(Equal(payment.StatusProcessed))

			posted, err := service.Post(paymentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(posted.Status).To(Equal(payment.StatusPosted))
		})
	})
})
