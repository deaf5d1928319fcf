package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	errors "github.com/debtflow/collections/internal"
	"github.com/debtflow/collections/internal/card"
	cardDatamodel "github.com/debtflow/collections/internal/core/datamodel/card"
	paymentDatamodel "github.com/debtflow/collections/internal/core/datamodel/payment"
	"github.com/debtflow/collections/internal/core/events"
	"github.com/debtflow/collections/internal/gateway"
	"github.com/debtflow/collections/internal/schedule"
)

// RepositoryAPI is the persistence surface for payment records. All status
// transitions go through UpdateFromStatus, a compare-and-swap on the prior
// status, so two owners can never half-apply the same transition.
type RepositoryAPI interface {
	Create(r *paymentDatamodel.PaymentRecord) error
	CreateAll(rs []*paymentDatamodel.PaymentRecord) error
	GetByID(id string) (*paymentDatamodel.PaymentRecord, error)
	ListByStatus(status string) ([]*paymentDatamodel.PaymentRecord, error)
	ListBySeriesID(seriesID string) ([]*paymentDatamodel.PaymentRecord, error)
	ListByDebtorID(debtorID string, limit, offset int) ([]*paymentDatamodel.PaymentRecord, error)
	UpdateFromStatus(r *paymentDatamodel.PaymentRecord, expectedStatus string) error
	Save(r *paymentDatamodel.PaymentRecord) error
}

// CardServiceAPI is what intake needs from the card module: resolve an
// existing stored card or tokenize freshly-entered card data.
type CardServiceAPI interface {
	CreateStoredCard(debtorID, rawNumber, expiry string) (*cardDatamodel.StoredCard, error)
	GetStoredCard(id string) (*cardDatamodel.StoredCard, error)
}

type PaymentService struct {
	repository RepositoryAPI
	cards      CardServiceAPI
	gateway    gateway.Gateway
	eventBus   *events.EventBus
	logger     *slog.Logger
}

func NewPaymentService(
	repository RepositoryAPI,
	cards CardServiceAPI,
	gw gateway.Gateway,
	eventBus *events.EventBus,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		repository: repository,
		cards:      cards,
		gateway:    gw,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// RecordIntake creates the initial pending record(s). specific_dates yields
// one record per validated future date under a shared series id; recurring
// frequencies create only the first occurrence with its forward pointer
// precomputed. The next occurrence is materialized lazily when this one
// reaches a terminal state.
func (s *PaymentService) RecordIntake(req *IntakeRequest) ([]*Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cardID, err := s.resolveCard(req)
	if err != nil {
		return nil, err
	}

	frequency := schedule.Frequency(req.Frequency)
	now := time.Now().UTC()

	anchor, appErr := req.ParsedScheduledDate()
	if appErr != nil {
		return nil, appErr
	}
	if anchor.IsZero() {
		anchor = now
	}

	var records []*paymentDatamodel.PaymentRecord

	switch frequency {
	case schedule.FrequencySpecificDates:
		rawDates, appErr := req.ParsedDates()
		if appErr != nil {
			return nil, appErr
		}
		dates, err := schedule.MaterializeExplicitDates(rawDates, now)
		if err != nil {
			return nil, err
		}
		seriesID := uuid.New().String()
		for _, d := range dates {
			records = append(records, s.newRecord(req, cardID, d, &seriesID, nil, now))
		}

	case schedule.FrequencyWeekly, schedule.FrequencyBiWeekly, schedule.FrequencyMonthly:
		seriesID := uuid.New().String()
		next := schedule.NextOccurrence(anchor, frequency)
		records = append(records, s.newRecord(req, cardID, anchor, &seriesID, next, now))

	default: // one_time
		records = append(records, s.newRecord(req, cardID, anchor, nil, nil, now))
	}

	if len(records) == 1 {
		err = s.repository.Create(records[0])
	} else {
		err = s.repository.CreateAll(records)
	}
	if err != nil {
		s.logger.Error("failed to create payment records", "error", err, "debtor_id", req.DebtorID)
		return nil, errors.NewInternalError("failed to create payment records", err)
	}

	payments := make([]*Payment, 0, len(records))
	for _, r := range records {
		payments = append(payments, FromDataModel(r))
	}

	s.logger.Info("payment intake recorded",
		"debtor_id", req.DebtorID,
		"amount_cents", req.AmountCents,
		"method", req.Method,
		"frequency", req.Frequency,
		"records", len(payments))

	return payments, nil
}

// Submit runs the single settlement attempt a pending record owns. The
// gateway is called at most once per invocation; retry is always an explicit
// rerun, never automatic.
func (s *PaymentService) Submit(ctx context.Context, id string) (*Payment, error) {
	record, err := s.repository.GetByID(id)
	if err != nil {
		return nil, errors.ErrPaymentNotFound
	}

	p := FromDataModel(record)
	if !p.CanSubmit() {
		return nil, invalidStateError("submit", p.Status)
	}

	return s.charge(ctx, p)
}

// Rerun resets a declined or failed record to the submit path, preserving
// the record id so the attempt history stays on one row.
func (s *PaymentService) Rerun(ctx context.Context, id string) (*Payment, error) {
	record, err := s.repository.GetByID(id)
	if err != nil {
		return nil, errors.ErrPaymentNotFound
	}

	p := FromDataModel(record)
	if !p.CanRerun() {
		return nil, invalidStateError("rerun", p.Status)
	}

	priorStatus := p.Status
	p.ResetForRerun()
	if err := s.repository.UpdateFromStatus(ToDataModel(p), priorStatus); err != nil {
		return nil, err
	}

	s.logger.Info("payment reset for rerun", "payment_id", p.ID, "prior_status", priorStatus)

	return s.charge(ctx, p)
}

// Post marks a processed record posted. Idempotent: posting a posted record
// is a no-op success, so bulk posting can race with a manual post safely.
func (s *PaymentService) Post(id string) (*Payment, error) {
	record, err := s.repository.GetByID(id)
	if err != nil {
		return nil, errors.ErrPaymentNotFound
	}

	p := FromDataModel(record)
	if p.Status == StatusPosted {
		return p, nil
	}
	if !p.CanPost() {
		return nil, invalidStateError("post", p.Status)
	}

	p.MarkPosted()
	if err := s.repository.UpdateFromStatus(ToDataModel(p), StatusProcessed); err != nil {
		// Re-check: a concurrent bulk post winning the race still counts as
		// success for this caller.
		if latest, getErr := s.repository.GetByID(id); getErr == nil && latest.Status == StatusPosted {
			return FromDataModel(latest), nil
		}
		return nil, err
	}

	s.logger.Info("payment posted", "payment_id", p.ID, "amount_cents", p.AmountCents)
	s.advanceSeries(p)
	_ = s.eventBus.Publish(context.Background(), events.NewPaymentPostedEvent(p.ID, p.DebtorID, p.AmountCents))

	return p, nil
}

// PostAllProcessed posts every processed record independently: each record's
// status is re-verified by the compare-and-swap, and one failure never blocks
// the rest.
func (s *PaymentService) PostAllProcessed() (*BatchPostResult, error) {
	records, err := s.repository.ListByStatus(StatusProcessed)
	if err != nil {
		return nil, errors.NewInternalError("failed to list processed payments", err)
	}

	result := &BatchPostResult{Outcomes: make([]BatchOutcome, 0, len(records))}
	for _, record := range records {
		p := FromDataModel(record)
		p.MarkPosted()
		if err := s.repository.UpdateFromStatus(ToDataModel(p), StatusProcessed); err != nil {
			s.logger.Warn("bulk post skipped record", "payment_id", p.ID, "error", err)
			result.Outcomes = append(result.Outcomes, BatchOutcome{PaymentID: p.ID, Applied: false, Error: err.Error()})
			continue
		}

		result.PostedCount++
		result.Outcomes = append(result.Outcomes, BatchOutcome{PaymentID: p.ID, Applied: true})
		s.advanceSeries(p)
		_ = s.eventBus.Publish(context.Background(), events.NewPaymentPostedEvent(p.ID, p.DebtorID, p.AmountCents))
	}

	s.logger.Info("bulk post completed", "eligible", len(records), "posted", result.PostedCount)
	return result, nil
}

// Reverse voids a processed or posted payment and cancels every other
// still-pending future occurrence of the same series, so a voided recurring
// arrangement cannot keep spawning attempts.
func (s *PaymentService) Reverse(id, reason string) (*ReverseResult, error) {
	if reason == "" {
		return nil, errors.NewValidationError("reversal reason is required", errors.ErrCodeValidationFailed)
	}

	record, err := s.repository.GetByID(id)
	if err != nil {
		return nil, errors.ErrPaymentNotFound
	}

	p := FromDataModel(record)
	if !p.CanReverse() {
		return nil, invalidStateError("reverse", p.Status)
	}

	priorStatus := p.Status
	p.MarkReversed(reason)
	if err := s.repository.UpdateFromStatus(ToDataModel(p), priorStatus); err != nil {
		return nil, err
	}

	result := &ReverseResult{Payment: p}
	if p.SeriesID != nil {
		result.CascadedOutcomes, result.CanceledCount = s.cancelFutureSiblings(*p.SeriesID, p.ID)
	}

	s.logger.Info("payment reversed",
		"payment_id", p.ID,
		"reason", reason,
		"canceled_siblings", result.CanceledCount)

	_ = s.eventBus.Publish(context.Background(),
		events.NewPaymentReversedEvent(p.ID, p.DebtorID, reason, result.CanceledCount))

	return result, nil
}

func (s *PaymentService) GetPayment(id string) (*Payment, error) {
	record, err := s.repository.GetByID(id)
	if err != nil {
		return nil, errors.ErrPaymentNotFound
	}
	return FromDataModel(record), nil
}

func (s *PaymentService) ListPayments(status, debtorID string, limit, offset int) ([]*Payment, error) {
	var (
		records []*paymentDatamodel.PaymentRecord
		err     error
	)

	switch {
	case debtorID != "":
		records, err = s.repository.ListByDebtorID(debtorID, limit, offset)
	case status != "":
		records, err = s.repository.ListByStatus(status)
	default:
		records, err = s.repository.ListByStatus(StatusPending)
	}
	if err != nil {
		return nil, errors.NewInternalError("failed to list payments", err)
	}

	payments := make([]*Payment, 0, len(records))
	for _, r := range records {
		payments = append(payments, FromDataModel(r))
	}
	return payments, nil
}

// charge performs the gateway call and applies the outcome atomically against
// the pending status. A status write that fails after the gateway answered is
// force-marked failed with a review flag; it is never left pending.
func (s *PaymentService) charge(ctx context.Context, p *Payment) (*Payment, error) {
	req := &gateway.ChargeRequest{
		PaymentID:   p.ID,
		AmountCents: p.AmountCents,
		Method:      p.Method,
	}
	if p.CardID != nil {
		req.CardID = *p.CardID
		if stored, err := s.cards.GetStoredCard(*p.CardID); err == nil {
			req.Details = map[string]string{
				"brand":        stored.Brand,
				"last4":        stored.Last4,
				"expiry_month": fmt.Sprintf("%02d", stored.ExpiryMonth),
				"expiry_year":  fmt.Sprintf("%d", stored.ExpiryYear),
			}
		}
	}

	result, err := s.gateway.Charge(ctx, req)
	if err != nil {
		s.logger.Error("gateway transport failure", "error", err, "payment_id", p.ID)
		p.MarkTransportFailed()
		s.persistOutcome(p)
		_ = s.eventBus.Publish(context.Background(),
			events.NewPaymentDeclinedEvent(p.ID, p.DebtorID, transportFailureReason, true))
		return nil, errors.ErrGatewayUnavailable
	}

	if result.Outcome == gateway.OutcomeDeclined {
		s.logger.Info("payment declined", "payment_id", p.ID, "reason", result.Reason)
		p.MarkDeclined(result.Reason, rawResult(result))
		s.persistOutcome(p)
		_ = s.eventBus.Publish(context.Background(),
			events.NewPaymentDeclinedEvent(p.ID, p.DebtorID, result.Reason, false))
		return nil, errors.NewExternalError(result.Reason, errors.ErrCodeGatewayDeclined, http.StatusUnprocessableEntity)
	}

	p.MarkProcessed(result.ReferenceNumber, rawResult(result))
	s.persistOutcome(p)

	s.logger.Info("payment processed",
		"payment_id", p.ID,
		"reference_number", result.ReferenceNumber,
		"amount_cents", p.AmountCents)

	_ = s.eventBus.Publish(context.Background(),
		events.NewPaymentProcessedEvent(p.ID, p.DebtorID, p.AmountCents, result.ReferenceNumber))

	return p, nil
}

// persistOutcome applies a post-gateway transition. The gateway has already
// answered, so a stale or failing write cannot roll the attempt back: the
// record is force-saved as failed with needs_review set for reconciliation.
func (s *PaymentService) persistOutcome(p *Payment) {
	if err := s.repository.UpdateFromStatus(ToDataModel(p), StatusPending); err == nil {
		return
	}

	s.logger.Error("status write failed after gateway call, flagging for review", "payment_id", p.ID)
	p.Status = StatusFailed
	p.NeedsReview = true
	p.UpdatedAt = time.Now().UTC()
	if err := s.repository.Save(ToDataModel(p)); err != nil {
		s.logger.Error("failed to flag payment for review", "error", err, "payment_id", p.ID)
	}
}

// advanceSeries lazily materializes the next occurrence of a recurring
// series once the current one reaches posted. Reversed and cancelled
// occurrences clear their forward pointer, which stops the series here.
func (s *PaymentService) advanceSeries(p *Payment) {
	frequency := schedule.Frequency(p.Frequency)
	if !frequency.IsRecurring() || p.NextPaymentDate == nil {
		return
	}

	scheduled := *p.NextPaymentDate
	now := time.Now().UTC()
	next := &paymentDatamodel.PaymentRecord{
		ID:                     uuid.New().String(),
		DebtorID:               p.DebtorID,
		ProcessedByCollectorID: p.ProcessedByCollectorID,
		AmountCents:            p.AmountCents,
		Method:                 p.Method,
		CardID:                 p.CardID,
		Frequency:              p.Frequency,
		ScheduledDate:          scheduled,
		SeriesID:               p.SeriesID,
		Status:                 StatusPending,
		NextPaymentDate:        schedule.NextOccurrence(scheduled, frequency),
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.repository.Create(next); err != nil {
		s.logger.Error("failed to materialize next occurrence",
			"error", err,
			"series_id", deref(p.SeriesID),
			"payment_id", p.ID)
		return
	}

	s.logger.Info("next occurrence materialized",
		"series_id", deref(p.SeriesID),
		"payment_id", next.ID,
		"scheduled_date", scheduled.Format(dateLayout))
}

// cancelFutureSiblings applies the reversal cascade: every other pending
// record of the series with a future scheduled date is cancelled. Touching
// zero records is a normal case.
func (s *PaymentService) cancelFutureSiblings(seriesID, reversedID string) ([]BatchOutcome, int) {
	siblings, err := s.repository.ListBySeriesID(seriesID)
	if err != nil {
		s.logger.Error("failed to list series for cascade", "error", err, "series_id", seriesID)
		return []BatchOutcome{{PaymentID: "", Applied: false, Error: err.Error()}}, 0
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var outcomes []BatchOutcome
	canceled := 0

	for _, record := range siblings {
		if record.ID == reversedID || record.Status != StatusPending {
			continue
		}
		if !record.ScheduledDate.After(today) {
			continue
		}

		sibling := FromDataModel(record)
		sibling.MarkCancelled("series reversed")
		if err := s.repository.UpdateFromStatus(ToDataModel(sibling), StatusPending); err != nil {
			s.logger.Warn("cascade skipped sibling", "payment_id", sibling.ID, "error", err)
			outcomes = append(outcomes, BatchOutcome{PaymentID: sibling.ID, Applied: false, Error: err.Error()})
			continue
		}
		canceled++
		outcomes = append(outcomes, BatchOutcome{PaymentID: sibling.ID, Applied: true})
		_ = s.eventBus.Publish(context.Background(),
			events.NewPaymentSeriesCanceledEvent(sibling.ID, sibling.DebtorID, seriesID, reversedID))
	}

	return outcomes, canceled
}

// resolveCard enforces the intake card guard before any state is written: an
// existing card id must resolve, and fresh card data must pass
// identification with a parseable MM/YY expiry.
func (s *PaymentService) resolveCard(req *IntakeRequest) (*string, error) {
	if req.Method != MethodCard {
		return nil, nil
	}

	if req.CardID != nil && *req.CardID != "" {
		stored, err := s.cards.GetStoredCard(*req.CardID)
		if err != nil {
			return nil, errors.ErrCardNotFound
		}
		return &stored.ID, nil
	}

	if req.CardNumber == "" || req.CardExpiry == "" {
		return nil, errors.NewValidationError(
			"card payments require a stored card id or card number and expiry",
			errors.ErrCodeInvalidCardInput)
	}

	identity, err := card.Identify(req.CardNumber)
	if err != nil {
		if idErr, ok := err.(*card.IdentificationError); ok {
			return nil, idErr.AppError()
		}
		return nil, err
	}
	if !identity.IsValid {
		return nil, errors.NewValidationError("card number is incomplete", errors.ErrCodeInvalidCardInput)
	}

	stored, err := s.cards.CreateStoredCard(req.DebtorID, req.CardNumber, req.CardExpiry)
	if err != nil {
		return nil, err
	}
	return &stored.ID, nil
}

func (s *PaymentService) newRecord(
	req *IntakeRequest,
	cardID *string,
	scheduledDate time.Time,
	seriesID *string,
	nextPaymentDate *time.Time,
	now time.Time,
) *paymentDatamodel.PaymentRecord {
	return &paymentDatamodel.PaymentRecord{
		ID:                     uuid.New().String(),
		DebtorID:               req.DebtorID,
		ProcessedByCollectorID: req.CollectorID,
		AmountCents:            req.AmountCents,
		Method:                 req.Method,
		CardID:                 cardID,
		Frequency:              req.Frequency,
		ScheduledDate:          scheduledDate,
		SeriesID:               seriesID,
		Status:                 StatusPending,
		NextPaymentDate:        nextPaymentDate,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

func invalidStateError(operation, status string) *errors.AppError {
	return errors.NewConflictError(
		fmt.Sprintf("cannot %s a payment in status %q", operation, status),
		errors.ErrCodeInvalidPaymentState)
}

func rawResult(result *gateway.ChargeResult) []byte {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil
	}
	return raw
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
