package postgres

import (
	"time"

	"gorm.io/gorm"

	errors "github.com/debtflow/collections/internal"
	paymentDatamodel "github.com/debtflow/collections/internal/core/datamodel/payment"
	paymentpkg "github.com/debtflow/collections/internal/payment"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

var _ paymentpkg.RepositoryAPI = (*PaymentRepository)(nil)

func (r *PaymentRepository) Create(record *paymentDatamodel.PaymentRecord) error {
	return r.db.Create(record).Error
}

func (r *PaymentRepository) CreateAll(records []*paymentDatamodel.PaymentRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PaymentRepository) GetByID(id string) (*paymentDatamodel.PaymentRecord, error) {
	var record paymentDatamodel.PaymentRecord
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *PaymentRepository) ListByStatus(status string) ([]*paymentDatamodel.PaymentRecord, error) {
	var records []*paymentDatamodel.PaymentRecord
	err := r.db.Where("status = ?", status).Order("scheduled_date ASC, id ASC").Find(&records).Error
	return records, err
}

func (r *PaymentRepository) ListBySeriesID(seriesID string) ([]*paymentDatamodel.PaymentRecord, error) {
	var records []*paymentDatamodel.PaymentRecord
	err := r.db.Where("series_id = ?", seriesID).Order("scheduled_date ASC").Find(&records).Error
	return records, err
}

func (r *PaymentRepository) ListByDebtorID(debtorID string, limit, offset int) ([]*paymentDatamodel.PaymentRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []*paymentDatamodel.PaymentRecord
	err := r.db.Where("debtor_id = ?", debtorID).
		Order("scheduled_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// ListSettledBetween returns records that represent posted money for
// remittance: processed or posted (plus the legacy "completed" marker from
// imported history), scheduled within the inclusive date range.
func (r *PaymentRepository) ListSettledBetween(from, to time.Time) ([]*paymentDatamodel.PaymentRecord, error) {
	var records []*paymentDatamodel.PaymentRecord
	err := r.db.
		Where("status IN ?", []string{"completed", "processed", "posted"}).
		Where("scheduled_date >= ? AND scheduled_date <= ?", from, to).
		Order("scheduled_date ASC").
		Find(&records).Error
	return records, err
}

// UpdateFromStatus writes the record only if its persisted status still
// matches expectedStatus. Zero rows affected means another owner transitioned
// the record first; the caller must treat the transition as skipped.
func (r *PaymentRepository) UpdateFromStatus(record *paymentDatamodel.PaymentRecord, expectedStatus string) error {
	result := r.db.Model(&paymentDatamodel.PaymentRecord{}).
		Where("id = ? AND status = ?", record.ID, expectedStatus).
		Updates(map[string]interface{}{
			"status":            record.Status,
			"reference_number":  record.ReferenceNumber,
			"decline_reason":    record.DeclineReason,
			"reversal_reason":   record.ReversalReason,
			"cancel_reason":     record.CancelReason,
			"next_payment_date": record.NextPaymentDate,
			"needs_review":      record.NeedsReview,
			"gateway_response":  record.GatewayResponse,
			"processed_at":      record.ProcessedAt,
			"posted_at":         record.PostedAt,
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrStalePaymentState
	}
	return nil
}

// Save writes unconditionally; reserved for reconciliation paths where the
// gateway has already answered and the outcome must land regardless of
// concurrent writes.
func (r *PaymentRepository) Save(record *paymentDatamodel.PaymentRecord) error {
	return r.db.Save(record).Error
}
