// Package remittance builds read-only rollups of posted money by client or
// portfolio for reconciliation back to the originating creditor.
package remittance

import (
	"log/slog"
	"sort"
	"time"

	errors "github.com/debtflow/collections/internal"
	paymentDatamodel "github.com/debtflow/collections/internal/core/datamodel/payment"
)

const (
	GroupByClient    = "client"
	GroupByPortfolio = "portfolio"

	// UnknownGroup buckets records whose debtor cannot be resolved, so
	// totals always reconcile to the filtered input set.
	UnknownGroup = "Unknown"
)

// PaymentSource lists records representing posted money within an inclusive
// date range.
type PaymentSource interface {
	ListSettledBetween(from, to time.Time) ([]*paymentDatamodel.PaymentRecord, error)
}

// Registry resolves grouping labels for a debtor; the bool reports whether
// resolution succeeded.
type Registry interface {
	ClientLabel(debtorID string) (string, bool)
	PortfolioLabel(debtorID string) (string, bool)
}

type SummaryRow struct {
	Group       string `json:"group"`
	TotalCents  int64  `json:"total_cents"`
	RecordCount int    `json:"record_count"`
}

type Summary struct {
	GroupBy    string       `json:"group_by"`
	From       time.Time    `json:"from"`
	To         time.Time    `json:"to"`
	Rows       []SummaryRow `json:"rows"`
	TotalCents int64        `json:"total_cents"`
}

type RemittanceService struct {
	payments PaymentSource
	registry Registry
	logger   *slog.Logger
}

func NewRemittanceService(payments PaymentSource, registry Registry, logger *slog.Logger) *RemittanceService {
	return &RemittanceService{
		payments: payments,
		registry: registry,
		logger:   logger,
	}
}

// Summarize groups settled records by client or portfolio label. Integer
// minor-unit arithmetic throughout: the overall total always equals the sum
// of row totals.
func (s *RemittanceService) Summarize(groupBy string, from, to time.Time) (*Summary, error) {
	if groupBy != GroupByClient && groupBy != GroupByPortfolio {
		return nil, errors.NewValidationError(
			"group_by must be client or portfolio", errors.ErrCodeInvalidRemittanceArg)
	}
	if to.Before(from) {
		return nil, errors.NewValidationError(
			"date range end must not precede start", errors.ErrCodeInvalidRemittanceArg)
	}

	records, err := s.payments.ListSettledBetween(from, to)
	if err != nil {
		s.logger.Error("failed to list settled payments", "error", err)
		return nil, errors.NewInternalError("failed to list settled payments", err)
	}

	totals := make(map[string]*SummaryRow)
	var overall int64

	for _, record := range records {
		label := s.resolveLabel(groupBy, record.DebtorID)

		row, ok := totals[label]
		if !ok {
			row = &SummaryRow{Group: label}
			totals[label] = row
		}
		row.TotalCents += record.AmountCents
		row.RecordCount++
		overall += record.AmountCents
	}

	rows := make([]SummaryRow, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Group < rows[j].Group })

	s.logger.Info("remittance summary built",
		"group_by", groupBy,
		"rows", len(rows),
		"records", len(records),
		"total_cents", overall)

	return &Summary{
		GroupBy:    groupBy,
		From:       from,
		To:         to,
		Rows:       rows,
		TotalCents: overall,
	}, nil
}

func (s *RemittanceService) resolveLabel(groupBy, debtorID string) string {
	var (
		label string
		ok    bool
	)
	if groupBy == GroupByClient {
		label, ok = s.registry.ClientLabel(debtorID)
	} else {
		label, ok = s.registry.PortfolioLabel(debtorID)
	}
	if !ok {
		return UnknownGroup
	}
	return label
}
