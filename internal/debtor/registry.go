// Package debtor exposes read-only registry lookups over debtors and the
// clients/portfolios their debts belong to. The engine only reads these;
// ownership lives in the account-management side of the product.
package debtor

import (
	"log/slog"

	errors "github.com/debtflow/collections/internal"
	debtorDatamodel "github.com/debtflow/collections/internal/core/datamodel/debtor"
)

type RepositoryAPI interface {
	GetDebtor(id string) (*debtorDatamodel.Debtor, error)
	GetClient(id string) (*debtorDatamodel.Client, error)
	GetPortfolio(id string) (*debtorDatamodel.Portfolio, error)
}

type RegistryService struct {
	repository RepositoryAPI
	logger     *slog.Logger
}

func NewRegistryService(repository RepositoryAPI, logger *slog.Logger) *RegistryService {
	return &RegistryService{
		repository: repository,
		logger:     logger,
	}
}

func (s *RegistryService) GetDebtor(id string) (*debtorDatamodel.Debtor, error) {
	d, err := s.repository.GetDebtor(id)
	if err != nil {
		return nil, errors.ErrDebtorNotFound
	}
	return d, nil
}

// ClientLabel resolves the client name for a debtor. The second return is
// false when the debtor or its client cannot be resolved, letting callers
// bucket the amount instead of dropping it.
func (s *RegistryService) ClientLabel(debtorID string) (string, bool) {
	d, err := s.repository.GetDebtor(debtorID)
	if err != nil || d.ClientID == nil {
		return "", false
	}
	c, err := s.repository.GetClient(*d.ClientID)
	if err != nil {
		return "", false
	}
	return c.Name, true
}

func (s *RegistryService) PortfolioLabel(debtorID string) (string, bool) {
	d, err := s.repository.GetDebtor(debtorID)
	if err != nil || d.PortfolioID == nil {
		return "", false
	}
	p, err := s.repository.GetPortfolio(*d.PortfolioID)
	if err != nil {
		return "", false
	}
	return p.Name, true
}
