package postgres

import (
	"gorm.io/gorm"

	debtorDatamodel "github.com/debtflow/collections/internal/core/datamodel/debtor"
	debtorpkg "github.com/debtflow/collections/internal/debtor"
)

type DebtorRepository struct {
	db *gorm.DB
}

func NewDebtorRepository(db *gorm.DB) debtorpkg.RepositoryAPI {
	return &DebtorRepository{
		db: db,
	}
}

func (r *DebtorRepository) GetDebtor(id string) (*debtorDatamodel.Debtor, error) {
	var d debtorDatamodel.Debtor
	err := r.db.Where("id = ?", id).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DebtorRepository) GetClient(id string) (*debtorDatamodel.Client, error) {
	var c debtorDatamodel.Client
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *DebtorRepository) GetPortfolio(id string) (*debtorDatamodel.Portfolio, error) {
	var p debtorDatamodel.Portfolio
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
