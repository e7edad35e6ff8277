package repos

import (
	"cotizador/internal/domain"

	"github.com/jmoiron/sqlx"
)

type PriceRepo struct{ db *sqlx.DB }

func NewPriceRepo(db *sqlx.DB) *PriceRepo { return &PriceRepo{db: db} }

// All returns the full price table in insertion order, which is the display
// order of the catalog.
func (r *PriceRepo) All() ([]domain.LineItem, error) {
	var out []domain.LineItem
	err := r.db.Select(&out, `
	  SELECT category, task, cost_ssas, sale_ssas, cost_hosp, sale_hosp, cost_gend, sale_gend
	  FROM prices
	  ORDER BY id`)
	return out, err
}

func (r *PriceRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM prices`)
	return n, err
}

func (r *PriceRepo) Append(li domain.LineItem) error {
	_, err := r.db.Exec(`
	  INSERT INTO prices(category, task, cost_ssas, sale_ssas, cost_hosp, sale_hosp, cost_gend, sale_gend)
	  VALUES(?,?,?,?,?,?,?,?)`,
		li.Category, li.Task, li.CostSSAS, li.SaleSSAS, li.CostHosp, li.SaleHosp, li.CostGend, li.SaleGend)
	return err
}

// AppendAll seeds the table in one transaction, preserving dataset order.
func (r *PriceRepo) AppendAll(items []domain.LineItem) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, li := range items {
		if _, err := tx.Exec(`
		  INSERT INTO prices(category, task, cost_ssas, sale_ssas, cost_hosp, sale_hosp, cost_gend, sale_gend)
		  VALUES(?,?,?,?,?,?,?,?)`,
			li.Category, li.Task, li.CostSSAS, li.SaleSSAS, li.CostHosp, li.SaleHosp, li.CostGend, li.SaleGend); err != nil {
			return err
		}
	}
	return tx.Commit()
}
