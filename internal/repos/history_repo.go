package repos

import (
	"cotizador/internal/domain"

	"github.com/jmoiron/sqlx"
)

type HistoryRepo struct{ db *sqlx.DB }

func NewHistoryRepo(db *sqlx.DB) *HistoryRepo { return &HistoryRepo{db: db} }

func (r *HistoryRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM history`)
	return n, err
}

func (r *HistoryRepo) Append(rec domain.CorrelativeRecord) error {
	_, err := r.db.Exec(`
	  INSERT INTO history(date, time, seq, plate, client, amount)
	  VALUES(?,?,?,?,?,?)`,
		rec.Date, rec.Time, rec.Seq, rec.Plate, rec.Client, rec.Amount)
	return err
}

// Recent returns the latest audit rows, newest first.
func (r *HistoryRepo) Recent(limit int) ([]domain.CorrelativeRecord, error) {
	var out []domain.CorrelativeRecord
	err := r.db.Select(&out, `
	  SELECT date, time, seq, plate, client, amount
	  FROM history ORDER BY id DESC LIMIT ?`, limit)
	return out, err
}
