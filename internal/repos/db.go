package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// OpenDB connects to the shared pricing store. Callers treat a failure here
// as "store offline" and keep running on the embedded dataset; nothing in
// the quoting flow may hard-fail on connectivity.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Price table: one row per flat-rate task, cost/sale pair per client kind.
CREATE TABLE IF NOT EXISTS prices(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  category  TEXT NOT NULL,
  task      TEXT NOT NULL,
  cost_ssas NUMERIC NOT NULL DEFAULT 0,
  sale_ssas NUMERIC NOT NULL DEFAULT 0,
  cost_hosp NUMERIC NOT NULL DEFAULT 0,
  sale_hosp NUMERIC NOT NULL DEFAULT 0,
  cost_gend NUMERIC NOT NULL DEFAULT 0,
  sale_gend NUMERIC NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_prices_category ON prices(category);

-- Correlative history: append-only audit log of finalized quotes.
CREATE TABLE IF NOT EXISTS history(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date   TEXT NOT NULL,
  time   TEXT NOT NULL,
  seq    TEXT NOT NULL,
  plate  TEXT NOT NULL,
  client TEXT NOT NULL,
  amount TEXT NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}
