// Package correlative assigns the human-facing sequential document number
// and keeps the append-only audit log of finalized quotes.
package correlative

import (
	"fmt"
	"time"

	"cotizador/internal/domain"
	"cotizador/internal/repos"
)

// Sentinels returned instead of a sequence number when the shared store is
// down (SeqOffline) or the append itself failed (SeqError). Finalization
// never fails on these; the document renders without a trustworthy number.
const (
	SeqOffline = "OFFLINE"
	SeqError   = "ERROR"
)

// IsSentinel reports whether s is a placeholder rather than a real number.
func IsSentinel(s string) bool { return s == SeqOffline || s == SeqError || s == "" }

type Register struct {
	History *repos.HistoryRepo // nil when the store is offline

	now func() time.Time // test hook
}

func NewRegister(history *repos.HistoryRepo) *Register {
	return &Register{History: history, now: time.Now}
}

// Assign allocates the next sequence number (prior row count, zero-padded to
// six digits) and appends the audit row. Known limitation: the count-then-
// append pair is not atomic, so two concurrent writers can mint the same
// number; the log assumes a single writer.
func (r *Register) Assign(plate string, client domain.ClientKind, total float64) string {
	if r.History == nil {
		return SeqOffline
	}
	count, err := r.History.Count()
	if err != nil {
		return SeqError
	}
	seq := fmt.Sprintf("%06d", count)
	now := r.now()
	rec := domain.CorrelativeRecord{
		Date:   now.Format("02/01/2006"),
		Time:   now.Format("15:04:05"),
		Seq:    seq,
		Plate:  plate,
		Client: client.Label(),
		Amount: domain.FormatCLP(total),
	}
	if err := r.History.Append(rec); err != nil {
		return SeqError
	}
	return seq
}
