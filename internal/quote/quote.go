// Package quote holds the in-progress quoting session (draft) and the
// totals math. Drafts live in memory only: they are single-session state
// and must keep working when the shared pricing store is offline.
package quote

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"cotizador/internal/domain"
)

// Manual items carry a single fixed markup from the entered unit cost.
const manualMarkup = 1.35

// TaxRate is Chilean IVA.
const TaxRate = 0.19

var ErrFinalized = errors.New("quote: draft already finalized")

// Totals is the summary block for one view. Net is the cost total for the
// standard view and the sale total for the supervisor view; tax and gross
// follow whichever was chosen.
type Totals struct {
	CostNet float64
	SaleNet float64
	Net     float64
	Tax     float64
	Gross   float64
}

// Totalize recomputes all figures from the current selections. Totals are
// never cached on the draft.
func Totalize(sels []domain.Selection, view domain.View) Totals {
	var t Totals
	for _, s := range sels {
		t.CostNet += s.TotalCost
		t.SaleNet += s.TotalSale
	}
	if view == domain.ViewSupervisor {
		t.Net = t.SaleNet
	} else {
		t.Net = t.CostNet
	}
	t.Tax = t.Net * TaxRate
	t.Gross = t.Net + t.Tax
	return t
}

// Draft is one quoting session's mutable state. All access goes through the
// Store, which serializes it.
type Draft struct {
	Plate      string
	Model      string
	Client     domain.ClientKind
	EndUser    string
	Notes      string
	Status     domain.WorkStatus
	Selections []domain.Selection
	Photos     []domain.Photo
	Finalized  bool

	touched time.Time
}

func newDraft() *Draft {
	return &Draft{
		Model:   "SPRINTER",
		Status:  domain.StatusPending,
		touched: time.Now(),
	}
}

// SetSelection sets the quantity for a catalog task, resolving unit prices
// from the line item for the draft's client kind. Qty 0 removes the line.
func (d *Draft) SetSelection(li domain.LineItem, qty int) {
	cost, sale := li.Price(d.Client)
	for i, s := range d.Selections {
		if !s.Manual && s.Task == li.Task {
			if qty <= 0 {
				d.Selections = append(d.Selections[:i], d.Selections[i+1:]...)
				return
			}
			d.Selections[i] = selection(li.Task, qty, cost, sale, false)
			return
		}
	}
	if qty > 0 {
		d.Selections = append(d.Selections, selection(li.Task, qty, cost, sale, false))
	}
}

// AddManual appends an ad-hoc line. The sale price derives from the entered
// unit cost by the fixed manual markup.
func (d *Draft) AddManual(desc string, qty int, unitCost float64) {
	d.Selections = append(d.Selections, selection("(Extra) "+desc, qty, unitCost, unitCost*manualMarkup, true))
}

func selection(task string, qty int, cost, sale float64, manual bool) domain.Selection {
	return domain.Selection{
		Task:      task,
		Qty:       qty,
		UnitCost:  cost,
		UnitSale:  sale,
		TotalCost: cost * float64(qty),
		TotalSale: sale * float64(qty),
		Manual:    manual,
	}
}

// SwitchClient changes the pricing tier. Selections are priced per tier, so
// a switch drops them rather than repricing silently.
func (d *Draft) SwitchClient(k domain.ClientKind) {
	if d.Client == k {
		return
	}
	d.Client = k
	d.Selections = nil
}

// Finalize freezes the draft into an immutable Quote. A draft finalizes at
// most once; the caller assigns the correlative first and passes it in.
func (d *Draft) Finalize(correlative string) (domain.Quote, error) {
	if d.Finalized {
		return domain.Quote{}, ErrFinalized
	}
	d.Finalized = true
	q := domain.Quote{
		ID:          uuid.NewString(),
		Plate:       domain.NormalizePlate(d.Plate),
		Model:       d.Model,
		Client:      d.Client,
		EndUser:     d.EndUser,
		Notes:       d.Notes,
		Status:      d.Status,
		Selections:  append([]domain.Selection(nil), d.Selections...),
		Photos:      append([]domain.Photo(nil), d.Photos...),
		Correlative: correlative,
		CreatedAt:   time.Now(),
	}
	return q, nil
}
