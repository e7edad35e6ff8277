package domain

import (
	"math"
	"strconv"
	"time"
)

// ClientKind is the institutional pricing tier. Each kind reads a different
// cost/sale column pair from the price table; private customers have no
// catalog at all and quote manual items only.
type ClientKind int

const (
	ClientSSAS ClientKind = iota
	ClientHosp
	ClientGend
	ClientPrivate
)

func (k ClientKind) Label() string {
	switch k {
	case ClientSSAS:
		return "SSAS (Servicio Salud)"
	case ClientHosp:
		return "Hospital Temuco"
	case ClientGend:
		return "Gendarmería de Chile"
	default:
		return "Cliente Particular"
	}
}

// Code is the short form used in query params and the JSON API.
func (k ClientKind) Code() string {
	switch k {
	case ClientSSAS:
		return "ssas"
	case ClientHosp:
		return "hosp"
	case ClientGend:
		return "gend"
	default:
		return "part"
	}
}

func KindFromCode(s string) (ClientKind, bool) {
	switch s {
	case "ssas":
		return ClientSSAS, true
	case "hosp":
		return ClientHosp, true
	case "gend":
		return ClientGend, true
	case "part":
		return ClientPrivate, true
	}
	return ClientSSAS, false
}

// View is the access level a quote is built and rendered under. The two
// views must never mix: supervisor sees cost and sale margins and issues the
// official sale-priced document, standard sees and charges cost figures.
type View int

const (
	ViewStandard View = iota
	ViewSupervisor
)

// LineItem is one row of the price table. A (0,0) pair means the task is not
// offered to that client kind and must be hidden for it, not shown as free.
type LineItem struct {
	Category string  `db:"category"`
	Task     string  `db:"task"`
	CostSSAS float64 `db:"cost_ssas"`
	SaleSSAS float64 `db:"sale_ssas"`
	CostHosp float64 `db:"cost_hosp"`
	SaleHosp float64 `db:"sale_hosp"`
	CostGend float64 `db:"cost_gend"`
	SaleGend float64 `db:"sale_gend"`
}

// Price returns the cost/sale pair for a client kind. Private customers have
// no catalog column; both figures are zero.
func (li LineItem) Price(k ClientKind) (cost, sale float64) {
	switch k {
	case ClientSSAS:
		return li.CostSSAS, li.SaleSSAS
	case ClientHosp:
		return li.CostHosp, li.SaleHosp
	case ClientGend:
		return li.CostGend, li.SaleGend
	}
	return 0, 0
}

// OfferedTo reports whether the task is sellable to the given kind.
func (li LineItem) OfferedTo(k ClientKind) bool {
	cost, _ := li.Price(k)
	return cost > 0
}

// Selection is one chosen line of a draft quote, with unit prices resolved
// for the active client kind at selection time.
type Selection struct {
	Task      string
	Qty       int
	UnitCost  float64
	UnitSale  float64
	TotalCost float64
	TotalSale float64
	Manual    bool
}

type WorkStatus string

const (
	StatusPending = WorkStatus("En Espera de Aprobación")
	StatusDone    = WorkStatus("Trabajo Realizado")
)

// Photo is an uploaded image attached to a quote, embedded into the PDF
// appendix after downscaling.
type Photo struct {
	Name string
	Data []byte
}

// Quote is a finalized quoting session. Built incrementally, finalized
// exactly once (which assigns the correlative), then immutable.
type Quote struct {
	ID          string
	Plate       string
	Model       string
	Client      ClientKind
	EndUser     string
	Notes       string
	Status      WorkStatus
	Selections  []Selection
	Photos      []Photo
	Correlative string
	CreatedAt   time.Time
}

// CorrelativeRecord is one append-only audit row of the history table.
type CorrelativeRecord struct {
	Date   string `db:"date"`
	Time   string `db:"time"`
	Seq    string `db:"seq"`
	Plate  string `db:"plate"`
	Client string `db:"client"`
	Amount string `db:"amount"`
}

// FormatCLP renders a peso amount with no decimals and dot thousands
// separators, e.g. 1234567.8 -> "$1.234.568".
func FormatCLP(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var out []byte
	for i, d := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}
	if neg {
		return "-$" + string(out)
	}
	return "$" + string(out)
}
