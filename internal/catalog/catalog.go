package catalog

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"cotizador/internal/domain"
	"cotizador/internal/repos"
)

// ErrUnavailable is returned by Save when the shared store cannot be
// reached. Callers surface it as "offline, cannot persist" and carry on.
var ErrUnavailable = errors.New("catalog: shared store unavailable")

// Source reports where a Load actually got its data from, so callers and
// tests can tell a degraded read from a healthy one.
type Source int

const (
	SourceRemote   Source = iota // read from the shared store
	SourceSeeded                 // store was empty; seeded with the embedded dataset
	SourceFallback               // store unreachable; embedded dataset served
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceSeeded:
		return "seeded"
	default:
		return "fallback"
	}
}

// Markup ratios applied when deriving the per-kind price columns from a
// single base cost (Save). SSAS sells at +40%; the hospital tier compounds
// a further +5% on both cost and sale; Gendarmería buys at base cost.
const (
	saleMarkup = 1.40
	hospExtra  = 1.05
)

// Service loads the price table with a short TTL cache and degrades to the
// embedded dataset when the shared store is offline. Prices may be nil (no
// store connection at startup); every method tolerates that.
type Service struct {
	Prices *repos.PriceRepo
	TTL    time.Duration

	mu      sync.Mutex
	items   []domain.LineItem
	src     Source
	expires time.Time
}

func NewService(prices *repos.PriceRepo, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Service{Prices: prices, TTL: ttl}
}

// Load returns the current catalog and its source. Results are cached for
// the TTL so quantity changes do not hammer the store. Never returns an
// error: connectivity problems degrade to the embedded dataset.
func (s *Service) Load() ([]domain.LineItem, Source) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items != nil && time.Now().Before(s.expires) {
		return s.items, s.src
	}

	items, src := s.fetch()
	s.items = items
	s.src = src
	s.expires = time.Now().Add(s.TTL)
	return items, src
}

func (s *Service) fetch() ([]domain.LineItem, Source) {
	if s.Prices == nil {
		return Embedded(), SourceFallback
	}
	items, err := s.Prices.All()
	if err != nil {
		return Embedded(), SourceFallback
	}
	if len(items) == 0 {
		seed := Embedded()
		if err := s.Prices.AppendAll(seed); err != nil {
			return seed, SourceFallback
		}
		return seed, SourceSeeded
	}
	return items, SourceRemote
}

// Invalidate drops the cache; the next Load rereads the store.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

// Derive expands a single base cost into the full per-kind price columns.
func Derive(category, task string, baseCost float64) domain.LineItem {
	return domain.LineItem{
		Category: category,
		Task:     task,
		CostSSAS: baseCost,
		SaleSSAS: baseCost * saleMarkup,
		CostHosp: baseCost * hospExtra,
		SaleHosp: baseCost * saleMarkup * hospExtra,
		CostGend: baseCost,
		SaleGend: baseCost * saleMarkup,
	}
}

// Save appends a new task to the shared price table and invalidates the
// cache. Returns ErrUnavailable when there is no store connection.
func (s *Service) Save(category, task string, baseCost float64) error {
	if s.Prices == nil {
		return ErrUnavailable
	}
	if err := s.Prices.Append(Derive(category, task, baseCost)); err != nil {
		return fmt.Errorf("catalog: append: %w", err)
	}
	s.Invalidate()
	return nil
}

// EligibleFor filters out tasks not offered to the given client kind
// (zero-cost rows are hidden, not shown as free).
func EligibleFor(items []domain.LineItem, k domain.ClientKind) []domain.LineItem {
	var out []domain.LineItem
	for _, li := range items {
		if li.OfferedTo(k) {
			out = append(out, li)
		}
	}
	return out
}

// Categories returns the distinct categories in first-appearance order,
// which drives the tab order of the form.
func Categories(items []domain.LineItem) []string {
	seen := map[string]bool{}
	var out []string
	for _, li := range items {
		if !seen[li.Category] {
			seen[li.Category] = true
			out = append(out, li.Category)
		}
	}
	return out
}

// Find locates a task by exact description within the eligible set for a
// client kind. Selections always resolve prices through here so a stale
// form cannot smuggle in a price.
func Find(items []domain.LineItem, k domain.ClientKind, task string) (domain.LineItem, bool) {
	for _, li := range items {
		if li.Task == task && li.OfferedTo(k) {
			return li, true
		}
	}
	return domain.LineItem{}, false
}
