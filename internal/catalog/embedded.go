package catalog

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"strconv"
	"sync"

	"cotizador/internal/domain"
)

// master.csv is the workshop's master price table, shipped inside the binary
// so the form keeps working when the shared store is unreachable. Same
// schema as the prices table.
//
//go:embed master.csv
var masterCSV []byte

var embeddedOnce = sync.OnceValues(parseMaster)

// Embedded returns a fresh copy of the fallback dataset in table order.
func Embedded() []domain.LineItem {
	items, err := embeddedOnce()
	if err != nil {
		// The dataset is compiled in; a parse failure is a build defect.
		panic("catalog: bad embedded dataset: " + err.Error())
	}
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out
}

func parseMaster() ([]domain.LineItem, error) {
	r := csv.NewReader(bytes.NewReader(masterCSV))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	items := make([]domain.LineItem, 0, len(rows)-1)
	for _, row := range rows[1:] { // skip header
		li := domain.LineItem{Category: row[0], Task: row[1]}
		for i, dst := range []*float64{
			&li.CostSSAS, &li.SaleSSAS, &li.CostHosp, &li.SaleHosp, &li.CostGend, &li.SaleGend,
		} {
			v, err := strconv.ParseFloat(row[i+2], 64)
			if err != nil {
				return nil, err
			}
			*dst = v
		}
		items = append(items, li)
	}
	return items, nil
}
