package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cotizador/internal/domain"
)

var tableroItem = domain.LineItem{
	Category: "Cabina y Tablero",
	Task:     "Reparación circuito eléctrico tablero",
	CostSSAS: 180000, SaleSSAS: 252000,
	CostHosp: 189000, SaleHosp: 264600,
	CostGend: 215800, SaleGend: 291330,
}

func TestSetSelectionAddUpdateRemove(t *testing.T) {
	d := newDraft()
	d.Client = domain.ClientSSAS

	d.SetSelection(tableroItem, 2)
	require.Len(t, d.Selections, 1)
	s := d.Selections[0]
	require.Equal(t, 180000.0, s.UnitCost)
	require.Equal(t, 252000.0, s.UnitSale)
	require.Equal(t, 360000.0, s.TotalCost)
	require.Equal(t, 504000.0, s.TotalSale)

	d.SetSelection(tableroItem, 3)
	require.Len(t, d.Selections, 1)
	require.Equal(t, 540000.0, d.Selections[0].TotalCost)

	d.SetSelection(tableroItem, 0)
	require.Empty(t, d.Selections)
}

// Supervisor finalizes against sale figures; standard against cost. The
// scenario mirrors a real quote: qty 2 of the tablero repair for SSAS.
func TestTotalizePerView(t *testing.T) {
	d := newDraft()
	d.Client = domain.ClientSSAS
	d.SetSelection(tableroItem, 2)

	sup := Totalize(d.Selections, domain.ViewSupervisor)
	require.Equal(t, 360000.0, sup.CostNet)
	require.Equal(t, 504000.0, sup.SaleNet)
	require.Equal(t, 504000.0, sup.Net)
	require.Equal(t, 95760.0, sup.Tax)
	require.Equal(t, 599760.0, sup.Gross)

	std := Totalize(d.Selections, domain.ViewStandard)
	require.Equal(t, 360000.0, std.Net)
	require.Equal(t, 360000.0*0.19, std.Tax)
	require.Equal(t, 360000.0*1.19, std.Gross)
}

func TestTotalsExactAcrossAdditions(t *testing.T) {
	d := newDraft()
	d.Client = domain.ClientGend
	d.SetSelection(tableroItem, 1)
	d.AddManual("Soporte de extintor", 3, 15000)

	var wantCost, wantSale float64
	for _, s := range d.Selections {
		wantCost += s.UnitCost * float64(s.Qty)
		wantSale += s.UnitSale * float64(s.Qty)
	}
	tt := Totalize(d.Selections, domain.ViewStandard)
	require.Equal(t, wantCost, tt.CostNet)
	require.Equal(t, wantSale, tt.SaleNet)
}

func TestAddManualMarkup(t *testing.T) {
	d := newDraft()
	d.AddManual("Cambio de espejo", 2, 10000)
	require.Len(t, d.Selections, 1)
	s := d.Selections[0]
	require.Equal(t, "(Extra) Cambio de espejo", s.Task)
	require.Equal(t, 13500.0, s.UnitSale)
	require.Equal(t, 27000.0, s.TotalSale)
	require.True(t, s.Manual)
}

func TestSwitchClientDropsSelections(t *testing.T) {
	d := newDraft()
	d.Client = domain.ClientSSAS
	d.SetSelection(tableroItem, 1)
	d.SwitchClient(domain.ClientGend)
	require.Empty(t, d.Selections)
	d.SwitchClient(domain.ClientGend) // no-op
	require.Equal(t, domain.ClientGend, d.Client)
}

func TestFinalizeOnce(t *testing.T) {
	d := newDraft()
	d.Plate = "hx-rp10"
	d.Client = domain.ClientHosp
	d.SetSelection(tableroItem, 1)

	q, err := d.Finalize("000007")
	require.NoError(t, err)
	require.Equal(t, "HXRP10", q.Plate)
	require.Equal(t, "000007", q.Correlative)
	require.Equal(t, "SPRINTER", q.Model)
	require.Len(t, q.Selections, 1)

	_, err = d.Finalize("000008")
	require.ErrorIs(t, err, ErrFinalized)
}

func TestStoreLifecycle(t *testing.T) {
	st := NewStore(time.Hour)
	st.Update("sid-1", func(d *Draft) {
		d.Plate = "HXRP10"
		d.SetSelection(tableroItem, 2)
	})
	snap := st.Snapshot("sid-1")
	require.Equal(t, "HXRP10", snap.Plate)
	require.Len(t, snap.Selections, 1)

	st.Reset("sid-1")
	require.Empty(t, st.Snapshot("sid-1").Selections)
}

func TestStoreSweepsAbandonedDrafts(t *testing.T) {
	st := NewStore(time.Millisecond)
	st.Update("sid-old", func(d *Draft) { d.Plate = "HXRP10" })
	time.Sleep(5 * time.Millisecond)
	st.Update("sid-new", func(d *Draft) {})
	require.Empty(t, st.Snapshot("sid-old").Plate)
}
