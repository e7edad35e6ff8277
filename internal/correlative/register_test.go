package correlative

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cotizador/internal/domain"
	"cotizador/internal/repos"
)

func historyDB(t *testing.T) *repos.HistoryRepo {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewHistoryRepo(db)
}

func TestAssignSequences(t *testing.T) {
	reg := NewRegister(historyDB(t))
	reg.now = func() time.Time {
		return time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)
	}

	// Empty log yields 000000; each append bumps the count.
	require.Equal(t, "000000", reg.Assign("HXRP10", domain.ClientHosp, 599760))
	require.Equal(t, "000001", reg.Assign("RBFR28", domain.ClientSSAS, 130500))
	require.Equal(t, "000002", reg.Assign("JTSK31", domain.ClientGend, 1164371))

	recs, err := reg.History.Recent(10)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	// Newest first.
	require.Equal(t, "000002", recs[0].Seq)
	require.Equal(t, "JTSK31", recs[0].Plate)
	require.Equal(t, "Gendarmería de Chile", recs[0].Client)
	require.Equal(t, "$1.164.371", recs[0].Amount)
	require.Equal(t, "14/03/2026", recs[0].Date)
	require.Equal(t, "15:09:26", recs[0].Time)
}

func TestAssignOffline(t *testing.T) {
	reg := NewRegister(nil)
	require.Equal(t, SeqOffline, reg.Assign("HXRP10", domain.ClientHosp, 100))
}

func TestIsSentinel(t *testing.T) {
	require.True(t, IsSentinel(SeqOffline))
	require.True(t, IsSentinel(SeqError))
	require.True(t, IsSentinel(""))
	require.False(t, IsSentinel("000014"))
}
