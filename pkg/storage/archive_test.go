package storage

import (
	"bytes"
	"testing"

	"github.com/minjcho/cowlick/pkg/schema"
)

func newArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := NewArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestInstanceRoundTrip(t *testing.T) {
	a := newArchive(t)
	raw := []byte(`{"id":"42","orders":[]}`)

	if err := a.SaveInstance("42", raw); err != nil {
		t.Fatalf("SaveInstance: %v", err)
	}
	got, ok, err := a.LoadInstance("42")
	if err != nil || !ok {
		t.Fatalf("LoadInstance = (ok=%v, err=%v)", ok, err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("instance = %s, want %s", got, raw)
	}

	if _, ok, err := a.LoadInstance("missing"); err != nil || ok {
		t.Errorf("unknown id = (ok=%v, err=%v), want (false, nil)", ok, err)
	}
}

func TestSolutionRoundTrip(t *testing.T) {
	a := newArchive(t)
	amount := "100"
	resp := &schema.SolveResponse{Solutions: []schema.Solution{{
		Prices: map[string]string{"0xa0": "1"},
		Trades: []schema.Trade{{
			Kind:           schema.TradeFulfillment,
			Order:          "0xaa",
			ExecutedAmount: &amount,
		}},
		Interactions: []schema.Interaction{},
	}}}

	if err := a.SaveSolution("42", resp); err != nil {
		t.Fatalf("SaveSolution: %v", err)
	}
	got, ok, err := a.LoadSolution("42")
	if err != nil || !ok {
		t.Fatalf("LoadSolution = (ok=%v, err=%v)", ok, err)
	}
	if len(got.Solutions) != 1 || len(got.Solutions[0].Trades) != 1 {
		t.Fatalf("solution shape = %+v", got)
	}
	tr := got.Solutions[0].Trades[0]
	if tr.Order != "0xaa" || tr.ExecutedAmount == nil || *tr.ExecutedAmount != "100" {
		t.Errorf("trade = %+v", tr)
	}

	if _, ok, err := a.LoadSolution("missing"); err != nil || ok {
		t.Errorf("unknown id = (ok=%v, err=%v), want (false, nil)", ok, err)
	}
}

func TestListInstanceIDs(t *testing.T) {
	a := newArchive(t)
	for _, id := range []string{"3", "1", "2"} {
		if err := a.SaveInstance(id, []byte(`{}`)); err != nil {
			t.Fatalf("SaveInstance(%s): %v", id, err)
		}
	}
	// Solutions must not leak into the instance listing.
	if err := a.SaveSolution("1", &schema.SolveResponse{}); err != nil {
		t.Fatalf("SaveSolution: %v", err)
	}

	ids, err := a.ListInstanceIDs()
	if err != nil {
		t.Fatalf("ListInstanceIDs: %v", err)
	}
	want := []string{"1", "2", "3"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestSaveInstanceOverwrites(t *testing.T) {
	a := newArchive(t)
	if err := a.SaveInstance("42", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("SaveInstance: %v", err)
	}
	if err := a.SaveInstance("42", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("SaveInstance: %v", err)
	}
	got, ok, err := a.LoadInstance("42")
	if err != nil || !ok {
		t.Fatalf("LoadInstance = (ok=%v, err=%v)", ok, err)
	}
	if !bytes.Equal(got, []byte(`{"v":2}`)) {
		t.Errorf("instance = %s, want the overwritten value", got)
	}
}
