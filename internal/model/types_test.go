package model

import (
	"encoding/json"
	"testing"
)

func TestNodeIDJSON(t *testing.T) {
	b, err := json.Marshal(Depot())
	if err != nil || string(b) != `"depot"` {
		t.Fatalf("depot marshals to %s (%v)", b, err)
	}
	b, err = json.Marshal(PitNode(1001))
	if err != nil || string(b) != `1001` {
		t.Fatalf("pit marshals to %s (%v)", b, err)
	}

	var n NodeID
	if err := json.Unmarshal([]byte(`"depot"`), &n); err != nil || !n.IsDepot {
		t.Fatalf("depot unmarshal: %+v (%v)", n, err)
	}
	if err := json.Unmarshal([]byte(`42`), &n); err != nil || n.IsDepot || n.Pit != 42 {
		t.Fatalf("pit unmarshal: %+v (%v)", n, err)
	}
	if err := json.Unmarshal([]byte(`"warehouse"`), &n); err == nil {
		t.Fatal("unknown sentinel must fail")
	}
	if err := json.Unmarshal([]byte(`1.5`), &n); err == nil {
		t.Fatal("fractional id must fail")
	}
}

func TestParseTier(t *testing.T) {
	cases := map[string]Tier{
		"HIGH":    TierHigh,
		" high ":  TierHigh,
		"Medium":  TierMedium,
		"LOW":     TierLow,
		"unknown": TierLow,
		"":        TierLow,
	}
	for in, want := range cases {
		if got := ParseTier(in); got != want {
			t.Errorf("ParseTier(%q) = %s, want %s", in, got, want)
		}
	}
	if !(TierHigh.Rank() < TierMedium.Rank() && TierMedium.Rank() < TierLow.Rank()) {
		t.Fatal("tier ranks out of order")
	}
}

func TestTruckKey(t *testing.T) {
	if got := (Truck{ID: 3}).Key(); got != "truck_3" {
		t.Fatalf("key: got %q", got)
	}
}
