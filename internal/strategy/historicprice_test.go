package strategy

import (
	"testing"

	"roboquant/pkg/types"
)

func TestHistoricPriceWindowFiresAtCapacity(t *testing.T) {
	t.Parallel()
	var fires int
	var lastWindow []float64
	hp := NewHistoricPrice(3, func(asset types.Asset, window []float64) {
		fires++
		lastWindow = append([]float64(nil), window...)
	})

	for _, p := range []float64{1, 2} {
		hp.Update(priceEvent(p))
	}
	if fires != 0 {
		t.Fatalf("should not fire before window reaches capacity, fired %d times", fires)
	}

	hp.Update(priceEvent(3))
	if fires != 1 {
		t.Fatalf("expected exactly one fire at capacity, got %d", fires)
	}
	if len(lastWindow) != 3 || lastWindow[2] != 3 {
		t.Fatalf("unexpected window contents: %v", lastWindow)
	}

	hp.Update(priceEvent(4))
	if fires != 2 {
		t.Fatalf("expected a fire on every update once at capacity, got %d", fires)
	}
	if lastWindow[0] != 2 || lastWindow[2] != 4 {
		t.Fatalf("sliding window should drop the oldest value: %v", lastWindow)
	}
}

func TestHistoricPriceReset(t *testing.T) {
	t.Parallel()
	fires := 0
	hp := NewHistoricPrice(2, func(types.Asset, []float64) { fires++ })
	hp.Update(priceEvent(1))
	hp.Update(priceEvent(2))
	if fires != 1 {
		t.Fatalf("expected 1 fire before reset, got %d", fires)
	}
	hp.Reset()
	if len(hp.Window(testAsset)) != 0 {
		t.Fatal("reset should clear the window")
	}
}
