package strategy

import "testing"

func TestNewRSIValidatesThresholds(t *testing.T) {
	t.Parallel()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on invalid thresholds")
		}
	}()
	NewRSI(14, 80, 70) // low > high: invalid
}

func TestRSIEmitsSellOnSustainedRise(t *testing.T) {
	t.Parallel()
	rsi := NewRSI(5, 30, 70)
	prices := []float64{100, 101, 102, 103, 104, 105, 106, 107}
	var signals []Signal
	for _, p := range prices {
		signals = append(signals, rsi.CreateSignals(priceEvent(p))...)
	}
	if len(signals) == 0 {
		t.Fatal("expected an overbought SELL signal after a sustained rise")
	}
	for _, s := range signals {
		if s.Rating >= 0 {
			t.Errorf("expected a bearish (negative) signal in an overbought rise, got %v", s.Rating)
		}
	}
}
