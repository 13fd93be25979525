package strategy

import "testing"

func TestRandomIsDeterministicForFixedSeed(t *testing.T) {
	t.Parallel()
	r1 := NewRandom(0.5, 42)
	r2 := NewRandom(0.5, 42)

	for i := 0; i < 10; i++ {
		s1 := r1.CreateSignals(priceEvent(100))
		s2 := r2.CreateSignals(priceEvent(100))
		if len(s1) != len(s2) {
			t.Fatalf("same seed produced different signal counts: %d vs %d", len(s1), len(s2))
		}
		for i := range s1 {
			if s1[i] != s2[i] {
				t.Fatalf("same seed produced different signals: %+v vs %+v", s1[i], s2[i])
			}
		}
	}
}

func TestRandomResetReplaysSameSequence(t *testing.T) {
	t.Parallel()
	r := NewRandom(0.5, 7)
	first := r.CreateSignals(priceEvent(100))
	r.CreateSignals(priceEvent(100))
	r.Reset()
	afterReset := r.CreateSignals(priceEvent(100))

	if len(first) != len(afterReset) {
		t.Fatalf("reset should replay the original sequence, counts differ: %d vs %d", len(first), len(afterReset))
	}
}
