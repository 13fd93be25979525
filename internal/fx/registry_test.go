package fx

import (
	"testing"
	"time"

	"roboquant/pkg/types"
)

func TestRegistryConvertSameCurrency(t *testing.T) {
	t.Parallel()
	r := New()
	amt := types.NewAmount(types.USD, 100)
	got, err := r.Convert(amt, types.USD, time.Now())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got.Float64() != 100 {
		t.Errorf("identity conversion changed value: %v", got)
	}
}

func TestRegistryConvertMissingRate(t *testing.T) {
	t.Parallel()
	r := New()
	_, err := r.Convert(types.NewAmount(types.EUR, 10), types.USD, time.Now())
	if err == nil {
		t.Fatal("expected error for unregistered pair")
	}
}

func TestRegistryConvertRegisteredRate(t *testing.T) {
	t.Parallel()
	r := New()
	r.Register(types.EUR, types.USD, 1.1)

	got, err := r.Convert(types.NewAmount(types.EUR, 100), types.USD, time.Now())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got.Float64() != 110 {
		t.Errorf("converted = %v, want 110", got.Float64())
	}
}

func TestRegistryConcurrentReadsDuringRegister(t *testing.T) {
	t.Parallel()
	r := New()
	r.Register(types.EUR, types.USD, 1.0)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			r.Register(types.EUR, types.USD, float64(i))
		}
		close(done)
	}()

	for i := 0; i < 100; i++ {
		if _, err := r.Convert(types.NewAmount(types.EUR, 1), types.USD, time.Now()); err != nil {
			t.Fatalf("Convert: %v", err)
		}
	}
	<-done
}
