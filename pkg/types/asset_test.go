package types

import "testing"

func TestAssetSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []Asset{
		NewAsset("AAPL", AssetStock, USD),
		NewAsset("EUR/USD", AssetForex, USD).WithExchange("FX"),
		NewAsset("BTC", AssetCrypto, USD).WithMultiplier(0.5),
	}

	for _, want := range cases {
		s := want.Serialize()
		got, err := DeserializeAsset(s)
		if err != nil {
			t.Fatalf("DeserializeAsset(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestAssetEquality(t *testing.T) {
	t.Parallel()

	a := NewAsset("AAPL", AssetStock, USD)
	b := NewAsset("AAPL", AssetStock, USD)
	c := NewAsset("AAPL", AssetStock, EUR)

	if a != b {
		t.Errorf("identical assets should be equal")
	}
	if a == c {
		t.Errorf("assets differing by currency should not be equal")
	}
}
