package live

import (
	"encoding/json"
	"testing"
	"time"

	"roboquant/pkg/types"
)

var testAsset = types.NewAsset("TEST", types.AssetStock, types.USD)

type jsonDecoder struct{}

type wireMsg struct {
	Skip  bool    `json:"skip"`
	Price float64 `json:"price"`
}

func (jsonDecoder) DecodeMessage(raw []byte) (types.Event, bool, error) {
	var m wireMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		return types.Event{}, false, err
	}
	if m.Skip {
		return types.Event{}, false, nil
	}
	item := types.TradePrice{AssetValue: testAsset, Price: m.Price}
	return types.NewEvent(time.Now(), item), true, nil
}

func TestDecoderSkipsNonPriceMessages(t *testing.T) {
	t.Parallel()
	dec := jsonDecoder{}

	_, ok, err := dec.DecodeMessage([]byte(`{"skip": true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected skip message to be filtered out")
	}

	event, ok, err := dec.DecodeMessage([]byte(`{"price": 101.5}`))
	if err != nil || !ok {
		t.Fatalf("expected a decoded event, got ok=%v err=%v", ok, err)
	}
	if price, found := event.GetPrice(testAsset, types.PriceDefault); !found || price != 101.5 {
		t.Errorf("unexpected decoded price: %v (found=%v)", price, found)
	}
}

func TestDecoderRejectsMalformedMessage(t *testing.T) {
	t.Parallel()
	dec := jsonDecoder{}
	if _, _, err := dec.DecodeMessage([]byte(`not json`)); err == nil {
		t.Fatal("expected an error decoding malformed JSON")
	}
}
