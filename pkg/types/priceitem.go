package types

import "math"

// PriceKind selects which facet of a PriceItem to read via GetPrice.
// Unknown kinds fall back to DEFAULT, per spec.md §3.
type PriceKind string

const (
	PriceDefault  PriceKind = "DEFAULT"
	PriceOpen     PriceKind = "OPEN"
	PriceHigh     PriceKind = "HIGH"
	PriceLow      PriceKind = "LOW"
	PriceClose    PriceKind = "CLOSE"
	PriceTypical  PriceKind = "TYPICAL" // (H+L+C)/3
	PriceMean     PriceKind = "MEAN"    // (H+L)/2
	PriceAsk      PriceKind = "ASK"
	PriceBid      PriceKind = "BID"
	PriceWeighted PriceKind = "WEIGHTED" // size-weighted mid of bid/ask
)

// PriceItem is the sum type of market observations the engine understands.
// Every variant can report its Asset and a price for any PriceKind; an
// unsupported kind returns the variant's own notion of DEFAULT.
type PriceItem interface {
	Asset() Asset
	GetPrice(kind PriceKind) float64
	GetVolume() float64 // NaN when not reported
}

// PriceBar is an OHLCV observation spanning some duration (a candle).
type PriceBar struct {
	AssetValue Asset
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64 // may be NaN
	Span       PriceSpan
}

// PriceSpan describes how long a PriceBar covers, e.g. 1 minute, 1 day.
type PriceSpan struct {
	Amount int
	Unit   string // "s", "m", "h", "d"
}

func (b PriceBar) Asset() Asset { return b.AssetValue }

func (b PriceBar) GetPrice(kind PriceKind) float64 {
	switch kind {
	case PriceOpen:
		return b.Open
	case PriceHigh:
		return b.High
	case PriceLow:
		return b.Low
	case PriceTypical:
		return (b.High + b.Low + b.Close) / 3
	case PriceMean:
		return (b.High + b.Low) / 2
	case PriceClose, PriceDefault:
		return b.Close
	default:
		return b.Close
	}
}

func (b PriceBar) GetVolume() float64 { return b.Volume }

// TradePrice is a single executed trade print.
type TradePrice struct {
	AssetValue Asset
	Price      float64
	Volume     float64 // may be NaN
}

func (t TradePrice) Asset() Asset                   { return t.AssetValue }
func (t TradePrice) GetPrice(kind PriceKind) float64 { return t.Price }
func (t TradePrice) GetVolume() float64              { return t.Volume }

// PriceQuote is a top-of-book bid/ask quote.
type PriceQuote struct {
	AssetValue Asset
	Ask        float64
	AskSize    float64
	Bid        float64
	BidSize    float64
}

func (q PriceQuote) Asset() Asset { return q.AssetValue }

func (q PriceQuote) GetPrice(kind PriceKind) float64 {
	switch kind {
	case PriceAsk:
		return q.Ask
	case PriceBid:
		return q.Bid
	case PriceWeighted:
		totalSize := q.AskSize + q.BidSize
		if totalSize == 0 {
			return (q.Ask + q.Bid) / 2
		}
		// size-weighted toward the side with less depth, the classic
		// microprice formulation.
		return (q.Ask*q.BidSize + q.Bid*q.AskSize) / totalSize
	case PriceDefault:
		return (q.Ask + q.Bid) / 2
	default:
		return (q.Ask + q.Bid) / 2
	}
}

func (q PriceQuote) GetVolume() float64 { return math.NaN() }

// OrderBookEntry is a single price/size level.
type OrderBookEntry struct {
	Price float64
	Size  float64
}

// OrderBook is a multi-level view of resting liquidity.
type OrderBook struct {
	AssetValue Asset
	Asks       []OrderBookEntry // ascending by price
	Bids       []OrderBookEntry // descending by price
}

func (b OrderBook) Asset() Asset { return b.AssetValue }

func (b OrderBook) GetPrice(kind PriceKind) float64 {
	var bestAsk, bestBid float64
	if len(b.Asks) > 0 {
		bestAsk = b.Asks[0].Price
	}
	if len(b.Bids) > 0 {
		bestBid = b.Bids[0].Price
	}
	switch kind {
	case PriceAsk:
		return bestAsk
	case PriceBid:
		return bestBid
	case PriceWeighted:
		var askSize, bidSize float64
		if len(b.Asks) > 0 {
			askSize = b.Asks[0].Size
		}
		if len(b.Bids) > 0 {
			bidSize = b.Bids[0].Size
		}
		totalSize := askSize + bidSize
		if totalSize == 0 {
			return (bestAsk + bestBid) / 2
		}
		return (bestAsk*bidSize + bestBid*askSize) / totalSize
	case PriceDefault:
		return (bestAsk + bestBid) / 2
	default:
		return (bestAsk + bestBid) / 2
	}
}

func (b OrderBook) GetVolume() float64 { return math.NaN() }
