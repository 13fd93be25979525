// Package order models the Order sum type: single-leg Market/Limit/
// Stop/StopLimit/Trail orders, the composite Bracket order, and the
// Cancel/Update modifiers that target an already-placed order. Style
// follows the teacher's string-backed enum-with-method-table pattern
// (types.OrderType / types.Side in the teacher repo) generalized into a
// sealed-interface sum type, since Go has no native union type.
package order

import (
	"fmt"
	"time"

	"roboquant/pkg/types"
)

// TIFKind enumerates time-in-force policies.
type TIFKind string

const (
	GTC TIFKind = "GTC" // good till cancelled
	DAY TIFKind = "DAY" // expires at end of trading day
	IOC TIFKind = "IOC" // immediate-or-cancel: fill what's available now, cancel rest
	FOK TIFKind = "FOK" // fill-or-kill: fill entirely now or cancel
	GTD TIFKind = "GTD" // good till date
)

// TimeInForce pairs a TIFKind with its GTD expiry, when applicable.
type TimeInForce struct {
	Kind    TIFKind
	Expires time.Time // only meaningful when Kind == GTD
}

func (tif TimeInForce) String() string {
	if tif.Kind == GTD {
		return fmt.Sprintf("GTD(%s)", tif.Expires.Format(time.RFC3339))
	}
	return string(tif.Kind)
}

// Order is the sealed sum type for everything that can be submitted to a
// broker: single-leg orders, the Bracket composite, and the Cancel/Update
// modifiers. Concrete types live in this package only.
type Order interface {
	fmt.Stringer
	isOrder()
}

// Leg holds the fields common to every single-asset order.
type Leg struct {
	AssetValue types.Asset
	SizeValue  types.Size // signed: positive = buy, negative = sell
	Tif        TimeInForce
	TagValue   string
}

// Asset returns the order's underlying asset.
func (l Leg) Asset() types.Asset { return l.AssetValue }

// Size returns the signed order quantity.
func (l Leg) Size() types.Size { return l.SizeValue }

// Tag returns the caller-supplied free-form label, if any.
func (l Leg) Tag() string { return l.TagValue }

// MarketOrder executes immediately at the prevailing price.
type MarketOrder struct {
	Leg
}

func NewMarketOrder(asset types.Asset, size types.Size) MarketOrder {
	return MarketOrder{Leg{AssetValue: asset, SizeValue: size, Tif: TimeInForce{Kind: GTC}}}
}

func (MarketOrder) isOrder() {}
func (o MarketOrder) String() string {
	return fmt.Sprintf("MarketOrder(%s, %s, tif=%s)", o.AssetValue, o.SizeValue, o.Tif)
}

// LimitOrder executes only at Limit or better.
type LimitOrder struct {
	Leg
	Limit float64
}

func NewLimitOrder(asset types.Asset, size types.Size, limit float64) LimitOrder {
	return LimitOrder{Leg{AssetValue: asset, SizeValue: size, Tif: TimeInForce{Kind: GTC}}, limit}
}

func (LimitOrder) isOrder() {}
func (o LimitOrder) String() string {
	return fmt.Sprintf("LimitOrder(%s, %s, limit=%.4f, tif=%s)", o.AssetValue, o.SizeValue, o.Limit, o.Tif)
}

// StopOrder triggers a market order once the stop price is touched.
type StopOrder struct {
	Leg
	Stop float64
}

func NewStopOrder(asset types.Asset, size types.Size, stop float64) StopOrder {
	return StopOrder{Leg{AssetValue: asset, SizeValue: size, Tif: TimeInForce{Kind: GTC}}, stop}
}

func (StopOrder) isOrder() {}
func (o StopOrder) String() string {
	return fmt.Sprintf("StopOrder(%s, %s, stop=%.4f, tif=%s)", o.AssetValue, o.SizeValue, o.Stop, o.Tif)
}

// StopLimitOrder triggers a limit order once the stop price is touched.
type StopLimitOrder struct {
	Leg
	Stop  float64
	Limit float64
}

func NewStopLimitOrder(asset types.Asset, size types.Size, stop, limit float64) StopLimitOrder {
	return StopLimitOrder{Leg{AssetValue: asset, SizeValue: size, Tif: TimeInForce{Kind: GTC}}, stop, limit}
}

func (StopLimitOrder) isOrder() {}
func (o StopLimitOrder) String() string {
	return fmt.Sprintf("StopLimitOrder(%s, %s, stop=%.4f, limit=%.4f, tif=%s)",
		o.AssetValue, o.SizeValue, o.Stop, o.Limit, o.Tif)
}

// TrailArmOn resolves spec.md §9(c): a trailing stop needs a starting
// instant to begin tracking its extremum from. Acceptance (the zero
// value, and the default) starts tracking the moment the order is
// accepted, even before any price has been observed for it this run;
// FirstPrice instead waits for the first event that reports a price for
// the asset.
type TrailArmOn int

const (
	ArmOnAcceptance TrailArmOn = iota
	ArmOnFirstPrice
)

// TrailOrder tracks the best price seen since arming and triggers a
// market order once price retraces by Percent from that extremum.
type TrailOrder struct {
	Leg
	Percent float64
	ArmOn   TrailArmOn
}

// NewTrailOrder builds a TrailOrder that arms on acceptance. Use
// WithArmOn to arm on the first observed price instead.
func NewTrailOrder(asset types.Asset, size types.Size, percent float64) TrailOrder {
	return TrailOrder{Leg{AssetValue: asset, SizeValue: size, Tif: TimeInForce{Kind: GTC}}, percent, ArmOnAcceptance}
}

// WithArmOn returns a copy of the order with a different arm point.
func (o TrailOrder) WithArmOn(armOn TrailArmOn) TrailOrder {
	o.ArmOn = armOn
	return o
}

func (TrailOrder) isOrder() {}
func (o TrailOrder) String() string {
	return fmt.Sprintf("TrailOrder(%s, %s, trail=%.4f%%, armOn=%d, tif=%s)", o.AssetValue, o.SizeValue, o.Percent*100, o.ArmOn, o.Tif)
}

// BracketOrder bundles an entry order with a take-profit and a stop-loss
// leg; the two exit legs are OCO (one-cancels-other) and only activate
// once the entry completes.
type BracketOrder struct {
	Entry      Order
	TakeProfit Order
	StopLoss   Order
	TagValue   string
}

func NewBracketOrder(entry, takeProfit, stopLoss Order) BracketOrder {
	return BracketOrder{Entry: entry, TakeProfit: takeProfit, StopLoss: stopLoss}
}

func (BracketOrder) isOrder() {}
func (o BracketOrder) Tag() string { return o.TagValue }
func (o BracketOrder) String() string {
	return fmt.Sprintf("BracketOrder(entry=%s, tp=%s, sl=%s)", o.Entry, o.TakeProfit, o.StopLoss)
}

// CancelOrder requests cancellation of an already-placed, still-open order.
type CancelOrder struct {
	Target types.OrderID
}

func NewCancelOrder(target types.OrderID) CancelOrder { return CancelOrder{Target: target} }

func (CancelOrder) isOrder()          {}
func (o CancelOrder) String() string { return fmt.Sprintf("CancelOrder(%s)", o.Target) }

// UpdateOrder replaces an already-placed, still-open order with a new
// specification (typically adjusting limit/stop price or size).
type UpdateOrder struct {
	Target      types.OrderID
	Replacement Order
}

func NewUpdateOrder(target types.OrderID, replacement Order) UpdateOrder {
	return UpdateOrder{Target: target, Replacement: replacement}
}

func (UpdateOrder) isOrder() {}
func (o UpdateOrder) String() string {
	return fmt.Sprintf("UpdateOrder(%s -> %s)", o.Target, o.Replacement)
}

// IsModifier reports whether ord targets an existing order rather than
// opening a new one.
func IsModifier(ord Order) bool {
	switch ord.(type) {
	case CancelOrder, UpdateOrder:
		return true
	default:
		return false
	}
}
