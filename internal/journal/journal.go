// Package journal implements the Journal/MetricsJournal/MetricsLogger
// contract (spec.md §4.11): a Journal observes every run-loop step
// (event, account, instructions) and a MetricsJournal additionally
// reduces that step to named metrics forwarded to a MetricsLogger for
// storage and read-back. The per-run bookkeeping (a mutex-guarded map
// keyed by run name, values evicted/updated per step) follows the same
// shape as the teacher's internal/strategy.FlowTracker sliding window.
package journal

import (
	"time"

	"roboquant/pkg/account"
	"roboquant/pkg/order"
	"roboquant/pkg/timeframe"
	"roboquant/pkg/timeseries"
	"roboquant/pkg/types"
)

// Journal is notified once per run-loop step with the artefacts the
// runner just produced. Implementations must not block or panic on
// ordinary data — per spec.md §7, journal failures are logged, never
// allowed to unwind the run loop.
type Journal interface {
	Track(event types.Event, acc account.Account, instructions []order.Order)

	// Close signals that this run is complete and releases whatever this
	// Journal owns. The run loop guarantees Close is called exactly once
	// per run, on every exit path (spec.md §5 "close-on-exit on all
	// paths"), including a recovered panic.
	Close() error
}

// MetricsLogger stores and serves named numeric time series keyed by
// run. Implementations shared across concurrent runs (spec.md §5) must
// serialize their own writes; callers never take an external lock.
type MetricsLogger interface {
	// Start is called once before the first Log of a run, End once
	// after the last. Both are no-ops for loggers that need no
	// per-run setup/teardown.
	Start(run string, tf timeframe.Timeframe)
	End(run string)

	// Log records one observation per metric at the given event time.
	Log(metrics map[string]float64, at time.Time, run string)

	// GetMetric returns the named metric's time series. With no run
	// argument it uses the run most recently passed to Log (SQLiteLogger
	// also counts Start); GetMetric may return an empty TimeSeries for a
	// name/run the logger never saw.
	GetMetric(name string, run ...string) timeseries.TimeSeries
	GetMetricNames() []string
	Runs() []string

	// Close releases whatever this logger owns (a DB handle, a file). A
	// logger with no such resource implements it as a no-op; it is not a
	// substitute for End, which still runs first for any run this logger
	// started.
	Close() error
}

// MetricsJournal reduces each step into named metrics and forwards them
// to a MetricsLogger, computing the same small metric set the teacher's
// dashboard snapshot reports as a running equity/position view
// (internal/api/snapshot.go), generalized from one Polymarket market to
// an arbitrary asset universe.
type MetricsJournal struct {
	logger MetricsLogger
	run    string
	fx     types.FXConverter

	started bool
}

// NewMetricsJournal builds a MetricsJournal that reports to logger under
// run. fx may be nil, in which case account.equity is the BaseCurrency
// balance of the equity wallet, without conversion (balances held in
// other currencies are not counted). With a non-nil fx, a step whose
// EquityAmount conversion fails is logged without account.equity.
//
// Close (below) closes logger along with ending the run, so logger
// should be private to this run — e.g. a fresh journal.OpenSQLiteLogger
// per run name, the way a journal.MultiRunJournal factory typically
// builds one. A logger meant to be shared read/write across many
// concurrent runs (spec.md §5) must be driven directly by its owner
// instead of handed to a per-run MetricsJournal, since the first run to
// finish would otherwise close it out from under the others.
func NewMetricsJournal(logger MetricsLogger, run string, fx types.FXConverter) *MetricsJournal {
	return &MetricsJournal{logger: logger, run: run, fx: fx}
}

// Track computes account.equity, account.cash, account.buyingPower,
// account.positions, account.openOrders, account.instructions and one
// account.unrealizedPnL.<symbol> per held asset, then forwards them to
// the backing MetricsLogger.
func (j *MetricsJournal) Track(event types.Event, acc account.Account, instructions []order.Order) {
	if !j.started {
		j.logger.Start(j.run, timeframe.Infinite(event.Time))
		j.started = true
	}

	metrics := map[string]float64{
		"account.cash":        acc.Cash.Get(acc.BaseCurrency).Float64(),
		"account.buyingPower": acc.BuyingPower.Float64(),
		"account.positions":   float64(len(acc.AssetsHeld())),
		"account.openOrders":  float64(len(acc.OpenOrders)),
		"account.instructions": float64(len(instructions)),
	}

	if equity, err := j.equity(acc); err == nil {
		metrics["account.equity"] = equity
	}
	for _, asset := range acc.AssetsHeld() {
		metrics["account.unrealizedPnL."+asset.Symbol] = acc.Position(asset).UnrealizedPnL()
	}

	j.logger.Log(metrics, event.Time, j.run)
}

func (j *MetricsJournal) equity(acc account.Account) (float64, error) {
	if j.fx == nil {
		return acc.Equity().Get(acc.BaseCurrency).Float64(), nil
	}
	amount, err := acc.EquityAmount(j.fx)
	if err != nil {
		return 0, err
	}
	return amount.Float64(), nil
}

// Close signals the backing logger that this run is complete, then
// closes the logger itself. Implements Journal; the runner calls this
// once after its event loop ends, on every exit path.
func (j *MetricsJournal) Close() error {
	if j.started {
		j.logger.End(j.run)
	}
	return j.logger.Close()
}
