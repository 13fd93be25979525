// Package runner drives the event-driven run loop (spec.md §4.10): wire a
// Feed, Strategy, Converter, Broker and Journal together and pump events
// from the feed through sync/signal/convert/place/track until the feed
// closes. The single-run loop is the teacher's internal/engine.Engine's
// manageMarkets select-over-channels shape collapsed onto one channel;
// RunMany's goroutine-per-run fan-out mirrors Engine.Start's
// goroutine-per-subsystem pattern.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"roboquant/internal/broker"
	"roboquant/internal/converter"
	"roboquant/internal/feed"
	"roboquant/internal/journal"
	"roboquant/internal/strategy"
	"roboquant/pkg/account"
	"roboquant/pkg/timeframe"
)

// Spec describes one run's wiring. Feed may be shared read-only across
// concurrent runs (spec.md §5); Strategy, Converter, Broker and Journal
// must each be private to one run unless documented otherwise (a shared
// MetricsLogger behind a journal.MultiRunJournal is the one exception).
type Spec struct {
	Name      string
	Feed      feed.Feed
	Strategy  strategy.Strategy
	Converter converter.Converter
	Broker    broker.Broker
	Journal   journal.Journal
	Timeframe *timeframe.Timeframe // nil = feed's own timeframe
	Capacity  int                  // 0 = feed.DefaultCapacity
	Logger    *slog.Logger
}

// Run executes one event-driven run to completion: it starts spec.Feed's
// Play in a background goroutine, then pumps every event it produces
// through Broker.Sync → Strategy.CreateSignals → Converter.Convert →
// Broker.Place → Journal.Track, returning the last account snapshot
// observed. Run blocks until the feed closes its channel or ctx is
// cancelled.
func Run(ctx context.Context, spec Spec) (account.Account, error) {
	logger := spec.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "runner", "run", runName(spec.Name))

	tf := spec.Feed.Timeframe()
	if spec.Timeframe != nil {
		tf = *spec.Timeframe
	}
	capacity := spec.Capacity
	if capacity <= 0 {
		capacity = feed.DefaultCapacity
	}

	ch := feed.NewEventChannel(capacity, tf)

	// ch.Close is only ever called by spec.Feed.Play itself (the producer) —
	// EventChannel.Send/Close must share one goroutine, per channel.go's
	// contract. Run only ever reads.
	go spec.Feed.Play(ctx, ch)

	defer func() {
		if err := spec.Broker.Close(); err != nil {
			logger.Error("broker close failed", "error", err)
		}
		if spec.Journal != nil {
			if err := spec.Journal.Close(); err != nil {
				logger.Error("journal close failed", "error", err)
			}
		}
	}()

	var last account.Account
	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		default:
		}

		event, ok := ch.Receive()
		if !ok {
			return last, nil
		}

		acc := spec.Broker.Sync(event)
		signals := spec.Strategy.CreateSignals(event)
		instructions := spec.Converter.Convert(signals, acc, event)
		spec.Broker.Place(instructions, event.Time)

		if spec.Journal != nil {
			spec.Journal.Track(event, acc, instructions)
		}

		last = acc
	}
}

// Result is what RunAsync/RunMany report per run.
type Result struct {
	Name    string
	Account account.Account
	Err     error
}

// RunAsync runs spec on a new goroutine and reports its outcome on the
// returned channel (buffered, exactly one send). A panic escaping Run —
// an engine invariant breach, per spec.md §7 — is recovered here and
// reported as Err rather than crashing the process, so one broken run
// never takes down a batch started via RunMany.
func RunAsync(ctx context.Context, spec Spec) <-chan Result {
	spec.Name = runName(spec.Name) // resolve once so the logged name, the recovered panic and the Result all agree
	out := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				out <- Result{Name: spec.Name, Err: fmt.Errorf("runner: run %q panicked: %v", spec.Name, r)}
			}
		}()
		acc, err := Run(ctx, spec)
		out <- Result{Name: spec.Name, Account: acc, Err: err}
	}()
	return out
}

// RunMany runs every spec concurrently and waits for all of them to
// finish. It uses a plain (non-context-propagating) errgroup.Group
// deliberately: one run's failure must not cancel its siblings (spec.md
// §5 "no ordering is implied across runs"), only RunMany's own ctx
// cancellation should stop the batch early.
func RunMany(ctx context.Context, specs []Spec) []Result {
	results := make([]Result, len(specs))
	var g errgroup.Group
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			res := <-RunAsync(ctx, spec)
			results[i] = res
			return nil
		})
	}
	g.Wait()
	return results
}

func runName(name string) string {
	if name != "" {
		return name
	}
	return uuid.NewString()
}
