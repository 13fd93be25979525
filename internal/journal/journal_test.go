package journal

import (
	"testing"
	"time"

	"roboquant/pkg/account"
	"roboquant/pkg/timeframe"
	"roboquant/pkg/types"
)

var testAsset = types.NewAsset("TEST", types.AssetStock, types.USD)

func emptyAccount(at time.Time, cash float64) account.Account {
	return account.New(types.USD, at, types.NewWallet(types.NewAmount(types.USD, cash)), nil, nil, nil, nil, types.NewAmount(types.USD, cash))
}

func TestMemoryLoggerAccumulatesPerRun(t *testing.T) {
	t.Parallel()
	l := NewMemoryLogger()
	at := time.Now()

	l.Start("run-a", timeframe.Infinite(at))
	l.Log(map[string]float64{"x": 1}, at, "run-a")
	l.Log(map[string]float64{"x": 2}, at.Add(time.Minute), "run-a")
	l.End("run-a")

	ts := l.GetMetric("x", "run-a")
	if ts.Len() != 2 {
		t.Fatalf("expected 2 observations, got %d", ts.Len())
	}
	if ts.Last() != 2 {
		t.Errorf("expected last value 2, got %v", ts.Last())
	}
	if names := l.GetMetricNames(); len(names) != 1 || names[0] != "x" {
		t.Errorf("expected metric names [x], got %v", names)
	}
}

func TestMemoryLoggerDefaultsToLastLoggedRun(t *testing.T) {
	t.Parallel()
	l := NewMemoryLogger()
	at := time.Now()
	l.Log(map[string]float64{"y": 5}, at, "solo")

	if got := l.GetMetric("y").Last(); got != 5 {
		t.Errorf("expected GetMetric with no run arg to resolve to the last-logged run, got %v", got)
	}
}

func TestSkipWarmupLoggerDropsFirstNSteps(t *testing.T) {
	t.Parallel()
	inner := NewMemoryLogger()
	l := NewSkipWarmupLogger(inner, 2)
	at := time.Now()

	l.Start("run", timeframe.Infinite(at))
	for i := 0; i < 5; i++ {
		l.Log(map[string]float64{"v": float64(i)}, at.Add(time.Duration(i)*time.Minute), "run")
	}

	ts := inner.GetMetric("v", "run")
	if ts.Len() != 3 {
		t.Fatalf("expected 3 observations after skipping 2, got %d", ts.Len())
	}
	if ts.Values[0] != 2 {
		t.Errorf("expected first retained value 2, got %v", ts.Values[0])
	}
}

func TestMetricsJournalTracksAccountEquity(t *testing.T) {
	t.Parallel()
	logger := NewMemoryLogger()
	j := NewMetricsJournal(logger, "run", nil)
	at := time.Now()

	acc := emptyAccount(at, 1000)
	event := types.NewEvent(at, types.PriceBar{AssetValue: testAsset, Open: 1, High: 1, Low: 1, Close: 1})
	j.Track(event, acc, nil)
	if err := j.Close(); err != nil {
		t.Fatalf("unexpected error from Close: %v", err)
	}

	ts := logger.GetMetric("account.equity", "run")
	if ts.Len() != 1 || ts.Last() != 1000 {
		t.Fatalf("expected one equity observation of 1000, got %+v", ts)
	}
	if names := logger.Runs(); len(names) != 1 || names[0] != "run" {
		t.Errorf("expected run started, got %v", names)
	}
}

func TestMultiRunJournalIsolatesPerRun(t *testing.T) {
	t.Parallel()
	logger := NewMemoryLogger()
	mrj := NewMultiRunJournal(func(run string) Journal {
		return NewMetricsJournal(logger, run, nil)
	})

	at := time.Now()
	event := types.NewEvent(at, types.PriceBar{AssetValue: testAsset, Open: 1, High: 1, Low: 1, Close: 1})

	mrj.For("a").Track(event, emptyAccount(at, 100), nil)
	mrj.For("b").Track(event, emptyAccount(at, 200), nil)
	if mrj.For("a") != mrj.For("a") {
		t.Errorf("expected For to return the same Journal for the same run name")
	}

	if got := logger.GetMetric("account.equity", "a").Last(); got != 100 {
		t.Errorf("expected run a equity 100, got %v", got)
	}
	if got := logger.GetMetric("account.equity", "b").Last(); got != 200 {
		t.Errorf("expected run b equity 200, got %v", got)
	}
}
