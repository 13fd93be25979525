// Package timeseries pairs a strictly ordered timeframe.Timeline with a
// float64 value per timestamp, and provides the elementwise arithmetic
// and statistics used by strategies and performance metrics.
package timeseries

import (
	"math"
	"math/rand"
	"sort"

	"roboquant/pkg/timeframe"
)

// TimeSeries is an ordered sequence of (timestamp, value) pairs. The
// Times and Values slices always have equal length and Times is strictly
// increasing.
type TimeSeries struct {
	Times  timeframe.Timeline
	Values []float64
}

// New builds a TimeSeries from parallel, already-sorted-by-time slices.
// It panics if the lengths differ or Times is not strictly increasing —
// callers are expected to have produced these from a single ordered
// source (an Event stream or another TimeSeries).
func New(times timeframe.Timeline, values []float64) TimeSeries {
	if len(times) != len(values) {
		panic("timeseries: times and values length mismatch")
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			panic("timeseries: times must be strictly increasing")
		}
	}
	return TimeSeries{Times: times, Values: values}
}

// Len returns the number of observations.
func (ts TimeSeries) Len() int { return len(ts.Values) }

// Empty reports whether the series has no observations.
func (ts TimeSeries) Empty() bool { return len(ts.Values) == 0 }

// Last returns the most recent value. Panics on an empty series.
func (ts TimeSeries) Last() float64 { return ts.Values[len(ts.Values)-1] }

// Timeframe returns the timeframe covered by the series.
func (ts TimeSeries) Timeframe() timeframe.Timeframe { return ts.Times.Timeframe() }

func (ts TimeSeries) elementwise(other TimeSeries, op func(a, b float64) float64) TimeSeries {
	n := ts.Len()
	if other.Len() < n {
		n = other.Len()
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = op(ts.Values[i], other.Values[i])
	}
	return New(ts.Times[:n], out)
}

// Add returns the elementwise sum, truncated to the shorter series.
func (ts TimeSeries) Add(other TimeSeries) TimeSeries {
	return ts.elementwise(other, func(a, b float64) float64 { return a + b })
}

// Sub returns the elementwise difference, truncated to the shorter series.
func (ts TimeSeries) Sub(other TimeSeries) TimeSeries {
	return ts.elementwise(other, func(a, b float64) float64 { return a - b })
}

// Mul returns the elementwise product, truncated to the shorter series.
func (ts TimeSeries) Mul(other TimeSeries) TimeSeries {
	return ts.elementwise(other, func(a, b float64) float64 { return a * b })
}

// MulScalar multiplies every value by factor.
func (ts TimeSeries) MulScalar(factor float64) TimeSeries {
	out := make([]float64, ts.Len())
	for i, v := range ts.Values {
		out[i] = v * factor
	}
	return New(ts.Times, out)
}

// Returns computes the simple period-over-period return series:
// (v[i] - v[i-1]) / v[i-1]. One element shorter than the source.
func (ts TimeSeries) Returns() TimeSeries {
	if ts.Len() < 2 {
		return New(nil, nil)
	}
	out := make([]float64, ts.Len()-1)
	for i := 1; i < ts.Len(); i++ {
		out[i-1] = (ts.Values[i] - ts.Values[i-1]) / ts.Values[i-1]
	}
	return New(ts.Times[1:], out)
}

// GrowthRates computes v[i] / v[i-1] for each step. One element shorter
// than the source.
func (ts TimeSeries) GrowthRates() TimeSeries {
	if ts.Len() < 2 {
		return New(nil, nil)
	}
	out := make([]float64, ts.Len()-1)
	for i := 1; i < ts.Len(); i++ {
		out[i-1] = ts.Values[i] / ts.Values[i-1]
	}
	return New(ts.Times[1:], out)
}

// Normalize rescales the series so the first value becomes 1.0.
func (ts TimeSeries) Normalize() TimeSeries {
	if ts.Empty() {
		return ts
	}
	base := ts.Values[0]
	out := make([]float64, ts.Len())
	for i, v := range ts.Values {
		out[i] = v / base
	}
	return New(ts.Times, out)
}

// Clean drops observations whose value is NaN or +/-Inf.
func (ts TimeSeries) Clean() TimeSeries {
	var times timeframe.Timeline
	var values []float64
	for i, v := range ts.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		times = append(times, ts.Times[i])
		values = append(values, v)
	}
	return New(times, values)
}

// Min returns the smallest value. Panics on an empty series.
func (ts TimeSeries) Min() float64 {
	m := ts.Values[0]
	for _, v := range ts.Values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value. Panics on an empty series.
func (ts TimeSeries) Max() float64 {
	m := ts.Values[0]
	for _, v := range ts.Values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Average returns the arithmetic mean. Panics on an empty series.
func (ts TimeSeries) Average() float64 {
	sum := 0.0
	for _, v := range ts.Values {
		sum += v
	}
	return sum / float64(ts.Len())
}

// StdDev returns the population standard deviation.
func (ts TimeSeries) StdDev() float64 {
	if ts.Len() < 2 {
		return 0
	}
	mean := ts.Average()
	var sumSq float64
	for _, v := range ts.Values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(ts.Len()))
}

// Shuffle returns a new series with Values permuted randomly while
// keeping the original Times — used for bootstrap-style resampling in
// strategy robustness tests, never for production performance reporting.
func (ts TimeSeries) Shuffle(rng *rand.Rand) TimeSeries {
	values := make([]float64, ts.Len())
	copy(values, ts.Values)
	rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	return New(ts.Times, values)
}

// GroupBy buckets the series into `period`-wide windows (via
// timeframe.Timeline.ToTimeline semantics) and reduces each bucket with
// reduce (e.g. last value, average, max).
func (ts TimeSeries) GroupBy(period timeframe.Timeline, reduce func([]float64) float64) TimeSeries {
	if ts.Empty() || len(period) == 0 {
		return New(nil, nil)
	}
	buckets := make([][]float64, len(period))
	idx := sort.Search(len(period), func(i int) bool { return !period[i].Before(ts.Times[0]) })
	for i, t := range ts.Times {
		for idx < len(period)-1 && !t.Before(period[idx+1]) {
			idx++
		}
		buckets[idx] = append(buckets[idx], ts.Values[i])
	}

	var outTimes timeframe.Timeline
	var outValues []float64
	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		outTimes = append(outTimes, period[i])
		outValues = append(outValues, reduce(bucket))
	}
	return New(outTimes, outValues)
}
