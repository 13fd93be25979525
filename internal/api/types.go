// Package api exposes a read-only HTTP+WebSocket query surface over an
// internal/journal.MetricsLogger: GET /runs, GET /metrics?name=&run=, and a
// /ws stream of live metric events. It carries no templates or static
// assets — a dashboard UI is out of scope — only the JSON/WS data a UI
// would consume.
package api

import "time"

// MetricSeries is the JSON shape of a GET /metrics response.
type MetricSeries struct {
	Name   string    `json:"name"`
	Run    string    `json:"run"`
	Times  []time.Time `json:"times"`
	Values []float64   `json:"values"`
}

// RunsResponse is the JSON shape of GET /runs.
type RunsResponse struct {
	Runs    []string `json:"runs"`
	Metrics []string `json:"metrics"`
}
