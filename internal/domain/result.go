package domain

import "time"

// ExecutionResult records the outcome of one exchange's slip pipeline.
// Success means the pipeline returned without an error escaping it; it says
// nothing about whether a sell leg actually happened.
type ExecutionResult struct {
	Exchange string
	Success  bool
}

// ExecutionSummary aggregates the per-exchange results of a single run, in
// execution order. It is built once per run, handed to the notification
// reporter, and discarded.
type ExecutionSummary struct {
	Results   []ExecutionResult
	Timestamp time.Time
}
