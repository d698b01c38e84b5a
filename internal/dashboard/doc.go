// Package dashboard computes the console's summary metrics from the full
// conversation and document lists. Nothing is cached: every page view
// fetches both lists again.
package dashboard
