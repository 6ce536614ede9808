// Package pipeline drives one announcement run.
//
// The stages run as a flowgraph graph in a fixed order:
//
//	resolve -> collect -> build -> compile -> generate -> finalize
//
// A stage that hits a terminal outcome marks the run done and the remaining
// stages are skipped. The whole run is bounded by Config.RunTimeout; an
// overrun reports StatusError and no artifact.
//
// Status mapping:
//   - success: an artifact passed validation
//   - partial: the model output failed validation; Report.Raw keeps it
//   - error: anything else, with a single-line Report.Diagnostic
package pipeline
