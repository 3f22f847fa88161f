// Package cost prices model calls. [ModelCost] holds per-token rates and
// turns the usage reported with a completion into an estimated USD amount,
// which the client records as a metric and log attribute.
package cost
