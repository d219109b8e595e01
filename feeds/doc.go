// Package feeds contains the upstream gateways: the GTFS-Realtime
// vehicle-positions decoder, the SIRI StopMonitoring predictions normalizer,
// the weather client and the agency line/pattern client.
//
// Every gateway performs one fresh upstream round trip per call and never
// retries internally; the caller's own poll cadence is the retry mechanism.
// Call-level failures propagate as explicit errors from the taxonomy in
// errors.go, never as an empty-but-successful result. Record-level
// malformations (a single visit or entity missing required fields) are
// recovered locally by skipping the record.
package feeds
