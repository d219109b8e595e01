// Package dashboard is the client-side half of the tracker: a cooperative
// single-goroutine sync loop polling the upstream gateways on independent
// cadences, a diff-based vehicle marker reconciler, and the stop-selection
// state machine.
//
// All display state lives in one explicit State value owned by the
// Controller. Tasks are failure isolated: an error in one poll writes an
// error placeholder into that task's region and never stops or delays the
// others. Region updates are pushed to connected websocket clients as typed
// messages.
package dashboard
