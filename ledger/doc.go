// Package ledger drives operation submission against an external
// bundler network: a bounded execute/watch/replace state machine that
// survives stalled confirmations, and a defensive decoder that turns
// transport failures into typed, inspectable outcomes.
package ledger
