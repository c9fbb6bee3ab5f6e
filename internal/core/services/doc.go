// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// PointLifecycle owns the open exam session. Its collection lives in a
// PointStore and is only ever replaced whole, so commits that resolve
// while the operator keeps working never observe a half-applied change.
package services
