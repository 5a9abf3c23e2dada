// Package build implements the build context, builder groups, the
// build planner's funding fixed point, and the caller-facing intent
// factories (spec §3, §4.3, §4.4).
//
// The context's growing wire.MsgTx plus consumed-coin set plus
// memento-style snapshot/restore is grounded on internal/storage's
// Load/snapshot-and-restore idiom and internal/spectrum's/
// internal/fluidtokens's options-struct-per-build-call shape with a
// deep-copy-before-mutate pattern, adapted from Cardano tx assembly to
// wire.MsgTx assembly.
package build

import "fmt"

// ErrInsufficientFunds carries the group name and the amount still
// missing (spec §7: "Insufficient funds").
type ErrInsufficientFunds struct {
	Group   string
	Missing string
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("build: insufficient funds in group %q: missing %s", e.Group, e.Missing)
}

// ErrNotFound covers a missing coin or key, optionally naming the
// outpoint and input index (spec §7: "Not found (coin, key)").
type ErrNotFound struct {
	Kind     string // "coin" or "key"
	Outpoint string
	Input    int
}

func (e *ErrNotFound) Error() string {
	if e.Outpoint != "" {
		return fmt.Sprintf("build: %s not found for input %d (%s)", e.Kind, e.Input, e.Outpoint)
	}
	return fmt.Sprintf("build: %s not found", e.Kind)
}

// ErrConfiguration covers the configuration-class failures named in
// spec §7: a missing change script when change is material, mixing
// OP-RETURN owners, issuing a second asset id, or queuing a
// non-exchange asset intent before an exchange operation.
type ErrConfiguration struct {
	Reason string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("build: configuration error: %s", e.Reason)
}
