package segmo

import "github.com/gogpu/segmo/core"

// Capabilities reports the synchronous, side-effect-free probe result
// described in §6. Defined in package core; aliased here for the
// public API.
type Capabilities = core.Capabilities

// ProbeFunc performs the capability probe.
type ProbeFunc = core.ProbeFunc

// DefaultProbe reports full capability support.
func DefaultProbe() Capabilities { return core.DefaultProbe() }
