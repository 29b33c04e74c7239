package segmo

import "github.com/gogpu/segmo/core"

// Mask is a single-channel person-confidence buffer with values in
// [0, 1]. Defined in package core so every segmo sub-package can share
// it without importing this root package back.
type Mask = core.Mask

// NewMask creates a new mask with the given dimensions, initialized to
// all zero (no person).
func NewMask(width, height int) *Mask { return core.NewMask(width, height) }

// EdgePad is the fixed pad width named in §3.
const EdgePad = core.EdgePad

// MotionMap computes |current - previous| element-wise into dst.
func MotionMap(dst, current, previous *Mask) { core.MotionMap(dst, current, previous) }
