// Package segmo implements a real-time webcam background segmentation
// engine: the post-processing pipeline that turns a noisy, low-resolution
// person-confidence mask into a temporally stable, edge-snapped composite
// (blurred, image, or solid-color background) at display rate.
//
// The package coordinates four cooperating concerns: a GPU pipeline that
// runs the per-frame shader chain (sub-package pipeline), a mask-producer
// adapter that schedules calls to an external segmentation model and
// tracks motion (sub-package adapter, with an off-thread variant in
// workeradapter), an auto-framer that derives a smoothed crop rectangle
// (sub-package autoframe), and an adaptive quality controller that
// rescales work to meet a frame-time budget (sub-package quality).
// Diagnostics accumulation lives in sub-package diagnostics.
//
// segmo does not run the segmentation model itself, encode or transport
// output, or persist state across process restarts — those are host
// responsibilities, sketched in sub-package hostintegration and
// cmd/segmo-demo.
package segmo
