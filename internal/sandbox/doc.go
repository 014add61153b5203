// Package sandbox compiles sketch script text into callable setup/draw
// units bound to a live runtime context.
//
// The sandbox partitions context members into a static set (drawing
// primitives, math and easing helpers, color utilities, constants),
// captured once per compilation, and a live set (frameIndex, phase,
// totalFrames and their aliases) exposed as accessor properties so every
// read observes the current value. Identifiers neither set falls through
// to the VM's standard globals, so helpers like Math and JSON stay
// visible to scripts.
//
// Compilation failures never escape Compile: a syntax error or a thrown
// top-level statement is logged and surfaces as "neither function
// registered". A runtime error thrown inside draw during a tick is caught
// per tick and treated as a frame that produced no new pixels.
//
// This is a convenience boundary, not a security boundary. Determinism is
// not guaranteed either: only the sandbox's own time-varying fields are
// guaranteed to be read live rather than frozen.
package sandbox
