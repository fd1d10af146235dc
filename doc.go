// Package vantage is an embeddable 3D viewer session: an orbit camera,
// a compositor effect chain, and a render pipeline wired to a pluggable
// render engine, with every state change mirrored to an observer so a
// notebook or UI layer can stay in lockstep.
//
// # Quick start
//
// Create an engine, bind a widget to it, and render:
//
//	engine := vantage.NewSoftEngine()
//	w := vantage.NewWidget(engine, vantage.ContextPrimary)
//	w.OnSync(func(s vantage.SyncState) {
//		// push s to the UI layer
//	})
//	w.Initialize()
//	w.Render()
//
// The built-in [SoftEngine] renders headlessly on the CPU. The
// ebitengine subpackage provides a GPU-backed [Engine] for interactive
// windows.
//
// # Camera
//
// The camera is spherical: distance, elevation, and azimuth around a
// target point. [Widget.SetOrbit] moves it instantly;
// [Widget.OrbitTo] animates it over time, driven by [Widget.Update].
// [OrbitFromPosition] converts a Cartesian position back to orbit
// parameters, so the two representations round-trip.
//
// # Effects
//
// Post-processing is a chain of effect nodes between a fixed source and
// sink, managed by [Graph] and toggled per-kind with
// [Widget.SetEffect]. Effects apply in the order they were enabled.
//
// # Synchronization
//
// Every mutation pushes a [SyncState] snapshot to the observer.
// [Widget.Batch] coalesces any number of mutations into a single
// snapshot, which keeps multi-field updates atomic from the UI's point
// of view.
//
// All widget and engine methods must be called from a single goroutine;
// the engine contract is deliberately lock-free because the host
// engines it abstracts keep global mutable state.
package vantage
