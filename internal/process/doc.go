// Package process defines the value types shared by every stage of the
// identification and tuning pipeline.
//
// The pipeline runs leaf-first:
//
//   - [ReactionCurve]: a measured open-loop step response
//   - [Model]: a First-Order-Plus-Dead-Time (FOPDT) approximation
//   - [FitResult]: a model together with its fit error
//   - [Gains]: ideal-form PID parameters
//   - [Trace]: a closed-loop step response sampled at a fixed step
//   - [Performance]: transient metrics extracted from a trace
//
// The package also defines the numerical primitives ([State], [System],
// [Integrator], [Metric]) used by the simulator and the metric extractors,
// and the error kinds returned by each stage.
//
// # Ownership
//
// All values are treated as immutable once constructed. Constructors copy
// the slices they are given, and every stage returns freshly allocated
// slices owned by the caller.
package process
