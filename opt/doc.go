// Package opt composes multi-application traffic-engineering demands into a
// single optimization model.
//
// # Reading Guide
//
// Start with these three files to understand the composition core:
//   - app.go: Application inputs (path sets, resource costs, objective, hooks)
//   - builder.go: The ModelBuilder contract between the core and a backend
//   - compose.go: The staged pipeline that drives a builder
//
// # Architecture
//
// The opt package owns orchestration only; domain data and backends live in
// sub-packages:
//   - opt/topo/: Directed network topology with per-element resource capacities
//   - opt/paths/: Traffic classes, candidate paths, and per-class path sets
//   - opt/model/: The linear-program reference builder (variables, rows, LP export)
//   - opt/scenario/: YAML scenario specs compiled into Application values
//
// Compose runs six stages in a fixed order: merge path sets, register
// resource consumption, apply global caps, run constraint hooks, resolve
// objective weights, compose the global objective. The first failing stage
// aborts the run. The core never evaluates cost functions, never enumerates
// paths, and never solves the model; all of that belongs to callers and
// builders.
//
// # Key Interfaces
//
// ModelBuilder is the single extension point: Consume, Cap,
// AddSingleObjective, and ComposeObjectives. Everything the core passes
// through it (CostFunc values, VarRef handles) stays opaque to the core.
package opt
