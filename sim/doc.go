// Package sim provides the core discrete-event simulation engine for line-sim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - scheduler.go: the clock and the (time, seq) ordered event heap
//   - process.go: cooperative processes as explicit resumable state machines
//   - resource.go / machine.go: capacitated stations and their failure/repair cycle
//   - journey.go: a product's walk through the line (acquire, hold, release)
//   - simulator.go: wiring of one replication and the raw RunRecord it produces
//
// # Architecture
//
// The sim package owns everything that advances simulated time. Everything that
// only reads the finished RunRecord lives in sub-packages:
//   - sim/analysis/: throughput, lead time, utilization, bottleneck scoring
//   - sim/line/: RunSimulation facade used by the CLI and the optimizer
//   - sim/optimize/: replicated grid search over configuration axes
//   - sim/validate/: comparison of simulated output against plant data
//   - sim/report/: chart-ready series, histograms and colours
//   - sim/export/: tabular row schemas and writers
//   - sim/trace/: state-transition trace recording
//
// # Observers
//
// Stations, the arrival generator and product journeys never compute statistics
// themselves. They report state changes to a Recorder; MetricsStore and CostModel
// are the two recorders every Simulator installs.
package sim
