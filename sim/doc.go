// Package sim provides the core engine of the antimicrobial resistance simulator.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - bacterium.go: the per-agent state machine (phenotype switch, kill, replication)
//   - environment.go: the immutable per-day treatment snapshot handed to agents
//   - simulator.go: the Engine, its daily Step and population bookkeeping
//
// Supporting pieces:
//   - grid.go: SpatialGrid, a non-wrapping single-occupancy lattice with an incremental free-cell index
//   - pharmacodynamics.go: Hill/Emax kill rate and the rate-to-probability mapping
//   - treatment.go: TreatmentScheduler, the periodic dosing rule
//   - drug.go: built-in drug catalog and drug list parsing
//   - collector.go: read-only queries and the per-day census written to sim/trace
//
// # Architecture
//
// Sub-packages:
//   - sim/trace/: pure data per-day records and run summaries
//   - sim/report/: CSV, chart, grid image and video exporters built on the read-only queries
//
// # Determinism
//
// All randomness comes from one *rand.Rand seeded from a SimulationKey and
// consumed in a fixed order; two engines with the same Config and seed
// produce identical trajectories.
package sim
