// Package optimizer searches the space of per-segment speed choices for the
// trajectory that best serves the race objective subject to state of charge
// and timing constraints.
//
// Two search strategies are provided. The continuous relaxation treats the
// speed vector as continuous decision variables and minimizes a penalized
// objective with gonum's Nelder-Mead method, mirroring the team's earlier
// SciPy prototype. The dynamic programming strategy discretizes speeds into
// candidate levels and the state of charge into buckets and computes the
// best reachable state per segment by forward recursion, which is fully
// deterministic and globally optimal over the discretization.
//
// Errors raised while evaluating a single candidate (unavailable environment
// data, non-positive speeds, state of charge bound breaches) mark that
// candidate infeasible and never abort the run. A run always yields either a
// feasible trajectory or a NoFeasibleSolutionError carrying the best
// infeasible candidate for diagnosis.
package optimizer
