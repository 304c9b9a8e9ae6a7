// Package assign turns an ordered list of user stories and an engineer roster
// into story assignments.
//
// # Policies
//
// Three assignment policies are provided:
//
//   - RoundRobin: story i goes to engineer i mod m. No similarity scoring.
//   - Greedy: each story goes to the engineer with the highest load-penalized
//     similarity, similarity(story, skills) / (1 + stories already held).
//     Ties resolve to the engineer listed first in the roster.
//   - Greedy under the "optimized" label: the same policy, followed by a
//     Reallocate pass. The label adds no learning step.
//
// # Reallocation
//
// Reallocate re-derives an assignment from a prior one with a dynamic
// programming recurrence over a tasks x engineers weight matrix. The weights
// are read from a workload ledger that is not updated until backtracking, so
// every weight is 1 and the result is a reverse positional pairing of the last
// min(n, m) stories with the last min(n, m) engineers. Stories beyond that
// bound are dropped. This is kept as-is for compatibility with existing
// outputs; see Reallocate.
//
// # Workload ledger
//
// A Ledger is created per call, seeded with every roster member at zero, and
// discarded when the call returns. Ledgers are never shared between calls.
//
// # Usage Example
//
//	roster := assign.Roster{
//		{ID: "alice", Skills: "Go backend services, PostgreSQL"},
//		{ID: "bob", Skills: "React, TypeScript, CSS"},
//	}
//
//	policy, err := assign.PolicyFor(assign.ModeOptimized, similarity.NewLexical())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := policy.Assign(ctx, stories, roster)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	final := assign.Reallocate(result, roster)
package assign
