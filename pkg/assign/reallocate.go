package assign

import (
	"log"

	"gonum.org/v1/gonum/mat"
)

// Reallocate re-derives an assignment from prior with a dynamic programming
// pass over a len(prior) x len(roster) weight matrix.
//
// Weights are read from a fresh ledger before any backtracking increments,
// so every cell is 1. The recurrence only ever compares a cell against its
// own zero initial value, which marks every cell as kept, and backtracking
// then walks the diagonal from the last task and last engineer:
//
//	story[n-1] -> engineer[m-1], story[n-2] -> engineer[m-2], ...
//
// The result has min(n, m) pairs. Engineers from prior are discarded and
// stories outside the diagonal are dropped without error.
//
// Known limitation: this does not balance load or match skills. It is kept
// compatible with earlier outputs until a replacement
// (for example weighted bipartite matching) is agreed on.
func Reallocate(prior Assignment, roster Roster) Assignment {
	n, m := len(prior), len(roster)
	if n == 0 || m == 0 {
		log.Printf("[Assign] Optimized Assignments (Knapsack DP): nothing to reallocate (%d stories, %d engineers)", n, m)
		return Assignment{}
	}

	ledger := NewLedger(roster)
	weights := buildWeights(ledger, roster, n)
	_, keep := fillTables(weights)
	result := backtrack(prior, roster, keep, ledger)

	log.Printf("[Assign] Optimized Assignments (Knapsack DP): kept %d of %d stories", len(result), n)
	return result
}

// buildWeights evaluates ledger.Get(engineer)+1 for every cell against the
// ledger as it stands now. The ledger is not touched here.
func buildWeights(ledger *Ledger, roster Roster, tasks int) *mat.Dense {
	weights := mat.NewDense(tasks, len(roster), nil)
	for i := 0; i < tasks; i++ {
		for j, e := range roster {
			weights.Set(i, j, float64(ledger.Get(e.ID)+1))
		}
	}
	return weights
}

// fillTables runs the forward recurrence. dp is (tasks+1) x engineers with
// row 0 all zero; keep is tasks x engineers.
func fillTables(weights *mat.Dense) (*mat.Dense, [][]bool) {
	tasks, engineers := weights.Dims()
	dp := mat.NewDense(tasks+1, engineers, nil)
	keep := make([][]bool, tasks)
	for i := range keep {
		keep[i] = make([]bool, engineers)
	}

	for task := 1; task <= tasks; task++ {
		for eng := 0; eng < engineers; eng++ {
			candidate := dp.At(task-1, eng) + weights.At(task-1, eng)
			if candidate > dp.At(task, eng) {
				dp.Set(task, eng, candidate)
				keep[task-1][eng] = true
			}
		}
	}

	return dp, keep
}

// backtrack walks from the last task and engineer. A kept cell emits a pair
// and steps both indices; otherwise only the task index steps.
func backtrack(prior Assignment, roster Roster, keep [][]bool, ledger *Ledger) Assignment {
	result := make(Assignment, 0, min(len(prior), len(roster)))

	task, eng := len(prior)-1, len(roster)-1
	for task >= 0 && eng >= 0 {
		if keep[task][eng] {
			engineer := roster[eng].ID
			result = append(result, Pair{Story: prior[task].Story, Engineer: engineer})
			ledger.Increment(engineer)
			task--
			eng--
		} else {
			task--
		}
	}

	return result
}
