package infer

import "github.com/patchc/compiler/internal/graph"

// tarjanSCCs returns the strongly connected components of adj (each as
// a set of block ids) in no particular order, using Tarjan's
// single-pass algorithm. nodes fixes the visit order so the result is
// deterministic for a fixed input, which matters since GraphSpan ends
// up in diagnostic ids.
func tarjanSCCs(nodes []graph.BlockID, adj map[graph.BlockID][]graph.BlockID) [][]graph.BlockID {
	index := map[graph.BlockID]int{}
	lowlink := map[graph.BlockID]int{}
	onStack := map[graph.BlockID]bool{}
	var stack []graph.BlockID
	counter := 0
	var sccs [][]graph.BlockID

	var strongconnect func(v graph.BlockID)
	strongconnect = func(v graph.BlockID) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var comp []graph.BlockID
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, comp)
		}
	}

	for _, v := range nodes {
		if _, seen := index[v]; !seen {
			strongconnect(v)
		}
	}
	return sccs
}
