package cfg

import "sort"

// ControlDeps derives the control-dependence relation from post-dominance
// frontiers. The result maps a controlling node c to the set of nodes whose
// execution c decides; the virtual exit never appears as a key.
//
// Steps: immediate post-dominators from the post-dominance sets, the
// post-dominator tree, bottom-up post-dominance frontiers over a postorder
// tree walk, then inversion of the frontier relation.
func ControlDeps(succ map[int][]int, exitID int, postdom map[int]NodeSet) map[int]NodeSet {
	nodes := make([]int, 0, len(succ))
	for n := range succ {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)

	pred := make(map[int][]int, len(succ))
	for _, u := range nodes {
		for _, v := range succ[u] {
			pred[v] = append(pred[v], u)
		}
	}

	ipd := immediatePostDominators(nodes, exitID, postdom)
	children := make(map[int][]int, len(nodes))
	for _, n := range nodes {
		if n == exitID {
			continue
		}
		parent := ipd[n]
		children[parent] = append(children[parent], n)
	}
	for _, cs := range children {
		sort.Ints(cs)
	}

	// Post-dominance frontiers, bottom-up: a node's frontier holds its
	// direct predecessors it does not immediately post-dominate, plus any
	// frontier member inherited from a tree child under the same test.
	pdf := make(map[int]NodeSet, len(nodes))
	for _, n := range nodes {
		pdf[n] = NodeSet{}
	}
	for _, x := range postorder(exitID, children) {
		for _, y := range pred[x] {
			if ipd[y] != x {
				pdf[x][y] = true
			}
		}
		for _, z := range children[x] {
			for y := range pdf[z] {
				if ipd[y] != x {
					pdf[x][y] = true
				}
			}
		}
	}

	deps := make(map[int]NodeSet)
	for _, x := range nodes {
		for y := range pdf[x] {
			if deps[y] == nil {
				deps[y] = NodeSet{}
			}
			deps[y][x] = true
		}
	}
	delete(deps, exitID)
	return deps
}

// immediatePostDominators picks, for each node, the post-dominator with the
// smallest post-dominance set among candidates other than the node itself.
// Ties break to the lowest index so the result is deterministic.
func immediatePostDominators(nodes []int, exitID int, postdom map[int]NodeSet) map[int]int {
	ipd := make(map[int]int, len(nodes))
	for _, n := range nodes {
		if n == exitID {
			ipd[n] = exitID
			continue
		}
		best := -1
		bestSize := 0
		for _, p := range sortedMembers(postdom[n]) {
			if p == n {
				continue
			}
			size := len(postdom[p])
			if best == -1 || size < bestSize {
				best = p
				bestSize = size
			}
		}
		if best == -1 {
			best = exitID
		}
		ipd[n] = best
	}
	return ipd
}

func postorder(root int, children map[int][]int) []int {
	var order []int
	var dfs func(u int)
	dfs = func(u int) {
		for _, v := range children[u] {
			dfs(v)
		}
		order = append(order, u)
	}
	dfs(root)
	return order
}

func sortedMembers(s NodeSet) []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
