package cfg

// NodeSet is a set of CFG node indices.
type NodeSet map[int]bool

// ExtendWithVirtualExit returns a successor map extended with a single
// virtual exit node that every exit instruction flows into, plus the ID of
// that node. Post-dominance is only well defined with a unique exit.
func ExtendWithVirtualExit(g *InstrCFG) (map[int][]int, int) {
	exitID := len(g.Instrs)
	succ := make(map[int][]int, len(g.Instrs)+1)
	for i, ss := range g.Succ {
		succ[i] = append([]int(nil), ss...)
	}
	for i := range g.Exits {
		succ[i] = append(succ[i], exitID)
	}
	succ[exitID] = nil
	return succ, exitID
}

// PostDominators computes, for every node, the set of nodes that
// post-dominate it (itself included), by iterating
//
//	pd(v) = {v} ∪ ⋂ pd(s) over successors s
//
// to a fixed point. The virtual exit post-dominates only itself.
func PostDominators(succ map[int][]int, exitID int) map[int]NodeSet {
	all := NodeSet{}
	for n := range succ {
		all[n] = true
	}

	pd := make(map[int]NodeSet, len(succ))
	for n := range succ {
		if n == exitID {
			pd[n] = NodeSet{n: true}
		} else {
			pd[n] = all.clone()
		}
	}

	changed := true
	for changed {
		changed = false
		for n := range succ {
			if n == exitID {
				continue
			}
			next := NodeSet{n: true}
			if ss := succ[n]; len(ss) > 0 {
				inter := pd[ss[0]].clone()
				for _, s := range ss[1:] {
					inter = inter.intersect(pd[s])
				}
				for m := range inter {
					next[m] = true
				}
			}
			if !next.equal(pd[n]) {
				pd[n] = next
				changed = true
			}
		}
	}
	return pd
}

func (s NodeSet) clone() NodeSet {
	out := make(NodeSet, len(s))
	for n := range s {
		out[n] = true
	}
	return out
}

func (s NodeSet) intersect(other NodeSet) NodeSet {
	out := NodeSet{}
	for n := range s {
		if other[n] {
			out[n] = true
		}
	}
	return out
}

func (s NodeSet) equal(other NodeSet) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if !other[n] {
			return false
		}
	}
	return true
}
