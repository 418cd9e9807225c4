// Package lattice models the zero-ness of ST numeric expressions and uses it
// to flag definite division by zero. Values are abstracted to a five-point
// lattice; anything the analysis cannot pin down maps to Top.
package lattice

// Zeroness is the abstract value of a numeric expression.
type Zeroness int

const (
	Bottom Zeroness = iota // unreachable
	Zero
	NonZero
	MaybeZero
	Top
)

func (v Zeroness) String() string {
	switch v {
	case Bottom:
		return "Bottom"
	case Zero:
		return "Zero"
	case NonZero:
		return "NonZero"
	case MaybeZero:
		return "MaybeZero"
	case Top:
		return "Top"
	default:
		return "Unknown"
	}
}

// Join returns the least upper bound of a and b.
func (v Zeroness) Join(b Zeroness) Zeroness {
	a := v
	if a == Bottom {
		return b
	}
	if b == Bottom {
		return a
	}
	if a == Top || b == Top {
		return Top
	}
	if a == MaybeZero || b == MaybeZero {
		return MaybeZero
	}
	if a == b {
		return a
	}
	// Zero + NonZero.
	return MaybeZero
}

// State maps variable names to their zero-ness. Missing entries read as Top.
type State map[string]Zeroness

func (s State) Get(name string) Zeroness {
	if val, ok := s[name]; ok {
		return val
	}
	return Top
}

// Set stores the entry, removing it when the value is Top.
func (s State) Set(name string, value Zeroness) {
	if value == Top {
		delete(s, name)
		return
	}
	s[name] = value
}

func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// JoinStates merges branch states variable by variable. A variable missing
// from either side joins as Top and disappears from the result.
func JoinStates(a, b State) State {
	out := make(State)
	for name := range a {
		out.Set(name, a.Get(name).Join(b.Get(name)))
	}
	return out
}
