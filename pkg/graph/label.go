package graph

// Label is an optional integer attached to an edge. The zero value is
// "unknown": an absent label that matches any value during donor lookup.
// The text codec writes unknown labels as -1 for interchange with the
// original dataset format, but inside the module absence is explicit so a
// real label value of -1 cannot collide with the sentinel.
type Label struct {
	Value int32
	Known bool
}

// KnownLabel returns a present label carrying value.
func KnownLabel(value int32) Label { return Label{Value: value, Known: true} }

// Matches reports whether two labels are compatible: an unknown label
// matches anything, and two known labels match when their values are equal.
func (l Label) Matches(other Label) bool {
	if !l.Known || !other.Known {
		return true
	}
	return l.Value == other.Value
}

// Sentinel returns the interchange form of the label: the value itself when
// known, -1 otherwise.
func (l Label) Sentinel() int32 {
	if !l.Known {
		return -1
	}
	return l.Value
}

// LabelFromSentinel parses the interchange form: -1 becomes unknown.
func LabelFromSentinel(v int32) Label {
	if v < 0 {
		return Label{}
	}
	return KnownLabel(v)
}

// FindEdge locates the undirected edge (u,v) in edges by linear scan and
// returns its index, or -1 when absent. The scan matches either endpoint
// order, mirroring how the original format correlates label lines with an
// exemplar's existing edge list.
func FindEdge(edges []Edge, u, v int32) int {
	for i, e := range edges {
		if (e.U == u && e.V == v) || (e.U == v && e.V == u) {
			return i
		}
	}
	return -1
}
