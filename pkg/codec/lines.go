package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PeterZhouSZ/string2shape/pkg/errors"
	"github.com/PeterZhouSZ/string2shape/pkg/graph"
)

// EncodeEdgeLines renders edges and their labels as the three-line
// edge-list form: first endpoints, second endpoints, sentinel-form labels.
// labels may be nil, in which case every edge is written as unknown (-1).
func EncodeEdgeLines(edges []graph.Edge, labels []graph.Label) string {
	var l1, l2, l3 []string
	for i, e := range edges {
		l1 = append(l1, strconv.Itoa(int(e.U)))
		l2 = append(l2, strconv.Itoa(int(e.V)))
		if labels != nil && i < len(labels) {
			l3 = append(l3, strconv.Itoa(int(labels[i].Sentinel())))
		} else {
			l3 = append(l3, "-1")
		}
	}
	return strings.Join(l1, " ") + "\n" + strings.Join(l2, " ") + "\n" + strings.Join(l3, " ")
}

// parseIntLine splits one whitespace-separated integer line.
func parseIntLine(line string) ([]int32, error) {
	fields := strings.Fields(line)
	out := make([]int32, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad integer %q", f)
		}
		out[i] = int32(n)
	}
	return out, nil
}

// EdgeTriple is one decoded three-line group: parallel endpoint arrays and
// sentinel-form edge types.
type EdgeTriple struct {
	Keys, Vals, Types []int32
}

// parseTriple decodes three lines into an EdgeTriple, requiring equal
// lengths.
func parseTriple(lines []string) (EdgeTriple, error) {
	var t EdgeTriple
	var err error
	if t.Keys, err = parseIntLine(lines[0]); err != nil {
		return t, err
	}
	if t.Vals, err = parseIntLine(lines[1]); err != nil {
		return t, err
	}
	if t.Types, err = parseIntLine(lines[2]); err != nil {
		return t, err
	}
	if len(t.Keys) != len(t.Vals) || len(t.Keys) != len(t.Types) {
		return t, fmt.Errorf("edge lines differ in length: %d/%d/%d",
			len(t.Keys), len(t.Vals), len(t.Types))
	}
	return t, nil
}

// ApplyLabels matches each (key,val,type) triple against an existing edge
// list by linear scan. Matching edges receive the triple's label; edges
// never mentioned stay unknown. Triples that reference no existing edge are
// ignored, mirroring the permissive original format.
func (t EdgeTriple) ApplyLabels(edges []graph.Edge) []graph.Label {
	labels := make([]graph.Label, len(edges))
	for i := range t.Keys {
		if idx := graph.FindEdge(edges, t.Keys[i], t.Vals[i]); idx >= 0 {
			labels[idx] = graph.LabelFromSentinel(t.Types[i])
		}
	}
	return labels
}

// BuildGraph treats the triple as a graph definition: the node count is one
// plus the maximum node id referenced, and the graph is built through the
// edge-list constructor with mirror synthesis. Labels are aligned to the
// resulting unique-edge list.
func (t EdgeTriple) BuildGraph() (*graph.Graph, []graph.Label, error) {
	maxID := int32(-1)
	for i := range t.Keys {
		if t.Keys[i] > maxID {
			maxID = t.Keys[i]
		}
		if t.Vals[i] > maxID {
			maxID = t.Vals[i]
		}
	}
	g, err := graph.FromEdgeList(int(maxID+1), false, t.Keys, t.Vals)
	if err != nil {
		return nil, nil, err
	}
	edges := g.UniqueEdges()
	labels := t.ApplyLabels(edges)
	return g, labels, nil
}

// GraphText is the decoded 9-line materialization input: label triples for
// exemplars A and B, and a defining triple for the target graph.
type GraphText struct {
	A, B, Target EdgeTriple
}

// ParseGraphText decodes exactly nine newline-delimited lines in groups of
// three. Trailing blank lines are tolerated.
func ParseGraphText(text string) (*GraphText, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for len(lines) > 9 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) != 9 {
		return nil, errors.New(errors.ErrCodeInvalidGraphText,
			"expected 9 lines, got %d", len(lines))
	}
	var gt GraphText
	var err error
	if gt.A, err = parseTriple(lines[0:3]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraphText, err, "exemplar A lines")
	}
	if gt.B, err = parseTriple(lines[3:6]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraphText, err, "exemplar B lines")
	}
	if gt.Target, err = parseTriple(lines[6:9]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraphText, err, "target lines")
	}
	return &gt, nil
}
