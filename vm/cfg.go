package vm

import (
	"fmt"
	"io"
	"sort"
)

// WriteCFGDot renders the recorded control-flow edges as a Graphviz DOT
// graph. labels maps PC to a symbolic name (from a label map file); PCs
// absent from it are rendered as hex addresses.
func (c *Core) WriteCFGDot(w io.Writer, labels map[uint32]string) error {
	nodeName := func(pc uint32) string {
		if name, ok := labels[pc]; ok {
			return fmt.Sprintf("%q", name)
		}
		return fmt.Sprintf("\"0x%08x\"", pc)
	}

	edges := make([]cfgEdge, 0, len(c.CFGEdges))
	for e := range c.CFGEdges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})

	if _, err := fmt.Fprintln(w, "digraph cfg {"); err != nil {
		return err
	}
	for _, e := range edges {
		count := c.CFGEdges[e]
		if _, err := fmt.Fprintf(w, "\t%s -> %s [label=%q];\n",
			nodeName(e.from), nodeName(e.to), fmt.Sprintf("%d", count)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
