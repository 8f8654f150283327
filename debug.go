package kiln

import (
	"fmt"
	"io"
	"os"
	"strings"
)

func (c *Container) PrintGraph() {
	c.FprintGraph(os.Stdout)
}

// FprintGraph writes one line per node in graph order. Nodes are marked ●
// once the container has been initialized.
func (c *Container) FprintGraph(w io.Writer) {
	nodes := c.Nodes()

	if len(nodes) == 0 {
		_, _ = fmt.Fprintln(w, "(empty container)")
		return
	}

	status := "○"
	if c.Status() == StatusInitialized {
		status = "●"
	}

	for _, node := range nodes {
		var b strings.Builder
		b.WriteString(status)
		b.WriteString(" ")
		b.WriteString(node.ID)

		if deps := node.DependencyIDs(); len(deps) > 0 {
			b.WriteString(" ← ")
			b.WriteString(strings.Join(deps, ", "))
		}

		if node.Metadata.Module != "" {
			b.WriteString(" [")
			b.WriteString(node.Metadata.Module)
			if node.Metadata.Exported {
				b.WriteString(", exported")
			}
			b.WriteString("]")
		}

		_, _ = fmt.Fprintln(w, b.String())
	}
}

func (c *Container) SprintGraph() string {
	var sb strings.Builder
	c.FprintGraph(&sb)
	return sb.String()
}

func (c *Container) PrintGraphDOT() {
	c.FprintGraphDOT(os.Stdout)
}

// FprintGraphDOT writes the graph in Graphviz DOT format. Nodes owned by a
// module are grouped in a cluster per module.
func (c *Container) FprintGraphDOT(w io.Writer) {
	nodes := c.Nodes()

	_, _ = fmt.Fprintln(w, "digraph dependencies {")
	_, _ = fmt.Fprintln(w, "  rankdir=LR;")
	_, _ = fmt.Fprintln(w, "  node [shape=box];")

	var modules []string
	byModule := make(map[string][]*Node)
	for _, node := range nodes {
		mod := node.Metadata.Module
		if mod == "" {
			_, _ = fmt.Fprintf(w, "  %q [label=%q];\n", node.ID, escapeLabel(node.ID))
			continue
		}
		if _, seen := byModule[mod]; !seen {
			modules = append(modules, mod)
		}
		byModule[mod] = append(byModule[mod], node)
	}

	for i, mod := range modules {
		_, _ = fmt.Fprintf(w, "  subgraph cluster_%d {\n", i)
		_, _ = fmt.Fprintf(w, "    label=%q;\n", mod)
		for _, node := range byModule[mod] {
			style := ""
			if node.Metadata.Exported {
				style = ", style=filled, fillcolor=lightblue"
			}
			_, _ = fmt.Fprintf(w, "    %q [label=%q%s];\n", node.ID, escapeLabel(node.ID), style)
		}
		_, _ = fmt.Fprintln(w, "  }")
	}

	_, _ = fmt.Fprintln(w)

	for _, node := range nodes {
		for _, dep := range node.DependencyIDs() {
			_, _ = fmt.Fprintf(w, "  %q -> %q;\n", node.ID, dep)
		}
	}

	_, _ = fmt.Fprintln(w, "}")
}

func (c *Container) SprintGraphDOT() string {
	var sb strings.Builder
	c.FprintGraphDOT(&sb)
	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	if idx := strings.LastIndex(s, "/"); idx != -1 {
		s = s[idx+1:]
	}
	return s
}
