// Package graphcmd provides a cobra command that prints a container's
// dependency graph.
package graphcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/danpasecinic/kiln"
)

// LoadFunc builds the container to inspect.
type LoadFunc func(ctx context.Context) (*kiln.Container, error)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatDOT   = "dot"
	FormatText  = "text"
)

var formats = []string{FormatTable, FormatJSON, FormatYAML, FormatDOT, FormatText}

type options struct {
	format string
	order  string
	module string
}

// NewCommand returns a "graph" command. The --order and --module flags apply
// to the table, json and yaml formats; dot and text always show the whole
// graph.
func NewCommand(load LoadFunc) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the dependency graph",
		Long: `Build the container and print its dependency graph.

Nodes are listed in topological order (dependencies first) unless
--order=reverse is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), load, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatTable,
		"Output format ("+strings.Join(formats, ", ")+")")
	cmd.Flags().StringVar(&opts.order, "order", "topological", "Node order (topological, reverse)")
	cmd.Flags().StringVar(&opts.module, "module", "", "Only show nodes owned by this module")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return formats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("order", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"topological", "reverse"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func run(ctx context.Context, w io.Writer, load LoadFunc, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	direction, err := parseOrder(opts.order)
	if err != nil {
		return err
	}
	if !slices.Contains(formats, opts.format) {
		return fmt.Errorf("unknown output format %q (want one of %s)", opts.format, strings.Join(formats, ", "))
	}

	c, err := load(ctx)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	switch opts.format {
	case FormatDOT:
		c.FprintGraphDOT(w)
		return nil
	case FormatText:
		c.FprintGraph(w)
		return nil
	}

	export, err := selectNodes(c, direction, opts.module)
	if err != nil {
		return err
	}

	switch opts.format {
	case FormatJSON:
		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(export)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return renderTable(w, export)
	}
}

func parseOrder(order string) (kiln.Direction, error) {
	switch order {
	case "topological", "":
		return kiln.Topological, nil
	case "reverse":
		return kiln.ReverseTopological, nil
	default:
		return 0, fmt.Errorf("unknown order %q (want topological or reverse)", order)
	}
}

// selectNodes returns the export entries in traversal order, restricted to
// module when it is set.
func selectNodes(c *kiln.Container, direction kiln.Direction, module string) (kiln.GraphExport, error) {
	full := c.Export()
	out := kiln.GraphExport{Nodes: []kiln.NodeExport{}}

	opts := []kiln.TraverseOption{kiln.WithDirection(direction)}
	if module != "" {
		opts = append(opts, kiln.WithFilter(func(n *kiln.Node) bool {
			return n.Metadata.Module == module
		}))
	}

	err := c.Traverse(func(n *kiln.Node) error {
		if node, ok := full.Lookup(n.ID); ok {
			out.Nodes = append(out.Nodes, node)
		}
		return nil
	}, opts...)
	return out, err
}

func renderTable(w io.Writer, export kiln.GraphExport) error {
	if len(export.Nodes) == 0 {
		_, err := fmt.Fprintln(w, "No nodes found")
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "ID", "MODULE", "EXPORTED", "DEPENDENCIES"})

	for i, node := range export.Nodes {
		exported := ""
		if node.Metadata.Exported != nil && *node.Metadata.Exported {
			exported = "yes"
		}
		module := node.Metadata.Module
		if module == "" {
			module = "-"
		}
		t.AppendRow(table.Row{i + 1, node.ID, module, exported, strings.Join(node.Dependencies, ", ")})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d nodes", len(export.Nodes))})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
