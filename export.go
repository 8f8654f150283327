package kiln

import (
	"encoding/json"
)

// GraphExport is the serializable form of a built container's graph.
type GraphExport struct {
	Nodes []NodeExport `json:"nodes"`
}

type NodeExport struct {
	ID           string       `json:"id"`
	Dependencies []string     `json:"dependencies"`
	Metadata     NodeMetadata `json:"metadata"`
}

// NodeMetadata carries module membership. Exported is set only for nodes
// that belong to a module.
type NodeMetadata struct {
	Module   string `json:"module,omitempty"`
	Exported *bool  `json:"exported,omitempty"`
}

// Export returns every node in graph order. Dependency ids always refer to
// nodes in the same export.
func (c *Container) Export() GraphExport {
	nodes := c.Nodes()
	out := GraphExport{Nodes: make([]NodeExport, 0, len(nodes))}

	for _, node := range nodes {
		entry := NodeExport{
			ID:           node.ID,
			Dependencies: node.DependencyIDs(),
		}
		if node.Metadata.Module != "" {
			exported := node.Metadata.Exported
			entry.Metadata = NodeMetadata{
				Module:   node.Metadata.Module,
				Exported: &exported,
			}
		}
		out.Nodes = append(out.Nodes, entry)
	}

	return out
}

func (c *Container) ToJSON() ([]byte, error) {
	return json.Marshal(c.Export())
}

func (c *Container) MarshalJSON() ([]byte, error) {
	return c.ToJSON()
}

// Lookup returns the node with the given id.
func (g GraphExport) Lookup(id string) (NodeExport, bool) {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node, true
		}
	}
	return NodeExport{}, false
}
