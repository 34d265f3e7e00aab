package output

import (
	"github.com/leapstack-labs/leaperd/internal/diagram"
	"github.com/leapstack-labs/leaperd/pkg/core"
)

// CollectOutput is the JSON result of the collect command.
type CollectOutput struct {
	Diagram   string       `json:"diagram"`
	RunID     string       `json:"run_id"`
	Status    string       `json:"status"`
	Added     []string     `json:"added"`
	Nodes     int          `json:"nodes"`
	Relations int          `json:"relations"`
	Stats     CollectStats `json:"stats"`
	Error     string       `json:"error,omitempty"`
}

// CollectStats mirrors the collector's per-run counters.
type CollectStats struct {
	Entities  int  `json:"entities"`
	Skipped   int  `json:"skipped"`
	Declined  int  `json:"declined"`
	Relations int  `json:"relations"`
	Canceled  bool `json:"canceled"`
}

// DiagramOutput is the JSON form of a diagram.
type DiagramOutput struct {
	Name                string         `json:"name"`
	AttributeVisibility string         `json:"attribute_visibility"`
	Nodes               []NodeInfo     `json:"nodes"`
	Relations           []RelationInfo `json:"relations"`
}

// NodeInfo is the JSON form of one node.
type NodeInfo struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Type       core.EntityType  `json:"type"`
	Attributes []core.Attribute `json:"attributes"`
}

// RelationInfo is the JSON form of one relation.
type RelationInfo struct {
	Name          string   `json:"name"`
	Source        string   `json:"source"`
	Target        string   `json:"target"`
	SourceColumns []string `json:"source_columns"`
	TargetColumns []string `json:"target_columns"`
}

// LayersOutput is the JSON result of the layers command.
type LayersOutput struct {
	Levels         []LayerLevel `json:"levels"`
	HasCycle       bool         `json:"has_cycle"`
	Cycle          []string     `json:"cycle,omitempty"`
	TotalNodes     int          `json:"total_nodes"`
	TotalRelations int          `json:"total_relations"`
}

// LayerLevel is one layout tier.
type LayerLevel struct {
	Level int         `json:"level"`
	Nodes []LayerNode `json:"nodes"`
}

// LayerNode is one entity within a tier.
type LayerNode struct {
	ID           string   `json:"id"`
	References   []string `json:"references"`
	ReferencedBy []string `json:"referenced_by"`
}

// NewDiagramOutput converts a diagram to its JSON form.
func NewDiagramOutput(d *diagram.Diagram) DiagramOutput {
	out := DiagramOutput{
		Name:                d.Name(),
		AttributeVisibility: string(d.AttributeVisibility()),
		Nodes:               make([]NodeInfo, 0, d.Len()),
		Relations:           []RelationInfo{},
	}
	for _, n := range d.Nodes() {
		attrs := n.Attributes
		if attrs == nil {
			attrs = []core.Attribute{}
		}
		out.Nodes = append(out.Nodes, NodeInfo{
			ID:         n.EntityID,
			Name:       n.Name,
			Type:       n.Type,
			Attributes: attrs,
		})
	}
	for _, rel := range d.Relations() {
		out.Relations = append(out.Relations, RelationInfo{
			Name:          rel.Name,
			Source:        rel.Source.EntityID,
			Target:        rel.Target.EntityID,
			SourceColumns: rel.SourceColumns,
			TargetColumns: rel.TargetColumns,
		})
	}
	return out
}
