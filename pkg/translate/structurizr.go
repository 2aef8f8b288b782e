package translate

import (
	"strings"

	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/ir"
)

// TranslateStructurizr compiles an IR to Structurizr DSL. Structurizr
// models static architecture (context/container/component); it has no
// native notion of message ordering, so sequence diagrams are rejected
// per §4.5 ("Translators fail with UNSUPPORTED_FEATURE if IR requests a
// concept the dialect cannot express — e.g., sequence diagrams via
// Structurizr").
func TranslateStructurizr(d *ir.IR) (string, error) {
	if d.DiagramType == ir.DiagramSequence {
		return "", apierr.New(apierr.UnsupportedFeature, "structurizr cannot express sequence diagrams")
	}

	var b strings.Builder
	b.WriteString("workspace {\n    model {\n")

	for _, n := range orderedNodes(d) {
		if n.Hidden {
			continue
		}
		b.WriteString("        ")
		b.WriteString(n.NodeID)
		b.WriteString(" = ")
		b.WriteString(structurizrElementKind(n.Type))
		b.WriteString(" \"")
		b.WriteString(escapeStructurizrString(n.Label))
		b.WriteString("\"\n")
	}

	b.WriteString("\n")
	for _, e := range orderedEdges(d) {
		b.WriteString("        ")
		b.WriteString(e.FromID)
		b.WriteString(" -> ")
		b.WriteString(e.ToID)
		if e.Label != "" {
			b.WriteString(" \"")
			b.WriteString(escapeStructurizrString(e.Label))
			b.WriteString("\"")
		}
		b.WriteString("\n")
	}

	b.WriteString("    }\n    views {\n        systemContext * {\n            include *\n            autoLayout\n        }\n    }\n}\n")
	return b.String(), nil
}

func structurizrElementKind(t ir.NodeType) string {
	switch t {
	case ir.NodeSystem:
		return "softwareSystem"
	case ir.NodeContainer:
		return "container"
	case ir.NodeComponent:
		return "component"
	case ir.NodeActor:
		return "person"
	case ir.NodeExternal:
		return "softwareSystem"
	case ir.NodeDataStore:
		return "container"
	default:
		return "element"
	}
}

func escapeStructurizrString(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
