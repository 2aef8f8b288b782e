package translate

import (
	"strings"

	"github.com/diagramaut/diagramaut/pkg/ir"
)

// TranslatePlantUML compiles an IR to PlantUML — the fallback dialect
// (§4.12), able to express every diagram_type this system supports.
func TranslatePlantUML(d *ir.IR) (string, error) {
	if d.DiagramType == ir.DiagramSequence {
		return translatePlantUMLSequence(d), nil
	}
	return translatePlantUMLStructural(d), nil
}

func translatePlantUMLStructural(d *ir.IR) string {
	var b strings.Builder
	b.WriteString("@startuml\n")

	for _, n := range orderedNodes(d) {
		if n.Hidden {
			continue
		}
		b.WriteString(plantUMLElementKind(n.Type))
		b.WriteString(" \"")
		b.WriteString(escapePlantUMLString(n.Label))
		b.WriteString("\" as ")
		b.WriteString(n.NodeID)
		b.WriteString("\n")
	}

	for _, e := range orderedEdges(d) {
		b.WriteString(e.FromID)
		b.WriteString(plantUMLArrow(e.RelType))
		b.WriteString(e.ToID)
		if e.Label != "" {
			b.WriteString(" : ")
			b.WriteString(escapePlantUMLString(e.Label))
		}
		b.WriteString("\n")
	}

	b.WriteString("@enduml\n")
	return b.String()
}

func translatePlantUMLSequence(d *ir.IR) string {
	var b strings.Builder
	b.WriteString("@startuml\n")

	for _, n := range orderedNodes(d) {
		if n.Hidden {
			continue
		}
		b.WriteString("participant \"")
		b.WriteString(escapePlantUMLString(n.Label))
		b.WriteString("\" as ")
		b.WriteString(n.NodeID)
		b.WriteString("\n")
	}

	for _, e := range orderedEdges(d) {
		arrow := "->"
		if e.RelType == ir.RelAsync {
			arrow = "->>"
		}
		b.WriteString(e.FromID)
		b.WriteString(arrow)
		b.WriteString(e.ToID)
		b.WriteString(" : ")
		b.WriteString(escapePlantUMLString(e.Label))
		b.WriteString("\n")
	}

	b.WriteString("@enduml\n")
	return b.String()
}

func plantUMLElementKind(t ir.NodeType) string {
	switch t {
	case ir.NodeActor:
		return "actor"
	case ir.NodeDataStore:
		return "database"
	case ir.NodeExternal:
		return "cloud"
	case ir.NodeSystem, ir.NodeContainer:
		return "node"
	default:
		return "component"
	}
}

func plantUMLArrow(rel ir.RelType) string {
	switch rel {
	case ir.RelAsync:
		return " ..> "
	case ir.RelReplication, ir.RelDataFlow:
		return " ==> "
	default:
		return " --> "
	}
}

var plantUMLEscaper = strings.NewReplacer(`"`, `'`)

func escapePlantUMLString(s string) string {
	return plantUMLEscaper.Replace(s)
}
