package translate

import (
	"strings"

	"github.com/diagramaut/diagramaut/pkg/ir"
)

// TranslateMermaid compiles an IR to Mermaid flowchart/sequence syntax.
// No aesthetic directives are ever emitted — palette/mood live only in
// nodeIntent/edgeIntent and are never projected into renderer text.
func TranslateMermaid(d *ir.IR) (string, error) {
	if d.DiagramType == ir.DiagramSequence {
		return translateMermaidSequence(d), nil
	}
	return translateMermaidFlowchart(d), nil
}

func translateMermaidFlowchart(d *ir.IR) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	for _, n := range orderedNodes(d) {
		if n.Hidden {
			continue
		}
		b.WriteString("    ")
		b.WriteString(n.NodeID)
		b.WriteString("[\"")
		b.WriteString(escapeMermaidLabel(n.Label))
		b.WriteString("\"]\n")
	}

	for _, e := range orderedEdges(d) {
		arrow := mermaidArrow(e.RelType)
		b.WriteString("    ")
		b.WriteString(e.FromID)
		b.WriteString(arrow)
		b.WriteString(e.ToID)
		if e.Label != "" {
			b.WriteString("|\"")
			b.WriteString(escapeMermaidLabel(e.Label))
			b.WriteString("\"|")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func translateMermaidSequence(d *ir.IR) string {
	var b strings.Builder
	b.WriteString("sequenceDiagram\n")

	for _, n := range orderedNodes(d) {
		if n.Hidden {
			continue
		}
		b.WriteString("    participant ")
		b.WriteString(n.NodeID)
		b.WriteString(" as ")
		b.WriteString(escapeMermaidLabel(n.Label))
		b.WriteString("\n")
	}

	for _, e := range orderedEdges(d) {
		arrow := "->>"
		if e.RelType == ir.RelAsync {
			arrow = "-->>"
		}
		b.WriteString("    ")
		b.WriteString(e.FromID)
		b.WriteString(arrow)
		b.WriteString(e.ToID)
		b.WriteString(": ")
		b.WriteString(escapeMermaidLabel(e.Label))
		b.WriteString("\n")
	}

	return b.String()
}

func mermaidArrow(rel ir.RelType) string {
	switch rel {
	case ir.RelAsync:
		return " -.-> "
	case ir.RelReplication, ir.RelDataFlow:
		return " ==> "
	default:
		return " --> "
	}
}

var mermaidEscaper = strings.NewReplacer(
	`"`, `#quot;`,
	"<", "#lt;",
	">", "#gt;",
)

func escapeMermaidLabel(label string) string {
	return mermaidEscaper.Replace(label)
}
