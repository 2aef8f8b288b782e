// Package translate implements the IR-to-Dialect Translators (§4.5):
// deterministic compilers from the semantic IR into renderer input text.
//
// Dispatch is a table (map[Dialect]Translator), not an inheritance
// hierarchy — §9's "dispatch over diagram formats is via tagged
// variants". Style follows the teacher's pkg/config/*.go layered-table
// idiom for the dispatch table itself; escaping/rendering uses a
// strings.Builder rather than text/template, matching the builder-based
// assembly in pkg/agent/context.go.
package translate

import (
	"fmt"
	"sort"

	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/ir"
)

// Dialect is one of the three supported renderer input languages.
type Dialect string

const (
	DialectMermaid     Dialect = "mermaid"
	DialectStructurizr Dialect = "structurizr"
	DialectPlantUML    Dialect = "plantuml"
)

// Translator compiles an IR into dialect text. Must be pure: identical
// input IR always yields byte-identical output (§4.5, §8).
type Translator func(d *ir.IR) (string, error)

var translators = map[Dialect]Translator{
	DialectMermaid:     TranslateMermaid,
	DialectStructurizr: TranslateStructurizr,
	DialectPlantUML:    TranslatePlantUML,
}

// Translate looks up and runs the translator for the given dialect.
func Translate(d *ir.IR, dialect Dialect) (string, error) {
	t, ok := translators[dialect]
	if !ok {
		return "", apierr.New(apierr.UnsupportedFeature, fmt.Sprintf("no translator registered for dialect %q", dialect))
	}
	return t(d)
}

// orderedNodes returns nodes in canonical order: by zone (per
// ZoneOrder, unlisted zones last in append order), then by node_id
// lexicographically within a zone (§4.5 (ii)).
func orderedNodes(d *ir.IR) []ir.Node {
	zoneRank := make(map[string]int, len(d.ZoneOrder))
	for i, z := range d.ZoneOrder {
		zoneRank[z] = i
	}

	nodes := make([]ir.Node, len(d.Nodes))
	copy(nodes, d.Nodes)

	sort.SliceStable(nodes, func(i, j int) bool {
		ri, oki := zoneRank[nodes[i].Zone]
		rj, okj := zoneRank[nodes[j].Zone]
		switch {
		case oki && okj && ri != rj:
			return ri < rj
		case oki && !okj:
			return true
		case !oki && okj:
			return false
		}
		return nodes[i].NodeID < nodes[j].NodeID
	})
	return nodes
}

// orderedEdges returns edges sorted by edge_id for deterministic output.
func orderedEdges(d *ir.IR) []ir.Edge {
	edges := make([]ir.Edge, len(d.Edges))
	copy(edges, d.Edges)
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].EdgeID < edges[j].EdgeID })
	return edges
}
