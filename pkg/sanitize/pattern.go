// Package sanitize implements the Diagram Validator / Sanitizer (§4.4).
//
// Directly grounded on pkg/masking/pattern.go and pkg/masking/service.go:
// the same CompiledPattern table and "blocked fraction" threshold guard
// the teacher uses to scrub secrets out of alert payloads before they
// reach an LLM. Where masking *replaces* a matched token with a
// placeholder, the sanitizer *blocks/strips* it outright and records it —
// same mechanism, opposite policy (masking hides; sanitizing refuses).
package sanitize

import "regexp"

// Format is a renderer input dialect the sanitizer understands.
type Format string

const (
	FormatPlantUML Format = "plantuml"
	FormatMermaid  Format = "mermaid"
)

// CompiledPattern is one blocked-token rule for a given format.
type CompiledPattern struct {
	Name    string
	Regex   *regexp.Regexp
	Blocked bool // true: strip and record; false: reserved for future whitelist-only entries
}

// plantUMLPatterns blocks file includes, remote URL references, and
// pragma/skin directives that can exfiltrate data or alter the sandboxed
// renderer's behavior.
var plantUMLPatterns = []CompiledPattern{
	{Name: "include_directive", Regex: regexp.MustCompile(`(?m)^\s*!include\b.*$`), Blocked: true},
	{Name: "import_directive", Regex: regexp.MustCompile(`(?m)^\s*!import\b.*$`), Blocked: true},
	{Name: "pragma_directive", Regex: regexp.MustCompile(`(?m)^\s*!pragma\b.*$`), Blocked: true},
	{Name: "skinparam_background_image", Regex: regexp.MustCompile(`(?i)skinparam\s+backgroundImage\b.*`), Blocked: true},
	{Name: "url_reference", Regex: regexp.MustCompile(`(?i)url\([^)]*\)`), Blocked: true},
}

// mermaidPatterns blocks init-config blocks (which can inject arbitrary
// theme/CSS or, in vulnerable renderer builds, script-adjacent config)
// and raw HTML in labels.
var mermaidPatterns = []CompiledPattern{
	{Name: "init_block", Regex: regexp.MustCompile(`(?s)%%\{\s*init\s*:.*?\}%%`), Blocked: true},
	{Name: "html_tag", Regex: regexp.MustCompile(`(?i)<\s*(script|iframe|img|style|a)\b[^>]*>`), Blocked: true},
}

func patternsFor(format Format) []CompiledPattern {
	switch format {
	case FormatPlantUML:
		return plantUMLPatterns
	case FormatMermaid:
		return mermaidPatterns
	default:
		return nil
	}
}
