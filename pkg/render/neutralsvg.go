package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/diagramaut/diagramaut/pkg/apierr"
)

// deniedSVGElements can carry active content (scripts, remote fetches,
// embedded foreign documents) and are never allowed in renderer output,
// stripped or not. Grounded on the same blocked-token-table idiom as
// pkg/sanitize/pattern.go, applied to SVG elements instead of dialect
// text.
var deniedSVGElements = map[string]bool{
	"script":      true,
	"foreignobject": true,
	"iframe":      true,
	"image":       true,
	"use":         true,
}

// strippableSVGAttrs are stripped when present rather than rejected
// outright, since renderers routinely emit them for default styling and
// the Neutral-SVG Validator's job is to enforce "no aesthetic directives
// survive", not to reject every renderer's normal output.
var strippableSVGAttrs = map[string]bool{
	"fill":      true,
	"stroke":    true,
	"style":     true,
	"font":      true,
	"font-size": true,
}

// defaultFillStroke are the values strippableSVGAttrs entries are allowed
// to carry without being stripped — renderer defaults, not agent-chosen
// aesthetics.
var defaultFillStroke = map[string]bool{
	"none":  true,
	"black": true,
	"#000":  true,
	"#000000": true,
}

// ValidateNeutralSVG walks raw renderer SVG output and returns a
// stripped, neutral SVG with no non-default fill/stroke/style content and
// no active-content elements (§4.6: "Renderer output must be
// aesthetically neutral — the validator strips disallowed attributes and
// rejects the whole SVG if a denied element is present or more than the
// allowed fraction needed stripping").
func ValidateNeutralSVG(svg string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(svg))
	var out bytes.Buffer
	encoder := xml.NewEncoder(&out)

	var total, stripped int

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if deniedSVGElements[strings.ToLower(t.Name.Local)] {
				return "", apierr.New(apierr.RenderFailed, fmt.Sprintf("renderer output contains denied element <%s>", t.Name.Local))
			}

			kept := t.Attr[:0]
			for _, attr := range t.Attr {
				total++
				name := strings.ToLower(attr.Name.Local)
				if strippableSVGAttrs[name] && !defaultFillStroke[strings.ToLower(attr.Value)] {
					stripped++
					continue
				}
				kept = append(kept, attr)
			}
			t.Attr = kept
			if err := encoder.EncodeToken(t); err != nil {
				return "", apierr.New(apierr.RenderFailed, fmt.Sprintf("re-encoding SVG: %v", err))
			}
		default:
			if err := encoder.EncodeToken(tok); err != nil {
				return "", apierr.New(apierr.RenderFailed, fmt.Sprintf("re-encoding SVG: %v", err))
			}
		}
	}

	if err := encoder.Flush(); err != nil {
		return "", apierr.New(apierr.RenderFailed, fmt.Sprintf("flushing SVG encoder: %v", err))
	}

	if total > 0 && float64(stripped)/float64(total) > MaxStrippedFraction {
		return "", apierr.New(apierr.RenderFailed, "renderer output required stripping too large a fraction of styling attributes to trust")
	}

	return out.String(), nil
}

// MaxStrippedFraction bounds how much of a renderer's styling attributes
// the validator will silently strip before concluding the renderer itself
// is misbehaving (producing aesthetic output it should never produce) and
// rejecting the whole SVG — mirrors sanitize.MaxBlockedFraction.
const MaxStrippedFraction = 0.5
