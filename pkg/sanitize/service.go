package sanitize

import (
	"strings"

	"github.com/diagramaut/diagramaut/pkg/apierr"
)

// MaxBlockedFraction bounds how much of the input may be stripped before
// the whole request is refused outright rather than returned with
// warnings — mirrors the masking service's MaxPatternsPerServer guard:
// past a point, "mostly blocked" input isn't safely usable at all, and
// returning a mangled diagram is worse than refusing it.
const MaxBlockedFraction = 0.3

// Result is the sanitizer's output contract (§4.4).
type Result struct {
	SanitizedText string   `json:"sanitized_text"`
	Warnings      []string `json:"warnings,omitempty"`
	BlockedTokens []string `json:"blocked_tokens,omitempty"`
}

// Sanitize strips blocked tokens from renderer input text for the given
// format and records what it removed. Returns apierr.UnsafeInput if the
// blocked fraction of the input exceeds MaxBlockedFraction.
func Sanitize(text string, format Format) (*Result, error) {
	patterns := patternsFor(format)
	sanitized := text
	var blocked []string
	var warnings []string

	for _, p := range patterns {
		matches := p.Regex.FindAllString(sanitized, -1)
		if len(matches) == 0 {
			continue
		}
		for _, m := range matches {
			blocked = append(blocked, strings.TrimSpace(m))
		}
		warnings = append(warnings, p.Name)
		sanitized = p.Regex.ReplaceAllString(sanitized, "")
	}

	if fraction := blockedFraction(text, blocked); fraction > MaxBlockedFraction {
		return nil, apierr.New(apierr.UnsafeInput,
			"too large a fraction of input was blocked to safely render")
	}

	return &Result{
		SanitizedText: sanitized,
		Warnings:      warnings,
		BlockedTokens: blocked,
	}, nil
}

// blockedFraction approximates "how much of the input was unsafe" as the
// ratio of blocked-token characters to total input characters — a rough
// but conservative proxy that doesn't require re-tokenizing the dialect.
func blockedFraction(original string, blocked []string) float64 {
	if len(original) == 0 {
		return 0
	}
	blockedChars := 0
	for _, b := range blocked {
		blockedChars += len(b)
	}
	return float64(blockedChars) / float64(len(original))
}
