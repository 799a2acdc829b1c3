// Package parser extracts YAML frontmatter and blockquote fragments from Markdown content.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/halvard/quotesync/internal/apperr"
	"github.com/halvard/quotesync/internal/models"
)

var blockIDRe = regexp.MustCompile(`^\^Quote(\d{3,})$`)

// DuplicateIdentifierError reports a block identifier that appears more than
// once in a single note, which makes fragment ownership ambiguous.
type DuplicateIdentifierError struct {
	BlockID string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("block identifier %s appears more than once", e.BlockID)
}

func (e *DuplicateIdentifierError) Unwrap() error {
	return apperr.ErrDuplicateIdentifier
}

// IsBlockID reports whether the trimmed line is a stable quote identifier.
func IsBlockID(line string) bool {
	return blockIDRe.MatchString(strings.TrimSpace(line))
}

// Ordinal returns the numeric part of a block identifier, or 0 if the
// identifier does not match the expected pattern.
func Ordinal(blockID string) int {
	m := blockIDRe.FindStringSubmatch(strings.TrimSpace(blockID))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// FormatBlockID renders an ordinal as a block identifier, zero-padded to at
// least three digits: 1 → "^Quote001", 1000 → "^Quote1000".
func FormatBlockID(n int) string {
	return fmt.Sprintf("^Quote%03d", n)
}

// ExtractFragments scans body line by line and returns the ordered blockquote
// fragments. Consecutive ">"-prefixed lines form one fragment; a block
// identifier line immediately after the group binds to it. Fragments without
// an identifier are returned with an empty BlockID and ActionAssignID.
//
// Returns a DuplicateIdentifierError if the same identifier is bound twice.
func ExtractFragments(body string) ([]models.Fragment, error) {
	lines := strings.Split(body, "\n")
	var frags []models.Fragment
	seen := make(map[string]struct{})

	i := 0
	for i < len(lines) {
		if !isQuoteLine(lines[i]) {
			i++
			continue
		}
		start := i
		var text []string
		for i < len(lines) && isQuoteLine(lines[i]) {
			text = append(text, stripQuoteMarker(lines[i]))
			i++
		}
		f := models.Fragment{
			Text:      strings.TrimSpace(strings.Join(text, "\n")),
			StartLine: start,
			EndLine:   i - 1,
		}
		if i < len(lines) && IsBlockID(lines[i]) {
			f.BlockID = strings.TrimSpace(lines[i])
			if _, dup := seen[f.BlockID]; dup {
				return nil, &DuplicateIdentifierError{BlockID: f.BlockID}
			}
			seen[f.BlockID] = struct{}{}
			i++
		} else {
			f.Request(models.ActionAssignID)
		}
		frags = append(frags, f)
	}
	return frags, nil
}

// MaxOrdinal returns the highest identifier ordinal found anywhere in body,
// or 0 when the body carries no identifiers. New identifiers are assigned
// starting at MaxOrdinal+1 so that ordinals are never reused, even after a
// lower-numbered fragment has been removed.
func MaxOrdinal(body string) int {
	max := 0
	for _, line := range strings.Split(body, "\n") {
		if n := Ordinal(line); n > max {
			max = n
		}
	}
	return max
}

func isQuoteLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), ">")
}

// stripQuoteMarker removes the leading quote markers and padding, keeping
// inner whitespace intact: "> text" → "text", ">text" → "text".
func stripQuoteMarker(line string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(line), "> ")
	return strings.TrimRight(trimmed, " \t")
}

// SplitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found, or the YAML is invalid,
// the entire content is returned as body with a nil map.
func SplitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter — treat everything as body.
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}
