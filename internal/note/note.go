// Package note models a Markdown file as a frontmatter map plus a body,
// round-trippable through Parse and Render. It is the representation the
// transformation pipeline and the destination vault operate on.
package note

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/halvard/quotesync/internal/parser"
)

// Document is a Markdown note split into YAML frontmatter and body.
type Document struct {
	Frontmatter map[string]interface{}
	Body        string
}

// Parse splits raw Markdown bytes into frontmatter and body. Notes without
// frontmatter get an empty map so callers can set fields unconditionally.
func Parse(data []byte) *Document {
	fm, body := parser.SplitFrontmatter(data)
	if fm == nil {
		fm = map[string]interface{}{}
	}
	return &Document{Frontmatter: fm, Body: body}
}

// Render serialises the document back to Markdown. Frontmatter keys are
// emitted in sorted order, which keeps repeated renders byte-stable.
func (d *Document) Render() []byte {
	var b strings.Builder
	if len(d.Frontmatter) > 0 {
		out, err := yaml.Marshal(d.Frontmatter)
		if err == nil {
			b.WriteString("---\n")
			b.Write(out)
			b.WriteString("---\n\n")
		}
	}
	b.WriteString(d.Body)
	if !strings.HasSuffix(d.Body, "\n") {
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// Bool returns the named frontmatter field as a bool, false when absent or
// of another type.
func (d *Document) Bool(key string) bool {
	v, ok := d.Frontmatter[key].(bool)
	return ok && v
}

// String returns the named frontmatter field as a string, "" when absent.
func (d *Document) String(key string) string {
	s, _ := d.Frontmatter[key].(string)
	return s
}

// Set stores a frontmatter field.
func (d *Document) Set(key string, value interface{}) {
	d.Frontmatter[key] = value
}

// Version returns the recorded format version. Notes written before version
// tracking have no field and report 0, which makes every transformation apply.
func (d *Document) Version() int {
	switch v := d.Frontmatter["version"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// SetVersion stamps the recorded format version.
func (d *Document) SetVersion(v int) {
	d.Frontmatter["version"] = v
}
