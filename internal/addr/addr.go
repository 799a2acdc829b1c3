// Package addr builds and parses Obsidian URIs that address a quote inside a
// source note. Encoding and decoding are pure string functions; Decode is the
// exact inverse of Encode.
package addr

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/halvard/quotesync/internal/parser"
)

// anchorSep joins the encoded file name and the encoded block identifier.
// Obsidian expects the "#" itself to be percent-encoded in the file parameter.
const anchorSep = "%23"

// Encode returns an obsidian://open URI pointing at blockID inside the note
// titled title within vault.
func Encode(vault, title, blockID string) string {
	return fmt.Sprintf("obsidian://open?vault=%s&file=%s%s%s",
		vault, url.PathEscape(title), anchorSep, url.PathEscape(blockID))
}

// Decode recovers the (title, blockID) pair from a URI produced by Encode.
// A literal "#" in the title is escaped to the same bytes as the anchor
// separator, so the split happens at the last separator: block identifiers
// never contain "#", titles may.
func Decode(uri string) (title, blockID string, err error) {
	_, after, found := strings.Cut(uri, "&file=")
	if !found {
		return "", "", fmt.Errorf("addr: no file parameter in %q", uri)
	}
	i := strings.LastIndex(after, anchorSep)
	if i < 0 {
		return "", "", fmt.Errorf("addr: no block anchor in %q", uri)
	}
	title, err = url.PathUnescape(after[:i])
	if err != nil {
		return "", "", fmt.Errorf("addr: bad title encoding: %w", err)
	}
	blockID, err = url.PathUnescape(after[i+len(anchorSep):])
	if err != nil {
		return "", "", fmt.Errorf("addr: bad block encoding: %w", err)
	}
	if !parser.IsBlockID(blockID) {
		return "", "", fmt.Errorf("addr: malformed block identifier %q in %q", blockID, uri)
	}
	return title, blockID, nil
}
