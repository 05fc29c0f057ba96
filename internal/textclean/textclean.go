package textclean

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// StripHTML decodes HTML entities, removes all tag markup, and collapses
// whitespace runs to single spaces. Total: any input yields a plain string.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	// Unescape before stripping so entity-encoded markup is removed too;
	// the policy re-escapes its output, hence the second unescape.
	s = html.UnescapeString(s)
	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// mojibakeRule maps one corrupted byte sequence to its intended character.
type mojibakeRule struct {
	from string
	to   string
}

// mojibakeRules repairs UTF-8 text that was decoded under a legacy single-byte
// codepage and re-encoded. The corrupted sequences are disjoint from normal
// text, and multi-byte keys precede their own prefixes, so applying the table
// twice changes nothing. Inputs that render alike are distinct byte sequences
// and are kept as separate rules.
var mojibakeRules = []mojibakeRule{
	{"鈥�", "'"},        // GBK-mangled right single quote plus replacement char
	{"鈥", "'"},              // bare GBK-mangled quote
	{"â€™", "'"},  // cp1252 right single quote
	{"â€˜", "'"},  // cp1252 left single quote
	{"â€“", "-"},  // cp1252 en dash
	{"â€”", "-"},  // cp1252 em dash
	{"â€œ", "\""}, // cp1252 left double quote
	{"â€", "\""}, // cp1252 right double quote
	{"â€", "\""},       // truncated double quote, must stay last
}

// RepairMojibake applies the fixed corruption-repair table in order.
// Idempotent; returns the input unchanged when no rule matches.
func RepairMojibake(s string) string {
	if s == "" {
		return s
	}
	for _, r := range mojibakeRules {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	return s
}

// Clean runs the full strip-then-repair pipeline.
func Clean(s string) string {
	return RepairMojibake(StripHTML(s))
}
