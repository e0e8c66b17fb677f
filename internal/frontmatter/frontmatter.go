// Package frontmatter parses the restricted YAML-like metadata block at the
// top of an Obsidian note. It is deliberately not a YAML parser: values are
// either raw scalars or bracket/comma lists whose quoted tokens keep their
// quotes, and malformed input degrades to missing keys rather than errors.
package frontmatter

import (
	"regexp"
	"strings"
)

// listTokenRe tokenizes list values. A token is either a double-quoted
// string (backslash escapes allowed) or a run of characters that are not
// whitespace, commas, or quotes.
var listTokenRe = regexp.MustCompile(`(?:[^\s,"]|"(?:\\.|[^"])*")+`)

// Value is one frontmatter value: a scalar string or an ordered token list.
type Value struct {
	Scalar string
	List   []string
	IsList bool
}

// Frontmatter maps keys to parsed values. Lookups for absent keys return
// zero values, never errors.
type Frontmatter map[string]Value

// Has reports whether key carries a value.
func (fm Frontmatter) Has(key string) bool {
	_, ok := fm[key]
	return ok
}

// Scalar returns the scalar value for key, or "" when key is absent or
// holds a list.
func (fm Frontmatter) Scalar(key string) string {
	v, ok := fm[key]
	if !ok || v.IsList {
		return ""
	}
	return v.Scalar
}

// List returns the list value for key, or nil when key is absent or holds
// a scalar.
func (fm Frontmatter) List(key string) []string {
	v, ok := fm[key]
	if !ok || !v.IsList {
		return nil
	}
	return v.List
}

// Parse extracts the frontmatter block from raw note text. The block exists
// only when the very first line is "---"; scanning stops at the next "---"
// line or end of input. Each line is split on the first colon; lines with an
// empty value are skipped. The "tags" and "aliases" keys are always coerced
// to lists; "title" is never listified.
func Parse(text string) Frontmatter {
	fm := Frontmatter{}
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || lines[0] != "---" {
		return fm
	}
	for _, line := range lines[1:] {
		if strings.TrimRight(line, "\r") == "---" {
			break
		}
		key, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		raw := strings.TrimSpace(rest)
		if raw == "" {
			continue
		}
		var v Value
		if key == "title" {
			v = Value{Scalar: raw}
		} else {
			v = maybeSplitList(raw)
		}
		if (key == "tags" || key == "aliases") && !v.IsList {
			v = Value{List: []string{v.Scalar}, IsList: true}
		}
		fm[key] = v
	}
	return fm
}

// maybeSplitList promotes raw to a list when it looks like one: it starts
// with '[' or contains a comma. Surrounding brackets are stripped; quoted
// tokens keep their quotes.
func maybeSplitList(raw string) Value {
	if !strings.HasPrefix(raw, "[") && !strings.Contains(raw, ",") {
		return Value{Scalar: raw}
	}
	s := raw
	if strings.HasPrefix(s, "[") {
		s = strings.TrimPrefix(s, "[")
		s = strings.TrimSuffix(s, "]")
	}
	return Value{List: listTokenRe.FindAllString(s, -1), IsList: true}
}
