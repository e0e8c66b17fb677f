package convert

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/raido/internal/identity"
)

// fileLinkRe matches org file links of the form [[file:X.org][Label]].
var fileLinkRe = regexp.MustCompile(`\[\[file:(.*?)\]\[(.*?)\]\]`)

// ResolveFileLinks rewrites every file link whose target base name is
// registered in table into an id link carrying the same label. Percent-
// encoded spaces in the target are decoded before lookup. Unregistered
// targets are left untouched: partial corpora and external file links are
// expected, so a miss is not an error. Returns the rewritten text and the
// number of links resolved.
func ResolveFileLinks(org string, table *identity.Table) (string, int) {
	resolved := 0
	out := fileLinkRe.ReplaceAllStringFunc(org, func(match string) string {
		m := fileLinkRe.FindStringSubmatch(match)
		target := strings.ReplaceAll(m[1], "%20", " ")
		base := filepath.Base(target)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		id, ok := table.Lookup(stem)
		if !ok {
			return match
		}
		resolved++
		return "[[id:" + id + "][" + m[2] + "]]"
	})
	return out, resolved
}
