package convert

import (
	"fmt"
	"strings"

	"github.com/starford/raido/internal/frontmatter"
)

// NoteTitle derives the emitted title for a note: the frontmatter "title"
// when present (with one surrounding quote pair stripped), except for
// reference notes (base name starting with "@"), which always keep the base
// name as their title.
func NoteTitle(basename string, fm frontmatter.Frontmatter) string {
	if !fm.Has("title") || strings.HasPrefix(basename, "@") {
		return basename
	}
	title := fm.Scalar("title")
	if len(title) >= 2 && strings.HasPrefix(title, `"`) && strings.HasSuffix(title, `"`) {
		title = title[1 : len(title)-1]
	}
	return title
}

// BuildHeader renders the property drawer and file-level metadata emitted at
// the top of every converted note. The identifier property always comes
// first; a blank separator line follows the header before the body.
func BuildHeader(basename, id string, fm frontmatter.Frontmatter) string {
	var b strings.Builder
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", id)

	if aliases := fm.List("aliases"); len(aliases) > 0 {
		fmt.Fprintf(&b, ":ROAM_ALIASES: %s\n", strings.Join(aliases, " "))
	}
	if strings.HasPrefix(basename, "@") {
		// Reference/literature note convention: point at the citation key.
		fmt.Fprintf(&b, ":ROAM_REFS: [cite:%s]\n", basename)
	}
	b.WriteString(":END:\n")

	fmt.Fprintf(&b, "#+title: %s\n", NoteTitle(basename, fm))

	if fm.Has("date-created") {
		fmt.Fprintf(&b, "#+created: [%s]\n", fm.Scalar("date-created"))
	}
	if tags := fm.List("tags"); len(tags) > 0 {
		fmt.Fprintf(&b, "#+filetags: :%s:\n", strings.Join(tags, ":"))
	}

	b.WriteString("\n\n")
	return b.String()
}
