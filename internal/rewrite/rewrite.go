// Package rewrite applies the Obsidian-specific text rewrites that surround
// the external Markdown→org conversion: comment and code-block fixes before
// the engine runs, link and embed fixes on its output.
package rewrite

import (
	"regexp"
	"strings"
)

// CommentSentinel prefixes each line of a block comment so the text passes
// through the external engine as literal content. It is unwound afterwards
// by RestoreComments.
const CommentSentinel = "#!#comment:"

var (
	runBlockRe = regexp.MustCompile("```run-(.*)")
	shBlockRe  = regexp.MustCompile("```sh\\b")

	// labeledLinkRe matches [[Name|Label]]. It must run before bareLinkRe,
	// which would otherwise partially match the first segment.
	labeledLinkRe = regexp.MustCompile(`\[\[([^.]*?)\|(.*?)\]\]`)
	// bareLinkRe matches [[Name]] where Name has no '|' or '.'.
	bareLinkRe = regexp.MustCompile(`\[\[([^|\[.]*?)\]\]`)
	// imageEmbedRe and pdfEmbedRe match ![[dir/file.ext]] style embeds; the
	// directory prefix is discarded. Both must run before bareLinkRe.
	imageEmbedRe = regexp.MustCompile(`!?\[\[(?:[^|\[\].]*/)?([^/\]]+\.(?:png|jpe?g|svg|gif))\]\]`)
	pdfEmbedRe   = regexp.MustCompile(`!?\[\[(?:[^|\[\].]*/)?([^/\]]+\.(?:pdf|PDF))\]\]`)
)

// PrepareMarkdown applies every pre-conversion rewrite: comment blocks
// first, then code-block language tags.
func PrepareMarkdown(md string) string {
	return FixCodeBlocks(FixComments(md))
}

// FixCodeBlocks rewrites Obsidian code-block dialects: fences tagged
// "run-LANG" (Execute Code plugin) become plain "LANG", and "sh" becomes
// "shell".
func FixCodeBlocks(md string) string {
	md = runBlockRe.ReplaceAllString(md, "```$1")
	return shBlockRe.ReplaceAllString(md, "```shell")
}

// FixComments converts %%...%% Obsidian comments. The text is split on every
// %% marker and alternating segments are comment bodies: multi-line bodies
// get the sentinel prefixed to each line (a leading blank line is dropped),
// single-line bodies are wrapped as HTML comments.
func FixComments(md string) string {
	chunks := strings.Split(md, "%%")
	var b strings.Builder
	inside := false
	for _, chunk := range chunks {
		if !inside {
			b.WriteString(chunk)
			inside = true
			continue
		}
		if strings.Contains(chunk, "\n") {
			lines := splitKeepEnds(chunk)
			if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
				lines = lines[1:]
			}
			for _, line := range lines {
				b.WriteString(CommentSentinel)
				b.WriteString(line)
			}
		} else {
			b.WriteString("<!--")
			b.WriteString(chunk)
			b.WriteString("-->")
		}
		inside = false
	}
	return b.String()
}

// RestoreComments turns every surviving sentinel into an org line comment.
func RestoreComments(org string) string {
	return strings.ReplaceAll(org, CommentSentinel, "# ")
}

// splitKeepEnds splits s after each newline, keeping the newline on each
// piece.
func splitKeepEnds(s string) []string {
	var out []string
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			out = append(out, s)
			break
		}
		out = append(out, s[:i+1])
		s = s[i+1:]
	}
	return out
}

// LinkRewriter rewrites wiki-style links and embeds in converted org text.
// Its rules run in a fixed order: labeled links and image/PDF embeds are
// rewritten before bare links, and percent-encoded spaces are decoded last.
type LinkRewriter struct {
	rules []func(string) string
}

// NewLinkRewriter builds the post-conversion rule pipeline. imagePrefix and
// attachmentPrefix are the org link-abbreviation names used for image and
// PDF embeds.
func NewLinkRewriter(imagePrefix, attachmentPrefix string) *LinkRewriter {
	return &LinkRewriter{rules: []func(string) string{
		func(s string) string { return labeledLinkRe.ReplaceAllString(s, "[[file:$1.org][$2]]") },
		func(s string) string { return imageEmbedRe.ReplaceAllString(s, "[["+imagePrefix+":$1]]") },
		func(s string) string { return pdfEmbedRe.ReplaceAllString(s, "[["+attachmentPrefix+":$1]]") },
		func(s string) string { return bareLinkRe.ReplaceAllString(s, "[[file:$1.org][$1]]") },
		func(s string) string { return strings.ReplaceAll(s, "%20", " ") },
	}}
}

// Rewrite runs every post-conversion rule over org in order.
func (l *LinkRewriter) Rewrite(org string) string {
	for _, rule := range l.rules {
		org = rule(org)
	}
	return org
}
