// Package convert turns Obsidian Markdown notes into org-roam notes. It
// orchestrates the pre/post text rewrites around the external conversion
// engine, assigns identifiers, and runs the two-phase directory pipeline:
// convert-and-register every note, then resolve cross-note links against the
// completed identity table.
package convert

import (
	"context"

	"github.com/starford/raido/internal/engine"
	"github.com/starford/raido/internal/frontmatter"
	"github.com/starford/raido/internal/identity"
	"github.com/starford/raido/internal/rewrite"
)

// Converter produces one org note from one Markdown note.
type Converter struct {
	engine engine.Converter
	links  *rewrite.LinkRewriter
}

// Result is the outcome of converting a single note.
type Result struct {
	ID      string
	Title   string
	Content string
}

// NewConverter builds a single-note converter around the given engine and
// link rewriter.
func NewConverter(eng engine.Converter, links *rewrite.LinkRewriter) *Converter {
	return &Converter{engine: eng, links: links}
}

// ConvertBody runs the pre-conversion rewrites, the external engine, and the
// post-conversion rewrites over raw Markdown, yielding an org body without a
// header drawer.
func (c *Converter) ConvertBody(ctx context.Context, markdown string) (string, error) {
	prepared := rewrite.PrepareMarkdown(markdown)
	org, err := c.engine.Convert(ctx, prepared)
	if err != nil {
		return "", err
	}
	org = rewrite.RestoreComments(org)
	return c.links.Rewrite(org), nil
}

// ConvertNote converts markdown into a complete org note: a freshly
// generated identifier, a header drawer built from the note's frontmatter,
// and the converted body.
func (c *Converter) ConvertNote(ctx context.Context, basename, markdown string) (*Result, error) {
	body, err := c.ConvertBody(ctx, markdown)
	if err != nil {
		return nil, err
	}
	fm := frontmatter.Parse(markdown)
	id := identity.New()
	return &Result{
		ID:      id,
		Title:   NoteTitle(basename, fm),
		Content: BuildHeader(basename, id, fm) + body,
	}, nil
}
