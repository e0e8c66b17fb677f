package convert

import (
	"strings"
	"testing"

	"github.com/starford/raido/internal/frontmatter"
)

func TestBuildHeader_Defaults(t *testing.T) {
	h := BuildHeader("My Note", "ID1", frontmatter.Frontmatter{})
	want := ":PROPERTIES:\n:ID: ID1\n:END:\n#+title: My Note\n\n\n"
	if h != want {
		t.Errorf("header = %q, want %q", h, want)
	}
}

func TestBuildHeader_FullFrontmatter(t *testing.T) {
	fm := frontmatter.Parse("---\ntitle: \"Test Title\"\naliases: [\"foo bar\" baz]\ntags: [t1,t2]\ndate-created: 2022-09-05\n---\nbody\n")
	h := BuildHeader("My Note", "ID1", fm)

	lines := strings.Split(h, "\n")
	if lines[0] != ":PROPERTIES:" || lines[1] != ":ID: ID1" {
		t.Errorf("drawer start = %q, %q", lines[0], lines[1])
	}
	if lines[2] != `:ROAM_ALIASES: "foo bar" baz` {
		t.Errorf("aliases line = %q", lines[2])
	}
	if lines[3] != ":END:" {
		t.Errorf("drawer end = %q", lines[3])
	}
	if lines[4] != "#+title: Test Title" {
		t.Errorf("title line = %q (quotes should be stripped)", lines[4])
	}
	if lines[5] != "#+created: [2022-09-05]" {
		t.Errorf("created line = %q", lines[5])
	}
	if lines[6] != "#+filetags: :t1:t2:" {
		t.Errorf("filetags line = %q", lines[6])
	}
	if !strings.HasSuffix(h, "\n\n") {
		t.Error("header missing blank separator line")
	}
}

func TestBuildHeader_ReferenceNote(t *testing.T) {
	fm := frontmatter.Parse("---\ntitle: Should Be Ignored\n---\n")
	h := BuildHeader("@doe2022", "ID1", fm)

	if !strings.Contains(h, ":ROAM_REFS: [cite:@doe2022]\n") {
		t.Errorf("missing references property: %q", h)
	}
	if !strings.Contains(h, "#+title: @doe2022\n") {
		t.Errorf("reference note title must stay the base name: %q", h)
	}
}

func TestNoteTitle(t *testing.T) {
	cases := []struct {
		name     string
		basename string
		fm       string
		want     string
	}{
		{"no frontmatter", "Base", "", "Base"},
		{"frontmatter title", "Base", "---\ntitle: Better\n---\n", "Better"},
		{"quoted title stripped", "Base", "---\ntitle: \"Quoted\"\n---\n", "Quoted"},
		{"reference note keeps base", "@ref", "---\ntitle: Nope\n---\n", "@ref"},
		{"lone quote kept", "Base", "---\ntitle: \"\n---\n", "\""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fm := frontmatter.Parse(tc.fm)
			if got := NoteTitle(tc.basename, fm); got != tc.want {
				t.Errorf("NoteTitle = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildHeader_NoAliasesNoTags(t *testing.T) {
	fm := frontmatter.Parse("---\ntitle: T\n---\n")
	h := BuildHeader("Base", "ID1", fm)
	if strings.Contains(h, "ROAM_ALIASES") {
		t.Error("aliases property emitted without aliases")
	}
	if strings.Contains(h, "filetags") {
		t.Error("filetags emitted without tags")
	}
}
