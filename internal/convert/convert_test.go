package convert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/raido/internal/rewrite"
	"github.com/starford/raido/internal/testutil"
)

func testConverter() *Converter {
	return NewConverter(&testutil.StubEngine{}, rewrite.NewLinkRewriter("org-roam-images", "org-roam-attachments"))
}

func TestConvertBody_EndToEnd(t *testing.T) {
	c := testConverter()
	in := "# Title\n\nHello <!-- x --> world.\n\n%%\nblock note\n%%\n\n---\nafter\n"
	want := "* Title\n\nHello world.\n\n# block note\n\n\n--------------\nafter\n"

	got, err := c.ConvertBody(context.Background(), in)
	if err != nil {
		t.Fatalf("ConvertBody: %v", err)
	}
	if got != want {
		t.Errorf("ConvertBody = %q, want %q", got, want)
	}
	if strings.Contains(got, rewrite.CommentSentinel) {
		t.Error("sentinel survived into output")
	}
}

func TestConvertBody_LinksRewritten(t *testing.T) {
	c := testConverter()
	got, err := c.ConvertBody(context.Background(), "See [[Other Note]] and ![[pic.png]].\n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "[[file:Other Note.org][Other Note]]") {
		t.Errorf("bare link not rewritten: %q", got)
	}
	if !strings.Contains(got, "[[org-roam-images:pic.png]]") {
		t.Errorf("image embed not rewritten: %q", got)
	}
}

func TestConvertNote_HeaderAndBody(t *testing.T) {
	c := testConverter()
	md := "---\ntitle: Nice Title\ntags: go\n---\n# Heading\nBody.\n"

	res, err := c.ConvertNote(context.Background(), "Base Name", md)
	if err != nil {
		t.Fatal(err)
	}
	if res.Title != "Nice Title" {
		t.Errorf("title = %q", res.Title)
	}
	if got := testutil.ExtractID(t, res.Content); got != res.ID {
		t.Errorf("embedded id = %q, want %q", got, res.ID)
	}
	if !strings.HasPrefix(res.Content, ":PROPERTIES:\n:ID: ") {
		t.Errorf("content does not start with the drawer: %q", res.Content)
	}
	if !strings.Contains(res.Content, "#+filetags: :go:\n") {
		t.Errorf("missing filetags: %q", res.Content)
	}
}

func TestConvertNote_FreshIdentifierPerCall(t *testing.T) {
	c := testConverter()
	a, err := c.ConvertNote(context.Background(), "Same", "text\n")
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.ConvertNote(context.Background(), "Same", "text\n")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Error("identifiers must be regenerated on every conversion")
	}
}

func TestConvertNote_EngineFailureFatal(t *testing.T) {
	boom := errors.New("exit status 1")
	c := NewConverter(&testutil.StubEngine{Err: boom}, rewrite.NewLinkRewriter("i", "a"))
	if _, err := c.ConvertNote(context.Background(), "x", "y"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped engine error", err)
	}
}
