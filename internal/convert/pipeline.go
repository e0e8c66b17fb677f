package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/identity"
	"github.com/starford/raido/internal/manifest"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// Pipeline runs the two-phase directory conversion. Phase one walks the
// source tree sequentially, converting every note and copying every asset;
// phase two re-reads every produced org file and resolves file links against
// the identity table completed in phase one. Phase two never starts before
// phase one finishes: forward references must resolve too.
type Pipeline struct {
	src       *storage.FS
	dst       *storage.FS
	converter *Converter
	recorder  manifest.Recorder // nil disables the manifest
	skip      *regexp.Regexp    // nil skips nothing
	imageDir  string            // flat destination for image assets; empty mirrors
	pdfDir    string            // flat destination for PDF assets; empty mirrors
	logger    *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRecorder records notes and assets in a manifest.
func WithRecorder(rec manifest.Recorder) PipelineOption {
	return func(p *Pipeline) { p.recorder = rec }
}

// WithSkip skips source paths matching re.
func WithSkip(re *regexp.Regexp) PipelineOption {
	return func(p *Pipeline) { p.skip = re }
}

// WithImageDir copies image assets flat into dir instead of mirroring them.
func WithImageDir(dir string) PipelineOption {
	return func(p *Pipeline) { p.imageDir = dir }
}

// WithPDFDir copies PDF assets flat into dir instead of mirroring them.
func WithPDFDir(dir string) PipelineOption {
	return func(p *Pipeline) { p.pdfDir = dir }
}

// NewPipeline builds a pipeline converting the src tree into the dst tree.
func NewPipeline(src, dst *storage.FS, converter *Converter, logger *slog.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{src: src, dst: dst, converter: converter, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes both phases and returns a summary. Any error is fatal for
// the whole run; the output tree is left as-is with no rollback.
func (p *Pipeline) Run(ctx context.Context) (*models.Summary, error) {
	sum := &models.Summary{}
	table := identity.NewTable()

	if err := p.convertAll(ctx, table, sum); err != nil {
		return nil, err
	}
	if err := p.resolveAll(table, sum); err != nil {
		return nil, err
	}

	p.logger.Info("run complete",
		slog.Int("notes", sum.Notes),
		slog.Int("assets", sum.Assets),
		slog.Int("links_resolved", sum.LinksResolved))
	return sum, nil
}

// convertAll is phase one: each source file is processed to completion
// before the next begins.
func (p *Pipeline) convertAll(ctx context.Context, table *identity.Table, sum *models.Summary) error {
	return p.src.Walk(func(rel string) error {
		if filepath.Base(rel) == ".DS_Store" {
			return nil
		}
		if p.skip != nil && p.skip.MatchString(filepath.ToSlash(rel)) {
			return nil
		}
		if filepath.Ext(rel) != ".md" {
			return p.copyAsset(rel, sum)
		}
		return p.convertNote(ctx, rel, table, sum)
	})
}

func (p *Pipeline) convertNote(ctx context.Context, rel string, table *identity.Table, sum *models.Summary) error {
	data, err := p.src.Read(rel)
	if err != nil {
		return err
	}

	basename := strings.TrimSuffix(filepath.Base(rel), ".md")
	orgRel := strings.TrimSuffix(rel, ".md") + ".org"

	res, err := p.converter.ConvertNote(ctx, basename, string(data))
	if err != nil {
		return fmt.Errorf("convert %s: %w", rel, err)
	}
	if err := p.dst.Write(orgRel, []byte(res.Content)); err != nil {
		return err
	}

	if !table.Register(basename, res.ID) {
		p.logger.Warn("duplicate base name, earlier identifier overwritten",
			slog.String("basename", basename),
			slog.String("path", rel))
	}

	if p.recorder != nil {
		rec := models.ConversionRecord{
			Basename:    basename,
			SourcePath:  rel,
			OrgPath:     orgRel,
			ID:          res.ID,
			Title:       res.Title,
			Checksum:    checksum.Sum([]byte(res.Content)),
			ConvertedAt: time.Now().UTC(),
		}
		if err := p.recorder.RecordNote(rec); err != nil {
			return err
		}
	}

	sum.Notes++
	p.logger.Info("converted note",
		slog.String("source", rel),
		slog.String("output", orgRel),
		slog.String("id", res.ID))
	return nil
}

// copyAsset copies a non-note file: images and PDFs go flat into their
// configured destination directories, everything else mirrors the source
// tree inside the output directory.
func (p *Pipeline) copyAsset(rel string, sum *models.Summary) error {
	data, err := p.src.Read(rel)
	if err != nil {
		return err
	}

	kind := assetKind(rel)
	var dest string
	switch {
	case kind == models.AssetImage && p.imageDir != "":
		dest = filepath.Join(p.imageDir, filepath.Base(rel))
	case kind == models.AssetPDF && p.pdfDir != "":
		dest = filepath.Join(p.pdfDir, filepath.Base(rel))
	}

	if dest != "" {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("copy asset: mkdir: %w", err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("copy asset %s: %w", rel, err)
		}
	} else {
		if err := p.dst.Write(rel, data); err != nil {
			return err
		}
		dest = filepath.Join(p.dst.Root(), rel)
	}

	if p.recorder != nil {
		rec := models.AssetRecord{SourcePath: rel, DestPath: dest, Kind: kind}
		if err := p.recorder.RecordAsset(rec); err != nil {
			return err
		}
	}

	sum.Assets++
	p.logger.Info("copied asset",
		slog.String("source", rel),
		slog.String("dest", dest),
		slog.String("kind", kind))
	return nil
}

// resolveAll is phase two: the link resolution pass over every produced org
// file, consulting the now-complete table.
func (p *Pipeline) resolveAll(table *identity.Table, sum *models.Summary) error {
	return p.dst.Walk(func(rel string) error {
		if filepath.Ext(rel) != ".org" {
			return nil
		}
		data, err := p.dst.Read(rel)
		if err != nil {
			return err
		}
		out, n := ResolveFileLinks(string(data), table)
		if n > 0 {
			if err := p.dst.Write(rel, []byte(out)); err != nil {
				return err
			}
		}
		if strings.Contains(out, "[[file:") {
			p.logger.Debug("unresolved links remain", slog.String("path", rel))
		}
		sum.LinksResolved += n
		p.logger.Info("resolved links", slog.String("path", rel), slog.Int("links", n))
		return nil
	})
}

func assetKind(rel string) string {
	switch filepath.Ext(rel) {
	case ".png", ".jpg", ".jpeg", ".svg", ".gif":
		return models.AssetImage
	case ".pdf", ".PDF":
		return models.AssetPDF
	default:
		return models.AssetOther
	}
}
