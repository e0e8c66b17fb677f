// Package engine wraps the external Markdown→org conversion engine. The
// engine is a black box invoked once per note; raido never inspects or
// validates its output beyond treating a non-zero exit as fatal.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Converter translates Markdown text into org-mode text.
type Converter interface {
	Convert(ctx context.Context, markdown string) (string, error)
}

// Pandoc runs the pandoc binary as a subprocess.
type Pandoc struct {
	binary string
	args   []string
}

// Verify Pandoc satisfies Converter at compile time.
var _ Converter = (*Pandoc)(nil)

// NewPandoc builds a Pandoc engine. from must disable automatic heading
// identifiers and to names the output format; wrap controls line wrapping
// and should be "preserve" so note line breaks survive conversion.
func NewPandoc(binary, from, to, wrap string) *Pandoc {
	return &Pandoc{
		binary: binary,
		args: []string{
			"--from=" + from,
			"--to=" + to,
			"--wrap=" + wrap,
		},
	}
}

// Convert feeds markdown to the engine on stdin and returns its stdout.
// There is no timeout or retry: a failure aborts the whole run, so the
// error carries the engine's stderr for diagnosis.
func (p *Pandoc) Convert(ctx context.Context, markdown string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binary, p.args...)
	cmd.Stdin = strings.NewReader(markdown)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("engine: %s failed: %w: %s", p.binary, err, msg)
		}
		return "", fmt.Errorf("engine: %s failed: %w", p.binary, err)
	}
	return stdout.String(), nil
}
