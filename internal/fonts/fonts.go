// Package fonts locates font assets and stages them in a cache directory.
package fonts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"
)

// ErrNotFound is returned when no candidate path holds the font.
var ErrNotFound = errors.New("fonts: font asset not found")

// DefaultName is the Devanagari-capable font shipped with the app.
const DefaultName = "Mangal.ttf"

// Provider copies a font from the first asset root that holds it into
// CacheDir. Each root is tried as <root>/fonts/<Name>, then <root>/<Name>.
type Provider struct {
	Roots    []string
	Name     string
	CacheDir string
}

func (p *Provider) name() string {
	if p.Name == "" {
		return DefaultName
	}
	return p.Name
}

// Candidates lists the paths Fetch probes, in order.
func (p *Provider) Candidates() []string {
	name := p.name()
	out := make([]string, 0, 2*len(p.Roots))
	for _, root := range p.Roots {
		out = append(out, filepath.Join(root, "fonts", name), filepath.Join(root, name))
	}
	return out
}

// Fetch returns the path of a validated copy of the font inside CacheDir.
// A valid cached copy is reused.
func (p *Provider) Fetch(ctx context.Context) (string, error) {
	dest := filepath.Join(p.CacheDir, p.name())
	if data, err := os.ReadFile(dest); err == nil && Validate(data) == nil {
		return dest, nil
	}

	var data []byte
	var src string
	for _, c := range p.Candidates() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		b, err := os.ReadFile(c)
		if err != nil {
			continue
		}
		data, src = b, c
		break
	}
	if data == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, p.name())
	}
	if err := Validate(data); err != nil {
		return "", fmt.Errorf("font %s: %w", src, err)
	}

	if err := os.MkdirAll(p.CacheDir, 0o755); err != nil {
		return "", err
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return dest, nil
}

// Validate reports whether data parses as a TrueType font.
func Validate(data []byte) error {
	if _, err := truetype.Parse(data); err != nil {
		return fmt.Errorf("invalid truetype data: %w", err)
	}
	return nil
}
