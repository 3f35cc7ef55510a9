// Package ocr extracts text from scanned images.
package ocr

import (
	"context"
	"errors"
)

var (
	// ErrNoText is returned when the image holds no recognizable text.
	ErrNoText = errors.New("ocr: no text found in image")
	// ErrNotEnabled is returned by the Tesseract engine in builds without
	// the ocr tag.
	ErrNotEnabled = errors.New("ocr: tesseract support not compiled in (build with -tags ocr)")
)

// Recognizer turns encoded image bytes (PNG, JPEG, ...) into plain text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// DefaultLanguages are passed to Tesseract when none are configured.
var DefaultLanguages = []string{"eng", "hin"}
