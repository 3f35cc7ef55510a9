//go:build !ocr

package ocr

import "context"

// Tesseract is unavailable in this build; Recognize returns ErrNotEnabled.
type Tesseract struct {
	Languages []string
}

// NewTesseract returns an engine for langs, or DefaultLanguages.
func NewTesseract(langs []string) *Tesseract {
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	return &Tesseract{Languages: langs}
}

func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	return "", ErrNotEnabled
}
