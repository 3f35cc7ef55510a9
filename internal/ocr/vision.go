package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultVisionEndpoint is the Cloud Vision annotate URL.
const DefaultVisionEndpoint = "https://vision.googleapis.com/v1/images:annotate"

// Vision calls the Cloud Vision REST API with TEXT_DETECTION.
type Vision struct {
	Endpoint   string
	APIKey     string
	MaxResults int
	Client     *http.Client
}

// NewVision returns a client for the default endpoint.
func NewVision(apiKey string, timeout time.Duration) *Vision {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Vision{
		Endpoint:   DefaultVisionEndpoint,
		APIKey:     apiKey,
		MaxResults: 10,
		Client:     &http.Client{Timeout: timeout},
	}
}

type visionRequest struct {
	Requests []annotateRequest `json:"requests"`
}

type annotateRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type visionResponse struct {
	Responses []annotateResponse `json:"responses"`
	Error     *visionError       `json:"error,omitempty"`
}

type annotateResponse struct {
	TextAnnotations []struct {
		Description string `json:"description"`
	} `json:"textAnnotations"`
	Error *visionError `json:"error,omitempty"`
}

type visionError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (e *visionError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("vision: %s (%d %s)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("vision: %s (%d)", e.Message, e.Code)
}

// Recognize sends one annotate request. The first text annotation holds the
// full detected text.
func (v *Vision) Recognize(ctx context.Context, image []byte) (string, error) {
	if v.APIKey == "" {
		return "", errors.New("vision: api key not configured")
	}
	if len(image) == 0 {
		return "", errors.New("vision: empty image")
	}
	maxResults := v.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	body, err := json.Marshal(visionRequest{Requests: []annotateRequest{{
		Image:    visionImage{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []visionFeature{{Type: "TEXT_DETECTION", MaxResults: maxResults}},
	}}})
	if err != nil {
		return "", err
	}

	endpoint := v.Endpoint
	if endpoint == "" {
		endpoint = DefaultVisionEndpoint
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		endpoint+sep+"key="+url.QueryEscape(v.APIKey), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return "", fmt.Errorf("vision response: %w", err)
	}
	var out visionResponse
	decodeErr := json.Unmarshal(raw, &out)
	if out.Error != nil {
		return "", out.Error
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("vision: unexpected status %s", resp.Status)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("vision response: %w", decodeErr)
	}
	if len(out.Responses) == 0 {
		return "", ErrNoText
	}
	first := out.Responses[0]
	if first.Error != nil {
		return "", first.Error
	}
	if len(first.TextAnnotations) == 0 || first.TextAnnotations[0].Description == "" {
		return "", ErrNoText
	}
	return first.TextAnnotations[0].Description, nil
}
