package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newVisionServer(t *testing.T, status int, body string, check func(r *http.Request, req visionRequest)) *Vision {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req visionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(r, req)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return &Vision{Endpoint: srv.URL + "/v1/images:annotate", APIKey: "k3y", Client: srv.Client()}
}

func TestVisionRecognize(t *testing.T) {
	v := newVisionServer(t, http.StatusOK,
		`{"responses":[{"textAnnotations":[{"description":"Hello\nWorld"},{"description":"Hello"}]}]}`,
		func(r *http.Request, req visionRequest) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if got := r.URL.Query().Get("key"); got != "k3y" {
				t.Errorf("key = %q, want k3y", got)
			}
			if len(req.Requests) != 1 {
				t.Errorf("requests = %d, want 1", len(req.Requests))
				return
			}
			f := req.Requests[0].Features
			if len(f) != 1 || f[0].Type != "TEXT_DETECTION" || f[0].MaxResults != 10 {
				t.Errorf("features = %+v", f)
			}
			if got := req.Requests[0].Image.Content; got != base64.StdEncoding.EncodeToString([]byte("png")) {
				t.Errorf("content = %q", got)
			}
		})

	got, err := v.Recognize(context.Background(), []byte("png"))
	if err != nil {
		t.Fatalf("Recognize error: %v", err)
	}
	if got != "Hello\nWorld" {
		t.Fatalf("text = %q, want %q", got, "Hello\nWorld")
	}
}

func TestVisionNoText(t *testing.T) {
	for _, body := range []string{`{"responses":[{}]}`, `{"responses":[]}`, `{}`} {
		v := newVisionServer(t, http.StatusOK, body, nil)
		if _, err := v.Recognize(context.Background(), []byte("png")); !errors.Is(err, ErrNoText) {
			t.Fatalf("body %s: err = %v, want ErrNoText", body, err)
		}
	}
}

func TestVisionAPIError(t *testing.T) {
	v := newVisionServer(t, http.StatusForbidden,
		`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`, nil)
	_, err := v.Recognize(context.Background(), []byte("png"))
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("err = %v, want api error", err)
	}

	v = newVisionServer(t, http.StatusOK,
		`{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`, nil)
	if _, err := v.Recognize(context.Background(), []byte("png")); err == nil || !strings.Contains(err.Error(), "Bad image data") {
		t.Fatalf("err = %v, want per-image error", err)
	}
}

func TestVisionHTTPStatus(t *testing.T) {
	v := newVisionServer(t, http.StatusBadGateway, "upstream down", nil)
	if _, err := v.Recognize(context.Background(), []byte("png")); err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("err = %v, want status error", err)
	}
}

func TestVisionPreconditions(t *testing.T) {
	v := &Vision{}
	if _, err := v.Recognize(context.Background(), []byte("png")); err == nil {
		t.Fatalf("missing key should fail")
	}
	v.APIKey = "k"
	if _, err := v.Recognize(context.Background(), nil); err == nil {
		t.Fatalf("empty image should fail")
	}
}
