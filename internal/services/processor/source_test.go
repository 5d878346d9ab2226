package processor

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phambaophuc/image-watermark/pkg/utils"
)

func TestWatermarkInlineReturnsDataURL(t *testing.T) {
	p := newTestProcessor()
	ref := utils.ToInline(encodePNG(t, solidImage(100, 80, color.Black)), "image/png")

	got, err := p.Watermark(context.Background(), ref, DefaultOptions())
	if err != nil {
		t.Fatalf("Watermark error: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Fatalf("expected a png data URL, got %.40q", got)
	}

	data, err := utils.FromInline(got)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	img, _ := decode(t, data)
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 80 {
		t.Fatalf("dimensions changed: %v", img.Bounds())
	}
}

func TestProcessRemoteImage(t *testing.T) {
	body := encodeJPEG(t, solidImage(64, 48, color.White))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(body)
	}))
	defer server.Close()

	out, err := newTestProcessor().Process(context.Background(), server.URL+"/photo.jpg", DefaultOptions())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if !out.Applied || out.MimeType != "image/jpeg" || out.Width != 64 || out.Height != 48 {
		t.Fatalf("unexpected output: applied=%v mime=%q %dx%d", out.Applied, out.MimeType, out.Width, out.Height)
	}
}

func TestProcessRemoteFailureIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestProcessor().Process(context.Background(), server.URL, DefaultOptions())
	var fetchErr *utils.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *utils.FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", fetchErr.StatusCode)
	}
}

func TestProcessUndecodableInlineKeepsDeclaredType(t *testing.T) {
	source := []byte("definitely not a webp")
	ref := utils.ToInline(source, "image/webp")

	out, err := newTestProcessor().Process(context.Background(), ref, DefaultOptions())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if out.Applied {
		t.Fatalf("expected Applied=false")
	}
	if !bytes.Equal(out.Data, source) {
		t.Fatalf("expected the original bytes back")
	}
	if out.MimeType != "image/webp" {
		t.Fatalf("expected declared mime type to be kept, got %q", out.MimeType)
	}
}

func TestProcessInvalidInline(t *testing.T) {
	_, err := newTestProcessor().Process(context.Background(), "data:image/png;base64,!!!", DefaultOptions())
	if !errors.Is(err, utils.ErrInvalidDataURL) {
		t.Fatalf("expected ErrInvalidDataURL, got %v", err)
	}
}

func TestProcessUndecodableInlineWithTextTypeIsOctetStream(t *testing.T) {
	source := []byte("just some notes")
	ref := utils.ToInline(source, "text/plain")

	got, err := newTestProcessor().Watermark(context.Background(), ref, DefaultOptions())
	if err != nil {
		t.Fatalf("Watermark error: %v", err)
	}
	if want := utils.ToInline(source, "application/octet-stream"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestProcessStripsDeclaredTypeParameters(t *testing.T) {
	source := []byte("not really a gif")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif; name=banner")
		w.Write(source)
	}))
	defer server.Close()

	out, err := newTestProcessor().Process(context.Background(), server.URL, DefaultOptions())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if out.MimeType != "image/gif" {
		t.Fatalf("expected image/gif, got %q", out.MimeType)
	}
	if !bytes.Equal(out.Data, source) {
		t.Fatalf("expected the original bytes back")
	}
}
