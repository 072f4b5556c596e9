package imaging

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/GregMSThompson/moneylog/internal/errs"
)

func pngOf(t *testing.T, w, h int) *bytes.Reader {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestTargetSizeBoundsAndAspect(t *testing.T) {
	cases := []struct{ w, h, max int }{
		{4000, 3000, 1024},
		{3000, 4000, 1024},
		{1025, 10, 1024},
		{801, 1600, 800},
		{5000, 5000, 800},
	}
	for _, c := range cases {
		nw, nh := TargetSize(c.w, c.h, c.max)
		if nw > c.max || nh > c.max {
			t.Errorf("%dx%d -> %dx%d exceeds %d", c.w, c.h, nw, nh, c.max)
		}
		if max(nw, nh) != c.max {
			t.Errorf("%dx%d -> %dx%d: longer side should equal %d", c.w, c.h, nw, nh, c.max)
		}
		in := float64(c.w) / float64(c.h)
		out := float64(nw) / float64(nh)
		// one pixel of rounding on the short side
		tol := in / float64(min(nw, nh))
		if math.Abs(in-out) > tol+1e-9 {
			t.Errorf("%dx%d -> %dx%d: aspect %v vs %v", c.w, c.h, nw, nh, in, out)
		}
	}
}

func TestTargetSizeSmallImageUnchanged(t *testing.T) {
	w, h := TargetSize(640, 480, 1024)
	if w != 640 || h != 480 {
		t.Fatalf("small image resized to %dx%d", w, h)
	}
	w, h = TargetSize(1024, 1024, 1024)
	if w != 1024 || h != 1024 {
		t.Fatalf("boundary image resized to %dx%d", w, h)
	}
}

func TestDownscaleProducesJPEGDataURL(t *testing.T) {
	res, err := Downscale(pngOf(t, 300, 150), Options{MaxSide: 100, Quality: 80})
	if err != nil {
		t.Fatalf("Downscale error: %v", err)
	}
	if res.Width != 100 || res.Height != 50 {
		t.Fatalf("size mismatch: %dx%d", res.Width, res.Height)
	}
	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(res.DataURL, prefix) {
		t.Fatalf("unexpected data url prefix: %.40s", res.DataURL)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(res.DataURL, prefix))
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not jpeg: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Fatalf("encoded size mismatch: %dx%d", cfg.Width, cfg.Height)
	}
	if res.Bytes != len(raw) {
		t.Fatalf("byte count mismatch: %d vs %d", res.Bytes, len(raw))
	}
}

func TestDownscaleKeepsSmallImageSize(t *testing.T) {
	res, err := Downscale(pngOf(t, 40, 30), Options{})
	if err != nil {
		t.Fatalf("Downscale error: %v", err)
	}
	if res.Width != 40 || res.Height != 30 {
		t.Fatalf("size changed: %dx%d", res.Width, res.Height)
	}
}

func TestDownscaleRejectsGarbage(t *testing.T) {
	_, err := Downscale(strings.NewReader("definitely not an image"), Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	var imgErr *errs.ImageError
	if !errors.As(err, &imgErr) {
		t.Fatalf("expected ImageError, got %T", err)
	}
}

// pngHeader is a grayscale PNG that declares w x h pixels but carries no
// image data; only its header can be read.
func pngHeader(w, h uint32) *bytes.Reader {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth; color type 0 (gray)
	chunk := append([]byte("IHDR"), ihdr...)
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return bytes.NewReader(buf.Bytes())
}

func TestDownscaleRejectsOversizedRaster(t *testing.T) {
	_, err := Downscale(pngHeader(12000, 12000), Options{})
	var imgErr *errs.ImageError
	if !errors.As(err, &imgErr) {
		t.Fatalf("err = %v, want *errs.ImageError", err)
	}
	if !strings.Contains(imgErr.Error(), "12000x12000") {
		t.Errorf("message = %q", imgErr.Error())
	}
}

func TestDownscaleMaxPixelsOption(t *testing.T) {
	if _, err := Downscale(pngOf(t, 200, 200), Options{MaxPixels: 10_000}); err == nil {
		t.Fatal("expected 200x200 to exceed a 10000 pixel budget")
	}
	res, err := Downscale(pngOf(t, 100, 100), Options{MaxPixels: 10_000})
	if err != nil {
		t.Fatalf("100x100 within budget: %v", err)
	}
	if res.Width != 100 || res.Height != 100 {
		t.Errorf("size = %dx%d", res.Width, res.Height)
	}
}
