// Package imaging turns an uploaded photo into the compact data URL that is
// attached to a ledger entry or wish.
package imaging

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/GregMSThompson/moneylog/internal/errs"
)

const (
	DefaultMaxSide   = 1024
	DefaultQuality   = 70
	DefaultMaxPixels = 40_000_000
)

// Options control the downscale. Zero values fall back to the defaults.
// MaxPixels bounds the decoded raster; larger images are rejected before
// any pixel is decoded.
type Options struct {
	MaxSide   int
	Quality   int
	MaxPixels int
}

func (o Options) withDefaults() Options {
	if o.MaxSide <= 0 {
		o.MaxSide = DefaultMaxSide
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = DefaultMaxPixels
	}
	return o
}

// Result is the encoded payload: DataURL is both the upload body and the preview.
type Result struct {
	DataURL string `json:"dataUrl"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Bytes   int    `json:"bytes"`
}

// TargetSize constrains the longer side to maxSide, keeping aspect ratio.
// Images already within bounds are returned unchanged.
func TargetSize(w, h, maxSide int) (int, int) {
	if w <= 0 || h <= 0 || maxSide <= 0 {
		return w, h
	}
	if w <= maxSide && h <= maxSide {
		return w, h
	}
	if w >= h {
		nh := int(float64(h)*float64(maxSide)/float64(w) + 0.5)
		return maxSide, max(1, nh)
	}
	nw := int(float64(w)*float64(maxSide)/float64(h) + 0.5)
	return max(1, nw), maxSide
}

// Downscale decodes r (JPEG, PNG, GIF or WebP), resizes it to fit opts.MaxSide
// and re-encodes it as JPEG. Any failure is an *errs.ImageError; nothing
// partial is returned.
func Downscale(r io.Reader, opts Options) (Result, error) {
	opts = opts.withDefaults()

	// DecodeConfig only reads the header; replay those bytes for the decode.
	br := bufio.NewReader(r)
	var head bytes.Buffer
	conf, _, err := image.DecodeConfig(io.TeeReader(br, &head))
	if err != nil {
		return Result{}, errs.NewImageError("could not read image", err)
	}
	if int64(conf.Width)*int64(conf.Height) > int64(opts.MaxPixels) {
		return Result{}, errs.NewImageError(fmt.Sprintf("image is too large (%dx%d)", conf.Width, conf.Height), nil)
	}

	src, _, err := image.Decode(io.MultiReader(&head, br))
	if err != nil {
		return Result{}, errs.NewImageError("could not read image", err)
	}

	b := src.Bounds()
	w, h := TargetSize(b.Dx(), b.Dy(), opts.MaxSide)
	if w <= 0 || h <= 0 {
		return Result{}, errs.NewImageError("image has no pixels", nil)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha; paint white under transparent sources.
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return Result{}, errs.NewImageError("could not encode image", err)
	}

	return Result{
		DataURL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:   w,
		Height:  h,
		Bytes:   buf.Len(),
	}, nil
}
