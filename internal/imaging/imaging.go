// Package imaging normalises uploaded photos and stores them through a blob
// store, returning the relative path recorded on items and returns.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/erazemk/orodjarna/internal/blob"
	"github.com/erazemk/orodjarna/internal/model"
)

// Defaults for Options.
const (
	DefaultMaxDimension = 1024
	DefaultJPEGQuality  = 85
	DefaultMaxBytes     = 10 << 20
)

// Scope is the top-level folder an image lands in.
type Scope string

// Scopes.
const (
	ScopeItems   Scope = "items"
	ScopeReturns Scope = "returns"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool { return s == ScopeItems || s == ScopeReturns }

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Options tune normalisation.
type Options struct {
	MaxDimension int
	JPEGQuality  int
	MaxBytes     int64
}

func (o Options) withDefaults() Options {
	if o.MaxDimension <= 0 {
		o.MaxDimension = DefaultMaxDimension
	}
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	return o
}

// Store saves photos as JPEG under scope/key.jpg.
type Store struct {
	blobs blob.Store
	opts  Options
}

// NewStore wraps a blob store.
func NewStore(blobs blob.Store, opts Options) *Store {
	return &Store{blobs: blobs, opts: opts.withDefaults()}
}

// Save normalises the image read from r and stores it. The logical key is an
// item serial number or an issue number; the same key always maps to the same
// path. An empty key gets a random one.
func (s *Store) Save(ctx context.Context, scope Scope, key string, r io.Reader) (string, error) {
	if !scope.Valid() {
		return "", model.NewValidationError("scope", fmt.Sprintf("unknown image scope %q", scope))
	}

	data, err := io.ReadAll(io.LimitReader(r, s.opts.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading image data: %w", err)
	}
	if int64(len(data)) > s.opts.MaxBytes {
		return "", model.NewValidationError("image", fmt.Sprintf("larger than %d bytes", s.opts.MaxBytes))
	}

	jpg, err := Normalize(data, s.opts.MaxDimension, s.opts.JPEGQuality)
	if err != nil {
		return "", err
	}

	p := string(scope) + "/" + safeName(key) + ".jpg"
	if _, err := s.blobs.Put(ctx, p, bytes.NewReader(jpg), "image/jpeg"); err != nil {
		return "", fmt.Errorf("storing image: %w", err)
	}
	return p, nil
}

// MaxBytes is the largest accepted upload.
func (s *Store) MaxBytes() int64 { return s.opts.MaxBytes }

// Open returns a stored image.
func (s *Store) Open(ctx context.Context, p string) (blob.Info, io.ReadCloser, error) {
	return s.blobs.Get(ctx, p)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func safeName(key string) string {
	name := strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(key), "_"), "._")
	if name == "" {
		return uuid.NewString()
	}
	return name
}

// Normalize sniffs the format from the bytes, downscales so neither side
// exceeds maxDim and re-encodes as JPEG. Only JPEG and PNG are accepted.
func Normalize(data []byte, maxDim, quality int) ([]byte, error) {
	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, model.NewValidationError("image", fmt.Sprintf("unsupported format %s, only JPEG and PNG accepted", detected))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, model.NewValidationError("image", "cannot decode: "+err.Error())
	}

	img = downscale(img, maxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale keeps the aspect ratio; images already within bounds are
// returned unchanged.
func downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	nw, nh := maxDim, maxDim
	if w > h {
		nh = max(1, h*maxDim/w)
	} else {
		nw = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
