// Package service contains the media processing used by uploads: the
// thumbnail fallback chain and the upload pipeline built on top of it
package service

import (
	"bitwise74/emotube/pkg/util"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	ThumbWidth  = 640
	ThumbHeight = 360

	labelMaxRunes = 24
)

// Stage names the tier of the thumbnail chain that produced an image.
// Generate tries them in order, each at most once.
type Stage string

const (
	StageEmbedded    Stage = "embedded"
	StageExternal    Stage = "external"
	StagePlaceholder Stage = "placeholder"
)

var (
	errNoDecoder    = errors.New("no frame decoder available")
	errNoFFmpeg     = errors.New("ffmpeg not configured")
	errZeroDuration = errors.New("video has no duration")
	errNoOutput     = errors.New("ffmpeg produced no output file")
)

// FrameDecoder is the in-process decoding capability used by the first tier
type FrameDecoder interface {
	Duration(ctx context.Context, path string) (float64, error)
	Frame(ctx context.Context, path string, at float64) (image.Image, error)
}

// Thumbnail is always usable. Stage tells which tier produced Data.
type Thumbnail struct {
	Data  []byte
	Stage Stage
}

type Thumbnailer struct {
	// Decoder is nil when in-process decoding is disabled
	Decoder FrameDecoder
	// FFmpeg is nil when the external extractor is unavailable
	FFmpeg *FFmpeg
	Brand  string
}

// SampleTime picks the frame timestamp for a video of duration d seconds
func SampleTime(d float64) float64 {
	return min(1.0, max(0.5, d/2))
}

// Label is the text drawn on a placeholder: the title cut to 24 characters,
// or brand when the title is blank
func Label(title, brand string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return brand
	}

	if utf8.RuneCountInString(title) > labelMaxRunes {
		title = string([]rune(title)[:labelMaxRunes])
	}

	return title
}

// Generate runs the fallback chain for the video at p. It never fails and
// never panics, the placeholder tier always produces an image.
func (t *Thumbnailer) Generate(ctx context.Context, p, title string) *Thumbnail {
	log := zap.L().With(zap.String("video", filepath.Base(p)))

	tiers := []struct {
		stage Stage
		fn    func() ([]byte, error)
	}{
		{StageEmbedded, func() ([]byte, error) { return t.embedded(ctx, p) }},
		{StageExternal, func() ([]byte, error) { return t.external(ctx, p) }},
	}

	for _, tier := range tiers {
		data, err := attempt(tier.fn)
		if err == nil {
			log.Debug("Thumbnail generated", zap.String("stage", string(tier.stage)))
			return &Thumbnail{Data: data, Stage: tier.stage}
		}

		log.Debug("Thumbnail tier failed", zap.String("stage", string(tier.stage)), zap.Error(err))
	}

	return &Thumbnail{Data: Placeholder(Label(title, t.Brand)), Stage: StagePlaceholder}
}

func attempt(fn func() ([]byte, error)) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic: %v", r)
		}
	}()

	return fn()
}

func (t *Thumbnailer) embedded(ctx context.Context, p string) ([]byte, error) {
	if t.Decoder == nil {
		return nil, errNoDecoder
	}

	d, err := t.Decoder.Duration(ctx, p)
	if err != nil {
		return nil, err
	}

	if d <= 0 {
		return nil, errZeroDuration
	}

	img, err := t.Decoder.Frame(ctx, p, SampleTime(d))
	if err != nil {
		return nil, err
	}

	return encodePNG(fit(img, ThumbWidth, ThumbHeight))
}

func (t *Thumbnailer) external(ctx context.Context, p string) ([]byte, error) {
	if t.FFmpeg == nil {
		return nil, errNoFFmpeg
	}

	dir, err := os.MkdirTemp("", "emotube-thumb-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "frame.png")

	err = t.FFmpeg.Run(ctx, nil, "-y", "-loglevel", "error", "-ss", "00:00:01", "-i", p, "-frames:v", "1", "-q:v", "2", out)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(out)
	if err != nil || len(data) == 0 {
		return nil, errNoOutput
	}

	return data, nil
}

// fit scales img down to fit inside w x h keeping its aspect ratio. Smaller
// images are returned as they are.
func fit(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return img
	}

	scale := min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	nw := max(1, int(math.Round(float64(b.Dx())*scale)))
	nh := max(1, int(math.Round(float64(b.Dy())*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// FFmpegDecoder backs the embedded tier with an ffmpeg subprocess that pipes
// a single PNG frame to stdout, decoded in process. It differs from the
// external tier only in the sample time (SampleTime of the probed duration
// instead of a fixed second) and in reading the frame from a pipe instead of
// an output file.
type FFmpegDecoder struct {
	FFmpeg *FFmpeg
}

func (d *FFmpegDecoder) Duration(ctx context.Context, p string) (float64, error) {
	return d.FFmpeg.Probe(ctx, p)
}

func (d *FFmpegDecoder) Frame(ctx context.Context, p string, at float64) (image.Image, error) {
	var out bytes.Buffer

	err := d.FFmpeg.Run(ctx, &out, "-v", "error", "-ss", util.SeekTimestamp(at), "-i", p, "-frames:v", "1", "-f", "image2pipe", "-vcodec", "png", "pipe:1")
	if err != nil {
		return nil, err
	}

	img, err := png.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame, %w", err)
	}

	return img, nil
}
