package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const placeholderFontSize = 28

var (
	PlaceholderBackground = color.RGBA{R: 90, G: 30, B: 120, A: 255}

	parseFont = sync.OnceValues(func() (*opentype.Font, error) {
		return opentype.Parse(goregular.TTF)
	})
)

// Placeholder renders label centred in white on a solid 640x360 background
// and returns it PNG encoded. It can't fail, if the text can't be drawn the
// plain background is returned.
func Placeholder(label string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, ThumbWidth, ThumbHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(PlaceholderBackground), image.Point{}, draw.Src)

	if err := drawLabel(img, label); err != nil {
		zap.L().Warn("Failed to draw placeholder label", zap.Error(err))
	}

	var buf bytes.Buffer
	// Encoding an in-memory RGBA image into a buffer does not fail
	_ = png.Encode(&buf, img)

	return buf.Bytes()
}

func drawLabel(img *image.RGBA, label string) (err error) {
	if label == "" {
		return nil
	}

	f, err := parseFont()
	if err != nil {
		return err
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    placeholderFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}
	defer face.Close()

	m := face.Metrics()
	width := font.MeasureString(face, label)
	height := m.Ascent + m.Descent

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot: fixed.Point26_6{
			X: (fixed.I(ThumbWidth) - width) / 2,
			Y: (fixed.I(ThumbHeight)-height)/2 + m.Ascent,
		},
	}
	d.DrawString(label)

	return nil
}
