package vantage

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// statusImageColor is the dark red background of the error placard.
var statusImageColor = color.NRGBA{R: 128, G: 64, B: 64, A: 255}

// StatusImage renders a flat placard with centered lines of text, used
// in place of a frame when the engine cannot render (for example in a
// secondary execution context). The result has the same shape as a real
// frame so the UI layer never has to special-case it.
func StatusImage(w, h int, lines ...string) *PixelBuffer {
	if w <= 0 {
		w = 512
	}
	if h <= 0 {
		h = 512
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(statusImageColor), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + 4
	startY := h/2 - lineHeight*len(lines)/2 + face.Metrics().Ascent.Ceil()

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: face,
	}
	for i, line := range lines {
		width := d.MeasureString(line).Ceil()
		d.Dot = fixed.P((w-width)/2, startY+i*lineHeight)
		d.DrawString(line)
	}

	pb := NewPixelBuffer(w, h)
	copy(pb.Pix, img.Pix)
	return pb
}
