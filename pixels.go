package vantage

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
)

// PixelBuffer is an 8-bit RGBA image ready for display: row-major with
// the origin at the TOP-LEFT, 4 bytes per pixel.
type PixelBuffer struct {
	Width, Height int
	Pix           []byte
}

// NewPixelBuffer allocates a zeroed buffer of the given size.
func NewPixelBuffer(w, h int) *PixelBuffer {
	return &PixelBuffer{Width: w, Height: h, Pix: make([]byte, w*h*4)}
}

// frameToPixels converts a float framebuffer to an 8-bit buffer:
// components are clamped to [0, 1] before scaling to 0..255, and rows
// are flipped so the result has a top-left origin.
func frameToPixels(f *Frame) *PixelBuffer {
	pb := NewPixelBuffer(f.Width, f.Height)
	stride := f.Width * 4
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*stride : (y+1)*stride]
		dst := pb.Pix[(f.Height-1-y)*stride : (f.Height-y)*stride]
		for i, v := range src {
			dst[i] = byte(clamp01f(v)*255 + 0.5)
		}
	}
	return pb
}

// At returns the RGBA bytes of the pixel at (x, y).
func (pb *PixelBuffer) At(x, y int) (r, g, b, a byte) {
	i := (y*pb.Width + x) * 4
	return pb.Pix[i], pb.Pix[i+1], pb.Pix[i+2], pb.Pix[i+3]
}

// Base64 returns the raw RGBA bytes encoded as standard base64, the form
// pushed to the UI layer's image field.
func (pb *PixelBuffer) Base64() string {
	return base64.StdEncoding.EncodeToString(pb.Pix)
}

// Image returns the buffer as a straight-alpha *image.NRGBA sharing the
// underlying pixel storage.
func (pb *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    pb.Pix,
		Stride: pb.Width * 4,
		Rect:   image.Rect(0, 0, pb.Width, pb.Height),
	}
}

// EncodePNG writes the buffer as a PNG image.
func (pb *PixelBuffer) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, pb.Image()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// pixelsFromImage converts a decoded image to a PixelBuffer. Fast path
// for *image.NRGBA; anything else goes through the generic At interface.
func pixelsFromImage(img image.Image) *PixelBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pb := NewPixelBuffer(w, h)

	if n, ok := img.(*image.NRGBA); ok && n.Stride == w*4 {
		copy(pb.Pix, n.Pix)
		return pb
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			// Un-premultiply from the 16-bit color.Color space.
			if a > 0 && a < 0xffff {
				r = r * 0xffff / a
				g = g * 0xffff / a
				bl = bl * 0xffff / a
			}
			pb.Pix[i] = byte(r >> 8)
			pb.Pix[i+1] = byte(g >> 8)
			pb.Pix[i+2] = byte(bl >> 8)
			pb.Pix[i+3] = byte(a >> 8)
			i += 4
		}
	}
	return pb
}
