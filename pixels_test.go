package vantage

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestFrameToPixelsFlipsRows(t *testing.T) {
	// 1x2 frame: bottom row red, top row green.
	f := &Frame{Width: 1, Height: 2, Pix: []float32{
		1, 0, 0, 1,
		0, 1, 0, 1,
	}}
	pb := frameToPixels(f)

	r, g, _, _ := pb.At(0, 0)
	if r != 0 || g != 255 {
		t.Errorf("top row = (%d, %d), want green", r, g)
	}
	r, g, _, _ = pb.At(0, 1)
	if r != 255 || g != 0 {
		t.Errorf("bottom row = (%d, %d), want red", r, g)
	}
}

func TestFrameToPixelsClampsOverbright(t *testing.T) {
	f := &Frame{Width: 1, Height: 1, Pix: []float32{2.0, -0.5, 1.0, 1.0}}
	pb := frameToPixels(f)
	r, g, b, a := pb.At(0, 0)
	if r != 255 {
		t.Errorf("overbright r = %d, want 255", r)
	}
	if g != 0 {
		t.Errorf("negative g = %d, want 0", g)
	}
	if b != 255 || a != 255 {
		t.Errorf("b/a = %d/%d, want 255/255", b, a)
	}
}

func TestFrameToPixelsRounds(t *testing.T) {
	f := &Frame{Width: 1, Height: 1, Pix: []float32{0.5, 0, 0, 1}}
	pb := frameToPixels(f)
	r, _, _, _ := pb.At(0, 0)
	if r != 128 {
		t.Errorf("0.5 maps to %d, want 128", r)
	}
}

func TestBase64IsRawRGBA(t *testing.T) {
	pb := NewPixelBuffer(2, 1)
	copy(pb.Pix, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	decoded, err := base64.StdEncoding.DecodeString(pb.Base64())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, pb.Pix) {
		t.Errorf("decoded = %v, want %v", decoded, pb.Pix)
	}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	pb := NewPixelBuffer(2, 2)
	for i := range pb.Pix {
		pb.Pix[i] = byte(i * 16)
	}
	var buf bytes.Buffer
	if err := pb.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := pixelsFromImage(img)
	if !bytes.Equal(got.Pix, pb.Pix) {
		t.Errorf("round trip changed pixels:\n got %v\nwant %v", got.Pix, pb.Pix)
	}
}

func TestPixelsFromImageUnpremultiplies(t *testing.T) {
	// Premultiplied half-transparent red.
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 128, A: 128})

	pb := pixelsFromImage(img)
	r, _, _, a := pb.At(0, 0)
	if a != 128 {
		t.Errorf("alpha = %d, want 128", a)
	}
	if r < 250 {
		t.Errorf("un-premultiplied r = %d, want ~255", r)
	}
}

func TestPixelsFromImageNRGBAFastPath(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	pb := pixelsFromImage(img)
	if !bytes.Equal(pb.Pix, img.Pix) {
		t.Errorf("fast path altered pixels")
	}
}
