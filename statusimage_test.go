package vantage

import "testing"

func TestStatusImageShape(t *testing.T) {
	pb := StatusImage(64, 32, "engine unavailable")
	if pb.Width != 64 || pb.Height != 32 {
		t.Errorf("size = %dx%d, want 64x32", pb.Width, pb.Height)
	}
	if len(pb.Pix) != 64*32*4 {
		t.Errorf("pixel length = %d, want %d", len(pb.Pix), 64*32*4)
	}
}

func TestStatusImageBackground(t *testing.T) {
	pb := StatusImage(32, 32, "x")
	r, g, b, a := pb.At(0, 0)
	if r != 128 || g != 64 || b != 64 || a != 255 {
		t.Errorf("corner = (%d, %d, %d, %d), want dark red placard", r, g, b, a)
	}
}

func TestStatusImageDrawsText(t *testing.T) {
	blank := StatusImage(64, 64)
	withText := StatusImage(64, 64, "render failed")

	differs := false
	for i := range blank.Pix {
		if blank.Pix[i] != withText.Pix[i] {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("text left no pixels on the placard")
	}
}

func TestStatusImageDefaultsSize(t *testing.T) {
	pb := StatusImage(0, -3, "x")
	if pb.Width != 512 || pb.Height != 512 {
		t.Errorf("size = %dx%d, want 512x512 defaults", pb.Width, pb.Height)
	}
}
