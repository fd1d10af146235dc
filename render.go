package vantage

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// RenderPath reports which strategy produced a frame.
type RenderPath uint8

const (
	// PathNone means no frame was produced.
	PathNone RenderPath = iota
	// PathMemory is the fast in-memory framebuffer read-back.
	PathMemory
	// PathFile is the temporary-file fallback.
	PathFile
)

// String returns the path name used in debug logs.
func (p RenderPath) String() string {
	switch p {
	case PathMemory:
		return "memory"
	case PathFile:
		return "file"
	default:
		return "none"
	}
}

// RenderFrame triggers a frame render on the engine and extracts the
// result as a display-ready pixel buffer.
//
// The extraction is a two-step strategy: the in-memory path is tried
// first; if its buffer is absent, empty, or undersized it is treated as
// a soft failure and the file-based fallback runs, rendering to a
// uniquely named temporary file that is removed on every exit path.
// Only when both paths fail does RenderFrame report an error.
//
// Returns ErrNoCamera without rendering when no camera is bound.
func RenderFrame(e Engine) (*PixelBuffer, RenderPath, error) {
	if !e.HasCamera() {
		return nil, PathNone, ErrNoCamera
	}

	if pb, err := renderFast(e); err == nil {
		return pb, PathMemory, nil
	}

	pb, err := renderViaFile(e)
	if err != nil {
		return nil, PathNone, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return pb, PathFile, nil
}

// renderFast runs the in-memory path: render with no output file, then
// read back the float framebuffer directly. An absent, empty, or
// undersized buffer is an error (soft failure of this path only).
func renderFast(e Engine) (*PixelBuffer, error) {
	frame, err := e.RenderToBuffer()
	if err != nil {
		return nil, fmt.Errorf("memory path: %w", err)
	}
	if frame == nil || frame.Width <= 0 || frame.Height <= 0 {
		return nil, fmt.Errorf("memory path: empty framebuffer")
	}
	if len(frame.Pix) < frame.Width*frame.Height*4 {
		return nil, fmt.Errorf("memory path: framebuffer undersized: %d < %d",
			len(frame.Pix), frame.Width*frame.Height*4)
	}
	return frameToPixels(frame), nil
}

// renderViaFile runs the fallback path: render to a temporary PNG, load
// it back, and extract the pixels. The temporary file is deleted
// unconditionally, whatever the outcome.
func renderViaFile(e Engine) (pb *PixelBuffer, err error) {
	tmp, err := os.CreateTemp("", "vantage-render-*.png")
	if err != nil {
		return nil, fmt.Errorf("file path: %w", err)
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("file path: %w", err)
	}
	defer func() { _ = os.Remove(path) }()

	if err := e.RenderToFile(path); err != nil {
		return nil, fmt.Errorf("file path: %w", err)
	}

	return loadPixels(path)
}

// loadPixels decodes an image file into a PixelBuffer. Files written by
// RenderToFile already use a top-left origin, so no flip happens here.
func loadPixels(path string) (*PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file path: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		// Retry with the generic decoder in case the engine wrote a
		// different registered format.
		if _, seekErr := f.Seek(0, 0); seekErr == nil {
			var gerr error
			if img, _, gerr = image.Decode(f); gerr != nil {
				return nil, fmt.Errorf("file path: decode %s: %w", path, err)
			}
		} else {
			return nil, fmt.Errorf("file path: decode %s: %w", path, err)
		}
	}

	pb := pixelsFromImage(img)
	if pb.Width <= 0 || pb.Height <= 0 || len(pb.Pix) == 0 {
		return nil, fmt.Errorf("file path: empty image")
	}
	return pb, nil
}
