package ebitengine

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// imagePool manages reusable offscreen ebiten.Images keyed by exact
// dimensions, so the framebuffers, the effect chain's ping-pong
// buffers, and the bloom pyramid stop allocating after warmup. Sizes
// are not rounded: the shader passes sample neighbor pixels and padding
// would bleed black into the edges.
type imagePool struct {
	buckets map[uint64][]*ebiten.Image
}

func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// acquire returns a cleared offscreen image of exactly (w, h) pixels.
func (p *imagePool) acquire(w, h int) *ebiten.Image {
	key := poolKey(w, h)

	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			img := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			img.Clear()
			return img
		}
	}

	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, w, h),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// release returns an image to the pool. It is cleared on the next
// acquire, not here.
func (p *imagePool) release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())

	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

// drain deallocates every pooled image, freeing GPU memory after a
// resolution change.
func (p *imagePool) drain() {
	for key, stack := range p.buckets {
		for _, img := range stack {
			img.Deallocate()
		}
		delete(p.buckets, key)
	}
}
