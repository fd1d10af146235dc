package vantage

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/go-gl/mathgl/mgl64"
)

// SoftEngine is the built-in CPU implementation of Engine. It renders
// flat-shaded triangles with a z-buffer and runs the effect chain on the
// float framebuffer, so the full pipeline works headlessly with no GPU
// or display. It is the engine used by the test suite and the reference
// for what the GPU adapters should produce.
type SoftEngine struct {
	settings RenderSettings

	camera    Pose
	hasCamera bool

	meshes []MeshSpec
	lights []LightSpec

	background Color
	bgStrength float64
	effects    []Effect
}

var _ Engine = (*SoftEngine)(nil)

// NewSoftEngine returns an engine with default settings and an empty
// scene.
func NewSoftEngine() *SoftEngine {
	return &SoftEngine{
		settings:   RenderSettings{}.Normalized(),
		background: DefaultBackground,
		bgStrength: 1,
	}
}

func (e *SoftEngine) Configure(settings RenderSettings) {
	e.settings = settings.Normalized()
}

func (e *SoftEngine) Resolution() (int, int) {
	return e.settings.Width, e.settings.Height
}

func (e *SoftEngine) SetCameraPose(pose Pose) {
	e.camera = pose
	e.hasCamera = true
}

func (e *SoftEngine) HasCamera() bool { return e.hasCamera }

func (e *SoftEngine) RemoveCamera() {
	e.camera = Pose{}
	e.hasCamera = false
}

func (e *SoftEngine) AddMesh(mesh MeshSpec) {
	e.meshes = append(e.meshes, mesh)
}

func (e *SoftEngine) Meshes() []MeshSpec { return e.meshes }

func (e *SoftEngine) AddLight(light LightSpec) {
	e.lights = append(e.lights, light)
}

func (e *SoftEngine) SetBackground(c Color, strength float64) {
	e.background = c
	e.bgStrength = strength
}

func (e *SoftEngine) Clear() {
	e.meshes = nil
	e.lights = nil
	e.RemoveCamera()
}

func (e *SoftEngine) SetEffects(chain []Effect) {
	e.effects = chain
}

// RenderToBuffer rasterizes the scene into a float framebuffer with row
// 0 at the bottom and applies the effect chain.
func (e *SoftEngine) RenderToBuffer() (*Frame, error) {
	if !e.hasCamera {
		return nil, ErrNoCamera
	}

	w, h := e.settings.Width, e.settings.Height
	frame := &Frame{Width: w, Height: h, Pix: make([]float32, w*h*4)}

	bgAlpha := float32(1)
	if e.settings.Transparent {
		bgAlpha = 0
	}
	br := float32(e.background.R * e.bgStrength)
	bg := float32(e.background.G * e.bgStrength)
	bb := float32(e.background.B * e.bgStrength)
	for i := 0; i < len(frame.Pix); i += 4 {
		frame.Pix[i] = br
		frame.Pix[i+1] = bg
		frame.Pix[i+2] = bb
		frame.Pix[i+3] = bgAlpha
	}

	depth := make([]float64, w*h)
	for i := range depth {
		depth[i] = math.Inf(1)
	}

	vp := PerspectiveMatrix(w, h).Mul4(e.camera.ViewMatrix())

	for _, mesh := range e.meshes {
		if len(mesh.Indices) == 0 {
			e.rasterPoints(frame, depth, vp, mesh)
			continue
		}
		e.rasterTriangles(frame, depth, vp, mesh)
	}

	e.applyEffects(frame)
	return frame, nil
}

// RenderToFile renders a frame and writes it as a standard top-down PNG.
func (e *SoftEngine) RenderToFile(path string) error {
	frame, err := e.RenderToBuffer()
	if err != nil {
		return err
	}
	pb := frameToPixels(frame)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render to file: %w", err)
	}
	defer f.Close()
	if err := pb.EncodePNG(f); err != nil {
		return fmt.Errorf("render to file: %w", err)
	}
	return nil
}

// --- rasterization ---

// projected is a vertex after the viewport transform: screen x/y in
// pixel space (row 0 at the bottom) plus the view-space depth.
type projected struct {
	x, y, depth float64
	visible     bool
}

func (e *SoftEngine) project(vp mgl64.Mat4, world mgl64.Vec3) projected {
	clip := vp.Mul4x1(world.Vec4(1))
	if clip.W() <= 0 {
		return projected{}
	}
	inv := 1 / clip.W()
	ndcX, ndcY, ndcZ := clip.X()*inv, clip.Y()*inv, clip.Z()*inv
	if ndcZ < -1 || ndcZ > 1 {
		return projected{}
	}
	w, h := float64(e.settings.Width), float64(e.settings.Height)
	return projected{
		x:       (ndcX + 1) / 2 * w,
		y:       (ndcY + 1) / 2 * h,
		depth:   clip.W(),
		visible: true,
	}
}

func (e *SoftEngine) rasterTriangles(frame *Frame, depth []float64, vp mgl64.Mat4, mesh MeshSpec) {
	eye := e.camera.Position
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := mesh.Vertices[mesh.Indices[i]].Add(mesh.Offset)
		b := mesh.Vertices[mesh.Indices[i+1]].Add(mesh.Offset)
		c := mesh.Vertices[mesh.Indices[i+2]].Add(mesh.Offset)

		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Len() == 0 {
			continue
		}
		normal = normal.Normalize()
		// Two-sided shading: face the normal toward the camera.
		center := a.Add(b).Add(c).Mul(1.0 / 3.0)
		if normal.Dot(eye.Sub(center)) < 0 {
			normal = normal.Mul(-1)
		}

		shade := ShadeFlat(mesh.Material, normal, e.lights)

		pa, pb, pc := e.project(vp, a), e.project(vp, b), e.project(vp, c)
		if !pa.visible || !pb.visible || !pc.visible {
			continue
		}
		e.fillTriangle(frame, depth, pa, pb, pc, shade, mesh.Material.Alpha)
	}
}

func (e *SoftEngine) fillTriangle(frame *Frame, depth []float64, a, b, c projected, col Color, alpha float64) {
	w, h := e.settings.Width, e.settings.Height
	minX := int(math.Floor(math.Min(a.x, math.Min(b.x, c.x))))
	maxX := int(math.Ceil(math.Max(a.x, math.Max(b.x, c.x))))
	minY := int(math.Floor(math.Min(a.y, math.Min(b.y, c.y))))
	maxY := int(math.Ceil(math.Max(a.y, math.Max(b.y, c.y))))
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > w-1 {
		maxX = w - 1
	}
	if maxY > h-1 {
		maxY = h - 1
	}

	area := (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
	if area == 0 {
		return
	}

	if alpha <= 0 {
		return
	}
	af := clamp01(alpha)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			w0 := ((b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)) / area
			w1 := ((c.x-b.x)*(py-b.y) - (c.y-b.y)*(px-b.x)) / area
			w2 := ((a.x-c.x)*(py-c.y) - (a.y-c.y)*(px-c.x)) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			// Barycentric weights attach to the opposite vertices.
			z := w1*a.depth + w2*b.depth + w0*c.depth

			di := y*w + x
			if z >= depth[di] {
				continue
			}
			depth[di] = z

			pi := di * 4
			e.blendPixel(frame, pi, col, af)
		}
	}
}

func (e *SoftEngine) blendPixel(frame *Frame, pi int, col Color, alpha float64) {
	if alpha >= 1 {
		frame.Pix[pi] = float32(col.R)
		frame.Pix[pi+1] = float32(col.G)
		frame.Pix[pi+2] = float32(col.B)
		frame.Pix[pi+3] = 1
		return
	}
	inv := float32(1 - alpha)
	frame.Pix[pi] = float32(col.R*alpha) + frame.Pix[pi]*inv
	frame.Pix[pi+1] = float32(col.G*alpha) + frame.Pix[pi+1]*inv
	frame.Pix[pi+2] = float32(col.B*alpha) + frame.Pix[pi+2]*inv
	frame.Pix[pi+3] = float32(alpha) + frame.Pix[pi+3]*inv
}

// rasterPoints splats each vertex of a point cloud as a small square.
func (e *SoftEngine) rasterPoints(frame *Frame, depth []float64, vp mgl64.Mat4, mesh MeshSpec) {
	w, h := e.settings.Width, e.settings.Height
	col := mesh.Material.BaseColor
	for _, v := range mesh.Vertices {
		p := e.project(vp, v.Add(mesh.Offset))
		if !p.visible {
			continue
		}
		cx, cy := int(p.x), int(p.y)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				x, y := cx+dx, cy+dy
				if x < 0 || x >= w || y < 0 || y >= h {
					continue
				}
				di := y*w + x
				if p.depth >= depth[di] {
					continue
				}
				depth[di] = p.depth
				pi := di * 4
				frame.Pix[pi] = float32(col.R)
				frame.Pix[pi+1] = float32(col.G)
				frame.Pix[pi+2] = float32(col.B)
				frame.Pix[pi+3] = 1
			}
		}
	}
}

// --- effect chain ---

// applyEffects runs the compositor chain over the float framebuffer in
// chain order.
func (e *SoftEngine) applyEffects(frame *Frame) {
	for _, fx := range e.effects {
		switch fx.Kind {
		case EffectColorCorrection:
			applyColorCorrection(frame, fx.Settings)
		case EffectVignette:
			applyVignette(frame, fx.Settings)
		case EffectFilmGrain:
			applyFilmGrain(frame, fx.Settings)
		case EffectSharpen:
			applyKernel(frame, sharpenKernel, fx.Settings.Amount)
		case EffectChromaticAberration:
			applyChromaticAberration(frame, fx.Settings)
		case EffectBloom:
			applyBloom(frame, fx.Settings)
		}
	}
}

func applyColorCorrection(frame *Frame, s EffectSettings) {
	m := CorrectionMatrix(s)
	gamma := s.Gamma
	if gamma <= 0 {
		gamma = 1
	}
	invGamma := 1 / gamma
	for i := 0; i < len(frame.Pix); i += 4 {
		r, g, b, a := m.Apply(
			float64(frame.Pix[i]), float64(frame.Pix[i+1]),
			float64(frame.Pix[i+2]), float64(frame.Pix[i+3]))
		if gamma != 1 {
			r = math.Pow(r, invGamma)
			g = math.Pow(g, invGamma)
			b = math.Pow(b, invGamma)
		}
		frame.Pix[i] = float32(r)
		frame.Pix[i+1] = float32(g)
		frame.Pix[i+2] = float32(b)
		frame.Pix[i+3] = float32(a)
	}
}

// applyVignette darkens toward the frame edges with a smooth quadratic
// falloff around the configured center.
func applyVignette(frame *Frame, s EffectSettings) {
	amount := clamp01(s.Amount)
	if amount == 0 {
		return
	}
	cx, cy := s.CenterX, s.CenterY
	w, h := frame.Width, frame.Height
	maxDist := math.Hypot(math.Max(cx, 1-cx), math.Max(cy, 1-cy))
	for y := 0; y < h; y++ {
		// Rows run bottom-up; UV space has v=0 at the top.
		v := 1 - (float64(y)+0.5)/float64(h)
		for x := 0; x < w; x++ {
			u := (float64(x) + 0.5) / float64(w)
			d := math.Hypot(u-cx, v-cy) / maxDist
			f := float32(1 - amount*d*d)
			i := (y*w + x) * 4
			frame.Pix[i] *= f
			frame.Pix[i+1] *= f
			frame.Pix[i+2] *= f
		}
	}
}

// applyFilmGrain adds seeded monochrome noise so the same settings
// always produce the same frame.
func applyFilmGrain(frame *Frame, s EffectSettings) {
	amount := s.Amount
	if amount <= 0 {
		return
	}
	seed := s.Seed
	if seed == 0 {
		seed = 1
	}
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < len(frame.Pix); i += 4 {
		n := float32((rng.Float64()*2 - 1) * amount)
		frame.Pix[i] = clamp01f(frame.Pix[i] + n)
		frame.Pix[i+1] = clamp01f(frame.Pix[i+1] + n)
		frame.Pix[i+2] = clamp01f(frame.Pix[i+2] + n)
	}
}

var sharpenKernel = [9]float64{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

// applyKernel convolves RGB with a 3x3 kernel and mixes the result with
// the original by amount. Edge pixels clamp to the border.
func applyKernel(frame *Frame, k [9]float64, amount float64) {
	amount = clamp01(amount)
	if amount == 0 {
		return
	}
	w, h := frame.Width, frame.Height
	src := make([]float32, len(frame.Pix))
	copy(src, frame.Pix)

	at := func(x, y, c int) float64 {
		if x < 0 {
			x = 0
		}
		if x > w-1 {
			x = w - 1
		}
		if y < 0 {
			y = 0
		}
		if y > h-1 {
			y = h - 1
		}
		return float64(src[(y*w+x)*4+c])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			for c := 0; c < 3; c++ {
				v := 0.0
				for ky := 0; ky < 3; ky++ {
					for kx := 0; kx < 3; kx++ {
						v += k[ky*3+kx] * at(x+kx-1, y+ky-1, c)
					}
				}
				orig := float64(src[i+c])
				frame.Pix[i+c] = clamp01f(float32(orig + (v-orig)*amount))
			}
		}
	}
}

// applyChromaticAberration shifts the red and blue channels apart
// horizontally by the dispersion fraction of the frame width.
func applyChromaticAberration(frame *Frame, s EffectSettings) {
	shift := int(math.Round(s.Dispersion * float64(frame.Width)))
	if shift == 0 && s.Dispersion > 0 {
		shift = 1
	}
	if shift == 0 {
		return
	}
	w, h := frame.Width, frame.Height
	src := make([]float32, len(frame.Pix))
	copy(src, frame.Pix)

	sample := func(x, y, c int) float32 {
		if x < 0 {
			x = 0
		}
		if x > w-1 {
			x = w - 1
		}
		return src[(y*w+x)*4+c]
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			frame.Pix[i] = sample(x-shift, y, 0)
			frame.Pix[i+2] = sample(x+shift, y, 2)
		}
	}
}

// applyBloom extracts pixels above the luminance threshold, blurs them
// with a separable box filter, and adds the glow back scaled by
// intensity.
func applyBloom(frame *Frame, s EffectSettings) {
	intensity := s.Intensity
	if intensity <= 0 {
		return
	}
	threshold := float32(s.Threshold)
	w, h := frame.Width, frame.Height

	glow := make([]float32, w*h*3)
	for p := 0; p < w*h; p++ {
		i := p * 4
		r, g, b := frame.Pix[i], frame.Pix[i+1], frame.Pix[i+2]
		lum := 0.299*r + 0.587*g + 0.114*b
		if lum > threshold {
			glow[p*3] = r
			glow[p*3+1] = g
			glow[p*3+2] = b
		}
	}

	radius := w / 64
	if radius < 2 {
		radius = 2
	}
	boxBlur3(glow, w, h, radius)
	boxBlur3(glow, w, h, radius)

	f := float32(intensity)
	for p := 0; p < w*h; p++ {
		i := p * 4
		frame.Pix[i] = clamp01f(frame.Pix[i] + glow[p*3]*f)
		frame.Pix[i+1] = clamp01f(frame.Pix[i+1] + glow[p*3+1]*f)
		frame.Pix[i+2] = clamp01f(frame.Pix[i+2] + glow[p*3+2]*f)
	}
}

// boxBlur3 blurs a 3-channel buffer in place with a horizontal then
// vertical box pass.
func boxBlur3(buf []float32, w, h, radius int) {
	tmp := make([]float32, len(buf))
	norm := float32(1) / float32(2*radius+1)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b float32
			for d := -radius; d <= radius; d++ {
				sx := x + d
				if sx < 0 {
					sx = 0
				}
				if sx > w-1 {
					sx = w - 1
				}
				p := (y*w + sx) * 3
				r += buf[p]
				g += buf[p+1]
				b += buf[p+2]
			}
			p := (y*w + x) * 3
			tmp[p] = r * norm
			tmp[p+1] = g * norm
			tmp[p+2] = b * norm
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b float32
			for d := -radius; d <= radius; d++ {
				sy := y + d
				if sy < 0 {
					sy = 0
				}
				if sy > h-1 {
					sy = h - 1
				}
				p := (sy*w + x) * 3
				r += tmp[p]
				g += tmp[p+1]
				b += tmp[p+2]
			}
			p := (y*w + x) * 3
			buf[p] = r * norm
			buf[p+1] = g * norm
			buf[p+2] = b * norm
		}
	}
}
