package ebitengine

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/vantage3d/vantage"
)

// --- Kage shader sources ---
// All shaders use //kage:unit pixels as required by Ebitengine.
// Ebitengine uses premultiplied alpha; shaders un-premultiply before
// processing and re-premultiply output.

const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float
var InvGamma float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = pow(clamp(r, 0, 1), InvGamma)
	g = pow(clamp(g, 0, 1), InvGamma)
	b = pow(clamp(b, 0, 1), InvGamma)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

const vignetteShaderSrc = `//kage:unit pixels
package main

var Amount float
var Center vec2
var Size vec2

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	uv := src / Size
	corner := max(Center, vec2(1)-Center)
	d := distance(uv, Center) / length(corner)
	f := 1.0 - Amount*d*d
	return vec4(c.rgb*f, c.a)
}
`

const filmGrainShaderSrc = `//kage:unit pixels
package main

var Amount float
var Seed float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	n := fract(sin(dot(src+vec2(Seed), vec2(12.9898, 78.233))) * 43758.5453)
	c.rgb = clamp(c.rgb+vec3((n*2.0-1.0)*Amount), vec3(0), vec3(1))
	return vec4(c.rgb*c.a, c.a)
}
`

const sharpenShaderSrc = `//kage:unit pixels
package main

var Amount float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	sum := c*5.0 -
		imageSrc0At(src+vec2(1, 0)) -
		imageSrc0At(src+vec2(-1, 0)) -
		imageSrc0At(src+vec2(0, 1)) -
		imageSrc0At(src+vec2(0, -1))
	out := mix(c, sum, Amount)
	out = clamp(out, vec4(0), vec4(1))
	return vec4(out.rgb, c.a)
}
`

const aberrationShaderSrc = `//kage:unit pixels
package main

var Shift float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	r := imageSrc0At(src - vec2(Shift, 0)).r
	c := imageSrc0At(src)
	b := imageSrc0At(src + vec2(Shift, 0)).b
	return vec4(r, c.g, b, c.a)
}
`

const thresholdShaderSrc = `//kage:unit pixels
package main

var Threshold float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	lum := 0.299*c.r + 0.587*c.g + 0.114*c.b
	if lum <= Threshold {
		return vec4(0)
	}
	return vec4(c.rgb*c.a, c.a)
}
`

// --- Lazy shader compilation (no sync.Once — the engine is single-threaded) ---

var (
	colorMatrixShader *ebiten.Shader
	vignetteShader    *ebiten.Shader
	filmGrainShader   *ebiten.Shader
	sharpenShader     *ebiten.Shader
	aberrationShader  *ebiten.Shader
	thresholdShader   *ebiten.Shader
)

func compileShader(cached **ebiten.Shader, src, name string) *ebiten.Shader {
	if *cached == nil {
		s, err := ebiten.NewShader([]byte(src))
		if err != nil {
			panic("vantage ebitengine: failed to compile " + name + " shader: " + err.Error())
		}
		*cached = s
	}
	return *cached
}

// --- effect passes ---

// effectPass renders one compositor effect from src into dst.
type effectPass interface {
	apply(src, dst *ebiten.Image)
}

// passFor builds the GPU pass for an effect instance. Bloom needs the
// pool for its blur pyramid.
func passFor(fx vantage.Effect, pool *imagePool) effectPass {
	switch fx.Kind {
	case vantage.EffectColorCorrection:
		return newColorCorrectionPass(fx.Settings)
	case vantage.EffectVignette:
		return &vignettePass{settings: fx.Settings}
	case vantage.EffectFilmGrain:
		return &filmGrainPass{settings: fx.Settings}
	case vantage.EffectSharpen:
		return &sharpenPass{amount: fx.Settings.Amount}
	case vantage.EffectChromaticAberration:
		return &aberrationPass{dispersion: fx.Settings.Dispersion}
	case vantage.EffectBloom:
		return &bloomPass{settings: fx.Settings, pool: pool}
	default:
		return nil
	}
}

// colorCorrectionPass applies the composed correction matrix plus gamma
// in a single shader pass.
type colorCorrectionPass struct {
	matrixF32 [20]float32
	invGamma  float32
	uniforms  map[string]any
	shaderOp  ebiten.DrawRectShaderOptions
}

func newColorCorrectionPass(s vantage.EffectSettings) *colorCorrectionPass {
	p := &colorCorrectionPass{invGamma: 1}
	m := vantage.CorrectionMatrix(s)
	for i, v := range m {
		p.matrixF32[i] = float32(v)
	}
	if s.Gamma > 0 {
		p.invGamma = float32(1 / s.Gamma)
	}
	p.uniforms = map[string]any{
		"Matrix":   p.matrixF32[:],
		"InvGamma": p.invGamma,
	}
	return p
}

func (p *colorCorrectionPass) apply(src, dst *ebiten.Image) {
	shader := compileShader(&colorMatrixShader, colorMatrixShaderSrc, "color matrix")
	b := src.Bounds()
	p.shaderOp.Images[0] = src
	p.shaderOp.Uniforms = p.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &p.shaderOp)
}

type vignettePass struct {
	settings vantage.EffectSettings
	shaderOp ebiten.DrawRectShaderOptions
}

func (p *vignettePass) apply(src, dst *ebiten.Image) {
	shader := compileShader(&vignetteShader, vignetteShaderSrc, "vignette")
	b := src.Bounds()
	p.shaderOp.Images[0] = src
	p.shaderOp.Uniforms = map[string]any{
		"Amount": float32(p.settings.Amount),
		"Center": []float32{float32(p.settings.CenterX), float32(p.settings.CenterY)},
		"Size":   []float32{float32(b.Dx()), float32(b.Dy())},
	}
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &p.shaderOp)
}

type filmGrainPass struct {
	settings vantage.EffectSettings
	shaderOp ebiten.DrawRectShaderOptions
}

func (p *filmGrainPass) apply(src, dst *ebiten.Image) {
	shader := compileShader(&filmGrainShader, filmGrainShaderSrc, "film grain")
	b := src.Bounds()
	seed := p.settings.Seed
	if seed == 0 {
		seed = 1
	}
	p.shaderOp.Images[0] = src
	p.shaderOp.Uniforms = map[string]any{
		"Amount": float32(p.settings.Amount),
		"Seed":   float32(seed % 4096),
	}
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &p.shaderOp)
}

type sharpenPass struct {
	amount   float64
	shaderOp ebiten.DrawRectShaderOptions
}

func (p *sharpenPass) apply(src, dst *ebiten.Image) {
	shader := compileShader(&sharpenShader, sharpenShaderSrc, "sharpen")
	b := src.Bounds()
	p.shaderOp.Images[0] = src
	p.shaderOp.Uniforms = map[string]any{"Amount": float32(p.amount)}
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &p.shaderOp)
}

type aberrationPass struct {
	dispersion float64
	shaderOp   ebiten.DrawRectShaderOptions
}

func (p *aberrationPass) apply(src, dst *ebiten.Image) {
	shader := compileShader(&aberrationShader, aberrationShaderSrc, "chromatic aberration")
	b := src.Bounds()
	shift := p.dispersion * float64(b.Dx())
	if shift < 1 && p.dispersion > 0 {
		shift = 1
	}
	p.shaderOp.Images[0] = src
	p.shaderOp.Uniforms = map[string]any{"Shift": float32(shift)}
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &p.shaderOp)
}

// bloomPass extracts bright pixels, blurs them with an iterative
// downscale/upscale pyramid (bilinear filtering does the work), and
// composites the glow additively.
type bloomPass struct {
	settings vantage.EffectSettings
	pool     *imagePool
	shaderOp ebiten.DrawRectShaderOptions
	imgOp    ebiten.DrawImageOptions
}

func (p *bloomPass) apply(src, dst *ebiten.Image) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	// Pass-through first; the glow is added on top.
	p.imgOp.GeoM.Reset()
	p.imgOp.ColorScale.Reset()
	p.imgOp.Blend = ebiten.BlendCopy
	p.imgOp.Filter = ebiten.FilterNearest
	dst.DrawImage(src, &p.imgOp)

	glow := p.pool.acquire(w, h)
	defer p.pool.release(glow)

	shader := compileShader(&thresholdShader, thresholdShaderSrc, "bloom threshold")
	p.shaderOp.Images[0] = src
	p.shaderOp.Uniforms = map[string]any{"Threshold": float32(p.settings.Threshold)}
	glow.DrawRectShader(w, h, shader, &p.shaderOp)

	blurred := p.blur(glow, w, h)

	p.imgOp.GeoM.Reset()
	p.imgOp.ColorScale.Reset()
	bw := float64(blurred.Bounds().Dx())
	bh := float64(blurred.Bounds().Dy())
	p.imgOp.GeoM.Scale(float64(w)/bw, float64(h)/bh)
	p.imgOp.Blend = ebiten.BlendLighter
	p.imgOp.Filter = ebiten.FilterLinear
	intensity := float32(p.settings.Intensity)
	p.imgOp.ColorScale.Scale(intensity, intensity, intensity, 1)
	dst.DrawImage(blurred, &p.imgOp)
	p.imgOp.Blend = ebiten.Blend{}

	if blurred != glow {
		p.pool.release(blurred)
	}
}

// blur runs the downscale half of a pyramid blur and returns the
// smallest level; the caller upscales with linear filtering. The pass
// count scales with the image so the glow radius stays proportional.
func (p *bloomPass) blur(src *ebiten.Image, w, h int) *ebiten.Image {
	passes := int(math.Ceil(math.Log2(float64(max(w, h)) / 32)))
	if passes < 1 {
		passes = 1
	}
	if passes > 5 {
		passes = 5
	}

	current := src
	cw, ch := w, h
	for i := 0; i < passes; i++ {
		nw, nh := max(cw/2, 1), max(ch/2, 1)
		next := p.pool.acquire(nw, nh)
		p.imgOp.GeoM.Reset()
		p.imgOp.ColorScale.Reset()
		p.imgOp.Blend = ebiten.Blend{}
		p.imgOp.GeoM.Scale(float64(nw)/float64(cw), float64(nh)/float64(ch))
		p.imgOp.Filter = ebiten.FilterLinear
		next.DrawImage(current, &p.imgOp)
		if current != src {
			p.pool.release(current)
		}
		current, cw, ch = next, nw, nh
	}
	return current
}
