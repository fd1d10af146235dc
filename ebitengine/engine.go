// Package ebitengine provides a GPU-backed vantage.Engine built on
// [Ebitengine]. The scene is projected on the CPU with the shared
// camera math and rasterized with DrawTriangles; the compositor chain
// runs as Kage shader passes.
//
// Ebitengine needs a live graphics context, so this engine only works
// inside a running game loop (see the viewer example). For headless
// rendering use vantage.SoftEngine.
//
// [Ebitengine]: https://ebitengine.org
package ebitengine

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/vantage3d/vantage"
)

// whiteImage backs untextured triangle draws. The 1x1 center sub-image
// avoids bleeding from the texture atlas edges.
var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Engine renders vantage scenes with Ebitengine. Like the rest of the
// library it is single-goroutine only.
type Engine struct {
	settings vantage.RenderSettings

	camera    vantage.Pose
	hasCamera bool

	meshes []vantage.MeshSpec
	lights []vantage.LightSpec

	background vantage.Color
	bgStrength float64

	passes []effectPass
	pool   imagePool

	vertices []ebiten.Vertex
	indices  []uint32
}

var _ vantage.Engine = (*Engine)(nil)

// New returns an engine with default settings and an empty scene.
func New() *Engine {
	return &Engine{
		settings:   vantage.RenderSettings{}.Normalized(),
		background: vantage.DefaultBackground,
		bgStrength: 1,
	}
}

func (e *Engine) Configure(settings vantage.RenderSettings) {
	settings = settings.Normalized()
	if settings.Width != e.settings.Width || settings.Height != e.settings.Height {
		e.pool.drain()
	}
	e.settings = settings
}

func (e *Engine) Resolution() (int, int) {
	return e.settings.Width, e.settings.Height
}

func (e *Engine) SetCameraPose(pose vantage.Pose) {
	e.camera = pose
	e.hasCamera = true
}

func (e *Engine) HasCamera() bool { return e.hasCamera }

func (e *Engine) RemoveCamera() {
	e.camera = vantage.Pose{}
	e.hasCamera = false
}

func (e *Engine) AddMesh(mesh vantage.MeshSpec) {
	e.meshes = append(e.meshes, mesh)
}

func (e *Engine) Meshes() []vantage.MeshSpec { return e.meshes }

func (e *Engine) AddLight(light vantage.LightSpec) {
	e.lights = append(e.lights, light)
}

func (e *Engine) SetBackground(c vantage.Color, strength float64) {
	e.background = c
	e.bgStrength = strength
}

func (e *Engine) Clear() {
	e.meshes = nil
	e.lights = nil
	e.RemoveCamera()
}

// SetEffects rebuilds the shader pass chain. Passes are constructed
// once here, not per frame, so uniform buffers persist across renders.
func (e *Engine) SetEffects(chain []vantage.Effect) {
	e.passes = e.passes[:0]
	for _, fx := range chain {
		if p := passFor(fx, &e.pool); p != nil {
			e.passes = append(e.passes, p)
		}
	}
}

// RenderToBuffer draws the scene into an offscreen image, runs the
// effect passes, and reads the pixels back as a float framebuffer with
// row 0 at the bottom.
func (e *Engine) RenderToBuffer() (*vantage.Frame, error) {
	if !e.hasCamera {
		return nil, vantage.ErrNoCamera
	}

	target := e.renderScene()
	defer e.pool.release(target)

	w, h := e.settings.Width, e.settings.Height
	raw := make([]byte, 4*w*h)
	target.ReadPixels(raw)

	frame := &vantage.Frame{Width: w, Height: h, Pix: make([]float32, 4*w*h)}
	stride := w * 4
	for y := 0; y < h; y++ {
		// ReadPixels rows run top-down; the frame contract is bottom-up.
		src := raw[y*stride : (y+1)*stride]
		dst := frame.Pix[(h-1-y)*stride : (h-y)*stride]
		for x := 0; x < w; x++ {
			i := x * 4
			a := src[i+3]
			r, g, b := src[i], src[i+1], src[i+2]
			// Un-premultiply back to straight alpha.
			if a > 0 && a < 255 {
				r = uint8(min(int(r)*255/int(a), 255))
				g = uint8(min(int(g)*255/int(a), 255))
				b = uint8(min(int(b)*255/int(a), 255))
			}
			dst[i] = float32(r) / 255
			dst[i+1] = float32(g) / 255
			dst[i+2] = float32(b) / 255
			dst[i+3] = float32(a) / 255
		}
	}
	return frame, nil
}

// RenderToFile renders a frame and writes it as a standard top-down
// PNG with straight alpha.
func (e *Engine) RenderToFile(path string) error {
	frame, err := e.RenderToBuffer()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render to file: %w", err)
	}
	defer f.Close()

	pb := vantage.NewPixelBuffer(frame.Width, frame.Height)
	stride := frame.Width * 4
	for y := 0; y < frame.Height; y++ {
		src := frame.Pix[(frame.Height-1-y)*stride : (frame.Height-y)*stride]
		dst := pb.Pix[y*stride : (y+1)*stride]
		for i, v := range src {
			dst[i] = byte(v*255 + 0.5)
		}
	}
	if err := png.Encode(f, pb.Image()); err != nil {
		return fmt.Errorf("render to file: %w", err)
	}
	return nil
}

// --- scene drawing ---

// face is one projected triangle queued for the painter's sort.
type face struct {
	v     [3]ebiten.Vertex
	depth float64
}

// renderScene draws all meshes into a pooled offscreen image and runs
// the effect passes over it. The caller releases the returned image.
func (e *Engine) renderScene() *ebiten.Image {
	w, h := e.settings.Width, e.settings.Height
	target := e.pool.acquire(w, h)

	bgAlpha := 1.0
	if e.settings.Transparent {
		bgAlpha = 0
	}
	target.Fill(color.NRGBA{
		R: uint8(clampByte(e.background.R * e.bgStrength)),
		G: uint8(clampByte(e.background.G * e.bgStrength)),
		B: uint8(clampByte(e.background.B * e.bgStrength)),
		A: uint8(bgAlpha * 255),
	})

	vp := vantage.PerspectiveMatrix(w, h).Mul4(e.camera.ViewMatrix())

	var faces []face
	for _, mesh := range e.meshes {
		if len(mesh.Indices) == 0 {
			e.drawPoints(target, vp, mesh)
			continue
		}
		faces = e.projectMesh(faces, vp, mesh)
	}

	// No depth buffer on the 2D renderer; sort back to front instead.
	sort.Slice(faces, func(i, j int) bool {
		return faces[i].depth > faces[j].depth
	})

	e.vertices = e.vertices[:0]
	e.indices = e.indices[:0]
	for _, f := range faces {
		base := uint32(len(e.vertices))
		e.vertices = append(e.vertices, f.v[0], f.v[1], f.v[2])
		e.indices = append(e.indices, base, base+1, base+2)
	}
	if len(e.indices) > 0 {
		op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
		target.DrawTriangles32(e.vertices, e.indices, whiteSubImage, op)
	}

	return e.applyPasses(target)
}

// projectMesh appends the mesh's visible triangles, flat-shaded and
// projected to screen space.
func (e *Engine) projectMesh(faces []face, vp mgl64.Mat4, mesh vantage.MeshSpec) []face {
	w, h := float64(e.settings.Width), float64(e.settings.Height)
	eye := e.camera.Position
	alpha := mesh.Material.Alpha
	if alpha <= 0 {
		return faces
	}

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := mesh.Vertices[mesh.Indices[i]].Add(mesh.Offset)
		b := mesh.Vertices[mesh.Indices[i+1]].Add(mesh.Offset)
		c := mesh.Vertices[mesh.Indices[i+2]].Add(mesh.Offset)

		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Len() == 0 {
			continue
		}
		normal = normal.Normalize()
		center := a.Add(b).Add(c).Mul(1.0 / 3.0)
		if normal.Dot(eye.Sub(center)) < 0 {
			normal = normal.Mul(-1)
		}
		shade := vantage.ShadeFlat(mesh.Material, normal, e.lights)

		pa, da, okA := projectPoint(vp, a, w, h)
		pb, db, okB := projectPoint(vp, b, w, h)
		pc, dc, okC := projectPoint(vp, c, w, h)
		if !okA || !okB || !okC {
			continue
		}

		// Vertex colors are premultiplied in Ebitengine.
		cr := float32(shade.R * alpha)
		cg := float32(shade.G * alpha)
		cb := float32(shade.B * alpha)
		ca := float32(alpha)

		var f face
		for vi, p := range [3][2]float64{pa, pb, pc} {
			f.v[vi] = ebiten.Vertex{
				DstX: float32(p[0]), DstY: float32(p[1]),
				SrcX: 1.5, SrcY: 1.5,
				ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
			}
		}
		f.depth = (da + db + dc) / 3
		faces = append(faces, f)
	}
	return faces
}

// projectPoint maps a world position to Ebitengine screen space (y
// down) and returns the view depth.
func projectPoint(vp mgl64.Mat4, world mgl64.Vec3, w, h float64) ([2]float64, float64, bool) {
	clip := vp.Mul4x1(world.Vec4(1))
	if clip.W() <= 0 {
		return [2]float64{}, 0, false
	}
	inv := 1 / clip.W()
	ndcX, ndcY, ndcZ := clip.X()*inv, clip.Y()*inv, clip.Z()*inv
	if ndcZ < -1 || ndcZ > 1 {
		return [2]float64{}, 0, false
	}
	return [2]float64{
		(ndcX + 1) / 2 * w,
		h - (ndcY+1)/2*h,
	}, clip.W(), true
}

// drawPoints splats a point cloud as small screen-space quads.
func (e *Engine) drawPoints(target *ebiten.Image, vp mgl64.Mat4, mesh vantage.MeshSpec) {
	w, h := float64(e.settings.Width), float64(e.settings.Height)
	col := mesh.Material.BaseColor

	op := &ebiten.DrawImageOptions{}
	for _, v := range mesh.Vertices {
		p, _, ok := projectPoint(vp, v.Add(mesh.Offset), w, h)
		if !ok {
			continue
		}
		op.GeoM.Reset()
		op.GeoM.Scale(3, 3)
		op.GeoM.Translate(p[0]-1.5, p[1]-1.5)
		op.ColorScale.Reset()
		op.ColorScale.Scale(float32(col.R), float32(col.G), float32(col.B), 1)
		target.DrawImage(whiteSubImage, op)
	}
}

// applyPasses ping-pongs the frame through the effect chain. The input
// image is released unless it is returned unchanged.
func (e *Engine) applyPasses(target *ebiten.Image) *ebiten.Image {
	w, h := e.settings.Width, e.settings.Height
	current := target
	for _, p := range e.passes {
		next := e.pool.acquire(w, h)
		p.apply(current, next)
		e.pool.release(current)
		current = next
	}
	return current
}

func clampByte(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 255
	}
	return int(v*255 + 0.5)
}
