package vantage

// EffectKind identifies a post-processing effect in the compositor chain.
type EffectKind uint8

const (
	EffectBloom EffectKind = iota
	EffectColorCorrection
	EffectVignette
	EffectFilmGrain
	EffectChromaticAberration
	EffectSharpen
)

// String returns the effect name used in status text and node labels.
func (k EffectKind) String() string {
	switch k {
	case EffectBloom:
		return "bloom"
	case EffectColorCorrection:
		return "color-correction"
	case EffectVignette:
		return "vignette"
	case EffectFilmGrain:
		return "film-grain"
	case EffectChromaticAberration:
		return "chromatic-aberration"
	case EffectSharpen:
		return "sharpen"
	default:
		return "unknown"
	}
}

// ParseEffectKind maps an effect name back to its kind.
func ParseEffectKind(s string) (EffectKind, bool) {
	switch s {
	case "bloom":
		return EffectBloom, true
	case "color-correction":
		return EffectColorCorrection, true
	case "vignette":
		return EffectVignette, true
	case "film-grain":
		return EffectFilmGrain, true
	case "chromatic-aberration":
		return EffectChromaticAberration, true
	case "sharpen":
		return EffectSharpen, true
	default:
		return 0, false
	}
}

// EffectSettings holds the parameters for every effect kind. Only the
// fields relevant to the kind are consulted; the rest are ignored.
// Zero values select the documented defaults via Normalize.
type EffectSettings struct {
	// Bloom
	Intensity float64 // mix factor for the glow pass
	Threshold float64 // luminance above which pixels glow

	// Color correction
	Brightness float64    // additive offset [-1, 1]
	Contrast   float64    // 0 = unchanged (additive convention)
	Saturation float64    // 1 = unchanged, 0 = grayscale
	Gain       [3]float64 // per-channel multiplier, {1,1,1} = unchanged
	Gamma      float64    // 1 = unchanged

	// Vignette
	Amount  float64 // darkening strength [0, 1]
	CenterX float64 // ellipse center in UV space
	CenterY float64

	// Film grain
	Seed int64 // noise seed; 0 picks a fixed default

	// Chromatic aberration
	Dispersion float64 // horizontal channel shift as a fraction of width

	// Sharpen uses Amount as the kernel mix factor.
}

// defaultSettings returns the per-kind defaults from the original effect
// parameter schemas.
func defaultSettings(kind EffectKind) EffectSettings {
	switch kind {
	case EffectBloom:
		return EffectSettings{Intensity: 1.0, Threshold: 1.0}
	case EffectColorCorrection:
		return EffectSettings{Saturation: 1.0, Gain: [3]float64{1, 1, 1}, Gamma: 1.0}
	case EffectVignette:
		return EffectSettings{Amount: 0.3, CenterX: 0.5, CenterY: 0.5}
	case EffectFilmGrain:
		return EffectSettings{Amount: 0.05, Seed: 1}
	case EffectChromaticAberration:
		return EffectSettings{Dispersion: 0.001}
	case EffectSharpen:
		return EffectSettings{Amount: 0.1}
	default:
		return EffectSettings{}
	}
}

// Effect is a fully configured effect instance, as handed to engines in
// chain order.
type Effect struct {
	Kind     EffectKind
	Settings EffectSettings
}

// --- Color matrix ---

// ColorMatrix is a 4x5 color transformation in row-major order:
// [R_r, R_g, R_b, R_a, R_offset, G_r, ...]. Applied to straight-alpha
// RGBA with the result clamped to [0, 1].
type ColorMatrix [20]float64

// IdentityColorMatrix returns the matrix that leaves colors unchanged.
func IdentityColorMatrix() ColorMatrix {
	var m ColorMatrix
	m[0], m[6], m[12], m[18] = 1, 1, 1, 1
	return m
}

// BrightnessMatrix offsets RGB by b in [-1, 1].
func BrightnessMatrix(b float64) ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, b,
		0, 1, 0, 0, b,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	}
}

// ContrastMatrix scales RGB around mid-gray. c=1 is unchanged, 0 collapses
// to gray, >1 increases contrast.
func ContrastMatrix(c float64) ColorMatrix {
	t := (1.0 - c) / 2.0
	return ColorMatrix{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	}
}

// SaturationMatrix interpolates between Rec.601 luminance (s=0) and the
// original color (s=1).
func SaturationMatrix(s float64) ColorMatrix {
	sr := (1 - s) * 0.299
	sg := (1 - s) * 0.587
	sb := (1 - s) * 0.114
	return ColorMatrix{
		sr + s, sg, sb, 0, 0,
		sr, sg + s, sb, 0, 0,
		sr, sg, sb + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// GainMatrix multiplies each channel independently.
func GainMatrix(r, g, b float64) ColorMatrix {
	m := IdentityColorMatrix()
	m[0], m[6], m[12] = r, g, b
	return m
}

// Mul returns the matrix equivalent to applying other first, then m.
func (m ColorMatrix) Mul(other ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			v := 0.0
			for i := 0; i < 4; i++ {
				v += m[row*5+i] * other[i*5+col]
			}
			if col == 4 {
				v += m[row*5+4]
			}
			out[row*5+col] = v
		}
	}
	return out
}

// Apply transforms a straight-alpha RGBA color, clamping each component
// to [0, 1]. Gamma is not part of the matrix and is applied separately.
func (m ColorMatrix) Apply(r, g, b, a float64) (float64, float64, float64, float64) {
	nr := m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]
	ng := m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]
	nb := m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]
	na := m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19]
	return clamp01(nr), clamp01(ng), clamp01(nb), clamp01(na)
}

// CorrectionMatrix composes the color-correction settings into a single
// matrix: brightness/contrast first, then saturation, then gain. The
// contrast convention is additive around zero (0 = unchanged), matching
// the correction node's parameter schema. Gamma is not representable in
// a linear matrix; engines apply it after the matrix.
func CorrectionMatrix(s EffectSettings) ColorMatrix {
	m := ContrastMatrix(1 + s.Contrast)
	m = m.Mul(BrightnessMatrix(s.Brightness))
	m = SaturationMatrix(s.Saturation).Mul(m)
	return GainMatrix(s.Gain[0], s.Gain[1], s.Gain[2]).Mul(m)
}
