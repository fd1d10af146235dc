package vantage

// Material is a principled-style surface description. Engines are free
// to approximate; the CPU engine uses BaseColor, Emission, and Alpha and
// treats Metallic/Roughness as shading hints.
type Material struct {
	BaseColor        Color
	Metallic         float64
	Roughness        float64
	Emission         Color
	EmissionStrength float64
	Alpha            float64
}

// DefaultMaterial returns a matte mid-gray surface.
func DefaultMaterial() Material {
	return Material{
		BaseColor: Color{R: 0.8, G: 0.8, B: 0.8, A: 1},
		Roughness: 0.5,
		Alpha:     1,
	}
}

// SolidMaterial returns a matte surface of the given color.
func SolidMaterial(c Color) Material {
	m := DefaultMaterial()
	m.BaseColor = c
	return m
}

// Preset materials matching the stock library shipped with the widget.
func MaterialGold() Material {
	return Material{
		BaseColor: Color{R: 1.0, G: 0.766, B: 0.336, A: 1},
		Metallic:  1,
		Roughness: 0.1,
		Alpha:     1,
	}
}

func MaterialSilver() Material {
	return Material{
		BaseColor: Color{R: 0.972, G: 0.960, B: 0.915, A: 1},
		Metallic:  1,
		Roughness: 0.1,
		Alpha:     1,
	}
}

func MaterialCopper() Material {
	return Material{
		BaseColor: Color{R: 0.955, G: 0.637, B: 0.538, A: 1},
		Metallic:  1,
		Roughness: 0.2,
		Alpha:     1,
	}
}

func MaterialGlass() Material {
	return Material{
		BaseColor: Color{R: 1, G: 1, B: 1, A: 1},
		Roughness: 0.0,
		Alpha:     0.1,
	}
}

func MaterialPlastic() Material {
	return Material{
		BaseColor: Color{R: 0.9, G: 0.9, B: 0.9, A: 1},
		Roughness: 0.4,
		Alpha:     1,
	}
}

// MaterialEmissive returns a light-emitting surface of the given color
// and strength.
func MaterialEmissive(c Color, strength float64) Material {
	m := DefaultMaterial()
	m.BaseColor = c
	m.Emission = c
	m.EmissionStrength = strength
	return m
}

// MaterialPreset looks up a preset by name. Unknown names report false.
func MaterialPreset(name string) (Material, bool) {
	switch name {
	case "gold":
		return MaterialGold(), true
	case "silver":
		return MaterialSilver(), true
	case "copper":
		return MaterialCopper(), true
	case "glass":
		return MaterialGlass(), true
	case "plastic":
		return MaterialPlastic(), true
	case "default":
		return DefaultMaterial(), true
	default:
		return Material{}, false
	}
}
