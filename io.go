package vantage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Format identifies a scene interchange format.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatGLTF
	FormatGLB
	FormatUSD
	FormatUSDA
	FormatUSDC
	FormatUSDZ
	FormatAlembic
	FormatCSV
)

// String returns the canonical file extension without the dot.
func (f Format) String() string {
	switch f {
	case FormatGLTF:
		return "gltf"
	case FormatGLB:
		return "glb"
	case FormatUSD:
		return "usd"
	case FormatUSDA:
		return "usda"
	case FormatUSDC:
		return "usdc"
	case FormatUSDZ:
		return "usdz"
	case FormatAlembic:
		return "abc"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// DetectFormat maps a file path to its format by extension,
// case-insensitively. Unknown extensions report FormatUnknown.
func DetectFormat(path string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "gltf":
		return FormatGLTF
	case "glb":
		return FormatGLB
	case "usd":
		return FormatUSD
	case "usda":
		return FormatUSDA
	case "usdc":
		return FormatUSDC
	case "usdz":
		return FormatUSDZ
	case "abc":
		return FormatAlembic
	case "csv":
		return FormatCSV
	default:
		return FormatUnknown
	}
}

// EnsureExtension appends the format's canonical extension when the
// path has none, and replaces a mismatched one.
func EnsureExtension(path string, f Format) string {
	want := "." + f.String()
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, want) {
		return path
	}
	return strings.TrimSuffix(path, ext) + want
}

// ErrUnsupportedFormat is returned when neither the engine nor the
// built-in importers handle a format.
var ErrUnsupportedFormat = errors.New("vantage: unsupported scene format")

// ValidateInputPath checks that a scene file exists and is a regular
// file.
func ValidateInputPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input path: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path: %s is a directory", path)
	}
	return nil
}

// ValidateOutputPath checks that an output file could be created: its
// parent directory must exist and be writable. The file itself need not
// exist.
func ValidateOutputPath(path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path: %s is not a directory", dir)
	}
	// Probe writability directly; permission bits lie on some mounts.
	probe, err := os.CreateTemp(dir, ".vantage-probe-*")
	if err != nil {
		return fmt.Errorf("output path: directory %s not writable: %w", dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// ImportScene loads a scene file into the engine. CSV point clouds are
// handled by the built-in importer; every other format is delegated to
// the engine when it implements SceneImporter.
func ImportScene(e Engine, path string) error {
	if err := ValidateInputPath(path); err != nil {
		return err
	}
	format := DetectFormat(path)
	if format == FormatUnknown {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if format == FormatCSV {
		return importCSV(e, path)
	}
	if imp, ok := e.(SceneImporter); ok {
		if err := imp.ImportScene(path, format); err != nil {
			return fmt.Errorf("import %s: %w", format, err)
		}
		return nil
	}
	return fmt.Errorf("%w: engine cannot import %s", ErrUnsupportedFormat, format)
}

// ExportScene writes the engine's current scene to a file, normalizing
// the extension to match the requested format. The engine must
// implement SceneExporter.
func ExportScene(e Engine, path string, format Format) (string, error) {
	if format == FormatUnknown {
		format = DetectFormat(path)
	}
	if format == FormatUnknown {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	path = EnsureExtension(path, format)
	if err := ValidateOutputPath(path); err != nil {
		return "", err
	}

	exp, ok := e.(SceneExporter)
	if !ok {
		return "", fmt.Errorf("%w: engine cannot export %s", ErrUnsupportedFormat, format)
	}
	if err := exp.ExportScene(path, format); err != nil {
		return "", fmt.Errorf("export %s: %w", format, err)
	}
	return path, nil
}

// importCSV reads a point cloud from a CSV file with x,y,z columns. A
// non-numeric first row is treated as a header and skipped.
func importCSV(e Engine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("import csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("import csv: %w", err)
	}

	points := make([]mgl64.Vec3, 0, len(records))
	for i, rec := range records {
		if len(rec) < 3 {
			return fmt.Errorf("import csv: row %d has %d columns, need 3", i+1, len(rec))
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		z, errZ := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if errX != nil || errY != nil || errZ != nil {
			if i == 0 {
				continue // header row
			}
			return fmt.Errorf("import csv: row %d is not numeric", i+1)
		}
		points = append(points, mgl64.Vec3{x, y, z})
	}
	if len(points) == 0 {
		return fmt.Errorf("import csv: no points in %s", path)
	}

	e.AddMesh(NewPointCloud(filepath.Base(path), points))
	return nil
}
