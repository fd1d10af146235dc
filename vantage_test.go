package vantage

import "testing"

func TestRenderKindNames(t *testing.T) {
	if RenderPreview.String() != "preview" || RenderQuality.String() != "quality" {
		t.Errorf("kind names = %s/%s", RenderPreview, RenderQuality)
	}
	if ParseRenderKind("quality") != RenderQuality {
		t.Error("quality did not parse")
	}
	if ParseRenderKind("bogus") != RenderPreview {
		t.Error("unknown kind did not fall back to preview")
	}
}

func TestDeviceNames(t *testing.T) {
	if DeviceCPU.String() != "cpu" || DeviceGPU.String() != "gpu" {
		t.Errorf("device names = %s/%s", DeviceCPU, DeviceGPU)
	}
	if ParseDevice("gpu") != DeviceGPU {
		t.Error("gpu did not parse")
	}
	if ParseDevice("tpu") != DeviceCPU {
		t.Error("unknown device did not fall back to cpu")
	}
}

func TestSamplesForProfiles(t *testing.T) {
	if got := samplesFor(RenderPreview); got != 16 {
		t.Errorf("preview samples = %d, want 16", got)
	}
	if got := samplesFor(RenderQuality); got != 64 {
		t.Errorf("quality samples = %d, want 64", got)
	}
}

func TestRenderSettingsNormalized(t *testing.T) {
	s := RenderSettings{}.Normalized()
	if s.Width != 512 || s.Height != 512 {
		t.Errorf("default size = %dx%d, want 512x512", s.Width, s.Height)
	}
	if s.Samples != 16 {
		t.Errorf("default samples = %d, want 16", s.Samples)
	}

	s = RenderSettings{Width: 100, Height: 200, Kind: RenderQuality}.Normalized()
	if s.Width != 100 || s.Height != 200 {
		t.Errorf("explicit size overridden: %dx%d", s.Width, s.Height)
	}
	if s.Samples != 64 {
		t.Errorf("quality samples = %d, want 64", s.Samples)
	}

	s = RenderSettings{Samples: 7}.Normalized()
	if s.Samples != 7 {
		t.Errorf("explicit samples overridden: %d", s.Samples)
	}
}
