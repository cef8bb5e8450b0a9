package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings must validate: %v", err)
	}
	if s.Runtime.MaxThreads < 1 {
		t.Error("default maxThreads must be at least 1")
	}
	if s.Regrid.ZeroThicknessLimit != 1e-6 {
		t.Errorf("expected default zero thickness limit 1e-6, got %g", s.Regrid.ZeroThicknessLimit)
	}
}

func TestLoadSettingsMissingFileGivesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if s.Wavelet.PeakFrequency != 30 {
		t.Errorf("expected default peak frequency 30, got %f", s.Wavelet.PeakFrequency)
	}
}

func TestLoadSettingsOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
sampling:
  dt: 2
seismic:
  nmoCorr: true
  seed: 42
offset:
  offset0: 0
  dOffset: 500
  offsetMax: 1000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Sampling.Dt != 2 {
		t.Errorf("expected dt=2, got %f", s.Sampling.Dt)
	}
	if !s.Seismic.NMOCorr || s.Seismic.Seed != 42 {
		t.Error("seismic section not applied")
	}
	if s.Offset.DOffset != 500 {
		t.Errorf("expected dOffset=500, got %f", s.Offset.DOffset)
	}
	// Untouched defaults survive.
	if s.Elastic.ConstVp[0] != 2500 {
		t.Errorf("default constVp[0] lost: %f", s.Elastic.ConstVp[0])
	}
}

func TestLoadSettingsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("sampling:\n  dt: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Error("expected validation error for negative dt")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s := DefaultSettings()
	s.Seismic.PSSeismic = true
	s.Elastic.ConstRho = [3]float64{2.0, 2.1, 2.2}

	if err := SaveSettings(s, path); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if !loaded.Seismic.PSSeismic {
		t.Error("psSeismic flag lost in round trip")
	}
	if loaded.Elastic.ConstRho != s.Elastic.ConstRho {
		t.Errorf("constRho lost: %v", loaded.Elastic.ConstRho)
	}
}

func TestValidateExtraParameterMismatch(t *testing.T) {
	s := DefaultSettings()
	s.Elastic.ExtraParameterNames = []string{"SW"}
	if err := s.Validate(); err == nil {
		t.Error("expected error for extra parameter names without defaults")
	}
}
