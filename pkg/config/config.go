// Package config provides configuration loading and management for
// seisforward. Settings are read from YAML files on top of defaults and
// validated before any grid is built.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ModelSettings is the immutable run configuration. Index convention
// for the elastic defaults: 0 = overburden, 1 = reservoir default,
// 2 = underburden.
type ModelSettings struct {
	// Elastic default parameters per zone.
	Elastic struct {
		ConstVp  [3]float64 `yaml:"constVp"`
		ConstVs  [3]float64 `yaml:"constVs"`
		ConstRho [3]float64 `yaml:"constRho"`

		// ParameterNames are the Eclipse fields holding vp, vs and
		// rho, in that order.
		ParameterNames [3]string `yaml:"parameterNames"`

		// ExtraParameterNames lists additional Eclipse fields to
		// resample; ExtraParameterDefaults are their fill values.
		ExtraParameterNames    []string  `yaml:"extraParameterNames"`
		ExtraParameterDefaults []float64 `yaml:"extraParameterDefaults"`
	} `yaml:"elastic"`

	// Water column above the model.
	Water struct {
		Vw float64 `yaml:"vw"` // velocity in m/s
		Zw float64 `yaml:"zw"` // depth in m
	} `yaml:"water"`

	// Sampling of the output grids.
	Sampling struct {
		Dx float64 `yaml:"dx"` // m
		Dy float64 `yaml:"dy"` // m
		Dz float64 `yaml:"dz"` // m
		Dt float64 `yaml:"dt"` // ms
	} `yaml:"sampling"`

	// Angle span for angle gathers (radians; used when NMO is off).
	Angle struct {
		Theta0   float64 `yaml:"theta0"`
		DTheta   float64 `yaml:"dTheta"`
		ThetaMax float64 `yaml:"thetaMax"`
	} `yaml:"angle"`

	// Offset span for offset gathers (m; used when NMO is on).
	Offset struct {
		Offset0   float64 `yaml:"offset0"`
		DOffset   float64 `yaml:"dOffset"`
		OffsetMax float64 `yaml:"offsetMax"`
	} `yaml:"offset"`

	// Wavelet selection: a Ricker peak frequency, or a tabulated file.
	Wavelet struct {
		Ricker        bool    `yaml:"ricker"`
		PeakFrequency float64 `yaml:"peakFrequency"` // Hz
		FileName      string  `yaml:"fileName"`
		Scale         float64 `yaml:"scale"`
	} `yaml:"wavelet"`

	// Seismic mode flags.
	Seismic struct {
		NMOCorr    bool    `yaml:"nmoCorr"`
		PSSeismic  bool    `yaml:"psSeismic"`
		WhiteNoise bool    `yaml:"whiteNoise"`
		StdDev     float64 `yaml:"stdDev"`
		Seed       uint64  `yaml:"seed"`
	} `yaml:"seismic"`

	// Survey area. Exactly one source is honoured, in this order: a
	// survey geometry passed to the session, explicit rectangle, surface
	// file, eclipse footprint. FromSegy is not read.
	Area struct {
		FromSegy    string  `yaml:"fromSegy"`
		FromSurface string  `yaml:"fromSurface"`
		Given       bool    `yaml:"given"`
		X0          float64 `yaml:"x0"`
		Y0          float64 `yaml:"y0"`
		LX          float64 `yaml:"lx"`
		LY          float64 `yaml:"ly"`
		Angle       float64 `yaml:"angle"`
	} `yaml:"area"`

	// Survey labelling of the output traces. When enabled, traces are
	// written with these inline/crossline labels; otherwise plain grid
	// indices (i, j) are written into the inline/crossline header words.
	// Trace headers are written in both cases.
	Survey struct {
		Enabled bool `yaml:"enabled"`
		IL0     int  `yaml:"il0"`
		XL0     int  `yaml:"xl0"`
		ILStep  int  `yaml:"ilStep"`
		XLStep  int  `yaml:"xlStep"`
	} `yaml:"survey"`

	// Input files.
	Input struct {
		EclipseFileName    string  `yaml:"eclipseFileName"`
		TopTimeSurfaceFile string  `yaml:"topTimeSurfaceFile"`
		TopTimeConstant    float64 `yaml:"topTimeConstant"` // ms
		TwtShiftFile       string  `yaml:"twtShiftFile"`
	} `yaml:"input"`

	// Output gates.
	Output struct {
		Prefix             string `yaml:"prefix"`
		TimeSegy           bool   `yaml:"timeSegy"`
		TimeStackSegy      bool   `yaml:"timeStackSegy"`
		PrenmoTimeSegy     bool   `yaml:"prenmoTimeSegy"`
		DepthSegy          bool   `yaml:"depthSegy"`
		DepthStackSegy     bool   `yaml:"depthStackSegy"`
		TimeshiftSegy      bool   `yaml:"timeshiftSegy"`
		TimeshiftStackSegy bool   `yaml:"timeshiftStackSegy"`
		TimeStorm          bool   `yaml:"timeStorm"`
		DepthStorm         bool   `yaml:"depthStorm"`
		TimeshiftStorm     bool   `yaml:"timeshiftStorm"`
		Vrms               bool   `yaml:"vrms"`
		Reflections        bool   `yaml:"reflections"`
		ElasticStorm       bool   `yaml:"elasticStorm"`
		ZValuesStorm       bool   `yaml:"zValuesStorm"`
		TwtStorm           bool   `yaml:"twtStorm"`
		TimeSurfaces       bool   `yaml:"timeSurfaces"`
		DepthSurfaces      bool   `yaml:"depthSurfaces"`
	} `yaml:"output"`

	// Regridding controls.
	Regrid struct {
		UseCornerpointInterpol bool    `yaml:"useCornerpointInterpol"`
		RemoveNegativeDeltaZ   bool    `yaml:"removeNegativeDeltaZ"`
		DefaultUnderburden     bool    `yaml:"defaultUnderburden"`
		ZeroThicknessLimit     float64 `yaml:"zeroThicknessLimit"` // m
	} `yaml:"regrid"`

	// Runtime controls.
	Runtime struct {
		MaxThreads int `yaml:"maxThreads"`
	} `yaml:"runtime"`
}

// DefaultSettings returns a configuration with default values.
func DefaultSettings() *ModelSettings {
	s := &ModelSettings{}

	s.Elastic.ConstVp = [3]float64{2500, 2800, 3500}
	s.Elastic.ConstVs = [3]float64{1000, 1300, 1800}
	s.Elastic.ConstRho = [3]float64{2.2, 2.3, 2.5}
	s.Elastic.ParameterNames = [3]string{"VP", "VS", "RHO"}

	s.Water.Vw = 1480
	s.Water.Zw = 100

	s.Sampling.Dx = 25
	s.Sampling.Dy = 25
	s.Sampling.Dz = 4
	s.Sampling.Dt = 4

	s.Wavelet.Ricker = true
	s.Wavelet.PeakFrequency = 30
	s.Wavelet.Scale = 1

	s.Seismic.StdDev = 0.001
	s.Seismic.Seed = 12345

	s.Input.TopTimeConstant = 1000

	s.Output.Prefix = "seismic"
	s.Output.TimeSegy = true

	s.Survey.IL0 = 1
	s.Survey.XL0 = 1
	s.Survey.ILStep = 1
	s.Survey.XLStep = 1

	s.Regrid.RemoveNegativeDeltaZ = true
	s.Regrid.ZeroThicknessLimit = 1e-6

	s.Runtime.MaxThreads = runtime.NumCPU()

	return s
}

// LoadSettings loads configuration from a YAML file over the defaults
// and validates the result. A missing file yields the defaults.
func LoadSettings(path string) (*ModelSettings, error) {
	s := DefaultSettings()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveSettings writes the configuration to a YAML file.
func SaveSettings(s *ModelSettings, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Validate rejects out-of-range values before any grid is built.
func (s *ModelSettings) Validate() error {
	if s.Sampling.Dx <= 0 || s.Sampling.Dy <= 0 || s.Sampling.Dz <= 0 || s.Sampling.Dt <= 0 {
		return fmt.Errorf("sampling steps must be positive: dx=%f dy=%f dz=%f dt=%f",
			s.Sampling.Dx, s.Sampling.Dy, s.Sampling.Dz, s.Sampling.Dt)
	}
	for i, v := range s.Elastic.ConstVp {
		if v <= 0 {
			return fmt.Errorf("constVp[%d] must be positive, got %f", i, v)
		}
	}
	for i, v := range s.Elastic.ConstVs {
		if v <= 0 {
			return fmt.Errorf("constVs[%d] must be positive, got %f", i, v)
		}
	}
	for i, v := range s.Elastic.ConstRho {
		if v <= 0 {
			return fmt.Errorf("constRho[%d] must be positive, got %f", i, v)
		}
	}
	if s.Water.Vw <= 0 {
		return fmt.Errorf("water velocity must be positive, got %f", s.Water.Vw)
	}
	if s.Water.Zw < 0 {
		return fmt.Errorf("water depth must be non-negative, got %f", s.Water.Zw)
	}
	if s.Wavelet.Ricker && s.Wavelet.PeakFrequency <= 0 {
		return fmt.Errorf("ricker peak frequency must be positive, got %f", s.Wavelet.PeakFrequency)
	}
	if !s.Wavelet.Ricker && s.Wavelet.FileName == "" {
		return fmt.Errorf("wavelet file name required when ricker is disabled")
	}
	if s.Seismic.WhiteNoise && s.Seismic.StdDev < 0 {
		return fmt.Errorf("noise standard deviation must be non-negative, got %f", s.Seismic.StdDev)
	}
	if s.Angle.DTheta < 0 || s.Offset.DOffset < 0 {
		return fmt.Errorf("angle and offset steps must be non-negative")
	}
	if s.Regrid.ZeroThicknessLimit < 0 {
		return fmt.Errorf("zero thickness limit must be non-negative, got %g", s.Regrid.ZeroThicknessLimit)
	}
	if s.Survey.Enabled && (s.Survey.ILStep < 1 || s.Survey.XLStep < 1) {
		return fmt.Errorf("survey steps must be at least 1, got il=%d xl=%d",
			s.Survey.ILStep, s.Survey.XLStep)
	}
	if s.Runtime.MaxThreads < 1 {
		return fmt.Errorf("maxThreads must be at least 1, got %d", s.Runtime.MaxThreads)
	}
	if len(s.Elastic.ExtraParameterNames) != len(s.Elastic.ExtraParameterDefaults) {
		return fmt.Errorf("extra parameter names and defaults differ in length: %d vs %d",
			len(s.Elastic.ExtraParameterNames), len(s.Elastic.ExtraParameterDefaults))
	}
	return nil
}
