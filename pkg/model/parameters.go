package model

import (
	"fmt"
	"math"
	"runtime"

	"seisforward/pkg/config"
	"seisforward/pkg/eclipse"
	"seisforward/pkg/grid"
	"seisforward/pkg/wavelet"
)

// Options carries the optional collaborators of a session: a top-time
// surface, a timeshift cube, an output geometry seeded from a survey,
// and a pre-built wavelet overriding the settings.
type Options struct {
	TopTime      *grid.RegularSurface
	TwtShift     *grid.Grid3D
	SegyGeometry *SegyGeometry
	Wavelet      wavelet.Wavelet
}

// SeismicParameters owns every grid and derived quantity of a run. The
// regridder fills the property grids, trace synthesis reads them, and
// the release methods free them phase by phase.
type SeismicParameters struct {
	settings *config.ModelSettings
	geom     *SeismicGeometry
	segyGeom *SegyGeometry

	wav          wavelet.Wavelet
	waveletScale float64

	ecl          *eclipse.Grid
	topK, botK   int

	topTime, botTime       *grid.RegularSurface
	topEclipse, botEclipse *grid.RegularSurface

	zGrid, vpGrid, vsGrid, rhoGrid *grid.Grid3D
	twtGrid, twtPPGrid, twtSSGrid  *grid.Grid3D
	vrmsGrid                       *grid.Grid3D
	rGrids                         []*grid.Grid3D
	extraGrids                     []*grid.Grid3D
	twtShift                       *grid.Grid3D

	thetaVec  []float64
	offsetVec []float64
}

// NewSeismicParameters builds a session: spans, wavelet, output
// geometry, derived surfaces and zero-initialised grids. The eclipse
// grid must carry the three elastic parameter fields named in the
// settings.
func NewSeismicParameters(settings *config.ModelSettings, ecl *eclipse.Grid, opts Options) (*SeismicParameters, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	p := &SeismicParameters{
		settings: settings,
		ecl:      ecl,
		segyGeom: opts.SegyGeometry,
		twtShift: opts.TwtShift,
	}

	for _, name := range settings.Elastic.ParameterNames {
		if !ecl.HasParameter(name) {
			return nil, fmt.Errorf("parameter %s is not found in Eclipse grid", name)
		}
	}
	for _, name := range settings.Elastic.ExtraParameterNames {
		if !ecl.HasParameter(name) {
			return nil, fmt.Errorf("parameter %s is not found in Eclipse grid", name)
		}
	}

	if settings.Seismic.NMOCorr {
		p.calculateOffsetSpan()
	} else {
		p.calculateAngleSpan()
	}

	if err := p.setupWavelet(opts.Wavelet); err != nil {
		return nil, err
	}
	if err := p.findGeometry(); err != nil {
		return nil, err
	}
	p.findSurfaceGeometry(opts.TopTime)
	p.createGrids()

	if p.twtShift != nil {
		nzrefl := p.geom.ZReflectorCount()
		if p.twtShift.NX() != p.geom.NX() || p.twtShift.NY() != p.geom.NY() || p.twtShift.NK() != nzrefl {
			return nil, fmt.Errorf("timeshift cube dimension mismatch: got (%d, %d, %d), want (%d, %d, %d)",
				p.twtShift.NX(), p.twtShift.NY(), p.twtShift.NK(),
				p.geom.NX(), p.geom.NY(), nzrefl)
		}
	}

	return p, nil
}

func (p *SeismicParameters) calculateAngleSpan() {
	a := p.settings.Angle
	n := 1
	if a.DTheta != 0 {
		n = int((a.ThetaMax-a.Theta0)/a.DTheta + 1.01)
	}
	p.thetaVec = make([]float64, n)
	for i := 0; i < n; i++ {
		p.thetaVec[i] = a.Theta0 + float64(i)*a.DTheta
	}
}

func (p *SeismicParameters) calculateOffsetSpan() {
	o := p.settings.Offset
	n := 1
	if o.DOffset != 0 {
		n = int((o.OffsetMax-o.Offset0)/o.DOffset) + 1
	}
	p.offsetVec = make([]float64, n)
	for i := 0; i < n; i++ {
		p.offsetVec[i] = o.Offset0 + float64(i)*o.DOffset
	}
}

func (p *SeismicParameters) setupWavelet(w wavelet.Wavelet) error {
	p.waveletScale = p.settings.Wavelet.Scale
	if w != nil {
		p.wav = w
		return nil
	}
	if !p.settings.Wavelet.Ricker {
		return fmt.Errorf("tabulated wavelet must be supplied via Options when ricker is disabled")
	}
	r, err := wavelet.NewRicker(p.settings.Wavelet.PeakFrequency)
	if err != nil {
		return err
	}
	p.wav = r
	return nil
}

func (p *SeismicParameters) findGeometry() error {
	s := p.settings.Sampling
	p.geom = NewSeismicGeometry(s.Dx, s.Dy, s.Dz, s.Dt)

	switch {
	case p.segyGeom != nil:
		// Area seeded from an existing survey geometry.
		g := p.segyGeom
		p.geom.SetArea(g.x0, g.y0, float64(g.nx)*g.dx, float64(g.ny)*g.dy, g.angle)
	case p.settings.Area.Given:
		a := p.settings.Area
		p.geom.SetArea(a.X0, a.Y0, a.LX, a.LY, a.Angle)
	default:
		x0, y0, lx, ly, angle := p.ecl.Geometry().FindEnclosingVolume()
		p.geom.SetArea(x0, y0, lx, ly, angle)
	}
	if p.geom.NX() < 1 || p.geom.NY() < 1 {
		return fmt.Errorf("empty output area: lx=%f ly=%f", p.geom.LX(), p.geom.LY())
	}
	return nil
}

// findSurfaceGeometry derives the four surfaces and the depth range.
// The surface rasters extend one cell beyond the survey rectangle on
// every side so bilinear lookups near the border stay covered.
func (p *SeismicParameters) findSurfaceGeometry(topTimeIn *grid.RegularSurface) {
	geom := p.ecl.Geometry()
	g := p.geom
	dx, dy := g.DX(), g.DY()
	nx, ny := g.NX()+2, g.NY()+2
	angle := g.Angle()
	// One margin cell on every side, stepped along the rotated axes.
	cosA, sinA := math.Cos(angle), math.Sin(angle)
	x0 := g.X0() - dx*cosA + dy*sinA
	y0 := g.Y0() - dx*sinA - dy*cosA
	lx := g.LX() + 2*dx
	ly := g.LY() + 2*dy

	p.topK = geom.FindTopLayer()
	p.botK = geom.FindBottomLayer()
	g.SetZReflectorCount(p.botK + 2 - p.topK)

	// Depth surfaces from the eclipse layer faces.
	p.topEclipse = grid.NewRegularSurface(x0, y0, lx, ly, nx, ny, angle, grid.Missing)
	p.botEclipse = grid.NewRegularSurface(x0, y0, lx, ly, nx, ny, angle, grid.Missing)
	values := grid.NewGrid2D(nx, ny, 0)
	if p.settings.Regrid.UseCornerpointInterpol {
		geom.FindLayerSurfaceCornerpoint(values, p.topK, 0, dx, dy, x0, y0, angle)
	} else {
		geom.FindLayerSurface(values, p.topK, 0, dx, dy, x0, y0, angle)
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			p.topEclipse.Set(i, j, values.Get(i, j))
		}
	}
	if p.settings.Regrid.UseCornerpointInterpol {
		geom.FindLayerSurfaceCornerpoint(values, p.botK, 1, dx, dy, x0, y0, angle)
	} else {
		geom.FindLayerSurface(values, p.botK, 1, dx, dy, x0, y0, angle)
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			p.botEclipse.Set(i, j, values.Get(i, j))
		}
	}

	// Time surfaces: from the supplied raster, or synthesised from a
	// constant top time over the eclipse relief.
	if topTimeIn != nil {
		topMin := topTimeIn.Min()
		p.topTime = grid.NewRegularSurface(x0, y0, lx, ly, nx, ny, angle, topMin)
		p.topTime.SetMissingValue(topTimeIn.MissingValue())
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				x, y := p.topTime.GetXY(i, j)
				p.topTime.Set(i, j, topTimeIn.GetZ(x, y))
			}
		}
		p.botTime = grid.NewRegularSurface(x0, y0, lx, ly, nx, ny, angle, p.topTime.Max())
	} else {
		t1 := p.settings.Input.TopTimeConstant
		p.topTime = grid.NewRegularSurface(x0, y0, lx, ly, nx, ny, angle, t1)
		p.botTime = grid.NewRegularSurface(x0, y0, lx, ly, nx, ny, angle, t1)
		d1 := p.topEclipse.Min()
		vp0 := p.settings.Elastic.ConstVp[0]
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				t := t1 + 2000.0*(p.topEclipse.Get(i, j)-d1)/vp0
				p.topTime.Set(i, j, t)
				p.botTime.Set(i, j, t)
			}
		}
	}

	// Pad the depth surfaces by one wavelet length converted to depth.
	twtWavelet := p.wav.GetDepthAdjustmentFactor()
	p.topEclipse.Add(-p.settings.Elastic.ConstVp[0] * twtWavelet / 2000.0)
	p.botEclipse.Add(p.settings.Elastic.ConstVp[2] * twtWavelet / 2000.0)

	g.SetZRange(p.topEclipse.Min(), p.botEclipse.Max())
}

func (p *SeismicParameters) createGrids() {
	s := p.settings
	nx := p.geom.NX()
	ny := p.geom.NY()
	nzrefl := p.geom.ZReflectorCount()
	vol := p.geom.CreateDepthVolume()

	p.zGrid = grid.NewGrid3D(vol, nx, ny, nzrefl, 0)
	p.twtGrid = grid.NewGrid3D(vol, nx, ny, nzrefl, 0)
	p.vpGrid = grid.NewGrid3D(vol, nx, ny, nzrefl+1, s.Elastic.ConstVp[1])
	p.vsGrid = grid.NewGrid3D(vol, nx, ny, nzrefl+1, s.Elastic.ConstVs[1])
	p.rhoGrid = grid.NewGrid3D(vol, nx, ny, nzrefl+1, s.Elastic.ConstRho[1])
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			p.vpGrid.Set(i, j, nzrefl, s.Elastic.ConstVp[2])
			p.vsGrid.Set(i, j, nzrefl, s.Elastic.ConstVs[2])
			p.rhoGrid.Set(i, j, nzrefl, s.Elastic.ConstRho[2])
		}
	}

	if s.Seismic.NMOCorr && s.Seismic.PSSeismic {
		p.twtPPGrid = grid.NewGrid3D(vol, nx, ny, nzrefl, 0)
		p.twtSSGrid = grid.NewGrid3D(vol, nx, ny, nzrefl, 0)
	}
	if s.Seismic.NMOCorr && s.Output.Vrms {
		p.vrmsGrid = grid.NewGrid3D(vol, nx, ny, nzrefl, 0)
	}
	if s.Output.Reflections {
		n := 1
		if s.Seismic.WhiteNoise {
			n = 2
		}
		p.rGrids = make([]*grid.Grid3D, n)
		for i := range p.rGrids {
			p.rGrids[i] = grid.NewGrid3D(vol, nx, ny, nzrefl, 0)
		}
	}

	p.extraGrids = make([]*grid.Grid3D, len(s.Elastic.ExtraParameterNames))
	for i := range p.extraGrids {
		p.extraGrids[i] = grid.NewGrid3D(vol, nx, ny, nzrefl+1, s.Elastic.ExtraParameterDefaults[i])
		for ii := 0; ii < nx; ii++ {
			for jj := 0; jj < ny; jj++ {
				p.extraGrids[i].Set(ii, jj, nzrefl, 0)
			}
		}
	}
}

// Settings returns the run configuration.
func (p *SeismicParameters) Settings() *config.ModelSettings { return p.settings }

// SeismicGeometry returns the output geometry.
func (p *SeismicParameters) SeismicGeometry() *SeismicGeometry { return p.geom }

// SegyGeometry returns the optional survey labelling, or nil.
func (p *SeismicParameters) SegyGeometry() *SegyGeometry { return p.segyGeom }

// Wavelet returns the source pulse.
func (p *SeismicParameters) Wavelet() wavelet.Wavelet { return p.wav }

// WaveletScale returns the amplitude scale applied during convolution.
func (p *SeismicParameters) WaveletScale() float64 { return p.waveletScale }

// TwtWavelet returns the pulse half-window in TWT milliseconds.
func (p *SeismicParameters) TwtWavelet() float64 { return p.wav.GetDepthAdjustmentFactor() }

// EclipseGrid returns the source corner-point grid; nil after release.
func (p *SeismicParameters) EclipseGrid() *eclipse.Grid { return p.ecl }

// TopK returns the first eclipse layer carrying active cells.
func (p *SeismicParameters) TopK() int { return p.topK }

// BottomK returns the last eclipse layer carrying active cells.
func (p *SeismicParameters) BottomK() int { return p.botK }

// TopTime returns the top-time surface.
func (p *SeismicParameters) TopTime() *grid.RegularSurface { return p.topTime }

// BottomTime returns the bottom-time surface.
func (p *SeismicParameters) BottomTime() *grid.RegularSurface { return p.botTime }

// TopEclipse returns the wavelet-padded top depth surface.
func (p *SeismicParameters) TopEclipse() *grid.RegularSurface { return p.topEclipse }

// BottomEclipse returns the wavelet-padded bottom depth surface.
func (p *SeismicParameters) BottomEclipse() *grid.RegularSurface { return p.botEclipse }

// ZGrid returns the reflector depth grid.
func (p *SeismicParameters) ZGrid() *grid.Grid3D { return p.zGrid }

// VpGrid returns the P-velocity grid.
func (p *SeismicParameters) VpGrid() *grid.Grid3D { return p.vpGrid }

// VsGrid returns the S-velocity grid.
func (p *SeismicParameters) VsGrid() *grid.Grid3D { return p.vsGrid }

// RhoGrid returns the density grid.
func (p *SeismicParameters) RhoGrid() *grid.Grid3D { return p.rhoGrid }

// TwtGrid returns the two-way-time grid.
func (p *SeismicParameters) TwtGrid() *grid.Grid3D { return p.twtGrid }

// TwtPPGrid returns the PP-leg time grid (PS + NMO only).
func (p *SeismicParameters) TwtPPGrid() *grid.Grid3D { return p.twtPPGrid }

// TwtSSGrid returns the SS-leg time grid (PS + NMO only).
func (p *SeismicParameters) TwtSSGrid() *grid.Grid3D { return p.twtSSGrid }

// VrmsGrid returns the stacking-velocity grid, or nil.
func (p *SeismicParameters) VrmsGrid() *grid.Grid3D { return p.vrmsGrid }

// RGrids returns the zero-offset reflection snapshots: index 0 plain,
// index 1 noisy (when white noise is on). Nil when not requested.
func (p *SeismicParameters) RGrids() []*grid.Grid3D { return p.rGrids }

// ExtraGrids returns the resampled extra parameter grids.
func (p *SeismicParameters) ExtraGrids() []*grid.Grid3D { return p.extraGrids }

// TwtShiftGrid returns the timeshift cube, or nil.
func (p *SeismicParameters) TwtShiftGrid() *grid.Grid3D { return p.twtShift }

// ThetaVec returns the angle vector (radians) for angle gathers.
func (p *SeismicParameters) ThetaVec() []float64 { return p.thetaVec }

// OffsetVec returns the offset vector (m) for offset gathers.
func (p *SeismicParameters) OffsetVec() []float64 { return p.offsetVec }

// MaxOffset returns the largest modelled offset.
func (p *SeismicParameters) MaxOffset() float64 {
	if len(p.offsetVec) == 0 {
		return 0
	}
	return p.offsetVec[len(p.offsetVec)-1]
}

// DeleteEclipseGrid drops the source grid once regridding is done.
func (p *SeismicParameters) DeleteEclipseGrid() { p.ecl = nil }

// DeleteElasticParameterGrids drops vp, vs, rho and the extras.
func (p *SeismicParameters) DeleteElasticParameterGrids() {
	p.vpGrid, p.vsGrid, p.rhoGrid = nil, nil, nil
	p.extraGrids = nil
}

// DeleteZandRandTWTGrids drops depth, reflection and travel-time grids.
func (p *SeismicParameters) DeleteZandRandTWTGrids() {
	p.zGrid, p.twtGrid, p.twtPPGrid, p.twtSSGrid = nil, nil, nil, nil
	p.rGrids = nil
	p.twtShift = nil
}

// DeleteVrmsGrid drops the stacking-velocity grid.
func (p *SeismicParameters) DeleteVrmsGrid() { p.vrmsGrid = nil }

// DeleteWavelet drops the source pulse.
func (p *SeismicParameters) DeleteWavelet() { p.wav = nil }

// AttachSurvey labels the output grid with inline/crossline numbers so
// traces carry survey headers. Call after construction, before trace
// generation; a survey geometry supplied via Options takes precedence.
func (p *SeismicParameters) AttachSurvey(il0, xl0, ilStep, xlStep int) {
	if p.segyGeom != nil {
		return
	}
	g := p.geom
	p.segyGeom = NewSegyGeometry(g.X0(), g.Y0(), g.DX(), g.DY(), g.Angle(),
		g.NX(), g.NY(), il0, xl0, ilStep, xlStep)
}

// Threads resolves the worker count: the configured maximum capped by
// the machine.
func (p *SeismicParameters) Threads() int {
	n := p.settings.Runtime.MaxThreads
	if avail := runtime.NumCPU(); avail < n {
		n = avail
	}
	if n < 1 {
		n = 1
	}
	return n
}

// TimeOutput reports whether any time-domain product is requested.
func (p *SeismicParameters) TimeOutput() bool {
	o := p.settings.Output
	return o.TimeSegy || o.TimeStackSegy || o.PrenmoTimeSegy || o.TimeStorm
}

// DepthOutput reports whether any depth-domain product is requested.
func (p *SeismicParameters) DepthOutput() bool {
	o := p.settings.Output
	return o.DepthSegy || o.DepthStackSegy || o.DepthStorm
}

// TimeshiftOutput reports whether any shifted-time product is
// requested. A missing timeshift cube disables them.
func (p *SeismicParameters) TimeshiftOutput() bool {
	if p.twtShift == nil {
		return false
	}
	o := p.settings.Output
	return o.TimeshiftSegy || o.TimeshiftStackSegy || o.TimeshiftStorm
}

// StackOutput reports whether any stacked product is requested.
func (p *SeismicParameters) StackOutput() bool {
	o := p.settings.Output
	return o.TimeStackSegy || o.DepthStackSegy || o.TimeshiftStackSegy ||
		o.TimeStorm || o.DepthStorm || o.TimeshiftStorm
}

// StormOutput reports whether any storm cube is requested.
func (p *SeismicParameters) StormOutput() bool {
	o := p.settings.Output
	return o.TimeStorm || o.DepthStorm || o.TimeshiftStorm
}
