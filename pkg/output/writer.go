package output

import (
	"fmt"
	"path/filepath"

	"seisforward/pkg/forward"
	"seisforward/pkg/grid"
	"seisforward/pkg/model"
)

// SeisWriter routes finished traces to the enabled sinks: one SEG-Y
// file per output gate and in-memory storm cubes flushed on Close. It
// is driven by the scheduler's single writer goroutine, so no locking
// is needed.
type SeisWriter struct {
	p    *model.SeismicParameters
	axes forward.Axes
	dir  string

	timeSegy       *SegyFile
	timeStackSegy  *SegyFile
	prenmoSegy     *SegyFile
	depthSegy      *SegyFile
	depthStackSegy *SegyFile
	shiftSegy      *SegyFile
	shiftStackSegy *SegyFile

	timeStorm  *StormCube
	depthStorm *StormCube
	shiftStorm *StormCube
}

// NewSeisWriter opens the SEG-Y files and allocates the storm cubes for
// every enabled output gate.
func NewSeisWriter(p *model.SeismicParameters, axes forward.Axes, dir string) (*SeisWriter, error) {
	w := &SeisWriter{p: p, axes: axes, dir: dir}
	o := p.Settings().Output
	dt := p.SeismicGeometry().DT()
	nmo := p.Settings().Seismic.NMOCorr

	outSamples := len(axes.Twt0)
	if nmo {
		outSamples = axes.TimeSamplesStretch
	}

	var err error
	open := func(gate, kind string, n int) (*SegyFile, error) {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.segy", o.Prefix, kind))
		f, ferr := CreateSegyFile(path, n, dt)
		if ferr != nil {
			return nil, fmt.Errorf("%s output: %w", gate, ferr)
		}
		return f, nil
	}

	if o.TimeSegy {
		if w.timeSegy, err = open("time", "time", outSamples); err != nil {
			return nil, err
		}
	}
	if o.TimeStackSegy {
		if w.timeStackSegy, err = open("time stack", "time_stack", outSamples); err != nil {
			return nil, err
		}
	}
	if o.PrenmoTimeSegy && nmo {
		if w.prenmoSegy, err = open("prenmo", "prenmo_time", len(axes.Twt0)); err != nil {
			return nil, err
		}
	}
	if o.DepthSegy {
		if w.depthSegy, err = open("depth", "depth", len(axes.Z0)); err != nil {
			return nil, err
		}
	}
	if o.DepthStackSegy {
		if w.depthStackSegy, err = open("depth stack", "depth_stack", len(axes.Z0)); err != nil {
			return nil, err
		}
	}
	if o.TimeshiftSegy && len(axes.Twts0) > 0 {
		if w.shiftSegy, err = open("timeshift", "timeshift", len(axes.Twts0)); err != nil {
			return nil, err
		}
	}
	if o.TimeshiftStackSegy && len(axes.Twts0) > 0 {
		if w.shiftStackSegy, err = open("timeshift stack", "timeshift_stack", len(axes.Twts0)); err != nil {
			return nil, err
		}
	}

	geom := p.SeismicGeometry()
	baseVol := geom.CreateDepthVolume()
	if o.TimeStorm {
		vol := baseVol
		vol.ZMin = axes.Twt0[0]
		vol.ZMax = axes.Twt0[len(axes.Twt0)-1]
		w.timeStorm = NewStormCube(vol, geom.NX(), geom.NY(), outSamples)
	}
	if o.DepthStorm {
		vol := baseVol
		vol.ZMin = axes.Z0[0]
		vol.ZMax = axes.Z0[len(axes.Z0)-1]
		w.depthStorm = NewStormCube(vol, geom.NX(), geom.NY(), len(axes.Z0))
	}
	if o.TimeshiftStorm && len(axes.Twts0) > 0 {
		vol := baseVol
		vol.ZMin = axes.Twts0[0]
		vol.ZMax = axes.Twts0[len(axes.Twts0)-1]
		w.shiftStorm = NewStormCube(vol, geom.NX(), geom.NY(), len(axes.Twts0))
	}

	return w, nil
}

// WriteTrace streams one result to every enabled sink. Gather files get
// one trace per offset (or angle); stack files one trace per position.
func (w *SeisWriter) WriteTrace(res *forward.TraceResult) error {
	gatherValues := w.p.OffsetVec()
	if !w.p.Settings().Seismic.NMOCorr {
		gatherValues = w.p.ThetaVec()
	}

	writeGather := func(f *SegyFile, g *grid.Grid2D) error {
		if f == nil || g == nil {
			return nil
		}
		col := make([]float64, g.NI())
		for off := 0; off < g.NJ(); off++ {
			for k := range col {
				col[k] = g.Get(k, off)
			}
			if err := f.WriteTrace(res.X, res.Y, res.IL, res.XL, gatherValues[off], col); err != nil {
				return err
			}
		}
		return nil
	}
	writeStack := func(f *SegyFile, g *grid.Grid2D) error {
		if f == nil || g == nil {
			return nil
		}
		col := make([]float64, g.NI())
		for k := range col {
			col[k] = g.Get(k, 0)
		}
		return f.WriteTrace(res.X, res.Y, res.IL, res.XL, 0, col)
	}

	if err := writeGather(w.timeSegy, res.TimeGrid); err != nil {
		return err
	}
	if err := writeGather(w.prenmoSegy, res.PreNMOTimeGrid); err != nil {
		return err
	}
	if err := writeGather(w.depthSegy, res.DepthGrid); err != nil {
		return err
	}
	if err := writeGather(w.shiftSegy, res.TimeshiftGrid); err != nil {
		return err
	}
	if err := writeStack(w.timeStackSegy, res.TimeStack); err != nil {
		return err
	}
	if err := writeStack(w.depthStackSegy, res.DepthStack); err != nil {
		return err
	}
	if err := writeStack(w.shiftStackSegy, res.TimeshiftStack); err != nil {
		return err
	}

	storeStack := func(c *StormCube, g *grid.Grid2D) {
		if c == nil || g == nil {
			return
		}
		if res.I < 0 || res.I >= c.NX() || res.J < 0 || res.J >= c.NY() {
			return
		}
		col := make([]float64, g.NI())
		for k := range col {
			col[k] = g.Get(k, 0)
		}
		c.SetColumn(res.I, res.J, col)
	}
	storeStack(w.timeStorm, res.TimeStack)
	storeStack(w.depthStorm, res.DepthStack)
	storeStack(w.shiftStorm, res.TimeshiftStack)

	return nil
}

// Close flushes the storm cubes and closes every SEG-Y file.
func (w *SeisWriter) Close() error {
	prefix := w.p.Settings().Output.Prefix
	if w.timeStorm != nil {
		if err := w.timeStorm.WriteFile(filepath.Join(w.dir, prefix+"_time.storm")); err != nil {
			return err
		}
	}
	if w.depthStorm != nil {
		if err := w.depthStorm.WriteFile(filepath.Join(w.dir, prefix+"_depth.storm")); err != nil {
			return err
		}
	}
	if w.shiftStorm != nil {
		if err := w.shiftStorm.WriteFile(filepath.Join(w.dir, prefix+"_timeshift.storm")); err != nil {
			return err
		}
	}
	for _, f := range []*SegyFile{
		w.timeSegy, w.timeStackSegy, w.prenmoSegy,
		w.depthSegy, w.depthStackSegy, w.shiftSegy, w.shiftStackSegy,
	} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// WriteVrms flushes the session's Vrms grid as a storm cube with the
// given name suffix ("" for PP, or a leg label for PS).
func WriteVrms(p *model.SeismicParameters, dir, suffix string) error {
	name := p.Settings().Output.Prefix + "_vrms"
	if suffix != "" {
		name += "_" + suffix
	}
	return WriteGrid3D(filepath.Join(dir, name+".storm"), p.VrmsGrid())
}

// WriteVpVsRho flushes the regridded elastic grids as storm cubes.
func WriteVpVsRho(p *model.SeismicParameters, dir string) error {
	prefix := p.Settings().Output.Prefix
	if err := WriteGrid3D(filepath.Join(dir, prefix+"_vp.storm"), p.VpGrid()); err != nil {
		return err
	}
	if err := WriteGrid3D(filepath.Join(dir, prefix+"_vs.storm"), p.VsGrid()); err != nil {
		return err
	}
	return WriteGrid3D(filepath.Join(dir, prefix+"_rho.storm"), p.RhoGrid())
}

// WriteZValues flushes the reflector depth grid as a storm cube.
func WriteZValues(p *model.SeismicParameters, dir string) error {
	return WriteGrid3D(filepath.Join(dir, p.Settings().Output.Prefix+"_z.storm"), p.ZGrid())
}

// WriteTwt flushes the travel-time grid as a storm cube.
func WriteTwt(p *model.SeismicParameters, dir string) error {
	return WriteGrid3D(filepath.Join(dir, p.Settings().Output.Prefix+"_twt.storm"), p.TwtGrid())
}

// WriteReflections flushes the zero-offset reflection snapshots; the
// noisy variant gets a suffix.
func WriteReflections(p *model.SeismicParameters, dir string) error {
	prefix := p.Settings().Output.Prefix
	names := []string{"_refl.storm", "_refl_noise.storm"}
	for i, g := range p.RGrids() {
		if i >= len(names) {
			break
		}
		if err := WriteGrid3D(filepath.Join(dir, prefix+names[i]), g); err != nil {
			return err
		}
	}
	return nil
}

// WriteTimeSurfaces stores the top and bottom time surfaces.
func WriteTimeSurfaces(p *model.SeismicParameters, dir string) error {
	prefix := p.Settings().Output.Prefix
	if err := WriteSurface(filepath.Join(dir, prefix+"_toptime.txt"), p.TopTime()); err != nil {
		return err
	}
	return WriteSurface(filepath.Join(dir, prefix+"_bottime.txt"), p.BottomTime())
}

// WriteDepthSurfaces stores the wavelet-padded top and bottom depth
// surfaces.
func WriteDepthSurfaces(p *model.SeismicParameters, dir string) error {
	prefix := p.Settings().Output.Prefix
	if err := WriteSurface(filepath.Join(dir, prefix+"_topdepth.txt"), p.TopEclipse()); err != nil {
		return err
	}
	return WriteSurface(filepath.Join(dir, prefix+"_botdepth.txt"), p.BottomEclipse())
}
