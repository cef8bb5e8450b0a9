package forward

import (
	"fmt"

	"seisforward/pkg/grid"
	"seisforward/pkg/model"
)

// Axes bundles the trace axes of a run: the time axis, the depth axis,
// the optional shifted time axis, and the usable sample count of the
// NMO-corrected output.
type Axes struct {
	Twt0  []float64
	Z0    []float64
	Twts0 []float64

	TimeSamplesStretch int
}

// ComputeAxes derives the trace axes from the regridded session.
func ComputeAxes(p *model.SeismicParameters) (Axes, error) {
	twt0, z0, twts0, tss, err := p.GenerateTwt0AndZ0()
	if err != nil {
		return Axes{}, err
	}
	return Axes{Twt0: twt0, Z0: z0, Twts0: twts0, TimeSamplesStretch: tss}, nil
}

// GenerateSeismic runs the trace batch: every (il, xl) position is
// synthesised on the producer pool and handed to the writer in strict
// order. Intermediate grids are not released here; ReleaseAfterSynthesis
// frees them.
func GenerateSeismic(p *model.SeismicParameters, axes Axes, writer ResultWriter) error {
	if !p.TimeOutput() && !p.DepthOutput() && !p.TimeshiftOutput() {
		return nil
	}

	s := p.Settings()
	if s.Seismic.NMOCorr {
		fmt.Printf("Generating synthetic NMO %s-seismic for offsets: %v\n", modeName(s.Seismic.PSSeismic), p.OffsetVec())
	} else {
		fmt.Printf("Generating synthetic %s-seismic for angles: %v\n", modeName(s.Seismic.PSSeismic), p.ThetaVec())
	}

	assignments := buildAssignments(p)
	progress := newMonitor(len(assignments))

	produce := func(asg assignment) *TraceResult {
		return produceTrace(p, axes, asg)
	}
	return runScheduler(assignments, p.Threads(), produce, writer, progress)
}

// ReleaseAfterSynthesis frees the grids the batch no longer needs. Call
// after every product derived from them (reflection snapshots, storm
// cubes) has been flushed.
func ReleaseAfterSynthesis(p *model.SeismicParameters) {
	p.DeleteZandRandTWTGrids()
	p.DeleteElasticParameterGrids()
	p.DeleteWavelet()
}

func modeName(ps bool) string {
	if ps {
		return "PS"
	}
	return "PP"
}

// buildAssignments returns the iteration set in writer order: the
// labelled (il, xl) lattice when a survey geometry is present, plain
// grid indices otherwise.
func buildAssignments(p *model.SeismicParameters) []assignment {
	geom := p.SeismicGeometry()
	sg := p.SegyGeometry()

	var assignments []assignment
	seq := 0
	if sg != nil {
		for il := sg.MinIL(); il <= sg.MaxIL(); il += sg.ILStep() {
			for xl := sg.MinXL(); xl <= sg.MaxXL(); xl += sg.XLStep() {
				i, j := sg.FindIndexFromILXL(il, xl)
				x, y := sg.FindXYFromILXL(il, xl)
				assignments = append(assignments, assignment{
					seq: seq, il: il, xl: xl, i: i, j: j, x: x, y: y,
				})
				seq++
			}
		}
		return assignments
	}
	for i := 0; i < geom.NX(); i++ {
		for j := 0; j < geom.NY(); j++ {
			x, y, _ := p.TwtGrid().FindCenterOfCell(i, j, 0)
			assignments = append(assignments, assignment{
				seq: seq, il: i, xl: j, i: i, j: j, x: x, y: y,
			})
			seq++
		}
	}
	return assignments
}

// produceTrace synthesises one column: gather, stack, depth conversion
// and timeshift resampling, all into a freshly owned TraceResult.
func produceTrace(p *model.SeismicParameters, axes Axes, asg assignment) *TraceResult {
	s := p.Settings()
	nmo := s.Seismic.NMOCorr
	nGather := len(p.ThetaVec())
	if nmo {
		nGather = len(p.OffsetVec())
	}
	nt := len(axes.Twt0)
	nzrefl := p.SeismicGeometry().ZReflectorCount()

	res := &TraceResult{
		I: asg.i, J: asg.j,
		IL: asg.il, XL: asg.xl,
		X: asg.x, Y: asg.y,
	}

	outSamples := nt
	if nmo {
		outSamples = axes.TimeSamplesStretch
	}
	res.TimeGrid = grid.NewGrid2D(outSamples, nGather, 0)
	if nmo {
		res.PreNMOTimeGrid = grid.NewGrid2D(nt, nGather, 0)
		res.TWTxReg = grid.NewGrid2D(nt, nGather, 0)
	}
	if p.StackOutput() {
		res.TimeStack = grid.NewGrid2D(outSamples, 1, 0)
	}
	if p.DepthOutput() {
		res.DepthGrid = grid.NewGrid2D(len(axes.Z0), nGather, 0)
		res.DepthStack = grid.NewGrid2D(len(axes.Z0), 1, 0)
	}
	if p.TimeshiftOutput() {
		res.TimeshiftGrid = grid.NewGrid2D(len(axes.Twts0), nGather, 0)
		res.TimeshiftStack = grid.NewGrid2D(len(axes.Twts0), 1, 0)
	}

	if !GenerateTraceOk(p, asg.i, asg.j) {
		res.Zero = true
		return res
	}

	twtVec := make([]float64, nzrefl)
	for k := 0; k < nzrefl; k++ {
		twtVec[k] = p.TwtGrid().Get(asg.i, asg.j, k)
	}

	if nmo {
		maxSample, err := GenerateNMOSeismicTrace(p, twtVec, axes.Twt0, p.OffsetVec(),
			res.PreNMOTimeGrid, res.TimeGrid, res.TWTxReg, asg.i, asg.j)
		if err != nil {
			res.Err = err
			return res
		}
		res.MaxSample = maxSample
	} else {
		GenerateSeismicTrace(p, twtVec, axes.Twt0, p.ThetaVec(), res.TimeGrid, asg.i, asg.j)
		res.MaxSample = outSamples
	}

	if res.TimeStack != nil {
		stackGather(res.TimeGrid, res.TimeStack)
	}

	if res.DepthGrid != nil {
		zBot := p.BottomEclipse().GetZ(asg.x, asg.y)
		zExt, twtExt := extrapolZandTwtVec(p, twtVec, zBot, asg.i, asg.j)
		if err := convertSeis(twtExt, axes.Twt0, zExt, axes.Z0, res.TimeGrid, res.DepthGrid, res.MaxSample); err != nil {
			res.Err = err
			return res
		}
		if res.TimeStack != nil {
			if err := convertSeis(twtExt, axes.Twt0, zExt, axes.Z0, res.TimeStack, res.DepthStack, res.MaxSample); err != nil {
				res.Err = err
				return res
			}
		}
	}

	if res.TimeshiftGrid != nil {
		shift := p.TwtShiftGrid()
		twtExt := make([]float64, nzrefl+1)
		shiftExt := make([]float64, nzrefl+1)
		for k := 0; k < nzrefl; k++ {
			twtExt[k+1] = twtVec[k]
			shiftExt[k+1] = shift.Get(asg.i, asg.j, k)
		}
		if err := convertSeis(twtExt, axes.Twt0, shiftExt, axes.Twts0, res.TimeGrid, res.TimeshiftGrid, res.MaxSample); err != nil {
			res.Err = err
			return res
		}
		if res.TimeStack != nil {
			if err := convertSeis(twtExt, axes.Twt0, shiftExt, axes.Twts0, res.TimeStack, res.TimeshiftStack, res.MaxSample); err != nil {
				res.Err = err
				return res
			}
		}
	}

	return res
}
