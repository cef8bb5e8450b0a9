package forward_test

import (
	"fmt"
	"math"
	"testing"

	"seisforward/pkg/config"
	"seisforward/pkg/eclipse"
	"seisforward/pkg/forward"
	"seisforward/pkg/grid"
	"seisforward/pkg/model"
	"seisforward/pkg/regrid"
)

var (
	layerVp  = []float64{2000, 2500, 3000}
	layerVs  = []float64{800, 1000, 1200}
	layerRho = []float64{2.1, 2.3, 2.5}
	depths   = []float64{1000, 1100, 1225, 1375}
)

func baseSettings() *config.ModelSettings {
	s := config.DefaultSettings()
	s.Elastic.ConstVp = [3]float64{2600, 2700, 3500}
	s.Elastic.ConstVs = [3]float64{1100, 1200, 1800}
	s.Elastic.ConstRho = [3]float64{2.15, 2.25, 2.55}
	s.Sampling.Dx = 100
	s.Sampling.Dy = 100
	s.Sampling.Dz = 4
	s.Sampling.Dt = 4
	s.Input.TopTimeConstant = 1000
	s.Runtime.MaxThreads = 1
	return s
}

func buildGrid(ni, nj int) *eclipse.Grid {
	g := eclipse.BuildBoxGrid(0, 0, 100, 100, ni, nj, 3, func(i, j, k int) float64 {
		return depths[k]
	})
	for _, name := range []string{"VP", "VS", "RHO"} {
		g.AddParameter(name)
	}
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			for k := 0; k < 3; k++ {
				g.SetParameterValue("VP", i, j, k, layerVp[k])
				g.SetParameterValue("VS", i, j, k, layerVs[k])
				g.SetParameterValue("RHO", i, j, k, layerRho[k])
			}
		}
	}
	return g
}

// captureWriter records every trace and checks the ordering contract.
type captureWriter struct {
	results  []*forward.TraceResult
	lastIL   int
	lastXL   int
	haveLast bool
	orderErr error
}

func (w *captureWriter) WriteTrace(res *forward.TraceResult) error {
	if w.haveLast && (res.IL < w.lastIL || (res.IL == w.lastIL && res.XL < w.lastXL)) {
		w.orderErr = fmt.Errorf("trace (%d,%d) after (%d,%d)", res.IL, res.XL, w.lastIL, w.lastXL)
	}
	w.lastIL, w.lastXL = res.IL, res.XL
	w.haveLast = true
	w.results = append(w.results, res)
	return nil
}

func runPipeline(t *testing.T, mutate func(*config.ModelSettings), opts model.Options) (*model.SeismicParameters, forward.Axes, *captureWriter) {
	t.Helper()
	s := baseSettings()
	if mutate != nil {
		mutate(s)
	}
	p, err := model.NewSeismicParameters(s, buildGrid(4, 4), opts)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if err := regrid.MakeSeismicRegridding(p); err != nil {
		t.Fatalf("regridding: %v", err)
	}
	axes, err := forward.ComputeAxes(p)
	if err != nil {
		t.Fatalf("axes: %v", err)
	}
	w := &captureWriter{}
	if err := forward.GenerateSeismic(p, axes, w); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if w.orderErr != nil {
		t.Fatalf("ordering violated: %v", w.orderErr)
	}
	return p, axes, w
}

func TestWriterReceivesAllTracesInOrder(t *testing.T) {
	p, _, w := runPipeline(t, func(s *config.ModelSettings) {
		s.Runtime.MaxThreads = 4
	}, model.Options{})
	want := p.SeismicGeometry().NX() * p.SeismicGeometry().NY()
	if len(w.results) != want {
		t.Fatalf("expected %d traces, got %d", want, len(w.results))
	}
}

func TestSurveyLabelsCarryThrough(t *testing.T) {
	s := baseSettings()
	p, err := model.NewSeismicParameters(s, buildGrid(4, 4), model.Options{})
	if err != nil {
		t.Fatal(err)
	}
	p.AttachSurvey(1200, 300, 2, 1)
	if err := regrid.MakeSeismicRegridding(p); err != nil {
		t.Fatal(err)
	}
	axes, err := forward.ComputeAxes(p)
	if err != nil {
		t.Fatal(err)
	}
	w := &captureWriter{}
	if err := forward.GenerateSeismic(p, axes, w); err != nil {
		t.Fatal(err)
	}
	if w.orderErr != nil {
		t.Fatal(w.orderErr)
	}
	first := w.results[0]
	if first.IL != 1200 || first.XL != 300 {
		t.Errorf("first trace labelled (%d, %d), want (1200, 300)", first.IL, first.XL)
	}
	last := w.results[len(w.results)-1]
	if last.IL != 1200+3*2 || last.XL != 300+3 {
		t.Errorf("last trace labelled (%d, %d), want (%d, %d)", last.IL, last.XL, 1206, 303)
	}
}

func TestZeroOffsetReflectionMatchesContrast(t *testing.T) {
	// End to end: a zero-angle run must produce the weak-contrast
	// zero-offset coefficient (dRho/rho + dVp/vp)/2 at the middle
	// reflector.
	p, _, _ := runPipeline(t, func(s *config.ModelSettings) {
		s.Output.Reflections = true
	}, model.Options{})

	r := p.RGrids()[0]
	// Reflector row 2 is the interface between layers 1 and 2.
	got := r.Get(1, 1, 2)
	dvp := layerVp[2] - layerVp[1]
	mvp := 0.5 * (layerVp[2] + layerVp[1])
	drho := layerRho[2] - layerRho[1]
	mrho := 0.5 * (layerRho[2] + layerRho[1])
	want := 0.5 * (drho/mrho + dvp/mvp)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("zero-offset reflection %f, want %f", got, want)
	}
	forward.ReleaseAfterSynthesis(p)
	if p.RGrids() != nil {
		t.Error("release must drop reflection grids")
	}
}

func TestStackIsMeanOverGather(t *testing.T) {
	_, _, w := runPipeline(t, func(s *config.ModelSettings) {
		s.Angle.DTheta = 10 * math.Pi / 180
		s.Angle.ThetaMax = 20 * math.Pi / 180
		s.Output.TimeStackSegy = true
	}, model.Options{})

	for _, res := range w.results {
		g := res.TimeGrid
		st := res.TimeStack
		if st == nil {
			t.Fatal("stack output missing")
		}
		for k := 0; k < g.NI(); k++ {
			mean := 0.0
			for off := 0; off < g.NJ(); off++ {
				mean += g.Get(k, off)
			}
			mean /= float64(g.NJ())
			if math.Abs(st.Get(k, 0)-mean) > 1e-12 {
				t.Fatalf("stack[%d]=%g, want mean %g", k, st.Get(k, 0), mean)
			}
		}
	}
}

func TestNMOZeroOffsetMatchesPlainPipeline(t *testing.T) {
	// With a single zero offset, the NMO-corrected gather equals the
	// plain zero-angle pipeline sample for sample.
	pNMO, axesNMO, wNMO := runPipeline(t, func(s *config.ModelSettings) {
		s.Seismic.NMOCorr = true
	}, model.Options{})
	_, axesPlain, wPlain := runPipeline(t, nil, model.Options{})
	_ = pNMO

	// Align the two time axes.
	shift := -1
	for n, tv := range axesNMO.Twt0 {
		if math.Abs(tv-axesPlain.Twt0[0]) < 1e-6 {
			shift = n
			break
		}
	}
	if shift < 0 {
		t.Fatalf("axes do not overlap: nmo starts %f, plain starts %f", axesNMO.Twt0[0], axesPlain.Twt0[0])
	}

	for idx := range wPlain.results {
		plain := wPlain.results[idx].TimeGrid
		nmo := wNMO.results[idx].TimeGrid
		for k := 0; k < plain.NI(); k++ {
			if k+shift >= nmo.NI() {
				break
			}
			a := plain.Get(k, 0)
			b := nmo.Get(k+shift, 0)
			if math.Abs(a-b) > 1e-9*math.Max(1, math.Abs(a)) {
				t.Fatalf("trace %d sample %d: plain %g vs nmo %g", idx, k, a, b)
			}
		}
	}
}

func TestNoiseIsDeterministicAcrossThreadCounts(t *testing.T) {
	run := func(threads int) *captureWriter {
		_, _, w := runPipeline(t, func(s *config.ModelSettings) {
			s.Seismic.WhiteNoise = true
			s.Seismic.StdDev = 0.01
			s.Seismic.Seed = 42
			s.Runtime.MaxThreads = threads
		}, model.Options{})
		return w
	}
	w1 := run(1)
	w4 := run(4)
	if len(w1.results) != len(w4.results) {
		t.Fatalf("trace counts differ: %d vs %d", len(w1.results), len(w4.results))
	}
	for idx := range w1.results {
		a := w1.results[idx].TimeGrid.Data()
		b := w4.results[idx].TimeGrid.Data()
		for n := range a {
			if a[n] != b[n] {
				t.Fatalf("trace %d sample %d differs across thread counts: %g vs %g", idx, n, a[n], b[n])
			}
		}
	}
}

func TestMissingTopTimeYieldsZeroTrace(t *testing.T) {
	// A top-time surface with a hole over cell (0,0): that trace is
	// all zeros, its neighbours carry energy.
	top := grid.NewRegularSurface(-100, -100, 700, 700, 14, 14, 0, 1000)
	for i := 0; i < 14; i++ {
		for j := 0; j < 14; j++ {
			x, y := top.GetXY(i, j)
			if x > 0 && x < 100 && y > 0 && y < 100 {
				top.Set(i, j, grid.Missing)
			}
		}
	}

	_, _, w := runPipeline(t, nil, model.Options{TopTime: top})

	var zeroTrace, liveTrace *forward.TraceResult
	for _, res := range w.results {
		if res.I == 0 && res.J == 0 {
			zeroTrace = res
		}
		if res.I == 2 && res.J == 2 {
			liveTrace = res
		}
	}
	if zeroTrace == nil || liveTrace == nil {
		t.Fatal("expected traces at (0,0) and (2,2)")
	}
	for _, v := range zeroTrace.TimeGrid.Data() {
		if v != 0 {
			t.Fatalf("hole trace must be all zeros, found %g", v)
		}
	}
	energy := 0.0
	for _, v := range liveTrace.TimeGrid.Data() {
		energy += v * v
	}
	if energy == 0 {
		t.Error("live trace has no energy")
	}
}

func TestDepthConversionPlacesReflectorAtDepth(t *testing.T) {
	// The depth-converted stack must peak near the true reflector
	// depth.
	p, axes, w := runPipeline(t, func(s *config.ModelSettings) {
		s.Output.DepthSegy = true
		s.Output.TimeStackSegy = true
	}, model.Options{})
	_ = p

	res := w.results[5]
	if res.DepthGrid == nil {
		t.Fatal("depth output missing")
	}
	// Find the strongest sample and check it lies within a wavelet
	// length of one of the interior reflectors.
	best, bestK := 0.0, -1
	for k := 0; k < res.DepthGrid.NI(); k++ {
		if v := math.Abs(res.DepthGrid.Get(k, 0)); v > best {
			best, bestK = v, k
		}
	}
	if bestK < 0 || best == 0 {
		t.Fatal("depth trace has no energy")
	}
	zPeak := axes.Z0[bestK]
	closest := math.Inf(1)
	for _, z := range depths[1:] {
		if d := math.Abs(zPeak - z); d < closest {
			closest = d
		}
	}
	if closest > 100 {
		t.Errorf("depth peak at %f is %f m from any reflector", zPeak, closest)
	}
}

func TestTimeshiftAdvancesTraces(t *testing.T) {
	// A uniform +20 ms shift moves the gather 20 ms later on the
	// shifted axis: the shifted trace at t+20 matches the plain trace
	// at t.
	sProbe := baseSettings()
	probe, err := model.NewSeismicParameters(sProbe, buildGrid(4, 4), model.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := regrid.MakeSeismicRegridding(probe); err != nil {
		t.Fatal(err)
	}
	nx := probe.SeismicGeometry().NX()
	ny := probe.SeismicGeometry().NY()
	nzrefl := probe.SeismicGeometry().ZReflectorCount()
	shift := grid.NewGrid3D(probe.SeismicGeometry().CreateDepthVolume(), nx, ny, nzrefl, 0)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nzrefl; k++ {
				shift.Set(i, j, k, probe.TwtGrid().Get(i, j, k)+20)
			}
		}
	}

	_, axes, w := runPipeline(t, func(s *config.ModelSettings) {
		s.Output.TimeshiftSegy = true
	}, model.Options{TwtShift: shift})

	res := w.results[5]
	if res.TimeshiftGrid == nil {
		t.Fatal("timeshift output missing")
	}

	// Between the first and last reflector the shift mapping is exactly
	// +20 ms, so shifted(t+20) equals plain(t) there. 20 ms is 5
	// samples at dt=4.
	dt := 4.0
	lag := int(20 / dt)
	twtTop := probe.TwtGrid().Get(1, 1, 0)
	twtBot := probe.TwtGrid().Get(1, 1, nzrefl-1)
	for k := 0; k < res.TimeGrid.NI(); k++ {
		tv := axes.Twt0[k]
		if tv <= twtTop || tv >= twtBot || k+lag >= res.TimeshiftGrid.NI() {
			continue
		}
		a := res.TimeGrid.Get(k, 0)
		b := res.TimeshiftGrid.Get(k+lag, 0)
		if math.Abs(a-b) > 1e-9*math.Max(1, math.Abs(a)) {
			t.Fatalf("sample %d (t=%f): plain %g vs shifted %g", k, tv, a, b)
		}
	}
}
