package model_test

import (
	"math"
	"testing"

	"seisforward/pkg/config"
	"seisforward/pkg/eclipse"
	"seisforward/pkg/grid"
	"seisforward/pkg/model"
	"seisforward/pkg/regrid"
)

// testLayerVp/Vs/Rho are the reservoir cell values of the fixture
// model, distinct from the configured defaults.
var (
	testLayerVp  = []float64{2000, 2500, 3000}
	testLayerVs  = []float64{800, 1000, 1200}
	testLayerRho = []float64{2.1, 2.3, 2.5}
	testDepths   = []float64{1000, 1080, 1160, 1240}
)

func testSettings() *config.ModelSettings {
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

func testEclipseGrid() *eclipse.Grid {
	g := eclipse.BuildBoxGrid(0, 0, 100, 100, 2, 2, 3, func(i, j, k int) float64 {
		return testDepths[k]
	})
	for _, name := range []string{"VP", "VS", "RHO"} {
		g.AddParameter(name)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 3; k++ {
				g.SetParameterValue("VP", i, j, k, testLayerVp[k])
				g.SetParameterValue("VS", i, j, k, testLayerVs[k])
				g.SetParameterValue("RHO", i, j, k, testLayerRho[k])
			}
		}
	}
	return g
}

func buildSession(t *testing.T, mutate func(*config.ModelSettings)) *model.SeismicParameters {
	t.Helper()
	s := testSettings()
	if mutate != nil {
		mutate(s)
	}
	p, err := model.NewSeismicParameters(s, testEclipseGrid(), model.Options{})
	if err != nil {
		t.Fatalf("NewSeismicParameters failed: %v", err)
	}
	if err := regrid.MakeSeismicRegridding(p); err != nil {
		t.Fatalf("regridding failed: %v", err)
	}
	return p
}

func TestSessionRejectsMissingParameter(t *testing.T) {
	g := eclipse.BuildBoxGrid(0, 0, 100, 100, 2, 2, 3, func(i, j, k int) float64 {
		return testDepths[k]
	})
	g.AddParameter("VP")
	g.AddParameter("VS")
	// RHO missing.
	if _, err := model.NewSeismicParameters(testSettings(), g, model.Options{}); err == nil {
		t.Error("expected error for missing RHO parameter")
	}
}

func TestSessionRejectsTimeshiftDimensionMismatch(t *testing.T) {
	wrong := grid.NewGrid3D(grid.Volume{LX: 1, LY: 1}, 5, 5, 3, 0)
	if _, err := model.NewSeismicParameters(testSettings(), testEclipseGrid(), model.Options{TwtShift: wrong}); err == nil {
		t.Error("expected dimension mismatch error for timeshift cube")
	}
}

func TestAngleAndOffsetSpans(t *testing.T) {
	s := testSettings()
	s.Angle.Theta0 = 0
	s.Angle.DTheta = 10 * math.Pi / 180
	s.Angle.ThetaMax = 30 * math.Pi / 180
	p, err := model.NewSeismicParameters(s, testEclipseGrid(), model.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(p.ThetaVec()); got != 4 {
		t.Errorf("expected 4 angles, got %d", got)
	}

	s = testSettings()
	s.Seismic.NMOCorr = true
	s.Offset.Offset0 = 0
	s.Offset.DOffset = 500
	s.Offset.OffsetMax = 1000
	p, err = model.NewSeismicParameters(s, testEclipseGrid(), model.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(p.OffsetVec()); got != 3 {
		t.Errorf("expected 3 offsets, got %d", got)
	}
	if p.MaxOffset() != 1000 {
		t.Errorf("expected max offset 1000, got %f", p.MaxOffset())
	}
}

func TestMonotoneTWT(t *testing.T) {
	p := buildSession(t, nil)
	twt := p.TwtGrid()
	for i := 0; i < twt.NX(); i++ {
		for j := 0; j < twt.NY(); j++ {
			if twt.Get(i, j, 0) == grid.Missing {
				continue
			}
			for k := 1; k < twt.NK(); k++ {
				if twt.Get(i, j, k) < twt.Get(i, j, k-1) {
					t.Fatalf("twt not monotone at (%d,%d,%d): %f < %f",
						i, j, k, twt.Get(i, j, k), twt.Get(i, j, k-1))
				}
			}
		}
	}
}

func TestVrmsBounds(t *testing.T) {
	p := buildSession(t, func(s *config.ModelSettings) {
		s.Seismic.NMOCorr = true
		s.Offset.DOffset = 500
		s.Offset.OffsetMax = 1000
	})
	nzrefl := p.SeismicGeometry().ZReflectorCount()
	twt0 := []float64{1000, 1100}
	vrmsVec, _, err := p.FindVrmsPos(twt0, 0, 0)
	if err != nil {
		t.Fatalf("FindVrmsPos failed: %v", err)
	}

	// The interval velocities entering Vrms(t_k): water, the derived
	// overburden velocity, and the layer P velocities.
	vw := p.Settings().Water.Vw
	zw := p.Settings().Water.Zw
	twtTop := p.TwtGrid().Get(0, 0, 0)
	vOver := 2000 * (p.ZGrid().Get(0, 0, 0) - zw) / (twtTop - 2000*zw/vw)

	for k := 0; k < nzrefl; k++ {
		lo, hi := vw, vw
		for _, v := range append([]float64{vOver}, vpColumn(p, k)...) {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if vrmsVec[k] < lo-1e-6 || vrmsVec[k] > hi+1e-6 {
			t.Errorf("vrms[%d]=%f outside [%f, %f]", k, vrmsVec[k], lo, hi)
		}
	}
}

// vpColumn returns the interval velocities above reflector k at (0,0).
func vpColumn(p *model.SeismicParameters, k int) []float64 {
	var vs []float64
	for l := 1; l <= k; l++ {
		vs = append(vs, p.VpGrid().Get(0, 0, l))
	}
	return vs
}

func TestFindMaxTwtIndex(t *testing.T) {
	p := buildSession(t, nil)
	_, _, maxVal := p.FindMaxTwtIndex()
	kMax := p.TwtGrid().NK() - 1
	for i := 0; i < p.TwtGrid().NX(); i++ {
		for j := 0; j < p.TwtGrid().NY(); j++ {
			if p.TwtGrid().Get(i, j, kMax) > maxVal {
				t.Fatal("FindMaxTwtIndex missed a larger value")
			}
		}
	}
}

func TestGenerateTwt0AndZ0NonNMO(t *testing.T) {
	p := buildSession(t, nil)
	twt0, z0, twts0, tss, err := p.GenerateTwt0AndZ0()
	if err != nil {
		t.Fatal(err)
	}
	g := p.SeismicGeometry()
	if len(twt0) != g.NT() {
		t.Errorf("expected %d time samples, got %d", g.NT(), len(twt0))
	}
	if len(z0) != g.NZ() {
		t.Errorf("expected %d depth samples, got %d", g.NZ(), len(z0))
	}
	if twts0 != nil {
		t.Error("no timeshift cube, twts0 must be nil")
	}
	if tss != len(twt0) {
		t.Errorf("non-NMO stretch samples must equal nt: %d vs %d", tss, len(twt0))
	}

	// Cell-centred axis: sample i at origin + (0.5+i) dt.
	if math.Abs(twt0[0]-(g.T0()+0.5*g.DT())) > 1e-9 {
		t.Errorf("twt0[0]=%f, want %f", twt0[0], g.T0()+0.5*g.DT())
	}
	if math.Abs(twt0[1]-twt0[0]-g.DT()) > 1e-9 {
		t.Error("twt0 spacing must be dt")
	}
}

func TestGenerateTwt0ForNMOBoundsLongestOffset(t *testing.T) {
	p := buildSession(t, func(s *config.ModelSettings) {
		s.Seismic.NMOCorr = true
		s.Offset.DOffset = 1000
		s.Offset.OffsetMax = 3000
	})
	twt0, _, _, tss, err := p.GenerateTwt0AndZ0()
	if err != nil {
		t.Fatal(err)
	}
	if tss > len(twt0) {
		t.Fatalf("stretch samples %d exceed axis length %d", tss, len(twt0))
	}

	// The axis must reach past the deepest moveout arrival.
	iMax, jMax, maxTwt := p.FindMaxTwtIndex()
	vrmsVec, _, err := p.FindVrmsPos(twt0, iMax, jMax)
	if err != nil {
		t.Fatal(err)
	}
	nz := p.SeismicGeometry().ZReflectorCount()
	off := p.MaxOffset()
	twtxMax := math.Sqrt(maxTwt*maxTwt + 1e6*off*off/(vrmsVec[nz-1]*vrmsVec[nz-1]))
	if twt0[len(twt0)-1] < twtxMax {
		t.Errorf("twt0 ends at %f, before longest-offset arrival %f", twt0[len(twt0)-1], twtxMax)
	}
}

func TestSnellSolverResidual(t *testing.T) {
	dD, dU, vr := 1200.0, 900.0, 0.5
	for _, offset := range []float64{100, 500, 1500} {
		y, _, err := model.FindSinThetaPS(0.1, offset, dU, dD, vr, 1e-10, 50)
		if err != nil {
			t.Fatalf("offset %f: %v", offset, err)
		}
		resid := -offset + dD*y/math.Sqrt(1-y*y) + dU*vr*y/math.Sqrt(1-vr*vr*y*y)
		if math.Abs(resid) > 1e-6 {
			t.Errorf("offset %f: residual %g", offset, resid)
		}
	}
}

func TestSnellSolverMatchesNumericalDerivative(t *testing.T) {
	// One Newton step from y0 must match a step using a numerical
	// derivative: confirms the analytic derivative is the true
	// d/dy of the two-leg offset function.
	dD, dU, vr, offset := 1200.0, 900.0, 0.5, 800.0
	f := func(y float64) float64 {
		return -offset + dD*y/math.Sqrt(1-y*y) + dU*vr*y/math.Sqrt(1-vr*vr*y*y)
	}
	y0 := 0.3
	h := 1e-7
	numDer := (f(y0+h) - f(y0-h)) / (2 * h)
	numStep := y0 - f(y0)/numDer

	got, _, err := model.FindSinThetaPS(y0, offset, dU, dD, vr, 1e-12, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-numStep) > 1e-6 {
		t.Errorf("Newton step %f differs from numerical-derivative step %f", got, numStep)
	}
}

func TestSegyGeometryRoundTrip(t *testing.T) {
	sg := model.NewSegyGeometry(1000, 2000, 25, 25, 0.2, 10, 8, 400, 700, 2, 3)
	if sg.MaxIL() != 400+9*2 || sg.MaxXL() != 700+7*3 {
		t.Errorf("label bounds wrong: %d %d", sg.MaxIL(), sg.MaxXL())
	}
	for _, c := range [][2]int{{400, 700}, {404, 709}, {sg.MaxIL(), sg.MaxXL()}} {
		i, j := sg.FindIndexFromILXL(c[0], c[1])
		il, xl := sg.FindILXLFromIndex(i, j)
		if il != c[0] || xl != c[1] {
			t.Errorf("label round trip (%d,%d) -> (%d,%d)", c[0], c[1], il, xl)
		}
	}
}

func TestGenerateTwt0ShiftUniformShift(t *testing.T) {
	// A +20 ms uniform shift pads the axis below, not above.
	s := testSettings()
	p0, err := model.NewSeismicParameters(s, testEclipseGrid(), model.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := regrid.MakeSeismicRegridding(p0); err != nil {
		t.Fatal(err)
	}
	nzrefl := p0.SeismicGeometry().ZReflectorCount()
	nx := p0.SeismicGeometry().NX()
	ny := p0.SeismicGeometry().NY()

	shift := grid.NewGrid3D(p0.SeismicGeometry().CreateDepthVolume(), nx, ny, nzrefl, 0)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nzrefl; k++ {
				shift.Set(i, j, k, p0.TwtGrid().Get(i, j, k)+20)
			}
		}
	}

	p, err := model.NewSeismicParameters(testSettings(), testEclipseGrid(), model.Options{TwtShift: shift})
	if err != nil {
		t.Fatal(err)
	}
	if err := regrid.MakeSeismicRegridding(p); err != nil {
		t.Fatal(err)
	}
	twt0, _, twts0, _, err := p.GenerateTwt0AndZ0()
	if err != nil {
		t.Fatal(err)
	}
	if twts0 == nil {
		t.Fatal("expected shifted axis")
	}
	if twts0[0] != twt0[0] {
		t.Errorf("positive shift must not pad above: %f vs %f", twts0[0], twt0[0])
	}
	extra := len(twts0) - len(twt0)
	want := int(math.Ceil(20 / p.SeismicGeometry().DT()))
	if extra != want {
		t.Errorf("expected %d extra samples below, got %d", want, extra)
	}
}
