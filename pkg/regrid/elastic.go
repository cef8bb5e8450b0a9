package regrid

import (
	"math"

	"seisforward/pkg/eclipse"
	"seisforward/pkg/geometry"
	"seisforward/pkg/grid"
	"seisforward/pkg/model"
)

// elasticSource bundles the filled-in working copies of the eclipse
// parameters used by the ray-drop. The copies are read-only during the
// parallel pass.
type elasticSource struct {
	ecl    *eclipse.Grid
	vp     []float64
	vs     []float64
	rho    []float64
	extras [][]float64
}

// quad carries the four surface points of one source cell for every
// resampled parameter.
type quad struct {
	vp, vs, rho [4]geometry.Point
	extras      [][4]geometry.Point
}

func newQuad(nExtra int) *quad {
	return &quad{extras: make([][4]geometry.Point, nExtra)}
}

// FindVp resamples vp, vs, rho and the extra parameters onto the
// regular grid by dropping vertical rays through the triangulated tops
// of every source cell. Interior cells run block-parallel; the margins
// not spanned by interior quads are covered by synthetic edge and
// corner quads afterwards.
func FindVp(p *model.SeismicParameters, nThreads int) error {
	settings := p.Settings()
	ecl := p.EclipseGrid()
	geomE := ecl.Geometry()
	topK := p.TopK()
	botK := p.BottomK()
	zlimit := settings.Regrid.ZeroThicknessLimit
	constVp := settings.Elastic.ConstVp
	constVs := settings.Elastic.ConstVs
	constRho := settings.Elastic.ConstRho
	names := settings.Elastic.ParameterNames
	extraNames := settings.Elastic.ExtraParameterNames
	extraDefaults := settings.Elastic.ExtraParameterDefaults

	src := &elasticSource{ecl: ecl}
	var err error
	if src.vp, err = ecl.GetParameter(names[0]); err != nil {
		return err
	}
	if src.vs, err = ecl.GetParameter(names[1]); err != nil {
		return err
	}
	if src.rho, err = ecl.GetParameter(names[2]); err != nil {
		return err
	}
	src.extras = make([][]float64, len(extraNames))
	for i, name := range extraNames {
		if src.extras[i], err = ecl.GetParameter(name); err != nil {
			return err
		}
	}

	FillInGridValues(p, src.vp, constVp[1], zlimit, constVp[0])
	FillInGridValues(p, src.vs, constVs[1], zlimit, constVs[0])
	FillInGridValues(p, src.rho, constRho[1], zlimit, constRho[0])
	for i := range src.extras {
		FillInGridValues(p, src.extras[i], extraDefaults[i], zlimit, extraDefaults[i])
	}

	vpGrid := p.VpGrid()
	vsGrid := p.VsGrid()
	rhoGrid := p.RhoGrid()
	extraGrids := p.ExtraGrids()

	// Overburden defaults on top; interior rows start unassigned so the
	// post-process can find the reservoir bottom.
	for i := 0; i < vpGrid.NX(); i++ {
		for j := 0; j < vpGrid.NY(); j++ {
			vpGrid.Set(i, j, 0, constVp[0])
			vsGrid.Set(i, j, 0, constVs[0])
			rhoGrid.Set(i, j, 0, constRho[0])
			for k := 1; k < vpGrid.NK(); k++ {
				vpGrid.Set(i, j, k, grid.Missing)
				vsGrid.Set(i, j, k, grid.Missing)
				rhoGrid.Set(i, j, k, grid.Missing)
			}
			for e := range extraGrids {
				extraGrids[e].Set(i, j, 0, 0)
				for k := 1; k < extraGrids[e].NK(); k++ {
					extraGrids[e].Set(i, j, k, grid.Missing)
				}
			}
		}
	}

	// Block decomposition over the interior source cells.
	nx := geomE.NI() - 1
	ny := geomE.NJ() - 1
	nBlocksX, nBlocksY := 1, 1
	nxb, nyb := nx, ny
	if nThreads > 1 {
		nBlocksX, nBlocksY = 10, 10
		nxb = int(math.Floor(float64(nx)/float64(nBlocksX) + 0.5))
		nyb = int(math.Floor(float64(ny)/float64(nBlocksY) + 0.5))
	}
	nBlocks := nBlocksX * nBlocksY

	runParallel(nBlocks, nThreads, func(block int) {
		blockX := block % nBlocksX
		blockY := block / nBlocksX

		iMin := blockX * nxb
		iMax := (blockX + 1) * nxb
		if blockX == nBlocksX-1 || iMax > nx {
			iMax = nx
		}
		jMin := blockY * nyb
		jMax := (blockY + 1) * nyb
		if blockY == nBlocksY-1 || jMax > ny {
			jMax = ny
		}

		q := newQuad(len(src.extras))
		for k := topK; k <= botK+1; k++ {
			for i := iMin; i < iMax; i++ {
				for j := jMin; j < jMax; j++ {
					interiorCell(p, src, q, i, j, k)
				}
			}
		}
	})

	// Margins: synthetic edge and corner quads, serial.
	for k := topK; k <= botK+1; k++ {
		for i := 0; i < geomE.NI()-1; i++ {
			if j, ok := findBotCell(geomE, i, 0); ok {
				edgeCell(p, src, i, j, k, edgeBot)
			}
			if j, ok := findTopCell(geomE, i, geomE.NJ()-1); ok {
				edgeCell(p, src, i, j, k, edgeTop)
			}
		}
		for j := 0; j < geomE.NJ()-1; j++ {
			if i, ok := findLeftCell(geomE, 0, j); ok {
				edgeCell(p, src, i, j, k, edgeLeft)
			}
			if i, ok := findRightCell(geomE, geomE.NI()-1, j); ok {
				edgeCell(p, src, i, j, k, edgeRight)
			}
		}

		cornerCell(p, src, 0, 0, k)
		cornerCell(p, src, 0, geomE.NJ()-1, k)
		cornerCell(p, src, geomE.NI()-1, geomE.NJ()-1, k)
		cornerCell(p, src, geomE.NI()-1, 0, k)
	}

	return nil
}

// interiorCell resamples one interior source cell: vertex points from
// the four neighbouring cell centres at layer k, split into two
// triangles by the local Delaunay rule, splatted over the regular cells
// under the quad's rotated bounding box.
func interiorCell(p *model.SeismicParameters, src *elasticSource, q *quad, i, j, k int) {
	geomE := src.ecl.Geometry()
	botK := p.BottomK()
	vpGrid := p.VpGrid()

	// All nine pillars around the 2x2 cell block must be usable.
	if !(geomE.IsPillarActive(i, j) && geomE.IsPillarActive(i+1, j) && geomE.IsPillarActive(i, j+1) &&
		geomE.IsPillarActive(i+1, j+1) && geomE.IsPillarActive(i+2, j) && geomE.IsPillarActive(i+2, j+1) &&
		geomE.IsPillarActive(i, j+2) && geomE.IsPillarActive(i+1, j+2) && geomE.IsPillarActive(i+2, j+2)) {
		return
	}

	kc := k
	if k > botK {
		kc = k - 1
	}
	for pt := 0; pt < 4; pt++ {
		q.vp[pt] = geomE.FindCellCenterPoint(i+pt%2, j+pt/2, kc)
	}
	if !anyInside(vpGrid, q.vp[:]) {
		return
	}
	copyQuadXY(q)

	settings := p.Settings()
	if k == botK+1 {
		for pt := 0; pt < 4; pt++ {
			q.vp[pt].Z = settings.Elastic.ConstVp[2]
			q.vs[pt].Z = settings.Elastic.ConstVs[2]
			q.rho[pt].Z = settings.Elastic.ConstRho[2]
			for e := range q.extras {
				q.extras[e][pt].Z = 0
			}
		}
	} else {
		for pt := 0; pt < 4; pt++ {
			idx := src.ecl.CellIndex(i+pt%2, j+pt/2, k)
			q.vp[pt].Z = src.vp[idx]
			q.vs[pt].Z = src.vs[idx]
			q.rho[pt].Z = src.rho[idx]
			for e := range q.extras {
				q.extras[e][pt].Z = src.extras[e][idx]
			}
		}
	}

	splatQuad(p, q, k, 0.5, 1.0, nil)
}

// anyInside reports whether any of the points falls inside the output
// grid footprint.
func anyInside(g *grid.Grid3D, pts []geometry.Point) bool {
	for _, pt := range pts {
		if g.IsInside(pt.X, pt.Y) {
			return true
		}
	}
	return false
}

// copyQuadXY copies the vp vertex positions to the other parameter
// quads; only the Z values differ between parameters.
func copyQuadXY(q *quad) {
	for pt := 0; pt < 4; pt++ {
		q.vs[pt] = q.vp[pt]
		q.rho[pt] = q.vp[pt]
		for e := range q.extras {
			q.extras[e][pt] = q.vp[pt]
		}
	}
}

// is124Triangulate picks the quad diagonal by the local Delaunay rule:
// split on the 1-4 diagonal unless the angles facing it, at corners 2
// and 3, sum above pi.
func is124Triangulate(pts [4]geometry.Point) bool {
	v1 := pts[0].Sub(pts[1])
	v1.Z = 0
	v2 := pts[3].Sub(pts[1])
	v2.Z = 0
	angle := v1.Angle(v2)
	v1 = pts[0].Sub(pts[2])
	v1.Z = 0
	v2 = pts[3].Sub(pts[2])
	v2.Z = 0
	angle += v1.Angle(v2)
	return angle <= math.Pi
}

// elasticTriangles builds the triangle pair for each parameter surface
// using the shared diagonal choice.
func elasticTriangles(q *quad, triangulate124 bool) (tris [6]geometry.Triangle, extraTris [][2]geometry.Triangle) {
	extraTris = make([][2]geometry.Triangle, len(q.extras))
	set := func(pts [4]geometry.Point) (a, b geometry.Triangle) {
		if triangulate124 {
			a.SetCornerPoints(pts[0], pts[1], pts[3])
			b.SetCornerPoints(pts[0], pts[2], pts[3])
		} else {
			a.SetCornerPoints(pts[0], pts[1], pts[2])
			b.SetCornerPoints(pts[1], pts[2], pts[3])
		}
		return a, b
	}
	tris[0], tris[1] = set(q.vp)
	tris[2], tris[3] = set(q.vs)
	tris[4], tris[5] = set(q.rho)
	for e := range q.extras {
		extraTris[e][0], extraTris[e][1] = set(q.extras[e])
	}
	return tris, extraTris
}

const rayHitTol = 1e-11

// splatQuad intersects a vertical ray through every regular cell under
// the quad with the parameter triangles and stores the surface values
// at row k-topK+1. A non-nil clip polygon restricts the covered cells
// (edge and corner quads).
func splatQuad(p *model.SeismicParameters, q *quad, k int, boxShrink, boxGrow float64, clip *geometry.Polygon) {
	vpGrid := p.VpGrid()
	vsGrid := p.VsGrid()
	rhoGrid := p.RhoGrid()
	extraGrids := p.ExtraGrids()
	topK := p.TopK()

	angle := vpGrid.Angle()
	xMinRot, yMinRot := vpGrid.RotatedMin()
	dx := vpGrid.DX()
	dy := vpGrid.DY()

	tris, extraTris := elasticTriangles(q, is124Triangulate(q.vp))

	xmin, ymin, xmax, ymax := geometry.BoundingBoxRotated(q.vp[:], angle)
	startI := int(math.Max(0, (xmin-xMinRot)/dx-boxShrink))
	startJ := int(math.Max(0, (ymin-yMinRot)/dy-boxShrink))
	endI := int(math.Max(0, (xmax-xMinRot)/dx+boxGrow))
	endJ := int(math.Max(0, (ymax-yMinRot)/dy+boxGrow))
	if endI > vpGrid.NX() {
		endI = vpGrid.NX()
	}
	if endJ > vpGrid.NY() {
		endJ = vpGrid.NY()
	}

	row := k - topK + 1
	for ii := startI; ii < endI; ii++ {
		for jj := startJ; jj < endJ; jj++ {
			x, y, _ := vpGrid.FindCenterOfCell(ii, jj, 0)
			if clip != nil && !clip.IsInsideXY(geometry.Point{X: x, Y: y}) {
				continue
			}
			line := geometry.NewVerticalLine(x, y, q.vp[0].Z, 1000)

			var hit geometry.Point
			tri := -1
			if d, pt := tris[0].DistanceToPoint(line); d < rayHitTol {
				tri = 0
				hit = pt
			} else if d, pt := tris[1].DistanceToPoint(line); d < rayHitTol {
				tri = 1
				hit = pt
			}
			if tri < 0 {
				continue
			}
			vpGrid.Set(ii, jj, row, hit.Z)
			if pt, ok := tris[2+tri].FindIntersection(line, true); ok {
				vsGrid.Set(ii, jj, row, pt.Z)
			}
			if pt, ok := tris[4+tri].FindIntersection(line, true); ok {
				rhoGrid.Set(ii, jj, row, pt.Z)
			}
			for e := range extraGrids {
				if pt, ok := extraTris[e][tri].FindIntersection(line, true); ok {
					extraGrids[e].Set(ii, jj, row, pt.Z)
				}
			}
		}
	}
}
