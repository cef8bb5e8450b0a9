package regrid

import (
	"seisforward/pkg/eclipse"
	"seisforward/pkg/geometry"
	"seisforward/pkg/model"
)

// edgeKind names the four domain borders the synthetic edge quads
// cover.
type edgeKind int

const (
	edgeBot edgeKind = iota
	edgeTop
	edgeLeft
	edgeRight
)

// cornerPointDirs returns, for an edge kind, the (a, b, c) corner
// selectors of the four corner points spanning the outward cell face.
func cornerPointDirs(kind edgeKind) (a, b, c [4]int) {
	top := kind == edgeTop
	bot := kind == edgeBot
	left := kind == edgeLeft
	right := kind == edgeRight

	if top || bot || left {
		a[0], a[1] = 0, 0
	} else {
		a[0], a[1] = 1, 1
	}
	if bot || left || right {
		b[0], b[1] = 0, 0
	} else {
		b[0], b[1] = 1, 1
	}
	if top || bot || right {
		a[2], a[3] = 1, 1
	} else {
		a[2], a[3] = 0, 0
	}
	if top || left || right {
		b[2], b[3] = 1, 1
	} else {
		b[2], b[3] = 0, 0
	}
	c = [4]int{0, 1, 0, 1}
	return a, b, c
}

// edgeCell covers the margin strip along one border: a synthetic quad
// from two neighbouring cell centres and the half-edge midpoints,
// restricted by a polygon containment test on top of the bounding box.
func edgeCell(p *model.SeismicParameters, src *elasticSource, i, j, k int, kind edgeKind) {
	geomE := src.ecl.Geometry()
	botK := p.BottomK()
	vpGrid := p.VpGrid()
	settings := p.Settings()

	a, b, c := cornerPointDirs(kind)

	ic, jc := i, j
	if kind == edgeBot || kind == edgeTop {
		ic = i + 1
	} else {
		jc = j + 1
	}

	kc := k
	if k > botK {
		kc = k - 1
	}

	q := newQuad(len(src.extras))
	q.vp[0] = geomE.FindCellCenterPoint(i, j, kc)
	q.vp[1] = geomE.FindCellCenterPoint(ic, jc, kc)
	midSum := func(ci, cj int) geometry.Point {
		return geometry.Mid(geomE.FindCornerPoint(ci, cj, kc, a[0], b[0], c[0]), geomE.FindCornerPoint(ci, cj, kc, a[1], b[1], c[1])).
			Add(geometry.Mid(geomE.FindCornerPoint(ci, cj, kc, a[2], b[2], c[2]), geomE.FindCornerPoint(ci, cj, kc, a[3], b[3], c[3])))
	}
	midEdge1 := midSum(i, j)
	midEdge2 := midSum(ic, jc)

	// Corner points 2 and 3 mirror the cell centres across the face.
	q.vp[2] = midEdge1.Sub(q.vp[0])
	q.vp[3] = midEdge2.Sub(q.vp[1])
	midEdge1 = midEdge1.Scale(0.5)
	midEdge2 = midEdge2.Scale(0.5)

	if !anyInside(vpGrid, q.vp[:]) {
		return
	}
	copyQuadXY(q)

	if k == botK+1 {
		for pt := 0; pt < 2; pt++ {
			q.vp[pt].Z = settings.Elastic.ConstVp[2]
			q.vs[pt].Z = settings.Elastic.ConstVs[2]
			q.rho[pt].Z = settings.Elastic.ConstRho[2]
			for e := range q.extras {
				q.extras[e][pt].Z = 0
			}
		}
	} else {
		idx0 := src.ecl.CellIndex(i, j, k)
		idx1 := src.ecl.CellIndex(ic, jc, k)
		q.vp[0].Z, q.vp[1].Z = src.vp[idx0], src.vp[idx1]
		q.vs[0].Z, q.vs[1].Z = src.vs[idx0], src.vs[idx1]
		q.rho[0].Z, q.rho[1].Z = src.rho[idx0], src.rho[idx1]
		for e := range q.extras {
			q.extras[e][0].Z = src.extras[e][idx0]
			q.extras[e][1].Z = src.extras[e][idx1]
		}
	}
	for pt := 2; pt < 4; pt++ {
		q.vp[pt].Z = q.vp[pt-2].Z
		q.vs[pt].Z = q.vs[pt-2].Z
		q.rho[pt].Z = q.rho[pt-2].Z
		for e := range q.extras {
			q.extras[e][pt].Z = q.extras[e][pt-2].Z
		}
	}

	var clip geometry.Polygon
	clip.AddPoint(q.vp[0])
	clip.AddPoint(q.vp[1])
	clip.AddPoint(midEdge2)
	clip.AddPoint(geometry.Mid(geomE.FindCornerPoint(i, j, kc, a[2], b[2], c[2]), geomE.FindCornerPoint(i, j, kc, a[3], b[3], c[3])))
	clip.AddPoint(midEdge1)

	splatQuad(p, q, k, 2.0, 2.0, &clip)
}

// cornerCell covers one of the four domain corners with a quarter-cell
// quad; the covered regular cells take the corner cell's value
// directly.
func cornerCell(p *model.SeismicParameters, src *elasticSource, i, j, k int) {
	geomE := src.ecl.Geometry()
	botK := p.BottomK()
	topK := p.TopK()
	vpGrid := p.VpGrid()
	vsGrid := p.VsGrid()
	rhoGrid := p.RhoGrid()
	extraGrids := p.ExtraGrids()
	settings := p.Settings()

	kc := k
	if k > botK {
		kc = k - 1
	}

	edgeMid := func(a, b int) geometry.Point {
		return geometry.Mid(geomE.FindCornerPoint(i, j, kc, a, b, 0), geomE.FindCornerPoint(i, j, kc, a, b, 1))
	}

	var pts [4]geometry.Point
	switch {
	case i == 0 && j == 0:
		pts[0] = edgeMid(0, 0)
		pts[1] = geometry.Mid(edgeMid(1, 0), pts[0])
		pts[3] = geomE.FindCellCenterPoint(i, j, kc)
		pts[2] = geometry.Mid(edgeMid(0, 1), pts[0])
	case i == 0 && j > 0:
		pts[2] = edgeMid(0, 1)
		pts[0] = geometry.Mid(edgeMid(0, 0), pts[2])
		pts[1] = geomE.FindCellCenterPoint(i, j, kc)
		pts[3] = geometry.Mid(edgeMid(1, 1), pts[2])
	case i > 0 && j == 0:
		pts[1] = edgeMid(1, 0)
		pts[0] = geometry.Mid(edgeMid(0, 0), pts[1])
		pts[2] = geomE.FindCellCenterPoint(i, j, kc)
		pts[3] = geometry.Mid(edgeMid(1, 1), pts[1])
	default:
		pts[3] = edgeMid(1, 1)
		pts[1] = geometry.Mid(edgeMid(1, 0), pts[3])
		pts[0] = geomE.FindCellCenterPoint(i, j, kc)
		pts[2] = geometry.Mid(edgeMid(0, 1), pts[3])
	}

	if !anyInside(vpGrid, pts[:]) {
		return
	}

	var vVp, vVs, vRho float64
	vExtras := make([]float64, len(src.extras))
	if k == botK+1 {
		vVp = settings.Elastic.ConstVp[2]
		vVs = settings.Elastic.ConstVs[2]
		vRho = settings.Elastic.ConstRho[2]
	} else {
		idx := src.ecl.CellIndex(i, j, k)
		vVp, vVs, vRho = src.vp[idx], src.vs[idx], src.rho[idx]
		for e := range vExtras {
			vExtras[e] = src.extras[e][idx]
		}
	}

	var clip geometry.Polygon
	clip.AddPoint(pts[0])
	clip.AddPoint(pts[1])
	clip.AddPoint(pts[3])
	clip.AddPoint(pts[2])

	angle := vpGrid.Angle()
	xMinRot, yMinRot := vpGrid.RotatedMin()
	xmin, ymin, xmax, ymax := geometry.BoundingBoxRotated(pts[:], angle)
	startI := clampLow(int((xmin-xMinRot)/vpGrid.DX() - 2.0))
	startJ := clampLow(int((ymin-yMinRot)/vpGrid.DY() - 2.0))
	endI := clampHigh(int((xmax-xMinRot)/vpGrid.DX()+2.0), vpGrid.NX())
	endJ := clampHigh(int((ymax-yMinRot)/vpGrid.DY()+2.0), vpGrid.NY())

	row := k - topK + 1
	for ii := startI; ii < endI; ii++ {
		for jj := startJ; jj < endJ; jj++ {
			x, y, _ := vpGrid.FindCenterOfCell(ii, jj, 0)
			if !clip.IsInsideXY(geometry.Point{X: x, Y: y}) {
				continue
			}
			vpGrid.Set(ii, jj, row, vVp)
			vsGrid.Set(ii, jj, row, vVs)
			rhoGrid.Set(ii, jj, row, vRho)
			for e := range extraGrids {
				extraGrids[e].Set(ii, jj, row, vExtras[e])
			}
		}
	}
}

func clampLow(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampHigh(v, limit int) int {
	if v > limit {
		return limit
	}
	if v < 0 {
		return 0
	}
	return v
}

// findBotCell scans upward along j for the first cell whose pillar
// block is fully active.
func findBotCell(geomE *eclipse.Geometry, i, jStart int) (int, bool) {
	j := jStart
	for j < geomE.NJ() && !rowPillarsActive(geomE, i, j) {
		j++
	}
	return j, j < geomE.NJ()
}

// findTopCell scans downward along j.
func findTopCell(geomE *eclipse.Geometry, i, jStart int) (int, bool) {
	j := jStart
	for j >= 0 && !rowPillarsActive(geomE, i, j) {
		j--
	}
	return j, j >= 0
}

// findLeftCell scans rightward along i.
func findLeftCell(geomE *eclipse.Geometry, iStart, j int) (int, bool) {
	i := iStart
	for i < geomE.NI() && !colPillarsActive(geomE, i, j) {
		i++
	}
	return i, i < geomE.NI()
}

// findRightCell scans leftward along i.
func findRightCell(geomE *eclipse.Geometry, iStart, j int) (int, bool) {
	i := iStart
	for i >= 0 && !colPillarsActive(geomE, i, j) {
		i--
	}
	return i, i >= 0
}

func rowPillarsActive(geomE *eclipse.Geometry, i, j int) bool {
	return geomE.IsPillarActive(i, j) && geomE.IsPillarActive(i+1, j) &&
		geomE.IsPillarActive(i, j+1) && geomE.IsPillarActive(i+1, j+1) &&
		geomE.IsPillarActive(i+2, j) && geomE.IsPillarActive(i+2, j+1)
}

func colPillarsActive(geomE *eclipse.Geometry, i, j int) bool {
	return geomE.IsPillarActive(i, j) && geomE.IsPillarActive(i, j+1) &&
		geomE.IsPillarActive(i+1, j) && geomE.IsPillarActive(i+1, j+1) &&
		geomE.IsPillarActive(i, j+2) && geomE.IsPillarActive(i+1, j+2)
}
