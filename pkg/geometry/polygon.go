package geometry

// Polygon is a closed 2D region given by its corner points in order.
// Only the XY components of the points are used.
type Polygon struct {
	pts []Point
}

// AddPoint appends a corner to the polygon boundary.
func (p *Polygon) AddPoint(pt Point) {
	p.pts = append(p.pts, pt)
}

// NumPoints returns the number of boundary corners.
func (p *Polygon) NumPoints() int {
	return len(p.pts)
}

// IsInsideXY reports whether the XY projection of pt lies inside the
// polygon, by the even-odd ray-crossing rule. Points on a non-horizontal
// edge count as inside; points on a horizontal edge or at a vertex follow
// the half-open crossing rule and may fall on either side.
func (p *Polygon) IsInsideXY(pt Point) bool {
	n := len(p.pts)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		pi := p.pts[i]
		pj := p.pts[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			xCross := pi.X + (pt.Y-pi.Y)*(pj.X-pi.X)/(pj.Y-pi.Y)
			if pt.X < xCross {
				inside = !inside
			} else if pt.X == xCross {
				return true
			}
		}
		j = i
	}
	return inside
}

// BoundingBoxRotated returns the bounding box of the points in a frame
// rotated by angle radians.
func BoundingBoxRotated(pts []Point, angle float64) (xmin, ymin, xmax, ymax float64) {
	for i, pt := range pts {
		xr, yr := RotateXY(pt.X, pt.Y, angle)
		if i == 0 {
			xmin, xmax = xr, xr
			ymin, ymax = yr, yr
			continue
		}
		if xr < xmin {
			xmin = xr
		}
		if xr > xmax {
			xmax = xr
		}
		if yr < ymin {
			ymin = yr
		}
		if yr > ymax {
			ymax = yr
		}
	}
	return xmin, ymin, xmax, ymax
}
