package output

import (
	"bufio"
	"fmt"
	"os"

	"seisforward/pkg/grid"
)

// WriteSurface stores a surface raster as plain text: a geometry header
// line followed by node values in (i, j) order.
func WriteSurface(path string, s *grid.RegularSurface) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating surface file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "%d %d %f %f %f %f %f %f\n",
		s.NX(), s.NY(), s.X0(), s.Y0(), s.DX(), s.DY(), s.Angle(), s.MissingValue())
	for i := 0; i < s.NX(); i++ {
		for j := 0; j < s.NY(); j++ {
			fmt.Fprintf(w, "%g\n", s.Get(i, j))
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing surface file: %w", err)
	}
	return nil
}

// ReadSurface loads a surface raster written by WriteSurface.
func ReadSurface(path string) (*grid.RegularSurface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening surface file: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var nx, ny int
	var x0, y0, dx, dy, angle, missing float64
	if _, err := fmt.Fscan(r, &nx, &ny, &x0, &y0, &dx, &dy, &angle, &missing); err != nil {
		return nil, fmt.Errorf("reading surface header: %w", err)
	}
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("invalid surface dimensions (%d, %d)", nx, ny)
	}
	s := grid.NewRegularSurface(x0, y0, float64(nx)*dx, float64(ny)*dy, nx, ny, angle, 0)
	s.SetMissingValue(missing)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			var v float64
			if _, err := fmt.Fscan(r, &v); err != nil {
				return nil, fmt.Errorf("reading surface node (%d, %d): %w", i, j, err)
			}
			s.Set(i, j, v)
		}
	}
	return s, nil
}
