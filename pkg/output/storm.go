package output

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"seisforward/pkg/grid"
)

// StormCube is a rotated 3D raster accumulated in memory and flushed to
// disk once at end of run. Cell writes are random access; the cube is
// only read back after all producers complete.
type StormCube struct {
	vol        grid.Volume
	nx, ny, nk int
	data       []float64
}

// NewStormCube returns a zeroed (nx, ny, nk) cube over vol.
func NewStormCube(vol grid.Volume, nx, ny, nk int) *StormCube {
	return &StormCube{
		vol:  vol,
		nx:   nx,
		ny:   ny,
		nk:   nk,
		data: make([]float64, nx*ny*nk),
	}
}

// NX returns the cell count along x.
func (c *StormCube) NX() int { return c.nx }

// NY returns the cell count along y.
func (c *StormCube) NY() int { return c.ny }

// NK returns the cell count along the vertical axis.
func (c *StormCube) NK() int { return c.nk }

// Set stores v at (i, j, k).
func (c *StormCube) Set(i, j, k int, v float64) {
	c.data[(i*c.ny+j)*c.nk+k] = v
}

// Get returns the value at (i, j, k).
func (c *StormCube) Get(i, j, k int) float64 {
	return c.data[(i*c.ny+j)*c.nk+k]
}

// SetColumn stores a whole vertical column at (i, j); samples beyond
// the column length stay zero.
func (c *StormCube) SetColumn(i, j int, samples []float64) {
	n := len(samples)
	if n > c.nk {
		n = c.nk
	}
	for k := 0; k < n; k++ {
		c.Set(i, j, k, samples[k])
	}
}

// WriteFile flushes the cube: a text header carrying the rotated
// geometry followed by big-endian float32 samples in (i, j, k) order.
func (c *StormCube) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating storm file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriterSize(f, 1<<20)

	fmt.Fprintln(w, "storm_petro_binary")
	fmt.Fprintf(w, "%f %f %f\n", c.vol.X0, c.vol.Y0, c.vol.Angle)
	fmt.Fprintf(w, "%f %f %f %f\n", c.vol.LX, c.vol.LY, c.vol.ZMin, c.vol.ZMax)
	fmt.Fprintf(w, "%d %d %d\n", c.nx, c.ny, c.nk)

	buf := make([]byte, 4)
	for _, v := range c.data {
		binary.BigEndian.PutUint32(buf, math.Float32bits(float32(v)))
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("writing storm samples: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing storm file: %w", err)
	}
	return nil
}

// ReadStormCube loads a cube written by WriteFile into a session grid.
func ReadStormCube(path string) (*grid.Grid3D, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening storm file: %w", err)
	}
	defer f.Close()
	r := bufio.NewReaderSize(f, 1<<20)

	var magic string
	var vol grid.Volume
	var nx, ny, nk int
	if _, err := fmt.Fscan(r, &magic); err != nil || magic != "storm_petro_binary" {
		return nil, fmt.Errorf("not a storm file: %s", path)
	}
	if _, err := fmt.Fscan(r, &vol.X0, &vol.Y0, &vol.Angle,
		&vol.LX, &vol.LY, &vol.ZMin, &vol.ZMax, &nx, &ny, &nk); err != nil {
		return nil, fmt.Errorf("reading storm header: %w", err)
	}
	if nx < 1 || ny < 1 || nk < 1 {
		return nil, fmt.Errorf("invalid storm dimensions (%d, %d, %d)", nx, ny, nk)
	}
	// Skip the newline terminating the header.
	if _, err := r.ReadString('\n'); err != nil {
		return nil, fmt.Errorf("reading storm header: %w", err)
	}

	g := grid.NewGrid3D(vol, nx, ny, nk, 0)
	buf := make([]byte, 4)
	data := g.Data()
	for i := range data {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("reading storm samples: %w", err)
		}
		data[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(buf)))
	}
	return g, nil
}

// WriteGrid3D flushes a session grid as a storm cube.
func WriteGrid3D(path string, g *grid.Grid3D) error {
	c := &StormCube{
		vol: g.Vol(),
		nx:  g.NX(),
		ny:  g.NY(),
		nk:  g.NK(),
	}
	c.data = g.Data()
	return c.WriteFile(path)
}
