package main

import (
	"bufio"
	"fmt"
	"os"

	"seisforward/pkg/eclipse"
)

// loadModelFile reads a corner-point model from a plain-text file:
//
//	ni nj nk
//	x0 y0 dx dy
//	(nk+1)*(ni+1)*(nj+1) interface depths, k outermost, j innermost
//	per parameter: NAME followed by ni*nj*nk cell values
//
// All cells are active. The format carries the synthetic models the
// engine is exercised with; full reservoir decks come in through the
// eclipse package's grid builder instead.
func loadModelFile(path string) (*eclipse.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model file: %w", err)
	}
	defer f.Close()
	r := bufio.NewReaderSize(f, 1<<20)

	var ni, nj, nk int
	var x0, y0, dx, dy float64
	if _, err := fmt.Fscan(r, &ni, &nj, &nk); err != nil {
		return nil, fmt.Errorf("reading model dimensions: %w", err)
	}
	if ni < 1 || nj < 1 || nk < 1 {
		return nil, fmt.Errorf("invalid model dimensions (%d, %d, %d)", ni, nj, nk)
	}
	if _, err := fmt.Fscan(r, &x0, &y0, &dx, &dy); err != nil {
		return nil, fmt.Errorf("reading model origin: %w", err)
	}

	depths := make([]float64, (nk+1)*(ni+1)*(nj+1))
	for idx := range depths {
		if _, err := fmt.Fscan(r, &depths[idx]); err != nil {
			return nil, fmt.Errorf("reading interface depths: %w", err)
		}
	}
	layerZ := func(i, j, k int) float64 {
		return depths[(k*(ni+1)+i)*(nj+1)+j]
	}
	g := eclipse.BuildBoxGrid(x0, y0, dx, dy, ni, nj, nk, layerZ)

	for {
		var name string
		if _, err := fmt.Fscan(r, &name); err != nil {
			break
		}
		g.AddParameter(name)
		for i := 0; i < ni; i++ {
			for j := 0; j < nj; j++ {
				for k := 0; k < nk; k++ {
					var v float64
					if _, err := fmt.Fscan(r, &v); err != nil {
						return nil, fmt.Errorf("reading parameter %s: %w", name, err)
					}
					g.SetParameterValue(name, i, j, k, v)
				}
			}
		}
	}
	return g, nil
}
