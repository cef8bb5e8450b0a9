package regrid

import (
	"fmt"
	"runtime"

	"seisforward/pkg/model"
)

// MakeSeismicRegridding runs the full regridding phase: reflector
// depths, elastic properties, the value-gap post-process, and the
// travel-time grids. The eclipse source grid is released afterwards and
// the output time range is derived from the padded time surfaces.
func MakeSeismicRegridding(p *model.SeismicParameters) error {
	nThreads := p.Threads()
	fmt.Printf("Regridding with %d of %d available threads\n", nThreads, runtime.NumCPU())

	fmt.Println("Finding z values...")
	FindZValues(p, nThreads)

	fmt.Println("Finding elastic parameters...")
	if err := FindVp(p, nThreads); err != nil {
		return fmt.Errorf("elastic regridding: %w", err)
	}
	VpPostProcess(p)

	p.DeleteEclipseGrid()

	fmt.Println("Finding twt...")
	FindTWT(p, nThreads)

	snapTimeAxis(p)
	return nil
}
