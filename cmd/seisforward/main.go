package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"seisforward/pkg/config"
	"seisforward/pkg/forward"
	"seisforward/pkg/model"
	"seisforward/pkg/output"
	"seisforward/pkg/regrid"
)

func main() {
	settingsPath := flag.String("settings", "settings.yaml", "YAML settings file")
	modelPath := flag.String("model", "", "corner-point model file")
	topTimePath := flag.String("toptime", "", "optional top-time surface file")
	twtShiftPath := flag.String("twtshift", "", "optional timeshift cube (storm format)")
	outDir := flag.String("out", ".", "output directory")
	threads := flag.Int("threads", 0, "worker threads (0 = from settings)")
	flag.Parse()

	if *modelPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if *threads > 0 {
		settings.Runtime.MaxThreads = *threads
	}

	fmt.Println("================================")
	fmt.Println("SEISFORWARD - SYNTHETIC SEISMIC FORWARD MODELLING")
	fmt.Println("================================")

	fmt.Println("Step 1: Reading corner-point model...")
	ecl, err := loadModelFile(*modelPath)
	if err != nil {
		log.Fatalf("Failed to read model: %v", err)
	}

	if settings.Area.FromSurface != "" && !settings.Area.Given {
		area, err := output.ReadSurface(settings.Area.FromSurface)
		if err != nil {
			log.Fatalf("Failed to read area surface: %v", err)
		}
		settings.Area.Given = true
		settings.Area.X0 = area.X0()
		settings.Area.Y0 = area.Y0()
		settings.Area.LX = float64(area.NX()) * area.DX()
		settings.Area.LY = float64(area.NY()) * area.DY()
		settings.Area.Angle = area.Angle()
	}

	opts := model.Options{}
	if *topTimePath != "" {
		opts.TopTime, err = output.ReadSurface(*topTimePath)
		if err != nil {
			log.Fatalf("Failed to read top-time surface: %v", err)
		}
	}
	if *twtShiftPath != "" {
		opts.TwtShift, err = output.ReadStormCube(*twtShiftPath)
		if err != nil {
			log.Fatalf("Failed to read timeshift cube: %v", err)
		}
	}

	fmt.Println("Step 2: Building session...")
	p, err := model.NewSeismicParameters(settings, ecl, opts)
	if err != nil {
		log.Fatalf("Failed to build session: %v", err)
	}

	if settings.Survey.Enabled {
		p.AttachSurvey(settings.Survey.IL0, settings.Survey.XL0,
			settings.Survey.ILStep, settings.Survey.XLStep)
	}

	fmt.Println("Step 3: Regridding...")
	startTime := time.Now()
	if err := regrid.MakeSeismicRegridding(p); err != nil {
		log.Fatalf("Regridding failed: %v", err)
	}

	if settings.Output.DepthSurfaces {
		if err := output.WriteDepthSurfaces(p, *outDir); err != nil {
			log.Fatalf("Failed to write depth surfaces: %v", err)
		}
	}
	if settings.Output.TimeSurfaces {
		if err := output.WriteTimeSurfaces(p, *outDir); err != nil {
			log.Fatalf("Failed to write time surfaces: %v", err)
		}
	}
	if err := writeGridProducts(p, *outDir); err != nil {
		log.Fatalf("Failed to write grid products: %v", err)
	}

	fmt.Println("Step 4: Generating traces...")
	axes, err := forward.ComputeAxes(p)
	if err != nil {
		log.Fatalf("Failed to derive trace axes: %v", err)
	}
	writer, err := output.NewSeisWriter(p, axes, *outDir)
	if err != nil {
		log.Fatalf("Failed to open outputs: %v", err)
	}
	if err := forward.GenerateSeismic(p, axes, writer); err != nil {
		log.Fatalf("Trace generation failed: %v", err)
	}
	if settings.Output.Reflections {
		if err := output.WriteReflections(p, *outDir); err != nil {
			log.Fatalf("Failed to write reflection snapshots: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		log.Fatalf("Failed to flush outputs: %v", err)
	}
	forward.ReleaseAfterSynthesis(p)

	fmt.Printf("\nCompleted in %.2f seconds\n", time.Since(startTime).Seconds())
}

// writeGridProducts flushes the volume products derived directly from
// the regridded grids: elastic cubes, depths, travel times and Vrms.
func writeGridProducts(p *model.SeismicParameters, dir string) error {
	s := p.Settings()

	if s.Seismic.NMOCorr && s.Output.Vrms {
		if s.Seismic.PSSeismic {
			regrid.FindVrmsGrid(p, p.VpGrid(), p.TwtPPGrid())
			if err := output.WriteVrms(p, dir, "PP"); err != nil {
				return err
			}
			regrid.FindVrmsGrid(p, p.VsGrid(), p.TwtSSGrid())
			if err := output.WriteVrms(p, dir, "SS"); err != nil {
				return err
			}
		} else {
			regrid.FindVrmsGrid(p, p.VpGrid(), p.TwtGrid())
			if err := output.WriteVrms(p, dir, ""); err != nil {
				return err
			}
		}
		p.DeleteVrmsGrid()
	}

	if s.Output.ElasticStorm {
		if err := output.WriteVpVsRho(p, dir); err != nil {
			return err
		}
	}
	if s.Output.ZValuesStorm {
		if err := output.WriteZValues(p, dir); err != nil {
			return err
		}
	}
	if s.Output.TwtStorm {
		if err := output.WriteTwt(p, dir); err != nil {
			return err
		}
	}
	return nil
}
