// Command widths measures the width of pavement polygons along their
// centerlines and writes the results as GeoJSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dabreegster/polygon-width/internal/config"
	"github.com/dabreegster/polygon-width/internal/geojsonio"
	"github.com/dabreegster/polygon-width/internal/pavement"
	"github.com/dabreegster/polygon-width/internal/pipeline"
	"github.com/dabreegster/polygon-width/internal/plotter"
	"github.com/dabreegster/polygon-width/internal/report"
	"github.com/dabreegster/polygon-width/internal/store"
	"github.com/dabreegster/polygon-width/internal/version"
)

var (
	inputPath   = flag.String("input", "", "GeoJSON file of pavement polygons (WGS84)")
	outputDir   = flag.String("output", "output", "Directory for the output GeoJSON files")
	tuningPath  = flag.String("tuning", "", "Tuning config JSON (default $WIDTHS_TUNING, else built-in defaults)")
	workers     = flag.Int("workers", 0, "Parallel pavement workers (0 = GOMAXPROCS)")
	dbPath      = flag.String("db", "", "Record the run in this SQLite database (default $WIDTHS_DB)")
	plotsDir    = flag.String("plots", "", "Write debug PNG plots into this directory")
	reportPath  = flag.String("report", "", "Write an HTML width report to this file")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// options is everything main resolves from flags and the environment.
type options struct {
	Input      string
	Output     string
	Tuning     string
	Workers    int
	DB         string
	Plots      string
	ReportPath string
}

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *inputPath == "" {
		log.Fatal("-input is required")
	}

	opts := options{
		Input:      *inputPath,
		Output:     *outputDir,
		Tuning:     envDefault(*tuningPath, "WIDTHS_TUNING"),
		Workers:    *workers,
		DB:         envDefault(*dbPath, "WIDTHS_DB"),
		Plots:      *plotsDir,
		ReportPath: *reportPath,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("widths: %v", err)
	}
}

// envDefault returns flagValue, or the environment variable key when the
// flag was left empty.
func envDefault(flagValue, key string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(key)
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.EmptyTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

func run(ctx context.Context, opts options) error {
	tuning, err := loadTuning(opts.Tuning)
	if err != nil {
		return fmt.Errorf("failed to load tuning config: %w", err)
	}
	cfg := pavement.ConfigFromTuning(tuning)

	polygons, err := geojsonio.ReadPolygonsFile(opts.Input)
	if err != nil {
		return err
	}
	log.Printf("read %d polygons from %s", len(polygons), opts.Input)

	res, err := pipeline.Run(ctx, polygons, pipeline.Options{
		Config:                cfg,
		Workers:               opts.Workers,
		MaxPerimeterAreaRatio: tuning.GetMaxPerimeterAreaRatio(),
	})
	if err != nil {
		return err
	}

	if err := geojsonio.WriteOutputs(opts.Output, res); err != nil {
		return fmt.Errorf("failed to write outputs: %w", err)
	}
	log.Printf("wrote outputs to %s", opts.Output)

	if opts.DB != "" {
		s, err := store.Open(opts.DB)
		if err != nil {
			return fmt.Errorf("failed to open results database: %w", err)
		}
		defer s.Close()
		id, err := s.SaveRun(ctx, filepath.Base(opts.Input), cfg, res)
		if err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		log.Printf("recorded run %s in %s", id, opts.DB)
	}

	if opts.Plots != "" {
		n, err := plotter.Render(opts.Plots, res.Pavements)
		if err != nil {
			return fmt.Errorf("failed to render plots: %w", err)
		}
		log.Printf("wrote %d plots to %s", n, opts.Plots)
	}

	if opts.ReportPath != "" {
		f, err := os.Create(opts.ReportPath)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer f.Close()
		if err := report.Write(f, filepath.Base(opts.Input), res.Pavements); err != nil {
			return err
		}
		log.Printf("wrote report to %s", opts.ReportPath)
	}

	return nil
}
