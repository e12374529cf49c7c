// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	g "github.com/mkhts/gotraj"
	"github.com/mkhts/gotraj/internal/config"
	"github.com/mkhts/gotraj/internal/logging"
	"github.com/mkhts/gotraj/internal/observability"
)

func main() {

	// Parse command line arguments
	args, err := parseArgs()
	if err != nil {
		flag.Usage()
		os.Exit(1)
	}

	// Run the main application
	if err := runApplication(args); err != nil {
		g.PrintE(err)
		os.Exit(1)
	}
}

// Main application processing
func runApplication(args cmdOpt) error {

	// Build run configuration
	cfg, err := loadConfig(args)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx := context.Background()
	log := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Exporter:    "stdout",
	}, log)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	// Load meteo file
	snd, err := readSounding(cfg.Atmosphere.MeteoFile)
	if err != nil {
		return fmt.Errorf("failed to read meteo file: %w", err)
	}
	if snd != nil && g.DBG_ >= 1 {
		g.PrintA("--- meteo data (%s)---\n", filepath.Base(cfg.Atmosphere.MeteoFile))
		for _, ms := range snd.Measurements() {
			fmt.Fprintln(os.Stderr, ms)
		}
		g.PrintAIf(!snd.Valid(), "%s\n", snd.Diagnosis())
	}

	atmosOpt, err := cfg.AtmosOpt()
	if err != nil {
		return err
	}
	atm := g.NewAtmosphere(cfg.Atmosphere.Temperature, cfg.Atmosphere.Pressure, cfg.Atmosphere.Height, snd, atmosOpt)
	proj := cfg.NewProjectile()

	reg := prometheus.NewRegistry()
	collector, err := observability.NewSimCollector(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	simOpt := cfg.SimOpt()
	simOpt.Logger = log
	simOpt.Recorder = collector

	// Run
	traj, runErr := g.Simulate(ctx, atm, proj, cfg.DragOpt(), simOpt)
	if cfg.Metrics.Textfile != "" {
		if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Error(ctx, "failed to write metrics textfile", logging.String("path", cfg.Metrics.Textfile), logging.Err(err))
		}
	}
	if runErr != nil {
		return fmt.Errorf("simulation failed: %w", runErr)
	}
	if g.DBG_ >= 3 {
		g.PrintA("--- trajectory (t x y z)---\n")
		g.PrintMat(traj.Matrix())
	}

	// Prepare output file
	out, err := prepareOutput(args)
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}
	defer closeOutput(out)

	if args.csvOut {
		return writeCsv(out, traj, atm, args.atmos, !args.noHeader)
	}
	if !args.noHeader {
		printHeader(out, os.Args[0], cfg, atm, traj, args.atmos)
	}
	return printTrajectory(out, traj, atm, args.atmos)
}

// Load config file and apply command line overrides
func loadConfig(args cmdOpt) (*config.Config, error) {
	cfg, err := config.Load(args.configFn)
	if err != nil {
		return nil, err
	}
	// Only flags given on the command line override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v0":
			cfg.Shot.V0 = args.v0
		case "e":
			cfg.Shot.Elevation = args.elev
		case "dt":
			cfg.Shot.Dt = args.dt
		case "n":
			cfg.Shot.MaxSteps = args.maxSteps
		case "t0":
			cfg.Atmosphere.Temperature = args.temp0
		case "p0":
			cfg.Atmosphere.Pressure = args.pres0
		case "h0":
			cfg.Atmosphere.Height = args.height0
		case "pm":
			cfg.Atmosphere.PressureModel = args.pModel.String()
		case "az":
			cfg.Projectile.Direction = args.azimuth
		case "r":
			cfg.Projectile.Radius = args.radius
		case "m":
			cfg.Projectile.Mass = args.mass
		case "metrics":
			cfg.Metrics.Textfile = args.metricsFn
		case "trace":
			cfg.Tracing.Enabled = args.trace
		case "log":
			cfg.Logging.Level = args.logLevel
		}
	})
	if len(args.meteoFn) > 0 {
		cfg.Atmosphere.MeteoFile = args.meteoFn
	}
	return cfg, nil
}

// Read meteo CSV file. Returns nil if no file is given.
func readSounding(fn string) (*g.Sounding, error) {
	if len(fn) == 0 {
		return nil, nil
	}
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // Column count is checked by the sounding
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return g.NewSoundingStrings(rows), nil
}

// Prepare output file
func prepareOutput(args cmdOpt) (io.WriteCloser, error) {

	// Use stdout if no output file is specified
	if len(args.outFn) == 0 {
		return &nopCloser{os.Stdout}, nil
	}

	// Create output file
	outf, err := os.Create(args.outFn)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return outf, nil
}

// Close output file
func closeOutput(out io.WriteCloser) {
	if out != nil {
		out.Close()
	}
}

// nopCloser - WriteCloser that ignores close operations
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Structure to hold command line argument information
type cmdOpt struct {
	configFn  string
	meteoFn   string
	outFn     string
	metricsFn string
	v0        float64
	elev      float64
	dt        float64
	maxSteps  int
	temp0     float64
	pres0     float64
	height0   float64
	pModel    g.PressureModel
	azimuth   float64
	radius    float64
	mass      float64
	noHeader  bool
	atmos     bool
	csvOut    bool
	trace     bool
	logLevel  string
}

// Parse command line arguments
func parseArgs() (a cmdOpt, err error) {
	flag.Usage = func() {
		g.PrintA(`
[Usage]
	%s [Options]                 (standard atmosphere)
	%s [Options] meteo_a.csv     (with upper-air sounding)

[Options]
`, filepath.Base(os.Args[0]), filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	def := config.DefaultConfig()
	flag.StringVar(&a.configFn, "c", "", "JSON config file. Command line options override its values.")
	flag.Float64Var(&a.v0, "v0", def.Shot.V0, "Muzzle velocity [m/s]")
	flag.Float64Var(&a.elev, "e", def.Shot.Elevation, "Launch elevation [deg] (0-90)")
	flag.Float64Var(&a.dt, "dt", def.Shot.Dt, "Integration time step [s]")
	flag.IntVar(&a.maxSteps, "n", def.Shot.MaxSteps, "Maximum number of steps. The run fails if the projectile has not landed by then.")
	flag.Float64Var(&a.temp0, "t0", def.Atmosphere.Temperature, "Ground temperature [degC]")
	flag.Float64Var(&a.pres0, "p0", def.Atmosphere.Pressure, "Ground pressure [hPa]")
	flag.Float64Var(&a.height0, "h0", def.Atmosphere.Height, "Ground height above sea level [m]")
	flag.Var(&a.pModel, "pm", "Pressure formula. 0(barometric), 1(powerlaw)")
	flag.Float64Var(&a.azimuth, "az", def.Projectile.Direction, "Firing azimuth (6400 per circle)")
	flag.Float64Var(&a.radius, "r", def.Projectile.Radius, "Projectile radius [m]")
	flag.Float64Var(&a.mass, "m", def.Projectile.Mass, "Projectile mass [kg]")
	flag.StringVar(&a.outFn, "o", "", "Output file path. If not specified, output to stdout.")
	flag.BoolVar(&a.noHeader, "nh", false, "Do not output header section.")
	flag.BoolVar(&a.atmos, "atmos", false, "Append air properties (temperature, pressure, density, speed of sound, wind) to each row.")
	flag.BoolVar(&a.csvOut, "csv", false, "Output as CSV instead of a fixed-width table.")
	flag.StringVar(&a.metricsFn, "metrics", "", "Write run metrics in Prometheus textfile format to this path.")
	flag.BoolVar(&a.trace, "trace", false, "Export the run span to stderr.")
	flag.StringVar(&a.logLevel, "log", def.Logging.Level, "Log level. debug, info, warn, error")
	var dbg int
	flag.IntVar(&dbg, "x", 0, "Debug information display. Specify level value. 0(OFF), 1(meteo data), 2(each step), 3(trajectory matrix), 4(drag details)")
	flag.Parse()
	switch flag.NArg() {
	case 0:
	case 1:
		a.meteoFn = flag.Arg(0)
	default:
		return a, fmt.Errorf("too many arguments")
	}
	g.DBG_ = dbg
	return
}
