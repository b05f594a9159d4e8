package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/resistance-sim/resistance-sim/sim"
	"github.com/resistance-sim/resistance-sim/sim/report"
	"github.com/resistance-sim/resistance-sim/sim/trace"
)

// runOptions holds the `run` flag values. Simulation parameters only override
// the defaults and the scenario file when set on the command line.
type runOptions struct {
	seed       int64
	days       int
	logLevel   string
	config     string
	traceLevel string

	drugs               string
	startDay            int
	interval            int
	width               int
	height              int
	initial             int
	persisterFraction   float64
	toPersister         float64
	toReplicatingNoDrug float64
	toReplicatingDrug   float64
	replicationProb     float64

	csvPath          string
	chartPath        string
	gridPNGPath      string
	videoPath        string
	cellSize         int
	fps              int
	stopOnExtinction bool
	quiet            bool
}

var runOpts runOptions

func registerRunFlags(cmd *cobra.Command, o *runOptions) {
	d := sim.DefaultConfig()
	f := cmd.Flags()

	f.Int64Var(&o.seed, "seed", 0, "Seed for the shared random stream (default: derived from the clock)")
	f.IntVar(&o.days, "days", 180, "Number of days to simulate")
	f.StringVar(&o.logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	f.StringVar(&o.config, "config", "", "Path to a YAML scenario file")
	f.StringVar(&o.traceLevel, "trace-level", string(trace.TraceLevelDaily), "Per-day record retention (none, daily); --csv and --chart need daily")

	// Treatment
	f.StringVar(&o.drugs, "drugs", strings.Join(d.Treatment.Drugs, ","), "Drugs administered on dosing days (comma or space separated)")
	f.IntVar(&o.startDay, "start-day", d.Treatment.StartDay, "First dosing day")
	f.IntVar(&o.interval, "interval", d.Treatment.Interval, "Days between doses")

	// Grid and population
	f.IntVar(&o.width, "width", d.Grid.Width, "Grid width in cells")
	f.IntVar(&o.height, "height", d.Grid.Height, "Grid height in cells")
	f.IntVar(&o.initial, "initial", d.Population.Initial, "Initial number of bacteria")
	f.Float64Var(&o.persisterFraction, "persister-fraction", d.Population.PersisterFraction, "Fraction of initial bacteria starting as persisters")

	// Phenotype switching and growth
	f.Float64Var(&o.toPersister, "to-persister", d.Phenotype.ToPersister, "Daily probability of entering persistence while a drug is active")
	f.Float64Var(&o.toReplicatingNoDrug, "to-replicating-no-drug", d.Phenotype.ToReplicatingNoDrug, "Daily probability of leaving persistence on drug-free days")
	f.Float64Var(&o.toReplicatingDrug, "to-replicating-drug", d.Phenotype.ToReplicatingDrug, "Daily probability of leaving persistence on dosing days")
	f.Float64Var(&o.replicationProb, "replication-prob", d.ReplicationProb, "Daily replication probability")

	// Outputs
	f.StringVar(&o.csvPath, "csv", "", "Write the per-day census to this CSV file")
	f.StringVar(&o.chartPath, "chart", "", "Write a population chart PNG to this file")
	f.StringVar(&o.gridPNGPath, "grid-png", "", "Write the final grid as a PNG to this file")
	f.StringVar(&o.videoPath, "video", "", "Record one grid frame per day to this MJPEG AVI file")
	f.IntVar(&o.cellSize, "cell-size", 2, "Pixels per grid cell in images and video")
	f.IntVar(&o.fps, "fps", 10, "Video frames per second")
	f.BoolVar(&o.stopOnExtinction, "stop-on-extinction", false, "Stop as soon as the population reaches zero")
	f.BoolVar(&o.quiet, "quiet", false, "Suppress the per-day census lines")
}

// buildConfig layers defaults, the scenario file and explicitly set flags,
// in that order of increasing precedence.
func (o *runOptions) buildConfig(cmd *cobra.Command) (sim.Config, int, error) {
	cfg := sim.DefaultConfig()
	days := o.days

	if o.config != "" {
		scenario, err := LoadScenario(o.config)
		if err != nil {
			return sim.Config{}, 0, err
		}
		scenario.Apply(&cfg)
		if scenario.Days != nil && !cmd.Flags().Changed("days") {
			days = *scenario.Days
		}
	}

	changed := cmd.Flags().Changed
	if changed("seed") {
		seed := o.seed
		cfg.Seed = &seed
	}
	if changed("width") {
		cfg.Grid.Width = o.width
	}
	if changed("height") {
		cfg.Grid.Height = o.height
	}
	if changed("initial") {
		cfg.Population.Initial = o.initial
	}
	if changed("persister-fraction") {
		cfg.Population.PersisterFraction = o.persisterFraction
	}
	if changed("to-persister") {
		cfg.Phenotype.ToPersister = o.toPersister
	}
	if changed("to-replicating-no-drug") {
		cfg.Phenotype.ToReplicatingNoDrug = o.toReplicatingNoDrug
	}
	if changed("to-replicating-drug") {
		cfg.Phenotype.ToReplicatingDrug = o.toReplicatingDrug
	}
	if changed("replication-prob") {
		cfg.ReplicationProb = o.replicationProb
	}
	if changed("start-day") {
		cfg.Treatment.StartDay = o.startDay
	}
	if changed("interval") {
		cfg.Treatment.Interval = o.interval
	}
	if changed("drugs") {
		// parsed against the final catalog so scenario-defined drugs are known
		regimen, err := sim.ParseDrugList(o.drugs, cfg.Drugs)
		if err != nil {
			return sim.Config{}, 0, err
		}
		cfg.Treatment.Drugs = make([]string, len(regimen))
		for i, id := range regimen {
			cfg.Treatment.Drugs[i] = string(id)
		}
	}

	if changed("trace-level") {
		if !trace.IsValidTraceLevel(o.traceLevel) {
			return sim.Config{}, 0, fmt.Errorf("unknown trace level %q; want %q or %q",
				o.traceLevel, trace.TraceLevelNone, trace.TraceLevelDaily)
		}
		cfg.TraceLevel = trace.TraceLevel(o.traceLevel)
	}
	if cfg.TraceLevel == trace.TraceLevelNone && (o.csvPath != "" || o.chartPath != "") {
		return sim.Config{}, 0, fmt.Errorf("trace level %q keeps no per-day records; --csv and --chart need %q",
			trace.TraceLevelNone, trace.TraceLevelDaily)
	}

	if days < 0 {
		return sim.Config{}, 0, fmt.Errorf("days must be non-negative, got %d", days)
	}
	return cfg, days, nil
}

// runSimulation builds the engine, steps it for days days and writes every
// requested output. The census lines and summaries go to out.
func (o *runOptions) runSimulation(cfg sim.Config, days int, out io.Writer) (*sim.Engine, error) {
	e, err := sim.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Starting simulation: %dx%d grid, %d bacteria, regimen=%v every %d day(s), seed=%d",
		e.Width(), e.Height(), e.Living(), e.Regimen(), cfg.Treatment.Interval, int64(e.Seed()))
	if len(e.Regimen()) > 0 {
		logrus.Infof("first dose on day %d", e.NextDosingDay(e.Day()))
	}

	var video *report.VideoRecorder
	if o.videoPath != "" {
		video, err = report.NewVideoRecorder(o.videoPath, e.Width(), e.Height(), o.cellSize, o.fps)
		if err != nil {
			return nil, err
		}
		if err := video.AddFrame(e); err != nil {
			_ = video.Close()
			return nil, err
		}
	}

	drugs := e.Trace.Config.Drugs
	if !o.quiet {
		printDay(out, e.Census(), drugs)
	}
	var frameErr error
	e.Run(days, func(e *sim.Engine) bool {
		if !o.quiet {
			printDay(out, e.Census(), drugs)
		}
		if video != nil {
			if frameErr = video.AddFrame(e); frameErr != nil {
				return true
			}
		}
		if o.stopOnExtinction && sim.Extinct(e) {
			logrus.Infof("population extinct on day %d; stopping", e.Day())
			return true
		}
		return false
	})
	if frameErr != nil {
		_ = video.Close()
		return nil, frameErr
	}
	if video != nil {
		if err := video.Close(); err != nil {
			return nil, err
		}
		logrus.Infof("wrote %d video frames to %s", video.Frames(), o.videoPath)
	}

	if err := o.writeOutputs(e); err != nil {
		return nil, err
	}
	if e.Trace.Config.Enabled() {
		printSummary(out, trace.Summarize(e.Trace), drugs)
	}
	return e, nil
}

func (o *runOptions) writeOutputs(e *sim.Engine) error {
	if o.csvPath != "" {
		if err := writeFile(o.csvPath, func(w io.Writer) error { return report.WriteCSV(w, e.Trace) }); err != nil {
			return err
		}
	}
	if o.chartPath != "" {
		if err := writeFile(o.chartPath, func(w io.Writer) error {
			return report.RenderChart(w, e.Trace, report.DefaultChartOptions())
		}); err != nil {
			return err
		}
	}
	if o.gridPNGPath != "" {
		if err := writeFile(o.gridPNGPath, func(w io.Writer) error {
			return report.WriteGridPNG(w, e, o.cellSize)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	logrus.Infof("wrote %s", path)
	return nil
}

// printDay writes one census line, e.g. "Day 3: Total = 250, Res-RIF = 2".
func printDay(w io.Writer, rec trace.DayRecord, drugs []string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Day %d: Total = %d, Susceptible = %d, Persister = %d", rec.Day, rec.Total, rec.Susceptible, rec.Persister)
	for _, d := range drugs {
		fmt.Fprintf(&b, ", Res-%s = %d", d, rec.ResistantTo(d))
	}
	fmt.Fprintln(w, b.String())
}

func printSummary(w io.Writer, s *trace.TraceSummary, drugs []string) {
	fmt.Fprintln(w, "=== Population Summary ===")
	fmt.Fprintf(w, "Initial Population   : %d\n", s.InitialTotal)
	fmt.Fprintf(w, "Final Population     : %d\n", s.FinalTotal)
	fmt.Fprintf(w, "Peak Population      : %d (day %d)\n", s.PeakTotal, s.PeakDay)
	fmt.Fprintf(w, "Mean Population      : %.2f (std %.2f)\n", s.MeanTotal, s.StdDevTotal)
	if s.ExtinctionDay >= 0 {
		fmt.Fprintf(w, "Extinction Day       : %d\n", s.ExtinctionDay)
	}
	fmt.Fprintf(w, "Final MDR            : %d\n", s.FinalMDR)
	for _, d := range drugs {
		first := "never"
		if day, ok := s.FirstResistance[d]; ok {
			first = fmt.Sprintf("day %d", day)
		}
		fmt.Fprintf(w, "Resistant %-10s : %d (first %s)\n", d, s.FinalResistant[d], first)
	}
}

// runCmd executes the simulation using parameters from defaults, scenario file and flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the resistance simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(runOpts.logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", runOpts.logLevel)
		}
		logrus.SetLevel(level)

		cfg, days, err := runOpts.buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("invalid configuration: %v", err)
		}

		startTime := time.Now()
		e, err := runOpts.runSimulation(cfg, days, os.Stdout)
		if err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}
		e.Metrics.Print(e.Day(), e.Living())

		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}
