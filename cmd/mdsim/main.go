package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shiva16/molecular-design-toolkit/internal/compute"
	"github.com/shiva16/molecular-design-toolkit/internal/config"
	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/integrators"
	"github.com/shiva16/molecular-design-toolkit/internal/logging"
	_ "github.com/shiva16/molecular-design-toolkit/internal/models"
	"github.com/shiva16/molecular-design-toolkit/internal/tui"
)

var (
	dataDir  string
	logLevel string
	noColor  bool

	configFile    string
	preset        string
	runName       string
	integrator    string
	timestep      string
	frameInterval string
	duration      string
	temperature   string
	collisionRate string
	seed          int64
	executor      string
	workers       int
	minimize      int
	watch         bool
	live          bool
	frameRate     int
	noSave        bool

	temperatures string
	outFile      string
	svgFrame     int
	svgSize      int
	svgTrace     bool
	maxWavenum   float64

	logger = logging.Discard()
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "mdsim",
		Short:        "molecular dynamics runs on local or remote executors",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = logging.New(os.Stderr, level, noColor)
			if noColor {
				tui.DisableColor()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mdsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run dynamics on a configured system",
		Args:  cobra.NoArgs,
		RunE:  runDynamics,
	}
	addSystemFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name")
	runCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, fmt.Sprintf("integrator %v", integrators.Kinds()))
	runCmd.Flags().StringVar(&timestep, "timestep", config.DefaultTimestep, "integration timestep")
	runCmd.Flags().StringVar(&frameInterval, "frame-interval", config.DefaultFrameInterval, "time between trajectory frames")
	runCmd.Flags().StringVar(&duration, "duration", config.DefaultDuration, "simulated time")
	runCmd.Flags().StringVar(&temperature, "temperature", config.DefaultTemperature, "bath temperature (langevin)")
	runCmd.Flags().StringVar(&collisionRate, "collision-rate", config.DefaultCollisionRate, "bath collision rate (langevin)")
	runCmd.Flags().IntVar(&minimize, "minimize", 0, "minimizer iterations before dynamics")
	runCmd.Flags().BoolVar(&watch, "watch", false, "follow the run in a status view")
	runCmd.Flags().BoolVar(&live, "live", false, "draw the molecule while it is integrated (local executor)")
	runCmd.Flags().IntVar(&frameRate, "fps", 15, "redraw rate for --live")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	protocolCmd := &cobra.Command{
		Use:   "protocol [file]",
		Short: "run a multi-stage protocol on a configured system",
		Args:  cobra.ExactArgs(1),
		RunE:  runProtocol,
	}
	addSystemFlags(protocolCmd)
	protocolCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store stage trajectories")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run langevin replicas of a system at several temperatures",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSystemFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&temperatures, "temperatures", "100 K,200 K,300 K", "comma separated bath temperatures")
	sweepCmd.Flags().StringVar(&duration, "duration", config.DefaultDuration, "simulated time per replica")
	sweepCmd.Flags().StringVar(&timestep, "timestep", config.DefaultTimestep, "integration timestep")
	sweepCmd.Flags().StringVar(&frameInterval, "frame-interval", config.DefaultFrameInterval, "time between trajectory frames")
	sweepCmd.Flags().StringVar(&collisionRate, "collision-rate", config.DefaultCollisionRate, "bath collision rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energies and temperature of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportXYZCmd := &cobra.Command{
		Use:   "export-xyz [run_id]",
		Short: "export a run's trajectory as multi-frame XYZ",
		Args:  cobra.ExactArgs(1),
		RunE:  exportXYZ,
	}
	exportXYZCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run's metadata and trajectory as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "vibrational spectrum from the velocity autocorrelation",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&maxWavenum, "max-wavenumber", 4000, "upper plot limit in cm^-1")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a frame, or every atom's path, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgFrame, "frame", -1, "frame index, negative counts from the end")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 600, "image size in pixels")
	exportSVGCmd.Flags().BoolVar(&svgTrace, "trace", false, "draw atom paths over the whole trajectory")

	presetsCmd := &cobra.Command{
		Use:   "presets [system]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			systems := config.PresetSystems()
			if len(args) == 1 {
				systems = args
			}
			for _, system := range systems {
				presets := config.ListPresets(system)
				if len(presets) == 0 {
					fmt.Printf("no presets for system: %s\n", system)
					continue
				}
				fmt.Printf("presets for %s:\n", system)
				for _, p := range presets {
					fmt.Printf("  %s/%s\n", system, p)
				}
			}
			return nil
		},
	}

	platformsCmd := &cobra.Command{
		Use:   "platforms",
		Short: "list compute platforms and executors",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("platforms: %s (auto: %s)\n", strings.Join(engine.Platforms(), ", "), engine.AutoSelectPlatform().Name())
			fmt.Printf("executors: %s\n", strings.Join(compute.Names(), ", "))
		},
	}

	// The subprocess executor re-executes this binary as "mdsim worker <job>".
	workerCmd := &cobra.Command{
		Use:    "worker [job]",
		Short:  "serve one job from stdin",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(compute.ServeMain(cmd.Context(), args[0], os.Stdin, os.Stdout, os.Stderr))
		},
	}

	rootCmd.AddCommand(runCmd, protocolCmd, sweepCmd, listCmd, plotCmd, analyzeCmd,
		exportXYZCmd, exportJSONCmd, exportSVGCmd, presetsCmd, platformsCmd, workerCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func addSystemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration (system/name)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().StringVar(&executor, "executor", config.DefaultExecutor, fmt.Sprintf("executor %v", compute.Names()))
	cmd.Flags().IntVar(&workers, "workers", 0, "executor concurrency (0 = number of CPUs)")
}
