package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amp-labs/magicbot/config"
	"github.com/amp-labs/magicbot/logger"
	"github.com/amp-labs/magicbot/robot"
	"github.com/amp-labs/magicbot/sim"
	"github.com/amp-labs/magicbot/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const (
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

type runOptions struct {
	mode        string
	autonomous  string
	pick        bool
	duration    time.Duration
	period      time.Duration
	metricsAddr string
	speed       float64
	turn        float64
	fire        bool
	noBanner    bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulated robot",
		Long: `Run the simulated robot in one mode until interrupted or until
--duration has passed. In autonomous mode the selected routine runs once;
in teleop the drivetrain follows --speed and --turn.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRobot(cmd, rootOpts, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.mode, "mode", string(robot.ModeAutonomous), "mode to run (disabled|autonomous|teleop|test)")
	flags.StringVar(&opts.autonomous, "autonomous", "", "autonomous routine to run (default: the default routine)")
	flags.BoolVar(&opts.pick, "pick", false, "pick the autonomous routine interactively")
	flags.DurationVar(&opts.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	flags.DurationVar(&opts.period, "period", 0, "control loop period (overrides MAGICBOT_LOOP_PERIOD)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.Float64Var(&opts.speed, "speed", 0, "teleop forward speed in m/s")
	flags.Float64Var(&opts.turn, "turn", 0, "teleop turn rate in rad/s")
	flags.BoolVar(&opts.fire, "fire", false, "hold the teleop trigger")
	flags.BoolVar(&opts.noBanner, "no-banner", false, "do not print the start banner")

	return cmd
}

func applyRunFlags(cmd *cobra.Command, cfg config.Config, opts *runOptions) config.Config {
	flags := cmd.Flags()

	if flags.Changed("period") {
		cfg.Period = opts.period
	}

	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = opts.metricsAddr
	}

	if flags.Changed("autonomous") {
		cfg.Autonomous = opts.autonomous
	}

	if flags.Changed("no-banner") {
		cfg.NoBanner = opts.noBanner
	}

	return cfg
}

func runRobot(cmd *cobra.Command, rootOpts *RootOptions, opts *runOptions) error {
	cfg := applyRunFlags(cmd, rootOpts.Config, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	mode, err := robot.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	if _, err := logger.ConfigureLogging(cfg.Log, cfg.Robot, false); err != nil {
		return err
	}

	if err := telemetry.Initialize(cmd.Context(), cfg.Telemetry); err != nil {
		return err
	}

	defer func() {
		if err := telemetry.Shutdown(context.WithoutCancel(cmd.Context())); err != nil {
			slog.Warn("Failed to shut down telemetry", "error", err)
		}
	}()

	if telemetry.LogsEnabled() {
		if _, err := logger.ConfigureLogging(cfg.Log, cfg.Robot, true); err != nil {
			return err
		}
	}

	ctx := logger.With(logger.WithRobot(cmd.Context(), cfg.Robot), "mode", string(mode))
	log := logger.Get(ctx)

	s, err := sim.NewRobot(cfg.Period,
		sim.WithLogger(slog.Default()),
		sim.WithVerbose(cfg.Verbose),
		sim.WithRobotOptions(
			robot.WithName(cfg.Robot),
			robot.WithStatusSink(statusLogger(log)),
		),
	)
	if err != nil {
		return err
	}

	name := cfg.Autonomous
	if opts.pick {
		name, err = SelectOne(rootOpts.Picker, "Autonomous mode", s.Robot.AutonomousModes(), s.Robot.DefaultAutonomous())
		if err != nil {
			return err
		}
	}

	if err := s.Robot.SelectAutonomous(name); err != nil {
		return err
	}

	s.SetJoystick(opts.speed, opts.turn, opts.fire)

	if !cfg.NoBanner {
		fmt.Fprint(cmd.OutOrStdout(), Banner("magicbot", DefaultWidth,
			Field{Key: "robot", Value: cfg.Robot},
			Field{Key: "mode", Value: string(mode)},
			Field{Key: "autonomous", Value: orDefault(name, s.Robot.DefaultAutonomous())},
			Field{Key: "period", Value: cfg.Period.String()},
			Field{Key: "metrics", Value: orDefault(cfg.MetricsAddr, "off")},
		))
	}

	if cfg.MetricsAddr != "" {
		stop := serveMetrics(log, cfg.MetricsAddr)
		defer stop()
	}

	if opts.duration > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	if err := s.Robot.RequestMode(mode); err != nil {
		return err
	}

	if err := s.Robot.Run(ctx); err != nil {
		return err
	}

	pose := s.Drivetrain.Pose()
	fmt.Fprintf(cmd.OutOrStdout(),
		"ticks=%d distance=%.2fm pose=(%.2f, %.2f) heading=%.2frad shots=%d\n",
		s.Robot.Ticks(), s.Drivetrain.Distance(), pose.X, pose.Y, pose.Heading, s.Shooter.Shots())

	return nil
}

func statusLogger(log *slog.Logger) robot.StatusSink {
	return func(status robot.Status) {
		log.Debug("Robot status",
			"current", status.Mode,
			"previous", status.Previous,
			"tick", status.Tick,
			"active", status.Active,
		)
	}
}

func serveMetrics(log *slog.Logger, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		log.Info("Serving metrics", "addr", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("Failed to shut down metrics server", "error", err)
		}
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}
