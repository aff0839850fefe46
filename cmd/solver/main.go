package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/pizza-teams/internal/assignment"
	"github.com/eugenenazirov/pizza-teams/internal/config"
	"github.com/eugenenazirov/pizza-teams/internal/logging"
	"github.com/eugenenazirov/pizza-teams/internal/problem"
	"github.com/eugenenazirov/pizza-teams/internal/runner"
)

func main() {
	if err := run(os.Args[1:], logging.New); err != nil {
		fmt.Fprintf(os.Stderr, "solver: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	input         string
	output        string
	configFile    string
	strategy      string
	overlapPolicy string
	logLevel      string
}

func parseFlags(args []string) (options, error) {
	var opts options
	app := kingpin.New("pizza-solver", "Assigns pizzas from an input file to teams and writes the deliveries file")
	app.Flag("input", "Path to the problem file").Required().StringVar(&opts.input)
	app.Flag("output", "Path of the deliveries file (defaults to the input path with a .out extension)").StringVar(&opts.output)
	app.Flag("config", "Path to YAML configuration file").StringVar(&opts.configFile)
	app.Flag("strategy", "Assignment strategy: greedy or baseline").StringVar(&opts.strategy)
	app.Flag("overlap-policy", "Greedy overlap policy: size-dependent, penalize or reward").StringVar(&opts.overlapPolicy)
	app.Flag("log-level", "Log level: debug, info, warn, error").StringVar(&opts.logLevel)

	if _, err := app.Parse(args); err != nil {
		return options{}, err
	}
	if opts.output == "" {
		opts.output = outputPath(opts.input)
	}
	return opts, nil
}

func outputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".out"
}

func run(args []string, newLogger func(level string) (*zap.Logger, error)) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(&config.CLIOverrides{
		ConfigFile:    opts.configFile,
		LogLevel:      &opts.logLevel,
		Strategy:      &opts.strategy,
		OverlapPolicy: &opts.overlapPolicy,
	})
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger = logger.With(zap.String("input", opts.input))

	p, err := readProblem(opts.input)
	if err != nil {
		return err
	}
	logger.Info("problem loaded",
		zap.Int("pizzas", p.PizzaCount()),
		zap.Int("configurations", len(p.Configurations)),
		zap.Int("ingredients", len(p.Ingredients)),
	)

	r, err := runner.New(cfg, logger)
	if err != nil {
		return err
	}
	report, err := r.Run(p, assignment.Strategy(cfg.Strategy))
	if err != nil {
		return err
	}

	if !report.Valid {
		for _, v := range report.Violations {
			logger.Error("invalid delivery",
				zap.String("kind", string(v.Kind)),
				zap.Int("delivery", v.Delivery),
				zap.Int("pizza_id", v.PizzaID),
			)
		}
		logger.Error("solution is invalid, output not written")
		return nil
	}

	if err := writeSolution(opts.output, report.Solution); err != nil {
		return err
	}
	logger.Info("solution written",
		zap.String("output", opts.output),
		zap.Int("score", report.Score),
		zap.Duration("running_time", report.Duration),
	)
	return nil
}

func readProblem(path string) (*problem.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	p, err := problem.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

func writeSolution(path string, sol problem.Solution) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := problem.WriteSolution(f, sol); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
