package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/parkeval/internal/assess"
	"github.com/dshills/parkeval/internal/config"
	"github.com/dshills/parkeval/internal/export"
	"github.com/dshills/parkeval/internal/logger"
	"github.com/dshills/parkeval/internal/profile"
	"github.com/dshills/parkeval/internal/project"
	"github.com/dshills/parkeval/internal/schema"
	"github.com/dshills/parkeval/internal/scoring"
)

type evaluateFlags struct {
	configPath string
	horizons   map[string]int
}

func newEvaluateCmd() *cobra.Command {
	f := &evaluateFlags{}

	cmd := &cobra.Command{
		Use:   "evaluate <submission>",
		Short: "Score a submission and write the evaluation report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath, cmd.Flags())
			if err != nil {
				return exitError(3, "failed to load config: %v", err)
			}
			for typ, months := range f.horizons {
				if cfg.Horizons == nil {
					cfg.Horizons = make(map[string]int)
				}
				cfg.Horizons[typ] = months
			}
			return runEvaluate(args[0], cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "Config file (default: parkeval.yaml in . or ./configs)")
	flags.String("format", "json", "Output format: json, md, pdf or docx")
	flags.String("out", "", "Output file path (default: stdout)")
	flags.String("profile", "park", "Built-in profile name")
	flags.String("profile-file", "", "Load the profile from a YAML file instead")
	flags.Float64("invest-per-mu", 0, "Override the investment standard (10k CNY per mu)")
	flags.Float64("tax-per-mu", 0, "Override the tax standard (10k CNY per mu per year)")
	flags.StringToIntVar(&f.horizons, "horizon", nil, "Override a ramp-up horizon, e.g. land=36 (may be repeated)")
	flags.String("font", "", "UTF-8 TrueType font for PDF output (needed for Chinese text)")
	flags.Bool("redact", true, "Mask phone numbers, ID numbers and e-mail addresses in free text")
	flags.String("fail-on", "", "Exit 2 if the decision ranks below this label")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "console", "Log format: console or json")

	return cmd
}

func runEvaluate(path string, cfg *config.Config, stdout io.Writer) error {
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return exitError(3, "invalid logging configuration: %v", err)
	}
	defer func() { _ = log.Sync() }()
	if cfg.File != "" {
		log.Debug("config loaded", zap.String("file", cfg.File))
	}

	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return exitError(3, "%v", err)
	}

	// 1. Load submission
	log.Debug("loading submission", zap.String("path", path))
	sub, err := project.Load(path)
	if err != nil {
		return exitError(3, "failed to load submission: %v", err)
	}

	// 2. Load profile and apply overrides
	prof, err := loadProfile(cfg.Profile, cfg.ProfileFile)
	if err != nil {
		return exitError(3, "failed to load profile: %v", err)
	}
	cfg.Apply(prof)
	log.Debug("profile loaded",
		zap.String("profile", prof.Name),
		zap.Int("version", prof.Version),
		zap.Float64("invest_per_mu", prof.Standards.InvestPerMu),
		zap.Float64("tax_per_mu", prof.Standards.TaxPerMu),
	)

	failRank := -1
	if cfg.FailOn != "" {
		failRank = prof.Thresholds.RankOf(cfg.FailOn)
		if failRank < 0 {
			return exitError(3, "--fail-on %q is not a label of profile %s (labels: %v)", cfg.FailOn, prof.Name, prof.Thresholds.Labels())
		}
	}

	// 3. Validate submission
	if errs := schema.ValidateSubmission(sub); len(errs) > 0 {
		for _, e := range errs {
			log.Error("invalid submission field", zap.String("path", e.Path), zap.String("problem", e.Message))
		}
		return exitError(5, "submission %s failed validation (%d errors)", path, len(errs))
	}

	// 4. Assess
	rep, err := assess.Assess(sub, prof, assess.Options{Redact: cfg.Export.Redact})
	if err != nil {
		var mce *scoring.MissingCriterionError
		var ce *scoring.ConfigurationError
		if errors.As(err, &mce) || errors.As(err, &ce) {
			return exitError(5, "%v", err)
		}
		return fmt.Errorf("assessment failed: %w", err)
	}

	// 5. Fill metadata
	rep.ID = uuid.NewString()
	rep.Tool = "parkeval"
	rep.Version = version
	rep.GeneratedAt = time.Now().UTC().Truncate(time.Second)

	if errs := schema.ValidateReport(rep, prof); len(errs) > 0 {
		for _, e := range errs {
			log.Error("inconsistent report", zap.String("path", e.Path), zap.String("problem", e.Message))
		}
		return exitError(5, "report failed validation (%d errors)", len(errs))
	}
	log.Info("evaluated",
		zap.String("submission", rep.Input.SubmissionFile),
		zap.String("hash", rep.Input.SubmissionHash),
		zap.String("profile", prof.Name),
		zap.Float64("score", rep.Result.Score),
		zap.String("label", rep.Result.Label),
		zap.String("decision", rep.Decision),
		zap.Bool("vetoed", rep.Vetoed),
	)

	// 6. Output
	if format == export.FormatPDF && cfg.Export.Font == "" {
		log.Warn("no --font given; Chinese text cannot be shown with the built-in PDF font")
	}
	opts := export.Options{FontPath: cfg.Export.Font}
	if cfg.Export.Out != "" {
		if err := export.ToFile(rep, format, opts, cfg.Export.Out); err != nil {
			return exitError(6, "%v", err)
		}
		log.Info("report written", zap.String("path", cfg.Export.Out), zap.String("format", string(format)))
	} else {
		data, err := export.Export(rep, format, opts)
		if err != nil {
			return exitError(6, "%v", err)
		}
		if _, err := stdout.Write(data); err != nil {
			return exitError(6, "failed to write output: %v", err)
		}
	}

	// 7. Exit code based on --fail-on
	if decisionBelow(rep.DecisionRank, failRank) {
		return exitError(2, "decision %s ranks below fail threshold %s", rep.Decision, cfg.FailOn)
	}
	return nil
}

// decisionBelow reports whether the decision rank is under the threshold rank.
// A negative threshold disables the check.
func decisionBelow(rank, threshold int) bool {
	return threshold >= 0 && rank < threshold
}

func loadProfile(name, file string) (*profile.Profile, error) {
	if file != "" {
		return profile.LoadFile(file)
	}
	return profile.LoadBuiltin(name)
}
