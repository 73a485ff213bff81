package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/kova98/userlens.api/analysis"
	"github.com/kova98/userlens.api/app"
	"github.com/kova98/userlens.api/config"
	"github.com/kova98/userlens.api/models"
	"github.com/kova98/userlens.api/sources"
)

// errAnalysisFailed signals a non-zero exit after the failure envelope was printed.
var errAnalysisFailed = errors.New("analysis failed")

type reportAnalyzer interface {
	Analyze(ctx context.Context, username string) (*models.AnalysisReport, error)
}

type AnalyzeCommand struct {
	Username string `short:"u" long:"username" description:"Reddit username, with or without u/" required:"true"`
	Pretty   bool   `long:"pretty" description:"Indent the JSON output"`
	Limit    int    `long:"limit" description:"Posts and comments to fetch per kind (default FETCH_LIMIT)"`

	out         io.Writer
	newAnalyzer func(limit int) (reportAnalyzer, time.Duration, error)
}

func (c *AnalyzeCommand) Execute(args []string) error {
	analyzer, timeout, err := c.newAnalyzer(c.Limit)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	report, err := analyzer.Analyze(ctx, c.Username)
	if err == nil {
		return c.write(report)
	}

	message := err.Error()
	var failure *analysis.Failure
	if errors.As(err, &failure) {
		message = failure.Message()
		slog.Debug("analysis failed", "outcome", failure.Kind, "error", failure.Err)
	}
	if werr := c.write(models.FailureResponse{Success: false, Error: message}); werr != nil {
		return werr
	}
	return errAnalysisFailed
}

func (c *AnalyzeCommand) write(v any) error {
	enc := json.NewEncoder(c.out)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func newRedditAnalyzer(limit int) (reportAnalyzer, time.Duration, error) {
	config.LoadConfig()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: config.Config.LogLevel, TimeFormat: time.Kitchen}))
	slog.SetDefault(logger)

	cfg := config.Config
	if limit > 0 {
		cfg.FetchLimit = limit
	}

	analyzer, err := app.NewAnalyzer(cfg, logger, sources.NewIntervalLimiter(cfg.RateLimitPerMinute), nil)
	if err != nil {
		return nil, 0, err
	}

	return analyzer, app.RequestTimeout(cfg), nil
}
