package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/joshsymonds/sieve/internal/config"
	"github.com/joshsymonds/sieve/internal/engine"
	"github.com/joshsymonds/sieve/internal/gmail"
	"github.com/joshsymonds/sieve/internal/rate"
	"github.com/joshsymonds/sieve/internal/rules"
	"github.com/joshsymonds/sieve/internal/runtime"
)

// envDefaults are the environment-provided fallbacks for the flags below.
type envDefaults struct {
	Config   string `env:"SIEVE_CONFIG" envDefault:"sieve.yml"`
	CredsDir string `env:"SIEVE_CREDS_DIR,expand" envDefault:"${HOME}/.gmailctl"`
	LogLevel string `env:"SIEVE_LOG_LEVEL" envDefault:"info"`
}

type runConfig struct {
	configPath string
	credsDir   string
	logLevel   string
	query      string
	maxResults int
	pageSize   int
	rps        int
	workers    int
	dryRun     bool
	notify     bool
}

func main() {
	cfg, err := parseRunFlags()
	if err != nil {
		runtime.DefaultLogger("info").Error("sieve-run failed", "error", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		runtime.DefaultLogger(cfg.logLevel).Error("sieve-run failed", "error", err)
		os.Exit(1)
	}
}

func parseRunFlags() (runConfig, error) {
	_ = godotenv.Load()
	defaults := envDefaults{}
	if err := env.Parse(&defaults); err != nil {
		return runConfig{}, fmt.Errorf("parse environment: %w", err)
	}

	configPath := flag.String("config", defaults.Config, "rule file (YAML)")
	credsDir := flag.String("creds", defaults.CredsDir, "gmailctl auth directory")
	logLevel := flag.String("log-level", defaults.LogLevel, "debug|info|warn|error")
	query := flag.String("query", "in:inbox", "Gmail query scope")
	maxResults := flag.Int("max-results", 500, "max threads per cycle")
	pageSize := flag.Int("page-size", 100, "threads.list page size (<=500)")
	rps := flag.Int("rps", 4, "max requests per second")
	workers := flag.Int("workers", 4, "evaluation worker pool size")
	dryRun := flag.Bool("dry-run", false, "report only; skip modifications")
	notify := flag.Bool("notify", false, "mail the account on errors")
	flag.Parse()

	return runConfig{
		configPath: *configPath,
		credsDir:   *credsDir,
		logLevel:   *logLevel,
		query:      *query,
		maxResults: *maxResults,
		pageSize:   *pageSize,
		rps:        *rps,
		workers:    *workers,
		dryRun:     *dryRun,
		notify:     *notify,
	}, nil
}

func run(cfg runConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := runtime.DefaultLogger(cfg.logLevel)

	rs, err := (config.Provider{Path: cfg.configPath}).Load()
	if err != nil {
		return err
	}
	logger.Info("rules loaded",
		"account", rs.Account.Name,
		"message_filters", len(rs.MessageFilters),
		"state_filters", len(rs.StateFilters),
		"threading", rs.Threading.Enabled)

	scope := runtime.ScopeModify
	if cfg.dryRun {
		scope = runtime.ScopeReadonly
	}
	client, err := runtime.NewGmailClient(ctx, cfg.credsDir, scope)
	if err != nil {
		return fmt.Errorf("create gmail client: %w", err)
	}

	var limiter rate.Limiter = rate.None{}
	if cfg.rps > 0 {
		bucket := rate.NewTokenBucket(cfg.rps)
		defer bucket.Stop()
		limiter = bucket
	}

	svc := engine.NewService(client, limiter, logger)
	svc.Workers = cfg.workers

	res := svc.Run(ctx, rs, engine.Spec{
		Query:      cfg.query,
		MaxResults: cfg.maxResults,
		PageSize:   cfg.pageSize,
		DryRun:     cfg.dryRun,
	})
	fmt.Print(res.Summary())

	if cfg.notify && len(res.Errors) > 0 && !cfg.dryRun {
		if notifyErr := sendErrorNotification(ctx, client, rs, res); notifyErr != nil {
			logger.Error("error notification not sent", "error", notifyErr)
		}
	}
	return nil
}

// sendErrorNotification mails the cycle's error list to the account owner.
// Quiet hours suppress the mail unless an emergency-tagged intent exists.
func sendErrorNotification(ctx context.Context, client gmail.Client, rs rules.RuleSet, res engine.Result) error {
	if engine.ShouldSkip(time.Now(), rs.QuietHours) && !res.HasEmergency() {
		return nil
	}
	subject := fmt.Sprintf("sieve errors — %s", rs.Account.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "Sieve cycle for %s (%s) finished with %d error(s) at %s.\n\n",
		rs.Account.Name, rs.Account.Email, len(res.Errors), time.Now().Format(time.RFC3339))
	for _, e := range res.Errors {
		fmt.Fprintf(&b, "  - %s\n", e)
	}
	fmt.Fprintf(&b, "\nThreads processed: %d, actions applied: %d message / %d state.\n",
		res.ThreadsProcessed, len(res.MessageFiltersApplied), len(res.StateFiltersApplied))
	return client.SendMessage(ctx, rs.Account.Email, subject, b.String())
}
