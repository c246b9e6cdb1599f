// Package engine turns a validated rule set plus a mailbox snapshot into an
// ordered set of applied actions: the filter and state evaluation core.
package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/joshsymonds/sieve/internal/gmail"
	"github.com/joshsymonds/sieve/internal/rate"
	"github.com/joshsymonds/sieve/internal/rules"
)

const (
	defaultPageSize   = 100
	defaultMaxResults = 500
	defaultWorkers    = 4
)

// Spec holds the per-run options.
type Spec struct {
	Query      string // Gmail query scope, e.g. "in:inbox"
	MaxResults int    // cap on threads per cycle
	PageSize   int
	DryRun     bool // evaluate and report without applying
}

// Service runs execution cycles. One cycle is a single logical pass; cycles
// must not overlap against the same mailbox.
type Service struct {
	Client  gmail.Client
	Limiter rate.Limiter
	Logger  *slog.Logger
	Clock   func() time.Time
	Workers int // bounded pool for per-thread evaluation
}

// NewService constructs a Service with sane defaults.
func NewService(client gmail.Client, limiter rate.Limiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		Client:  client,
		Limiter: limiter,
		Logger:  logger,
		Clock:   time.Now,
		Workers: defaultWorkers,
	}
}

// Run executes one cycle: snapshot, quiet-hours gate, message and state
// evaluation, action application. It always returns a Result; gateway and
// evaluation failures accumulate in Result.Errors instead of aborting.
func (s *Service) Run(ctx context.Context, rs rules.RuleSet, spec Spec) Result {
	start := s.Clock()
	res := Result{Account: rs.Account.Name}

	if ShouldSkip(start, rs.QuietHours) {
		s.Logger.InfoContext(ctx, "quiet hours, skipping cycle", "account", rs.Account.Name)
		res.Duration = s.Clock().Sub(start)
		return res
	}

	query := spec.Query
	if query == "" {
		query = "in:inbox"
	}
	pageSize := spec.PageSize
	if pageSize <= 0 || pageSize > 500 {
		pageSize = defaultPageSize
	}
	maxResults := spec.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	snap, snapErrs := s.buildSnapshot(ctx, gmail.Query{Raw: query}, pageSize, maxResults)
	res.Errors = append(res.Errors, snapErrs...)
	res.ThreadsProcessed = len(snap.Threads)
	s.Logger.InfoContext(ctx, "snapshot built",
		"account", rs.Account.Name, "threads", len(snap.Threads), "errors", len(snapErrs))

	msgIntents, stateIntents, evalErrs := s.evaluate(rs, snap, start)
	res.MessageFiltersApplied = msgIntents
	res.StateFiltersApplied = stateIntents
	res.Errors = append(res.Errors, evalErrs...)

	if spec.DryRun {
		s.Logger.InfoContext(ctx, "dry-run, skipping application",
			"message_actions", len(msgIntents), "state_actions", len(stateIntents))
	} else {
		res.Errors = append(res.Errors, s.applyIntents(ctx, snap, msgIntents, stateIntents)...)
	}

	res.Duration = s.Clock().Sub(start)
	s.Logger.InfoContext(ctx, "cycle complete",
		"account", rs.Account.Name,
		"threads", res.ThreadsProcessed,
		"message_actions", len(res.MessageFiltersApplied),
		"state_actions", len(res.StateFiltersApplied),
		"errors", len(res.Errors),
		"duration", res.Duration)
	return res
}

// evaluate fans per-thread evaluation out across the worker pool. Workers
// only read the snapshot and write into their own indexed slot, so the
// merged output order matches snapshot order regardless of scheduling.
func (s *Service) evaluate(rs rules.RuleSet, snap Snapshot, now time.Time) ([]ActionIntent, []ActionIntent, []string) {
	type outcome struct {
		msg   []ActionIntent
		state []ActionIntent
		errs  []string
	}
	outcomes := make([]outcome, len(snap.Threads))

	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range snap.Threads {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, th gmail.Thread) {
			defer wg.Done()
			defer func() { <-sem }()
			msg, errs := evaluateMessageFilters(rs, snap, th)
			outcomes[i] = outcome{
				msg:   msg,
				state: evaluateStateFilters(rs, snap, th, now),
				errs:  errs,
			}
		}(i, snap.Threads[i])
	}
	wg.Wait()

	var msgIntents, stateIntents []ActionIntent
	var errs []string
	for _, o := range outcomes {
		msgIntents = append(msgIntents, o.msg...)
		stateIntents = append(stateIntents, o.state...)
		errs = append(errs, o.errs...)
	}
	return msgIntents, stateIntents, errs
}

func (s *Service) wait(ctx context.Context) error {
	if s.Limiter == nil {
		return nil
	}
	return s.Limiter.Wait(ctx)
}
