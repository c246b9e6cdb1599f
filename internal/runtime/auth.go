package runtime

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mbrt/gmailctl/cmd/gmailctl/localcred"
	"google.golang.org/api/gmail/v1"

	gc "github.com/joshsymonds/sieve/internal/gmail"
)

type Scope int

const (
	ScopeReadonly Scope = iota
	ScopeModify
)

// NewGmailClient bootstraps OAuth credentials from cfgDir and returns the
// gateway client. ScopeModify is required for label mutation, move, and
// delete; ScopeReadonly suffices for dry runs.
func NewGmailClient(ctx context.Context, cfgDir string, scope Scope) (gc.Client, error) {
	var svc *gmail.Service
	var err error
	switch scope {
	case ScopeReadonly:
		svc, err = (localcred.Provider{}).Service(ctx, cfgDir)
	case ScopeModify:
		svc, err = (localcred.Provider{}).Service(ctx, cfgDir)
	default:
		panic("unknown scope")
	}
	if err != nil {
		return nil, err
	}
	return NewGoogleAPIClient(svc), nil
}

// DefaultLogger builds the process logger: tinted output on stderr.
func DefaultLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.TimeOnly,
	}))
}
