package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/fatih/color"

	"github.com/codetester/codetester-go/internal/update"
)

// updateCheckTimeout bounds the release lookup so it never delays exit
// noticeably.
const updateCheckTimeout = 5 * time.Second

// notifyUpdate prints a notice when a newer release exists. Failures are
// logged at debug level and otherwise ignored.
func notifyUpdate(ctx context.Context, cc *CLIContext) {
	if !shouldCheckForUpdate(cc) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, updateCheckTimeout)
	defer cancel()

	checker := update.NewChecker(newHTTPClient(cc.Cfg), cc.Cfg.Update.URL, cc.Logger)

	rel, err := checker.Check(ctx, version)
	if err != nil {
		cc.Logger.Debug("update check failed", slog.String("error", err.Error()))
		return
	}

	if rel == nil {
		return
	}

	cc.Statusf("\n%s", color.YellowString(update.Notice(rel)))
}

func shouldCheckForUpdate(cc *CLIContext) bool {
	switch {
	case cc.Cfg == nil, !cc.Cfg.Update.Check:
		return false
	case cc.Flags.NoUpdateCheck, cc.Flags.JSON, cc.Flags.Quiet:
		return false
	default:
		return version != devVersion
	}
}
