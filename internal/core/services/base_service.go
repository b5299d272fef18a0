package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/ledger_engine/internal/logging"
)

// BaseService gives every ledger service the operation-scoped logger carried in ctx.
type BaseService struct{}

func (s *BaseService) logger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// logErr emits msg with err under key, ahead of the caller's attributes.
func (s *BaseService) logErr(ctx context.Context, level slog.Level, key string, err error, msg string, keyvals []any) {
	attrs := append([]any{slog.String(key, err.Error())}, keyvals...)
	s.logger(ctx).Log(ctx, level, msg, attrs...)
}

// LogError records an infrastructure or engine failure.
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	s.logErr(ctx, slog.LevelError, "error", err, msg, keyvals)
}

// LogRejection records a request refused because of its input or the ledger state.
func (s *BaseService) LogRejection(ctx context.Context, err error, msg string, keyvals ...any) {
	s.logErr(ctx, slog.LevelWarn, "reason", err, msg, keyvals)
}

func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.logger(ctx).InfoContext(ctx, msg, keyvals...)
}

func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.logger(ctx).DebugContext(ctx, msg, keyvals...)
}
