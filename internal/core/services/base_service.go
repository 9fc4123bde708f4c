package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// Now returns the current UTC time.
func (s *BaseService) Now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogWarn logs an expected business refusal or a degraded dependency
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeActor checks that the actor carries a full request scope and that its role
// passes allowed. action is used in the error message ("approve drafts").
func (s *BaseService) AuthorizeActor(ctx context.Context, actor domain.Actor, allowed func(domain.Role) bool, action string) error {
	if actor.TenantID == "" || actor.UserID == "" {
		return fmt.Errorf("%w: request has no tenant or user scope", apperrors.ErrForbidden)
	}
	if !allowed(actor.Role) {
		s.LogWarn(ctx, "Actor not authorized",
			slog.String("user_id", actor.UserID),
			slog.String("role", string(actor.Role)),
			slog.String("action", action))
		return fmt.Errorf("%w: role %q may not %s", apperrors.ErrForbidden, actor.Role, action)
	}
	return nil
}

// canRead allows every known role.
func canRead(r domain.Role) bool { return r.IsValid() }
