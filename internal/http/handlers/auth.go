package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelasq/authgate/internal/accounts"
	"github.com/avelasq/authgate/internal/domain/user"
	"github.com/avelasq/authgate/internal/http/middlewares"
	"github.com/avelasq/authgate/internal/jobs"
	"github.com/avelasq/authgate/internal/policy"
)

type AccountsService interface {
	Register(ctx context.Context, email, password string) (user.User, error)
	Login(ctx context.Context, email, password string) (user.User, error)
}

type WelcomeEnqueuer interface {
	Enqueue(ctx context.Context, j jobs.Job) error
}

type AuthHandler struct {
	Accounts AccountsService
	Queue    WelcomeEnqueuer
	Logger   *slog.Logger
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req credentialsRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.Accounts.Register(ctx.Request.Context(), req.Email, req.Password)

	if err != nil {
		h.respondAccountsError(ctx, err)
		return
	}

	h.enqueueWelcome(ctx, u)

	RespondMessage(ctx, "Registration successful for "+u.Email+"!")
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req credentialsRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.Accounts.Login(ctx.Request.Context(), req.Email, req.Password)

	if err != nil {
		h.respondAccountsError(ctx, err)
		return
	}

	RespondMessage(ctx, "Logged in successfully, Welcome "+u.Email+"!")
}

func (h *AuthHandler) respondAccountsError(ctx *gin.Context, err error) {
	var violation *policy.Violation

	switch {
	case errors.Is(err, accounts.ErrMissingEmail):
		RespondBadRequest(ctx, "Missing email")
	case errors.Is(err, accounts.ErrMissingPassword):
		RespondBadRequest(ctx, "Missing password")
	case errors.As(err, &violation):
		RespondBadRequest(ctx, violation.Message)
	case errors.Is(err, accounts.ErrDuplicateUser):
		RespondBadRequest(ctx, "User already exists")
	case errors.Is(err, accounts.ErrUserNotFound):
		RespondNotFound(ctx, "User not found!")
	case errors.Is(err, accounts.ErrInvalidCredentials):
		RespondBadRequest(ctx, "Invalid login credentials")
	default:
		h.log(ctx).Error("accounts operation failed", slog.String("error", err.Error()))
		RespondInternal(ctx, "An internal error occurred. Please try again.")
	}
}

// enqueueWelcome is best effort: a broker outage must not fail registration.
func (h *AuthHandler) enqueueWelcome(ctx *gin.Context, u user.User) {
	if h.Queue == nil {
		return
	}

	payload, err := jobs.EncodePayload(jobs.JobUserWelcome, jobs.UserWelcomePayload{
		UserID:      u.ID,
		Email:       u.Email,
		RequestID:   requestID(ctx),
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		h.log(ctx).Error("encode welcome payload", slog.String("error", err.Error()))
		return
	}

	job, err := jobs.NewJob(jobs.JobUserWelcome, payload)
	if err != nil {
		h.log(ctx).Error("build welcome job", slog.String("error", err.Error()))
		return
	}

	if err := h.Queue.Enqueue(ctx.Request.Context(), job); err != nil {
		h.log(ctx).Warn("enqueue welcome job",
			slog.String("user_id", u.ID),
			slog.String("error", err.Error()))
	}
}

func (h *AuthHandler) log(ctx *gin.Context) *slog.Logger {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("request_id", requestID(ctx)))
}

func requestID(ctx *gin.Context) string {
	if v, ok := ctx.Get(middlewares.CtxRequestID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

