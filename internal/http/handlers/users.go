package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelasq/authgate/internal/cache"
	"github.com/avelasq/authgate/internal/domain/user"
	"github.com/avelasq/authgate/internal/utils"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type UserLister interface {
	ListCursor(ctx context.Context, emailFilter string, limit int, cursor string) ([]user.User, *string, bool, error)
}

type UsersHandler struct {
	Users  UserLister
	Cache  *cache.Cache
	Logger *slog.Logger
}

type listUsersQuery struct {
	Email  string `form:"email"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Cursor string `form:"cursor"`
}

type listUsersResponse struct {
	Users      []user.User `json:"users"`
	NextCursor *string     `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

func (h *UsersHandler) List(ctx *gin.Context) {
	var q listUsersQuery

	if !BindQuery(ctx, &q) {
		return
	}

	limit := q.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	cacheKey := utils.BuildUsersListCacheKey(limit, q.Email, q.Cursor)

	if h.Cache != nil {
		if cached, ok := h.Cache.Get(cacheKey); ok {
			if resp, ok := cached.(listUsersResponse); ok {
				RespondJSONWithETag(ctx, http.StatusOK, resp)
				return
			}
		}
	}

	users, next, hasMore, err := h.Users.ListCursor(ctx.Request.Context(), q.Email, limit, q.Cursor)

	if err != nil {
		if errors.Is(err, utils.ErrBadCursor) {
			RespondBadRequest(ctx, "Invalid cursor")
			return
		}

		logger := h.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("list users", slog.String("error", err.Error()))
		RespondInternal(ctx, "An internal error occurred. Please try again.")
		return
	}

	if users == nil {
		users = []user.User{}
	}

	resp := listUsersResponse{
		Users:      users,
		NextCursor: next,
		HasMore:    hasMore,
	}

	if h.Cache != nil {
		h.Cache.Set(cacheKey, resp)
	}

	RespondJSONWithETag(ctx, http.StatusOK, resp)
}
