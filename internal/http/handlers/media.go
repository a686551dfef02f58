package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	mediastore "github.com/avelasq/authgate/internal/domain/media"
	"github.com/avelasq/authgate/internal/media"
)

type MediaStore interface {
	Upsert(ctx context.Context, userID string, kind mediastore.Kind, storageKey string) error
	Get(ctx context.Context, userID string, kind mediastore.Kind) (mediastore.Object, error)
}

type MediaPresigner interface {
	PutURL(ctx context.Context, key string) (string, error)
	GetURL(ctx context.Context, key string) (string, error)
}

type MediaHandler struct {
	Store   MediaStore
	Presign MediaPresigner
	Logger  *slog.Logger
}

// UploadURL issues a presigned PUT for a user's media slot and records the
// object key. Re-requesting replaces the previous slot contents.
func (h *MediaHandler) UploadURL(ctx *gin.Context) {
	userID := ctx.Param("id")
	kind := mediastore.Kind(ctx.Param("kind"))

	if !kind.IsValid() {
		RespondBadRequest(ctx, "Unknown media kind")
		return
	}

	key := media.StorageKey(userID, kind)

	url, err := h.Presign.PutURL(ctx.Request.Context(), key)
	if err != nil {
		h.logErr("presign upload", err)
		RespondInternal(ctx, "An internal error occurred. Please try again.")
		return
	}

	if err := h.Store.Upsert(ctx.Request.Context(), userID, kind, key); err != nil {
		h.logErr("record media object", err)
		RespondInternal(ctx, "An internal error occurred. Please try again.")
		return
	}

	ctx.JSON(200, gin.H{"upload_url": url, "key": key})
}

// DownloadURL issues a presigned GET for a previously uploaded slot.
func (h *MediaHandler) DownloadURL(ctx *gin.Context) {
	userID := ctx.Param("id")
	kind := mediastore.Kind(ctx.Param("kind"))

	if !kind.IsValid() {
		RespondBadRequest(ctx, "Unknown media kind")
		return
	}

	obj, err := h.Store.Get(ctx.Request.Context(), userID, kind)

	if err != nil {
		if errors.Is(err, mediastore.ErrNotFound) {
			RespondNotFound(ctx, "Media not found")
			return
		}
		h.logErr("load media object", err)
		RespondInternal(ctx, "An internal error occurred. Please try again.")
		return
	}

	url, err := h.Presign.GetURL(ctx.Request.Context(), obj.StorageKey)
	if err != nil {
		h.logErr("presign download", err)
		RespondInternal(ctx, "An internal error occurred. Please try again.")
		return
	}

	ctx.JSON(200, gin.H{"url": url})
}

func (h *MediaHandler) logErr(msg string, err error) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(msg, slog.String("error", err.Error()))
}
