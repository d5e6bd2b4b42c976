package api_router

import (
	"errors"

	"github.com/driftnotes/drift-sync-service/internal/service"
	"github.com/driftnotes/drift-sync-service/internal/syncer"
	"github.com/driftnotes/drift-sync-service/pkg/app"
	"github.com/driftnotes/drift-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SyncHandler exposes sync engine state and the manual resync trigger.
type SyncHandler struct {
	statusSvc service.StatusService
	logger    *zap.Logger
}

func NewSyncHandler(statusSvc service.StatusService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{statusSvc: statusSvc, logger: logger}
}

func (h *SyncHandler) Status(c *gin.Context) {
	app.NewResponse(c).ToResponseData(h.statusSvc.Status(c.Request.Context()))
}

func (h *SyncHandler) Resync(c *gin.Context) {
	response := app.NewResponse(c)
	if err := h.statusSvc.Resync(c.Request.Context()); err != nil {
		if errors.Is(err, syncer.ErrFullPushRunning) {
			response.ToResponse(code.ErrorSyncBusy)
			return
		}
		h.logger.Error("apiRouter.Sync.Resync err", zap.Error(err))
		response.ToResponse(code.ErrorInternal.WithDetails(err.Error()))
		return
	}
	response.ToResponse(code.Success)
}
