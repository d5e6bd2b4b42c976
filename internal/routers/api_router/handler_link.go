package api_router

import (
	"github.com/driftnotes/drift-sync-service/internal/dto"
	"github.com/driftnotes/drift-sync-service/internal/service"
	"github.com/driftnotes/drift-sync-service/pkg/app"
	"github.com/driftnotes/drift-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LinkHandler serves the link graph query endpoints.
type LinkHandler struct {
	linkSvc service.LinkService
	logger  *zap.Logger
}

func NewLinkHandler(linkSvc service.LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{linkSvc: linkSvc, logger: logger}
}

func (h *LinkHandler) Backlinks(c *gin.Context) {
	response := app.NewResponse(c)
	backlinks, err := h.linkSvc.GetBacklinks(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("apiRouter.Link.Backlinks err", zap.Error(err))
		response.ToResponse(code.ErrorDBQuery.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(backlinks)
}

func (h *LinkHandler) Outgoing(c *gin.Context) {
	response := app.NewResponse(c)
	links, err := h.linkSvc.GetOutgoingLinks(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("apiRouter.Link.Outgoing err", zap.Error(err))
		response.ToResponse(code.ErrorDBQuery.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(links)
}

func (h *LinkHandler) Mentions(c *gin.Context) {
	params := &dto.MentionRequest{}
	response := app.NewResponse(c)
	if err := c.ShouldBindQuery(params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}
	mentions, err := h.linkSvc.FindUnlinkedMentions(c.Request.Context(), params.Title)
	if err != nil {
		h.logger.Error("apiRouter.Link.Mentions err", zap.Error(err))
		response.ToResponse(code.ErrorDBQuery.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(mentions)
}
