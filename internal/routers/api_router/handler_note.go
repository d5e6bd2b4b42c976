// Package api_router contains the HTTP handlers of the REST API.
package api_router

import (
	"github.com/driftnotes/drift-sync-service/internal/dto"
	"github.com/driftnotes/drift-sync-service/internal/service"
	"github.com/driftnotes/drift-sync-service/pkg/app"
	"github.com/driftnotes/drift-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoteHandler serves the note CRUD endpoints.
type NoteHandler struct {
	noteSvc service.NoteService
	logger  *zap.Logger
}

func NewNoteHandler(noteSvc service.NoteService, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{noteSvc: noteSvc, logger: logger}
}

func (h *NoteHandler) List(c *gin.Context) {
	response := app.NewResponse(c)
	notes, err := h.noteSvc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("apiRouter.Note.List err", zap.Error(err))
		response.ToResponse(code.ErrorDBQuery.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(notes)
}

func (h *NoteHandler) Get(c *gin.Context) {
	response := app.NewResponse(c)
	note, err := h.noteSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("apiRouter.Note.Get err", zap.Error(err))
		response.ToResponse(code.ErrorDBQuery.WithDetails(err.Error()))
		return
	}
	if note == nil {
		response.ToResponse(code.ErrorNotFound)
		return
	}
	response.ToResponseData(note)
}

func (h *NoteHandler) Create(c *gin.Context) {
	params := &dto.NoteCreateRequest{}
	response := app.NewResponse(c)
	if err := c.ShouldBindJSON(params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}
	note, err := h.noteSvc.Create(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("apiRouter.Note.Create err", zap.Error(err))
		response.ToResponse(code.ErrorDBQuery.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(note)
}

func (h *NoteHandler) Update(c *gin.Context) {
	params := &dto.NoteUpdateRequest{}
	response := app.NewResponse(c)
	if err := c.ShouldBindJSON(params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}
	note, err := h.noteSvc.Update(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		h.logger.Error("apiRouter.Note.Update err", zap.Error(err))
		response.ToResponse(code.ErrorDBQuery.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(note)
}

func (h *NoteHandler) Rename(c *gin.Context) {
	params := &dto.NoteRenameRequest{}
	response := app.NewResponse(c)
	if err := c.ShouldBindJSON(params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}
	note, err := h.noteSvc.Rename(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		h.logger.Error("apiRouter.Note.Rename err", zap.Error(err))
		response.ToResponse(code.ErrorDBQuery.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(note)
}

func (h *NoteHandler) Trash(c *gin.Context) {
	response := app.NewResponse(c)
	if err := h.noteSvc.Trash(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("apiRouter.Note.Trash err", zap.Error(err))
		response.ToResponse(code.ErrorDBQuery.WithDetails(err.Error()))
		return
	}
	response.ToResponse(code.Success)
}

func (h *NoteHandler) Delete(c *gin.Context) {
	response := app.NewResponse(c)
	if err := h.noteSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("apiRouter.Note.Delete err", zap.Error(err))
		response.ToResponse(code.ErrorDBQuery.WithDetails(err.Error()))
		return
	}
	response.ToResponse(code.Success)
}
