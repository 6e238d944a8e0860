// Package notes содержит HTTP обработчики для работы с заметками.
package notes

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/adapters/http/dto"
	"notekeeper/internal/adapters/http/middleware"
	"notekeeper/internal/ports/api"
	"notekeeper/pkg/logger"
)

// Константы для логирования и ответов.
const (
	LogHandlerList   = "notes handler: list"
	LogHandlerGet    = "notes handler: get"
	LogHandlerCreate = "notes handler: create"
	LogHandlerUpdate = "notes handler: update"
	LogHandlerDelete = "notes handler: delete"
	LogHandlerShare  = "notes handler: share"
	LogHandlerSearch = "notes handler: search"

	MsgNoteDeleted = "note deleted successfully"
	MsgNoteShared  = "note shared successfully"

	paramNoteID = "id"
	querySearch = "q"
)

// Handler содержит HTTP обработчики заметок.
type Handler struct {
	notes  api.NoteUseCase
	search api.SearchUseCase
}

// NewHandler создает обработчик заметок.
func NewHandler(notes api.NoteUseCase, search api.SearchUseCase) *Handler {
	return &Handler{notes: notes, search: search}
}

// List возвращает заметки пользователя.
func (h *Handler) List(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerList)

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	notes, err := h.notes.ListOwned(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewNoteResponses(notes))
}

// Get возвращает одну собственную заметку.
func (h *Handler) Get(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerGet)

	userID, noteID, err := identityAndNote(c)
	if err != nil {
		return err
	}

	note, err := h.notes.GetOwned(ctx, userID, noteID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewNoteResponse(note))
}

// Create создает заметку от имени пользователя.
func (h *Handler) Create(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.Log(ctx)
	log.Debug(ctx, LogHandlerCreate)

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req dto.NoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return fmt.Errorf("%w: %w", dto.ErrInvalidRequest, err)
	}

	note, err := h.notes.Create(ctx, userID, req.Title, req.Content)
	if err != nil {
		return err
	}

	log.Info(ctx, "note created", zap.Int64("note_id", note.ID))
	return c.Status(fiber.StatusCreated).JSON(dto.NewNoteResponse(note))
}

// Update заменяет заголовок и содержимое собственной заметки.
func (h *Handler) Update(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerUpdate)

	userID, noteID, err := identityAndNote(c)
	if err != nil {
		return err
	}

	var req dto.NoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return fmt.Errorf("%w: %w", dto.ErrInvalidRequest, err)
	}

	note, err := h.notes.Update(ctx, userID, noteID, req.Title, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewNoteResponse(note))
}

// Delete удаляет собственную заметку.
func (h *Handler) Delete(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.Log(ctx)
	log.Debug(ctx, LogHandlerDelete)

	userID, noteID, err := identityAndNote(c)
	if err != nil {
		return err
	}

	if err := h.notes.Delete(ctx, userID, noteID); err != nil {
		return err
	}

	log.Info(ctx, MsgNoteDeleted, zap.Int64("note_id", noteID))
	return c.JSON(dto.MessageResponse{Message: MsgNoteDeleted})
}

// Share выдает другому пользователю доступ на чтение.
func (h *Handler) Share(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.Log(ctx)
	log.Debug(ctx, LogHandlerShare)

	userID, noteID, err := identityAndNote(c)
	if err != nil {
		return err
	}

	var req dto.ShareRequest
	if err := c.Bind().JSON(&req); err != nil {
		return fmt.Errorf("%w: %w", dto.ErrInvalidRequest, err)
	}
	if req.RecipientID <= 0 {
		return fmt.Errorf("%w: recipient_id must be positive", dto.ErrInvalidRequest)
	}

	grant, err := h.notes.Share(ctx, userID, noteID, req.RecipientID)
	if err != nil {
		return err
	}

	log.Info(ctx, MsgNoteShared,
		zap.Int64("note_id", noteID),
		zap.Int64("recipient_id", req.RecipientID))
	return c.JSON(dto.NewShareResponse(MsgNoteShared, grant))
}

// Search ищет подстроку в собственных и доступных пользователю заметках.
func (h *Handler) Search(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerSearch)

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	notes, err := h.search.Search(ctx, userID, c.Query(querySearch))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewNoteResponses(notes))
}

func identityAndNote(c fiber.Ctx) (int64, int64, error) {
	userID, err := middleware.UserID(c)
	if err != nil {
		return 0, 0, err
	}

	noteID, err := strconv.ParseInt(c.Params(paramNoteID), 10, 64)
	if err != nil || noteID <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", dto.ErrInvalidNoteID, c.Params(paramNoteID))
	}
	return userID, noteID, nil
}
