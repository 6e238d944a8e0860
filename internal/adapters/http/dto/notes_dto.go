package dto

import (
	"time"

	"notekeeper/internal/domain/entities"
)

// NoteRequest - тело создания и обновления заметки.
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ShareRequest - тело запроса на выдачу доступа.
type ShareRequest struct {
	RecipientID int64 `json:"recipient_id"`
}

// NoteResponse представляет заметку в ответе.
type NoteResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShareGrantResponse представляет выданный доступ.
type ShareGrantResponse struct {
	ID          int64     `json:"id"`
	NoteID      int64     `json:"note_id"`
	RecipientID int64     `json:"recipient_id"`
	SharerID    int64     `json:"sharer_id"`
	SharedAt    time.Time `json:"shared_at"`
}

// ShareResponse - ответ на выдачу доступа.
type ShareResponse struct {
	Message string             `json:"message"`
	Share   ShareGrantResponse `json:"share"`
}

// NewNoteResponse конвертирует заметку.
func NewNoteResponse(note *entities.Note) NoteResponse {
	return NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		UserID:    note.OwnerID,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

// NewNoteResponses конвертирует список заметок. Пустой список дает пустой JSON массив.
func NewNoteResponses(notes []*entities.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, NewNoteResponse(n))
	}
	return out
}

// NewShareResponse конвертирует выданный доступ.
func NewShareResponse(message string, grant *entities.ShareGrant) ShareResponse {
	return ShareResponse{
		Message: message,
		Share: ShareGrantResponse{
			ID:          grant.ID,
			NoteID:      grant.NoteID,
			RecipientID: grant.RecipientID,
			SharerID:    grant.SharerID,
			SharedAt:    grant.SharedAt,
		},
	}
}
