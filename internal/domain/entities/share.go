package entities

import (
	"errors"
	"time"
)

// ErrRecipientNotFound возвращается, если получатель доступа не существует.
var ErrRecipientNotFound = errors.New("recipient user not found")

// ShareGrant - постоянный доступ на чтение заметки для другого пользователя.
type ShareGrant struct {
	ID          int64     `json:"id"`
	NoteID      int64     `json:"note_id"`
	RecipientID int64     `json:"recipient_id"`
	SharerID    int64     `json:"sharer_id"`
	SharedAt    time.Time `json:"shared_at"`
}
