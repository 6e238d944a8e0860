package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Ошибки домена заметок.
var (
	// ErrNoteNotFound покрывает и отсутствие заметки, и чужую заметку.
	ErrNoteNotFound = errors.New("note not found")
	ErrInvalidNote  = errors.New("invalid note")
)

// Ограничения на размер заметки.
const (
	MaxTitleLength   = 255
	MaxContentLength = 1 << 20
)

// Note представляет заметку пользователя.
type Note struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNote создает заметку владельца ownerID с одинаковыми created_at и updated_at.
func NewNote(ownerID int64, title, content string, now time.Time) *Note {
	return &Note{
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateNoteFields проверяет границы заголовка и содержимого.
func ValidateNoteFields(title, content string) error {
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return fmt.Errorf("%w: title has %d characters, max %d", ErrInvalidNote, n, MaxTitleLength)
	}
	if len(content) > MaxContentLength {
		return fmt.Errorf("%w: content exceeds %d bytes", ErrInvalidNote, MaxContentLength)
	}
	if !utf8.ValidString(title) || !utf8.ValidString(content) {
		return fmt.Errorf("%w: title and content must be valid UTF-8", ErrInvalidNote)
	}
	// Postgres text не хранит NUL (SQLSTATE 22021).
	if strings.ContainsRune(title, 0) || strings.ContainsRune(content, 0) {
		return fmt.Errorf("%w: title and content must not contain NUL characters", ErrInvalidNote)
	}
	return nil
}
