// Package apptest содержит хранилище в памяти для тестов бизнес-логики и HTTP слоя.
package apptest

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"notekeeper/internal/domain/entities"
	"notekeeper/internal/ports/repositories"
)

// MemStore повторяет семантику схемы Postgres: уникальное имя пользователя,
// уникальная пара (note_id, recipient_id), каскадное удаление доступов вместе с заметкой.
type MemStore struct {
	mu        sync.Mutex
	users     []*entities.User
	notes     map[int64]*entities.Note
	grants    []*entities.ShareGrant
	nextUser  int64
	nextNote  int64
	nextGrant int64
}

// NewMemStore создает пустое хранилище.
func NewMemStore() *MemStore {
	return &MemStore{notes: make(map[int64]*entities.Note)}
}

// Users возвращает репозиторий пользователей.
func (s *MemStore) Users() repositories.UserRepository { return userRepo{s} }

// Notes возвращает репозиторий заметок.
func (s *MemStore) Notes() repositories.NoteRepository { return noteRepo{s} }

// Shares возвращает репозиторий доступов.
func (s *MemStore) Shares() repositories.ShareRepository { return shareRepo{s} }

// GrantCount возвращает число выданных доступов.
func (s *MemStore) GrantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.grants)
}

type userRepo struct{ s *MemStore }

func (r userRepo) Create(_ context.Context, user *entities.User) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return nil, entities.ErrDuplicateIdentifier
		}
	}
	r.s.nextUser++
	created := *user
	created.ID = r.s.nextUser
	created.CreatedAt = time.Now().UTC()
	r.s.users = append(r.s.users, &created)
	out := created
	return &out, nil
}

func (r userRepo) FindByUsername(_ context.Context, username string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return u.Username == username })
}

func (r userRepo) FindByID(_ context.Context, id int64) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return u.ID == id })
}

func (r userRepo) List(_ context.Context) ([]*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := make([]*entities.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out := *u
		users = append(users, &out)
	}
	return users, nil
}

func (r userRepo) find(match func(*entities.User) bool) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

type noteRepo struct{ s *MemStore }

func (r noteRepo) Create(_ context.Context, note *entities.Note) (*entities.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextNote++
	created := *note
	created.ID = r.s.nextNote
	r.s.notes[created.ID] = &created
	out := created
	return &out, nil
}

func (r noteRepo) FindOwned(_ context.Context, noteID, ownerID int64) (*entities.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	note, ok := r.s.notes[noteID]
	if !ok || note.OwnerID != ownerID {
		return nil, entities.ErrNoteNotFound
	}
	out := *note
	return &out, nil
}

func (r noteRepo) ListByOwner(_ context.Context, ownerID int64) ([]*entities.Note, error) {
	return r.collect(func(n *entities.Note, _ map[int64]bool) bool { return n.OwnerID == ownerID }, 0), nil
}

func (r noteRepo) ListVisible(_ context.Context, userID int64) ([]*entities.Note, error) {
	return r.collect(func(n *entities.Note, shared map[int64]bool) bool {
		return n.OwnerID == userID || shared[n.ID]
	}, userID), nil
}

func (r noteRepo) UpdateOwned(_ context.Context, noteID, ownerID int64, title, content string, now time.Time) (*entities.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	note, ok := r.s.notes[noteID]
	if !ok || note.OwnerID != ownerID {
		return nil, entities.ErrNoteNotFound
	}
	note.Title = title
	note.Content = content
	note.UpdatedAt = now
	if now.Before(note.CreatedAt) {
		note.UpdatedAt = note.CreatedAt
	}
	out := *note
	return &out, nil
}

func (r noteRepo) DeleteOwned(_ context.Context, noteID, ownerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	note, ok := r.s.notes[noteID]
	if !ok || note.OwnerID != ownerID {
		return entities.ErrNoteNotFound
	}
	delete(r.s.notes, noteID)
	r.s.grants = slices.DeleteFunc(r.s.grants, func(g *entities.ShareGrant) bool { return g.NoteID == noteID })
	return nil
}

func (r noteRepo) collect(keep func(*entities.Note, map[int64]bool) bool, recipientID int64) []*entities.Note {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	shared := make(map[int64]bool)
	for _, g := range r.s.grants {
		if g.RecipientID == recipientID {
			shared[g.NoteID] = true
		}
	}
	notes := make([]*entities.Note, 0)
	for _, n := range r.s.notes {
		if keep(n, shared) {
			out := *n
			notes = append(notes, &out)
		}
	}
	slices.SortFunc(notes, func(a, b *entities.Note) int { return cmp.Compare(a.ID, b.ID) })
	return notes
}

type shareRepo struct{ s *MemStore }

func (r shareRepo) Grant(_ context.Context, grant *entities.ShareGrant) (*entities.ShareGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	note, ok := r.s.notes[grant.NoteID]
	if !ok || note.OwnerID != grant.SharerID {
		return nil, entities.ErrNoteNotFound
	}
	if !slices.ContainsFunc(r.s.users, func(u *entities.User) bool { return u.ID == grant.RecipientID }) {
		return nil, entities.ErrRecipientNotFound
	}
	for _, g := range r.s.grants {
		if g.NoteID == grant.NoteID && g.RecipientID == grant.RecipientID {
			out := *g
			return &out, nil
		}
	}
	r.s.nextGrant++
	created := *grant
	created.ID = r.s.nextGrant
	r.s.grants = append(r.s.grants, &created)
	out := created
	return &out, nil
}
