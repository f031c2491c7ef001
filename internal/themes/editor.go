package themes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Coursely/internal/models"
)

const maxForkSlugAttempts = 64

// EditorSessions owns the live theme editors, one per open editor tab.
// Sessions are independent; saves from two sessions of the same user are
// last-write-wins.
type EditorSessions struct {
	store *Store
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*Editor
}

func NewEditorSessions(store *Store, ttl time.Duration) *EditorSessions {
	return &EditorSessions{
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Editor),
	}
}

// Open starts a session editing themeID, or the user's active theme (falling
// back to the default built-in) when themeID is 0.
func (s *EditorSessions) Open(ctx context.Context, userID, themeID int64, mode models.Mode) (*Editor, error) {
	if userID <= 0 {
		return nil, ErrMissingOwner
	}
	if mode != models.ModeLight && mode != models.ModeDark {
		return nil, ErrInvalidMode
	}

	var (
		theme *models.Theme
		err   error
	)
	if themeID > 0 {
		theme, err = s.store.GetTheme(ctx, userID, themeID)
	} else {
		theme, err = s.store.GetUserActiveTheme(ctx, userID)
		if err == nil && theme == nil {
			theme = s.store.DefaultBuiltIn()
		}
	}
	if err != nil {
		return nil, err
	}
	if theme == nil {
		return nil, ErrThemeNotFound
	}

	editor := &Editor{
		id:       uuid.NewString(),
		userID:   userID,
		store:    s.store,
		mode:     mode,
		draft:    theme,
		lastUsed: s.now(),
	}

	s.mu.Lock()
	s.sessions[editor.id] = editor
	s.mu.Unlock()

	log.Ctx(ctx).Debug().
		Str("session_id", editor.id).
		Int64("user_id", userID).
		Int64("theme_id", theme.ID).
		Msg("Opened theme editor")
	return editor, nil
}

// Get returns the user's session and marks it used.
func (s *EditorSessions) Get(id string, userID int64) (*Editor, error) {
	s.mu.Lock()
	editor, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok || editor.userID != userID {
		return nil, ErrSessionNotFound
	}
	editor.touch(s.now())
	return editor, nil
}

// Discard drops the session and its unsaved draft.
func (s *EditorSessions) Discard(id string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	editor, ok := s.sessions[id]
	if !ok || editor.userID != userID {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Sweep discards sessions idle for longer than the TTL and returns how many
// were dropped.
func (s *EditorSessions) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, editor := range s.sessions {
		if now.Sub(editor.lastUse()) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *EditorSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Editor holds one in-memory draft. Readers get resolved colors; the raw
// record only leaves through Draft as a copy.
type Editor struct {
	id     string
	userID int64
	store  *Store

	mu       sync.Mutex
	mode     models.Mode
	draft    *models.Theme
	dirty    bool
	lastUsed time.Time
}

// EditorState is the reader-facing view of a session.
type EditorState struct {
	SessionID string          `json:"sessionId"`
	ThemeID   int64           `json:"themeId"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	Mode      models.Mode     `json:"mode"`
	IsBuiltIn bool            `json:"isBuiltIn"`
	Dirty     bool            `json:"dirty"`
	Colors    models.ColorSet `json:"colors"`
}

func (e *Editor) ID() string {
	return e.id
}

func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EditorState{
		SessionID: e.id,
		ThemeID:   e.draft.ID,
		Slug:      e.draft.Slug,
		Name:      e.draft.Name,
		Mode:      e.mode,
		IsBuiltIn: e.draft.IsBuiltIn,
		Dirty:     e.dirty,
		Colors:    e.draft.ResolvedColors(e.mode),
	}
}

// Draft returns a copy of the current draft.
func (e *Editor) Draft() *models.Theme {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Clone()
}

func (e *Editor) Mode() models.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Color resolves token for the session's mode.
func (e *Editor) Color(token models.Token) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.ResolveColor(e.draft, token, e.mode)
}

func (e *Editor) Colors() models.ColorSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.ResolvedColors(e.mode)
}

func (e *Editor) SetMode(mode models.Mode) error {
	if mode != models.ModeLight && mode != models.ModeDark {
		return ErrInvalidMode
	}
	e.mu.Lock()
	e.mode = mode
	e.mu.Unlock()
	return nil
}

// ApplyEdit routes updates through the fork rules in the session's mode. The
// first edit of a built-in swaps the draft for a new fork.
func (e *Editor) ApplyEdit(ctx context.Context, updates map[string]string) error {
	return e.ApplyEditInMode(ctx, "", updates)
}

// ApplyEditInMode is ApplyEdit in mode. The session switches to mode only
// when the edit is accepted; an empty mode keeps the current one.
func (e *Editor) ApplyEditInMode(ctx context.Context, mode models.Mode, updates map[string]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if mode == "" {
		mode = e.mode
	}
	if mode != models.ModeLight && mode != models.ModeDark {
		return ErrInvalidMode
	}

	forking := e.draft.IsBuiltIn && e.draft.ParentThemeID == nil
	var existing []models.Theme
	if forking {
		var err error
		existing, err = e.store.ListUserThemes(ctx, e.userID)
		if err != nil {
			return err
		}
	}

	next, err := ApplyEdit(e.draft, updates, mode, e.userID, existing)
	if err != nil {
		return err
	}
	if forking && next != e.draft {
		if next, err = e.claimForkSlug(ctx, next, updates, mode, existing); err != nil {
			return err
		}
		log.Ctx(ctx).Info().
			Int64("user_id", e.userID).
			Str("parent_slug", e.draft.Slug).
			Str("slug", next.Slug).
			Msg("Forked built-in theme")
	}
	e.draft = next
	e.mode = mode
	if len(updates) > 0 {
		e.dirty = true
	}
	return nil
}

// claimForkSlug re-derives fork until its slug is unused by any stored theme,
// including rows owned by other users. e.mu must be held.
func (e *Editor) claimForkSlug(ctx context.Context, fork *models.Theme, updates map[string]string, mode models.Mode, existing []models.Theme) (*models.Theme, error) {
	for range maxForkSlugAttempts {
		taken, err := e.store.slugInUse(ctx, fork.Slug)
		if err != nil {
			return nil, err
		}
		if !taken {
			return fork, nil
		}
		// A slug-only entry bumps the index without counting as a fork.
		existing = append(existing, models.Theme{Slug: fork.Slug})
		if fork, err = ApplyEdit(e.draft, updates, mode, e.userID, existing); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no free slug for a fork of %q", e.draft.Slug)
}

// Save persists the draft. On failure the draft stays as it was so the user
// can keep editing or retry; on success the draft adopts the stored identity.
func (e *Editor) Save(ctx context.Context) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft.IsBuiltIn {
		return 0, ErrBuiltInReadOnly
	}
	themeID, err := e.store.ApplyCustomTheme(ctx, e.userID, e.draft)
	if err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Str("session_id", e.id).
			Int64("user_id", e.userID).
			Msg("Failed to save theme draft")
		return 0, err
	}

	if saved, err := e.store.GetTheme(ctx, e.userID, themeID); err == nil {
		e.draft = saved
	} else {
		e.draft.ID = themeID
	}
	e.dirty = false
	return themeID, nil
}

// Select makes themeID the active theme and loads it as the new draft,
// dropping unsaved edits.
func (e *Editor) Select(ctx context.Context, themeID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.SelectTheme(ctx, e.userID, themeID); err != nil {
		return err
	}
	theme, err := e.store.GetTheme(ctx, e.userID, themeID)
	if err != nil {
		return err
	}
	e.draft = theme
	e.dirty = false
	return nil
}

func (e *Editor) touch(now time.Time) {
	e.mu.Lock()
	e.lastUsed = now
	e.mu.Unlock()
}

func (e *Editor) lastUse() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastUsed
}
