package themes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/sahilm/fuzzy"

	"github.com/codr1/Coursely/internal/db"
	dbgen "github.com/codr1/Coursely/internal/db/generated"
	"github.com/codr1/Coursely/internal/models"
)

const customSlugPrefix = "custom-user-"

// forkSlugPattern matches the slugs ApplyEdit derives; the group is the owner.
var forkSlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*-custom-([0-9]+)-[0-9]+$`)

// Queries is the persistence surface the store needs.
type Queries interface {
	GetTheme(ctx context.Context, id int64) (dbgen.Theme, error)
	GetThemeBySlug(ctx context.Context, slug string) (dbgen.Theme, error)
	ListUserThemes(ctx context.Context, userID int64) ([]dbgen.Theme, error)
	CreateTheme(ctx context.Context, arg dbgen.ThemeFields) (dbgen.Theme, error)
	UpdateTheme(ctx context.Context, arg dbgen.UpdateThemeParams) (dbgen.Theme, error)
	GetActiveThemeID(ctx context.Context, userID int64) (int64, error)
	SelectActiveTheme(ctx context.Context, arg dbgen.SelectActiveThemeParams) (int64, error)
	LinkActiveTheme(ctx context.Context, arg dbgen.LinkActiveThemeParams) (int64, error)
	GetUserSettings(ctx context.Context, userID int64) (dbgen.UserSetting, error)
	SetWallpaper(ctx context.Context, arg dbgen.SetWallpaperParams) (int64, error)
}

// TxRunner runs fn against transaction-bound queries.
type TxRunner func(ctx context.Context, fn func(Queries) error) error

// Store lists, selects and saves themes. Built-ins come from a fixed
// in-process catalog; custom themes live in the database.
type Store struct {
	queries     Queries
	runInTx     TxRunner
	catalog     []models.Theme
	defaultSlug string
	intn        func(n int) int
}

// NewStore builds a store over an already seeded catalog. A nil runInTx runs
// writes directly against queries.
func NewStore(queries Queries, runInTx TxRunner, catalog []models.Theme, defaultSlug string) *Store {
	if runInTx == nil {
		runInTx = func(ctx context.Context, fn func(Queries) error) error {
			return fn(queries)
		}
	}
	return &Store{
		queries:     queries,
		runInTx:     runInTx,
		catalog:     catalog,
		defaultSlug: defaultSlug,
		intn:        rand.IntN,
	}
}

// NewStoreFromDB builds a store whose writes run in database transactions.
func NewStoreFromDB(database *db.DB, catalog []models.Theme, defaultSlug string) *Store {
	return NewStore(database.Queries, func(ctx context.Context, fn func(Queries) error) error {
		return database.RunInTx(ctx, func(tx *db.DB) error {
			return fn(tx.Queries)
		})
	}, catalog, defaultSlug)
}

// LoadStore parses the embedded catalog, seeds it and returns a store.
func LoadStore(ctx context.Context, database *db.DB) (*Store, error) {
	catalog, err := db.ParseThemesFile()
	if err != nil {
		return nil, err
	}
	seeded, err := db.SeedBuiltInThemes(ctx, database, catalog)
	if err != nil {
		return nil, persistErr("seed built-in themes", err)
	}
	return NewStoreFromDB(database, seeded, db.DefaultBuiltInSlug()), nil
}

// ListBuiltIns returns copies of every built-in in catalog order.
func (s *Store) ListBuiltIns() []models.Theme {
	out := make([]models.Theme, 0, len(s.catalog))
	for i := range s.catalog {
		out = append(out, *s.catalog[i].Clone())
	}
	return out
}

func (s *Store) GetBuiltIn(slug string) (*models.Theme, error) {
	for i := range s.catalog {
		if s.catalog[i].Slug == slug {
			return s.catalog[i].Clone(), nil
		}
	}
	return nil, ErrThemeNotFound
}

// RandomBuiltIn draws uniformly over the whole catalog.
func (s *Store) RandomBuiltIn() (*models.Theme, error) {
	if len(s.catalog) == 0 {
		return nil, ErrThemeNotFound
	}
	return s.catalog[s.intn(len(s.catalog))].Clone(), nil
}

// DefaultBuiltIn returns the catalog default, or nil for an empty catalog.
func (s *Store) DefaultBuiltIn() *models.Theme {
	if theme, err := s.GetBuiltIn(s.defaultSlug); err == nil {
		return theme
	}
	if len(s.catalog) > 0 {
		return s.catalog[0].Clone()
	}
	return nil
}

func (s *Store) builtInByID(id int64) *models.Theme {
	for i := range s.catalog {
		if s.catalog[i].ID == id {
			return s.catalog[i].Clone()
		}
	}
	return nil
}

func (s *Store) ListUserThemes(ctx context.Context, userID int64) ([]models.Theme, error) {
	if userID <= 0 {
		return nil, ErrMissingOwner
	}
	rows, err := s.queries.ListUserThemes(ctx, userID)
	if err != nil {
		return nil, persistErr("list user themes", err)
	}
	return models.ThemesFromDB(rows), nil
}

// ListThemes returns the built-ins followed by the user's custom themes.
func (s *Store) ListThemes(ctx context.Context, userID int64) ([]models.Theme, error) {
	custom, err := s.ListUserThemes(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append(s.ListBuiltIns(), custom...), nil
}

type themeNames []models.Theme

func (t themeNames) String(i int) string { return t[i].Name }
func (t themeNames) Len() int            { return len(t) }

// Search fuzzy-matches query against the names of every theme visible to
// userID, best match first. An empty query returns ListThemes.
func (s *Store) Search(ctx context.Context, userID int64, query string) ([]models.Theme, error) {
	all, err := s.ListThemes(ctx, userID)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}
	matches := fuzzy.FindFrom(query, themeNames(all))
	out := make([]models.Theme, 0, len(matches))
	for _, match := range matches {
		out = append(out, all[match.Index])
	}
	return out, nil
}

// GetTheme returns a built-in or one of userID's own themes. Other users'
// themes read as not found.
func (s *Store) GetTheme(ctx context.Context, userID, themeID int64) (*models.Theme, error) {
	if userID <= 0 {
		return nil, ErrMissingOwner
	}
	if theme := s.builtInByID(themeID); theme != nil {
		return theme, nil
	}
	row, err := s.queries.GetTheme(ctx, themeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrThemeNotFound
		}
		return nil, persistErr("get theme", err)
	}
	theme := models.ThemeFromDB(row)
	if !theme.IsBuiltIn && (theme.UserID == nil || *theme.UserID != userID) {
		return nil, ErrThemeNotFound
	}
	return &theme, nil
}

// GetUserActiveTheme returns the user's selected theme, or nil when nothing
// is selected or the selection is no longer visible.
func (s *Store) GetUserActiveTheme(ctx context.Context, userID int64) (*models.Theme, error) {
	if userID <= 0 {
		return nil, ErrMissingOwner
	}
	themeID, err := s.queries.GetActiveThemeID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, persistErr("get active theme", err)
	}
	if themeID <= 0 {
		return nil, nil
	}
	theme, err := s.GetTheme(ctx, userID, themeID)
	if errors.Is(err, ErrThemeNotFound) {
		return nil, nil
	}
	return theme, err
}

// SelectTheme makes themeID the user's active theme and clears any wallpaper
// override.
func (s *Store) SelectTheme(ctx context.Context, userID, themeID int64) error {
	if _, err := s.GetTheme(ctx, userID, themeID); err != nil {
		return err
	}
	_, err := s.queries.SelectActiveTheme(ctx, dbgen.SelectActiveThemeParams{
		UserID:  userID,
		ThemeID: sql.NullInt64{Int64: themeID, Valid: true},
	})
	if err != nil {
		return persistErr("select theme", err)
	}
	log.Ctx(ctx).Info().
		Int64("user_id", userID).
		Int64("theme_id", themeID).
		Msg("Selected theme")
	return nil
}

// SetWallpaper stores a background image override for userID. An empty url
// clears it. The override lasts until the next SelectTheme.
func (s *Store) SetWallpaper(ctx context.Context, userID int64, url string) error {
	if userID <= 0 {
		return ErrMissingOwner
	}
	_, err := s.queries.SetWallpaper(ctx, dbgen.SetWallpaperParams{
		UserID:       userID,
		WallpaperURL: sql.NullString{String: url, Valid: url != ""},
	})
	if err != nil {
		return persistErr("set wallpaper", err)
	}
	return nil
}

// Wallpaper returns userID's background image override, or "" when none is set.
func (s *Store) Wallpaper(ctx context.Context, userID int64) (string, error) {
	if userID <= 0 {
		return "", ErrMissingOwner
	}
	settings, err := s.queries.GetUserSettings(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", persistErr("get user settings", err)
	}
	return settings.WallpaperURL.String, nil
}

// ApplyCustomTheme upserts draft as one of userID's themes and links it as
// the active theme. The row is keyed by the draft's slug, or by the user's
// default custom slug when the draft has none. The draft itself is not
// modified. A new row must take a slug in the user's own namespace.
func (s *Store) ApplyCustomTheme(ctx context.Context, userID int64, draft *models.Theme) (int64, error) {
	if userID <= 0 {
		return 0, ErrMissingOwner
	}
	if draft == nil {
		return 0, ErrThemeNotFound
	}
	if draft.IsBuiltIn {
		return 0, ErrBuiltInReadOnly
	}

	record := draft.Clone()
	owner := userID
	record.UserID = &owner
	if record.Slug == "" {
		record.Slug = customSlugPrefix + strconv.FormatInt(userID, 10)
	}
	fillDefaults(record)
	if err := record.Validate(); err != nil {
		return 0, ValidationErrors{{Field: "theme", Message: err.Error()}}
	}

	var themeID int64
	err := s.runInTx(ctx, func(q Queries) error {
		existing, err := q.GetThemeBySlug(ctx, record.Slug)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if !ownsSlug(userID, record.Slug) {
				return ValidationErrors{{
					Field:   "slug",
					Message: fmt.Sprintf("must be %s%d or <theme>-custom-%d-<n>", customSlugPrefix, userID, userID),
				}}
			}
			created, err := q.CreateTheme(ctx, record.DBFields())
			if err != nil {
				return persistErr("create theme", err)
			}
			themeID = created.ID
		case err != nil:
			return persistErr("find theme by slug", err)
		case existing.IsBuiltIn:
			return ErrBuiltInReadOnly
		case !existing.UserID.Valid || existing.UserID.Int64 != userID:
			return ErrNotOwner
		default:
			updated, err := q.UpdateTheme(ctx, dbgen.UpdateThemeParams{
				ID:          existing.ID,
				ThemeFields: record.DBFields(),
			})
			if err != nil {
				return persistErr("update theme", err)
			}
			themeID = updated.ID
		}

		_, err = q.LinkActiveTheme(ctx, dbgen.LinkActiveThemeParams{
			UserID:  userID,
			ThemeID: sql.NullInt64{Int64: themeID, Valid: true},
		})
		if err != nil {
			return persistErr("link active theme", err)
		}
		return nil
	})
	if err != nil {
		var validationErrs ValidationErrors
		if errors.Is(err, ErrBuiltInReadOnly) || errors.Is(err, ErrNotOwner) || errors.As(err, &validationErrs) {
			return 0, err
		}
		return 0, persistErr("apply custom theme", err)
	}

	log.Ctx(ctx).Info().
		Int64("user_id", userID).
		Int64("theme_id", themeID).
		Str("slug", record.Slug).
		Msg("Saved custom theme")
	return themeID, nil
}

// ownsSlug reports whether a new theme for userID may take slug: the user's
// custom slot or one of the user's own fork slugs.
func ownsSlug(userID int64, slug string) bool {
	id := strconv.FormatInt(userID, 10)
	if slug == customSlugPrefix+id {
		return true
	}
	matches := forkSlugPattern.FindStringSubmatch(slug)
	return matches != nil && matches[1] == id
}

// slugInUse reports whether any stored theme, built-in or custom, has slug.
func (s *Store) slugInUse(ctx context.Context, slug string) (bool, error) {
	_, err := s.queries.GetThemeBySlug(ctx, slug)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, persistErr("find theme by slug", err)
	}
	return true, nil
}

// fillDefaults gives a partial draft the default typography and layout for
// any field it leaves empty.
func fillDefaults(theme *models.Theme) {
	typography := models.DefaultTypography()
	if theme.Typography.Sans == "" {
		theme.Typography.Sans = typography.Sans
	}
	if theme.Typography.Serif == "" {
		theme.Typography.Serif = typography.Serif
	}
	if theme.Typography.Mono == "" {
		theme.Typography.Mono = typography.Mono
	}

	layout := models.DefaultLayout()
	if theme.Layout.Radius == "" {
		theme.Layout.Radius = layout.Radius
	}
	if theme.Layout.SpacingScale == 0 {
		theme.Layout.SpacingScale = layout.SpacingScale
	}
	if theme.Layout.ShadowStrength == "" {
		theme.Layout.ShadowStrength = layout.ShadowStrength
	}
	if theme.Name == "" {
		theme.Name = fmt.Sprintf("Custom Theme %d", *theme.UserID)
	}
}
