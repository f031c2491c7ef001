package themes

import (
	"context"
	"database/sql"
	"sync"

	dbgen "github.com/codr1/Coursely/internal/db/generated"
)

// fakeQueries is an in-memory Queries with per-call failure injection.
type fakeQueries struct {
	mu sync.Mutex

	nextID    int64
	themes    map[int64]dbgen.Theme
	active    map[int64]int64
	wallpaper map[int64]string
	failures  map[string]error
	calls     map[string]int
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{
		nextID:    1000,
		themes:    make(map[int64]dbgen.Theme),
		active:    make(map[int64]int64),
		wallpaper: make(map[int64]string),
		failures:  make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *fakeQueries) fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, method)
		return
	}
	f.failures[method] = err
}

func (f *fakeQueries) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// record must be called with f.mu held.
func (f *fakeQueries) record(method string) error {
	f.calls[method]++
	return f.failures[method]
}

func (f *fakeQueries) GetTheme(ctx context.Context, id int64) (dbgen.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetTheme"); err != nil {
		return dbgen.Theme{}, err
	}
	row, ok := f.themes[id]
	if !ok {
		return dbgen.Theme{}, sql.ErrNoRows
	}
	return row, nil
}

func (f *fakeQueries) GetThemeBySlug(ctx context.Context, slug string) (dbgen.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetThemeBySlug"); err != nil {
		return dbgen.Theme{}, err
	}
	for _, row := range f.themes {
		if row.Slug == slug {
			return row, nil
		}
	}
	return dbgen.Theme{}, sql.ErrNoRows
}

func (f *fakeQueries) ListUserThemes(ctx context.Context, userID int64) ([]dbgen.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListUserThemes"); err != nil {
		return nil, err
	}
	var rows []dbgen.Theme
	for _, row := range f.themes {
		if !row.IsBuiltIn && row.UserID.Valid && row.UserID.Int64 == userID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *fakeQueries) CreateTheme(ctx context.Context, arg dbgen.ThemeFields) (dbgen.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateTheme"); err != nil {
		return dbgen.Theme{}, err
	}
	f.nextID++
	row := dbgen.Theme{ID: f.nextID, ThemeFields: arg}
	f.themes[row.ID] = row
	return row, nil
}

func (f *fakeQueries) UpdateTheme(ctx context.Context, arg dbgen.UpdateThemeParams) (dbgen.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateTheme"); err != nil {
		return dbgen.Theme{}, err
	}
	existing, ok := f.themes[arg.ID]
	if !ok || existing.IsBuiltIn {
		return dbgen.Theme{}, sql.ErrNoRows
	}
	row := dbgen.Theme{ID: arg.ID, ThemeFields: arg.ThemeFields}
	f.themes[row.ID] = row
	return row, nil
}

func (f *fakeQueries) GetActiveThemeID(ctx context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetActiveThemeID"); err != nil {
		return 0, err
	}
	id, ok := f.active[userID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return id, nil
}

func (f *fakeQueries) SelectActiveTheme(ctx context.Context, arg dbgen.SelectActiveThemeParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SelectActiveTheme"); err != nil {
		return 0, err
	}
	f.active[arg.UserID] = arg.ThemeID.Int64
	delete(f.wallpaper, arg.UserID)
	return 1, nil
}

func (f *fakeQueries) LinkActiveTheme(ctx context.Context, arg dbgen.LinkActiveThemeParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("LinkActiveTheme"); err != nil {
		return 0, err
	}
	f.active[arg.UserID] = arg.ThemeID.Int64
	return 1, nil
}

func (f *fakeQueries) GetUserSettings(ctx context.Context, userID int64) (dbgen.UserSetting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetUserSettings"); err != nil {
		return dbgen.UserSetting{}, err
	}
	themeID, hasTheme := f.active[userID]
	url, hasWallpaper := f.wallpaper[userID]
	if !hasTheme && !hasWallpaper {
		return dbgen.UserSetting{}, sql.ErrNoRows
	}
	return dbgen.UserSetting{
		UserID:       userID,
		ThemeID:      sql.NullInt64{Int64: themeID, Valid: hasTheme},
		WallpaperURL: sql.NullString{String: url, Valid: hasWallpaper},
	}, nil
}

func (f *fakeQueries) SetWallpaper(ctx context.Context, arg dbgen.SetWallpaperParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetWallpaper"); err != nil {
		return 0, err
	}
	if arg.WallpaperURL.Valid {
		f.wallpaper[arg.UserID] = arg.WallpaperURL.String
	} else {
		delete(f.wallpaper, arg.UserID)
	}
	return 1, nil
}
