package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Coursely/internal/models"
)

// SeedBuiltInThemes inserts any catalog theme whose slug is not yet stored
// and returns the persisted built-ins in catalog order. Existing rows are
// never updated.
func SeedBuiltInThemes(ctx context.Context, database *DB, catalog []models.Theme) ([]models.Theme, error) {
	seeded := make([]models.Theme, 0, len(catalog))
	inserted := int64(0)

	err := database.RunInTx(ctx, func(tx *DB) error {
		for _, theme := range catalog {
			if !theme.IsBuiltIn {
				return fmt.Errorf("catalog theme %q is not marked built-in", theme.Slug)
			}
			n, err := tx.Queries.InsertBuiltInTheme(ctx, theme.DBFields())
			if err != nil {
				return fmt.Errorf("insert built-in theme %q: %w", theme.Slug, err)
			}
			inserted += n

			row, err := tx.Queries.GetThemeBySlug(ctx, theme.Slug)
			if err != nil {
				return fmt.Errorf("load built-in theme %q: %w", theme.Slug, err)
			}
			if !row.IsBuiltIn {
				return fmt.Errorf("slug %q is taken by a custom theme", theme.Slug)
			}
			seeded = append(seeded, models.ThemeFromDB(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Int("catalog", len(catalog)).
		Int64("inserted", inserted).
		Msg("Seeded built-in themes")
	return seeded, nil
}
