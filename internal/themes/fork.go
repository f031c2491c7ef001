package themes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codr1/Coursely/internal/color"
	"github.com/codr1/Coursely/internal/models"
)

var ErrInvalidColor = errors.New("color must be in \"H S% L%\" form")

const forkNamePrefix = "Custom "

// ApplyEdit applies updates for mode to current on behalf of ownerUserID.
//
// Each update lands on the mode field and is mirrored into the legacy field.
// The first edit of an unforked built-in never touches it: a private copy
// carrying both resolved color sets is returned instead, named and slugged
// after the owner's existing forks of the same parent. Any other record is
// updated in place and returned as-is.
func ApplyEdit(current *models.Theme, updates map[string]string, mode models.Mode, ownerUserID int64, existing []models.Theme) (*models.Theme, error) {
	if ownerUserID <= 0 {
		return nil, ErrMissingOwner
	}
	if current == nil {
		return nil, ErrThemeNotFound
	}
	if mode != models.ModeLight && mode != models.ModeDark {
		return nil, ErrInvalidMode
	}
	normalized, err := normalizeUpdates(updates)
	if err != nil {
		return nil, err
	}
	if len(normalized) == 0 {
		return current, nil
	}

	if current.IsBuiltIn && current.ParentThemeID == nil {
		fork := newFork(current, ownerUserID, existing)
		applyUpdates(fork, normalized, mode)
		return fork, nil
	}

	if current.IsBuiltIn {
		return nil, ErrBuiltInReadOnly
	}
	if current.UserID != nil && *current.UserID != ownerUserID {
		return nil, ErrNotOwner
	}
	applyUpdates(current, normalized, mode)
	return current, nil
}

func normalizeUpdates(updates map[string]string) (map[models.Token]string, error) {
	normalized := make(map[models.Token]string, len(updates))
	for name, value := range updates {
		token, ok := models.ParseToken(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownToken, name)
		}
		value = strings.TrimSpace(value)
		if !color.IsHSL(value) {
			return nil, fmt.Errorf("%s: %w", token, ErrInvalidColor)
		}
		normalized[token] = color.FormatHSL(color.ParseHSL(value))
	}
	return normalized, nil
}

func applyUpdates(theme *models.Theme, updates map[models.Token]string, mode models.Mode) {
	for token, value := range updates {
		theme.SetVariant(mode, token, value)
		theme.SetLegacy(token, value)
	}
}

func newFork(parent *models.Theme, ownerUserID int64, existing []models.Theme) *models.Theme {
	fork := parent.Clone()

	// A fork carries both complete variant sets, filled through the resolver.
	fork.Light = parent.ResolvedColors(models.ModeLight)
	fork.Dark = parent.ResolvedColors(models.ModeDark)

	var parentID *int64
	if parent.ID > 0 {
		id := parent.ID
		parentID = &id
	}
	owner := ownerUserID

	n := nextForkIndex(parent, parentID, ownerUserID, existing)
	fork.ID = 0
	fork.Name = forkName(parent.Name, n)
	fork.Slug = forkSlug(parent.Slug, ownerUserID, n)
	fork.IsBuiltIn = false
	fork.ParentThemeID = parentID
	fork.UserID = &owner
	fork.SupportsBothModes = true
	fork.CreatedAt = time.Time{}
	fork.UpdatedAt = time.Time{}
	return fork
}

// nextForkIndex is one more than the owner's current forks of parent, bumped
// past any name or slug that is still taken.
func nextForkIndex(parent *models.Theme, parentID *int64, ownerUserID int64, existing []models.Theme) int {
	prefix := forkNamePrefix + parent.Name
	count := 0
	names := make(map[string]bool, len(existing))
	slugs := make(map[string]bool, len(existing))
	for _, theme := range existing {
		names[theme.Name] = true
		slugs[theme.Slug] = true
		if theme.IsBuiltIn || theme.UserID == nil || *theme.UserID != ownerUserID {
			continue
		}
		if !sameID(theme.ParentThemeID, parentID) {
			continue
		}
		if strings.HasPrefix(theme.Name, prefix) {
			count++
		}
	}

	n := count + 1
	for names[forkName(parent.Name, n)] || slugs[forkSlug(parent.Slug, ownerUserID, n)] {
		n++
	}
	return n
}

func forkName(parentName string, n int) string {
	return fmt.Sprintf("%s%s %d", forkNamePrefix, parentName, n)
}

func forkSlug(parentSlug string, ownerUserID int64, n int) string {
	if parentSlug == "" {
		parentSlug = "theme"
	}
	return fmt.Sprintf("%s-custom-%d-%d", parentSlug, ownerUserID, n)
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
