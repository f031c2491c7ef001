package dbgen

import (
	"database/sql"
	"fmt"
	"time"
)

// ColorTokens lists the color token column stems in column order. Each stem
// has three nullable columns: color_<stem>, color_<stem>_light, color_<stem>_dark.
var ColorTokens = []string{
	"primary",
	"secondary",
	"accent",
	"base_background",
	"base_foreground",
	"card_background",
	"card_foreground",
	"popover_background",
	"popover_foreground",
	"muted_background",
	"muted_foreground",
	"destructive_background",
	"destructive_foreground",
}

// ColorColumns holds the legacy, light and dark columns of one token.
type ColorColumns struct {
	Base  sql.NullString
	Light sql.NullString
	Dark  sql.NullString
}

// ThemeFields is every writable column of a themes row. Colors is indexed
// like ColorTokens; missing entries are written as NULL.
type ThemeFields struct {
	Slug              string
	Name              string
	Colors            []ColorColumns
	FontSans          sql.NullString
	FontSerif         sql.NullString
	FontMono          sql.NullString
	LetterSpacing     sql.NullFloat64
	Radius            sql.NullString
	HueShift          sql.NullFloat64
	SaturationAdjust  sql.NullFloat64
	LightnessAdjust   sql.NullFloat64
	SpacingScale      sql.NullFloat64
	ShadowStrength    sql.NullString
	SupportsBothModes bool
	IsBuiltIn         bool
	ParentThemeID     sql.NullInt64
	UserID            sql.NullInt64
}

type Theme struct {
	ID int64
	ThemeFields
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserSetting struct {
	UserID       int64
	ThemeID      sql.NullInt64
	WallpaperURL sql.NullString
	UpdatedAt    time.Time
}

// sqliteTime scans timestamps whether the driver hands back time.Time or the
// raw TEXT form (RETURNING columns carry no declared type).
type sqliteTime struct {
	dst *time.Time
}

var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

func (s sqliteTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s.dst = time.Time{}
		return nil
	case time.Time:
		*s.dst = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (s sqliteTime) parse(value string) error {
	for _, layout := range sqliteTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			*s.dst = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", value)
}
