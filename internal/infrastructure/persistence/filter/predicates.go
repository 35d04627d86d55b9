package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erp/crm/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Comparison operators for range predicates
const (
	OpGte = ">="
	OpLte = "<="
)

// Date range preset windows
var dateRangeWindows = map[string]time.Duration{
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
	"year":  365 * 24 * time.Hour,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern lowercases value and escapes LIKE wildcards
func likePattern(prefix, value, suffix string) string {
	return prefix + likeEscaper.Replace(strings.ToLower(value)) + suffix
}

// Contains matches a case-insensitive substring of column
func Contains(column string) Predicate {
	return func(db *gorm.DB, value string, _ Env) (*gorm.DB, bool) {
		return db.Where(fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column), likePattern("%", value, "%")), true
	}
}

// StartsWith matches a case-insensitive prefix of column
func StartsWith(column string) Predicate {
	return func(db *gorm.DB, value string, _ Env) (*gorm.DB, bool) {
		return db.Where(fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column), likePattern("", value, "%")), true
	}
}

// Exact matches column exactly
func Exact(column string) Predicate {
	return func(db *gorm.DB, value string, _ Env) (*gorm.DB, bool) {
		return db.Where(fmt.Sprintf("%s = ?", column), value), true
	}
}

// ExactFold matches column exactly, ignoring case
func ExactFold(column string) Predicate {
	return func(db *gorm.DB, value string, _ Env) (*gorm.DB, bool) {
		return db.Where(fmt.Sprintf("LOWER(%s) = ?", column), strings.ToLower(value)), true
	}
}

// AnyContains matches a case-insensitive substring of any of columns
func AnyContains(columns ...string) Predicate {
	return func(db *gorm.DB, value string, _ Env) (*gorm.DB, bool) {
		clauses := make([]string, len(columns))
		args := make([]any, len(columns))
		pattern := likePattern("%", value, "%")
		for i, column := range columns {
			clauses[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column)
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...), true
	}
}

// DecimalCompare compares a decimal column against the value with op
func DecimalCompare(column, op string) Predicate {
	return func(db *gorm.DB, value string, _ Env) (*gorm.DB, bool) {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return db, false
		}
		return db.Where(fmt.Sprintf("%s %s ?", column, op), d), true
	}
}

// IntCompare compares an integer column against the value with op ("=" allowed)
func IntCompare(column, op string) Predicate {
	return func(db *gorm.DB, value string, _ Env) (*gorm.DB, bool) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return db, false
		}
		return db.Where(fmt.Sprintf("%s %s ?", column, op), n), true
	}
}

// TimeCompare compares a timestamp column against the value with op
func TimeCompare(column, op string) Predicate {
	return func(db *gorm.DB, value string, _ Env) (*gorm.DB, bool) {
		t, err := ParseTime(value)
		if err != nil {
			return db, false
		}
		return db.Where(fmt.Sprintf("%s %s ?", column, op), t), true
	}
}

// Bool dispatches on a boolean value. A nil branch leaves the query unchanged.
func Bool(onTrue, onFalse func(db *gorm.DB) *gorm.DB) Predicate {
	return func(db *gorm.DB, value string, _ Env) (*gorm.DB, bool) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return db, false
		}
		branch := onFalse
		if b {
			branch = onTrue
		}
		if branch == nil {
			return db, false
		}
		return branch(db), true
	}
}

// PriceCategory restricts a decimal column to a named price bucket
func PriceCategory(column string) Predicate {
	return func(db *gorm.DB, value string, _ Env) (*gorm.DB, bool) {
		category, ok := catalog.ParsePriceCategory(value)
		if !ok {
			return db, false
		}
		r := category.Range()
		if r.Lower != nil {
			op := ">"
			if r.Lower.Inclusive {
				op = ">="
			}
			db = db.Where(fmt.Sprintf("%s %s ?", column, op), r.Lower.Value)
		}
		if r.Upper != nil {
			op := "<"
			if r.Upper.Inclusive {
				op = "<="
			}
			db = db.Where(fmt.Sprintf("%s %s ?", column, op), r.Upper.Value)
		}
		return db, true
	}
}

// DateRange restricts a timestamp column to a preset window ending at env.Now.
// "today" starts at midnight of the current day.
func DateRange(column string) Predicate {
	return func(db *gorm.DB, value string, env Env) (*gorm.DB, bool) {
		start, ok := DateRangeStart(strings.ToLower(value), env.Now)
		if !ok {
			return db, false
		}
		return db.Where(fmt.Sprintf("%s >= ?", column), start), true
	}
}

// DateRangeStart returns the inclusive start of a date range preset
func DateRangeStart(preset string, now time.Time) (time.Time, bool) {
	if preset == "today" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	}
	window, ok := dateRangeWindows[preset]
	if !ok {
		return time.Time{}, false
	}
	return now.Add(-window), true
}

// ParseIDList parses a comma-separated list of positive integer IDs.
// Any malformed token invalidates the whole list.
func ParseIDList(value string) ([]uint, bool) {
	parts := strings.Split(value, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil || n == 0 {
			return nil, false
		}
		ids = append(ids, uint(n))
	}
	if len(ids) == 0 {
		return nil, false
	}
	return ids, true
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses an RFC 3339 timestamp or a bare date, in UTC
func ParseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}
