package core

import (
	"strconv"
	"strings"
	"time"
)

// Dialect captures the SQL differences between the supported databases.
// Both dialects use numbered placeholders so a compiled argument may be
// referenced more than once.
type Dialect struct {
	name        string
	placeholder string // "$" or "?"
	likeOp      string // operator for case-insensitive substring matching
	likeEscape  string // appended after every LIKE pattern
	textTimes   bool   // timestamps are stored as fixed-width UTC text
}

var (
	// DialectPostgres targets PostgreSQL through pgx.
	DialectPostgres = Dialect{name: "postgres", placeholder: "$", likeOp: "ILIKE"}

	// DialectSQLite targets SQLite through modernc.org/sqlite. LIKE folds
	// ASCII case only.
	DialectSQLite = Dialect{name: "sqlite", placeholder: "?", likeOp: "LIKE", likeEscape: ` ESCAPE '\'`, textTimes: true}
)

// sqliteTimeLayout sorts lexicographically in chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// Name returns the dialect identifier ("postgres" or "sqlite").
func (d Dialect) Name() string { return d.name }

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	return d.placeholder + strconv.Itoa(n)
}

// Like returns the case-insensitive matching operator.
func (d Dialect) Like() string { return d.likeOp }

// LikeEscape returns the ESCAPE clause that must follow a LIKE pattern, if any.
func (d Dialect) LikeEscape() string { return d.likeEscape }

// Rebind rewrites positional '?' markers into the dialect's numbered form.
// Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d.placeholder == "?" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TimeArg converts t to the value bound for a timestamp column.
func (d Dialect) TimeArg(t time.Time) any {
	if d.textTimes {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t.UTC()
}

// ParseStoredTime decodes a timestamp read back from storage.
func ParseStoredTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case string:
		return parseStoredTimeString(t)
	case []byte:
		return parseStoredTimeString(string(t))
	case int64:
		return time.Unix(t, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

func parseStoredTimeString(s string) (time.Time, bool) {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// escapeLike escapes LIKE wildcards so the term matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
