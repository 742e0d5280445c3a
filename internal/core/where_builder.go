package core

import "strings"

// WhereBuilder accumulates AND-ed SQL conditions with numbered bind parameters.
type WhereBuilder struct {
	dialect    Dialect
	argIndex   int
	conditions []string
	args       []any
}

// NewWhereBuilder creates an empty builder for the given dialect.
func NewWhereBuilder(d Dialect) *WhereBuilder {
	return &WhereBuilder{dialect: d, argIndex: 1}
}

// Arg registers a bind value and returns its placeholder.
func (wb *WhereBuilder) Arg(v any) string {
	p := wb.dialect.Placeholder(wb.argIndex)
	wb.args = append(wb.args, v)
	wb.argIndex++
	return p
}

// Where appends a raw condition. Placeholders inside it must come from Arg.
func (wb *WhereBuilder) Where(cond string) {
	wb.conditions = append(wb.conditions, cond)
}

// Add adds "col = value". Empty strings and nil values are skipped.
func (wb *WhereBuilder) Add(col string, val any) {
	if isEmptyArg(val) {
		return
	}
	wb.Where(col + " = " + wb.Arg(val))
}

// AddIn adds "col IN (...)". An empty list adds nothing.
func (wb *WhereBuilder) AddIn(col string, vals []string) {
	if len(vals) == 0 {
		return
	}
	wb.Where(col + " IN (" + wb.argList(vals) + ")")
}

// AddTimestampRange adds inclusive bounds on col. Either bound may be nil.
func (wb *WhereBuilder) AddTimestampRange(col string, start, end any) {
	if !isEmptyArg(start) {
		wb.Where(col + " >= " + wb.Arg(start))
	}
	if !isEmptyArg(end) {
		wb.Where(col + " <= " + wb.Arg(end))
	}
}

// AddSearch adds a case-insensitive substring match of query against any of
// cols. The term is bound once and wildcards in it are escaped.
func (wb *WhereBuilder) AddSearch(query string, cols ...string) {
	if query == "" || len(cols) == 0 {
		return
	}
	p := wb.Arg("%" + escapeLike(query) + "%")
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = col + " " + wb.dialect.Like() + " " + p + wb.dialect.LikeEscape()
	}
	wb.Where("(" + strings.Join(parts, " OR ") + ")")
}

// NextArgIndex returns the index the next bind parameter will receive.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// Build returns the " WHERE ..." clause and its arguments, or "" and nil when
// no condition was added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

func (wb *WhereBuilder) argList(vals []string) string {
	ph := make([]string, len(vals))
	for i, v := range vals {
		ph[i] = wb.Arg(v)
	}
	return strings.Join(ph, ", ")
}

func isEmptyArg(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}
