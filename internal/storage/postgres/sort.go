package postgres

import "strings"

// Sort keys resolve through these fixed allow-lists. Caller input never
// reaches an ORDER BY clause: unknown keys fall back to creation-time
// ascending, and the mapped values below are the only expressions ever
// interpolated.

// Priority and status are stored by name; ORDER BY uses their semantic
// rank, not the lexical order of the names.
const (
	priorityRankExpr = "CASE i.priority WHEN 'LOW' THEN 0 WHEN 'MEDIUM' THEN 1 WHEN 'HIGH' THEN 2 WHEN 'CRITICAL' THEN 3 END"
	statusRankExpr   = "CASE i.status WHEN 'NOT_STARTED' THEN 0 WHEN 'IN_PROGRESS' THEN 1 WHEN 'BLOCKED' THEN 2 WHEN 'COMPLETED' THEN 3 WHEN 'CANCELLED' THEN 4 END"
)

var itemSortColumns = map[string]string{
	"title":    "i.title",
	"priority": priorityRankExpr,
	"status":   statusRankExpr,
	"duedate":  "i.due_date",
}

var userSortColumns = map[string]string{
	"email":       "u.email",
	"firstname":   "u.first_name",
	"lastname":    "u.last_name",
	"createdat":   "u.created_at",
	"lastloginat": "u.last_login_at",
}

// normalizeSortKey folds case and separators so "dueDate", "due_date" and
// "duedate" all resolve to the same allow-list entry.
func normalizeSortKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.ReplaceAll(key, "_", "")
}

// orderClause builds an ORDER BY clause from the allow-list. Unrecognized
// or absent sort keys fall back to the default expression ascending.
func orderClause(allowed map[string]string, sortBy string, descending bool, defaultExpr string) string {
	column, ok := allowed[normalizeSortKey(sortBy)]
	if !ok {
		return " ORDER BY " + defaultExpr + " ASC"
	}

	direction := " ASC"
	if descending {
		direction = " DESC"
	}
	return " ORDER BY " + column + direction
}
