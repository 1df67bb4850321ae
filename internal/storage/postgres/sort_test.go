package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderClause(t *testing.T) {
	tests := []struct {
		name       string
		sortBy     string
		descending bool
		want       string
	}{
		{name: "known column", sortBy: "title", want: " ORDER BY i.title ASC"},
		{name: "descending", sortBy: "title", descending: true, want: " ORDER BY i.title DESC"},
		{name: "case and separator folding", sortBy: "Due_Date", want: " ORDER BY i.due_date ASC"},
		{name: "priority uses rank", sortBy: "priority", want: " ORDER BY " + priorityRankExpr + " ASC"},
		{name: "status uses rank", sortBy: "status", descending: true, want: " ORDER BY " + statusRankExpr + " DESC"},
		{name: "unknown key falls back", sortBy: "nope", descending: true, want: " ORDER BY i.created_at ASC"},
		{name: "empty key falls back", sortBy: "", want: " ORDER BY i.created_at ASC"},
		{name: "injection attempt falls back", sortBy: "title; DROP TABLE todo_items", want: " ORDER BY i.created_at ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orderClause(itemSortColumns, tt.sortBy, tt.descending, "i.created_at")
			assert.Equal(t, tt.want, got)
		})
	}
}
