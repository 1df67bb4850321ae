package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toucanlabs/toucans-api/internal/dto"
)

func TestNewPageDerivedFields(t *testing.T) {
	tests := []struct {
		name        string
		totalItems  int
		currentPage int
		pageSize    int
		wantPages   int
		wantNext    bool
		wantPrev    bool
	}{
		{name: "empty set", totalItems: 0, currentPage: 1, pageSize: 10, wantPages: 0, wantNext: false, wantPrev: false},
		{name: "single partial page", totalItems: 3, currentPage: 1, pageSize: 10, wantPages: 1, wantNext: false, wantPrev: false},
		{name: "exact boundary", totalItems: 20, currentPage: 2, pageSize: 10, wantPages: 2, wantNext: false, wantPrev: true},
		{name: "middle page", totalItems: 25, currentPage: 2, pageSize: 10, wantPages: 3, wantNext: true, wantPrev: true},
		{name: "beyond last page", totalItems: 25, currentPage: 9, pageSize: 10, wantPages: 3, wantNext: false, wantPrev: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := dto.NewPage([]string{}, tt.totalItems, tt.currentPage, tt.pageSize)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantNext, page.HasNextPage)
			assert.Equal(t, tt.wantPrev, page.HasPreviousPage)
			assert.Equal(t, tt.totalItems, page.TotalItems)
		})
	}
}

func TestNewPageNilItemsBecomesEmptySlice(t *testing.T) {
	page := dto.NewPage[string](nil, 0, 1, 10)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}
