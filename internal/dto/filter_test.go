package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toucanlabs/toucans-api/internal/dto"
)

func TestBaseFilterNormalize(t *testing.T) {
	tests := []struct {
		name       string
		pageNumber int
		pageSize   int
		wantNumber int
		wantSize   int
	}{
		{name: "zero values get defaults", pageNumber: 0, pageSize: 0, wantNumber: 1, wantSize: 10},
		{name: "negative values get defaults", pageNumber: -3, pageSize: -1, wantNumber: 1, wantSize: 10},
		{name: "oversized page is clamped", pageNumber: 2, pageSize: 500, wantNumber: 2, wantSize: 50},
		{name: "valid values pass through", pageNumber: 4, pageSize: 25, wantNumber: 4, wantSize: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := dto.BaseFilter{PageNumber: tt.pageNumber, PageSize: tt.pageSize}
			f.Normalize()
			assert.Equal(t, tt.wantNumber, f.PageNumber)
			assert.Equal(t, tt.wantSize, f.PageSize)
		})
	}
}

func TestBaseFilterOffset(t *testing.T) {
	f := dto.BaseFilter{PageNumber: 3, PageSize: 20}
	assert.Equal(t, 40, f.Offset())
	assert.Equal(t, 20, f.Limit())

	f = dto.BaseFilter{PageNumber: 1, PageSize: 10}
	assert.Equal(t, 0, f.Offset())
}
