package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagination(t *testing.T) {
	tests := []struct {
		name              string
		page, perPage     int
		total             int
		wantOffset        int
		wantPages         int
		wantPrev, wantNxt bool
	}{
		{name: "empty", page: 1, perPage: 20, total: 0, wantOffset: 0, wantPages: 1},
		{name: "first of many", page: 1, perPage: 5, total: 12, wantOffset: 0, wantPages: 3, wantNxt: true},
		{name: "middle", page: 2, perPage: 5, total: 12, wantOffset: 5, wantPages: 3, wantPrev: true, wantNxt: true},
		{name: "last", page: 3, perPage: 5, total: 12, wantOffset: 10, wantPages: 3, wantPrev: true},
		{name: "page below one", page: -4, perPage: 5, total: 12, wantOffset: 0, wantPages: 3, wantNxt: true},
		{name: "default page size", page: 1, perPage: 0, total: 30, wantOffset: 0, wantPages: 2, wantNxt: true},
		{name: "huge page", page: math.MaxInt, perPage: 20, total: 3, wantOffset: (math.MaxInt/20 - 1) * 20, wantPages: 1, wantPrev: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.perPage)
			p.Total = tt.total
			assert.Equal(t, tt.wantOffset, p.Offset())
			assert.Equal(t, tt.wantPages, p.Pages())
			assert.Equal(t, tt.wantPrev, p.HasPrev())
			assert.Equal(t, tt.wantNxt, p.HasNext())
			assert.Len(t, p.Window(), tt.wantPages)
		})
	}
}

func TestNewPagination_OffsetNeverOverflows(t *testing.T) {
	for _, perPage := range []int{1, 5, 20, 7919} {
		p := NewPagination(math.MaxInt, perPage)
		assert.GreaterOrEqual(t, p.Offset(), 0)
		assert.GreaterOrEqual(t, p.Offset()+p.Limit(), p.Offset(), "offset plus limit must not wrap")
	}
}
