package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationWithTotalClampsPage(t *testing.T) {
	p := NewPagination(10).WithTotal(100).WithPage(8)
	assert.Equal(t, 8, p.Page)

	p = p.WithTotal(25)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 3, p.Page)

	p = p.WithTotal(0)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 1, p.Page)
}

func TestPaginationWithLimitResetsPage(t *testing.T) {
	p := NewPagination(10).WithTotal(100).WithPage(6)

	p = p.WithLimit(20)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 5, p.TotalPages)
}

func TestPaginationIgnoresDisallowedLimit(t *testing.T) {
	p := NewPagination(10).WithTotal(100).WithPage(4)

	same := p.WithLimit(13)
	assert.Equal(t, p, same)

	assert.Equal(t, DefaultLimit, NewPagination(0).Limit)
}

func TestPaginationOffset(t *testing.T) {
	p := NewPagination(20).WithTotal(90).WithPage(3)
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, PageRequest{Page: 3, Limit: 20}, p.Request())
}

func TestPageWindowListsAllPagesWhenFew(t *testing.T) {
	markers := PageWindow(2, 5)
	assert.Equal(t, []PageMarker{
		{Number: 1},
		{Number: 2, Current: true},
		{Number: 3},
		{Number: 4},
		{Number: 5},
	}, markers)
}

func TestPageWindowCollapsesWithEllipses(t *testing.T) {
	assert.Equal(t, []PageMarker{
		{Number: 1},
		{Ellipsis: true},
		{Number: 4},
		{Number: 5, Current: true},
		{Number: 6},
		{Ellipsis: true},
		{Number: 10},
	}, PageWindow(5, 10))

	assert.Equal(t, []PageMarker{
		{Number: 1, Current: true},
		{Number: 2},
		{Ellipsis: true},
		{Number: 10},
	}, PageWindow(1, 10))

	assert.Equal(t, []PageMarker{
		{Number: 1},
		{Ellipsis: true},
		{Number: 9},
		{Number: 10, Current: true},
	}, PageWindow(10, 10))
}

func TestPageWindowClampsCurrent(t *testing.T) {
	markers := PageWindow(40, 3)
	assert.Len(t, markers, 3)
	assert.True(t, markers[2].Current)

	assert.Equal(t, []PageMarker{{Number: 1, Current: true}}, PageWindow(0, 0))
}
