package validation_test

import (
	"testing"

	"github.com/campuskit/complaintbox/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeListQuery_Defaults(t *testing.T) {
	f, errs := validation.NormalizeListQuery("", "", "", "", "")
	require.Nil(t, errs)
	assert.Equal(t, validation.DefaultPage, f.Page)
	assert.Equal(t, validation.DefaultLimit, f.Limit)
	assert.Empty(t, f.Status)
	assert.Empty(t, f.Category)
	assert.Empty(t, f.Department)
}

func TestNormalizeListQuery_ValidFilters(t *testing.T) {
	f, errs := validation.NormalizeListQuery("resolved", "Infrastructure", "CSE", "3", "25")
	require.Nil(t, errs)
	assert.Equal(t, "resolved", f.Status)
	assert.Equal(t, "Infrastructure", f.Category)
	assert.Equal(t, "CSE", f.Department)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 25, f.Limit)
}

func TestNormalizeListQuery_CategoryUnion(t *testing.T) {
	// Both role vocabularies are legal filter values.
	_, errs := validation.NormalizeListQuery("", "Clubs", "", "", "")
	assert.Nil(t, errs)
	_, errs = validation.NormalizeListQuery("", "Administration", "", "", "")
	assert.Nil(t, errs)
	_, errs = validation.NormalizeListQuery("", "Gardening", "", "", "")
	assert.NotNil(t, errs)
}

func TestNormalizeListQuery_Rejections(t *testing.T) {
	tests := []struct {
		name                                      string
		status, category, department, page, limit string
		wantField                                 string
	}{
		{"unknown status", "open", "", "", "", "", "status"},
		{"unknown department", "", "", "Alchemy", "", "", "department"},
		{"page zero", "", "", "", "0", "", "page"},
		{"negative page", "", "", "", "-2", "", "page"},
		{"non-numeric page", "", "", "", "two", "", "page"},
		{"limit zero", "", "", "", "", "0", "limit"},
		{"limit above bound", "", "", "", "", "101", "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := validation.NormalizeListQuery(tt.status, tt.category, tt.department, tt.page, tt.limit)
			require.NotNil(t, errs)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestNormalizeListQuery_LimitBoundary(t *testing.T) {
	f, errs := validation.NormalizeListQuery("", "", "", "", "100")
	require.Nil(t, errs)
	assert.Equal(t, 100, f.Limit)

	f, errs = validation.NormalizeListQuery("", "", "", "", "1")
	require.Nil(t, errs)
	assert.Equal(t, 1, f.Limit)
}
