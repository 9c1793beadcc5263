package validation

import (
	"strconv"

	"github.com/campuskit/complaintbox/internal/models"
)

// List paging bounds. An absent page/limit falls back to the default; an
// explicit out-of-range value is an error, not silently clamped.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListFilters is the normalized query descriptor handed to the store.
// Empty filter fields mean "no constraint".
type ListFilters struct {
	Status     string
	Category   string
	Department string
	Page       int
	Limit      int
}

// NormalizeListQuery validates raw admin filter parameters. Filter values are
// checked against their vocabularies; the category filter accepts the union of
// the student and faculty vocabularies since the listing spans both roles.
func NormalizeListQuery(status, category, department, page, limit string) (ListFilters, Errors) {
	var errs Errors

	f := ListFilters{
		Status:     status,
		Category:   category,
		Department: department,
		Page:       DefaultPage,
		Limit:      DefaultLimit,
	}

	if status != "" && !models.ValidStatus(status) {
		errs = append(errs, FieldError{"status", "invalid status filter"})
	}
	if category != "" && !contains(StudentCategories, category) && !contains(FacultyCategories, category) {
		errs = append(errs, FieldError{"category", "invalid category filter"})
	}
	if department != "" && !contains(Departments, department) {
		errs = append(errs, FieldError{"department", "invalid department filter"})
	}

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			errs = append(errs, FieldError{"page", "page must be a positive integer"})
		} else {
			f.Page = n
		}
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > MaxLimit {
			errs = append(errs, FieldError{"limit", "limit must be between 1 and 100"})
		} else {
			f.Limit = n
		}
	}

	if len(errs) > 0 {
		return ListFilters{}, errs
	}
	return f, nil
}
