// Package validation implements the complaint validation engine: the
// role-conditional rules that decide whether a submission is well-formed,
// and the normalization applied before a record is persisted.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/campuskit/complaintbox/internal/models"
)

// FieldError is a single validation violation tagged with the offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the full set of violations for one submission. Validation never
// fails fast: every violated rule contributes an entry.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// Departments is the fixed department vocabulary.
var Departments = []string{
	"CSE", "ECE", "ME", "CE", "IT", "EEE",
	"Civil", "Chemical", "Aerospace", "Biotech", "Management", "Humanities",
}

// Years is the student year vocabulary. Faculty submissions must not carry one.
var Years = []string{"1st Year", "2nd Year", "3rd Year", "4th Year"}

// Category vocabularies differ per role; they overlap but are not equal.
var (
	StudentCategories = []string{"Infrastructure", "Subject", "Syllabus", "Events", "Clubs", "Others"}
	FacultyCategories = []string{"Students", "Infrastructure", "Syllabus", "Events", "Administration", "Others"}
)

const (
	TitleMinLen       = 5
	TitleMaxLen       = 200
	DescriptionMinLen = 10
	DescriptionMaxLen = 2000
	NameMaxLen        = 100
	ResolutionMaxLen  = 1000
)

// fileURLPattern is the allow-list for stored attachment references:
// uploads-relative path, safe name characters, document/image extensions only.
var fileURLPattern = regexp.MustCompile(`(?i)^/uploads/[a-z0-9_-]+\.(jpg|jpeg|png|gif|pdf|doc|docx|txt)$`)

// Submission is the raw input to ValidateSubmission. All fields arrive as
// user-supplied strings; FileURLs are references already produced by the
// file store.
type Submission struct {
	UserType    string
	Name        string
	Department  string
	Year        string
	Category    string
	Title       string
	Description string
	FileURLs    []string
}

// ValidateSubmission checks a submission against every rule, in a fixed order,
// collecting all violations. On success it returns the normalized submission:
// every string trimmed, ready for persistence with status defaulted to pending
// by the caller.
func ValidateSubmission(in Submission) (Submission, Errors) {
	out := Submission{
		UserType:    strings.TrimSpace(in.UserType),
		Name:        strings.TrimSpace(in.Name),
		Department:  strings.TrimSpace(in.Department),
		Year:        strings.TrimSpace(in.Year),
		Category:    strings.TrimSpace(in.Category),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
	}
	for _, u := range in.FileURLs {
		out.FileURLs = append(out.FileURLs, strings.TrimSpace(u))
	}

	var errs Errors

	validRole := out.UserType == models.UserTypeStudent || out.UserType == models.UserTypeFaculty
	if !validRole {
		errs = append(errs, FieldError{"userType", "userType must be student or faculty"})
	}

	if !contains(Departments, out.Department) {
		errs = append(errs, FieldError{"department", "invalid department"})
	}

	switch out.UserType {
	case models.UserTypeStudent:
		if out.Year == "" {
			errs = append(errs, FieldError{"year", "year is required for students"})
		} else if !contains(Years, out.Year) {
			errs = append(errs, FieldError{"year", "invalid year"})
		}
	case models.UserTypeFaculty:
		if out.Year != "" {
			errs = append(errs, FieldError{"year", "year is not allowed for faculty"})
		}
	}

	if out.UserType == models.UserTypeFaculty && out.Name == "" {
		errs = append(errs, FieldError{"name", "name is required for faculty"})
	}
	if utf8.RuneCountInString(out.Name) > NameMaxLen {
		errs = append(errs, FieldError{"name", "name must be at most 100 characters"})
	}

	if validRole {
		allowed := StudentCategories
		if out.UserType == models.UserTypeFaculty {
			allowed = FacultyCategories
		}
		if !contains(allowed, out.Category) {
			errs = append(errs, FieldError{"category", "invalid category for the selected user type"})
		}
	}

	if n := utf8.RuneCountInString(out.Title); n < TitleMinLen || n > TitleMaxLen {
		errs = append(errs, FieldError{"title", "title must be 5-200 characters"})
	}
	if n := utf8.RuneCountInString(out.Description); n < DescriptionMinLen || n > DescriptionMaxLen {
		errs = append(errs, FieldError{"description", "description must be 10-2000 characters"})
	}

	for _, u := range out.FileURLs {
		if !fileURLPattern.MatchString(u) {
			errs = append(errs, FieldError{"fileUrls", "invalid file reference: " + u})
			break
		}
	}

	if len(errs) > 0 {
		return Submission{}, errs
	}
	return out, nil
}

// ValidFileURL reports whether ref matches the attachment allow-list pattern.
func ValidFileURL(ref string) bool {
	return fileURLPattern.MatchString(ref)
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
