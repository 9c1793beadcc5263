package dto

import (
	"github.com/campuskit/complaintbox/internal/models"
	"github.com/campuskit/complaintbox/internal/validation"
)

// SubmitComplaintRequest carries the multipart form fields of a submission.
// Attachments travel alongside as multipart files, not in this struct.
type SubmitComplaintRequest struct {
	UserType    string `json:"userType" form:"userType"`
	Name        string `json:"name" form:"name"`
	Department  string `json:"department" form:"department"`
	Year        string `json:"year" form:"year"`
	Category    string `json:"category" form:"category"`
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

type SubmitComplaintResponse struct {
	Message     string            `json:"message"`
	ComplaintID string            `json:"complaintId"`
	Data        *models.Complaint `json:"data"`
}

// UpdateStatusRequest mutates status, and resolutionNote when supplied.
// A nil ResolutionNote leaves the stored note untouched.
type UpdateStatusRequest struct {
	Status         string  `json:"status" validate:"required"`
	ResolutionNote *string `json:"resolutionNote" validate:"omitempty,max=1000"`
}

type UpdateStatusResponse struct {
	Message   string            `json:"message"`
	Complaint *models.Complaint `json:"complaint"`
}

// ListComplaintsResponse mirrors the dashboard contract: records plus
// pagination derived from the total count.
type ListComplaintsResponse struct {
	Complaints  []models.Complaint `json:"complaints"`
	Total       int64              `json:"total"`
	TotalPages  int64              `json:"totalPages"`
	CurrentPage int                `json:"currentPage"`
}

// ValidationErrorResponse is returned when a submission or filter request is
// rejected; Errors always carries the full violation list.
type ValidationErrorResponse struct {
	Error   bool              `json:"error"`
	Message string            `json:"message"`
	Errors  validation.Errors `json:"errors"`
}

// AnalyticsResponse is the admin dashboard summary.
type AnalyticsResponse struct {
	Summary      StatusSummary  `json:"summary"`
	ByCategory   []BucketCount  `json:"byCategory"`
	ByDepartment []BucketCount  `json:"byDepartment"`
	ByRole       []BucketCount  `json:"byRole"`
	MonthlyTrend []MonthlyCount `json:"monthlyTrend"`
}

type StatusSummary struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Resolved   int64 `json:"resolved"`
	Rejected   int64 `json:"rejected"`
}

type BucketCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type MonthlyCount struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}
