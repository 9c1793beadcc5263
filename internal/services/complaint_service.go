package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campuskit/complaintbox/internal/dto"
	"github.com/campuskit/complaintbox/internal/models"
	"github.com/campuskit/complaintbox/internal/validation"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrIDConflict        = errors.New("could not allocate a unique complaint ID")
)

// maxIDRetries bounds regenerate-and-retry on complaint ID collision.
const maxIDRetries = 3

// ComplaintService owns the complaint lifecycle: validated creation with
// identifier assignment, lookup, filtered listing, status transitions,
// deletion, and the dashboard analytics rollup.
type ComplaintService struct {
	db *gorm.DB
}

func NewComplaintService(db *gorm.DB) *ComplaintService {
	return &ComplaintService{db: db}
}

// Submit validates the submission and persists it with a freshly assigned
// complaint ID and status pending. On a duplicate-ID insert the ID is
// regenerated and the insert retried a bounded number of times. A rejected
// submission never leaves a partial record behind.
func (s *ComplaintService) Submit(in validation.Submission) (*models.Complaint, error) {
	normalized, verrs := validation.ValidateSubmission(in)
	if verrs != nil {
		return nil, verrs
	}

	var fileURLs datatypes.JSON
	if len(normalized.FileURLs) > 0 {
		b, err := json.Marshal(normalized.FileURLs)
		if err != nil {
			return nil, fmt.Errorf("failed to encode file references: %w", err)
		}
		fileURLs = datatypes.JSON(b)
	}

	now := time.Now().UTC()
	complaint := &models.Complaint{
		ID:          uuid.New(),
		UserType:    normalized.UserType,
		Name:        normalized.Name,
		Department:  normalized.Department,
		Year:        normalized.Year,
		Category:    normalized.Category,
		Title:       normalized.Title,
		Description: normalized.Description,
		FileURLs:    fileURLs,
		Status:      models.StatusPending,
		SubmittedAt: now,
	}

	for attempt := 0; attempt <= maxIDRetries; attempt++ {
		complaint.ComplaintID = NewComplaintID()
		err := s.db.Create(complaint).Error
		if err == nil {
			return complaint, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create complaint: %w", err)
		}
		slog.Warn("complaint ID collision, regenerating",
			"complaint_id", complaint.ComplaintID, "attempt", attempt+1)
	}

	return nil, ErrIDConflict
}

// GetByComplaintID looks up a complaint by its tracking identifier.
func (s *ComplaintService) GetByComplaintID(complaintID string) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := s.db.Where("complaint_id = ?", complaintID).First(&complaint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, err
	}
	return &complaint, nil
}

// List returns one page of complaints matching the normalized filters plus
// the total match count.
func (s *ComplaintService) List(f validation.ListFilters) ([]models.Complaint, int64, error) {
	var complaints []models.Complaint
	var total int64

	query := s.db.Model(&models.Complaint{}).Scopes(withFilters(f))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	err := query.Order("submitted_at DESC").
		Offset(offset).
		Limit(f.Limit).
		Find(&complaints).Error
	if err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}

// ListForExport returns every complaint matching the filters, unpaged,
// oldest first, for CSV rendering.
func (s *ComplaintService) ListForExport(f validation.ListFilters) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.db.Scopes(withFilters(f)).
		Order("submitted_at ASC").
		Find(&complaints).Error
	return complaints, err
}

// UpdateStatus performs an admin status transition. Any status may be set
// from any other; only status, resolution note (when supplied) and updated_at
// are touched.
func (s *ComplaintService) UpdateStatus(complaintID, status string, resolutionNote *string) (*models.Complaint, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if resolutionNote != nil {
		updates["resolution_note"] = *resolutionNote
	}

	result := s.db.Model(&models.Complaint{}).
		Where("complaint_id = ?", complaintID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrComplaintNotFound
	}

	return s.GetByComplaintID(complaintID)
}

// Delete removes a complaint by tracking identifier.
func (s *ComplaintService) Delete(complaintID string) error {
	result := s.db.Where("complaint_id = ?", complaintID).Delete(&models.Complaint{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrComplaintNotFound
	}
	return nil
}

// Analytics computes the dashboard summary: totals per status, per category,
// per department, per role, and the submission trend over the last six months.
func (s *ComplaintService) Analytics() (*dto.AnalyticsResponse, error) {
	resp := &dto.AnalyticsResponse{}

	statusCounts, err := s.groupCount("status")
	if err != nil {
		return nil, err
	}
	for _, b := range statusCounts {
		resp.Summary.Total += b.Count
		switch b.Key {
		case models.StatusPending:
			resp.Summary.Pending = b.Count
		case models.StatusInProgress:
			resp.Summary.InProgress = b.Count
		case models.StatusResolved:
			resp.Summary.Resolved = b.Count
		case models.StatusRejected:
			resp.Summary.Rejected = b.Count
		}
	}

	if resp.ByCategory, err = s.groupCount("category"); err != nil {
		return nil, err
	}
	if resp.ByDepartment, err = s.groupCount("department"); err != nil {
		return nil, err
	}
	if resp.ByRole, err = s.groupCount("user_type"); err != nil {
		return nil, err
	}

	trend, err := s.monthlyTrend(6)
	if err != nil {
		return nil, err
	}
	resp.MonthlyTrend = trend

	return resp, nil
}

func (s *ComplaintService) groupCount(column string) ([]dto.BucketCount, error) {
	var rows []struct {
		Key   string
		Count int64
	}
	err := s.db.Model(&models.Complaint{}).
		Select(column + " AS key, count(*) AS count").
		Group(column).
		Order("count DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]dto.BucketCount, len(rows))
	for i, r := range rows {
		buckets[i] = dto.BucketCount{Key: r.Key, Count: r.Count}
	}
	return buckets, nil
}

// monthlyTrend buckets submission timestamps in Go rather than SQL so the
// query stays portable across the Postgres and SQLite dialects.
func (s *ComplaintService) monthlyTrend(months int) ([]dto.MonthlyCount, error) {
	cutoff := time.Now().UTC().AddDate(0, -months, 0)

	var stamps []time.Time
	err := s.db.Model(&models.Complaint{}).
		Where("submitted_at >= ?", cutoff).
		Order("submitted_at ASC").
		Pluck("submitted_at", &stamps).Error
	if err != nil {
		return nil, err
	}

	type bucket struct{ year, month int }
	counts := make(map[bucket]int64)
	var order []bucket
	for _, ts := range stamps {
		b := bucket{ts.UTC().Year(), int(ts.UTC().Month())}
		if _, seen := counts[b]; !seen {
			order = append(order, b)
		}
		counts[b]++
	}

	trend := make([]dto.MonthlyCount, len(order))
	for i, b := range order {
		trend[i] = dto.MonthlyCount{Year: b.year, Month: b.month, Count: counts[b]}
	}
	return trend, nil
}

// withFilters is a GORM scope applying the normalized list filters. Empty
// fields impose no constraint.
func withFilters(f validation.ListFilters) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Category != "" {
			db = db.Where("category = ?", f.Category)
		}
		if f.Department != "" {
			db = db.Where("department = ?", f.Department)
		}
		return db
	}
}
