package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/campuskit/complaintbox/internal/dto"
	"github.com/campuskit/complaintbox/internal/services"
	"github.com/campuskit/complaintbox/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type ComplaintHandler struct {
	complaintService *services.ComplaintService
	fileStore        *services.FileStore
	maxUploads       int
}

func NewComplaintHandler(complaintService *services.ComplaintService, fileStore *services.FileStore, maxUploads int) *ComplaintHandler {
	return &ComplaintHandler{
		complaintService: complaintService,
		fileStore:        fileStore,
		maxUploads:       maxUploads,
	}
}

// Submit accepts a multipart complaint submission: form fields plus optional
// attachments. Attachments are stored first so their references can be
// validated with the rest of the record; if validation rejects the submission
// the stored files are removed again and no partial record survives.
func (h *ComplaintHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	fileURLs, verrs, err := h.storeAttachments(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to store attachments",
		})
	}
	if verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
			Error: true, Message: "Validation failed", Errors: verrs,
		})
	}

	complaint, err := h.complaintService.Submit(validation.Submission{
		UserType:    req.UserType,
		Name:        req.Name,
		Department:  req.Department,
		Year:        req.Year,
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		FileURLs:    fileURLs,
	})
	if err != nil {
		for _, ref := range fileURLs {
			h.fileStore.Remove(ref)
		}
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
				Error: true, Message: "Validation failed", Errors: fieldErrs,
			})
		}
		if errors.Is(err, services.ErrIDConflict) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Could not assign a complaint ID, please retry",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to submit complaint",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SubmitComplaintResponse{
		Message:     "Complaint submitted successfully",
		ComplaintID: complaint.ComplaintID,
		Data:        complaint,
	})
}

func (h *ComplaintHandler) storeAttachments(c *fiber.Ctx) ([]string, validation.Errors, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		// JSON submissions without attachments are fine.
		return nil, nil, nil
	}

	files := form.File["files"]
	if len(files) == 0 {
		return nil, nil, nil
	}
	if len(files) > h.maxUploads {
		return nil, validation.Errors{{Field: "files", Message: "too many attachments"}}, nil
	}

	var refs []string
	for _, fh := range files {
		ref, err := h.fileStore.Save(fh)
		if err != nil {
			for _, r := range refs {
				h.fileStore.Remove(r)
			}
			if errors.Is(err, services.ErrFileType) || errors.Is(err, services.ErrFileTooLarge) {
				return nil, validation.Errors{{Field: "files", Message: err.Error() + ": " + fh.Filename}}, nil
			}
			return nil, nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil, nil
}

// GetByID is the public tracking endpoint.
func (h *ComplaintHandler) GetByID(c *fiber.Ctx) error {
	complaint, err := h.complaintService.GetByComplaintID(c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrComplaintNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Complaint not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch complaint",
		})
	}
	return c.JSON(complaint)
}

func (h *ComplaintHandler) List(c *fiber.Ctx) error {
	filters, verrs := validation.NormalizeListQuery(
		c.Query("status"), c.Query("category"), c.Query("department"),
		c.Query("page"), c.Query("limit"),
	)
	if verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
			Error: true, Message: "Invalid filters", Errors: verrs,
		})
	}

	complaints, total, err := h.complaintService.List(filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch complaints",
		})
	}

	return c.JSON(dto.ListComplaintsResponse{
		Complaints:  complaints,
		Total:       total,
		TotalPages:  (total + int64(filters.Limit) - 1) / int64(filters.Limit),
		CurrentPage: filters.Page,
	})
}

func (h *ComplaintHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Status is required",
		})
	}

	complaint, err := h.complaintService.UpdateStatus(c.Params("id"), req.Status, req.ResolutionNote)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid status value",
			})
		}
		if errors.Is(err, services.ErrComplaintNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Complaint not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update complaint",
		})
	}

	return c.JSON(dto.UpdateStatusResponse{
		Message:   "Complaint updated successfully",
		Complaint: complaint,
	})
}

func (h *ComplaintHandler) Delete(c *fiber.Ctx) error {
	if err := h.complaintService.Delete(c.Params("id")); err != nil {
		if errors.Is(err, services.ErrComplaintNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Complaint not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete complaint",
		})
	}
	return c.JSON(fiber.Map{"message": "Complaint deleted successfully"})
}

func (h *ComplaintHandler) Analytics(c *fiber.Ctx) error {
	data, err := h.complaintService.Analytics()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute analytics",
		})
	}
	return c.JSON(fiber.Map{"message": "OK", "data": data})
}

// ExportCSV streams the filtered complaint list as a CSV download.
func (h *ComplaintHandler) ExportCSV(c *fiber.Ctx) error {
	filters, verrs := validation.NormalizeListQuery(
		c.Query("status"), c.Query("category"), c.Query("department"), "", "",
	)
	if verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
			Error: true, Message: "Invalid filters", Errors: verrs,
		})
	}

	complaints, err := h.complaintService.ListForExport(filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to export complaints",
		})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{
		"Complaint ID", "User Type", "Name", "Department", "Year",
		"Category", "Title", "Description", "Status", "Resolution Note",
		"Attachments", "Submitted At",
	})
	for _, cm := range complaints {
		var urls []string
		if len(cm.FileURLs) > 0 {
			_ = json.Unmarshal(cm.FileURLs, &urls)
		}
		_ = w.Write([]string{
			cm.ComplaintID, cm.UserType, cm.Name, cm.Department, cm.Year,
			cm.Category, cm.Title, cm.Description, cm.Status, cm.ResolutionNote,
			strings.Join(urls, " "), cm.SubmittedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to render CSV",
		})
	}

	filename := "complaints-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Set("X-Total-Count", strconv.Itoa(len(complaints)))
	return c.Send(buf.Bytes())
}
