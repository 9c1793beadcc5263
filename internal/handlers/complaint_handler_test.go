package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/campuskit/complaintbox/internal/config"
	"github.com/campuskit/complaintbox/internal/database"
	"github.com/campuskit/complaintbox/internal/dto"
	"github.com/campuskit/complaintbox/internal/handlers"
	"github.com/campuskit/complaintbox/internal/models"
	"github.com/campuskit/complaintbox/internal/routes"
	"github.com/campuskit/complaintbox/internal/services"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var complaintIDPattern = regexp.MustCompile(`^CMP-\d{4}-\d{8}$`)

// newTestApp wires a full application against an in-memory database, the same
// route tree the server mounts.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Complaint{}, &models.Admin{}, &models.SystemLog{}))

	// The health endpoint pings through the package-level handle.
	database.DB = db
	t.Cleanup(func() { database.DB = nil })

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		AdminUsername: "admin",
		AdminPassword: "admin123",
		UploadDir:     t.TempDir(),
		MaxUploadSize: 5 << 20,
		MaxUploads:    5,
	}

	fileStore, err := services.NewFileStore(cfg.UploadDir, cfg.MaxUploadSize)
	require.NoError(t, err)

	authService := services.NewAuthService(db, cfg)
	require.NoError(t, authService.SeedAdmin())
	complaintService := services.NewComplaintService(db)

	app := fiber.New()
	routes.Setup(app, cfg,
		handlers.NewAuthHandler(authService),
		handlers.NewHealthHandler(),
		handlers.NewComplaintHandler(complaintService, fileStore, cfg.MaxUploads),
		cfg.UploadDir,
	)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/api/admin/login", "",
		dto.LoginRequest{Username: "admin", Password: "admin123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.LoginResponse
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func submitStudent(t *testing.T, app *fiber.App, title string) string {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/api/complaints/submit", "", map[string]string{
		"userType":    "student",
		"department":  "CSE",
		"year":        "2nd Year",
		"category":    "Infrastructure",
		"title":       title,
		"description": "The AC in room 204 has not worked for two weeks.",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.SubmitComplaintResponse
	decodeBody(t, resp, &body)
	require.Regexp(t, complaintIDPattern, body.ComplaintID)
	return body.ComplaintID
}

func TestSubmitComplaint_StudentWithAttachment(t *testing.T) {
	app := newTestApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"userType":    "student",
		"department":  "CSE",
		"year":        "2nd Year",
		"category":    "Infrastructure",
		"title":       "Broken AC",
		"description": "The AC in room 204 has not worked for two weeks.",
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("files", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/complaints/submit", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.SubmitComplaintResponse
	decodeBody(t, resp, &body)
	assert.Regexp(t, complaintIDPattern, body.ComplaintID)
	require.NotNil(t, body.Data)
	assert.Equal(t, models.StatusPending, body.Data.Status)

	var urls []string
	require.NoError(t, json.Unmarshal(body.Data.FileURLs, &urls))
	require.Len(t, urls, 1)
	assert.True(t, strings.HasPrefix(urls[0], "/uploads/"))

	// The stored attachment is publicly served.
	fileResp, err := app.Test(httptest.NewRequest(fiber.MethodGet, urls[0], nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, fileResp.StatusCode)
}

func TestSubmitComplaint_FacultyMissingName(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, fiber.MethodPost, "/api/complaints/submit", "", map[string]string{
		"userType":    "faculty",
		"department":  "ECE",
		"category":    "Administration",
		"title":       "Lab budget delays",
		"description": "Consumable procurement for the DSP lab is delayed again.",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body dto.ValidationErrorResponse
	decodeBody(t, resp, &body)
	assert.True(t, body.Error)
	require.NotEmpty(t, body.Errors)
	assert.Equal(t, "name", body.Errors[0].Field)
}

func TestSubmitComplaint_RejectsBadAttachment(t *testing.T) {
	app := newTestApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("userType", "student"))
	part, err := w.CreateFormFile("files", "malware.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/complaints/submit", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body dto.ValidationErrorResponse
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Errors)
	assert.Equal(t, "files", body.Errors[0].Field)
}

func TestTrackComplaint_Public(t *testing.T) {
	app := newTestApp(t)
	id := submitStudent(t, app, "Broken AC")

	resp := doJSON(t, app, fiber.MethodGet, "/api/complaints/"+id, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var complaint models.Complaint
	decodeBody(t, resp, &complaint)
	assert.Equal(t, id, complaint.ComplaintID)
	assert.Equal(t, "Broken AC", complaint.Title)

	resp = doJSON(t, app, fiber.MethodGet, "/api/complaints/CMP-2026-00000000", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminEndpoints_RequireToken(t *testing.T) {
	app := newTestApp(t)

	cases := []struct{ method, path string }{
		{fiber.MethodGet, "/api/complaints/"},
		{fiber.MethodGet, "/api/complaints/export"},
		{fiber.MethodGet, "/api/complaints/analytics/summary"},
		{fiber.MethodPut, "/api/complaints/CMP-2026-00000001/status"},
		{fiber.MethodDelete, "/api/complaints/CMP-2026-00000001"},
		{fiber.MethodGet, "/api/admin/verify"},
	}
	for _, tc := range cases {
		resp := doJSON(t, app, tc.method, tc.path, "", nil)
		assert.Equalf(t, fiber.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, fiber.MethodPost, "/api/admin/login", "",
		dto.LoginRequest{Username: "admin", Password: "nope"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body dto.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "Invalid credentials", body.Message)
}

func TestVerifyToken(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)

	resp := doJSON(t, app, fiber.MethodGet, "/api/admin/verify", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/admin/verify", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateStatus_ResolveWithNote(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)
	id := submitStudent(t, app, "Broken AC")

	resp := doJSON(t, app, fiber.MethodPut, "/api/complaints/"+id+"/status", token,
		map[string]string{"status": "resolved", "resolutionNote": "Fixed by facilities"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.UpdateStatusResponse
	decodeBody(t, resp, &body)
	require.NotNil(t, body.Complaint)
	assert.Equal(t, models.StatusResolved, body.Complaint.Status)
	assert.Equal(t, "Fixed by facilities", body.Complaint.ResolutionNote)

	resp = doJSON(t, app, fiber.MethodPut, "/api/complaints/"+id+"/status", token,
		map[string]string{"status": "escalated"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPut, "/api/complaints/CMP-2026-00000000/status", token,
		map[string]string{"status": "resolved"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListComplaints_FiltersAndPaging(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)

	for i := 0; i < 3; i++ {
		submitStudent(t, app, fmt.Sprintf("Broken AC #%d", i))
	}

	resp := doJSON(t, app, fiber.MethodGet, "/api/complaints/?status=pending&limit=2", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.ListComplaintsResponse
	decodeBody(t, resp, &body)
	assert.EqualValues(t, 3, body.Total)
	assert.EqualValues(t, 2, body.TotalPages)
	assert.Equal(t, 1, body.CurrentPage)
	assert.Len(t, body.Complaints, 2)

	resp = doJSON(t, app, fiber.MethodGet, "/api/complaints/?status=open", token, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var verr dto.ValidationErrorResponse
	decodeBody(t, resp, &verr)
	require.NotEmpty(t, verr.Errors)
	assert.Equal(t, "status", verr.Errors[0].Field)
}

func TestDeleteComplaint(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)
	id := submitStudent(t, app, "Broken AC")

	resp := doJSON(t, app, fiber.MethodDelete, "/api/complaints/"+id, token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/complaints/"+id, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAnalyticsSummary(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)

	submitStudent(t, app, "Broken AC")
	submitStudent(t, app, "Flickering lights")

	resp := doJSON(t, app, fiber.MethodGet, "/api/complaints/analytics/summary", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Message string                `json:"message"`
		Data    dto.AnalyticsResponse `json:"data"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "OK", body.Message)
	assert.EqualValues(t, 2, body.Data.Summary.Total)
	assert.EqualValues(t, 2, body.Data.Summary.Pending)
}

func TestExportCSV(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)

	id := submitStudent(t, app, "Broken AC")

	resp := doJSON(t, app, fiber.MethodGet, "/api/complaints/export?status=pending", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	assert.Equal(t, "1", resp.Header.Get("X-Total-Count"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Complaint ID")
	assert.Contains(t, lines[1], id)
	assert.Contains(t, lines[1], "Broken AC")
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, fiber.MethodGet, "/api/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.HealthResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.DB)
}
