package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flightdeck/logbook/internal/auth"
	"flightdeck/logbook/internal/common"
	"flightdeck/logbook/internal/constants"
	"flightdeck/logbook/internal/db/repositories"
	"flightdeck/logbook/internal/models/dtos"
	gormModels "flightdeck/logbook/internal/models/gorm"
	"flightdeck/logbook/internal/services"
)

// Mock classifier
type stubClassifier struct {
	classifyAircraftFunc func(ctx context.Context, identifiers []string) ([]dtos.AircraftClassification, error)
}

func (s *stubClassifier) ExtractTable(ctx context.Context, filename, mimeType string, data []byte) (string, error) {
	return "", errors.New("not configured")
}

func (s *stubClassifier) GuessKeyColumns(ctx context.Context, headers []string, sample [][]string) (*dtos.KeyColumnGuess, error) {
	return nil, errors.New("not configured")
}

func (s *stubClassifier) SuggestColumns(ctx context.Context, headers []string, sample [][]string, catalog []string) ([]dtos.ColumnSuggestion, error) {
	return nil, nil
}

func (s *stubClassifier) ClassifyAircraft(ctx context.Context, identifiers []string) ([]dtos.AircraftClassification, error) {
	if s.classifyAircraftFunc == nil {
		return nil, nil
	}
	return s.classifyAircraftFunc(ctx, identifiers)
}

func newTestHandlers(t *testing.T) (*Handlers, *gorm.DB) {
	t.Helper()

	orm, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	err = orm.AutoMigrate(
		&gormModels.User{},
		&gormModels.AircraftModel{},
		&gormModels.AircraftModelAlias{},
		&gormModels.FlightLogRow{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	// Separate sqlx handle for the aggregation SQL
	sqlxDB, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlx sqlite: %v", err)
	}
	t.Cleanup(func() { sqlxDB.Close() })
	if _, err := sqlxDB.Exec(`CREATE TABLE flight_log_rows (
		id TEXT PRIMARY KEY, user_id TEXT, flight_date DATETIME,
		aircraft_type TEXT, total_time REAL DEFAULT 0, pic REAL DEFAULT 0,
		sic REAL DEFAULT 0, cross_country REAL DEFAULT 0, night REAL DEFAULT 0,
		instrument REAL DEFAULT 0, military REAL DEFAULT 0
	)`); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	modelRepo := repositories.NewAircraftModelRepository(orm)
	c172 := &gormModels.AircraftModel{Name: "Cessna 172", SingleEngine: true, FixedWing: true}
	if err := modelRepo.CreateWithAliases(context.Background(), c172, []string{"C172"}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	uh60 := &gormModels.AircraftModel{Name: "Sikorsky UH-60", Helicopter: true, Turbine: true, Military: true}
	if err := modelRepo.CreateWithAliases(context.Background(), uh60, []string{"UH60"}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	classifier := &stubClassifier{}
	cache := common.NewCacheService(60, 60)
	resolver := services.NewAircraftResolverService(modelRepo, classifier, cache, nil)

	repos := &Repositories{
		UserGorm:      repositories.NewUserRepositoryGORM(orm),
		FlightLog:     repositories.NewFlightLogRepository(orm),
		AircraftModel: modelRepo,
		Aggregates:    repositories.NewAggregatesRepo(sqlxDB),
	}
	svcs := &Services{
		Cache:      cache,
		Ingest:     services.NewIngestService(classifier, nil),
		Resolver:   resolver,
		Logbook:    services.NewLogbookService(repos.FlightLog, resolver, nil),
		Aggregates: services.NewAggregatesService(repos.Aggregates, cache),
	}

	return NewHandlers(&Dependencies{Repo: repos, Services: svcs}), orm
}

func authedRequest(req *http.Request) *http.Request {
	claims := &auth.APIKeyClaims{UserUUID: "user-1", ExternalIDVal: "ext-1"}
	return req.WithContext(auth.SetUserClaims(req.Context(), claims))
}

func multipartUpload(t *testing.T, fileCount int, fileSize int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i := 0; i < fileCount; i++ {
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="files"; filename="log%d.csv"`, i)}
		hdr["Content-Type"] = []string{"text/csv"}
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("CreatePart failed: %v", err)
		}
		if fileSize > 0 {
			if _, err := part.Write(bytes.Repeat([]byte("a"), fileSize)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		} else {
			if _, err := part.Write([]byte("Date,Aircraft,Total Time\n2024-03-01,C172,1.5\n")); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadLogbookHandler_Success(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	handler := handlers.UploadLogbookHandler()

	body, contentType := multipartUpload(t, 1, 0)
	req := authedRequest(httptest.NewRequest("POST", "/api/v1/logbook/upload", body))
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response dtos.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status ok, got %s", response.Status)
	}
}

func TestUploadLogbookHandler_TooManyFiles(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	handler := handlers.UploadLogbookHandler()

	body, contentType := multipartUpload(t, constants.MaxUploadFiles+1, 0)
	req := authedRequest(httptest.NewRequest("POST", "/api/v1/logbook/upload", body))
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
}

func TestUploadLogbookHandler_MaxFileCountAccepted(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	handler := handlers.UploadLogbookHandler()

	body, contentType := multipartUpload(t, constants.MaxUploadFiles, 0)
	req := authedRequest(httptest.NewRequest("POST", "/api/v1/logbook/upload", body))
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for %d files, got %d: %s", constants.MaxUploadFiles, rr.Code, rr.Body.String())
	}
}

func TestUploadLogbookHandler_FileTooLarge(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	handler := handlers.UploadLogbookHandler()

	body, contentType := multipartUpload(t, 1, constants.MaxUploadFileSize+1)
	req := authedRequest(httptest.NewRequest("POST", "/api/v1/logbook/upload", body))
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
}

func TestUploadLogbookHandler_FileAtSizeLimitAccepted(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	handler := handlers.UploadLogbookHandler()

	// Build a valid CSV of exactly the maximum allowed size.
	row := []byte("2024-03-01,C172,1.5\n")
	content := []byte("Date,Aircraft,Total Time\n")
	for len(content)+len(row) <= constants.MaxUploadFileSize {
		content = append(content, row...)
	}
	content = append(content, bytes.Repeat([]byte("x"), constants.MaxUploadFileSize-len(content))...)
	if len(content) != constants.MaxUploadFileSize {
		t.Fatalf("Fixture is %d bytes, expected %d", len(content), constants.MaxUploadFileSize)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="files"; filename="big.csv"`}
	hdr["Content-Type"] = []string{"text/csv"}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart failed: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	mw.Close()

	req := authedRequest(httptest.NewRequest("POST", "/api/v1/logbook/upload", &buf))
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for file at the size limit, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUploadLogbookHandler_NoFiles(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	handler := handlers.UploadLogbookHandler()

	body, contentType := multipartUpload(t, 0, 0)
	req := authedRequest(httptest.NewRequest("POST", "/api/v1/logbook/upload", body))
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
}

func TestSaveLogbookHandler_Success(t *testing.T) {
	handlers, orm := newTestHandlers(t)
	handler := handlers.SaveLogbookHandler()

	reqBody := dtos.SaveLogbookReq{
		Rows: []dtos.LogRowInput{
			{constants.ColDate: "2024-03-01", constants.ColAircraftType: "C172", constants.ColTotalTime: "1.5"},
		},
	}
	bodyBytes, _ := json.Marshal(reqBody)

	req := authedRequest(httptest.NewRequest("POST", "/api/v1/logbook/rows/", bytes.NewReader(bodyBytes)))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var n int64
	if err := orm.Model(&gormModels.FlightLogRow{}).Count(&n).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 persisted row, got %d", n)
	}
}

func TestSaveLogbookHandler_UnresolvableAircraftListed(t *testing.T) {
	handlers, orm := newTestHandlers(t)
	handler := handlers.SaveLogbookHandler()

	reqBody := dtos.SaveLogbookReq{
		Rows: []dtos.LogRowInput{
			{constants.ColDate: "2024-03-01", constants.ColAircraftType: "C172"},
			{constants.ColDate: "2024-03-02", constants.ColAircraftType: "UH-60"},
			{constants.ColDate: "2024-03-03", constants.ColAircraftType: "Zephyr X"},
		},
	}
	bodyBytes, _ := json.Marshal(reqBody)

	req := authedRequest(httptest.NewRequest("POST", "/api/v1/logbook/rows/", bytes.NewReader(bodyBytes)))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}

	var response dtos.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	list, ok := response.Data.([]interface{})
	if !ok || len(list) != 1 || list[0] != "Zephyr X" {
		t.Errorf("Expected unresolvable list [Zephyr X], got %v", response.Data)
	}

	var n int64
	if err := orm.Model(&gormModels.FlightLogRow{}).Count(&n).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected no rows persisted, got %d", n)
	}
}

func TestSaveLogbookHandler_MissingClaims(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	handler := handlers.SaveLogbookHandler()

	req := httptest.NewRequest("POST", "/api/v1/logbook/rows/", strings.NewReader("{}"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", rr.Code)
	}
}

func TestGetAggregatesHandler_Simple(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	handler := handlers.GetAggregatesHandler()

	req := authedRequest(httptest.NewRequest("GET", "/api/v1/logbook/aggregates", nil))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response dtos.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	data, ok := response.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected aggregate object, got %T", response.Data)
	}
	if _, ok := data["total_time"]; !ok {
		t.Errorf("Expected total_time in simple aggregates, got %v", data)
	}
}

func TestGetAggregatesHandler_Scorecard(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	handler := handlers.GetAggregatesHandler()

	req := authedRequest(httptest.NewRequest("GET", "/api/v1/logbook/aggregates?aggregateType=scorecard&military=false", nil))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response dtos.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	data, ok := response.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected scorecard object, got %T", response.Data)
	}
	if _, ok := data["totals"]; !ok {
		t.Errorf("Expected totals in scorecard, got %v", data)
	}
}

func TestDeleteLogRowHandler_NotFound(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	handler := handlers.DeleteLogRowHandler()

	req := authedRequest(httptest.NewRequest("DELETE", "/api/v1/logbook/rows/nope", nil))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rr.Code)
	}
}
