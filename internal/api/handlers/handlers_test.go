package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/huc-edu/insight-engine/internal/core/flasher"
	"github.com/huc-edu/insight-engine/internal/core/ingest"
	"github.com/huc-edu/insight-engine/internal/core/sharepoint"
	"github.com/huc-edu/insight-engine/internal/models"
)

func sharePointTestJob(t *testing.T) *sharepoint.SyncJob {
	t.Helper()
	return sharepoint.NewSyncJob(nil, nil, t.TempDir(), nil)
}

// fakeDB implements core.DbClient for handler tests.
type fakeDB struct {
	mu      sync.Mutex
	users   map[string]*models.User
	docs    []models.Document
	folders []models.Folder
}

func newFakeDB() *fakeDB {
	return &fakeDB{users: make(map[string]*models.User)}
}

func (d *fakeDB) CreateUser(_ context.Context, u *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.users[u.Email]; exists {
		return errors.New("duplicate email")
	}
	d.users[u.Email] = u
	return nil
}

func (d *fakeDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.users[email], nil
}

func (d *fakeDB) CreateDocument(_ context.Context, doc *models.Document) error {
	d.docs = append(d.docs, *doc)
	return nil
}

func (d *fakeDB) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	for i := range d.docs {
		if d.docs[i].ID == id {
			return &d.docs[i], nil
		}
	}
	return nil, nil
}

func (d *fakeDB) ListDocuments(context.Context, int) ([]models.Document, error) {
	return d.docs, nil
}

func (d *fakeDB) UpdateDocumentSummary(context.Context, string, string) error { return nil }
func (d *fakeDB) CountDocumentsByType(context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}
func (d *fakeDB) InsertDocumentChunks(context.Context, []models.DocumentChunk) error { return nil }
func (d *fakeDB) SearchChunks(context.Context, []float32, int, string) ([]models.DocumentChunk, error) {
	return nil, nil
}

func (d *fakeDB) ListFolders(_ context.Context, category string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range d.folders {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out, nil
}

func (d *fakeDB) CreateFolder(_ context.Context, f *models.Folder) error {
	f.ID = len(d.folders) + 1
	d.folders = append(d.folders, *f)
	return nil
}

func (d *fakeDB) Close() error { return nil }

// noopIngestor satisfies ingest.FileIngestor; every file succeeds instantly.
type noopIngestor struct{}

func (noopIngestor) Ingest(_ context.Context, _, originalName, source, category string) (*models.Document, error) {
	return &models.Document{FileName: originalName, Source: source, Category: category}, nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestStatusHandlerNilManager(t *testing.T) {
	h := NewStatusHandler(nil)
	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ingestion/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var st models.QueueStatus
	decodeBody(t, rec, &st)
	assert.Zero(t, st.TotalFiles)
	assert.False(t, st.IsProcessing)
	assert.Empty(t, st.CurrentFile)
}

func TestStatusHandlerReportsQueue(t *testing.T) {
	m := ingest.NewManager(context.Background(), noopIngestor{}, nil)
	m.Enqueue("/tmp/x.pdf", models.SourceUpload, "General")

	// wait for the queue to drain so the snapshot is stable
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && m.Status().ProcessedFiles == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	h := NewStatusHandler(m)
	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ingestion/status", nil))

	var st models.QueueStatus
	decodeBody(t, rec, &st)
	assert.Equal(t, 1, st.TotalFiles)
	assert.Equal(t, 1, st.ProcessedFiles)
}

func multipartBody(t *testing.T, category string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if category != "" {
		require.NoError(t, mw.WriteField("category", category))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadQueuesFiles(t *testing.T) {
	dir := t.TempDir()
	m := ingest.NewManager(context.Background(), noopIngestor{}, nil)
	h := NewUploadHandler(m, dir)

	body, contentType := multipartBody(t, "Syllabi", map[string]string{
		"one.txt": "first",
		"two.txt": "second",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/config/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Queued int      `json:"queued"`
		Errors []string `json:"errors"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2, resp.Queued)
	assert.Empty(t, resp.Errors)

	// files were materialized under the upload dir
	for _, name := range []string{"one.txt", "two.txt"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	}
}

func TestUploadStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	m := ingest.NewManager(context.Background(), noopIngestor{}, nil)
	h := NewUploadHandler(m, dir)

	body, contentType := multipartBody(t, "", map[string]string{
		"../../etc/passwd": "nope",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/config/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	_, err := os.Stat(filepath.Join(dir, "passwd"))
	assert.NoError(t, err)
}

func TestUploadNoFiles(t *testing.T) {
	m := ingest.NewManager(context.Background(), noopIngestor{}, nil)
	h := NewUploadHandler(m, t.TempDir())

	body, contentType := multipartBody(t, "General", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/config/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFolderListSeedsDefaults(t *testing.T) {
	db := newFakeDB()
	h := NewFolderHandler(db)

	r := chi.NewRouter()
	r.Get("/folders/{category}", h.List)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/folders/Accreditation", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var folders []models.Folder
	decodeBody(t, rec, &folders)
	require.Len(t, folders, len(defaultFolders))
	assert.Equal(t, "Accreditation", folders[0].Category)

	// second call returns the stored rows instead of re-seeding
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/folders/Accreditation", nil))
	decodeBody(t, rec, &folders)
	assert.Len(t, folders, len(defaultFolders))
}

func TestFolderCreateValidation(t *testing.T) {
	h := NewFolderHandler(newFakeDB())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/folders", strings.NewReader(`{"name":""}`))
	h.Create(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/folders", strings.NewReader(`{"name":"Evidence","category":"General"}`))
	h.Create(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var folder models.Folder
	decodeBody(t, rec, &folder)
	assert.Equal(t, "Evidence", folder.Name)
	assert.NotZero(t, folder.ID)
}

func TestSignupAndLogin(t *testing.T) {
	db := newFakeDB()
	h := NewAuthHandler(db, "test-secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{"email":"qa@huc.edu","password":"hunter2"}`))
	h.Signup(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var signup map[string]string
	decodeBody(t, rec, &signup)
	assert.NotEmpty(t, signup["token"])

	// stored hash is not the raw password
	user := db.users["qa@huc.edu"]
	require.NotNil(t, user)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2")))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"qa@huc.edu","password":"hunter2"}`))
	h.Login(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"qa@huc.edu","password":"wrong"}`))
	h.Login(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	db := newFakeDB()
	h := NewAuthHandler(db, "test-secret")

	body := `{"email":"qa@huc.edu","password":"hunter2"}`
	rec := httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFlasherEndpoints(t *testing.T) {
	store := flasher.NewStore(filepath.Join(t.TempDir(), "flasher.json"))
	h := NewConfigHandler(nil, "", store)

	rec := httptest.NewRecorder()
	h.GetFlasher(rec, httptest.NewRequest(http.MethodGet, "/config/flasher", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var msg flasher.Message
	decodeBody(t, rec, &msg)
	assert.Equal(t, "Welcome to HUC Dashboard", msg.Message)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/config/flasher", strings.NewReader(`{"message":"Visit scheduled","active":true}`))
	h.SetFlasher(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetFlasher(rec, httptest.NewRequest(http.MethodGet, "/config/flasher", nil))
	decodeBody(t, rec, &msg)
	assert.Equal(t, "Visit scheduled", msg.Message)
}

func TestSetFlasherRequiresMessage(t *testing.T) {
	store := flasher.NewStore(filepath.Join(t.TempDir(), "flasher.json"))
	h := NewConfigHandler(nil, "", store)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/config/flasher", strings.NewReader(`{"active":true}`))
	h.SetFlasher(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSharePointURLValidation(t *testing.T) {
	job := sharePointTestJob(t)
	h := NewConfigHandler(job, "", nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/config/sharepoint-url", strings.NewReader(`{"url":"https://evil.example.com/page"}`))
	h.UpdateSharePointURL(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/config/sharepoint-url", strings.NewReader(`{"url":"https://huc.sharepoint.com/sites/accreditation"}`))
	h.UpdateSharePointURL(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
