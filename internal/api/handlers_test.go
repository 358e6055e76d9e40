package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gengallery/internal/auth"
	"gengallery/internal/config"
	"gengallery/internal/preview"
	"gengallery/internal/store"
)

const (
	testAdminUser = "admin"
	testAdminPass = "secret123"
)

type testEnv struct {
	server *Server
	store  *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()

	cfg := &config.Config{
		Server: config.Server{Host: "127.0.0.1", Port: "0"},
		Dirs: config.Dirs{
			Data:       filepath.Join(root, "data"),
			Uploads:    filepath.Join(root, "uploads"),
			Generated:  filepath.Join(root, "generated"),
			Thumbnails: filepath.Join(root, "thumbnails"),
		},
		Upload: config.Upload{MaxBytes: 1 << 20},
		Auth: config.Auth{
			SessionSecret: "test-secret",
			AccountFile:   filepath.Join(root, "data", "admin.json"),
		},
	}

	gen := preview.NewGenerator(cfg.Dirs.Thumbnails, nil, nil)
	st, err := store.New(store.Config{
		DataDir:      cfg.Dirs.Data,
		UploadDir:    cfg.Dirs.Uploads,
		GeneratedDir: cfg.Dirs.Generated,
	}, gen, nil)
	require.NoError(t, err)

	accounts := auth.NewAccountStore(cfg.Auth.AccountFile)
	require.NoError(t, accounts.Create(testAdminUser, testAdminPass))

	return &testEnv{
		server: NewServer(cfg, st, accounts, nil),
		store:  st,
	}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	body := `{"username":"` + testAdminUser + `","password":"` + testAdminPass + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func (e *testEnv) submit(t *testing.T, title string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("app_id", "app1"))
	require.NoError(t, mw.WriteField("datetime", "2024-05-01 12:00"))
	require.NoError(t, mw.WriteField("prompt", "提示词: a cat\nseed: 42"))
	fw, err := mw.CreateFormFile("materials", "cat.png")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "pngdata")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		RecordID string `json:"record_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RecordID)
	return resp.RecordID
}

func TestSubmitValidation(t *testing.T) {
	e := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "only a title"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := e.do(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitRejectsUnsupportedFileType(t *testing.T) {
	e := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "t"))
	require.NoError(t, mw.WriteField("app_id", "a"))
	require.NoError(t, mw.WriteField("datetime", "d"))
	require.NoError(t, mw.WriteField("prompt", "p"))
	fw, err := mw.CreateFormFile("materials", "malware.exe")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "nope")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := e.do(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "malware.exe")
}

func TestReviewGating(t *testing.T) {
	e := newTestEnv(t)
	id := e.submit(t, "gated record")

	// pending record: anonymous detail fetch is refused
	w := e.do(t, httptest.NewRequest(http.MethodGet, "/api/record/"+id, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// anonymous listing does not include it either
	w = e.do(t, httptest.NewRequest(http.MethodGet, "/api/records", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), id)

	// admin sees it
	cookie := e.login(t)
	req := httptest.NewRequest(http.MethodGet, "/api/record/"+id, nil)
	req.AddCookie(cookie)
	w = e.do(t, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// approve
	body := `{"action":"approve","record_ids":["` + id + `"]}`
	req = httptest.NewRequest(http.MethodPost, "/api/admin/review", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w = e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// now public
	w = e.do(t, httptest.NewRequest(http.MethodGet, "/api/record/"+id, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, httptest.NewRequest(http.MethodGet, "/api/records", nil))
	assert.Contains(t, w.Body.String(), id)
}

func TestReviewRequiresAdminSession(t *testing.T) {
	e := newTestEnv(t)
	body := `{"action":"approve","record_ids":["whatever"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/review", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := e.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newTestEnv(t)
	body := `{"username":"admin","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := e.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckSession(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/check", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_admin":false`)

	cookie := e.login(t)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/check", nil)
	req.AddCookie(cookie)
	w = e.do(t, req)
	assert.Contains(t, w.Body.String(), `"is_admin":true`)
	assert.Contains(t, w.Body.String(), testAdminUser)
}

func TestLogoutClearsSession(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)
	req.AddCookie(cookie)
	w := e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestListingDegradesOnMissingDetailFile(t *testing.T) {
	e := newTestEnv(t)
	id := e.submit(t, "orphaned")

	entry, err := e.store.FindIndexEntry(id)
	require.NoError(t, err)
	require.NoError(t, e.store.DeleteRecord(id, entry.AppID))

	cookie := e.login(t)
	req := httptest.NewRequest(http.MethodGet, "/api/records", nil)
	req.AddCookie(cookie)
	w := e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)
	assert.Contains(t, w.Body.String(), "orphaned")
}

func TestRejectWithReason(t *testing.T) {
	e := newTestEnv(t)
	id := e.submit(t, "to reject")
	cookie := e.login(t)

	body := `{"action":"reject","record_ids":["` + id + `"],"reason":"blurry output"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/review", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w := e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/record/"+id, nil)
	req.AddCookie(cookie)
	w = e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blurry output")
}

func TestDeleteRecords(t *testing.T) {
	e := newTestEnv(t)
	id := e.submit(t, "doomed")
	cookie := e.login(t)

	body := `{"record_ids":["` + id + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/delete", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w := e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	// listing excludes it, detail fetch is a 404 even for the admin
	req = httptest.NewRequest(http.MethodGet, "/api/records", nil)
	req.AddCookie(cookie)
	w = e.do(t, req)
	assert.NotContains(t, w.Body.String(), id)

	req = httptest.NewRequest(http.MethodGet, "/api/record/"+id, nil)
	req.AddCookie(cookie)
	w = e.do(t, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRecordNotFound(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, httptest.NewRequest(http.MethodGet, "/api/record/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStats(t *testing.T) {
	e := newTestEnv(t)
	e.submit(t, "one")
	id := e.submit(t, "two")
	cookie := e.login(t)

	body := `{"action":"approve","record_ids":["` + id + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/review", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	require.Equal(t, http.StatusOK, e.do(t, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.AddCookie(cookie)
	w := e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data store.ReviewStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Overall.Total)
	assert.Equal(t, 1, resp.Data.Overall.Approved)
	assert.Equal(t, 1, resp.Data.Overall.Pending)
	assert.Equal(t, 2, resp.Data.Apps["app1"].Total)
}

func TestAdminStatusFilter(t *testing.T) {
	e := newTestEnv(t)
	pendingID := e.submit(t, "pending one")
	approvedID := e.submit(t, "approved one")
	cookie := e.login(t)

	body := `{"action":"approve","record_ids":["` + approvedID + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/review", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	require.Equal(t, http.StatusOK, e.do(t, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/records?status=pending", nil)
	req.AddCookie(cookie)
	w := e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), pendingID)
	assert.NotContains(t, w.Body.String(), approvedID)

	req = httptest.NewRequest(http.MethodGet, "/api/records?status=bogus", nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusBadRequest, e.do(t, req).Code)
}

func TestListApps(t *testing.T) {
	e := newTestEnv(t)
	e.submit(t, "a record")

	w := e.do(t, httptest.NewRequest(http.MethodGet, "/api/apps", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app1")
}

func TestSubmitTooLarge(t *testing.T) {
	e := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "big"))
	require.NoError(t, mw.WriteField("app_id", "app1"))
	require.NoError(t, mw.WriteField("datetime", "d"))
	require.NoError(t, mw.WriteField("prompt", "p"))
	fw, err := mw.CreateFormFile("materials", "big.png")
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte("x"), 2<<20))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := e.do(t, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
