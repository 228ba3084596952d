package routes

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/filesmanager/internal/app"
	"github.com/templui/filesmanager/internal/config"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/repository/memory"
	"github.com/templui/filesmanager/internal/session"
	"github.com/templui/filesmanager/internal/storage"
)

type testServer struct {
	*httptest.Server
	app   *app.App
	redis *miniredis.Miniredis
	queue *queue.MemoryQueue
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	q := queue.NewMemoryQueue(queue.Options{Concurrency: 1, MaxAttempts: 1})
	cfg := &config.Config{AppEnv: "development", MaxUploadSize: 1 << 20}

	a := app.Assemble(cfg, &app.Backends{
		Store:    memory.NewStore(),
		Storage:  blobs,
		Queue:    q,
		Sessions: session.NewRedisStore(client),
		Redis:    client,
	})
	t.Cleanup(func() { a.Close() })

	srv := httptest.NewServer(SetupRoutes(a))
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, app: a, redis: mr, queue: q}
}

// login creates a user and a session for it, returning the token.
func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	user, err := s.app.UserService.Create(context.Background(), email, "secret")
	require.NoError(t, err)

	token := "token-" + user.ID
	require.NoError(t, s.redis.Set(session.Key(token), user.ID))
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("X-Token", token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func pngData(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 10))))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestUnauthorized(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/files"},
		{http.MethodGet, "/files"},
		{http.MethodGet, "/files/abc"},
		{http.MethodPut, "/files/abc/publish"},
		{http.MethodPut, "/files/abc/unpublish"},
		{http.MethodGet, "/users/me"},
	} {
		resp := s.do(t, tc.method, tc.path, "bogus", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
		assert.Equal(t, map[string]string{"error": "Unauthorized"}, decode[map[string]string](t, resp))
	}
}

func TestUploadErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "bob@dylan.com")

	tests := []struct {
		body map[string]any
		want string
	}{
		{map[string]any{"type": "file", "data": "SGVsbG8="}, "Missing name"},
		{map[string]any{"name": "a.txt", "data": "SGVsbG8="}, "Missing type"},
		{map[string]any{"name": "a.txt", "type": "file"}, "Missing data"},
		{map[string]any{"name": "a.txt", "type": "file", "data": "SGVsbG8=", "parentId": "nope"}, "Parent not found"},
	}
	for _, tt := range tests {
		resp := s.do(t, http.MethodPost, "/files", token, tt.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, tt.want, decode[map[string]string](t, resp)["error"])
	}
}

func TestFileLifecycle(t *testing.T) {
	s := newTestServer(t)
	bob := s.login(t, "bob@dylan.com")
	alice := s.login(t, "alice@example.com")

	resp := s.do(t, http.MethodPost, "/files", bob, map[string]any{"name": "Photos", "type": "folder"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	folder := decode[map[string]any](t, resp)
	assert.Equal(t, float64(0), folder["parentId"])
	assert.Equal(t, false, folder["isPublic"])
	assert.NotContains(t, folder, "localPath")

	resp = s.do(t, http.MethodPost, "/files", bob, map[string]any{
		"name": "cat.png", "type": "image", "parentId": folder["id"], "data": pngData(t),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cat := decode[map[string]any](t, resp)
	catID := cat["id"].(string)
	assert.Equal(t, folder["id"], cat["parentId"])

	waiting, _, err := s.queue.Counts(context.Background(), queue.FileQueue)
	require.NoError(t, err)
	assert.EqualValues(t, 1, waiting)

	resp = s.do(t, http.MethodPost, "/files", bob, map[string]any{
		"name": "inside.txt", "type": "file", "parentId": catID, "data": "SGVsbG8=",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Parent is not a folder", decode[map[string]string](t, resp)["error"])

	// Listing
	resp = s.do(t, http.MethodGet, "/files?parentId="+folder["id"].(string), bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := decode[[]map[string]any](t, resp)
	require.Len(t, listed, 1)
	assert.Equal(t, catID, listed[0]["id"])

	resp = s.do(t, http.MethodGet, "/files?page=-1", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, resp), 1)

	resp = s.do(t, http.MethodGet, "/files?page=5", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]\n", readAll(t, resp))

	// Show is owner only
	resp = s.do(t, http.MethodGet, "/files/"+catID, alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Private data is hidden from everyone but the owner
	resp = s.do(t, http.MethodGet, "/files/"+catID+"/data", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = s.do(t, http.MethodGet, "/files/"+catID+"/data", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	// Thumbnails are not ready until the worker ran
	resp = s.do(t, http.MethodGet, "/files/"+catID+"/data?size=100", bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Folders have no content
	resp = s.do(t, http.MethodGet, "/files/"+folder["id"].(string)+"/data", bob, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "A folder doesn't have content", decode[map[string]string](t, resp)["error"])

	// Publishing
	resp = s.do(t, http.MethodPut, "/files/"+catID+"/publish", alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/files/"+catID+"/publish", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode[map[string]any](t, resp)["isPublic"])

	resp = s.do(t, http.MethodGet, "/files/"+catID+"/data", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/files/"+catID+"/unpublish", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decode[map[string]any](t, resp)["isPublic"])
}

func TestUsers(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/users", "", map[string]string{"email": "bob@dylan.com", "password": "toto1234!"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]string](t, resp)
	assert.Equal(t, "bob@dylan.com", created["email"])
	assert.NotEmpty(t, created["id"])

	resp = s.do(t, http.MethodPost, "/users", "", map[string]string{"email": "bob@dylan.com", "password": "toto1234!"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Already exist", decode[map[string]string](t, resp)["error"])

	resp = s.do(t, http.MethodPost, "/users", "", map[string]string{"email": "bob@dylan.com"})
	assert.Equal(t, "Missing password", decode[map[string]string](t, resp)["error"])

	token := "t1"
	require.NoError(t, s.redis.Set(session.Key(token), created["id"]))
	resp = s.do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, decode[map[string]string](t, resp))
}

func TestStatusAndStats(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "bob@dylan.com")

	resp := s.do(t, http.MethodGet, "/status", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]bool{"db": true, "redis": true}, decode[map[string]bool](t, resp))

	resp = s.do(t, http.MethodGet, "/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]int{"users": 1, "files": 0}, decode[map[string]int](t, resp))

	resp = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(readAll(t, resp), "files_http_requests_total"))
}

func TestThumbnailsAfterWorker(t *testing.T) {
	s := newTestServer(t)
	bob := s.login(t, "bob@dylan.com")

	resp := s.do(t, http.MethodPost, "/files", bob, map[string]any{"name": "cat.png", "type": "image", "data": pngData(t)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	catID := decode[map[string]any](t, resp)["id"].(string)

	file, err := s.app.Store.Files.FindOne(context.Background(), repository.FileFilter{ID: catID})
	require.NoError(t, err)
	require.NoError(t, s.app.Worker.ProcessThumbnail(context.Background(), model.ThumbnailJob{UserID: file.UserID, FileID: file.ID}))

	for _, size := range []string{"500", "250", "100"} {
		resp := s.do(t, http.MethodGet, "/files/"+catID+"/data?size="+size, bob, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, "size %s", size)
	}
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}
