package board

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"todoboard/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeLookup map[string]uint64

func (f fakeLookup) BoardID(ctx context.Context, userID, slug string) (uint64, error) {
	if id, ok := f[userID+"/"+slug]; ok {
		return id, nil
	}
	return 0, ErrBoardNotFound
}

func newTestRouter(t *testing.T, repo *fakeRepository, files *fakeFiles) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := NewService(fakeLookup{"u1/work": testBoard}, repo, files, nil, zap.NewNop(), Options{})
	engine := gin.New()
	api := engine.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set(auth.UserIDKey, "u1")
		c.Next()
	})
	RegisterRoutes(api, NewHandler(svc, 2, zap.NewNop()))
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, BoardResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var resp BoardResponse
	if rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, resp
}

func TestGetBoardReturnsSnapshot(t *testing.T) {
	engine := newTestRouter(t, newFakeRepository(fixtureColumns(), fixtureTasks()), &fakeFiles{})

	rec, resp := doJSON(t, engine, http.MethodGet, "/api/boards/work", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !resp.Synced || len(resp.Columns) != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Columns[0].Tasks[2].ImageURL == "" {
		t.Fatal("expected image_url on task 13")
	}

	rec, _ = doJSON(t, engine, http.MethodGet, "/api/boards/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestImageURLIsNeverMissing(t *testing.T) {
	engine := newTestRouter(t, newFakeRepository(fixtureColumns(), fixtureTasks()), &fakeFiles{})

	rec, _ := doJSON(t, engine, http.MethodGet, "/api/boards/work", nil)
	var raw struct {
		Columns []struct {
			Tasks []map[string]interface{} `json:"tasks"`
		} `json:"columns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	value, ok := raw.Columns[0].Tasks[0]["image_url"]
	if !ok || value != "" {
		t.Fatalf("expected empty image_url field, got %v (present=%v)", value, ok)
	}
}

func TestReorderColumnsEndpoint(t *testing.T) {
	repo := newFakeRepository(fixtureColumns(), nil)
	engine := newTestRouter(t, repo, &fakeFiles{})

	rec, resp := doJSON(t, engine, http.MethodPatch, "/api/boards/work/columns/order", ReorderColumnsRequest{SourceIndex: 2, DestinationIndex: 0})
	if rec.Code != http.StatusOK || !resp.Synced {
		t.Fatalf("unexpected response: %d %+v", rec.Code, resp)
	}
	if resp.Columns[0].Name != "Done" {
		t.Fatalf("unexpected first column: %s", resp.Columns[0].Name)
	}

	rec, _ = doJSON(t, engine, http.MethodPatch, "/api/boards/work/columns/order", ReorderColumnsRequest{SourceIndex: 5, DestinationIndex: 0})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMoveTaskFailureReloadsAndReportsUnsynced(t *testing.T) {
	repo := newFakeRepository(fixtureColumns(), fixtureTasks())
	engine := newTestRouter(t, repo, &fakeFiles{})
	doJSON(t, engine, http.MethodGet, "/api/boards/work", nil)

	repo.fail["UpdateTask"] = errRemote
	repo.reset()
	rec, resp := doJSON(t, engine, http.MethodPatch, "/api/boards/work/tasks/move", MoveTaskRequest{
		SourceColumnID: 2, SourceIndex: 0, DestinationColumnID: 3, DestinationIndex: 0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if resp.Synced {
		t.Fatal("expected synced=false")
	}
	if repo.count("ListColumns") != 1 || repo.count("ListTasks") != 1 {
		t.Fatalf("expected a reload after the stale move, got %v", repo.calls)
	}
	if len(resp.Columns[1].Tasks) != 1 || len(resp.Columns[2].Tasks) != 0 {
		t.Fatalf("reloaded board should match the remote store: %+v", resp.Columns)
	}
}

func TestAddTaskMultipart(t *testing.T) {
	repo := newFakeRepository(fixtureColumns(), nil)
	files := &fakeFiles{}
	engine := newTestRouter(t, repo, files)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("title", "Write report")
	_ = w.WriteField("due_date", "2026-05-01")
	part, err := w.CreateFormFile("images", "chart.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("png"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/boards/work/tasks", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	var resp BoardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	tasks := resp.Columns[0].Tasks
	if len(tasks) != 1 || tasks[0].Title != "Write report" {
		t.Fatalf("unexpected ToDo tasks: %+v", tasks)
	}
	if tasks[0].ImageURL != "http://blobs/img/u1/chart.png" {
		t.Fatalf("unexpected image_url: %q", tasks[0].ImageURL)
	}
	if tasks[0].DueDate == nil || tasks[0].DueDate.Format(dueDateLayout) != "2026-05-01" {
		t.Fatalf("unexpected due date: %v", tasks[0].DueDate)
	}
}

func TestAddTaskRejectsTooManyImages(t *testing.T) {
	engine := newTestRouter(t, newFakeRepository(fixtureColumns(), nil), &fakeFiles{})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("title", "x")
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		part, _ := w.CreateFormFile("images", name)
		_, _ = part.Write([]byte("png"))
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/boards/work/tasks", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteTaskFailureKeepsTaskAndReportsUnsynced(t *testing.T) {
	repo := newFakeRepository(fixtureColumns(), fixtureTasks())
	repo.fail["DeleteTask"] = errRemote
	engine := newTestRouter(t, repo, &fakeFiles{})

	rec, resp := doJSON(t, engine, http.MethodDelete, "/api/boards/work/tasks/11", nil)
	if rec.Code != http.StatusOK || resp.Synced {
		t.Fatalf("unexpected response: %d synced=%v", rec.Code, resp.Synced)
	}
	if len(resp.Columns[0].Tasks) != 3 {
		t.Fatalf("task should remain: %+v", resp.Columns[0].Tasks)
	}

	rec, _ = doJSON(t, engine, http.MethodDelete, "/api/boards/work/tasks/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteAttachmentRequiresURL(t *testing.T) {
	engine := newTestRouter(t, newFakeRepository(fixtureColumns(), fixtureTasks()), &fakeFiles{})

	rec, _ := doJSON(t, engine, http.MethodDelete, "/api/boards/work/tasks/13/attachments", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec, resp := doJSON(t, engine, http.MethodDelete, "/api/boards/work/tasks/13/attachments?url=http://blobs/img/u1/x.png", nil)
	if rec.Code != http.StatusOK || !resp.Synced {
		t.Fatalf("unexpected response: %d %+v", rec.Code, resp)
	}
}

func TestMutationOnFailedBoardIsConflict(t *testing.T) {
	repo := newFakeRepository(fixtureColumns(), nil)
	repo.fail["ListColumns"] = errRemote
	engine := newTestRouter(t, repo, &fakeFiles{})

	rec, _ := doJSON(t, engine, http.MethodPost, "/api/boards/work/columns", CreateColumnRequest{Name: "Later"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
