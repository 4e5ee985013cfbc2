package student_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/izdlan/AttendanceSMC/internal/metrics"
	"github.com/izdlan/AttendanceSMC/internal/student"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type routerEnv struct {
	router *gin.Engine
	repo   *fakeRepo
	att    *fakeAttendance
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newFakeRepo()
	att := newFakeAttendance()
	handler := student.NewHandler(newService(repo, att), testLogger(), metrics.NewMock())

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api"))
	return &routerEnv{router: router, repo: repo, att: att}
}

func (e *routerEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestEnrollEndpoint(t *testing.T) {
	t.Run("CreatesStudent", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodPost, "/api/students", `{"name":"Aisyah Rahman","form":3,"class":"Creative"}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		var s student.Student
		require.NoError(t, json.NewDecoder(w.Body).Decode(&s))
		assert.Equal(t, "202603C001", s.StudentID)
		assert.True(t, strings.HasPrefix(s.Barcode, "SMK"))
	})

	t.Run("RejectsMissingName", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodPost, "/api/students", `{"form":3,"class":"Creative"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RejectsUnknownForm", func(t *testing.T) {
		env := newRouterEnv(t)

		w := env.do(t, http.MethodPost, "/api/students", `{"name":"Aisyah Rahman","form":9,"class":"Creative"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListStudentsEndpoint(t *testing.T) {
	env := newRouterEnv(t)
	for _, body := range []string{
		`{"name":"Aisyah Rahman","form":1,"class":"Advance"}`,
		`{"name":"Balan Kumar","form":3,"class":"Creative"}`,
	} {
		w := env.do(t, http.MethodPost, "/api/students", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("All", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/students", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var out []student.Student
		require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
		assert.Len(t, out, 2)
	})

	t.Run("Filtered", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/students?form=3&class=Creative", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var out []student.Student
		require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
		require.Len(t, out, 1)
		assert.Equal(t, "Balan Kumar", out[0].Name)
	})

	t.Run("BadFormValue", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/students?form=three", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteStudentEndpoint(t *testing.T) {
	env := newRouterEnv(t)
	w := env.do(t, http.MethodPost, "/api/students", `{"name":"Aisyah Rahman","form":1,"class":"Advance"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var s student.Student
	require.NoError(t, json.NewDecoder(w.Body).Decode(&s))
	env.att.counts[s.StudentID] = 2

	t.Run("ConflictWithHistory", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/api/students/1", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("CascadeSucceeds", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/api/students/1?cascade=true", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("MissingStudentIs404", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/api/students/1", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestClearAttendanceEndpoint(t *testing.T) {
	env := newRouterEnv(t)
	w := env.do(t, http.MethodPost, "/api/students", `{"name":"Aisyah Rahman","form":1,"class":"Advance"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var s student.Student
	require.NoError(t, json.NewDecoder(w.Body).Decode(&s))
	env.att.counts[s.StudentID] = 5

	w = env.do(t, http.MethodDelete, "/api/students/1/attendance", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var out map[string]int
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, 5, out["deletedCount"])
}
