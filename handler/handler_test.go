package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioauth/database"
	"bioauth/database/dbtest"
	"bioauth/usecase"
	"bioauth/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitValidator()
}

var testNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

type testEnv struct {
	router *gin.Engine
	store  *database.Store
}

func newTestEnv(t *testing.T, strict, requireOld bool) *testEnv {
	t.Helper()
	store := dbtest.NewStore(t)
	clock := func() time.Time { return testNow }

	users := NewUserHandler(
		usecase.NewUserService(store, clock, requireOld),
		usecase.NewSessionService(store, clock))
	telemetry := NewTelemetryHandler(usecase.NewTelemetryService(store, clock, strict))
	exports := NewExportHandler(usecase.NewExportService(store))
	admin := NewAdminHandler(usecase.NewAdminService(store, strict))

	r := gin.New()
	r.GET("/", admin.Home)
	r.POST("/register", users.Register)
	r.POST("/login", users.Login)
	r.POST("/forgot_password", users.ForgotPassword)
	r.POST("/collect_data", telemetry.Collect)
	r.POST("/authenticate", telemetry.Authenticate)
	r.GET("/export_csv", exports.ExportCSV)
	r.GET("/export_excel", exports.ExportExcel)
	r.POST("/clear_data", admin.ClearData)
	r.GET("/stats", admin.Stats)

	return &testEnv{router: r, store: store}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRegisterHandler(t *testing.T) {
	env := newTestEnv(t, false, false)

	tests := []struct {
		name          string
		inputJSON     string
		expectedCode  int
		checkResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:         "Successful registration",
			inputJSON:    `{"username": "alice", "password": "pw1"}`,
			expectedCode: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"status": "registered", "user_id": 1}`, w.Body.String())
			},
		},
		{
			name:         "Duplicate username",
			inputJSON:    `{"username": "alice", "password": "other"}`,
			expectedCode: http.StatusConflict,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "Username already exists", decodeBody(t, w)["error"])
			},
		},
		{
			name:         "Missing password",
			inputJSON:    `{"username": "bob"}`,
			expectedCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "Username and password required", decodeBody(t, w)["error"])
			},
		},
		{
			name:         "Blank username",
			inputJSON:    `{"username": "   ", "password": "pw"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Malformed JSON",
			inputJSON:    `{"username": `,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/register", tt.inputJSON)
			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	env := newTestEnv(t, false, false)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/register", `{"username": "alice", "password": "pw1"}`).Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/register", `{"username": "bob", "password": "pw2"}`).Code)

	tests := []struct {
		name         string
		inputJSON    string
		expectedCode int
		expectedBody string
	}{
		{"First login of alice", `{"username": "alice", "password": "pw1"}`, http.StatusOK, `{"status": "login_success", "session_column": 1}`},
		{"First login of bob", `{"username": "bob", "password": "pw2"}`, http.StatusOK, `{"status": "login_success", "session_column": 2}`},
		{"Repeat login keeps column", `{"username": "alice", "password": "pw1"}`, http.StatusOK, `{"status": "login_success", "session_column": 1}`},
		{"Wrong password", `{"username": "alice", "password": "nope"}`, http.StatusUnauthorized, `{"error": "Invalid credentials"}`},
		{"Unknown user", `{"username": "carol", "password": "pw1"}`, http.StatusUnauthorized, `{"error": "Invalid credentials"}`},
		{"Missing fields", `{}`, http.StatusBadRequest, `{"error": "Username and password required"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/login", tt.inputJSON)
			assert.Equal(t, tt.expectedCode, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestLoginHandler_RecordsDevice(t *testing.T) {
	env := newTestEnv(t, false, false)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/register", `{"username": "alice", "password": "pw1"}`).Code)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username": "alice", "password": "pw1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var device string
	require.NoError(t, env.store.Do(context.Background(), func(ctx context.Context, q database.DBTX) error {
		return q.QueryRowContext(ctx, `SELECT last_device FROM user_sessions WHERE username = 'alice'`).Scan(&device)
	}))
	assert.Equal(t, "Chrome on Windows (Desktop)", device)
}

func TestForgotPasswordHandler(t *testing.T) {
	env := newTestEnv(t, false, false)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/register", `{"username": "alice", "password": "pw1"}`).Code)

	w := env.do(http.MethodPost, "/forgot_password", `{"username": "alice", "new_password": "pw2"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "password_updated"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/login", `{"username": "alice", "password": "pw1"}`).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/login", `{"username": "alice", "password": "pw2"}`).Code)

	w = env.do(http.MethodPost, "/forgot_password", `{"username": "ghost", "new_password": "x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Username not found"}`, w.Body.String())

	w = env.do(http.MethodPost, "/forgot_password", `{"username": "alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "Username and new password required"}`, w.Body.String())
}

func TestForgotPasswordHandler_RequireOld(t *testing.T) {
	env := newTestEnv(t, false, true)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/register", `{"username": "alice", "password": "pw1"}`).Code)

	w := env.do(http.MethodPost, "/forgot_password", `{"username": "alice", "new_password": "pw2", "old_password": "bad"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/forgot_password", `{"username": "alice", "new_password": "pw2", "old_password": "pw1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

const fullTelemetry = `{
	"username": "alice",
	"session_start": "2024-03-05T14:00:00",
	"session_end": "2024-03-05T14:05:00",
	"swipe_gesture": "10,20|30,40",
	"gyroscope_pattern": "0.1,0.2",
	"wifi_ssid": "home",
	"wifi_bssid": "aa:bb",
	"location_lat": 12.5,
	"location_lon": 77.25,
	"login_time": "14:00",
	"screen_brightness": 0.8,
	"consent": true
}`

func TestCollectHandler_Strict(t *testing.T) {
	env := newTestEnv(t, true, false)

	w := env.do(http.MethodPost, "/collect_data", `{"username": "alice", "consent": true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Missing fields", body["error"])
	assert.Contains(t, body["missing"], "session_start")
	assert.NotContains(t, body["missing"], "username")

	w = env.do(http.MethodPost, "/collect_data", strings.Replace(fullTelemetry, `"consent": true`, `"consent": false`, 1))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error": "User consent required"}`, w.Body.String())

	w = env.do(http.MethodPost, "/collect_data", fullTelemetry)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error": "User not registered"}`, w.Body.String())

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/register", `{"username": "alice", "password": "pw1"}`).Code)
	w = env.do(http.MethodPost, "/collect_data", fullTelemetry)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "success", "session_id": "alice_20240305_140709"}`, w.Body.String())
}

func TestCollectHandler_Permissive(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(http.MethodPost, "/collect_data", `{"username": "u", "location_lat": 12.3}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u_20240305_140709", decodeBody(t, w)["session_id"])

	w = env.do(http.MethodPost, "/collect_data", `{"location_lat": 12.3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "Username required"}`, w.Body.String())

	w = env.do(http.MethodPost, "/collect_data", `{"username": "u", "location_lat": "north"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeBody(t, w)
	assert.Equal(t, map[string]any{"users": 1.0, "user_data": 1.0, "user_sessions": 0.0}, stats["tables"])
	assert.Equal(t, false, stats["strict_mode"])
}

func TestAuthenticateHandler(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(http.MethodPost, "/authenticate", `{"features": [1, 2, 3]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"input": {"features": [1, 2, 3]},
		"result": {"authenticated": false, "confidence": 0, "note": "ML model not integrated yet."}
	}`, w.Body.String())

	w = env.do(http.MethodPost, "/authenticate", `not json`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeBody(t, w)["input"])
}

func TestExportCSVHandler(t *testing.T) {
	env := newTestEnv(t, false, false)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/collect_data", `{"username": "u"}`).Code)

	w := env.do(http.MethodGet, "/export_csv", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment;filename=all_sessions.csv", w.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,user_id,username,session_id"))
	assert.Contains(t, lines[1], ",NULL,")
}

func TestExportHandler_StoreClosed(t *testing.T) {
	env := newTestEnv(t, false, false)
	require.NoError(t, env.store.Close())

	for _, path := range []string{"/export_csv", "/export_excel"} {
		w := env.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.Empty(t, w.Header().Get("Content-Disposition"), path)
		assert.Contains(t, decodeBody(t, w)["error"], "export failed")
	}
}

func TestExportExcelHandler(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(http.MethodGet, "/export_excel", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, excelMIME, w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment;filename=all_sessions.xlsx", w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
}

func TestClearDataAndHome(t *testing.T) {
	env := newTestEnv(t, false, false)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/register", `{"username": "alice", "password": "pw1"}`).Code)

	w := env.do(http.MethodPost, "/clear_data", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "cleared"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/login", `{"username": "alice", "password": "pw1"}`).Code)

	w = env.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
}
