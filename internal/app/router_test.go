package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"puspa_backend/internal/config"
	"puspa_backend/internal/util"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

type clinic struct {
	mu        sync.Mutex
	submitted []map[string]any
}

func (c *clinic) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/assessments/questions", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{"groups":[
			{"group_key":"sensori","title":"Sensori","questions":[
				{"id":1,"question_text":"Skala","answer_type":"slider"},
				{"id":2,"question_text":"Kebiasaan","answer_type":"checkbox","answer_options":"[\"Makan\",\"Tidur\"]"}
			]}
		]}}`)
	})
	mux.HandleFunc("/assessments/A-1/answers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			c.mu.Lock()
			c.submitted = append(c.submitted, body)
			c.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			return
		}
		io.WriteString(w, `{"data":[{"question_id":1,"question_text":"Skala","answer":{"value":4}}]}`)
	})
	return mux
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) (*App, *clinic) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c := &clinic{}
	srv := httptest.NewServer(c.handler(t))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: "test"},
		JWT:       config.JWTConfig{Secret: testSecret},
		Backend:   config.BackendConfig{Mode: config.BackendRemote, BaseURL: srv.URL},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
		Session:   config.SessionConfig{MaxActive: 10},
	}
	a, err := Build(cfg, nil, nil)
	require.NoError(t, err)
	return a, c
}

func token(t *testing.T, userID uint, role string) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, role, "user@puspa.test", testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func call(t *testing.T, a *App, method, path, tok string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func TestHealthIsPublic(t *testing.T) {
	a, _ := newTestApp(t)
	code, _ := call(t, a, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAssessmentRoutesRequireToken(t *testing.T) {
	a, _ := newTestApp(t)
	code, _ := call(t, a, http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, a, http.MethodGet, "/api/categories", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSessionLifecycle(t *testing.T) {
	a, c := newTestApp(t)
	tok := token(t, 7, "orangtua")

	code, env := call(t, a, http.MethodPost, "/api/assessments/A-1/sessions", tok, map[string]string{"category": "parent_okupasi"})
	require.Equal(t, http.StatusCreated, code)
	var opened struct {
		ID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &opened))
	require.NotEmpty(t, opened.ID)
	base := "/api/sessions/" + opened.ID

	require.Eventually(t, func() bool {
		_, env := call(t, a, http.MethodGet, base, tok, nil)
		var st struct {
			Loading bool `json:"loading"`
		}
		return json.Unmarshal(env.Data, &st) == nil && !st.Loading
	}, 2*time.Second, 10*time.Millisecond)

	// 其他用户看不到这个会话
	code, _ = call(t, a, http.MethodGet, base, token(t, 8, "orangtua"), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, a, http.MethodPost, base+"/answers/1", tok, map[string]any{"kind": "set", "value": "9"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, a, http.MethodPost, base+"/answers/1", tok, map[string]any{"kind": "set", "value": "4"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, a, http.MethodPost, base+"/answers/abc", tok, map[string]any{"kind": "set"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, a, http.MethodPost, base+"/answers/99", tok, map[string]any{"kind": "set"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, a, http.MethodPost, base+"/navigate", tok, map[string]string{"action": "fly"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = call(t, a, http.MethodGet, base+"/answers", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"1":4,"2":[]}`, string(env.Data))

	code, _ = call(t, a, http.MethodPost, base+"/submit", tok, nil)
	require.Equal(t, http.StatusOK, code)

	c.mu.Lock()
	require.Len(t, c.submitted, 1)
	// 空的多选不提交
	assert.Len(t, c.submitted[0]["answers"], 1)
	c.mu.Unlock()

	code, _ = call(t, a, http.MethodGet, base, tok, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHistoryRoute(t *testing.T) {
	a, _ := newTestApp(t)
	tok := token(t, 7, "orangtua")

	code, _ := call(t, a, http.MethodGet, "/api/assessments/A-1/history", tok, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := call(t, a, http.MethodGet, "/api/assessments/A-1/history?category=parent_okupasi", tok, nil)
	require.Equal(t, http.StatusOK, code)
	var res struct {
		Groups []struct {
			Key    string `json:"key"`
			Layout string `json:"layout"`
			Items  []struct {
				QuestionID int `json:"question_id"`
			} `json:"items"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.Groups)
	assert.Equal(t, "sensori", res.Groups[0].Key)
	require.Len(t, res.Groups[0].Items, 1)
	assert.Equal(t, 1, res.Groups[0].Items[0].QuestionID)
}

func TestAdminRoutes(t *testing.T) {
	a, _ := newTestApp(t)

	code, _ := call(t, a, http.MethodDelete, "/api/admin/schemas/parent_okupasi/cache", token(t, 7, "orangtua"), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, a, http.MethodDelete, "/api/admin/schemas/parent_okupasi/cache", token(t, 1, util.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, a, http.MethodDelete, "/api/admin/schemas/unknown/cache", token(t, 1, util.RoleAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestConfigCallbacksRun(t *testing.T) {
	a, _ := newTestApp(t)
	var seen *config.Config
	a.RegisterConfigCallback(func(c *config.Config) { seen = c })

	next := &config.Config{History: config.HistoryConfig{Ranges: map[string][]config.RangeConfig{
		"parent_general": {{Key: "semua", Title: "Semua", Min: 1, Max: 999}},
	}}}
	a.reloadConfig(next)
	assert.Same(t, next, seen)
	assert.Len(t, a.services.ranges.Get()["parent_general"], 1)
}
