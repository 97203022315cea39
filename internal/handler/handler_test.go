package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flight-forecast-backend/internal/dataset"
	"flight-forecast-backend/internal/model"
	"flight-forecast-backend/internal/predictor"
	"flight-forecast-backend/internal/service"
)

var testNow = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

func newRouter(t *testing.T, ready bool) (*gin.Engine, *service.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	seed := int64(42)
	svc := service.New(service.Options{
		ModelDir: t.TempDir(),
		Dataset:  &dataset.Builder{Synthetic: dataset.SyntheticOptions{Samples: 500, Seed: 42}},
		Train:    predictor.Options{Trees: 6, MaxDepth: 8, Seed: &seed, Workers: 2},
		CacheTTL: time.Minute,
		Now:      func() time.Time { return testNow },
	})
	if ready {
		require.NoError(t, svc.Init(context.Background()))
	}
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	New(svc, nil).Register(r)
	return r, svc
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var predictBody = map[string]any{
	"airline":          "IndiGo",
	"source_city":      "Delhi",
	"destination_city": "Mumbai",
	"departure_date":   "2024-03-04",
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t, false)
	w := do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["model_loaded"])
	assert.Equal(t, "2024-03-01T09:00:00Z", body["timestamp"])
}

func TestModelNotReady(t *testing.T) {
	r, _ := newRouter(t, false)
	w := do(r, http.MethodPost, "/api/predict", predictBody)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "MODEL_NOT_READY", decode(t, w)["error_code"])

	w = do(r, http.MethodGet, "/api/catalog", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPredict(t *testing.T) {
	r, _ := newRouter(t, true)

	w := do(r, http.MethodPost, "/api/predict", predictBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "book_now", body["recommendation"])
	assert.Greater(t, body["predicted_price"].(float64), 0.0)

	w = do(r, http.MethodPost, "/api/predict", map[string]any{"airline": "IndiGo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, w)["error_code"])

	bad := map[string]any{"airline": "IndiGo", "source_city": "Delhi", "destination_city": "Mumbai", "departure_date": "March 4"}
	w = do(r, http.MethodPost, "/api/predict", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/predict", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchPredict(t *testing.T) {
	r, _ := newRouter(t, true)
	items := []map[string]any{
		{"airline": "", "source_city": "Delhi", "destination_city": "Mumbai", "departure_date": "2024-03-04"},
		predictBody,
		{"airline": "IndiGo", "source_city": "Delhi", "destination_city": "Mumbai", "departure_date": "04/03/2024"},
		{"airline": "IndiGo", "source_city": "Delhi", "destination_city": "Mumbai", "departure_date": "2024-03-04", "total_stops": -1},
	}

	w := do(r, http.MethodPost, "/api/batch-predict", items)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res model.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Count)
	require.Len(t, res.Predictions, 1)
	assert.Equal(t, 1, res.Predictions[0].Index)
	require.Len(t, res.Failed, 3)
	assert.Equal(t, []int{0, 2, 3}, []int{res.Failed[0].Index, res.Failed[1].Index, res.Failed[2].Index})
	assert.Contains(t, res.Failed[0].Error, "Airline")

	w = do(r, http.MethodPost, "/api/batch-predict", predictBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchTaskFlow(t *testing.T) {
	r, _ := newRouter(t, true)

	w := do(r, http.MethodPost, "/api/batch-predict/tasks", map[string]any{"items": []any{predictBody}})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	id := decode(t, w)["task_id"].(string)
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		w := do(r, http.MethodGet, "/api/tasks/"+id, nil)
		var st service.TaskStatus
		return w.Code == http.StatusOK && json.Unmarshal(w.Body.Bytes(), &st) == nil && st.Status == service.TaskDone
	}, 10*time.Second, 10*time.Millisecond)

	w = do(r, http.MethodGet, "/api/tasks/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/api/batch-predict/tasks", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/batch-predict/tasks", map[string]any{"request_id": "r-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPriceTrend(t *testing.T) {
	r, _ := newRouter(t, true)

	w := do(r, http.MethodPost, "/api/price-trend", map[string]any{"source_city": "Delhi", "destination_city": "Mumbai", "days_ahead": 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(10), body["days_ahead"])
	assert.Len(t, body["trend_data"], 10)

	w = do(r, http.MethodPost, "/api/price-trend", map[string]any{"source_city": "Delhi", "destination_city": "Mumbai"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["trend_data"], 30)

	w = do(r, http.MethodPost, "/api/price-trend", map[string]any{"source_city": "Delhi", "destination_city": "Mumbai", "days_ahead": 500})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeAndCompare(t *testing.T) {
	r, _ := newRouter(t, true)

	w := do(r, http.MethodPost, "/api/analyze-price", map[string]any{"current_price": 5000, "source_city": "Delhi", "destination_city": "Mumbai", "departure_date": "2024-03-15"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	analysis := decode(t, w)["analysis"].(map[string]any)
	assert.Contains(t, []any{"book_now", "book_soon", "wait_and_watch", "wait"}, analysis["action"])

	w = do(r, http.MethodPost, "/api/analyze-price", map[string]any{"current_price": -1, "source_city": "Delhi", "destination_city": "Mumbai"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/compare-flights", map[string]any{"origin": "Delhi", "destination": "Mumbai", "departure_date": "2024-03-10"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Len(t, body["realtime_flights"], 7)
	assert.Contains(t, body, "price_analysis")

	w = do(r, http.MethodPost, "/api/compare-flights", map[string]any{"origin": "Delhi", "destination": "Mumbai", "departure_date": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModelEndpoints(t *testing.T) {
	r, svc := newRouter(t, true)

	w := do(r, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["airlines"], "IndiGo")

	w = do(r, http.MethodGet, "/api/model", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode(t, w)["model"].(map[string]any)
	assert.Equal(t, "synthetic", m["data_source"])
	assert.Equal(t, float64(500), m["training_rows"])

	w = do(r, http.MethodPost, "/api/model/retrain", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Eventually(t, func() bool { return !svc.Retraining() }, 10*time.Second, 10*time.Millisecond)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newRouter(t, true)
	do(r, http.MethodPost, "/api/predict", predictBody)
	w := do(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flight_predictions_total")
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(2, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = do(r, http.MethodGet, "/ping", nil).Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestLimiterStoreEvictsIdle(t *testing.T) {
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	s := newLimiterStore(5)
	s.now = func() time.Time { return now }

	first := s.get("10.0.0.1")
	s.get("10.0.0.2")
	assert.Equal(t, 2, s.size())

	now = now.Add(limiterIdle / 2)
	assert.Same(t, first, s.get("10.0.0.1"))

	now = now.Add(limiterIdle)
	s.get("10.0.0.3")
	assert.Equal(t, 1, s.size())
	assert.NotSame(t, first, s.get("10.0.0.1"))
	assert.Equal(t, 2, s.size())
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decode(t, w)["error_code"])
}
