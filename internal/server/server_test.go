package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-cox/wageledger/internal/tariff"
)

func newTestRouter(t *testing.T, mutate ...func(*Options)) http.Handler {
	t.Helper()
	opts := Options{
		Tariff:             tariff.Default(),
		Location:           time.UTC,
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 100,
		AllowedOrigins:     []string{"https://payroll.example"},
	}
	for _, m := range mutate {
		m(&opts)
	}
	return NewRouter(opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCalculateWages(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/v1/wages", "pekka,1,1.1.2016,8:00,16:00\nmatti,2,2.1.2016,10:00,14:00\n")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		CalculationID string `json:"calculation_id"`
		Months        []struct {
			Year    int `json:"year"`
			Month   int `json:"month"`
			Workers []struct {
				ID           uint64            `json:"id"`
				Name         string            `json:"name"`
				MonthlyWages map[string]string `json:"monthly_wages"`
			} `json:"workers"`
		} `json:"months"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.CalculationID)
	assert.Equal(t, resp.CalculationID, rec.Header().Get(HeaderCalculationID))
	require.Len(t, resp.Months, 1)
	assert.Equal(t, 2016, resp.Months[0].Year)
	assert.Equal(t, 1, resp.Months[0].Month)
	require.Len(t, resp.Months[0].Workers, 2)
	assert.Equal(t, "pekka", resp.Months[0].Workers[0].Name)
	assert.Equal(t, "30.00", resp.Months[0].Workers[0].MonthlyWages["total"])
	assert.Equal(t, "15.00", resp.Months[0].Workers[1].MonthlyWages["total"])
}

func TestCalculateWagesRejectsInvalidRows(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/v1/wages", "pekka,1,1.1.2016,8:00,16:00\nmatti,x,2.1.2016,10:00,14:00\n,3,3.1.2016,10:00,14:00")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, resp.CalculationID, rec.Header().Get(HeaderCalculationID))
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, 1, resp.Errors[0].Row)
	assert.Equal(t, "invalid-id", string(resp.Errors[0].Kind))
	assert.Equal(t, 2, resp.Errors[1].Row)
	assert.Equal(t, "invalid-name", string(resp.Errors[1].Kind))
}

func TestCalculateWagesEmptyBody(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/v1/wages", "")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ErrorsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "invalid-columns", string(resp.Errors[0].Kind))
}

func TestCalculateWagesBodyTooLarge(t *testing.T) {
	router := newTestRouter(t, func(o *Options) { o.MaxBodyBytes = 16 })
	rec := do(t, router, http.MethodPost, "/api/v1/wages", "pekka,1,1.1.2016,8:00,16:00")

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request body too large")
}

func TestValidateTimesheet(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/timesheets/validate", "pekka,1,1.1.2016,8:00,16:00\npekka,1,2.1.2016,22:00,6:00")
	require.Equal(t, http.StatusOK, rec.Code)
	var ok ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.Equal(t, 2, ok.Shifts)

	rec = do(t, router, http.MethodPost, "/api/v1/timesheets/validate", "pekka,1,31.2.2016,8:00,16:00")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var bad ErrorsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bad))
	require.Len(t, bad.Errors, 1)
	assert.Equal(t, "invalid-date", string(bad.Errors[0].Kind))
}

func TestGetTariff(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodGet, "/api/v1/tariff", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var f tariff.File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Equal(t, "3.75", f.RegularRate)
	assert.Equal(t, "16:00", f.Evening.Start)
	assert.Equal(t, "8:00", f.Evening.End)
	require.Len(t, f.Overtime, 3)
	assert.Empty(t, f.Overtime[2].To)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	router := newTestRouter(t, func(o *Options) { o.RateLimitPerMinute = 1 })

	rec := do(t, router, http.MethodPost, "/api/v1/timesheets/validate", "pekka,1,1.1.2016,8:00,16:00")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/timesheets/validate", "pekka,1,1.1.2016,8:00,16:00")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Reads are not limited.
	rec = do(t, router, http.MethodGet, "/api/v1/tariff", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/wages", nil)
	req.Header.Set("Origin", "https://payroll.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://payroll.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
