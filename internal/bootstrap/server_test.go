package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/venuehub/reservations/config"
	"github.com/venuehub/reservations/internal/domain"
	"github.com/venuehub/reservations/internal/lock"
	"github.com/venuehub/reservations/internal/repository"
	"github.com/venuehub/reservations/internal/service/availability"
	"github.com/venuehub/reservations/internal/service/reservation"
)

func testRouter(t *testing.T, health map[string]HealthCheck) http.Handler {
	t.Helper()
	store := repository.NewMemoryStore()
	res := &domain.Resource{
		ID:          "hall-1",
		Timezone:    "UTC",
		HasSchedule: true,
		MinCapacity: 1,
		MaxCapacity: 20,
		MinHours:    1,
		MaxHours:    8,
		Pricing:     domain.Pricing{HourlyRate: 500, IncludedGuests: 10, ExtraGuestRate: 50},
	}
	for d := range res.Schedule {
		res.Schedule[d] = domain.DaySchedule{Start: domain.NewTimeOfDay(9, 0), End: domain.NewTimeOfDay(21, 0)}
	}
	require.NoError(t, store.Resources().Save(context.Background(), res))

	clock := func() time.Time { return time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC) }
	cfg := config.Default()
	cfg.HTTP.SwaggerDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.HTTP.SwaggerDir, swaggerSpecFile), []byte(`{"swagger":"2.0"}`), 0o644))

	return NewRouter(cfg, zap.NewNop(), Services{
		Availability: availability.NewAvailabilityService(store.Resources(), store.Reservations(), zap.NewNop(),
			availability.WithClock(clock)),
		Reservations: reservation.NewReservationService(store.Resources(), store.Reservations(), lock.NewKeyedMutex(), zap.NewNop(),
			reservation.WithClock(clock)),
		Health: health,
	})
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_BookingFlow(t *testing.T) {
	router := testRouter(t, nil)

	w := do(router, "POST", "/api/v1/resources/hall-1/quote", `{"date":"2026-10-19","start":"10:00","end":"12:00","guest_count":13}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total":1150`)

	w = do(router, "POST", "/api/v1/resources/hall-1/reservations",
		`{"date":"2026-10-19","start":"10:00","end":"12:00","guest_count":4,"holder_id":"guest-1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created domain.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, domain.ReservationStatusPending, created.Status)
	assert.Equal(t, domain.Money(1000), created.Price.Total)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(router, "POST", "/api/v1/resources/hall-1/reservations",
		`{"date":"2026-10-19","start":"11:00","end":"13:00","guest_count":4,"holder_id":"guest-2"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"SLOT_CONFLICT"`)

	w = do(router, "GET", "/api/v1/resources/hall-1/availability?from=2026-10&to=2026-10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"2026-10-19":{"date":"2026-10-19","status":"PARTIALLY_BOOKED"`)

	w = do(router, "POST", "/api/v1/reservations/"+created.ID+"/transitions", `{"action":"confirm"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"CONFIRMED"`)

	w = do(router, "POST", "/api/v1/reservations/"+created.ID+"/transitions", `{"action":"reject"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"LIFECYCLE_VIOLATION"`)

	w = do(router, "GET", "/api/v1/reservations/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, "GET", "/api/v1/resources/hall-1/slots?date=2026-10-19&start=12:00", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ends":["13:00"`)
}

func TestRouter_Healthz(t *testing.T) {
	router := testRouter(t, map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	w := do(router, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","checks":{"postgres":"ok"}}`, w.Body.String())

	router = testRouter(t, map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	w = do(router, "GET", "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestRouter_Swagger(t *testing.T) {
	router := testRouter(t, nil)

	w := do(router, "GET", "/swagger/"+swaggerSpecFile, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"swagger":"2.0"`)

	w = do(router, "GET", "/docs/index.html", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Address = "127.0.0.1:0"
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, zap.NewNop(), Services{}) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
