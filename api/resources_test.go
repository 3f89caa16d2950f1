package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/reservations/internal/domain"
	"github.com/venuehub/reservations/internal/service/reservation"
)

var monday = domain.NewDate(2026, time.October, 19)

func newTestContext(method, target string, body []byte, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestResourceHandler_availability(t *testing.T) {
	mockAvailability := &MockAvailabilityUseCase{}
	handler := NewResourceHandler(mockAvailability, &MockReservationUseCase{})

	october := domain.Month{Year: 2026, Month: time.October}
	november := october.Next()
	days := map[domain.Date]domain.Snapshot{
		monday: {
			Date:      monday,
			Status:    domain.DayPartiallyBooked,
			Available: []domain.TimeRange{{Start: 540, End: 600}},
			Booked:    []domain.TimeRange{{Start: 600, End: 720}},
		},
	}
	mockAvailability.On("GetAvailability", mock.Anything, "hall-1", october, november).Return(days, nil)

	c, w := newTestContext("GET", "/resources/hall-1/availability?from=2026-10&to=2026-11", nil, gin.Param{Key: "id", Value: "hall-1"})
	handler.availabilityRange(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		From string `json:"from"`
		To   string `json:"to"`
		Days map[string]struct {
			Status    string `json:"status"`
			Available []struct {
				Start string `json:"start"`
				End   string `json:"end"`
			} `json:"available"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-10", resp.From)
	assert.Equal(t, "2026-11", resp.To)
	require.Contains(t, resp.Days, "2026-10-19")
	assert.Equal(t, "PARTIALLY_BOOKED", resp.Days["2026-10-19"].Status)
	assert.Equal(t, "09:00", resp.Days["2026-10-19"].Available[0].Start)
	mockAvailability.AssertExpectations(t)
}

func TestResourceHandler_availability_BadMonth(t *testing.T) {
	mockAvailability := &MockAvailabilityUseCase{}
	handler := NewResourceHandler(mockAvailability, &MockReservationUseCase{})

	c, w := newTestContext("GET", "/resources/hall-1/availability?from=October", nil, gin.Param{Key: "id", Value: "hall-1"})
	handler.availabilityRange(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.CodeInvalidInput, decodeError(t, w).Code)
	mockAvailability.AssertNotCalled(t, "GetAvailability", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResourceHandler_availability_NotFound(t *testing.T) {
	mockAvailability := &MockAvailabilityUseCase{}
	handler := NewResourceHandler(mockAvailability, &MockReservationUseCase{})
	mockAvailability.On("GetAvailability", mock.Anything, "nope", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("resource nope: %w", domain.ErrResourceNotFound))

	c, w := newTestContext("GET", "/resources/nope/availability?from=2026-10", nil, gin.Param{Key: "id", Value: "nope"})
	handler.availabilityRange(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, domain.CodeResourceNotFound, decodeError(t, w).Code)
}

func TestResourceHandler_slots(t *testing.T) {
	mockAvailability := &MockAvailabilityUseCase{}
	handler := NewResourceHandler(mockAvailability, &MockReservationUseCase{})
	mockAvailability.On("StartTimes", mock.Anything, "hall-1", monday).Return([]domain.TimeOfDay{540, 570}, nil)
	mockAvailability.On("EndTimes", mock.Anything, "hall-1", monday, domain.TimeOfDay(540)).Return([]domain.TimeOfDay{600, 630}, nil)

	c, w := newTestContext("GET", "/resources/hall-1/slots?date=2026-10-19", nil, gin.Param{Key: "id", Value: "hall-1"})
	handler.slots(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"date":"2026-10-19","starts":["09:00","09:30"]}`, w.Body.String())

	c, w = newTestContext("GET", "/resources/hall-1/slots?date=2026-10-19&start=09:00", nil, gin.Param{Key: "id", Value: "hall-1"})
	handler.slots(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"date":"2026-10-19","start":"09:00","ends":["10:00","10:30"]}`, w.Body.String())
}

func TestResourceHandler_slots_Errors(t *testing.T) {
	mockAvailability := &MockAvailabilityUseCase{}
	handler := NewResourceHandler(mockAvailability, &MockReservationUseCase{})
	mockAvailability.On("StartTimes", mock.Anything, "hall-1", monday).Return(nil, domain.ErrUnavailableDate)

	c, w := newTestContext("GET", "/resources/hall-1/slots?date=19.10.2026", nil, gin.Param{Key: "id", Value: "hall-1"})
	handler.slots(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	c, w = newTestContext("GET", "/resources/hall-1/slots?date=2026-10-19", nil, gin.Param{Key: "id", Value: "hall-1"})
	handler.slots(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.CodeUnavailableDate, decodeError(t, w).Code)
}

func TestResourceHandler_quote(t *testing.T) {
	mockReservations := &MockReservationUseCase{}
	handler := NewResourceHandler(&MockAvailabilityUseCase{}, mockReservations)

	input := reservation.QuoteInput{ResourceID: "hall-1", Date: "2026-10-19", Start: "10:00", End: "12:00", GuestCount: 13}
	price := domain.PriceBreakdown{DurationMinutes: 120, BasePrice: 1000, ExtraGuests: 3, Surcharge: 150, Total: 1150}
	mockReservations.On("ValidateAndPrice", mock.Anything, input).Return(price, nil)

	body, _ := json.Marshal(input)
	c, w := newTestContext("POST", "/resources/hall-1/quote", body, gin.Param{Key: "id", Value: "hall-1"})
	handler.quote(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got domain.PriceBreakdown
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, price, got)
	mockReservations.AssertExpectations(t)
}

func TestResourceHandler_quote_MalformedBody(t *testing.T) {
	mockReservations := &MockReservationUseCase{}
	handler := NewResourceHandler(&MockAvailabilityUseCase{}, mockReservations)

	c, w := newTestContext("POST", "/resources/hall-1/quote", []byte(`{"date":`), gin.Param{Key: "id", Value: "hall-1"})
	handler.quote(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.CodeInvalidInput, decodeError(t, w).Code)
	mockReservations.AssertNotCalled(t, "ValidateAndPrice", mock.Anything, mock.Anything)
}

func TestResourceHandler_commit(t *testing.T) {
	mockReservations := &MockReservationUseCase{}
	handler := NewResourceHandler(&MockAvailabilityUseCase{}, mockReservations)

	input := reservation.CommitInput{
		QuoteInput: reservation.QuoteInput{ResourceID: "hall-1", Date: "2026-10-19", Start: "10:00", End: "12:00", GuestCount: 4},
		HolderID:   "guest-1",
	}
	created := &domain.Reservation{
		ID:         "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		ResourceID: "hall-1",
		HolderID:   "guest-1",
		Date:       monday,
		Start:      600,
		End:        720,
		GuestCount: 4,
		Price:      domain.PriceBreakdown{DurationMinutes: 120, BasePrice: 1000, Total: 1000},
		Status:     domain.ReservationStatusPending,
	}
	mockReservations.On("Commit", mock.Anything, input).Return(created, nil)

	body := []byte(`{"date":"2026-10-19","start":"10:00","end":"12:00","guest_count":4,"holder_id":"guest-1"}`)
	c, w := newTestContext("POST", "/resources/hall-1/reservations", body, gin.Param{Key: "id", Value: "hall-1"})
	handler.commit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/reservations/"+created.ID, w.Header().Get("Location"))
	var got domain.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.ReservationStatusPending, got.Status)
	assert.Equal(t, domain.Money(1000), got.Price.Total)
	mockReservations.AssertExpectations(t)
}

func TestResourceHandler_commit_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"past date", domain.ErrPastDate, http.StatusUnprocessableEntity, domain.CodePastDate},
		{"capacity", domain.ErrInvalidCapacity, http.StatusUnprocessableEntity, domain.CodeInvalidCapacity},
		{"conflict", fmt.Errorf("%w: 10:00-12:00 was taken", domain.ErrSlotConflict), http.StatusConflict, domain.CodeSlotConflict},
		{"storage", fmt.Errorf("insert: %w: %w", domain.ErrStorage, fmt.Errorf("conn reset")), http.StatusServiceUnavailable, domain.CodeStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReservations := &MockReservationUseCase{}
			handler := NewResourceHandler(&MockAvailabilityUseCase{}, mockReservations)
			mockReservations.On("Commit", mock.Anything, mock.Anything).Return(nil, tt.err)

			body := []byte(`{"date":"2026-10-19","start":"10:00","end":"12:00","guest_count":4,"holder_id":"guest-1"}`)
			c, w := newTestContext("POST", "/resources/hall-1/reservations", body, gin.Param{Key: "id", Value: "hall-1"})
			handler.commit(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			detail := decodeError(t, w)
			assert.Equal(t, tt.wantCode, detail.Code)
			assert.NotContains(t, detail.Message, "conn reset")
		})
	}
}
