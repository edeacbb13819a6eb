package api

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
	"github.com/stretchr/testify/mock"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
)

// MockQueueUseCase is a mock implementation of queue.QueueUseCase
type MockQueueUseCase struct {
	mock.Mock
}

func (m *MockQueueUseCase) Enter(ctx context.Context, licensePlate, destinationID string, queueType domain.QueueType) (*domain.QueueEntry, error) {
	args := m.Called(ctx, licensePlate, destinationID, queueType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueEntry), args.Error(1)
}

func (m *MockQueueUseCase) Exit(ctx context.Context, licensePlate string) (*domain.QueueEntry, error) {
	args := m.Called(ctx, licensePlate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueEntry), args.Error(1)
}

func (m *MockQueueUseCase) Move(ctx context.Context, licensePlate, destinationID string) (*domain.QueueEntry, error) {
	args := m.Called(ctx, licensePlate, destinationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueEntry), args.Error(1)
}

func (m *MockQueueUseCase) SetStatus(ctx context.Context, licensePlate string, status domain.QueueStatus) (*domain.QueueEntry, error) {
	args := m.Called(ctx, licensePlate, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueEntry), args.Error(1)
}

func (m *MockQueueUseCase) ActiveEntry(ctx context.Context, licensePlate string) (*domain.QueueEntry, error) {
	args := m.Called(ctx, licensePlate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueEntry), args.Error(1)
}

func (m *MockQueueUseCase) ListByDestination(ctx context.Context, destinationID string) ([]domain.QueueEntry, error) {
	args := m.Called(ctx, destinationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QueueEntry), args.Error(1)
}

func sampleEntry() *domain.QueueEntry {
	return &domain.QueueEntry{
		ID:             1,
		VehicleID:      7,
		LicensePlate:   "123 TN 4567",
		DestinationID:  "st-sousse",
		QueueType:      domain.QueueTypeRegular,
		QueuePosition:  3,
		Status:         domain.QueueStatusWaiting,
		EnteredAt:      time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		AvailableSeats: 8,
		TotalSeats:     8,
		BasePriceCents: 1000,
	}
}

func TestQueueHandler_enter(t *testing.T) {
	mockService := &MockQueueUseCase{}
	handler := NewQueueHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(enterQueueRequest{LicensePlate: "123 TN 4567", DestinationID: "st-sousse"})
	c.Request = httptest.NewRequest("POST", "/queue/enter", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// queue_type omitted in the request defaults to REGULAR
	mockService.On("Enter", c.Request.Context(), "123 TN 4567", "st-sousse", domain.QueueTypeRegular).
		Return(sampleEntry(), nil)

	handler.enter(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response queueEntryResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 3, response.QueuePosition)
	assert.Equal(t, "WAITING", response.Status)

	mockService.AssertExpectations(t)
}

func TestQueueHandler_enter_badQueueType(t *testing.T) {
	mockService := &MockQueueUseCase{}
	handler := NewQueueHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(enterQueueRequest{LicensePlate: "123 TN 4567", DestinationID: "st-sousse", QueueType: "NIGHTLY"})
	c.Request = httptest.NewRequest("POST", "/queue/enter", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.enter(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Enter", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQueueHandler_enter_alreadyQueued(t *testing.T) {
	mockService := &MockQueueUseCase{}
	handler := NewQueueHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(enterQueueRequest{LicensePlate: "123 TN 4567", DestinationID: "st-sousse"})
	c.Request = httptest.NewRequest("POST", "/queue/enter", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Enter", c.Request.Context(), "123 TN 4567", "st-sousse", domain.QueueTypeRegular).
		Return(nil, domain.ErrAlreadyQueued)

	handler.enter(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestQueueHandler_exit_activeBookings(t *testing.T) {
	mockService := &MockQueueUseCase{}
	handler := NewQueueHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(exitQueueRequest{LicensePlate: "123 TN 4567"})
	c.Request = httptest.NewRequest("POST", "/queue/exit", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Exit", c.Request.Context(), "123 TN 4567").Return(nil, domain.ErrHasActiveBookings)

	handler.exit(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestQueueHandler_setStatus(t *testing.T) {
	mockService := &MockQueueUseCase{}
	handler := NewQueueHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "licensePlate", Value: "123 TN 4567"}}
	body, _ := json.Marshal(setStatusRequest{Status: "READY"})
	c.Request = httptest.NewRequest("PUT", "/queue/123%20TN%204567/status", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	entry := sampleEntry()
	entry.Status = domain.QueueStatusReady
	mockService.On("SetStatus", c.Request.Context(), "123 TN 4567", domain.QueueStatusReady).Return(entry, nil)

	handler.setStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response queueEntryResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "READY", response.Status)

	mockService.AssertExpectations(t)
}

func TestQueueHandler_setStatus_backwards(t *testing.T) {
	mockService := &MockQueueUseCase{}
	handler := NewQueueHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "licensePlate", Value: "123 TN 4567"}}
	body, _ := json.Marshal(setStatusRequest{Status: "WAITING"})
	c.Request = httptest.NewRequest("PUT", "/queue/123%20TN%204567/status", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("SetStatus", c.Request.Context(), "123 TN 4567", domain.QueueStatusWaiting).
		Return(nil, domain.ErrInvalidStatusChange)

	handler.setStatus(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestQueueHandler_list(t *testing.T) {
	mockService := &MockQueueUseCase{}
	handler := NewQueueHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "destinationId", Value: "st-sousse"}}
	c.Request = httptest.NewRequest("GET", "/queue/destination/st-sousse", nil)

	entries := []domain.QueueEntry{*sampleEntry()}
	mockService.On("ListByDestination", c.Request.Context(), "st-sousse").Return(entries, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []queueEntryResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 1)
	assert.Equal(t, "123 TN 4567", response[0].LicensePlate)

	mockService.AssertExpectations(t)
}
