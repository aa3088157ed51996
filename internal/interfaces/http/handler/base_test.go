package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handlerFunc gin.HandlerFunc) (*httptest.ResponseRecorder, dto.Response) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("request_id", "req-123")

	handlerFunc(c)

	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestBaseHandler_Success(t *testing.T) {
	h := &BaseHandler{}
	w, resp := performRequest(func(c *gin.Context) {
		h.Success(c, map[string]string{"key": "value"})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandler_SuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	w, resp := performRequest(func(c *gin.Context) {
		h.SuccessWithMeta(c, []string{"a", "b"}, 45, 2, 20)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandler_HandleError_DomainErrors(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation maps to 400",
			err:        shared.NewValidationError("booking does not exist"),
			wantStatus: http.StatusBadRequest,
			wantCode:   shared.ErrCodeValidation,
		},
		{
			name:       "not found maps to 404",
			err:        shared.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   shared.ErrCodeNotFound,
		},
		{
			name:       "invalid state maps to 409",
			err:        shared.ErrInvalidState,
			wantStatus: http.StatusConflict,
			wantCode:   shared.ErrCodeInvalidState,
		},
		{
			name:       "concurrency conflict maps to 409",
			err:        shared.ErrConcurrencyConflict,
			wantStatus: http.StatusConflict,
			wantCode:   shared.ErrCodeConcurrencyConflict,
		},
		{
			name:       "storage maps to 500",
			err:        shared.NewDomainError(shared.ErrCodeStorage, "connection refused to db host 10.0.0.5"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   shared.ErrCodeStorage,
		},
		{
			name:       "unknown error maps to 500",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := performRequest(func(c *gin.Context) {
				h.HandleError(c, tt.err)
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			require.NotNil(t, resp.Error)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-123", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleError_HidesInternalDetail(t *testing.T) {
	h := &BaseHandler{}
	_, resp := performRequest(func(c *gin.Context) {
		h.HandleError(c, shared.NewDomainError(shared.ErrCodeStorage, "connection refused to db host 10.0.0.5"))
	})

	require.NotNil(t, resp.Error)
	assert.NotContains(t, resp.Error.Message, "10.0.0.5")
}

func TestBaseHandler_HandleError_WrappedDomainError(t *testing.T) {
	h := &BaseHandler{}
	wrapped := fmt.Errorf("lookup payment: %w", shared.ErrNotFound)

	w, resp := performRequest(func(c *gin.Context) {
		h.HandleError(c, wrapped)
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, shared.ErrCodeNotFound, resp.Error.Code)
}
