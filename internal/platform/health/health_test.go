package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestReadyHandler_QuandoSemDependencias_DeveRetornar200(t *testing.T) {
	checker := NewChecker(nil, nil)

	req := httptest.NewRequest("GET", "/readyz", nil)
	w := httptest.NewRecorder()

	checker.ReadyHandler()(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestReadyHandler_QuandoRedisDisponivel_DeveRetornar200(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	checker := NewChecker(nil, client)

	req := httptest.NewRequest("GET", "/readyz", nil)
	w := httptest.NewRecorder()

	checker.ReadyHandler()(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyHandler_QuandoRedisForaDoAr_DeveRetornar503(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	checker := NewChecker(nil, client)

	req := httptest.NewRequest("GET", "/readyz", nil)
	w := httptest.NewRecorder()

	checker.ReadyHandler()(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
