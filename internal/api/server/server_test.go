package server_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-token-exchange/internal/api/middleware"
	"github.com/feral-file/ff-token-exchange/internal/api/server"
	"github.com/feral-file/ff-token-exchange/internal/logger"
	"github.com/feral-file/ff-token-exchange/internal/mocks"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := mocks.NewMockAPIHandler(ctrl)
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_requests_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Inc()

	srv := server.New(server.Config{
		Auth:           middleware.AuthConfig{APIKeys: []string{"operator-key"}},
		MetricsPath:    "/metrics",
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, handler)
	router := srv.Router()

	respond := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	handler.EXPECT().HealthCheck(gomock.Any()).Do(respond)
	handler.EXPECT().ListTokenTypes(gomock.Any()).Do(respond)
	handler.EXPECT().GetWalletBalances(gomock.Any()).Do(respond)
	handler.EXPECT().GetWalletNfts(gomock.Any()).Do(respond)
	handler.EXPECT().ListExchanges(gomock.Any()).Do(respond)
	handler.EXPECT().CreateExchange(gomock.Any()).Times(0)
	handler.EXPECT().CreateQuote(gomock.Any()).Times(0)

	tests := []struct {
		method   string
		path     string
		header   string
		wantCode int
	}{
		{http.MethodGet, "/health", "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/token-types", "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/wallets/0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30/balances", "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/wallets/0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30/nfts", "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/exchanges", "ApiKey operator-key", http.StatusNoContent},
		{http.MethodGet, "/api/v1/exchanges", "", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/exchanges", "ApiKey operator-key", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/quotes", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_requests_total 1")
}

func TestRouter_CORS(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := server.New(server.Config{CORSOrigins: []string{"https://feralfile.com"}}, mocks.NewMockAPIHandler(ctrl))
	router := srv.Router()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/token-types", nil)
	req.Header.Set("Origin", "https://feralfile.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://feralfile.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/token-types", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
