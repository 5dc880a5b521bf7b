package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-exchange/internal/api/middleware"
	"github.com/feral-file/ff-token-exchange/internal/logger"
)

const testUserID = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func generateKey(t *testing.T) (*rsa.PrivateKey, string) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	return key, string(publicPEM)
}

func signToken(t *testing.T, key *rsa.PrivateKey, subject string, expiresAt time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestAuthenticate(t *testing.T) {
	key, publicPEM := generateKey(t)
	otherKey, _ := generateKey(t)
	cfg := middleware.AuthConfig{JWTPublicKey: publicPEM, APIKeys: []string{"", "operator-key"}}

	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: testUserID}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		cfg         middleware.AuthConfig
		wantSuccess bool
		wantType    string
		wantSubject string
	}{
		{
			name:        "valid jwt",
			header:      "Bearer " + signToken(t, key, testUserID, time.Now().Add(time.Hour)),
			cfg:         cfg,
			wantSuccess: true,
			wantType:    middleware.AUTH_TYPE_JWT,
			wantSubject: testUserID,
		},
		{
			name:        "scheme is case insensitive",
			header:      "bearer " + signToken(t, key, testUserID, time.Now().Add(time.Hour)),
			cfg:         cfg,
			wantSuccess: true,
			wantType:    middleware.AUTH_TYPE_JWT,
			wantSubject: testUserID,
		},
		{
			name:   "expired jwt",
			header: "Bearer " + signToken(t, key, testUserID, time.Now().Add(-time.Hour)),
			cfg:    cfg,
		},
		{
			name:   "wrong signing key",
			header: "Bearer " + signToken(t, otherKey, testUserID, time.Now().Add(time.Hour)),
			cfg:    cfg,
		},
		{
			name:   "hmac token",
			header: "Bearer " + hs256,
			cfg:    cfg,
		},
		{
			name:   "subject is not a user id",
			header: "Bearer " + signToken(t, key, "alice", time.Now().Add(time.Hour)),
			cfg:    cfg,
		},
		{
			name:   "public key not configured",
			header: "Bearer " + signToken(t, key, testUserID, time.Now().Add(time.Hour)),
			cfg:    middleware.AuthConfig{},
		},
		{
			name:        "valid api key",
			header:      "ApiKey operator-key",
			cfg:         cfg,
			wantSuccess: true,
			wantType:    middleware.AUTH_TYPE_APIKEY,
		},
		{
			name:   "invalid api key",
			header: "ApiKey guess",
			cfg:    cfg,
		},
		{
			name:   "no api keys configured",
			header: "ApiKey operator-key",
			cfg:    middleware.AuthConfig{APIKeys: []string{""}},
		},
		{name: "missing header", cfg: cfg},
		{name: "no credentials", header: "Bearer", cfg: cfg},
		{name: "unsupported scheme", header: "Basic dXNlcjpwYXNz", cfg: cfg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := middleware.Authenticate(tt.header, tt.cfg)

			assert.Equal(t, tt.wantSuccess, result.Success)
			if !tt.wantSuccess {
				assert.Error(t, result.Error)
				return
			}
			assert.NoError(t, result.Error)
			assert.Equal(t, tt.wantType, result.AuthType)
			assert.Equal(t, tt.wantSubject, result.AuthSubject)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	key, publicPEM := generateKey(t)
	cfg := middleware.AuthConfig{JWTPublicKey: publicPEM, APIKeys: []string{"operator-key"}}
	userToken := "Bearer " + signToken(t, key, testUserID, time.Now().Add(time.Hour))

	router := gin.New()
	echo := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"subject":   middleware.Subject(c),
			"auth_type": c.GetString(middleware.AUTH_TYPE_KEY),
		})
	}
	router.GET("/any", middleware.Auth(cfg), echo)
	router.GET("/user", middleware.JWTAuth(cfg), echo)
	router.GET("/operator", middleware.APIKeyAuth(cfg), echo)

	tests := []struct {
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{"/any", userToken, http.StatusOK, `{"subject":"` + testUserID + `","auth_type":"jwt"}`},
		{"/any", "ApiKey operator-key", http.StatusOK, `{"subject":"","auth_type":"apikey"}`},
		{"/user", userToken, http.StatusOK, `{"subject":"` + testUserID + `","auth_type":"jwt"}`},
		{"/user", "ApiKey operator-key", http.StatusUnauthorized, ""},
		{"/operator", "ApiKey operator-key", http.StatusOK, `{"subject":"","auth_type":"apikey"}`},
		{"/operator", userToken, http.StatusUnauthorized, ""},
		{"/operator", "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path+" "+tt.header[:min(len(tt.header), 12)], func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"internal_error"`)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.REQUEST_ID_KEY))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.Len(t, w.Body.String(), 26)
	assert.Equal(t, w.Body.String(), w.Header().Get(middleware.REQUEST_ID_HEADER))

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(middleware.REQUEST_ID_HEADER, "upstream-42")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "upstream-42", w.Body.String())
	assert.Equal(t, "upstream-42", w.Header().Get(middleware.REQUEST_ID_HEADER))
}
