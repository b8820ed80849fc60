package handler

import (
	"net/http/httptest"
	"testing"
	"time"

	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/internal/pkg/serverutils"
	internalWS "sales-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	h := NewChatWsHandler(internalWS.NewHub(nil, nil, logger.NewNopLogger()), logger.NewNopLogger())
	h.RegisterRoutes(app.Group("/api"), serverutils.JwtMiddleware(secret))
	return app
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestServeWsRequiresToken(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest("GET", "/api/chat/v1/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestServeWsRejectsForeignSignature(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u1"}).SignedString([]byte("other"))
	require.NoError(t, err)

	resp, err := newApp().Test(httptest.NewRequest("GET", "/api/chat/v1/ws?token="+tok, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestServeWsWithoutUpgrade(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest("GET", "/api/chat/v1/ws", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := newApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
