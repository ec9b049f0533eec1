package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"doctrack/internal/apperr"
	"doctrack/internal/model"
	svcMocks "doctrack/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey)
		return c.SendString(rid.(string))
	})

	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "generates an id when missing"},
		{name: "keeps a well-formed id", header: "test-id-123", wantSame: true},
		{name: "replaces an id with spaces", header: "bad id"},
		{name: "replaces an overlong id", header: strings.Repeat("a", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			resp, _ := app.Test(req)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			rid := resp.Header.Get(RequestIDHeader)
			assert.NotEmpty(t, rid)
			if tt.wantSame {
				assert.Equal(t, tt.header, rid)
			} else {
				assert.NotEqual(t, tt.header, rid)
			}

			buf := new(bytes.Buffer)
			buf.ReadFrom(resp.Body)
			assert.Equal(t, rid, buf.String())
		})
	}
}

func TestSkip(t *testing.T) {
	calls := 0
	counting := func(c *fiber.Ctx) error {
		calls++
		return c.Next()
	}

	app := fiber.New()
	app.Use(Skip(counting, "/healthz"))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/test", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, _ := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, calls)

	resp, _ = app.Test(httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	loc := time.UTC

	app.Use(RequestID())
	app.Use(loggerWithWriter(&buf, loc))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "busy")
	})

	t.Run("success", func(t *testing.T) {
		buf.Reset()
		resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

		var logData map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))

		assert.Equal(t, resp.Header.Get(RequestIDHeader), logData["request_id"])
		assert.Equal(t, "GET", logData["method"])
		assert.Equal(t, "/test", logData["path"])
		assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
		assert.NotNil(t, logData["latency"])
		assert.NotEmpty(t, logData["ts"])
	})

	t.Run("error status comes from the returned error", func(t *testing.T) {
		buf.Reset()
		app.Test(httptest.NewRequest("GET", "/fail", nil))

		var logData map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
		assert.Equal(t, float64(fiber.StatusConflict), logData["status"])
	})
}

func TestAuth(t *testing.T) {
	alice := model.User{ID: "user-a", Email: "alice@example.com"}

	tests := []struct {
		name       string
		header     string
		setupMocks func(m *svcMocks.MockAuthService)
		wantStatus int
	}{
		{
			name:   "valid token",
			header: "Bearer good",
			setupMocks: func(m *svcMocks.MockAuthService) {
				m.On("Authenticate", mock.Anything, "good").Return(&alice, nil)
			},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "missing header",
			setupMocks: func(m *svcMocks.MockAuthService) {},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			setupMocks: func(m *svcMocks.MockAuthService) {},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:   "revoked token",
			header: "bearer old",
			setupMocks: func(m *svcMocks.MockAuthService) {
				m.On("Authenticate", mock.Anything, "old").Return(nil, apperr.Authorization("session has been signed out"))
			},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:   "blacklist down",
			header: "Bearer good",
			setupMocks: func(m *svcMocks.MockAuthService) {
				m.On("Authenticate", mock.Anything, "good").Return(nil, apperr.Backend(errors.New("redis down"), "check session"))
			},
			wantStatus: fiber.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(svcMocks.MockAuthService)
			tt.setupMocks(m)

			app := fiber.New()
			app.Use(Auth(m))
			app.Get("/me", func(c *fiber.Ctx) error {
				u, ok := UserFrom(c)
				if !ok {
					return c.SendStatus(fiber.StatusTeapot)
				}
				return c.SendString(u.ID + ":" + TokenFrom(c))
			})

			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, _ := app.Test(req)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == fiber.StatusOK {
				buf := new(bytes.Buffer)
				buf.ReadFrom(resp.Body)
				assert.Equal(t, "user-a:good", buf.String())
			}
			m.AssertExpectations(t)
		})
	}
}

// loggerWithWriter is Logger writing JSON lines to w with timestamps in loc.
func loggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(t.In(loc).Format(time.RFC3339Nano))
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), zapcore.InfoLevel)
	return Logger(zap.New(core))
}
