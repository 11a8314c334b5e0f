package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"klar/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(utils.StatusCode(err)).SendString(err.Error())
		},
	})
}

func csrfCookie(resp *http.Response) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == "csrf_token" {
			return ck
		}
	}
	return nil
}

func TestCSRFDoubleSubmit(t *testing.T) {
	app := newApp()
	app.Use(CSRFProtection())
	app.Get("/form", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("csrf").(string))
	})
	app.Post("/form", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/form", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	cookie := csrfCookie(resp)
	require.NotNil(t, cookie)
	assert.Equal(t, cookie.Value, string(body))

	// missing token
	req := httptest.NewRequest(http.MethodPost, "/form", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// header token
	req = httptest.NewRequest(http.MethodPost, "/form", nil)
	req.AddCookie(cookie)
	req.Header.Set("X-CSRF-Token", cookie.Value)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// form token
	form := url.Values{"_csrf": {cookie.Value}}
	req = httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// mismatch
	req = httptest.NewRequest(http.MethodPost, "/form", nil)
	req.AddCookie(cookie)
	req.Header.Set("X-CSRF-Token", "forged")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCSRFSkipsBearerRequests(t *testing.T) {
	app := newApp()
	app.Use(CSRFProtection())
	app.Post("/api", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodPost, "/api", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLocaleDetection(t *testing.T) {
	app := newApp()
	app.Use(LocaleMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("lang").(string))
	})

	tests := []struct {
		name   string
		query  string
		cookie string
		accept string
		want   string
	}{
		{"default", "", "", "", "fr"},
		{"accept english", "", "", "en-US,en;q=0.9", "en"},
		{"accept unsupported", "", "", "ja", "fr"},
		{"cookie wins over header", "", "en", "fr-FR", "en"},
		{"query wins", "lang=fr", "en", "en", "fr"},
		{"unsupported query ignored", "lang=de", "", "en", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/"
			if tt.query != "" {
				target += "?" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "lang", Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Close()

	app := newApp()
	app.Use(limiter.Handler())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimiterForgetsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Close()

	now := time.Now()
	limiter.now = func() time.Time { return now }
	limiter.allow("10.0.0.1")
	limiter.allow("10.0.0.2")
	assert.Equal(t, 2, limiter.Clients())

	now = now.Add(rateIdleAfter / 2)
	limiter.allow("10.0.0.2")
	now = now.Add(rateIdleAfter/2 + time.Second)
	limiter.cleanup()
	assert.Equal(t, 1, limiter.Clients())

	// a fresh bucket replaces the forgotten one
	assert.True(t, limiter.allow("10.0.0.1"))
}

func TestRateLimiterCloseIsIdempotent(t *testing.T) {
	limiter := NewRateLimiter(1, time.Second)
	limiter.Close()
	limiter.Close()

	select {
	case <-limiter.stop:
	default:
		t.Fatal("stop channel still open")
	}
}
