package cookiestore

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storesync/core/syncer"
)

// runRequest executes fn inside a fiber handler with the given request
// cookies and returns the cookies set on the response.
func runRequest(t *testing.T, cookies map[string]string, fn func(s *Store)) []*http.Cookie {
	t.Helper()

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		fn(New(c, nil))
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	return resp.Cookies()
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestGetReadsRequestCookies(t *testing.T) {
	runRequest(t, map[string]string{"theme": "dark"}, func(s *Store) {
		v, ok := s.Get("theme")
		assert.True(t, ok)
		assert.Equal(t, "dark", v)

		_, ok = s.Get("missing")
		assert.False(t, ok)
	})
}

func TestSetWritesResponseCookieAndOverlay(t *testing.T) {
	cookies := runRequest(t, nil, func(s *Store) {
		s.Set("theme", "dark")

		// The write must be visible to reads within the same request.
		v, ok := s.Get("theme")
		assert.True(t, ok)
		assert.Equal(t, "dark", v)
	})

	set := findCookie(cookies, "theme")
	require.NotNil(t, set, "expected a Set-Cookie header for theme")
	assert.Equal(t, "dark", set.Value)
}

func TestRemoveExpiresCookie(t *testing.T) {
	cookies := runRequest(t, map[string]string{"theme": "dark"}, func(s *Store) {
		s.Remove("theme")

		_, ok := s.Get("theme")
		assert.False(t, ok, "removed cookie must not be readable")
	})

	expired := findCookie(cookies, "theme")
	require.NotNil(t, expired)
	assert.True(t, expired.Expires.Before(time.Now()), "removal must expire the cookie")
}

func TestRemoveAbsentKeyWritesNothing(t *testing.T) {
	cookies := runRequest(t, nil, func(s *Store) {
		s.Remove("missing")
	})
	assert.Nil(t, findCookie(cookies, "missing"))
}

func TestGetAllMergesRequestAndOverlay(t *testing.T) {
	runRequest(t, map[string]string{"a": "1", "b": "2"}, func(s *Store) {
		s.Set("b", "20")
		s.Set("c", "3")
		s.Remove("a")

		assert.Equal(t, map[string]string{"b": "20", "c": "3"}, s.GetAll())
	})
}

func TestSetAllReplacesVisibleSet(t *testing.T) {
	runRequest(t, map[string]string{"old": "1"}, func(s *Store) {
		s.SetAll(map[string]string{"new": "2"})

		assert.Equal(t, map[string]string{"new": "2"}, s.GetAll())
	})
}

func TestClear(t *testing.T) {
	runRequest(t, map[string]string{"a": "1", "b": "2"}, func(s *Store) {
		s.Clear()
		assert.Empty(t, s.GetAll())
	})
}

func TestValuesEngineOverCookies(t *testing.T) {
	cookies := runRequest(t, map[string]string{"lang": "en"}, func(s *Store) {
		v, err := syncer.NewValues(s, syncer.ValuesOptions{})
		require.NoError(t, err)

		lang, ok := v.GetKey("lang")
		assert.True(t, ok)
		assert.Equal(t, "en", lang)

		v.Set("theme", "dark")
	})

	set := findCookie(cookies, "theme")
	require.NotNil(t, set)
	assert.Equal(t, "dark", set.Value)
}

func TestWithMaxAgeSetsExpiry(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		s := New(c, nil, WithMaxAge(time.Hour))
		s.Set("theme", "dark")
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	set := findCookie(resp.Cookies(), "theme")
	require.NotNil(t, set)
	assert.True(t, set.Expires.After(time.Now()))
}
