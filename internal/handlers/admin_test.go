package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"pixelgate/internal/config"
	"pixelgate/internal/kvstore"
	"pixelgate/internal/models"
	"pixelgate/internal/repository"
	"pixelgate/internal/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error   string `json:"error"`
	Details []struct {
		Path    string `json:"path"`
		Message string `json:"message"`
	} `json:"details"`
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestPixelRoutes(t *testing.T) {
	h, env := setupTestHandler(t, config.Config{})
	r := setupTestRouter(h)

	t.Run("Empty List", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/pixels", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	var created models.Pixel
	t.Run("Create", func(t *testing.T) {
		w := doRequest(r, "POST", "/api/pixels", `{"label":"Main","pixelId":"1234567890"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		created = decode[models.Pixel](t, w.Body.String())
		assert.NotEmpty(t, created.ID)
		assert.True(t, created.IsDefault)
		assert.Equal(t, []models.MetaEvent{models.EventPageView}, created.DefaultEvents)
	})

	t.Run("Validation Error", func(t *testing.T) {
		w := doRequest(r, "POST", "/api/pixels", `{"label":"Main","pixelId":"abc"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		body := decode[errorBody](t, w.Body.String())
		assert.NotEmpty(t, body.Error)
		require.NotEmpty(t, body.Details)
		assert.Equal(t, "pixelId", body.Details[0].Path)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		w := doRequest(r, "POST", "/api/pixels", `{"label":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Second Default Wins", func(t *testing.T) {
		w := doRequest(r, "POST", "/api/pixels", `{"label":"Backup","pixelId":"9876543210","isDefault":true}`)
		require.Equal(t, http.StatusOK, w.Code)

		list := decode[[]models.Pixel](t, doRequest(r, "GET", "/api/pixels", "").Body.String())
		require.Len(t, list, 2)
		defaults := 0
		for _, p := range list {
			if p.IsDefault {
				defaults++
				assert.Equal(t, "9876543210", p.PixelID)
			}
		}
		assert.Equal(t, 1, defaults)
	})

	t.Run("Delete Is Idempotent", func(t *testing.T) {
		w := doRequest(r, "DELETE", "/api/pixels/"+created.ID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = doRequest(r, "DELETE", "/api/pixels/"+created.ID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		_, err := env.pixels.GetByID(context.Background(), created.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestProductRoutes(t *testing.T) {
	h, env := setupTestHandler(t, config.Config{})
	r := setupTestRouter(h)
	pixel := seedPixel(t, env)

	t.Run("Create And List", func(t *testing.T) {
		body := fmt.Sprintf(`{"title":"Fone Bluetooth","affiliateUrl":"https://shopee.com.br/fone","pixelConfigId":%q,"events":["ViewContent"],"status":"active"}`, pixel.ID)
		w := doRequest(r, "POST", "/api/products", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		product := decode[models.Product](t, w.Body.String())
		assert.Equal(t, "fone-bluetooth", product.Slug)

		list := decode[[]models.Product](t, doRequest(r, "GET", "/api/products", "").Body.String())
		require.Len(t, list, 1)
		assert.Equal(t, product.ID, list[0].ID)
	})

	t.Run("Disallowed Host", func(t *testing.T) {
		body := fmt.Sprintf(`{"title":"X","affiliateUrl":"https://randomsite.com/x","pixelConfigId":%q,"events":["ViewContent"],"status":"active"}`, pixel.ID)
		w := doRequest(r, "POST", "/api/products", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body2 := decode[errorBody](t, w.Body.String())
		require.NotEmpty(t, body2.Details)
		assert.Equal(t, "affiliateUrl", body2.Details[0].Path)
	})

	t.Run("Unknown Pixel", func(t *testing.T) {
		body := `{"title":"X","affiliateUrl":"https://shopee.com/x","pixelConfigId":"missing","events":["ViewContent"],"status":"active"}`
		w := doRequest(r, "POST", "/api/products", body)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		product := seedProduct(t, env, pixel.ID, models.StatusActive)
		assert.Equal(t, http.StatusNoContent, doRequest(r, "DELETE", "/api/products/"+product.ID, "").Code)
		assert.Equal(t, http.StatusNoContent, doRequest(r, "DELETE", "/api/products/"+product.ID, "").Code)
	})
}

func TestWhatsAppRoutes(t *testing.T) {
	h, env := setupTestHandler(t, config.Config{})
	r := setupTestRouter(h)

	var page models.WhatsAppPage
	t.Run("Create", func(t *testing.T) {
		body := `{"headline":"Grupo VIP","buttonText":"Entrar","whatsappUrl":"https://chat.whatsapp.com/abc","events":["PageView"],"redirectEvent":"Lead","status":"active","vacancyCounterEnabled":true,"vacancyCount":3,"vacancyDecrementInterval":1}`
		w := doRequest(r, "POST", "/api/whatsapp", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		page = decode[models.WhatsAppPage](t, w.Body.String())
		assert.Equal(t, "grupo-vip", page.Slug)
		assert.Equal(t, models.ModeVacancyCounter, page.RedirectMode)
		assert.False(t, page.RedirectEnabled)
	})

	t.Run("Both Modes Rejected", func(t *testing.T) {
		body := `{"headline":"Outro","buttonText":"Entrar","whatsappUrl":"https://chat.whatsapp.com/abc","events":["PageView"],"redirectEvent":"Lead","status":"active","redirectEnabled":true,"vacancyCounterEnabled":true}`
		w := doRequest(r, "POST", "/api/whatsapp", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Non WhatsApp URL", func(t *testing.T) {
		body := `{"headline":"Outro","buttonText":"Entrar","whatsappUrl":"https://example.com/abc","events":["PageView"],"redirectEvent":"Lead","status":"active"}`
		w := doRequest(r, "POST", "/api/whatsapp", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List", func(t *testing.T) {
		list := decode[[]models.WhatsAppPage](t, doRequest(r, "GET", "/api/whatsapp", "").Body.String())
		require.Len(t, list, 1)
		assert.Equal(t, page.ID, list[0].ID)
	})

	t.Run("Preview", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/whatsapp/"+page.ID+"/preview?horizon=5s", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		tl := decode[tracker.Timeline](t, w.Body.String())
		assert.Equal(t, tracker.PhaseVacancyActive, tl.Final.Phase)
		assert.Equal(t, 0, tl.Final.Vacancy)

		w = doRequest(r, "GET", "/api/whatsapp/"+page.ID+"/preview?horizon=nope", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doRequest(r, "GET", "/api/whatsapp/missing/preview", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Preview Click", func(t *testing.T) {
		manual := seedPage(t, env, "", nil)
		w := doRequest(r, "GET", "/api/whatsapp/"+manual.ID+"/preview?horizon=10s&clickAt=2s", "")
		require.Equal(t, http.StatusOK, w.Code)

		tl := decode[tracker.Timeline](t, w.Body.String())
		assert.Equal(t, tracker.PhaseNavigated, tl.Final.Phase)
		assert.Contains(t, tl.Final.Fired, tracker.ActionButton)
	})

	t.Run("Delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, doRequest(r, "DELETE", "/api/whatsapp/"+page.ID, "").Code)
		assert.Equal(t, http.StatusNoContent, doRequest(r, "DELETE", "/api/whatsapp/"+page.ID, "").Code)
	})
}

func TestAppearanceRoutes(t *testing.T) {
	h, _ := setupTestHandler(t, config.Config{})
	r := setupTestRouter(h)

	w := doRequest(r, "GET", "/api/whatsapp/appearance", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DefaultRedirectText, decode[models.Appearance](t, w.Body.String()).RedirectText)

	w = doRequest(r, "PUT", "/api/whatsapp/appearance", `{"redirectText":"Aguarde...","backgroundColor":"#f0fdf4","borderEnabled":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[models.Appearance](t, doRequest(r, "GET", "/api/whatsapp/appearance", "").Body.String())
	assert.Equal(t, "Aguarde...", got.RedirectText)
	assert.Equal(t, "#f0fdf4", got.BackgroundColor)
	assert.True(t, got.BorderEnabled)

	w = doRequest(r, "PUT", "/api/whatsapp/appearance", `{"redirectText":"","backgroundColor":"red"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQRRoutes(t *testing.T) {
	h, env := setupTestHandler(t, config.Config{})
	r := setupTestRouter(h)
	pixel := seedPixel(t, env)
	product := seedProduct(t, env, pixel.ID, models.StatusActive)
	page := seedPage(t, env, pixel.ID, nil)

	w := doRequest(r, "GET", "/api/products/"+product.ID+"/qr", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "\x89PNG"))

	w = doRequest(r, "GET", "/api/whatsapp/"+page.ID+"/qr?format=svg", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<svg")

	w = doRequest(r, "GET", "/api/products/missing/qr", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDebugConfig(t *testing.T) {
	h, env := setupTestHandler(t, config.Config{})
	r := setupTestRouter(h)
	page := seedPage(t, env, "", nil)

	w := doRequest(r, "GET", "/api/debug/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"whatsapp_pages_index"`)
	assert.Contains(t, w.Body.String(), page.ID)

	w = doRequest(r, "GET", "/api/debug/config?key=whatsapp_pages_"+page.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Found bool     `json:"found"`
		Keys  []string `json:"keys"`
	}](t, w.Body.String())
	assert.True(t, body.Found)
	assert.Contains(t, body.Keys, "headline")
	assert.Contains(t, body.Keys, "redirectMode")

	w = doRequest(r, "GET", "/api/debug/config?key=nothing", "")
	assert.Contains(t, w.Body.String(), `"found":false`)
}

// brokenStore fails every call the way the hosted store does when the
// token is revoked.
type brokenStore struct{}

func (brokenStore) ReadValue(context.Context, string, any) (bool, error) {
	return false, &kvstore.StatusError{Op: "read", StatusCode: http.StatusForbidden, Body: "forbidden"}
}

func (brokenStore) ReadValues(context.Context, []string) (map[string]json.RawMessage, error) {
	return nil, &kvstore.StatusError{Op: "read", StatusCode: http.StatusForbidden, Body: "forbidden"}
}

func (brokenStore) UpsertItems(context.Context, []kvstore.Item) error {
	return &kvstore.StatusError{Op: "write", StatusCode: http.StatusForbidden, Body: "forbidden"}
}

func TestStoreErrors(t *testing.T) {
	h, _ := setupTestHandlerWithStore(t, config.Config{}, brokenStore{})
	r := setupTestRouter(h)

	w := doRequest(r, "GET", "/api/pixels", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode[map[string]any](t, w.Body.String())
	assert.Equal(t, "Failed to load pixels", body["error"])
	assert.Contains(t, body["details"], "403")

	w = doRequest(r, "POST", "/api/pixels", `{"label":"Main","pixelId":"1234567890"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Validation or save failed")

	w = doRequest(r, "GET", "/w/anything", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
