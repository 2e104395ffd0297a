package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"pixelgate/internal/config"
	"pixelgate/internal/kvstore"
	"pixelgate/internal/logging"
	"pixelgate/internal/models"
	"pixelgate/internal/repository"
	"pixelgate/internal/services"
	"pixelgate/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// graphAPI stands in for the Conversion API and records event names.
type graphAPI struct {
	mu     sync.Mutex
	events []string
	urls   []string
	fail   bool
}

func (g *graphAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Data []struct {
			EventName      string `json:"event_name"`
			EventSourceURL string `json:"event_source_url"`
		} `json:"data"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	g.mu.Lock()
	if g.fail {
		g.mu.Unlock()
		http.Error(w, `{"error":{"message":"Invalid OAuth access token"}}`, http.StatusBadRequest)
		return
	}
	for _, d := range payload.Data {
		g.events = append(g.events, d.EventName)
		g.urls = append(g.urls, d.EventSourceURL)
	}
	g.mu.Unlock()
	_, _ = w.Write([]byte(`{"events_received":1}`))
}

func (g *graphAPI) sent() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.events...)
}

type testEnv struct {
	store    kvstore.Store
	graph    *graphAPI
	pixels   *repository.PixelRepository
	products *repository.ProductRepository
	pages    *repository.WhatsAppRepository
}

func setupTestHandler(t *testing.T, cfg config.Config) (*Handler, *testEnv) {
	t.Helper()
	return setupTestHandlerWithStore(t, cfg, kvstore.NewMemoryStore())
}

func setupTestHandlerWithStore(t *testing.T, cfg config.Config, store kvstore.Store) (*Handler, *testEnv) {
	t.Helper()
	logger := logging.Discard()

	graph := &graphAPI{}
	srv := httptest.NewServer(graph)
	t.Cleanup(srv.Close)
	cfg.FBGraphURL = srv.URL
	if cfg.FBAPIVersion == "" {
		cfg.FBAPIVersion = "v18.0"
	}
	if cfg.FBPixelAPIToken == "" {
		cfg.FBPixelAPIToken = "test-token"
	}

	pixels := repository.NewPixelRepository(store, logger)
	products := repository.NewProductRepository(store, pixels, logger)
	pages := repository.NewWhatsAppRepository(store, logger)
	appearance := repository.NewAppearanceRepository(store, logger)

	mirror := services.NewEventMirror(services.NewConversionClient(cfg, logger), pages, pixels, logger)
	audit := services.NewAuditService(nil, logger)
	qr := services.NewQRService()

	h := NewHandler(cfg, logger, store, pixels, products, pages, appearance, mirror, audit, qr)
	h.newEventID = func() string { return "evt-fixed" }
	return h, &testEnv{store: store, graph: graph, pixels: pixels, products: products, pages: pages}
}

func setupTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return h.SetupRouter(nil, "../../web/templates/*.html", "../../web/static")
}

func doRequest(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedPixel(t *testing.T, env *testEnv) *models.Pixel {
	t.Helper()
	pixel, err := env.pixels.Upsert(context.Background(), validation.PixelInput{
		Label:   "Main",
		PixelID: "1234567890",
	})
	require.NoError(t, err)
	return pixel
}

func seedProduct(t *testing.T, env *testEnv, pixelID string, status models.Status) *models.Product {
	t.Helper()
	product, err := env.products.Upsert(context.Background(), validation.ProductInput{
		Title:         "Fone Bluetooth",
		AffiliateURL:  "https://shopee.com.br/fone",
		PixelConfigID: pixelID,
		Events:        []models.MetaEvent{models.EventViewContent, models.EventAddToCart},
		Status:        status,
	})
	require.NoError(t, err)
	return product
}

func seedPage(t *testing.T, env *testEnv, pixelID string, mutate func(*validation.WhatsAppPageInput)) *models.WhatsAppPage {
	t.Helper()
	in := validation.WhatsAppPageInput{
		Headline:      "Grupo VIP de Promoções",
		ButtonText:    "Entrar no grupo",
		WhatsAppURL:   "https://chat.whatsapp.com/abc",
		PixelConfigID: pixelID,
		Events:        []models.MetaEvent{models.EventPageView, models.EventViewContent},
		RedirectEvent: models.EventLead,
		Status:        models.StatusActive,
	}
	if mutate != nil {
		mutate(&in)
	}
	page, err := env.pages.Upsert(context.Background(), in)
	require.NoError(t, err)
	return page
}
