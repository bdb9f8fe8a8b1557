package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/favorites"
	"github.com/i474232898/weather-dashboard/internal/geo"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

type stubClient struct {
	err error
}

func (s stubClient) fetch(name string) (weather.WeatherSnapshot, error) {
	if s.err != nil {
		return weather.WeatherSnapshot{}, s.err
	}
	snap := weather.WeatherSnapshot{CurrentWeatherCode: 3, CurrentTemperatureC: 7}
	if name != "" {
		snap = snap.WithCityName(name)
	}
	return snap, nil
}

func (s stubClient) FetchByCoordinates(_ context.Context, c weather.Coordinates) (weather.WeatherSnapshot, error) {
	return s.fetch("")
}

func (s stubClient) RefreshByCoordinates(_ context.Context, c weather.Coordinates) (weather.WeatherSnapshot, error) {
	return s.fetch("")
}

func (s stubClient) FetchByCityName(_ context.Context, name string) (weather.WeatherSnapshot, error) {
	return s.fetch(name)
}

func (s stubClient) RefreshByCityName(_ context.Context, name string) (weather.WeatherSnapshot, error) {
	return s.fetch(name)
}

type stubGeocoder struct{}

func (stubGeocoder) Name() string { return "stub" }

func (stubGeocoder) Search(context.Context, string) ([]weather.GeoResult, error) {
	return []weather.GeoResult{}, nil
}

func (stubGeocoder) Reverse(context.Context, weather.Coordinates) (string, error) {
	return "Москва", nil
}

func newTestApp(t *testing.T, client stubClient) *fiber.App {
	t.Helper()
	st := store.NewMemoryStore()
	resolver := geo.NewResolver(geo.NewCatalog(nil), stubGeocoder{}, nil)
	ctrl := dashboard.New(client, resolver, favorites.New(st), st, dashboard.Options{CatalogOnly: true})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, ctrl)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, target, err, raw)
		}
	}
	return resp, out
}

// TestSelectValidation verifies that the select endpoint rejects missing and
// unknown city names.
func TestSelectValidation(t *testing.T) {
	app := newTestApp(t, stubClient{})

	resp, _ := do(t, app, http.MethodPost, "/api/v1/select", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp, body := do(t, app, http.MethodPost, "/api/v1/select", `{"selector":"Атлантида"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	if body["kind"] != string(weather.KindInvalidInput) {
		t.Fatalf("expected InvalidInput kind, got %v", body["kind"])
	}

	resp, body = do(t, app, http.MethodPost, "/api/v1/select", `{"selector":"казань"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	view := body["view"].(map[string]any)
	if view["activeSelector"] != "Казань" {
		t.Fatalf("unexpected view %v", view)
	}
	th := body["theme"].(map[string]any)
	if th["textColor"] != "light" {
		t.Fatalf("unexpected theme %v", th)
	}
}

func TestUpstreamFailureMapsToBadGateway(t *testing.T) {
	app := newTestApp(t, stubClient{err: fmt.Errorf("status 503: %w", weather.ErrUpstreamUnavailable)})

	resp, body := do(t, app, http.MethodPost, "/api/v1/select", `{"selector":"Омск"}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
	if body["kind"] != string(weather.KindUpstreamUnavailable) {
		t.Fatalf("unexpected kind %v", body["kind"])
	}

	_, body = do(t, app, http.MethodGet, "/api/v1/notifications", "")
	notes := body["notifications"].([]any)
	if len(notes) != 1 {
		t.Fatalf("expected one notification, got %v", notes)
	}
}

func TestFavoritesLifecycle(t *testing.T) {
	app := newTestApp(t, stubClient{})

	for _, name := range []string{"Москва", "Казань", "Омск", "Уфа"} {
		resp, _ := do(t, app, http.MethodPost, "/api/v1/favorites", fmt.Sprintf(`{"name":%q}`, name))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add %s: expected status %d, got %d", name, http.StatusOK, resp.StatusCode)
		}
	}

	_, body := do(t, app, http.MethodGet, "/api/v1/state", "")
	favs := body["favorites"].([]any)
	if len(favs) != 3 || favs[0].(map[string]any)["name"] != "Казань" {
		t.Fatalf("unexpected favorites %v", favs)
	}

	resp, body := do(t, app, http.MethodDelete, "/api/v1/favorites/"+url.PathEscape("Уфа"), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if got := body["view"].(map[string]any)["activeSelector"]; got != "Казань" {
		t.Fatalf("expected fallback to Казань, got %v", got)
	}
	if got := len(body["favorites"].([]any)); got != 2 {
		t.Fatalf("expected 2 favorites, got %d", got)
	}
}

func TestLocationValidation(t *testing.T) {
	app := newTestApp(t, stubClient{})

	for _, body := range []string{`{"lat":100,"lon":0}`, `{"lat":55.7}`, `not json`} {
		resp, _ := do(t, app, http.MethodPost, "/api/v1/location", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", body, http.StatusBadRequest, resp.StatusCode)
		}
	}

	resp, body := do(t, app, http.MethodPost, "/api/v1/location", `{"lat":0,"lon":0}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	loc := body["location"].(map[string]any)
	if loc["name"] != "Москва" {
		t.Fatalf("unexpected location %v", loc)
	}
}

func TestDetectWithoutLocator(t *testing.T) {
	app := newTestApp(t, stubClient{})
	resp, body := do(t, app, http.MethodPost, "/api/v1/location/detect", "")
	if resp.StatusCode != http.StatusFailedDependency {
		t.Fatalf("expected status %d, got %d", http.StatusFailedDependency, resp.StatusCode)
	}
	if body["kind"] != string(weather.KindGeolocationDenied) {
		t.Fatalf("unexpected kind %v", body["kind"])
	}
}

func TestToggleDashboard(t *testing.T) {
	app := newTestApp(t, stubClient{})
	_, _ = do(t, app, http.MethodPost, "/api/v1/favorites", `{"name":"Пермь"}`)

	_, body := do(t, app, http.MethodPost, "/api/v1/dashboard/toggle", "")
	if got := body["view"].(map[string]any)["dashboardMode"]; got != "all" {
		t.Fatalf("expected all mode, got %v", got)
	}
	if got := len(body["dashboard"].([]any)); got != 1 {
		t.Fatalf("expected one tile, got %d", got)
	}

	resp, _ := do(t, app, http.MethodPost, "/api/v1/refresh", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestSuggest(t *testing.T) {
	app := newTestApp(t, stubClient{})

	_, body := do(t, app, http.MethodGet, "/api/v1/suggest?q="+url.QueryEscape("ка"), "")
	got := body["suggestions"].([]any)
	if len(got) != 2 || got[0] != "Екатеринбург" || got[1] != "Казань" {
		t.Fatalf("unexpected suggestions %v", got)
	}

	_, body = do(t, app, http.MethodGet, "/api/v1/suggest", "")
	if got := body["suggestions"].([]any); len(got) != 0 {
		t.Fatalf("expected no suggestions, got %v", got)
	}
}

func TestThemeEndpoint(t *testing.T) {
	app := newTestApp(t, stubClient{})

	resp, body := do(t, app, http.MethodGet, "/api/v1/theme/0", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	th := body["theme"].(map[string]any)
	if th["textColor"] != "dark" || th["description"] != "Ясно" {
		t.Fatalf("unexpected theme %v", th)
	}

	_, body = do(t, app, http.MethodGet, "/api/v1/theme/42", "")
	if cond := body["condition"].(map[string]any); cond["description"] != "unknown" {
		t.Fatalf("expected unknown condition, got %v", cond)
	}

	resp, _ = do(t, app, http.MethodGet, "/api/v1/theme/abc", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{weather.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("x: %w", weather.ErrNotFound), http.StatusNotFound},
		{weather.ErrUpstreamUnavailable, http.StatusBadGateway},
		{weather.ErrGeolocationDenied, http.StatusFailedDependency},
		{weather.ErrGeolocationTimeout, http.StatusFailedDependency},
		{weather.ErrPersistence, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
