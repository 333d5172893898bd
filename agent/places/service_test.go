package places

import (
	"context"
	"errors"
	"sync"
	"testing"

	contractx "github.com/obinna/neargent/agent/contract"
	"github.com/obinna/neargent/pkg/geoapify"
)

type fakeAPI struct {
	mu sync.Mutex

	geocodeResult geoapify.GeocodeResult
	geocodeErr    error
	geocodeTexts  []string

	placesByCategory map[string][]geoapify.PlaceFeature
	placesErrs       map[string]error
	placesReqs       []geoapify.PlacesRequest
}

func (f *fakeAPI) Geocode(ctx context.Context, text string) (geoapify.GeocodeResult, error) {
	f.mu.Lock()
	f.geocodeTexts = append(f.geocodeTexts, text)
	f.mu.Unlock()
	if f.geocodeErr != nil {
		return geoapify.GeocodeResult{}, f.geocodeErr
	}
	return f.geocodeResult, nil
}

func (f *fakeAPI) Places(ctx context.Context, req geoapify.PlacesRequest) ([]geoapify.PlaceFeature, error) {
	f.mu.Lock()
	f.placesReqs = append(f.placesReqs, req)
	f.mu.Unlock()
	if err := f.placesErrs[req.Category]; err != nil {
		return nil, err
	}
	return f.placesByCategory[req.Category], nil
}

func newTestService(t *testing.T, api *fakeAPI) *Service {
	t.Helper()
	svc, err := NewService(api)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestFindNearbyLowercasesAddress(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{geocodeResult: geoapify.GeocodeResult{Lat: 9.08, Lon: 7.49}}
	svc := newTestService(t, api)

	if _, err := svc.FindNearby(context.Background(), "Wuse Abuja", []string{"fuel.gas_station"}); err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}
	if len(api.geocodeTexts) != 1 || api.geocodeTexts[0] != "wuse abuja" {
		t.Fatalf("geocode texts = %v, want [wuse abuja]", api.geocodeTexts)
	}
}

func TestFindNearbyEmptyCategories(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeAPI{})
	for _, categories := range [][]string{nil, {}, {"", "  "}} {
		_, err := svc.FindNearby(context.Background(), "wuse", categories)
		if !errors.Is(err, contractx.ErrNoCategories) {
			t.Fatalf("FindNearby(%v) error = %v, want ErrNoCategories", categories, err)
		}
	}
}

func TestFindNearbyGeocodeNotFoundFailsAtomically(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{geocodeErr: geoapify.ErrNoFeatures}
	svc := newTestService(t, api)

	got, err := svc.FindNearby(context.Background(), "nowhere", []string{"fuel.gas_station", "catering.restaurant"})
	if !errors.Is(err, contractx.ErrLocationNotFound) {
		t.Fatalf("FindNearby() error = %v, want ErrLocationNotFound", err)
	}
	if got != nil {
		t.Fatalf("FindNearby() = %v, want nil map on geocode failure", got)
	}
	if len(api.placesReqs) != 0 {
		t.Fatalf("places was called %d times despite geocode failure", len(api.placesReqs))
	}
}

func TestFindNearbyGeocodeTransportMasked(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{geocodeErr: errors.New("dial tcp: connection refused")}
	svc := newTestService(t, api)

	_, err := svc.FindNearby(context.Background(), "wuse", []string{"fuel.gas_station"})
	if !errors.Is(err, contractx.ErrUpstreamUnavailable) {
		t.Fatalf("FindNearby() error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestSearchAllEveryCategoryPresent(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		placesByCategory: map[string][]geoapify.PlaceFeature{
			"fuel.gas_station": {{Name: "Total Energies", Formatted: "42 Adetokunbo Ademola Crescent", Lat: 9.081, Lon: 7.485}},
		},
	}
	svc := newTestService(t, api)

	got, err := svc.SearchAll(context.Background(), geoapify.GeocodeResult{Lat: 9.08, Lon: 7.49}, []string{
		"fuel.gas_station", "catering.restaurant", "accommodation.hotel",
	})
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(got))
	}
	for _, label := range []string{"gas_station", "restaurant", "hotel"} {
		entry, ok := got[label]
		if !ok {
			t.Fatalf("missing category entry %q", label)
		}
		if entry == nil {
			t.Fatalf("category %q entry is nil, want empty slice", label)
		}
	}
	if len(got["gas_station"]) != 1 {
		t.Fatalf("gas_station results = %d, want 1", len(got["gas_station"]))
	}
	if len(got["restaurant"]) != 0 {
		t.Fatalf("restaurant results = %d, want 0", len(got["restaurant"]))
	}
}

func TestSearchAllOneFailureDoesNotAbortSiblings(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		placesByCategory: map[string][]geoapify.PlaceFeature{
			"catering.restaurant": {{Name: "Jevinik Restaurant", Formatted: "494 Bangui Street"}},
			"accommodation.hotel": {{Name: "Fraser Suites", Formatted: "294 Leventis Close"}},
		},
		placesErrs: map[string]error{
			"fuel.gas_station": errors.New("upstream 502"),
		},
	}
	svc := newTestService(t, api)

	got, err := svc.SearchAll(context.Background(), geoapify.GeocodeResult{Lat: 9.08, Lon: 7.49}, []string{
		"fuel.gas_station", "catering.restaurant", "accommodation.hotel",
	})
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	if len(got["gas_station"]) != 0 {
		t.Fatalf("failing category results = %d, want 0", len(got["gas_station"]))
	}
	if got["gas_station"] == nil {
		t.Fatal("failing category entry is nil, want empty slice")
	}
	if len(got["restaurant"]) != 1 || len(got["hotel"]) != 1 {
		t.Fatalf("sibling categories = %d/%d, want 1/1", len(got["restaurant"]), len(got["hotel"]))
	}
}

func TestSearchAllDeduplicatesByShortLabel(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	svc := newTestService(t, api)

	got, err := svc.SearchAll(context.Background(), geoapify.GeocodeResult{}, []string{
		"fuel.gas_station", "fuel.gas_station", "catering.restaurant",
	})
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(got))
	}
	if len(api.placesReqs) != 2 {
		t.Fatalf("places was called %d times, want 2", len(api.placesReqs))
	}
}

func TestSearchAllForwardsPlaceFilterAndLimit(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	svc := newTestService(t, api)

	loc := geoapify.GeocodeResult{Lat: 9.08, Lon: 7.49, PlaceID: "pl-123"}
	if _, err := svc.SearchAll(context.Background(), loc, []string{"fuel.gas_station"}); err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	req := api.placesReqs[0]
	if req.PlaceID != "pl-123" {
		t.Fatalf("req.PlaceID = %q, want pl-123", req.PlaceID)
	}
	if req.Limit != 20 {
		t.Fatalf("req.Limit = %d, want 20", req.Limit)
	}
	if req.Lat != loc.Lat || req.Lon != loc.Lon {
		t.Fatalf("req coords = %v/%v, want %v/%v", req.Lat, req.Lon, loc.Lat, loc.Lon)
	}
}

func TestSearchAllRatingAbsentStaysNil(t *testing.T) {
	t.Parallel()

	rank := 0.82
	api := &fakeAPI{
		placesByCategory: map[string][]geoapify.PlaceFeature{
			"fuel.gas_station": {
				{Name: "Total Energies", Formatted: "42 Adetokunbo Ademola Crescent", RankConfidence: &rank},
				{Name: "NNPC Mega Station", Formatted: "Herbert Macaulay Way, Zone 4"},
			},
		},
	}
	svc := newTestService(t, api)

	got, err := svc.SearchAll(context.Background(), geoapify.GeocodeResult{}, []string{"fuel.gas_station"})
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	results := got["gas_station"]
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Rating == nil || *results[0].Rating != rank {
		t.Fatalf("first rating = %v, want %v", results[0].Rating, rank)
	}
	if results[1].Rating != nil {
		t.Fatalf("second rating = %v, want nil", *results[1].Rating)
	}
	if results[0].Category == nil || *results[0].Category != "fuel.gas_station" {
		t.Fatalf("category = %v, want fuel.gas_station", results[0].Category)
	}
}

func TestMapsURLDeterministic(t *testing.T) {
	t.Parallel()

	got := MapsURL("Total Energies", "42 Adetokunbo Ademola Crescent")
	want := "https://www.google.com/maps/search/?api=1&query=Total+Energies+42+Adetokunbo+Ademola+Crescent"
	if got != want {
		t.Fatalf("MapsURL() = %q, want %q", got, want)
	}
	if MapsURL("Total Energies", "42 Adetokunbo Ademola Crescent") != got {
		t.Fatal("MapsURL() is not deterministic")
	}
}

func TestShortLabel(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"fuel.gas_station":        "gas_station",
		"catering.cafe.ice_cream": "cafe.ice_cream",
		"airport":                 "airport",
	}
	for key, want := range cases {
		if got := ShortLabel(key); got != want {
			t.Fatalf("ShortLabel(%q) = %q, want %q", key, got, want)
		}
	}
}
