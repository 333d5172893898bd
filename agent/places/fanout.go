package places

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	contractx "github.com/obinna/neargent/agent/contract"
	"github.com/obinna/neargent/pkg/geoapify"
)

const perCategoryLimit = 20

// SearchAll runs one category search per distinct short label, concurrently,
// and joins all of them before assembling the result map. A category that
// fails or returns nothing still appears in the map with an empty slice.
func (s *Service) SearchAll(ctx context.Context, loc geoapify.GeocodeResult, categories []string) (contractx.CategoryResults, error) {
	if err := validateCategories(categories); err != nil {
		return nil, err
	}

	keys := dedupeByLabel(categories)

	// Each goroutine writes only its own slot; the map is built after the
	// join barrier, so no lock is needed.
	slots := make([][]contractx.PlaceResult, len(keys))
	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			slots[i] = s.searchCategory(ctx, loc, key)
		}(i, key)
	}
	wg.Wait()

	results := make(contractx.CategoryResults, len(keys))
	for i, key := range keys {
		results[ShortLabel(key)] = slots[i]
	}
	return results, nil
}

func (s *Service) searchCategory(ctx context.Context, loc geoapify.GeocodeResult, category string) []contractx.PlaceResult {
	features, err := s.api.Places(ctx, geoapify.PlacesRequest{
		Category: category,
		PlaceID:  loc.PlaceID,
		Lat:      loc.Lat,
		Lon:      loc.Lon,
		Limit:    perCategoryLimit,
	})
	if err != nil {
		log.Warn().Err(err).Str("category", category).Msg("category search failed; returning empty results")
		return []contractx.PlaceResult{}
	}

	out := make([]contractx.PlaceResult, 0, len(features))
	for _, f := range features {
		out = append(out, toPlaceResult(f, category))
	}
	return out
}

func toPlaceResult(f geoapify.PlaceFeature, category string) contractx.PlaceResult {
	mapsURL := MapsURL(f.Name, f.Formatted)
	return contractx.PlaceResult{
		Name:     optString(f.Name),
		Address:  optString(f.Formatted),
		Lat:      ptr(f.Lat),
		Lon:      ptr(f.Lon),
		MapsURL:  &mapsURL,
		Distance: f.Distance,
		Rating:   f.RankConfidence,
		Category: &category,
	}
}

// MapsURL builds a Google Maps search deep link from a place's name and
// formatted address. It is a pure function of those two inputs.
func MapsURL(name, address string) string {
	query := strings.TrimSpace(name + " " + address)
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
}

// ShortLabel strips the taxonomy namespace prefix from a category key:
// everything after the first ".", or the whole key when there is none.
func ShortLabel(key string) string {
	if _, rest, ok := strings.Cut(key, "."); ok {
		return rest
	}
	return key
}

// dedupeByLabel drops later category keys whose short label was already
// seen, so each key owns exactly one map entry. First occurrence wins.
func dedupeByLabel(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	keys := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		label := ShortLabel(c)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		keys = append(keys, c)
	}
	return keys
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func ptr[T any](v T) *T {
	return &v
}
