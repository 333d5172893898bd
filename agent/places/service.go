// Package places implements the nearby-search service behind the agent's
// places tool: forward geocoding, concurrent per-category search fan-out,
// and assembly of the category → results map.
package places

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/obinna/neargent/agent/contract"
	"github.com/obinna/neargent/pkg/geoapify"
)

// API is the slice of the Geoapify client the service depends on.
type API interface {
	Geocode(ctx context.Context, text string) (geoapify.GeocodeResult, error)
	Places(ctx context.Context, req geoapify.PlacesRequest) ([]geoapify.PlaceFeature, error)
}

var _ contractx.NearbyFinder = (*Service)(nil)

type Service struct {
	api API
}

func NewService(api API) (*Service, error) {
	if api == nil {
		return nil, errors.New("places api client is required")
	}
	return &Service{api: api}, nil
}

// FindNearby resolves the address and fans out one search per category.
// Geocoding failure aborts the whole call; category failures degrade to
// empty entries in the returned map.
func (s *Service) FindNearby(ctx context.Context, address string, categories []string) (contractx.CategoryResults, error) {
	if err := validateCategories(categories); err != nil {
		return nil, err
	}

	loc, err := s.resolve(ctx, strings.ToLower(address))
	if err != nil {
		return nil, err
	}

	return s.SearchAll(ctx, loc, categories)
}

// resolve maps Geoapify outcomes onto the contract error taxonomy: an empty
// feature list is a not-found carrying the address text, anything else on the
// wire is masked as upstream-unavailable and logged here.
func (s *Service) resolve(ctx context.Context, address string) (geoapify.GeocodeResult, error) {
	loc, err := s.api.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, geoapify.ErrNoFeatures) {
			return geoapify.GeocodeResult{}, fmt.Errorf("%w: %s", contractx.ErrLocationNotFound, address)
		}
		log.Error().Err(err).Str("address", address).Msg("geocoding request failed")
		return geoapify.GeocodeResult{}, fmt.Errorf("%w: geocoding %s", contractx.ErrUpstreamUnavailable, address)
	}

	log.Debug().
		Str("address", address).
		Str("formatted", loc.Formatted).
		Float64("lat", loc.Lat).
		Float64("lon", loc.Lon).
		Msg("resolved location")
	return loc, nil
}

func validateCategories(categories []string) error {
	for _, c := range categories {
		if strings.TrimSpace(c) != "" {
			return nil
		}
	}
	return contractx.ErrNoCategories
}
