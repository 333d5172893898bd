package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/obinna/neargent/agent/contract"
)

const (
	// ToolGeoapifyPlaces finds nearby places grouped by category.
	ToolGeoapifyPlaces = "geoapify.places"
)

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// NewExecutor routes tool calls to their implementations. Tool-level
// failures (bad args, not-found locations) are reported inside the
// ToolResult so the model can respond conversationally; only infrastructure
// faults surface as Go errors.
func NewExecutor(finder contractx.NearbyFinder) Executor {
	fallback := unavailableExecutor()
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		switch tool {
		case ToolGeoapifyPlaces:
			return executePlacesTool(ctx, finder, args)
		default:
			return fallback(ctx, tool, args)
		}
	}
}

func unavailableExecutor() Executor {
	return func(_ context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		return contractx.ToolResult{
			Tool:  tool,
			Error: fmt.Sprintf("tool=%s is not available", tool),
		}, nil
	}
}

// Infos describes the tools bound to the agent's planning model.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolGeoapifyPlaces,
			Desc: "Find nearby places (gas stations, restaurants, hotels, clubs) around an address, grouped by category.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"address": {
					Type:     schema.String,
					Desc:     "Address or city name to search around",
					Required: true,
				},
				"categories": {
					Type: schema.Array,
					Desc: "Geoapify category keys, e.g. fuel.gas_station",
					ElemInfo: &schema.ParameterInfo{
						Type: schema.String,
					},
				},
			}),
		},
	}
}

func executePlacesTool(ctx context.Context, finder contractx.NearbyFinder, args map[string]any) (contractx.ToolResult, error) {
	address, err := stringArg(args, "address")
	if err != nil {
		return contractx.ToolResult{Tool: ToolGeoapifyPlaces, Error: err.Error()}, nil
	}

	categories, err := stringSliceArg(args, "categories")
	if err != nil {
		return contractx.ToolResult{Tool: ToolGeoapifyPlaces, Error: err.Error()}, nil
	}

	results, err := finder.FindNearby(ctx, address, categories)
	if err != nil {
		switch {
		case errors.Is(err, contractx.ErrLocationNotFound),
			errors.Is(err, contractx.ErrNoCategories),
			errors.Is(err, contractx.ErrUpstreamUnavailable):
			return contractx.ToolResult{Tool: ToolGeoapifyPlaces, Error: err.Error()}, nil
		default:
			return contractx.ToolResult{}, fmt.Errorf("nearby search: %w", err)
		}
	}

	return contractx.ToolResult{
		Tool:   ToolGeoapifyPlaces,
		Result: results,
	}, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

func stringSliceArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch typed := raw.(type) {
	case []string:
		return typed, nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must contain only strings", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
}
