package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"

	contractx "github.com/obinna/neargent/agent/contract"
)

type fakeFinder struct {
	results    contractx.CategoryResults
	err        error
	addresses  []string
	categories [][]string
}

func (f *fakeFinder) FindNearby(ctx context.Context, address string, categories []string) (contractx.CategoryResults, error) {
	f.addresses = append(f.addresses, address)
	f.categories = append(f.categories, categories)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestInfos(t *testing.T) {
	t.Parallel()

	infos := Infos()
	if len(infos) != 1 {
		t.Fatalf("expected 1 tool info, got %d", len(infos))
	}
	if infos[0].Name != ToolGeoapifyPlaces {
		t.Fatalf("unexpected tool name: %s", infos[0].Name)
	}
}

func TestExecutorPlacesSuccess(t *testing.T) {
	t.Parallel()

	finder := &fakeFinder{results: contractx.CategoryResults{"gas_station": {}}}
	executor := NewExecutor(finder)

	out, err := executor(context.Background(), ToolGeoapifyPlaces, map[string]any{
		"address":    "Wuse Abuja",
		"categories": []any{"fuel.gas_station"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}
	if len(finder.addresses) != 1 || finder.addresses[0] != "Wuse Abuja" {
		t.Fatalf("addresses = %v", finder.addresses)
	}
	if len(finder.categories[0]) != 1 || finder.categories[0][0] != "fuel.gas_station" {
		t.Fatalf("categories = %v", finder.categories[0])
	}
	results, ok := out.Result.(contractx.CategoryResults)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if _, ok := results["gas_station"]; !ok {
		t.Fatal("missing gas_station entry")
	}
}

func TestExecutorPlacesMissingAddress(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(&fakeFinder{})
	out, err := executor(context.Background(), ToolGeoapifyPlaces, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected tool error for missing address")
	}
}

func TestExecutorPlacesLocationNotFoundIsToolError(t *testing.T) {
	t.Parallel()

	finder := &fakeFinder{err: fmt.Errorf("%w: nowhere", contractx.ErrLocationNotFound)}
	executor := NewExecutor(finder)

	out, err := executor(context.Background(), ToolGeoapifyPlaces, map[string]any{"address": "nowhere"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected tool error for not-found location")
	}
}

func TestExecutorPlacesInfrastructureFaultIsGoError(t *testing.T) {
	t.Parallel()

	finder := &fakeFinder{err: errors.New("context canceled")}
	executor := NewExecutor(finder)

	if _, err := executor(context.Background(), ToolGeoapifyPlaces, map[string]any{"address": "wuse"}); err == nil {
		t.Fatal("expected error for infrastructure fault")
	}
}

func TestExecutorUnknownTool(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(&fakeFinder{})
	out, err := executor(context.Background(), "math.evaluate", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected non-empty error message")
	}
}
