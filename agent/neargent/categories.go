package neargent

import "strings"

// categoryKeywords maps conversational phrasing to Geoapify category keys.
// It is the deterministic fallback for tool calls where the model omitted
// categories; matching is ordered so earlier rows win ties in output order.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"refuel", "fuel.gas_station"},
	{"gas station", "fuel.gas_station"},
	{"fuel", "fuel.gas_station"},
	{"petrol", "fuel.gas_station"},
	{"hungry", "catering.restaurant"},
	{"restaurant", "catering.restaurant"},
	{"eat", "catering.restaurant"},
	{"food", "catering.restaurant"},
	{"cafe", "catering.cafe"},
	{"coffee", "catering.cafe"},
	{"place to stay", "accommodation.hotel"},
	{"hotel", "accommodation.hotel"},
	{"lodging", "accommodation.hotel"},
	{"hostel", "accommodation.hostel"},
	{"party", "adult.nightclub"},
	{"nightclub", "adult.nightclub"},
	{"club", "adult.nightclub"},
	{"bar", "catering.bar"},
	{"pub", "catering.pub"},
	{"hospital", "healthcare.hospital"},
	{"clinic", "healthcare.clinic_or_praxis"},
	{"pharmacy", "healthcare.pharmacy"},
	{"supermarket", "commercial.supermarket"},
	{"mall", "commercial.shopping_mall"},
	{"shopping", "commercial.shopping_mall"},
	{"gym", "sport.fitness.fitness_centre"},
	{"park", "leisure.park"},
	{"museum", "entertainment.museum"},
	{"cinema", "entertainment.cinema"},
	{"airport", "airport"},
	{"train", "public_transport.train"},
	{"bus", "public_transport.bus"},
}

// InferCategories extracts category keys from free text by substring match
// against the keyword table. Results are deduplicated, in table order.
func InferCategories(text string) []string {
	lowered := strings.ToLower(text)

	seen := make(map[string]struct{})
	var out []string
	for _, row := range categoryKeywords {
		if !strings.Contains(lowered, row.keyword) {
			continue
		}
		if _, ok := seen[row.category]; ok {
			continue
		}
		seen[row.category] = struct{}{}
		out = append(out, row.category)
	}
	return out
}
