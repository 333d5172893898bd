package contract

// Turn is one conversational exchange as seen by the agent.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// PlaceResult is one discovered place. Every field is nullable on the wire;
// in particular a missing rating must stay null rather than become zero.
type PlaceResult struct {
	Name     *string  `json:"name"`
	Address  *string  `json:"address"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	MapsURL  *string  `json:"mapsUrl"`
	Distance *float64 `json:"distance"`
	Rating   *float64 `json:"rating"`
	Category *string  `json:"category"`
}

// CategoryResults maps a short category label (taxonomy key with its
// namespace prefix stripped) to the places found for it. Every requested
// label is present, empty slice included.
type CategoryResults map[string][]PlaceResult

// ToolRequest is a tool invocation planned by the model.
type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult carries a tool outcome back into the model context. Tool
// failures travel in Error as data, not as Go errors.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
