package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/neargent.txt
var neargentRaw string

// Set holds the system prompts shipped with the binary.
type Set struct {
	NearbyHelp string
}

func Load() Set {
	return Set{
		NearbyHelp: strings.TrimSpace(neargentRaw),
	}
}
