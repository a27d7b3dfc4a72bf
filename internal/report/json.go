package report

import (
	"encoding/json"
	"os"
)

// WriteJSON writes v (a Result or RunRecord) as indented JSON.
func WriteJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}
