package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

const DefaultRunDir = ".circlebench/runs"

// SaveRun writes record to dir/<run_id>.json and returns the path.
func SaveRun(dir string, record types.RunRecord) (string, error) {
	if record.RunID == "" {
		return "", fmt.Errorf("run record has no run_id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run store: %w", err)
	}
	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", err
	}
	dst := filepath.Join(dir, record.RunID+".json")
	if err := os.WriteFile(dst, raw, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

func LoadRun(path string) (types.RunRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.RunRecord{}, err
	}
	var record types.RunRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return types.RunRecord{}, fmt.Errorf("decode run %s: %w", path, err)
	}
	return record, nil
}

// ListRuns returns the run files under dir in name order.
func ListRuns(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
