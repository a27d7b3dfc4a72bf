package eval

import (
	"time"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/circle-overlap-bench/internal/hash"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/task"
	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

const (
	SchemaVersion = "1.0.0"
	ToolName      = "circlebench"
	ToolVersion   = "0.1.0"
)

// NewRunRecord captures one round for the local store. The run ID and
// timestamp are the only fields that differ between identical rounds.
func NewRunRecord(t *task.Task, prompt, candidate string, result types.Result, gen types.Generator) (types.RunRecord, error) {
	resultDigest, _, err := hash.HashCanonicalJSON(result)
	if err != nil {
		return types.RunRecord{}, err
	}
	if gen.Name == "" {
		gen.Name = ToolName
	}
	if gen.Version == "" {
		gen.Version = ToolVersion
	}
	return types.RunRecord{
		SchemaVersion:   SchemaVersion,
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		Generator:       gen,
		Task:            t.Summary(),
		PromptDigest:    hash.DigestString(prompt),
		CandidateDigest: hash.DigestString(candidate),
		ResultDigest:    resultDigest,
		Result:          result,
	}, nil
}
