// Package generate supplies candidate markup for a prompt. The evaluation
// treats every Generator as an opaque prompt-to-text function.
package generate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ogulcanaydogan/circle-overlap-bench/internal/config"
	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }

// MockResponse draws three circles: red and blue overlap as usually
// requested, and blue also overlaps green by accident.
const MockResponse = "\n    ```svg\n" +
	"    <svg width=\"300\" height=\"300\">\n" +
	"      <!-- Red Circle -->\n" +
	"      <circle cx=\"100\" cy=\"100\" r=\"50\" fill=\"Red\" />\n" +
	"      <!-- Blue Circle (Overlaps Red) -->\n" +
	"      <circle cx=\"160\" cy=\"100\" r=\"50\" fill=\"Blue\" />\n" +
	"      <!-- Green Circle (Accidentally overlaps Blue) -->\n" +
	"      <circle cx=\"220\" cy=\"100\" r=\"50\" fill=\"Green\" />\n" +
	"    </svg>\n" +
	"    ```\n    "

// Mock ignores the prompt and returns MockResponse.
type Mock struct{}

func (Mock) Generate(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return MockResponse, nil
}

// File returns the contents of Path, or of Stdin when Path is "-".
type File struct {
	Path  string
	Stdin io.Reader
}

func (f File) Generate(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Path == "-" {
		in := f.Stdin
		if in == nil {
			in = os.Stdin
		}
		raw, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read candidate from stdin: %w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("read candidate %s: %w", f.Path, err)
	}
	return string(raw), nil
}

// FromConfig builds the generator named by cfg.Kind along with the metadata
// recorded in run records.
func FromConfig(cfg config.Generator) (Generator, types.Generator, error) {
	meta := types.Generator{Kind: cfg.Kind}
	switch cfg.Kind {
	case "", config.GeneratorMock:
		meta.Kind = config.GeneratorMock
		return Mock{}, meta, nil
	case config.GeneratorFile:
		if cfg.Path == "" {
			return nil, meta, fmt.Errorf("file generator needs a candidate path")
		}
		return File{Path: cfg.Path}, meta, nil
	case config.GeneratorOpenAI:
		g, err := NewOpenAI(OpenAIConfig{
			APIKey:  os.Getenv(apiKeyEnv(cfg.APIKeyEnv)),
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			System:  cfg.System,
		})
		if err != nil {
			return nil, meta, err
		}
		meta.Model = g.Model()
		return g, meta, nil
	default:
		return nil, meta, fmt.Errorf("unsupported generator %q", cfg.Kind)
	}
}

func apiKeyEnv(name string) string {
	if name == "" {
		return "OPENAI_API_KEY"
	}
	return name
}
