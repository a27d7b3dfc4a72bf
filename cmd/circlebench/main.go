package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/circle-overlap-bench/internal/config"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/eval"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/gate"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/generate"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/hash"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/report"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/server"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/store"
	"github.com/ogulcanaydogan/circle-overlap-bench/internal/task"
	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/schema"
	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

const (
	exitConfig     = 2
	exitGateFail   = 13
	exitSchemaFail = 14
)

type cliError struct {
	code int
	err  error
}

func (e cliError) Error() string { return e.err.Error() }

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		var ce cliError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.err)
			os.Exit(ce.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var generatorFactory = generate.FromConfig

// taskFlags are shared by every command that builds a task.
type taskFlags struct {
	configPath string
	circles    int
	overlaps   []string
	palette    []string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "benchmark config YAML")
	cmd.Flags().IntVar(&f.circles, "num-circles", 3, "number of circles to request")
	cmd.Flags().StringArrayVar(&f.overlaps, "overlaps", []string{"Red,Blue"}, "circle pair that must overlap, e.g. 'Red,Blue' (repeatable)")
	cmd.Flags().StringSliceVar(&f.palette, "palette", nil, "ordered color palette (default Red,Blue,Green,Yellow,Purple,Orange)")
}

// resolve layers explicitly set flags over the config file over defaults.
// Positional args continue the --overlaps list, so
// `--overlaps Red,Blue Blue,Green` requires both pairs.
func (f *taskFlags) resolve(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return config.Config{}, cliError{code: exitConfig, err: err}
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if f.configPath == "" || flags.Changed("num-circles") {
		cfg.Circles = f.circles
	}
	if f.configPath == "" || flags.Changed("overlaps") {
		cfg.Overlaps = append([]string(nil), f.overlaps...)
	}
	if len(args) > 0 {
		if !flags.Changed("overlaps") {
			return config.Config{}, cliError{code: exitConfig, err: fmt.Errorf("unexpected arguments %v", args)}
		}
		cfg.Overlaps = append(cfg.Overlaps, args...)
	}
	if flags.Changed("palette") {
		cfg.Palette = f.palette
	}
	return cfg, nil
}

func buildTask(cfg config.Config) (*task.Task, []types.Pair, error) {
	pairs, dropped := task.ParsePairTokens(cfg.Overlaps)
	for _, tok := range dropped {
		slog.Debug("ignoring malformed overlap token", "token", tok)
	}
	var palette task.Palette
	if len(cfg.Palette) > 0 {
		palette = task.Palette(cfg.Palette)
	}
	t, err := task.New(cfg.Circles, pairs, palette)
	if err != nil {
		return nil, nil, cliError{code: exitConfig, err: err}
	}
	return t, pairs, nil
}

func newRootCommand() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "circlebench",
		Short:         "Score generated SVG circles against required overlaps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q", logLevel)
			}
			setLogger(cmd.ErrOrStderr(), level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	configureRunCommand(root, false)
	root.AddCommand(newRunCommand())
	root.AddCommand(newEvalCommand())
	root.AddCommand(newPromptCommand())
	root.AddCommand(newGateCommand())
	root.AddCommand(newValidateCommand())
	root.AddCommand(newServeCommand())
	return root
}

func setLogger(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "run", Short: "Prompt the generator and score its answer"}
	configureRunCommand(cmd, false)
	return cmd
}

func newEvalCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "eval", Short: "Score an existing candidate file without calling a generator"}
	configureRunCommand(cmd, true)
	return cmd
}

// configureRunCommand is shared by the root command, "run" and "eval" so that
// `circlebench --num-circles 2` behaves like `circlebench run --num-circles 2`.
// With candidateOnly set, --candidate is required.
func configureRunCommand(cmd *cobra.Command, candidateOnly bool) {
	var tf taskFlags
	var verbose, save bool
	var generatorKind, candidatePath, model, format, outPath, storeDir, policyPath string
	var determinismCheck int

	cmd.Args = cobra.ArbitraryArgs
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if candidateOnly && candidatePath == "" {
			return cliError{code: exitConfig, err: fmt.Errorf("--candidate is required")}
		}
		if verbose {
			if f := cmd.Flag("log-level"); f == nil || !f.Changed {
				setLogger(cmd.ErrOrStderr(), slog.LevelDebug)
			}
		}
		cfg, err := tf.resolve(cmd, args)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("generator") {
			cfg.Generator.Kind = generatorKind
		}
		if candidatePath != "" {
			cfg.Generator.Kind = config.GeneratorFile
			cfg.Generator.Path = candidatePath
		}
		if model != "" {
			cfg.Generator.Model = model
		}
		if policyPath != "" {
			p, err := gate.LoadPolicy(policyPath)
			if err != nil {
				return cliError{code: exitConfig, err: err}
			}
			cfg.Gate = &p
		}

		t, pairs, err := buildTask(cfg)
		if err != nil {
			return err
		}
		gen, meta, err := generatorFactory(cfg.Generator)
		if err != nil {
			return cliError{code: exitConfig, err: err}
		}

		out := cmd.OutOrStdout()
		prompt := t.Prompt()
		if verbose {
			fmt.Fprintf(out, "Task: %d circles with overlaps: %s\n", cfg.Circles, task.FormatPairs(pairs))
			fmt.Fprintf(out, "\n--- PROMPT SENT TO LLM ---\n%s\n--------------------------\n", prompt)
		}

		candidate, err := gen.Generate(cmd.Context(), prompt)
		if err != nil {
			return fmt.Errorf("generate candidate: %w", err)
		}
		result, _, err := eval.New().EvaluateChecked(candidate, t, determinismCheck)
		if err != nil {
			return err
		}
		record, err := eval.NewRunRecord(t, prompt, candidate, result, meta)
		if err != nil {
			return err
		}

		if save {
			path, err := store.SaveRun(storeDir, record)
			if err != nil {
				return err
			}
			slog.Info("saved run", "path", path, "run_id", record.RunID)
		}
		if err := emit(out, format, outPath, record, verbose); err != nil {
			return err
		}

		if cfg.Gate != nil {
			if violations := gate.Evaluate(*cfg.Gate, result); len(violations) > 0 {
				for _, v := range violations {
					fmt.Fprintln(out, v)
				}
				return cliError{code: exitGateFail, err: fmt.Errorf("gate failed")}
			}
		}
		return nil
	}

	tf.register(cmd)
	cmd.Flags().BoolVar(&verbose, "verbose", false, "print the task, prompt and pair details, and log at debug level")
	cmd.Flags().StringVar(&generatorKind, "generator", config.GeneratorMock, "candidate generator (mock|file|openai)")
	cmd.Flags().StringVar(&candidatePath, "candidate", "", "score this file ('-' for stdin) instead of calling a generator")
	cmd.Flags().StringVar(&model, "model", "", "model name for the openai generator")
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json|md)")
	cmd.Flags().StringVar(&outPath, "out", "", "write the json/md report to this path instead of stdout")
	cmd.Flags().BoolVar(&save, "save", false, "store the run record locally")
	cmd.Flags().StringVar(&storeDir, "store-dir", store.DefaultRunDir, "run record directory")
	cmd.Flags().StringVar(&policyPath, "gate", "", "gate policy YAML applied to the result")
	cmd.Flags().IntVar(&determinismCheck, "determinism-check", 1, "score the candidate this many times and compare digests")
}

func emit(out io.Writer, format, outPath string, record types.RunRecord, verbose bool) error {
	switch format {
	case "text":
		var buf bytes.Buffer
		if err := report.WriteSummary(&buf, record.Result); err != nil {
			return err
		}
		if verbose {
			if err := report.WriteDetails(&buf, record.Result); err != nil {
				return err
			}
		}
		if outPath == "" {
			_, err := out.Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return err
		}
	case "json":
		if outPath == "" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(record)
		}
		if err := report.WriteJSON(outPath, record); err != nil {
			return err
		}
	case "md":
		if outPath == "" {
			_, err := io.WriteString(out, report.BuildMarkdown(record))
			return err
		}
		if err := report.WriteMarkdown(outPath, record); err != nil {
			return err
		}
	default:
		return cliError{code: exitConfig, err: fmt.Errorf("unsupported format %s", format)}
	}
	fmt.Fprintln(out, outPath)
	return nil
}

func newPromptCommand() *cobra.Command {
	var tf taskFlags
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the instruction that would be sent to the generator",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := tf.resolve(cmd, args)
			if err != nil {
				return err
			}
			t, _, err := buildTask(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Prompt())
			return nil
		},
	}
	tf.register(cmd)
	return cmd
}

func newGateCommand() *cobra.Command {
	var policyPath, inPath string
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Apply threshold policy to a result and return non-zero on violations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if policyPath == "" || inPath == "" {
				return fmt.Errorf("--policy and --in are required")
			}
			policy, err := gate.LoadPolicy(policyPath)
			if err != nil {
				return cliError{code: exitConfig, err: err}
			}
			result, err := readResult(inPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if violations := gate.Evaluate(policy, result); len(violations) > 0 {
				for _, v := range violations {
					fmt.Fprintln(out, v)
				}
				return cliError{code: exitGateFail, err: fmt.Errorf("gate failed")}
			}
			fmt.Fprintln(out, "gate passed")
			return nil
		},
	}
	cmd.Flags().StringVar(&policyPath, "policy", "", "gate policy YAML path")
	cmd.Flags().StringVar(&inPath, "in", "", "result or run record JSON")
	return cmd
}

// readResult accepts either a bare result or a run record wrapping one.
func readResult(path string) (types.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Result{}, err
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return types.Result{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if inner, ok := envelope["result"]; ok {
		raw = inner
	}
	var r types.Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return types.Result{}, fmt.Errorf("decode result in %s: %w", path, err)
	}
	return r, nil
}

func newValidateCommand() *cobra.Command {
	var inPath, schemaName string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a result or run record against its schema and digest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inPath == "" {
				return fmt.Errorf("--in is required")
			}
			raw, err := os.ReadFile(inPath)
			if err != nil {
				return err
			}
			var doc map[string]any
			if err := json.Unmarshal(raw, &doc); err != nil {
				return cliError{code: exitSchemaFail, err: fmt.Errorf("decode %s: %w", inPath, err)}
			}
			if schemaName == "" {
				schemaName = schema.Result
				if _, ok := doc["run_id"]; ok {
					schemaName = schema.Run
				}
			}

			problems, err := schema.ValidateBuiltin(schemaName, doc)
			if err != nil {
				return err
			}
			if schemaName == schema.Run {
				more, err := checkRunResult(doc)
				if err != nil {
					return err
				}
				problems = append(problems, more...)
			}
			out := cmd.OutOrStdout()
			if len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintln(out, p)
				}
				return cliError{code: exitSchemaFail, err: fmt.Errorf("%s schema validation failed", schemaName)}
			}
			fmt.Fprintf(out, "%s valid\n", inPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "JSON document to validate")
	cmd.Flags().StringVar(&schemaName, "schema", "", "schema name (result|run); detected when empty")
	return cmd
}

func checkRunResult(doc map[string]any) ([]string, error) {
	result, ok := doc["result"]
	if !ok {
		return nil, nil
	}
	problems, err := schema.ValidateBuiltin(schema.Result, result)
	if err != nil {
		return nil, err
	}
	digest, _, err := hash.HashCanonicalJSON(result)
	if err != nil {
		return nil, err
	}
	if recorded, _ := doc["result_digest"].(string); recorded != digest {
		problems = append(problems, fmt.Sprintf("result_digest mismatch: recorded %s, computed %s", recorded, digest))
	}
	return problems, nil
}

func newServeCommand() *cobra.Command {
	cfg := server.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /evaluate over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.Port),
				Handler: server.NewMux(cfg),
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				<-ctx.Done()
				_ = srv.Close()
			}()

			slog.Info("evaluation server listening", "addr", srv.Addr, "palette", strings.Join(cfg.Palette, ","))
			var err error
			if cfg.TLSCertPath != "" && cfg.TLSKeyPath != "" {
				err = srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
			} else {
				err = srv.ListenAndServe()
			}
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "listen port")
	cmd.Flags().StringVar(&cfg.TLSCertPath, "tls-cert", "", "TLS certificate path")
	cmd.Flags().StringVar(&cfg.TLSKeyPath, "tls-key", "", "TLS key path")
	cmd.Flags().StringSliceVar(&cfg.Palette, "palette", nil, "ordered color palette used when requests omit one")
	cmd.Flags().IntVar(&cfg.CacheTTLSeconds, "cache-ttl-seconds", cfg.CacheTTLSeconds, "result cache TTL in seconds (0 disables)")
	return cmd
}
