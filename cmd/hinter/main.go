package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/hinter/internal/cache"
	"github.com/pavelanni/hinter/internal/coh"
	"github.com/pavelanni/hinter/internal/config"
	"github.com/pavelanni/hinter/internal/handler"
	"github.com/pavelanni/hinter/internal/hint"
	appI18n "github.com/pavelanni/hinter/internal/i18n"
	"github.com/pavelanni/hinter/internal/llm"
	"github.com/pavelanni/hinter/internal/llm/prompts"
	"github.com/pavelanni/hinter/internal/model"
	"github.com/pavelanni/hinter/internal/store"
)

//go:generate templ generate

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hinter",
		Short: "Progressive Chain-of-Hints engine for coding exercises",
	}

	serve := serveCmd()
	root.AddCommand(serve, hintCmd(), ladderCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `hinter --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP hint server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "hinter.db", "SQLite database path")
	f.String("history-backend", "sqlite", "Session history backend (sqlite, redis, none)")
	f.String("redis-addr", "localhost:6379", "Redis address for the redis history backend")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database number")
	f.Duration("session-ttl", cache.DefaultTTL, "Idle time after which a hint session expires (0 = never)")
	f.Duration("cleanup-interval", time.Hour, "How often expired SQLite sessions are purged")
	f.StringP("lang", "l", "ko", "Default response language (ko, en)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /hints)")
	addPolicyFlags(f)
	addJudgeFlags(f)
	addLogFlags(f)
	return cmd
}

func hintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hint",
		Short: "Generate one hint from a request JSON file",
		RunE:  runHint,
	}
	f := cmd.Flags()
	f.StringP("file", "f", "-", "Hint request JSON file (- for stdin)")
	f.StringP("lang", "l", "ko", "Response language (ko, en)")
	addPolicyFlags(f)
	addJudgeFlags(f)
	addLogFlags(f)
	return cmd
}

func ladderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ladder",
		Short: "Print the Chain-of-Hints ladder",
		RunE:  runLadder,
	}
	addLogFlags(cmd.Flags())
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export hint sessions and metric snapshots as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "hinter.db", "SQLite database path")
	f.Duration("session-ttl", cache.DefaultTTL, "Sessions idle longer than this are left out (0 = keep all)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(f)
	return cmd
}

func addPolicyFlags(f *pflag.FlagSet) {
	f.String("policy", "", "Scoring policy YAML file (default: search hinter-policy.yaml)")
}

func addJudgeFlags(f *pflag.FlagSet) {
	f.String("judge-provider", "none", "LLM judge for missing llm_metrics (none, openai, gemini)")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for the OpenAI-compatible endpoint")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("gemini-key", "", "Gemini API key (or set HINTER_GEMINI_KEY)")
	f.String("gemini-model", "gemini-1.5-flash", "Gemini model name")
	f.Duration("llm-timeout", 30*time.Second, "Per-call judge timeout")
	f.String("prompt-variant", string(prompts.PromptStandard), "Judge prompt variant (strict, standard, lenient)")
}

func addLogFlags(f *pflag.FlagSet) {
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("HINTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("hinter")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/hinter")
	v.AddConfigPath("/etc/hinter")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func promptVariant(v *viper.Viper) string {
	variant := strings.ToLower(strings.TrimSpace(v.GetString("prompt-variant")))
	if !prompts.IsValidVariant(variant) {
		slog.Warn("invalid prompt-variant, using standard", "variant", variant)
		variant = string(prompts.PromptStandard)
	}
	return variant
}

// newJudge builds the configured LLM judge, or nil when judging is disabled.
func newJudge(ctx context.Context, v *viper.Viper) (hint.Judge, error) {
	variant := promptVariant(v)
	timeout := v.GetDuration("llm-timeout")

	switch provider := strings.ToLower(v.GetString("judge-provider")); provider {
	case "", "none":
		slog.Info("LLM judge disabled, requests must carry llm_metrics")
		return nil, nil
	case "openai":
		c, err := llm.New(v.GetString("llm-url"), v.GetString("llm-key"), v.GetString("llm-model"), variant, timeout)
		if err != nil {
			return nil, fmt.Errorf("create LLM client: %w", err)
		}
		if err := c.Ping(ctx); err != nil {
			return nil, fmt.Errorf("LLM health check: %w", err)
		}
		slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
		return c, nil
	case "gemini":
		c, err := llm.NewGemini(v.GetString("gemini-key"), v.GetString("gemini-model"), variant, timeout)
		if err != nil {
			return nil, fmt.Errorf("create Gemini client: %w", err)
		}
		slog.Info("Gemini judge configured", "model", v.GetString("gemini-model"))
		return c, nil
	default:
		return nil, fmt.Errorf("unknown judge provider %q (want none, openai or gemini)", provider)
	}
}

// newService loads the scoring policy and builds the hint service.
func newService(ctx context.Context, v *viper.Viper) (*hint.Service, error) {
	policy, err := config.NewLoader().Load(v.GetString("policy"))
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	judge, err := newJudge(ctx, v)
	if err != nil {
		return nil, err
	}
	return hint.NewService(policy, judge), nil
}

func policyHash(p *config.Policy) (string, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)
	ctx := context.Background()

	// Initialize i18n.
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	svc, err := newService(ctx, v)
	if err != nil {
		return err
	}

	// Open database. Snapshots always live in SQLite; sessions follow history-backend.
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ttl := v.GetDuration("session-ttl")
	db.SetSessionTTL(ttl)

	hash, err := policyHash(svc.Policy())
	if err != nil {
		return fmt.Errorf("hash policy: %w", err)
	}
	changed, err := db.RecordPolicy(ctx, hash)
	if err != nil {
		return fmt.Errorf("record policy: %w", err)
	}
	if changed {
		slog.Warn("scoring policy changed since last run, stored snapshots were scored differently")
	}
	variant := promptVariant(v)
	if err := db.SetMetadata(ctx, store.MetaPromptVariant, variant); err != nil {
		return fmt.Errorf("record prompt variant: %w", err)
	}

	backend := strings.ToLower(v.GetString("history-backend"))
	var history handler.HistoryStore
	switch backend {
	case "sqlite":
		history = db
		go cleanupLoop(ctx, db, v.GetDuration("cleanup-interval"))
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     v.GetString("redis-addr"),
			Password: v.GetString("redis-password"),
			DB:       v.GetInt("redis-db"),
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check: %w", err)
		}
		history = cache.NewHistoryCache(rdb, ttl)
		slog.Info("redis OK", "addr", v.GetString("redis-addr"))
	case "none":
	default:
		return fmt.Errorf("unknown history backend %q (want sqlite, redis or none)", backend)
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	cfg := model.ServiceConfig{
		Lang:           lang,
		BasePath:       basePath,
		HistoryBackend: backend,
		JudgeProvider:  v.GetString("judge-provider"),
		PromptVariant:  variant,
	}

	h, err := handler.New(svc, history, db, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"history_backend", backend,
		"session_ttl", ttl,
		"judge_provider", cfg.JudgeProvider,
		"prompt_variant", variant,
		"base_path", basePath,
	)
	return http.ListenAndServe(addr, r)
}

func cleanupLoop(ctx context.Context, db *store.Store, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.CleanupExpiredSessions(ctx)
			if err != nil {
				slog.Error("cleanup expired sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired sessions removed", "count", n)
			}
		}
	}
}

func runHint(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)
	ctx := context.Background()

	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	ctx = appI18n.WithLocalizer(ctx, appI18n.NewLocalizer(v.GetString("lang")))

	svc, err := newService(ctx, v)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if path := v.GetString("file"); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open request: %w", err)
		}
		defer f.Close()
		in = f
	}
	var req model.HintRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("parse request: %w", err)
	}

	history, err := hint.HistoryFromClient(req.PreviousHints)
	if err != nil {
		return err
	}
	res, err := svc.Generate(ctx, req, history)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, model.Envelope{Success: true, Data: res.Data})
}

func runLadder(cmd *cobra.Command, _ []string) error {
	setupLogging(viperForCmd(cmd))

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRESET\tDEPTH\tLEVEL\tNAME\tSTYLE\tBLOCKED")
	for _, r := range coh.Ladder() {
		blocked := strings.Join(r.Blocked.Names(), ",")
		if blocked == "" {
			blocked = "-"
		}
		level := fmt.Sprint(r.HintLevel)
		if r.Last {
			level += "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", r.Preset, r.Depth, level, r.LevelName, r.Style, blocked)
	}
	return tw.Flush()
}

func runExport(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetSessionTTL(v.GetDuration("session-ttl"))

	export, err := db.ExportAll(context.Background())
	if err != nil {
		return fmt.Errorf("export history: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := writeJSON(w, export); err != nil {
		return err
	}
	slog.Info("exported history", "sessions", len(export.Sessions), "snapshots", len(export.Snapshots))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)
	return nil
}
