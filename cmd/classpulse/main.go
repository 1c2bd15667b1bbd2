package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/handler"
	"github.com/classpulse/classpulse/internal/model"
	"github.com/classpulse/classpulse/internal/report"
	"github.com/classpulse/classpulse/internal/store"
	"github.com/classpulse/classpulse/internal/summary"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "classpulse",
		Short: "Anonymous classroom feedback collection server",
	}

	serve := serveCmd()
	root.AddCommand(serve, reportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `classpulse --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP feedback server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "classpulse.db", "SQLite database path")
	f.String("base-url", "http://localhost:8080", "Public base URL embedded in share links and QR codes")
	f.String("llm-url", "", "OpenAI-compatible API base URL for comment summaries (empty = offline analyzers only)")
	f.String("llm-key", "", "API key for the summarization model")
	f.String("llm-model", "", "Summarization model name")
	f.Duration("summary-timeout", summary.DefaultTimeout, "Timeout for remote summarization calls")
	f.String("jwt-secret", "", "Secret for teacher tokens (or set CLASSPULSE_JWT_SECRET)")
	f.Bool("secure-cookies", false, "Set Secure flag on submission marker cookies")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export a session feedback report as PDF",
		RunE:  runReport,
	}
	f := cmd.Flags()
	f.String("db", "classpulse.db", "SQLite database path")
	f.String("session", "", "Session identifier (required)")
	f.String("base-url", "http://localhost:8080", "Public base URL embedded in the report")
	f.String("llm-url", "", "OpenAI-compatible API base URL for comment summaries")
	f.String("llm-key", "", "API key for the summarization model")
	f.String("llm-model", "", "Summarization model name")
	f.Duration("summary-timeout", summary.DefaultTimeout, "Timeout for remote summarization calls")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

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

	v.SetEnvPrefix("CLASSPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("classpulse")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/classpulse")
	v.AddConfigPath("/etc/classpulse")
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

// newSummarizer builds the summarizer, with remote capability only when both
// the endpoint and model are configured.
func newSummarizer(v *viper.Viper) *summary.Summarizer {
	llmURL := v.GetString("llm-url")
	llmModel := v.GetString("llm-model")
	timeout := v.GetDuration("summary-timeout")

	if llmURL == "" || llmModel == "" {
		slog.Info("no summarization model configured, using offline analyzers")
		return summary.New(nil, timeout)
	}
	slog.Info("summarization model configured", "url", llmURL, "model", llmModel)
	return summary.New(summary.NewRemote(llmURL, v.GetString("llm-key"), llmModel), timeout)
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	secret := v.GetString("jwt-secret")
	if secret == "" {
		return fmt.Errorf("jwt-secret is required (flag or CLASSPULSE_JWT_SECRET)")
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	cfg := model.ServerConfig{
		BaseURL:       v.GetString("base-url"),
		JWTSecret:     secret,
		SecureCookies: v.GetBool("secure-cookies"),
	}

	h := handler.New(
		db,
		analytics.New(db),
		newSummarizer(v),
		report.NewComposer(cfg.BaseURL),
		cfg,
	)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"base_url", cfg.BaseURL,
		"llm_url", v.GetString("llm-url"),
		"llm_model", v.GetString("llm-model"),
		"secure_cookies", cfg.SecureCookies,
	)
	return http.ListenAndServe(addr, r)
}

func runReport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	sessionID := v.GetString("session")
	res, err := analytics.New(db).Aggregate(sessionID)
	if err != nil {
		return fmt.Errorf("aggregate session %s: %w", sessionID, err)
	}

	comments := make([]string, 0, len(res.Feedbacks))
	for _, f := range res.Feedbacks {
		comments = append(comments, f.Comment)
	}
	ctx, cancel := context.WithTimeout(context.Background(), v.GetDuration("summary-timeout")+5*time.Second)
	defer cancel()
	sum := newSummarizer(v).Summarize(ctx, comments)

	pdf, err := report.NewComposer(v.GetString("base-url")).Compose(res, sum)
	if err != nil {
		return fmt.Errorf("compose report: %w", err)
	}

	output := v.GetString("output")
	if output == "-" {
		_, err = os.Stdout.Write(pdf)
		return err
	}
	if err := os.WriteFile(output, pdf, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	slog.Info("report written", "path", output, "session", sessionID, "responses", res.TotalResponses)
	return nil
}
