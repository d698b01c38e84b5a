// ABOUTME: Entry point for the chatbot360-admin console
// ABOUTME: Serves the web console and offers CLI access to health, users and CSV export

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
	"github.com/bmi-ci/chatbot360-admin/internal/config"
	"github.com/bmi-ci/chatbot360-admin/internal/export"
	"github.com/bmi-ci/chatbot360-admin/internal/gateway"
)

// Version is set at build time.
var version = "dev"

const banner = `
  ____ _           _   ____        _   _____  __    ___
 / ___| |__   __ _| |_| __ )  ___ | |_|___ / / /_  / _ \
| |   | '_ \ / _' | __|  _ \ / _ \| __| |_ \| '_ \| | | |
| |___| | | | (_| | |_| |_) | (_) | |_ ___) | (_) | |_| |
 \____|_| |_|\__,_|\__|____/ \___/ \__|____/ \___/ \___/
                                                  admin
`

func usage() {
	fmt.Println("Usage: chatbot360-admin <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                                   Start the admin console")
	fmt.Println("  init                                    Create a new config file interactively")
	fmt.Println("  health                                  Check the admin API health")
	fmt.Println("  users                                   List backend user accounts")
	fmt.Println("  export [--start D] [--end D] [--out F]  Export conversations as CSV (dates YYYY-MM-DD)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// A .env file in the working directory is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(os.Stdin, os.Stdout)
	case "health":
		err = runHealth(ctx)
	case "users":
		err = runUsers(ctx, os.Stdout)
	case "export":
		err = runExport(ctx, os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, or the defaults when none exists yet.
func loadConfig() (*config.Config, string, error) {
	configPath := config.Path()
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, configPath, fmt.Errorf("loading config: %w", err)
	}
	return cfg, configPath, nil
}

func newClient(cfg *config.Config) *backend.Client {
	return backend.New(cfg.Backend.APIBaseURL, cfg.Backend.ChatBaseURL, cfg.Backend.Timeout)
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Console:   http://%s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Admin API: %s\n", cfg.Backend.APIBaseURL)
	green.Print("    ▶ ")
	fmt.Printf("Chat API:  %s\n", cfg.Backend.ChatBaseURL)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	if cfg.Session.Secret == "" {
		yellow.Println("    ! session.secret is empty, operators will be signed out on restart")
	}
	fmt.Println()

	logger.Info("starting chatbot360-admin",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"api_base_url", cfg.Backend.APIBaseURL,
	)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	status, err := newClient(cfg).Health(ctx)
	if err != nil {
		if code := backend.StatusCode(err); code != 0 {
			return fmt.Errorf("unhealthy: status %d", code)
		}
		return fmt.Errorf("health check failed: %w", err)
	}

	fmt.Printf("healthy (%s)\n", status.Status)
	return nil
}

func runUsers(ctx context.Context, out io.Writer) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	users, err := newClient(cfg).ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	return writeUsers(out, users)
}

// writeUsers prints users as an aligned table.
func writeUsers(out io.Writer, users []backend.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(out, "No users.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\n", u.ID, u.Username)
	}
	return tw.Flush()
}

// exportOptions are the flags of the export command.
type exportOptions struct {
	Start string
	End   string
	Out   string
}

// parseExportArgs reads --start, --end and --out.
func parseExportArgs(args []string) (exportOptions, error) {
	var opts exportOptions

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.Start, "start", "", "first day, YYYY-MM-DD")
	fs.StringVar(&opts.End, "end", "", "last day, YYYY-MM-DD")
	fs.StringVar(&opts.Out, "out", "", "output file, - for stdout")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	opts.Start = strings.TrimSpace(opts.Start)
	opts.End = strings.TrimSpace(opts.End)
	opts.Out = strings.TrimSpace(opts.Out)

	for _, d := range []struct{ name, value string }{{"--start", opts.Start}, {"--end", opts.End}} {
		if d.value == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d.value); err != nil {
			return opts, fmt.Errorf("%s must be a date as YYYY-MM-DD, got %q", d.name, d.value)
		}
	}

	return opts, nil
}

func runExport(ctx context.Context, args []string) error {
	opts, err := parseExportArgs(args)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	convos, err := newClient(cfg).ListConversations(ctx, backend.ConversationFilter{
		StartDate: opts.Start,
		EndDate:   opts.End,
	})
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}

	if opts.Out == "" || opts.Out == "-" {
		return export.WriteCSV(os.Stdout, convos)
	}

	f, err := os.Create(opts.Out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", opts.Out, err)
	}
	if err := export.WriteCSV(f, convos); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", opts.Out, err)
	}

	color.New(color.FgGreen).Fprintf(os.Stderr, "  ✓ %d conversation(s) written to %s\n", len(convos), opts.Out)
	return nil
}

// initAnswers are the values collected by the init command.
type initAnswers struct {
	HTTPAddr    string
	APIBaseURL  string
	ChatBaseURL string
	Timeout     string
	DBPath      string
	Secret      string
	SessionTTL  string
	LogLevel    string
	LogFormat   string
}

// renderConfig writes the answers as a YAML config file.
func renderConfig(a initAnswers) string {
	var cfg strings.Builder
	cfg.WriteString("# chatbot360-admin configuration\n")
	cfg.WriteString("# Generated by chatbot360-admin init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", a.HTTPAddr))
	cfg.WriteString("\n")

	cfg.WriteString("backend:\n")
	cfg.WriteString(fmt.Sprintf("  api_base_url: %q\n", a.APIBaseURL))
	cfg.WriteString(fmt.Sprintf("  chat_base_url: %q\n", a.ChatBaseURL))
	cfg.WriteString(fmt.Sprintf("  timeout: %q\n", a.Timeout))
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n", a.DBPath))
	cfg.WriteString("\n")

	cfg.WriteString("session:\n")
	cfg.WriteString(fmt.Sprintf("  secret: %q\n", a.Secret))
	cfg.WriteString(fmt.Sprintf("  ttl: %q\n", a.SessionTTL))
	cfg.WriteString("  sweep_interval: \"1h\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", a.LogLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", a.LogFormat))

	return cfg.String()
}

func runInit(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "chatbot360-admin configuration setup")
	fmt.Fprintln(out, "====================================")
	fmt.Fprintln(out)

	outputFile := prompt(reader, out, "Config file path", config.Path())

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := strings.ToLower(prompt(reader, out, "File exists. Overwrite?", "no"))
		if overwrite != "yes" && overwrite != "y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	secret, err := randomSecret()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\n--- Console ---")
	answers := initAnswers{
		HTTPAddr: prompt(reader, out, "HTTP address", config.DefaultHTTPAddr),
	}

	fmt.Fprintln(out, "\n--- Backends ---")
	answers.APIBaseURL = prompt(reader, out, "Admin API base URL", config.DefaultAPIBaseURL)
	answers.ChatBaseURL = prompt(reader, out, "Chat API base URL", config.DefaultChatBaseURL)
	answers.Timeout = prompt(reader, out, "Request timeout", config.DefaultTimeout.String())

	fmt.Fprintln(out, "\n--- Sessions ---")
	answers.DBPath = prompt(reader, out, "SQLite database path", filepath.Join(config.DataDir(), "admin.db"))
	answers.SessionTTL = prompt(reader, out, "Session lifetime", "168h")
	answers.Secret = secret

	fmt.Fprintln(out, "\n--- Logging ---")
	answers.LogLevel = prompt(reader, out, "Log level (debug/info/warn/error)", "info")
	answers.LogFormat = prompt(reader, out, "Log format (text/json)", "text")

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	// The file holds the session secret
	if err := os.WriteFile(outputFile, []byte(renderConfig(answers)), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(answers.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Fprintf(out, "\nConfig written to %s\n", outputFile)
	fmt.Fprintf(out, "Data directory: %s\n", dataDir)
	fmt.Fprintln(out, "\nTo start the console:")
	fmt.Fprintln(out, "  chatbot360-admin serve")

	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		// On EOF or error, return default
		fmt.Fprintln(out)
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
