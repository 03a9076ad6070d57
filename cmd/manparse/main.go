package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/manparse"
	"github.com/fwojciec/manparse/goquery"
	"github.com/fwojciec/manparse/man"
	"github.com/fwojciec/manparse/parse"
	manslog "github.com/fwojciec/manparse/slog"
	"github.com/fwojciec/manparse/sqlite"
	"github.com/fwojciec/manparse/toml"
	"github.com/fwojciec/manparse/troff"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Rules file path. Empty uses the built-in rules.
	RulesPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Stdin is read by batch --from -. Defaults to os.Stdin.
	Stdin io.Reader

	// Sources replaces the man(1) source, for end-to-end testing.
	Sources manparse.SourceService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:    defaultDBPath(),
		RulesPath: os.Getenv("MANPARSE_RULES"),
		Stdin:     os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("manparse"),
		kong.Description("Parse manual pages into structured documents."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'manparse --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	rules := manparse.DefaultRules()
	if m.RulesPath != "" {
		if rules, err = toml.LoadRules(m.RulesPath); err != nil {
			fmt.Fprintln(stderr, "Hint: Unset MANPARSE_RULES to use the built-in rules")
			return err
		}
	}
	deps.Parser = parse.NewParser(troff.NewNormalizer(troff.DefaultEscapes()), rules)
	deps.Renderer = manslog.NewLoggingRenderer(goquery.NewRenderer(), deps.Logger)

	sources := m.Sources
	if sources == nil {
		sources = man.NewSource()
	}
	deps.Sources = manslog.NewLoggingSourceService(sources, deps.Logger)

	// parse and check never touch storage.
	switch kongCtx.Selected().Name {
	case "parse", "check":
	default:
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set MANPARSE_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()

		deps.Documents = manslog.NewLoggingDocumentService(sqlite.NewDocumentService(m.DB), deps.Logger)
		deps.Manifest = sqlite.NewManifestService(m.DB)
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("MANPARSE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "manparse.db"
	}
	dir := filepath.Join(home, ".manparse")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "manparse.db")
}
