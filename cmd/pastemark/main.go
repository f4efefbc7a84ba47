// Command pastemark is the CLI for the paste provenance toolkit.
// It annotates documents against recorded paste logs, verifies annotated
// output, manages capture sessions, and serves the REST API.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/pastemark/pastemark/core/match"
	"github.com/pastemark/pastemark/core/paste"
	"github.com/pastemark/pastemark/core/reconcile"
	"github.com/pastemark/pastemark/core/verify"
	"github.com/pastemark/pastemark/internal/api"
	"github.com/pastemark/pastemark/internal/archive"
	"github.com/pastemark/pastemark/internal/logging"
	"github.com/pastemark/pastemark/internal/pastelog"
	"github.com/pastemark/pastemark/internal/session"
)

const version = "0.1.0"

// CLI defines the command-line interface for pastemark.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" enum:"debug,info,warn,error" default:"info" help:"Log level"`
	LogFormat string `name:"log-format" enum:"json,text" default:"text" help:"Log output format"`

	Annotate AnnotateCmd  `cmd:"" help:"Annotate a document against a paste log"`
	Verify   VerifyCmd    `cmd:"" help:"Verify an annotated document"`
	Query    QueryCmd     `cmd:"" help:"Query an annotated document with XPath"`
	Session  SessionGroup `cmd:"" help:"Capture session operations (init, record, run, export, import)"`
	Serve    ServeCmd     `cmd:"" help:"Start REST API server"`
	Version  VersionCmd   `cmd:"" help:"Print version information"`
}

// matcherFlags are the tunable matcher thresholds shared by annotate and run.
type matcherFlags struct {
	MinLength      int     `name:"min-length" default:"15" help:"Minimum paste length to consider"`
	FuzzyThreshold float64 `name:"fuzzy-threshold" default:"0.75" help:"Word similarity required for a fuzzy match"`
}

func (f matcherFlags) config() match.Config {
	cfg := match.DefaultConfig()
	cfg.MinEventLength = f.MinLength
	cfg.FuzzyThreshold = f.FuzzyThreshold
	return cfg
}

// AnnotateCmd reconciles a document with a paste log and writes the result.
type AnnotateCmd struct {
	Document string `arg:"" help:"Path to document markup" type:"existingfile"`
	Log      string `arg:"" help:"Path to paste log" type:"existingfile"`
	Output   string `short:"o" help:"Output path (default: stdout)" type:"path"`
	matcherFlags
}

func (c *AnnotateCmd) Run() error {
	doc, err := os.ReadFile(c.Document)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	events, err := pastelog.ParseFile(c.Log)
	if err != nil {
		return err
	}

	started := time.Now()
	annotated := reconcile.New(c.config()).Reconcile(string(doc), events)
	report := verify.Annotated(string(doc), annotated)
	logging.ReconcileRun(len(doc), len(events), report.Highlights, time.Since(started))

	if c.Output == "" {
		fmt.Print(annotated)
		return nil
	}
	return os.WriteFile(c.Output, []byte(annotated), 0644)
}

// VerifyCmd verifies an annotated document against its original.
type VerifyCmd struct {
	Original  string `arg:"" help:"Path to original document" type:"existingfile"`
	Annotated string `arg:"" help:"Path to annotated document" type:"existingfile"`
}

func (c *VerifyCmd) Run() error {
	original, err := os.ReadFile(c.Original)
	if err != nil {
		return fmt.Errorf("read original: %w", err)
	}
	annotated, err := os.ReadFile(c.Annotated)
	if err != nil {
		return fmt.Errorf("read annotated: %w", err)
	}

	report := verify.Annotated(string(original), string(annotated))

	fmt.Printf("Well-formed:  %v\n", report.WellFormed)
	fmt.Printf("Text intact:  %v\n", report.TextIntact)
	fmt.Printf("Highlights:   %d\n", report.Highlights)
	for method, count := range report.ByMethod {
		fmt.Printf("  %-12s %d\n", method, count)
	}
	if len(report.Issues) > 0 {
		fmt.Println("Issues:")
		for _, issue := range report.Issues {
			fmt.Printf("  - %s\n", issue)
		}
		return fmt.Errorf("verification found %d issue(s)", len(report.Issues))
	}
	fmt.Println("OK")
	return nil
}

// QueryCmd runs an XPath expression against an annotated document.
type QueryCmd struct {
	Annotated string `arg:"" help:"Path to annotated document" type:"existingfile"`
	Expr      string `arg:"" help:"XPath expression"`
}

func (c *QueryCmd) Run() error {
	annotated, err := os.ReadFile(c.Annotated)
	if err != nil {
		return fmt.Errorf("read annotated: %w", err)
	}
	texts, err := verify.Query(string(annotated), c.Expr)
	if err != nil {
		return err
	}
	for _, text := range texts {
		fmt.Println(text)
	}
	return nil
}

// SessionGroup contains capture session operations.
type SessionGroup struct {
	Init   SessionInitCmd   `cmd:"" help:"Create a new capture session"`
	List   SessionListCmd   `cmd:"" help:"List capture sessions"`
	Record SessionRecordCmd `cmd:"" help:"Record a paste event against a session"`
	Events SessionEventsCmd `cmd:"" help:"Print a session's paste log"`
	Run    SessionRunCmd    `cmd:"" help:"Reconcile a session's document against its events"`
	Export SessionExportCmd `cmd:"" help:"Export a session as a bundle"`
	Import SessionImportCmd `cmd:"" help:"Import a bundle as a new session"`
}

// sessionFlags locate the session store.
type sessionFlags struct {
	Database string `name:"db" default:"pastemark.db" help:"Session store path" type:"path"`
}

func (f sessionFlags) open() (*session.Store, error) {
	return session.Open(f.Database)
}

// SessionInitCmd creates a new capture session.
type SessionInitCmd struct {
	sessionFlags
	Document string `arg:"" optional:"" help:"Path to document markup" type:"existingfile"`
}

func (c *SessionInitCmd) Run() error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	var doc string
	if c.Document != "" {
		data, err := os.ReadFile(c.Document)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		doc = string(data)
	}

	sess, err := store.Create(doc)
	if err != nil {
		return err
	}
	fmt.Println(sess.ID)
	return nil
}

// SessionListCmd lists capture sessions.
type SessionListCmd struct {
	sessionFlags
}

func (c *SessionListCmd) Run() error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions")
		return nil
	}
	for _, sess := range sessions {
		events, err := store.Events(sess.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s  %d event(s)  %d byte(s)\n",
			sess.ID, sess.CreatedAt.Format(time.RFC3339), len(events), len(sess.Document))
	}
	return nil
}

// SessionRecordCmd records a paste event against a session.
type SessionRecordCmd struct {
	sessionFlags
	ID    string `arg:"" help:"Session ID"`
	Text  string `arg:"" help:"Pasted text"`
	Start int    `help:"Insertion offset at capture time"`
	End   int    `help:"End offset at capture time"`
}

func (c *SessionRecordCmd) Run() error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	ev := paste.Event{
		Text:       c.Text,
		StartIndex: c.Start,
		EndIndex:   c.End,
		Timestamp:  time.Now().UTC(),
	}
	if err := store.RecordEvent(c.ID, ev); err != nil {
		return err
	}
	logging.SessionEvent("event_recorded", c.ID)
	return nil
}

// SessionEventsCmd prints a session's paste log.
type SessionEventsCmd struct {
	sessionFlags
	ID string `arg:"" help:"Session ID"`
}

func (c *SessionEventsCmd) Run() error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := store.Events(c.ID)
	if err != nil {
		return err
	}
	return pastelog.Format(os.Stdout, events)
}

// SessionRunCmd reconciles a session's document against its recorded events.
type SessionRunCmd struct {
	sessionFlags
	matcherFlags
	ID     string `arg:"" help:"Session ID"`
	Output string `short:"o" help:"Output path (default: stdout)" type:"path"`
}

func (c *SessionRunCmd) Run() error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := store.Get(c.ID)
	if err != nil {
		return err
	}
	events, err := store.Events(c.ID)
	if err != nil {
		return err
	}

	started := time.Now()
	annotated := reconcile.New(c.config()).Reconcile(sess.Document, events)
	report := verify.Annotated(sess.Document, annotated)
	logging.ReconcileRun(len(sess.Document), len(events), report.Highlights, time.Since(started))

	if c.Output == "" {
		fmt.Print(annotated)
		return nil
	}
	return os.WriteFile(c.Output, []byte(annotated), 0644)
}

// SessionExportCmd exports a session as a bundle.
type SessionExportCmd struct {
	sessionFlags
	ID     string `arg:"" help:"Session ID"`
	Output string `arg:"" help:"Bundle path (.tar.gz)" type:"path"`
}

func (c *SessionExportCmd) Run() error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := store.Get(c.ID)
	if err != nil {
		return err
	}
	events, err := store.Events(c.ID)
	if err != nil {
		return err
	}

	out := c.Output
	if !strings.HasSuffix(out, ".tar.gz") {
		out += ".tar.gz"
	}
	if err := archive.Write(out, &archive.Bundle{Document: sess.Document, Events: events}); err != nil {
		return err
	}
	fmt.Printf("Exported session %s to %s (%d event(s))\n", c.ID, out, len(events))
	return nil
}

// SessionImportCmd imports a bundle as a new session.
type SessionImportCmd struct {
	sessionFlags
	Bundle string `arg:"" help:"Bundle path (.tar.gz or .tar.xz)" type:"existingfile"`
}

func (c *SessionImportCmd) Run() error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	bundle, err := archive.Read(c.Bundle)
	if err != nil {
		return err
	}

	sess, err := store.Create(bundle.Document)
	if err != nil {
		return err
	}
	for _, ev := range bundle.Events {
		if err := store.RecordEvent(sess.ID, ev); err != nil {
			return err
		}
	}
	fmt.Println(sess.ID)
	return nil
}

// ServeCmd starts the REST API server.
type ServeCmd struct {
	Port           int      `help:"HTTP server port" default:"8081"`
	Database       string   `name:"db" default:"pastemark.db" help:"Session store path" type:"path"`
	APIKey         string   `name:"api-key" env:"PASTEMARK_API_KEY" help:"Require this API key on requests"`
	RateLimit      int      `name:"rate-limit" help:"Requests per minute per client (0 = disabled)"`
	TLSCert        string   `name:"tls-cert" help:"Path to TLS certificate" type:"path"`
	TLSKey         string   `name:"tls-key" help:"Path to TLS private key" type:"path"`
	AllowedOrigins []string `name:"allowed-origins" help:"CORS allowed origins (empty = allow all)"`
}

func (c *ServeCmd) Run() error {
	cfg := api.Config{
		Port:              c.Port,
		DatabasePath:      c.Database,
		RateLimitRequests: c.RateLimit,
		AllowedOrigins:    c.AllowedOrigins,
		Auth: api.AuthConfig{
			Enabled: c.APIKey != "",
			APIKey:  c.APIKey,
		},
		TLS: api.TLSConfig{
			Enabled:  c.TLSCert != "",
			CertFile: c.TLSCert,
			KeyFile:  c.TLSKey,
		},
	}
	srv, err := api.New(cfg)
	if err != nil {
		return err
	}
	defer srv.Close()
	return srv.Start()
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("pastemark version %s\n", version)
	return nil
}

func initLogging() {
	var level logging.Level
	switch CLI.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	default:
		level = logging.LevelInfo
	}
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("pastemark"),
		kong.Description("Paste provenance reconciliation toolkit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
