// Command tokenlens explains what an opaque token is and every
// representation reachable from it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/interp"
	"github.com/tokenlens/tokenlens/core/plugins"
	"github.com/tokenlens/tokenlens/core/traverse"
	"github.com/tokenlens/tokenlens/internal/api"
	"github.com/tokenlens/tokenlens/internal/builtin"
	"github.com/tokenlens/tokenlens/internal/config"
	"github.com/tokenlens/tokenlens/internal/logging"
	"github.com/tokenlens/tokenlens/internal/rates"
	"github.com/tokenlens/tokenlens/internal/render"
	"github.com/tokenlens/tokenlens/internal/scan"
)

// CLI defines the command-line interface for tokenlens.
var CLI struct {
	// Global flags
	Config  string `name:"config" short:"c" help:"Config file path" type:"path"`
	NoColor bool   `name:"no-color" help:"Disable styled output"`

	Explain  ExplainCmd  `cmd:"" default:"withargs" help:"Interpret a token and list every reachable representation"`
	Convert  ConvertCmd  `cmd:"" help:"Convert a token to one target format"`
	Formats  FormatsCmd  `cmd:"" help:"List registered formats"`
	Validate ValidateCmd `cmd:"" help:"Check input against one named format"`
	Annotate AnnotateCmd `cmd:"" help:"Annotate recognizable tokens in a text stream"`
	Rates    RatesGroup  `cmd:"" help:"Currency rate operations"`
	Serve    ServeCmd    `cmd:"" help:"Start the REST API server"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// RatesGroup contains currency rate operations.
type RatesGroup struct {
	Update RatesUpdateCmd `cmd:"" help:"Fetch fresh rates and update the local cache"`
	Show   RatesShowCmd   `cmd:"" help:"Show cached rates"`
}

// app bundles the pieces every command needs. Built once per
// invocation from the config file, environment, and global flags.
type app struct {
	cfg   *config.Config
	reg   *format.Registry
	it    *interp.Interpreter
	host  *plugins.Host
	store *rates.Store
}

func buildApp() (*app, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	logging.InitLogger(logging.ParseLevel(cfg.LogLevel), logFormat(cfg.LogFormat))

	reg := format.NewRegistry()
	store := rates.NewStore()
	store.SetTarget(cfg.Currency)
	if err := builtin.Register(reg, store); err != nil {
		return nil, err
	}

	host := plugins.NewHost(reg)
	if cfg.PluginTimeout > 0 {
		host.SetTimeout(cfg.PluginTimeout)
	}
	if cfg.PluginDir != "" {
		checkManifests(cfg.PluginDir)
	}

	// Cached rates are good enough for offline use; an explicit
	// "rates update" refreshes them.
	if cfg.RatesCache != "" {
		if cache, err := rates.OpenCache(cfg.RatesCache); err == nil {
			if table, fetchedAt, err := cache.Load(); err == nil && len(table) > 0 {
				store.SetRates(table, fetchedAt)
			}
			cache.Close()
		}
	}

	return &app{
		cfg:   cfg,
		reg:   reg,
		it:    interp.New(reg),
		host:  host,
		store: store,
	}, nil
}

func (a *app) options() interp.Options {
	return interp.Options{Allow: a.cfg.Allow, MinConfidence: a.cfg.MinConfidence}
}

func (a *app) renderer() *render.Renderer {
	styles := render.DefaultStyles()
	if CLI.NoColor {
		styles = render.PlainStyles()
	}
	return render.New(os.Stdout, styles)
}

func logFormat(name string) logging.Format {
	if name == "json" {
		return logging.FormatJSON
	}
	return logging.FormatText
}

// checkManifests validates plugin manifests found in dir. Decoders
// register in-process through the plugins host; the manifests on disk
// only declare what a deployment expects to have available.
func checkManifests(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Warn("plugin directory unreadable", "dir", dir, "error", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logging.Warn("manifest unreadable", "path", path, "error", err)
			continue
		}
		m, err := plugins.ParseManifest(data)
		if err != nil {
			logging.Warn("manifest invalid", "path", path, "error", err)
			continue
		}
		if err := m.CheckCompatibility(); err != nil {
			logging.PluginError(m.PluginID, "compatibility", err)
			continue
		}
		logging.PluginLoading(m.PluginID, m.Version, m.Kind)
	}
}

// ExplainCmd interprets a token and lists its representations.
type ExplainCmd struct {
	Input         string   `arg:"" help:"Token to interpret"`
	Allow         []string `help:"Only consult these formats"`
	MinConfidence float64  `name:"min-confidence" help:"Drop interpretations below this confidence"`
	JSON          bool     `name:"json" help:"Emit JSON instead of styled text"`
}

func (c *ExplainCmd) Run() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	opts := a.options()
	if len(c.Allow) > 0 {
		opts.Allow = c.Allow
	}
	if c.MinConfidence > 0 {
		opts.MinConfidence = c.MinConfidence
	}

	interps := a.it.Parse(c.Input, opts)
	if len(interps) == 0 {
		return fmt.Errorf("no interpretation for %q", c.Input)
	}
	convs := traverse.Rank(traverse.Traverse(a.reg, interps[0]))
	notes := a.host.Annotate(interps[0])

	if c.JSON {
		return emitJSON(c.Input, interps, convs, notes)
	}

	r := a.renderer()
	r.Interpretations(interps)
	r.Conversions(convs)
	for _, note := range notes {
		fmt.Println(note)
	}
	return nil
}

type explainOutput struct {
	Input           string              `json:"input"`
	Interpretations []interpretationOut `json:"interpretations"`
	Representations []representationOut `json:"representations"`
	Annotations     []string            `json:"annotations,omitempty"`
}

type interpretationOut struct {
	Format      string  `json:"format"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

type representationOut struct {
	Format  string   `json:"format"`
	Display string   `json:"display"`
	Path    []string `json:"path,omitempty"`
	Lossy   bool     `json:"lossy,omitempty"`
}

func emitJSON(input string, interps []format.Interpretation, convs []format.Conversion, notes []string) error {
	out := explainOutput{Input: input, Annotations: notes}
	for _, in := range interps {
		out.Interpretations = append(out.Interpretations, interpretationOut{
			Format:      in.Format,
			Confidence:  in.Confidence,
			Description: in.Description,
		})
	}
	for _, conv := range convs {
		display := conv.Display
		if display == "" {
			display = conv.Value.String()
		}
		out.Representations = append(out.Representations, representationOut{
			Format:  conv.TargetFormat,
			Display: display,
			Path:    conv.Path,
			Lossy:   conv.Lossy,
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ConvertCmd converts a token to a single target format.
type ConvertCmd struct {
	Input string `arg:"" help:"Token to convert"`
	To    string `required:"" help:"Target format identifier"`
}

func (c *ConvertCmd) Run() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	if _, ok := a.reg.Lookup(c.To); !ok {
		return fmt.Errorf("unknown format %q", c.To)
	}

	interps := a.it.Parse(c.Input, a.options())
	if len(interps) == 0 {
		return fmt.Errorf("no interpretation for %q", c.Input)
	}
	for _, conv := range traverse.Traverse(a.reg, interps[0]) {
		if conv.TargetFormat != c.To {
			continue
		}
		display := conv.Display
		if display == "" {
			display = conv.Value.String()
		}
		fmt.Println(display)
		return nil
	}
	return fmt.Errorf("%q is not reachable from %q", c.To, interps[0].Format)
}

// FormatsCmd lists the registered formats.
type FormatsCmd struct {
	Category string `help:"Only list formats in this category"`
}

func (c *FormatsCmd) Run() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	infos := a.reg.Infos()
	if c.Category != "" {
		filtered := infos[:0]
		for _, info := range infos {
			if info.Category == c.Category {
				filtered = append(filtered, info)
			}
		}
		infos = filtered
	}
	a.renderer().Infos(infos)
	return nil
}

// ValidateCmd checks input against one named format.
type ValidateCmd struct {
	Input  string `arg:"" help:"Input to check"`
	Format string `required:"" help:"Format identifier or alias"`
}

func (c *ValidateCmd) Run() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	diag, err := a.it.Validate(c.Input, c.Format)
	if err != nil {
		return err
	}
	if diag != "" {
		return fmt.Errorf("invalid %s: %s", c.Format, diag)
	}
	fmt.Printf("valid %s\n", c.Format)
	return nil
}

// AnnotateCmd annotates recognizable tokens in a text stream.
type AnnotateCmd struct {
	Path          string  `arg:"" optional:"" help:"File to annotate, stdin when omitted" type:"existingfile"`
	MinConfidence float64 `name:"min-confidence" default:"0.5" help:"Only annotate tokens at or above this confidence"`
}

func (c *AnnotateCmd) Run() error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	in := os.Stdin
	if c.Path != "" {
		f, err := os.Open(c.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	tokens, err := scan.Reader(in)
	if err != nil {
		return err
	}

	opts := a.options()
	if opts.MinConfidence < c.MinConfidence {
		opts.MinConfidence = c.MinConfidence
	}

	r := a.renderer()
	for _, tok := range tokens {
		if !scan.Interesting(tok) {
			continue
		}
		interps := a.it.Parse(tok.Text, opts)
		if len(interps) == 0 {
			continue
		}
		best := interps[0]
		r.Annotation(tok.Text, tok.Line, tok.Offset, best, a.host.Annotate(best))
	}
	return nil
}

// RatesUpdateCmd fetches fresh rates and updates the local cache.
type RatesUpdateCmd struct {
	Timeout time.Duration `default:"15s" help:"Fetch timeout"`
}

func (c *RatesUpdateCmd) Run() error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	var cache *rates.Cache
	if a.cfg.RatesCache != "" {
		cache, err = rates.OpenCache(a.cfg.RatesCache)
		if err != nil {
			return fmt.Errorf("open rate cache: %w", err)
		}
		defer cache.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	if err := rates.Refresh(ctx, a.store, rates.NewFetcher(a.cfg.RatesURL), cache); err != nil {
		return err
	}
	fmt.Printf("loaded %d rates\n", a.store.Len())
	return nil
}

// RatesShowCmd shows the cached rates.
type RatesShowCmd struct{}

func (c *RatesShowCmd) Run() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	snap := a.store.Snapshot()
	if len(snap.Rates) == 0 {
		return fmt.Errorf("no rates loaded; run \"tokenlens rates update\"")
	}

	codes := make([]string, 0, len(snap.Rates))
	for code := range snap.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	fmt.Printf("rates per USD, fetched %s\n", snap.FetchedAt.Format(time.RFC3339))
	for _, code := range codes {
		fmt.Printf("  %s  %.6g\n", code, snap.Rates[code])
	}
	return nil
}

// ServeCmd starts the REST API server.
type ServeCmd struct {
	Listen string `help:"Listen address, overrides the configured one"`
}

func (c *ServeCmd) Run() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	addr := a.cfg.Listen
	if c.Listen != "" {
		addr = c.Listen
	}

	// Best effort refresh on startup; cached or empty rates are fine.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := rates.Refresh(ctx, a.store, rates.NewFetcher(a.cfg.RatesURL), nil); err != nil {
		logging.Warn("rate refresh failed, serving without fresh rates", "error", err)
	}
	cancel()

	srv := api.NewServer(a.it, a.host, a.store, a.options())
	return srv.Start(addr)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("tokenlens %s\n", api.Version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("tokenlens"),
		kong.Description("tokenlens - token interpretation and conversion"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
