// Command warden analyzes gridscript files for resource cost and unsafe
// loops, either as a one-shot check or as a long-running dashboard.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/pkg/profile"

	"github.com/duskfall/warden/pkg/warden"
	"github.com/duskfall/warden/pkg/warden/catalog"
	"github.com/duskfall/warden/pkg/warden/dashboard"
)

type cli struct {
	Catalog string `help:"Cost catalog YAML file (built-in catalog when omitted)." short:"c" type:"existingfile"`
	Player  string `help:"Player state YAML file for dynamic costs." short:"p" type:"existingfile"`
	Verbose bool   `help:"Enable debug logging." short:"v"`
	Profile string `help:"Write a pprof profile on exit." enum:",cpu,mem" default:""`

	Check checkCmd `cmd:"" help:"Analyze gridscript files and report cost and loop safety."`
	Serve serveCmd `cmd:"" help:"Run the analysis dashboard."`
}

type checkCmd struct {
	Files []string `arg:"" help:"Gridscript files to analyze." type:"existingfile"`
	JSON  bool     `help:"Emit reports as JSON instead of text."`
}

type serveCmd struct {
	Port int `help:"Dashboard listen port." default:"9090"`
}

type appContext struct {
	analyzer *warden.Analyzer
	state    *catalog.PlayerState
}

func main() {
	var c cli
	ktx := kong.Parse(&c,
		kong.Name("warden"),
		kong.Description("Static cost and loop-safety analysis for gridscript."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	switch c.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	app, err := buildApp(&c)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}

	ktx.FatalIfErrorf(ktx.Run(app))
}

func buildApp(c *cli) (*appContext, error) {
	opts := []warden.Option{}

	if c.Catalog != "" {
		cat, err := catalog.Load(c.Catalog)
		if err != nil {
			return nil, fmt.Errorf("loading catalog %s: %w", c.Catalog, err)
		}
		opts = append(opts, warden.WithCatalog(cat))
		slog.Debug("loaded catalog", "path", c.Catalog)
	}

	var state *catalog.PlayerState
	if c.Player != "" {
		var err error
		state, err = catalog.LoadPlayerState(c.Player)
		if err != nil {
			return nil, fmt.Errorf("loading player state %s: %w", c.Player, err)
		}
		slog.Debug("loaded player state", "path", c.Player, "level", state.Level)
	}

	return &appContext{
		analyzer: warden.New(opts...),
		state:    state,
	}, nil
}

func (cmd *checkCmd) Run(app *appContext) error {
	failed := false

	for _, path := range cmd.Files {
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		report, err := app.analyzer.Analyze(path, string(source), app.state)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}

		if cmd.JSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			printReport(report)
		}

		if report.Unsafe {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
	return nil
}

func printReport(report *warden.Report) {
	fmt.Printf("%s: total cost %.2f\n", report.Script, report.Cost.Total)
	for _, entry := range report.Cost.Entries {
		fmt.Printf("  %-24s %-10s %.2f\n", entry.Name, entry.Kind, entry.Cost)
	}
	if report.Unsafe {
		fmt.Printf("  UNSAFE: non-awaiting infinite loop at line %d\n", report.UnsafeLoopLine)
	}
}

func (cmd *serveCmd) Run(app *appContext) error {
	server := dashboard.NewServer(cmd.Port, app.analyzer)
	slog.Info("serving dashboard", "port", cmd.Port)
	return server.Start()
}
