package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jung-wan-kim/usage-gate/internal/cache"
	"github.com/jung-wan-kim/usage-gate/internal/config"
	"github.com/jung-wan-kim/usage-gate/internal/hook"
	"github.com/jung-wan-kim/usage-gate/internal/i18n"
	"github.com/jung-wan-kim/usage-gate/internal/logging"
	"github.com/jung-wan-kim/usage-gate/internal/refresher"
	"github.com/jung-wan-kim/usage-gate/internal/statusline"
	"github.com/jung-wan-kim/usage-gate/internal/theme"
	"github.com/jung-wan-kim/usage-gate/internal/ui"
	"github.com/jung-wan-kim/usage-gate/internal/watcher"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// version is set by goreleaser via ldflags.
var version = "dev"

// maxStdin caps hook payloads read from the host.
const maxStdin = 4 << 20

const usage = `usage: usage-gate [-config path] <command>

commands:
  refresh     refresh the usage cache when stale (UserPromptSubmit hook)
  gate        gate a Task dispatch (PreToolUse hook)
  statusline  print the status line
  watch       live view of the cache
  version     print version and exit
`

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// exitUsage is returned for an unknown command. It must never equal
// hook.ExitBlock: a broken hook command line may not block dispatches.
const exitUsage = 1

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("usage-gate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", config.DefaultPath(), "config file path")
	if err := fs.Parse(args); err != nil {
		// Bad flags allow the dispatch; the usage text has been printed.
		return hook.ExitAllow
	}

	cmd := fs.Arg(0)
	switch cmd {
	case "version":
		fmt.Println("usage-gate", version)
		return 0
	case "refresh", "gate", "statusline", "watch":
	default:
		fs.Usage()
		return exitUsage
	}

	// Load never fails hard: hooks must keep working with defaults.
	cfg, err := config.Load(*configPath)
	closer := logging.Setup(cfg.CacheDir(), cfg.General.LogLevel)
	defer closer.Close()
	if err != nil {
		log.Warnf("config: %v", err)
	}
	for _, w := range cfg.Warnings {
		log.Warnf("config: %s", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "refresh":
		return runRefresh(ctx, cfg, fs.Args()[1:])
	case "gate":
		return runGate(cfg)
	case "statusline":
		return runStatusline(ctx, cfg)
	default:
		return runWatch(cfg)
	}
}

// hostInput returns stdin unless it is a terminal, so an interactive run
// does not block waiting for a payload.
func hostInput() io.Reader {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	return io.LimitReader(os.Stdin, maxStdin)
}

func readHostInput() []byte {
	in := hostInput()
	if in == nil {
		return nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		log.Debugf("stdin: %v", err)
	}
	return data
}

func runRefresh(ctx context.Context, cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)
	force := fs.Bool("force", false, "refresh even when the cache is fresh")
	quiet := fs.Bool("quiet", false, "do not print the advisory")
	if err := fs.Parse(args); err != nil {
		return 0
	}

	// The prompt payload is not needed; drain it so the host never blocks.
	readHostInput()

	r := refresher.New(cache.New(cfg.CachePath()), cfg.TTL())
	refresh := r.RefreshIfStale
	if *force {
		refresh = r.Refresh
	}
	snap, outcome := refresh(ctx)
	log.Debugf("refresh: %s", outcome)

	if !*quiet {
		if msg := statusline.Advisory(snap, cfg.Limits(), cfg.Mode(), i18n.For(cfg.General.Language)); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
	}
	return 0
}

func runGate(cfg config.Config) int {
	g := hook.Gate{
		Snapshots: cache.New(cfg.CachePath()),
		Limits:    cfg.Limits(),
		Mode:      cfg.Mode(),
		Catalog:   i18n.For(cfg.General.Language),
		Tools:     cfg.Gate.Tools,
	}
	return g.Run(hostInput(), os.Stdout, os.Stderr)
}

func runStatusline(ctx context.Context, cfg config.Config) int {
	input := readHostInput()

	var chained string
	if cfg.Statusline.ChainCmd != "" {
		chained = statusline.RunChain(ctx, cfg.Statusline.ChainCmd, input)
	}

	snap, _ := cache.New(cfg.CachePath()).Read()
	r := statusline.NewRenderer(theme.Renderer(os.Stdout), i18n.For(cfg.General.Language))
	fmt.Println(statusline.Compose(chained, r.Line(snap, cfg.Limits())))
	return 0
}

func runWatch(cfg config.Config) int {
	store := cache.New(cfg.CachePath())
	ref := refresher.New(store, cfg.TTL())
	app := ui.NewApp(cfg, store, ref, lipgloss.NewRenderer(os.Stdout))
	p := tea.NewProgram(app)

	w := watcher.New(store.Path(), 2*time.Second, func() {
		p.Send(ui.CacheChangedMsg{})
	})
	w.Prime()
	if err := w.Start(); err != nil {
		log.Warnf("watch: %v", err)
	}
	defer w.Stop()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
