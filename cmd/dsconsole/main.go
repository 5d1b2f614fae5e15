package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"github.com/oklog/run"

	"github.com/ashureev/dslabs/internal/catalog"
	"github.com/ashureev/dslabs/internal/console"
	"github.com/ashureev/dslabs/internal/visual"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

type flags struct {
	Structure string
	Catalog   string
	Delay     time.Duration
	Capacity  int
	Debug     bool
	NoLog     bool
}

// Run runs the terminal console.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	app := kingpin.New("dsconsole", "Interactive data structure console.")
	app.DefaultEnvars()

	var f flags
	kinds := make([]string, 0, len(console.Kinds()))
	for _, k := range console.Kinds() {
		kinds = append(kinds, string(k))
	}
	app.Flag("structure", "Structure to practice.").Short('s').Default(string(console.KindStack)).EnumVar(&f.Structure, kinds...)
	app.Flag("catalog", "Path to a catalog YAML file; the embedded catalog is used when empty.").StringVar(&f.Catalog)
	app.Flag("delay", "Visualizer animation delay.").Default(visual.DefaultDelay.String()).DurationVar(&f.Delay)
	app.Flag("capacity", "Visualizer element limit.").Default(fmt.Sprint(visual.DefaultCapacity)).IntVar(&f.Capacity)
	app.Flag("debug", "Enable debug mode.").BoolVar(&f.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&f.NoLog)

	if _, err := app.Parse(args[1:]); err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	logger := getLogger(f, stderr)

	cat, err := catalog.LoadFile(ctx, f.Catalog)
	if err != nil {
		return fmt.Errorf("could not load catalog: %w", err)
	}

	desc, _ := console.Lookup(console.Kind(f.Structure))
	s := newSession(desc, stdout,
		[]console.Option{
			console.WithLogger(logger.With("component", "console")),
			console.WithChallengeTexts(cat.Challenges(f.Structure)),
		},
		[]visual.Option{
			visual.WithDelay(f.Delay),
			visual.WithCapacity(f.Capacity),
			visual.WithLogger(logger.With("component", "visual")),
		},
	)
	defer s.Close()

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				logger.Debug("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// REPL.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				return s.Run(ctx, stdin)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

func getLogger(f flags, stderr io.Writer) *slog.Logger {
	if f.NoLog {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	level := slog.LevelWarn
	if f.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).With("version", Version)
	logger.Debug("Debug level is enabled")
	return logger
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	if err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
