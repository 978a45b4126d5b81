package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"eda-client/internal/backend"
	"eda-client/internal/config"
	"eda-client/internal/session"
	"eda-client/internal/terminal"
	"eda-client/internal/ui"
)

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	l, err := newLogger(cfg.Verbose)
	if err != nil {
		log.Fatalf("Unable to initialize Zap logger: %s", err)
	}
	defer func() { _ = l.Sync() }()
	logger := l.Sugar()

	display := ui.NewDisplay(os.Stdout, ui.Options{
		Markdown: cfg.Markdown,
		Charts:   cfg.Charts,
	})

	client := backend.NewClient(cfg.BackendURL, cfg.RequestTimeout, logger)
	sess := session.New(client, logger)
	logger.Debugw("session started", "session", sess.History().SessionID(), "backend", cfg.BackendURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go shutdownOnSignal(sigChan, display, cancel, l, os.Exit)

	// Backend health check (non-fatal)
	if err := client.HealthCheck(ctx); err != nil {
		display.PrintWarning(fmt.Sprintf("Backend check failed: %v", err))
	}

	display.PrintWelcome(cfg.BackendURL)

	if cfg.InitialFile != "" {
		handleUpload(ctx, sess, display, cfg.InitialFile)
	}

	run(ctx, cfg, sess, display, terminal.NewReader(os.Stdin))

	display.PrintGoodbye()
}

// shutdownOnSignal waits for a signal, cancels in-flight requests and
// flushes the logger before exiting. Exiting is needed because the REPL may
// be blocked reading stdin.
func shutdownOnSignal(sigs <-chan os.Signal, display *ui.Display, cancel context.CancelFunc, l *zap.Logger, exit func(int)) {
	sig := <-sigs
	display.StopSpinner()
	display.PrintInfo("\nShutting down...")
	l.Debug("received signal", zap.Stringer("signal", sig))

	cancel()
	_ = l.Sync()
	exit(0)
}

// run is the read-eval-print loop. It returns on /exit, end of input or
// when ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, sess *session.Session, display *ui.Display, in *terminal.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		display.PrintPrompt(sess.Filename())
		line, err := in.ReadLine()
		if err != nil {
			return
		}

		cmd := terminal.ParseCommand(line)
		switch cmd.Kind {
		case terminal.Empty:
			continue
		case terminal.Exit:
			return
		case terminal.Help:
			display.PrintHelp()
		case terminal.Clear:
			display.ClearScreen()
			display.PrintWelcome(cfg.BackendURL)
		case terminal.Upload:
			handleUpload(ctx, sess, display, cmd.Arg)
		case terminal.Ask:
			handleAsk(ctx, cfg, sess, display, cmd.Arg)
		case terminal.History:
			display.PrintHistory(sess.History().Entries())
		case terminal.Current:
			res, err := sess.Current(ctx)
			if err != nil {
				display.PrintError("Erro ao consultar arquivo", err)
				continue
			}
			display.PrintCurrent(res)
		case terminal.Export:
			handleExport(sess, display, cmd.Arg)
		case terminal.Unknown:
			display.PrintWarning(fmt.Sprintf("Unknown command %s", cmd.Arg))
			display.PrintHelp()
		}
	}
}

func handleUpload(ctx context.Context, sess *session.Session, display *ui.Display, path string) {
	if path == "" {
		display.PrintWarning("Usage: /upload <arquivo.csv>")
		return
	}

	display.StartSpinner("Enviando arquivo")
	filename, err := sess.Upload(ctx, path)
	display.StopSpinner()

	if err != nil {
		display.PrintError("Erro ao enviar arquivo", err)
		if errors.Is(err, os.ErrNotExist) {
			suggestCSVFiles(display, path)
		}
		return
	}

	display.PrintUploaded(filename)
}

func handleAsk(ctx context.Context, cfg *config.Config, sess *session.Session, display *ui.Display, question string) {
	start := time.Now()

	display.StartSpinner("Analisando")
	outcome, err := sess.Ask(ctx, question)
	display.StopSpinner()

	if errors.Is(err, session.ErrEmptyQuestion) {
		return
	}
	if err != nil {
		display.PrintError("Erro ao fazer pergunta", err)
		return
	}

	if err := display.PrintOutcome(outcome, cfg.DownloadDir); err != nil {
		display.PrintError("Erro ao salvar gráfico", err)
		return
	}

	if cfg.Verbose {
		display.PrintInfo(fmt.Sprintf("%s answer in %s", outcome.Kind, time.Since(start).Round(time.Millisecond)))
	}
}

func handleExport(sess *session.Session, display *ui.Display, path string) {
	if path == "" {
		path = fmt.Sprintf("historico-%s.json", sess.History().SessionID()[:8])
	}

	if err := sess.History().Export(path); err != nil {
		display.PrintError("Erro ao exportar histórico", err)
		return
	}

	display.PrintSuccess(fmt.Sprintf("Histórico exportado para %s (%d perguntas)", path, sess.History().Len()))
}

func suggestCSVFiles(display *ui.Display, path string) {
	base := filepath.Base(path)
	matches := terminal.FindCSVFiles(".", trimExt(base))
	if len(matches) == 0 {
		return
	}

	display.PrintInfo("CSV files nearby:")
	for i, m := range matches {
		if i == 10 {
			break
		}
		display.PrintInfo("  " + m)
	}
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

// parseFlags builds the configuration from defaults, the environment (and
// .env file) and command-line flags, in increasing precedence
func parseFlags() (*config.Config, error) {
	cfg := config.NewConfig()
	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}

	flag.StringVar(&cfg.BackendURL, "backend-url", cfg.BackendURL, "CSV analysis backend URL")
	flag.StringVar(&cfg.InitialFile, "file", cfg.InitialFile, "CSV file to upload at startup")
	flag.StringVar(&cfg.DownloadDir, "download-dir", cfg.DownloadDir, "Directory image answers are saved to")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Request timeout (0 waits indefinitely)")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable verbose logging")

	noMarkdown := flag.Bool("no-markdown", false, "Print answers as plain text")
	noChart := flag.Bool("no-chart", false, "Do not plot tabular answers")

	flag.Parse()

	if *noMarkdown {
		cfg.Markdown = false
	}
	if *noChart {
		cfg.Charts = false
	}

	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(logLevel(verbose))
	zc.OutputPaths = []string{"stderr"}

	return zc.Build()
}

func logLevel(verbose bool) zapcore.Level {
	if verbose {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
