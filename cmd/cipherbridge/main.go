package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/skobkin/cipherbridge/internal/app"
	"github.com/skobkin/cipherbridge/internal/config"
	"github.com/skobkin/cipherbridge/internal/console"
	"github.com/skobkin/cipherbridge/internal/journal"
	"github.com/skobkin/cipherbridge/internal/transport"
)

type overrides struct {
	port     string
	baud     int
	logLevel string
	journal  bool
}

func main() {
	if err := run(); err != nil {
		slog.Error("run cipherbridge", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file (.json or .toml), defaults to the user config dir")
	port := flag.String("port", "", "serial port of the device, e.g. /dev/ttyACM0 or COM4")
	baud := flag.Int("baud", 0, "serial baud rate (default 115200)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	useJournal := flag.Bool("journal", false, "record every exchange into the sqlite journal")
	saveCfg := flag.Bool("save-config", false, "write the resolved settings back to the config file before connecting")
	history := flag.Int("history", 0, "print the last N journal entries and exit")
	listPorts := flag.Bool("list-ports", false, "list serial ports and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(app.VersionString())
		return nil
	}
	if *listPorts {
		return printPorts(os.Stdout)
	}

	paths, err := app.ResolvePaths()
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	if strings.TrimSpace(*configPath) == "" {
		*configPath = paths.ConfigFile
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(&cfg, overrides{port: *port, baud: *baud, logLevel: *logLevel, journal: *useJournal}, paths)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *history > 0 {
		return printHistory(ctx, os.Stdout, cfg, *history)
	}

	if cfg.Journal.Enabled || cfg.Logging.LogToFile {
		if err := paths.EnsureRoot(); err != nil {
			return err
		}
	}
	if strings.TrimSpace(cfg.Link.SerialPort) == "" {
		return fmt.Errorf("missing serial port: set --port or link.serial_port in %s", *configPath)
	}
	if *saveCfg {
		if err := saveConfig(os.Stdout, *configPath, cfg); err != nil {
			return err
		}
	}

	rt, err := app.Initialize(ctx, paths, cfg, app.Options{LogOutput: os.Stderr})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			slog.Warn("close runtime", "error", closeErr)
		}
	}()

	return console.Run(os.Stdin, os.Stdout, rt.Cipher)
}

func applyOverrides(cfg *config.AppConfig, o overrides, paths app.Paths) {
	if port := strings.TrimSpace(o.port); port != "" {
		cfg.Link.SerialPort = port
	}
	if o.baud > 0 {
		cfg.Link.SerialBaud = o.baud
	}
	if level := strings.TrimSpace(o.logLevel); level != "" {
		cfg.Logging.Level = level
	}
	if o.journal {
		cfg.Journal.Enabled = true
	}
	if strings.TrimSpace(cfg.Journal.Path) == "" {
		cfg.Journal.Path = paths.JournalFile
	}
}

func saveConfig(out io.Writer, path string, cfg config.AppConfig) error {
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	_, err := fmt.Fprintf(out, "Saved settings for %s to %s\n", app.ConnectionTarget(cfg.Link), path)

	return err
}

func printPorts(out io.Writer) error {
	ports, err := transport.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		_, err := fmt.Fprintln(out, "No serial ports found.")
		return err
	}
	for _, p := range ports {
		if _, err := fmt.Fprintln(out, p.String()); err != nil {
			return err
		}
	}

	return nil
}

func printHistory(ctx context.Context, out io.Writer, cfg config.AppConfig, limit int) error {
	if _, err := os.Stat(cfg.Journal.Path); err != nil {
		return fmt.Errorf("journal %s: %w", cfg.Journal.Path, err)
	}

	j, err := journal.Open(ctx, cfg.Journal.Path, nil)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	entries, err := j.Recent(ctx, limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintln(out, formatEntry(e)); err != nil {
			return err
		}
	}

	return nil
}

func formatEntry(e journal.Entry) string {
	command := e.Command
	if e.Drain {
		command = "<drain>"
	}
	replies := make([]string, 0, len(e.Replies))
	for _, r := range e.Replies {
		replies = append(replies, r.Value)
	}

	line := fmt.Sprintf("%s %s %q -> [%s] (%s)",
		e.StartedAt.Format(time.RFC3339), e.Address, command, strings.Join(replies, ", "), e.Duration)
	if e.Error != "" {
		line += " error: " + e.Error
	}

	return line
}
