package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/skobkin/cipherbridge/internal/bridge"
	"github.com/skobkin/cipherbridge/internal/cipher"
	"github.com/skobkin/cipherbridge/internal/config"
	"github.com/skobkin/cipherbridge/internal/journal"
	"github.com/skobkin/cipherbridge/internal/logging"
	"github.com/skobkin/cipherbridge/internal/transport"
)

// Runtime owns everything one CLI run opens: logging, the optional journal
// and the bridge to the device. Close releases them in reverse order.
type Runtime struct {
	Paths  Paths
	Config config.AppConfig

	LogManager *logging.Manager
	Journal    *journal.Journal
	Bridge     *bridge.Bridge
	Cipher     *cipher.Client
}

// Options carry what the CLI injects besides config.
type Options struct {
	LogOutput io.Writer
	LinkOpts  []transport.Option
}

// Initialize configures logging, opens the journal when enabled, then opens
// and drains the device link. On failure everything opened so far is closed.
func Initialize(ctx context.Context, paths Paths, cfg config.AppConfig, opts Options) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rt := &Runtime{Paths: paths, Config: cfg}

	logMgr := logging.NewManager(opts.LogOutput)
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	logger := logMgr.Logger("runtime")
	logger.Info("starting", "version", VersionString(), "target", ConnectionTarget(cfg.Link))

	bridgeOpts := []bridge.Option{
		bridge.WithReadTimeout(cfg.Exchange.ReadTimeout()),
		bridge.WithExchangeDeadline(cfg.Exchange.ExchangeDeadline()),
		bridge.WithFlush(cfg.Exchange.FlushBefore, cfg.Exchange.FlushAfter),
		bridge.WithLogger(logMgr.Logger("bridge")),
	}

	if cfg.Journal.Enabled {
		j, err := journal.Open(ctx, cfg.Journal.Path, logMgr.Logger("journal"))
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		rt.Journal = j
		bridgeOpts = append(bridgeOpts, bridge.WithRecorder(j))
	}

	linkOpts := append([]transport.Option{
		transport.WithSettleDelay(cfg.Exchange.SettleDelay()),
		transport.WithLogger(logMgr.Logger("transport").With("address", cfg.Link.SerialPort)),
	}, opts.LinkOpts...)

	b, err := bridge.Dial(ctx, cfg.Link.SerialPort, cfg.Link.SerialBaud, linkOpts, bridgeOpts...)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Bridge = b
	rt.Cipher = cipher.NewClient(b, logMgr.Logger("cipher"))

	return rt, nil
}

// Close is safe to call more than once.
func (r *Runtime) Close() error {
	var errs []error
	if r.Bridge != nil {
		if err := r.Bridge.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bridge: %w", err))
		}
	}
	if r.Journal != nil {
		if err := r.Journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
		r.Journal = nil
	}
	if r.LogManager != nil {
		if err := r.LogManager.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log manager: %w", err))
		}
	}

	return errors.Join(errs...)
}

// ConnectionTarget renders the link as "port@baud".
func ConnectionTarget(cfg config.LinkConfig) string {
	port := strings.TrimSpace(cfg.SerialPort)
	if port == "" {
		return "serial"
	}
	if cfg.SerialBaud > 0 {
		return fmt.Sprintf("%s@%d", port, cfg.SerialBaud)
	}

	return port
}
