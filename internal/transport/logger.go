package transport

import "log/slog"

func sessionLogger(address string, attrs ...any) *slog.Logger {
	logger := slog.With("component", "transport", "address", address)
	if len(attrs) == 0 {
		return logger
	}

	return logger.With(attrs...)
}
