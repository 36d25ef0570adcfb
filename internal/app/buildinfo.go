package app

import (
	"fmt"
	"strings"
	"time"
)

var (
	// Version is filled by ldflags in release builds.
	Version = "dev"
	// BuildDate is filled by ldflags in release builds, RFC 3339 or YYYY-MM-DD.
	BuildDate = ""
)

const dateLayout = "2006-01-02"

// VersionString renders "name version (date)" for --version and the startup log.
func VersionString() string {
	version := strings.TrimSpace(Version)
	if version == "" {
		version = "dev"
	}
	if date := buildDay(strings.TrimSpace(BuildDate)); date != "" {
		return fmt.Sprintf("%s %s (%s)", Name, version, date)
	}

	return fmt.Sprintf("%s %s", Name, version)
}

func buildDay(raw string) string {
	if raw == "" {
		return ""
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.Format(dateLayout)
	}
	if len(raw) >= len(dateLayout) {
		if _, err := time.Parse(dateLayout, raw[:len(dateLayout)]); err == nil {
			return raw[:len(dateLayout)]
		}
	}

	return raw
}
