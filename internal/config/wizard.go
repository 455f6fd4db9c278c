package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/fakeyudi/worktime/internal/session"
)

// SetupForm builds the interactive setup form. Answers are written into cfg
// when the form completes.
func SetupForm(cfg *Config) *huh.Form {
	if cfg.SourceFormat == "" {
		cfg.SourceFormat = "auto"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Your name (shown in reports)").
				Placeholder("optional").
				Value(&cfg.Author),
			huh.NewInput().
				Title("Event log path").
				Description("Blank uses $XDG_DATA_HOME/worktime/events.log").
				Value(&cfg.LogPath),
			huh.NewSelect[string]().
				Title("Log format").
				Options(
					huh.NewOption("Detect from extension", "auto"),
					huh.NewOption("Plain text", "text"),
					huh.NewOption("Windows Event Viewer export", "eventviewer"),
					huh.NewOption("ActivityWatch export", "activitywatch"),
				).
				Value(&cfg.SourceFormat),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Day starts at (HH:MM)").
				Placeholder("00:00").
				Value(&cfg.DayBoundary).
				Validate(ValidateBoundary),
			huh.NewInput().
				Title("Time zone (IANA name, blank for local)").
				Placeholder("Europe/Berlin").
				Value(&cfg.Timezone).
				Validate(ValidateTimezone),
			huh.NewInput().
				Title("Warn when a day has less active time than").
				Placeholder("6h").
				Value(&cfg.MinDailyWork).
				Validate(ValidateDuration),
			huh.NewInput().
				Title("Warn when breaks in a day exceed").
				Placeholder("1h").
				Value(&cfg.MaxDailyBreak).
				Validate(ValidateDuration),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default report format").
				Options(
					huh.NewOption("Text", "text"),
					huh.NewOption("Markdown", "markdown"),
					huh.NewOption("JSON", "json"),
					huh.NewOption("HTML", "html"),
				).
				Value(&cfg.DefaultFormat),
			huh.NewInput().
				Title("Default output directory").
				Placeholder(".").
				Value(&cfg.OutputDir),
			huh.NewSelect[string]().
				Title("A session still open at the end of the log counts until").
				Options(
					huh.NewOption("the last logged event", string(session.TruncateAtLastEvent)),
					huh.NewOption("now", string(session.TruncateAtNow)),
				).
				Value(&cfg.Unterminated),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(false)
}

// RunSetup runs the setup form seeded with existing and returns the result.
func RunSetup(existing Config) (Config, error) {
	cfg := existing
	if err := SetupForm(&cfg).Run(); err != nil {
		return Config{}, err
	}
	if cfg.SourceFormat == "auto" {
		cfg.SourceFormat = ""
	}
	return cfg, nil
}

// ValidateBoundary accepts blank or an HH:MM clock time.
func ValidateBoundary(s string) error {
	_, err := session.ParseBoundary(s, time.UTC)
	return err
}

// ValidateTimezone accepts blank or a zone known to the system database.
func ValidateTimezone(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.LoadLocation(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("unknown time zone %q", s)
	}
	return nil
}

// ValidateDuration accepts blank or a non-negative Go duration like "6h30m".
func ValidateDuration(s string) error {
	_, err := parseDuration("duration", s)
	return err
}
