package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// Config merge precedence: project over global over defaults, per key.
func TestConfigMergePrecedence(t *testing.T) {
	nonEmptyString := rapid.StringMatching(`[a-zA-Z0-9/_.:-]{1,20}`)

	configGen := rapid.Custom(func(t *rapid.T) *Config {
		// Each field is independently either empty or a non-empty value.
		cfg := &Config{}
		for _, f := range []struct {
			name string
			dst  *string
		}{
			{"logPath", &cfg.LogPath},
			{"sourceFormat", &cfg.SourceFormat},
			{"dayBoundary", &cfg.DayBoundary},
			{"timezone", &cfg.Timezone},
			{"unterminated", &cfg.Unterminated},
			{"minDailyWork", &cfg.MinDailyWork},
			{"maxDailyBreak", &cfg.MaxDailyBreak},
			{"defaultFormat", &cfg.DefaultFormat},
			{"outputDir", &cfg.OutputDir},
			{"archivePath", &cfg.ArchivePath},
			{"author", &cfg.Author},
		} {
			if rapid.Bool().Draw(t, "has_"+f.name) {
				*f.dst = nonEmptyString.Draw(t, f.name)
			}
		}
		return cfg
	})

	rapid.Check(t, func(t *rapid.T) {
		global := configGen.Draw(t, "global")
		project := configGen.Draw(t, "project")

		merged := Merge(global, project)
		defaults := Defaults()

		fields := []struct {
			name                             string
			global, project, defaultVal, got string
		}{
			{"LogPath", global.LogPath, project.LogPath, defaults.LogPath, merged.LogPath},
			{"SourceFormat", global.SourceFormat, project.SourceFormat, defaults.SourceFormat, merged.SourceFormat},
			{"DayBoundary", global.DayBoundary, project.DayBoundary, defaults.DayBoundary, merged.DayBoundary},
			{"Timezone", global.Timezone, project.Timezone, defaults.Timezone, merged.Timezone},
			{"Unterminated", global.Unterminated, project.Unterminated, defaults.Unterminated, merged.Unterminated},
			{"MinDailyWork", global.MinDailyWork, project.MinDailyWork, defaults.MinDailyWork, merged.MinDailyWork},
			{"MaxDailyBreak", global.MaxDailyBreak, project.MaxDailyBreak, defaults.MaxDailyBreak, merged.MaxDailyBreak},
			{"DefaultFormat", global.DefaultFormat, project.DefaultFormat, defaults.DefaultFormat, merged.DefaultFormat},
			{"OutputDir", global.OutputDir, project.OutputDir, defaults.OutputDir, merged.OutputDir},
			{"ArchivePath", global.ArchivePath, project.ArchivePath, defaults.ArchivePath, merged.ArchivePath},
			{"Author", global.Author, project.Author, defaults.Author, merged.Author},
		}
		for _, f := range fields {
			checkStringField(t, f.name, f.global, f.project, f.defaultVal, f.got)
		}
	})
}

// checkStringField asserts the merge precedence rule for a single string field:
//   - project non-empty  → merged == project
//   - project empty, global non-empty → merged == global
//   - both empty → merged == defaultVal
func checkStringField(t *rapid.T, name, globalVal, projectVal, defaultVal, mergedVal string) {
	t.Helper()
	switch {
	case projectVal != "":
		if mergedVal != projectVal {
			t.Fatalf("%s: both set, expected project value %q, got %q", name, projectVal, mergedVal)
		}
	case globalVal != "":
		if mergedVal != globalVal {
			t.Fatalf("%s: only global set, expected global value %q, got %q", name, globalVal, mergedVal)
		}
	default:
		if mergedVal != defaultVal {
			t.Fatalf("%s: neither set, expected default %q, got %q", name, defaultVal, mergedVal)
		}
	}
}

func TestMergeSynonymsPerKey(t *testing.T) {
	global := &Config{Synonyms: map[string]string{"badge in": "connect", "badge out": "disconnect"}}
	project := &Config{Synonyms: map[string]string{"badge out": "lock"}}

	merged := Merge(global, project)
	if got := merged.Synonyms["badge in"]; got != "connect" {
		t.Errorf("badge in: want connect, got %q", got)
	}
	if got := merged.Synonyms["badge out"]; got != "lock" {
		t.Errorf("badge out: want project value lock, got %q", got)
	}
	if len(global.Synonyms) != 2 || global.Synonyms["badge out"] != "disconnect" {
		t.Errorf("Merge modified its input: %v", global.Synonyms)
	}
}

func TestDefaultsValues(t *testing.T) {
	d := Defaults()
	if d.DefaultFormat != "text" {
		t.Errorf("DefaultFormat: want %q, got %q", "text", d.DefaultFormat)
	}
	if d.OutputDir != "." {
		t.Errorf("OutputDir: want %q, got %q", ".", d.OutputDir)
	}
	if d.DayBoundary != "00:00" {
		t.Errorf("DayBoundary: want %q, got %q", "00:00", d.DayBoundary)
	}
	th, err := d.Thresholds()
	if err != nil {
		t.Fatalf("Thresholds: %v", err)
	}
	if th.MinActive != 6*time.Hour || th.MaxBreak != time.Hour {
		t.Errorf("Thresholds: got %+v", th)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config, got nil")
	}
	defaults := Defaults()
	if cfg.DefaultFormat != defaults.DefaultFormat {
		t.Errorf("DefaultFormat: want %q, got %q", defaults.DefaultFormat, cfg.DefaultFormat)
	}
	if cfg.MinDailyWork != defaults.MinDailyWork {
		t.Errorf("MinDailyWork: want %q, got %q", defaults.MinDailyWork, cfg.MinDailyWork)
	}
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestLoadProjectYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	content := `day_boundary: "04:00"
timezone: Europe/Berlin
min_daily_work: "0"
event_label_synonyms:
  badge in: connect
`
	if err := os.WriteFile(ProjectFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if cfg.DayBoundary != "04:00" || cfg.Timezone != "Europe/Berlin" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Synonyms["badge in"] != "connect" {
		t.Errorf("synonyms: got %v", cfg.Synonyms)
	}

	merged := Merge(nil, cfg)
	th, err := merged.Thresholds()
	if err != nil {
		t.Fatalf("Thresholds: %v", err)
	}
	if th.MinActive != 0 {
		t.Errorf("min_daily_work \"0\" should disable the check, got %v", th.MinActive)
	}
	if th.MaxBreak != time.Hour {
		t.Errorf("max_daily_break should fall back to the default, got %v", th.MaxBreak)
	}
}

func TestLoadFileAcceptsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"default_format": "markdown", "author": "Sam"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.DefaultFormat != "markdown" || cfg.Author != "Sam" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadGlobalParseError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfgDir := filepath.Join(tmp, ".config", "worktime")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("day_boundary: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadGlobal()
	if err == nil {
		t.Fatal("expected an error for invalid YAML, got nil")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParseError, got %T: %v", err, err)
	}
}

func TestSaveGlobalRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	want := Defaults()
	want.Author = "Sam"
	want.Timezone = "UTC"
	want.Synonyms = map[string]string{"4801": "unlock"}
	if err := SaveGlobal(&want); err != nil {
		t.Fatalf("SaveGlobal: %v", err)
	}
	got, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if got.Author != "Sam" || got.Timezone != "UTC" || got.Synonyms["4801"] != "unlock" || got.MinDailyWork != "6h" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"boundary", Config{DayBoundary: "25:00"}},
		{"timezone", Config{Timezone: "Mars/Olympus"}},
		{"duration", Config{MinDailyWork: "six hours"}},
		{"negative duration", Config{MaxDailyBreak: "-1h"}},
		{"policy", Config{Unterminated: "never"}},
		{"synonym", Config{Synonyms: map[string]string{"x": "teleport"}}},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
	if err := (Config{}).Validate(); err != nil {
		t.Errorf("empty config should validate: %v", err)
	}
}

func TestFormValidators(t *testing.T) {
	if err := ValidateBoundary("04:30"); err != nil {
		t.Errorf("ValidateBoundary: %v", err)
	}
	if err := ValidateBoundary("4pm"); err == nil {
		t.Error("ValidateBoundary accepted 4pm")
	}
	if err := ValidateTimezone(""); err != nil {
		t.Errorf("ValidateTimezone blank: %v", err)
	}
	if err := ValidateTimezone("Nowhere/Land"); err == nil {
		t.Error("ValidateTimezone accepted an unknown zone")
	}
	if err := ValidateDuration("7h30m"); err != nil {
		t.Errorf("ValidateDuration: %v", err)
	}
	if err := ValidateDuration("soon"); err == nil {
		t.Error("ValidateDuration accepted soon")
	}
}

func TestSetupFormBuilds(t *testing.T) {
	cfg := Defaults()
	if SetupForm(&cfg) == nil {
		t.Fatal("SetupForm returned nil")
	}
	if cfg.SourceFormat != "auto" {
		t.Errorf("blank source format should preselect auto, got %q", cfg.SourceFormat)
	}
}
