package event

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func quietNormalizer() *Normalizer {
	return &Normalizer{Location: time.UTC, Logger: slog.New(slog.DiscardHandler)}
}

func TestNormalizeSortsByTimeKeepingTies(t *testing.T) {
	records := []RawRecord{
		{Timestamp: "2024-03-04 12:00:00", Label: "Lock"},
		{Timestamp: "2024-03-04 09:00:00", Label: "Session Connect"},
		{Timestamp: "2024-03-04 12:00:00", Label: "Unlock"},
		{Timestamp: "2024-03-04 17:30:00", Label: "disconnect"},
	}

	got, err := quietNormalizer().Normalize(records)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []Kind{Connect, Lock, Unlock, Disconnect}
	if len(got.Events) != len(want) {
		t.Fatalf("got %d events, want %d", len(got.Events), len(want))
	}
	for i, k := range want {
		if got.Events[i].Kind != k {
			t.Errorf("event %d: got %s, want %s", i, got.Events[i].Kind, k)
		}
	}
	if len(got.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", got.Diagnostics)
	}
}

func TestNormalizeDropsMalformedRecords(t *testing.T) {
	records := []RawRecord{
		{Timestamp: "2024-03-04 09:00:00", Label: "Connect", Line: 1},
		{Timestamp: "yesterday-ish", Label: "Lock", Line: 2},
		{Timestamp: "2024-03-04 10:00:00", Label: "coffee break", Line: 3},
		{Timestamp: "", Label: "Lock", Line: 4},
		{Timestamp: "2024-03-04 11:00:00", Label: "  ", Line: 5},
		{Timestamp: "2024-03-04 12:00:00", Label: "LOCK", Line: 6},
	}

	got, err := quietNormalizer().Normalize(records)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(got.Events))
	}

	wantCodes := map[int]Code{
		2: CodeUnparseableTimestamp,
		3: CodeUnknownLabel,
		4: CodeMissingField,
		5: CodeMissingField,
	}
	if len(got.Diagnostics) != len(wantCodes) {
		t.Fatalf("got %d diagnostics, want %d: %v", len(got.Diagnostics), len(wantCodes), got.Diagnostics)
	}
	for _, d := range got.Diagnostics {
		if d.Category != MalformedRecord {
			t.Errorf("line %d: category %s, want %s", d.Line, d.Category, MalformedRecord)
		}
		if want := wantCodes[d.Line]; d.Code != want {
			t.Errorf("line %d: code %s, want %s", d.Line, d.Code, want)
		}
		if d.Record == nil {
			t.Errorf("line %d: diagnostic carries no record", d.Line)
		}
	}
}

func TestNormalizeEmptyLog(t *testing.T) {
	records := []RawRecord{
		{Timestamp: "garbage", Label: "Lock"},
		{Timestamp: "2024-03-04 09:00:00", Label: "dance"},
	}

	got, err := quietNormalizer().Normalize(records)
	if !errors.Is(err, ErrEmptyLog) {
		t.Fatalf("expected ErrEmptyLog, got %v", err)
	}
	if len(got.Diagnostics) != 2 {
		t.Errorf("diagnostics should survive an empty log, got %d", len(got.Diagnostics))
	}

	if _, err := quietNormalizer().Normalize(nil); !errors.Is(err, ErrEmptyLog) {
		t.Errorf("nil input: expected ErrEmptyLog, got %v", err)
	}
}

func TestNormalizeUsesLineFallback(t *testing.T) {
	records := []RawRecord{
		{Timestamp: "2024-03-04 09:00:00", Label: "Connect"},
		{Timestamp: "nope", Label: "Lock"},
	}
	got, err := quietNormalizer().Normalize(records)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.Diagnostics[0].Line != 2 {
		t.Errorf("line: got %d, want 2", got.Diagnostics[0].Line)
	}
}

func TestVocabulary(t *testing.T) {
	v := DefaultVocabulary()
	cases := map[string]Kind{
		"Connect":                    Connect,
		"Session Connect":            Connect,
		"connection_to_user_session": Connect,
		"4778":                       Connect,
		"  Session   DISCONNECT ":    Disconnect,
		"log-off":                    Disconnect,
		"1074":                       Disconnect,
		"Workstation Locked":         Lock,
		"4800":                       Lock,
		"workstation-unlocked":       Unlock,
		"4801":                       Unlock,
	}
	for label, want := range cases {
		got, ok := v.Lookup(label)
		if !ok || got != want {
			t.Errorf("Lookup(%q) = %q, %v; want %q", label, got, ok, want)
		}
	}
	if _, ok := v.Lookup("heartbeat"); ok {
		t.Error("heartbeat should not be recognized")
	}
}

func TestNewVocabularySynonyms(t *testing.T) {
	v, err := NewVocabulary(map[string]string{
		"Bildschirm gesperrt": "lock",
		"shutdown":            "Lock",
	})
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}
	if k, _ := v.Lookup("bildschirm GESPERRT"); k != Lock {
		t.Errorf("custom synonym: got %q, want Lock", k)
	}
	if k, _ := v.Lookup("Shutdown"); k != Lock {
		t.Errorf("override: got %q, want Lock", k)
	}

	if _, err := NewVocabulary(map[string]string{"nap": "Sleep"}); err == nil {
		t.Error("expected error for a non-canonical target kind")
	}
	if _, err := NewVocabulary(map[string]string{" ": "Lock"}); err == nil {
		t.Error("expected error for an empty label")
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2019, 6, 26, 18, 57, 11, 0, time.UTC)
	inputs := []string{
		"2019-06-26T18:57:11Z",
		"2019-06-26T18:57:11",
		"2019-06-26 18:57:11",
		"2019/06/26 18:57:11",
		"6/26/2019 6:57:11 PM",
		"06/26/2019 18:57:11",
		fmt.Sprint(want.Unix()),
	}
	for _, in := range inputs {
		got, err := ParseTimestamp(in, nil, time.UTC)
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", in, got, want)
		}
	}

	for _, bad := range []string{"", "   ", "26.06.2019", "18:57"} {
		if _, err := ParseTimestamp(bad, nil, time.UTC); err == nil {
			t.Errorf("ParseTimestamp(%q): expected error", bad)
		}
	}
}

func TestParseTimestampUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	got, err := ParseTimestamp("2024-01-01 10:00:00", nil, loc)
	if err != nil {
		t.Fatal(err)
	}
	if got.UTC().Hour() != 8 {
		t.Errorf("expected 08:00 UTC, got %v", got.UTC())
	}
}

// Shuffling records with distinct timestamps never changes the normalized
// sequence.
func TestNormalizeOrderInvariance(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	labels := []string{"Connect", "Disconnect", "Lock", "Unlock"}

	rapid.Check(t, func(t *rapid.T) {
		offsets := rapid.SliceOfNDistinct(rapid.IntRange(0, 10_000), 1, 40, rapid.ID[int]).Draw(t, "offsets")
		records := make([]RawRecord, len(offsets))
		for i, off := range offsets {
			records[i] = RawRecord{
				Timestamp: base.Add(time.Duration(off) * time.Minute).Format(time.RFC3339),
				Label:     rapid.SampledFrom(labels).Draw(t, "label"),
			}
		}
		perm := rapid.Permutation(records).Draw(t, "perm")

		a, err := quietNormalizer().Normalize(records)
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		b, err := quietNormalizer().Normalize(perm)
		if err != nil {
			t.Fatalf("Normalize shuffled: %v", err)
		}
		for i := range a.Events {
			if !a.Events[i].Time.Equal(b.Events[i].Time) || a.Events[i].Kind != b.Events[i].Kind {
				t.Fatalf("event %d differs: %v vs %v", i, a.Events[i], b.Events[i])
			}
		}
	})
}
