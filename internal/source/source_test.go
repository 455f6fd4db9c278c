package source

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"text", "EventViewer", " activitywatch "} {
		s, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, strings.ToLower(strings.TrimSpace(name)), s.Name())
	}
	_, err := Lookup("syslog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "activitywatch, eventviewer, text")
}

func TestDetect(t *testing.T) {
	cases := map[string]string{
		"events.log":      FormatText,
		"events":          FormatText,
		"Security.TSV":    FormatEventViewer,
		"export.csv":      FormatEventViewer,
		"aw-buckets.json": FormatActivityWatch,
	}
	for path, want := range cases {
		assert.Equal(t, want, Detect(path).Name(), path)
	}
}

func TestTextLogRead(t *testing.T) {
	in := "\ufeff# worktime log\n" +
		"2024-03-04T09:00:00+01:00\tconnect\n" +
		"\n" +
		"2024-03-04 12:30:00 lock\n" +
		"3/4/2024 1:15:02 PM Unlock Workstation\n" +
		"1709542800 disconnect\n" +
		"garbage\n"

	recs, err := (&TextLog{}).Read(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 5)

	assert.Equal(t, "2024-03-04T09:00:00+01:00", recs[0].Timestamp)
	assert.Equal(t, "connect", recs[0].Label)
	assert.Equal(t, 2, recs[0].Line)

	assert.Equal(t, "2024-03-04 12:30:00", recs[1].Timestamp)
	assert.Equal(t, "lock", recs[1].Label)
	assert.Equal(t, 4, recs[1].Line)

	assert.Equal(t, "3/4/2024 1:15:02 PM", recs[2].Timestamp)
	assert.Equal(t, "Unlock Workstation", recs[2].Label)

	assert.Equal(t, "1709542800", recs[3].Timestamp)
	assert.Equal(t, "disconnect", recs[3].Label)

	assert.Equal(t, "garbage", recs[4].Timestamp)
	assert.Empty(t, recs[4].Label)
	assert.Equal(t, 7, recs[4].Line)
	for _, r := range recs {
		assert.Equal(t, FormatText, r.Source)
	}
}

func TestTextLogReadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&TextLog{}).Read(ctx, strings.NewReader("2024-03-04 09:00 connect\n"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestWriteRecord(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, WriteRecord(&buf, ts, "  unlock  "))
	assert.Equal(t, "2024-03-04T09:00:00Z\tunlock\n", buf.String())

	require.Error(t, WriteRecord(&buf, ts, "   "))
}

func TestAppendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.log")
	ts := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, Append(path, ts, "connect"))
	require.NoError(t, Append(path, ts.Add(time.Hour), "lock"))

	recs, _, err := ReadFile(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "connect", recs[0].Label)
	assert.Equal(t, "2024-03-04T10:00:00Z", recs[1].Timestamp)
	assert.Equal(t, "lock", recs[1].Label)
}

func TestReadFileMissing(t *testing.T) {
	_, _, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.log"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log file not found")
}

func TestDefaultLogPathXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	p, err := DefaultLogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "worktime", "events.log"), p)
}

func TestEventViewerRead(t *testing.T) {
	in := "Level\tDate and Time\tSource\tEvent ID\tTask Category\n" +
		"Information\t3/4/2024 9:02:11 AM\tMicrosoft-Windows-Security-Auditing\t4801\tOther Logon/Logoff Events\n" +
		"Information\t3/4/2024 12:30:40 PM\tMicrosoft-Windows-Security-Auditing\t4800\tOther Logon/Logoff Events\n" +
		"Information\t3/4/2024 6:01:00 PM\n"

	recs, err := (&EventViewerExport{}).Read(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "3/4/2024 9:02:11 AM", recs[0].Timestamp)
	assert.Equal(t, "4801", recs[0].Label)
	assert.Equal(t, 2, recs[0].Line)

	assert.Equal(t, "4800", recs[1].Label)
	assert.Equal(t, 3, recs[1].Line)

	// Short row: timestamp but no event ID.
	assert.Equal(t, "3/4/2024 6:01:00 PM", recs[2].Timestamp)
	assert.Empty(t, recs[2].Label)
	assert.Equal(t, FormatEventViewer, recs[2].Source)
}

func TestActivityWatchBuckets(t *testing.T) {
	in := `{"buckets": {
	  "aw-watcher-afk_host": {
	    "id": "aw-watcher-afk_host",
	    "type": "afkstatus",
	    "events": [
	      {"timestamp": "2024-03-04T09:00:00+00:00", "duration": 3600, "data": {"status": "not-afk"}},
	      {"timestamp": "2024-03-04T10:00:00+00:00", "duration": 900, "data": {"status": "afk"}},
	      {"timestamp": "2024-03-04T10:15:00.500+00:00", "duration": 1.5, "data": {"status": "not-afk"}}
	    ]
	  }
	}}`

	recs, err := (&ActivityWatchExport{}).Read(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, "unlock", recs[0].Label)
	assert.Equal(t, "2024-03-04T09:00:00Z", recs[0].Timestamp)
	assert.Equal(t, "lock", recs[1].Label)
	assert.Equal(t, "2024-03-04T10:00:00Z", recs[1].Timestamp)
	assert.Equal(t, 1, recs[1].Line)

	assert.Equal(t, "unlock", recs[2].Label)
	assert.Equal(t, 3, recs[2].Line)
	assert.Equal(t, "2024-03-04T10:15:02Z", recs[3].Timestamp)
}

func TestActivityWatchMergesSpans(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][2]string
	}{
		{
			name: "newest first and touching",
			in: `[
			  {"timestamp": "2024-03-04T10:00:00Z", "duration": 3600, "data": {"status": "not-afk"}},
			  {"timestamp": "2024-03-04T09:00:00Z", "duration": 3600, "data": {"status": "not-afk"}}
			]`,
			want: [][2]string{{"2024-03-04T09:00:00Z", "2024-03-04T11:00:00Z"}},
		},
		{
			name: "overlapping",
			in: `[
			  {"timestamp": "2024-03-04T09:00:00Z", "duration": 3600, "data": {"status": "not-afk"}},
			  {"timestamp": "2024-03-04T09:59:00Z", "duration": 3660, "data": {"status": "not-afk"}}
			]`,
			want: [][2]string{{"2024-03-04T09:00:00Z", "2024-03-04T11:00:00Z"}},
		},
		{
			name: "contained and separate",
			in: `[
			  {"timestamp": "2024-03-04T13:00:00Z", "duration": 600, "data": {"status": "not-afk"}},
			  {"timestamp": "2024-03-04T12:00:00Z", "duration": 1800, "data": {"status": "afk"}},
			  {"timestamp": "2024-03-04T09:30:00Z", "duration": 60, "data": {"status": "not-afk"}},
			  {"timestamp": "2024-03-04T09:00:00Z", "duration": 3600, "data": {"status": "not-afk"}}
			]`,
			want: [][2]string{
				{"2024-03-04T09:00:00Z", "2024-03-04T10:00:00Z"},
				{"2024-03-04T13:00:00Z", "2024-03-04T13:10:00Z"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := (&ActivityWatchExport{}).Read(context.Background(), strings.NewReader(tt.in))
			require.NoError(t, err)
			require.Len(t, recs, 2*len(tt.want))
			for i, w := range tt.want {
				assert.Equal(t, "unlock", recs[2*i].Label)
				assert.Equal(t, w[0], recs[2*i].Timestamp)
				assert.Equal(t, "lock", recs[2*i+1].Label)
				assert.Equal(t, w[1], recs[2*i+1].Timestamp)
			}
		})
	}
}

func TestActivityWatchBareArray(t *testing.T) {
	in := `[{"timestamp": "not a time", "duration": 10, "data": {"status": "not-afk"}}]`
	recs, err := (&ActivityWatchExport{}).Read(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "not a time", recs[0].Timestamp)
}

func TestActivityWatchInvalid(t *testing.T) {
	_, err := (&ActivityWatchExport{}).Read(context.Background(), strings.NewReader(`{"buckets":`))
	require.Error(t, err)

	_, err = (&ActivityWatchExport{}).Read(context.Background(), strings.NewReader(`"hello"`))
	require.Error(t, err)
}

func TestReadFileDetectsFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.tsv")
	require.NoError(t, os.WriteFile(path, []byte("Information\t3/4/2024 9:02:11 AM\tSecurity\t4801\tOther\n"), 0o644))
	recs, _, err := ReadFile(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "4801", recs[0].Label)
}

func TestReadFileSniffsEventViewerText(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"with-header.txt": "\ufeffLevel\tDate and Time\tSource\tEvent ID\tTask Category\n" +
			"Information\t3/4/2024 9:02:11 AM\tMicrosoft-Windows-Security-Auditing\t4801\tOther Logon/Logoff Events\n",
		"no-header.txt": "Information\t3/4/2024 9:02:11 AM\tMicrosoft-Windows-Security-Auditing\t4801\tOther Logon/Logoff Events\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			recs, src, err := ReadFile(context.Background(), path, nil)
			require.NoError(t, err)
			assert.Equal(t, FormatEventViewer, src.Name())
			require.Len(t, recs, 1)
			assert.Equal(t, "4801", recs[0].Label)
			assert.Equal(t, "3/4/2024 9:02:11 AM", recs[0].Timestamp)
		})
	}
}

func TestSniffKeepsTextLog(t *testing.T) {
	text := registry[FormatText]
	head := []byte("# my log\n\n2024-03-04T09:00:00Z\tconnect\n")
	assert.Equal(t, FormatText, Sniff(text, head).Name())
	assert.Equal(t, FormatText, Sniff(text, nil).Name())
	assert.Equal(t, FormatActivityWatch, Sniff(registry[FormatActivityWatch], head).Name())
}
