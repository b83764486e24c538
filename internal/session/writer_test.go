package session

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"luxtrail/internal/config"
	"luxtrail/internal/store"
	"luxtrail/internal/telemetry"
)

var (
	testTS       = time.Unix(0, 0).UTC()
	testLocation = telemetry.LocationRow{DeviceID: "d1", Seq: 1, Lat: 1, Lon: 2, Alt: 3, Name: "Main St", CheckpointID: "cp1", DistanceM: 12.5, Timestamp: testTS}
	testLight    = telemetry.LightRow{DeviceID: "d1", Lux: 42.5, Buffered: 7, Timestamp: testTS}
	testCheck    = telemetry.CheckpointRow{DeviceID: "d1", CheckpointID: "cp1", Lat: 1, Lon: 2, Name: "Main St", AverageLux: 21.25, Samples: 4, Timestamp: testTS}
)

func writeAll(t *testing.T, w Writer) {
	t.Helper()
	if err := w.WriteLocation(testLocation); err != nil {
		t.Fatalf("location: %v", err)
	}
	if err := w.WriteLight(testLight); err != nil {
		t.Fatalf("light: %v", err)
	}
	if err := w.WriteCheckpoint(testCheck); err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
}

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.jsonl")
	fw, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	writeAll(t, fw)
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	var kinds []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var env struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(sc.Bytes(), &env); err != nil {
			t.Fatalf("decode %q: %v", sc.Text(), err)
		}
		kinds = append(kinds, env.Kind)
	}
	want := []string{telemetry.KindLocation, telemetry.KindLight, telemetry.KindCheckpoint}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
}

func TestJSONStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &JSONStdoutWriter{out: buf}
	writeAll(t, w)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %q", len(lines), buf.String())
	}
	var got telemetry.CheckpointRow
	if err := json.Unmarshal([]byte(lines[2]), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AverageLux != testCheck.AverageLux || got.Samples != testCheck.Samples {
		t.Fatalf("unexpected checkpoint %+v", got)
	}
}

func TestColorStdoutWriter(t *testing.T) {
	cfg := &config.Config{DeviceID: "d1"}
	cfg.Tracker.RadiusM = 30
	cfg.Tracker.MaxLightStorage = 5000
	cfg.Geocoder.Provider = "static"
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{cfg: cfg, out: buf, lightEvery: 10}
	writeAll(t, w)
	out := buf.String()
	if !strings.Contains(out, "Tracker Configuration:") {
		t.Fatalf("overview not printed: %q", out)
	}
	if !strings.Contains(out, "\x1b[") || !strings.Contains(out, "CHECKPOINT") {
		t.Fatalf("expected colored checkpoint line: %q", out)
	}

	buf.Reset()
	if err := w.WriteLocation(testLocation); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if strings.Contains(buf.String(), "Tracker Configuration:") {
		t.Fatalf("overview printed more than once")
	}

	// only every tenth light sample is echoed
	buf.Reset()
	for i := 0; i < 9; i++ {
		_ = w.WriteLight(testLight)
	}
	if strings.Contains(buf.String(), "LIGHT") {
		t.Fatalf("light samples should be throttled: %q", buf.String())
	}
	cleared := testLight
	cleared.Cleared = true
	_ = w.WriteLight(cleared)
	if !strings.Contains(buf.String(), "cleared") {
		t.Fatalf("cleared samples are always printed: %q", buf.String())
	}
}

type closingWriter struct {
	recordingWriter
	closed bool
}

func (c *closingWriter) Close() error {
	c.closed = true
	return nil
}

func TestMultiWriter(t *testing.T) {
	a := &recordingWriter{err: errors.New("boom")}
	b := &closingWriter{}
	mw := NewMultiWriter(a, nil, b)
	if len(mw.Writers()) != 2 {
		t.Fatalf("nil writers should be skipped")
	}
	if err := mw.WriteLight(testLight); err == nil {
		t.Fatalf("expected joined error")
	}
	if len(b.lights) != 1 {
		t.Fatalf("second writer should still receive the row")
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !b.closed {
		t.Fatalf("closer not closed")
	}
}

func TestMultiWriterForwardsSnapshot(t *testing.T) {
	p := &fakeProgram{}
	tw := &TUIWriter{program: p}
	mw := NewMultiWriter(&recordingWriter{}, tw)
	mw.SetSnapshot(func() Screen { return Screen{Light: "Light: 1 lux"} })
	mw.SetAdminStatus(true)
	if err := mw.WriteLight(testLight); err != nil {
		t.Fatalf("write: %v", err)
	}
	var sawAdmin, sawScreen bool
	for _, m := range p.msgs {
		switch msg := m.(type) {
		case adminMsg:
			sawAdmin = msg.active
		case screenMsg:
			sawScreen = msg.Light == "Light: 1 lux"
		}
	}
	if !sawAdmin || !sawScreen {
		t.Fatalf("messages not forwarded: %#v", p.msgs)
	}
}

type mockGreptimeClient struct {
	tables []*table.Table
	// fail makes that many Write calls return an error before succeeding.
	fail int
}

var errGreptimeDown = errors.New("greptime unavailable")

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	if m.fail > 0 {
		m.fail--
		return nil, errGreptimeDown
	}
	m.tables = append(m.tables, tables...)
	return &gpb.GreptimeResponse{}, nil
}

func TestGreptimeWriterLocation(t *testing.T) {
	m := &mockGreptimeClient{}
	w := newGreptimeDBWriter(m)
	if err := w.WriteLocation(testLocation); err != nil {
		t.Fatalf("WriteLocation: %v", err)
	}
	if len(m.tables) != 1 {
		t.Fatalf("tables written = %d, want 1", len(m.tables))
	}
	rows := m.tables[0].GetRows()
	if rows.Schema[0].Datatype != gpb.ColumnDataType_STRING {
		t.Fatalf("device_id column type = %v", rows.Schema[0].Datatype)
	}
	if got := rows.Rows[0].Values[0].GetStringValue(); got != "d1" {
		t.Fatalf("device_id = %q", got)
	}
	if got := rows.Rows[0].Values[2].GetF64Value(); got != 1 {
		t.Fatalf("lat = %v", got)
	}
	if got := rows.Rows[0].Values[5].GetStringValue(); got != "Main St" {
		t.Fatalf("name = %q", got)
	}
}

func TestGreptimeWriterBatchesLight(t *testing.T) {
	m := &mockGreptimeClient{}
	w := newGreptimeDBWriter(m)
	w.batchSize = 3
	for i := 0; i < 2; i++ {
		if err := w.WriteLight(testLight); err != nil {
			t.Fatalf("WriteLight: %v", err)
		}
	}
	if len(m.tables) != 0 {
		t.Fatalf("light rows flushed before the batch was full")
	}
	_ = w.WriteLight(testLight)
	if len(m.tables) != 1 || len(m.tables[0].GetRows().Rows) != 3 {
		t.Fatalf("expected one table with 3 rows")
	}

	// a checkpoint flushes pending light rows first
	_ = w.WriteLight(testLight)
	if err := w.WriteCheckpoint(testCheck); err != nil {
		t.Fatalf("WriteCheckpoint: %v", err)
	}
	if len(m.tables) != 3 {
		t.Fatalf("tables written = %d, want 3", len(m.tables))
	}
	if len(m.tables[1].GetRows().Rows) != 1 {
		t.Fatalf("expected flushed light table before checkpoint")
	}
	cp := m.tables[2].GetRows()
	if got := cp.Rows[0].Values[6].GetF32Value(); got != testCheck.AverageLux {
		t.Fatalf("average_lux = %v, want %v", got, testCheck.AverageLux)
	}

	_ = w.WriteLight(testLight)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(m.tables) != 4 {
		t.Fatalf("close should flush pending light rows")
	}
}

func TestGreptimeWriterCheckpointSurvivesLightFailure(t *testing.T) {
	m := &mockGreptimeClient{fail: 1}
	w := newGreptimeDBWriter(m)
	for i := 0; i < 2; i++ {
		_ = w.WriteLight(testLight)
	}

	err := w.WriteCheckpoint(testCheck)
	if !errors.Is(err, errGreptimeDown) {
		t.Fatalf("WriteCheckpoint error = %v, want the light write failure", err)
	}
	if len(m.tables) != 1 {
		t.Fatalf("tables written = %d, want the checkpoint table", len(m.tables))
	}
	cp := m.tables[0].GetRows()
	if len(cp.Schema) != 9 {
		t.Fatalf("written table has %d columns, want checkpoint schema", len(cp.Schema))
	}
	if got := cp.Rows[0].Values[1].GetStringValue(); got != testCheck.CheckpointID {
		t.Fatalf("checkpoint_id = %q, want %q", got, testCheck.CheckpointID)
	}

	// the failed batch is kept and goes out with the next flush
	_ = w.WriteLight(testLight)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(m.tables) != 2 || len(m.tables[1].GetRows().Rows) != 3 {
		t.Fatalf("expected the 2 kept rows plus the new one in a single flush")
	}
}

func TestGreptimeWriterBoundsPendingLight(t *testing.T) {
	m := &mockGreptimeClient{fail: 100}
	w := newGreptimeDBWriter(m)
	w.batchSize = 2
	for i := 0; i < 50; i++ {
		_ = w.WriteLight(testLight)
	}
	w.mu.Lock()
	pending := len(w.lights)
	w.mu.Unlock()
	if limit := w.batchSize * maxPendingBatches; pending > limit {
		t.Fatalf("pending light rows = %d, want at most %d", pending, limit)
	}
}

func TestRedisWriterWithMemoryStore(t *testing.T) {
	st := store.NewMemory()
	w := NewRedisWriter(st, time.Minute)
	writeAll(t, w)

	var loc telemetry.LocationRow
	if err := st.Get(context.Background(), w.Key("d1", telemetry.KindLocation), &loc); err != nil {
		t.Fatalf("get location: %v", err)
	}
	if loc.Name != "Main St" || loc.Kind != telemetry.KindLocation {
		t.Fatalf("unexpected location %+v", loc)
	}
	var cp telemetry.CheckpointRow
	if err := st.Get(context.Background(), w.Key("d1", telemetry.KindCheckpoint), &cp); err != nil {
		t.Fatalf("get checkpoint: %v", err)
	}
	if cp.AverageLux != testCheck.AverageLux {
		t.Fatalf("average = %v", cp.AverageLux)
	}
	if st.Len() != 3 {
		t.Fatalf("keys = %d, want 3", st.Len())
	}
}
