package dashboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderMissingEnv(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "")
	if err := Render(t.TempDir(), DefaultData(30)); err == nil {
		t.Fatalf("expected error for missing env vars")
	}
}

func TestRenderSuccess(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")

	dir := t.TempDir()
	data := DefaultData(25)
	data.LightTable = "lux_samples"
	if err := Render(dir, data); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "luxtrail-dashboard.json"))
	if err != nil {
		t.Fatalf("read dashboard: %v", err)
	}
	if !json.Valid(b) {
		t.Fatalf("dashboard is not valid JSON:\n%s", b)
	}
	s := string(b)
	for _, want := range []string{"uid1", "lux_samples", data.LocationTable, data.CheckpointTable, `"max": 25`} {
		if !strings.Contains(s, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}
}
