// Package dashboard renders a Grafana dashboard for the GreptimeDB tables.
package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"luxtrail/internal/telemetry"
)

//go:embed templates/*.json.tmpl
var templates embed.FS

// Data is passed to the dashboard templates.
type Data struct {
	LocationTable   string
	LightTable      string
	CheckpointTable string
	RadiusM         float64
}

// DefaultData uses the configured table names.
func DefaultData(radiusM float64) Data {
	return Data{
		LocationTable:   telemetry.LocationRow{}.TableName(),
		LightTable:      telemetry.LightRow{}.TableName(),
		CheckpointTable: telemetry.CheckpointRow{}.TableName(),
		RadiusM:         radiusM,
	}
}

// Render parses the dashboard templates and writes rendered dashboards to
// outDir. Templates read the datasource uid from GREPTIMEDB_DATASOURCE_UID.
func Render(outDir string, data Data) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	names, err := templates.ReadDir("templates")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, entry := range names {
		tplName := entry.Name()
		t, err := template.New(tplName).Funcs(funcMap).ParseFS(templates, "templates/"+tplName)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(tplName, ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, data); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
