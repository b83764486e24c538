// CUE schema validation code
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var embeddedSchema []byte

// Schema returns the embedded CUE schema source.
func Schema() []byte { return embeddedSchema }

// Validate checks a YAML document against the #Config definition of the CUE
// schema at schemaPath, or of the embedded schema when schemaPath is empty.
func Validate(yamlBytes []byte, schemaPath string) error {
	schemaBytes := embeddedSchema
	if schemaPath != "" {
		b, err := os.ReadFile(schemaPath)
		if err != nil {
			return fmt.Errorf("cannot read CUE schema: %w", err)
		}
		schemaBytes = b
	}

	ctx := cuecontext.New()
	schemaVal := ctx.CompileBytes(schemaBytes)
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", err)
	}
	def := schemaVal.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return fmt.Errorf("CUE schema has no #Config definition")
	}

	if err := cueyaml.Validate(yamlBytes, def); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// ValidateFile validates the YAML file at configPath.
func ValidateFile(configPath, schemaPath string) error {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("cannot read YAML config: %w", err)
	}
	return Validate(b, schemaPath)
}
