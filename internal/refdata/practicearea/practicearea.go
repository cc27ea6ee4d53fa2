// Package practicearea resolves practice-area names to registry codes from
// a fixed embedded table.
package practicearea

import (
	_ "embed"
	"fmt"
	"strings"

	"matter_intake_backend/platform/apperr"

	"gopkg.in/yaml.v3"
)

//go:embed table.yaml
var tableYAML []byte

var codes map[string]int64

func init() {
	if err := yaml.Unmarshal(tableYAML, &codes); err != nil {
		panic("practicearea: invalid embedded table: " + err.Error())
	}
}

// Resolve maps a practice-area name to its registry id. An exact match is
// preferred; failing that the table's keys are scanned case-insensitively.
// No match is fatal: a matter cannot be created without a valid code.
func Resolve(name string) (int64, error) {
	trimmed := strings.TrimSpace(name)

	if id, ok := codes[trimmed]; ok {
		return id, nil
	}

	for key, id := range codes {
		if strings.EqualFold(key, trimmed) {
			return id, nil
		}
	}

	return 0, apperr.ReferenceResolution(fmt.Sprintf("no practice area code for %q", trimmed))
}

// Known reports whether the name resolves without consuming the error path.
func Known(name string) bool {
	_, err := Resolve(name)
	return err == nil
}
