package testsupport

import (
	"os"
	"testing"

	"slate/internal/config"
	"slate/internal/templates"
)

// SampleDefinitions is a small but representative templates file: typed
// keys, an optional group, and both path and string templates.
const SampleDefinitions = `
keys:
  Sequence:
    type: str
  Shot:
    type: str
  Step:
    type: str
  name:
    type: str
    filter_by: alphanumeric
  version:
    type: int
    format_spec: "03"

paths:
  sequence_root: shots/{Sequence}
  shot_root: shots/{Sequence}/{Shot}
  shot_step_root: shots/{Sequence}/{Shot}/{Step}
  shot_work_area: shots/{Sequence}/{Shot}/{Step}/work
  shot_work_file: shots/{Sequence}/{Shot}/{Step}/work/{Shot}[.{name}].v{version}.ma

strings:
  shot_publish_name: "{Shot}.v{version}"
`

// WriteTemplatesFile writes the sample definitions to the config's
// templates path and returns the parsed set bound to the config's roots.
func WriteTemplatesFile(t testing.TB, cfg *config.Config) *templates.Set {
	t.Helper()

	if err := os.WriteFile(cfg.Paths.TemplatesFile, []byte(SampleDefinitions), 0o644); err != nil {
		t.Fatalf("write templates file: %v", err)
	}
	set, err := templates.LoadDefinitions(cfg.Paths.TemplatesFile, cfg.RootPaths())
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	return set
}
