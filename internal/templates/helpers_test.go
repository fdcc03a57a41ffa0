package templates_test

import (
	"testing"

	"slate/internal/templates"
)

func testRoots() map[string]string {
	return map[string]string{
		"linux":   "/mnt/projects",
		"mac":     "/Volumes/projects",
		"windows": `P:\projects`,
	}
}

func testKeys(t *testing.T) map[string]templates.Key {
	t.Helper()
	defs := map[string]templates.KeyDefinition{
		"Sequence": {Type: "str"},
		"Shot":     {Type: "str"},
		"Step":     {Type: "str"},
		"Asset":    {Type: "str"},
		"name":     {Type: "str"},
		"branch":   {Type: "str", FilterBy: "alphanumeric"},
		"version":  {Type: "int", FormatSpec: "03"},
		"snapshot": {Type: "int", FormatSpec: "03"},
		"SEQ":      {Type: "sequence", FormatSpec: "04"},
	}
	keys, err := templates.MakeKeys(defs)
	if err != nil {
		t.Fatalf("MakeKeys failed: %v", err)
	}
	return keys
}

func mustPathTemplate(t *testing.T, name, definition string, keys map[string]templates.Key) *templates.Template {
	t.Helper()
	tmpl, err := templates.NewPathTemplate(name, definition, keys, testRoots())
	if err != nil {
		t.Fatalf("NewPathTemplate(%q) failed: %v", definition, err)
	}
	return tmpl
}

func mustStringTemplate(t *testing.T, name, definition string, keys map[string]templates.Key) *templates.Template {
	t.Helper()
	tmpl, err := templates.NewStringTemplate(name, definition, keys)
	if err != nil {
		t.Fatalf("NewStringTemplate(%q) failed: %v", definition, err)
	}
	return tmpl
}
