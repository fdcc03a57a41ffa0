package production_test

import (
	"testing"

	"slate/internal/templates"
	"slate/internal/tracker"
)

var testRoots = map[string]string{
	"linux":   "/mnt/projects",
	"mac":     "/Volumes/projects",
	"windows": `P:\projects`,
}

func testKeys(t *testing.T) map[string]templates.Key {
	t.Helper()

	keys := make(map[string]templates.Key)
	add := func(name string, key templates.Key, err error) {
		if err != nil {
			t.Fatalf("build key %q: %v", name, err)
		}
		keys[name] = key
	}

	sequence, err := templates.NewStringKey("Sequence", templates.KeySpec{})
	add("Sequence", sequence, err)
	shot, err := templates.NewStringKey("Shot", templates.KeySpec{EntityType: "Shot", FieldName: "code"})
	add("Shot", shot, err)
	step, err := templates.NewStringKey("Step", templates.KeySpec{EntityType: "Step", FieldName: "short_name"})
	add("Step", step, err)
	asset, err := templates.NewStringKey("Asset", templates.KeySpec{EntityType: "Asset", FieldName: "code"})
	add("Asset", asset, err)
	assetname, err := templates.NewStringKey("assetname", templates.KeySpec{EntityType: "Asset", FieldName: "code"})
	add("assetname", assetname, err)
	name, err := templates.NewStringKey("name", templates.KeySpec{FilterBy: "alphanumeric"})
	add("name", name, err)
	version, err := templates.NewIntegerKey("version", templates.KeySpec{FormatSpec: "03"})
	add("version", version, err)

	return keys
}

func mustPathTemplate(t *testing.T, name, definition string, keys map[string]templates.Key) *templates.Template {
	t.Helper()
	tmpl, err := templates.NewPathTemplate(name, definition, keys, testRoots)
	if err != nil {
		t.Fatalf("build template %q: %v", name, err)
	}
	return tmpl
}

func ref(entityType string, id int, name string) tracker.EntityRef {
	return tracker.EntityRef{Type: entityType, ID: id, Name: name}
}

func refPtr(entityType string, id int, name string) *tracker.EntityRef {
	r := ref(entityType, id, name)
	return &r
}
