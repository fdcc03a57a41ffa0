package templates_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"slate/internal/templates"
)

func TestFieldsRoundTrip(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustPathTemplate(t, "maya_shot_work",
		"shots/{Sequence}/{Shot}/{Step}/work/{Shot}.{branch}.v{version}.{snapshot}.ma", keys)

	fields := map[string]any{
		"Sequence": "seq_1",
		"Shot":     "s1",
		"Step":     "Anm",
		"branch":   "mmm",
		"version":  3,
		"snapshot": 2,
	}
	path, err := tmpl.ApplyFields(fields, "linux")
	if err != nil {
		t.Fatalf("ApplyFields failed: %v", err)
	}
	got, err := tmpl.Fields(path)
	if err != nil {
		t.Fatalf("Fields(%q) failed: %v", path, err)
	}
	if !reflect.DeepEqual(got, fields) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", got, fields)
	}
}

func TestFieldsAmbiguousUnconstrained(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustStringTemplate(t, "asset_name", "{Asset}_{name}", keys)

	_, err := tmpl.Fields("cat_man_doogle")
	if !errors.Is(err, templates.ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
	want := "Ambiguous values found for key 'Asset' could be any of: cat, cat_man"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not contain %q", err.Error(), want)
	}

	var ambErr *templates.AmbiguityError
	if !errors.As(err, &ambErr) {
		t.Fatalf("expected *AmbiguityError, got %T", err)
	}
	if !reflect.DeepEqual(ambErr.Candidates, []string{"cat", "cat_man"}) {
		t.Errorf("candidates = %v, want [cat cat_man]", ambErr.Candidates)
	}
}

func TestFieldsAmbiguityResolvedByChoices(t *testing.T) {
	defs := map[string]templates.KeyDefinition{
		"Asset": {Type: "str", Choices: []any{"cat_man", "dog_man"}},
		"name":  {Type: "str"},
	}
	keys, err := templates.MakeKeys(defs)
	if err != nil {
		t.Fatalf("MakeKeys failed: %v", err)
	}
	tmpl, err := templates.NewStringTemplate("asset_name", "{Asset}_{name}", keys)
	if err != nil {
		t.Fatalf("NewStringTemplate failed: %v", err)
	}

	got, err := tmpl.Fields("cat_man_doogle")
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	want := map[string]any{"Asset": "cat_man", "name": "doogle"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields = %v, want %v", got, want)
	}
}

func TestFieldsAmbiguousWhenNoSplitValidates(t *testing.T) {
	defs := map[string]templates.KeyDefinition{
		"Asset": {Type: "str", Choices: []any{"aa"}},
		"name":  {Type: "str", Choices: []any{"bb"}},
	}
	keys, err := templates.MakeKeys(defs)
	if err != nil {
		t.Fatalf("MakeKeys failed: %v", err)
	}
	tmpl, err := templates.NewStringTemplate("asset_name", "{Asset}_{name}", keys)
	if err != nil {
		t.Fatalf("NewStringTemplate failed: %v", err)
	}

	_, err = tmpl.Fields("cc_dd_ee")
	if !errors.Is(err, templates.ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
	if !strings.Contains(err.Error(), "Ambiguous values found for key 'Asset' could be any of: cc, cc_dd") {
		t.Errorf("unexpected error text: %q", err.Error())
	}
}

func TestFieldsHintDisambiguates(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustStringTemplate(t, "asset_name", "{Asset}_{name}", keys)

	got, err := tmpl.FieldsWith("cat_man_doogle", templates.FieldOptions{
		Hints: map[string]any{"Asset": "cat_man"},
	})
	if err != nil {
		t.Fatalf("FieldsWith failed: %v", err)
	}
	want := map[string]any{"Asset": "cat_man", "name": "doogle"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FieldsWith = %v, want %v", got, want)
	}
}

func TestMatchesRejectsConflictingKnownValues(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustPathTemplate(t, "shot_step", "shots/{Sequence}/{Shot}", keys)
	path := "/mnt/projects/shots/seq_1/s1"

	if !tmpl.Matches(path, map[string]any{"Shot": "s1"}, nil) {
		t.Error("expected match with agreeing known values")
	}
	if tmpl.Matches(path, map[string]any{"Shot": "s2"}, nil) {
		t.Error("expected mismatch with conflicting known values")
	}
}

func TestFieldsTypeMismatch(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustPathTemplate(t, "version_folder", "shots/{Shot}/v{version}", keys)

	_, err := tmpl.Fields("/mnt/projects/shots/s1/vabc")
	if !errors.Is(err, templates.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestFieldsShapeMismatch(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustPathTemplate(t, "shot_step", "shots/{Sequence}/{Shot}", keys)

	cases := []string{
		"/mnt/projects/assets/seq_1/s1",
		"/mnt/projects/shots/seq_1",
		"/mnt/projects/shots/seq_1/s1/extra",
		"/elsewhere/shots/seq_1/s1",
	}
	for _, path := range cases {
		if _, err := tmpl.Fields(path); !errors.Is(err, templates.ErrNoMatch) {
			t.Errorf("Fields(%q) = %v, want ErrNoMatch", path, err)
		}
	}
}

func TestFieldsSkipKeys(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustPathTemplate(t, "render_frame", "renders/{Shot}/{Shot}.{SEQ}.exr", keys)

	got, err := tmpl.FieldsWith("/mnt/projects/renders/s1/s1.*.exr", templates.FieldOptions{
		SkipKeys: []string{"SEQ"},
	})
	if err != nil {
		t.Fatalf("FieldsWith failed: %v", err)
	}
	if got["SEQ"] != "*" {
		t.Errorf("skipped key = %v, want raw %q", got["SEQ"], "*")
	}
	if got["Shot"] != "s1" {
		t.Errorf("Shot = %v, want s1", got["Shot"])
	}
}

func TestFieldsDuplicateKeyMustAgree(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustPathTemplate(t, "shot_file", "shots/{Shot}/{Shot}.ma", keys)

	got, err := tmpl.Fields("/mnt/projects/shots/s1/s1.ma")
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	if got["Shot"] != "s1" {
		t.Errorf("Shot = %v, want s1", got["Shot"])
	}

	if _, err := tmpl.Fields("/mnt/projects/shots/s1/s2.ma"); !errors.Is(err, templates.ErrValidation) {
		t.Fatalf("expected ErrValidation for conflicting duplicate key, got %v", err)
	}
}

func TestFieldsOptionalGroups(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustPathTemplate(t, "shot_publish", "shots/{Shot}/publish/{name}[.v{version}].ma", keys)

	got, err := tmpl.Fields("/mnt/projects/shots/s1/publish/main.v012.ma")
	if err != nil {
		t.Fatalf("Fields(full) failed: %v", err)
	}
	want := map[string]any{"Shot": "s1", "name": "main", "version": 12}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields(full) = %v, want %v", got, want)
	}

	got, err = tmpl.Fields("/mnt/projects/shots/s1/publish/main.ma")
	if err != nil {
		t.Fatalf("Fields(short) failed: %v", err)
	}
	want = map[string]any{"Shot": "s1", "name": "main"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields(short) = %v, want %v", got, want)
	}
}

func TestFieldsOptionalGroupAmbiguousBoundary(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustStringTemplate(t, "asset_variant", "{Asset}[_{name}]", keys)

	// The full variant is tried first and wins when it matches cleanly.
	got, err := tmpl.Fields("cat_man")
	if err != nil {
		t.Fatalf("Fields(cat_man) failed: %v", err)
	}
	want := map[string]any{"Asset": "cat", "name": "man"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields(cat_man) = %v, want %v", got, want)
	}

	// An ambiguous boundary inside the full variant fails closed; the
	// group-dropped reading Asset="cat_man_doogle" must not be used as a
	// tiebreak.
	_, err = tmpl.Fields("cat_man_doogle")
	if !errors.Is(err, templates.ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
	if !strings.Contains(err.Error(), "Ambiguous values found for key 'Asset' could be any of: cat, cat_man") {
		t.Errorf("unexpected error text: %q", err.Error())
	}

	// Without the group's separator the dropped variant still applies.
	got, err = tmpl.Fields("catman")
	if err != nil {
		t.Fatalf("Fields(catman) failed: %v", err)
	}
	want = map[string]any{"Asset": "catman"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields(catman) = %v, want %v", got, want)
	}
}

func TestFieldsWindowsSeparators(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustPathTemplate(t, "shot_step", "shots/{Sequence}/{Shot}", keys)

	got, err := tmpl.Fields(`P:\projects\shots\seq_1\s1`)
	if err != nil {
		t.Fatalf("Fields(windows path) failed: %v", err)
	}
	if got["Sequence"] != "seq_1" || got["Shot"] != "s1" {
		t.Errorf("Fields = %v", got)
	}
}

func TestFieldsCaseInsensitiveLiterals(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustPathTemplate(t, "shot_step", "shots/{Sequence}/{Shot}", keys)

	got, err := tmpl.Fields("/mnt/projects/SHOTS/seq_1/s1")
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	if got["Shot"] != "s1" {
		t.Errorf("Fields = %v", got)
	}
}
