package templates_test

import (
	"errors"
	"testing"

	"slate/internal/templates"
)

func TestDefinitionErrors(t *testing.T) {
	keys := testKeys(t)
	cases := []struct {
		name       string
		definition string
	}{
		{"unterminated placeholder", "shots/{Shot"},
		{"unmatched close brace", "shots/Shot}"},
		{"unmatched close bracket", "shots/{Shot}]"},
		{"unterminated group", "shots/[{Shot}"},
		{"group without key", "shots/[work]/{Shot}"},
		{"empty placeholder", "shots/{}"},
		{"nested brace", "shots/{Sh{ot}}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := templates.NewPathTemplate("bad", tc.definition, keys, testRoots())
			if !errors.Is(err, templates.ErrDefinition) {
				t.Fatalf("NewPathTemplate(%q) = %v, want ErrDefinition", tc.definition, err)
			}
		})
	}
}

func TestUndefinedKeyRejected(t *testing.T) {
	keys := testKeys(t)
	_, err := templates.NewPathTemplate("bad", "shots/{Mystery}", keys, testRoots())
	if !errors.Is(err, templates.ErrDefinition) {
		t.Fatalf("expected ErrDefinition for undefined key, got %v", err)
	}
}

func TestKeyNamesInOrder(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustPathTemplate(t, "shot_work", "shots/{Sequence}/{Shot}/{Step}/work/{Shot}.v{version}.ma", keys)
	want := []string{"Sequence", "Shot", "Step", "version"}
	got := tmpl.KeyNames()
	if len(got) != len(want) {
		t.Fatalf("KeyNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("KeyNames() = %v, want %v", got, want)
		}
	}
}

func TestParentChain(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustPathTemplate(t, "shot_step", "shots/{Sequence}/{Shot}/{Step}", keys)

	parent := tmpl.Parent()
	if parent == nil {
		t.Fatal("expected parent template")
	}
	fields := map[string]any{"Sequence": "seq_1", "Shot": "s1"}
	got, err := parent.ApplyFields(fields, "linux")
	if err != nil {
		t.Fatalf("parent ApplyFields failed: %v", err)
	}
	if got != "/mnt/projects/shots/seq_1/s1" {
		t.Errorf("parent rendered %q", got)
	}

	// Walk to the root: shots/{Sequence}/{Shot} -> shots/{Sequence} -> shots -> root.
	depth := 0
	for cur := tmpl; cur != nil; cur = cur.Parent() {
		depth++
		if depth > 10 {
			t.Fatal("parent chain does not terminate")
		}
	}
	if depth != 5 {
		t.Errorf("parent chain depth = %d, want 5", depth)
	}
}

func TestParentOfRootIsNil(t *testing.T) {
	keys := testKeys(t)
	root := mustPathTemplate(t, "project_root", "/", keys)
	if root.Parent() != nil {
		t.Error("root template must have no parent")
	}
}

func TestParentIncludesOptionalKeys(t *testing.T) {
	keys := testKeys(t)
	tmpl := mustPathTemplate(t, "shot_opt", "shots/{Shot}[/{Step}]/work", keys)
	parent := tmpl.Parent()
	if parent == nil {
		t.Fatal("expected parent template")
	}
	names := parent.KeyNames()
	if len(names) != 2 || names[0] != "Shot" || names[1] != "Step" {
		t.Errorf("parent keys = %v, want [Shot Step]", names)
	}
}

func TestAliasedKey(t *testing.T) {
	defs := map[string]templates.KeyDefinition{
		"SEQ": {Type: "str", Alias: "Sequence"},
	}
	keys, err := templates.MakeKeys(defs)
	if err != nil {
		t.Fatalf("MakeKeys failed: %v", err)
	}
	tmpl, err := templates.NewPathTemplate("seq", "sequences/{SEQ}", keys, testRoots())
	if err != nil {
		t.Fatalf("NewPathTemplate failed: %v", err)
	}

	// Field mappings use the key's own name, not the placeholder.
	got, err := tmpl.ApplyFields(map[string]any{"Sequence": "seq_1"}, "linux")
	if err != nil {
		t.Fatalf("ApplyFields failed: %v", err)
	}
	if got != "/mnt/projects/sequences/seq_1" {
		t.Errorf("ApplyFields = %q", got)
	}
	fields, err := tmpl.Fields("/mnt/projects/sequences/seq_1")
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	if fields["Sequence"] != "seq_1" {
		t.Errorf("Fields = %v, want Sequence=seq_1", fields)
	}
}

func TestPathTemplateRequiresRoot(t *testing.T) {
	keys := testKeys(t)
	_, err := templates.NewPathTemplate("bad", "shots/{Shot}", keys, nil)
	if !errors.Is(err, templates.ErrDefinition) {
		t.Fatalf("expected ErrDefinition for missing roots, got %v", err)
	}
}
