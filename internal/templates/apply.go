package templates

import (
	"fmt"
	"strings"
)

// ApplyFields renders the template with the given field values. Keys
// inside optional groups whose values are absent or nil drop the whole
// group; required keys without a value fall back to their default or
// fail with ErrMissingFields. platform selects the storage root and
// separator convention for path templates; the empty string means the
// current host.
func (t *Template) ApplyFields(fields map[string]any, platform string) (string, error) {
	canonical, err := NormalizePlatform(platform)
	if err != nil {
		return "", err
	}

	chosen := t.chooseVariant(fields)
	if chosen == nil {
		missing := make(map[string]bool)
		minimal := t.variants[len(t.variants)-1]
		for _, name := range minimal.placeholders {
			if !t.keySatisfied(name, fields) {
				missing[name] = true
			}
		}
		return "", fmt.Errorf("%w: template %s: no value provided for keys %s",
			ErrMissingFields, t.label(), strings.Join(sortedKeyNames(missing), ", "))
	}

	var rendered strings.Builder
	for _, tok := range chosen.tokens {
		if tok.kind == tokenLiteral {
			rendered.WriteString(tok.text)
			continue
		}
		key := t.keys[tok.placeholder]
		var value any
		if v, ok := fields[tok.placeholder]; ok && v != nil {
			value = v
		}
		formatted, err := key.StringFromValue(value)
		if err != nil {
			return "", fmt.Errorf("template %s: %w", t.label(), err)
		}
		rendered.WriteString(formatted)
	}

	if !t.isPath {
		return rendered.String(), nil
	}

	root, ok := t.roots[canonical]
	if !ok {
		return "", fmt.Errorf("%w: template %s has no root for platform %q", ErrDefinition, t.label(), canonical)
	}
	sep := separator(canonical)
	root = strings.TrimRight(root, `/\`)
	rel := rendered.String()
	if rel == "" {
		// Root template: resolves to the storage root itself.
		return root, nil
	}
	if canonical == PlatformWindows {
		rel = strings.ReplaceAll(rel, "/", sep)
	}
	return root + sep + rel, nil
}

// chooseVariant picks the expansion with the most keys whose every key
// is satisfied by fields (directly or via a default).
func (t *Template) chooseVariant(fields map[string]any) *variant {
	for i := range t.variants {
		ok := true
		for _, name := range t.variants[i].placeholders {
			if !t.keySatisfied(name, fields) {
				ok = false
				break
			}
		}
		if ok {
			return &t.variants[i]
		}
	}
	return nil
}

func (t *Template) keySatisfied(name string, fields map[string]any) bool {
	if v, ok := fields[name]; ok && v != nil {
		return true
	}
	return t.keys[name].HasDefault()
}
