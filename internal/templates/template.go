package templates

import (
	"fmt"
	"sort"
	"strings"
)

// Template is a parsed path or string pattern. Path templates carry one
// on-disk root per platform and join rendered output beneath it; string
// templates render bare text. Construction parses and expands the
// definition once; the result is immutable.
type Template struct {
	name       string
	definition string
	isPath     bool
	rootName   string
	roots      map[string]string // canonical platform → root path
	keys       map[string]Key    // key name → key
	variants   []variant         // most keys first
	ordered    []string          // unique key names, definition order
}

// SingleRoot wraps a root path for the legacy single-root construction
// mode: the root applies to the current host platform only.
func SingleRoot(path string) map[string]string {
	return map[string]string{CurrentPlatform(): path}
}

// NewPathTemplate parses definition into a path template. keys maps the
// placeholder names used in the definition to their Key objects (a key
// may be registered under a placeholder differing from its own name);
// roots maps canonical platform names to that platform's storage root.
func NewPathTemplate(name, definition string, keys map[string]Key, roots map[string]string) (*Template, error) {
	normalized := make(map[string]string, len(roots))
	for platform, root := range roots {
		canonical, err := NormalizePlatform(platform)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}
		normalized[canonical] = root
	}
	if len(normalized) == 0 {
		return nil, fmt.Errorf("%w: path template %q has no roots", ErrDefinition, name)
	}
	return newTemplate(name, definition, keys, normalized, true)
}

// NewStringTemplate parses definition into a rootless string template.
func NewStringTemplate(name, definition string, keys map[string]Key) (*Template, error) {
	return newTemplate(name, definition, keys, nil, false)
}

func newTemplate(name, definition string, keys map[string]Key, roots map[string]string, isPath bool) (*Template, error) {
	clean := strings.TrimSpace(definition)
	if isPath {
		clean = strings.Trim(clean, "/")
	}

	nodes, err := parseDefinition(clean)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", name, err)
	}

	byName := make(map[string]Key)
	nodes, err = resolvePlaceholders(nodes, keys, byName, name)
	if err != nil {
		return nil, err
	}

	t := &Template{
		name:       name,
		definition: definition,
		isPath:     isPath,
		roots:      roots,
		keys:       byName,
		variants:   expandVariants(nodes),
	}
	seen := make(map[string]bool)
	for _, ph := range t.variants[0].placeholders {
		if !seen[ph] {
			seen[ph] = true
			t.ordered = append(t.ordered, ph)
		}
	}
	return t, nil
}

// resolvePlaceholders rewrites every field node from its placeholder
// spelling to the owning key's name, so field mappings are always keyed
// by Key.Name regardless of aliasing.
func resolvePlaceholders(nodes []node, keys map[string]Key, byName map[string]Key, templateName string) ([]node, error) {
	out := make([]node, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case fieldNode:
			key, ok := keys[string(v)]
			if !ok {
				return nil, fmt.Errorf("%w: template %q refers to undefined key %q", ErrDefinition, templateName, string(v))
			}
			if existing, dup := byName[key.Name()]; dup && existing != key {
				return nil, fmt.Errorf("%w: template %q maps two different keys to name %q", ErrDefinition, templateName, key.Name())
			}
			byName[key.Name()] = key
			out = append(out, fieldNode(key.Name()))
		case groupNode:
			resolved, err := resolvePlaceholders([]node(v), keys, byName, templateName)
			if err != nil {
				return nil, err
			}
			out = append(out, groupNode(resolved))
		default:
			out = append(out, n)
		}
	}
	return out, nil
}

// Name returns the registry name, or the empty string for derived
// templates such as parents.
func (t *Template) Name() string { return t.name }

// Definition returns the raw definition string as written.
func (t *Template) Definition() string { return t.definition }

// IsPath reports whether the template renders beneath a storage root.
func (t *Template) IsPath() bool { return t.isPath }

// RootName reports which named root the template binds to, when it was
// loaded from a definitions file.
func (t *Template) RootName() string { return t.rootName }

// Keys returns the template's keys indexed by key name.
func (t *Template) Keys() map[string]Key {
	out := make(map[string]Key, len(t.keys))
	for name, key := range t.keys {
		out[name] = key
	}
	return out
}

// KeyNames lists unique key names in definition order.
func (t *Template) KeyNames() []string {
	return append([]string(nil), t.ordered...)
}

// Roots returns the per-platform root mapping for path templates.
func (t *Template) Roots() map[string]string {
	out := make(map[string]string, len(t.roots))
	for platform, root := range t.roots {
		out[platform] = root
	}
	return out
}

// Root returns the storage root for a platform spelling.
func (t *Template) Root(platform string) (string, error) {
	canonical, err := NormalizePlatform(platform)
	if err != nil {
		return "", err
	}
	root, ok := t.roots[canonical]
	if !ok {
		return "", fmt.Errorf("%w: template %s has no root for platform %q", ErrDefinition, t.label(), canonical)
	}
	return root, nil
}

func (t *Template) String() string { return t.label() }

func (t *Template) label() string {
	if t.name != "" {
		return t.name
	}
	return t.definition
}

// isRoot reports whether this is the degenerate template that resolves
// to the storage root itself.
func (t *Template) isRoot() bool {
	return len(t.variants[0].tokens) == 0
}

// fullDefinition is the bracket-free definition with every optional
// group included.
func (t *Template) fullDefinition() string {
	return t.variants[0].expanded
}

// Parent returns the template formed by dropping the last path segment
// of the full definition, or nil when already at the root. Parents of
// first-level templates are the root template itself.
func (t *Template) Parent() *Template {
	if !t.isPath || t.isRoot() {
		return nil
	}
	full := t.fullDefinition()
	parentDef := ""
	if idx := strings.LastIndex(full, "/"); idx >= 0 {
		parentDef = full[:idx]
	}
	if parentDef == "" {
		parentDef = "/"
	}
	parent, err := NewPathTemplate("", parentDef, t.keys, t.roots)
	if err != nil {
		// The parent definition is a prefix of an already parsed one.
		return nil
	}
	parent.rootName = t.rootName
	return parent
}

// sortedKeyNames is a helper for deterministic error text.
func sortedKeyNames(names map[string]bool) []string {
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
