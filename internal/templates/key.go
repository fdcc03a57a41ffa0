package templates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// KeyType identifies the concrete key flavor. The values match the
// `type` field of the declarative definitions file.
type KeyType string

const (
	KeyTypeString   KeyType = "str"
	KeyTypeInt      KeyType = "int"
	KeyTypeSequence KeyType = "sequence"
)

// Key is a typed, named token usable inside template definitions. Keys
// are immutable after construction and shared by reference across every
// template that mentions them.
type Key interface {
	// Name is the identifier used in field mappings. When a key is
	// aliased, Name reports the alias rather than the placeholder
	// spelled in the definitions file.
	Name() string
	Type() KeyType
	HasDefault() bool
	Default() any
	Choices() []any
	// EntityType and FieldName bind the key to a tracker field. Both are
	// empty unless the definitions file supplies them; only the context
	// resolution engine consumes the binding.
	EntityType() string
	FieldName() string

	// Validate reports whether value passes the key's exclusion, choice,
	// and type-specific constraints. A nil return means valid.
	Validate(value any) error
	// StringFromValue formats value for use inside a rendered template.
	// A nil value selects the key's default; lacking both is an error.
	StringFromValue(value any) (string, error)
	// ValueFromString validates and converts a raw substring carved out
	// of a path back into a typed value.
	ValueFromString(s string) (any, error)
}

// KeySpec carries the declarative attributes shared by all key types.
// Zero values mean "not configured".
type KeySpec struct {
	Default    any
	Choices    []any
	Exclusions []any
	FilterBy   string // StringKey only: "alphanumeric"
	FormatSpec string // IntegerKey/SequenceKey only: zero-pad width, e.g. "03"
	EntityType string
	FieldName  string
}

var foldCaser = cases.Fold()

func foldEqual(a, b string) bool {
	return foldCaser.String(a) == foldCaser.String(b)
}

type keyCommon struct {
	name       string
	keyType    KeyType
	def        any
	hasDefault bool
	choices    []any
	exclusions []any
	entityType string
	fieldName  string
}

func (k *keyCommon) Name() string       { return k.name }
func (k *keyCommon) Type() KeyType      { return k.keyType }
func (k *keyCommon) HasDefault() bool   { return k.hasDefault }
func (k *keyCommon) Default() any       { return k.def }
func (k *keyCommon) Choices() []any     { return append([]any(nil), k.choices...) }
func (k *keyCommon) EntityType() string { return k.entityType }
func (k *keyCommon) FieldName() string  { return k.fieldName }

// checkConstraints applies the exclusion and choice rules shared by all
// key types. Comparison is case-insensitive on the values' plain string
// forms.
func (k *keyCommon) checkConstraints(value any) error {
	text := fmt.Sprint(value)
	for _, excluded := range k.exclusions {
		if foldEqual(text, fmt.Sprint(excluded)) {
			return fmt.Errorf("%w: value %q is excluded for key %q", ErrValidation, text, k.name)
		}
	}
	if len(k.choices) == 0 {
		return nil
	}
	for _, choice := range k.choices {
		if foldEqual(text, fmt.Sprint(choice)) {
			return nil
		}
	}
	return fmt.Errorf("%w: value %q is not one of the choices for key %q: %s",
		ErrValidation, text, k.name, joinChoices(k.choices))
}

func joinChoices(choices []any) string {
	parts := make([]string, 0, len(choices))
	for _, c := range choices {
		parts = append(parts, fmt.Sprint(c))
	}
	return strings.Join(parts, ", ")
}

// checkSeed verifies the construction-time invariant that a key's own
// default and choices pass its validation rules.
func checkSeed(k Key) error {
	if k.HasDefault() {
		if err := k.Validate(k.Default()); err != nil {
			return fmt.Errorf("%w: default for key %q is invalid: %v", ErrDefinition, k.Name(), err)
		}
	}
	for _, choice := range k.Choices() {
		if err := k.Validate(choice); err != nil {
			return fmt.Errorf("%w: choice %v for key %q is invalid: %v", ErrDefinition, choice, k.Name(), err)
		}
	}
	return nil
}

var alphanumericPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// StringKey accepts free-form text, optionally constrained to
// alphanumeric characters.
type StringKey struct {
	keyCommon
	filterBy string
}

// NewStringKey builds a string key. The only supported filter is
// "alphanumeric".
func NewStringKey(name string, spec KeySpec) (*StringKey, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: key name must not be empty", ErrDefinition)
	}
	switch spec.FilterBy {
	case "", "alphanumeric":
	default:
		return nil, fmt.Errorf("%w: key %q has unsupported filter_by %q", ErrDefinition, name, spec.FilterBy)
	}
	key := &StringKey{
		keyCommon: keyCommon{
			name:       name,
			keyType:    KeyTypeString,
			def:        spec.Default,
			hasDefault: spec.Default != nil,
			choices:    append([]any(nil), spec.Choices...),
			exclusions: append([]any(nil), spec.Exclusions...),
			entityType: spec.EntityType,
			fieldName:  spec.FieldName,
		},
		filterBy: spec.FilterBy,
	}
	if err := checkSeed(key); err != nil {
		return nil, err
	}
	return key, nil
}

// FilterBy reports the configured filter constraint, if any.
func (k *StringKey) FilterBy() string { return k.filterBy }

func (k *StringKey) Validate(value any) error {
	if err := k.checkConstraints(value); err != nil {
		return err
	}
	text := fmt.Sprint(value)
	if text == "" {
		return fmt.Errorf("%w: empty value is not valid for key %q", ErrValidation, k.name)
	}
	if k.filterBy == "alphanumeric" && !alphanumericPattern.MatchString(text) {
		return fmt.Errorf("%w: value %q for key %q must be alphanumeric", ErrValidation, text, k.name)
	}
	return nil
}

func (k *StringKey) StringFromValue(value any) (string, error) {
	value, err := resolveValue(k, value)
	if err != nil {
		return "", err
	}
	if err := k.Validate(value); err != nil {
		return "", err
	}
	return fmt.Sprint(value), nil
}

func (k *StringKey) ValueFromString(s string) (any, error) {
	if err := k.Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// IntegerKey accepts integers or digit strings and renders them with an
// optional zero-padded width.
type IntegerKey struct {
	keyCommon
	formatSpec string
	width      int
}

var formatSpecPattern = regexp.MustCompile(`^0?[0-9]+$`)

// NewIntegerKey builds an integer key. FormatSpec follows printf padding
// conventions without the verb: "03" renders as %03d.
func NewIntegerKey(name string, spec KeySpec) (*IntegerKey, error) {
	key, err := newIntegerKey(name, KeyTypeInt, spec)
	if err != nil {
		return nil, err
	}
	if err := checkSeed(key); err != nil {
		return nil, err
	}
	return key, nil
}

func newIntegerKey(name string, keyType KeyType, spec KeySpec) (*IntegerKey, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: key name must not be empty", ErrDefinition)
	}
	width := 1
	if spec.FormatSpec != "" {
		if !formatSpecPattern.MatchString(spec.FormatSpec) {
			return nil, fmt.Errorf("%w: key %q has malformed format_spec %q", ErrDefinition, name, spec.FormatSpec)
		}
		parsed, err := strconv.Atoi(spec.FormatSpec)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("%w: key %q has malformed format_spec %q", ErrDefinition, name, spec.FormatSpec)
		}
		width = parsed
	}
	return &IntegerKey{
		keyCommon: keyCommon{
			name:       name,
			keyType:    keyType,
			def:        spec.Default,
			hasDefault: spec.Default != nil,
			choices:    append([]any(nil), spec.Choices...),
			exclusions: append([]any(nil), spec.Exclusions...),
			entityType: spec.EntityType,
			fieldName:  spec.FieldName,
		},
		formatSpec: spec.FormatSpec,
		width:      width,
	}, nil
}

// FormatSpec reports the configured zero-padding spec, if any.
func (k *IntegerKey) FormatSpec() string { return k.formatSpec }

func (k *IntegerKey) Validate(value any) error {
	if _, err := coerceInt(k.name, value); err != nil {
		return err
	}
	return k.checkConstraints(value)
}

func (k *IntegerKey) StringFromValue(value any) (string, error) {
	value, err := resolveValue(k, value)
	if err != nil {
		return "", err
	}
	if err := k.Validate(value); err != nil {
		return "", err
	}
	n, err := coerceInt(k.name, value)
	if err != nil {
		return "", err
	}
	return k.formatInt(n), nil
}

func (k *IntegerKey) ValueFromString(s string) (any, error) {
	if err := k.Validate(s); err != nil {
		return nil, err
	}
	return coerceInt(k.name, s)
}

func (k *IntegerKey) formatInt(n int) string {
	if k.formatSpec == "" {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%0*d", k.width, n)
}

var digitPattern = regexp.MustCompile(`^[0-9]+$`)

// coerceInt converts supported value shapes to int. Strings must be pure
// digit runs; anything else fails validation.
func coerceInt(keyName string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case string:
		if !digitPattern.MatchString(v) {
			return 0, fmt.Errorf("%w: value %q is not a valid integer for key %q", ErrValidation, v, keyName)
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: value %q is not a valid integer for key %q", ErrValidation, v, keyName)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: value %v (%T) is not a valid integer for key %q", ErrValidation, value, value, keyName)
	}
}

// resolveValue substitutes the key default for a nil value. Lacking both
// is a hard failure.
func resolveValue(k Key, value any) (any, error) {
	if value != nil {
		return value, nil
	}
	if !k.HasDefault() {
		return nil, fmt.Errorf("%w: no value provided and no default available for key %q", ErrMissingFields, k.Name())
	}
	return k.Default(), nil
}
