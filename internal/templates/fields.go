package templates

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// FieldOptions tunes field extraction.
type FieldOptions struct {
	// SkipKeys names keys whose substrings are carved out but neither
	// validated nor typed; their raw strings are returned as-is. Used
	// when part of a path is a literal wildcard such as an unresolved
	// frame token.
	SkipKeys []string
	// Hints pre-supplies known values for some keys. A split assigning a
	// different value to a hinted key is discarded, which both
	// disambiguates the remaining keys and rejects conflicting paths.
	Hints map[string]any
}

// AmbiguityError reports a string that decomposes into more than one
// plausible field assignment, or into several structural splits none of
// which is type-valid. It satisfies errors.Is(err, ErrAmbiguous).
type AmbiguityError struct {
	Template   string
	Key        string
	Candidates []string // sorted shortest-first
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("template %s: Ambiguous values found for key '%s' could be any of: %s",
		e.Template, e.Key, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguityError) Is(target error) bool { return target == ErrAmbiguous }

// Fields recovers the field mapping that renders to input. The match is
// fail-closed: exactly one type-valid decomposition must exist.
func (t *Template) Fields(input string) (map[string]any, error) {
	return t.FieldsWith(input, FieldOptions{})
}

// FieldsWith is Fields with skip-keys and hint support. Optional-group
// variants are tried most-keys-first and the first clean match wins, so
// an input satisfying the full definition is never reinterpreted by a
// variant that drops a group. An ambiguous match inside a variant is
// final: the group-dropped variants are not consulted as a tiebreak.
func (t *Template) FieldsWith(input string, opts FieldOptions) (map[string]any, error) {
	rel, err := t.stripRoot(input)
	if err != nil {
		return nil, err
	}
	if t.isRoot() {
		if rel == "" {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("%w: %q does not match root template %s", ErrNoMatch, input, t.label())
	}

	skip := make(map[string]bool, len(opts.SkipKeys))
	for _, name := range opts.SkipKeys {
		skip[name] = true
	}

	var best error
	bestRank := 0
	for i := range t.variants {
		fields, verr := t.matchVariant(&t.variants[i], rel, skip, opts.Hints)
		if verr == nil {
			return fields, nil
		}
		// An ambiguous boundary in a variant fails closed. Falling back
		// to a variant that drops the optional key would silently pick
		// one reading of the input over another.
		if errors.Is(verr, ErrAmbiguous) {
			return nil, verr
		}
		if rank := errorRank(verr); rank > bestRank {
			best, bestRank = verr, rank
		}
	}
	if best == nil {
		best = fmt.Errorf("%w: %q does not match template %s", ErrNoMatch, input, t.label())
	}
	return nil, best
}

// Matches reports whether input fits the template. When known field
// values are supplied, any extracted value that conflicts with them
// invalidates the match.
func (t *Template) Matches(input string, known map[string]any, skipKeys []string) bool {
	_, err := t.FieldsWith(input, FieldOptions{SkipKeys: skipKeys, Hints: known})
	return err == nil
}

// errorRank orders match failures so the most informative one is
// reported when every variant fails: ambiguity over validation over
// shape mismatch.
func errorRank(err error) int {
	switch {
	case errors.Is(err, ErrAmbiguous):
		return 3
	case errors.Is(err, ErrValidation):
		return 2
	default:
		return 1
	}
}

// stripRoot removes the storage-root prefix from a concrete path,
// normalizing separators. String templates pass through unchanged.
func (t *Template) stripRoot(input string) (string, error) {
	if !t.isPath {
		return input, nil
	}
	normalized := strings.ReplaceAll(input, `\`, "/")
	for _, platform := range t.platformOrder() {
		root := strings.TrimRight(strings.ReplaceAll(t.roots[platform], `\`, "/"), "/")
		if root == "" || len(normalized) < len(root) {
			continue
		}
		if !strings.EqualFold(normalized[:len(root)], root) {
			continue
		}
		rest := normalized[len(root):]
		if rest == "" {
			return "", nil
		}
		if rest[0] == '/' {
			return strings.Trim(rest, "/"), nil
		}
	}
	return "", fmt.Errorf("%w: path %q is not under any storage root of template %s", ErrNoMatch, input, t.label())
}

// platformOrder lists configured platforms, current host first, for
// deterministic root matching.
func (t *Template) platformOrder() []string {
	order := make([]string, 0, len(t.roots))
	current := CurrentPlatform()
	if _, ok := t.roots[current]; ok {
		order = append(order, current)
	}
	rest := make([]string, 0, len(t.roots))
	for platform := range t.roots {
		if platform != current {
			rest = append(rest, platform)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// capture is one carved-out substring for one key occurrence.
type capture struct {
	name string
	raw  string
}

// matchVariant enumerates every structural split of input against the
// variant's token list, then keeps the splits whose every value is
// type-valid. Exactly one surviving split is a match; zero or several is
// an error.
func (t *Template) matchVariant(v *variant, input string, skip map[string]bool, hints map[string]any) (map[string]any, error) {
	var structural [][]capture
	t.walkTokens(v.tokens, 0, input, 0, nil, &structural)
	if len(structural) == 0 {
		return nil, fmt.Errorf("%w: %q does not match template %s", ErrNoMatch, input, t.label())
	}

	var valid []map[string]any
	var validCaps [][]capture
	var firstEval error
	hintRejected := false
	for _, caps := range structural {
		fields, err := t.evaluateCaptures(caps, skip, hints)
		if err != nil {
			if errors.Is(err, errHintConflict) {
				hintRejected = true
			} else if firstEval == nil {
				firstEval = err
			}
			continue
		}
		duplicate := false
		for _, existing := range valid {
			if reflect.DeepEqual(existing, fields) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			valid = append(valid, fields)
			validCaps = append(validCaps, caps)
		}
	}

	switch len(valid) {
	case 1:
		return valid[0], nil
	case 0:
		if len(structural) > 1 {
			if err := t.ambiguityFrom(v, structural); err != nil {
				return nil, err
			}
		}
		if firstEval != nil {
			return nil, firstEval
		}
		if hintRejected {
			return nil, fmt.Errorf("%w: %q conflicts with the supplied field values for template %s", ErrNoMatch, input, t.label())
		}
		return nil, fmt.Errorf("%w: %q does not match template %s", ErrNoMatch, input, t.label())
	default:
		if err := t.ambiguityFrom(v, validCaps); err != nil {
			return nil, err
		}
		// Distinct splits collapsing to one field mapping cannot reach
		// here; treat as a defensive mismatch.
		return nil, fmt.Errorf("%w: %q does not match template %s", ErrNoMatch, input, t.label())
	}
}

// walkTokens recursively places each token against input. Field values
// must be non-empty and, for path templates, must not span a path
// separator. Literal comparison is case-insensitive.
func (t *Template) walkTokens(tokens []token, ti int, input string, pos int, caps []capture, out *[][]capture) {
	if ti == len(tokens) {
		if pos == len(input) {
			*out = append(*out, append([]capture(nil), caps...))
		}
		return
	}
	tok := tokens[ti]
	if tok.kind == tokenLiteral {
		end := pos + len(tok.text)
		if end <= len(input) && strings.EqualFold(input[pos:end], tok.text) {
			t.walkTokens(tokens, ti+1, input, end, caps, out)
		}
		return
	}
	limit := len(input)
	if t.isPath {
		if idx := strings.IndexByte(input[pos:], '/'); idx >= 0 {
			limit = pos + idx
		}
	}
	for end := pos + 1; end <= limit; end++ {
		t.walkTokens(tokens, ti+1, input, end, append(caps, capture{name: tok.placeholder, raw: input[pos:end]}), out)
	}
}

var errHintConflict = errors.New("hint conflict")

// evaluateCaptures types and validates one structural split. Duplicate
// occurrences of a key must agree; hinted keys must match the supplied
// value.
func (t *Template) evaluateCaptures(caps []capture, skip map[string]bool, hints map[string]any) (map[string]any, error) {
	raws := make(map[string]string, len(caps))
	for _, c := range caps {
		if existing, ok := raws[c.name]; ok {
			if existing != c.raw {
				return nil, fmt.Errorf("%w: key %q appears more than once in template %s with conflicting values %q and %q",
					ErrValidation, c.name, t.label(), existing, c.raw)
			}
			continue
		}
		raws[c.name] = c.raw
	}

	fields := make(map[string]any, len(raws))
	for name, raw := range raws {
		key := t.keys[name]
		var value any
		if skip[name] {
			value = raw
		} else {
			typed, err := key.ValueFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("template %s: %w", t.label(), err)
			}
			value = typed
		}
		if hint, ok := hints[name]; ok && !valuesEqual(value, hint) {
			return nil, errHintConflict
		}
		fields[name] = value
	}
	return fields, nil
}

// valuesEqual compares an extracted value with a caller-supplied one,
// tolerating int/string representation differences.
func valuesEqual(extracted, supplied any) bool {
	if extracted == supplied {
		return true
	}
	en, eok := asInt(extracted)
	sn, sok := asInt(supplied)
	if eok && sok {
		return en == sn
	}
	return fmt.Sprint(extracted) == fmt.Sprint(supplied)
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}

// ambiguityFrom builds the ambiguous-values error for the first key (in
// definition order) carving out two or more distinct substrings across
// the given splits. It returns nil when every key is single-valued.
func (t *Template) ambiguityFrom(v *variant, splits [][]capture) error {
	candidates := make(map[string]map[string]bool)
	for _, caps := range splits {
		for _, c := range caps {
			if candidates[c.name] == nil {
				candidates[c.name] = make(map[string]bool)
			}
			candidates[c.name][c.raw] = true
		}
	}
	seen := make(map[string]bool)
	for _, name := range v.placeholders {
		if seen[name] {
			continue
		}
		seen[name] = true
		if len(candidates[name]) < 2 {
			continue
		}
		list := make([]string, 0, len(candidates[name]))
		for raw := range candidates[name] {
			list = append(list, raw)
		}
		sort.Slice(list, func(i, j int) bool {
			if len(list[i]) != len(list[j]) {
				return len(list[i]) < len(list[j])
			}
			return list[i] < list[j]
		})
		return &AmbiguityError{Template: t.label(), Key: name, Candidates: list}
	}
	return nil
}
