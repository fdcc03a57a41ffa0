package templates

import (
	"fmt"
	"sort"
	"strings"
)

// SequenceKey extends IntegerKey with a fixed vocabulary of frame-spec
// placeholder strings standing in for an unresolved frame index. Three
// dialects are recognized: printf (%04d), Shake (#### / @@@@), and
// Houdini ($F4). Each placeholder is only valid when its width matches
// the key's configured zero-padding width.
type SequenceKey struct {
	IntegerKey
	frameSpecs map[string]struct{}
}

// NewSequenceKey builds a sequence key. FormatSpec gives the frame
// number width; an empty spec means width 1.
func NewSequenceKey(name string, spec KeySpec) (*SequenceKey, error) {
	base, err := newIntegerKey(name, KeyTypeSequence, spec)
	if err != nil {
		return nil, err
	}
	key := &SequenceKey{
		IntegerKey: *base,
		frameSpecs: frameSpecSet(base.width),
	}
	if err := checkSeed(key); err != nil {
		return nil, err
	}
	return key, nil
}

// frameSpecSet enumerates the exact placeholder vocabulary for a given
// frame width. A bare "#" is valid at every width; the single-character
// printf and Houdini forms only at width 1.
func frameSpecSet(width int) map[string]struct{} {
	specs := make(map[string]struct{})
	specs[fmt.Sprintf("%%0%dd", width)] = struct{}{}
	specs["#"] = struct{}{}
	specs[strings.Repeat("#", width)] = struct{}{}
	specs[strings.Repeat("@", width)] = struct{}{}
	specs[fmt.Sprintf("$F%d", width)] = struct{}{}
	if width == 1 {
		specs["%d"] = struct{}{}
		specs["$F"] = struct{}{}
	}
	return specs
}

// FrameSpecs lists the accepted placeholder strings, sorted.
func (k *SequenceKey) FrameSpecs() []string {
	specs := make([]string, 0, len(k.frameSpecs))
	for spec := range k.frameSpecs {
		specs = append(specs, spec)
	}
	sort.Strings(specs)
	return specs
}

// IsFrameSpec reports whether s is one of the key's placeholder strings.
func (k *SequenceKey) IsFrameSpec(s string) bool {
	_, ok := k.frameSpecs[s]
	return ok
}

func (k *SequenceKey) Validate(value any) error {
	if s, ok := value.(string); ok && k.IsFrameSpec(s) {
		return k.checkConstraints(value)
	}
	if _, err := coerceInt(k.name, value); err != nil {
		return fmt.Errorf("%w: value %v is neither a frame number nor one of the frame specs for key %q (%s)",
			ErrValidation, value, k.name, strings.Join(k.FrameSpecs(), ", "))
	}
	return k.checkConstraints(value)
}

func (k *SequenceKey) StringFromValue(value any) (string, error) {
	value, err := resolveValue(k, value)
	if err != nil {
		return "", err
	}
	if err := k.Validate(value); err != nil {
		return "", err
	}
	if s, ok := value.(string); ok && k.IsFrameSpec(s) {
		return s, nil
	}
	n, err := coerceInt(k.name, value)
	if err != nil {
		return "", err
	}
	return k.formatInt(n), nil
}

func (k *SequenceKey) ValueFromString(s string) (any, error) {
	if err := k.Validate(s); err != nil {
		return nil, err
	}
	if k.IsFrameSpec(s) {
		return s, nil
	}
	return coerceInt(k.name, s)
}
