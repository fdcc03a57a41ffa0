package production

import (
	"fmt"
	"strings"

	"slate/internal/tracker"
)

// NameHook turns a raw tracker field value into the string used for a
// folder or file name. Studios plug in their own policy here; the
// resolver validates the result against the template key afterwards.
type NameHook func(entityType string, entityID int, fieldName string, raw any) (string, error)

// HookForPolicy maps a configured name policy to its hook.
func HookForPolicy(policy string) NameHook {
	if policy == "passthrough" {
		return PassthroughName
	}
	return ScrubName
}

// ScrubName renders the raw value as a string and replaces characters
// that are unsafe in file names with underscores. Linked-entity values
// (maps or entity refs) contribute their display name.
func ScrubName(entityType string, entityID int, fieldName string, raw any) (string, error) {
	value, err := displayString(raw)
	if err != nil {
		return "", fmt.Errorf("%s.%s on %s %d: %w", entityType, fieldName, entityType, entityID, err)
	}
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String(), nil
}

// PassthroughName renders the raw value as a string without altering it.
func PassthroughName(entityType string, entityID int, fieldName string, raw any) (string, error) {
	value, err := displayString(raw)
	if err != nil {
		return "", fmt.Errorf("%s.%s on %s %d: %w", entityType, fieldName, entityType, entityID, err)
	}
	return value, nil
}

func displayString(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", fmt.Errorf("value is nil")
	case string:
		return v, nil
	case tracker.EntityRef:
		return v.Name, nil
	case *tracker.EntityRef:
		if v == nil {
			return "", fmt.Errorf("value is nil")
		}
		return v.Name, nil
	case map[string]any:
		// Linked entities arrive as {type, id, name} records.
		if name, ok := v["name"].(string); ok {
			return name, nil
		}
		return "", fmt.Errorf("linked entity has no name field")
	default:
		return fmt.Sprint(v), nil
	}
}
