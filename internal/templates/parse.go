package templates

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenField
)

// token is one element of a fully expanded definition variant: either a
// run of literal text or a single key placeholder.
type token struct {
	kind        tokenKind
	text        string // literal text, tokenLiteral only
	placeholder string // placeholder name, tokenField only
}

// node is one element of the parsed definition tree before optional
// groups are expanded: literalNode, fieldNode, or groupNode.
type node any

type literalNode string

type fieldNode string

// groupNode is a bracketed optional group. Groups nest.
type groupNode []node

var placeholderPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// parseDefinition splits a raw definition string into its node tree.
// Braces delimit placeholders and square brackets delimit optional
// groups; neither may be left unbalanced, and every optional group must
// contain at least one placeholder.
func parseDefinition(def string) ([]node, error) {
	nodes, rest, err := parseNodes(def, def, false)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, fmt.Errorf("%w: unmatched ']' in definition %q", ErrDefinition, def)
	}
	return nodes, nil
}

// parseNodes consumes input until the end of the string, or until the
// ']' closing the current group when inGroup is set. It returns the
// parsed nodes together with the unconsumed remainder.
func parseNodes(input, def string, inGroup bool) ([]node, string, error) {
	var nodes []node
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			nodes = append(nodes, literalNode(literal.String()))
			literal.Reset()
		}
	}

	for len(input) > 0 {
		switch input[0] {
		case '{':
			end := strings.IndexByte(input, '}')
			if end < 0 {
				return nil, "", fmt.Errorf("%w: unterminated placeholder in definition %q", ErrDefinition, def)
			}
			name := input[1:end]
			if !placeholderPattern.MatchString(name) {
				return nil, "", fmt.Errorf("%w: invalid placeholder name %q in definition %q", ErrDefinition, name, def)
			}
			flush()
			nodes = append(nodes, fieldNode(name))
			input = input[end+1:]
		case '}':
			return nil, "", fmt.Errorf("%w: unmatched '}' in definition %q", ErrDefinition, def)
		case '[':
			flush()
			group, rest, err := parseNodes(input[1:], def, true)
			if err != nil {
				return nil, "", err
			}
			if !containsField(group) {
				return nil, "", fmt.Errorf("%w: optional group without a key in definition %q", ErrDefinition, def)
			}
			nodes = append(nodes, groupNode(group))
			input = rest
		case ']':
			if !inGroup {
				// Surfaced by the caller as an unmatched bracket.
				flush()
				return nodes, input, nil
			}
			flush()
			return nodes, input[1:], nil
		default:
			literal.WriteByte(input[0])
			input = input[1:]
		}
	}
	if inGroup {
		return nil, "", fmt.Errorf("%w: unterminated optional group in definition %q", ErrDefinition, def)
	}
	flush()
	return nodes, "", nil
}

func containsField(nodes []node) bool {
	for _, n := range nodes {
		switch v := n.(type) {
		case fieldNode:
			return true
		case groupNode:
			if containsField([]node(v)) {
				return true
			}
		}
	}
	return false
}

// variant is one concrete expansion of a definition: a fixed choice of
// which optional groups are present, flattened to alternating literal
// and field tokens.
type variant struct {
	tokens       []token
	placeholders []string // definition order; repeats preserved
	expanded     string   // bracket-free definition of this variant
}

// expandVariants enumerates every way of including or dropping each
// optional group, sorted so the variant carrying the most keys comes
// first. Dropping a group always removes it wholly; no partial renders
// exist.
func expandVariants(nodes []node) []variant {
	tokenSets := expandTokens(nodes)
	variants := make([]variant, 0, len(tokenSets))
	for _, tokens := range tokenSets {
		tokens = mergeLiterals(tokens)
		v := variant{tokens: tokens}
		var expanded strings.Builder
		for _, tok := range tokens {
			if tok.kind == tokenField {
				v.placeholders = append(v.placeholders, tok.placeholder)
				expanded.WriteString("{" + tok.placeholder + "}")
			} else {
				expanded.WriteString(tok.text)
			}
		}
		v.expanded = expanded.String()
		variants = append(variants, v)
	}
	sort.SliceStable(variants, func(i, j int) bool {
		return len(variants[i].placeholders) > len(variants[j].placeholders)
	})
	return variants
}

func expandTokens(nodes []node) [][]token {
	results := [][]token{{}}
	for _, n := range nodes {
		switch v := n.(type) {
		case literalNode:
			for i := range results {
				results[i] = append(results[i], token{kind: tokenLiteral, text: string(v)})
			}
		case fieldNode:
			for i := range results {
				results[i] = append(results[i], token{kind: tokenField, placeholder: string(v)})
			}
		case groupNode:
			sub := expandTokens([]node(v))
			next := make([][]token, 0, len(results)*(len(sub)+1))
			for _, base := range results {
				for _, s := range sub {
					merged := make([]token, 0, len(base)+len(s))
					merged = append(merged, base...)
					merged = append(merged, s...)
					next = append(next, merged)
				}
				next = append(next, append([]token(nil), base...))
			}
			results = next
		}
	}
	return results
}

func mergeLiterals(tokens []token) []token {
	merged := make([]token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.kind == tokenLiteral && len(merged) > 0 && merged[len(merged)-1].kind == tokenLiteral {
			merged[len(merged)-1].text += tok.text
			continue
		}
		merged = append(merged, tok)
	}
	return merged
}
