package wire

import (
	"fmt"
	"strings"
)

// parsePyStringList parses the flat, string-only subset of Python's
// repr(list) that traffic_cmd-style SUT interceptors send for argv:
// ['a', 'b', "c d"]. Nested structures are not supported; none of the
// wire protocol's fields need them.
func parsePyStringList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("wire: not a python list literal: %q", s)
	}
	inner := s[1 : len(s)-1]
	return splitPyLiterals(inner)
}

// parsePyStringDict parses the flat string->string subset of Python's
// repr(dict): {'A': 'b', 'C': 'd'}.
func parsePyStringDict(s string) (map[string]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("wire: not a python dict literal: %q", s)
	}
	inner := s[1 : len(s)-1]
	items, err := splitPyLiteralPairs(inner)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(items))
	for _, it := range items {
		out[it[0]] = it[1]
	}
	return out, nil
}

// splitPyLiterals splits a comma-separated run of quoted Python string
// literals, respecting quote boundaries so commas inside a literal
// don't split it.
func splitPyLiterals(s string) ([]string, error) {
	var out []string
	i := 0
	n := len(s)
	for i < n {
		for i < n && (s[i] == ' ' || s[i] == ',') {
			i++
		}
		if i >= n {
			break
		}
		lit, next, err := readPyString(s, i)
		if err != nil {
			return nil, err
		}
		out = append(out, lit)
		i = next
	}
	return out, nil
}

// splitPyLiteralPairs splits "'k': 'v', 'k2': 'v2'" into [][2]string.
func splitPyLiteralPairs(s string) ([][2]string, error) {
	var out [][2]string
	i := 0
	n := len(s)
	for i < n {
		for i < n && (s[i] == ' ' || s[i] == ',') {
			i++
		}
		if i >= n {
			break
		}
		key, next, err := readPyString(s, i)
		if err != nil {
			return nil, err
		}
		i = next
		for i < n && (s[i] == ' ' || s[i] == ':') {
			i++
		}
		val, next2, err := readPyString(s, i)
		if err != nil {
			return nil, err
		}
		i = next2
		out = append(out, [2]string{key, val})
	}
	return out, nil
}

// readPyString reads a single-or-double quoted Python string literal
// starting at s[i], returning its decoded value and the index just
// past its closing quote. Backslash-escaped quotes are honored.
func readPyString(s string, i int) (string, int, error) {
	if i >= len(s) {
		return "", i, fmt.Errorf("wire: expected string literal, got end of input")
	}
	quote := s[i]
	if quote != '\'' && quote != '"' {
		return "", i, fmt.Errorf("wire: expected quote at %d in %q", i, s)
	}
	var b strings.Builder
	j := i + 1
	for j < len(s) {
		c := s[j]
		if c == '\\' && j+1 < len(s) {
			b.WriteByte(s[j+1])
			j += 2
			continue
		}
		if c == quote {
			return b.String(), j + 1, nil
		}
		b.WriteByte(c)
		j++
	}
	return "", j, fmt.Errorf("wire: unterminated string literal in %q", s)
}
