package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/detgeo/pkg/command"
	"github.com/chazu/detgeo/pkg/units"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms macro source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: max-width -> max_width
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keywords
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toRaw renders the value arguments of a cmd call as the raw text a
// command line would carry: "10 cm", "4", or a string passed through.
func toRaw(args []zygo.Sexp) (string, error) {
	parts := make([]string, 0, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case *zygo.SexpInt:
			parts = append(parts, strconv.FormatInt(v.Val, 10))
		case *zygo.SexpFloat:
			parts = append(parts, strconv.FormatFloat(v.Val, 'g', -1, 64))
		case *zygo.SexpStr:
			s, _ := toKeywordString(v)
			parts = append(parts, s)
		default:
			return "", fmt.Errorf("argument %d: expected number, unit or string, got %T (%s)", i+1, a, a.SexpString(nil))
		}
	}
	return strings.Join(parts, " "), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// access runs fn against the command directory on behalf of one run.
type access func(fn func(dir *command.Directory) error) error

// registerBuiltins installs the macro builtins into a zygomys environment.
// Every builtin reaches the directory through do.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, do access) {

	// -----------------------------------------------------------------------
	// (cmd "/det/calo/width" 20 :cm)
	// (cmd "/det/calo/width" "20 cm")
	// (cmd "/det/calo/layers" 12)
	// -----------------------------------------------------------------------
	env.AddFunction("cmd", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("cmd requires a command path")
		}
		path, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cmd: path: %w", err)
		}
		raw, err := toRaw(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cmd %s: %w", path, err)
		}
		err = do(func(dir *command.Directory) error { return dir.Execute(path, raw) })
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cmd: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (ls) or (ls "/det/calo") -> list of command paths
	// -----------------------------------------------------------------------
	env.AddFunction("ls", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		prefix := ""
		if len(args) > 0 {
			p, err := toString(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("ls: prefix: %w", err)
			}
			prefix = p
		}
		var paths []string
		if err := do(func(dir *command.Directory) error {
			paths = dir.List(prefix)
			return nil
		}); err != nil {
			return zygo.SexpNull, fmt.Errorf("ls: %w", err)
		}
		items := make([]zygo.Sexp, 0, len(paths))
		for _, p := range paths {
			items = append(items, &zygo.SexpStr{S: p})
		}
		return zygo.MakeList(items), nil
	})

	// -----------------------------------------------------------------------
	// (unit-value 7 :cm) -> 70.0, the value in internal units (mm)
	// -----------------------------------------------------------------------
	env.AddFunction("unit_value", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("unit-value requires a number and a unit, got %d arguments", len(args))
		}
		v, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("unit-value: %w", err)
		}
		u, err := toKeywordString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("unit-value: unit: %w", err)
		}
		mm, err := units.Value(units.Length, v, u)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("unit-value: %w", err)
		}
		return &zygo.SexpFloat{Val: mm}, nil
	})
}
