package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chazu/hexstack/pkg/hex"
	"github.com/chazu/hexstack/pkg/piece"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms build script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: allow-disk -> allow_disk
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
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpCommand is what every recording builtin returns, so scripts can print
// or inspect the step they just queued.
type sexpCommand struct {
	cmd Command
}

func (c *sexpCommand) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s)", c.cmd)
}
func (c *sexpCommand) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

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

// toInt extracts an integer. Floats are accepted when they have no
// fractional part.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected integer, got %g", f)
	}
	return int(f), nil
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_stacker) and plain strings ("stacker").
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

// toKind converts a keyword or string to a piece kind.
func toKind(s zygo.Sexp) (piece.Kind, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected piece keyword: %w", err)
	}
	return piece.ParseKind(name)
}

// toTool converts a keyword or string to a tool. :none selects no tool;
// any other unknown name is kept as-is and behaves as a non-placement tool.
func toTool(s zygo.Sexp) (piece.Tool, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return piece.ToolNone, fmt.Errorf("expected tool keyword: %w", err)
	}
	if name == "none" {
		return piece.ToolNone, nil
	}
	if k, err := piece.ParseKind(name); err == nil {
		return k.Tool(), nil
	}
	return piece.Tool(name), nil
}

// toCoord reads q and r from two consecutive values.
func toCoord(q, r zygo.Sexp) (hex.Coord, error) {
	qi, err := toInt(q)
	if err != nil {
		return hex.Coord{}, fmt.Errorf("q: %w", err)
	}
	ri, err := toInt(r)
	if err != nil {
		return hex.Coord{}, fmt.Errorf("r: %w", err)
	}
	return hex.Coord{Q: qi, R: ri}, nil
}

// toPoint reads a screen-space x y pair.
func toPoint(name string, args []zygo.Sexp) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%s requires x and y, got %d arguments", name, len(args))
	}
	x, err := toFloat64(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: x: %w", name, err)
	}
	y, err := toFloat64(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: y: %w", name, err)
	}
	return x, y, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the build script builtins into a zygomys
// environment. Each builtin appends one Command to s.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *Script) {
	emit := func(c Command) (zygo.Sexp, error) {
		s.record(c)
		return &sexpCommand{cmd: c}, nil
	}

	// -----------------------------------------------------------------------
	// (place :stacker 0 0)
	// (place :kind :thin-stacker :q 1 :r -1)
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 3 {
			if _, ok := args[0].(*zygo.SexpStr); ok {
				k, err := toKind(args[0])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("place: kind: %w", err)
				}
				c, err := toCoord(args[1], args[2])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("place: %w", err)
				}
				return emit(Command{Op: OpPlace, Kind: k, Coord: c})
			}
		}

		pa := parseArgs(args)
		kv, ok := pa.kw["kind"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("place requires a piece kind")
		}
		k, err := toKind(kv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: kind: %w", err)
		}
		qv, qok := pa.kw["q"]
		rv, rok := pa.kw["r"]
		if !qok || !rok {
			return zygo.SexpNull, fmt.Errorf("place requires :q and :r")
		}
		c, err := toCoord(qv, rv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		return emit(Command{Op: OpPlace, Kind: k, Coord: c})
	})

	// -----------------------------------------------------------------------
	// (allow 1 -1)
	// -----------------------------------------------------------------------
	env.AddFunction("allow", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("allow requires q and r, got %d arguments", len(args))
		}
		c, err := toCoord(args[0], args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("allow: %w", err)
		}
		return emit(Command{Op: OpAllow, Coord: c})
	})

	// -----------------------------------------------------------------------
	// (allow-disk 2)
	//
	// Registered as "allow_disk"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("allow_disk", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("allow-disk requires a radius")
		}
		r, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("allow-disk: radius: %w", err)
		}
		if r < 0 {
			return zygo.SexpNull, fmt.Errorf("allow-disk: radius must be non-negative, got %d", r)
		}
		return emit(Command{Op: OpAllowDisk, Radius: r})
	})

	// -----------------------------------------------------------------------
	// (tool :stacker) / (tool :none)
	// -----------------------------------------------------------------------
	env.AddFunction("tool", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("tool requires exactly one argument")
		}
		t, err := toTool(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tool: %w", err)
		}
		return emit(Command{Op: OpTool, Tool: t})
	})

	// -----------------------------------------------------------------------
	// (move 320 240) (touch 320 240) (click 320 240)
	// -----------------------------------------------------------------------
	for _, p := range []struct {
		name string
		op   Op
	}{{"move", OpMove}, {"touch", OpTouch}, {"click", OpClick}} {
		env.AddFunction(p.name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			x, y, err := toPoint(p.name, args)
			if err != nil {
				return zygo.SexpNull, err
			}
			return emit(Command{Op: p.op, X: x, Y: y})
		})
	}

	// -----------------------------------------------------------------------
	// (release)
	// -----------------------------------------------------------------------
	env.AddFunction("release", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return emit(Command{Op: OpRelease})
	})

	// -----------------------------------------------------------------------
	// (wait 20) ; milliseconds
	// -----------------------------------------------------------------------
	env.AddFunction("wait", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("wait requires a duration in milliseconds")
		}
		ms, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wait: %w", err)
		}
		if ms < 0 {
			return zygo.SexpNull, fmt.Errorf("wait: duration must be non-negative, got %g", ms)
		}
		return emit(Command{Op: OpWait, Wait: time.Duration(ms * float64(time.Millisecond))})
	})

	// -----------------------------------------------------------------------
	// (clear)
	// -----------------------------------------------------------------------
	env.AddFunction("clear", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return emit(Command{Op: OpClear})
	})
}
