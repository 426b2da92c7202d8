package loader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nathoo/ruinscript/types"
)

// Input is a parsed script invocation.
type Input struct {
	ScriptID string
	Args     map[string]types.Value
}

var (
	reScriptID   = regexp.MustCompile(`^!?([_\-a-zA-Z0-9.]+)$`)
	reWithArgs   = regexp.MustCompile(`^!?([_\-a-zA-Z0-9.]+)\((.*)\)$`)
	reArgName    = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*$`)
	reIntLiteral = regexp.MustCompile(`^[-+]?[0-9]+`)
)

// ParseInput parses "id" or "!id(name='text', n=42)". The leading "!" is
// optional. Argument values are single-quoted strings or integers.
func ParseInput(input string) (Input, error) {
	input = strings.TrimSpace(input)
	if m := reScriptID.FindStringSubmatch(input); m != nil {
		return Input{ScriptID: m[1], Args: map[string]types.Value{}}, nil
	}

	m := reWithArgs.FindStringSubmatch(input)
	if m == nil {
		return Input{}, fmt.Errorf("invalid script input %q", input)
	}
	args, err := parseArgs(m[2])
	if err != nil {
		return Input{}, fmt.Errorf("invalid script input %q: %w", input, err)
	}
	return Input{ScriptID: m[1], Args: args}, nil
}

func parseArgs(s string) (map[string]types.Value, error) {
	args := map[string]types.Value{}
	rest := strings.TrimSpace(s)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			return nil, fmt.Errorf("argument %q has no value", rest)
		}
		name := strings.TrimSpace(rest[:eq])
		if !reArgName.MatchString(name) {
			return nil, fmt.Errorf("bad argument name %q", name)
		}
		rest = strings.TrimSpace(rest[eq+1:])

		var v types.Value
		switch {
		case strings.HasPrefix(rest, "'"):
			end := strings.IndexByte(rest[1:], '\'')
			if end < 0 {
				return nil, fmt.Errorf("unterminated string for %s", name)
			}
			v = types.String(rest[1 : end+1])
			rest = rest[end+2:]
		default:
			lit := reIntLiteral.FindString(rest)
			if lit == "" {
				return nil, fmt.Errorf("bad value for %s", name)
			}
			n, err := strconv.ParseInt(lit, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad value for %s: %w", name, err)
			}
			v = types.Int(n)
			rest = rest[len(lit):]
		}
		args[name] = v

		rest = strings.TrimSpace(rest)
		if rest == "" {
			break
		}
		if rest[0] != ',' {
			return nil, fmt.Errorf("expected ',' after %s", name)
		}
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return nil, fmt.Errorf("trailing ',' after %s", name)
		}
	}
	return args, nil
}
