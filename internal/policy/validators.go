package policy

import (
	"strconv"
	"strings"
	"unicode"
)

// Validator accepts or rejects a candidate value for one setting during
// restore. Validation is fail-closed: a key with no registered validator is
// never restored.
type Validator func(value string) bool

// Named validators a policy file can reference directly.
var validators = map[string]Validator{
	"any":     func(string) bool { return true },
	"boolean": oneOf("0", "1"),
	"integer": func(v string) bool {
		_, err := strconv.Atoi(v)
		return err == nil
	},
	"non_negative_integer": func(v string) bool {
		n, err := strconv.Atoi(v)
		return err == nil && n >= 0
	},
	"positive_integer": func(v string) bool {
		n, err := strconv.Atoi(v)
		return err == nil && n > 0
	},
	"percentage": intRange(0, 100),
	"component_name": func(v string) bool {
		slash := strings.IndexByte(v, '/')
		return slash > 0 && slash < len(v)-1
	},
	"locale": func(v string) bool {
		if v == "" {
			return false
		}
		for _, r := range v {
			if !unicode.IsLetter(r) && r != '-' && r != '_' {
				return false
			}
		}
		return true
	},
}

// ResolveValidator looks up a validator by its policy-file name. Two
// parameterized forms are supported: "one_of:a|b|c" and "int_range:min,max".
func ResolveValidator(name string) (Validator, bool) {
	if v, ok := validators[name]; ok {
		return v, true
	}

	if args, ok := strings.CutPrefix(name, "one_of:"); ok {
		return oneOf(strings.Split(args, "|")...), true
	}

	if args, ok := strings.CutPrefix(name, "int_range:"); ok {
		bounds := strings.SplitN(args, ",", 2)
		if len(bounds) != 2 {
			return nil, false
		}
		min, err1 := strconv.Atoi(strings.TrimSpace(bounds[0]))
		max, err2 := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err1 != nil || err2 != nil || min > max {
			return nil, false
		}
		return intRange(min, max), true
	}

	return nil, false
}

func oneOf(allowed ...string) Validator {
	return func(v string) bool {
		for _, a := range allowed {
			if v == a {
				return true
			}
		}
		return false
	}
}

func intRange(min, max int) Validator {
	return func(v string) bool {
		n, err := strconv.Atoi(v)
		return err == nil && n >= min && n <= max
	}
}
