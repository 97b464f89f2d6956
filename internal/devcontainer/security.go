package devcontainer

import (
	"strings"
	"unicode"

	"github.com/shinji-kodama/devc/internal/model"
)

// ForbiddenCapability is the capability that would let a process inside
// the container remount the read-only .devcontainer directory writable.
const ForbiddenCapability = "SYS_ADMIN"

// FindPrivilegeEscalation scans the launch settings of doc for anything
// that grants ForbiddenCapability and returns the offending value.
//
// Checked, case-insensitively:
//   - runArgs tokens naming SYS_ADMIN or CAP_SYS_ADMIN, standalone or inside
//     "--cap-add=..." lists
//   - "--cap-add ALL" / "--cap-add=ALL" and "--privileged" in runArgs
//   - capAdd entries naming SYS_ADMIN or ALL
//   - "privileged": true
func FindPrivilegeEscalation(doc Document) (string, bool) {
	args := stringList(doc[FieldRunArgs])
	for _, arg := range args {
		if token, found := scanRunArg(arg); found {
			return token, true
		}
	}

	// runArgs may split "--cap-add" and its value into separate elements.
	for i := 0; i+1 < len(args); i++ {
		if strings.EqualFold(strings.TrimSpace(args[i]), "--cap-add") && grantsAll(args[i+1]) {
			return args[i] + " " + args[i+1], true
		}
	}

	for _, c := range stringList(doc[FieldCapAdd]) {
		if GrantsForbiddenCapability(c) {
			return FieldCapAdd + ": " + c, true
		}
	}

	if privileged, ok := doc[FieldPrivileged].(bool); ok && privileged {
		return FieldPrivileged + ": true", true
	}

	return "", false
}

// CheckPrivilegeEscalation returns a PrivilegeEscalationRisk error for
// path if doc grants the forbidden capability. Mutating operations call
// it before changing anything.
func CheckPrivilegeEscalation(doc Document, path string) error {
	if token, found := FindPrivilegeEscalation(doc); found {
		return model.PrivilegeEscalationError(path, token)
	}
	return nil
}

// scanRunArg checks a single runArgs element.
func scanRunArg(arg string) (string, bool) {
	tokens := strings.FieldsFunc(arg, func(r rune) bool {
		return r == '=' || r == ',' || unicode.IsSpace(r)
	})

	capAdd := false
	for i, tok := range tokens {
		if i == 0 && strings.EqualFold(tok, "--cap-add") {
			capAdd = true
			continue
		}
		if strings.EqualFold(tok, "--privileged") {
			return arg, true
		}
		if isForbiddenCapability(tok) || (capAdd && grantsAll(tok)) {
			return arg, true
		}
	}
	return "", false
}

// GrantsForbiddenCapability reports whether the capability name c, as it
// appears in a cap-add list, grants ForbiddenCapability. "ALL" counts.
func GrantsForbiddenCapability(c string) bool {
	return isForbiddenCapability(c) || grantsAll(c)
}

func isForbiddenCapability(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "CAP_") == ForbiddenCapability
}

func grantsAll(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "ALL")
}

// stringList returns the string elements of a decoded JSON value. A single
// string is treated as a one-element list; anything else yields nil.
func stringList(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
