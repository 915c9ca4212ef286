package config

import (
	"fmt"
	"regexp"
	"strings"

	domainconfig "github.com/felixgeelhaar/notify-go/domain/config"
)

// envRef matches ${VAR}, ${VAR:-default}, ${VAR:?message} and $VAR.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// lineKey captures the key a YAML or JSON line assigns.
var lineKey = regexp.MustCompile(`^\s*(?:-\s+)?"?([A-Za-z0-9_.-]+)"?\s*:`)

// unresolvedEnv is a reference that could not be expanded.
type unresolvedEnv struct {
	name    string
	key     string
	line    int
	message string
}

func (u unresolvedEnv) String() string {
	var b strings.Builder
	b.WriteString(u.name)
	fmt.Fprintf(&b, " (line %d", u.line)
	if u.key != "" {
		fmt.Fprintf(&b, ", key %s", u.key)
	}
	b.WriteString(")")
	if u.message != "" {
		b.WriteString(": " + u.message)
	}
	return b.String()
}

// expandEnv substitutes environment references in a configuration
// document. Unset plain references expand to empty text unless strict is
// set. ${VAR:?message} fails whenever VAR is unset or empty, so credential
// keys such as channel.access_token can be declared required.
//
// Every unresolved reference is reported, naming the line and the key it
// was assigned to. Defaults are inserted verbatim.
func expandEnv(doc string, strict bool, lookup func(string) (string, bool)) (string, error) {
	var unresolved []unresolvedEnv

	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "$") {
			continue
		}
		var key string
		if m := lineKey.FindStringSubmatch(line); m != nil {
			key = m[1]
		}

		lines[i] = envRef.ReplaceAllStringFunc(line, func(ref string) string {
			m := envRef.FindStringSubmatch(ref)
			name, op, arg := m[1], m[2], m[3]
			if name == "" {
				name = m[4]
			}

			value, set := lookup(name)
			switch op {
			case ":-":
				if !set || value == "" {
					return arg
				}
			case ":?":
				if !set || value == "" {
					unresolved = append(unresolved, unresolvedEnv{name: name, key: key, line: i + 1, message: strings.TrimSpace(arg)})
					return ref
				}
			default:
				if !set && strict {
					unresolved = append(unresolved, unresolvedEnv{name: name, key: key, line: i + 1})
				}
			}
			return value
		})
	}

	if len(unresolved) > 0 {
		descs := make([]string, len(unresolved))
		for i, u := range unresolved {
			descs[i] = u.String()
		}
		return "", fmt.Errorf("%w: %s", domainconfig.ErrMissingEnvVar, strings.Join(descs, "; "))
	}
	return strings.Join(lines, "\n"), nil
}
