package resolve

import (
	"fmt"
	"strconv"
	"strings"
)

// Default pin granularities, matching the conventional pin expression
// defaults: the lower bound keeps the full version, the upper bound allows
// anything below the next major version.
const (
	defaultMinPin = "x.x.x.x.x.x"
	defaultMaxPin = "x"
)

// A parsed deferred pin expression.
type pinExpr struct {
	Package string
	MinPin  string
	MaxPin  string
	Exact   bool
}

// Parses the argument list of a "pin_subpackage(...)" or
// "pin_compatible(...)" expression.
func parsePinExpr(kind, text string) (*pinExpr, error) {
	inner := strings.TrimPrefix(text, kind+"(")
	if !strings.HasSuffix(inner, ")") {
		return nil, fmt.Errorf("%w: unterminated %s expression %q", ErrSpec, kind, text)
	}
	inner = strings.TrimSuffix(inner, ")")

	pin := &pinExpr{MinPin: defaultMinPin, MaxPin: defaultMaxPin}

	for i, arg := range strings.Split(inner, ",") {
		arg = strings.Trim(strings.TrimSpace(arg), `'"`)
		if arg == "" {
			continue
		}

		if i == 0 {
			pin.Package = arg
			continue
		}

		key, value, found := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `'"`)
		switch {
		case key == "exact":
			pin.Exact = !found || value == "true" || value == "True"
		case key == "min_pin":
			pin.MinPin = value
		case key == "max_pin":
			pin.MaxPin = value
		default:
			return nil, fmt.Errorf("%w: unknown %s argument %q", ErrSpec, kind, key)
		}
	}

	if pin.Package == "" {
		return nil, fmt.Errorf("%w: %s expression names no package", ErrSpec, kind)
	}
	return pin, nil
}

// Returns the constraint text for a pinned version and build string.
func (p *pinExpr) constraint(version, buildString string) string {
	if p.Exact {
		if buildString != "" {
			return version + " " + buildString
		}
		return "==" + version
	}
	return applyPinExpressions(version, p.MinPin, p.MaxPin)
}

// Evaluates pin expressions against a resolved version.
//
// The min pin truncates the version to as many components as the
// expression names, producing the lower bound. The max pin truncates,
// increments the last kept component and appends the conventional ".0a0"
// pre-release marker, producing the exclusive upper bound. For version
// "1.2.3", min "x.x.x.x.x.x" and max "x" yield ">=1.2.3,<2.0a0".
func applyPinExpressions(version, minPin, maxPin string) string {
	parts := strings.Split(version, ".")

	var bounds []string

	if minPin != "" {
		n := min(len(strings.Split(minPin, ".")), len(parts))
		bounds = append(bounds, ">="+strings.Join(parts[:n], "."))
	}

	if maxPin != "" {
		n := min(len(strings.Split(maxPin, ".")), len(parts))
		upper := make([]string, n)
		copy(upper, parts[:n])
		upper[n-1] = incrementComponent(upper[n-1])
		bounds = append(bounds, "<"+strings.Join(upper, ".")+".0a0")
	}

	return strings.Join(bounds, ",")
}

// Increments the numeric prefix of a version component, dropping any
// trailing alphanumeric qualifier ("3a" becomes "4").
func incrementComponent(component string) string {
	digits := component
	for i, r := range component {
		if r < '0' || r > '9' {
			digits = component[:i]
			break
		}
	}
	if digits == "" {
		return component + "1"
	}
	n, _ := strconv.Atoi(digits)
	return strconv.Itoa(n + 1)
}
