package resolve

import (
	"fmt"
	"strings"
)

var (
	lookupNames = map[LookupPolicy]string{LookupAllOrNothing: "all-or-nothing", LookupPerKey: "per-key"}
	orderNames  = map[OrderPolicy]string{OrderGrouped: "grouped", OrderInput: "input"}
	errorNames  = map[ErrorPolicy]string{FailFast: "fail", KeepPartial: "keep-partial"}
)

func parsePolicy[P comparable](kind, s string, names map[P]string) (P, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	var zero P
	if s == "" {
		return zero, nil
	}
	for p, name := range names {
		if name == s {
			return p, nil
		}
	}
	return zero, fmt.Errorf("unknown %s policy %q", kind, s)
}

// ParseLookupPolicy parses "all-or-nothing" or "per-key".
func ParseLookupPolicy(s string) (LookupPolicy, error) { return parsePolicy("lookup", s, lookupNames) }

// ParseOrderPolicy parses "grouped" or "input".
func ParseOrderPolicy(s string) (OrderPolicy, error) { return parsePolicy("order", s, orderNames) }

// ParseErrorPolicy parses "fail" or "keep-partial".
func ParseErrorPolicy(s string) (ErrorPolicy, error) { return parsePolicy("error", s, errorNames) }

func (p LookupPolicy) String() string { return lookupNames[p] }
func (p OrderPolicy) String() string  { return orderNames[p] }
func (p ErrorPolicy) String() string  { return errorNames[p] }

func (p LookupPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (p OrderPolicy) MarshalText() ([]byte, error)  { return []byte(p.String()), nil }
func (p ErrorPolicy) MarshalText() ([]byte, error)  { return []byte(p.String()), nil }

func (p *LookupPolicy) UnmarshalText(text []byte) (err error) {
	*p, err = ParseLookupPolicy(string(text))
	return err
}

func (p *OrderPolicy) UnmarshalText(text []byte) (err error) {
	*p, err = ParseOrderPolicy(string(text))
	return err
}

func (p *ErrorPolicy) UnmarshalText(text []byte) (err error) {
	*p, err = ParseErrorPolicy(string(text))
	return err
}
