package resolve

import "testing"

func TestParsePolicies(t *testing.T) {
	if p, err := ParseLookupPolicy("Per-Key"); err != nil || p != LookupPerKey {
		t.Errorf("ParseLookupPolicy = %v, %v", p, err)
	}
	if p, err := ParseLookupPolicy(""); err != nil || p != LookupAllOrNothing {
		t.Errorf("empty lookup policy = %v, %v; want default", p, err)
	}
	if p, err := ParseOrderPolicy("input"); err != nil || p != OrderInput {
		t.Errorf("ParseOrderPolicy = %v, %v", p, err)
	}
	if p, err := ParseErrorPolicy("keep-partial"); err != nil || p != KeepPartial {
		t.Errorf("ParseErrorPolicy = %v, %v", p, err)
	}
	if _, err := ParseErrorPolicy("retry"); err == nil {
		t.Error("ParseErrorPolicy(retry) should fail")
	}
}

func TestPolicyText(t *testing.T) {
	var p OrderPolicy
	if err := p.UnmarshalText([]byte("grouped")); err != nil || p != OrderGrouped {
		t.Errorf("UnmarshalText = %v, %v", p, err)
	}
	b, _ := KeepPartial.MarshalText()
	if string(b) != "keep-partial" {
		t.Errorf("MarshalText = %s", b)
	}
	if LookupPerKey.String() != "per-key" {
		t.Errorf("String = %s", LookupPerKey)
	}
}
