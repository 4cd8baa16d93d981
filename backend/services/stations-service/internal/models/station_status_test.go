package models

import "testing"

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		if err != nil || got != s {
			t.Fatalf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}

	for _, raw := range []string{"", "working", "BUSY", " Working ", "Working\n", "Exploded"} {
		if got, err := ParseStatus(raw); err == nil {
			t.Fatalf("ParseStatus(%q) accepted as %q", raw, got)
		}
	}
}
