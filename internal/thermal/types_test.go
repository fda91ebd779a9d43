package thermal

import (
	"errors"
	"testing"
)

func TestCaseValid(t *testing.T) {
	cases := []struct {
		c    Case
		want bool
	}{
		{CaseUnknown, false},
		{CasePassive, true},
		{CaseForced, true},
		{Case(999), false},
		{Case(-1), false},
	}

	for _, tc := range cases {
		if got := tc.c.Valid(); got != tc.want {
			t.Fatalf("Case(%d).Valid()=%v want %v", tc.c, got, tc.want)
		}
	}
}

func TestCaseString_Table(t *testing.T) {
	cases := []struct {
		name string
		in   Case
		want string
	}{
		{"unknown (zero)", CaseUnknown, "unknown"},
		{"passive", CasePassive, "passive"},
		{"forced", CaseForced, "forced"},
		{"unknown (out of range)", Case(999), "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.String(); got != tc.want {
				t.Fatalf("Case(%d).String()=%q want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseCase_Table(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    Case
		wantErr bool
	}{
		{"passive", "passive", CasePassive, false},
		{"natural alias", "natural", CasePassive, false},
		{"numbered passive", "1", CasePassive, false},
		{"forced", "forced", CaseForced, false},
		{"numbered forced", "2", CaseForced, false},
		{"invalid", "mixed", CaseUnknown, true},
		{"empty", "", CaseUnknown, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCase(tc.in)

			if tc.wantErr {
				if !errors.Is(err, ErrInvalidCase) {
					t.Fatalf("ParseCase(%q) expected ErrInvalidCase, got %v", tc.in, err)
				}
				if got != tc.want {
					t.Fatalf("ParseCase(%q)=%v want %v", tc.in, got, tc.want)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseCase(%q) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseCase(%q)=%v want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCaseTextRoundTrip(t *testing.T) {
	for _, c := range Cases() {
		b, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", c, err)
		}
		var got Case
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if got != c {
			t.Fatalf("round trip %v -> %q -> %v", c, b, got)
		}
	}

	if _, err := CaseUnknown.MarshalText(); err == nil {
		t.Fatal("expected error marshalling unknown case")
	}
}
