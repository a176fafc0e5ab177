package util

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"John.Doe@Gmail.com":    "j…@g….com",
		"a@x.io":                "*@*.io",
		"localhost":             "l…",
		"user@intranet":         "u…@intranet",
		"  me@corp.example.org": "m…@c….example.org",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Fatalf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
