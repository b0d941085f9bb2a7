package utils

import "testing"

func TestCleanText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  hello  \n world  ", "hello world"},
		{"single", "single"},
		{"", ""},
		{"\t\n  ", ""},
	}
	for _, tc := range cases {
		if got := CleanText(tc.in); got != tc.want {
			t.Errorf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGetStringOrDefault(t *testing.T) {
	if got := GetStringOrDefault("", "fallback"); got != "fallback" {
		t.Errorf("got %q, want fallback", got)
	}
	if got := GetStringOrDefault("value", "fallback"); got != "value" {
		t.Errorf("got %q, want value", got)
	}
}

func TestGenerateRunIDUnique(t *testing.T) {
	a, b := GenerateRunID(), GenerateRunID()
	if a == "" || b == "" {
		t.Fatal("run ids must be non-empty")
	}
	if a == b {
		t.Error("consecutive run ids should differ")
	}
}
