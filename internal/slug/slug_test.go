package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"New Zealand", "new-zealand"},
		{"Brasília 2024!", "brasilia-2024"},
		{"  --Crème   brûlée--  ", "creme-brulee"},
		{"Ça va? Très bien", "ca-va-tres-bien"},
		{"already-a-slug", "already-a-slug"},
		{"東京", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Make(tt.in); got != tt.want {
			t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMakeOr(t *testing.T) {
	if got := MakeOr("!!!", "user"); got != "user" {
		t.Errorf("MakeOr fallback = %q", got)
	}
	if got := MakeOr("Jo Doe", "user"); got != "jo-doe" {
		t.Errorf("MakeOr = %q", got)
	}
}
