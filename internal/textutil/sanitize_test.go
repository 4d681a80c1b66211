package textutil

import "testing"

func TestSourcePrefix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Pack A", "Pack_A"},
		{"  two  spaces", "__two__spaces"},
		{"already_ok", "already_ok"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := SourcePrefix(tc.in); got != tc.want {
			t.Errorf("SourcePrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlashPath(t *testing.T) {
	if got := SlashPath(` data\sub\a.meta `); got != "data/sub/a.meta" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestDirectiveKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ensure My_Pack", "ensure my_pack"},
		{"  ensure cars  ", "ensure cars"},
		{"# Generated by fivepack", ""},
		{"   ", ""},
	}
	for _, tc := range tests {
		if got := DirectiveKey(tc.in); got != tc.want {
			t.Errorf("DirectiveKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
