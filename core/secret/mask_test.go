package secret

import "testing"

func TestMask(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "***"},
		{"abcde", "*****"},
		{"abcdef", "a****f"},
		{"AIzaSyExampleExampleKey", "AIz*******************y"},
	}
	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(""); got != "<unset>" {
		t.Fatalf("Describe empty = %q", got)
	}
	if got := Describe("abc"); got != "***" {
		t.Fatalf("Describe = %q", got)
	}
}
