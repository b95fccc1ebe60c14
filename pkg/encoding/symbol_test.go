package encoding

import "testing"

func TestToAlnum(t *testing.T) {
	tests := []struct {
		name string
		in   string
		keep []rune
		want string
	}{
		{"plain", "spot00", nil, "spot00"},
		{"spaces", "my scene", nil, "my_scene"},
		{"leading digit", "1room", nil, "_1room"},
		{"accents", "Forêt Hylienne", nil, "Foret_Hylienne"},
		{"symbols", "a.b-c", nil, "a_b_c"},
		{"keep", "a.b-c", []rune{'-'}, "a_b-c"},
		{"empty", "", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToAlnum(tc.in, tc.keep...); got != tc.want {
				t.Errorf("ToAlnum(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIncludeGuard(t *testing.T) {
	if got := IncludeGuard("spot00_scene"); got != "SPOT00_SCENE_H" {
		t.Errorf("IncludeGuard = %q, want SPOT00_SCENE_H", got)
	}
}

func TestDecodeSource(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"utf8", []byte("CS_END(),\n"), "CS_END(),\n"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "CS_END(),\r\n"...), "CS_END(),\n"},
		{"utf16le bom", []byte{0xFF, 0xFE, 'C', 0, 'S', 0}, "CS"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DecodeSource(tc.in); got != tc.want {
				t.Errorf("DecodeSource = %q, want %q", got, tc.want)
			}
		})
	}
}
