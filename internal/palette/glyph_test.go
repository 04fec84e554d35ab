package palette

import "testing"

func TestDescribe(t *testing.T) {
	info := Describe("🎂")
	if !info.IsEmoji || info.Slug == "" || info.Name == "" {
		t.Fatalf("expected emoji metadata for cake, got %+v", info)
	}
	plain := Describe("q")
	if plain.IsEmoji || plain.Name != "q" {
		t.Fatalf("unexpected metadata for plain glyph: %+v", plain)
	}
}

func TestIsSingleEmoji(t *testing.T) {
	cases := map[string]bool{
		"🐶":   true,
		"🐶🐱":  false,
		"a":   false,
		"🐶 a": false,
		"":    false,
	}
	for in, want := range cases {
		if got := IsSingleEmoji(in); got != want {
			t.Fatalf("IsSingleEmoji(%q) = %v, want %v", in, got, want)
		}
	}
}
