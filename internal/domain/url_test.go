package domain

import "testing"

func TestNormalizeImageURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://example.com/cat.jpg", "https://example.com/cat.jpg", true},
		{"  HTTPS://example.com/cat.jpg#frag ", "https://example.com/cat.jpg", true},
		{"https://www.google.com/imgres?imgurl=https%3A%2F%2Fimages.example.org%2Fdog.png&imgrefurl=x", "https://images.example.org/dog.png", true},
		{"https://www.bing.com/images?IMGURL=https://cdn.example.org/a.gif", "https://cdn.example.org/a.gif", true},
		{"https://example.com/page?imgurl=not-absolute", "https://example.com/page?imgurl=not-absolute", true},
		{"file:///tmp/bg.png", "file:///tmp/bg.png", true},
		{"ftp://example.com/x.png", "", false},
		{"just some words", "", false},
		{"https://", "", false},
		{"::::", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeImageURL(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("NormalizeImageURL(%q) = %q,%v want %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestSetBackgroundNormalizesOrClears(t *testing.T) {
	var a EmojiArt
	a.SetBackground("https://www.google.com/imgres?imgurl=https://img.example.com/a.png")
	if a.BackgroundURL != "https://img.example.com/a.png" {
		t.Fatalf("background not unwrapped: %q", a.BackgroundURL)
	}
	a.SetBackground("")
	if a.BackgroundURL != "" {
		t.Fatalf("background not cleared: %q", a.BackgroundURL)
	}
	a.SetBackground("https://example.com/b.png")
	a.SetBackground("not a url")
	if a.BackgroundURL != "" {
		t.Fatalf("unusable url should clear background, got %q", a.BackgroundURL)
	}
}
