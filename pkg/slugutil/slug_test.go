package slugutil

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Handmade Vase", "handmade-vase"},
		{"already slug", "handmade-vase", "handmade-vase"},
		{"punctuation collapsed", "Art & Craft!! Deluxe", "art-craft-deluxe"},
		{"surrounding space", "  Rare Finds  ", "rare-finds"},
		{"digits kept", "Edition 2 of 10", "edition-2-of-10"},
		{"consecutive separators", "a --- b", "a-b"},
		{"trailing punctuation", "Wow!", "wow"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
