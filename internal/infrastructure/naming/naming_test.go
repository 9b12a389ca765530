package naming

import (
	"regexp"
	"strings"
	"testing"
)

var namePattern = regexp.MustCompile(`^[a-z0-9-]+-\d+-[0-9a-f]{12}(\.[a-z0-9]+)?$`)

func TestGenerate_Shape(t *testing.T) {
	name := Generate("Holiday Photo.JPG", []byte("content"))

	if !namePattern.MatchString(name) {
		t.Fatalf("name %q does not match expected shape", name)
	}

	if !strings.HasPrefix(name, "holiday-photo-") {
		t.Errorf("expected slugified prefix, got %q", name)
	}

	if !strings.HasSuffix(name, ".jpg") {
		t.Errorf("expected lowercased extension, got %q", name)
	}
}

func TestGenerate_ContentHash(t *testing.T) {
	a := Generate("img.png", []byte("aaa"))
	b := Generate("img.png", []byte("bbb"))

	hashOf := func(name string) string {
		parts := strings.Split(strings.TrimSuffix(name, ".png"), "-")
		return parts[len(parts)-1]
	}

	if hashOf(a) == hashOf(b) {
		t.Errorf("different content produced the same hash: %q vs %q", a, b)
	}

	c := Generate("img.png", []byte("aaa"))
	if hashOf(a) != hashOf(c) {
		t.Errorf("same content produced different hashes: %q vs %q", a, c)
	}
}

func TestGenerate_StripsDirectories(t *testing.T) {
	name := Generate("../../etc/passwd.png", []byte("x"))

	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		t.Fatalf("name %q leaks path components", name)
	}

	if !strings.HasPrefix(name, "passwd-") {
		t.Errorf("expected base name only, got %q", name)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Holiday Photo", "holiday-photo"},
		{"  weird___name  ", "weird-name"},
		{"UPPER", "upper"},
		{"фото", "file"},
		{"", "file"},
		{"a--b", "a-b"},
		{"2024 report (final)", "2024-report-final"},
	}

	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify_Caps(t *testing.T) {
	got := slugify(strings.Repeat("a", 100))

	if len(got) > maxSlugLen {
		t.Errorf("slug length %d exceeds cap %d", len(got), maxSlugLen)
	}
}
