package pathguard

import (
	"strings"
	"testing"
)

func FuzzValidate(f *testing.F) {
	seeds := []string{
		"file.txt",
		"../etc/passwd",
		"/abs/path",
		"dir/../../x",
		"a\x00b",
		"line\nbreak",
		"..\\win\\style",
		".",
		"..",
		strings.Repeat("a/", 200) + "deep.txt",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, path string) {
		r := Validate(path, Options{})

		// Must not panic, and must never validate the hard rejects.
		if r.Valid {
			if strings.ContainsAny(path, dangerousChars) {
				t.Errorf("validated path with dangerous character: %q", path)
			}
			for _, pat := range traversalPatterns {
				if pat.MatchString(path) {
					t.Errorf("validated path with traversal pattern: %q", path)
				}
			}
		}
		if !r.Valid && r.Reason == "" {
			t.Errorf("invalid result without reason for %q", path)
		}
	})
}

func FuzzSanitizeFilename(f *testing.F) {
	seeds := []string{
		"normal.txt",
		"con:fig?.txt",
		"a/b\\c",
		"\x00\n\r",
		"....",
		strings.Repeat("x", 1000) + ".json",
		"<>:\"|?*",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, name string) {
		got := SanitizeFilename(name, 255)
		if got == "" {
			t.Error("sanitized filename must never be empty")
		}
		if len(got) > 255 {
			t.Errorf("sanitized filename too long: %d bytes", len(got))
		}
		if strings.ContainsAny(got, "/\\\x00\n\r") {
			t.Errorf("sanitized filename still contains separators or dangerous chars: %q", got)
		}
	})
}
