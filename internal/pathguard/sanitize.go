package pathguard

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxFilenameLength is the default truncation limit for SanitizeFilename,
// matching the common filesystem component limit.
const MaxFilenameLength = 255

// MaxSessionIDLength bounds session identifiers used in filenames.
const MaxSessionIDLength = 128

const unnamedFallback = "unnamed"

var (
	illegalFilenameChars = regexp.MustCompile(`[<>:"|?*]`)
	underscoreRuns       = regexp.MustCompile(`_+`)
)

// SanitizeFilename rewrites an arbitrary string into a name safe to use as
// a single filesystem component. Dangerous characters are stripped, path
// separators and characters illegal on common filesystems become
// underscores, and the result is truncated to maxLength, preferring to
// keep a trailing extension intact. A non-positive maxLength means
// MaxFilenameLength. Never returns an empty string.
func SanitizeFilename(name string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = MaxFilenameLength
	}
	if name == "" {
		return unnamedFallback
	}

	s := name
	for _, c := range []string{"\x00", "\n", "\r"} {
		s = strings.ReplaceAll(s, c, "")
	}
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = illegalFilenameChars.ReplaceAllString(s, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	s = strings.Trim(s, ". \t")

	if len(s) > maxLength {
		if dot := strings.LastIndex(s, "."); dot >= 0 {
			stem, ext := s[:dot], s[dot+1:]
			maxStem := maxLength - len(ext) - 1
			if maxStem > 0 {
				s = stem[:maxStem] + "." + ext
			} else {
				s = s[:maxLength]
			}
		} else {
			s = s[:maxLength]
		}
	}

	if s == "" {
		return unnamedFallback
	}
	return s
}

// ValidateSessionID checks a session identifier is safe to embed in
// filenames and journal keys: non-empty, bounded length, no injection
// characters, no path structure.
func ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session ID is empty")
	}
	if len(id) > MaxSessionIDLength {
		return fmt.Errorf("session ID too long")
	}
	if strings.ContainsAny(id, dangerousChars) {
		return fmt.Errorf("session ID contains dangerous character")
	}
	if strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("session ID contains path characters")
	}
	return nil
}
