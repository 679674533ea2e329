// Package progress maintains the append-only session progress log.
//
// The log lives at the working directory root so it is visible to both
// the agent and the human reviewing a session. Entries are timestamped
// lines; the file is plain text and safe to edit by hand.
package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileName is the progress log kept at the working directory root.
const FileName = "claude-progress.txt"

const filePerm = 0o600

const timeLayout = "2006-01-02 15:04:05"

// Path returns the progress log location for a working directory.
func Path(workDir string) string {
	return filepath.Join(workDir, FileName)
}

// Exists reports whether the progress log has been created.
func Exists(workDir string) bool {
	_, err := os.Stat(Path(workDir))
	return err == nil
}

// Initialize writes the log header once. It is a no-op when the file
// already exists.
func Initialize(workDir, projectName string) error {
	path := Path(workDir)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	header := fmt.Sprintf("# Progress Log: %s\n# Started: %s\n#\n# Entries are appended automatically and via `phasegate progress add`.\n\n",
		projectName, time.Now().Format(timeLayout))
	return os.WriteFile(path, []byte(header), filePerm)
}

// Append writes one timestamped entry.
func Append(workDir, message string) error {
	f, err := os.OpenFile(Path(workDir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("progress: open log: %w", err)
	}
	_, werr := fmt.Fprintf(f, "[%s] %s\n", time.Now().Format(timeLayout), message)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("progress: append: %w", werr)
	}
	return nil
}

// AppendRaw writes a line without a timestamp, for section markers.
func AppendRaw(workDir, line string) error {
	f, err := os.OpenFile(Path(workDir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("progress: open log: %w", err)
	}
	_, werr := fmt.Fprintln(f, line)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("progress: append: %w", werr)
	}
	return nil
}

// Read returns the whole log. A missing file reads as empty.
func Read(workDir string) (string, error) {
	data, err := os.ReadFile(Path(workDir))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("progress: read log: %w", err)
	}
	return string(data), nil
}

// Recent returns the last n timestamped entries, oldest first.
func Recent(workDir string, n int) ([]string, error) {
	content, err := Read(workDir)
	if err != nil {
		return nil, err
	}
	var entries []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "[") {
			entries = append(entries, line)
		}
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
