package terminal

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Reader reads user input line by line
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps in for line reading
func NewReader(in io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(in)}
}

// ReadLine reads one line of input with surrounding whitespace removed. A
// final line without a newline is returned before io.EOF.
func (r *Reader) ReadLine() (string, error) {
	input, err := r.r.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}

	return strings.TrimSpace(input), nil
}

// FindCSVFiles lists CSV files under workingDir whose relative path
// contains partial
func FindCSVFiles(workingDir string, partial string) []string {
	matches := []string{}
	pattern := strings.ToLower(partial)

	_ = filepath.Walk(workingDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		relPath, err := filepath.Rel(workingDir, path)
		if err != nil || relPath == "." {
			return nil
		}

		// Skip hidden files and directories
		if strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if strings.Count(relPath, string(filepath.Separator)) >= 3 {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(info.Name()), ".csv") {
			return nil
		}

		if strings.Contains(strings.ToLower(relPath), pattern) && len(matches) < 100 {
			matches = append(matches, relPath)
		}

		return nil
	})

	return matches
}
