package git

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ChangedFiles runs git diff in dir and returns the paths, relative to dir,
// of files added, copied, modified or renamed since baseRef. Deleted files
// are left out since there is nothing to format.
func ChangedFiles(dir, baseRef string) ([]string, error) {
	cmd := exec.Command("git", "diff", "--name-only", "--relative", "--diff-filter=ACMR", baseRef)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}

	return parseNames(output), nil
}

func parseNames(output []byte) []string {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	var names []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// git C-quotes paths with unusual or non-ASCII characters
		if strings.HasPrefix(line, `"`) {
			if unquoted, err := strconv.Unquote(line); err == nil {
				line = unquoted
			}
		}
		names = append(names, line)
	}
	return names
}
