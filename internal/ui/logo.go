package ui

import (
	"os/exec"
	"strings"
)

// createLogo renders the hitcard banner with figlet when it is installed and
// falls back to plain text.
func createLogo() string {
	cmd := exec.Command("figlet", "-f", "small", "hitcard")
	output, err := cmd.Output()
	if err == nil && len(output) > 0 {
		return trimBlankLines(string(output))
	}
	return "HITCARD"
}

func trimBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " "))
	}
	return strings.Join(kept, "\n")
}
