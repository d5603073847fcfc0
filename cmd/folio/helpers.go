package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

// stdoutIsTerminal reports whether output goes to an interactive terminal.
// Piped output keeps tables but drops any terminal-only affordances.
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
