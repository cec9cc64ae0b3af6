package readme

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	removeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	addStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	hunkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

// Diff returns the unified diff turning before into after, or nil when they
// are equal.
func Diff(name, before, after string) (*diff.FileDiff, error) {
	if before == after {
		return nil, nil
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name,
		ToFile:   name,
		Context:  3,
	})
	if err != nil {
		return nil, fmt.Errorf("diffing %s: %w", name, err)
	}
	if text == "" {
		return nil, nil
	}
	fd, err := diff.ParseFileDiff([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("parsing diff of %s: %w", name, err)
	}
	return fd, nil
}

// Print writes fd as a unified diff preceded by title. With color set,
// headers, hunk ranges and changed lines are styled.
func Print(w io.Writer, title string, fd *diff.FileDiff, color bool) error {
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return fmt.Errorf("printing diff: %w", err)
	}

	style := func(s lipgloss.Style, line string) string {
		if !color {
			return line
		}
		return s.Render(line)
	}

	stat := fd.Stat()
	summary := fmt.Sprintf("%s (+%d -%d)", title, stat.Added+stat.Changed, stat.Deleted+stat.Changed)
	if _, err := fmt.Fprintln(w, style(titleStyle, summary)); err != nil {
		return err
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			line = style(headerStyle, line)
		case strings.HasPrefix(line, "@@"):
			line = style(hunkStyle, line)
		case strings.HasPrefix(line, "-"):
			line = style(removeStyle, line)
		case strings.HasPrefix(line, "+"):
			line = style(addStyle, line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
