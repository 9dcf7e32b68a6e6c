package checker

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ErrInvalidLink marks a line that contains no recognizable Modrinth project URL.
var ErrInvalidLink = errors.New("no Modrinth project URL in line")

// ModLink is a parsed input line referencing a Modrinth project.
type ModLink struct {
	Name string // display name; the slug when the line had no label
	Slug string
	URL  string
}

var (
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\((https://modrinth\.com/mod/([^)/\s]+))\)`)
	bareURLPattern      = regexp.MustCompile(`https://modrinth\.com/mod/([^/\s)\]]+)`)
)

// ParseModLink extracts a Modrinth project reference from one line of text.
// Accepted forms are a bare project URL or a markdown [label](url) link; bare
// slugs are rejected.
func ParseModLink(line string) (ModLink, error) {
	if m := markdownLinkPattern.FindStringSubmatch(line); m != nil {
		return ModLink{Name: m[1], Slug: m[3], URL: m[2]}, nil
	}
	if m := bareURLPattern.FindStringSubmatch(line); m != nil {
		return ModLink{Name: m[1], Slug: m[1], URL: "https://modrinth.com/mod/" + m[1]}, nil
	}
	return ModLink{}, fmt.Errorf("%w: %q", ErrInvalidLink, strings.TrimSpace(line))
}

// LineError records an input line that failed to parse.
type LineError struct {
	Line int // 1-based line number
	Err  error
}

// ReadModLinks parses an input file into mod links, one reference per line.
// Blank lines are skipped; unparseable lines are collected as LineErrors and
// do not stop the scan. Duplicate slugs keep the first occurrence. A non-nil
// error is returned only when the file itself cannot be read.
func ReadModLinks(path string) ([]ModLink, []LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var (
		links    []ModLink
		lineErrs []LineError
		seen     = make(map[string]bool)
	)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		link, err := ParseModLink(line)
		if err != nil {
			lineErrs = append(lineErrs, LineError{Line: lineNo, Err: err})
			continue
		}
		if seen[link.Slug] {
			continue
		}
		seen[link.Slug] = true
		links = append(links, link)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read input file: %w", err)
	}

	return links, lineErrs, nil
}
