package checker

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// ModResult is one top-level mod link's final state in the report.
type ModResult struct {
	Name string
	Slug string
	// Outcome is nil when the check itself failed; Err carries the cause.
	Outcome      *Outcome
	Err          error
	DownloadNote string
}

// Attempt is one entry in the chronological resolution log.
type Attempt struct {
	Name   string
	Detail string
}

// Report accumulates per-mod and per-dependency outcomes over a run and
// renders the markdown summary exactly once, after all mods are processed.
type Report struct {
	GeneratedAt     time.Time
	OriginalVersion string
	OriginalLoader  Loader
	FinalVersion    string
	FinalLoader     Loader

	Attempts         []Attempt
	Mods             []ModResult
	Dependencies     []DependencyOutcome
	ParseErrors      []LineError
	SuggestedVersion string
}

// NewReport creates an empty report for the given run parameters. The final
// version/loader start equal to the originals; the run is non-interactive, so
// they only document what was requested.
func NewReport(gameVersion string, loader Loader) *Report {
	return &Report{
		GeneratedAt:     time.Now(),
		OriginalVersion: gameVersion,
		OriginalLoader:  loader,
		FinalVersion:    gameVersion,
		FinalLoader:     loader,
	}
}

// AddMod appends a top-level mod result and its log entry.
func (r *Report) AddMod(result ModResult) {
	r.Mods = append(r.Mods, result)
	r.Attempts = append(r.Attempts, Attempt{Name: result.Name, Detail: r.describe(result)})
}

// AddDependency appends a dependency outcome and its log entry.
func (r *Report) AddDependency(dep DependencyOutcome) {
	r.Dependencies = append(r.Dependencies, dep)
	detail := dep.DependencyType + " dependency"
	switch {
	case dep.Err != nil:
		detail += ", check failed: " + dep.Err.Error()
	case dep.Outcome != nil:
		detail += ", " + dep.Outcome.Kind.String()
	}
	r.Attempts = append(r.Attempts, Attempt{Name: dep.Title, Detail: detail})
}

// AddParseErrors records unparseable input lines.
func (r *Report) AddParseErrors(errs []LineError) {
	r.ParseErrors = append(r.ParseErrors, errs...)
}

func (r *Report) describe(result ModResult) string {
	if result.Err != nil {
		return "check failed: " + result.Err.Error()
	}
	o := result.Outcome
	switch o.Kind {
	case Compatible:
		return fmt.Sprintf("compatible (%s)", o.Version.VersionNumber)
	case CompatibleViaVersionChange:
		return fmt.Sprintf("compatible with Minecraft %s (%s)", o.SuggestedGameVersion, o.Version.VersionNumber)
	case CompatibleViaLoaderChange:
		return fmt.Sprintf("compatible under %s (%s)", o.Loader, o.Version.VersionNumber)
	case Incompatible:
		return "incompatible"
	default:
		return o.Kind.String()
	}
}

// Render produces the markdown report.
func (r *Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Mod Compatibility Report\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "## Configuration\n")
	fmt.Fprintf(&b, "- Original Minecraft Version: %s\n", r.OriginalVersion)
	if r.FinalVersion != r.OriginalVersion {
		fmt.Fprintf(&b, "- Final Minecraft Version: %s (changed due to compatibility)\n", r.FinalVersion)
	}
	fmt.Fprintf(&b, "- Original Mod Loader: %s\n", r.OriginalLoader)
	if r.FinalLoader != r.OriginalLoader {
		fmt.Fprintf(&b, "- Final Mod Loader: %s (changed due to compatibility)\n", r.FinalLoader)
	}
	b.WriteString("\n")

	if len(r.ParseErrors) > 0 {
		fmt.Fprintf(&b, "## Input Errors\n")
		for _, pe := range r.ParseErrors {
			fmt.Fprintf(&b, "- line %d: %s\n", pe.Line, pe.Err)
		}
		b.WriteString("\n")
	}

	if len(r.Attempts) > 0 {
		fmt.Fprintf(&b, "## Resolution Log\n")
		for _, a := range r.Attempts {
			fmt.Fprintf(&b, "- %s: %s\n", a.Name, a.Detail)
		}
		b.WriteString("\n")
	}

	r.renderCompatible(&b)
	r.renderFallbacks(&b)
	r.renderDependencies(&b)
	r.renderIncompatible(&b)
	r.renderFailures(&b)

	if r.SuggestedVersion != "" {
		fmt.Fprintf(&b, "## Suggestion\n")
		fmt.Fprintf(&b, "Minecraft %s is published by every checked mod and may be a workable common target.\n\n", r.SuggestedVersion)
	}

	return b.String()
}

func (r *Report) renderCompatible(b *strings.Builder) {
	var lines []string
	for _, m := range r.Mods {
		if m.Err != nil || m.Outcome.Kind != Compatible {
			continue
		}
		line := fmt.Sprintf("- %s: %s", m.Name, m.Outcome.Version.VersionNumber)
		if file := m.Outcome.Version.PrimaryFile(); file != nil {
			line += fmt.Sprintf(" (%s)", file.Filename)
		}
		if m.DownloadNote != "" {
			line += " — " + m.DownloadNote
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "## Compatible Mods\n%s\n\n", strings.Join(lines, "\n"))
}

func (r *Report) renderFallbacks(b *strings.Builder) {
	var lines []string
	for _, m := range r.Mods {
		if m.Err != nil {
			continue
		}
		switch m.Outcome.Kind {
		case CompatibleViaVersionChange:
			lines = append(lines, fmt.Sprintf("- %s: no build for Minecraft %s, but %s supports %s",
				m.Name, r.OriginalVersion, m.Outcome.Version.VersionNumber, m.Outcome.SuggestedGameVersion))
		case CompatibleViaLoaderChange:
			lines = append(lines, fmt.Sprintf("- %s: no %s build, but %s supports %s on %s",
				m.Name, r.OriginalLoader, m.Outcome.Version.VersionNumber, r.OriginalVersion, m.Outcome.Loader))
		}
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "## Fallback Proposals\n%s\n\n", strings.Join(lines, "\n"))
}

func (r *Report) renderDependencies(b *strings.Builder) {
	if len(r.Dependencies) == 0 {
		return
	}
	fmt.Fprintf(b, "## Dependencies\n")
	for _, dep := range r.Dependencies {
		line := fmt.Sprintf("- %s (%s)", dep.Title, dep.DependencyType)
		switch {
		case dep.Err != nil:
			line += ": check failed"
		case dep.Outcome != nil && dep.Outcome.Kind == Compatible:
			line += ": " + dep.Outcome.Version.VersionNumber
		case dep.Outcome != nil:
			line += ": " + dep.Outcome.Kind.String()
		}
		fmt.Fprintf(b, "%s\n", line)
	}
	b.WriteString("\n")
}

func (r *Report) renderIncompatible(b *strings.Builder) {
	var entries []ModResult
	for _, m := range r.Mods {
		if m.Err == nil && m.Outcome.Kind == Incompatible {
			entries = append(entries, m)
		}
	}
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(b, "## Incompatible Mods\n")
	for _, m := range entries {
		fmt.Fprintf(b, "- %s\n", m.Name)
		for _, line := range formatAvailablePairs(m.Outcome.Available) {
			fmt.Fprintf(b, "  - %s\n", line)
		}
	}
	b.WriteString("\n")
}

func (r *Report) renderFailures(b *strings.Builder) {
	var lines []string
	for _, m := range r.Mods {
		if m.Err != nil {
			lines = append(lines, fmt.Sprintf("- %s: %s", m.Name, m.Err))
		}
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "## Failed Checks\n%s\n\n", strings.Join(lines, "\n"))
}

// formatAvailablePairs groups a project's published pairs by loader, versions
// newest first.
func formatAvailablePairs(pairs []AvailablePair) []string {
	byLoader := make(map[string][]string)
	var loaders []string
	for _, p := range pairs {
		if _, ok := byLoader[p.Loader]; !ok {
			loaders = append(loaders, p.Loader)
		}
		byLoader[p.Loader] = append(byLoader[p.Loader], p.GameVersion)
	}
	sort.Strings(loaders)

	var lines []string
	for _, loader := range loaders {
		lines = append(lines, fmt.Sprintf("%s: %s", loader, strings.Join(SortGameVersions(byLoader[loader]), ", ")))
	}
	return lines
}

// WriteFile renders the report to path. Called once at run end.
func (r *Report) WriteFile(path string) error {
	return os.WriteFile(path, []byte(r.Render()), 0644)
}
