package checker

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modrinth-mod-checker/modrinth"
)

func sampleReport() *Report {
	r := NewReport("1.20.1", LoaderFabric)

	r.AddMod(ModResult{
		Name: "Sodium",
		Slug: "sodium",
		Outcome: &Outcome{
			Slug: "sodium", Title: "Sodium", Kind: Compatible, Loader: LoaderFabric,
			Version: &modrinth.Version{
				ID: "v1", VersionNumber: "0.5.8",
				Files: []modrinth.File{{Filename: "sodium-0.5.8.jar", Primary: true}},
			},
		},
		DownloadNote: "downloaded to mods/sodium-0.5.8.jar",
	})

	r.AddMod(ModResult{
		Name: "Old Mod",
		Slug: "old-mod",
		Outcome: &Outcome{
			Slug: "old-mod", Title: "Old Mod", Kind: CompatibleViaVersionChange, Loader: LoaderFabric,
			Version:              &modrinth.Version{ID: "v2", VersionNumber: "1.2.3"},
			SuggestedGameVersion: "1.19.2",
		},
	})

	r.AddMod(ModResult{
		Name: "Forge Only",
		Slug: "forge-only",
		Outcome: &Outcome{
			Slug: "forge-only", Title: "Forge Only", Kind: Incompatible,
			Available: []AvailablePair{
				{GameVersion: "1.20.1", Loader: "forge"},
				{GameVersion: "1.19.2", Loader: "forge"},
			},
		},
	})

	r.AddMod(ModResult{
		Name: "Broken",
		Slug: "broken",
		Err:  errors.New("resolution failed for broken: api request failed: status 500"),
	})

	r.AddDependency(DependencyOutcome{
		ProjectID:      "proj-lib",
		Title:          "Some Lib",
		DependencyType: "required",
		Outcome: &Outcome{
			Slug: "some-lib", Title: "Some Lib", Kind: Compatible,
			Version: &modrinth.Version{ID: "lib-v1", VersionNumber: "2.0.0"},
		},
	})

	r.SuggestedVersion = "1.19.2"
	return r
}

func TestReportRenderSections(t *testing.T) {
	rendered := sampleReport().Render()

	for _, want := range []string{
		"# Mod Compatibility Report",
		"- Original Minecraft Version: 1.20.1",
		"- Original Mod Loader: fabric",
		"## Resolution Log",
		"## Compatible Mods",
		"- Sodium: 0.5.8 (sodium-0.5.8.jar) — downloaded to mods/sodium-0.5.8.jar",
		"## Fallback Proposals",
		"- Old Mod: no build for Minecraft 1.20.1, but 1.2.3 supports 1.19.2",
		"## Dependencies",
		"- Some Lib (required): 2.0.0",
		"## Incompatible Mods",
		"- Forge Only",
		"forge: 1.20.1, 1.19.2",
		"## Failed Checks",
		"- Broken: resolution failed",
		"## Suggestion",
		"Minecraft 1.19.2",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Rendered report missing %q\n---\n%s", want, rendered)
		}
	}
}

func TestReportOmitsEmptySections(t *testing.T) {
	r := NewReport("1.20.1", LoaderFabric)
	rendered := r.Render()

	for _, section := range []string{
		"## Compatible Mods",
		"## Fallback Proposals",
		"## Dependencies",
		"## Incompatible Mods",
		"## Failed Checks",
		"## Suggestion",
		"## Input Errors",
	} {
		if strings.Contains(rendered, section) {
			t.Errorf("Empty report should not contain %q", section)
		}
	}
}

func TestReportFinalDiffersFromOriginal(t *testing.T) {
	r := NewReport("1.20.1", LoaderFabric)
	r.FinalVersion = "1.19.2"
	r.FinalLoader = LoaderQuilt

	rendered := r.Render()
	if !strings.Contains(rendered, "Final Minecraft Version: 1.19.2 (changed due to compatibility)") {
		t.Error("Missing final version line")
	}
	if !strings.Contains(rendered, "Final Mod Loader: quilt (changed due to compatibility)") {
		t.Error("Missing final loader line")
	}
}

func TestReportParseErrors(t *testing.T) {
	r := NewReport("1.20.1", LoaderFabric)
	r.AddParseErrors([]LineError{{Line: 3, Err: ErrInvalidLink}})

	rendered := r.Render()
	if !strings.Contains(rendered, "## Input Errors") || !strings.Contains(rendered, "line 3:") {
		t.Errorf("Parse errors not rendered:\n%s", rendered)
	}
}

func TestReportWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod_compatibility_report.md")
	if err := sampleReport().WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	if !strings.Contains(string(content), "# Mod Compatibility Report") {
		t.Error("Written report missing header")
	}
}
