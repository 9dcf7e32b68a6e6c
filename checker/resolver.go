package checker

import (
	"fmt"

	"modrinth-mod-checker/modrinth"
)

// VersionAPI is the slice of the Modrinth client the resolvers need.
// Satisfied by *modrinth.Client.
type VersionAPI interface {
	GetProject(idOrSlug string) (*modrinth.Project, error)
	GetProjectVersions(idOrSlug string) ([]modrinth.Version, error)
	GetVersion(id string) (*modrinth.Version, error)
}

// OutcomeKind classifies the result of a compatibility check.
type OutcomeKind int

const (
	Compatible OutcomeKind = iota
	CompatibleViaVersionChange
	CompatibleViaLoaderChange
	Incompatible
)

func (k OutcomeKind) String() string {
	switch k {
	case Compatible:
		return "compatible"
	case CompatibleViaVersionChange:
		return "compatible via version change"
	case CompatibleViaLoaderChange:
		return "compatible via loader change"
	case Incompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// AvailablePair is one (game version, loader) combination a project publishes.
type AvailablePair struct {
	GameVersion string
	Loader      string
}

// Outcome is the result of resolving one project against a target version and
// loader. Immutable after creation; successful checks with a negative result
// are Incompatible outcomes, while API failures are plain errors from Resolve.
type Outcome struct {
	Slug      string
	ProjectID string
	Title     string
	// Color is the project's accent color from Modrinth, for display.
	Color int
	Kind  OutcomeKind

	// Version is the chosen build for the three compatible kinds; nil for
	// Incompatible.
	Version *modrinth.Version
	// Loader is the loader the chosen build satisfies. Differs from the
	// requested loader only for CompatibleViaLoaderChange.
	Loader Loader
	// SuggestedGameVersion is the proposed new target for
	// CompatibleViaVersionChange.
	SuggestedGameVersion string

	// Available holds every published (game version, loader) pair; filled for
	// Incompatible outcomes.
	Available []AvailablePair
	// GameVersions is the deduplicated set of game versions the project
	// publishes at all, newest first.
	GameVersions []string
}

// Resolver determines the best matching version of a project for a target
// Minecraft version and loader, falling back to a version change or a loader
// change when no exact match exists.
type Resolver struct {
	API VersionAPI
	// PreferredAltLoader, when set, is tried first by the loader-change
	// fallback.
	PreferredAltLoader Loader
}

// strategy inspects the version list and returns a non-nil outcome when it
// applies. Strategies run in priority order; the first hit wins.
type strategy func(versions []modrinth.Version) *Outcome

// Resolve checks a project (by slug or id) against the target game version
// and loader. A returned error means the check itself failed; Incompatible is
// a successful check with a negative result.
func (r *Resolver) Resolve(idOrSlug, targetVersion string, targetLoader Loader, allowDowngrade bool) (Outcome, error) {
	versions, err := r.API.GetProjectVersions(idOrSlug)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolution failed for %s: %w", idOrSlug, err)
	}

	// A project with no versions is a terminal negative result; no further
	// network calls.
	if len(versions) == 0 {
		return Outcome{Slug: idOrSlug, Title: idOrSlug, Kind: Incompatible}, nil
	}

	project, err := r.API.GetProject(idOrSlug)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolution failed for %s: %w", idOrSlug, err)
	}

	strategies := []strategy{
		r.exactMatch(targetVersion, targetLoader),
		r.versionChange(targetLoader, allowDowngrade),
		r.loaderChange(targetVersion, targetLoader),
	}

	outcome := r.incompatible(versions)
	for _, s := range strategies {
		if o := s(versions); o != nil {
			outcome = *o
			break
		}
	}

	outcome.Slug = project.Slug
	outcome.ProjectID = project.ID
	outcome.Title = project.Title
	outcome.Color = project.Color
	outcome.GameVersions = allGameVersions(versions)
	return outcome, nil
}

// exactMatch picks the most recently published version declaring both the
// target game version and the target loader. "Most recent" is the API's
// native ordering; the first match wins.
func (r *Resolver) exactMatch(targetVersion string, targetLoader Loader) strategy {
	return func(versions []modrinth.Version) *Outcome {
		for i := range versions {
			v := &versions[i]
			if containsString(v.GameVersions, targetVersion) && containsString(v.Loaders, targetLoader.String()) {
				return &Outcome{Kind: Compatible, Version: v, Loader: targetLoader}
			}
		}
		return nil
	}
}

// versionChange proposes the newest build for the target loader under any
// game version. Only applies when downgrading was allowed; it takes priority
// over a loader change.
func (r *Resolver) versionChange(targetLoader Loader, allowDowngrade bool) strategy {
	return func(versions []modrinth.Version) *Outcome {
		if !allowDowngrade {
			return nil
		}
		for i := range versions {
			v := &versions[i]
			if containsString(v.Loaders, targetLoader.String()) {
				return &Outcome{
					Kind:                 CompatibleViaVersionChange,
					Version:              v,
					Loader:               targetLoader,
					SuggestedGameVersion: HighestGameVersion(v.GameVersions),
				}
			}
		}
		return nil
	}
}

// loaderChange proposes a build for the target game version under another
// supported loader, trying the preferred alternative first.
func (r *Resolver) loaderChange(targetVersion string, targetLoader Loader) strategy {
	return func(versions []modrinth.Version) *Outcome {
		for _, alt := range targetLoader.Alternatives(r.PreferredAltLoader) {
			for i := range versions {
				v := &versions[i]
				if containsString(v.GameVersions, targetVersion) && containsString(v.Loaders, alt.String()) {
					return &Outcome{Kind: CompatibleViaLoaderChange, Version: v, Loader: alt}
				}
			}
		}
		return nil
	}
}

// incompatible builds the terminal negative outcome carrying the project's
// full (game version, loader) cross-listing.
func (r *Resolver) incompatible(versions []modrinth.Version) Outcome {
	var (
		pairs []AvailablePair
		seen  = make(map[AvailablePair]bool)
	)
	for _, v := range versions {
		for _, gv := range v.GameVersions {
			for _, l := range v.Loaders {
				p := AvailablePair{GameVersion: gv, Loader: l}
				if seen[p] {
					continue
				}
				seen[p] = true
				pairs = append(pairs, p)
			}
		}
	}
	return Outcome{Kind: Incompatible, Available: pairs}
}

func allGameVersions(versions []modrinth.Version) []string {
	seen := make(map[string]bool)
	var all []string
	for _, v := range versions {
		for _, gv := range v.GameVersions {
			if seen[gv] {
				continue
			}
			seen[gv] = true
			all = append(all, gv)
		}
	}
	return SortGameVersions(all)
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
