package checker

import (
	"fmt"

	"modrinth-mod-checker/modrinth"
)

// DependencyOutcome is the result of examining one declared dependency.
// Required dependencies carry a full resolution Outcome (or the error that
// prevented one); optional and incompatible kinds are informational only.
type DependencyOutcome struct {
	ProjectID      string
	Title          string
	DependencyType string // required, optional, incompatible, embedded
	Outcome        *Outcome
	Err            error
}

// DependencyResolver walks required dependencies of chosen versions,
// resolving each through the Compatibility Resolver with the same target
// version and loader. A visited set keyed by project id guarantees each
// project is resolved at most once per run, which also breaks dependency
// cycles.
type DependencyResolver struct {
	Resolver *Resolver
	API      VersionAPI
	seen     map[string]bool
}

func NewDependencyResolver(r *Resolver, api VersionAPI) *DependencyResolver {
	return &DependencyResolver{
		Resolver: r,
		API:      api,
		seen:     make(map[string]bool),
	}
}

// MarkResolved records a project as already handled this run, so it is not
// re-resolved when it later appears as a dependency. Top-level mods are
// marked by the caller before their dependencies are walked.
func (d *DependencyResolver) MarkResolved(ids ...string) {
	for _, id := range ids {
		if id != "" {
			d.seen[id] = true
		}
	}
}

// Resolve walks the dependency references of a chosen version. Required
// dependencies are resolved recursively against the same target; projects
// already seen this run are skipped.
func (d *DependencyResolver) Resolve(version *modrinth.Version, targetVersion string, targetLoader Loader, allowDowngrade bool) []DependencyOutcome {
	var results []DependencyOutcome

	for _, dep := range version.Dependencies {
		projectID := dep.ProjectID
		if projectID == "" && dep.VersionID != "" {
			// Some dependency entries only pin a version id; the owning
			// project has to be looked up first.
			pinned, err := d.API.GetVersion(dep.VersionID)
			if err != nil {
				results = append(results, DependencyOutcome{
					Title:          dep.VersionID,
					DependencyType: dep.DependencyType,
					Err:            fmt.Errorf("failed to look up pinned dependency version: %w", err),
				})
				continue
			}
			projectID = pinned.ProjectID
		}
		if projectID == "" {
			continue
		}

		if dep.DependencyType != "required" {
			results = append(results, d.informational(projectID, dep.DependencyType))
			continue
		}

		if d.seen[projectID] {
			continue
		}
		d.seen[projectID] = true

		outcome, err := d.Resolver.Resolve(projectID, targetVersion, targetLoader, allowDowngrade)
		if err != nil {
			results = append(results, DependencyOutcome{
				ProjectID:      projectID,
				Title:          projectID,
				DependencyType: dep.DependencyType,
				Err:            err,
			})
			continue
		}

		d.seen[outcome.Slug] = true
		results = append(results, DependencyOutcome{
			ProjectID:      projectID,
			Title:          outcome.Title,
			DependencyType: dep.DependencyType,
			Outcome:        &outcome,
		})

		// Transitive required dependencies of a usable build.
		if outcome.Kind == Compatible && outcome.Version != nil {
			results = append(results, d.Resolve(outcome.Version, targetVersion, targetLoader, allowDowngrade)...)
		}
	}

	return results
}

// informational records an optional or incompatible dependency without
// resolving it. The project title is looked up for readable reporting; the
// id stands in when the lookup fails.
func (d *DependencyResolver) informational(projectID, depType string) DependencyOutcome {
	title := projectID
	if project, err := d.API.GetProject(projectID); err == nil {
		title = project.Title
	}
	return DependencyOutcome{ProjectID: projectID, Title: title, DependencyType: depType}
}
