package checker

import (
	"errors"
	"testing"

	"modrinth-mod-checker/modrinth"
)

// fakeAPI is an in-memory VersionAPI for resolver tests. Keys are whatever
// id or slug the code under test passes in.
type fakeAPI struct {
	projects     map[string]*modrinth.Project
	versionLists map[string][]modrinth.Version
	versionsByID map[string]*modrinth.Version
	errs         map[string]error

	projectCalls     map[string]int
	versionListCalls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		projects:         make(map[string]*modrinth.Project),
		versionLists:     make(map[string][]modrinth.Version),
		versionsByID:     make(map[string]*modrinth.Version),
		errs:             make(map[string]error),
		projectCalls:     make(map[string]int),
		versionListCalls: make(map[string]int),
	}
}

func (f *fakeAPI) addProject(key string, project modrinth.Project, versions ...modrinth.Version) {
	f.projects[key] = &project
	f.versionLists[key] = versions
	for i := range versions {
		f.versionsByID[versions[i].ID] = &versions[i]
	}
}

func (f *fakeAPI) GetProject(idOrSlug string) (*modrinth.Project, error) {
	f.projectCalls[idOrSlug]++
	if err := f.errs[idOrSlug]; err != nil {
		return nil, err
	}
	if p, ok := f.projects[idOrSlug]; ok {
		return p, nil
	}
	return nil, errors.New("project not found: " + idOrSlug)
}

func (f *fakeAPI) GetProjectVersions(idOrSlug string) ([]modrinth.Version, error) {
	f.versionListCalls[idOrSlug]++
	if err := f.errs[idOrSlug]; err != nil {
		return nil, err
	}
	return f.versionLists[idOrSlug], nil
}

func (f *fakeAPI) GetVersion(id string) (*modrinth.Version, error) {
	if v, ok := f.versionsByID[id]; ok {
		return v, nil
	}
	return nil, errors.New("version not found: " + id)
}

func sodiumProject() modrinth.Project {
	return modrinth.Project{Slug: "sodium", ID: "proj-sodium", Title: "Sodium", ProjectType: "mod"}
}

func TestResolveCompatiblePicksMostRecent(t *testing.T) {
	api := newFakeAPI()
	api.addProject("sodium", sodiumProject(),
		// API order is publish date descending; the first match must win.
		modrinth.Version{ID: "v-new", VersionNumber: "0.5.8", GameVersions: []string{"1.20.1"}, Loaders: []string{"fabric"}},
		modrinth.Version{ID: "v-old", VersionNumber: "0.5.7", GameVersions: []string{"1.20.1"}, Loaders: []string{"fabric"}},
	)
	r := &Resolver{API: api}

	outcome, err := r.Resolve("sodium", "1.20.1", LoaderFabric, false)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if outcome.Kind != Compatible {
		t.Fatalf("Kind = %v, want Compatible", outcome.Kind)
	}
	if outcome.Version.ID != "v-new" {
		t.Errorf("Chosen version = %s, want v-new", outcome.Version.ID)
	}
	if outcome.Loader != LoaderFabric {
		t.Errorf("Loader = %s, want fabric", outcome.Loader)
	}
	if outcome.Title != "Sodium" {
		t.Errorf("Title = %s, want Sodium", outcome.Title)
	}
}

func TestResolveVersionChangeTakesPriorityOverLoaderChange(t *testing.T) {
	api := newFakeAPI()
	api.addProject("sodium", sodiumProject(),
		// A forge build exists for the target version, and a fabric build for
		// an older version. With downgrades allowed the version change must
		// win; the loader change is never proposed.
		modrinth.Version{ID: "v-forge", VersionNumber: "0.6.0", GameVersions: []string{"1.99"}, Loaders: []string{"forge"}},
		modrinth.Version{ID: "v-fabric-old", VersionNumber: "0.5.8", GameVersions: []string{"1.20.1"}, Loaders: []string{"fabric"}},
	)
	r := &Resolver{API: api}

	outcome, err := r.Resolve("sodium", "1.99", LoaderFabric, true)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if outcome.Kind != CompatibleViaVersionChange {
		t.Fatalf("Kind = %v, want CompatibleViaVersionChange", outcome.Kind)
	}
	if outcome.Version.ID != "v-fabric-old" {
		t.Errorf("Chosen version = %s, want v-fabric-old", outcome.Version.ID)
	}
	if outcome.SuggestedGameVersion != "1.20.1" {
		t.Errorf("SuggestedGameVersion = %s, want 1.20.1", outcome.SuggestedGameVersion)
	}
}

func TestResolveVersionChangeSuggestsHighestGameVersion(t *testing.T) {
	api := newFakeAPI()
	api.addProject("sodium", sodiumProject(),
		modrinth.Version{ID: "v1", VersionNumber: "0.5.8", GameVersions: []string{"1.20", "1.20.4", "1.20.1"}, Loaders: []string{"fabric"}},
	)
	r := &Resolver{API: api}

	outcome, err := r.Resolve("sodium", "1.99", LoaderFabric, true)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if outcome.SuggestedGameVersion != "1.20.4" {
		t.Errorf("SuggestedGameVersion = %s, want 1.20.4", outcome.SuggestedGameVersion)
	}
}

func TestResolveLoaderChange(t *testing.T) {
	api := newFakeAPI()
	api.addProject("sodium", sodiumProject(),
		modrinth.Version{ID: "v-quilt", VersionNumber: "0.5.8", GameVersions: []string{"1.20.1"}, Loaders: []string{"quilt"}},
	)
	r := &Resolver{API: api}

	outcome, err := r.Resolve("sodium", "1.20.1", LoaderFabric, false)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if outcome.Kind != CompatibleViaLoaderChange {
		t.Fatalf("Kind = %v, want CompatibleViaLoaderChange", outcome.Kind)
	}
	if outcome.Loader != LoaderQuilt {
		t.Errorf("Loader = %s, want quilt", outcome.Loader)
	}
}

func TestResolveLoaderChangePrefersConfiguredAlternative(t *testing.T) {
	api := newFakeAPI()
	api.addProject("sodium", sodiumProject(),
		modrinth.Version{ID: "v-quilt", GameVersions: []string{"1.20.1"}, Loaders: []string{"quilt"}},
		modrinth.Version{ID: "v-neoforge", GameVersions: []string{"1.20.1"}, Loaders: []string{"neoforge"}},
	)
	r := &Resolver{API: api, PreferredAltLoader: LoaderNeoForge}

	outcome, err := r.Resolve("sodium", "1.20.1", LoaderFabric, false)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if outcome.Loader != LoaderNeoForge {
		t.Errorf("Loader = %s, want neoforge (preferred alternative)", outcome.Loader)
	}
}

func TestResolveIncompatibleCarriesFullCrossListing(t *testing.T) {
	api := newFakeAPI()
	api.addProject("sodium", sodiumProject(),
		modrinth.Version{ID: "v1", GameVersions: []string{"1.19.2", "1.19"}, Loaders: []string{"fabric", "quilt"}},
		modrinth.Version{ID: "v2", GameVersions: []string{"1.18.2"}, Loaders: []string{"fabric"}},
	)
	r := &Resolver{API: api}

	outcome, err := r.Resolve("sodium", "1.20.1", LoaderForge, false)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if outcome.Kind != Incompatible {
		t.Fatalf("Kind = %v, want Incompatible", outcome.Kind)
	}

	want := map[AvailablePair]bool{
		{GameVersion: "1.19.2", Loader: "fabric"}: true,
		{GameVersion: "1.19.2", Loader: "quilt"}:  true,
		{GameVersion: "1.19", Loader: "fabric"}:   true,
		{GameVersion: "1.19", Loader: "quilt"}:    true,
		{GameVersion: "1.18.2", Loader: "fabric"}: true,
	}
	if len(outcome.Available) != len(want) {
		t.Fatalf("Available has %d pairs, want %d: %v", len(outcome.Available), len(want), outcome.Available)
	}
	for _, p := range outcome.Available {
		if !want[p] {
			t.Errorf("Unexpected available pair %v", p)
		}
	}
}

func TestResolveZeroVersions(t *testing.T) {
	api := newFakeAPI()
	api.addProject("empty", modrinth.Project{Slug: "empty", ID: "proj-empty", Title: "Empty"})
	r := &Resolver{API: api}

	outcome, err := r.Resolve("empty", "1.20.1", LoaderFabric, true)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if outcome.Kind != Incompatible {
		t.Fatalf("Kind = %v, want Incompatible", outcome.Kind)
	}
	if len(outcome.Available) != 0 {
		t.Errorf("Available = %v, want empty", outcome.Available)
	}
	// Only the listing fetch is allowed for a project with zero versions.
	if api.projectCalls["empty"] != 0 {
		t.Errorf("GetProject was called %d times, want 0", api.projectCalls["empty"])
	}
}

func TestResolveAPIFailureIsAnError(t *testing.T) {
	api := newFakeAPI()
	api.errs["sodium"] = errors.New("connection refused")
	r := &Resolver{API: api}

	_, err := r.Resolve("sodium", "1.20.1", LoaderFabric, false)
	if err == nil {
		t.Fatal("Expected an error for an API failure")
	}
}

func TestParseLoader(t *testing.T) {
	for _, valid := range []string{"fabric", "forge", "quilt", "neoforge"} {
		if _, err := ParseLoader(valid); err != nil {
			t.Errorf("ParseLoader(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseLoader("rift"); err == nil {
		t.Error("Expected error for unknown loader")
	}
	if _, err := ParseLoader(""); err == nil {
		t.Error("Expected error for empty loader")
	}
}

func TestLoaderAlternatives(t *testing.T) {
	alts := LoaderFabric.Alternatives("")
	if len(alts) != 3 {
		t.Fatalf("Alternatives returned %d loaders, want 3", len(alts))
	}
	for _, l := range alts {
		if l == LoaderFabric {
			t.Error("Alternatives must not include the loader itself")
		}
	}

	preferred := LoaderFabric.Alternatives(LoaderNeoForge)
	if preferred[0] != LoaderNeoForge {
		t.Errorf("Preferred loader should come first, got %v", preferred)
	}
}
