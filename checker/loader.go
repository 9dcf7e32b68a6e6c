package checker

import "fmt"

// Loader is a mod-loading runtime a Modrinth build targets. It is a closed
// enumeration so fallback logic can be checked for exhaustiveness.
type Loader string

const (
	LoaderFabric   Loader = "fabric"
	LoaderForge    Loader = "forge"
	LoaderQuilt    Loader = "quilt"
	LoaderNeoForge Loader = "neoforge"
)

// AllLoaders returns the supported loaders in a stable order.
func AllLoaders() []Loader {
	return []Loader{LoaderFabric, LoaderForge, LoaderQuilt, LoaderNeoForge}
}

// ParseLoader validates a loader name from user input.
func ParseLoader(s string) (Loader, error) {
	switch Loader(s) {
	case LoaderFabric, LoaderForge, LoaderQuilt, LoaderNeoForge:
		return Loader(s), nil
	default:
		return "", fmt.Errorf("unknown loader %q (expected fabric, forge, quilt or neoforge)", s)
	}
}

func (l Loader) String() string {
	return string(l)
}

// Alternatives returns every supported loader except l. When preferred is a
// valid loader different from l it is moved to the front.
func (l Loader) Alternatives(preferred Loader) []Loader {
	var alts []Loader
	if preferred != "" && preferred != l {
		alts = append(alts, preferred)
	}
	for _, candidate := range AllLoaders() {
		if candidate == l || candidate == preferred {
			continue
		}
		alts = append(alts, candidate)
	}
	return alts
}
