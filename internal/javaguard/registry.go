package javaguard

import (
	"context"
	"runtime"
)

// Registry wraps discovery, introspection, filtering and ranking into
// one entry point, per spec §9's guidance to compose the discovery
// strategies rather than exposing each one to callers directly.
type Registry struct {
	Strategies []Strategy
}

// NewRegistry builds a Registry using the per-OS strategy composition
// from ComposeForOS.
func NewRegistry(runtimeDir string, registry RegistryReader) *Registry {
	return &Registry{Strategies: ComposeForOS(runtime.GOOS, runtimeDir, registry)}
}

// Find discovers candidate roots, introspects each, and returns the
// subset satisfying rangeExpr, ranked best-first (spec §4.4, §8).
func (r *Registry) Find(ctx context.Context, rangeExpr string) ([]Details, error) {
	roots := DiscoverAll(r.Strategies)

	candidates := make([]Candidate, 0, len(roots))
	for _, root := range roots {
		props, err := Introspect(ctx, root)
		if err != nil {
			continue // unusable candidate, skipped
		}

		versionStr, _ := props["java.version"].(string)
		sv := ParseJavaRuntimeVersion(versionStr)
		if sv == nil {
			continue
		}

		vendor, _ := props["java.vendor"].(string)
		candidates = append(candidates, Candidate{
			Details: Details{
				Path:         root,
				Vendor:       vendor,
				SemVer:       *sv,
				SemVerString: versionStr,
			},
			Properties: props,
		})
	}

	filtered, err := FilterByRange(candidates, rangeExpr, runtime.GOARCH)
	if err != nil {
		return nil, err
	}
	return Rank(filtered), nil
}
