package coverage

import (
	"regexp"
	"sort"

	"pwtp/internal/domain"
)

// API calls captured during a run point at backend code the coverage
// instrumentation never sees. The inference below is a naming-convention
// heuristic, not a guarantee: candidates may not exist on disk.

var apiRouteRe = regexp.MustCompile(`/api/([^/?#]+)`)

// InferBackendFiles derives plausible backend route and controller file
// paths from the API requests in the given traces. Each distinct resource
// (the first path segment after the API prefix) yields four candidates:
// route and controller, in both source extensions. Duplicates across
// requests collapse via set semantics.
func InferBackendFiles(traces map[string]domain.TestTrace) []string {
	resources := make(map[string]bool)
	for _, trace := range traces {
		for _, req := range trace.APIRequests {
			if m := apiRouteRe.FindStringSubmatch(req.URL); m != nil {
				resources[m[1]] = true
			}
		}
	}

	candidates := make(map[string]bool)
	for resource := range resources {
		candidates["backend/routes/"+resource+".ts"] = true
		candidates["backend/routes/"+resource+".js"] = true
		candidates["backend/controllers/"+resource+"Controller.ts"] = true
		candidates["backend/controllers/"+resource+"Controller.js"] = true
	}

	files := make([]string, 0, len(candidates))
	for c := range candidates {
		files = append(files, c)
	}
	sort.Strings(files)
	return files
}
