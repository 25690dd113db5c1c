package coverage

import (
	"reflect"
	"testing"

	"pwtp/internal/domain"
)

func TestInferBackendFiles(t *testing.T) {
	traces := map[string]domain.TestTrace{
		"login succeeds": {APIRequests: []domain.APIRequest{
			{URL: "http://localhost:3000/api/auth/login", Status: 200},
		}},
		"logout succeeds": {APIRequests: []domain.APIRequest{
			{URL: "http://localhost:3000/api/auth/logout", Status: 204},
		}},
	}

	got := InferBackendFiles(traces)

	// Both requests share the single resource segment "auth": exactly 4
	// unique candidates, not 8.
	want := []string{
		"backend/controllers/authController.js",
		"backend/controllers/authController.ts",
		"backend/routes/auth.js",
		"backend/routes/auth.ts",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestInferBackendFiles_NoAPITraffic(t *testing.T) {
	traces := map[string]domain.TestTrace{
		"static page": {PageURLs: []string{"http://localhost:3000/about"}},
	}
	if got := InferBackendFiles(traces); len(got) != 0 {
		t.Errorf("expected no candidates, got %v", got)
	}
}

func TestInferBackendFiles_QueryStringBoundary(t *testing.T) {
	traces := map[string]domain.TestTrace{
		"search": {APIRequests: []domain.APIRequest{
			{URL: "http://localhost:3000/api/search?q=x", Status: 200},
		}},
	}

	got := InferBackendFiles(traces)
	for _, f := range got {
		if f == "backend/routes/search?q=x.ts" {
			t.Fatalf("query string leaked into candidate: %v", got)
		}
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 candidates for one resource, got %v", got)
	}
}
