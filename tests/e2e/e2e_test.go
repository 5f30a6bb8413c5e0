// e2e_test.go
//
// A recipe catalog data service with ingestion review and moderation
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of recipedb.
// recipedb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// recipedb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with recipedb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package e2e_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/localnerve/recipedb/internal/config"
	"github.com/localnerve/recipedb/internal/database"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/tests/helpers"
)

// TestE2EWithFullStack tests the entire service stack
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	ctx := context.Background()

	tc, err := helpers.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	recipedbHost, _ := tc.RecipeDBContainer.Host(ctx)
	recipedbPort, _ := tc.RecipeDBContainer.MappedPort(ctx, "3000")
	baseURL := fmt.Sprintf("http://%s:%s", recipedbHost, recipedbPort.Port())

	// Wait a bit for everything to stabilize
	time.Sleep(5 * time.Second)

	// Run E2E tests
	t.Run("HealthCheck", func(t *testing.T) {
		testHealthCheck(t, tc)
	})

	t.Run("PrometheusMetrics", func(t *testing.T) {
		testPrometheusMetrics(t, baseURL)
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		testSwaggerUI(t, baseURL)
	})

	// Public API Access
	t.Run("PublicAPIAccess", func(t *testing.T) {
		testPublicAPIAccess(t, baseURL)
	})

	// Auth boundary
	t.Run("ProtectedAPIAccess", func(t *testing.T) {
		testProtectedAPIAccess(t, baseURL)
	})

	t.Run("AccountProvisioning", func(t *testing.T) {
		testAccountProvisioning(t, tc)
	})
}

func testHealthCheck(t *testing.T, tc *helpers.TestContainers) {
	ctx := context.Background()

	// 1. Prepare configuration for the health check
	// We need to point to the mapped ports on localhost, not internal container names
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Update DB host and port to mapped values
	dbHost, _ := tc.DBContainer.Host(ctx)
	dbPort, _ := tc.DBContainer.MappedPort(ctx, "3306")
	cfg.DBHost = dbHost
	cfg.DBPort = dbPort.Port()

	// Update Authorizer URL to mapped value
	authzHost, _ := tc.AuthorizerContainer.Host(ctx)
	authzPort, _ := tc.AuthorizerContainer.MappedPort(ctx, "8080")
	cfg.AuthzURL = fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())

	// 2. Establish GORM connection to the test database
	gormDB, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	defer database.Close(gormDB)

	// 3. Perform the health check. The parser and extractor stubs are
	// not part of the container stack, so only the database and
	// authorizer legs are asserted.
	result := services.HealthCheck(cfg, gormDB)

	// 4. Verify the result
	if result.Database != "ok" {
		t.Errorf("Health check database leg failed: %+v", result)
	}
	if result.Authorizer != "ok" {
		t.Errorf("Health check authorizer leg failed: %+v", result)
	}

	t.Logf("Health check: status=%s, database=%s, parser=%s, authorizer=%s",
		result.Status, result.Database, result.Parser, result.Authorizer)
}

func testPrometheusMetrics(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for metrics, got %d. Body: %s", resp.StatusCode, bodyStr)
	}

	t.Logf("Metrics endpoint working, found %d bytes of metrics", len(bodyStr))
}

func testSwaggerUI(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/swagger/index.html")
	if err != nil {
		t.Fatalf("Failed to get Swagger UI: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for Swagger UI, got %d", resp.StatusCode)
	}
}

func testPublicAPIAccess(t *testing.T, baseURL string) {
	// The catalog list is public and always answers, even when empty
	resp, err := http.Get(baseURL + "/api/recipes")
	if err != nil {
		t.Fatalf("Failed to access public API: %v", err)
	}
	defer resp.Body.Close()

	helpers.AssertStatus(t, resp, 200)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if result["recipes"] == nil {
		t.Errorf("Expected recipes array in response, got %v", result)
	}

	// Unknown routes answer JSON 404
	resp, err = http.Get(baseURL + "/api/nope")
	if err != nil {
		t.Fatalf("Failed to request unknown route: %v", err)
	}
	defer resp.Body.Close()
	helpers.AssertStatus(t, resp, 404)
}

func testProtectedAPIAccess(t *testing.T, baseURL string) {
	// Admin and member routes refuse anonymous callers
	for _, path := range []string{"/api/pending", "/api/admin/recipes", "/api/submissions"} {
		resp, err := http.Get(baseURL + path)
		if err != nil {
			t.Fatalf("Failed to request %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusForbidden {
			body, _ := io.ReadAll(resp.Body)
			t.Errorf("Expected status 403 for %s, got %d. Body: %s", path, resp.StatusCode, string(body))
		}
		resp.Body.Close()
	}
}

func testAccountProvisioning(t *testing.T, tc *helpers.TestContainers) {
	ctx := context.Background()

	authzHost, _ := tc.AuthorizerContainer.Host(ctx)
	authzPort, _ := tc.AuthorizerContainer.MappedPort(ctx, "8080")
	authzURL := fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())

	// Both roles can be provisioned against the Authorizer container
	memberToken := helpers.AcquireMemberAccount(t, authzURL)
	if memberToken == "" {
		t.Error("Expected member access token")
	}

	adminToken := helpers.AcquireAdminAccount(t, authzURL)
	if adminToken == "" {
		t.Error("Expected admin access token")
	}
}
