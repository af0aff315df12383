// Package e2e provides end-to-end tests for the complete quotagate flow.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quotagate/quotagate/bootstrap"
	"github.com/quotagate/quotagate/config"
)

const serviceKey = "e2e-service-key"

// setupTestApp boots a full application from a config file with a
// sqlite store and service-key auth, fronted by an httptest server.
func setupTestApp(t *testing.T, dbPath string) (*bootstrap.App, *httptest.Server) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(serviceKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash service key: %v", err)
	}
	// Bcrypt hashes contain "$"; feed the hash through the config
	// loader's env expansion instead of inlining it.
	t.Setenv("E2E_KEY_HASH", string(hash))

	cfgYAML := fmt.Sprintf(`
server:
  host: 127.0.0.1
  port: 0
database:
  driver: sqlite
  dsn: %s
auth:
  enabled: true
  service_key_hash: ${E2E_KEY_HASH}
usage_log:
  enabled: true
logging:
  level: error
`, dbPath)

	cfgPath := filepath.Join(t.TempDir(), "quotagate.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	app, err := bootstrap.New(cfg, bootstrap.Options{Version: "e2e"})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	ts := httptest.NewServer(app.Server.Handler)
	t.Cleanup(func() {
		ts.Close()
		if err := app.Shutdown(); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})
	return app, ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("X-Service-Key", serviceKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// TestE2E_QuotaLifecycle runs the full subscription lifecycle:
// 1. Create a FREE account
// 2. Upload through the gate until the monthly cap
// 3. Hit the cap and get denied with an upgrade prompt
// 4. Upgrade to BASIC
// 5. Upload again and fetch usage stats
func TestE2E_QuotaLifecycle(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "e2e.db")
	_, ts := setupTestApp(t, dbPath)

	// 1. Create account
	resp := doJSON(t, "POST", ts.URL+"/v1/accounts", map[string]string{
		"email": "lifecycle@example.com",
	})
	if resp.StatusCode != 201 {
		t.Fatalf("create account: status = %d, want 201", resp.StatusCode)
	}
	var account struct {
		ID   string `json:"id"`
		Tier string `json:"tier"`
	}
	decode(t, resp, &account)
	if account.Tier != "FREE" {
		t.Fatalf("tier = %s, want FREE", account.Tier)
	}

	base := ts.URL + "/v1/accounts/" + account.ID

	// 2. Five uploads pass the gate
	for i := 0; i < 5; i++ {
		resp := doJSON(t, "POST", base+"/uploads", nil)
		resp.Body.Close()
		if resp.StatusCode != 202 {
			t.Fatalf("upload %d: status = %d, want 202", i+1, resp.StatusCode)
		}
	}

	// 3. The sixth is denied
	resp = doJSON(t, "POST", base+"/uploads", nil)
	if resp.StatusCode != 429 {
		t.Fatalf("upload past cap: status = %d, want 429", resp.StatusCode)
	}
	var denial struct {
		Message string `json:"message"`
		Details struct {
			Current       float64 `json:"current"`
			Limit         float64 `json:"limit"`
			UpgradePrompt bool    `json:"upgrade_prompt"`
		} `json:"details"`
	}
	decode(t, resp, &denial)
	if denial.Message != "Monthly upload limit reached" {
		t.Errorf("message = %q", denial.Message)
	}
	if !denial.Details.UpgradePrompt || denial.Details.Limit != 5 {
		t.Errorf("details = %+v", denial.Details)
	}

	// The engine should now recommend an upgrade
	resp = doJSON(t, "GET", base+"/recommendation", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("recommendation: status = %d, want 200", resp.StatusCode)
	}
	var rec struct {
		RecommendUpgrade bool   `json:"recommend_upgrade"`
		RecommendedTier  string `json:"recommended_tier"`
	}
	decode(t, resp, &rec)
	if !rec.RecommendUpgrade || rec.RecommendedTier != "BASIC" {
		t.Errorf("recommendation = %+v", rec)
	}

	// 4. Upgrade
	resp = doJSON(t, "PUT", base+"/tier", map[string]string{"tier": "BASIC"})
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("set tier: status = %d, want 200", resp.StatusCode)
	}

	// 5. Uploads flow again and stats reflect the whole month
	resp = doJSON(t, "POST", base+"/uploads", nil)
	resp.Body.Close()
	if resp.StatusCode != 202 {
		t.Fatalf("upload after upgrade: status = %d, want 202", resp.StatusCode)
	}

	resp = doJSON(t, "GET", base+"/usage", nil)
	var stats struct {
		Tier  string `json:"tier"`
		Usage struct {
			Uploads struct {
				Used      float64 `json:"used"`
				Limit     float64 `json:"limit"`
				Remaining float64 `json:"remaining"`
			} `json:"uploads"`
		} `json:"usage"`
	}
	decode(t, resp, &stats)
	if stats.Tier != "BASIC" {
		t.Errorf("stats tier = %s, want BASIC", stats.Tier)
	}
	if stats.Usage.Uploads.Used != 6 || stats.Usage.Uploads.Limit != 20 {
		t.Errorf("uploads stat = %+v", stats.Usage.Uploads)
	}

	// The audit log captured every accepted upload
	resp = doJSON(t, "GET", base+"/events", nil)
	var events []struct {
		Kind string `json:"kind"`
	}
	decode(t, resp, &events)
	if len(events) != 6 {
		t.Errorf("events = %d, want 6", len(events))
	}
}

// TestE2E_ServiceKeyAuth tests rejection of missing and invalid keys.
func TestE2E_ServiceKeyAuth(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "auth.db")
	_, ts := setupTestApp(t, dbPath)

	client := &http.Client{Timeout: 5 * time.Second}

	tests := []struct {
		name string
		key  string
	}{
		{"missing key", ""},
		{"wrong key", "not-the-key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", ts.URL+"/v1/tiers", nil)
			if tt.key != "" {
				req.Header.Set("X-Service-Key", tt.key)
			}
			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != 401 {
				t.Errorf("status = %d, want 401", resp.StatusCode)
			}
		})
	}

	// Health stays open
	resp, err := client.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
}

// TestE2E_Persistence verifies accounts and counters survive a restart.
func TestE2E_Persistence(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "persist.db")

	var accountID string

	t.Run("Phase1_RecordUsage", func(t *testing.T) {
		_, ts := setupTestApp(t, dbPath)

		resp := doJSON(t, "POST", ts.URL+"/v1/accounts", map[string]string{
			"email": "persist@example.com",
			"tier":  "PREMIUM",
		})
		if resp.StatusCode != 201 {
			t.Fatalf("create account: status = %d", resp.StatusCode)
		}
		var account struct {
			ID string `json:"id"`
		}
		decode(t, resp, &account)
		accountID = account.ID

		resp = doJSON(t, "POST", ts.URL+"/v1/accounts/"+accountID+"/usage", map[string]any{
			"action": "audio",
			"amount": 42.5,
		})
		resp.Body.Close()
		if resp.StatusCode != 204 {
			t.Fatalf("record usage: status = %d", resp.StatusCode)
		}
	})

	t.Run("Phase2_VerifyAfterRestart", func(t *testing.T) {
		_, ts := setupTestApp(t, dbPath)

		resp := doJSON(t, "GET", ts.URL+"/v1/accounts/"+accountID, nil)
		if resp.StatusCode != 200 {
			t.Fatalf("get account after restart: status = %d", resp.StatusCode)
		}
		var account struct {
			Tier                string  `json:"tier"`
			MonthlyAudioMinutes float64 `json:"monthly_audio_minutes"`
		}
		decode(t, resp, &account)
		if account.Tier != "PREMIUM" {
			t.Errorf("tier = %s, want PREMIUM", account.Tier)
		}
		if account.MonthlyAudioMinutes != 42.5 {
			t.Errorf("audio minutes = %f, want 42.5", account.MonthlyAudioMinutes)
		}
	})
}
