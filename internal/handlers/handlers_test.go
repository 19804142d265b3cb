package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/ytakeda/fitcoach/internal/database"
	"github.com/ytakeda/fitcoach/internal/middleware"
	"github.com/ytakeda/fitcoach/internal/models"
)

const testUserID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

// testDB creates a fresh in-memory SQLite database with migrations applied.
func testDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testSessionManager() *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return sm
}

// userRequest builds a request carrying testUserID in its context, as
// RequireSession would have set it.
func userRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), testUserID))
}

func jsonBody(t testing.TB, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func decodeBody(t testing.TB, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

// configureFakeOpenAI points the provider settings at a stub chat
// completions server that always answers with reply.
func configureFakeOpenAI(t testing.TB, db *sql.DB, reply string) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message":       map[string]any{"content": reply},
					"finish_reason": "stop",
				},
			},
			"model": "gpt-4o",
			"usage": map[string]any{"total_tokens": 10},
		})
	}))
	t.Cleanup(srv.Close)

	if err := models.SetSetting(db, "llm.provider", "openai"); err != nil {
		t.Fatal(err)
	}
	if err := models.SetSetting(db, "llm.base_url", srv.URL); err != nil {
		t.Fatal(err)
	}
}

// seedGoal creates an active goal for testUserID.
func seedGoal(t testing.TB, db *sql.DB) *models.Goal {
	t.Helper()
	g, err := models.CreateGoal(db, testUserID, models.GoalGainMuscle, 35, "2027-06-30")
	if err != nil {
		t.Fatalf("seed goal: %v", err)
	}
	return g
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, substr string) {
	t.Helper()
	if rr.Code != status {
		t.Errorf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	if body := decodeBody(t, rr); !strings.Contains(body["error"].(string), substr) {
		t.Errorf("error = %q, want substring %q", body["error"], substr)
	}
}
