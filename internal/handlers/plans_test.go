package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const threePlansReply = `[
  {"title":"Easy Plan","frequency":"2 days/week","description":"Gentle start.","workouts":[{"day":"Monday","focus":"Full body"}]},
  {"title":"Normal Plan","frequency":"3 days/week","description":"Balanced.","workouts":[{"day":"Monday","focus":"Push"},{"day":"Thursday","focus":"Pull"}]},
  {"title":"Hard Plan","frequency":"5 days/week","description":"Ambitious.","workouts":[{"day":"Monday","focus":"Push"}]}
]`

func planGenBody() map[string]any {
	return map[string]any{
		"userData": map[string]any{"age": 30, "gender": "male", "height": 175.0, "weight": 72.0},
		"goalData": map[string]any{"goalType": "lose_weight", "targetValue": 65.0, "targetDate": "2026-12-31"},
	}
}

func TestPlans_Generate(t *testing.T) {
	db := testDB(t)
	configureFakeOpenAI(t, db, threePlansReply)
	h := &Plans{DB: db}

	rr := httptest.NewRecorder()
	h.Generate(rr, userRequest("POST", "/api/plans/generate", jsonBody(t, planGenBody())))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	plans := decodeBody(t, rr)["plans"].([]any)
	if len(plans) != 3 {
		t.Fatalf("plans = %d, want 3", len(plans))
	}
	first := plans[0].(map[string]any)
	if first["title"] != "Easy Plan" {
		t.Errorf("first plan = %v", first)
	}
}

func TestPlans_Generate_NotConfigured(t *testing.T) {
	db := testDB(t)
	h := &Plans{DB: db}

	rr := httptest.NewRecorder()
	h.Generate(rr, userRequest("POST", "/api/plans/generate", jsonBody(t, planGenBody())))
	expectError(t, rr, http.StatusInternalServerError, "not configured")
}

func TestPlans_Generate_BadModelOutput(t *testing.T) {
	db := testDB(t)
	configureFakeOpenAI(t, db, "here are some ideas for you!")
	h := &Plans{DB: db}

	rr := httptest.NewRecorder()
	h.Generate(rr, userRequest("POST", "/api/plans/generate", jsonBody(t, planGenBody())))
	expectError(t, rr, http.StatusInternalServerError, "unusable answer")
}

func TestPlans_Generate_Validation(t *testing.T) {
	db := testDB(t)
	h := &Plans{DB: db}

	body := planGenBody()
	body["goalData"].(map[string]any)["goalType"] = "fly"
	rr := httptest.NewRecorder()
	h.Generate(rr, userRequest("POST", "/api/plans/generate", jsonBody(t, body)))
	expectError(t, rr, http.StatusBadRequest, "Unknown goal type")

	body = planGenBody()
	body["userData"].(map[string]any)["age"] = 0
	rr = httptest.NewRecorder()
	h.Generate(rr, userRequest("POST", "/api/plans/generate", jsonBody(t, body)))
	expectError(t, rr, http.StatusBadRequest, "must be positive")
}
