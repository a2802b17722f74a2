package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"glog/workout-server/internal/repository/memory"
	"glog/workout-server/internal/service"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

type testAPI struct {
	router *gin.Engine
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := memory.New()
	logger := log.New(io.Discard)
	planRepo := memory.NewWorkoutPlanRepository(db)
	historyRepo := memory.NewHistoryRepository(db)

	auth := service.NewAuthService(memory.NewUserRepository(db), "test-secret", time.Hour)
	plans := service.NewPlanService(planRepo, memory.NewExerciseRepository(db))
	history := service.NewHistoryService(historyRepo, planRepo)
	workouts := service.NewWorkoutService(plans, history, service.MemoryStores(logger), nil, 10*time.Millisecond, logger)

	router := gin.New()
	SetupRoutes(router, Services{
		Auth:    auth,
		Plans:   plans,
		History: history,
		Export:  service.NewExportService(historyRepo, nil, 0, logger),
		Workout: workouts,
	})

	api := &testAPI{router: router}
	api.expect(t, http.MethodPost, "/api/v1/auth/register", `{"name":"Ada","email":"ada@example.com","password":"correct horse"}`, http.StatusCreated)
	var login LoginResponse
	api.decode(t, api.expect(t, http.MethodPost, "/api/v1/auth/login", `{"email":"ada@example.com","password":"correct horse"}`, http.StatusOK), &login)
	api.token = login.Token
	return api
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) expect(t *testing.T, method, path, body string, status int) *httptest.ResponseRecorder {
	t.Helper()
	w := a.do(method, path, body)
	if w.Code != status {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, status, w.Code, w.Body.String())
	}
	return w
}

func (a *testAPI) decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

// seedPlan creates a Monday plan with Bench (3 sets) and Fly (2 sets).
func (a *testAPI) seedPlan(t *testing.T) PlanResponse {
	t.Helper()
	var plan PlanResponse
	a.decode(t, a.expect(t, http.MethodPost, "/api/v1/plans", `{"dayOfWeek":0,"name":"Push Day"}`, http.StatusCreated), &plan)
	a.expect(t, http.MethodPost, "/api/v1/plans/"+plan.ID+"/exercises", `{"name":"Bench","sets":3,"reps":8,"weight":60}`, http.StatusCreated)
	a.expect(t, http.MethodPost, "/api/v1/plans/"+plan.ID+"/exercises", `{"name":"Fly","sets":2,"reps":12}`, http.StatusCreated)

	var plans []PlanResponse
	a.decode(t, a.expect(t, http.MethodGet, "/api/v1/plans", "", http.StatusOK), &plans)
	if len(plans) != 1 || len(plans[0].Exercises) != 2 {
		t.Fatalf("expected 1 plan with 2 exercises, got %+v", plans)
	}
	return plans[0]
}

func TestPing(t *testing.T) {
	api := newTestAPI(t)
	w := api.expect(t, http.MethodGet, "/ping", "", http.StatusOK)
	if !strings.Contains(w.Body.String(), "pong") {
		t.Fatalf("expected pong, got %s", w.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/workout/active", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			api.router.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}

	t.Run("me", func(t *testing.T) {
		var me map[string]string
		api.decode(t, api.expect(t, http.MethodGet, "/api/v1/me", "", http.StatusOK), &me)
		if len(me["userId"]) != 24 {
			t.Fatalf("expected a hex user id, got %q", me["userId"])
		}
	})
	t.Run("duplicate registration", func(t *testing.T) {
		api.expect(t, http.MethodPost, "/api/v1/auth/register", `{"name":"Ada","email":"ada@example.com","password":"correct horse"}`, http.StatusConflict)
	})
	t.Run("bad login", func(t *testing.T) {
		api.expect(t, http.MethodPost, "/api/v1/auth/login", `{"email":"ada@example.com","password":"nope"}`, http.StatusUnauthorized)
	})
}

func TestPlanEndpoints(t *testing.T) {
	api := newTestAPI(t)
	plan := api.seedPlan(t)

	api.expect(t, http.MethodPost, "/api/v1/plans", `{"dayOfWeek":0,"name":"Again"}`, http.StatusConflict)
	api.expect(t, http.MethodPost, "/api/v1/plans", `{"dayOfWeek":9,"name":"Nope"}`, http.StatusBadRequest)
	api.expect(t, http.MethodPost, "/api/v1/plans", `{"name":"No day"}`, http.StatusBadRequest)
	api.expect(t, http.MethodPost, "/api/v1/plans/"+plan.ID+"/exercises", `{"name":"Dips","sets":0}`, http.StatusBadRequest)
	api.expect(t, http.MethodPut, "/api/v1/plans/not-an-id", `{"name":"x"}`, http.StatusBadRequest)
	api.expect(t, http.MethodDelete, "/api/v1/plans/64b7f0c2a1b2c3d4e5f60718", "", http.StatusNotFound)

	api.expect(t, http.MethodPut, "/api/v1/plans/"+plan.ID, `{"name":"Chest Day"}`, http.StatusNoContent)

	bench, fly := plan.Exercises[0], plan.Exercises[1]
	var updated ExerciseResponse
	api.decode(t, api.expect(t, http.MethodPut, "/api/v1/exercises/"+fly.ID, `{"name":"Cable Fly","sets":3}`, http.StatusOK), &updated)
	if updated.Name != "Cable Fly" || updated.Sets == nil || *updated.Sets != 3 {
		t.Fatalf("unexpected update %+v", updated)
	}

	order := `{"exerciseIds":["` + fly.ID + `","` + bench.ID + `"]}`
	api.expect(t, http.MethodPut, "/api/v1/plans/"+plan.ID+"/exercises/order", order, http.StatusNoContent)
	api.expect(t, http.MethodPut, "/api/v1/plans/"+plan.ID+"/exercises/order", `{"exerciseIds":["`+fly.ID+`"]}`, http.StatusBadRequest)

	var plans []PlanResponse
	api.decode(t, api.expect(t, http.MethodGet, "/api/v1/plans", "", http.StatusOK), &plans)
	if plans[0].Name != "Chest Day" || plans[0].Exercises[0].Name != "Cable Fly" {
		t.Fatalf("unexpected plan after edits %+v", plans[0])
	}

	api.expect(t, http.MethodDelete, "/api/v1/exercises/"+bench.ID, "", http.StatusNoContent)
	api.expect(t, http.MethodDelete, "/api/v1/plans/"+plan.ID, "", http.StatusNoContent)
	api.decode(t, api.expect(t, http.MethodGet, "/api/v1/plans", "", http.StatusOK), &plans)
	if len(plans) != 0 {
		t.Fatalf("expected no plans, got %d", len(plans))
	}
}

func TestWorkoutFlow(t *testing.T) {
	api := newTestAPI(t)
	plan := api.seedPlan(t)
	bench := plan.Exercises[0].ID

	var view ActiveWorkoutResponse
	api.decode(t, api.expect(t, http.MethodGet, "/api/v1/workout/active", "", http.StatusOK), &view)
	if view.State != "idle" || view.Session != nil {
		t.Fatalf("expected idle, got %+v", view)
	}
	api.expect(t, http.MethodPost, "/api/v1/workout/active/finish", "", http.StatusNotFound)
	api.expect(t, http.MethodPost, "/api/v1/workout/active/sets", `{"exerciseId":"`+bench+`","setIndex":0}`, http.StatusNotFound)

	api.decode(t, api.expect(t, http.MethodPost, "/api/v1/workout/active", `{"planId":"`+plan.ID+`"}`, http.StatusCreated), &view)
	if view.State != "active_visible" || !view.Visible || view.Progress.Total != 5 {
		t.Fatalf("unexpected view after start %+v", view)
	}
	api.expect(t, http.MethodPost, "/api/v1/workout/active", `{"planId":"`+plan.ID+`"}`, http.StatusConflict)

	api.expect(t, http.MethodPost, "/api/v1/workout/active/finish", "", http.StatusUnprocessableEntity)

	api.decode(t, api.expect(t, http.MethodPost, "/api/v1/workout/active/sets", `{"exerciseId":"`+bench+`","setIndex":1}`, http.StatusOK), &view)
	if view.Progress.Completed != 1 {
		t.Fatalf("expected 1 completed set, got %+v", view.Progress)
	}
	api.expect(t, http.MethodPost, "/api/v1/workout/active/sets", `{"exerciseId":"`+bench+`","setIndex":3}`, http.StatusUnprocessableEntity)
	api.expect(t, http.MethodPost, "/api/v1/workout/active/sets", `{"exerciseId":"`+bench+`"}`, http.StatusBadRequest)

	var vis map[string]bool
	api.decode(t, api.expect(t, http.MethodPost, "/api/v1/workout/active/visibility", "", http.StatusOK), &vis)
	if vis["visible"] {
		t.Fatal("expected an empty body to flip visibility off")
	}
	api.decode(t, api.expect(t, http.MethodPost, "/api/v1/workout/active/visibility", `{"visible":true}`, http.StatusOK), &vis)
	if !vis["visible"] {
		t.Fatal("expected explicit visibility")
	}

	var canceled map[string]bool
	api.decode(t, api.expect(t, http.MethodDelete, "/api/v1/workout/active", "", http.StatusOK), &canceled)
	if canceled["canceled"] {
		t.Fatal("expected cancel without confirm to be declined")
	}

	var record struct {
		WorkoutName string `json:"workoutName"`
		Exercises   []struct {
			Name string `json:"name"`
			Sets int    `json:"sets"`
		} `json:"exercises"`
	}
	api.decode(t, api.expect(t, http.MethodPost, "/api/v1/workout/active/finish", "", http.StatusCreated), &record)
	if record.WorkoutName != "Push Day" || len(record.Exercises) != 1 || record.Exercises[0].Sets != 1 {
		t.Fatalf("unexpected history record %+v", record)
	}

	api.decode(t, api.expect(t, http.MethodGet, "/api/v1/workout/active", "", http.StatusOK), &view)
	if view.State != "idle" {
		t.Fatalf("expected idle after finish, got %s", view.State)
	}

	var history []json.RawMessage
	api.decode(t, api.expect(t, http.MethodGet, "/api/v1/history", "", http.StatusOK), &history)
	if len(history) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(history))
	}
	api.expect(t, http.MethodGet, "/api/v1/history?limit=-1", "", http.StatusBadRequest)
	api.expect(t, http.MethodPost, "/api/v1/history/export", "", http.StatusServiceUnavailable)

	t.Run("confirmed cancel", func(t *testing.T) {
		api.expect(t, http.MethodPost, "/api/v1/workout/active", `{"planId":"`+plan.ID+`"}`, http.StatusCreated)
		api.decode(t, api.expect(t, http.MethodDelete, "/api/v1/workout/active?confirm=true", "", http.StatusOK), &canceled)
		if !canceled["canceled"] {
			t.Fatal("expected confirmed cancel to discard the workout")
		}
		api.expect(t, http.MethodDelete, "/api/v1/workout/active?confirm=true", "", http.StatusNotFound)
	})
}

func TestTimerStream(t *testing.T) {
	api := newTestAPI(t)
	plan := api.seedPlan(t)

	srv := httptest.NewServer(api.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/workout/active/timer", nil)
	req.Header.Set("Authorization", "Bearer "+api.token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET timer: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without a workout, got %d", resp.StatusCode)
	}

	api.expect(t, http.MethodPost, "/api/v1/workout/active", `{"planId":"`+plan.ID+`"}`, http.StatusCreated)

	req, _ = http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/workout/active/timer", nil)
	req.Header.Set("Authorization", "Bearer "+api.token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET timer: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected an event stream, got %q", ct)
	}

	scanner := bufio.NewScanner(resp.Body)
	var events int
	for scanner.Scan() && events < 2 {
		if bytes.HasPrefix(scanner.Bytes(), []byte("event:elapsed")) {
			events++
		}
	}
	if events < 2 {
		t.Fatalf("expected at least 2 elapsed events, got %d", events)
	}

	api.expect(t, http.MethodDelete, "/api/v1/workout/active?confirm=true", "", http.StatusOK)
	var sawEnd bool
	for scanner.Scan() {
		if bytes.HasPrefix(scanner.Bytes(), []byte("event:end")) {
			sawEnd = true
			break
		}
	}
	if !sawEnd {
		t.Fatal("expected an end event after the workout was canceled")
	}
}
