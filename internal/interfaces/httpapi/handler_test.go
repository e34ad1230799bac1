package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/motosense/backend/internal/infrastructure/repository/memory"
	"github.com/motosense/backend/internal/platform/cache"
	"github.com/motosense/backend/internal/platform/resilience"
	"github.com/motosense/backend/internal/usecase"
)

const (
	testJobToken   = "job-token"
	testAdminToken = "admin-token"
)

type staticFetcher struct {
	payload []byte
}

func (f *staticFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	return f.payload, nil
}

type testEnv struct {
	server   *httptest.Server
	raceRepo *memory.RaceRepository
}

func newTestEnv(t *testing.T, fetchPayload []byte) *testEnv {
	t.Helper()

	raceRepo := memory.NewRaceRepository(memory.SeedRaces())
	riderRepo := memory.NewRiderRepository(memory.SeedRiders())
	predictionRepo := memory.NewPredictionRepository()
	resultRepo := memory.NewResultRepository()
	scoreRepo := memory.NewScoringRepository()
	profileRepo := memory.NewProfileRepository()
	syncRepo := memory.NewDataSyncRepository(memory.SeedSources("https://feeds.example.com"))

	achievements := usecase.NewAchievementService(profileRepo, scoreRepo, raceRepo, nil)
	scorer := usecase.NewScoringService(predictionRepo, resultRepo, scoreRepo, raceRepo, achievements, usecase.ScoringConfig{}, nil)
	sync := usecase.NewSyncService(
		syncRepo, raceRepo, riderRepo, resultRepo,
		&staticFetcher{payload: fetchPayload},
		resilience.NewWindowLimiter(60, time.Minute),
		scorer, nil, nil, usecase.SyncConfig{}, nil,
	)
	rounds := usecase.NewRoundService(raceRepo, usecase.RoundConfig{}, nil)
	predictions := usecase.NewPredictionService(predictionRepo, raceRepo, scoreRepo, nil, usecase.PredictionConfig{}, nil)
	catalog := usecase.NewCatalogService(raceRepo, riderRepo, nil)
	leaderboard := usecase.NewLeaderboardService(profileRepo, cache.NewStore(time.Minute), nil)

	handler := NewHandler(sync, rounds, predictions, catalog, achievements, leaderboard, nil)
	router := NewRouter(handler, RouterConfig{
		InternalJobToken: testJobToken,
		AdminToken:       testAdminToken,
	}, nil)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, raceRepo: raceRepo}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	var decoded map[string]any
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", string(raw), err)
		}
	}
	return resp.StatusCode, decoded
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.do(t, http.MethodGet, "/healthz", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if success, _ := body["success"].(bool); !success {
		t.Fatalf("expected success envelope, got %v", body)
	}
}

func TestSyncRequiresBearerToken(t *testing.T) {
	env := newTestEnv(t, nil)

	status, _ := env.do(t, http.MethodPost, "/internal/sync/"+memory.SourceIDSchedule, "", "")
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	status, _ = env.do(t, http.MethodPost, "/internal/sync/"+memory.SourceIDSchedule, "wrong-token", "")
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", status)
	}
}

func TestSyncUnknownSourceReturns404(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.do(t, http.MethodPost, "/internal/sync/no-such-source", testJobToken, "")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Fatalf("expected error message, got %v", body)
	}
	if ts, _ := body["timestamp"].(string); ts == "" {
		t.Fatalf("expected timestamp in error envelope")
	}
}

func TestScheduleSyncInsertsRaces(t *testing.T) {
	payload := `[{"id":"gp-italy-2026","series":"motogp","round":4,"name":"Italian Grand Prix","venue":"Mugello Circuit","scheduled_at":"2026-05-31T12:00:00Z"}]`
	env := newTestEnv(t, []byte(payload))

	status, body := env.do(t, http.MethodPost, "/internal/sync/"+memory.SourceIDSchedule, testJobToken, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}

	data, _ := body["data"].(map[string]any)
	if success, _ := data["success"].(bool); !success {
		t.Fatalf("expected successful sync result, got %v", data)
	}
	if inserted, _ := data["records_inserted"].(float64); inserted != 1 {
		t.Fatalf("expected 1 inserted record, got %v", data["records_inserted"])
	}

	if _, found, err := env.raceRepo.GetByID(context.Background(), "gp-italy-2026"); err != nil || !found {
		t.Fatalf("expected synced race to be stored, found=%v err=%v", found, err)
	}

	changes, _ := data["changes"].([]any)
	if len(changes) != 1 {
		t.Fatalf("expected the detected change on the sync result, got %v", data["changes"])
	}
}

func TestEntityChangesEndpoint(t *testing.T) {
	payload := `[{"id":"gp-italy-2026","series":"motogp","round":4,"name":"Italian Grand Prix","venue":"Mugello Circuit","scheduled_at":"2026-05-31T12:00:00Z"}]`
	env := newTestEnv(t, []byte(payload))

	if status, _ := env.do(t, http.MethodGet, "/internal/changes/race/gp-italy-2026", "", ""); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	if status, body := env.do(t, http.MethodPost, "/internal/sync/"+memory.SourceIDSchedule, testJobToken, ""); status != http.StatusOK {
		t.Fatalf("expected 200 from sync, got %d: %v", status, body)
	}

	status, body := env.do(t, http.MethodGet, "/internal/changes/race/gp-italy-2026", testJobToken, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	items, _ := body["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one recorded change, got %v", body["data"])
	}
	first, _ := items[0].(map[string]any)
	if got, _ := first["type"].(string); got != "created" {
		t.Fatalf("unexpected change type: got=%q want=%q", got, "created")
	}
	if got, _ := first["entity_id"].(string); got != "gp-italy-2026" {
		t.Fatalf("unexpected entity id: got=%q", got)
	}

	if status, _ := env.do(t, http.MethodGet, "/internal/changes/team/gp-italy-2026", testJobToken, ""); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown entity type, got %d", status)
	}
}

func TestPredictionLifecycleOverOpenRound(t *testing.T) {
	env := newTestEnv(t, nil)

	status, _ := env.do(t, http.MethodPost, "/admin/rounds/progress", testAdminToken, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 progressing into first round, got %d", status)
	}

	status, body := env.do(t, http.MethodGet, "/v1/races/open", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected open race, got %d", status)
	}
	data, _ := body["data"].(map[string]any)
	openRaceID, _ := data["id"].(string)
	if openRaceID == "" {
		t.Fatalf("expected open race id, got %v", data)
	}

	submission := `{"user_id":"user-a","race_id":"` + openRaceID + `","picks":["rider-fq20","rider-pa63","rider-mm93","rider-jm89","rider-eb23"],"confidence":4}`
	status, body = env.do(t, http.MethodPost, "/v1/predictions", "", submission)
	if status != http.StatusOK {
		t.Fatalf("expected 200 submitting prediction, got %d: %v", status, body)
	}

	status, _ = env.do(t, http.MethodPost, "/v1/predictions", "", submission)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate submission, got %d", status)
	}

	status, body = env.do(t, http.MethodGet, "/v1/predictions/"+openRaceID+"?user_id=user-a", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 reading prediction, got %d", status)
	}
	data, _ = body["data"].(map[string]any)
	if got, _ := data["confidence"].(float64); got != 4 {
		t.Fatalf("expected confidence 4, got %v", data["confidence"])
	}
}

func TestSubmitPredictionValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	status, _ := env.do(t, http.MethodPost, "/v1/predictions", "", `{"user_id":"user-a","race_id":"sim-round-1","picks":["only-one"]}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for short pick list, got %d", status)
	}

	status, _ = env.do(t, http.MethodPost, "/v1/predictions", "", `{"user_id":"user-a","unknown_field":true}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", status)
	}
}

func TestRoundAdminEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	status, _ := env.do(t, http.MethodPost, "/admin/rounds/digress", testAdminToken, "")
	if status != http.StatusConflict {
		t.Fatalf("expected 409 digressing with no open round, got %d", status)
	}

	status, body := env.do(t, http.MethodPost, "/admin/rounds/progress", testAdminToken, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	data, _ := body["data"].(map[string]any)
	if opened, _ := data["opened_race_id"].(string); opened != "sim-round-1" {
		t.Fatalf("expected sim-round-1 opened, got %v", data)
	}

	status, body = env.do(t, http.MethodPost, "/admin/rounds/reset", testAdminToken, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 resetting, got %d", status)
	}
	data, _ = body["data"].(map[string]any)
	if count, _ := data["reset_count"].(float64); count < 1 {
		t.Fatalf("expected at least one reset race, got %v", data)
	}
}

func TestCatalogAndLeaderboardEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.do(t, http.MethodGet, "/v1/races", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if races, _ := body["data"].([]any); len(races) == 0 {
		t.Fatalf("expected seeded races, got %v", body["data"])
	}

	status, body = env.do(t, http.MethodGet, "/v1/riders?series=motogp", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if riders, _ := body["data"].([]any); len(riders) == 0 {
		t.Fatalf("expected seeded riders, got %v", body["data"])
	}

	status, _ = env.do(t, http.MethodGet, "/v1/riders?series=formula1", "", "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown series, got %d", status)
	}

	status, body = env.do(t, http.MethodGet, "/v1/leaderboard", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if _, ok := body["data"].([]any); !ok {
		t.Fatalf("expected list payload, got %v", body["data"])
	}

	status, body = env.do(t, http.MethodGet, "/v1/profiles/user-zz", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 for unknown profile, got %d", status)
	}
	data, _ := body["data"].(map[string]any)
	if points, _ := data["total_points"].(float64); points != 0 {
		t.Fatalf("expected zeroed profile, got %v", data)
	}
}
