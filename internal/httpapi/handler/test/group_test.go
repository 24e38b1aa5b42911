package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/catudon1276/Games-Plaza/internal/httpapi"
	"github.com/catudon1276/Games-Plaza/internal/httpapi/handler"
	"github.com/catudon1276/Games-Plaza/internal/werewolf"
)

var testSecret = []byte("handler-test-secret")

func setupTestRouter(t *testing.T) (http.Handler, *werewolf.Hub) {
	t.Helper()
	games := werewolf.NewHub(werewolf.Config{Seed: 11}, werewolf.NopSink{}, nil)
	t.Cleanup(games.Close)

	h := handler.NewGroupHandler(games, testSecret)
	requirePlayer := httpapi.RequirePlayer(testSecret)

	r := chi.NewRouter()
	r.Post("/api/groups", h.CreateGroup)
	r.Get("/api/groups/{group_id}", h.GetGroup)
	r.Post("/api/groups/{group_id}/join", h.JoinGroup)
	r.With(requirePlayer).Post("/api/groups/{group_id}/start", h.StartGame)
	r.With(requirePlayer).Post("/api/groups/{group_id}/commands", h.SubmitCommand)
	r.With(requirePlayer).Delete("/api/groups/{group_id}", h.EndGroup)
	return r, games
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func createGroup(t *testing.T, router http.Handler, groupID, passphrase string) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/groups", "", map[string]interface{}{
		"group_id":   groupID,
		"passphrase": passphrase,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create group: expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func joinGroup(t *testing.T, router http.Handler, groupID, name, passphrase string) (playerID, token string) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/groups/"+groupID+"/join", "", map[string]interface{}{
		"display_name": name,
		"passphrase":   passphrase,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("join group: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	playerID, _ = body["player_id"].(string)
	token, _ = body["token"].(string)
	if playerID == "" || token == "" {
		t.Fatalf("join response missing player_id or token: %v", body)
	}
	return playerID, token
}

func TestCreateGroup(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, _ := setupTestRouter(t)
		w := doJSON(t, router, http.MethodPost, "/api/groups", "", map[string]interface{}{"group_id": "g1"})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		body := decodeBody(t, w)
		if body["phase"] != "waiting" {
			t.Errorf("expected waiting phase, got %v", body["phase"])
		}
	})

	t.Run("duplicate conflicts", func(t *testing.T) {
		router, _ := setupTestRouter(t)
		createGroup(t, router, "g1", "")
		w := doJSON(t, router, http.MethodPost, "/api/groups", "", map[string]interface{}{"group_id": "g1"})
		if w.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", w.Code)
		}
	})

	t.Run("invalid group id", func(t *testing.T) {
		router, _ := setupTestRouter(t)
		for _, id := range []string{"", "has space", "way/too?weird"} {
			w := doJSON(t, router, http.MethodPost, "/api/groups", "", map[string]interface{}{"group_id": id})
			if w.Code != http.StatusBadRequest {
				t.Errorf("group_id %q: expected 400, got %d", id, w.Code)
			}
		}
	})
}

func TestJoinGroup(t *testing.T) {
	t.Run("success issues token", func(t *testing.T) {
		router, games := setupTestRouter(t)
		createGroup(t, router, "g1", "")
		joinGroup(t, router, "g1", "Alice", "")

		session, err := games.Get("g1")
		if err != nil {
			t.Fatalf("session not found: %v", err)
		}
		if got := session.Status().AliveCount; got != 1 {
			t.Errorf("expected 1 player, got %d", got)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		router, _ := setupTestRouter(t)
		w := doJSON(t, router, http.MethodPost, "/api/groups/nope/join", "", map[string]interface{}{"display_name": "Alice"})
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("missing display name", func(t *testing.T) {
		router, _ := setupTestRouter(t)
		createGroup(t, router, "g1", "")
		w := doJSON(t, router, http.MethodPost, "/api/groups/g1/join", "", map[string]interface{}{"display_name": "   "})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("passphrase gate", func(t *testing.T) {
		router, _ := setupTestRouter(t)
		createGroup(t, router, "g1", "sekrit")

		w := doJSON(t, router, http.MethodPost, "/api/groups/g1/join", "", map[string]interface{}{
			"display_name": "Mallory",
			"passphrase":   "wrong",
		})
		if w.Code != http.StatusForbidden {
			t.Errorf("wrong passphrase: expected 403, got %d", w.Code)
		}

		joinGroup(t, router, "g1", "Alice", "sekrit")
	})
}

func TestGetGroup(t *testing.T) {
	router, _ := setupTestRouter(t)
	createGroup(t, router, "g1", "")
	joinGroup(t, router, "g1", "Alice", "")
	joinGroup(t, router, "g1", "Bob", "")

	w := doJSON(t, router, http.MethodGet, "/api/groups/g1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["phase"] != "waiting" {
		t.Errorf("expected waiting phase, got %v", body["phase"])
	}
	if body["alive_count"] != float64(2) {
		t.Errorf("expected 2 players, got %v", body["alive_count"])
	}

	w = doJSON(t, router, http.MethodGet, "/api/groups/missing", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestStartGame(t *testing.T) {
	router, games := setupTestRouter(t)
	createGroup(t, router, "g1", "")
	_, tokenAlice := joinGroup(t, router, "g1", "Alice", "")
	joinGroup(t, router, "g1", "Bob", "")

	// Too few players
	w := doJSON(t, router, http.MethodPost, "/api/groups/g1/start", tokenAlice, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 with 2 players, got %d", w.Code)
	}

	joinGroup(t, router, "g1", "Carol", "")

	// No token
	w = doJSON(t, router, http.MethodPost, "/api/groups/g1/start", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/groups/g1/start", tokenAlice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	session, err := games.Get("g1")
	if err != nil {
		t.Fatalf("session not found: %v", err)
	}
	if session.Phase() != werewolf.PhaseDay {
		t.Errorf("expected day phase after start, got %s", session.Phase())
	}
}

func TestSubmitCommand(t *testing.T) {
	router, _ := setupTestRouter(t)
	createGroup(t, router, "g1", "")
	_, tokenAlice := joinGroup(t, router, "g1", "Alice", "")

	// Voting before the game starts is a rule rejection, not a protocol error
	w := doJSON(t, router, http.MethodPost, "/api/groups/g1/commands", tokenAlice, map[string]interface{}{
		"verb":   "vote",
		"target": "Bob",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != false {
		t.Errorf("expected success=false, got %v", body)
	}

	// Token for another group is rejected before the engine sees the verb
	createGroup(t, router, "g2", "")
	w = doJSON(t, router, http.MethodPost, "/api/groups/g2/commands", tokenAlice, map[string]interface{}{"verb": "vote"})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for cross-group token, got %d", w.Code)
	}
}

func TestEndGroup(t *testing.T) {
	router, games := setupTestRouter(t)
	createGroup(t, router, "g1", "")
	_, token := joinGroup(t, router, "g1", "Alice", "")

	w := doJSON(t, router, http.MethodDelete, "/api/groups/g1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if _, err := games.Get("g1"); err == nil {
		t.Error("expected session to be removed")
	}
}
