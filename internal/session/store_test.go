package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"gemchat-backend/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(time.Hour)
	t.Cleanup(s.Close)
	return s
}

func TestCreate_StartsEmptyWithDefaults(t *testing.T) {
	store := newTestStore(t)

	sess := store.Create()
	if sess.ID == uuid.Nil {
		t.Fatal("Expected non-nil session ID")
	}
	if len(sess.Turns) != 0 {
		t.Errorf("Expected empty history, got %d turns", len(sess.Turns))
	}
	if sess.Settings.ModelName != models.DefaultModelName {
		t.Errorf("Expected default model %q, got %q", models.DefaultModelName, sess.Settings.ModelName)
	}
	if sess.Settings.Temperature != models.DefaultTemperature {
		t.Errorf("Expected default temperature %v, got %v", float32(models.DefaultTemperature), sess.Settings.Temperature)
	}
}

func TestAppend_PreservesInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create()

	const n = 5
	for i := 0; i < n; i++ {
		user := models.ChatTurn{Role: models.RoleUser, Text: fmt.Sprintf("question %d", i)}
		assistant := models.ChatTurn{Role: models.RoleAssistant, Text: fmt.Sprintf("answer %d", i)}
		if err := store.Append(sess.ID, user); err != nil {
			t.Fatalf("Append user turn: %v", err)
		}
		if err := store.Append(sess.ID, assistant); err != nil {
			t.Fatalf("Append assistant turn: %v", err)
		}
	}

	turns, err := store.Turns(sess.ID)
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}

	// N successful submissions leave exactly 2N turns in user/assistant pairs
	if len(turns) != 2*n {
		t.Fatalf("Expected %d turns, got %d", 2*n, len(turns))
	}
	for i, turn := range turns {
		wantRole := models.RoleUser
		if i%2 == 1 {
			wantRole = models.RoleAssistant
		}
		if turn.Role != wantRole {
			t.Errorf("Turn %d: expected role %q, got %q", i, wantRole, turn.Role)
		}
	}
	if turns[0].Text != "question 0" || turns[len(turns)-1].Text != fmt.Sprintf("answer %d", n-1) {
		t.Error("Turns not in insertion order")
	}
}

func TestTurns_ReturnsCopy(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create()

	store.Append(sess.ID, models.ChatTurn{Role: models.RoleUser, Text: "original"})

	turns, _ := store.Turns(sess.ID)
	turns[0].Text = "mutated"

	again, _ := store.Turns(sess.ID)
	if again[0].Text != "original" {
		t.Error("Mutating the returned slice must not affect stored turns")
	}
}

func TestClear_EmptiesHistory(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create()

	store.Append(sess.ID, models.ChatTurn{Role: models.RoleUser, Text: "hello"})
	if err := store.Clear(sess.ID); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	turns, _ := store.Turns(sess.ID)
	if len(turns) != 0 {
		t.Errorf("Expected empty history after clear, got %d turns", len(turns))
	}

	// Clearing an already empty session is a no-op
	if err := store.Clear(sess.ID); err != nil {
		t.Errorf("Clear on empty session: %v", err)
	}
}

func TestGet_UnknownSession(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get(uuid.New()); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.Append(uuid.New(), models.ChatTurn{Role: models.RoleUser, Text: "x"}); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound on append, got %v", err)
	}
}

func TestSetSettings_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create()

	updated := Settings{
		ModelName:       "gemini-1.5-pro-latest",
		Temperature:     1.2,
		MaxOutputTokens: 4096,
		APIKeyOverride:  "ui-key",
	}
	if err := store.SetSettings(sess.ID, updated); err != nil {
		t.Fatalf("SetSettings: %v", err)
	}

	got, err := store.Settings(sess.ID)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if got != updated {
		t.Errorf("Expected %+v, got %+v", updated, got)
	}
}

func TestSweep_DropsIdleSessions(t *testing.T) {
	store := newTestStore(t)
	stale := store.Create()
	fresh := store.Create()

	// Age the stale session past the TTL, keep the fresh one current
	store.mu.Lock()
	store.sessions[stale.ID].LastActive = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	store.sweep(time.Now())

	if _, err := store.Get(stale.ID); err != ErrNotFound {
		t.Error("Expected stale session to be swept")
	}
	if _, err := store.Get(fresh.ID); err != nil {
		t.Errorf("Expected fresh session to survive sweep: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 live session, got %d", store.Len())
	}
}

func TestDelete_RemovesSession(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create()

	if err := store.Delete(sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(sess.ID); err != ErrNotFound {
		t.Error("Expected ErrNotFound after delete")
	}
}
