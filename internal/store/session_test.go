package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rsawyer/homewarden/internal/database"
)

func setupAuthTestDB(t *testing.T) (*sql.DB, *UserStore, *SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, NewUserStore(db), NewSessionStore(db)
}

func TestUserCreateAndLookup(t *testing.T) {
	_, us, _ := setupAuthTestDB(t)

	u, err := us.Create("sam", "Sam", "$2a$10$fakehash", "admin")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Username != "sam" || u.Role != "admin" {
		t.Errorf("user = %+v", u)
	}

	got, err := us.GetByUsername("sam")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Errorf("got = %v, want user %d", got, u.ID)
	}

	missing, err := us.GetByUsername("nobody")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown username")
	}

	n, err := us.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestSessionLifecycle(t *testing.T) {
	_, us, ss := setupAuthTestDB(t)

	u, err := us.Create("sam", "Sam", "hash", "member")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	sess, err := ss.Create(u.ID, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.UserID != u.ID {
		t.Errorf("got = %v", got)
	}

	if err := ss.Delete(sess.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionExpirySweep(t *testing.T) {
	_, us, ss := setupAuthTestDB(t)

	u, err := us.Create("sam", "Sam", "hash", "member")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	expired, err := ss.Create(u.ID, -time.Minute)
	if err != nil {
		t.Fatalf("create expired session: %v", err)
	}
	live, err := ss.Create(u.ID, time.Hour)
	if err != nil {
		t.Fatalf("create live session: %v", err)
	}

	// Expired tokens are invisible even before the sweep runs.
	if got, _ := ss.GetByToken(expired.Token); got != nil {
		t.Error("expired session should not resolve")
	}

	n, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("swept %d sessions, want 1", n)
	}

	if got, _ := ss.GetByToken(live.Token); got == nil {
		t.Error("live session should survive the sweep")
	}
}

func TestSettings(t *testing.T) {
	db, _, _ := setupAuthTestDB(t)
	st := NewSettingsStore(db)

	// Seeded by migration.
	v, err := st.Get("backup_enabled")
	if err != nil {
		t.Fatalf("get seeded setting: %v", err)
	}
	if v != "false" {
		t.Errorf("backup_enabled = %q, want false", v)
	}

	if err := st.Set("backup_enabled", "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := st.Get("backup_enabled"); v != "true" {
		t.Errorf("after set, value = %q", v)
	}

	all, err := st.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) == 0 {
		t.Error("expected seeded settings")
	}
}
