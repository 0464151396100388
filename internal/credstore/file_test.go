package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RS-Eagle/krema-admin-go/internal/models"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	creds := Credentials{
		Token:         "tok-abc",
		User:          models.User{ID: 1, Name: "Demo", Email: "demo@krema.app"},
		ActiveSalonID: 42,
	}
	if err := store.Save(creds); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !ok {
		t.Fatal("expected stored credentials")
	}
	if got != creds {
		t.Fatalf("expected %+v, got %+v", creds, got)
	}
}

func TestFileStoreLoadEmpty(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if ok {
		t.Fatal("expected no credentials in an empty store")
	}
}

func TestFileStoreClear(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	if err := store.Save(Credentials{Token: "tok"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "token")); !os.IsNotExist(err) {
		t.Fatal("expected token file to be removed")
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatal("expected store to be empty after clear")
	}
	// Clearing twice is a no-op.
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear failed: %v", err)
	}
}

func TestFileStoreCorruptProfile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	if err := store.Save(Credentials{Token: "tok", User: models.User{ID: 1}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "user.json"), []byte("{broken"), 0600); err != nil {
		t.Fatalf("corrupt write failed: %v", err)
	}
	if _, ok, err := store.Load(); err != nil || ok {
		t.Fatalf("corrupt profile must read as empty store, got ok=%t err=%v", ok, err)
	}
}

func TestNewUnknownDriver(t *testing.T) {
	if _, err := New("s3", ""); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
