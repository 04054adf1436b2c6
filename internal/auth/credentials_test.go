package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func newFileStore(t *testing.T) *FileTokenStore {
	t.Helper()
	store, err := NewFileTokenStore(filepath.Join(t.TempDir(), "creds"))
	if err != nil {
		t.Fatalf("NewFileTokenStore: %v", err)
	}
	return store
}

func TestTokenStores(t *testing.T) {
	stores := map[string]func(t *testing.T) TokenStore{
		"file":      func(t *testing.T) TokenStore { return newFileStore(t) },
		"in-memory": func(t *testing.T) TokenStore { return NewInMemoryTokenStore() },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			email := "admin@example.com"

			_, err := store.Load(email)
			if err == nil || !strings.Contains(err.Error(), "no credentials found") {
				t.Fatalf("Load before Save error = %v, want no credentials found", err)
			}

			token := &oauth2.Token{
				AccessToken:  "access-1",
				RefreshToken: "refresh-1",
				TokenType:    "Bearer",
				Expiry:       time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			}
			if err := store.Save(email, token); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if err := store.Save(email, &oauth2.Token{AccessToken: "access-2", RefreshToken: "refresh-1"}); err != nil {
				t.Fatalf("Save overwrite: %v", err)
			}

			loaded, err := store.Load(email)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if loaded.AccessToken != "access-2" || loaded.RefreshToken != "refresh-1" {
				t.Errorf("loaded token = %+v, want overwritten access token", loaded)
			}
		})
	}
}

func TestFileTokenStore_TokenPathUsesHash(t *testing.T) {
	store := newFileStore(t)

	filename := filepath.Base(store.tokenPath("admin@example.com"))
	if len(filename) != 64+len(".json") {
		t.Errorf("expected hex sha256 filename, got %s", filename)
	}
	if store.tokenPath("admin@example.com") == store.tokenPath("other@example.com") {
		t.Error("expected different paths for different emails")
	}
	if strings.Contains(store.tokenPath("../../etc/passwd"), "..") {
		t.Error("token path must not carry the raw email")
	}
}

func TestFileTokenStore_FilePermissions(t *testing.T) {
	store := newFileStore(t)
	if err := store.Save("perm@example.com", &oauth2.Token{AccessToken: "x"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(store.tokenPath("perm@example.com"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected file permission 0600, got %04o", perm)
	}
}

func TestFileTokenStore_OverwriteLeavesNoTempFiles(t *testing.T) {
	store := newFileStore(t)
	for _, access := range []string{"first", "second"} {
		if err := store.Save("admin@example.com", &oauth2.Token{AccessToken: access}); err != nil {
			t.Fatalf("Save(%s): %v", access, err)
		}
	}

	got, err := store.Load("admin@example.com")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.AccessToken != "second" {
		t.Errorf("access token = %q, want second", got.AccessToken)
	}
	entries, err := os.ReadDir(store.dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("credentials dir has %d entries, want 1", len(entries))
	}
}

func TestInMemoryTokenStore_ReturnsCopies(t *testing.T) {
	store := NewInMemoryTokenStore()
	token := &oauth2.Token{AccessToken: "original"}
	if err := store.Save("a@example.com", token); err != nil {
		t.Fatalf("Save: %v", err)
	}
	token.AccessToken = "mutated"

	loaded, _ := store.Load("a@example.com")
	if loaded.AccessToken != "original" {
		t.Errorf("stored token changed through caller's pointer: %q", loaded.AccessToken)
	}
	loaded.AccessToken = "mutated-again"
	again, _ := store.Load("a@example.com")
	if again.AccessToken != "original" {
		t.Errorf("stored token changed through loaded pointer: %q", again.AccessToken)
	}
}

func TestInMemoryTokenStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryTokenStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Save("c@example.com", &oauth2.Token{AccessToken: fmt.Sprintf("token-%d", i)}); err != nil {
				t.Errorf("concurrent Save: %v", err)
			}
			_, _ = store.Load("c@example.com")
		}()
	}
	wg.Wait()

	loaded, err := store.Load("c@example.com")
	if err != nil || loaded.AccessToken == "" {
		t.Fatalf("Load after concurrent writes = %v, %v", loaded, err)
	}
}

func TestPersistingTokenSource_PersistsOnChange(t *testing.T) {
	store := NewInMemoryTokenStore()
	email := "refresh@example.com"
	if err := store.Save(email, &oauth2.Token{AccessToken: "v1"}); err != nil {
		t.Fatalf("Save initial: %v", err)
	}

	pts := &PersistingTokenSource{
		Base:      oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "v2", Expiry: time.Now().Add(time.Hour)}),
		Store:     store,
		UserEmail: email,
	}

	for i := 0; i < 2; i++ {
		got, err := pts.Token()
		if err != nil {
			t.Fatalf("Token: %v", err)
		}
		if got.AccessToken != "v2" {
			t.Errorf("call %d: AccessToken = %s, want v2", i, got.AccessToken)
		}
	}

	loaded, err := store.Load(email)
	if err != nil {
		t.Fatalf("Load after refresh: %v", err)
	}
	if loaded.AccessToken != "v2" {
		t.Errorf("persisted token should be v2, got %s", loaded.AccessToken)
	}
}
