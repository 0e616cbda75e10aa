package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestSave_ContentAddressed(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	data := []byte("fake jpeg bytes")
	name, err := store.Save(data, ".jpg")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	sum := sha256.Sum256(data)
	if want := hex.EncodeToString(sum[:]) + ".jpg"; name != want {
		t.Errorf("name = %q, want %q", name, want)
	}

	got, err := os.ReadFile(store.Path(name))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != string(data) {
		t.Error("stored bytes differ from input")
	}
}

func TestSave_Idempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	data := []byte("poster")
	first, err := store.Save(data, ".png")
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := store.Save(data, ".png")
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if first != second {
		t.Errorf("same bytes produced different names: %q vs %q", first, second)
	}

	// Extension casing must not split one asset in two.
	upper, err := store.Save(data, ".PNG")
	if err != nil {
		t.Fatalf("uppercase save: %v", err)
	}
	if upper != first {
		t.Errorf("extension casing changed the name: %q vs %q", upper, first)
	}

	entries, err := os.ReadDir(store.Path(""))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected a single file, found %d", len(entries))
	}
}

func TestSaveFromURL(t *testing.T) {
	body := []byte("downloaded poster")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(body)
	}))
	defer srv.Close()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	name, err := store.SaveFromURL(context.Background(), srv.URL+"/posters/jaguar.jpg")
	if err != nil {
		t.Fatalf("save from url: %v", err)
	}

	sum := sha256.Sum256(body)
	if want := hex.EncodeToString(sum[:]) + ".jpg"; name != want {
		t.Errorf("name = %q, want %q", name, want)
	}
}

func TestSaveFromURL_RetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("eventually fine"))
	}))
	defer srv.Close()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.SaveFromURL(context.Background(), srv.URL+"/a.gif"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls != 2 {
		t.Errorf("server hit %d times, want 2", calls)
	}
}

func TestSaveFromURL_GivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.SaveFromURL(context.Background(), srv.URL+"/missing.jpg"); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	name, err := store.Save([]byte("x"), ".jpg")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(name); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(name); !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("deleting a missing asset: got %v, want ErrAssetNotFound", err)
	}
}
