package assets

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestManagerLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "can.obj"), []byte("v 0 0 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	m := NewManager()
	defer m.Close()
	if err := m.AddDir(dir); err != nil {
		t.Fatalf("failed to add dir: %v", err)
	}

	data, err := m.Load("can.obj")
	if err != nil {
		t.Fatalf("failed to load file: %v", err)
	}
	if string(data) != "v 0 0 0\n" {
		t.Errorf("unexpected file contents: %q", data)
	}

	if _, err := m.Load("missing.obj"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestManagerSearchOrder(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	if err := os.WriteFile(filepath.Join(low, "tex.png"), []byte("low"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(high, "tex.png"), []byte("high"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	defer m.Close()
	if err := m.AddDir(low); err != nil {
		t.Fatal(err)
	}
	if err := m.AddDir(high); err != nil {
		t.Fatal(err)
	}

	// Last added directory wins
	data, err := m.Load("tex.png")
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if string(data) != "high" {
		t.Errorf("expected contents from last added dir, got %q", data)
	}
}

func TestManagerBackslashPaths(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "textures")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "label.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	defer m.Close()
	if err := m.AddDir(dir); err != nil {
		t.Fatal(err)
	}

	data, err := m.Load(`textures\label.png`)
	if err != nil {
		t.Fatalf("failed to load backslash path: %v", err)
	}
	if string(data) != "png" {
		t.Errorf("unexpected contents: %q", data)
	}
}

func TestAddDirInvalid(t *testing.T) {
	m := NewManager()
	defer m.Close()

	if err := m.AddDir("/nonexistent/assets"); err == nil {
		t.Error("expected error adding missing directory, got nil")
	}

	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := m.AddDir(file); err == nil {
		t.Error("expected error adding a plain file as directory, got nil")
	}
}

func TestCache(t *testing.T) {
	c := NewCache()

	if _, ok := c.Get("a"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Set("a", []byte("data"))
	data, ok := c.Get("a")
	if !ok || string(data) != "data" {
		t.Errorf("expected cached data, got %q ok=%v", data, ok)
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}

	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after clear")
	}
}

// Model loading fetches material libraries and textures from separate
// goroutines, so Load must tolerate concurrent callers hitting the
// same cached name. Run with -race.
func TestManagerConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "label.mtl"), []byte("newmtl label\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	defer m.Close()
	if err := m.AddDir(dir); err != nil {
		t.Fatal(err)
	}

	// Warm the cache so every goroutine takes the hit path.
	if _, err := m.Load("label.mtl"); err != nil {
		t.Fatalf("warm-up load failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := m.Load("label.mtl"); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent load failed: %v", err)
	}

	hits, _ := m.cache.Stats()
	if want := int64(800); hits != want {
		t.Errorf("expected %d cache hits, got %d", want, hits)
	}
}

func TestManagerCaching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "can.mtl")
	if err := os.WriteFile(path, []byte("newmtl label\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	defer m.Close()
	if err := m.AddDir(dir); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Load("can.mtl"); err != nil {
		t.Fatalf("first load failed: %v", err)
	}

	// Remove the backing file; the second load must come from cache.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	data, err := m.Load("can.mtl")
	if err != nil {
		t.Fatalf("cached load failed: %v", err)
	}
	if string(data) != "newmtl label\n" {
		t.Errorf("unexpected cached contents: %q", data)
	}
}
