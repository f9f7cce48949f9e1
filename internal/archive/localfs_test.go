package archive

import (
	"context"
	"testing"
)

func TestLocalFS_ImplementsStore(t *testing.T) {
	var _ Store = (*LocalFS)(nil)
	var _ Store = (*S3Store)(nil)
}

func TestLocalFS_PutGet(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	ctx := context.Background()
	data := []byte(`{"run_id":"abc"}`)

	if err := fs.Put(ctx, "runs/abc.json", data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := fs.Get(ctx, "runs/abc.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestLocalFS_Exists(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	exists, _ := fs.Exists(ctx, "runs/missing.json")
	if exists {
		t.Error("expected false for missing key")
	}

	fs.Put(ctx, "runs/here.json", []byte("{}"))
	exists, _ = fs.Exists(ctx, "runs/here.json")
	if !exists {
		t.Error("expected true for stored key")
	}
}

func TestLocalFS_List(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Put(ctx, "runs/a.json", []byte("a"))
	fs.Put(ctx, "runs/b.json", []byte("b"))
	fs.Put(ctx, "other/c.json", []byte("c"))

	keys, err := fs.List(ctx, "runs")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2: %v", len(keys), keys)
	}
	for _, k := range keys {
		if k != "runs/a.json" && k != "runs/b.json" {
			t.Errorf("unexpected key %q", k)
		}
	}
}

func TestLocalFS_ListEmptyPrefix(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())

	keys, err := fs.List(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("got %d keys, want 0", len(keys))
	}
}

func TestLocalFS_Delete(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Put(ctx, "runs/gone.json", []byte("{}"))
	if err := fs.Delete(ctx, "runs/gone.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	exists, _ := fs.Exists(ctx, "runs/gone.json")
	if exists {
		t.Error("key still exists after delete")
	}
}
