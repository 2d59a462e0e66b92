package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorePutGetList(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	files := map[string]string{
		"analysis.json":                `{"visual":{}}`,
		"react/GeneratedComponent.tsx": "export default GeneratedComponent;",
		"/vue/GeneratedComponent.vue":  "<template></template>",
	}
	for p, content := range files {
		if err := store.Put(ctx, "run-1", p, []byte(content)); err != nil {
			t.Fatalf("Put(%s) error = %v", p, err)
		}
	}

	got, err := store.Get(ctx, "run-1", "react/GeneratedComponent.tsx")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "export default GeneratedComponent;" {
		t.Errorf("Unexpected content %q", got)
	}

	paths, err := store.List(ctx, "run-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"analysis.json", "react/GeneratedComponent.tsx", "vue/GeneratedComponent.vue"}
	if len(paths) != len(want) {
		t.Fatalf("List() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestFileStoreNotFound(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	_, err := store.Get(context.Background(), "run-1", "missing.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	paths, err := store.List(context.Background(), "nope")
	if err != nil || len(paths) != 0 {
		t.Errorf("Expected empty list for unknown run, got %v, %v", paths, err)
	}
}

func TestFileStoreStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, _ := NewFileStore(filepath.Join(root, "out"))

	if err := store.Put(context.Background(), "run-1", "../../escape.txt", []byte("x")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.txt")); err == nil {
		t.Error("Artifact escaped the store root")
	}
	if _, err := os.Stat(filepath.Join(root, "out", "run-1", "escape.txt")); err != nil {
		t.Errorf("Expected artifact inside the run directory: %v", err)
	}
}

func TestValidate(t *testing.T) {
	if _, _, err := validate("", "a.json"); err == nil {
		t.Error("Expected error for empty run id")
	}
	if _, _, err := validate("run", " "); err == nil {
		t.Error("Expected error for empty path")
	}
	if _, _, err := validate("run", "/"); err == nil {
		t.Error("Expected error for root path")
	}
}

func TestNewS3StoreValidation(t *testing.T) {
	tests := []S3Config{
		{AccessKey: "a", SecretKey: "s", Bucket: "b"},
		{Endpoint: "minio:9000", Bucket: "b"},
		{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s"},
	}
	for _, cfg := range tests {
		if _, err := NewS3Store(cfg); err == nil {
			t.Errorf("Expected error for %+v", cfg)
		}
	}

	store, err := NewS3Store(S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s", Bucket: "designs"})
	if err != nil {
		t.Fatalf("NewS3Store() error = %v", err)
	}
	if store.Bucket() != "designs" {
		t.Errorf("Unexpected bucket %s", store.Bucket())
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"a.tsx":  "text/typescript",
		"a.json": "application/json",
		"a.png":  "image/png",
		"a.xyz1": "application/octet-stream",
	}
	for p, want := range tests {
		if got := ContentType(p); got != want {
			t.Errorf("ContentType(%s) = %s, want %s", p, got, want)
		}
	}
}
