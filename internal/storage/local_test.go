package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"
)

func TestLocalAdapter(t *testing.T) {
	tmpDir := t.TempDir()
	adapter, err := NewLocalAdapter(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create local adapter: %v", err)
	}
	defer adapter.Close()

	ctx := context.Background()
	testPath := "book-1/chapter-01.txt"
	testData := []byte("It was a bright cold day.")

	// Test Put
	t.Run("Put", func(t *testing.T) {
		err := adapter.Put(ctx, testPath, bytes.NewReader(testData))
		if err != nil {
			t.Fatalf("Failed to put data: %v", err)
		}
	})

	// Test Exists
	t.Run("Exists", func(t *testing.T) {
		exists, err := adapter.Exists(ctx, testPath)
		if err != nil {
			t.Fatalf("Failed to check existence: %v", err)
		}
		if !exists {
			t.Error("File should exist after Put")
		}
	})

	// Test Get
	t.Run("Get", func(t *testing.T) {
		reader, err := adapter.Get(ctx, testPath)
		if err != nil {
			t.Fatalf("Failed to get data: %v", err)
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("Failed to read data: %v", err)
		}

		if !bytes.Equal(data, testData) {
			t.Errorf("Expected %s, got %s", testData, data)
		}
	})

	// Test overwrite
	t.Run("Overwrite", func(t *testing.T) {
		if err := adapter.Put(ctx, testPath, bytes.NewReader([]byte("short"))); err != nil {
			t.Fatalf("Failed to overwrite: %v", err)
		}
		reader, err := adapter.Get(ctx, testPath)
		if err != nil {
			t.Fatalf("Failed to get data: %v", err)
		}
		defer reader.Close()
		data, _ := io.ReadAll(reader)
		if string(data) != "short" {
			t.Errorf("Expected overwritten content, got %q", data)
		}
	})

	// Test List
	t.Run("List", func(t *testing.T) {
		adapter.Put(ctx, "book-1/chapter-02.txt", bytes.NewReader([]byte("two")))
		adapter.Put(ctx, "book-10/chapter-01.txt", bytes.NewReader([]byte("other")))

		paths, err := adapter.List(ctx, "book-1/")
		if err != nil {
			t.Fatalf("Failed to list files: %v", err)
		}

		want := []string{"book-1/chapter-01.txt", "book-1/chapter-02.txt"}
		if !reflect.DeepEqual(paths, want) {
			t.Errorf("List() = %v, want %v", paths, want)
		}
	})

	// Test Delete
	t.Run("Delete", func(t *testing.T) {
		err := adapter.Delete(ctx, testPath)
		if err != nil {
			t.Fatalf("Failed to delete data: %v", err)
		}

		exists, err := adapter.Exists(ctx, testPath)
		if err != nil {
			t.Fatalf("Failed to check existence: %v", err)
		}
		if exists {
			t.Error("File should not exist after Delete")
		}

		if err := adapter.Delete(ctx, testPath); err != nil {
			t.Errorf("Deleting twice should succeed, got %v", err)
		}
	})

	// Test Get non-existent file
	t.Run("GetNonExistent", func(t *testing.T) {
		_, err := adapter.Get(ctx, "non-existent.txt")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("RejectsEscapingPaths", func(t *testing.T) {
		for _, p := range []string{"../outside.txt", "a/../../outside.txt"} {
			if err := adapter.Put(ctx, p, bytes.NewReader(testData)); err == nil {
				t.Errorf("Put(%q) should fail", p)
			}
		}
	})
}

func TestLocalAdapterConcurrency(t *testing.T) {
	tmpDir := t.TempDir()
	adapter, err := NewLocalAdapter(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create local adapter: %v", err)
	}
	defer adapter.Close()

	ctx := context.Background()

	// Test concurrent writes
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(idx int) {
			path := fmt.Sprintf("book/chapter-%02d.txt", idx+1)
			err := adapter.Put(ctx, path, bytes.NewReader([]byte("test data")))
			if err != nil {
				t.Errorf("Failed to put data: %v", err)
			}
			done <- true
		}(i)
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}

	paths, err := adapter.List(ctx, "book/")
	if err != nil {
		t.Fatalf("Failed to list files: %v", err)
	}
	if len(paths) != 10 {
		t.Errorf("Expected 10 files, got %d: %v", len(paths), paths)
	}
}
