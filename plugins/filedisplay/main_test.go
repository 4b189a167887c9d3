package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"readtrack/internal/modules/session/adapter/out/displayrpc"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestPushWritesAndReportsUnchanged(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	d := &fileDisplay{dir: dir}
	ctx := context.Background()

	if _, err := d.Push(ctx, &displayrpc.PushRequest{Target: "User 7", Text: "00:00:01"}); err != nil {
		t.Fatalf("push: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "user-7.txt"))
	if err != nil || string(raw) != "00:00:01" {
		t.Fatalf("unexpected file content %q err=%v", raw, err)
	}

	_, err = d.Push(ctx, &displayrpc.PushRequest{Target: "User 7", Text: "00:00:01"})
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists for identical push, got %v", err)
	}
	if _, err := d.Push(ctx, &displayrpc.PushRequest{Target: "User 7", Text: "00:00:02"}); err != nil {
		t.Fatalf("push update: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestClearRemovesFileAndToleratesMissing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	d := &fileDisplay{dir: dir}
	ctx := context.Background()
	if _, err := d.Push(ctx, &displayrpc.PushRequest{Target: "t", Text: "x"}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, err := d.Clear(ctx, &displayrpc.ClearRequest{Target: "t"}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "t.txt")); !os.IsNotExist(err) {
		t.Fatalf("display file still present: %v", err)
	}
	if _, err := d.Clear(ctx, &displayrpc.ClearRequest{Target: "t"}); err != nil {
		t.Fatalf("clear missing: %v", err)
	}
}
