// Command filedisplay is a display plugin that renders every target into a
// text file under $READTRACK_DISPLAY_DIR. Editing a target rewrites its file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"readtrack/internal/modules/session/adapter/out/displayrpc"
	"readtrack/internal/platform/slug"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	name       = "filedisplay"
	version    = "1.0.0"
	dirEnvName = "READTRACK_DISPLAY_DIR"
)

type fileDisplay struct {
	dir string
}

func (d *fileDisplay) Describe(context.Context, *displayrpc.Empty) (*displayrpc.Metadata, error) {
	return &displayrpc.Metadata{Name: name, Version: version}, nil
}

func (d *fileDisplay) Push(_ context.Context, in *displayrpc.PushRequest) (*displayrpc.Empty, error) {
	path := d.pathFor(in.Target)
	current, err := os.ReadFile(path)
	if err == nil && string(current) == in.Text {
		return nil, status.Error(codes.AlreadyExists, "content unchanged")
	}
	if err := writeAtomic(path, []byte(in.Text)); err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return &displayrpc.Empty{}, nil
}

func (d *fileDisplay) Clear(_ context.Context, in *displayrpc.ClearRequest) (*displayrpc.Empty, error) {
	if err := os.Remove(d.pathFor(in.Target)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return &displayrpc.Empty{}, nil
}

func (d *fileDisplay) pathFor(target string) string {
	return filepath.Join(d.dir, slug.Make(target)+".txt")
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".display-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace display file: %w", err)
	}
	return nil
}

func displayDir() (string, error) {
	dir := os.Getenv(dirEnvName)
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "readtrack-display")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func main() {
	dir, err := displayDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "filedisplay: %v\n", err)
		os.Exit(1)
	}
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: displayrpc.HandshakeConfig,
		Plugins:         displayrpc.PluginMap(&fileDisplay{dir: dir}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
