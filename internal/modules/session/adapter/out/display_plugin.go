package out

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"readtrack/internal/modules/session/adapter/out/displayrpc"
	apperrors "readtrack/internal/platform/errors"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultPluginStartTimeout = 3 * time.Second

type PluginDisplayOptions struct {
	Binary       string
	StartTimeout time.Duration
	// LogOutput receives the plugin host's own log lines. Nil discards them.
	LogOutput io.Writer
}

// PluginDisplay forwards pushes to a long-lived display plugin process.
type PluginDisplay struct {
	client *plugin.Client
	rpc    displayrpc.DisplayClient
	meta   displayrpc.Metadata
}

func OpenPluginDisplay(ctx context.Context, opts PluginDisplayOptions) (*PluginDisplay, error) {
	if opts.Binary == "" {
		return nil, fmt.Errorf("%w: display plugin binary is required", apperrors.ErrInvalidInput)
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = defaultPluginStartTimeout
	}
	hostLog := hclog.New(&hclog.LoggerOptions{Name: "display-plugin", Output: io.Discard, Level: hclog.NoLevel})
	if opts.LogOutput != nil {
		hostLog = hclog.New(&hclog.LoggerOptions{Name: "display-plugin", Output: opts.LogOutput, Level: hclog.Warn})
	}
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  displayrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          displayrpc.PluginMap(nil),
		Cmd:              exec.Command(opts.Binary),
		Managed:          true,
		StartTimeout:     opts.StartTimeout,
		Logger:           hostLog,
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("%w: start display plugin: %w", apperrors.ErrDisplayUnavailable, err)
	}
	raw, err := rpcClient.Dispense(displayrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("%w: dispense display plugin: %w", apperrors.ErrDisplayUnavailable, err)
	}
	typed, ok := raw.(displayrpc.DisplayClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("%w: display plugin client type mismatch", apperrors.ErrDisplayUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, opts.StartTimeout)
	defer cancel()
	meta, err := typed.Describe(callCtx)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("%w: describe display plugin: %w", apperrors.ErrDisplayUnavailable, err)
	}
	return &PluginDisplay{client: client, rpc: typed, meta: *meta}, nil
}

func (d *PluginDisplay) Name() string {
	return d.meta.Name + " " + d.meta.Version
}

func (d *PluginDisplay) Push(ctx context.Context, target, text string) error {
	return displayError(d.rpc.Push(ctx, &displayrpc.PushRequest{Target: target, Text: text}))
}

func (d *PluginDisplay) Clear(ctx context.Context, target string) error {
	return displayError(d.rpc.Clear(ctx, &displayrpc.ClearRequest{Target: target}))
}

func (d *PluginDisplay) Close() {
	d.client.Kill()
}

func displayError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.AlreadyExists:
		return apperrors.ErrUnchanged
	case codes.Canceled:
		return errors.Join(context.Canceled, err)
	case codes.DeadlineExceeded:
		return errors.Join(context.DeadlineExceeded, err)
	}
	return fmt.Errorf("%w: %w", apperrors.ErrDisplayUnavailable, err)
}
