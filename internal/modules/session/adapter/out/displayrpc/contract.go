// Package displayrpc is the wire contract between readtrack and display
// plugins: a hand-registered gRPC service speaking JSON, served over
// hashicorp/go-plugin.
package displayrpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey   = "display"
	serviceName    = "readtrack.display.v1.Display"
	jsonCodecName  = "json"
	methodDescribe = "/" + serviceName + "/Describe"
	methodPush     = "/" + serviceName + "/Push"
	methodClear    = "/" + serviceName + "/Clear"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "READTRACK_DISPLAY_PLUGIN",
	MagicCookieValue: "readtrack",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return jsonCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type PushRequest struct {
	Target string `json:"target"`
	Text   string `json:"text"`
}

type ClearRequest struct {
	Target string `json:"target"`
}

// DisplayServer is implemented by plugins. Push reports identical content
// with codes.AlreadyExists.
type DisplayServer interface {
	Describe(ctx context.Context, in *Empty) (*Metadata, error)
	Push(ctx context.Context, in *PushRequest) (*Empty, error)
	Clear(ctx context.Context, in *ClearRequest) (*Empty, error)
}

type DisplayClient interface {
	Describe(ctx context.Context) (*Metadata, error)
	Push(ctx context.Context, in *PushRequest) error
	Clear(ctx context.Context, in *ClearRequest) error
}

type displayClient struct {
	conn *grpc.ClientConn
}

func NewDisplayClient(conn *grpc.ClientConn) DisplayClient {
	return &displayClient{conn: conn}
}

func (c *displayClient) Describe(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodDescribe, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *displayClient) Push(ctx context.Context, in *PushRequest) error {
	return c.conn.Invoke(ctx, methodPush, in, &Empty{}, grpc.CallContentSubtype(jsonCodecName))
}

func (c *displayClient) Clear(ctx context.Context, in *ClearRequest) error {
	return c.conn.Invoke(ctx, methodClear, in, &Empty{}, grpc.CallContentSubtype(jsonCodecName))
}

func unary[Req, Resp any](name string, call func(DisplayServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + serviceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl, ok := srv.(DisplayServer)
			if !ok {
				return nil, fmt.Errorf("server does not implement %s", serviceName)
			}
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				typed, ok := req.(*Req)
				if !ok {
					return nil, fmt.Errorf("invalid request type %T", req)
				}
				return call(impl, ctx, typed)
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func RegisterDisplayServer(server grpc.ServiceRegistrar, impl DisplayServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*DisplayServer)(nil),
		Methods: []grpc.MethodDesc{
			unary("Describe", DisplayServer.Describe),
			unary("Push", DisplayServer.Push),
			unary("Clear", DisplayServer.Clear),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "readtrack/display/v1",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl DisplayServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterDisplayServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewDisplayClient(conn), nil
}

func PluginMap(impl DisplayServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
