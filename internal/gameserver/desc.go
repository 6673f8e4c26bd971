package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "dmengine.v1.DirectiveService"

// DirectiveServiceServer is the server API for the directive service. All
// messages are protobuf well-known types.
type DirectiveServiceServer interface {
	Execute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Snapshot(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Approve(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Reject(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Pending(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetApproval(context.Context, *wrapperspb.BoolValue) (*emptypb.Empty, error)
	Command(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Chat(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var _ DirectiveServiceServer = (*DirectiveService)(nil)

// unary builds a grpc.MethodDesc handler for one RPC.
func unary[Req any, Resp any](
	name string,
	newReq func() *Req,
	call func(DirectiveServiceServer, context.Context, *Req) (Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(DirectiveServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

func newStruct() *structpb.Struct        { return &structpb.Struct{} }
func newEmpty() *emptypb.Empty           { return &emptypb.Empty{} }
func newString() *wrapperspb.StringValue { return &wrapperspb.StringValue{} }
func newBool() *wrapperspb.BoolValue     { return &wrapperspb.BoolValue{} }

// ServiceDesc describes DirectiveService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DirectiveServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Execute", newStruct, DirectiveServiceServer.Execute),
		unary("Snapshot", newEmpty, DirectiveServiceServer.Snapshot),
		unary("Approve", newString, DirectiveServiceServer.Approve),
		unary("Reject", newString, DirectiveServiceServer.Reject),
		unary("Pending", newEmpty, DirectiveServiceServer.Pending),
		unary("SetApproval", newBool, DirectiveServiceServer.SetApproval),
		unary("Command", newString, DirectiveServiceServer.Command),
		unary("Chat", newStruct, DirectiveServiceServer.Chat),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dmengine/v1/directive.proto",
}

// RegisterDirectiveServiceServer registers srv with s.
func RegisterDirectiveServiceServer(s grpc.ServiceRegistrar, srv DirectiveServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls a remote DirectiveService.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Execute submits a batch; see DirectiveService.Execute for the request shape.
func (c *Client) Execute(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c, "Execute", in, opts...)
}

// Snapshot fetches the rendered game state.
func (c *Client) Snapshot(ctx context.Context, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c, "Snapshot", &emptypb.Empty{}, opts...)
}

// Approve applies a pending batch.
func (c *Client) Approve(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c, "Approve", wrapperspb.String(id), opts...)
}

// Reject discards a pending batch.
func (c *Client) Reject(ctx context.Context, id string, opts ...grpc.CallOption) error {
	_, err := invoke[emptypb.Empty](ctx, c, "Reject", wrapperspb.String(id), opts...)
	return err
}

// Pending lists batches awaiting approval.
func (c *Client) Pending(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c, "Pending", &emptypb.Empty{}, opts...)
}

// SetApproval turns the approval gate on or off.
func (c *Client) SetApproval(ctx context.Context, on bool, opts ...grpc.CallOption) error {
	_, err := invoke[emptypb.Empty](ctx, c, "SetApproval", wrapperspb.Bool(on), opts...)
	return err
}

// Command runs a chat command line.
func (c *Client) Command(ctx context.Context, line string, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c, "Command", wrapperspb.String(line), opts...)
}

// Chat fetches up to limit recent chat lines.
func (c *Client) Chat(ctx context.Context, limit int, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}
	return invoke[structpb.Struct](ctx, c, "Chat", in, opts...)
}
