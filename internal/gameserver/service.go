// Package gameserver exposes the directive executor to the external
// directive producer over gRPC.
package gameserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/executor"
	"github.com/cory-johannsen/dmengine/internal/game/command"
	"github.com/cory-johannsen/dmengine/internal/game/session"
	"github.com/cory-johannsen/dmengine/internal/snapshot"
)

// DirectiveService implements DirectiveServiceServer over an Executor.
type DirectiveService struct {
	exec     *executor.Executor
	store    *session.Store
	commands *command.Registry
	chat     *ChatLog
	logger   *zap.Logger
}

// NewDirectiveService creates a DirectiveService.
//
// Precondition: exec, store, commands, chat and logger must be non-nil.
func NewDirectiveService(
	exec *executor.Executor,
	store *session.Store,
	commands *command.Registry,
	chat *ChatLog,
	logger *zap.Logger,
) *DirectiveService {
	return &DirectiveService{
		exec:     exec,
		store:    store,
		commands: commands,
		chat:     chat,
		logger:   logger,
	}
}

// Execute applies the request's "directives" list. A true "bypass" field
// skips the approval gate.
//
// Postcondition: per-directive failures are reported in the response, not
// as an RPC error. InvalidArgument is returned only for a malformed request.
func (s *DirectiveService) Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raws, bypass, err := decodeBatch(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res := s.exec.Execute(ctx, raws, bypass)
	s.logger.Debug("batch executed",
		zap.Int("executed", len(res.Executed)),
		zap.Int("failed", len(res.Failed)),
		zap.String("pending_id", res.PendingID),
	)
	return toStruct(res)
}

// Snapshot renders the current state for the directive producer.
func (s *DirectiveService) Snapshot(_ context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	var text string
	s.store.Read(func(st *session.State) { text = snapshot.Build(st) })
	return wrapperspb.String(text), nil
}

// Approve applies the pending batch named by the request.
func (s *DirectiveService) Approve(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	res, err := s.exec.Approve(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

// Reject discards the pending batch named by the request.
func (s *DirectiveService) Reject(_ context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.exec.Reject(req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// Pending lists the batches awaiting approval under "pending".
func (s *DirectiveService) Pending(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(map[string]any{"pending": s.exec.Pending()})
}

// SetApproval turns the approval gate on or off.
func (s *DirectiveService) SetApproval(_ context.Context, req *wrapperspb.BoolValue) (*emptypb.Empty, error) {
	s.exec.SetApprovalRequired(req.GetValue())
	s.logger.Info("approval gate changed", zap.Bool("required", req.GetValue()))
	return &emptypb.Empty{}, nil
}

// Command runs a chat command line such as "/roll 2d6" and posts its
// output to the chat log.
func (s *DirectiveService) Command(_ context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	out, err := s.commands.Execute(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if out != "" {
		s.chat.AddMessage("System", out)
	}
	return wrapperspb.String(out), nil
}

// Chat returns up to "limit" recent chat lines under "messages".
func (s *DirectiveService) Chat(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := int(req.GetFields()["limit"].GetNumberValue())
	return toStruct(map[string]any{"messages": s.chat.Recent(limit)})
}

func decodeBatch(req *structpb.Struct) ([]directive.Raw, bool, error) {
	fields := req.GetFields()
	list := fields["directives"].GetListValue()
	if list == nil {
		return nil, false, errors.New("request needs a directives list")
	}
	raws := make([]directive.Raw, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		obj := v.GetStructValue()
		if obj == nil {
			return nil, false, fmt.Errorf("directive %d is not an object", i)
		}
		raws = append(raws, directive.Raw(obj.AsMap()))
	}
	return raws, fields["bypass"].GetBoolValue(), nil
}

// toStruct converts v through its JSON form so json tags define the wire
// field names.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, executor.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, executor.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, executor.ErrPrecondition):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
