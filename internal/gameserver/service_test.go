package gameserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/dmengine/internal/executor"
	"github.com/cory-johannsen/dmengine/internal/game/command"
	"github.com/cory-johannsen/dmengine/internal/game/dice"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

type testServer struct {
	client *Client
	exec   *executor.Executor
	state  *session.State
	chat   *ChatLog
}

// newTestServer serves a DirectiveService over an in-memory connection.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)

	st := session.New()
	st.Maps = []*session.Map{{ID: "m1", Name: "Cave", Width: 10, Height: 10}}
	st.ActiveMapID = "m1"
	store := session.NewStore(st)
	roller := dice.NewRoller(dice.NewFixedSource(4), zap.NewNop())
	chat := NewChatLog(0)
	exec := executor.New(executor.Config{}, executor.Deps{
		Store:  store,
		Roller: roller,
		Chat:   chat,
		Logger: logger,
	})
	svc := NewDirectiveService(exec, store, command.DefaultRegistry(roller), chat, logger)

	lis := bufconn.Listen(1 << 20)
	l := NewListener("bufconn", svc, logger)
	go func() { _ = l.Serve(lis) }()
	t.Cleanup(l.Stop)

	conn, err := grpc.NewClient("passthrough:///bufconn",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &testServer{client: NewClient(conn), exec: exec, state: st, chat: chat}
}

func batch(t *testing.T, bypass bool, directives ...map[string]any) *structpb.Struct {
	t.Helper()
	list := make([]any, len(directives))
	for i, d := range directives {
		list[i] = d
	}
	s, err := structpb.NewStruct(map[string]any{"directives": list, "bypass": bypass})
	require.NoError(t, err)
	return s
}

func ctxT(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestExecuteReportsExecutedAndFailed(t *testing.T) {
	ts := newTestServer(t)
	resp, err := ts.client.Execute(ctxT(t), batch(t, false,
		map[string]any{"kind": "place_token", "label": "Orc", "gridX": 1, "gridY": 2},
		map[string]any{"kind": "move_token", "label": "Ghost", "gridX": 3, "gridY": 3},
	))
	require.NoError(t, err)

	executed := resp.GetFields()["executed"].GetListValue().GetValues()
	failed := resp.GetFields()["failed"].GetListValue().GetValues()
	require.Len(t, executed, 1)
	require.Len(t, failed, 1)
	assert.Equal(t, "place_token", executed[0].GetStructValue().GetFields()["kind"].GetStringValue())
	assert.Equal(t, "Token not found: Ghost", failed[0].GetStructValue().GetFields()["reason"].GetStringValue())

	require.Len(t, ts.state.Maps[0].Tokens, 1)
	assert.Equal(t, 1, ts.state.Maps[0].Tokens[0].X)
}

func TestExecuteRejectsMalformedRequest(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.client.Execute(ctxT(t), &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	bad, err := structpb.NewStruct(map[string]any{"directives": []any{"narrate"}})
	require.NoError(t, err)
	_, err = ts.client.Execute(ctxT(t), bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSnapshotRendersState(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.client.Execute(ctxT(t), batch(t, false,
		map[string]any{"kind": "place_token", "label": "Orc", "gridX": 1, "gridY": 2},
	))
	require.NoError(t, err)

	snap, err := ts.client.Snapshot(ctxT(t))
	require.NoError(t, err)
	assert.Contains(t, snap.GetValue(), "=== GAME STATE ===")
	assert.Contains(t, snap.GetValue(), "- Orc")
	assert.Contains(t, snap.GetValue(), "=== END GAME STATE ===")
}

func TestApprovalFlow(t *testing.T) {
	ts := newTestServer(t)
	ctx := ctxT(t)
	require.NoError(t, ts.client.SetApproval(ctx, true))

	resp, err := ts.client.Execute(ctx, batch(t, false,
		map[string]any{"kind": "narrate", "text": "The door creaks."},
	))
	require.NoError(t, err)
	id := resp.GetFields()["pendingId"].GetStringValue()
	require.NotEmpty(t, id)
	assert.Empty(t, ts.chat.Recent(0))

	pending, err := ts.client.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending.GetFields()["pending"].GetListValue().GetValues(), 1)

	approved, err := ts.client.Approve(ctx, id)
	require.NoError(t, err)
	assert.Len(t, approved.GetFields()["executed"].GetListValue().GetValues(), 1)
	lines := ts.chat.Recent(0)
	require.Len(t, lines, 1)
	assert.Equal(t, "The door creaks.", lines[0].Content)

	_, err = ts.client.Approve(ctx, id)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestBypassSkipsApproval(t *testing.T) {
	ts := newTestServer(t)
	ctx := ctxT(t)
	require.NoError(t, ts.client.SetApproval(ctx, true))

	resp, err := ts.client.Execute(ctx, batch(t, true,
		map[string]any{"kind": "narrate", "text": "Thunder."},
	))
	require.NoError(t, err)
	assert.Empty(t, resp.GetFields()["pendingId"].GetStringValue())
	assert.Len(t, resp.GetFields()["executed"].GetListValue().GetValues(), 1)
}

func TestRejectDiscardsBatch(t *testing.T) {
	ts := newTestServer(t)
	ctx := ctxT(t)
	ts.exec.SetApprovalRequired(true)

	resp, err := ts.client.Execute(ctx, batch(t, false,
		map[string]any{"kind": "narrate", "text": "never"},
	))
	require.NoError(t, err)
	id := resp.GetFields()["pendingId"].GetStringValue()

	require.NoError(t, ts.client.Reject(ctx, id))
	assert.Empty(t, ts.exec.Pending())
	assert.Equal(t, codes.NotFound, status.Code(ts.client.Reject(ctx, id)))
}

func TestCommandRunsChatCommand(t *testing.T) {
	ts := newTestServer(t)
	ctx := ctxT(t)

	out, err := ts.client.Command(ctx, "/roll 1d6")
	require.NoError(t, err)
	assert.NotEmpty(t, out.GetValue())

	chat, err := ts.client.Chat(ctx, 5)
	require.NoError(t, err)
	msgs := chat.GetFields()["messages"].GetListValue().GetValues()
	require.Len(t, msgs, 1)
	assert.Equal(t, "System", msgs[0].GetStructValue().GetFields()["sender"].GetStringValue())

	_, err = ts.client.Command(ctx, "/teleport")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestChatLogKeepsNewestLines(t *testing.T) {
	log := NewChatLog(3)
	for _, line := range []string{"a", "b", "c", "d", "e"} {
		log.AddMessage("DM", line)
	}
	got := log.Recent(0)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Content)
	assert.Equal(t, "e", got[2].Content)

	last := log.Recent(1)
	require.Len(t, last, 1)
	assert.Equal(t, "e", last[0].Content)
}
