package orch

import (
	"strings"
	"sync"
	"testing"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/core/mocks"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type lineEncoder struct{}

func (lineEncoder) Message(m domain.ChatMessage) (core.Frame, error) {
	return core.Frame(m.Sender + ": " + m.Text), nil
}

type fakeSignal struct {
	mu     sync.Mutex
	frames []string
	closed bool
}

func (s *fakeSignal) TrySend(f core.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrConnectionClosed
	}
	s.frames = append(s.frames, string(f))
	return nil
}

func (s *fakeSignal) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSignal) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.frames...)
}

func (s *fakeSignal) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
}

func newOrchestrator(t *testing.T, policy app.RoomPolicy, names ...string) *Orchestrator {
	t.Helper()
	ids := app.NewIdentityRegistry(0)
	for _, n := range names {
		_, err := ids.Register(n)
		require.NoError(t, err)
	}
	return &Orchestrator{
		Identities:    ids,
		Registry:      app.NewRegistry(),
		Rooms:         app.NewRoomManager(),
		RoomPolicy:    policy,
		Policy:        app.DropPolicy{},
		Encoder:       lineEncoder{},
		MaxMessageLen: 64,
	}
}

var lobby = app.SharedRoomPolicy{Name: "lobby"}

func TestJoin_Unregistered_User_Stays_Unjoined(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, lobby)
	sig := &fakeSignal{}

	req.ErrorIs(o.Join("c1", sig, "mallory"), domain.ErrNotRegistered)
	req.ErrorIs(o.Join("c1", sig, ""), domain.ErrNotRegistered)

	req.Zero(o.Registry.Len())
	req.Empty(sig.received())
	req.Empty(o.Rooms.List())
}

func TestJoin_Sends_Welcome_And_Notifies_Room(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, lobby, "alice", "bob")
	alice, bob := &fakeSignal{}, &fakeSignal{}

	req.NoError(o.Join("c1", alice, "alice"))
	req.NoError(o.Join("c2", bob, "bob"))

	req.Equal([]string{
		"system: Welcome alice, you are not alone.",
		"system: bob joined the room",
	}, alice.received())
	req.Equal([]string{"system: Welcome bob, you are not alone."}, bob.received())
}

func TestChat_Before_Join_Relays_Nothing(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, lobby, "alice")
	alice := &fakeSignal{}
	req.NoError(o.Join("c1", alice, "alice"))
	alice.reset()

	err := o.Chat("c2", "hello?")

	req.ErrorIs(err, domain.ErrNoActiveSession)
	req.Empty(alice.received())
}

func TestChat_Reaches_Room_Members_Only(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, app.PerUserRoomPolicy{Prefix: "session-"}, "alice", "bob")
	alice, bob := &fakeSignal{}, &fakeSignal{}
	req.NoError(o.Join("c1", alice, "alice"))
	req.NoError(o.Join("c2", bob, "bob"))
	alice.reset()
	bob.reset()

	req.NoError(o.Chat("c1", "hi"))

	req.Equal([]string{"alice: hi"}, alice.received())
	req.Empty(bob.received())
}

func TestChat_Includes_Sender_In_Shared_Room(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, lobby, "alice", "bob")
	alice, bob := &fakeSignal{}, &fakeSignal{}
	req.NoError(o.Join("c1", alice, "alice"))
	req.NoError(o.Join("c2", bob, "bob"))
	alice.reset()
	bob.reset()

	req.NoError(o.Chat("c1", "hi"))
	req.NoError(o.Chat("c2", "hey"))

	req.Equal([]string{"alice: hi", "bob: hey"}, alice.received())
	req.Equal(alice.received(), bob.received())
}

func TestChat_Relays_Empty_Text(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, lobby, "alice", "bob")
	alice, bob := &fakeSignal{}, &fakeSignal{}
	req.NoError(o.Join("c1", alice, "alice"))
	req.NoError(o.Join("c2", bob, "bob"))
	alice.reset()
	bob.reset()

	// When
	req.NoError(o.Chat("c1", ""))

	// Then
	req.Equal([]string{"alice: "}, alice.received())
	req.Equal([]string{"alice: "}, bob.received())
}

func TestChat_Rejects_Oversized_Text(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, lobby, "alice")
	alice := &fakeSignal{}
	req.NoError(o.Join("c1", alice, "alice"))
	alice.reset()

	req.ErrorIs(o.Chat("c1", strings.Repeat("a", 65)), domain.ErrMessageTooLong)
	req.Empty(alice.received())

	req.NoError(o.Chat("c1", strings.Repeat("a", 64)))
	req.Len(alice.received(), 1)
}

func TestDisconnect_Notifies_Remaining_Members(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, lobby, "alice", "bob")
	alice, bob := &fakeSignal{}, &fakeSignal{}
	req.NoError(o.Join("c1", alice, "alice"))
	req.NoError(o.Join("c2", bob, "bob"))
	alice.reset()

	o.OnDisconnect("c2")
	o.OnDisconnect("c2")

	req.Equal([]string{"system: bob left the room"}, alice.received())
	members, ok := o.Members("lobby")
	req.True(ok)
	req.Len(members, 1)
	req.Equal(1, o.Registry.Len())
}

func TestDisconnect_Frees_Connection_Slot(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, lobby, "alice")
	req.NoError(o.Join("c1", &fakeSignal{}, "alice"))

	o.OnDisconnect("c1")

	// A new connection reusing the same id starts unjoined.
	req.ErrorIs(o.Chat("c1", "still here?"), domain.ErrNoActiveSession)
	_, ok := o.Members("lobby")
	req.False(ok, "empty room is reclaimed")
}

func TestMembers_Lists_Bound_Sessions_By_Name(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, app.PerUserRoomPolicy{Prefix: "session-"}, "carol", "bob")
	// Given two members in separate rooms
	req.NoError(o.Join("c3", &fakeSignal{}, "carol"))
	req.NoError(o.Join("c2", &fakeSignal{}, "bob"))

	// When
	members, ok := o.Members("session-bob")

	// Then only the sessions bound to that room are listed
	req.True(ok)
	req.Equal([]core.MemberDTO{{Conn: "c2", Username: "bob"}}, members)
	_, ok = o.Members("session-nobody")
	req.False(ok)
}

func TestDisconnect_Without_Session_Is_Noop(t *testing.T) {
	o := newOrchestrator(t, lobby)
	o.OnDisconnect("never-joined")
	require.Zero(t, o.Registry.Len())
}

func TestRejoin_Keeps_Single_Session(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, lobby, "alice", "alias", "bob")
	sig, bob := &fakeSignal{}, &fakeSignal{}
	req.NoError(o.Join("c2", bob, "bob"))
	req.NoError(o.Join("c1", sig, "alice"))
	bob.reset()

	req.NoError(o.Join("c1", sig, "alias"))

	req.Equal(2, o.Registry.Len())
	members, _ := o.Members("lobby")
	req.Len(members, 2)
	req.Equal([]string{
		"system: alice left the room",
		"system: alias joined the room",
	}, bob.received())

	req.NoError(o.Chat("c1", "renamed"))
	req.Contains(bob.received(), "alias: renamed")
}

func TestLeave(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, lobby, "alice")
	req.NoError(o.Join("c1", &fakeSignal{}, "alice"))

	req.NoError(o.Leave("c1"))
	req.ErrorIs(o.Leave("c1"), domain.ErrNoActiveSession)
	req.ErrorIs(o.Chat("c1", "hi"), domain.ErrNoActiveSession)
}

func TestKickPolicy_Closes_Slow_Member(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, lobby, "alice", "bob")
	o.Policy = app.KickPolicy{}

	ctrl := gomock.NewController(t)
	slow := mocks.NewMockSignalConnection(ctrl)
	gomock.InOrder(
		slow.EXPECT().TrySend(gomock.Any()).Return(nil),                  // welcome
		slow.EXPECT().TrySend(gomock.Any()).Return(core.ErrBackpressure), // chat
		slow.EXPECT().Close(),
	)

	alice := &fakeSignal{}
	req.NoError(o.Join("c1", alice, "alice"))
	req.NoError(o.Join("c2", slow, "bob"))

	req.NoError(o.Chat("c1", "anyone?"))
	req.Contains(alice.received(), "alice: anyone?")
}

func TestScenario_Register_Join_Chat_Disconnect(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, lobby, "alice")

	_, err := o.Identities.Register("bob")
	req.NoError(err)
	_, err = o.Identities.Register("bob")
	req.ErrorIs(err, domain.ErrUsernameTaken)

	alice, bob := &fakeSignal{}, &fakeSignal{}
	req.NoError(o.Join("c1", alice, "alice"))
	req.NoError(o.Join("c2", bob, "bob"))
	req.Equal("system: Welcome bob, you are not alone.", bob.received()[0])

	req.NoError(o.Chat("c2", "hello"))
	req.Contains(alice.received(), "bob: hello")
	req.Contains(bob.received(), "bob: hello")

	o.OnDisconnect("c2")
	got := alice.received()
	req.Equal("system: bob left the room", got[len(got)-1])
}
