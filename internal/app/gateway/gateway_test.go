package gateway

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ecotrade/internal/app/chat"
	"ecotrade/internal/mocks"
)

var (
	aliceOID = mustOID("64b000000000000000000001")
	bobOID   = mustOID("64b000000000000000000002")
	chatOID  = mustOID("64bc00000000000000000001")
)

func mustOID(hex string) primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		panic(err)
	}
	return oid
}

func twoPartyChat() *chat.Chat {
	return &chat.Chat{
		ID:           chatOID,
		Participants: []primitive.ObjectID{aliceOID, bobOID},
		IsActive:     true,
	}
}

func TestSendMessagePersistsAndFansOut(t *testing.T) {
	store := new(mocks.ChatStoreMock)
	gw := NewGateway(store, nil)

	sender := newTestClient(gw, aliceOID.Hex(), "alice")
	peer := newTestClient(gw, bobOID.Hex(), "bob")
	gw.rooms.Join(sender, chatOID.Hex())
	gw.rooms.Join(peer, chatOID.Hex())
	gw.rooms.Join(peer, bobOID.Hex())

	saved := &chat.Message{ID: primitive.NewObjectID(), Chat: chatOID, Sender: aliceOID, Content: "hello"}
	store.On("FindChatByID", mock.Anything, chatOID.Hex()).Return(twoPartyChat(), nil).Once()
	store.On("SaveMessage", mock.Anything, chatOID.Hex(), aliceOID.Hex(), "hello", mock.AnythingOfType("time.Time")).
		Return(saved, nil).Once()
	store.On("ListParticipants", mock.Anything, chatOID.Hex()).
		Return([]string{aliceOID.Hex(), bobOID.Hex()}, nil).Once()

	gw.dispatch(sender, SendMessageEvent{ChatID: chatOID.Hex(), Content: "hello"})

	// The sender receives the room broadcast; it doubles as the delivery ack.
	env := nextFrame(t, sender)
	require.Equal(t, TypeReceiveMessage, env.Type)

	var wire chat.WireMessage
	require.NoError(t, json.Unmarshal(env.Payload, &wire))
	assert.Equal(t, "hello", wire.Content)
	assert.Equal(t, aliceOID.Hex(), wire.SenderInfo.ID)
	assert.Equal(t, "alice", wire.SenderInfo.Name)

	// The peer receives the room broadcast, then the personal notification.
	assert.Equal(t, TypeReceiveMessage, nextFrame(t, peer).Type)
	assert.Equal(t, TypeNewMessage, nextFrame(t, peer).Type)
	assertNoFrames(t, peer)

	store.AssertExpectations(t)
}

func TestSendMessageUsesResolvedSenderInfo(t *testing.T) {
	store := new(mocks.ChatStoreMock)
	resolver := new(mocks.SenderResolverMock)
	gw := NewGateway(store, resolver)

	sender := newTestClient(gw, aliceOID.Hex(), "alice")
	gw.rooms.Join(sender, chatOID.Hex())

	saved := &chat.Message{ID: primitive.NewObjectID(), Chat: chatOID, Sender: aliceOID, Content: "hi"}
	store.On("FindChatByID", mock.Anything, chatOID.Hex()).Return(twoPartyChat(), nil).Once()
	store.On("SaveMessage", mock.Anything, chatOID.Hex(), aliceOID.Hex(), "hi", mock.AnythingOfType("time.Time")).
		Return(saved, nil).Once()
	store.On("ListParticipants", mock.Anything, chatOID.Hex()).
		Return([]string{aliceOID.Hex(), bobOID.Hex()}, nil).Once()
	resolver.On("SenderInfo", mock.Anything, aliceOID.Hex()).
		Return(chat.SenderInfo{ID: aliceOID.Hex(), Name: "Alice A.", Avatar: "a.png"}, nil).Once()

	gw.dispatch(sender, SendMessageEvent{ChatID: chatOID.Hex(), Content: "hi"})

	env := nextFrame(t, sender)
	var wire chat.WireMessage
	require.NoError(t, json.Unmarshal(env.Payload, &wire))
	assert.Equal(t, "Alice A.", wire.SenderInfo.Name)
	assert.Equal(t, "a.png", wire.SenderInfo.Avatar)

	resolver.AssertExpectations(t)
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	store := new(mocks.ChatStoreMock)
	gw := NewGateway(store, nil)

	intruder := newTestClient(gw, "64b000000000000000000009", "mallory")
	member := newTestClient(gw, bobOID.Hex(), "bob")
	gw.rooms.Join(intruder, chatOID.Hex())
	gw.rooms.Join(member, chatOID.Hex())

	store.On("FindChatByID", mock.Anything, chatOID.Hex()).Return(twoPartyChat(), nil).Once()

	gw.dispatch(intruder, SendMessageEvent{ChatID: chatOID.Hex(), Content: "let me in"})

	env := nextFrame(t, intruder)
	require.Equal(t, TypeError, env.Type)
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "Chat not found or access denied.", payload.Message)

	assertNoFrames(t, member)
	store.AssertNotCalled(t, "SaveMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessageUnknownChatSameDenial(t *testing.T) {
	store := new(mocks.ChatStoreMock)
	gw := NewGateway(store, nil)

	sender := newTestClient(gw, aliceOID.Hex(), "alice")
	store.On("FindChatByID", mock.Anything, chatOID.Hex()).Return(nil, mongo.ErrNoDocuments).Once()

	gw.dispatch(sender, SendMessageEvent{ChatID: chatOID.Hex(), Content: "anyone?"})

	env := nextFrame(t, sender)
	require.Equal(t, TypeError, env.Type)
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "Chat not found or access denied.", payload.Message)
}

func TestSendMessageBlankContent(t *testing.T) {
	store := new(mocks.ChatStoreMock)
	gw := NewGateway(store, nil)

	sender := newTestClient(gw, aliceOID.Hex(), "alice")

	gw.dispatch(sender, SendMessageEvent{ChatID: chatOID.Hex(), Content: " \n\t "})

	assert.Equal(t, TypeError, nextFrame(t, sender).Type)
	store.AssertNotCalled(t, "FindChatByID", mock.Anything, mock.Anything)
}

func TestSendMessageOverlongContent(t *testing.T) {
	store := new(mocks.ChatStoreMock)
	gw := NewGateway(store, nil)

	sender := newTestClient(gw, aliceOID.Hex(), "alice")

	gw.dispatch(sender, SendMessageEvent{ChatID: chatOID.Hex(), Content: strings.Repeat("x", chat.MaxContentLength+1)})

	assert.Equal(t, TypeError, nextFrame(t, sender).Type)
	store.AssertNotCalled(t, "SaveMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTypingStartBroadcastsToOthers(t *testing.T) {
	store := new(mocks.ChatStoreMock)
	gw := NewGateway(store, nil)

	typist := newTestClient(gw, aliceOID.Hex(), "alice")
	peer := newTestClient(gw, bobOID.Hex(), "bob")
	gw.rooms.Join(typist, chatOID.Hex())
	gw.rooms.Join(peer, chatOID.Hex())

	store.On("FindChatByID", mock.Anything, chatOID.Hex()).Return(twoPartyChat(), nil).Once()

	gw.dispatch(typist, TypingStartEvent{ChatID: chatOID.Hex()})

	env := nextFrame(t, peer)
	require.Equal(t, TypeTypingStarted, env.Type)
	var payload TypingPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, aliceOID.Hex(), payload.UserID)
	assert.Equal(t, "alice", payload.UserName)

	assertNoFrames(t, typist)
	assert.True(t, gw.typing.IsTyping(chatOID.Hex(), aliceOID.Hex()))
}

func TestTypingStartNonParticipantDroppedSilently(t *testing.T) {
	store := new(mocks.ChatStoreMock)
	gw := NewGateway(store, nil)

	intruder := newTestClient(gw, "64b000000000000000000009", "mallory")
	peer := newTestClient(gw, bobOID.Hex(), "bob")
	gw.rooms.Join(intruder, chatOID.Hex())
	gw.rooms.Join(peer, chatOID.Hex())

	store.On("FindChatByID", mock.Anything, chatOID.Hex()).Return(twoPartyChat(), nil).Once()

	gw.dispatch(intruder, TypingStartEvent{ChatID: chatOID.Hex()})

	assertNoFrames(t, intruder)
	assertNoFrames(t, peer)
	assert.False(t, gw.typing.IsTyping(chatOID.Hex(), intruder.identity.UserID))
}

func TestTypingStopBroadcastsOnlyWhileActive(t *testing.T) {
	store := new(mocks.ChatStoreMock)
	gw := NewGateway(store, nil)

	typist := newTestClient(gw, aliceOID.Hex(), "alice")
	peer := newTestClient(gw, bobOID.Hex(), "bob")
	gw.rooms.Join(typist, chatOID.Hex())
	gw.rooms.Join(peer, chatOID.Hex())

	store.On("FindChatByID", mock.Anything, chatOID.Hex()).Return(twoPartyChat(), nil).Once()

	gw.dispatch(typist, TypingStartEvent{ChatID: chatOID.Hex()})
	require.Equal(t, TypeTypingStarted, nextFrame(t, peer).Type)

	gw.dispatch(typist, TypingStopEvent{ChatID: chatOID.Hex()})
	assert.Equal(t, TypeTypingStopped, nextFrame(t, peer).Type)

	// A second stop has nothing to clear and therefore broadcasts nothing.
	gw.dispatch(typist, TypingStopEvent{ChatID: chatOID.Hex()})
	assertNoFrames(t, peer)
}

func TestJoinChatRejectsMalformedID(t *testing.T) {
	gw := NewGateway(new(mocks.ChatStoreMock), nil)
	c := newTestClient(gw, aliceOID.Hex(), "alice")

	gw.dispatch(c, JoinChatEvent{ChatID: "not-an-id"})

	assert.Equal(t, 0, gw.rooms.MemberCount("not-an-id"))
}

func TestDisconnectClearsTypingAndAnnouncesOffline(t *testing.T) {
	store := new(mocks.ChatStoreMock)
	gw := NewGateway(store, nil)

	leaver := newTestClient(gw, aliceOID.Hex(), "alice")
	watcher := newTestClient(gw, bobOID.Hex(), "bob")
	gw.presence.Register(leaver)
	gw.presence.Register(watcher)
	gw.rooms.Join(leaver, chatOID.Hex())
	gw.rooms.Join(watcher, chatOID.Hex())
	gw.rooms.Join(watcher, bobOID.Hex())
	gw.typing.Start(chatOID.Hex(), aliceOID.Hex())

	gw.handleDisconnect(leaver)

	assert.Equal(t, TypeTypingStopped, nextFrame(t, watcher).Type)
	assert.Equal(t, TypeUserOffline, nextFrame(t, watcher).Type)
	assertNoFrames(t, watcher)

	assert.False(t, gw.presence.IsOnline(aliceOID.Hex()))
	assert.Equal(t, 1, gw.rooms.MemberCount(chatOID.Hex()))
}

func TestDisconnectOfReplacedSessionStaysSilent(t *testing.T) {
	store := new(mocks.ChatStoreMock)
	gw := NewGateway(store, nil)

	old := newTestClient(gw, aliceOID.Hex(), "alice")
	fresh := newTestClient(gw, aliceOID.Hex(), "alice")
	watcher := newTestClient(gw, bobOID.Hex(), "bob")
	gw.presence.Register(old)
	require.Same(t, old, gw.presence.Register(fresh))
	gw.rooms.Join(old, chatOID.Hex())
	gw.rooms.Join(fresh, chatOID.Hex())
	gw.rooms.Join(watcher, chatOID.Hex())

	gw.handleDisconnect(old)

	assertNoFrames(t, watcher)
	assert.True(t, gw.presence.IsOnline(aliceOID.Hex()))
	assert.Equal(t, 2, gw.rooms.MemberCount(chatOID.Hex()))
}

func TestOnlineUsersReflectsPresence(t *testing.T) {
	gw := NewGateway(new(mocks.ChatStoreMock), nil)

	a := newTestClient(gw, aliceOID.Hex(), "alice")
	b := newTestClient(gw, bobOID.Hex(), "bob")
	gw.presence.Register(a)
	gw.presence.Register(b)

	assert.ElementsMatch(t, []string{aliceOID.Hex(), bobOID.Hex()}, gw.OnlineUsers())
	assert.True(t, gw.IsOnline(aliceOID.Hex()))

	gw.presence.Deregister(a)
	assert.False(t, gw.IsOnline(aliceOID.Hex()))
}

func TestDecodeClientEventUnknownType(t *testing.T) {
	_, err := DecodeClientEvent([]byte(`{"type":"rm_rf","payload":{}}`))
	require.Error(t, err)
}

func TestDecodeClientEventRoundTrip(t *testing.T) {
	ev, err := DecodeClientEvent([]byte(`{"type":"send_message","payload":{"chatId":"abc","content":"hi"}}`))
	require.NoError(t, err)
	send, ok := ev.(SendMessageEvent)
	require.True(t, ok)
	assert.Equal(t, "abc", send.ChatID)
	assert.Equal(t, "hi", send.Content)
}
