package services

import (
	"context"
	"testing"

	"github.com/connectly/backend/internal/apperrors"
	"github.com/connectly/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type chatFixture struct {
	*graphFixture
	messages *fakeMessageRepo
	chat     *ChatService
}

func newChatFixture() *chatFixture {
	g := newGraphFixture()
	messages := newFakeMessageRepo()
	notifier := NewNotifier(g.notifications, g.events)
	return &chatFixture{
		graphFixture: g,
		messages:     messages,
		chat:         NewChatService(messages, g.users, notifier, g.events),
	}
}

func TestSendMessageNotifiesAndPushes(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	message, err := f.chat.SendMessage(ctx, alice.ID, bob.ID, "hey", models.MessageTypeText, "")
	require.NoError(t, err)
	assert.False(t, message.IsRead)

	inbox := f.notifications.forRecipient(bob.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationMessage, inbox[0].Type)
	assert.Equal(t, "alice sent you a message", inbox[0].Content)

	pushed := f.events.directEvents(EventReceiveMessage)
	require.Len(t, pushed, 1)
	assert.Equal(t, bob.ID.Hex(), pushed[0].AccountID)
}

func TestSendMessageToUnknownReceiver(t *testing.T) {
	f := newChatFixture()
	alice := f.addUser(t, "alice")

	_, err := f.chat.SendMessage(context.Background(), alice.ID, primitive.NewObjectID(), "hey", models.MessageTypeText, "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetMessagesMarksPeerMessagesRead(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	_, err := f.chat.SendMessage(ctx, bob.ID, alice.ID, "one", models.MessageTypeText, "")
	require.NoError(t, err)
	_, err = f.chat.SendMessage(ctx, bob.ID, alice.ID, "two", models.MessageTypeText, "")
	require.NoError(t, err)
	_, err = f.chat.SendMessage(ctx, alice.ID, bob.ID, "reply", models.MessageTypeText, "")
	require.NoError(t, err)

	messages, err := f.chat.GetMessages(ctx, alice.ID, bob.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// Oldest first.
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "reply", messages[2].Content)

	// Bob's messages to alice are now read; alice's own message is untouched.
	for _, m := range f.messages.messages {
		if m.Receiver == alice.ID {
			assert.True(t, m.IsRead)
			assert.NotNil(t, m.ReadAt)
		} else {
			assert.False(t, m.IsRead)
		}
	}
}

func TestConversationsOrderedByLastActivity(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	carol := f.addUser(t, "carol")

	_, err := f.chat.SendMessage(ctx, bob.ID, alice.ID, "from bob", models.MessageTypeText, "")
	require.NoError(t, err)
	_, err = f.chat.SendMessage(ctx, carol.ID, alice.ID, "from carol", models.MessageTypeText, "")
	require.NoError(t, err)

	conversations, err := f.chat.Conversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, carol.ID, conversations[0].Peer.ID, "most recent conversation first")
	assert.Equal(t, 1, conversations[0].UnreadCount)
	assert.Equal(t, bob.ID, conversations[1].Peer.ID)
}

func TestDeleteMessageSenderOnly(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	message, err := f.chat.SendMessage(ctx, alice.ID, bob.ID, "oops", models.MessageTypeText, "")
	require.NoError(t, err)

	err = f.chat.DeleteMessage(ctx, bob.ID, message.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, f.chat.DeleteMessage(ctx, alice.ID, message.ID))

	messages, err := f.chat.GetMessages(ctx, bob.ID, alice.ID, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
