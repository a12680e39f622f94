package message_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/message"
	"github.com/tutorly/tutorly/core/user"
	testutil "github.com/tutorly/tutorly/tests"
)

// tick makes core.NowFunc advance by a second on each call.
func tick(t *testing.T) {
	now := time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)
	orig := core.NowFunc
	core.NowFunc = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	t.Cleanup(func() { core.NowFunc = orig })
}

func Test_service_Send(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent := env.CreateUser(t, user.RoleParent)
	tchr := env.CreateUser(t, user.RoleTeacher)

	tests := []struct {
		name    string
		nm      message.NewMessage
		wantErr error
	}{
		{name: "self", nm: message.NewMessage{RecipientID: parent.ID, Content: "Hi"}, wantErr: message.ErrSelfMessage},
		{name: "unknown recipient", nm: message.NewMessage{RecipientID: "d2b1b5a8-0000-4000-8000-000000000000", Content: "Hi"}, wantErr: message.ErrRecipientNotFound},
		{name: "ok", nm: message.NewMessage{RecipientID: tchr.ID, Content: "Hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := env.MessageSvc.Send(ctx, parent, tt.nm)
			if tt.wantErr != nil {
				vErr := testutil.ValidationErr(err)
				require.NotNil(t, vErr, "error = %v", err)
				assert.Equal(t, tt.wantErr, vErr.Err)
				assert.Equal(t, "recipient_id", vErr.Fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, parent.ID, m.SenderID)
			assert.Equal(t, tchr.ID, m.RecipientID)
			assert.False(t, m.ReadAt.Valid)
		})
	}
}

func Test_service_Conversations(t *testing.T) {
	tick(t)
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent := env.CreateUser(t, user.RoleParent, "Alice")
	tchr1 := env.CreateUser(t, user.RoleTeacher, "Bob")
	tchr2 := env.CreateUser(t, user.RoleTeacher, "Carol")

	send := func(from, to user.User, content string) {
		_, err := env.MessageSvc.Send(ctx, from, message.NewMessage{RecipientID: to.ID, Content: content})
		require.NoError(t, err)
	}
	send(parent, tchr1, "Hello Bob")
	send(tchr1, parent, "Hello Alice")
	send(tchr1, parent, "When do we start?")
	send(tchr2, parent, "Hi, I applied")

	convs, err := env.MessageSvc.Conversations(ctx, parent)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	// most recent first
	assert.Equal(t, tchr2.ID, convs[0].CounterpartID)
	assert.Equal(t, "Carol", convs[0].CounterpartName)
	assert.Equal(t, 1, convs[0].UnreadCount)
	assert.Equal(t, tchr1.ID, convs[1].CounterpartID)
	assert.Equal(t, "When do we start?", convs[1].LastMessage.Content)
	assert.Equal(t, 2, convs[1].UnreadCount)

	msgs, total, err := env.MessageSvc.Conversation(ctx, parent, tchr1.ID, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, msgs, 3)

	rr, err := env.MessageSvc.MarkRead(ctx, parent, tchr1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rr.Count)
	assert.Equal(t, tchr1.ID, rr.SenderID)

	rr, err = env.MessageSvc.MarkRead(ctx, parent, tchr1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, rr.Count, "already read")

	convs, err = env.MessageSvc.Conversations(ctx, parent)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, 0, convs[1].UnreadCount)

	// Bob has not read Alice's message
	convs, err = env.MessageSvc.Conversations(ctx, tchr1)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, parent.ID, convs[0].CounterpartID)
	assert.Equal(t, 1, convs[0].UnreadCount)
}
