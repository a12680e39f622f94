package message

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

const table = "messages"

var (
	// errors
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrSelfMessage       = errors.New("you cannot message yourself")
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, m Message, exec ...core.DBExecutor) (Message, error)
		// QueryConversation lists the messages exchanged by userID and otherID, newest first.
		QueryConversation(ctx context.Context, userID, otherID string, page core.Page, exec ...core.DBExecutor) ([]Message, int, error)
		// QueryConversations returns the latest message exchanged with every counterpart of userID.
		QueryConversations(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Conversation, error)
		// MarkRead sets read_at on the unread messages sent by senderID to recipientID, returning how many were.
		MarkRead(ctx context.Context, recipientID, senderID string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Send(ctx context.Context, actor user.User, nm NewMessage) (Message, error)
		Conversation(ctx context.Context, actor user.User, otherID string, page core.Page) ([]Message, int, error)
		Conversations(ctx context.Context, actor user.User) ([]Conversation, error)
		MarkRead(ctx context.Context, actor user.User, otherID string) (ReadReceipt, error)
	}

	service struct {
		repo    Repository
		userSvc user.Service
		pub     core.Publisher
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, userSvc user.Service, pub core.Publisher) Service {
	return &service{repo: repo, userSvc: userSvc, pub: pub}
}

func (svc *service) Send(ctx context.Context, actor user.User, nm NewMessage) (Message, error) {
	if nm.RecipientID == actor.ID {
		return Message{}, core.NewValidationError(ErrSelfMessage, core.FieldError{Field: "recipient_id", Error: ErrSelfMessage.Error()})
	}
	recipient, err := svc.userSvc.GetByID(ctx, nm.RecipientID)
	if err != nil {
		if core.IsNotFound(err) {
			return Message{}, core.NewValidationError(ErrRecipientNotFound, core.FieldError{Field: "recipient_id", Error: ErrRecipientNotFound.Error()})
		}
		return Message{}, errors.Wrap(err, "getting recipient")
	}

	m := Message{
		ID:          uuid.NewString(),
		SenderID:    actor.ID,
		RecipientID: recipient.ID,
		Content:     nm.Content,
		CreatedAt:   core.NowFunc(),
	}
	if m, err = svc.repo.CreateMessage(ctx, m); err != nil {
		return Message{}, errors.Wrap(err, "creating message")
	}
	svc.pub.Publish(ctx, core.NewEvent(table, core.EventInsert, m, m.RecipientID, m.SenderID))
	return m, nil
}

func (svc *service) Conversation(ctx context.Context, actor user.User, otherID string, page core.Page) ([]Message, int, error) {
	page.Clean()
	return svc.repo.QueryConversation(ctx, actor.ID, otherID, page)
}

func (svc *service) Conversations(ctx context.Context, actor user.User) ([]Conversation, error) {
	return svc.repo.QueryConversations(ctx, actor.ID)
}

func (svc *service) MarkRead(ctx context.Context, actor user.User, otherID string) (ReadReceipt, error) {
	n, err := svc.repo.MarkRead(ctx, actor.ID, otherID)
	if err != nil {
		return ReadReceipt{}, errors.Wrap(err, "marking messages as read")
	}
	rr := ReadReceipt{ReaderID: actor.ID, SenderID: otherID, Count: n, ReadAt: core.NowFunc()}
	if n > 0 {
		svc.pub.Publish(ctx, core.NewEvent(table, core.EventUpdate, rr, otherID, actor.ID))
	}
	return rr, nil
}
