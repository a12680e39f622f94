package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/message"
)

var messageColumns = []string{"id", "sender_id", "recipient_id", "content", "read_at", "created_at"}

type messageRepository struct {
	baseRepo
}

var _ message.Repository = (*messageRepository)(nil)

func NewMessageRepository(db core.DB) message.Repository {
	return &messageRepository{baseRepo{db: db}}
}

func (repo *messageRepository) CreateMessage(ctx context.Context, m message.Message, exec ...core.DBExecutor) (message.Message, error) {
	b := builder.Insert("messages").SetMap(map[string]interface{}{
		"id":           m.ID,
		"sender_id":    m.SenderID,
		"recipient_id": m.RecipientID,
		"content":      m.Content,
		"read_at":      m.ReadAt,
		"created_at":   m.CreatedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return message.Message{}, errors.Wrap(err, "inserting message")
	}
	return m, nil
}

func between(a, b string) sq.Or {
	return sq.Or{
		sq.Eq{"sender_id": a, "recipient_id": b},
		sq.Eq{"sender_id": b, "recipient_id": a},
	}
}

func (repo *messageRepository) QueryConversation(ctx context.Context, userID, otherID string, page core.Page, exec ...core.DBExecutor) ([]message.Message, int, error) {
	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(between(userID, otherID))
	}
	messages := make([]message.Message, 0)
	ordering := []core.DBOrdering{{Field: "created_at"}, {Field: "id"}}
	total, err := paginate(ctx, repo.getExec(exec), &messages, "messages", messageColumns, where, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying conversation")
	}
	return messages, total, nil
}

type conversationRow struct {
	message.Message
	CounterpartID   string `db:"counterpart_id"`
	CounterpartName string `db:"counterpart_name"`
}

func (repo *messageRepository) QueryConversations(ctx context.Context, userID string, exec ...core.DBExecutor) ([]message.Conversation, error) {
	ex := repo.getExec(exec)

	// latest message per counterpart: no newer message between the same two users
	counterpart := "CASE WHEN m.sender_id = ? THEN m.recipient_id ELSE m.sender_id END"
	b := builder.Select(prefixed("m", messageColumns)...).
		Column(sq.Alias(sq.Expr(counterpart, userID), "counterpart_id")).
		Column("u.full_name AS counterpart_name").
		From("messages m").
		Join("user_profiles u ON u.id = "+counterpart, userID).
		Where(sq.Or{sq.Eq{"m.sender_id": userID}, sq.Eq{"m.recipient_id": userID}}).
		Where(`NOT EXISTS (
			SELECT 1 FROM messages n
			WHERE ((n.sender_id = m.sender_id AND n.recipient_id = m.recipient_id)
				OR (n.sender_id = m.recipient_id AND n.recipient_id = m.sender_id))
			AND (n.created_at > m.created_at OR (n.created_at = m.created_at AND n.id > m.id))
		)`).
		OrderBy("m.created_at DESC")

	var rows []conversationRow
	if err := selectRows(ctx, ex, &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying conversations")
	}

	var unread []struct {
		SenderID string `db:"sender_id"`
		Count    int    `db:"unread"`
	}
	ub := builder.Select("sender_id", "COUNT(*) AS unread").From("messages").
		Where(sq.Eq{"recipient_id": userID, "read_at": nil}).
		GroupBy("sender_id")
	if err := selectRows(ctx, ex, &unread, ub); err != nil {
		return nil, errors.Wrap(err, "counting unread messages")
	}
	unreadBySender := make(map[string]int, len(unread))
	for _, u := range unread {
		unreadBySender[u.SenderID] = u.Count
	}

	convs := make([]message.Conversation, 0, len(rows))
	for _, row := range rows {
		convs = append(convs, message.Conversation{
			CounterpartID:   row.CounterpartID,
			CounterpartName: row.CounterpartName,
			LastMessage:     row.Message,
			UnreadCount:     unreadBySender[row.CounterpartID],
		})
	}
	return convs, nil
}

func (repo *messageRepository) MarkRead(ctx context.Context, recipientID, senderID string, exec ...core.DBExecutor) (int, error) {
	b := builder.Update("messages").
		Set("read_at", core.NowFunc()).
		Where(sq.Eq{"recipient_id": recipientID, "sender_id": senderID, "read_at": nil})
	res, err := execute(ctx, repo.getExec(exec), b)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "counting read messages")
}
