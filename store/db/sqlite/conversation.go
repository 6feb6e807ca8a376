package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/buddylabs/buddy/store"
)

func (d *DB) CreateConversation(ctx context.Context, create *store.Conversation) (*store.Conversation, error) {
	fields := []string{"id", "user_id"}
	placeholderValues := []any{create.ID, create.UserID}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		placeholderValues = append(placeholderValues, create.UpdatedTs)
	}

	stmt := `INSERT INTO conversation (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return create, nil
}

func (d *DB) ListConversations(ctx context.Context, find *store.FindConversation) ([]*store.Conversation, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "conversation.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "conversation.user_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, created_ts, updated_ts, user_id, ended_ts
		FROM conversation
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY conversation.created_ts DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	list := []*store.Conversation{}
	for rows.Next() {
		conversation := &store.Conversation{}
		if err := rows.Scan(
			&conversation.ID,
			&conversation.CreatedTs,
			&conversation.UpdatedTs,
			&conversation.UserID,
			&conversation.EndedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		list = append(list, conversation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateConversation(ctx context.Context, update *store.UpdateConversation) (*store.Conversation, error) {
	set, args := []string{}, []any{}

	if v := update.EndedTs; v != nil {
		set, args = append(set, "ended_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, update.UpdatedTs)
	args = append(args, update.ID)

	stmt := `UPDATE conversation SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}

	conversations, err := d.ListConversations(ctx, &store.FindConversation{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if len(conversations) == 0 {
		return nil, fmt.Errorf("conversation %s not found", update.ID)
	}
	return conversations[0], nil
}

func (d *DB) DeleteConversation(ctx context.Context, delete *store.DeleteConversation) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM conversation WHERE id = ?`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, `DELETE FROM conversation_message WHERE conversation_id = ?`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete conversation messages: %w", err)
	}
	return nil
}

func (d *DB) CreateConversationMessage(ctx context.Context, create *store.ConversationMessage) (*store.ConversationMessage, error) {
	fields := []string{"conversation_id", "role", "content"}
	placeholderValues := []any{create.ConversationID, create.Role, create.Content}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}

	stmt := `INSERT INTO conversation_message (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create conversation message: %w", err)
	}

	return create, nil
}

func (d *DB) ListConversationMessages(ctx context.Context, find *store.FindConversationMessage) ([]*store.ConversationMessage, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ConversationID; v != nil {
		where, args = append(where, "conversation_message.conversation_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, created_ts, conversation_id, role, content
		FROM conversation_message
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY conversation_message.created_ts ASC, conversation_message.id ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation messages: %w", err)
	}
	defer rows.Close()

	list := []*store.ConversationMessage{}
	for rows.Next() {
		message := &store.ConversationMessage{}
		if err := rows.Scan(
			&message.ID,
			&message.CreatedTs,
			&message.ConversationID,
			&message.Role,
			&message.Content,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversation message: %w", err)
		}
		list = append(list, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversation messages: %w", err)
	}

	return list, nil
}
