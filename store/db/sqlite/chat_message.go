package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mugiwara-labs/receiptsense/store"
)

func (d *DB) CreateChatMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	now := time.Now().Unix()
	stmt := `
		INSERT INTO chat_message (uid, user_id, prompt, response, status, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.UserID,
		create.Prompt,
		create.Response,
		create.Status,
		now,
		now,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create chat message")
	}

	create.CreatedTs = now
	create.UpdatedTs = now
	return create, nil
}

func (d *DB) ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = ?"), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}

	query := `
		SELECT id, uid, user_id, prompt, response, status, created_ts, updated_ts
		FROM chat_message
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC, id ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat messages")
	}
	defer rows.Close()

	list := []*store.ChatMessage{}
	for rows.Next() {
		message := &store.ChatMessage{}
		if err := rows.Scan(
			&message.ID,
			&message.UID,
			&message.UserID,
			&message.Prompt,
			&message.Response,
			&message.Status,
			&message.CreatedTs,
			&message.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan chat message")
		}
		list = append(list, message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateChatMessage(ctx context.Context, update *store.UpdateChatMessage) (*store.ChatMessage, error) {
	set, args := []string{"updated_ts = ?"}, []any{time.Now().Unix()}
	if v := update.Response; v != nil {
		set, args = append(set, "response = ?"), append(args, *v)
	}
	if v := update.Status; v != nil {
		set, args = append(set, "status = ?"), append(args, *v)
	}
	args = append(args, update.UID)

	stmt := `
		UPDATE chat_message SET ` + strings.Join(set, ", ") + `
		WHERE uid = ?
		RETURNING id, uid, user_id, prompt, response, status, created_ts, updated_ts`
	message := &store.ChatMessage{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&message.ID,
		&message.UID,
		&message.UserID,
		&message.Prompt,
		&message.Response,
		&message.Status,
		&message.CreatedTs,
		&message.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update chat message")
	}
	return message, nil
}
