package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mugiwara-labs/receiptsense/store"
)

func (d *DB) CreateReceipt(ctx context.Context, create *store.Receipt) (*store.Receipt, error) {
	now := time.Now().Unix()
	stmt := `
		INSERT INTO receipt (id, user_id, image_url, thumbnail_url, raw_text, structured_output, status, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID,
		create.UserID,
		create.ImageURL,
		create.ThumbnailURL,
		create.RawText,
		create.StructuredOutput,
		create.Status,
		now,
		now,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create receipt")
	}

	create.CreatedTs = now
	create.UpdatedTs = now
	return create, nil
}

func (d *DB) ListReceipts(ctx context.Context, find *store.FindReceipt) ([]*store.Receipt, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}

	query := `
		SELECT id, user_id, image_url, thumbnail_url, raw_text, structured_output, status, created_ts, updated_ts
		FROM receipt
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY updated_ts DESC, id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list receipts")
	}
	defer rows.Close()

	list := []*store.Receipt{}
	for rows.Next() {
		receipt := &store.Receipt{}
		if err := rows.Scan(
			&receipt.ID,
			&receipt.UserID,
			&receipt.ImageURL,
			&receipt.ThumbnailURL,
			&receipt.RawText,
			&receipt.StructuredOutput,
			&receipt.Status,
			&receipt.CreatedTs,
			&receipt.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan receipt")
		}
		list = append(list, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateReceipt(ctx context.Context, update *store.UpdateReceipt) error {
	set, args := []string{"updated_ts = ?"}, []any{time.Now().Unix()}
	if v := update.RawText; v != nil {
		set, args = append(set, "raw_text = ?"), append(args, *v)
	}
	if v := update.StructuredOutput; v != nil {
		set, args = append(set, "structured_output = ?"), append(args, *v)
	}
	if v := update.Status; v != nil {
		set, args = append(set, "status = ?"), append(args, *v)
	}
	args = append(args, update.ID)

	stmt := `UPDATE receipt SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update receipt")
	}
	return nil
}
