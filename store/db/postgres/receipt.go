package postgres

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
	stmt := `INSERT INTO receipt (id, user_id, image_url, thumbnail_url, raw_text, structured_output, status, created_ts, updated_ts)
		VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `, ` + placeholder(6) + `, ` + placeholder(7) + `, ` + placeholder(8) + `, ` + placeholder(9) + `)`
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
		args = append(args, *v)
		where = append(where, fmt.Sprintf("id = %s", placeholder(len(args))))
	}
	if v := find.UserID; v != nil {
		args = append(args, *v)
		where = append(where, fmt.Sprintf("user_id = %s", placeholder(len(args))))
	}
	if v := find.Status; v != nil {
		args = append(args, *v)
		where = append(where, fmt.Sprintf("status = %s", placeholder(len(args))))
	}

	query := `SELECT id, user_id, image_url, thumbnail_url, raw_text, structured_output, status, created_ts, updated_ts
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
	set, args := []string{}, []any{}
	args = append(args, time.Now().Unix())
	set = append(set, fmt.Sprintf("updated_ts = %s", placeholder(len(args))))
	if v := update.RawText; v != nil {
		args = append(args, *v)
		set = append(set, fmt.Sprintf("raw_text = %s", placeholder(len(args))))
	}
	if v := update.StructuredOutput; v != nil {
		args = append(args, *v)
		set = append(set, fmt.Sprintf("structured_output = %s", placeholder(len(args))))
	}
	if v := update.Status; v != nil {
		args = append(args, *v)
		set = append(set, fmt.Sprintf("status = %s", placeholder(len(args))))
	}
	args = append(args, update.ID)

	stmt := `UPDATE receipt SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update receipt")
	}
	return nil
}
