package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mugiwara-labs/receiptsense/store"
)

func (d *DB) CreatePreferenceRecord(ctx context.Context, create *store.CreatePreferenceRecord) (*store.PreferenceRecord, error) {
	preferencesJSON, err := json.Marshal(create.Preferences)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal preferences")
	}

	now := time.Now().Unix()
	stmt := `INSERT INTO preference (preference_id, user_id, user_name, user_email, created_ts, updated_ts, version, preferences)
		VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `, ` + placeholder(6) + `, ` + placeholder(7) + `, ` + placeholder(8) + `)`
	if _, err := d.db.ExecContext(ctx, stmt,
		create.PreferenceID,
		create.UserID,
		create.UserName,
		create.UserEmail,
		now,
		now,
		create.Version,
		string(preferencesJSON),
	); err != nil {
		return nil, errors.Wrap(err, "failed to create preference record")
	}

	return &store.PreferenceRecord{
		PreferenceID: create.PreferenceID,
		UserID:       create.UserID,
		UserName:     create.UserName,
		UserEmail:    create.UserEmail,
		CreatedTs:    now,
		UpdatedTs:    now,
		Version:      create.Version,
		Preferences:  create.Preferences,
	}, nil
}

func (d *DB) ListPreferenceRecords(ctx context.Context, find *store.FindPreferenceRecord) ([]*store.PreferenceRecord, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.PreferenceID; v != nil {
		args = append(args, *v)
		where = append(where, fmt.Sprintf("preference_id = %s", placeholder(len(args))))
	}
	if v := find.UserID; v != nil {
		args = append(args, *v)
		where = append(where, fmt.Sprintf("user_id = %s", placeholder(len(args))))
	}

	query := `SELECT preference_id, user_id, user_name, user_email, created_ts, updated_ts, version, preferences
		FROM preference
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, preference_id DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list preference records")
	}
	defer rows.Close()

	list := []*store.PreferenceRecord{}
	for rows.Next() {
		record := &store.PreferenceRecord{}
		var preferencesJSON string
		if err := rows.Scan(
			&record.PreferenceID,
			&record.UserID,
			&record.UserName,
			&record.UserEmail,
			&record.CreatedTs,
			&record.UpdatedTs,
			&record.Version,
			&preferencesJSON,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan preference record")
		}
		if err := json.Unmarshal([]byte(preferencesJSON), &record.Preferences); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal preferences for %s", record.PreferenceID)
		}
		list = append(list, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
