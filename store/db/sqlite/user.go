package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buddylabs/buddy/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	interests, err := json.Marshal(create.Interests)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal interests: %w", err)
	}

	fields := []string{"name", "age", "locale", "interests"}
	placeholderValues := []any{create.Name, create.Age, create.Locale, string(interests)}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		placeholderValues = append(placeholderValues, create.UpdatedTs)
	}

	stmt := `INSERT INTO user (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return create, nil
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "user.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Name; v != nil {
		where, args = append(where, "user.name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Locale; v != nil {
		where, args = append(where, "user.locale = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, created_ts, updated_ts, name, age, locale, interests
		FROM user
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY user.created_ts DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	list := []*store.User{}
	for rows.Next() {
		user := &store.User{}
		var interests string
		if err := rows.Scan(
			&user.ID,
			&user.CreatedTs,
			&user.UpdatedTs,
			&user.Name,
			&user.Age,
			&user.Locale,
			&interests,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if err := json.Unmarshal([]byte(interests), &user.Interests); err != nil {
			user.Interests = nil
		}
		list = append(list, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateUser(ctx context.Context, update *store.UpdateUser) (*store.User, error) {
	set, args := []string{}, []any{}

	if v := update.Name; v != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Age; v != nil {
		set, args = append(set, "age = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Locale; v != nil {
		set, args = append(set, "locale = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Interests; v != nil {
		interests, err := json.Marshal(*v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal interests: %w", err)
		}
		set, args = append(set, "interests = "+placeholder(len(args)+1)), append(args, string(interests))
	}
	set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, update.UpdatedTs)
	args = append(args, update.ID)

	stmt := `UPDATE user SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	users, err := d.ListUsers(ctx, &store.FindUser{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %d not found", update.ID)
	}
	return users[0], nil
}

func (d *DB) DeleteUser(ctx context.Context, delete *store.DeleteUser) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM user WHERE id = ?`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, `DELETE FROM parental_control WHERE user_id = ?`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete parental control: %w", err)
	}
	return nil
}
