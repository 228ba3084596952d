package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/filesmanager/internal/model"
)

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

// where renders the filter as a WHERE clause using positional parameters starting at next.
func (f FileFilter) where(next int) (string, []any) {
	var conds []string
	var args []any

	add := func(column string, value any) {
		conds = append(conds, fmt.Sprintf("%s = $%d", column, next+len(args)))
		args = append(args, value)
	}

	if f.ID != "" {
		add("id", f.ID)
	}
	if f.UserID != "" {
		add("user_id", f.UserID)
	}
	if f.ParentID != "" {
		add("parent_id", f.ParentID)
	}
	if f.Type != "" {
		add("type", string(f.Type))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *fileRepository) Insert(ctx context.Context, file *model.File) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO files (id, user_id, name, type, is_public, parent_id, local_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID,
		file.UserID,
		file.Name,
		string(file.Type),
		file.IsPublic,
		file.ParentID,
		file.LocalPath,
		file.CreatedAt,
	)

	return err
}

func (r *fileRepository) FindOne(ctx context.Context, filter FileFilter) (*model.File, error) {
	file := &model.File{}
	where, args := filter.where(1)
	query := `SELECT * FROM files` + where + ` ORDER BY created_at, id LIMIT 1`

	err := r.db.GetContext(ctx, file, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) FindMany(ctx context.Context, filter FileFilter, skip, limit int) ([]*model.File, error) {
	files := []*model.File{}
	where, args := filter.where(1)
	query := fmt.Sprintf(`SELECT * FROM files%s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, skip)

	err := r.db.SelectContext(ctx, &files, query, args...)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// UpdateOne relies on UPDATE ... RETURNING so the patch and the read happen in one statement.
func (r *fileRepository) UpdateOne(ctx context.Context, filter FileFilter, patch FilePatch) (*model.File, error) {
	if filter.ID == "" {
		return nil, ErrFileNotFound
	}
	if patch.Empty() {
		return r.FindOne(ctx, filter)
	}

	where, args := filter.where(2)

	file := &model.File{}
	query := `UPDATE files SET is_public = $1` + where + ` RETURNING *`
	args = append([]any{*patch.IsPublic}, args...)

	err := r.db.GetContext(ctx, file, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM files`)
	return n, err
}
