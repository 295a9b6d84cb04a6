package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/core/port"
	"github.com/arklim/dispatch-console-auth/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	repo := &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

const usersTable = "dispatch.users"

var userColumns = []string{
	"id",
	"name",
	"email",
	"role",
	"department",
	"password_hash",
	"is_active",
}

// GetByID retrieves an operator record by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*port.UserRecord, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return r.scanRecord(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByEmail retrieves an operator record by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*port.UserRecord, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by email sql: %w", err)
	}

	return r.scanRecord(r.exec.QueryRow(ctx, stmt, args...))
}

// Create inserts a new operator row. Used by seeding and admin tooling.
func (r *UserRepository) Create(ctx context.Context, record port.UserRecord) error {
	var departmentValue any
	if record.User.Department != "" {
		departmentValue = record.User.Department
	}

	query := r.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(
			record.User.ID,
			record.User.Name,
			record.User.Email,
			string(record.User.Role),
			departmentValue,
			record.PasswordHash,
			record.Active,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *UserRepository) scanRecord(row pgx.Row) (*port.UserRecord, error) {
	var (
		record     port.UserRecord
		role       string
		department sql.NullString
	)

	if err := row.Scan(
		&record.User.ID,
		&record.User.Name,
		&record.User.Email,
		&role,
		&department,
		&record.PasswordHash,
		&record.Active,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	record.User.Role = domain.Role(role)
	if department.Valid {
		record.User.Department = department.String
	}

	return &record, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
