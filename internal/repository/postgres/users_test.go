package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/core/port"
	"github.com/arklim/dispatch-console-auth/internal/repository"
)

func TestUserRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	rows := pgxmock.NewRows([]string{"id", "name", "email", "role", "department", "password_hash", "is_active"}).
		AddRow("d-1", "Dep", "dep@example.com", "department", "fire", "salt:hash", true)

	mock.ExpectQuery(`SELECT id, name, email, role, department, password_hash, is_active FROM dispatch\.users WHERE email = \$1 LIMIT 1`).
		WithArgs("dep@example.com").
		WillReturnRows(rows)

	record, err := repo.GetByEmail(context.Background(), "dep@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if record.User.Role != domain.RoleDepartment {
		t.Fatalf("expected department role, got %s", record.User.Role)
	}
	if record.User.Department != "fire" {
		t.Fatalf("expected department fire, got %q", record.User.Department)
	}
	if !record.Active {
		t.Fatalf("expected active record")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByID_NullDepartment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	rows := pgxmock.NewRows([]string{"id", "name", "email", "role", "department", "password_hash", "is_active"}).
		AddRow("sa-1", "Root", "root@example.com", "superadmin", nil, "salt:hash", true)

	mock.ExpectQuery(`SELECT id, name, email, role, department, password_hash, is_active FROM dispatch\.users WHERE id = \$1`).
		WithArgs("sa-1").
		WillReturnRows(rows)

	record, err := repo.GetByID(context.Background(), "sa-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if record.User.Department != "" {
		t.Fatalf("expected empty department for null column, got %q", record.User.Department)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT id, name, email, role, department, password_hash, is_active FROM dispatch\.users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "role", "department", "password_hash", "is_active"}))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	record := port.UserRecord{
		User: domain.User{
			ID:         "dr-1",
			Name:       "Driver",
			Email:      "driver@example.com",
			Role:       domain.RoleDriver,
			Department: "transport",
		},
		PasswordHash: "salt:hash",
		Active:       true,
	}

	mock.ExpectExec(`INSERT INTO dispatch\.users`).
		WithArgs("dr-1", "Driver", "driver@example.com", "driver", "transport", "salt:hash", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), record); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
