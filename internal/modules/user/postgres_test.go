package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/georgemunganga/needsport-pos/internal/platform/apperror"
)

func TestCreateUserDuplicateIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	u := &User{ID: uuid.New(), Email: "ops@needsport.io", PasswordHash: "x"}
	err = NewPostgresRepository(db).CreateUser(context.Background(), u)
	if !apperror.Is(err, apperror.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestCreateUserFillsTimestamps(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	u := &User{ID: uuid.New(), Email: "ops@needsport.io", PasswordHash: "x", FirstName: "Ana"}
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	if err := NewPostgresRepository(db).CreateUser(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !u.CreatedAt.Equal(now) {
		t.Errorf("expected created_at %v, got %v", now, u.CreatedAt)
	}
}

func TestGetUserByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
		WithArgs("ghost@needsport.io").
		WillReturnError(sql.ErrNoRows)

	_, err = NewPostgresRepository(db).GetUserByEmail(context.Background(), "ghost@needsport.io")
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
