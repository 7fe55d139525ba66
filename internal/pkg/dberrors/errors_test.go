package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "uq_club_memberships_open"}
	fk := &pgconn.PgError{Code: "23503"}
	check := &pgconn.PgError{Code: "23514"}

	if !IsDuplicateConstraintError(fmt.Errorf("insert: %w", unique), "uq_club_memberships_open") {
		t.Fatal("expected wrapped unique violation to match constraint")
	}
	if IsDuplicateConstraintError(unique, "other") {
		t.Fatal("constraint name must match")
	}
	if !IsUniqueViolation(unique) || IsUniqueViolation(fk) {
		t.Fatal("unique classification wrong")
	}
	if !IsForeignKeyViolation(fk) || IsForeignKeyViolation(check) {
		t.Fatal("foreign key classification wrong")
	}
	if !IsCheckViolation(check) {
		t.Fatal("check classification wrong")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Fatal("plain error must not classify")
	}
}
