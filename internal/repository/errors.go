package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrPetUnavailable is returned when an approval loses the compare-and-swap
	// on the pet's status because the pet is already adopted.
	ErrPetUnavailable = errors.New("pet already adopted")
)

const uniqueViolation = "23505"

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
