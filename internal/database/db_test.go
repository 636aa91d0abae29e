package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPostgresError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, models.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), models.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, models.ErrConflict},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, models.ErrBadRequest},
		{"check violation", &pgconn.PgError{Code: "23514"}, models.ErrBadRequest},
		{"malformed uuid", &pgconn.PgError{Code: "22P02"}, models.ErrNotFound},
		{"unmapped code", &pgconn.PgError{Code: "40001"}, nil},
		{"plain error", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapPostgresError(tt.err)
			switch {
			case tt.err == nil:
				assert.NoError(t, got)
			case tt.want == nil:
				assert.Same(t, tt.err, got, "unmapped errors pass through")
			default:
				assert.ErrorIs(t, got, tt.want)
			}
		})
	}
}
