package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("wrapped: %w", ErrValidation), http.StatusBadRequest},
		{ErrDuplicateUser, http.StatusConflict},
		{&pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrUserNotFound, http.StatusNotFound},
		{ErrNotFound, http.StatusNotFound},
		{ErrForbidden, http.StatusForbidden},
		{ErrRender, http.StatusUnprocessableEntity},
		{ErrServiceUnavailable, http.StatusServiceUnavailable},
		{StorageErrorf("write", errors.New("disk full")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatusFromError(tt.err), "%v", tt.err)
	}
}

func TestPublicMessageHidesInternalDetail(t *testing.T) {
	err := StorageErrorf("pgUserRepository.Create", errors.New("dial tcp 10.0.0.3:5432: refused"))
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, "internal server error", PublicMessage(err))

	assert.Equal(t, "user not found", PublicMessage(ErrUserNotFound))
}
