package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username        string `validate:"required,safe_name"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Email           string `validate:"required,email,email_domain"`
}

func TestValidate(t *testing.T) {
	ok := signup{Username: "alice", Password: "a", ConfirmPassword: "a", Email: "alice@gmail.com"}
	require.NoError(t, Validate(ok))

	mismatch := ok
	mismatch.ConfirmPassword = "b"
	err := Validate(mismatch)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "passwords do not match")

	domain := ok
	domain.Email = "alice@example.org"
	err = Validate(domain)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "@gmail.com")

	for _, name := range []string{"a/b", `a\b`, ".", "..", "a\nb"} {
		unsafe := ok
		unsafe.Username = name
		assert.ErrorIs(t, Validate(unsafe), ErrValidation, name)
	}

	colon := ok
	colon.Username = "team:alpha"
	assert.NoError(t, Validate(colon))

	missing := ok
	missing.Username = ""
	err = Validate(missing)
	assert.Contains(t, err.Error(), "username is required")
}

func TestHasAcceptedEmailDomain(t *testing.T) {
	// Domain part is matched case-insensitively.
	assert.True(t, HasAcceptedEmailDomain("Someone@GMAIL.com"))
	assert.True(t, HasAcceptedEmailDomain("x@yahoo.com"))
	assert.False(t, HasAcceptedEmailDomain("x@notgmail.com.evil"))
	assert.False(t, HasAcceptedEmailDomain("gmail.com"))
}
