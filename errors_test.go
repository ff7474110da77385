package identity_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
)

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		isNotFound bool
		isConflict bool
	}{
		{"user not found", identity.ErrUserNotFound, true, false},
		{"client not found", identity.ErrClientNotFound, true, false},
		{"claim not found", identity.ErrClaimNotFound, true, false},
		{"user exists", identity.ErrUserExists, false, true},
		{"email taken", identity.ErrEmailTaken, false, true},
		{"claim exists", identity.ErrClaimExists, false, true},
		{"bad credentials", identity.ErrBadCredentials, false, false},
		{"plain error", errors.New("plain"), false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isNotFound, identity.IsNotFound(tt.err))
			assert.Equal(t, tt.isConflict, identity.IsConflict(tt.err))
		})
	}
}

func TestErrorTextCodes(t *testing.T) {
	assert.Equal(t, identity.TextCodeUserNotFound, identity.ErrUserNotFound.TextCode)
	assert.Equal(t, goerrors.CodeNotFound, identity.ErrUserNotFound.Code)
	assert.Equal(t, goerrors.CategoryAuth, identity.ErrTokenExpired.Category)
	assert.Equal(t, goerrors.CategoryConflict, identity.ErrEmailTaken.Category)
}

func TestWrappedErrorsKeepCategory(t *testing.T) {
	wrapped := goerrors.Wrap(identity.ErrUserNotFound, goerrors.CategoryNotFound, "while refreshing")
	assert.True(t, identity.IsNotFound(wrapped))
}
