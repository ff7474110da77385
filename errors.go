package identity

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeUserNotFound         = "identity_user_not_found"
	TextCodeUserExists           = "identity_user_exists"
	TextCodeEmailTaken           = "identity_email_taken"
	TextCodeClientNotFound       = "identity_client_not_found"
	TextCodeClientExists         = "identity_client_exists"
	TextCodeOrganizationNotFound = "identity_organization_not_found"
	TextCodeOrganizationExists   = "identity_organization_exists"
	TextCodeGroupNotFound        = "identity_group_not_found"
	TextCodeGroupExists          = "identity_group_exists"
	TextCodeClaimNotFound        = "identity_claim_not_found"
	TextCodeClaimExists          = "identity_claim_exists"
	TextCodeRegistryUnreadable   = "identity_registry_unreadable"
	TextCodeTokenExpired         = "identity_token_expired"
	TextCodeTokenMalformed       = "identity_token_malformed"
	TextCodeTokenSignature       = "identity_token_signature"
	TextCodeTokenSubject         = "identity_token_subject_mismatch"
	TextCodeBadCredentials       = "identity_bad_credentials"
	TextCodeEmptyPassword        = "identity_empty_password"
	TextCodePasswordMismatch     = "identity_password_mismatch"
)

// ErrUserNotFound is returned when a user id or email resolves to nothing.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrUserExists is returned when creating a user whose id is already taken.
var ErrUserExists = errors.New("user already exists", errors.CategoryConflict).
	WithTextCode(TextCodeUserExists).
	WithCode(errors.CodeConflict)

// ErrEmailTaken is returned when creating a user whose email is already indexed.
var ErrEmailTaken = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeConflict)

// ErrClientNotFound is returned for unknown client ids.
var ErrClientNotFound = errors.New("client not found", errors.CategoryNotFound).
	WithTextCode(TextCodeClientNotFound).
	WithCode(errors.CodeNotFound)

// ErrClientExists is returned when creating a client whose id is already taken.
var ErrClientExists = errors.New("client already exists", errors.CategoryConflict).
	WithTextCode(TextCodeClientExists).
	WithCode(errors.CodeConflict)

// ErrOrganizationNotFound is returned for unknown organization ids.
var ErrOrganizationNotFound = errors.New("organization not found", errors.CategoryNotFound).
	WithTextCode(TextCodeOrganizationNotFound).
	WithCode(errors.CodeNotFound)

// ErrOrganizationExists is returned when creating an organization whose id is taken.
var ErrOrganizationExists = errors.New("organization already exists", errors.CategoryConflict).
	WithTextCode(TextCodeOrganizationExists).
	WithCode(errors.CodeConflict)

// ErrGroupNotFound is returned for unknown group ids.
var ErrGroupNotFound = errors.New("group not found", errors.CategoryNotFound).
	WithTextCode(TextCodeGroupNotFound).
	WithCode(errors.CodeNotFound)

// ErrGroupExists is returned when creating a group whose id is already taken.
var ErrGroupExists = errors.New("group already exists", errors.CategoryConflict).
	WithTextCode(TextCodeGroupExists).
	WithCode(errors.CodeConflict)

// ErrClaimNotFound is returned when updating a claim key missing from the registry.
var ErrClaimNotFound = errors.New("claim not registered", errors.CategoryNotFound).
	WithTextCode(TextCodeClaimNotFound).
	WithCode(errors.CodeNotFound)

// ErrClaimExists is returned when registering a claim key that is already defined.
var ErrClaimExists = errors.New("claim already registered", errors.CategoryConflict).
	WithTextCode(TextCodeClaimExists).
	WithCode(errors.CodeConflict)

// ErrTokenExpired is returned for tokens past their expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that cannot be parsed.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenSignature is returned when a token signature does not verify.
var ErrTokenSignature = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature).
	WithCode(errors.CodeUnauthorized)

// ErrTokenSubjectMismatch is returned when a refresh token's subject does not
// match the user a new access token is being issued for.
var ErrTokenSubjectMismatch = errors.New("refresh token subject mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeTokenSubject).
	WithCode(errors.CodeUnauthorized)

// ErrBadCredentials is returned on login failures. It intentionally does not
// distinguish unknown emails from wrong passwords or inactive accounts.
var ErrBadCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned when a cleartext password does not
// match its stored hash.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(errors.CodeUnauthorized)

// IsNotFound reports whether err carries the not-found category.
func IsNotFound(err error) bool {
	return hasCategory(err, errors.CategoryNotFound)
}

// IsConflict reports whether err carries the conflict category.
func IsConflict(err error) bool {
	return hasCategory(err, errors.CategoryConflict)
}

// IsIOFailure reports whether err was raised by a failed persistence
// operation rather than by record state.
func IsIOFailure(err error) bool {
	return hasCategory(err, errors.CategoryOperation)
}

func hasCategory(err error, category errors.Category) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == category
}

// wrapIO tags filesystem failures so callers can tell them apart from
// record-state errors.
func wrapIO(err error, msg string) error {
	return errors.Wrap(err, errors.CategoryOperation, msg)
}

// wrapRegistry tags a failed registry read with the registry text code so
// callers can match on it without string inspection.
func wrapRegistry(err error) error {
	return errors.Wrap(err, errors.CategoryOperation, "claims registry missing or unparsable").
		WithTextCode(TextCodeRegistryUnreadable)
}
