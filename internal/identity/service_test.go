package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Divy2095/Foodie/internal/docstore"
	"github.com/Divy2095/Foodie/internal/kvstore"
)

func newService() *Service {
	return NewService(docstore.NewMemory(), kvstore.NewMemory())
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	s := newService()

	u, err := s.SignUp(ctx, "asha@example.com", "s3cret", "Asha")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Asha", u.Name())

	token, signed, err := s.SignIn(ctx, "asha@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, signed.ID)

	current, err := s.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", current.Email)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newService()

	_, err := s.SignUp(ctx, "asha@example.com", "s3cret", "Asha")
	require.NoError(t, err)
	_, err = s.SignUp(ctx, "asha@example.com", "other", "A")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInWrongPassword(t *testing.T) {
	ctx := context.Background()
	s := newService()

	_, err := s.SignUp(ctx, "asha@example.com", "s3cret", "Asha")
	require.NoError(t, err)

	_, _, err = s.SignIn(ctx, "asha@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.SignIn(ctx, "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignOutEndsSession(t *testing.T) {
	ctx := context.Background()
	s := newService()

	_, err := s.SignUp(ctx, "asha@example.com", "s3cret", "Asha")
	require.NoError(t, err)
	token, _, err := s.SignIn(ctx, "asha@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, s.SignOut(ctx, token))
	_, err = s.CurrentUser(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCurrentUserEmptyToken(t *testing.T) {
	s := newService()
	_, err := s.CurrentUser(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestNameFallsBackToEmail(t *testing.T) {
	u := User{Email: "asha@example.com"}
	assert.Equal(t, "asha@example.com", u.Name())
}
