package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	a := NewAuthenticator("s3cret")

	sess, err := a.Login(Anonymous(), "s3cret")
	require.NoError(t, err)
	assert.True(t, sess.Authenticated)

	for _, input := range []string{"", "s3cre", "s3cret ", "S3CRET"} {
		sess, err := a.Login(Anonymous(), input)
		assert.True(t, errors.Is(err, ErrInvalidCredentials), "input %q", input)
		assert.False(t, sess.Authenticated)
	}

	assert.False(t, Logout(sess).Authenticated)
}

func TestEmptySecretNeverAuthenticates(t *testing.T) {
	_, err := NewAuthenticator("").Login(Anonymous(), "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = NewAuthenticator("").Login(Anonymous(), "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegistry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(time.Hour)
	r.now = func() time.Time { return now }

	sess := r.New()
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, now.Add(time.Hour), sess.ExpiresAt)

	got, ok := r.Get(sess.ID)
	require.True(t, ok)
	assert.False(t, got.Authenticated)

	got.Authenticated = true
	r.Save(got)
	got, ok = r.Get(sess.ID)
	require.True(t, ok)
	assert.True(t, got.Authenticated)

	_, ok = r.Get("not-a-uuid")
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok = r.Get(sess.ID)
	assert.False(t, ok)
}

func TestRegistrySweepAndDelete(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(time.Minute)
	r.now = func() time.Time { return now }

	a := r.New()
	now = now.Add(30 * time.Second)
	b := r.New()

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, r.Sweep())
	_, ok := r.Get(b.ID)
	assert.True(t, ok)
	_, ok = r.Get(a.ID)
	assert.False(t, ok)

	r.Delete(b.ID)
	_, ok = r.Get(b.ID)
	assert.False(t, ok)
}
