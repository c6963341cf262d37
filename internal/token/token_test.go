package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("super-secret", time.Hour)

	tok, err := issuer.Issue(5)
	require.NoError(t, err)

	userID, err := issuer.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, 5, userID)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("super-secret", -time.Second)

	tok, err := issuer.Issue(5)
	require.NoError(t, err)

	_, err = issuer.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer("right-secret", time.Hour).Issue(7)
	require.NoError(t, err)

	_, err = NewIssuer("wrong-secret", time.Hour).Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer("secret", time.Hour).Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}
