package auth

import (
	"context"
	"testing"
	"time"

	"ppr/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	user := domain.User{ID: 9, Name: "Eva", SectorID: 2, Roles: []domain.Role{domain.RoleEvaluator}}

	raw, err := tokens.Issue(user)
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, user, claims.User())

	ctx := WithClaims(context.Background(), claims)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(9), got.UserID)
}

func TestClaimsNormalizeRoleAliases(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, err := tokens.Issue(domain.User{ID: 4, Roles: []domain.Role{"gestor", " Avaliador ", "colaborador"}})
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	user := claims.User()
	assert.Equal(t, []domain.Role{domain.RoleManager, domain.RoleEvaluator, domain.RoleCollaborator}, user.Roles)
	assert.True(t, user.HasRole(domain.RoleManager))
	assert.True(t, user.HasRole(domain.RoleEvaluator))
	assert.False(t, user.HasRole(domain.RoleAdmin))
}

func TestParseRejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, err := tokens.Issue(domain.User{ID: 1})
	require.NoError(t, err)

	_, err = NewTokens("other", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokens("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Issue(domain.User{ID: 1})
	require.NoError(t, err)
	_, err = tokens.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}
