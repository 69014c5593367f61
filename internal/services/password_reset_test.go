package services

import (
	"context"
	"ecommerce/internal/apperr"
	"ecommerce/internal/models"
	"ecommerce/internal/utils"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestForgotPassword_IssuesFiveMinuteToken(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	u := f.signup(t, "a@b.com", "Aa1!aaaa", "")
	token := f.expectReset("a@b.com")

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "a@b.com"))
	f.sender.AssertExpectations(t)

	raw, err := base64.RawURLEncoding.DecodeString(*token)
	require.NoError(t, err, "token must be url-safe base64")
	assert.Len(t, raw, 32)

	recs := f.resets.byUser(u.ID)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Used)
	assert.True(t, recs[0].ExpiresAt.Equal(t0.Add(5*time.Minute)))
	assert.Equal(t, time.UTC, recs[0].ExpiresAt.Location())
	assert.NotEqual(t, *token, recs[0].TokenHash, "raw token must not be stored")
}

func TestForgotPassword_UnknownEmailIsUniform(t *testing.T) {
	f := newFixture(t, AuthOptions{})

	err := f.svc.ForgotPassword(context.Background(), "nobody@b.com")
	assert.NoError(t, err)
	f.sender.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
}

func TestForgotPassword_UnknownEmailRevealed(t *testing.T) {
	f := newFixture(t, AuthOptions{RevealUnknownEmail: true})

	err := f.svc.ForgotPassword(context.Background(), "nobody@b.com")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestForgotPassword_DeliveryFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	u := f.signup(t, "a@b.com", "Aa1!aaaa", "")
	f.sender.On("SendPasswordReset", mock.Anything, "a@b.com", mock.Anything).Return(errors.New("smtp down")).Once()

	assert.NoError(t, f.svc.ForgotPassword(context.Background(), "a@b.com"))
	assert.Len(t, f.resets.byUser(u.ID), 1)
}

func TestForgotPassword_StoreFailure(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	f.signup(t, "a@b.com", "Aa1!aaaa", "")
	f.resets.err = errors.New("disk full")

	err := f.svc.ForgotPassword(context.Background(), "a@b.com")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	f.sender.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetFlow_ChangesPassword(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()
	f.signup(t, "a@b.com", "Aa1!aaaa", "")
	token := f.expectReset("a@b.com")

	require.NoError(t, f.svc.ForgotPassword(ctx, "a@b.com"))
	require.NoError(t, f.svc.ResetPassword(ctx, *token, "Bb2@bbbb"))

	_, err := f.svc.Signin(ctx, "a@b.com", "Bb2@bbbb")
	assert.NoError(t, err)

	_, err = f.svc.Signin(ctx, "a@b.com", "Aa1!aaaa")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestResetPassword_SecondRedemptionAlreadyUsed(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()
	f.signup(t, "a@b.com", "Aa1!aaaa", "")
	token := f.expectReset("a@b.com")
	require.NoError(t, f.svc.ForgotPassword(ctx, "a@b.com"))

	require.NoError(t, f.svc.ResetPassword(ctx, *token, "Bb2@bbbb"))
	err := f.svc.ResetPassword(ctx, *token, "Cc3#cccc")
	assert.ErrorIs(t, err, apperr.ErrAlreadyUsed)

	_, err = f.svc.Signin(ctx, "a@b.com", "Bb2@bbbb")
	assert.NoError(t, err, "rejected redemption must not change the password")
}

func TestResetPassword_Expired(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()
	f.signup(t, "a@b.com", "Aa1!aaaa", "")
	token := f.expectReset("a@b.com")
	require.NoError(t, f.svc.ForgotPassword(ctx, "a@b.com"))

	f.now = t0.Add(5 * time.Minute)
	require.NoError(t, f.svc.ResetPassword(ctx, *token, "Bb2@bbbb"), "valid up to and including the expiry instant")

	token = f.expectReset("a@b.com")
	f.now = t0
	require.NoError(t, f.svc.ForgotPassword(ctx, "a@b.com"))

	f.now = t0.Add(5*time.Minute + time.Second)
	err := f.svc.ResetPassword(ctx, *token, "Cc3#cccc")
	assert.ErrorIs(t, err, apperr.ErrExpired)

	_, err = f.svc.Signin(ctx, "a@b.com", "Bb2@bbbb")
	assert.NoError(t, err)
}

func TestResetPassword_ExpiryIgnoresClockZone(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()
	f.signup(t, "a@b.com", "Aa1!aaaa", "")
	token := f.expectReset("a@b.com")
	require.NoError(t, f.svc.ForgotPassword(ctx, "a@b.com"))

	// Same instant as t0+4m, expressed in UTC+14.
	f.now = t0.Add(4 * time.Minute).In(time.FixedZone("LINT", 14*3600))
	assert.NoError(t, f.svc.ResetPassword(ctx, *token, "Bb2@bbbb"))
}

func TestResetPassword_UnknownToken(t *testing.T) {
	f := newFixture(t, AuthOptions{})

	unknown := strings.Repeat("A", 43)
	err := f.svc.ResetPassword(context.Background(), unknown, "Bb2@bbbb")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResetPassword_MalformedToken(t *testing.T) {
	f := newFixture(t, AuthOptions{})

	for _, tok := range []string{"", "does-not-exist", strings.Repeat("A", 42), strings.Repeat("A", 42) + "=", strings.Repeat("A", 42) + "+"} {
		err := f.svc.ResetPassword(context.Background(), tok, "Bb2@bbbb")
		assert.ErrorIs(t, err, apperr.ErrInvalidToken, tok)
		assert.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(apperr.KindOf(err)), tok)
	}
}

func TestResetPassword_EmptyPassword(t *testing.T) {
	f := newFixture(t, AuthOptions{})

	err := f.svc.ResetPassword(context.Background(), "whatever", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestResetTokenStore_MultipleOutstandingTokens(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()
	u := f.signup(t, "a@b.com", "Aa1!aaaa", "")

	first, err := f.store.Issue(ctx, u)
	require.NoError(t, err)
	second, err := f.store.Issue(ctx, u)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	h1, err := utils.HashPassword("Bb2@bbbb")
	require.NoError(t, err)
	require.NoError(t, f.store.Redeem(ctx, second, h1))

	h2, err := utils.HashPassword("Cc3#cccc")
	require.NoError(t, err)
	require.NoError(t, f.store.Redeem(ctx, first, h2), "each token is checked on its own")

	assert.ErrorIs(t, f.store.Redeem(ctx, first, h2), apperr.ErrAlreadyUsed)
}

func TestResetTokenStore_StorageFailureIsInternal(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	f.resets.err = errors.New("deadlock detected")

	err := f.store.Redeem(context.Background(), "tok", "hash")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestResetTokenStore_DefaultTTL(t *testing.T) {
	s := NewResetTokenStore(newMemResetRepo(newMemUserRepo()), 0)
	assert.Equal(t, DefaultResetTokenTTL, s.TTL())
}

func TestResetTokenStore_IssueStoresHashForUser(t *testing.T) {
	users := newMemUserRepo()
	resets := newMemResetRepo(users)
	store := NewResetTokenStore(resets, time.Minute).WithClock(func() time.Time { return t0 })

	u := &models.User{Email: "a@b.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, users.CreateUser(context.Background(), u))

	token, err := store.Issue(context.Background(), u)
	require.NoError(t, err)

	recs := resets.byUser(u.ID)
	require.Len(t, recs, 1)
	assert.Equal(t, hashResetToken(token), recs[0].TokenHash)
	assert.True(t, recs[0].ExpiresAt.Equal(t0.Add(time.Minute)))
}
