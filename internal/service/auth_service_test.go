package service

import (
	"context"
	"testing"

	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, *memUserRepo) {
	t.Helper()
	users := newMemUserRepo()
	return NewAuthService(users, newMemSessionRepo()), users
}

func seedUser(t *testing.T, users *memUserRepo, email, password string) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, PasswordHash: HashPassword(password)}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestIssueAndResolve(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()
	user := seedUser(t, users, "test@example.com", "password123")

	token, err := svc.Issue(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestIssueBadCredentials(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()
	seedUser(t, users, "test@example.com", "password123")

	// Wrong password and unknown email are the same failure; the response
	// must not confirm whether the account exists.
	_, wrongPass := svc.Issue(ctx, "test@example.com", "nope")
	_, unknownEmail := svc.Issue(ctx, "ghost@example.com", "password123")

	assert.ErrorIs(t, wrongPass, domain.ErrUnauthorized)
	assert.ErrorIs(t, unknownEmail, domain.ErrUnauthorized)
	assert.Equal(t, wrongPass.Error(), unknownEmail.Error())
}

func TestRevoke(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()
	seedUser(t, users, "test@example.com", "password123")

	token, err := svc.Issue(ctx, "test@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, token))

	_, err = svc.Resolve(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// A second revoke finds no session and reports it.
	assert.ErrorIs(t, svc.Revoke(ctx, token), domain.ErrUnauthorized)
	assert.ErrorIs(t, svc.Revoke(ctx, "never-issued"), domain.ErrUnauthorized)
}

func TestRegister(t *testing.T) {
	users := newMemUserRepo()
	queue := newRecordingQueue()
	svc := NewUserService(users, queue)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "pw")
	assertValidationMsg(t, err, "Missing email")
	_, err = svc.Register(ctx, "a@b.c", "")
	assertValidationMsg(t, err, "Missing password")

	user, err := svc.Register(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	assert.NotEqual(t, "pw", user.PasswordHash)

	_, err = svc.Register(ctx, "a@b.c", "other")
	assertValidationMsg(t, err, "Already exist")

	// Exactly one welcome job, for the one created account.
	require.Len(t, queue.payloads, 1)
	assert.Equal(t, user.ID, queue.payloads[0].UserID)
}

func assertValidationMsg(t *testing.T, err error, want string) {
	t.Helper()
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, want, ve.Msg)
}

type recordingQueue struct {
	payloads []domain.JobPayload
}

func newRecordingQueue() *recordingQueue {
	return &recordingQueue{}
}

func (q *recordingQueue) Enqueue(ctx context.Context, payload domain.JobPayload) error {
	q.payloads = append(q.payloads, payload)
	return nil
}

func (q *recordingQueue) Dequeue(ctx context.Context) (*domain.Delivery, error) {
	return nil, domain.ErrNotFound
}

func (q *recordingQueue) Ack(ctx context.Context, d *domain.Delivery) error { return nil }

func (q *recordingQueue) Nack(ctx context.Context, d *domain.Delivery, retryable bool) error {
	return nil
}
