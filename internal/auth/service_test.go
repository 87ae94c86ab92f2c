package auth

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"go-shop/internal/apperr"
	"go-shop/internal/dbtest"
	"go-shop/internal/media"
	"go-shop/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	err      error
	uploaded []string
	deleted  []string
}

func (f *fakeUploader) Upload(_ context.Context, img *media.Image) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	url := "https://cdn.example.com/uploads/" + img.Name
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeUploader) Delete(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func pictureHeader(t *testing.T, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="profile_picture"; filename="me.png"`)
	part, _ := w.CreatePart(h)
	_, _ = part.Write(data)
	_ = w.Close()
	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["profile_picture"][0]
}

func newService(t *testing.T, up media.Uploader) (*Service, *user.Store) {
	t.Helper()
	conn := dbtest.Open(t)
	rdb, _ := dbtest.Redis(t)
	users := user.NewStore(conn)
	tokens := NewTokenService(testSecret, time.Hour, rdb, users)
	host := media.NewHost(up, time.Second, quietLogger())
	return NewService(users, tokens, host, 2048*1024, quietLogger()), users
}

func TestService_RegisterThenLogin(t *testing.T) {
	svc, _ := newService(t, &fakeUploader{})
	ctx := context.Background()

	token, u, err := svc.Register(ctx, RegisterCommand{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.Nil(t, u.ProfilePicture)

	me, err := svc.tokens.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	token2, u2, err := svc.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
	assert.Equal(t, u.ID, u2.ID)
}

func TestService_RegisterDuplicateEmailCreatesNothing(t *testing.T) {
	up := &fakeUploader{}
	svc, users := newService(t, up)
	ctx := context.Background()
	_, _, err := svc.Register(ctx, RegisterCommand{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	_, _, err = svc.Register(ctx, RegisterCommand{
		Name: "Other", Email: "ana@example.com", Password: "secret1",
		ProfilePicture: pictureHeader(t, png),
	})
	v, ok := apperr.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, v.Fields, "email")
	assert.Empty(t, up.uploaded, "nothing may be uploaded when validation fails")

	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestService_RegisterWithPicture(t *testing.T) {
	up := &fakeUploader{}
	svc, _ := newService(t, up)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	_, u, err := svc.Register(context.Background(), RegisterCommand{
		Name: "Ana", Email: "ana@example.com", Password: "secret1",
		ProfilePicture: pictureHeader(t, png),
	})
	require.NoError(t, err)
	require.NotNil(t, u.ProfilePicture)
	assert.Equal(t, up.uploaded[0], *u.ProfilePicture)
}

func TestService_RegisterUploadFailurePersistsNothing(t *testing.T) {
	svc, users := newService(t, &fakeUploader{err: errors.New("boom")})
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	_, _, err := svc.Register(context.Background(), RegisterCommand{
		Name: "Ana", Email: "ana@example.com", Password: "secret1",
		ProfilePicture: pictureHeader(t, png),
	})
	assert.ErrorIs(t, err, apperr.ErrMediaUpload)
	n, _ := users.Count(context.Background())
	assert.Zero(t, n)
}

func TestService_RegisterShortPassword(t *testing.T) {
	svc, _ := newService(t, &fakeUploader{})
	_, _, err := svc.Register(context.Background(), RegisterCommand{Name: "Ana", Email: "ana@example.com", Password: "123"})
	v, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "password")
}

func TestService_LoginInvalidCredentials(t *testing.T) {
	svc, _ := newService(t, &fakeUploader{})
	ctx := context.Background()
	_, _, err := svc.Register(ctx, RegisterCommand{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestService_MeAndLogout(t *testing.T) {
	svc, _ := newService(t, &fakeUploader{})
	ctx := context.Background()
	token, u, err := svc.Register(ctx, RegisterCommand{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Me(ctx)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)

	me, err := svc.Me(WithUser(ctx, u, token))
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.tokens.Verify(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestService_LogoutRejectsUnverifiableToken(t *testing.T) {
	svc, _ := newService(t, &fakeUploader{})

	err := svc.Logout(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrLogout)
}

func TestService_LogoutFailsWhenRedisIsDown(t *testing.T) {
	conn := dbtest.Open(t)
	rdb, mr := dbtest.Redis(t)
	users := user.NewStore(conn)
	tokens := NewTokenService(testSecret, time.Hour, rdb, users)
	svc := NewService(users, tokens, media.NewHost(&fakeUploader{}, time.Second, quietLogger()), 2048*1024, quietLogger())

	u := dbtest.SeedUser(t, conn, "Ana", "ana@example.com", "secret1", user.RoleUser)
	token, err := tokens.Issue(&u)
	require.NoError(t, err)

	mr.Close()
	assert.ErrorIs(t, svc.Logout(context.Background(), token), ErrLogout)
}
