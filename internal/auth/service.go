package auth

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"go-shop/internal/apperr"
	"go-shop/internal/media"
	"go-shop/internal/user"

	"github.com/sirupsen/logrus"
)

var (
	ErrTokenIssuance = errors.New("could not create token")
	ErrLogout        = errors.New("failed to log out")
)

// Service implements registration, login and logout on top of the
// credential store and the token service.
type Service struct {
	users    *user.Store
	tokens   *TokenService
	media    *media.Host
	maxImage int64
	log      logrus.FieldLogger
}

func NewService(users *user.Store, tokens *TokenService, host *media.Host, maxImage int64, log logrus.FieldLogger) *Service {
	return &Service{users: users, tokens: tokens, media: host, maxImage: maxImage, log: log}
}

// RegisterCommand is shape-checked by the caller; Register adds the checks
// that need the store or the file contents.
type RegisterCommand struct {
	Name           string
	Email          string
	Password       string
	ProfilePicture *multipart.FileHeader
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (string, *user.User, error) {
	v := apperr.NewValidation()
	taken, err := s.users.EmailTaken(ctx, cmd.Email, 0)
	if err != nil {
		return "", nil, err
	}
	if taken {
		v.Add("email", "The email has already been taken.")
	}
	if len(cmd.Password) < user.MinPasswordLength {
		v.Add("password", fmt.Sprintf("The password must be at least %d characters.", user.MinPasswordLength))
	}
	var img *media.Image
	if cmd.ProfilePicture != nil {
		img, err = media.ReadImage("profile_picture", cmd.ProfilePicture, s.maxImage)
		if fe, ok := apperr.AsValidation(err); ok {
			for field, msgs := range fe.Fields {
				for _, m := range msgs {
					v.Add(field, m)
				}
			}
		} else if err != nil {
			return "", nil, err
		}
	}
	if err := v.OrNil(); err != nil {
		return "", nil, err
	}

	hash, err := user.HashPassword(cmd.Password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}
	u := &user.User{Name: cmd.Name, Email: cmd.Email, PasswordHash: hash, Role: user.RoleUser}
	err = s.media.Attach(ctx, img, func(url *string) error {
		u.ProfilePicture = url
		return s.users.Create(ctx, u)
	})
	if err != nil {
		return "", nil, err
	}
	s.log.WithField("user_id", u.ID).Info("[Auth] user registered")

	token, err := s.tokens.Issue(u)
	if err != nil {
		s.log.WithError(err).Error("[Auth] token issuance failed")
		return "", nil, ErrTokenIssuance
	}
	return token, u, nil
}

// Login answers apperr.ErrInvalidCredentials for an unknown email and a
// wrong password alike.
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := user.CheckPassword(u.PasswordHash, password); err != nil {
		return "", nil, apperr.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		s.log.WithError(err).Error("[Auth] token issuance failed")
		return "", nil, ErrTokenIssuance
	}
	return token, u, nil
}

// Me returns the identity the middleware attached to ctx.
func (s *Service) Me(ctx context.Context) (*user.User, error) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return nil, apperr.ErrInvalidToken
	}
	return u, nil
}

// Logout revokes token. Any failure, including a token that no longer
// verifies, is reported as ErrLogout.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Invalidate(ctx, token); err != nil {
		s.log.WithError(err).Error("[Auth] logout failed")
		return ErrLogout
	}
	return nil
}
