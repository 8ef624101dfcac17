// Package session is the single source of truth for the admin login
// state. A session is created at login, persisted server-side, and
// referenced by a signed token; every admin route loads it through this
// service. This replaces the ad hoc storage reads the legacy front-end
// scattered across views.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/akulbansal1/carelink/internal/model"
	"github.com/akulbansal1/carelink/internal/remote"
	apperrors "github.com/akulbansal1/carelink/pkg/errors"
)

const defaultExpiry = 24 * time.Hour

type Config struct {
	JWTSecret string
	Expiry    time.Duration

	// The dashboard operator credential. The password is verified
	// locally against this bcrypt hash before anything goes upstream;
	// the legacy client-side flow never checked it at all.
	AdminEmail        string
	AdminPasswordHash string
}

// Store persists sessions between requests.
type Store interface {
	Save(ctx context.Context, id string, s *model.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// ProfileResolver maps the operator credential to a doctor identity.
type ProfileResolver interface {
	AdminLogin(ctx context.Context, email, password string) (*remote.AdminProfile, error)
}

type claims struct {
	SessionID string `json:"sid"`
	DoctorID  int64  `json:"doctor_id"`
	jwt.RegisteredClaims
}

type Service struct {
	cfg      Config
	store    Store
	resolver ProfileResolver
	now      func() time.Time
}

func NewService(cfg Config, store Store, resolver ProfileResolver) *Service {
	if cfg.Expiry <= 0 {
		cfg.Expiry = defaultExpiry
	}
	return &Service{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		now:      time.Now,
	}
}

// Login verifies the credentials, resolves the doctor profile upstream,
// persists a session, and returns it with a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*model.AdminLoginResponse, error) {
	if email != s.cfg.AdminEmail {
		return nil, apperrors.Unauthorized(fmt.Errorf("unknown admin email"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	profile, err := s.resolver.AdminLogin(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve admin profile: %w", err)
	}

	sess := &model.Session{
		DoctorID: profile.DoctorID,
		Name:     profile.Name,
		Location: profile.Location,
		LoginAt:  s.now(),
	}

	id := uuid.New().String()
	if err := s.store.Save(ctx, id, sess, s.cfg.Expiry); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	token, err := s.signToken(id, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return &model.AdminLoginResponse{Token: token, Session: sess}, nil
}

// Load returns the session behind a token, or ErrAuthRequired when the
// token is missing, invalid, expired, or the session is gone.
func (s *Service) Load(ctx context.Context, token string) (*model.Session, error) {
	id, err := s.sessionID(token)
	if err != nil {
		return nil, apperrors.ErrAuthRequired
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperrors.ErrAuthRequired
	}
	return sess, nil
}

// Clear ends the session behind a token. Clearing an already-absent
// session is not an error.
func (s *Service) Clear(ctx context.Context, token string) error {
	id, err := s.sessionID(token)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) signToken(sessionID string, sess *model.Session) (string, error) {
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: sessionID,
		DoctorID:  sess.DoctorID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Expiry)),
		},
	})
	return t.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Service) sessionID(token string) (string, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !parsed.Valid || c.SessionID == "" {
		return "", fmt.Errorf("invalid session token")
	}
	return c.SessionID, nil
}

// HashPassword produces the bcrypt hash stored in configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
