package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/store"
	"github.com/cppla/standupbot/utils"
)

// Authentication methods recorded on a Principal.
const (
	MethodAPIKey = "api_key"
	MethodJWT    = "jwt"
)

// Principal is the authenticated caller of the admin API.
type Principal struct {
	KeyID  string
	Name   string
	Method string
	Token  string
	Expiry time.Time
}

// IssuedKey is returned once when a key is created; the secret is never stored.
type IssuedKey struct {
	models.Auth
	Key string `json:"key"`
}

// AuthService manages admin API keys and the session tokens exchanged for them.
type AuthService struct {
	deps      Deps
	signer    *utils.TokenSigner
	blacklist *utils.TokenBlacklist
}

func NewAuthService(deps Deps, signer *utils.TokenSigner, blacklist *utils.TokenBlacklist) *AuthService {
	return &AuthService{deps: deps, signer: signer, blacklist: blacklist}
}

// CreateKey stores a new API key and returns it as "<key id>.<secret>".
func (s *AuthService) CreateKey(ctx context.Context, name string) (IssuedKey, error) {
	name = utils.Sanitize(name)
	if name == "" {
		return IssuedKey{}, invalid("name is required")
	}
	keyID := uuid.NewString()
	secret := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	hash, err := utils.HashSecret(secret)
	if err != nil {
		return IssuedKey{}, fmt.Errorf("hash api key: %w", err)
	}
	a := models.Auth{Name: name, KeyID: keyID, KeyHash: hash, IsActive: true, CreatedAt: s.deps.Clock.Now()}
	if err := s.deps.Auth.Create(ctx, &a); err != nil {
		return IssuedKey{}, err
	}
	s.deps.logger().Info("api key created", zap.String("key_id", keyID), zap.String("name", name))
	return IssuedKey{Auth: a, Key: keyID + "." + secret}, nil
}

// Authenticate accepts either an API key or a session token.
func (s *AuthService) Authenticate(ctx context.Context, credential string) (Principal, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Principal{}, ErrInvalidCredentials
	}
	// API keys have exactly one dot, JWTs have two.
	if strings.Count(credential, ".") == 1 {
		return s.authenticateKey(ctx, credential)
	}
	return s.authenticateToken(ctx, credential)
}

// IssueToken exchanges a valid API key for a session token.
func (s *AuthService) IssueToken(ctx context.Context, apiKey string) (string, time.Time, error) {
	p, err := s.authenticateKey(ctx, strings.TrimSpace(apiKey))
	if err != nil {
		return "", time.Time{}, err
	}
	token, expires, err := s.signer.Generate(p.KeyID, p.Name)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}

// Revoke blacklists a session token until it expires.
func (s *AuthService) Revoke(ctx context.Context, p Principal) error {
	if p.Method != MethodJWT {
		return invalid("only session tokens can be revoked")
	}
	if err := s.blacklist.Revoke(ctx, p.Token, p.Expiry); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) authenticateKey(ctx context.Context, key string) (Principal, error) {
	keyID, secret, ok := strings.Cut(key, ".")
	if !ok || keyID == "" || secret == "" {
		return Principal{}, ErrInvalidCredentials
	}
	a, err := s.activeKey(ctx, keyID)
	if err != nil {
		return Principal{}, err
	}
	if !utils.CheckSecret(a.KeyHash, secret) {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{KeyID: a.KeyID, Name: a.Name, Method: MethodAPIKey}, nil
}

func (s *AuthService) authenticateToken(ctx context.Context, token string) (Principal, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return Principal{}, ErrInvalidCredentials
	}
	if s.blacklist.IsRevoked(ctx, token) {
		return Principal{}, ErrInvalidCredentials
	}
	// a disabled key also invalidates its sessions
	if _, err := s.activeKey(ctx, claims.KeyID); err != nil {
		return Principal{}, err
	}
	p := Principal{KeyID: claims.KeyID, Name: claims.Name, Method: MethodJWT, Token: token}
	if claims.ExpiresAt != nil {
		p.Expiry = claims.ExpiresAt.Time
	}
	return p, nil
}

func (s *AuthService) activeKey(ctx context.Context, keyID string) (models.Auth, error) {
	a, err := s.deps.Auth.GetByKeyID(ctx, keyID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Auth{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Auth{}, err
	}
	if !a.IsActive {
		return models.Auth{}, ErrInvalidCredentials
	}
	return a, nil
}
