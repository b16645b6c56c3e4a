package usecase

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/slug"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// TokenTag is the fixed first field of every session token.
	TokenTag = "shortlink-auth"
	// TokenLifetime is the absolute validity of a session token from issuance.
	TokenLifetime = 14 * 24 * time.Hour
	// DefaultAPIKeySize is used when no positive key size is configured.
	DefaultAPIKeySize = 32
)

// apiKeyRepository stores the digest of the single API key. Get reports an
// empty slot with entity.ErrAPIKeyNotFound.
type apiKeyRepository interface {
	Get(ctx context.Context) (string, error)
	Put(ctx context.Context, digest string) error
	Clear(ctx context.Context) error
}

// Credentials is what a request presents for authorization.
type Credentials struct {
	SessionToken string
	APIKey       string
	// APIRequest is set when the request carries an x-api-key header, even an
	// empty one. Such requests skip the session check.
	APIRequest bool
}

// AuthUseCase issues and checks session tokens and manages the API key.
type AuthUseCase struct {
	password   string
	apiKeySize int
	keyRepo    apiKeyRepository
	now        func() time.Time
}

// NewAuthUseCase returns an AuthUseCase. An empty password disables the
// password and session checks entirely.
func NewAuthUseCase(password string, apiKeySize int, keyRepo apiKeyRepository) *AuthUseCase {
	if apiKeySize <= 0 {
		apiKeySize = DefaultAPIKeySize
	}

	return &AuthUseCase{
		password:   password,
		apiKeySize: apiKeySize,
		keyRepo:    keyRepo,
		now:        time.Now,
	}
}

// PasswordRequired reports whether a password is configured.
func (uc *AuthUseCase) PasswordRequired() bool {
	return uc.password != ""
}

// CheckPassword compares pw with the configured password.
func (uc *AuthUseCase) CheckPassword(pw string) bool {
	if !uc.PasswordRequired() {
		return true
	}

	return subtle.ConstantTimeCompare([]byte(pw), []byte(uc.password)) == 1
}

// IssueToken returns "<TokenTag>;<unix seconds>".
func (uc *AuthUseCase) IssueToken() string {
	return fmt.Sprintf("%s;%d", TokenTag, uc.now().Unix())
}

// CheckToken reports whether token carries TokenTag and was issued no more
// than TokenLifetime ago. An unparsable issue time counts as zero.
func (uc *AuthUseCase) CheckToken(token string) bool {
	parts := strings.Split(token, ";")
	if len(parts) < 2 {
		return false
	}

	issued, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || issued < 0 {
		issued = 0
	}

	return parts[0] == TokenTag && uc.now().Unix() <= issued+int64(TokenLifetime/time.Second)
}

// ValidateSession is the password path: it passes when no password is
// configured, otherwise the token must check out.
func (uc *AuthUseCase) ValidateSession(token string) bool {
	if !uc.PasswordRequired() {
		return true
	}

	return uc.CheckToken(token)
}

// ValidateAPIKey hashes key and compares it with the stored digest. An empty
// key, an empty slot and store errors all fail.
func (uc *AuthUseCase) ValidateAPIKey(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}

	stored, err := uc.keyRepo.Get(ctx)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(hashKey(key)), []byte(stored)) == 1
}

// Authenticate tries the session path, unless c is an API request, and then
// the API key path.
func (uc *AuthUseCase) Authenticate(ctx context.Context, c Credentials) bool {
	if !c.APIRequest && uc.ValidateSession(c.SessionToken) {
		return true
	}

	return uc.ValidateAPIKey(ctx, c.APIKey)
}

// GenerateAPIKey replaces the stored key digest with the digest of a fresh
// random key and returns the raw key. The raw key is not kept anywhere.
func (uc *AuthUseCase) GenerateAPIKey(ctx context.Context) (string, error) {
	const op = "usecase.AuthUseCase.GenerateAPIKey"

	key, err := gonanoid.Generate(slug.Alphabet, uc.apiKeySize)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate api key: %w", op, err)
	}

	if err := uc.keyRepo.Put(ctx, hashKey(key)); err != nil {
		return "", fmt.Errorf("%s: failed to store api key: %w", op, err)
	}

	return key, nil
}

// ResetAPIKey clears the stored key digest.
func (uc *AuthUseCase) ResetAPIKey(ctx context.Context) error {
	const op = "usecase.AuthUseCase.ResetAPIKey"

	if err := uc.keyRepo.Clear(ctx); err != nil {
		return fmt.Errorf("%s: failed to clear api key: %w", op, err)
	}

	return nil
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
