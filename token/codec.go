package token

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned by [Codec.Decode] on signature mismatch or
// structural corruption.
var ErrInvalidToken = errors.New("invalid token")

// SigningMethod selects the JWT signing algorithm.
type SigningMethod string

const (
	// MethodEd25519 signs with EdDSA over Ed25519 keys.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs with HMAC-SHA256 over a shared secret.
	MethodHS256 SigningMethod = "hs256"
)

// Config holds the key material and algorithm for a [Codec].
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
}

// Claims is the structured payload embedded in a session token. IssuedAt and
// ExpiresAt are integer epoch seconds so they compare exactly against the
// persisted session record.
type Claims struct {
	Subject   string
	IssuedAt  int64
	ExpiresAt int64
	TokenID   string
}

// NewClaims generates fresh claims for subject with the given lifetime. The
// token id is a random UUID, unique across accounts and time.
func NewClaims(subject string, ttl time.Duration, now time.Time) Claims {
	issued := now.Unix()
	return Claims{
		Subject:   subject,
		IssuedAt:  issued,
		ExpiresAt: issued + int64(ttl.Seconds()),
		TokenID:   uuid.NewString(),
	}
}

// Codec signs and verifies session tokens. It is stateless: validity of a
// decoded token against the session store is the caller's concern.
type Codec struct {
	config Config
}

type wireClaims struct {
	jwt.RegisteredClaims
}

// NewCodec validates cfg and returns a ready Codec.
func NewCodec(cfg Config) (*Codec, error) {
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Codec{config: cfg}, nil
}

// Encode signs claims into a compact token string.
func (c *Codec) Encode(claims Claims) (string, error) {
	wire := wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(time.Unix(claims.IssuedAt, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(claims.ExpiresAt, 0)),
			ID:        claims.TokenID,
			Issuer:    c.config.Issuer,
		},
	}

	tok := jwt.NewWithClaims(c.getMethod(), wire)

	signKey, err := c.getSignKey()
	if err != nil {
		return "", err
	}

	return tok.SignedString(signKey)
}

// Decode verifies the signature and structural shape of tokenStr and returns
// the embedded claims. Expiry is NOT checked against a clock here; callers
// compare the claims against the session record and apply the timeout policy
// separately.
func (c *Codec) Decode(tokenStr string) (Claims, error) {
	// Strict decoding rejects non-canonical base64url segments. Without it
	// the trailing padding bits of the signature are ignored, so a token
	// tampered only in those bits would still verify.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.getMethod().Alg()}),
		jwt.WithoutClaimsValidation(),
		jwt.WithStrictDecoding(),
	)

	tok, err := parser.ParseWithClaims(tokenStr, &wireClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.getVerifyKey()
	})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	wire, ok := tok.Claims.(*wireClaims)
	if !ok || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	if wire.Subject == "" || wire.ID == "" || wire.IssuedAt == nil || wire.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}
	if c.config.Issuer != "" && wire.Issuer != c.config.Issuer {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		Subject:   wire.Subject,
		IssuedAt:  wire.IssuedAt.Unix(),
		ExpiresAt: wire.ExpiresAt.Unix(),
		TokenID:   wire.ID,
	}, nil
}

func (c *Codec) getMethod() jwt.SigningMethod {
	switch c.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (c *Codec) getSignKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodHS256:
		return c.config.PrivateKey, nil
	default:
		return parseEdPrivateKey(c.config.PrivateKey)
	}
}

func (c *Codec) getVerifyKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodHS256:
		return c.config.PrivateKey, nil
	default:
		return parseEdPublicKey(c.config.PublicKey)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
