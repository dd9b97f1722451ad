package session

import (
	"fmt"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/koyif/cardbank/internal/domain"
	"github.com/koyif/cardbank/pkg/logger"
)

// Credential is a username/password/role triple seeded into the gate.
// The password is hashed at construction and never retained.
type Credential struct {
	Username string
	Password string
	Role     domain.Role
}

// DemoCredentials matches the accounts the demo backend is provisioned with.
func DemoCredentials() []Credential {
	return []Credential{
		{Username: "admin", Password: "admin123", Role: domain.RoleAdmin},
		{Username: "customer", Password: "customer123", Role: domain.RoleCustomer},
	}
}

type user struct {
	passwordHash []byte
	role         domain.Role
}

// Gate decides which dashboard a caller may view and mints the identity
// that flows into subsequent requests. It is UX routing, not a security
// control: the backend must still enforce authorization on every request.
type Gate struct {
	users      map[string]user
	privateKey string
}

func New(creds []Credential, privateKey string) (*Gate, error) {
	users := make(map[string]user, len(creds))
	for _, c := range creds {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("error while hashing password: %w", err)
		}
		users[c.Username] = user{passwordHash: hash, role: c.Role}
	}

	return &Gate{users: users, privateKey: privateKey}, nil
}

// Authenticate checks the credential pair and returns a fresh identity with
// a signed session token. The identity lives for the browser-session
// equivalent: until logout or process exit.
func (g *Gate) Authenticate(username, password string) (*domain.SessionIdentity, error) {
	u, ok := g.users[username]
	if !ok {
		logger.Log.Warn("unknown user", logger.String("username", username))
		return nil, domain.ErrIncorrectCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		logger.Log.Warn("incorrect password", logger.String("username", username))
		return nil, domain.ErrIncorrectCredentials
	}

	token, err := generateToken(username, u.role, g.privateKey)
	if err != nil {
		return nil, err
	}

	return &domain.SessionIdentity{
		Username: username,
		Role:     u.role,
		Token:    token,
	}, nil
}

// Authorize reports whether the identity may view content that requires the
// given role. A nil identity is never authorized; callers route a denial
// back to the login entry point instead of rendering partial content.
func (g *Gate) Authorize(id *domain.SessionIdentity, required domain.Role) bool {
	return id != nil && id.Role == required
}

func generateToken(username string, role domain.Role, privateKey string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  username,
		"role": string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(privateKey))
	if err != nil {
		return "", fmt.Errorf("error while signing token: %w", err)
	}

	return signedToken, nil
}
