// Package devauth provides an in-process AuthBackend for local development.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"sync"

	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
	"github.com/UdayGopi/Dental-Clinic/internal/ports"
)

// ErrRejected is returned when Config.Password is set and does not match.
var ErrRejected = errors.New("dev auth: invalid credentials")

// ErrEmailTaken is returned when registering an email twice.
var ErrEmailTaken = errors.New("dev auth: email already registered")

// Config controls the dev backend behavior. All fields are optional.
type Config struct {
	// Role, when set, is returned for every login that is not a registered account.
	Role domainauth.Role
	// Password, when set, is the only password login accepts.
	Password string
}

type account struct {
	password string
	identity domainauth.Identity
}

// Provider implements ports.AuthBackend without a network hop.
// Registered accounts live in memory until the process exits.
type Provider struct {
	role     domainauth.Role
	password string

	mu       sync.Mutex
	accounts map[string]account
	nextID   int
}

var _ ports.AuthBackend = (*Provider)(nil)

// NewProvider constructs a dev backend from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Role != "" && !cfg.Role.Valid() {
		return nil, fmt.Errorf("dev auth: invalid role %q", cfg.Role)
	}
	return &Provider{
		role:     cfg.Role,
		password: cfg.Password,
		accounts: make(map[string]account),
		nextID:   1,
	}, nil
}

// Login returns the registered identity for the email, or a fresh identity
// carrying the configured role. An empty role is left for the caller to resolve.
func (p *Provider) Login(_ context.Context, req ports.LoginRequest) (ports.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if acct, ok := p.accounts[req.Email]; ok {
		if acct.password != req.Password {
			return ports.AuthResult{}, ErrRejected
		}
		return p.issue(acct.identity)
	}
	if p.password != "" && req.Password != p.password {
		return ports.AuthResult{}, ErrRejected
	}
	return p.issue(domainauth.Identity{
		ID:    "dev-" + strconv.Itoa(p.allocID()),
		Email: req.Email,
		Name:  domainauth.DisplayName(req.Email),
		Role:  p.role,
	})
}

// Register stores the account so later logins return the same identity.
func (p *Provider) Register(_ context.Context, req ports.RegisterRequest) (ports.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.accounts[req.Email]; ok {
		return ports.AuthResult{}, ErrEmailTaken
	}
	n := p.allocID()
	id := domainauth.Identity{
		ID:    strconv.Itoa(n),
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	}
	if req.Role == domainauth.RolePatient {
		ref := n
		id.PatientRef = &ref
	}
	p.accounts[req.Email] = account{password: req.Password, identity: id}
	return p.issue(id)
}

func (p *Provider) allocID() int {
	n := p.nextID
	p.nextID++
	return n
}

func (p *Provider) issue(id domainauth.Identity) (ports.AuthResult, error) {
	token, err := randomString(32)
	if err != nil {
		return ports.AuthResult{}, fmt.Errorf("generate token: %w", err)
	}
	return ports.AuthResult{Token: "dev-" + token, Identity: id}, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least n base64 URL chars
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
