package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/jwt"
	"go-stock-ledger/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownUser     = fmt.Errorf("%w: username does not exist", ErrNotFound)
	ErrWrongPassword   = errors.New("incorrect password")
	ErrNotApproved     = errors.New("account is awaiting administrator approval")
	ErrSessionReplaced = errors.New("session expired (logged in on another device)")
)

type AccountService interface {
	Register(req RegisterRequest) (*model.AccountResponse, error)
	CreateUser(actor model.Actor, req CreateUserRequest) (*model.AccountResponse, error)
	Authenticate(username, password string) (*model.Account, error)
	Login(username, password string) (*LoginResponse, error)
	ValidateToken(token string) (model.Actor, error)
	Approve(actor model.Actor, username string) (*model.AccountResponse, error)
	DeleteUser(actor model.Actor, username string) error
	ChangePassword(username, oldPassword, newPassword string) error
	ResetPassword(username, newPassword string) error
	Users() []model.AccountResponse
	PendingUsers() []model.AccountResponse
	Lookup(username string) (*model.AccountResponse, error)
	EnsureBootstrapAdmin(password string) (bool, error)
}

var _ AccountService = (*AccountDirectory)(nil)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=6"`
}

type CreateUserRequest struct {
	Username string     `json:"username" validate:"required,min=3,max=32"`
	Password string     `json:"password" validate:"required,min=6"`
	Role     model.Role `json:"role" validate:"omitempty,oneof=admin user"`
}

type LoginResponse struct {
	Token      string                `json:"token"`
	User       model.AccountResponse `json:"user"`
	Privileges []model.Privilege     `json:"privileges"`
}

// AccountDirectory owns user records. The bootstrap administrator named at
// construction can never be deleted.
type AccountDirectory struct {
	mu        sync.Mutex
	repo      repository.AccountRepository
	tokens    *jwt.Manager
	events    EventPublisher
	bootstrap string
	now       func() time.Time
	log       *logrus.Entry

	accounts map[string]model.Account
}

func NewAccountDirectory(repo repository.AccountRepository, tokens *jwt.Manager, events EventPublisher, bootstrapAdmin string) (*AccountDirectory, error) {
	if events == nil {
		events = nopPublisher{}
	}
	accounts, _, err := repo.LoadAccounts()
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return &AccountDirectory{
		repo:      repo,
		tokens:    tokens,
		events:    events,
		bootstrap: bootstrapAdmin,
		now:       time.Now,
		log:       logrus.WithField("component", "accounts"),
		accounts:  accounts,
	}, nil
}

func (d *AccountDirectory) persist() error {
	if err := d.repo.SaveAccounts(d.accounts); err != nil {
		d.log.WithError(err).WithField("kind", repository.KindUsers).Warn("Failed to persist accounts")
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (d *AccountDirectory) publish(actor string, typ model.EventType, subject, message string) {
	d.log.WithFields(logrus.Fields{"event": typ, "actor": actor, "subject": subject}).Info(message)
	d.events.Publish(model.Event{Type: typ, Actor: actor, Subject: subject, Message: message, At: d.now()})
}

// createLocked adds a new account. Only admins are approved on creation.
func (d *AccountDirectory) createLocked(username, password string, role model.Role, createdBy string) (model.Account, error) {
	if _, exists := d.accounts[username]; exists {
		return model.Account{}, fmt.Errorf("%w: username '%s' is taken", ErrConflict, username)
	}
	account := model.Account{
		Username:  username,
		Role:      role,
		Approved:  role == model.RoleAdmin,
		CreatedAt: d.now(),
	}
	if account.Approved {
		account.ApprovedBy = createdBy
	}
	if err := account.SetPassword(password); err != nil {
		return model.Account{}, errors.New("failed to hash password")
	}
	d.accounts[username] = account
	return account, nil
}

// Register is self-service sign-up: a regular user awaiting approval.
func (d *AccountDirectory) Register(req RegisterRequest) (*model.AccountResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validator.FirstError(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	account, err := d.createLocked(req.Username, req.Password, model.RoleUser, "")
	if err != nil {
		return nil, err
	}
	err = d.persist()
	d.publish(account.Username, model.EventUserRegistered, account.Username,
		fmt.Sprintf("%s registered and is awaiting approval", account.Username))
	resp := account.ToResponse()
	return &resp, err
}

func (d *AccountDirectory) CreateUser(actor model.Actor, req CreateUserRequest) (*model.AccountResponse, error) {
	if err := authorize(actor, model.PrivUserCreate); err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Role == "" {
		req.Role = model.RoleUser
	}
	if err := validator.FirstError(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	account, err := d.createLocked(req.Username, req.Password, req.Role, actor.Username)
	if err != nil {
		return nil, err
	}
	err = d.persist()
	resp := account.ToResponse()
	return &resp, err
}

// Authenticate checks, in order, that the user exists, the password matches
// and the account is approved. Each failure has its own error.
func (d *AccountDirectory) Authenticate(username, password string) (*model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	account, err := d.authenticateLocked(username, password)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (d *AccountDirectory) authenticateLocked(username, password string) (model.Account, error) {
	account, ok := d.accounts[strings.TrimSpace(username)]
	if !ok {
		return model.Account{}, ErrUnknownUser
	}
	if !account.CheckPassword(password) {
		return model.Account{}, ErrWrongPassword
	}
	if !account.Approved {
		return model.Account{}, ErrNotApproved
	}
	return account, nil
}

// Login authenticates and issues a token. Each login rotates the token
// version, which signs out any earlier session of the same user.
func (d *AccountDirectory) Login(username, password string) (*LoginResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	account, err := d.authenticateLocked(username, password)
	if err != nil {
		return nil, err
	}

	now := d.now()
	account.TokenVersion = uuid.New().String()
	account.LastLoginAt = &now
	d.accounts[account.Username] = account
	// a failed save only costs the session on restart
	_ = d.persist()

	token, err := d.tokens.GenerateToken(account.Username, string(account.Role), account.TokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	privileges := []model.Privilege{}
	actor := account.Actor()
	for _, p := range model.AllPrivileges {
		if actor.Can(p) {
			privileges = append(privileges, p)
		}
	}
	return &LoginResponse{Token: token, User: account.ToResponse(), Privileges: privileges}, nil
}

// ValidateToken resolves a bearer token to the acting user. The role comes
// from the stored account, not the token.
func (d *AccountDirectory) ValidateToken(token string) (model.Actor, error) {
	claims, err := d.tokens.ValidateToken(token)
	if err != nil {
		return model.Actor{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[claims.Username]
	if !ok {
		return model.Actor{}, ErrUnknownUser
	}
	if !account.Approved {
		return model.Actor{}, ErrNotApproved
	}
	if account.TokenVersion != claims.TokenVersion {
		return model.Actor{}, ErrSessionReplaced
	}
	return account.Actor(), nil
}

func (d *AccountDirectory) Approve(actor model.Actor, username string) (*model.AccountResponse, error) {
	if err := authorize(actor, model.PrivUserApprove); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)

	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[username]
	if !ok {
		return nil, ErrUnknownUser
	}
	if account.Approved {
		resp := account.ToResponse()
		return &resp, nil
	}
	account.Approved = true
	account.ApprovedBy = actor.Username
	d.accounts[username] = account
	err := d.persist()
	d.publish(actor.Username, model.EventUserApproved, username,
		fmt.Sprintf("%s approved %s", actor.Username, username))
	resp := account.ToResponse()
	return &resp, err
}

func (d *AccountDirectory) DeleteUser(actor model.Actor, username string) error {
	if err := authorize(actor, model.PrivUserDelete); err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == d.bootstrap {
		return fmt.Errorf("%w: the built-in administrator '%s' cannot be deleted", ErrForbidden, username)
	}
	if username == actor.Username {
		return fmt.Errorf("%w: you cannot delete your own account", ErrForbidden)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.accounts[username]; !ok {
		return ErrUnknownUser
	}
	delete(d.accounts, username)
	return d.persist()
}

// ChangePassword is the signed-in user's own change, checked against the
// current password.
func (d *AccountDirectory) ChangePassword(username, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: new password must be at least 6 characters", ErrInvalid)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[username]
	if !ok {
		return ErrUnknownUser
	}
	if !account.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := account.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	d.accounts[username] = account
	return d.persist()
}

// ResetPassword sets a password without the old one and signs out every
// session. Used by the maintenance command.
func (d *AccountDirectory) ResetPassword(username, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: new password must be at least 6 characters", ErrInvalid)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[username]
	if !ok {
		return ErrUnknownUser
	}
	if err := account.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	account.TokenVersion = ""
	d.accounts[username] = account
	return d.persist()
}

func (d *AccountDirectory) list(keep func(model.Account) bool) []model.AccountResponse {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := []model.AccountResponse{}
	for _, a := range d.accounts {
		if keep(a) {
			out = append(out, a.ToResponse())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (d *AccountDirectory) Users() []model.AccountResponse {
	return d.list(func(model.Account) bool { return true })
}

func (d *AccountDirectory) PendingUsers() []model.AccountResponse {
	return d.list(func(a model.Account) bool { return !a.Approved })
}

func (d *AccountDirectory) Lookup(username string) (*model.AccountResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[username]
	if !ok {
		return nil, ErrUnknownUser
	}
	resp := account.ToResponse()
	return &resp, nil
}

// EnsureBootstrapAdmin creates the built-in administrator on first run and
// reports whether it did.
func (d *AccountDirectory) EnsureBootstrapAdmin(password string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.accounts[d.bootstrap]; ok {
		if existing.Role != model.RoleAdmin {
			d.log.WithField("username", d.bootstrap).Warn("Built-in administrator account does not hold the admin role")
		}
		return false, nil
	}
	if strings.TrimSpace(password) == "" {
		return false, fmt.Errorf("%w: an initial password is required for '%s'", ErrInvalid, d.bootstrap)
	}
	if _, err := d.createLocked(d.bootstrap, password, model.RoleAdmin, model.SystemActor.Username); err != nil {
		return false, err
	}
	d.log.WithField("username", d.bootstrap).Info("Created built-in administrator")
	return true, d.persist()
}
