package service

import (
	"context"
	"errors"
	"strings"

	"github.com/hamstergame/platform/internal/auth"
	"github.com/hamstergame/platform/internal/domain"
	"github.com/hamstergame/platform/internal/repository"
	"github.com/google/uuid"
)

// AuthService handles dev email login and first-login provisioning.
type AuthService struct {
	store        repository.Store
	jwtMgr       *auth.JWTManager
	startingCash int64
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repository.Store, jwtMgr *auth.JWTManager, startingCash int64) *AuthService {
	return &AuthService{
		store:        store,
		jwtMgr:       jwtMgr,
		startingCash: startingCash,
	}
}

// LoginInput holds the login request fields. Name and InviteCode only apply
// on the first login of an email.
type LoginInput struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	InviteCode string `json:"inviteCode"`
}

// AuthResult is returned on successful login.
type AuthResult struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"userId"`
	PlayerID  uuid.UUID `json:"playerId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	CashCents int64     `json:"cashCents"`
}

// Login finds or creates the user for the email, provisions a player with the
// starting balance if none exists, and issues a session token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := domain.NormalizeEmail(input.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	res, err := s.login(ctx, email, input)
	if errors.Is(err, repository.ErrConflict) {
		// A concurrent first login created the user or player; the retry finds it.
		res, err = s.login(ctx, email, input)
	}
	return res, err
}

func (s *AuthService) login(ctx context.Context, email string, input LoginInput) (*AuthResult, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer uow.Rollback(ctx)

	user, err := uow.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		user = &domain.User{
			ID:    uuid.New(),
			Email: email,
			Name:  displayName(input.Name, email),
		}
		if err := uow.Users().Create(ctx, user); err != nil {
			return nil, domain.ErrInternal("create user", err)
		}
		if err := uow.Outbox().Insert(ctx, domain.NewUserCreatedEvent(user)); err != nil {
			return nil, domain.ErrInternal("insert outbox event", err)
		}
	}

	player, err := uow.Players().FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if player == nil {
		player, err = s.provision(ctx, uow, user, strings.TrimSpace(input.InviteCode))
		if err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	token, err := s.jwtMgr.GenerateToken(user.ID, user.Email, user.Name, user.IsAdmin)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{
		Token:     token,
		UserID:    user.ID,
		PlayerID:  player.ID,
		Email:     user.Email,
		Name:      user.Name,
		IsAdmin:   user.IsAdmin,
		CashCents: player.CashCents,
	}, nil
}

func (s *AuthService) provision(ctx context.Context, uow repository.UnitOfWork, user *domain.User, inviteCode string) (*domain.Player, error) {
	player := &domain.Player{
		ID:        uuid.New(),
		UserID:    user.ID,
		CashCents: s.startingCash,
	}

	if inviteCode != "" {
		group, err := uow.Groups().FindByInviteCode(ctx, inviteCode)
		if err != nil {
			return nil, domain.ErrInternal("find group", err)
		}
		if group == nil {
			return nil, domain.ErrNotFound("group", inviteCode)
		}
		player.GroupID = &group.ID
	}

	if err := uow.Players().Create(ctx, player); err != nil {
		return nil, domain.ErrInternal("create player", err)
	}
	if err := uow.Outbox().Insert(ctx, domain.NewPlayerProvisionedEvent(player)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}
	return player, nil
}

// displayName falls back to the local part of the email.
func displayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
