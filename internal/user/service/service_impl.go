package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pausalko/pausalko/internal/clock"
	"github.com/pausalko/pausalko/internal/user/domain"
	"github.com/pausalko/pausalko/internal/user/password"
	pkgdb "github.com/pausalko/pausalko/pkg/db"
	"github.com/pausalko/pausalko/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLen = 8

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Users repository.Repository[domain.User]
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	users repository.Repository[domain.User]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		clock: p.Clock,
		users: p.Users,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidData
	}
	if len(req.Password) < minPasswordLen {
		return domain.User{}, domain.ErrInvalidData
	}
	if strings.TrimSpace(req.ImePrezime) == "" {
		return domain.User{}, domain.ErrInvalidData
	}
	role := req.Role
	if role == "" {
		role = domain.RolePausalac
	}
	if role != domain.RolePausalac && role != domain.RoleAdmin {
		return domain.User{}, domain.ErrInvalidData
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           s.genID.Generate(),
		FirmaID:      req.FirmaID,
		Email:        email,
		PasswordHash: hash,
		ImePrezime:   strings.TrimSpace(req.ImePrezime),
		Role:         role,
		IsActive:     true,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, email, plain string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindOne(ctx, &domain.User{Email: email})
	if err != nil {
		return domain.User{}, err
	}
	if user == nil || !password.Verify(user.PasswordHash, plain) {
		// Same error for both, so probes cannot enumerate accounts.
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return domain.User{}, domain.ErrInactive
	}
	return *user, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.User, error) {
	user, err := s.users.FindOne(ctx, &domain.User{ID: id})
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) AssignFirma(ctx context.Context, userID, firmaID snowflake.ID) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, user.ID.String(), map[string]interface{}{"firma_id": firmaID})
}
