package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/pausalko/pausalko/internal/clock"
	firmadomain "github.com/pausalko/pausalko/internal/firma/domain"
	"github.com/pausalko/pausalko/internal/user/domain"
	"github.com/pausalko/pausalko/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &firmadomain.Firma{}))

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)),
		Users: repository.ProvideStore[domain.User](db),
	})
	return svc, db
}

func registerRequest() domain.RegisterRequest {
	return domain.RegisterRequest{
		Email:      "Pera@Primer.RS",
		Password:   "lozinka123",
		ImePrezime: "Pera Peric",
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "pera@primer.rs", user.Email)
	assert.Equal(t, domain.RolePausalac, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "lozinka123", user.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	req := registerRequest()
	req.Email = "nije-email"
	_, err := svc.Register(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidData)

	req = registerRequest()
	req.Password = "kratka"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidData)

	req = registerRequest()
	req.ImePrezime = " "
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidData)

	req = registerRequest()
	req.Role = "superadmin"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidData)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	// Same address with different casing still collides.
	req := registerRequest()
	req.Email = "PERA@PRIMER.RS"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "pera@primer.rs", "lozinka123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(ctx, "pera@primer.rs", "pogresna")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Unknown account fails with the same error as a bad password.
	_, err = svc.Authenticate(ctx, "niko@primer.rs", "lozinka123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, db.Exec(
		`UPDATE users SET is_active = ? WHERE id = ?`, false, registered.ID,
	).Error)
	_, err = svc.Authenticate(ctx, "pera@primer.rs", "lozinka123")
	assert.ErrorIs(t, err, domain.ErrInactive)
}

func TestAssignFirma(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	node, err := snowflake.NewNode(8)
	require.NoError(t, err)
	firma := firmadomain.Firma{
		ID:            node.Generate(),
		PIB:           "100200300",
		Naziv:         "Firma PR",
		Adresa:        "Adresa",
		BrojacFakture: 1,
		BrojacAvansne: 1,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&firma).Error)

	require.NoError(t, svc.AssignFirma(ctx, user.ID, firma.ID))

	reloaded, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.FirmaID)
	assert.Equal(t, firma.ID, *reloaded.FirmaID)

	err = svc.AssignFirma(ctx, snowflake.ID(999), firma.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
