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
	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	"github.com/pausalko/pausalko/internal/komitent/domain"
	"github.com/pausalko/pausalko/internal/komitent/repository"
	"github.com/pausalko/pausalko/internal/scope"
	"github.com/pausalko/pausalko/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Komitent{},
		&fakturadomain.Faktura{},
		&fakturadomain.FakturaStavka{},
	))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func createRequest() domain.CreateKomitentRequest {
	return domain.CreateKomitentRequest{
		PIB:    "123456789",
		Naziv:  "Klijent DOO",
		Adresa: "Knez Mihailova",
		Mesto:  "Beograd",
		Drzava: "Srbija",
		Email:  "office@klijent.rs",
	}
}

func TestCreateKomitent(t *testing.T) {
	svc, _, node := newService(t)
	ctx := context.Background()
	sc := scope.ForFirma(node.Generate())

	komitent, err := svc.Create(ctx, sc, createRequest())
	require.NoError(t, err)
	assert.Equal(t, "123456789", komitent.PIB)
	assert.Equal(t, "Klijent DOO", komitent.Naziv)

	_, err = svc.Create(ctx, scope.Scope{}, createRequest())
	assert.ErrorIs(t, err, domain.ErrInvalidScope)
}

func TestCreateKomitentValidation(t *testing.T) {
	svc, _, node := newService(t)
	ctx := context.Background()
	sc := scope.ForFirma(node.Generate())

	req := createRequest()
	req.PIB = "12345"
	_, err := svc.Create(ctx, sc, req)
	assert.ErrorIs(t, err, domain.ErrInvalidPIB)

	req = createRequest()
	req.Naziv = " "
	_, err = svc.Create(ctx, sc, req)
	assert.ErrorIs(t, err, domain.ErrInvalidData)
}

func TestCreateKomitentDuplicatePIB(t *testing.T) {
	svc, _, node := newService(t)
	ctx := context.Background()
	firmaA := scope.ForFirma(node.Generate())
	firmaB := scope.ForFirma(node.Generate())

	_, err := svc.Create(ctx, firmaA, createRequest())
	require.NoError(t, err)

	_, err = svc.Create(ctx, firmaA, createRequest())
	assert.ErrorIs(t, err, domain.ErrPIBExists)

	// The same PIB is fine under a different firma.
	_, err = svc.Create(ctx, firmaB, createRequest())
	assert.NoError(t, err)
}

func TestUpdateKomitentKeepsPIB(t *testing.T) {
	svc, _, node := newService(t)
	ctx := context.Background()
	sc := scope.ForFirma(node.Generate())

	komitent, err := svc.Create(ctx, sc, createRequest())
	require.NoError(t, err)

	naziv := "Novi Naziv DOO"
	email := "novi@klijent.rs"
	updated, err := svc.Update(ctx, sc, komitent.ID, domain.UpdateKomitentRequest{
		Naziv: &naziv,
		Email: &email,
	})
	require.NoError(t, err)
	assert.Equal(t, "Novi Naziv DOO", updated.Naziv)
	assert.Equal(t, "novi@klijent.rs", updated.Email)
	assert.Equal(t, komitent.PIB, updated.PIB)

	blank := " "
	_, err = svc.Update(ctx, sc, komitent.ID, domain.UpdateKomitentRequest{Naziv: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidData)
}

func TestKomitentTenantIsolation(t *testing.T) {
	svc, _, node := newService(t)
	ctx := context.Background()
	firmaA := scope.ForFirma(node.Generate())
	firmaB := scope.ForFirma(node.Generate())

	komitent, err := svc.Create(ctx, firmaA, createRequest())
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, firmaB, komitent.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	resp, err := svc.List(ctx, firmaB, domain.ListKomitentFilter{}, pagination.Pagination{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Empty(t, resp.Komitenti)
}

func TestDeleteKomitentInUse(t *testing.T) {
	svc, db, node := newService(t)
	ctx := context.Background()
	sc := scope.ForFirma(node.Generate())
	firmaID, _ := sc.FirmaID()

	komitent, err := svc.Create(ctx, sc, createRequest())
	require.NoError(t, err)

	faktura := fakturadomain.Faktura{
		ID:          node.Generate(),
		FirmaID:     firmaID,
		KomitentID:  komitent.ID,
		UserID:      node.Generate(),
		BrojFakture: "TF-1/2025",
		TipFakture:  fakturadomain.TipStandardna,
		Valuta:      fakturadomain.ValutaRSD,
		Jezik:       "sr",
		Status:      fakturadomain.StatusIzdata,
	}
	require.NoError(t, db.Create(&faktura).Error)

	err = svc.Delete(ctx, sc, komitent.ID)
	assert.ErrorIs(t, err, domain.ErrInUse)

	require.NoError(t, db.Exec(`DELETE FROM fakture WHERE id = ?`, faktura.ID).Error)
	require.NoError(t, svc.Delete(ctx, sc, komitent.ID))

	_, err = svc.GetByID(ctx, sc, komitent.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListKomitentSearch(t *testing.T) {
	svc, _, node := newService(t)
	ctx := context.Background()
	sc := scope.ForFirma(node.Generate())
	page := pagination.Pagination{Page: 1, PerPage: 20}

	_, err := svc.Create(ctx, sc, createRequest())
	require.NoError(t, err)

	other := createRequest()
	other.PIB = "987654321"
	other.Naziv = "Dobavljac AD"
	_, err = svc.Create(ctx, sc, other)
	require.NoError(t, err)

	resp, err := svc.List(ctx, sc, domain.ListKomitentFilter{Search: "dobavljac"}, page)
	require.NoError(t, err)
	require.Len(t, resp.Komitenti, 1)
	assert.Equal(t, "Dobavljac AD", resp.Komitenti[0].Naziv)

	resp, err = svc.List(ctx, sc, domain.ListKomitentFilter{}, page)
	require.NoError(t, err)
	assert.Len(t, resp.Komitenti, 2)
	assert.EqualValues(t, 2, resp.TotalCount)
}
