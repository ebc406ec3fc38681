package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	artikaldomain "github.com/pausalko/pausalko/internal/artikal/domain"
	"github.com/pausalko/pausalko/internal/clock"
	"github.com/pausalko/pausalko/internal/config"
	"github.com/pausalko/pausalko/internal/faktura/domain"
	"github.com/pausalko/pausalko/internal/faktura/repository"
	firmadomain "github.com/pausalko/pausalko/internal/firma/domain"
	komitentdomain "github.com/pausalko/pausalko/internal/komitent/domain"
	komitentrepo "github.com/pausalko/pausalko/internal/komitent/repository"
	kpodomain "github.com/pausalko/pausalko/internal/kpo/domain"
	kporepo "github.com/pausalko/pausalko/internal/kpo/repository"
	kposervice "github.com/pausalko/pausalko/internal/kpo/service"
	"github.com/pausalko/pausalko/internal/numbering"
	"github.com/pausalko/pausalko/internal/providers/email"
	"github.com/pausalko/pausalko/internal/providers/nbs"
	"github.com/pausalko/pausalko/internal/providers/pdf"
	"github.com/pausalko/pausalko/internal/scope"
	"github.com/pausalko/pausalko/internal/tasks"
	"github.com/pausalko/pausalko/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeRates struct {
	rate decimal.Decimal
	err  error
}

func (f fakeRates) MiddleRate(ctx context.Context, valuta domain.Valuta, date time.Time) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.rate, nil
}

func (f fakeRates) Lookup(ctx context.Context, pib string) (*nbs.CompanyInfo, error) {
	return nil, nbs.ErrCompanyNotFound
}

type fakeEmail struct {
	sent []email.Message
}

func (f *fakeEmail) Send(ctx context.Context, msg email.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

type testEnv struct {
	db         *gorm.DB
	svc        domain.Service
	kpoSvc     kpodomain.Service
	kpoRepo    kporepo.Repository
	dispatcher *tasks.Dispatcher
	clock      *clock.FakeClock
	email      *fakeEmail
	firma      firmadomain.Firma
	komitent   komitentdomain.Komitent
	userID     snowflake.ID
}

func (e *testEnv) scope() scope.Scope {
	return scope.ForFirma(e.firma.ID)
}

func newTestEnv(t *testing.T, rates nbs.Provider) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&firmadomain.Firma{},
		&komitentdomain.Komitent{},
		&domain.Faktura{},
		&domain.FakturaStavka{},
		&kpodomain.KPOEntry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	fc := clock.NewFakeClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	firma := firmadomain.Firma{
		ID:          node.Generate(),
		PIB:         "100200300",
		MaticniBroj: "12345678",
		Naziv:       "Test Firma PR",
		Adresa:      "Bulevar oslobodjenja",
		Broj:        "10",
		Mesto:       "Novi Sad",
		Drzava:      "Srbija",
		Email:       "firma@test.rs",
		DinarskiRacuni: datatypes.NewJSONSlice([]firmadomain.DinarskiRacun{
			{Banka: "Banca Intesa", BrojRacuna: "160-0000000000001-11"},
		}),
		PrefiksFakture: "TF-",
		SufiksFakture:  "/2025",
		BrojacFakture:  1,
		BrojacAvansne:  1,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&firma).Error)

	komitent := komitentdomain.Komitent{
		ID:      node.Generate(),
		FirmaID: firma.ID,
		PIB:     "123456789",
		Naziv:   "Klijent DOO",
		Adresa:  "Knez Mihailova",
		Mesto:   "Beograd",
		Drzava:  "Srbija",
		Email:   "office@klijent.rs",
	}
	require.NoError(t, db.Create(&komitent).Error)

	numberingSvc := numbering.New(numbering.Params{Logger: log})
	kpoSvc := kposervice.New(kposervice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     fc,
		Repo:      kporepo.Provide(),
		Numbering: numberingSvc,
	})
	dispatcher := tasks.New(tasks.Params{
		Log:    log,
		Config: tasks.Config{MaxAttempts: 2, BaseDelay: time.Millisecond},
	})
	fe := &fakeEmail{}

	svc := New(Params{
		DB:           db,
		Log:          log,
		Config:       config.Config{PDFOutputDir: t.TempDir()},
		GenID:        node,
		Clock:        fc,
		Repo:         repository.Provide(),
		KomitentRepo: komitentrepo.Provide(),
		Numbering:    numberingSvc,
		KPO:          kpoSvc,
		Rates:        rates,
		PDF:          pdf.NoOpProvider{},
		Email:        fe,
		Dispatcher:   dispatcher,
	})

	return &testEnv{
		db:         db,
		svc:        svc,
		kpoSvc:     kpoSvc,
		kpoRepo:    kporepo.Provide(),
		dispatcher: dispatcher,
		clock:      fc,
		email:      fe,
		firma:      firma,
		komitent:   komitent,
		userID:     node.Generate(),
	}
}

func pagePagination() pagination.Pagination {
	return pagination.Pagination{Page: 1, PerPage: 20}
}

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func (e *testEnv) draftRequest() domain.CreateFakturaRequest {
	return domain.CreateFakturaRequest{
		KomitentID:     e.komitent.ID,
		TipFakture:     domain.TipStandardna,
		Valuta:         domain.ValutaRSD,
		DatumPrometa:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		ValutaPlacanja: 15,
		Stavke: []domain.StavkaInput{{
			Naziv:        "Konsultantske usluge",
			Kolicina:     dec("10"),
			JedinicaMere: artikaldomain.JedinicaCas,
			Cena:         dec("5000.00"),
		}},
	}
}

func (e *testEnv) mustFinalize(t *testing.T, id snowflake.ID) domain.Faktura {
	t.Helper()
	faktura, err := e.svc.Finalize(context.Background(), e.scope(), id)
	require.NoError(t, err)
	e.dispatcher.Wait()
	return faktura
}

func TestCreateDraft(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	faktura, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDraft, faktura.Status)
	assert.True(t, strings.HasPrefix(faktura.BrojFakture, "DRAFT-"))
	assert.True(t, faktura.UkupanIznosRSD.Equal(dec("50000.00")))
	assert.Nil(t, faktura.UkupanIznosOriginalnaValuta)
	assert.Equal(t, domain.PDFPending, faktura.StatusPDF)
	require.Len(t, faktura.Stavke, 1)
	assert.Equal(t, 1, faktura.Stavke[0].RedniBroj)
	assert.True(t, faktura.Stavke[0].Ukupno.Equal(dec("50000.00")))
	assert.Equal(t, time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC), faktura.DatumDospeca)
}

func TestCreateRejectsValutaMismatch(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	req := env.draftRequest()
	req.Valuta = domain.ValutaEUR
	_, err := env.svc.Create(ctx, env.scope(), env.userID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidValuta)

	req = env.draftRequest()
	req.TipFakture = domain.TipDevizna
	req.Valuta = domain.ValutaRSD
	_, err = env.svc.Create(ctx, env.scope(), env.userID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidValuta)
}

func TestCreateValidatesStavke(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*domain.StavkaInput)
	}{
		{"empty naziv", func(s *domain.StavkaInput) { s.Naziv = "  " }},
		{"bad jedinica", func(s *domain.StavkaInput) { s.JedinicaMere = "tona" }},
		{"zero kolicina", func(s *domain.StavkaInput) { s.Kolicina = decimal.Zero }},
		{"negative cena", func(s *domain.StavkaInput) { s.Cena = dec("-1") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := env.draftRequest()
			tc.mutate(&req.Stavke[0])
			_, err := env.svc.Create(ctx, env.scope(), env.userID, req)
			assert.ErrorIs(t, err, domain.ErrInvalidStavka)
		})
	}
}

func TestCreateRequiresScopeAndKomitent(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	_, err := env.svc.Create(ctx, scope.Scope{}, env.userID, env.draftRequest())
	assert.ErrorIs(t, err, domain.ErrInvalidScope)

	req := env.draftRequest()
	req.KomitentID = snowflake.ID(99999)
	_, err = env.svc.Create(ctx, env.scope(), env.userID, req)
	assert.ErrorIs(t, err, domain.ErrNoKomitent)
}

func TestFinalizeAssignsNumberAndLedgerEntry(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	draft, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)

	faktura := env.mustFinalize(t, draft.ID)
	assert.Equal(t, "TF-1/2025", faktura.BrojFakture)
	assert.Equal(t, domain.StatusIzdata, faktura.Status)
	require.NotNil(t, faktura.FinalizedAt)
	assert.True(t, faktura.UkupanIznosRSD.Equal(dec("50000.00")))

	entry, err := env.kpoRepo.FindByFaktura(ctx, env.db, faktura.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.RedniBroj)
	assert.Equal(t, 2025, entry.Godina)
	assert.Equal(t, "TF-1/2025", entry.BrojFakture)
	assert.Equal(t, "Klijent DOO", entry.KomitentNaziv)
	assert.Equal(t, "123456789", entry.KomitentPIB)
	assert.Equal(t, "Konsultantske usluge", entry.Opis)
	assert.True(t, entry.IznosRSD.Equal(dec("50000.00")))
	assert.Equal(t, kpodomain.EntryIzdata, entry.StatusFakture)

	second, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	issued := env.mustFinalize(t, second.ID)
	assert.Equal(t, "TF-2/2025", issued.BrojFakture)

	entry2, err := env.kpoRepo.FindByFaktura(ctx, env.db, issued.ID)
	require.NoError(t, err)
	require.NotNil(t, entry2)
	assert.Equal(t, 2, entry2.RedniBroj)
}

func TestFinalizeProfakturaSkipsLedger(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	req := env.draftRequest()
	req.TipFakture = domain.TipProfaktura
	draft, err := env.svc.Create(ctx, env.scope(), env.userID, req)
	require.NoError(t, err)

	faktura := env.mustFinalize(t, draft.ID)
	assert.Equal(t, "TF-1/2025", faktura.BrojFakture)

	entry, err := env.kpoRepo.FindByFaktura(ctx, env.db, faktura.ID)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestFinalizeAvansnaUsesOwnCounter(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	standard, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	issued := env.mustFinalize(t, standard.ID)
	assert.Equal(t, "TF-1/2025", issued.BrojFakture)

	req := env.draftRequest()
	req.TipFakture = domain.TipAvansna
	avansna, err := env.svc.Create(ctx, env.scope(), env.userID, req)
	require.NoError(t, err)
	issuedAvansna := env.mustFinalize(t, avansna.ID)
	assert.Equal(t, "TF-A1/2025", issuedAvansna.BrojFakture)

	// The avansna did not consume the standard counter.
	next, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	issuedNext := env.mustFinalize(t, next.ID)
	assert.Equal(t, "TF-2/2025", issuedNext.BrojFakture)

	// Advance invoices are ledgerable.
	entry, err := env.kpoRepo.FindByFaktura(ctx, env.db, issuedAvansna.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
}

func TestFinalizeDeviznaSnapshotsKurs(t *testing.T) {
	env := newTestEnv(t, fakeRates{rate: dec("117.2500")})
	ctx := context.Background()

	req := env.draftRequest()
	req.TipFakture = domain.TipDevizna
	req.Valuta = domain.ValutaEUR
	req.Stavke = []domain.StavkaInput{{
		Naziv:        "Software development",
		Kolicina:     dec("2"),
		JedinicaMere: artikaldomain.JedinicaDan,
		Cena:         dec("50.00"),
	}}
	draft, err := env.svc.Create(ctx, env.scope(), env.userID, req)
	require.NoError(t, err)
	assert.True(t, draft.UkupanIznosRSD.IsZero())
	require.NotNil(t, draft.UkupanIznosOriginalnaValuta)
	assert.True(t, draft.UkupanIznosOriginalnaValuta.Equal(dec("100.00")))

	faktura := env.mustFinalize(t, draft.ID)
	require.NotNil(t, faktura.SrednjiKurs)
	assert.True(t, faktura.SrednjiKurs.Equal(dec("117.2500")))
	assert.True(t, faktura.UkupanIznosRSD.Equal(dec("11725.00")))

	entry, err := env.kpoRepo.FindByFaktura(ctx, env.db, faktura.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.IznosRSD.Equal(dec("11725.00")))
	assert.Equal(t, domain.ValutaEUR, entry.Valuta)
}

func TestFinalizeDeviznaFailsWhenKursUnavailable(t *testing.T) {
	env := newTestEnv(t, fakeRates{err: nbs.ErrUnavailable})
	ctx := context.Background()

	req := env.draftRequest()
	req.TipFakture = domain.TipDevizna
	req.Valuta = domain.ValutaEUR
	draft, err := env.svc.Create(ctx, env.scope(), env.userID, req)
	require.NoError(t, err)

	_, err = env.svc.Finalize(ctx, env.scope(), draft.ID)
	assert.ErrorIs(t, err, domain.ErrKursUnavailable)

	// The draft stays untouched and keeps its provisional number.
	reloaded, err := env.svc.GetByID(ctx, env.scope(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, reloaded.Status)
	assert.True(t, strings.HasPrefix(reloaded.BrojFakture, "DRAFT-"))
}

func TestFinalizeRejectsNonDraftAndEmpty(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	draft, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	env.mustFinalize(t, draft.ID)

	_, err = env.svc.Finalize(ctx, env.scope(), draft.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	empty := env.draftRequest()
	empty.Stavke = nil
	emptyDraft, err := env.svc.Create(ctx, env.scope(), env.userID, empty)
	require.NoError(t, err)
	_, err = env.svc.Finalize(ctx, env.scope(), emptyDraft.ID)
	assert.ErrorIs(t, err, domain.ErrNoStavke)
}

func TestEditDraftOnly(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	draft, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)

	edited, err := env.svc.Edit(ctx, env.scope(), draft.ID, domain.EditFakturaRequest{
		Stavke: []domain.StavkaInput{
			{
				Naziv:        "Odrzavanje sistema",
				Kolicina:     dec("1"),
				JedinicaMere: artikaldomain.JedinicaUsluga,
				Cena:         dec("30000.00"),
			},
			{
				Naziv:        "Obuka",
				Kolicina:     dec("2"),
				JedinicaMere: artikaldomain.JedinicaCas,
				Cena:         dec("4000.00"),
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, edited.Stavke, 2)
	assert.Equal(t, 2, edited.Stavke[1].RedniBroj)
	assert.True(t, edited.UkupanIznosRSD.Equal(dec("38000.00")))

	env.mustFinalize(t, draft.ID)
	_, err = env.svc.Edit(ctx, env.scope(), draft.ID, domain.EditFakturaRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDeleteDraftOnly(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	draft, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	require.NoError(t, env.svc.Delete(ctx, env.scope(), draft.ID))

	_, err = env.svc.GetByID(ctx, env.scope(), draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	issued, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	env.mustFinalize(t, issued.ID)
	err = env.svc.Delete(ctx, env.scope(), issued.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStornoFlipsLedgerMirror(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	draft, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	env.mustFinalize(t, draft.ID)

	_, err = env.svc.Storno(ctx, env.scope(), draft.ID, "  ", "pera")
	assert.ErrorIs(t, err, domain.ErrMissingRazlog)

	stornirana, err := env.svc.Storno(ctx, env.scope(), draft.ID, "pogresan iznos", "pera")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStornirana, stornirana.Status)
	assert.Equal(t, "pogresan iznos", stornirana.StornoRazlog)
	require.NotNil(t, stornirana.StorniranaAt)

	entry, err := env.kpoRepo.FindByFaktura(ctx, env.db, draft.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, kpodomain.EntryStornirana, entry.StatusFakture)
	// The entry itself stays in the book.
	assert.Equal(t, 1, entry.RedniBroj)

	_, err = env.svc.Storno(ctx, env.scope(), draft.ID, "ponovo", "pera")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStornoProfakturaWithoutEntry(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	req := env.draftRequest()
	req.TipFakture = domain.TipProfaktura
	draft, err := env.svc.Create(ctx, env.scope(), env.userID, req)
	require.NoError(t, err)
	env.mustFinalize(t, draft.ID)

	stornirana, err := env.svc.Storno(ctx, env.scope(), draft.ID, "odustao klijent", "pera")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStornirana, stornirana.Status)
}

func TestLedgerSnapshotsFrozenAfterKomitentEdit(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	draft, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	env.mustFinalize(t, draft.ID)

	require.NoError(t, env.db.Exec(
		`UPDATE komitenti SET naziv = ? WHERE id = ?`, "Preimenovani DOO", env.komitent.ID,
	).Error)

	entry, err := env.kpoRepo.FindByFaktura(ctx, env.db, draft.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Klijent DOO", entry.KomitentNaziv)
}

func TestTotalPrometExcludesStornirane(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	first, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	env.mustFinalize(t, first.ID)

	second, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	env.mustFinalize(t, second.ID)

	total, err := env.kpoSvc.TotalPromet(ctx, env.scope(), kpodomain.PrometFilter{})
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("100000.00")), "got %s", total)

	_, err = env.svc.Storno(ctx, env.scope(), second.ID, "duplikat", "pera")
	require.NoError(t, err)

	total, err = env.kpoSvc.TotalPromet(ctx, env.scope(), kpodomain.PrometFilter{})
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("50000.00")), "got %s", total)

	all, err := env.kpoSvc.TotalPromet(ctx, env.scope(), kpodomain.PrometFilter{Status: kpodomain.FilterAll})
	require.NoError(t, err)
	assert.True(t, all.Equal(dec("100000.00")), "got %s", all)
}

func TestTenantIsolation(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	draft, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	env.mustFinalize(t, draft.ID)

	other := scope.ForFirma(snowflake.ID(424242))
	_, err = env.svc.GetByID(ctx, other, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	resp, err := env.kpoSvc.List(ctx, other, kpodomain.ListFilter{}, pagePagination())
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)
	assert.Zero(t, resp.TotalCount)
}

func TestUnscopedListSpansFirme(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	draft, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	env.mustFinalize(t, draft.ID)

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	druga := firmadomain.Firma{
		ID:          node.Generate(),
		PIB:         "300400500",
		MaticniBroj: "87654321",
		Naziv:       "Druga Firma PR",
		Adresa:      "Druga adresa",
		Broj:        "2",
		Mesto:       "Beograd",
		Drzava:      "Srbija",
		Email:       "druga@test.rs",
		DinarskiRacuni: datatypes.NewJSONSlice([]firmadomain.DinarskiRacun{
			{Banka: "NLB", BrojRacuna: "310-0000000000002-22"},
		}),
		PrefiksFakture: "DF-",
		SufiksFakture:  "/2025",
		BrojacFakture:  1,
		BrojacAvansne:  1,
		IsActive:       true,
	}
	require.NoError(t, env.db.Create(&druga).Error)

	tudja := domain.Faktura{
		ID:          node.Generate(),
		FirmaID:     druga.ID,
		KomitentID:  env.komitent.ID,
		UserID:      node.Generate(),
		BrojFakture: "DF-1/2025",
		TipFakture:  domain.TipStandardna,
		Valuta:      domain.ValutaRSD,
		Jezik:       "sr",
		Status:      domain.StatusIzdata,
	}
	require.NoError(t, env.db.Create(&tudja).Error)

	// A tenant-bound reader sees only its own fakture.
	resp, err := env.svc.List(ctx, env.scope(), domain.ListFakturaFilter{}, pagePagination())
	require.NoError(t, err)
	require.Len(t, resp.Fakture, 1)
	assert.Equal(t, "TF-1/2025", resp.Fakture[0].BrojFakture)

	// The privileged unscoped reader spans every firma.
	resp, err = env.svc.List(ctx, scope.Unscoped(), domain.ListFakturaFilter{}, pagePagination())
	require.NoError(t, err)
	assert.Len(t, resp.Fakture, 2)
	assert.EqualValues(t, 2, resp.TotalCount)

	// The zero scope stays rejected; unscoped must be requested explicitly.
	_, err = env.svc.List(ctx, scope.Scope{}, domain.ListFakturaFilter{}, pagePagination())
	assert.ErrorIs(t, err, domain.ErrInvalidScope)
}

func TestConcurrentFinalizeKeepsSequencesContiguous(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	// A single pooled connection keeps the shared in-memory database from
	// surfacing busy errors while the goroutines race for the sequences.
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	const n = 8
	ids := make([]snowflake.ID, 0, n)
	for i := 0; i < n; i++ {
		draft, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
		require.NoError(t, err)
		ids = append(ids, draft.ID)
	}

	errs := make(chan error, n)
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id snowflake.ID) {
			defer wg.Done()
			_, err := env.svc.Finalize(ctx, env.scope(), id)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	env.dispatcher.Wait()
	for err := range errs {
		require.NoError(t, err)
	}

	// The KPO book is duplicate-free and gapless: exactly 1..n.
	var redni []int
	require.NoError(t, env.db.Table("kpo_entries").
		Where("firma_id = ?", env.firma.ID).
		Order("redni_broj asc").
		Pluck("redni_broj", &redni).Error)
	require.Len(t, redni, n)
	for i, r := range redni {
		assert.Equal(t, i+1, r)
	}

	// Invoice numbers cover TF-1..TF-n with no duplicates.
	var brojevi []string
	require.NoError(t, env.db.Table("fakture").
		Where("firma_id = ?", env.firma.ID).
		Pluck("broj_fakture", &brojevi).Error)
	require.Len(t, brojevi, n)
	want := make(map[string]bool, n)
	for i := 1; i <= n; i++ {
		want[fmt.Sprintf("TF-%d/2025", i)] = true
	}
	for _, broj := range brojevi {
		assert.True(t, want[broj], "unexpected broj %s", broj)
		delete(want, broj)
	}
	assert.Empty(t, want)
}

// pinnedSequence always hands out the same KPO ordinal so the unique index
// on (firma, godina, redni_broj) must fire on insert.
type pinnedSequence struct {
	numbering.Service
	redni int
}

func (p pinnedSequence) NextRedniBroj(ctx context.Context, tx *gorm.DB, firmaID snowflake.ID, godina int) (int, error) {
	return p.redni, nil
}

func TestSequenceConflictAbortsFinalize(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	first, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)
	env.mustFinalize(t, first.ID)

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	log := zap.NewNop()
	real := numbering.New(numbering.Params{Logger: log})
	colliding := kposervice.New(kposervice.Params{
		DB:        env.db,
		Log:       log,
		GenID:     node,
		Clock:     env.clock,
		Repo:      kporepo.Provide(),
		Numbering: pinnedSequence{Service: real, redni: 1},
	})
	svc := New(Params{
		DB:           env.db,
		Log:          log,
		Config:       config.Config{PDFOutputDir: t.TempDir()},
		GenID:        node,
		Clock:        env.clock,
		Repo:         repository.Provide(),
		KomitentRepo: komitentrepo.Provide(),
		Numbering:    real,
		KPO:          colliding,
		Rates:        nbs.NoOpProvider{},
		PDF:          pdf.NoOpProvider{},
		Email:        env.email,
		Dispatcher:   env.dispatcher,
	})

	second, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, env.scope(), second.ID)
	assert.ErrorIs(t, err, kpodomain.ErrSequenceConflict)

	// The whole transaction rolled back: still a draft with its provisional
	// number, and the standard counter was not consumed.
	reloaded, err := env.svc.GetByID(ctx, env.scope(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, reloaded.Status)
	assert.True(t, strings.HasPrefix(reloaded.BrojFakture, "DRAFT-"))

	issued := env.mustFinalize(t, second.ID)
	assert.Equal(t, "TF-2/2025", issued.BrojFakture)
}

func TestAvansnaReferenceValidation(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	avansnaReq := env.draftRequest()
	avansnaReq.TipFakture = domain.TipAvansna
	avansna, err := env.svc.Create(ctx, env.scope(), env.userID, avansnaReq)
	require.NoError(t, err)

	// Referencing a draft avansna is rejected.
	req := env.draftRequest()
	req.AvansnaFakturaID = &avansna.ID
	_, err = env.svc.Create(ctx, env.scope(), env.userID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidAvansna)

	env.mustFinalize(t, avansna.ID)

	settled, err := env.svc.Create(ctx, env.scope(), env.userID, req)
	require.NoError(t, err)
	require.NotNil(t, settled.AvansnaFakturaID)
	assert.Equal(t, avansna.ID, *settled.AvansnaFakturaID)

	// Only standardne fakture may settle an advance.
	profReq := env.draftRequest()
	profReq.TipFakture = domain.TipProfaktura
	profReq.AvansnaFakturaID = &avansna.ID
	_, err = env.svc.Create(ctx, env.scope(), env.userID, profReq)
	assert.ErrorIs(t, err, domain.ErrInvalidAvansna)
}

func TestPDFPipelineAndSendEmail(t *testing.T) {
	env := newTestEnv(t, nbs.NoOpProvider{})
	ctx := context.Background()

	draft, err := env.svc.Create(ctx, env.scope(), env.userID, env.draftRequest())
	require.NoError(t, err)

	err = env.svc.SendEmail(ctx, env.scope(), draft.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	env.mustFinalize(t, draft.ID)

	issued, err := env.svc.GetByID(ctx, env.scope(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PDFGenerated, issued.StatusPDF)
	assert.NotEmpty(t, issued.PDFUrl)

	require.NoError(t, env.svc.SendEmail(ctx, env.scope(), draft.ID, nil))
	require.Len(t, env.email.sent, 1)
	msg := env.email.sent[0]
	assert.Equal(t, []string{"office@klijent.rs"}, msg.To)
	assert.Equal(t, "Faktura TF-1/2025", msg.Subject)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "TF-1-2025.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
}
