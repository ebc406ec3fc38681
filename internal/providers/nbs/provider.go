// Package nbs talks to the National Bank of Serbia public APIs: middle
// exchange rates for devizne fakture and the business-registry PIB lookup
// used to prefill komitent data.
package nbs

import (
	"context"
	"errors"
	"time"

	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	"github.com/shopspring/decimal"
)

var (
	// ErrRateNotFound means the NBS published no rate for that currency/date.
	ErrRateNotFound = errors.New("nbs_rate_not_found")
	// ErrCompanyNotFound means the registry knows no company under that PIB.
	ErrCompanyNotFound = errors.New("nbs_company_not_found")
	// ErrUnavailable marks transient upstream failures, retryable.
	ErrUnavailable = errors.New("nbs_unavailable")
)

// CompanyInfo is the registry record returned by a PIB lookup.
type CompanyInfo struct {
	PIB           string `json:"pib"`
	MaticniBroj   string `json:"maticni_broj"`
	Naziv         string `json:"naziv"`
	Adresa        string `json:"adresa"`
	Broj          string `json:"broj"`
	PostanskiBroj string `json:"postanski_broj"`
	Mesto         string `json:"mesto"`
}

type Provider interface {
	// MiddleRate returns the NBS middle rate for one unit of the currency
	// on the given date, in RSD.
	MiddleRate(ctx context.Context, valuta fakturadomain.Valuta, date time.Time) (decimal.Decimal, error)
	// Lookup fetches registry data for a nine-digit PIB.
	Lookup(ctx context.Context, pib string) (*CompanyInfo, error)
}

// NoOpProvider satisfies Provider where no NBS access is configured; RSD
// conversions still work because the rate for RSD is identity.
type NoOpProvider struct{}

func (NoOpProvider) MiddleRate(ctx context.Context, valuta fakturadomain.Valuta, date time.Time) (decimal.Decimal, error) {
	if valuta == fakturadomain.ValutaRSD {
		return decimal.NewFromInt(1), nil
	}
	return decimal.Zero, ErrRateNotFound
}

func (NoOpProvider) Lookup(ctx context.Context, pib string) (*CompanyInfo, error) {
	return nil, ErrCompanyNotFound
}
