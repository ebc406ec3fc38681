// Package pdf renders finalized invoices with maroto. Layout and labels
// switch on the invoice language (sr|en) and the document type heading on
// the tip fakture.
package pdf

import (
	"context"

	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	firmadomain "github.com/pausalko/pausalko/internal/firma/domain"
	komitentdomain "github.com/pausalko/pausalko/internal/komitent/domain"
)

type InvoiceDocument struct {
	Faktura  fakturadomain.Faktura
	Firma    firmadomain.Firma
	Komitent komitentdomain.Komitent
}

type Provider interface {
	GenerateInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

type NoOpProvider struct{}

func (NoOpProvider) GenerateInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error) {
	return nil, nil
}
