package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	"github.com/shopspring/decimal"
)

type labels struct {
	Heading      map[fakturadomain.TipFakture]string
	IssueDate    string
	DueDate      string
	Buyer        string
	Seller       string
	PIB          string
	MaticniBroj  string
	Description  string
	Qty          string
	Unit         string
	UnitPrice    string
	Amount       string
	Total        string
	MiddleRate   string
	BankAccounts string
	NotVATPayer  string
}

var labelsSR = labels{
	Heading: map[fakturadomain.TipFakture]string{
		fakturadomain.TipStandardna: "Faktura",
		fakturadomain.TipProfaktura: "Profaktura",
		fakturadomain.TipAvansna:    "Avansna faktura",
		fakturadomain.TipDevizna:    "Faktura (devizna)",
	},
	IssueDate:    "Datum prometa",
	DueDate:      "Datum dospeća",
	Buyer:        "Kupac",
	Seller:       "Izdavalac",
	PIB:          "PIB",
	MaticniBroj:  "Matični broj",
	Description:  "Opis",
	Qty:          "Količina",
	Unit:         "JM",
	UnitPrice:    "Cena",
	Amount:       "Iznos",
	Total:        "Ukupno za uplatu",
	MiddleRate:   "Srednji kurs NBS",
	BankAccounts: "Tekući računi",
	NotVATPayer:  "Poreski obveznik nije u sistemu PDV-a.",
}

var labelsEN = labels{
	Heading: map[fakturadomain.TipFakture]string{
		fakturadomain.TipStandardna: "Invoice",
		fakturadomain.TipProfaktura: "Proforma invoice",
		fakturadomain.TipAvansna:    "Advance invoice",
		fakturadomain.TipDevizna:    "Invoice",
	},
	IssueDate:    "Date of issue",
	DueDate:      "Due date",
	Buyer:        "Bill to",
	Seller:       "Issuer",
	PIB:          "Tax ID",
	MaticniBroj:  "Reg. number",
	Description:  "Description",
	Qty:          "Qty",
	Unit:         "Unit",
	UnitPrice:    "Unit price",
	Amount:       "Amount",
	Total:        "Total due",
	MiddleRate:   "NBS middle rate",
	BankAccounts: "Bank accounts",
	NotVATPayer:  "The issuer is not registered for VAT.",
}

type MarotoProvider struct{}

func New() Provider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) GenerateInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error) {
	l := labelsSR
	if doc.Faktura.Jezik == "en" {
		l = labelsEN
	}
	heading, ok := l.Heading[doc.Faktura.TipFakture]
	if !ok {
		return nil, fmt.Errorf("pdf: unknown tip fakture %q", doc.Faktura.TipFakture)
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "{current}/{total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, heading, props.Text{Size: 18, Style: fontstyle.Bold}),
		text.NewCol(4, doc.Faktura.BrojFakture, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(6).Add(
			text.New(l.IssueDate+": "+doc.Faktura.DatumPrometa.Format("02.01.2006."), props.Text{Top: 0, Size: 9}),
			text.New(l.DueDate+": "+doc.Faktura.DatumDospeca.Format("02.01.2006."), props.Text{Top: 4, Size: 9}),
		),
		col.New(6),
	)

	m.AddRow(36,
		col.New(6).Add(
			text.New(l.Seller, props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(doc.Firma.Naziv, props.Text{Top: 5, Size: 9}),
			text.New(fmt.Sprintf("%s %s, %s %s", doc.Firma.Adresa, doc.Firma.Broj, doc.Firma.PostanskiBroj, doc.Firma.Mesto), props.Text{Top: 9, Size: 9}),
			text.New(l.PIB+": "+doc.Firma.PIB, props.Text{Top: 13, Size: 9}),
			text.New(l.MaticniBroj+": "+doc.Firma.MaticniBroj, props.Text{Top: 17, Size: 9}),
		),
		col.New(6).Add(
			text.New(l.Buyer, props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(doc.Komitent.Naziv, props.Text{Top: 5, Size: 9}),
			text.New(fmt.Sprintf("%s %s, %s %s", doc.Komitent.Adresa, doc.Komitent.Broj, doc.Komitent.PostanskiBroj, doc.Komitent.Mesto), props.Text{Top: 9, Size: 9}),
			text.New(l.PIB+": "+doc.Komitent.PIB, props.Text{Top: 13, Size: 9}),
		),
	)

	m.AddRow(8,
		text.NewCol(5, l.Description, props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, l.Qty, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, l.Unit, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, l.UnitPrice, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, l.Amount, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, stavka := range doc.Faktura.Stavke {
		m.AddRow(8,
			text.NewCol(5, stavka.Naziv, props.Text{Size: 9}),
			text.NewCol(2, stavka.Kolicina.String(), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, string(stavka.JedinicaMere), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatAmount(stavka.Cena), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatAmount(stavka.Ukupno), props.Text{Size: 9, Align: align.Right}),
		)
	}

	total, valuta := totalForDisplay(doc.Faktura)
	m.AddRow(12,
		col.New(6),
		text.NewCol(4, l.Total, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right}),
		text.NewCol(2, formatAmount(total)+" "+string(valuta), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right}),
	)
	if doc.Faktura.SrednjiKurs != nil {
		m.AddRow(6,
			text.NewCol(12, fmt.Sprintf("%s: %s RSD/%s", l.MiddleRate, doc.Faktura.SrednjiKurs.StringFixed(4), doc.Faktura.Valuta), props.Text{Size: 8, Align: align.Right}),
		)
	}

	m.AddRow(6, text.NewCol(12, l.BankAccounts+":", props.Text{Style: fontstyle.Bold, Size: 8, Top: 2}))
	if doc.Faktura.Valuta == fakturadomain.ValutaRSD {
		for _, racun := range doc.Firma.DinarskiRacuni {
			m.AddRow(5, text.NewCol(12, racun.Banka+"  "+racun.BrojRacuna, props.Text{Size: 8}))
		}
	} else {
		for _, racun := range doc.Firma.DevizniRacuni {
			m.AddRow(5, text.NewCol(12, fmt.Sprintf("%s  IBAN %s  SWIFT %s", racun.Banka, racun.IBAN, racun.SWIFT), props.Text{Size: 8}))
		}
	}

	m.AddRow(8, text.NewCol(12, l.NotVATPayer, props.Text{Size: 8, Top: 3}))

	result, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return result.GetBytes(), nil
}

// totalForDisplay prints the original-currency amount on devizne fakture
// and the RSD amount everywhere else.
func totalForDisplay(f fakturadomain.Faktura) (decimal.Decimal, fakturadomain.Valuta) {
	if f.UkupanIznosOriginalnaValuta != nil && f.Valuta != fakturadomain.ValutaRSD {
		return *f.UkupanIznosOriginalnaValuta, f.Valuta
	}
	return f.UkupanIznosRSD, fakturadomain.ValutaRSD
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
