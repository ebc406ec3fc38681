package nbs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type HTTPProvider struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

func NewHTTP(cfg Config, log *zap.Logger) *HTTPProvider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &HTTPProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.Named("providers.nbs"),
	}
}

type rateResponse struct {
	Valuta      string          `json:"valuta"`
	Datum       string          `json:"datum"`
	SrednjiKurs decimal.Decimal `json:"srednji_kurs"`
}

func (p *HTTPProvider) MiddleRate(ctx context.Context, valuta fakturadomain.Valuta, date time.Time) (decimal.Decimal, error) {
	if valuta == fakturadomain.ValutaRSD {
		return decimal.NewFromInt(1), nil
	}

	url := fmt.Sprintf("%s/kurs/%s/%s", p.cfg.BaseURL, valuta, date.Format("2006-01-02"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn("nbs rate request failed", zap.String("valuta", string(valuta)), zap.Error(err))
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return decimal.Zero, ErrRateNotFound
	case resp.StatusCode >= 500:
		return decimal.Zero, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return decimal.Zero, fmt.Errorf("nbs: unexpected status %d", resp.StatusCode)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("nbs: decode rate: %w", err)
	}
	if body.SrednjiKurs.IsZero() {
		return decimal.Zero, ErrRateNotFound
	}
	return body.SrednjiKurs, nil
}

func (p *HTTPProvider) Lookup(ctx context.Context, pib string) (*CompanyInfo, error) {
	url := fmt.Sprintf("%s/registar/%s", p.cfg.BaseURL, pib)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn("nbs lookup request failed", zap.String("pib", pib), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrCompanyNotFound
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("nbs: unexpected status %d", resp.StatusCode)
	}

	var info CompanyInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("nbs: decode company: %w", err)
	}
	return &info, nil
}
