package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pausalko/pausalko/internal/faktura/domain"
	firmadomain "github.com/pausalko/pausalko/internal/firma/domain"
	"github.com/pausalko/pausalko/internal/providers/email"
	"github.com/pausalko/pausalko/internal/providers/pdf"
	"github.com/pausalko/pausalko/internal/scope"
	"github.com/pausalko/pausalko/internal/tasks"
	"go.uber.org/zap"
)

// schedulePDF queues rendering after the finalize transaction committed.
// The invoice itself is already final; PDF state travels through
// pending -> generating -> generated|failed on the row.
func (s *Service) schedulePDF(firmaID, fakturaID snowflake.ID) {
	if s.dispatcher == nil {
		return
	}
	ok := s.dispatcher.Dispatch(tasks.Job{
		Name: "faktura.pdf",
		Run: func(ctx context.Context) error {
			return s.generatePDF(ctx, firmaID, fakturaID)
		},
		OnExhausted: func(ctx context.Context, err error) {
			s.metrics.IncPDFJob("failed")
			if updateErr := s.repo.UpdatePDF(ctx, s.db, fakturaID, domain.PDFFailed, "", err.Error()); updateErr != nil {
				s.log.Error("recording pdf failure failed",
					zap.Int64("faktura_id", fakturaID.Int64()),
					zap.Error(updateErr),
				)
			}
		},
	})
	if !ok {
		s.log.Warn("pdf job rejected, dispatcher stopped",
			zap.Int64("faktura_id", fakturaID.Int64()),
		)
	}
}

func (s *Service) generatePDF(ctx context.Context, firmaID, fakturaID snowflake.ID) error {
	if err := s.repo.UpdatePDF(ctx, s.db, fakturaID, domain.PDFGenerating, "", ""); err != nil {
		return err
	}

	doc, err := s.loadDocument(ctx, firmaID, fakturaID)
	if err != nil {
		return err
	}

	data, err := s.pdf.GenerateInvoice(ctx, *doc)
	if err != nil {
		return err
	}

	path := s.pdfPath(firmaID, fakturaID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	if err := s.repo.UpdatePDF(ctx, s.db, fakturaID, domain.PDFGenerated, path, ""); err != nil {
		return err
	}
	s.metrics.IncPDFJob("generated")
	s.log.Info("faktura pdf generated",
		zap.Int64("faktura_id", fakturaID.Int64()),
		zap.String("path", path),
	)
	return nil
}

func (s *Service) loadDocument(ctx context.Context, firmaID, fakturaID snowflake.ID) (*pdf.InvoiceDocument, error) {
	faktura, err := s.repo.FindByID(ctx, s.db, firmaID, fakturaID)
	if err != nil {
		return nil, err
	}
	if faktura == nil {
		return nil, domain.ErrNotFound
	}

	var firma firmadomain.Firma
	if err := s.db.WithContext(ctx).Where("id = ?", firmaID).First(&firma).Error; err != nil {
		return nil, err
	}

	komitent, err := s.komitentRepo.FindByID(ctx, s.db, firmaID, faktura.KomitentID)
	if err != nil {
		return nil, err
	}
	if komitent == nil {
		return nil, domain.ErrNoKomitent
	}

	return &pdf.InvoiceDocument{
		Faktura:  *faktura,
		Firma:    firma,
		Komitent: *komitent,
	}, nil
}

func (s *Service) pdfPath(firmaID, fakturaID snowflake.ID) string {
	return filepath.Join(s.cfg.PDFOutputDir, firmaID.String(), fakturaID.String()+".pdf")
}

// SendEmail delivers the rendered invoice as an attachment. The PDF must
// already be generated; callers retry after the background job finishes.
func (s *Service) SendEmail(ctx context.Context, sc scope.Scope, id snowflake.ID, to []string) error {
	firmaID, ok := sc.FirmaID()
	if !ok {
		return domain.ErrInvalidScope
	}

	faktura, err := s.repo.FindByID(ctx, s.db, firmaID, id)
	if err != nil {
		return err
	}
	if faktura == nil {
		return domain.ErrNotFound
	}
	if faktura.Status == domain.StatusDraft {
		return domain.ErrInvalidTransition
	}
	if faktura.StatusPDF != domain.PDFGenerated || faktura.PDFUrl == "" {
		return domain.ErrPDFNotReady
	}

	data, err := os.ReadFile(faktura.PDFUrl)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPDFNotReady, err)
	}

	if len(to) == 0 {
		komitent, err := s.komitentRepo.FindByID(ctx, s.db, firmaID, faktura.KomitentID)
		if err != nil {
			return err
		}
		if komitent == nil || komitent.Email == "" {
			return domain.ErrNoKomitent
		}
		to = []string{komitent.Email}
	}

	subject := "Faktura " + faktura.BrojFakture
	body := fmt.Sprintf("<p>U prilogu se nalazi faktura %s.</p>", faktura.BrojFakture)
	if faktura.Jezik == "en" {
		subject = "Invoice " + faktura.BrojFakture
		body = fmt.Sprintf("<p>Please find attached invoice %s.</p>", faktura.BrojFakture)
	}

	filename := strings.ReplaceAll(faktura.BrojFakture, "/", "-") + ".pdf"
	return s.email.Send(ctx, email.Message{
		To:       to,
		Subject:  subject,
		HTMLBody: body,
		Attachments: []email.Attachment{{
			Filename:    filename,
			ContentType: "application/pdf",
			Data:        data,
		}},
	})
}
