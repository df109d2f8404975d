package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"html2pdf/internal/converter"
	"html2pdf/internal/domain"
	"html2pdf/internal/infra/chrome"
	"html2pdf/internal/infra/logging"
	"html2pdf/internal/infra/postgres"
)

// ConversionFailedMessage is the only detail callers see when rendering fails.
const ConversionFailedMessage = "PDF conversion failed"

// AuditRecorder stores conversion outcomes.
type AuditRecorder interface {
	Record(ctx context.Context, e postgres.AuditEntry) error
}

// PDFService serves the conversion endpoint.
type PDFService struct {
	Converter *converter.Converter
	Audit     AuditRecorder
}

// NewPDFService wires the handler. audit may be nil.
func NewPDFService(conv *converter.Converter, audit AuditRecorder) *PDFService {
	return &PDFService{Converter: conv, Audit: audit}
}

// HandleConversion converts the html of a JSON or form-encoded body into a PDF.
func (svc *PDFService) HandleConversion(c *fiber.Ctx) error {
	start := time.Now()
	ip := ClientIP(c)
	requestID := RequestID(c)
	logging.Info("PDF conversion requested", "ip", ip, "request_id", requestID, "body_bytes", len(c.Body()))

	entry := postgres.AuditEntry{RequestID: requestID, ClientIP: ip, InputBytes: len(c.Body())}

	payload, err := decodePayload(c)
	if err != nil {
		logging.Warn("Malformed conversion body", "ip", ip, "request_id", requestID, "error", err)
		svc.audit(entry, fiber.StatusBadRequest, "", start)
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	req, err := domain.NormalizeRequest(payload)
	if err != nil {
		logging.Error("PDF conversion rejected", "ip", ip, "request_id", requestID, "error", err)
		svc.audit(entry, fiber.StatusUnprocessableEntity, "", start)
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	res, err := svc.Converter.Convert(c.UserContext(), req)
	if err != nil {
		stage := ""
		var rf *domain.RenderingFailure
		if errors.As(err, &rf) {
			stage = string(rf.Stage)
		}
		logging.Error("PDF conversion failed",
			"ip", ip,
			"request_id", requestID,
			"stage", stage,
			"interrupted", chrome.IsSessionInterrupted(err),
			"error", err.Error(),
		)
		svc.audit(entry, fiber.StatusInternalServerError, stage, start)
		return fiber.NewError(fiber.StatusInternalServerError, ConversionFailedMessage)
	}

	entry.PDFBytes = res.Len()
	svc.audit(entry, fiber.StatusOK, "", start)
	logging.Info("PDF generated", "request_id", requestID, "pdf_bytes", res.Len(), "duration_ms", time.Since(start).Milliseconds())

	c.Set(fiber.HeaderContentType, res.ContentType+"; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="output.pdf"`)
	return c.Status(fiber.StatusOK).Send(res.Data)
}

// audit writes the outcome off the request path; failures are only logged.
func (svc *PDFService) audit(e postgres.AuditEntry, status int, stage string, start time.Time) {
	if svc.Audit == nil {
		return
	}
	e.Status = status
	e.Stage = stage
	e.DurationMS = time.Since(start).Milliseconds()
	go func() {
		if err := svc.Audit.Record(context.Background(), e); err != nil {
			logging.Warn("Audit write failed", "request_id", e.RequestID, "error", err)
		}
	}()
}
