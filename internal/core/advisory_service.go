package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"pymepos-backend-go/internal/db"
)

// Authorization errors for the advisory feature.
var (
	ErrAdvisoryNoUser     = errors.New("user id is required for advisory")
	ErrAdvisoryNotPremium = errors.New("advisory requires an active premium plan")
)

const advisoryAttempts = 3

// advisoryService implements AdvisoryService. The entitlement is checked
// fresh from the account store on every call; nothing is cached.
type advisoryService struct {
	accounts    db.AccountRepository
	model       AdvisoryModel
	logger      *zap.Logger
	backoffUnit time.Duration
}

// NewAdvisoryService creates an AdvisoryService.
func NewAdvisoryService(accounts db.AccountRepository, model AdvisoryModel, logger *zap.Logger) AdvisoryService {
	return &advisoryService{
		accounts:    accounts,
		model:       model,
		logger:      logger,
		backoffUnit: time.Second,
	}
}

// Advise authorizes the caller against subscription state, then asks the
// model for an HTML advisory over the supplied business summary. Transient
// model failures are retried with linearly increasing backoff; the last error
// surfaces when every attempt fails, keeping the adapter's error kind intact
// (quota exhaustion stays distinguishable for the caller).
func (s *advisoryService) Advise(ctx context.Context, userID string, summary map[string]interface{}) (string, error) {
	if userID == "" {
		return "", ErrAdvisoryNoUser
	}

	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", fmt.Errorf("%w: no account for user '%s'", ErrAdvisoryNotPremium, userID)
		}
		return "", fmt.Errorf("failed to check advisory entitlement for user '%s': %w", userID, err)
	}
	if !account.IsPremium() {
		return "", fmt.Errorf("%w: user '%s' is on plan '%s'", ErrAdvisoryNotPremium, userID, account.Plan)
	}

	prompt, err := buildAdvisoryPrompt(summary)
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= advisoryAttempts; attempt++ {
		text, err := s.model.Generate(ctx, prompt)
		if err == nil {
			return stripCodeFences(text), nil
		}
		lastErr = err
		s.logger.Warn("advisory model call failed",
			zap.Int("attempt", attempt),
			zap.String("userId", userID),
			zap.Error(err))

		if attempt == advisoryAttempts {
			break
		}
		// Linear backoff: 1s after the first failure, 2s after the second.
		select {
		case <-time.After(time.Duration(attempt) * s.backoffUnit):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// buildAdvisoryPrompt embeds the caller-supplied business summary into the
// natural-language prompt sent to the model.
func buildAdvisoryPrompt(summary map[string]interface{}) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode business summary: %w", err)
	}

	var b strings.Builder
	b.WriteString("Eres un asesor de negocios para pequeñas y medianas empresas. ")
	b.WriteString("Analiza el siguiente resumen del negocio y entrega recomendaciones ")
	b.WriteString("concretas sobre inventario, ventas y flujo de caja.\n\n")
	b.WriteString("Resumen del negocio:\n")
	b.Write(data)
	b.WriteString("\n\nResponde únicamente con un fragmento HTML (sin <html> ni <body>) ")
	b.WriteString("usando títulos, listas y párrafos breves.")
	return b.String(), nil
}

// stripCodeFences removes leading/trailing fenced-code markers the model
// tends to wrap HTML output in. The content itself passes through as-is.
func stripCodeFences(text string) string {
	out := strings.TrimSpace(text)
	if strings.HasPrefix(out, "```") {
		if idx := strings.IndexByte(out, '\n'); idx >= 0 {
			out = out[idx+1:]
		} else {
			out = strings.TrimPrefix(out, "```")
		}
	}
	out = strings.TrimSpace(out)
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}
