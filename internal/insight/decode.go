package insight

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/financepro/financepro/internal/domain"
)

// cleanModelJSON strips Markdown fences and surrounding junk the model
// sometimes emits despite being asked for raw JSON.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Keep only the first top-level object if junk surrounds it.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

func decodeForecast(raw string) (*domain.FinancialForecast, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var payload struct {
		PredictedBalance json.Number `json:"predictedBalance"`
		ConfidenceScore  float64     `json:"confidenceScore"`
		RiskLevel        string      `json:"riskLevel"`
		Explanation      string      `json:"explanation"`
	}
	dec := json.NewDecoder(strings.NewReader(cleanModelJSON(raw)))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	balance, err := decimal.NewFromString(payload.PredictedBalance.String())
	if err != nil {
		return nil, fmt.Errorf("decode forecast balance: %w", err)
	}

	risk := domain.RiskLevel(payload.RiskLevel)
	switch risk {
	case domain.RiskLow, domain.RiskMedium, domain.RiskHigh:
	default:
		return nil, fmt.Errorf("decode forecast: unknown risk level %q", payload.RiskLevel)
	}

	return &domain.FinancialForecast{
		PredictedBalance: balance,
		ConfidenceScore:  payload.ConfidenceScore,
		RiskLevel:        risk,
		Explanation:      payload.Explanation,
	}, nil
}

func decodeExtraction(raw string) (*domain.ReceiptExtraction, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var payload struct {
		Amount             json.Number `json:"amount"`
		Date               string      `json:"date"`
		Description        string      `json:"description"`
		CategorySuggestion string      `json:"category_suggestion"`
	}
	dec := json.NewDecoder(strings.NewReader(cleanModelJSON(raw)))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}

	amount, err := decimal.NewFromString(payload.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("decode extraction amount: %w", err)
	}

	return &domain.ReceiptExtraction{
		Amount:             amount.Abs(),
		Date:               payload.Date,
		Description:        payload.Description,
		CategorySuggestion: payload.CategorySuggestion,
	}, nil
}
