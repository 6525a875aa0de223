// Package insight talks to Gemini for the three AI surfaces: free-text
// insights, a structured financial forecast, and receipt extraction. Every
// surface degrades to a neutral placeholder or nil on failure so the primary
// transaction-recording workflow is never blocked by the model.
package insight

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/logger"
)

const (
	// ModelName is the Gemini model used for all three surfaces.
	ModelName = "gemini-2.5-flash"

	// summaryLimit bounds the insight prompt to the most recent transactions.
	summaryLimit = 50

	// forecastMinimum is the minimum history length worth forecasting.
	forecastMinimum = 5
)

// Placeholder texts returned when the model is unavailable or the input is
// too thin. Shown as-is to the user.
const (
	PlaceholderNoData      = "Adicione algumas transações para receber insights financeiros."
	PlaceholderUnavailable = "Insights temporariamente indisponíveis."
	PlaceholderKeepGoing   = "Continue registrando para mais insights."
)

// Generator produces insights from transaction history.
type Generator struct {
	client *genai.Client
	log    zerolog.Logger
}

// New creates a Generator. The genai client reads its API key from the
// GEMINI_API_KEY environment; creation fails only on configuration errors.
func New(ctx context.Context, log zerolog.Logger) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("insight: create genai client: %w", err)
	}
	return &Generator{client: client, log: logger.Component(log, "insight")}, nil
}

// Unavailable is the stand-in when no model client could be created. Every
// surface returns its degraded answer immediately.
type Unavailable struct{}

func (Unavailable) Insights(_ context.Context, transactions []domain.Transaction) string {
	if len(transactions) == 0 {
		return PlaceholderNoData
	}
	return PlaceholderUnavailable
}

func (Unavailable) Forecast(context.Context, []domain.Transaction) *domain.FinancialForecast {
	return nil
}

func (Unavailable) AnalyzeReceipt(context.Context, []byte, string) *domain.ReceiptExtraction {
	return nil
}

// txSummary is the bounded per-transaction shape embedded in prompts.
type txSummary struct {
	Type     string `json:"type"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

func summarize(transactions []domain.Transaction, limit int) []txSummary {
	if limit > 0 && len(transactions) > limit {
		transactions = transactions[:limit]
	}
	out := make([]txSummary, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, txSummary{
			Type:     string(t.Type),
			Amount:   t.Amount.String(),
			Date:     t.Date,
			Category: t.Category,
		})
	}
	return out
}

// Insights returns three short strategic insights in Portuguese for the 50
// most recent transactions, or a placeholder.
func (g *Generator) Insights(ctx context.Context, transactions []domain.Transaction) string {
	if len(transactions) == 0 {
		return PlaceholderNoData
	}

	summary, err := json.Marshal(summarize(transactions, summaryLimit))
	if err != nil {
		return PlaceholderUnavailable
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{{
			Text: "Analise estas transações financeiras e forneça 3 insights estratégicos curtos: " + string(summary),
		}},
	}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{
			Text: "Você é um CFO experiente. Seja direto, use tom profissional e foque em saúde do fluxo de caixa. Responda em português.",
		}}},
		Temperature: genai.Ptr[float32](0.4),
	}

	resp, err := g.client.Models.GenerateContent(ctx, ModelName, contents, config)
	if err != nil {
		g.log.Warn().Err(err).Msg("Insight generation failed")
		return PlaceholderUnavailable
	}
	if text := resp.Text(); text != "" {
		return text
	}
	return PlaceholderKeepGoing
}

// Forecast predicts next month's balance from the full history. Returns nil
// when the history is too short or on any failure.
func (g *Generator) Forecast(ctx context.Context, transactions []domain.Transaction) *domain.FinancialForecast {
	if len(transactions) < forecastMinimum {
		return nil
	}

	history, err := json.Marshal(summarize(transactions, 0))
	if err != nil {
		return nil
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{{
			Text: "Com base no histórico: " + string(history) + ". Preveja o saldo para o próximo mês e avalie o risco.",
		}},
	}}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"predictedBalance": {Type: genai.TypeNumber},
				"confidenceScore":  {Type: genai.TypeNumber},
				"riskLevel":        {Type: genai.TypeString, Enum: []string{"LOW", "MEDIUM", "HIGH"}},
				"explanation":      {Type: genai.TypeString},
			},
			Required: []string{"predictedBalance", "riskLevel", "explanation"},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, ModelName, contents, config)
	if err != nil {
		g.log.Warn().Err(err).Msg("Forecast generation failed")
		return nil
	}

	forecast, err := decodeForecast(resp.Text())
	if err != nil {
		g.log.Warn().Err(err).Msg("Forecast response was not valid JSON")
		return nil
	}
	return forecast
}

// AnalyzeReceipt extracts amount, date, description and a category
// suggestion from a receipt image. Returns nil on any failure.
func (g *Generator) AnalyzeReceipt(ctx context.Context, image []byte, mimeType string) *domain.ReceiptExtraction {
	if len(image) == 0 {
		return nil
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			{Text: "Extraia: valor total (amount), data (YYYY-MM-DD), estabelecimento (description) e sugira uma categoria financeira."},
		},
	}}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"amount":              {Type: genai.TypeNumber},
				"date":                {Type: genai.TypeString},
				"description":         {Type: genai.TypeString},
				"category_suggestion": {Type: genai.TypeString},
			},
			Required: []string{"amount", "date", "description"},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, ModelName, contents, config)
	if err != nil {
		g.log.Warn().Err(err).Msg("Receipt analysis failed")
		return nil
	}

	extraction, err := decodeExtraction(resp.Text())
	if err != nil {
		g.log.Warn().Err(err).Msg("Receipt response was not valid JSON")
		return nil
	}
	return extraction
}
