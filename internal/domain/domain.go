package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// UserRole is the access tier of an authenticated user.
type UserRole string

const (
	RoleNormal   UserRole = "NORMAL"
	RoleAdvanced UserRole = "ADVANCED"
)

// RiskLevel grades a financial forecast.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// DateFormat is the calendar-day format used everywhere a transaction date
// appears: storage rows, reminder matching, exports.
const DateFormat = "2006-01-02"

// Transaction is one income or expense entry. Amount is always a positive
// magnitude; the sign shown to the user is derived from Type, never stored.
type Transaction struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"` // calendar day, YYYY-MM-DD
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	Type          TransactionType `json:"type"`

	// Attachment is an optional base64-encoded receipt or document,
	// kept inline on the record as the backend stores it.
	Attachment     string `json:"attachment,omitempty"`
	AttachmentName string `json:"attachmentName,omitempty"`
}

// SignedAmount returns the amount with the display sign applied:
// negative for expenses, positive for income.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Category labels transactions of one type. Names are unique per type, not
// globally. Transactions reference categories by name string, so deleting a
// category leaves any transaction that used it with an orphaned label.
type Category struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Type TransactionType `json:"type"`
}

// User is the authenticated owner of the in-memory state.
type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// BackupSnapshot is a full denormalized copy of the user's collections,
// written periodically as a redundant copy and never read back in-app.
type BackupSnapshot struct {
	Timestamp         time.Time     `json:"timestamp"`
	TransactionsCount int           `json:"transactions_count"`
	CategoriesCount   int           `json:"categories_count"`
	Transactions      []Transaction `json:"transactions"`
	Categories        []Category    `json:"categories"`
}

// FinancialForecast is ephemeral model output, regenerated on demand and
// never persisted.
type FinancialForecast struct {
	PredictedBalance decimal.Decimal `json:"predictedBalance"`
	ConfidenceScore  float64         `json:"confidenceScore"`
	RiskLevel        RiskLevel       `json:"riskLevel"`
	Explanation      string          `json:"explanation"`
}

// ReceiptExtraction is the structured result of analyzing a receipt image.
type ReceiptExtraction struct {
	Amount             decimal.Decimal `json:"amount"`
	Date               string          `json:"date"`
	Description        string          `json:"description"`
	CategorySuggestion string          `json:"category_suggestion"`
}

// PaymentMethods is the fixed set of accepted payment methods.
var PaymentMethods = []string{
	"Cartão de Crédito",
	"Cartão de Débito",
	"Pix",
	"Transferência Bancária",
	"Dinheiro",
	"Boleto",
}

// DefaultCategories returns the built-in categories served when the backend
// is unconfigured or holds none for the user yet.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Vendas", Type: TypeIncome},
		{ID: "2", Name: "Serviços", Type: TypeIncome},
		{ID: "3", Name: "Salários", Type: TypeExpense},
		{ID: "4", Name: "Aluguel", Type: TypeExpense},
	}
}
