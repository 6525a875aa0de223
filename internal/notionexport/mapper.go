package notionexport

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/financepro/financepro/internal/domain"
)

// transactionIDProperty is the rich-text property used to key pages by
// transaction identity. Publishing compares against it for idempotency.
const transactionIDProperty = "Transaction ID"

// TransactionToNotionProperties maps one transaction onto the Notion report
// database schema: Description (title), Date, Amount, Type, Category,
// Method, Transaction ID.
func TransactionToNotionProperties(tx domain.Transaction) notionapi.Properties {
	props := notionapi.Properties{
		"Description": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: tx.Description},
				},
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: tx.Amount.InexactFloat64(),
		},
		"Type": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Type)},
		},
		transactionIDProperty: notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: tx.ID},
				},
			},
		},
	}

	if day, err := time.Parse(domain.DateFormat, tx.Date); err == nil {
		d := notionapi.Date(day)
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &d},
		}
	}

	if tx.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: tx.Category},
		}
	}
	if tx.PaymentMethod != "" {
		props["Method"] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: tx.PaymentMethod},
		}
	}

	return props
}

// extractTransactionID reads the keying property from an existing page.
// Returns empty string when the page has no usable key.
func extractTransactionID(page notionapi.Page) string {
	prop, ok := page.Properties[transactionIDProperty]
	if !ok {
		return ""
	}
	richText, ok := prop.(*notionapi.RichTextProperty)
	if !ok || len(richText.RichText) == 0 {
		return ""
	}
	return richText.RichText[0].PlainText
}
