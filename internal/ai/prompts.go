package ai

import (
	"strings"
	"text/template"
)

const jsonOnlyInstruction = "Respond with JSON only, without extra text or code fences."

const chatSystemPrompt = `You are Penny, the financial assistant of the PennyPilot app. Your job is to categorize spending data and present it clearly. ` + jsonOnlyInstruction

var chatPromptTemplate = template.Must(template.New("chat").Parse(`Analyze the user's spending and summarize it in two formats.

Steps:
1. The user provides a text description of their spending, a photo or screenshot of their transaction history, or both.
2. Identify every individual transaction and assign a spending category (Food, Shopping, Transport, Bills, Entertainment, Groceries, Health, Education, Housing, Savings, Others). Handle credits and income appropriately.
3. Sum the total amount for each category.

Output fields:
- categorizedText: one line per category in the form 'Category: Amount', without currency symbols.
- transactions: one object per category with its total, e.g. [{"category": "Food", "amount": 68.50}].
- response: a brief, friendly confirmation that you analyzed the data.

User message:
"{{.Text}}"
{{if .HasImage}}
The attached image contains the user's transaction data. Read every transaction from it.
{{end}}`))

const budgetSystemPrompt = `You are an expert financial analyst. ` + jsonOnlyInstruction

var budgetPromptTemplate = template.Must(template.New("suggest_budget").Parse(`Analyze the user's transaction history, categorize their spending, and give actionable budget advice.

Steps:
1. Group the transactions into meaningful spending categories (Food & Dining, Transportation, Shopping, Utilities, Entertainment, Health & Wellness, Other).
2. Sum the amounts for each category.
3. Based on the categorized spending and the user's goals, recommend a limit per category.
4. Highlight categories where spending looks excessive relative to typical budgets or the goals.

User's transaction history:
{{.TransactionHistory}}

User's financial goals:
{{.FinancialGoals}}
{{if .Categories}}
Prefer these existing budget categories where they fit:
{{.Categories}}
{{end}}
Output fields:
- categorizedSpending: array of {"category": string, "amount": number}.
- categorySuggestions: array of {"category": string, "suggestedLimit": number, "justification": string}.
- overspendingAreas: array of {"category": string, "explanation": string}.

All numbers must be plain JSON numbers without currency symbols.`))

type chatPromptData struct {
	Text     string
	HasImage bool
}

func renderPrompt(tmpl *template.Template, data interface{}) (string, error) {
	var builder strings.Builder
	if err := tmpl.Execute(&builder, data); err != nil {
		return "", err
	}

	return strings.TrimSpace(builder.String()), nil
}
