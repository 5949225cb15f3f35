package ai

// SchemaKind names a JSON value type in an output schema.
type SchemaKind string

const (
	KindObject SchemaKind = "object"
	KindArray  SchemaKind = "array"
	KindString SchemaKind = "string"
	KindNumber SchemaKind = "number"
)

// Schema is a provider-neutral output contract.
type Schema struct {
	Kind        SchemaKind
	Description string
	Properties  map[string]*Schema
	Ordering    []string
	Required    []string
	Items       *Schema
}

var transactionSchema = &Schema{
	Kind:     KindObject,
	Ordering: []string{"category", "amount"},
	Required: []string{"category", "amount"},
	Properties: map[string]*Schema{
		"category": {Kind: KindString, Description: "The spending category (e.g., Food, Transport)."},
		"amount":   {Kind: KindNumber, Description: "Total amount spent in the category, without currency symbols."},
	},
}

// ChatOutputSchema is the contract for the conversational flow.
var ChatOutputSchema = &Schema{
	Kind:     KindObject,
	Ordering: []string{"categorizedText", "transactions", "response"},
	Required: []string{"response"},
	Properties: map[string]*Schema{
		"response": {
			Kind:        KindString,
			Description: "A friendly, conversational response to the user.",
		},
		"categorizedText": {
			Kind:        KindString,
			Description: "Plain multi-line summary, one 'Category: Amount' per line.",
		},
		"transactions": {
			Kind:        KindArray,
			Description: "One entry per category with its total, used for charts.",
			Items:       transactionSchema,
		},
	},
}

// BudgetSuggestionSchema is the contract for the budget suggestion flow.
var BudgetSuggestionSchema = &Schema{
	Kind:     KindObject,
	Ordering: []string{"categorizedSpending", "categorySuggestions", "overspendingAreas"},
	Required: []string{"categorySuggestions", "overspendingAreas"},
	Properties: map[string]*Schema{
		"categorizedSpending": {
			Kind:        KindArray,
			Description: "Spending categories with their total amount.",
			Items:       transactionSchema,
		},
		"categorySuggestions": {
			Kind:        KindArray,
			Description: "Budget suggestion per category.",
			Items: &Schema{
				Kind:     KindObject,
				Ordering: []string{"category", "suggestedLimit", "justification"},
				Required: []string{"category", "suggestedLimit", "justification"},
				Properties: map[string]*Schema{
					"category":       {Kind: KindString},
					"suggestedLimit": {Kind: KindNumber},
					"justification":  {Kind: KindString},
				},
			},
		},
		"overspendingAreas": {
			Kind:        KindArray,
			Description: "Categories where the user is likely overspending.",
			Items: &Schema{
				Kind:     KindObject,
				Ordering: []string{"category", "explanation"},
				Required: []string{"category", "explanation"},
				Properties: map[string]*Schema{
					"category":    {Kind: KindString},
					"explanation": {Kind: KindString},
				},
			},
		},
	},
}

// JSONSchema renders the schema as a JSON-Schema document for providers
// that take the contract as prompt text.
func (s *Schema) JSONSchema() map[string]interface{} {
	if s == nil {
		return nil
	}

	out := map[string]interface{}{"type": string(s.Kind)}
	if s.Description != "" {
		out["description"] = s.Description
	}

	if len(s.Properties) > 0 {
		props := make(map[string]interface{}, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop.JSONSchema()
		}
		out["properties"] = props
	}

	if len(s.Required) > 0 {
		out["required"] = s.Required
	}

	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}

	return out
}
