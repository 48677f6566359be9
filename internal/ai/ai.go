package ai

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// AIService holds the Gemini client and a database connection used for
// read-only lookups when the assistant answers shop questions.
type AIService struct {
	Client *genai.Client
	DB     *sql.DB
}

// NewAIService initializes the Gemini client.
func NewAIService(apiKey string, db *sql.DB) (*AIService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &AIService{Client: client, DB: db}, nil
}

// GenerateResponse answers a customer message, letting the model look up
// products and orders through a SELECT-only SQL tool.
func (s *AIService) GenerateResponse(ctx context.Context, userMessage string, userRole string, modelName string) (string, int, error) {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	model := s.Client.GenerativeModel(modelName)

	sqlTool := &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "run_readonly_sql",
				Description: "Executes a READ-ONLY SQL query (SELECT only) to answer questions about products, stock and orders.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "The MySQL SELECT query to execute.",
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}
	model.Tools = []*genai.Tool{sqlTool}

	schemaContext := s.getSchemaDefinition()
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(`
			You are the Nepal Meat Shop assistant. Role of the user: %s.
			You may answer in English or Nepali, matching the user's language.
			Access: MySQL database (run_readonly_sql).
			Schema: %s
			Rules: SELECT only. Quantities are kilograms, prices are NPR. Be concise.
		`, userRole, schemaContext))},
	}

	cs := model.StartChat()
	res, err := cs.SendMessage(ctx, genai.Text(userMessage))
	if err != nil {
		return "", 0, fmt.Errorf("error sending message: %w", err)
	}

	totalTokens := 0
	if res.UsageMetadata != nil {
		totalTokens += int(res.UsageMetadata.TotalTokenCount)
	}

	// Tool-call loop: keep feeding SQL results back until the model answers
	// with text.
	for {
		if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
			return "No response.", totalTokens, nil
		}
		part := res.Candidates[0].Content.Parts[0]

		funcCall, ok := part.(genai.FunctionCall)
		if !ok {
			return fmt.Sprintf("%v", part), totalTokens, nil
		}

		if funcCall.Name != "run_readonly_sql" {
			return "", totalTokens, fmt.Errorf("unknown function: %s", funcCall.Name)
		}

		query, ok := funcCall.Args["query"].(string)
		if !ok {
			return "", totalTokens, fmt.Errorf("invalid query argument")
		}
		log.Printf("AI assistant running SQL: %s", query)

		sqlResult, sqlErr := s.runReadOnlyQuery(query)
		if sqlErr != nil {
			sqlResult = fmt.Sprintf("SQL Error: %v", sqlErr)
		}

		res, err = cs.SendMessage(ctx, genai.FunctionResponse{
			Name:     "run_readonly_sql",
			Response: map[string]interface{}{"result": sqlResult},
		})
		if err != nil {
			return "", totalTokens, fmt.Errorf("tool response error: %w", err)
		}
		if res.UsageMetadata != nil {
			totalTokens = int(res.UsageMetadata.TotalTokenCount)
		}
	}
}

func (s *AIService) runReadOnlyQuery(query string) (string, error) {
	normalized := strings.ToUpper(query)
	for _, verb := range []string{"UPDATE", "DELETE", "DROP", "INSERT", "ALTER", "TRUNCATE"} {
		if strings.Contains(normalized, verb) {
			return "", fmt.Errorf("security violation: modify operations are not allowed")
		}
	}

	rows, err := s.DB.Query(query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, _ := rows.Columns()
	count := len(columns)
	tableData := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, count)
		valuePtrs := make([]interface{}, count)
		for i := range columns {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return "", err
		}
		entry := make(map[string]interface{})
		for i, col := range columns {
			var v interface{}
			val := values[i]
			if b, ok := val.([]byte); ok {
				v = string(b)
			} else {
				v = val
			}
			entry[col] = v
		}
		tableData = append(tableData, entry)
	}

	jsonData, err := json.Marshal(tableData)
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (s *AIService) getSchemaDefinition() string {
	return `
	- users (id, role [admin, sub_admin, staff, customer], email, full_name, phone, address, is_active)
	- categories (id, name, name_nepali, slug, description, is_active)
	- products (id, category_id, name, name_nepali, slug, description, description_nepali, price_per_kg, stock_kg, min_order_kg, meat_type [pork, buffalo, chicken, goat, mutton, fish], is_featured, is_available)
	- delivery_areas (id, area_name, area_name_nepali, delivery_charge, is_active)
	- orders (id, order_number, user_id, status [pending, confirmed, preparing, out_for_delivery, delivered, cancelled], payment_method [cod, esewa, khalti, fonepay, mobile_banking, bank_transfer], payment_status [pending, paid, failed], subtotal, delivery_charge, total_amount, delivery_address, delivery_phone, created_at)
	- order_items (id, order_id, product_id, quantity_kg, price_per_kg, total_price)
	- order_audit_log (id, order_id, actor, from_status, to_status, reason, created_at)
	`
}
