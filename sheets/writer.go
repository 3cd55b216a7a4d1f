package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"avito-scraper/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer appends extracted items to a Google Sheets tab
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewWriter creates a new Google Sheets writer. Credentials come from
// credentialsPath or, when empty, from GOOGLE_SHEETS_CREDENTIALS.
func NewWriter(ctx context.Context, spreadsheetID, sheetName, credentialsPath string) (*Writer, error) {
	credsJSON, err := loadCredentials(credentialsPath)
	if err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetName:     sanitizeSheetName(sheetName),
	}, nil
}

func loadCredentials(credentialsPath string) ([]byte, error) {
	var credsJSON []byte

	if credentialsPath != "" {
		data, err := os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		credsJSON = data
	} else {
		credsEnv := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDENTIALS"))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: GOOGLE_SHEETS_CREDENTIALS environment variable is empty or not set")
		}
		log.Printf("Reading credentials from GOOGLE_SHEETS_CREDENTIALS environment variable (%d bytes)\n", len(credsEnv))
		credsJSON = []byte(credsEnv)
	}

	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON (check if JSON is properly formatted): %w", err)
	}

	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}

	return credsJSON, nil
}

// itemRows converts items to sheet rows
func itemRows(items []models.Item) [][]interface{} {
	values := make([][]interface{}, 0, len(items))
	for _, item := range items {
		values = append(values, []interface{}{
			item.URL,
			item.SearchURL,
			item.Pass,
			item.FoundAt.Format("2006-01-02 15:04:05"),
		})
	}
	return values
}

// AppendItems appends items after the last row of the sheet
func (w *Writer) AppendItems(ctx context.Context, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}

	valueRange := &sheets.ValueRange{Values: itemRows(items)}

	_, err := w.service.Spreadsheets.Values.Append(w.spreadsheetID, w.sheetName+"!A1", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to sheets: %w", err)
	}

	log.Printf("Appended %d items to sheet '%s'\n", len(items), w.sheetName)
	return nil
}

// Publish implements scheduler.Sink
func (w *Writer) Publish(ctx context.Context, items []models.Item) error {
	return w.AppendItems(ctx, items)
}

// sanitizeSheetName removes invalid characters from sheet name
func sanitizeSheetName(name string) string {
	// Google Sheets sheet names cannot contain: / \ ? * [ ]
	invalidChars := []string{"/", "\\", "?", "*", "[", "]"}
	result := name
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if result == "" {
		result = "Sheet1"
	}
	if len(result) > 100 {
		result = result[:100]
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func ExtractSpreadsheetID(url string) string {
	// https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit?usp=sharing
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		return ""
	}

	idPart := parts[1]
	if idx := strings.Index(idPart, "/"); idx != -1 {
		idPart = idPart[:idx]
	}
	if idx := strings.Index(idPart, "?"); idx != -1 {
		idPart = idPart[:idx]
	}

	return strings.TrimSpace(idPart)
}
