package importer

import (
	"fmt"
	"strings"

	"github.com/devoriginal/account-backend/internal/app/service"
	"github.com/devoriginal/account-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Columns recognised in the header row, matched case-insensitively in any order
const (
	ColumnName     = "name"
	ColumnEmail    = "email"
	ColumnPassword = "password"
	ColumnBirthAt  = "birthat"
	ColumnPhone    = "phone"
	ColumnDocument = "document"
)

// Row is one spreadsheet line turned into registration input
type Row struct {
	Line  int // 1-based spreadsheet row
	Input service.CreateAccountInput
}

type RowError struct {
	Line  int
	Email string
	Err   error
}

type Result struct {
	Created int
	Failed  []RowError
}

// ReadAccountsXLSX reads accounts from the first sheet of an XLSX file.
// The first row is a header; name, email and password columns are required.
func ReadAccountsXLSX(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	columns := map[string]int{}
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{ColumnName, ColumnEmail, ColumnPassword} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing %q column in header", required)
		}
	}

	cell := func(row []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var result []Row
	for i, row := range rows[1:] {
		if len(strings.Join(row, "")) == 0 {
			continue
		}
		result = append(result, Row{
			Line: i + 2,
			Input: service.CreateAccountInput{
				Name:     cell(row, ColumnName),
				Email:    cell(row, ColumnEmail),
				Password: cell(row, ColumnPassword),
				BirthAt:  cell(row, ColumnBirthAt),
				Phone:    cell(row, ColumnPhone),
				Document: cell(row, ColumnDocument),
			},
		})
	}

	return result, nil
}

// Import registers every row through the account service. A failing row does not stop the import.
func Import(accounts service.AccountService, rows []Row) Result {
	var result Result
	for _, row := range rows {
		if _, err := accounts.Create(row.Input); err != nil {
			logger.Warn("Skipping spreadsheet row", map[string]interface{}{
				"line":  row.Line,
				"email": row.Input.Email,
				"error": err.Error(),
			})
			result.Failed = append(result.Failed, RowError{Line: row.Line, Email: row.Input.Email, Err: err})
			continue
		}
		result.Created++
	}

	logger.Info("Account import finished", map[string]interface{}{
		"created": result.Created,
		"failed":  len(result.Failed),
	})
	return result
}
