package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/placementbot/internal/quiz"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the question bank column layout
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	PromptColumn      string // Column with the question prompt
	ChoiceColumns     []string
	AnswerColumn      string // Column with the correct letter
	TopicColumn       string // Column with the topic
	ExplanationColumn string // Column with the explanation
	LinkColumn        string // Column with a reference link
	SheetName         string // Name of the sheet to import; empty means the first sheet
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		PromptColumn:      "A",
		ChoiceColumns:     []string{"B", "C", "D"},
		AnswerColumn:      "E",
		TopicColumn:       "F",
		ExplanationColumn: "G",
		LinkColumn:        "H",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportBank loads a question bank from an Excel or CSV file using the
// default layout
func ImportBank(path string) (*quiz.Bank, error) {
	config := DefaultImportConfig()
	config.FilePath = path
	return ImportBankWithConfig(config)
}

// ImportBankWithConfig loads a question bank using an explicit layout
func ImportBankWithConfig(config ImportConfig) (*quiz.Bank, error) {
	var (
		rows [][]string
		err  error
	)

	// Check the file extension
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	return buildBank(rows, config)
}

// readExcel returns all rows of a sheet
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV returns all records of a CSV file
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// buildBank turns raw rows into a validated bank. Rows with an empty
// prompt are skipped; question numbers follow the remaining row order.
func buildBank(rows [][]string, config ImportConfig) (*quiz.Bank, error) {
	var questions []quiz.Question
	key := make(map[int]string)
	meta := make(map[int]quiz.Meta)

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}

		prompt := cell(row, config.PromptColumn)
		if prompt == "" {
			continue
		}

		var choices []string
		for j, col := range config.ChoiceColumns {
			if j >= len(quiz.Letters) {
				return nil, fmt.Errorf("row %d: too many choice columns", i+1)
			}
			text := cell(row, col)
			if text == "" {
				return nil, fmt.Errorf("row %d: choice %s is empty", i+1, quiz.Letters[j])
			}
			choices = append(choices, labelChoice(quiz.Letters[j], text))
		}

		questions = append(questions, quiz.Question{Prompt: prompt, Choices: choices})
		n := len(questions)

		answer := quiz.NormalizeChoice(cell(row, config.AnswerColumn))
		if answer == "" {
			return nil, fmt.Errorf("row %d: answer must be a, b or c", i+1)
		}
		key[n] = answer

		m := quiz.Meta{
			Topic:       cell(row, config.TopicColumn),
			Explanation: cell(row, config.ExplanationColumn),
			Link:        cell(row, config.LinkColumn),
		}
		if m != (quiz.Meta{}) {
			meta[n] = m
		}
	}

	bank, err := quiz.NewBank(questions, key, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to import question bank: %w", err)
	}
	return bank, nil
}

// labelChoice makes sure a choice starts with its label, e.g. "b) am"
func labelChoice(letter, text string) string {
	if quiz.HasLabel(text, letter) {
		return text
	}
	return letter + ") " + text
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if colIdx := columnToIndex(column); colIdx >= 0 && colIdx < len(row) {
		return strings.TrimSpace(row[colIdx])
	}
	return ""
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
