package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/placementbot/internal/quiz"
	"github.com/example/placementbot/pkg/models"
)

var bankRows = [][]interface{}{
	{"Prompt", "A", "B", "C", "Answer", "Topic", "Explanation", "Link"},
	{"1. My name ___ John.", "are", "am", "is", "c", "to be", "Use 'is' with a name.", "https://example.com/to-be"},
	{"2. Where ___ you from?", "a) are", "b) is", "c) be", "A"},
	{"", "", "", "", ""},
	{"3. I ___ to bed early.", "go", "went", "gone", "b", "past simple"},
}

func writeXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &rows[i]))
	}
	path := filepath.Join(t.TempDir(), "bank.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportBankFromExcel(t *testing.T) {
	bank, err := ImportBank(writeXLSX(t, bankRows))
	require.NoError(t, err)
	require.Equal(t, 3, bank.Len())

	q, err := bank.Question(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a) are", "b) am", "c) is"}, q.Choices)
	assert.Equal(t, "c", bank.Answer(1))
	assert.Equal(t, quiz.Meta{Topic: "to be", Explanation: "Use 'is' with a name.", Link: "https://example.com/to-be"}, bank.Meta(1))

	q, err = bank.Question(1)
	require.NoError(t, err)
	assert.Equal(t, "a) are", q.Choices[0])
	assert.Equal(t, "a", bank.Answer(2))
	assert.Equal(t, quiz.DefaultTopic, bank.Meta(2).Topic)

	q, err = bank.Question(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a) go", "b) went", "c) gone"}, q.Choices)
	assert.Equal(t, "past simple", bank.Meta(3).Topic)
}

func TestImportBankFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.csv")
	content := "prompt,a,b,c,answer,topic\n" +
		"1. She can ___ the guitar.,play,playing,plays,a,modal + base verb\n" +
		"2. There is ___ apple.,an,a,the,a\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	bank, err := ImportBank(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bank.Len())
	assert.Equal(t, "modal + base verb", bank.Meta(1).Topic)

	res := quiz.Grade(bank, []string{"a", "b"})
	assert.Equal(t, 1, res.Score)
}

func TestImportBankRejectsBadAnswer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.csv")
	require.NoError(t, os.WriteFile(path, []byte("p,a,b,c,ans\n1. Q,x,y,z,d\n"), 0644))

	_, err := ImportBank(path)
	assert.ErrorContains(t, err, "row 2")
}

func TestImportBankRejectsBlankChoice(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"blank first choice, answer a", "Q1?,,yes,no,a", "choice a is empty"},
		{"blank first choice, answer c", "Q1?,,yes,no,c", "choice a is empty"},
		{"blank last choice", "Q1?,yes,no,,a", "choice c is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bank.csv")
			require.NoError(t, os.WriteFile(path, []byte("prompt,a,b,c,answer\n"+tt.row+"\n"), 0644))

			bank, err := ImportBank(path)
			assert.Nil(t, bank)
			assert.ErrorContains(t, err, "row 2")
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestImportBankKeepsExistingLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.csv")
	require.NoError(t, os.WriteFile(path, []byte("prompt,a,b,c,answer\nQ1?,A. yes,no,c) maybe,c\n"), 0644))

	bank, err := ImportBank(path)
	require.NoError(t, err)
	q, err := bank.Question(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A. yes", "b) no", "c) maybe"}, q.Choices)

	opts := q.Options()
	require.Len(t, opts, 3)
	assert.Equal(t, bank.Answer(1), opts[2].Data)
}

func TestImportBankRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.csv")
	require.NoError(t, os.WriteFile(path, []byte("prompt,a,b,c,answer\n"), 0644))

	_, err := ImportBank(path)
	assert.ErrorIs(t, err, quiz.ErrInvalidBank)
}

func TestImportBankMissingFile(t *testing.T) {
	_, err := ImportBank(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestExportResults(t *testing.T) {
	records := []models.ResultRecord{
		{
			StartedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			UserID:    42,
			Username:  "alice",
			Answers:   []string{"a", "", "c"},
			Score:     2,
			Total:     3,
			Level:     "B1",
			TopTopics: "articles",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportResults(records, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Started", rows[0][0])
	assert.Equal(t, []string{"2024-05-01 10:00:00", "42", "alice", "a,,c", "2", "3", "B1", "articles"}, rows[1])
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 7, columnToIndex("h"))
	assert.Equal(t, 26, columnToIndex("AA"))
}
