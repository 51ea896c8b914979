package tool_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/entagent/entagent/pkg/tool"
	"github.com/m-mizutani/gt"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		status string
	}{
		{
			name:   "clean JSON",
			input:  `{"key": "value"}`,
			status: "success",
		},
		{
			name:   "JSON with prose around it",
			input:  `Here is the result: {"key": "value"} hope that helps`,
			status: "success",
		},
		{
			name:   "no JSON at all",
			input:  "just some text",
			status: "failed",
		},
		{
			name:   "broken braces",
			input:  "{key: value",
			status: "failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tool.ExtractJSON(tt.input)
			gt.V(t, result.Status).Equal(tt.status)
		})
	}
}

func TestExtractJSONData(t *testing.T) {
	result := tool.ExtractJSON(`prefix {"answer": 42} suffix`)
	gt.V(t, result.Status).Equal("success")

	data := gt.Cast[map[string]any](t, result.Data)
	gt.V(t, data["answer"]).Equal(float64(42))
}

func TestCalculateKPI(t *testing.T) {
	report := tool.CalculateKPI(50000, 20000, 400, 50)

	gt.V(t, report.Profit).Equal(float64(30000))
	gt.V(t, report.ProfitMargin).Equal(0.6)
	gt.V(t, report.ConversionRate).Equal(0.125)
	gt.V(t, report.AvgRevenuePerCustomer).Equal(float64(1000))
}

func TestCalculateKPIZeroDenominators(t *testing.T) {
	report := tool.CalculateKPI(0, 100, 0, 0)

	gt.V(t, report.Profit).Equal(float64(-100))
	gt.V(t, report.ProfitMargin).Equal(float64(0))
	gt.V(t, report.ConversionRate).Equal(float64(0))
	gt.V(t, report.AvgRevenuePerCustomer).Equal(float64(0))
}

func TestSummarize(t *testing.T) {
	result := tool.Summarize("First point. Second point. Third point. Fourth point.")
	gt.V(t, result.Summary).Equal("First point Second point Third point")
	gt.V(t, result.Timestamp.IsZero()).Equal(false)
}

func TestSummarizeShortText(t *testing.T) {
	result := tool.Summarize("Only one sentence")
	gt.V(t, result.Summary).Equal("Only one sentence")
}

func TestGenerateEmail(t *testing.T) {
	email := tool.GenerateEmail("Quarterly Update", "Numbers look good.", "")
	gt.S(t, email).Contains("To: Team")
	gt.S(t, email).Contains("Subject: Quarterly Update")
	gt.S(t, email).Contains("Numbers look good.")
	gt.S(t, email).Contains("Regards,")

	custom := tool.GenerateEmail("Hi", "Body", "Finance")
	gt.S(t, custom).Contains("To: Finance")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	gt.NoError(t, os.WriteFile(path, []byte("file content"), 0644))

	content, err := tool.ReadFile(path)
	gt.NoError(t, err)
	gt.V(t, content).Equal("file content")

	_, err = tool.ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	gt.Error(t, err)
}
