package textgen

import (
	"testing"
)

func TestParseMergedJSON(t *testing.T) {
	raw := "```json\n{\"title\": \"Cave days\", \"summary\": \"Many trips.\", \"content\": \"details\"}\n```"
	merged, err := parseMergedJSON(raw)
	if err != nil {
		t.Fatalf("parseMergedJSON returned error: %v", err)
	}
	if merged.Title != "Cave days" || merged.Summary != "Many trips." || merged.Content != "details" {
		t.Fatalf("unexpected result %+v", merged)
	}
}

func TestParseMergedJSONRejectsGarbage(t *testing.T) {
	if _, err := parseMergedJSON("the model rambled instead"); err == nil {
		t.Fatalf("expected error for non-JSON output")
	}
}

func TestMergeOutputSchemaRequiresTitleAndSummary(t *testing.T) {
	schema := mergeOutputSchema()
	if len(schema.Required) != 2 {
		t.Fatalf("expected title and summary required, got %v", schema.Required)
	}
}
