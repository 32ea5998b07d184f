package application_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aiera-inc/aiera-mcp/application"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
)

func TestListTools(t *testing.T) {
	t.Parallel()

	yes, no := true, false
	tests := []struct {
		name   string
		filter application.Filter
		want   []string
	}{
		{"no filter", application.Filter{}, allNames},
		{"category", application.Filter{Category: tool.CategoryFilings}, []string{"find_filings", "get_filing"}},
		{"read only", application.Filter{ReadOnly: &yes, Category: tool.CategoryTranscrippets}, []string{}},
		{"writes", application.Filter{ReadOnly: &no}, []string{"create_transcrippet", "delete_transcrippet"}},
		{"destructive", application.Filter{Destructive: true}, []string{"delete_transcrippet"}},
	}

	registry := testRegistry(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tools := application.ListTools(registry, tt.filter)
			got := make([]string, len(tools))
			for i, tl := range tools {
				got[i] = tl.Name()
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ListTools() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
