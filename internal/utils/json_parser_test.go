package utils

import (
	"reflect"
	"testing"
)

func TestParseAIJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"task": "query", "limit": 5}`,
			want: map[string]interface{}{
				"task":  "query",
				"limit": float64(5),
			},
			wantErr: false,
		},
		{
			name: "JSON in markdown code block",
			input: "```json\n" +
				`{"task": "general_qa"}` + "\n```",
			want: map[string]interface{}{
				"task": "general_qa",
			},
			wantErr: false,
		},
		{
			name: "JSON in anonymous code block",
			input: "```\n" +
				`{"task": "refusal"}` + "\n```",
			want: map[string]interface{}{
				"task": "refusal",
			},
			wantErr: false,
		},
		{
			name:  "JSON with surrounding text",
			input: `Sure! Here is the extracted intent: {"task": "query", "count": 2} Hope that helps.`,
			want: map[string]interface{}{
				"task":  "query",
				"count": float64(2),
			},
			wantErr: false,
		},
		{
			name:  "JSON with trailing comma",
			input: `{"company": "samsung", "price": 30000,}`,
			want: map[string]interface{}{
				"company": "samsung",
				"price":   float64(30000),
			},
			wantErr: false,
		},
		{
			name:  "JSON with unquoted keys",
			input: `{task: "query", price: 30000}`,
			want: map[string]interface{}{
				"task":  "query",
				"price": float64(30000),
			},
			wantErr: false,
		},
		{
			name:  "Braces inside string values",
			input: `The answer: {"note": "use {gte} for minimums", "ok": true} done.`,
			want: map[string]interface{}{
				"note": "use {gte} for minimums",
				"ok":   true,
			},
			wantErr: false,
		},
		{
			name:    "Empty string",
			input:   "",
			want:    nil,
			wantErr: true,
		},
		{
			name:    "No JSON at all",
			input:   "I cannot help with that request.",
			want:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			err := ParseAIJSON(tt.input, &got)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseAIJSON() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAIJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractBalancedBraces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Simple object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "Nested objects",
			input: `{"entities": {"companies": ["apple"]}} trailing`,
			want:  `{"entities": {"companies": ["apple"]}}`,
		},
		{
			name:  "Escaped quotes in strings",
			input: `{"msg": "say \"hi\""} extra`,
			want:  `{"msg": "say \"hi\""}`,
		},
		{
			name:  "Unbalanced input",
			input: `{"a": 1`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractBalancedBraces(tt.input, '{', '}')
			if got != tt.want {
				t.Errorf("extractBalancedBraces() = %q, want %q", got, tt.want)
			}
		})
	}
}
