package benchmarks

import (
	"strings"
	"testing"

	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/expr"
)

const typicalRule = "{age} >= 18 && {country} in ['US', 'CA', 'MX'] && {total} * 0.9 > 100"

// BenchmarkParse_Typical parses a realistic three-clause rule.
func BenchmarkParse_Typical(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = expr.Parse(typicalRule)
	}
}

// BenchmarkParse_LongChain parses a 100-term addition chain.
func BenchmarkParse_LongChain(b *testing.B) {
	src := buildChain(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = expr.Parse(src)
	}
}

// BenchmarkParse_DeepParens parses 100 levels of parentheses.
func BenchmarkParse_DeepParens(b *testing.B) {
	src := strings.Repeat("(", 100) + "1" + strings.Repeat(")", 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = expr.Parse(src)
	}
}

// BenchmarkParseJSON_Typical parses the JSON form of typicalRule.
func BenchmarkParseJSON_Typical(b *testing.B) {
	x, err := expr.Parse(typicalRule)
	if err != nil {
		b.Fatal(err)
	}
	doc, err := expr.MarshalJSON(x)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = expr.ParseJSON(doc)
	}
}

// BenchmarkTokenize_Typical tokenizes typicalRule.
func BenchmarkTokenize_Typical(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = expr.Tokenize(typicalRule)
	}
}

func buildChain(n int) string {
	var sb strings.Builder
	sb.WriteString("{x}")
	for i := 1; i < n; i++ {
		sb.WriteString(" + {x}")
	}
	return sb.String()
}
