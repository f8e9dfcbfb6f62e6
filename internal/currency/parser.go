package currency

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsedPrice is a positive amount tagged with a currency code
type ParsedPrice struct {
	Amount   float64
	Currency string
}

// symbolTokens are matched in addition to the codes of the rate table.
// Longer tokens come first so that "US$" wins over "$".
var symbolTokens = []string{"US$", "NT$", "$", "¥", "€", "£"}

const numberPattern = `([0-9](?:[0-9.,]*[0-9])?)`

// Parser decodes "<currency><number>" and "<number><currency>" fragments.
// A Parser is bound to the rate table it was built from.
type Parser struct {
	table         RateTable
	currencyFirst *regexp.Regexp
	amountFirst   *regexp.Regexp
	residual      *regexp.Regexp
}

// NewParser compiles the currency-token alternation for table
func NewParser(table RateTable) *Parser {
	tokens := append(table.Codes(), symbolTokens...)
	sort.SliceStable(tokens, func(i, j int) bool {
		return len(tokens[i]) > len(tokens[j])
	})

	quoted := make([]string, len(tokens))
	for i, token := range tokens {
		quoted[i] = regexp.QuoteMeta(token)
	}
	currencyPattern := "(" + strings.Join(quoted, "|") + ")"

	return &Parser{
		table:         table,
		currencyFirst: regexp.MustCompile(`(?i)^\s*` + currencyPattern + `\s*` + numberPattern),
		amountFirst:   regexp.MustCompile(`(?i)^\s*` + numberPattern + `\s*` + currencyPattern),
		residual:      regexp.MustCompile(`(?i)` + currencyPattern),
	}
}

// Parse returns the price found at the start of text
func (p *Parser) Parse(text string) (ParsedPrice, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ParsedPrice{}, false
	}

	var amountStr, token string
	if match := p.currencyFirst.FindStringSubmatch(text); match != nil {
		token, amountStr = match[1], match[2]
	} else if match := p.amountFirst.FindStringSubmatch(text); match != nil {
		amountStr, token = match[1], match[2]
	}
	if amountStr == "" || token == "" {
		return ParsedPrice{}, false
	}

	code, ok := MapSymbolToCode(token, p.table)
	if !ok {
		return ParsedPrice{}, false
	}

	amount, ok := p.parseAmount(amountStr)
	if !ok {
		return ParsedPrice{}, false
	}

	return ParsedPrice{Amount: amount, Currency: code}, true
}

func (p *Parser) parseAmount(amountStr string) (float64, bool) {
	normalized := NormalizeNumber(p.residual.ReplaceAllString(amountStr, ""))
	if normalized == "" {
		return 0, false
	}

	value, err := decimal.NewFromString(normalized)
	if err != nil || !value.IsPositive() {
		return 0, false
	}

	amount, _ := value.Float64()
	return amount, amount > 0
}

// MapSymbolToCode maps a detected currency token to a code. Tokens that are
// already codes of table are accepted verbatim.
func MapSymbolToCode(token string, table RateTable) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(token))
	if s == "" {
		return "", false
	}
	if table.Has(s) {
		return s, true
	}

	switch {
	case s == "$" || s == "US$" || strings.Contains(s, "USD"):
		return "USD", true
	case s == "¥" || strings.Contains(s, "JPY") || strings.Contains(s, "YEN"):
		return "JPY", true
	case s == "NT$" || strings.Contains(s, "TWD") || strings.Contains(s, "NTD"):
		return "TWD", true
	}
	return "", false
}

// NormalizeNumber turns grouped number text into a plain decimal string.
//
// With both separators present, the one appearing last is the decimal point.
// A lone comma followed by one or two digits is a decimal comma, any other
// commas are grouping. Several dots without a comma are grouping too.
func NormalizeNumber(s string) string {
	s = strings.TrimSpace(s)

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			lastComma = strings.LastIndex(s, ",")
			s = strings.ReplaceAll(s[:lastComma], ",", "") + "." + s[lastComma+1:]
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) >= 1 && len(parts[1]) <= 2 && isDigits(parts[1]) {
			s = parts[0] + "." + parts[1]
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
