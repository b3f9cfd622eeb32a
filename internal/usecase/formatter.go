package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/elcom/backend/internal/domain"
	"github.com/elcom/backend/internal/textutil"
)

const (
	resultSeparator    = "\n\n---\n\n"
	productPlaceholder = "Error displaying this product."
)

var (
	onRequestPattern = regexp.MustCompile(`(?i)\(\s*on\s+request\s*\)`)
	placeholderTerms = map[string]bool{
		"nan": true, "n/a": true, "na": true, "none": true, "null": true, "": true,
	}
)

// Formatter renders products as human-readable text blocks.
type Formatter struct {
	highlight bool
}

// NewFormatter creates a formatter. With highlight set, query tokens found in
// description and specification values are wrapped in ** markers.
func NewFormatter(highlight bool) *Formatter {
	return &Formatter{highlight: highlight}
}

// Render formats each product and joins the blocks with a separator.
func (f *Formatter) Render(products []*domain.Product, query string) string {
	blocks := make([]string, 0, len(products))
	for _, p := range products {
		blocks = append(blocks, f.FormatProduct(p, query))
	}
	return strings.Join(blocks, resultSeparator)
}

// RenderOutcome renders a search outcome as a conversational reply.
func (f *Formatter) RenderOutcome(outcome *domain.SearchOutcome) string {
	if !outcome.Found() {
		return NoMatchMessage
	}

	query := outcome.Query.Cleaned
	switch {
	case outcome.Strategy == domain.StrategyExact:
		return "Here are the specs for the product you asked about:\n\n" + f.FormatProduct(outcome.Products[0], query)
	case len(outcome.Products) == 1:
		return "Here's a match based on your filters:\n\n" + f.FormatProduct(outcome.Products[0], query)
	}

	blocks := make([]string, 0, len(outcome.Products))
	for i, p := range outcome.Products {
		blocks = append(blocks, fmt.Sprintf("%d. %s", i+1, f.FormatProduct(p, query)))
	}
	header := fmt.Sprintf("I found %d product(s) that might match your query:\n\n", len(outcome.Products))
	return header + strings.Join(blocks, resultSeparator)
}

// NoMatchMessage is the reply for a search without results.
const NoMatchMessage = "Hmm... I couldn't find anything that matches your request. " +
	"Try rephrasing with a product name or a key feature like voltage, current or mounting type.\n\n" +
	"Example queries:\n" +
	"- 'RS-1601 switch'\n" +
	"- '16A rocker switch, panel mount, 250V'\n" +
	"- 'SPDT switch under 6A'"

// FormatProduct renders one product. A failure while formatting yields a
// placeholder line instead of aborting the whole response.
func (f *Formatter) FormatProduct(p *domain.Product, query string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = productPlaceholder
		}
	}()

	mark := f.highlighter(query)

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", p.Name)
	fmt.Fprintf(&b, "Description: %s\n", mark(display(p.Description)))

	b.WriteString("\nTechnical Specifications:\n")
	fmt.Fprintf(&b, "- Rated Voltage: %s\n", mark(display(p.RatedVoltage)))
	fmt.Fprintf(&b, "- Rated Current: %s\n", mark(display(p.RatedCurrent)))
	fmt.Fprintf(&b, "- Mounting Type: %s\n", mark(display(p.MountingType)))
	fmt.Fprintf(&b, "- Operating Temperature: %s\n", display(p.OperatingTemperature))
	fmt.Fprintf(&b, "- Reference Standard: %s\n", display(p.ReferenceStandard))

	b.WriteString("\nCompliance & Standards:\n")
	standards := cleanStandards(p.Compliance.Standards)
	for _, std := range standards {
		fmt.Fprintf(&b, "- %s\n", std)
	}
	if p.Compliance.OnRequest {
		b.WriteString("- Additional certifications available on request\n")
	} else if len(standards) == 0 {
		b.WriteString("- Not specified\n")
	}

	if features := featureLines(p); len(features) > 0 {
		b.WriteString("\nAdditional Features:\n")
		for _, line := range features {
			fmt.Fprintf(&b, "- %s\n", mark(line))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// highlighter returns a func that bolds whole-word occurrences of the query
// tokens, or the identity when highlighting is off.
func (f *Formatter) highlighter(query string) func(string) string {
	identity := func(s string) string { return s }
	if !f.highlight {
		return identity
	}

	var tokens []string
	for _, tok := range strings.Fields(textutil.Normalize(query)) {
		if len(tok) >= 2 {
			tokens = append(tokens, regexp.QuoteMeta(tok))
		}
	}
	if len(tokens) == 0 {
		return identity
	}

	re := regexp.MustCompile(`(?i)\b(` + strings.Join(tokens, "|") + `)\b`)
	return func(s string) string {
		return re.ReplaceAllString(s, "**$1**")
	}
}

func display(value string) string {
	if placeholderTerms[strings.ToLower(strings.TrimSpace(value))] {
		return domain.NotAvailable
	}
	return value
}

func cleanStandards(standards []string) []string {
	out := make([]string, 0, len(standards))
	for _, std := range standards {
		std = textutil.CollapseSpace(onRequestPattern.ReplaceAllString(std, " "))
		if placeholderTerms[strings.ToLower(std)] {
			continue
		}
		out = append(out, std)
	}
	return out
}

func featureLines(p *domain.Product) []string {
	var lines []string
	for _, key := range p.FeatureOrder {
		var values []string
		for _, v := range p.OtherFeatures[key] {
			if !placeholderTerms[strings.ToLower(strings.TrimSpace(v))] {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", key, strings.Join(values, ", ")))
		}
	}
	return lines
}
