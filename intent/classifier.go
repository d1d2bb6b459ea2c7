// Package intent maps raw user text to a routing intent.
package intent

import "strings"

type Intent string

const (
	ToolIntent      Intent = "TOOL_INTENT"
	RetrievalIntent Intent = "RETRIEVAL_INTENT"
	GeneralChat     Intent = "GENERAL_CHAT"
)

// DefaultLabel is reported when no rule matches.
const DefaultLabel = "general"

// Rule is one labeled keyword group. Keywords are matched as
// case-insensitive substrings.
type Rule struct {
	Label    string
	Intent   Intent
	Keywords []string
}

// DefaultRules returns the built-in rule set. Order is priority: tool
// keywords win over retrieval keywords, which win over small talk.
func DefaultRules() []Rule {
	return []Rule{
		{Label: "student_status", Intent: ToolIntent, Keywords: []string{"estudiante", "student", "alumno", "estado del"}},
		{Label: "pricing", Intent: RetrievalIntent, Keywords: []string{"precio", "valor", "costo", "descuento"}},
		{Label: "shipping", Intent: RetrievalIntent, Keywords: []string{"envío", "envio", "despacho", "entrega"}},
		{Label: "hours", Intent: RetrievalIntent, Keywords: []string{"horario", "atienden", "abierto"}},
		{Label: "smalltalk", Intent: GeneralChat, Keywords: []string{"hola", "buenas", "gracias"}},
	}
}

type Classifier struct {
	rules []Rule
}

// NewClassifier copies rules and lowercases their keywords. With no rules
// the defaults are used.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	c := &Classifier{rules: make([]Rule, len(rules))}
	for i, r := range rules {
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kw = append(kw, k)
			}
		}
		c.rules[i] = Rule{Label: r.Label, Intent: r.Intent, Keywords: kw}
	}
	return c
}

// Classify returns the intent of the first matching rule, or GeneralChat.
func (c *Classifier) Classify(text string) Intent {
	_, in := c.Match(text)
	return in
}

// Match is Classify that also reports the label of the winning rule.
func (c *Classifier) Match(text string) (string, Intent) {
	lowered := strings.ToLower(text)
	for _, r := range c.rules {
		for _, k := range r.Keywords {
			if strings.Contains(lowered, k) {
				return r.Label, r.Intent
			}
		}
	}
	return DefaultLabel, GeneralChat
}
