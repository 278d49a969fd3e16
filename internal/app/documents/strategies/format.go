package strategies

import (
	"strings"
	"time"
	"unicode"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Placeholder fills a vacant role on printed documents.
const Placeholder = "________________"

// NotAvailable stands in for missing reference data such as the previous
// session date.
const NotAvailable = "N/A"

const locale = monday.LocalePtBR

var printer = message.NewPrinter(language.BrazilianPortuguese)

// PunctuateAcronym renders an all-capitals title prefix with the
// three-point separator: "ARLS" and "A.R.L.S." both become "A∴R∴L∴S∴".
// Anything else is returned trimmed but unchanged.
func PunctuateAcronym(prefix string) string {
	p := strings.TrimSpace(prefix)
	letters := strings.NewReplacer(".", "", "∴", "", ":", "").Replace(p)
	n := 0
	for _, r := range letters {
		if !unicode.IsUpper(r) {
			return p
		}
		n++
	}
	if n < 2 || n > 8 {
		return p
	}
	var b strings.Builder
	for _, r := range letters {
		b.WriteRune(r)
		b.WriteString("∴")
	}
	return b.String()
}

// DisplayName is "{prefix} {name} nº {number}".
func DisplayName(c models.Chapter) string {
	parts := make([]string, 0, 3)
	if p := PunctuateAcronym(c.TitlePrefix); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, strings.TrimSpace(c.Name))
	if n := strings.TrimSpace(c.Number); n != "" {
		parts = append(parts, "nº "+n)
	}
	return strings.Join(parts, " ")
}

// Affiliation phrases the chapter's relation to its umbrella body by the
// body's name.
func Affiliation(bodyName string) string {
	name := strings.TrimSpace(bodyName)
	if name == "" {
		return ""
	}
	folded := text.Fold(name)
	switch {
	case strings.Contains(folded, "confedera"):
		return "confederada à " + name
	case strings.Contains(folded, "oriente"):
		return "federada ao " + name
	case strings.Contains(folded, "grande loja"):
		return "jurisdicionada à " + name
	}
	return "filiada a " + name
}

// LongDate formats a day in the pt-BR long form: "19 de outubro de 2026".
func LongDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return monday.Format(t, "2 de January de 2006", locale)
}

// Weekday names the day of the week in pt-BR.
func Weekday(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return monday.Format(t, "Monday", locale)
}

// ShortDate is dd/mm/yyyy.
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// Currency formats cents as Brazilian reais: "R$ 1.234,56".
func Currency(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return printer.Sprintf("%sR$ %d,%02d", sign, cents/100, cents%100)
}

var typeLabels = map[string]string{
	models.SessionOrdinary:      "Ordinária",
	models.SessionMagna:         "Magna",
	models.SessionExtraordinary: "Extraordinária",
}

var subtypeLabels = map[string]string{
	"regular":        "Regular",
	"instruction":    "de Instrução",
	"administrative": "Administrativa",
	"electoral":      "Eleitoral",
	"initiation":     "de Iniciação",
	"elevation":      "de Elevação",
	"exaltation":     "de Exaltação",
	"installation":   "de Instalação e Posse",
	"anniversary":    "de Aniversário",
	"funeral":        "Fúnebre",
}

var degreeLabels = map[string]string{
	"apprentice": "Aprendiz",
	"fellow":     "Companheiro",
	"master":     "Mestre",
}

func label(m map[string]string, key string) string {
	if l, ok := m[key]; ok {
		return l
	}
	return key
}

// roleLabel returns the printed title of a role.
func roleLabel(role string) string { return label(models.RoleLabels, role) }
