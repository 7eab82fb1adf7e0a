package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dkl-health/chatbot-backend/internal/model"
)

// User-facing response literals. Chat users never see raw errors, only these
// plus the bracketed notices appended by Finalize.
const (
	noServicesResponse  = `No services found. Try searching for a specific test like "blood test".`
	noFAQResponse       = "No matching FAQ found. Please ask another question or contact support."
	serverErrorResponse = "Sorry, something went wrong while looking that up. Please try again."
	apologyResponse     = "Sorry, an error occurred. Please try again."
	untranslatedSuffix  = "(Could not translate this reply; it is shown in English.)"
)

func renderServices(services []model.Service) string {
	if len(services) == 0 {
		return noServicesResponse
	}

	lines := make([]string, len(services))
	for i, s := range services {
		price := strconv.FormatFloat(s.Price, 'f', -1, 64)
		lines[i] = fmt.Sprintf("%s: %s (KES %s)", s.Name, s.Description, price)
	}

	return "Here are matching services:\n" + strings.Join(lines, "\n")
}

func renderFAQs(faqs []model.FAQ) string {
	if len(faqs) == 0 {
		return noFAQResponse
	}

	pairs := make([]string, len(faqs))
	for i, f := range faqs {
		pairs[i] = fmt.Sprintf("Q: %s\nA: %s", f.Question, f.Answer)
	}

	return "Here are some answers:\n" + strings.Join(pairs, "\n\n")
}

func renderIntentFallback(intent string) string {
	if intent == "" {
		intent = "unknown"
	}
	return fmt.Sprintf("Intent detected: %s. I'm here to help with lab services - try asking about tests!", intent)
}

// appendNotices surfaces degraded stages to the user. Trading polish for
// debuggability is deliberate here.
func appendNotices(text string, notices []string) string {
	if len(notices) == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n")
	for _, n := range notices {
		b.WriteString("\n[notice: ")
		b.WriteString(n)
		b.WriteString("]")
	}

	return b.String()
}
