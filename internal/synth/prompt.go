package synth

import (
	"fmt"
	"strings"

	"github.com/dgallion1/deckreport/internal/slides"
)

// DefaultSystemPrompt frames the model for every section request.
const DefaultSystemPrompt = "You are a technical writer at an engineering consultancy."

const sectionInstructions = `Using the context of '%s', write a technical description that summarizes the content of the following slides. ` +
	`The description should be clear, concise, and fit for inclusion in a professional report by an engineering consultancy. ` +
	`The paragraph text should refer to the figures to illustrate the main technical points. ` +
	`Each slide contains technical data; highlight the key points and any notable differences or observations.`

const sectionClosing = `Generate the description based on this content, ensuring it is suitable for a technical audience.`

const exemplarIntro = `Here is an example of a report that illustrates the style and quality expected:`

// BuildPrompt creates the user prompt for one section: the fixed
// instructions, the member titles joined by spaces, the member bodies
// joined by blank lines and, when given, the style exemplar verbatim.
func BuildPrompt(members []*slides.Record, context, exemplar string) string {
	titles := make([]string, 0, len(members))
	bodies := make([]string, 0, len(members))
	for _, m := range members {
		titles = append(titles, slides.Sanitize(m.Title))
		bodies = append(bodies, slides.Sanitize(m.Body))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(sectionInstructions, context))
	sb.WriteString("\n\nTitles: ")
	sb.WriteString(strings.Join(titles, " "))
	sb.WriteString("\n\nText: ")
	sb.WriteString(strings.Join(bodies, "\n\n"))
	sb.WriteString("\n\n")
	sb.WriteString(sectionClosing)
	if exemplar != "" {
		sb.WriteString("\n\n")
		sb.WriteString(exemplarIntro)
		sb.WriteString("\n\n")
		sb.WriteString(exemplar)
	}
	return sb.String()
}
