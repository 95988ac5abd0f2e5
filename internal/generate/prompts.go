// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-drafter/internal/citation"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// TitlePlaceholder stands in for an untitled paper in prompts.
const TitlePlaceholder = "Academic Research Paper"

// Token and temperature settings per prompt kind.
const (
	sectionMaxTokens  = 1000
	captionMaxTokens  = 150
	abstractMaxTokens = 400
	titlesMaxTokens   = 300
	rewriteMaxTokens  = 500

	defaultTemperature = 0.7
	titlesTemperature  = 0.8
)

// System messages sent ahead of each prompt kind.
const (
	sectionSystem  = "You are a distinguished academic researcher with years of publication experience. Write in a natural, scholarly voice that demonstrates expertise without sounding artificial or formulaic. Use varied sentence structures, smooth transitions, and confident prose. ALWAYS include citation placeholders in the format [CITE: Short Reason for Citation] where appropriate for academic writing (e.g., prior work, methodologies, specific claims). Your writing should sound distinctly human - thoughtful, engaging, and authoritative."
	captionSystem  = "You are an expert academic writer. Generate brief, professional figure captions suitable for academic publications."
	abstractSystem = "You are an expert academic writer. Generate comprehensive, well-structured abstracts for research papers that accurately summarize the entire work."
	titlesSystem   = "You are an expert academic writer. Generate clear, descriptive, and academically appropriate titles for research papers."
	rewriteSystem  = "You are an expert academic editor. Rewrite the provided text to improve clarity, flow, and academic quality while maintaining the original meaning and technical accuracy. Use citation placeholders in the format [CITE: Short Reason for Citation] only when truly necessary - avoid citing common knowledge."
)

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

var sectionPromptTmpl = template.Must(template.New("section").Funcs(funcs).Parse(
	`{{.Opening}}
{{- if .Abstract}} Context from the paper's abstract: "{{.Abstract}}"{{end}}
{{- if .Block.Description}} Focus on: {{.Block.Description}}{{end}}
{{- if .Block.BulletPoints}} Overall key points for the entire section:
{{- range .Block.BulletPoints}}
• {{.}}{{end}}{{end}}
{{- if .Block.Subsections}} This section should be organized into the following subsections:
{{range $i, $s := .Block.Subsections}}
{{inc $i}}. {{$s.Title}}{{if $s.Description}} - {{$s.Description}}{{end}}
{{- if $s.BulletPoints}}
   Key points for this subsection:
{{- range $s.BulletPoints}}
   • {{.}}{{end}}{{end}}
{{- if $s.MinWordCount}}
   Minimum {{$s.MinWordCount}} words for this subsection.{{end}}
{{- end}}
{{end}}

Write this section as a seasoned academic researcher would. Your writing should be:
- Natural and engaging, not formulaic or robotic
- Appropriately detailed for the topic and context
- Well-structured with smooth logical flow
- Written in your own authentic scholarly voice
- Include citations naturally where they support your points, using the format {{.Marker}} when referencing prior work, methodologies, or specific claims

Write as much or as little as needed to thoroughly cover the topic.
{{- if .Block.MinWordCount}} The content should be at least {{.Block.MinWordCount}} words.{{end}} Focus on substance and clarity rather than meeting arbitrary structural requirements.`))

var captionPromptTmpl = template.Must(template.New("caption").Parse(
	`Write a brief, academic figure caption for: "{{.Description}}". 
Context: This figure is in the "{{.Section}}" section of a paper titled "{{.Title}}".
{{if .Abstract}}Paper abstract: "{{.Abstract}}"{{end}}

Generate a concise, professional caption (1-2 sentences) that would be appropriate for an academic publication.`))

var abstractPromptTmpl = template.Must(template.New("abstract").Parse(
	`Write a comprehensive abstract for the academic paper titled "{{.Title}}". 

Full paper content:
{{.Content}}

Generate a well-structured abstract (150-250 words) that includes:
- Brief background and motivation
- Research objectives and methodology
- Key findings and results
- Main conclusions and implications

Use formal academic language appropriate for scholarly publication.`))

var titlesPromptTmpl = template.Must(template.New("titles").Parse(
	`Based on the following academic paper content, suggest 5 alternative titles that are:
- Clear and descriptive
- Academically appropriate
- Concise but informative
- Different from the current title: "{{.Title}}"

Paper content:
{{.Context}}

Return only the 5 titles, one per line, without numbering or formatting.`))

var rewritePromptTmpl = template.Must(template.New("rewrite").Parse(
	`Rewrite the following text from an academic paper to improve it while maintaining academic tone and accuracy: "{{.Selected}}"
{{- if .Instructions}}

Specific instructions: {{.Instructions}}{{end}}

Context: This text is from the "{{.Section}}" section of a paper titled "{{.Title}}".
{{- if .Abstract}}
Paper abstract: "{{.Abstract}}"{{end}}`))

// SectionPrompt renders the drafting prompt for one block.
func SectionPrompt(b types.TextBlock, paperTitle, abstract string) (string, error) {
	return render(sectionPromptTmpl, struct {
		Opening  string
		Abstract string
		Block    types.TextBlock
		Marker   string
	}{
		Opening:  sectionOpening(b.Title, paperTitle),
		Abstract: abstract,
		Block:    b,
		Marker:   citation.Marker("Brief reason"),
	})
}

// CaptionPrompt renders the prompt for a figure caption.
func CaptionPrompt(figureDescription, sectionTitle, paperTitle, abstract string) (string, error) {
	return render(captionPromptTmpl, struct {
		Description, Section, Title, Abstract string
	}{figureDescription, sectionTitle, titleOrPlaceholder(paperTitle), abstract})
}

// AbstractPrompt renders the prompt for an abstract over the full paper.
func AbstractPrompt(paperTitle, fullContent string) (string, error) {
	return render(abstractPromptTmpl, struct{ Title, Content string }{paperTitle, fullContent})
}

// TitlesPrompt renders the prompt for alternative title suggestions.
func TitlesPrompt(paperTitle, context string) (string, error) {
	return render(titlesPromptTmpl, struct{ Title, Context string }{paperTitle, context})
}

// RewritePrompt renders the prompt for rewriting a selection.
func RewritePrompt(selected, instructions, sectionTitle, paperTitle, abstract string) (string, error) {
	return render(rewritePromptTmpl, struct {
		Selected, Instructions, Section, Title, Abstract string
	}{selected, instructions, sectionTitle, titleOrPlaceholder(paperTitle), abstract})
}

// sectionOpening picks the first sentence of a section prompt from the
// section's title.
func sectionOpening(sectionTitle, paperTitle string) string {
	title := titleOrPlaceholder(paperTitle)
	kind := strings.ToLower(sectionTitle)
	switch {
	case kind == "abstract":
		return fmt.Sprintf(`Write a compelling academic abstract for "%s". This should read like a seasoned researcher's work - clear, confident, and engaging without being overly technical.`, title)
	case kind == "introduction":
		return fmt.Sprintf(`Write an engaging introduction for "%s". Start with the broader context and gradually narrow to your specific research question. Write as if you're telling a story about why this research matters, using natural academic prose that flows smoothly.`, title)
	case kind == "methodology":
		return fmt.Sprintf(`Write a clear methodology section for "%s". Explain your approach as if you're walking a colleague through your research process. Be precise but conversational in tone, focusing on the logic behind your choices.`, title)
	case strings.Contains(kind, "results") || strings.Contains(kind, "discussion"):
		return fmt.Sprintf(`Write a results and discussion section for "%s". Present your findings with confidence and discuss their implications thoughtfully. Write as if you're having an informed conversation with your peers about what you discovered.`, title)
	case kind == "conclusion":
		return fmt.Sprintf(`Write a conclusion for "%s". Synthesize your key contributions and their broader significance. Write with the authority of someone who has made genuine progress in their field.`, title)
	default:
		return fmt.Sprintf(`Write an academic section for "%s" for a paper titled "%s". Write in a natural, scholarly voice that demonstrates deep understanding.`, sectionTitle, title)
	}
}

func titleOrPlaceholder(title string) string {
	if strings.TrimSpace(title) == "" {
		return TitlePlaceholder
	}
	return title
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
