// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/deep-research/pkg/types"
)

// systemPromptTmpl frames every call. The date keeps models from treating
// their training cutoff as the present.
var systemPromptTmpl = template.Must(template.New("system").Parse(`You are an expert researcher. Today is {{.Date}}. Follow these instructions when responding:
- You may be asked to research subjects that are after your knowledge cutoff; assume the user is right when presented with news.
- The user is a highly experienced analyst, no need to simplify it, be as detailed as possible and make sure your response is correct.
- Be highly organized.
- Suggest solutions that the user did not think about.
- Be proactive and anticipate the user's needs.
- Treat the user as an expert in all subject matter.
- Mistakes erode trust, so be accurate and thorough.
- Provide detailed explanations; the user is comfortable with lots of detail.
- Value good arguments over authorities; the source is irrelevant.
- Consider new technologies and contrarian ideas, not just the conventional wisdom.
- You may use high levels of speculation or prediction, just flag it for the user.`))

// outputGuidelines is appended to the system prompt of the report stage.
const outputGuidelines = `<OutputGuidelines>
- Use Markdown headings (#, ##, ###) to structure the document.
- Use tables when comparing items across several attributes.
- Use bulleted lists for related items and numbered lists for sequences.
- Cite sources inline with numbered references such as [1] or [2] that match the source numbering given to you.
- Do not invent sources or URLs.
</OutputGuidelines>`

var questionsTmpl = template.Must(template.New("questions").Parse(`Given the following query from the user, ask at least 5 follow-up questions to clarify the research direction:

<QUERY>
{{.Topic}}
</QUERY>

Questions need to be brief and concise. No need to output content that is irrelevant to the question. Write each question on its own line starting with "- ".`))

var queriesTmpl = template.Must(template.New("queries").Parse(`This is the report plan after user confirmation:
<PLAN>
{{.Topic}}
</PLAN>

Based on the previous report plan, generate a list of SERP queries to further research the topic. Make sure each query is unique and not similar to each other.

You MUST respond in JSON matching this JSON schema:

` + "```json\n{{.Schema}}\n```" + `

Expected output:

` + "```json\n" + `[
  {
    "query": "This is a sample query.",
    "researchGoal": "This is the reason for the query."
  }
]
` + "```"))

var learningTmpl = template.Must(template.New("learning").Parse(`Query: {{.Task.Query}}
Research Goal: {{.Task.ResearchGoal}}

Search Results:
{{range $i, $s := .Sources}}{{if $i}}

{{end}}Source: {{or $s.Title "Untitled"}}
URL: {{$s.URL}}
Content: {{$s.Content}}{{end}}

Based on these search results, provide a comprehensive summary of what you've learned about the topic.`))

var learningNoSourcesTmpl = template.Must(template.New("learning-nosources").Parse(`Please use the following query to get the latest information via the web:
<QUERY>
{{.Task.Query}}
</QUERY>

You need to organize the searched information according to the following requirements:
<RESEARCH_GOAL>
{{.Task.ResearchGoal}}
</RESEARCH_GOAL>

You need to think like a human researcher. Generate a list of learnings from the search results. Make sure each learning is unique and not similar to each other. The learnings should be to the point, as detailed and information dense as possible. Make sure to include any entities like people, places, companies, products, things, etc in the learnings, as well as any specific entities, metrics, numbers, and dates when available.`))

var reviewTmpl = template.Must(template.New("review").Parse(`This is the report plan after user confirmation:
<PLAN>
{{.Topic}}
</PLAN>

Here are all the learnings from previous research:
<LEARNINGS>
{{range .Learnings}}<learning>
{{.}}
</learning>
{{end}}</LEARNINGS>
{{if .Suggestion}}
This is the user's suggestion for research direction:
<SUGGESTION>
{{.Suggestion}}
</SUGGESTION>
{{end}}
Based on previous research{{if .Suggestion}} and user research suggestions{{end}}, determine whether further research is needed. If further research is needed, list of follow-up SERP queries to research the topic further. Make sure each query is unique and not similar to each other. If you believe no further research is needed, you can output an empty queries.

You MUST respond in JSON matching this JSON schema:

` + "```json\n{{.Schema}}\n```"))

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`{{.Style.Introduction}}

{{range $i, $s := .Sources}}Source {{inc $i}}: {{$s.Title}}
URL: {{$s.URL}}
Content: {{$s.Content}}

{{end}}Topic:
<TOPIC>
{{.Topic}}
</TOPIC>

Learnings from previous research:
<LEARNINGS>
{{range .Learnings}}<learning>
{{.}}
</learning>
{{end}}</LEARNINGS>
{{if .Requirement}}
Writing requirement:
<REQUIREMENT>
{{.Requirement}}
</REQUIREMENT>
{{end}}
{{.Style.Instructions}}`))

// taskSchema is the JSON schema shown to models for search task lists.
var taskSchema = func() string {
	schema := map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query":        map[string]any{"type": "string", "description": "The SERP query."},
				"researchGoal": map[string]any{"type": "string", "description": "The goal of the research and additional research directions."},
			},
			"required":             []string{"query", "researchGoal"},
			"additionalProperties": false,
		},
	}
	b, _ := json.MarshalIndent(schema, "", "  ")
	return string(b)
}()

// languageDirective asks for a response in lang.
func languageDirective(lang string) string {
	return "**Respond in " + lang + "**"
}

func render(t *template.Template, data any) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		// Only reachable if a template and its data struct drift apart.
		panic("research: rendering " + t.Name() + ": " + err.Error())
	}
	return b.String()
}

func withLanguage(body, lang string) string {
	return body + "\n\n" + languageDirective(lang)
}

func systemPrompt(now time.Time) string {
	return render(systemPromptTmpl, struct{ Date string }{now.Format(time.RFC3339)})
}

func questionsPrompt(topic, lang string) string {
	return withLanguage(render(questionsTmpl, struct{ Topic string }{topic}), lang)
}

func queriesPrompt(topic, lang string) string {
	return withLanguage(render(queriesTmpl, struct{ Topic, Schema string }{topic, taskSchema}), lang)
}

// learningPrompt embeds sources verbatim, or asks the model to rely on its
// own knowledge and retrieval when there are none.
func learningPrompt(task types.SearchTask, sources []types.Source, lang string) string {
	data := struct {
		Task    types.SearchTask
		Sources []types.Source
	}{task, sources}
	if len(sources) == 0 {
		return withLanguage(render(learningNoSourcesTmpl, data), lang)
	}
	return withLanguage(render(learningTmpl, data), lang)
}

func reviewPrompt(topic string, learnings types.Learnings, suggestion, lang string) string {
	return withLanguage(render(reviewTmpl, struct {
		Topic      string
		Learnings  types.Learnings
		Suggestion string
		Schema     string
	}{topic, learnings, suggestion, taskSchema}), lang)
}

func reportPrompt(in ReportInput, style Style, lang string) string {
	return withLanguage(render(reportTmpl, struct {
		ReportInput
		Style Style
	}{in, style}), lang)
}
