package ai

import (
	"strings"
	"text/template"
)

const roadmapSystem = `You are a career coach who builds personalized, phased learning roadmaps.
Every technology and resource must carry a description explaining why it matters for the requested career path.
Only recommend learning resources that are free to use.`

var roadmapTemplate = template.Must(template.New("roadmap").Parse(`
{{- if .ExistingRoadmap -}}
Update the existing learning roadmap below. Keep its overall structure and format, and make sure the result still fits the career path and skill level.
{{if .UpdateRequest}}
Apply this change request from the learner: {{.UpdateRequest}}
{{else}}
The learner gave no specific change request. Refine the roadmap using the original parameters: suggest alternative technologies or resources, or improve the descriptions.
{{end}}
Career path: {{.CareerPath}}
Skill level: {{.SkillLevel}}

Existing roadmap (JSON):
{{.ExistingRoadmap}}

Return the complete updated roadmap.
{{- else -}}
Create a structured, multi-phase roadmap for the learner below. For each phase give a title, an estimated duration, a goal, a list of technologies or skills and a list of learning resources.
Relate each item to the career path; for a cybersecurity path, for example, explain how HTML knowledge helps with web vulnerability analysis.

Career path: {{.CareerPath}}
Skill level: {{.SkillLevel}}

Return the roadmap.
{{- end}}`))

const assistantSystem = `You help learners with technical questions about their learning roadmap.
Answer concisely, include code examples where useful and link to relevant official documentation.`

var assistantTemplate = template.Must(template.New("assistant").Parse(`
{{- if .Context}}Context:
{{.Context}}

{{end}}Question: {{.Question}}`))

// RenderRoadmapPrompt renders the user prompt for a roadmap request.
func RenderRoadmapPrompt(req RoadmapRequest) (string, error) {
	var b strings.Builder
	if err := roadmapTemplate.Execute(&b, req); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderAssistantPrompt renders the user prompt for an assistant question.
func RenderAssistantPrompt(q Question) (string, error) {
	var b strings.Builder
	if err := assistantTemplate.Execute(&b, q); err != nil {
		return "", err
	}
	return b.String(), nil
}
