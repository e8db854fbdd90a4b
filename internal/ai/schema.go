package ai

import "google.golang.org/genai"

func itemSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       {Type: genai.TypeString, Description: "Name of the technology, skill or resource."},
			"description": {Type: genai.TypeString, Description: "Why the item matters for the career path."},
			"url":         {Type: genai.TypeString, Description: "Link to a relevant free resource, if any."},
		},
		Required: []string{"title", "description"},
	}
}

func roadmapSchema() *genai.Schema {
	phase := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":        {Type: genai.TypeString, Description: `Phase title, e.g. "Phase 1: Foundations".`},
			"duration":     {Type: genai.TypeString, Description: `Estimated duration, e.g. "3-6 Months".`},
			"goal":         {Type: genai.TypeString, Description: "Primary goal of the phase."},
			"technologies": {Type: genai.TypeArray, Items: itemSchema()},
			"resources":    {Type: genai.TypeArray, Items: itemSchema()},
		},
		Required: []string{"title", "duration", "goal", "technologies", "resources"},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"roadmap": {Type: genai.TypeArray, Items: phase},
		},
		Required: []string{"roadmap"},
	}
}

func answerSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"answer": {Type: genai.TypeString, Description: "Answer in Markdown with code examples and documentation links."},
		},
		Required: []string{"answer"},
	}
}
