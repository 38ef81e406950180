package template

import "github.com/rendis/resume-forge/internal/core/entity"

// ExampleDocument returns a complete sample payload for the document type.
// Served by the schema endpoint and written by the CLI sample command.
func ExampleDocument(docType entity.DocumentType) map[string]any {
	if docType == entity.DocumentTypeCoverLetter {
		return map[string]any{
			"personalInfo": map[string]any{
				"name":  "Jane Doe",
				"email": "jane.doe@example.com",
				"phone": "+1 555 010 0200",
			},
			"recipient": map[string]any{
				"name":    "Alex Smith",
				"title":   "Head of Engineering",
				"company": "Example Corp",
				"address": "100 Main Street, Springfield",
			},
			"salutation": "Dear Alex Smith,",
			"body": []any{
				"I am writing to express my interest in the Senior Engineer role at Example Corp.",
				"Over the past eight years I have designed and operated document-processing services at scale.",
				"I would welcome the chance to discuss how that experience maps onto your roadmap.",
			},
			"closing": "Sincerely,",
		}
	}
	return map[string]any{
		"personalInfo": map[string]any{
			"name":     "Jane Doe",
			"email":    "jane.doe@example.com",
			"phone":    "+1 555 010 0200",
			"location": "Springfield, USA",
			"website":  "https://janedoe.example.com",
			"linkedin": "https://linkedin.com/in/janedoe",
			"github":   "https://github.com/janedoe",
		},
		"professionalSummary": "Senior engineer focused on document pipelines and typesetting systems.",
		"experience": []any{
			map[string]any{
				"position":  "Senior Engineer",
				"company":   "Example Corp",
				"location":  "Springfield",
				"startDate": "2021-04",
				"endDate":   "Present",
				"achievements": []any{
					"Cut render latency by 70% with content-addressed caching",
					"Led the migration to a typesetting-based PDF pipeline",
				},
			},
		},
		"education": []any{
			map[string]any{
				"degree":         "BSc Computer Science",
				"institution":    "Springfield University",
				"graduationDate": "2016-06",
				"gpa":            "3.8/4.0",
			},
		},
		"projects": []any{
			map[string]any{
				"name":        "typeset-server",
				"url":         "https://github.com/janedoe/typeset-server",
				"description": []any{"HTTP front end for a batch typesetting engine"},
				"tools":       []any{"Go", "Redis", "Typst"},
			},
		},
		"technologiesAndSkills": []any{
			map[string]any{"category": "Languages", "skills": []any{"Go", "Python", "SQL"}},
			map[string]any{"category": "Infrastructure", "skills": []any{"Redis", "Docker", "Linux"}},
		},
		"certifications": []any{
			map[string]any{"name": "Certified Kubernetes Administrator", "issuer": "CNCF", "date": "2023-05"},
		},
	}
}
