package template

import (
	"sort"

	"github.com/rendis/resume-forge/internal/core/entity"
)

// Info describes a registered template for discovery endpoints.
type Info struct {
	Name           string              `json:"name"`
	DocumentType   entity.DocumentType `json:"document_type"`
	Description    string              `json:"description"`
	RequiredFields []string            `json:"required_fields"`
	Features       []string            `json:"features"`
}

type constructor func(data map[string]any, cfg Config) Helper

type registration struct {
	info  Info
	build constructor
}

// registry is the static template table. Templates are compiled in, not
// loaded from disk, so the set is fixed at build time.
var registry = map[entity.DocumentType]map[string]registration{
	entity.DocumentTypeResume: {
		"classic": {
			info: Info{
				Name:           "classic",
				DocumentType:   entity.DocumentTypeResume,
				Description:    "Single-column resume with centered contact header and ATS-friendly section layout.",
				RequiredFields: []string{"personalInfo.name", "personalInfo.email"},
				Features:       []string{"single-column", "spacing-modes", "section-aliases"},
			},
			build: newClassicResume,
		},
		"two_column": {
			info: Info{
				Name:           "two_column",
				DocumentType:   entity.DocumentTypeResume,
				Description:    "Two-column resume with a dark sidebar for contact, skills and education.",
				RequiredFields: []string{"personalInfo.name", "personalInfo.email"},
				Features:       []string{"two-column", "sidebar", "spacing-modes"},
			},
			build: newTwoColumnResume,
		},
	},
	entity.DocumentTypeCoverLetter: {
		"classic": {
			info: Info{
				Name:           "classic",
				DocumentType:   entity.DocumentTypeCoverLetter,
				Description:    "Traditional cover letter with date, recipient block and generated salutation.",
				RequiredFields: []string{"personalInfo.name", "personalInfo.email", "body"},
				Features:       []string{"salutation-fallbacks", "recipient-block"},
			},
			build: newClassicCoverLetter,
		},
		"modern": {
			info: Info{
				Name:           "modern",
				DocumentType:   entity.DocumentTypeCoverLetter,
				Description:    "Cover letter with an accent rule under the header.",
				RequiredFields: []string{"personalInfo.name", "personalInfo.email", "body"},
				Features:       []string{"accent-rule", "salutation-fallbacks", "recipient-block"},
			},
			build: newModernCoverLetter,
		},
	},
}

// List returns the templates registered for a document type, sorted by name.
// An empty document type lists everything.
func List(docType entity.DocumentType) []Info {
	var infos []Info
	for dt, templates := range registry {
		if docType != "" && dt != docType {
			continue
		}
		for _, reg := range templates {
			infos = append(infos, reg.info)
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].DocumentType != infos[j].DocumentType {
			return infos[i].DocumentType < infos[j].DocumentType
		}
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// Get returns the metadata for one template.
func Get(docType entity.DocumentType, name string) (Info, error) {
	reg, err := lookup(docType, name)
	if err != nil {
		return Info{}, err
	}
	return reg.info, nil
}

// New builds the rendering helper for a template, bound to the given data.
func New(docType entity.DocumentType, name string, data map[string]any, cfg Config) (Helper, error) {
	reg, err := lookup(docType, name)
	if err != nil {
		return nil, err
	}
	return reg.build(data, cfg), nil
}

func lookup(docType entity.DocumentType, name string) (registration, error) {
	templates, ok := registry[docType]
	if !ok {
		return registration{}, entity.TemplateNotFoundError(string(docType), name, nil)
	}
	reg, ok := templates[name]
	if !ok {
		available := make([]string, 0, len(templates))
		for n := range templates {
			available = append(available, n)
		}
		sort.Strings(available)
		return registration{}, entity.TemplateNotFoundError(string(docType), name, available)
	}
	return reg, nil
}
