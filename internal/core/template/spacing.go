package template

import (
	"fmt"

	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/markup"
)

// spacingPreset pins the page geometry for one spacing mode.
type spacingPreset struct {
	marginCM     float64
	fontPT       float64
	leadingEM    float64
	linesPerPage int
}

var spacingPresets = map[entity.SpacingMode]spacingPreset{
	entity.SpacingNormal:       {marginCM: 0.8, fontPT: 10, leadingEM: 0.60, linesPerPage: 45},
	entity.SpacingCompact:      {marginCM: 0.5, fontPT: 10, leadingEM: 0.50, linesPerPage: 52},
	entity.SpacingUltraCompact: {marginCM: 0.4, fontPT: 9.5, leadingEM: 0.45, linesPerPage: 58},
}

// resolveSpacing reads the spacing mode in precedence order:
// config, data.spacing_mode, data.spacingMode, default compact.
func resolveSpacing(cfg Config, data map[string]any) entity.SpacingMode {
	if cfg.SpacingMode != "" {
		if _, ok := spacingPresets[cfg.SpacingMode]; ok {
			return cfg.SpacingMode
		}
	}
	raw := markup.Field(data, "spacing_mode", []string{"spacingMode"}, string(entity.SpacingCompact))
	if _, ok := spacingPresets[entity.SpacingMode(raw)]; ok {
		return entity.SpacingMode(raw)
	}
	return entity.SpacingCompact
}

// preamble emits the page/text/paragraph setup for the mode.
func preamble(mode entity.SpacingMode) string {
	p := spacingPresets[mode]
	return fmt.Sprintf(
		"#set page(margin: %scm)\n#set text(font: \"New Computer Modern\", size: %spt)\n#set par(leading: %sem, justify: true)",
		trimFloat(p.marginCM), trimFloat(p.fontPT), trimFloat(p.leadingEM))
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}

// linesPerPage is the page-capacity lookup used by content analysis.
func linesPerPage(mode entity.SpacingMode) int {
	if p, ok := spacingPresets[mode]; ok {
		return p.linesPerPage
	}
	return spacingPresets[entity.SpacingCompact].linesPerPage
}
