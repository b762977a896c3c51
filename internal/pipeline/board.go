package pipeline

import "github.com/starford/raido/internal/models"

// Column is one rendered board column: a stage and the leads sitting in it.
type Column struct {
	Stage models.PipelineStage `json:"stage"`
	Leads []models.Lead        `json:"leads"`
}

// Board projects the active board: columns in catalog order, each holding
// the leads whose stage string matches the column name exactly. Leads in a
// terminal stage are excluded; leads whose stage is unknown or deactivated
// still render, bucketed under the fallback column, with their stored stage
// string left intact.
func (c *Controller) Board() ([]Column, error) {
	stages := c.catalog.ListActiveStages()
	leads, err := c.store.ListLeads()
	if err != nil {
		return nil, err
	}

	columns := make([]Column, len(stages))
	byName := make(map[string]int, len(stages))
	for i, s := range stages {
		columns[i] = Column{Stage: s, Leads: []models.Lead{}}
		byName[s.Name] = i
	}

	var orphans []models.Lead
	for _, l := range leads {
		if models.IsTerminalStage(l.Stage) {
			continue
		}
		if i, ok := byName[l.Stage]; ok {
			columns[i].Leads = append(columns[i].Leads, l)
			continue
		}
		orphans = append(orphans, l)
	}

	if len(orphans) > 0 {
		if i, ok := byName[c.fallbackStage]; ok {
			columns[i].Leads = append(columns[i].Leads, orphans...)
		} else {
			// Fallback stage itself is not on the board: render a synthetic
			// trailing column so the leads never disappear.
			columns = append(columns, Column{
				Stage: models.PipelineStage{Name: c.fallbackStage, DisplayName: c.fallbackStage, IsActive: true},
				Leads: orphans,
			})
		}
	}

	return columns, nil
}
