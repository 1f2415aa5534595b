package synchronizer

import (
	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
)

// columns collects the changed columns of a merge. A non-empty incoming value overwrites
// a different stored value; an empty incoming value never erases one.
type columns map[string]interface{}

func (c columns) str(column, stored, incoming string) {
	if incoming != "" && incoming != stored {
		c[column] = incoming
	}
}

func (c columns) num(column string, stored, incoming int) {
	if incoming != 0 && incoming != stored {
		c[column] = incoming
	}
}

func (c columns) float(column string, stored, incoming float64) {
	if incoming != 0 && incoming != stored {
		c[column] = incoming
	}
}

func fillStr(dst *string, stored string) {
	if *dst == "" {
		*dst = stored
	}
}

func fillInt(dst *int, stored int) {
	if *dst == 0 {
		*dst = stored
	}
}

func fillFloat(dst *float64, stored float64) {
	if *dst == 0 {
		*dst = stored
	}
}

func fillCv(dst **model.CvTerm, storedAC string) {
	if *dst == nil && storedAC != "" {
		*dst = &model.CvTerm{AC: storedAC}
	}
}

func fillOrganism(dst **model.Organism, storedAC string) {
	if *dst == nil && storedAC != "" {
		*dst = &model.Organism{AC: storedAC}
	}
}

func cvAC(t *model.CvTerm) string {
	if t == nil {
		return ""
	}
	return t.AC
}

func organismAC(o *model.Organism) string {
	if o == nil {
		return ""
	}
	return o.AC
}
