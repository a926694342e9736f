package core

// ProjectTotals is the cached rollup for one project.
type ProjectTotals struct {
	ProjectID int64
	Assigned  float64
	Paid      float64
}

func (t ProjectTotals) Remaining() float64 {
	return t.Assigned - t.Paid
}

// CrewSummary covers the worker and importer legs only, excluding the
// customer leg. Used for dashboard display next to the full totals.
type CrewSummary struct {
	Assigned float64
	Paid     float64
}

// ProjectRef names one project a grouped entity appears in.
type ProjectRef struct {
	ID   int64
	Name string
}

// WorkerGroup merges every worker row sharing (name, job) across projects
// into one reporting identity.
type WorkerGroup struct {
	Name           string
	Job            string
	Projects       []ProjectRef
	RowIDs         []int64
	TotalAssigned  float64
	TotalPaid      float64
	TotalRemaining float64
}

// ImporterGroup merges every importer row sharing a name, with the union of
// goods across all of the group's assignments.
type ImporterGroup struct {
	Name           string
	Goods          []string
	Projects       []ProjectRef
	RowIDs         []int64
	TotalAssigned  float64
	TotalPaid      float64
	TotalRemaining float64
}
