package ledgerRepo

var (
	ApplyFilter   = applyFilter
	OverdueFilter = overdueFilter
)
