package occupancyRepo

var (
	IncrementFilter = incrementFilter
	DecrementFilter = decrementFilter
	OccupyFilter    = occupyFilter
	MarkLeft        = markLeft
)
