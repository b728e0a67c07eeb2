package occupancyRepo_test

import (
	"testing"
	"time"

	memoryRepo "pgmanager/database/repository/memory"
	occupancyRepo "pgmanager/database/repository/occupancy"
	"pgmanager/models"

	"github.com/stretchr/testify/assert"
)

// The memory store backs every service test, so its reading of these filters
// has to agree with MongoDB's.
func TestFilters_MatchLikeMemoryStore(t *testing.T) {
	room := &models.Room{Base: models.Base{ID: "r-1"}, Active: models.Active{IsActive: true}, Capacity: 2, Status: models.RoomAvailable}
	assert.False(t, memoryRepo.Matches(room, occupancyRepo.DecrementFilter("r-1")))
	room.OccupiedBeds = 1
	assert.True(t, memoryRepo.Matches(room, occupancyRepo.DecrementFilter("r-1")))
	assert.False(t, memoryRepo.Matches(room, occupancyRepo.DecrementFilter("r-2")))

	bed := &models.Bed{Base: models.Base{ID: "b-1"}, Active: models.Active{IsActive: true}, Status: models.BedVacant}
	assert.True(t, memoryRepo.Matches(bed, occupancyRepo.OccupyFilter("b-1")))
	bed.Status = models.BedReserved
	assert.True(t, memoryRepo.Matches(bed, occupancyRepo.OccupyFilter("b-1")))
	bed.Status = models.BedOccupied
	assert.False(t, memoryRepo.Matches(bed, occupancyRepo.OccupyFilter("b-1")))
	bed.Status, bed.IsActive = models.BedVacant, false
	assert.False(t, memoryRepo.Matches(bed, occupancyRepo.OccupyFilter("b-1")))

	tenant := &models.Tenant{Base: models.Base{ID: "t-1"}, Active: models.Active{IsActive: true}, Status: models.TenantActive}
	filter, _ := occupancyRepo.MarkLeft("t-1", time.Now())
	assert.True(t, memoryRepo.Matches(tenant, filter))
	tenant.IsActive, tenant.Status = false, models.TenantLeft
	assert.False(t, memoryRepo.Matches(tenant, filter))
}
