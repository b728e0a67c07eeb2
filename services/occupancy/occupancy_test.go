package occupancy

import (
	"context"
	"errors"
	"testing"
	"time"

	"pgmanager/database"
	memoryRepo "pgmanager/database/repository/memory"
	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/services/activity"
	"pgmanager/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	utils.SetLogger(zap.NewNop())
	m.Run()
}

type fixture struct {
	svc        *DefaultOccupancyService
	tenants    *memoryRepo.TenantRepo
	beds       *memoryRepo.BedRepo
	rooms      *memoryRepo.RoomRepo
	pgs        *memoryRepo.Repo[models.PG, *models.PG]
	activities *memoryRepo.Repo[models.Activity, *models.Activity]
	published  []models.Notification
}

func (f *fixture) Publish(ctx context.Context, n models.Notification) {
	f.published = append(f.published, n)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tenants:    memoryRepo.NewTenantRepo(),
		beds:       memoryRepo.NewBedRepo(),
		rooms:      memoryRepo.NewRoomRepo(),
		pgs:        memoryRepo.NewRepo[models.PG, *models.PG](resourceRepo.PGSpec),
		activities: memoryRepo.NewRepo[models.Activity, *models.Activity](resourceRepo.ActivitySpec),
	}
	f.pgs.Put(&models.PG{Base: models.Base{ID: "pg-1"}, Active: models.Active{IsActive: true}, Name: "Sunrise"})
	f.svc = NewDefaultOccupancyService(f.tenants, f.beds, f.rooms, f.pgs,
		database.NewSagaUnitOfWork(), activity.NewDefaultActivityService(f.activities), f)
	return f
}

func (f *fixture) addRoom(id string, capacity int, rent float64) {
	f.rooms.Put(&models.Room{
		Base: models.Base{ID: id}, Active: models.Active{IsActive: true},
		PGID: "pg-1", FloorID: "floor-1", RoomNumber: id,
		Capacity: capacity, Rent: rent, Status: models.RoomAvailable,
	})
}

func (f *fixture) addBed(id, roomID string) {
	f.beds.Put(&models.Bed{
		Base: models.Base{ID: id}, Active: models.Active{IsActive: true},
		PGID: "pg-1", RoomID: roomID, BedNumber: id, Status: models.BedVacant,
	})
}

func (f *fixture) bed(t *testing.T, id string) *models.Bed {
	b, err := f.beds.GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (f *fixture) room(t *testing.T, id string) *models.Room {
	r, err := f.rooms.GetByID(context.Background(), id)
	require.NoError(t, err)
	return r
}

func TestCheckIn_OccupiesBedAndRoom(t *testing.T) {
	f := newFixture(t)
	f.addRoom("r1", 2, 6000)
	f.addBed("b1", "r1")

	tenant, err := f.svc.CheckIn(context.Background(), &models.Tenant{Name: "Asha", Phone: "9000000001", BedID: "b1"})
	require.NoError(t, err)

	assert.NotEmpty(t, tenant.ID)
	assert.Equal(t, "r1", tenant.RoomID)
	assert.Equal(t, "pg-1", tenant.PGID)
	assert.Equal(t, 6000.0, tenant.RentAmount)
	assert.Equal(t, models.TenantActive, tenant.Status)
	assert.Equal(t, models.KYCPending, tenant.KYCStatus)
	assert.True(t, tenant.IsActive)

	bed := f.bed(t, "b1")
	assert.Equal(t, models.BedOccupied, bed.Status)
	assert.Equal(t, tenant.ID, bed.TenantID)

	room := f.room(t, "r1")
	assert.Equal(t, 1, room.OccupiedBeds)
	assert.Equal(t, models.RoomAvailable, room.Status)

	n, _ := f.activities.Count(context.Background(), nil)
	assert.EqualValues(t, 1, n)
	require.Len(t, f.published, 1)
}

func TestCheckInCheckOut_RoomStatusFollowsCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addRoom("r1", 2, 5000)
	f.addBed("b1", "r1")
	f.addBed("b2", "r1")

	first, err := f.svc.CheckIn(ctx, &models.Tenant{Name: "A", Phone: "1", BedID: "b1"})
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, &models.Tenant{Name: "B", Phone: "2", BedID: "b2"})
	require.NoError(t, err)

	room := f.room(t, "r1")
	assert.Equal(t, 2, room.OccupiedBeds)
	assert.Equal(t, models.RoomOccupied, room.Status)

	left, err := f.svc.CheckOut(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, left.IsActive)
	assert.Equal(t, models.TenantLeft, left.Status)
	require.NotNil(t, left.LeaveDate)

	room = f.room(t, "r1")
	assert.Equal(t, 1, room.OccupiedBeds)
	assert.Equal(t, models.RoomAvailable, room.Status)

	bed := f.bed(t, "b1")
	assert.Equal(t, models.BedVacant, bed.Status)
	assert.Empty(t, bed.TenantID)
}

func TestCheckOut_RepeatIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addRoom("r1", 2, 5000)
	f.addBed("b1", "r1")

	tenant, err := f.svc.CheckIn(ctx, &models.Tenant{Name: "A", Phone: "1", BedID: "b1"})
	require.NoError(t, err)
	first, err := f.svc.CheckOut(ctx, tenant.ID)
	require.NoError(t, err)

	second, err := f.svc.CheckOut(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, first.LeaveDate.Unix(), second.LeaveDate.Unix())
	assert.Equal(t, 0, f.room(t, "r1").OccupiedBeds)
}

func TestCheckOut_RoomCountNeverNegative(t *testing.T) {
	f := newFixture(t)
	f.addRoom("r1", 2, 5000)
	f.tenants.Put(&models.Tenant{
		Base: models.Base{ID: "t1"}, Active: models.Active{IsActive: true},
		Name: "Ghost", RoomID: "r1", Status: models.TenantActive,
	})

	_, err := f.svc.CheckOut(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, f.room(t, "r1").OccupiedBeds)
}

func TestCheckIn_BedNotAvailable(t *testing.T) {
	f := newFixture(t)
	f.addRoom("r1", 2, 5000)
	f.addBed("b1", "r1")
	_, err := f.svc.CheckIn(context.Background(), &models.Tenant{Name: "A", Phone: "1", BedID: "b1"})
	require.NoError(t, err)

	_, err = f.svc.CheckIn(context.Background(), &models.Tenant{Name: "B", Phone: "2", BedID: "b1"})
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestCheckIn_InconsistentReferences(t *testing.T) {
	f := newFixture(t)
	f.addRoom("r1", 2, 5000)
	f.addRoom("r2", 2, 5000)
	f.addBed("b1", "r1")

	_, err := f.svc.CheckIn(context.Background(), &models.Tenant{Name: "A", Phone: "1", BedID: "b1", RoomID: "r2"})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = f.svc.CheckIn(context.Background(), &models.Tenant{Name: "A", Phone: "1", BedID: "missing"})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = f.svc.CheckIn(context.Background(), &models.Tenant{Name: "A", Phone: "1", PGID: "pg-404"})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

type failingRooms struct {
	*memoryRepo.RoomRepo
}

func (failingRooms) IncrementOccupancy(ctx context.Context, roomID string) error {
	return errors.New("connection reset")
}

func TestCheckIn_FailureCompensatesEarlierSteps(t *testing.T) {
	f := newFixture(t)
	f.addRoom("r1", 2, 5000)
	f.addBed("b1", "r1")
	f.svc.Rooms = failingRooms{f.rooms}

	_, err := f.svc.CheckIn(context.Background(), &models.Tenant{Name: "A", Phone: "1", BedID: "b1"})
	require.Error(t, err)

	n, _ := f.tenants.Count(context.Background(), nil)
	assert.Zero(t, n)
	bed := f.bed(t, "b1")
	assert.Equal(t, models.BedVacant, bed.Status)
	assert.Empty(t, bed.TenantID)
	assert.Equal(t, 0, f.room(t, "r1").OccupiedBeds)
	assert.Empty(t, f.published)
}

func TestTransfer_MovesBetweenRooms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addRoom("r1", 1, 5000)
	f.addRoom("r2", 2, 7000)
	f.addBed("b1", "r1")
	f.addBed("b2", "r2")

	tenant, err := f.svc.CheckIn(ctx, &models.Tenant{Name: "A", Phone: "1", BedID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoomOccupied, f.room(t, "r1").Status)

	rent := 7000.0
	moved, err := f.svc.Transfer(ctx, tenant.ID, TransferRequest{BedID: "b2", RentAmount: &rent})
	require.NoError(t, err)
	assert.Equal(t, "b2", moved.BedID)
	assert.Equal(t, "r2", moved.RoomID)
	assert.Equal(t, 7000.0, moved.RentAmount)

	assert.Equal(t, models.BedVacant, f.bed(t, "b1").Status)
	assert.Equal(t, tenant.ID, f.bed(t, "b2").TenantID)
	assert.Equal(t, 0, f.room(t, "r1").OccupiedBeds)
	assert.Equal(t, models.RoomAvailable, f.room(t, "r1").Status)
	assert.Equal(t, 1, f.room(t, "r2").OccupiedBeds)
}

func TestTransfer_WithinFullRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addRoom("r1", 2, 5000)
	f.addBed("b1", "r1")
	f.addBed("b2", "r1")
	f.addBed("b3", "r1")
	// b3 exceeds capacity on purpose to model a freed spare bed.

	a, err := f.svc.CheckIn(ctx, &models.Tenant{Name: "A", Phone: "1", BedID: "b1"})
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, &models.Tenant{Name: "B", Phone: "2", BedID: "b2"})
	require.NoError(t, err)

	_, err = f.svc.Transfer(ctx, a.ID, TransferRequest{BedID: "b3"})
	require.NoError(t, err)
	room := f.room(t, "r1")
	assert.Equal(t, 2, room.OccupiedBeds)
	assert.Equal(t, models.RoomOccupied, room.Status)
	assert.Equal(t, models.BedVacant, f.bed(t, "b1").Status)
}

func TestTransfer_InactiveTenant(t *testing.T) {
	f := newFixture(t)
	f.addRoom("r1", 2, 5000)
	f.addBed("b1", "r1")
	now := time.Now()
	f.tenants.Put(&models.Tenant{Base: models.Base{ID: "t1"}, Name: "Gone", Status: models.TenantLeft, LeaveDate: &now})

	_, err := f.svc.Transfer(context.Background(), "t1", TransferRequest{BedID: "b1"})
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

type failingActivity struct {
	activity.ActivityService
}

func (failingActivity) Record(ctx context.Context, entry models.Activity) (*models.Activity, error) {
	return nil, errors.New("activity store down")
}

func TestCheckOut_RollbackRestoresOnlyWhatChanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addRoom("r1", 2, 5000)
	f.tenants.Put(&models.Tenant{
		Base: models.Base{ID: "t1"}, Active: models.Active{IsActive: true},
		Name: "Ghost", RoomID: "r1", Status: models.TenantActive,
	})
	f.tenants.Put(&models.Tenant{
		Base: models.Base{ID: "t2"}, Active: models.Active{IsActive: true},
		Name: "Stale", RoomID: "r-gone", Status: models.TenantActive,
	})
	f.svc.Activity = failingActivity{f.svc.Activity}

	_, err := f.svc.CheckOut(ctx, "t1")
	require.Error(t, err)
	assert.Equal(t, 0, f.room(t, "r1").OccupiedBeds)
	t1, err := f.tenants.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, t1.IsActive)
	assert.Equal(t, models.TenantActive, t1.Status)

	// No compensation runs against the missing room, so only the original
	// failure comes back.
	_, err = f.svc.CheckOut(ctx, "t2")
	require.Error(t, err)
	assert.Equal(t, utils.KindInternal, utils.KindOf(err))
	assert.NotContains(t, err.Error(), "not found")
}

func TestTransfer_RollbackLeavesEmptySourceRoomAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addRoom("r1", 2, 5000)
	f.addRoom("r2", 2, 6000)
	f.addBed("b2", "r2")
	f.tenants.Put(&models.Tenant{
		Base: models.Base{ID: "t1"}, Active: models.Active{IsActive: true},
		Name: "Ghost", PGID: "pg-1", RoomID: "r1", Status: models.TenantActive,
	})
	f.svc.Activity = failingActivity{f.svc.Activity}

	_, err := f.svc.Transfer(ctx, "t1", TransferRequest{BedID: "b2"})
	require.Error(t, err)
	assert.Equal(t, utils.KindInternal, utils.KindOf(err))

	assert.Equal(t, 0, f.room(t, "r1").OccupiedBeds)
	assert.Equal(t, 0, f.room(t, "r2").OccupiedBeds)
	assert.Equal(t, models.BedVacant, f.bed(t, "b2").Status)
	t1, err := f.tenants.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "r1", t1.RoomID)
	assert.Empty(t, t1.BedID)
}
