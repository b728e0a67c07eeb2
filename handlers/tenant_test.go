package handlers

import (
	"net/http"
	"testing"

	"pgmanager/database"
	memoryRepo "pgmanager/database/repository/memory"
	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/services/occupancy"
	"pgmanager/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTenantRouter() *gin.Engine {
	rooms := memoryRepo.NewRoomRepo()
	rooms.Put(&models.Room{
		Base: models.Base{ID: "r1"}, Active: models.Active{IsActive: true},
		PGID: "pg-1", FloorID: "floor-1", RoomNumber: "101", Capacity: 2, Rent: 6000, Status: models.RoomAvailable,
	})
	beds := memoryRepo.NewBedRepo()
	beds.Put(&models.Bed{
		Base: models.Base{ID: "b1"}, Active: models.Active{IsActive: true},
		PGID: "pg-1", RoomID: "r1", BedNumber: "A", Status: models.BedVacant,
	})
	pgs := memoryRepo.NewRepo[models.PG, *models.PG](resourceRepo.PGSpec)
	pgs.Put(&models.PG{Base: models.Base{ID: "pg-1"}, Active: models.Active{IsActive: true}, Name: "Sunrise"})

	svc := occupancy.NewDefaultOccupancyService(memoryRepo.NewTenantRepo(), beds, rooms, pgs,
		database.NewSagaUnitOfWork(), newActivities(), nil)
	h := NewTenantHandler(svc, nil)

	r := newEngine()
	r.POST("/api/tenants", h.CheckIn)
	r.DELETE("/api/tenants/:id", h.CheckOut)
	return r
}

func TestCheckInCheckOut_StatusCodes(t *testing.T) {
	r := newTenantRouter()

	w := perform(r, http.MethodPost, "/api/tenants", `{"name":"Asha","phone":"9000000001","bedId":"b1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tenant := decode[models.Tenant](t, w)
	assert.Equal(t, "r1", tenant.RoomID)
	assert.Equal(t, "pg-1", tenant.PGID)
	assert.Equal(t, models.TenantActive, tenant.Status)
	assert.Equal(t, 6000.0, tenant.RentAmount)

	w = perform(r, http.MethodPost, "/api/tenants", `{"name":"Ravi","phone":"9000000002","bedId":"b1"}`, nil)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	resp := decode[utils.ErrorResponse](t, w)
	assert.Equal(t, utils.KindConflict, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "not available")

	w = perform(r, http.MethodDelete, "/api/tenants/"+tenant.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	left := decode[models.Tenant](t, w)
	assert.Equal(t, models.TenantLeft, left.Status)
	assert.False(t, left.IsActive)
	require.NotNil(t, left.LeaveDate)

	w = perform(r, http.MethodDelete, "/api/tenants/"+tenant.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	again := decode[models.Tenant](t, w)
	assert.Equal(t, left.LeaveDate.Unix(), again.LeaveDate.Unix())

	// The bed is free again.
	w = perform(r, http.MethodPost, "/api/tenants", `{"name":"Ravi","phone":"9000000002","bedId":"b1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCheckInCheckOut_ErrorBodies(t *testing.T) {
	r := newTenantRouter()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
		kind   utils.ErrorKind
	}{
		{"missing name", http.MethodPost, "/api/tenants", `{"phone":"1","bedId":"b1"}`, http.StatusBadRequest, utils.KindValidation},
		{"unknown bed", http.MethodPost, "/api/tenants", `{"name":"A","phone":"1","bedId":"b9"}`, http.StatusBadRequest, utils.KindValidation},
		{"bed outside room", http.MethodPost, "/api/tenants", `{"name":"A","phone":"1","bedId":"b1","roomId":"r2"}`, http.StatusBadRequest, utils.KindValidation},
		{"unknown tenant", http.MethodDelete, "/api/tenants/nobody", "", http.StatusNotFound, utils.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := perform(r, tc.method, tc.path, tc.body, nil)
			require.Equal(t, tc.code, w.Code, w.Body.String())
			resp := decode[utils.ErrorResponse](t, w)
			assert.Equal(t, tc.kind, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}
