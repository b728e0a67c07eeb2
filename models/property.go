package models

// Room statuses.
const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
)

// Bed statuses.
const (
	BedVacant      = "vacant"
	BedOccupied    = "occupied"
	BedReserved    = "reserved"
	BedMaintenance = "maintenance"
)

// Active marks a soft-deletable document.
type Active struct {
	IsActive bool `bson:"isActive" json:"isActive"`
}

func (a *Active) Activate() { a.IsActive = true }

// PG is a paying-guest property.
type PG struct {
	Base      `bson:",inline"`
	Active    `bson:",inline"`
	Name      string   `bson:"name" json:"name" binding:"required"`
	Address   string   `bson:"address" json:"address" binding:"required"`
	City      string   `bson:"city,omitempty" json:"city,omitempty"`
	State     string   `bson:"state,omitempty" json:"state,omitempty"`
	Pincode   string   `bson:"pincode,omitempty" json:"pincode,omitempty"`
	Phone     string   `bson:"phone,omitempty" json:"phone,omitempty"`
	Email     string   `bson:"email,omitempty" json:"email,omitempty" binding:"omitempty,email"`
	Floors    int      `bson:"totalFloors" json:"totalFloors" binding:"gte=0"`
	Rooms     int      `bson:"totalRooms" json:"totalRooms" binding:"gte=0"`
	Beds      int      `bson:"totalBeds" json:"totalBeds" binding:"gte=0"`
	Amenities []string `bson:"amenities,omitempty" json:"amenities,omitempty"`
	SeedKey   string   `bson:"seedKey,omitempty" json:"-"`
}

// Floor belongs to a PG.
type Floor struct {
	Base        `bson:",inline"`
	Active      `bson:",inline"`
	PGID        string `bson:"pgId" json:"pgId" binding:"required"`
	FloorNumber int    `bson:"floorNumber" json:"floorNumber"`
	Name        string `bson:"name,omitempty" json:"name,omitempty"`
	TotalRooms  int    `bson:"totalRooms" json:"totalRooms" binding:"gte=0"`
}

// Room belongs to a floor; PGID is denormalized from the floor.
type Room struct {
	Base         `bson:",inline"`
	Active       `bson:",inline"`
	PGID         string   `bson:"pgId" json:"pgId"`
	FloorID      string   `bson:"floorId" json:"floorId" binding:"required"`
	RoomNumber   string   `bson:"roomNumber" json:"roomNumber" binding:"required"`
	RoomType     string   `bson:"roomType,omitempty" json:"roomType,omitempty" binding:"omitempty,oneof=single double triple dormitory"`
	Capacity     int      `bson:"capacity" json:"capacity" binding:"required,gte=1"`
	OccupiedBeds int      `bson:"occupiedBeds" json:"occupiedBeds"`
	Rent         float64  `bson:"rent" json:"rent" binding:"gte=0"`
	Status       string   `bson:"status" json:"status" binding:"omitempty,oneof=available occupied maintenance"`
	Amenities    []string `bson:"amenities,omitempty" json:"amenities,omitempty"`
}

// DeriveStatus recomputes Status from the occupancy counter. Maintenance is kept.
func (r *Room) DeriveStatus() {
	if r.Status == RoomMaintenance {
		return
	}
	if r.OccupiedBeds >= r.Capacity {
		r.Status = RoomOccupied
	} else {
		r.Status = RoomAvailable
	}
}

// Full reports whether every bed slot is taken.
func (r *Room) Full() bool {
	return r.OccupiedBeds >= r.Capacity
}

// Bed belongs to a room. TenantID is set exactly when Status is occupied.
type Bed struct {
	Base      `bson:",inline"`
	Active    `bson:",inline"`
	PGID      string  `bson:"pgId" json:"pgId"`
	RoomID    string  `bson:"roomId" json:"roomId" binding:"required"`
	BedNumber string  `bson:"bedNumber" json:"bedNumber" binding:"required"`
	Status    string  `bson:"status" json:"status" binding:"omitempty,oneof=vacant occupied reserved maintenance"`
	TenantID  string  `bson:"tenantId,omitempty" json:"tenantId,omitempty"`
	Rent      float64 `bson:"rent,omitempty" json:"rent,omitempty" binding:"gte=0"`
}

// Assignable reports whether a tenant may be checked into the bed.
func (b *Bed) Assignable() bool {
	return b.IsActive && (b.Status == BedVacant || b.Status == BedReserved)
}
