package models

import "time"

// Complaint statuses.
const (
	ComplaintOpen       = "open"
	ComplaintInProgress = "in_progress"
	ComplaintResolved   = "resolved"
	ComplaintClosed     = "closed"
)

// Visitor statuses.
const (
	VisitorCheckedIn  = "checked_in"
	VisitorCheckedOut = "checked_out"
)

type Staff struct {
	Base     `bson:",inline"`
	Active   `bson:",inline"`
	PGID     string    `bson:"pgId,omitempty" json:"pgId,omitempty"`
	Name     string    `bson:"name" json:"name" binding:"required"`
	Phone    string    `bson:"phone" json:"phone" binding:"required"`
	Email    string    `bson:"email,omitempty" json:"email,omitempty" binding:"omitempty,email"`
	Role     string    `bson:"role" json:"role" binding:"required,oneof=manager warden cook cleaner security maintenance other"`
	Salary   float64   `bson:"salary" json:"salary" binding:"gte=0"`
	JoinDate time.Time `bson:"joinDate,omitempty" json:"joinDate,omitempty"`
	Address  string    `bson:"address,omitempty" json:"address,omitempty"`
}

type Expense struct {
	Base          `bson:",inline"`
	Active        `bson:",inline"`
	PGID          string    `bson:"pgId,omitempty" json:"pgId,omitempty"`
	Category      string    `bson:"category" json:"category" binding:"required,oneof=electricity water maintenance salary groceries internet rent supplies other"`
	Description   string    `bson:"description" json:"description" binding:"required"`
	Amount        float64   `bson:"amount" json:"amount" binding:"required,gt=0"`
	Date          time.Time `bson:"date" json:"date"`
	PaidTo        string    `bson:"paidTo,omitempty" json:"paidTo,omitempty"`
	PaymentMethod string    `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
}

type Inventory struct {
	Base         `bson:",inline"`
	Active       `bson:",inline"`
	PGID         string    `bson:"pgId,omitempty" json:"pgId,omitempty"`
	RoomID       string    `bson:"roomId,omitempty" json:"roomId,omitempty"`
	Name         string    `bson:"name" json:"name" binding:"required"`
	Category     string    `bson:"category" json:"category" binding:"required,oneof=furniture electronics appliance kitchen bedding other"`
	Quantity     int       `bson:"quantity" json:"quantity" binding:"gte=0"`
	Unit         string    `bson:"unit,omitempty" json:"unit,omitempty"`
	Condition    string    `bson:"condition" json:"condition" binding:"omitempty,oneof=new good fair poor damaged"`
	Price        float64   `bson:"price,omitempty" json:"price,omitempty" binding:"gte=0"`
	PurchaseDate time.Time `bson:"purchaseDate,omitempty" json:"purchaseDate,omitempty"`
}

type Complaint struct {
	Base        `bson:",inline"`
	PGID        string     `bson:"pgId,omitempty" json:"pgId,omitempty"`
	TenantID    string     `bson:"tenantId,omitempty" json:"tenantId,omitempty"`
	RoomID      string     `bson:"roomId,omitempty" json:"roomId,omitempty"`
	Title       string     `bson:"title" json:"title" binding:"required"`
	Description string     `bson:"description" json:"description" binding:"required"`
	Category    string     `bson:"category" json:"category" binding:"omitempty,oneof=electrical plumbing cleaning food internet security noise other"`
	Priority    string     `bson:"priority" json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Status      string     `bson:"status" json:"status" binding:"omitempty,oneof=open in_progress resolved closed"`
	AssignedTo  string     `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Resolution  string     `bson:"resolution,omitempty" json:"resolution,omitempty"`
	ResolvedAt  *time.Time `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

// Settled reports whether the complaint no longer needs attention.
func (c *Complaint) Settled() bool {
	return c.Status == ComplaintResolved || c.Status == ComplaintClosed
}

// Service is an amenity or add-on offered at a PG (laundry, meals, wifi).
type Service struct {
	Base        `bson:",inline"`
	Active      `bson:",inline"`
	PGID        string  `bson:"pgId,omitempty" json:"pgId,omitempty"`
	Name        string  `bson:"name" json:"name" binding:"required"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Category    string  `bson:"category,omitempty" json:"category,omitempty"`
	Price       float64 `bson:"price" json:"price" binding:"gte=0"`
	Frequency   string  `bson:"frequency,omitempty" json:"frequency,omitempty" binding:"omitempty,oneof=one_time daily weekly monthly"`
	Provider    string  `bson:"provider,omitempty" json:"provider,omitempty"`
	Status      string  `bson:"status" json:"status" binding:"omitempty,oneof=active inactive"`
}

type Visitor struct {
	Base         `bson:",inline"`
	Active       `bson:",inline"`
	PGID         string     `bson:"pgId,omitempty" json:"pgId,omitempty"`
	TenantID     string     `bson:"tenantId,omitempty" json:"tenantId,omitempty"`
	Name         string     `bson:"name" json:"name" binding:"required"`
	Phone        string     `bson:"phone" json:"phone" binding:"required"`
	Purpose      string     `bson:"purpose,omitempty" json:"purpose,omitempty"`
	IDProof      string     `bson:"idProof,omitempty" json:"idProof,omitempty"`
	CheckInTime  time.Time  `bson:"checkInTime" json:"checkInTime"`
	CheckOutTime *time.Time `bson:"checkOutTime,omitempty" json:"checkOutTime,omitempty"`
	Status       string     `bson:"status" json:"status" binding:"omitempty,oneof=checked_in checked_out"`
}

type Notification struct {
	Base      `bson:",inline"`
	Active    `bson:",inline"`
	Title     string            `bson:"title" json:"title" binding:"required"`
	Message   string            `bson:"message" json:"message" binding:"required"`
	Type      string            `bson:"type" json:"type" binding:"omitempty,oneof=info payment complaint tenant system"`
	Recipient string            `bson:"recipient,omitempty" json:"recipient,omitempty"`
	Data      map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	IsRead    bool              `bson:"isRead" json:"isRead"`
	ReadAt    *time.Time        `bson:"readAt,omitempty" json:"readAt,omitempty"`
	Pushed    bool              `bson:"pushed" json:"pushed"`
}

// Activity is an append-only audit entry.
type Activity struct {
	Base        `bson:",inline"`
	Type        string         `bson:"type" json:"type"`
	Action      string         `bson:"action" json:"action"`
	Description string         `bson:"description" json:"description"`
	EntityType  string         `bson:"entityType,omitempty" json:"entityType,omitempty"`
	EntityID    string         `bson:"entityId,omitempty" json:"entityId,omitempty"`
	AdminID     string         `bson:"adminId,omitempty" json:"adminId,omitempty"`
	Metadata    map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}
