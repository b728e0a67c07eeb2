package models

import "time"

// Tenant statuses.
const (
	TenantActive   = "active"
	TenantInactive = "inactive"
	TenantLeft     = "left"
)

// KYC statuses.
const (
	KYCPending   = "pending"
	KYCSubmitted = "submitted"
	KYCVerified  = "verified"
	KYCRejected  = "rejected"
)

type EmergencyContact struct {
	Name     string `bson:"name,omitempty" json:"name,omitempty"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Relation string `bson:"relation,omitempty" json:"relation,omitempty"`
}

// TenantDocument is an uploaded KYC document.
type TenantDocument struct {
	Type       string    `bson:"type" json:"type"`
	URL        string    `bson:"url" json:"url"`
	PublicID   string    `bson:"publicId" json:"publicId"`
	FileName   string    `bson:"fileName,omitempty" json:"fileName,omitempty"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

type Tenant struct {
	Base             `bson:",inline"`
	Active           `bson:",inline"`
	Name             string           `bson:"name" json:"name" binding:"required"`
	Email            string           `bson:"email,omitempty" json:"email,omitempty" binding:"omitempty,email"`
	Phone            string           `bson:"phone" json:"phone" binding:"required"`
	Gender           string           `bson:"gender,omitempty" json:"gender,omitempty" binding:"omitempty,oneof=male female other"`
	Occupation       string           `bson:"occupation,omitempty" json:"occupation,omitempty"`
	Address          string           `bson:"address,omitempty" json:"address,omitempty"`
	EmergencyContact EmergencyContact `bson:"emergencyContact,omitempty" json:"emergencyContact,omitempty"`
	PGID             string           `bson:"pgId,omitempty" json:"pgId,omitempty"`
	RoomID           string           `bson:"roomId,omitempty" json:"roomId,omitempty"`
	BedID            string           `bson:"bedId,omitempty" json:"bedId,omitempty"`
	RentAmount       float64          `bson:"rentAmount" json:"rentAmount" binding:"gte=0"`
	DepositAmount    float64          `bson:"depositAmount" json:"depositAmount" binding:"gte=0"`
	JoinDate         time.Time        `bson:"joinDate" json:"joinDate"`
	LeaveDate        *time.Time       `bson:"leaveDate,omitempty" json:"leaveDate,omitempty"`
	Status           string           `bson:"status" json:"status" binding:"omitempty,oneof=active inactive left"`
	KYCStatus        string           `bson:"kycStatus" json:"kycStatus" binding:"omitempty,oneof=pending submitted verified rejected"`
	Documents        []TenantDocument `bson:"documents,omitempty" json:"documents,omitempty"`
}

// ValidKYCStatus reports whether s is a known KYC status.
func ValidKYCStatus(s string) bool {
	switch s {
	case KYCPending, KYCSubmitted, KYCVerified, KYCRejected:
		return true
	}
	return false
}
