package resourceRepo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	PGs           = "pgs"
	Floors        = "floors"
	Rooms         = "rooms"
	Beds          = "beds"
	Tenants       = "tenants"
	Billings      = "billings"
	Payments      = "payments"
	Staff         = "staff"
	Expenses      = "expenses"
	Inventory     = "inventory"
	Complaints    = "complaints"
	Services      = "services"
	Visitors      = "visitors"
	Notifications = "notifications"
	Activities    = "activities"
	Admins        = "admins"
	Counters      = "counters"
)

func asc(field string) bson.D  { return bson.D{{Key: field, Value: 1}} }
func desc(field string) bson.D { return bson.D{{Key: field, Value: -1}} }

func index(keys bson.D) mongo.IndexModel { return mongo.IndexModel{Keys: keys} }

var pgRef = Lookup{From: PGs, LocalField: "pgId", As: "pg", LabelField: "name"}

var (
	PGSpec = Spec{
		Entity: "pg", Collection: PGs, SoftDelete: true,
		DefaultSort: asc("name"),
		Indexes: []mongo.IndexModel{
			{Keys: asc("seedKey"), Options: options.Index().SetUnique(true).SetSparse(true)},
		},
	}
	FloorSpec = Spec{
		Entity: "floor", Collection: Floors, SoftDelete: true,
		DefaultSort: asc("floorNumber"),
		Lookups:     []Lookup{pgRef},
		Indexes:     []mongo.IndexModel{index(asc("pgId"))},
	}
	RoomSpec = Spec{
		Entity: "room", Collection: Rooms, SoftDelete: true,
		DefaultSort: asc("roomNumber"),
		Lookups: []Lookup{
			pgRef,
			{From: Floors, LocalField: "floorId", As: "floor", LabelField: "floorNumber"},
		},
		Indexes: []mongo.IndexModel{index(asc("pgId")), index(asc("floorId"))},
	}
	BedSpec = Spec{
		Entity: "bed", Collection: Beds, SoftDelete: true,
		DefaultSort: asc("bedNumber"),
		Lookups: []Lookup{
			{From: Rooms, LocalField: "roomId", As: "room", LabelField: "roomNumber"},
			{From: Tenants, LocalField: "tenantId", As: "tenant", LabelField: "name"},
		},
		Indexes: []mongo.IndexModel{index(asc("roomId")), index(bson.D{{Key: "pgId", Value: 1}, {Key: "status", Value: 1}})},
	}
	TenantSpec = Spec{
		Entity: "tenant", Collection: Tenants, SoftDelete: true,
		DefaultSort: desc("createdAt"),
		Lookups: []Lookup{
			pgRef,
			{From: Rooms, LocalField: "roomId", As: "room", LabelField: "roomNumber"},
			{From: Beds, LocalField: "bedId", As: "bed", LabelField: "bedNumber"},
		},
		Indexes: []mongo.IndexModel{index(asc("bedId")), index(bson.D{{Key: "pgId", Value: 1}, {Key: "status", Value: 1}}), index(asc("joinDate"))},
	}
	BillingSpec = Spec{
		Entity: "billing", Collection: Billings,
		DefaultSort: desc("createdAt"),
		Lookups:     []Lookup{{From: Tenants, LocalField: "tenantId", As: "tenant", LabelField: "name"}},
		Indexes: []mongo.IndexModel{
			{Keys: asc("billNumber"), Options: options.Index().SetUnique(true)},
			index(bson.D{{Key: "tenantId", Value: 1}, {Key: "billingMonth", Value: 1}}),
			index(bson.D{{Key: "status", Value: 1}, {Key: "dueDate", Value: 1}}),
			{
				Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "billingMonth", Value: 1}, {Key: "autoGenerated", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"autoGenerated": true}).
					SetName("monthly_rent_once"),
			},
		},
	}
	PaymentSpec = Spec{
		Entity: "payment", Collection: Payments,
		DefaultSort: desc("paymentDate"),
		Lookups: []Lookup{
			{From: Tenants, LocalField: "tenantId", As: "tenant", LabelField: "name"},
			{From: Billings, LocalField: "billingId", As: "billing", LabelField: "billNumber"},
		},
		Indexes: []mongo.IndexModel{
			{Keys: asc("receiptNumber"), Options: options.Index().SetUnique(true)},
			{Keys: asc("idempotencyKey"), Options: options.Index().SetUnique(true).SetSparse(true)},
			index(asc("billingId")),
			index(asc("tenantId")),
			index(asc("paymentDate")),
		},
	}
	StaffSpec = Spec{
		Entity: "staff", Collection: Staff, SoftDelete: true,
		DefaultSort: asc("name"),
		Lookups:     []Lookup{pgRef},
		Indexes:     []mongo.IndexModel{index(asc("pgId"))},
	}
	ExpenseSpec = Spec{
		Entity: "expense", Collection: Expenses, SoftDelete: true,
		DefaultSort: desc("date"),
		Lookups:     []Lookup{pgRef},
		Indexes:     []mongo.IndexModel{index(bson.D{{Key: "pgId", Value: 1}, {Key: "date", Value: -1}})},
	}
	InventorySpec = Spec{
		Entity: "inventory item", Collection: Inventory, SoftDelete: true,
		DefaultSort: asc("name"),
		Lookups: []Lookup{
			pgRef,
			{From: Rooms, LocalField: "roomId", As: "room", LabelField: "roomNumber"},
		},
		Indexes: []mongo.IndexModel{index(asc("pgId"))},
	}
	ComplaintSpec = Spec{
		Entity: "complaint", Collection: Complaints,
		DefaultSort: desc("createdAt"),
		Lookups: []Lookup{
			{From: Tenants, LocalField: "tenantId", As: "tenant", LabelField: "name"},
			{From: Rooms, LocalField: "roomId", As: "room", LabelField: "roomNumber"},
			{From: Staff, LocalField: "assignedTo", As: "staff", LabelField: "name"},
		},
		Indexes: []mongo.IndexModel{index(bson.D{{Key: "pgId", Value: 1}, {Key: "status", Value: 1}})},
	}
	ServiceSpec = Spec{
		Entity: "service", Collection: Services, SoftDelete: true,
		DefaultSort: asc("name"),
		Lookups:     []Lookup{pgRef},
		Indexes:     []mongo.IndexModel{index(asc("pgId"))},
	}
	VisitorSpec = Spec{
		Entity: "visitor", Collection: Visitors, SoftDelete: true,
		DefaultSort: desc("checkInTime"),
		Lookups:     []Lookup{{From: Tenants, LocalField: "tenantId", As: "tenant", LabelField: "name"}},
		Indexes:     []mongo.IndexModel{index(bson.D{{Key: "pgId", Value: 1}, {Key: "checkInTime", Value: -1}})},
	}
	NotificationSpec = Spec{
		Entity: "notification", Collection: Notifications, SoftDelete: true,
		DefaultSort: desc("createdAt"),
		Indexes:     []mongo.IndexModel{index(bson.D{{Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}})},
	}
	ActivitySpec = Spec{
		Entity: "activity", Collection: Activities,
		DefaultSort: desc("createdAt"),
		Indexes: []mongo.IndexModel{
			index(desc("createdAt")),
			index(bson.D{{Key: "entityType", Value: 1}, {Key: "entityId", Value: 1}}),
		},
	}
)
