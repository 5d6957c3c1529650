package orders

import "time"

// Amounts are expressed in minor units (e.g., cents) using int64.

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusDelivered Status = "delivered"
)

type Order struct {
	ID       int64  `json:"id" db:"id"`
	Title    string `json:"title" db:"title"`
	ClientID int64  `json:"client_id" db:"client_id"`
	CenterID int64  `json:"center_id" db:"center_id"`
	Status   Status `json:"status" db:"status"`
	Quantity int    `json:"quantity" db:"quantity"`

	// Financial fields; hidden from roles without price visibility.
	UnitPriceMinor  int64 `json:"unit_price" db:"unit_price"`
	TotalPriceMinor int64 `json:"total_price" db:"total_price"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Fields is the order keyed by the field names rbac.FieldSelection speaks.
func (o Order) Fields() map[string]any {
	return map[string]any{
		"id":          o.ID,
		"title":       o.Title,
		"client_id":   o.ClientID,
		"center_id":   o.CenterID,
		"status":      o.Status,
		"quantity":    o.Quantity,
		"unit_price":  o.UnitPriceMinor,
		"total_price": o.TotalPriceMinor,
		"created_at":  o.CreatedAt,
		"updated_at":  o.UpdatedAt,
	}
}
