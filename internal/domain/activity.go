package domain

import "time"

// ActivityLog is an append-only record of something that happened to a shop.
// Entries are never updated; the only delete path is an administrative purge.
type ActivityLog struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	ShopDomain string    `json:"shop_domain" bson:"shopDomain"`
	Action     string    `json:"action" bson:"action"`
	CreatedAt  time.Time `json:"created_at" bson:"createdAt"`
}

// Well-known activity actions.
const (
	ActionInstalled   = "App Installed via OAuth"
	ActionUninstalled = "App Uninstalled"
)
