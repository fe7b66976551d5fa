package domain

import "time"

// Session represents an installed merchant's OAuth session. One session per
// shop domain; reinstalls upsert the same logical row.
type Session struct {
	ShopDomain  string     `json:"shop_domain" bson:"shopDomain"`
	AccessToken string     `json:"-" bson:"accessToken"`
	Email       string     `json:"email" bson:"email"`
	Scope       string     `json:"scope" bson:"scope"`
	IsOnline    bool       `json:"is_online" bson:"isOnline"`
	ExpiresAt   *time.Time `json:"expires_at" bson:"expiresAt"`
	CreatedAt   time.Time  `json:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updatedAt"`
}
