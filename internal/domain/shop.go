package domain

import "time"

// Shop represents a connected merchant store. The myshopify domain is the
// primary key; email is a unique, mutable attribute used to correlate the
// merchant across systems (webhooks address shops by email).
type Shop struct {
	ShopDomain          string    `json:"shop_domain" bson:"shopDomain"`
	Email               string    `json:"email" bson:"email"`
	Name                string    `json:"name" bson:"name"`
	Plan                string    `json:"plan" bson:"plan"`
	PrimaryDomain       string    `json:"primary_domain" bson:"primaryDomain"`
	CurrencyCode        string    `json:"currency_code" bson:"currencyCode"`
	Timezone            string    `json:"timezone" bson:"timezone"`
	IsCheckoutSupported bool      `json:"is_checkout_supported" bson:"isCheckoutSupported"`
	AccessToken         string    `json:"-" bson:"accessToken"`
	CreatedAt           time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updatedAt"`
}
