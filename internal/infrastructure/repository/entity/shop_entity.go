package entity

import (
	"time"

	"github.com/ahmedy940/dropx-core/internal/domain"
)

// MongoShopDoc represents a shop in MongoDB.
type MongoShopDoc struct {
	ShopDomain          string    `bson:"shopDomain"`
	Email               string    `bson:"email"`
	Name                string    `bson:"name"`
	Plan                string    `bson:"plan"`
	PrimaryDomain       string    `bson:"primaryDomain"`
	CurrencyCode        string    `bson:"currencyCode"`
	Timezone            string    `bson:"timezone"`
	IsCheckoutSupported bool      `bson:"isCheckoutSupported"`
	AccessToken         string    `bson:"accessToken"`
	CreatedAt           time.Time `bson:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity.
func (d *MongoShopDoc) ToDomain() *domain.Shop {
	return &domain.Shop{
		ShopDomain:          d.ShopDomain,
		Email:               d.Email,
		Name:                d.Name,
		Plan:                d.Plan,
		PrimaryDomain:       d.PrimaryDomain,
		CurrencyCode:        d.CurrencyCode,
		Timezone:            d.Timezone,
		IsCheckoutSupported: d.IsCheckoutSupported,
		AccessToken:         d.AccessToken,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// MongoShopDocFromDomain converts a domain entity to a MongoDB document.
func MongoShopDocFromDomain(shop *domain.Shop) *MongoShopDoc {
	return &MongoShopDoc{
		ShopDomain:          shop.ShopDomain,
		Email:               shop.Email,
		Name:                shop.Name,
		Plan:                shop.Plan,
		PrimaryDomain:       shop.PrimaryDomain,
		CurrencyCode:        shop.CurrencyCode,
		Timezone:            shop.Timezone,
		IsCheckoutSupported: shop.IsCheckoutSupported,
		AccessToken:         shop.AccessToken,
		CreatedAt:           shop.CreatedAt,
		UpdatedAt:           shop.UpdatedAt,
	}
}
