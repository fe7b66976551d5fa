package entity

import (
	"time"

	"github.com/ahmedy940/dropx-core/internal/domain"
)

// MongoSessionDoc represents a merchant session in MongoDB.
type MongoSessionDoc struct {
	ShopDomain  string     `bson:"shopDomain"`
	AccessToken string     `bson:"accessToken"`
	Email       string     `bson:"email"`
	Scope       string     `bson:"scope"`
	IsOnline    bool       `bson:"isOnline"`
	ExpiresAt   *time.Time `bson:"expiresAt"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity.
func (d *MongoSessionDoc) ToDomain() *domain.Session {
	return &domain.Session{
		ShopDomain:  d.ShopDomain,
		AccessToken: d.AccessToken,
		Email:       d.Email,
		Scope:       d.Scope,
		IsOnline:    d.IsOnline,
		ExpiresAt:   d.ExpiresAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoSessionDocFromDomain converts a domain entity to a MongoDB document.
func MongoSessionDocFromDomain(session *domain.Session) *MongoSessionDoc {
	return &MongoSessionDoc{
		ShopDomain:  session.ShopDomain,
		AccessToken: session.AccessToken,
		Email:       session.Email,
		Scope:       session.Scope,
		IsOnline:    session.IsOnline,
		ExpiresAt:   session.ExpiresAt,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
}
