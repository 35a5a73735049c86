// Package mysql implements the repositories on MySQL through GORM.
package mysql

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catapi/internal/geo"
	"catapi/internal/model"
	"catapi/internal/repository"
)

type userRecord struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	UserName  string    `gorm:"size:255;not null"`
	Email     string    `gorm:"uniqueIndex;size:255;not null"`
	Role      string    `gorm:"size:16;not null;default:'user'"`
	Password  string    `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRecord) TableName() string { return "users" }

// BeforeCreate sets UUID before creating the record.
func (u *userRecord) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func newUserRecord(u *model.User) *userRecord {
	return &userRecord{
		ID:       u.ID,
		UserName: u.UserName,
		Email:    u.Email,
		Role:     string(u.Role),
		Password: u.PasswordHash,
	}
}

func (u *userRecord) toModel() *model.User {
	return &model.User{
		ID:           u.ID,
		UserName:     u.UserName,
		Email:        u.Email,
		Role:         model.Role(u.Role),
		PasswordHash: u.Password,
	}
}

type catRecord struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	CatName     string    `gorm:"size:255;not null"`
	Weight      float64   `gorm:"not null"`
	Filename    string    `gorm:"size:255;not null"`
	Birthdate   time.Time `gorm:"not null"`
	LocationLng *float64
	LocationLat *float64
	OwnerID     string `gorm:"type:char(36);not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (catRecord) TableName() string { return "cats" }

// BeforeCreate sets UUID before creating the record.
func (c *catRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func newCatRecord(c *model.Cat) *catRecord {
	rec := &catRecord{
		ID:        c.ID,
		CatName:   c.CatName,
		Weight:    c.Weight,
		Filename:  c.Filename,
		Birthdate: c.Birthdate,
		OwnerID:   c.OwnerID,
	}
	if c.Location != nil {
		p := c.Location.Point()
		rec.LocationLng, rec.LocationLat = &p.Lng, &p.Lat
	}
	return rec
}

func (c *catRecord) toModel() *model.Cat {
	cat := &model.Cat{
		ID:        c.ID,
		CatName:   c.CatName,
		Weight:    c.Weight,
		Filename:  c.Filename,
		Birthdate: c.Birthdate,
		OwnerID:   c.OwnerID,
	}
	if c.LocationLng != nil && c.LocationLat != nil {
		cat.Location = geo.NewLocation(geo.Point{Lat: *c.LocationLat, Lng: *c.LocationLng})
	}
	return cat
}

func catColumns(p model.CatPatch) map[string]interface{} {
	cols := map[string]interface{}{}
	if p.CatName != nil {
		cols["cat_name"] = *p.CatName
	}
	if p.Weight != nil {
		cols["weight"] = *p.Weight
	}
	if p.Filename != nil {
		cols["filename"] = *p.Filename
	}
	if p.Birthdate != nil {
		cols["birthdate"] = *p.Birthdate
	}
	if p.Location != nil {
		pt := p.Location.Point()
		cols["location_lng"] = pt.Lng
		cols["location_lat"] = pt.Lat
	}
	if p.OwnerID != nil {
		cols["owner_id"] = *p.OwnerID
	}
	return cols
}

func userColumns(p model.UserPatch) map[string]interface{} {
	cols := map[string]interface{}{}
	if p.UserName != nil {
		cols["user_name"] = *p.UserName
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.PasswordHash != nil {
		cols["password"] = *p.PasswordHash
	}
	return cols
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}

// AutoMigrate creates or updates the tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRecord{}, &catRecord{})
}
