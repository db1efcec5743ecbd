package models

import "time"

// Tenant, Property and Room are external collaborators of the payment
// subsystem. Their CRUD lives elsewhere; the payment code only reads the
// columns surfaced in API responses.

type Tenant struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	FirstName string    `gorm:"column:first_name;not null"`
	LastName  string    `gorm:"column:last_name;not null"`
	Email     string    `gorm:"column:email;not null"`
	MobileNo  string    `gorm:"column:mobile_no"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Tenant) TableName() string { return "tenants" }

type Property struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyName    string    `gorm:"column:property_name;not null"`
	PropertyAddress string    `gorm:"column:property_address"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Property) TableName() string { return "properties" }

type Room struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID int64     `gorm:"column:property_id;not null;index"`
	RoomNo     string    `gorm:"column:room_no;not null"`
	Rent       int64     `gorm:"column:rent;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Room) TableName() string { return "rooms" }
