package model

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// RoomType is the closed set of room categories.
type RoomType string

const (
	RoomTypeSingle RoomType = "SINGLE"
	RoomTypeDouble RoomType = "DOUBLE"
	RoomTypeTwin   RoomType = "TWIN"
	RoomTypeSuite  RoomType = "SUITE"
	RoomTypeFamily RoomType = "FAMILY"
)

// RoomTypes lists every valid RoomType.
var RoomTypes = []RoomType{RoomTypeSingle, RoomTypeDouble, RoomTypeTwin, RoomTypeSuite, RoomTypeFamily}

// Valid reports whether t is one of RoomTypes.
func (t RoomType) Valid() bool {
	for _, v := range RoomTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Room represents a bookable unit of hotel inventory.
type Room struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	RoomNumber    string          `json:"roomNumber" gorm:"uniqueIndex;size:50;not null"`
	RoomType      RoomType        `json:"roomType" gorm:"type:varchar(20);not null"`
	Description   *string         `json:"description" gorm:"type:text"`
	PricePerNight decimal.Decimal `json:"pricePerNight" gorm:"type:decimal(10,2);not null"`
}

// RoomPatch holds optional room fields for a partial update. Nil means unchanged.
type RoomPatch struct {
	RoomNumber    *string
	RoomType      *RoomType
	Description   *string
	PricePerNight *decimal.Decimal
}

// ApplyTo merges the non-nil fields into r.
func (p RoomPatch) ApplyTo(r *Room) {
	if p.RoomNumber != nil {
		r.RoomNumber = *p.RoomNumber
	}
	if p.RoomType != nil {
		r.RoomType = *p.RoomType
	}
	if p.Description != nil {
		r.Description = p.Description
	}
	if p.PricePerNight != nil {
		r.PricePerNight = *p.PricePerNight
	}
}
