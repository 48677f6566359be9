package models

// DeliveryArea is the model for the 'delivery_areas' table. Each area inside
// the Kathmandu Valley can carry its own base delivery charge, which overrides
// the flat default for small orders.
type DeliveryArea struct {
	ID             int64   `json:"id" db:"id"`
	AreaName       string  `json:"areaName" db:"area_name"`
	AreaNameNepali string  `json:"areaNameNepali" db:"area_name_nepali"`
	DeliveryCharge float64 `json:"deliveryCharge" db:"delivery_charge"`
	IsActive       bool    `json:"isActive" db:"is_active"`
}
