package dto

import "time"

type RegisterShopRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	WardCode string `json:"ward_code"`
}

type ShopResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	WardCode  string    `json:"ward_code"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	CreatedAt time.Time `json:"created_at"`
}
