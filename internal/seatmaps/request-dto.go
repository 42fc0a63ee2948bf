package seatmaps

import "github.com/shopspring/decimal"

// SaveSeatMapRequest is the canonical {layout:{objects:[...]}} shape
type SaveSeatMapRequest struct {
	Layout struct {
		Objects []Seat `json:"objects" binding:"required"`
	} `json:"layout" binding:"required"`
	Width  float64 `json:"width" binding:"omitempty,gte=0"`
	Height float64 `json:"height" binding:"omitempty,gte=0"`
}

type GenerateGridRequest struct {
	Rows      int              `json:"rows" binding:"required,min=1,max=26"`
	Cols      int              `json:"cols" binding:"required,min=1,max=100"`
	BasePrice *decimal.Decimal `json:"base_price"`
}
