package models

import "time"

// Position - одно дискретное показание позиции с собственной точностью.
// Используется поэтапной проверкой выхода для классификации
// "уверенно внутри / уверенно снаружи / неубедительно".
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}
