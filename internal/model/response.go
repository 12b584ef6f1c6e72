package model

// Response is the envelope every endpoint returns. Data is an array for
// collection-shaped payloads and an object otherwise, never null.
type Response struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}
