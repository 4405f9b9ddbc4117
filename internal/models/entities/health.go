package entities

import "time"

// ComponentStatus reports one dependency's health.
type ComponentStatus struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

type HealthCheckResponse struct {
	Service    string                     `json:"service"`
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
	UpSince    time.Time                  `json:"up_since"`
	Uptime     string                     `json:"uptime"`
}
