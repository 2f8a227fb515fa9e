// Package domain defines the core business entities for the Cuide-se
// management backend. These models are independent of external services
// and represent the canonical data structures used throughout the API.
package domain

import "time"

// ============================================================
// Clients
// ============================================================

// Client represents a salon/clinic client record.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	BirthDate string    `json:"birth_date,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"` // active | inactive
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientInput holds the editable fields of a client. Updates are
// full-field overwrites; the id and created_at are never touched.
type ClientInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Status    string `json:"status,omitempty"`
}

// ============================================================
// Professionals
// ============================================================

// Professional represents a service provider (hairdresser, therapist...).
type Professional struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Specialty      string    `json:"specialty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	CommissionRate float64   `json:"commission_rate"`
	Status         string    `json:"status"` // active | inactive
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProfessionalInput holds the editable fields of a professional.
type ProfessionalInput struct {
	Name           string  `json:"name"`
	Specialty      string  `json:"specialty"`
	Email          string  `json:"email,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	CommissionRate float64 `json:"commission_rate"`
	Status         string  `json:"status,omitempty"`
}

// ============================================================
// Services & Packages (catalog)
// ============================================================

// Service is a bookable/billable service offered by the salon.
type Service struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ServiceInput holds the editable fields of a service.
type ServiceInput struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Active          *bool   `json:"active,omitempty"`
}

// ServicePackage bundles sessions of one or more services at a price.
type ServicePackage struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ServiceIDs   []string  `json:"service_ids"`
	SessionCount int       `json:"session_count"`
	Price        float64   `json:"price"`
	ValidityDays int       `json:"validity_days"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ServicePackageInput holds the editable fields of a package.
type ServicePackageInput struct {
	Name         string   `json:"name"`
	ServiceIDs   []string `json:"service_ids"`
	SessionCount int      `json:"session_count"`
	Price        float64  `json:"price"`
	ValidityDays int      `json:"validity_days"`
	Active       *bool    `json:"active,omitempty"`
}
