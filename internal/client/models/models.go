// Package models defines the client-side data shapes persisted in the local
// store and exchanged with the MedScan API.
package models

import (
	"fmt"
	"strings"
)

// UserProfile is the signed-in account. It never carries a password.
type UserProfile struct {
	ID           string `json:"id,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// FullName joins first and last name.
func (u UserProfile) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Session is the persisted login. At most one exists per installation.
type Session struct {
	Token string      `json:"token,omitempty"`
	User  UserProfile `json:"user"`
}

// ResetChallenge is a verified password-reset code waiting to be used.
type ResetChallenge struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// MedicineRecord is the read-only information returned by a lookup or scan.
type MedicineRecord struct {
	Name                 string `json:"name"`
	Company              string `json:"company,omitempty"`
	Formula              string `json:"formula,omitempty"`
	Instructions         string `json:"instructions,omitempty"`
	SideEffects          string `json:"sideEffects,omitempty"`
	ManufacturingDetails string `json:"manufacturingDetails,omitempty"`
}

// Summary is the one-line description shown in the history list.
func (m MedicineRecord) Summary() string {
	return fmt.Sprintf("Company: %s | Formula: %s", m.Company, m.Formula)
}

// HistoryEntry is one saved medicine. Entries are unique by Name.
type HistoryEntry struct {
	Name    string          `json:"name"`
	Details string          `json:"details,omitempty"`
	Record  *MedicineRecord `json:"record,omitempty"`
}

// NewHistoryEntry snapshots rec for the history list.
func NewHistoryEntry(rec MedicineRecord) HistoryEntry {
	r := rec
	return HistoryEntry{Name: rec.Name, Details: rec.Summary(), Record: &r}
}

// SignUpFields is the sign-up form.
type SignUpFields struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Route is the first screen a front end should show.
type Route string

const (
	RouteOnboarding Route = "onboarding"
	RouteMain       Route = "main"
)

// State is the session snapshot handed to front ends.
type State struct {
	SignedIn bool
	User     *UserProfile
	Route    Route
}
