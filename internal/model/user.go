// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// User roles
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User represents an account that can edit content.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasAdvancedSettingsPermission reports whether the user may edit
// advanced title settings (URL overwrite and redirect). Only admins
// can.
func (u *User) HasAdvancedSettingsPermission() bool {
	return u.IsAdmin()
}
