// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// Language represents a content language of the CMS.
type Language struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`        // ISO 639-1: en, ru, de, fr
	Name       string    `json:"name"`        // English, Russian, German, French
	NativeName string    `json:"native_name"` // English, Русский, Deutsch, Français
	IsDefault  bool      `json:"is_default"`  // only one can be default
	IsActive   bool      `json:"is_active"`   // enabled for content
	Fallbacks  string    `json:"fallbacks"`   // comma-separated fallback codes, may be empty
	Position   int       `json:"position"`    // sort order, also the default fallback order
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FallbackCodes returns the configured fallback chain for the language.
// An empty configuration returns nil; callers then fall back to the
// active-language order.
func (l *Language) FallbackCodes() []string {
	if l.Fallbacks == "" {
		return nil
	}
	var codes []string
	for _, c := range strings.Split(l.Fallbacks, ",") {
		c = strings.TrimSpace(c)
		if c != "" && c != l.Code {
			codes = append(codes, c)
		}
	}
	return codes
}
