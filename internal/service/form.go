// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

// Title form field names.
const (
	FieldSlug            = "slug"
	FieldTitle           = "title"
	FieldMetaDescription = "meta_description"
	FieldPageTitle       = "page_title"
	FieldMenuTitle       = "menu_title"
	FieldOverwriteURL    = "overwrite_url"
	FieldRedirect        = "redirect"
)

// baseTitleFields are copied from the form by everyone allowed to edit
// a title.
var baseTitleFields = []string{
	FieldSlug,
	FieldTitle,
	FieldMetaDescription,
	FieldPageTitle,
	FieldMenuTitle,
}

// advancedTitleFields require the advanced-settings permission, as
// does the URL overwrite.
var advancedTitleFields = []string{
	FieldRedirect,
}

// TitleForm carries cleaned input for SetOrCreate together with the
// set of fields the submitting form declared. Updates only touch
// declared fields, so a partial form cannot clobber the rest of the
// row.
type TitleForm struct {
	values   map[string]string
	declared map[string]bool
}

// NewTitleForm creates an empty form.
func NewTitleForm() *TitleForm {
	return &TitleForm{
		values:   make(map[string]string),
		declared: make(map[string]bool),
	}
}

// Set declares a field and records its cleaned value.
func (f *TitleForm) Set(field, value string) *TitleForm {
	f.values[field] = value
	f.declared[field] = true
	return f
}

// Declared reports whether the submitting form declared the field.
func (f *TitleForm) Declared(field string) bool {
	return f.declared[field]
}

// Get returns the cleaned value for a field. Undeclared fields return
// the empty string.
func (f *TitleForm) Get(field string) string {
	return f.values[field]
}
