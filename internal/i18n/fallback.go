// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n resolves content languages: per-language fallback
// chains and best-match selection for incoming requests.
package i18n

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/pageforge/pageforge/internal/store"
)

// FallbackResolver returns the ordered list of languages to try when
// content is missing in the requested one. The requested language is
// not part of the chain.
type FallbackResolver interface {
	FallbackLanguages(ctx context.Context, lang string) []string
}

// Chains resolves fallback chains from the languages table: a language
// with a configured chain uses it verbatim; otherwise every other
// active language in position order.
type Chains struct {
	queries *store.Queries
}

// NewChains creates a DB-backed fallback resolver.
func NewChains(db *sql.DB) *Chains {
	return &Chains{queries: store.New(db)}
}

// FallbackLanguages implements FallbackResolver.
func (c *Chains) FallbackLanguages(ctx context.Context, lang string) []string {
	configured, err := c.queries.GetLanguageByCode(ctx, lang)
	if err == nil {
		if chain := configured.FallbackCodes(); chain != nil {
			return chain
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		slog.Warn("loading fallback configuration", "language", lang, "error", err)
	}

	active, err := c.queries.ListActiveLanguages(ctx)
	if err != nil {
		slog.Warn("listing active languages for fallback", "language", lang, "error", err)
		return nil
	}
	var chain []string
	for _, l := range active {
		if l.Code != lang {
			chain = append(chain, l.Code)
		}
	}
	return chain
}

// Static is a fixed fallback-chain resolver, mainly for tests.
type Static map[string][]string

// FallbackLanguages implements FallbackResolver.
func (s Static) FallbackLanguages(_ context.Context, lang string) []string {
	return s[lang]
}

// Matcher picks the best content language for a request.
type Matcher struct {
	matcher language.Matcher
	codes   []string
	def     string
}

// NewMatcher builds a Matcher over the given language codes. The first
// code is the default. Invalid codes are skipped.
func NewMatcher(codes []string) *Matcher {
	var tags []language.Tag
	var kept []string
	for _, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			slog.Warn("skipping invalid language code", "code", code, "error", err)
			continue
		}
		tags = append(tags, tag)
		kept = append(kept, code)
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.English}
		kept = []string{"en"}
	}
	return &Matcher{
		matcher: language.NewMatcher(tags),
		codes:   kept,
		def:     kept[0],
	}
}

// Match returns the best supported language for an Accept-Language
// header value, or the default when nothing matches.
func (m *Matcher) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return m.def
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return m.def
	}
	_, index, conf := m.matcher.Match(tags...)
	if conf == language.No {
		return m.def
	}
	return m.codes[index]
}
