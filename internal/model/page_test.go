package model

import (
	"database/sql"
	"testing"
	"time"
)

func TestPageInPublicationWindow(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		start sql.NullTime
		end   sql.NullTime
		want  bool
	}{
		{
			name: "no window",
			want: true,
		},
		{
			name:  "started in the past",
			start: sql.NullTime{Time: past, Valid: true},
			want:  true,
		},
		{
			name:  "starts in the future",
			start: sql.NullTime{Time: future, Valid: true},
			want:  false,
		},
		{
			name:  "starts exactly now",
			start: sql.NullTime{Time: now, Valid: true},
			want:  true,
		},
		{
			name: "ends in the future",
			end:  sql.NullTime{Time: future, Valid: true},
			want: true,
		},
		{
			name: "ended in the past",
			end:  sql.NullTime{Time: past, Valid: true},
			want: false,
		},
		{
			// end date is exclusive
			name: "ends exactly now",
			end:  sql.NullTime{Time: now, Valid: true},
			want: false,
		},
		{
			name:  "open window",
			start: sql.NullTime{Time: past, Valid: true},
			end:   sql.NullTime{Time: future, Valid: true},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Page{PublicationDate: tt.start, PublicationEndDate: tt.end}
			if got := p.InPublicationWindow(now); got != tt.want {
				t.Errorf("InPublicationWindow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPageIsRoot(t *testing.T) {
	root := &Page{}
	if !root.IsRoot() {
		t.Error("IsRoot() = false for page without parent")
	}

	child := &Page{ParentID: sql.NullInt64{Int64: 1, Valid: true}}
	if child.IsRoot() {
		t.Error("IsRoot() = true for page with parent")
	}
}
