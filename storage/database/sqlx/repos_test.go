package sqlxrepos

import (
	"strings"
	"testing"

	"github.com/trezcool/malezi/core"
)

func Test_orderBy(t *testing.T) {
	sortable := sortableFields("username", "created_at")

	tests := []struct {
		name     string
		ordering []core.DBOrdering
		want     string
	}{
		{name: "empty falls back to default", want: " ORDER BY created_at DESC"},
		{
			name:     "sortable field",
			ordering: []core.DBOrdering{{Field: "username", Ascending: true}},
			want:     " ORDER BY username ASC",
		},
		{
			name: "multiple terms",
			ordering: []core.DBOrdering{
				{Field: "username", Ascending: true},
				{Field: "created_at"},
			},
			want: " ORDER BY username ASC, created_at DESC",
		},
		{
			name:     "unknown field dropped",
			ordering: []core.DBOrdering{{Field: "password_hash"}},
			want:     " ORDER BY created_at DESC",
		},
		{
			name: "subselect never reaches the clause",
			ordering: []core.DBOrdering{
				{Field: `(SELECT password_hash FROM "user" LIMIT 1)`, Ascending: true},
			},
			want: " ORDER BY created_at DESC",
		},
		{
			name: "unknown fields dropped, sortable kept",
			ordering: []core.DBOrdering{
				{Field: "1; DROP TABLE notifications"},
				{Field: "username"},
			},
			want: " ORDER BY username DESC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orderBy(tt.ordering, sortable, "created_at DESC")
			if got != tt.want {
				t.Errorf("orderBy() = %q, want %q", got, tt.want)
			}
			if strings.Contains(got, "password_hash") || strings.Contains(got, "DROP") {
				t.Errorf("orderBy() leaked a non-sortable field into the clause: %q", got)
			}
		})
	}

	t.Run("no default and nothing sortable", func(t *testing.T) {
		got := orderBy([]core.DBOrdering{{Field: "lol"}}, sortable, "")
		if got != "" {
			t.Errorf("orderBy() = %q, want empty", got)
		}
	})
}
