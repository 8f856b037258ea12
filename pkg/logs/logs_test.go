package logs

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/entrhq/pagekit/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, s Store, typ Type, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, s.Insert(context.Background(), Entry{
			Type:      typ,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Username:  fmt.Sprintf("user%02d", i),
			IPAddress: "10.0.0.1",
		}))
	}
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("")
	require.NoError(t, err)
	assert.Equal(t, LoginAttempts, typ)

	typ, err = ParseType("contact_submissions")
	require.NoError(t, err)
	assert.Equal(t, ContactSubmissions, typ)

	_, err = ParseType("passwords")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestMemoryStore_NewestFirst(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, LoginAttempts, 3)

	all, err := s.All(context.Background(), LoginAttempts)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "user02", all[0].Username)
	assert.NotEmpty(t, all[0].ID)

	list, err := s.List(context.Background(), LoginAttempts, 2, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "user00", list[0].Username)

	list, err = s.List(context.Background(), LoginAttempts, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, s.Insert(context.Background(), Entry{Type: "bogus"}), ErrUnknownType)
}

func TestService_Page(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, LoginAttempts, 60)
	svc := NewService(s, pagination.DefaultOptions())

	tests := []struct {
		name        string
		page        int
		perPage     int
		wantPage    int
		wantPerPage int
		wantLen     int
		wantFirst   string
	}{
		{"first page", 1, 25, 1, 25, 25, "user59"},
		{"last partial page", 3, 25, 3, 25, 10, "user09"},
		{"per page outside whitelist", 1, 10, 1, 25, 25, "user59"},
		{"page past end clamps", 9, 50, 2, 50, 10, "user09"},
		{"non-positive page", 0, 100, 1, 100, 60, "user59"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.Page(context.Background(), LoginAttempts, tt.page, tt.perPage)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, p.Pagination.Page)
			assert.Equal(t, tt.wantPerPage, p.Pagination.PerPage)
			assert.Equal(t, 60, p.Pagination.Total)
			require.Len(t, p.Entries, tt.wantLen)
			assert.Equal(t, tt.wantFirst, p.Entries[0].Username)
			assert.NoError(t, p.Pagination.Validate())
		})
	}

	empty, err := svc.Page(context.Background(), ContactSubmissions, 1, 25)
	require.NoError(t, err)
	assert.Empty(t, empty.Entries)
	assert.Equal(t, 0, empty.Pagination.Pages)

	_, err = svc.Page(context.Background(), "bogus", 1, 25)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestService_Export(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, Entry{Type: LoginAttempts, CreatedAt: base, IPAddress: "10.0.0.2", Success: true, Email: "a@example.com"}))
	require.NoError(t, s.Insert(ctx, Entry{Type: LoginAttempts, CreatedAt: base.Add(time.Hour), IPAddress: "10.0.0.3"}))
	require.NoError(t, s.Insert(ctx, Entry{Type: EmailVerifications, CreatedAt: base, Email: "b@example.com", ExpiresAt: base.Add(time.Hour)}))

	svc := NewService(s, pagination.DefaultOptions())
	svc.now = func() time.Time { return base.Add(2 * time.Hour) }

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, LoginAttempts, &buf))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Username/Email", "IP Address", "Success", "Attempted At"},
		{"Unknown", "10.0.0.3", "Failed", "2024-03-01 13:00:00"},
		{"a@example.com", "10.0.0.2", "Success", "2024-03-01 12:00:00"},
	}, rows)

	buf.Reset()
	require.NoError(t, svc.Export(ctx, EmailVerifications, &buf))
	rows, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"b@example.com", "Unknown", "No", "Yes", "2024-03-01 12:00:00"}, rows[1])

	assert.ErrorIs(t, svc.Export(ctx, "bogus", &buf), ErrUnknownType)
	assert.Equal(t, "contact_submissions_export.csv", ExportFilename(ContactSubmissions))
}

func TestColumnsMatchRows(t *testing.T) {
	for _, typ := range Types {
		e := Entry{Type: typ, CreatedAt: base}
		assert.Len(t, e.Row(base), len(Columns(typ)), typ)
	}
}
