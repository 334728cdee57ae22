package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/snowprofile/pkg/caaml"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fixture(t *testing.T, name string) *snowprofile.SnowProfile {
	t.Helper()
	sp, err := caaml.Read(filepath.Join("../../pkg/caaml/testdata", name))
	require.NoError(t, err)
	return sp
}

func observation(name string, at time.Time) *snowprofile.SnowProfile {
	sp := snowprofile.New()
	sp.ID = name
	sp.Location.Name = name
	sp.Time.RecordTime = snowprofile.Timestamp(at)
	return sp
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	sp := fixture(t, "profile_v606.xml")

	rec, err := s.Save(ctx, sp, "profile_v606.xml")
	require.NoError(t, err)
	assert.Len(t, rec.ID, 36)
	assert.Equal(t, "col-de-porte-2024", rec.ProfileID)
	assert.Equal(t, 3, rec.Layers)
	require.NotNil(t, rec.ProfileDepth)
	assert.InDelta(t, 1.83, *rec.ProfileDepth, 1e-9)

	got, stored, err := s.Load(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)
	assert.Equal(t, "profile_v606.xml", stored.Source)

	want, err := snowprofile.ToJSON(sp)
	require.NoError(t, err)
	have, err := snowprofile.ToJSON(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(have))
}

func TestSaveUsesPeriodStart(t *testing.T) {
	s := openStore(t)
	rec, err := s.Save(context.Background(), fixture(t, "profile_v605.xml"), "")
	require.NoError(t, err)
	require.NotNil(t, rec.RecordTime)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), *rec.RecordTime)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	day := func(d int) time.Time { return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC) }
	for i, name := range []string{"Col de Porte", "Weissfluhjoch", "Col du Lac Blanc"} {
		_, err := s.Save(ctx, observation(name, day(i+1)), "")
		require.NoError(t, err)
	}

	names := func(recs []Record) []string {
		var out []string
		for _, r := range recs {
			out = append(out, r.LocationName)
			assert.Empty(t, r.Document, "listings do not load documents")
		}
		return out
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all, newest first", Filter{}, []string{"Col du Lac Blanc", "Weissfluhjoch", "Col de Porte"}},
		{"location substring", Filter{Location: "col d"}, []string{"Col du Lac Blanc", "Col de Porte"}},
		{"from", Filter{From: timePtr(day(2))}, []string{"Col du Lac Blanc", "Weissfluhjoch"}},
		{"to", Filter{To: timePtr(day(1))}, []string{"Col de Porte"}},
		{"limit", Filter{Limit: 1}, []string{"Col du Lac Blanc"}},
		{"no match", Filter{Location: "zermatt"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := s.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(recs))
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestDeleteAndNotFound(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	rec, err := s.Save(ctx, observation("pit", time.Now()), "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, rec.ID))
	assert.True(t, errors.Is(s.Delete(ctx, rec.ID), ErrNotFound))

	_, err = s.Get(ctx, rec.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, _, err = s.Load(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOpenErrors(t *testing.T) {
	_, err := Open("mysql", "x")
	assert.Error(t, err)

	s := openStore(t)
	_, err = s.Save(context.Background(), nil, "")
	assert.Error(t, err)
}
