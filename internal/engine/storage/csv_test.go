package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPlacesCSV(t *testing.T) {
	in := "id,name,lat,lng,country,is_domestic,created_at\n" +
		"a,Cafe,37.5,127.0,대한민국,true,2024-05-01T10:00:00Z\n" +
		"b,Bar,35.6,139.7,일본,,2024-05-02\n" +
		"c,\"Quoted, Name\",1,2,,,\n"

	places, err := ReadPlacesCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, places, 3)

	assert.Equal(t, "Cafe", places[0].Name)
	require.NotNil(t, places[0].IsDomestic)
	assert.True(t, *places[0].IsDomestic)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), places[0].CreatedAt)

	assert.Nil(t, places[1].IsDomestic)
	assert.Equal(t, "일본", places[1].Country)
	assert.Equal(t, 2024, places[1].CreatedAt.Year())

	assert.Equal(t, "Quoted, Name", places[2].Name)
	assert.Empty(t, places[2].Country)
	assert.True(t, places[2].CreatedAt.IsZero())
}

func TestReadPlacesCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing column", "id,name,lat\nx,y,1\n", `missing column "lng"`},
		{"bad lat", "id,name,lat,lng\nx,y,north,1\n", "line 2: lat"},
		{"bad bool", "id,name,lat,lng,is_domestic\nx,y,1,2,maybe\n", "line 2: is_domestic"},
		{"empty id", "id,name,lat,lng\n,y,1,2\n", "line 2: empty id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPlacesCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadPostsCSV(t *testing.T) {
	in := "place_id,id,likes\np1,x,12\np1,y,\n"
	posts, err := ReadPostsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p1", posts[0].PlaceID)
	assert.Equal(t, 12, posts[0].Likes)
	assert.Zero(t, posts[1].Likes)
}

func TestReadCSVEmpty(t *testing.T) {
	places, err := ReadPlacesCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, places)
}
