package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rendis/pinmap/internal/model"
)

func TestIsDomesticDecisionTable(t *testing.T) {
	tests := []struct {
		name    string
		country string
		flag    *bool
		want    bool
	}{
		{"no country, flag unset", "", nil, true},
		{"no country, flag true", "", model.Bool(true), true},
		{"no country, flag false", "", model.Bool(false), false},
		{"korea, flag unset", "한국", nil, true},
		{"korea, flag true", "한국", model.Bool(true), true},
		{"korea, flag false", "한국", model.Bool(false), false},
		{"japan, flag unset", "일본", nil, false},
		{"japan, flag true", "일본", model.Bool(true), false},
		{"japan, flag false", "일본", model.Bool(false), false},
		{"blank country counts as absent", "   ", nil, true},
		{"padded korea", " 한국 ", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.Place{ID: "p", Country: tt.country, IsDomestic: tt.flag}
			assert.Equal(t, tt.want, IsDomestic(p))
		})
	}
}

func TestInRegion(t *testing.T) {
	seoul := model.Place{ID: "1"}
	tokyo := model.Place{ID: "2", Country: "일본"}
	paris := model.Place{ID: "3", Country: "프랑스", IsDomestic: model.Bool(false)}

	assert.True(t, InRegion(seoul, model.RegionDomestic, ""))
	assert.False(t, InRegion(tokyo, model.RegionDomestic, ""))

	assert.False(t, InRegion(seoul, model.RegionInternational, ""))
	assert.True(t, InRegion(tokyo, model.RegionInternational, ""))
	assert.True(t, InRegion(paris, model.RegionInternational, ""))

	assert.True(t, InRegion(tokyo, model.RegionInternational, "일본"))
	assert.False(t, InRegion(paris, model.RegionInternational, "일본"))
	// country filter never pulls a domestic place into the international view
	assert.False(t, InRegion(seoul, model.RegionInternational, "한국"))
}
