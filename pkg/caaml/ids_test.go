package caaml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDRegistryNext(t *testing.T) {
	ids := idRegistry{}
	tests := []struct {
		id, kind string
		want     string
	}{
		{"pit", "snowprofile", "pit"},
		{"pit", "snowprofile", "pit1"},
		{"", "pit", "pit2"},
		{"", "densityProfile", "densityProfile"},
		{"", "densityProfile", "densityProfile1"},
		{"", "", "id"},
		{"", "", "id1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ids.next(tt.id, tt.kind), "next(%q, %q)", tt.id, tt.kind)
	}
}
