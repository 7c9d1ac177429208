package plural

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"", ""},
		{"cat", "cats"},
		{"child", "children"},
		{"Ox", "Oxen"},
		{"OX", "OXEN"},
		{"sheep", "sheep"},
		{"goldfish", "goldfish"},
		{"Japanese", "Japanese"},
		{"moose", "moose"},
		{"person", "people"},
		{"woman", "women"},
		{"mouse", "mice"},
		{"tooth", "teeth"},
		{"goose", "geese"},
		{"foot", "feet"},
		{"axis", "axes"},
		{"matrix", "matrices"},
		{"codex", "codices"},
		{"datum", "data"},
		{"criterion", "criteria"},
		{"alga", "algae"},
		{"church", "churches"},
		{"box", "boxes"},
		{"wolf", "wolves"},
		{"knife", "knives"},
		{"day", "days"},
		{"Mary", "Marys"},
		{"city", "cities"},
		{"zoo", "zoos"},
		{"piano", "pianos"},
		{"potato", "potatoes"},
		{"Box", "Boxes"},
		{"B", "B's"},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, Pluralize(tc.in))
		})
	}
}

func TestDefine(t *testing.T) {
	t.Cleanup(Reset)

	assert.Equal(t, "cactus", Pluralize("cactus"))
	Define("Cactus", "cacti")
	assert.Equal(t, "cacti", Pluralize("cactus"))
	assert.Equal(t, "Cacti", Pluralize("Cactus"))
	assert.Equal(t, "CACTI", Pluralize("CACTUS"))

	Reset()
	assert.NotEqual(t, "cacti", Pluralize("cactus"))
}
