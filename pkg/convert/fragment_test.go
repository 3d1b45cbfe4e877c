package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinePoisoning(t *testing.T) {
	converted := Fragment{Text: "a", Converted: true}
	unconverted := Fragment{Text: "b", Converted: false}

	tests := []struct {
		name string
		a, b Fragment
		want bool
	}{
		{"both converted", converted, converted, true},
		{"left unconverted", unconverted, converted, false},
		{"right unconverted", converted, unconverted, false},
		{"both unconverted", unconverted, unconverted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Combine(tt.a, tt.b)
			assert.Equal(t, tt.a.Text+tt.b.Text, got.Text)
			assert.Equal(t, tt.want, got.Converted)
		})
	}
}

func TestCombineAll(t *testing.T) {
	t.Run("empty sequence is converted", func(t *testing.T) {
		got := CombineAll(nil)
		assert.Equal(t, "", got.Text)
		assert.True(t, got.Converted)
	})

	t.Run("order preserved", func(t *testing.T) {
		got := CombineAll([]Fragment{
			{Text: "SELECT ", Converted: true},
			{Text: "GETDATE()", Converted: true},
			{Text: " FROM t", Converted: true},
		})
		assert.Equal(t, "SELECT GETDATE() FROM t", got.Text)
		assert.True(t, got.Converted)
	})

	t.Run("one bad fragment poisons all", func(t *testing.T) {
		got := CombineAll([]Fragment{
			{Text: "a", Converted: true},
			{Text: "b", Converted: false},
			{Text: "c", Converted: true},
		})
		assert.False(t, got.Converted)
	})
}
