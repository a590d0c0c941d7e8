package players

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	p := &Player{Username: "farmer", FirstName: "Иван", LastName: "Петров"}
	assert.Equal(t, "@farmer", p.DisplayName())

	p = &Player{FirstName: "Иван", LastName: "Петров"}
	assert.Equal(t, "Иван Петров", p.DisplayName())

	p = &Player{FirstName: "Иван"}
	assert.Equal(t, "Иван", p.DisplayName())
}
