package farm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSellAllRequested(t *testing.T) {
	for _, arg := range []string{"всё", "все", "all", "ALL", "Всё"} {
		assert.True(t, sellAllRequested(arg), "arg=%q", arg)
	}
	for _, arg := range []string{"10", "0.5", "", "весь"} {
		assert.False(t, sellAllRequested(arg), "arg=%q", arg)
	}
}
