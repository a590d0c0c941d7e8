package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	cmd, args, ok := p.ParseCommand("!продать яйца 10")
	assert.True(t, ok)
	assert.Equal(t, "продать", cmd)
	assert.Equal(t, []string{"яйца", "10"}, args)

	cmd, _, ok = p.ParseCommand("/start")
	assert.True(t, ok)
	assert.Equal(t, "start", cmd)

	cmd, _, ok = p.ParseCommand(".Ферма")
	assert.True(t, ok)
	assert.Equal(t, "ферма", cmd)
}

func TestParseCommandStripsBotMention(t *testing.T) {
	p := NewCommandParser()

	cmd, _, ok := p.ParseCommand("/start@farm_bot")
	assert.True(t, ok)
	assert.Equal(t, "start", cmd)
}

func TestParseCommandRejectsPlainText(t *testing.T) {
	p := NewCommandParser()

	_, _, ok := p.ParseCommand("просто сообщение")
	assert.False(t, ok)

	_, _, ok = p.ParseCommand("   ")
	assert.False(t, ok)

	_, _, ok = p.ParseCommand("!")
	assert.False(t, ok)
}
