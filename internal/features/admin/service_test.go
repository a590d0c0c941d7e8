package admin

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/farm-bot/internal/common"
)

// makeTestHash генерирует хеш Argon2id в том же формате,
// что и scripts/generate_hash.go.
func makeTestHash(t *testing.T, password string) string {
	t.Helper()

	salt := make([]byte, 16)
	_, err := rand.Read(salt)
	require.NoError(t, err)

	const (
		memory      = 64 * 1024
		iterations  = 3
		parallelism = 2
		keyLen      = 32
	)
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

func TestParseFieldMoney(t *testing.T) {
	for _, name := range []string{"деньги", "money", "Деньги", " MONEY "} {
		field, err := ParseField(name)
		require.NoError(t, err, "поле %q", name)
		assert.Equal(t, FieldMoney, field.Kind)
	}
}

func TestParseFieldResource(t *testing.T) {
	field, err := ParseField("яйца")
	require.NoError(t, err)
	assert.Equal(t, FieldResource, field.Kind)
	assert.Equal(t, "eggs", field.Key)

	// Английский ключ — тот же ресурс
	field, err = ParseField("eggs")
	require.NoError(t, err)
	assert.Equal(t, "eggs", field.Key)
}

func TestParseFieldProducer(t *testing.T) {
	field, err := ParseField("chicken")
	require.NoError(t, err)
	assert.Equal(t, FieldProducer, field.Kind)
	assert.Equal(t, "chicken", field.Key)
}

func TestParseFieldUnknown(t *testing.T) {
	for _, name := range []string{"", "dragon", "карма"} {
		_, err := ParseField(name)
		assert.ErrorIs(t, err, common.ErrUnknownField, "поле %q", name)
	}
}

func TestParseOp(t *testing.T) {
	cases := map[string]Op{
		"дать": OpAdd, "add": OpAdd, "+": OpAdd,
		"забрать": OpSub, "sub": OpSub, "-": OpSub,
		"установить": OpSet, "set": OpSet, "=": OpSet,
	}
	for name, want := range cases {
		op, err := ParseOp(name)
		require.NoError(t, err, "операция %q", name)
		assert.Equal(t, want, op)
	}

	_, err := ParseOp("умножить")
	assert.ErrorIs(t, err, common.ErrUnknownField)
}

func TestVerifyArgon2idRejectsGarbage(t *testing.T) {
	assert.False(t, verifyArgon2id("password", ""))
	assert.False(t, verifyArgon2id("password", "not-a-hash"))
	assert.False(t, verifyArgon2id("password", "$argon2id$v=19$bad"))
}

func TestVerifyArgon2idRoundTrip(t *testing.T) {
	hash := makeTestHash(t, "секрет")
	assert.True(t, verifyArgon2id("секрет", hash))
	assert.False(t, verifyArgon2id("не секрет", hash))
}
