package bank

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatTransactionSigns(t *testing.T) {
	const userID int64 = 7
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(100)

	give := Transaction{Type: TxTypeAdminGive, FromUserID: SystemAccount, ToUserID: userID, Amount: amount, CreatedAt: at}
	assert.Contains(t, formatTransaction(userID, give), "+100.00")
	assert.Contains(t, formatTransaction(userID, give), "начисление")

	// Списание оператором: деньги уходят от игрока к системе
	take := Transaction{Type: TxTypeAdminTake, FromUserID: userID, ToUserID: SystemAccount, Amount: amount, CreatedAt: at}
	assert.Contains(t, formatTransaction(userID, take), "−100.00")
	assert.Contains(t, formatTransaction(userID, take), "списание")

	in := Transaction{Type: TxTypeTransfer, FromUserID: 8, ToUserID: userID, Amount: amount, CreatedAt: at}
	assert.Contains(t, formatTransaction(userID, in), "+100.00")

	out := Transaction{Type: TxTypeTransfer, FromUserID: userID, ToUserID: 8, Amount: amount, CreatedAt: at}
	assert.Contains(t, formatTransaction(userID, out), "−100.00")
}
