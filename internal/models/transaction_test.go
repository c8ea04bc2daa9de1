package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionIsCredit(t *testing.T) {
	assert.True(t, (&Transaction{Type: TransactionReceived}).IsCredit())
	assert.True(t, (&Transaction{Type: TransactionReward}).IsCredit())
	assert.False(t, (&Transaction{Type: TransactionSent}).IsCredit())
	assert.False(t, (&Transaction{Type: TransactionRedemption}).IsCredit())
}

func TestTransactionFormattedAmount(t *testing.T) {
	credit := &Transaction{Type: TransactionReceived, Amount: 50}
	assert.Equal(t, "+50 pts", credit.FormattedAmount())

	debit := &Transaction{Type: TransactionRedemption, Amount: 200}
	assert.Equal(t, "-200 pts", debit.FormattedAmount())
}
