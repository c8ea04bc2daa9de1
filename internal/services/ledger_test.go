package services

import (
	"fmt"
	"testing"

	"acupuntos/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFirstTransactions(t *testing.T) {
	transactions := make([]*models.Transaction, 5)
	for i := range transactions {
		transactions[i] = &models.Transaction{ID: fmt.Sprintf("tx-%d", i)}
	}

	page := firstTransactions(transactions, 3)
	assert.Len(t, page, 3)
	assert.Equal(t, "tx-0", page[0].ID)

	assert.Len(t, firstTransactions(transactions, 5), 5)
	assert.Len(t, firstTransactions(transactions, 50), 5)
	assert.Len(t, firstTransactions(transactions, 0), 5)
	assert.Empty(t, firstTransactions(nil, 10))
}

func TestTransactionsCacheKeyIgnoresLimit(t *testing.T) {
	// one cache entry per user no matter the page size, so a write only
	// needs a single delete to invalidate every cached page
	assert.Equal(t, "user:ana:transactions", DBKeyUserTransactions("ana"))
}
