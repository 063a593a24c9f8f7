package intent

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simaogato/bankflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccounts() []*domain.Account {
	return []*domain.Account{
		{ID: "acc-1", AccountNumber: "10001", Type: domain.AccountTypeChecking, Balance: decimal.RequireFromString("100.00")},
		{ID: "acc-2", AccountNumber: "10002", Type: domain.AccountTypeSavings, Balance: decimal.RequireFromString("250.00")},
	}
}

func TestBuild_InternalValid(t *testing.T) {
	input := DetailsInput{
		Type:          domain.TransferTypeInternal,
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        "50.00",
		Description:   "Rent",
	}

	built, err := Build(input, testAccounts())
	require.NoError(t, err)
	assert.Equal(t, domain.TransferTypeInternal, built.Type)
	assert.Equal(t, "acc-1", built.FromAccountID)
	assert.Equal(t, "acc-2", built.ToAccountID)
	assert.Empty(t, built.RecipientAccountNumber)
	assert.True(t, built.Amount.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, "Rent", built.Description)
}

func TestBuild_ExternalStripsNonDigits(t *testing.T) {
	input := DetailsInput{
		Type:                   domain.TransferTypeExternal,
		FromAccountID:          "acc-1",
		RecipientAccountNumber: " 12-345 67 ",
		Amount:                 "10.00",
	}

	built, err := Build(input, testAccounts())
	require.NoError(t, err)
	assert.Equal(t, "1234567", built.RecipientAccountNumber)
}

func TestBuild_DefaultDescription(t *testing.T) {
	internal := DetailsInput{
		Type:          domain.TransferTypeInternal,
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        "5.00",
	}
	built, err := Build(internal, testAccounts())
	require.NoError(t, err)
	assert.Equal(t, "Transfer between own accounts", built.Description)

	external := DetailsInput{
		Type:                   domain.TransferTypeExternal,
		FromAccountID:          "acc-1",
		RecipientAccountNumber: "1234567",
		Amount:                 "5.00",
	}
	built, err = Build(external, testAccounts())
	require.NoError(t, err)
	assert.Equal(t, "Transfer to account 1234567", built.Description)
}

func TestBuild_UnknownSourceAccount(t *testing.T) {
	input := DetailsInput{
		Type:          domain.TransferTypeInternal,
		FromAccountID: "acc-9",
		ToAccountID:   "acc-2",
		Amount:        "5.00",
	}

	built, err := Build(input, testAccounts())
	assert.Nil(t, built)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "fromAccountId", vErr.Field)
}

func TestBuild_InternalNeedsTwoAccounts(t *testing.T) {
	single := testAccounts()[:1]
	input := DetailsInput{
		Type:          domain.TransferTypeInternal,
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        "5.00",
	}

	built, err := Build(input, single)
	assert.Nil(t, built)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "toAccountId", vErr.Field)
}

func TestBuild_InternalSameAccount(t *testing.T) {
	input := DetailsInput{
		Type:          domain.TransferTypeInternal,
		FromAccountID: "acc-1",
		ToAccountID:   "acc-1",
		Amount:        "5.00",
	}

	built, err := Build(input, testAccounts())
	assert.Nil(t, built)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "toAccountId", vErr.Field)
}

func TestBuild_BadAmounts(t *testing.T) {
	for _, amount := range []string{"", "abc", "-5", "0"} {
		input := DetailsInput{
			Type:          domain.TransferTypeInternal,
			FromAccountID: "acc-1",
			ToAccountID:   "acc-2",
			Amount:        amount,
		}

		built, err := Build(input, testAccounts())
		assert.Nil(t, built, "amount %q should be rejected", amount)

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr, "amount %q should yield a validation error", amount)
		assert.Equal(t, "amount", vErr.Field)
	}
}

func TestReselectFrom(t *testing.T) {
	accounts := testAccounts()

	// Still present: keep it
	assert.Equal(t, "acc-2", ReselectFrom("acc-2", accounts))

	// Gone: fall back to first available
	assert.Equal(t, "acc-1", ReselectFrom("acc-9", accounts))

	// No accounts at all
	assert.Equal(t, "", ReselectFrom("acc-1", nil))
}

func TestReselectTo(t *testing.T) {
	accounts := testAccounts()

	// Still eligible: keep it
	assert.Equal(t, "acc-2", ReselectTo("acc-1", "acc-2", accounts))

	// Equal to source: first eligible alternative
	assert.Equal(t, "acc-2", ReselectTo("acc-1", "acc-1", accounts))

	// Invalid selection: first eligible alternative
	assert.Equal(t, "acc-1", ReselectTo("acc-2", "acc-9", accounts))

	// No alternative exists
	assert.Equal(t, "", ReselectTo("acc-1", "", accounts[:1]))
}
