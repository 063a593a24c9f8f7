package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransferIntentValidate_InternalValid(t *testing.T) {
	intent := &TransferIntent{
		Type:          TransferTypeInternal,
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        decimal.RequireFromString("50.00"),
		Description:   "Rent",
	}

	err := intent.Validate()
	assert.NoError(t, err)
}

func TestTransferIntentValidate_InternalSameAccount(t *testing.T) {
	intent := &TransferIntent{
		Type:          TransferTypeInternal,
		FromAccountID: "acc-1",
		ToAccountID:   "acc-1",
		Amount:        decimal.RequireFromString("50.00"),
	}

	err := intent.Validate()
	assert.Error(t, err)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "toAccountId", vErr.Field)
}

func TestTransferIntentValidate_ExternalValid(t *testing.T) {
	intent := &TransferIntent{
		Type:                   TransferTypeExternal,
		FromAccountID:          "acc-1",
		RecipientAccountNumber: "1234567",
		Amount:                 decimal.RequireFromString("10.00"),
	}

	err := intent.Validate()
	assert.NoError(t, err)
}

func TestTransferIntentValidate_ExternalBadRecipient(t *testing.T) {
	cases := []string{"", "1234", "123456789012345678901", "12a45"}

	for _, recipient := range cases {
		intent := &TransferIntent{
			Type:                   TransferTypeExternal,
			FromAccountID:          "acc-1",
			RecipientAccountNumber: recipient,
			Amount:                 decimal.RequireFromString("10.00"),
		}

		err := intent.Validate()
		assert.Error(t, err, "recipient %q should be rejected", recipient)

		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Equal(t, "recipientAccountNumber", vErr.Field)
	}
}

func TestTransferIntentValidate_MixedDestinations(t *testing.T) {
	// Internal intent must not carry a recipient account number
	internal := &TransferIntent{
		Type:                   TransferTypeInternal,
		FromAccountID:          "acc-1",
		ToAccountID:            "acc-2",
		RecipientAccountNumber: "1234567",
		Amount:                 decimal.RequireFromString("5.00"),
	}
	assert.Error(t, internal.Validate())

	// External intent must not carry an internal destination
	external := &TransferIntent{
		Type:                   TransferTypeExternal,
		FromAccountID:          "acc-1",
		ToAccountID:            "acc-2",
		RecipientAccountNumber: "1234567",
		Amount:                 decimal.RequireFromString("5.00"),
	}
	assert.Error(t, external.Validate())
}

func TestTransferIntentValidate_NonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-5"} {
		intent := &TransferIntent{
			Type:          TransferTypeInternal,
			FromAccountID: "acc-1",
			ToAccountID:   "acc-2",
			Amount:        decimal.RequireFromString(amount),
		}

		err := intent.Validate()
		assert.Error(t, err, "amount %q should be rejected", amount)

		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Equal(t, "amount", vErr.Field)
	}
}

func TestValidOtp(t *testing.T) {
	assert.True(t, ValidOtp("482913"))
	assert.True(t, ValidOtp("000000"))

	assert.False(t, ValidOtp(""))
	assert.False(t, ValidOtp("12345"))
	assert.False(t, ValidOtp("1234567"))
	assert.False(t, ValidOtp("12a456"))
}

func TestAccountDisplayName(t *testing.T) {
	named := &Account{Type: AccountTypeChecking, Nickname: "Daily"}
	assert.Equal(t, "Daily", named.DisplayName())

	unnamed := &Account{Type: AccountTypeSavings}
	assert.Equal(t, "savings", unnamed.DisplayName())
}
