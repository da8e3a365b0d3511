package services

import (
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/pathsixdesigns/pathsix-crm/internal/models"
)

const (
	accountNumberPrefix = "ACC"
	accountNumberWidth  = 6
	accountCreateTries  = 3
)

// errAccountNumberConflict marks a generated-number collision so the caller
// can retry the whole transaction (a failed statement poisons the tx on
// postgres, so the retry has to happen one level up).
var errAccountNumberConflict = errors.New("account number conflict")

// nextAccountNumber derives ACC + zero-padded sequence from the maximum
// numeric suffix across existing account numbers. The suffix is parsed in Go
// because hand-entered numbers like "ACCOUNT1" match the prefix filter and a
// SQL CAST over them errors on postgres. Runs inside the insert's
// transaction; the unique index plus transaction retry closes the
// read-then-write race under concurrent creates.
func nextAccountNumber(tx *gorm.DB) (string, error) {
	var numbers []string
	err := tx.Model(&models.Account{}).
		Where("account_number LIKE ?", accountNumberPrefix+"%").
		Pluck("account_number", &numbers).Error
	if err != nil {
		return "", fmt.Errorf("list account numbers: %w", err)
	}
	var maxSuffix int64
	for _, number := range numbers {
		suffix, err := strconv.ParseInt(number[len(accountNumberPrefix):], 10, 64)
		if err != nil || suffix < 0 {
			continue
		}
		if suffix > maxSuffix {
			maxSuffix = suffix
		}
	}
	return fmt.Sprintf("%s%0*d", accountNumberPrefix, accountNumberWidth, maxSuffix+1), nil
}

// createAccount inserts the account, generating a number when none is given.
// A collision on a generated number surfaces as errAccountNumberConflict.
func createAccount(tx *gorm.DB, clientID uint, accountNumber, accountName string) (*models.Account, error) {
	generated := accountNumber == ""
	if generated {
		var err error
		accountNumber, err = nextAccountNumber(tx)
		if err != nil {
			return nil, err
		}
	}
	acc := models.Account{AccountNumber: accountNumber, AccountName: accountName, ClientID: clientID}
	if err := tx.Create(&acc).Error; err != nil {
		if generated && errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errAccountNumberConflict
		}
		return nil, err
	}
	return &acc, nil
}

// retryAccountConflict runs fn, retrying a bounded number of times when the
// failure was a generated account-number collision.
func retryAccountConflict(fn func() error) error {
	var err error
	for attempt := 0; attempt < accountCreateTries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, errAccountNumberConflict) {
			return err
		}
	}
	return fmt.Errorf("assign account number after %d attempts: %w", accountCreateTries, err)
}
