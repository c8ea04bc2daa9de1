package datastore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"acupuntos/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Outcome sentinels for the conditional writes below. Services wrap these
// with their errorx group before they reach a handler.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRedemptionNotFound = errors.New("redemption not found")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrAlreadyCheckedIn   = errors.New("already checked in")
	ErrInvalidTransition  = errors.New("redemption is not pending")
)

type TransferResult struct {
	FromUserPoints int `json:"fromUserPoints"`
	ToUserPoints   int `json:"toUserPoints"`
}

func GetUserPoints(ctx context.Context, db bun.IDB, userID string) (int, error) {
	var points int
	err := db.NewSelect().Model((*models.User)(nil)).Column("points").Where("id = ?", userID).Scan(ctx, &points)
	if err == sql.ErrNoRows {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	return points, nil
}

// AddUserPoints applies a blind atomic increment. It does not enforce
// non-negativity, callers validate balance first; use debitUserPoints for
// conditional debits.
func AddUserPoints(ctx context.Context, db bun.IDB, userID string, delta int) error {
	res, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("points = points + ?", delta).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}

	return requireRow(res, ErrUserNotFound)
}

// debitUserPoints decrements only when the stored balance covers the amount.
// The balance check and the write happen in one statement, so concurrent
// debits cannot overdraw.
func debitUserPoints(ctx context.Context, db bun.IDB, userID string, amount int) error {
	res, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("points = points - ?", amount).
		Set("total_points_spent = total_points_spent + ?", amount).
		Where("id = ?", userID).
		Where("points >= ?", amount).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		exists, err := CheckUserExists(ctx, db, userID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		return ErrInsufficientPoints
	}

	return nil
}

func creditUserPoints(ctx context.Context, db bun.IDB, userID string, amount int) error {
	res, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("points = points + ?", amount).
		Set("total_points_earned = total_points_earned + ?", amount).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}

	return requireRow(res, ErrUserNotFound)
}

// TransferPoints moves amount from one user to another. The debit, the
// credit and both mirrored transaction rows commit together or not at all.
func TransferPoints(ctx context.Context, db *bun.DB, fromUserID, toUserID string, amount int, description string) (*TransferResult, error) {
	var result TransferResult

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := debitUserPoints(ctx, tx, fromUserID, amount); err != nil {
			return err
		}
		if err := creditUserPoints(ctx, tx, toUserID, amount); err != nil {
			return err
		}

		now := time.Now()
		sent := &models.Transaction{
			ID:          uuid.NewString(),
			Type:        models.TransactionSent,
			Amount:      amount,
			FromUserID:  &fromUserID,
			ToUserID:    &toUserID,
			Description: description,
			CreatedAt:   now,
		}
		received := &models.Transaction{
			ID:          uuid.NewString(),
			Type:        models.TransactionReceived,
			Amount:      amount,
			FromUserID:  &fromUserID,
			ToUserID:    &toUserID,
			Description: description,
			CreatedAt:   now,
		}
		if err := InsertTransaction(ctx, tx, sent); err != nil {
			return err
		}
		if err := InsertTransaction(ctx, tx, received); err != nil {
			return err
		}

		fromPoints, err := GetUserPoints(ctx, tx, fromUserID)
		if err != nil {
			return err
		}
		toPoints, err := GetUserPoints(ctx, tx, toUserID)
		if err != nil {
			return err
		}

		result.FromUserPoints = fromPoints
		result.ToUserPoints = toPoints
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// AssignPoints credits a direct grant together with its reward-type ledger
// entry.
func AssignPoints(ctx context.Context, db *bun.DB, userID string, amount int, description string) (*models.Transaction, error) {
	record := &models.Transaction{
		ID:          uuid.NewString(),
		Type:        models.TransactionReward,
		Amount:      amount,
		ToUserID:    &userID,
		Description: description,
		CreatedAt:   time.Now(),
	}

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := creditUserPoints(ctx, tx, userID, amount); err != nil {
			return err
		}
		return InsertTransaction(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// CheckInUpdate persists a daily check-in: the bonus credit, its ledger
// entry and the streak fields commit as one unit. The guard on
// last_check_in makes a second check-in inside the window a no-op even if
// two requests slip past the service lock.
func CheckInUpdate(ctx context.Context, db *bun.DB, userID string, bonus int, streak int, now time.Time, windowStart time.Time, description string) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("points = points + ?", bonus).
			Set("total_points_earned = total_points_earned + ?", bonus).
			Set("consecutive_days = ?", streak).
			Set("last_check_in = ?", now).
			Where("id = ?", userID).
			Where("last_check_in IS NULL OR last_check_in <= ?", windowStart).
			Exec(ctx)
		if err != nil {
			return err
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			exists, err := CheckUserExists(ctx, tx, userID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrUserNotFound
			}
			return ErrAlreadyCheckedIn
		}

		record := &models.Transaction{
			ID:          uuid.NewString(),
			Type:        models.TransactionReward,
			Amount:      bonus,
			ToUserID:    &userID,
			Description: description,
			CreatedAt:   now,
		}
		return InsertTransaction(ctx, tx, record)
	})
}

func requireRow(res sql.Result, missing error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return missing
	}
	return nil
}
