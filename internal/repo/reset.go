package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/inventory/internal/models"
)

// ReplaceResetToken drops any token the user already holds and stores the new one.
// The two steps are not atomic: a failure in between leaves the user with no token.
func (r *GormRepo) ReplaceResetToken(ctx context.Context, tok *models.PasswordResetToken) error {
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", tok.UserID).
		Delete(&models.PasswordResetToken{}).Error; err != nil {
		return err
	}
	return translate(r.DB.WithContext(ctx).Create(tok).Error)
}

// ConsumeResetToken deletes the live token with tokenHash and sets the owner's password in one
// transaction. Only the caller whose delete removes the row gets to change the password; every
// other caller holding the same token gets ErrNotFound.
func (r *GormRepo) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tok models.PasswordResetToken
		if err := tx.Where("token_hash = ? AND expires_at > ?", tokenHash, now).
			First(&tok).Error; err != nil {
			return translate(err)
		}

		res := tx.Where("token_hash = ? AND expires_at > ?", tokenHash, now).
			Delete(&models.PasswordResetToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrNotFound
		}

		upd := tx.Model(&models.User{}).
			Where("id = ?", tok.UserID).
			Update("password", passwordHash)
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Where("user_id = ?", tok.UserID).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}

		userID = tok.UserID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}
