package store

import (
	"context"

	"asafe-api/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeleteUserData removes the user's record together with their posts and
// directed notifications, returning counts captured before deletion.
func (s *Store) DeleteUserData(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	deleted := map[string]int64{}

	err := s.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)

		count := func(label string, query *gorm.DB) error {
			var total int64
			if err := query.Count(&total).Error; err != nil {
				return err
			}
			deleted[label] = total
			return nil
		}

		if err := count("users", db.Model(&domain.User{}).Where("id = ?", userID)); err != nil {
			return err
		}
		if deleted["users"] == 0 {
			return ErrRecordNotFound
		}
		if err := count("posts", db.Model(&domain.Post{}).Where("author_id = ?", userID)); err != nil {
			return err
		}
		if err := count("notifications", db.Model(&domain.Notification{}).Where("user_id = ?", userID)); err != nil {
			return err
		}

		if err := db.Where("author_id = ?", userID).Delete(&domain.Post{}).Error; err != nil {
			return err
		}
		if err := db.Where("user_id = ?", userID).Delete(&domain.Notification{}).Error; err != nil {
			return err
		}
		return db.Where("id = ?", userID).Delete(&domain.User{}).Error
	})

	return deleted, err
}
