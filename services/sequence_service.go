package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/printvala/printvala-api/models"
)

// NextNumber returns the next business number for the given prefix in the
// format <prefix><YYMMDD><3-digit sequence>, e.g. PV260829001. The per-day
// counter is advanced with an atomic conditional update; two concurrent
// placements never receive the same number even across server instances.
func NextNumber(db *gorm.DB, prefix string, now time.Time) (string, error) {
	day := now.Format("060102")
	key := prefix + day

	var counter int
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.NumberSequence{}).
			Where("key = ?", key).
			UpdateColumn("counter", gorm.Expr("counter + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// First number of the day. A concurrent creator loses on the
			// primary key; fall back to the increment path.
			seq := models.NumberSequence{Key: key, Counter: 1}
			if err := tx.Create(&seq).Error; err == nil {
				counter = 1
				return nil
			}
			res = tx.Model(&models.NumberSequence{}).
				Where("key = ?", key).
				UpdateColumn("counter", gorm.Expr("counter + 1"))
			if res.Error != nil {
				return res.Error
			}
		}
		var seq models.NumberSequence
		if err := tx.First(&seq, "key = ?", key).Error; err != nil {
			return err
		}
		counter = seq.Counter
		return nil
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%s%03d", prefix, day, counter), nil
}
