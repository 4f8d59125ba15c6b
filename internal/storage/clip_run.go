package storage

import (
	"gorm.io/gorm"

	"clipz-ai/internal/types"
)

// SaveRun inserts or replaces a run and its clips, keyed by token.
func SaveRun(run *types.ClipRun) error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	return DB.Transaction(func(tx *gorm.DB) error {
		var existing types.ClipRun
		found := tx.Where("token = ?", run.Token).Limit(1).Find(&existing)
		if found.Error != nil {
			return found.Error
		}
		if found.RowsAffected > 0 {
			run.Id = existing.Id
			run.CreateTime = existing.CreateTime
			if err := tx.Where("run_token = ?", run.Token).Delete(&types.ClipRecord{}).Error; err != nil {
				return err
			}
		}

		for i := range run.Clips {
			run.Clips[i].Id = 0
			run.Clips[i].RunToken = run.Token
		}
		return tx.Save(run).Error
	})
}

func GetRun(token string) (*types.ClipRun, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}
	var run types.ClipRun
	err := DB.Preload("Clips", func(db *gorm.DB) *gorm.DB {
		return db.Order("clip_id asc")
	}).Where("token = ?", token).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func GetRunHistory(limit int) ([]types.ClipRun, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}
	var runs []types.ClipRun
	err := DB.Preload("Clips", func(db *gorm.DB) *gorm.DB {
		return db.Order("clip_id asc")
	}).Order("create_time desc").Order("id desc").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func DeleteRun(token string) error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_token = ?", token).Delete(&types.ClipRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("token = ?", token).Delete(&types.ClipRun{}).Error
	})
}

// UpdateClipFile records where a clip of a run was rendered.
func UpdateClipFile(token string, clipID int, filePath string) error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	result := DB.Model(&types.ClipRecord{}).
		Where("run_token = ? AND clip_id = ?", token, clipID).
		Update("file_path", filePath)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListRunTokensBefore returns tokens of runs created before unixSeconds.
func ListRunTokensBefore(unixSeconds int64) ([]string, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}
	var tokens []string
	err := DB.Model(&types.ClipRun{}).Where("create_time < ?", unixSeconds).Pluck("token", &tokens).Error
	return tokens, err
}
