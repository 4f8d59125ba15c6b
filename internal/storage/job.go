package storage

import (
	"errors"

	"gorm.io/gorm"

	"clipz-ai/internal/appcore"
	"clipz-ai/internal/types"
)

func SaveJob(job *types.Job) error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	var existing types.Job
	result := DB.Where("job_id = ?", job.JobId).First(&existing)
	if result.Error == nil {
		job.Id = existing.Id
		job.CreateTime = existing.CreateTime
		return DB.Save(job).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(job).Error
	}
	return result.Error
}

func GetJob(jobID string) (*types.Job, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}
	var job types.Job
	if err := DB.Where("job_id = ?", jobID).First(&job).Error; err != nil {
		return nil, err
	}
	job.StageName = job.Stage.String()
	return &job, nil
}

// UpdateJobStage moves a job to stage. Terminal jobs are left untouched.
func UpdateJobStage(jobID string, stage appcore.JobStage, message, failReason string) error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	result := DB.Model(&types.Job{}).
		Where("job_id = ? AND stage NOT IN ?", jobID, []appcore.JobStage{appcore.JobStageSucceeded, appcore.JobStageFailed}).
		Updates(map[string]interface{}{
			"stage":       stage,
			"message":     message,
			"fail_reason": failReason,
		})
	return result.Error
}

// MarkStaleJobs fails every queued or processing job. Called at startup:
// the in-process runner loses its queue on restart.
func MarkStaleJobs() (int64, error) {
	if DB == nil {
		return 0, ErrDBNotInitialized
	}
	result := DB.Model(&types.Job{}).
		Where("stage IN ?", []appcore.JobStage{appcore.JobStageQueued, appcore.JobStageProcessing}).
		Updates(map[string]interface{}{
			"stage":       appcore.JobStageFailed,
			"fail_reason": "服务重启，任务被中断 Job interrupted by server restart",
			"message":     "任务中断 Interrupted",
		})
	return result.RowsAffected, result.Error
}
