package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/workpulse-backend/internal/data/repos/activity"
	"github.com/yungbote/workpulse-backend/internal/data/repos/analytics"
	"github.com/yungbote/workpulse-backend/internal/data/repos/notify"
	"github.com/yungbote/workpulse-backend/internal/data/repos/people"
	"github.com/yungbote/workpulse-backend/internal/data/repos/work"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

type ActivityRecordRepo = activity.RecordRepo

type ProfileRepo = people.ProfileRepo
type RelationshipRepo = people.RelationshipRepo

type WorkItemRepo = work.WorkItemRepo
type DependencyRepo = work.DependencyRepo

type WorkPatternRepo = analytics.WorkPatternRepo
type SuggestionRepo = analytics.SuggestionRepo
type InsightRepo = analytics.InsightRepo

type NotificationRepo = notify.NotificationRepo
type PreferencesRepo = notify.PreferencesRepo

func NewActivityRecordRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRecordRepo {
	return activity.NewRecordRepo(db, baseLog)
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return people.NewProfileRepo(db, baseLog)
}
func NewRelationshipRepo(db *gorm.DB, baseLog *logger.Logger) RelationshipRepo {
	return people.NewRelationshipRepo(db, baseLog)
}

func NewWorkItemRepo(db *gorm.DB, baseLog *logger.Logger) WorkItemRepo {
	return work.NewWorkItemRepo(db, baseLog)
}
func NewDependencyRepo(db *gorm.DB, baseLog *logger.Logger) DependencyRepo {
	return work.NewDependencyRepo(db, baseLog)
}

func NewWorkPatternRepo(db *gorm.DB, baseLog *logger.Logger) WorkPatternRepo {
	return analytics.NewWorkPatternRepo(db, baseLog)
}
func NewSuggestionRepo(db *gorm.DB, baseLog *logger.Logger) SuggestionRepo {
	return analytics.NewSuggestionRepo(db, baseLog)
}
func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
	return analytics.NewInsightRepo(db, baseLog)
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return notify.NewNotificationRepo(db, baseLog)
}
func NewPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) PreferencesRepo {
	return notify.NewPreferencesRepo(db, baseLog)
}
