package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/workpulse-backend/internal/data/repos"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

type Repos struct {
	Activity     repos.ActivityRecordRepo
	Profile      repos.ProfileRepo
	Relationship repos.RelationshipRepo
	WorkItem     repos.WorkItemRepo
	Dependency   repos.DependencyRepo
	WorkPattern  repos.WorkPatternRepo
	Suggestion   repos.SuggestionRepo
	Insight      repos.InsightRepo
	Notification repos.NotificationRepo
	Preferences  repos.PreferencesRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Activity:     repos.NewActivityRecordRepo(db, log),
		Profile:      repos.NewProfileRepo(db, log),
		Relationship: repos.NewRelationshipRepo(db, log),
		WorkItem:     repos.NewWorkItemRepo(db, log),
		Dependency:   repos.NewDependencyRepo(db, log),
		WorkPattern:  repos.NewWorkPatternRepo(db, log),
		Suggestion:   repos.NewSuggestionRepo(db, log),
		Insight:      repos.NewInsightRepo(db, log),
		Notification: repos.NewNotificationRepo(db, log),
		Preferences:  repos.NewPreferencesRepo(db, log),
	}
}
