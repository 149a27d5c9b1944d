package work

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

type DependencyRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.WorkDependency) error
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.WorkDependency, error)
	// SharedWith returns every other project that shares at least one
	// dependency key with projectID, ordered by project id.
	SharedWith(dbc dbctx.Context, projectID uuid.UUID) ([]types.SharedDependency, error)
}

type dependencyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDependencyRepo(db *gorm.DB, baseLog *logger.Logger) DependencyRepo {
	return &dependencyRepo{db: db, log: baseLog.With("repo", "DependencyRepo")}
}

func (r *dependencyRepo) Upsert(dbc dbctx.Context, rows []*types.WorkDependency) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "dependency_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"kind"}),
		}).
		Create(&rows).Error
}

func (r *dependencyRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.WorkDependency, error) {
	out := []*types.WorkDependency{}
	if projectID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("project_id = ?", projectID).Order("dependency_key").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *dependencyRepo) SharedWith(dbc dbctx.Context, projectID uuid.UUID) ([]types.SharedDependency, error) {
	if projectID == uuid.Nil {
		return []types.SharedDependency{}, nil
	}
	type pair struct {
		ProjectID     uuid.UUID
		DependencyKey string
	}
	var rows []pair
	err := dbc.Conn(r.db).
		Table("work_dependency AS other").
		Select("other.project_id AS project_id, other.dependency_key AS dependency_key").
		Joins("JOIN work_dependency AS mine ON mine.dependency_key = other.dependency_key").
		Where("mine.project_id = ? AND other.project_id <> ?", projectID, projectID).
		Order("other.project_id, other.dependency_key").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	byProject := map[uuid.UUID][]string{}
	for _, p := range rows {
		byProject[p.ProjectID] = append(byProject[p.ProjectID], p.DependencyKey)
	}
	out := make([]types.SharedDependency, 0, len(byProject))
	for id, keys := range byProject {
		out = append(out, types.SharedDependency{ProjectID: id, Keys: keys})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID.String() < out[j].ProjectID.String() })
	return out, nil
}
