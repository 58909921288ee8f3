package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petition-service/internal/model"
)

type PetitionRepository struct {
	db *gorm.DB
}

func NewPetitionRepository(db *gorm.DB) *PetitionRepository {
	return &PetitionRepository{db: db}
}

// Create reserves the next per-year sequence and inserts the petition in one
// transaction. The upsert row lock on petition_sequences serializes
// concurrent creates for the same year.
func (r *PetitionRepository) Create(ctx context.Context, petition *model.Petition, logEntry *model.PetitionStatusLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if petition.ID == uuid.Nil {
			petition.ID = uuid.New()
		}
		if petition.CreatedAt.IsZero() {
			petition.CreatedAt = time.Now()
		}
		year := petition.CreatedAt.Year()

		var sequence int
		if err := tx.Raw(`
			INSERT INTO petition_sequences (year, last_value) VALUES (?, 1)
			ON CONFLICT (year) DO UPDATE SET last_value = petition_sequences.last_value + 1
			RETURNING last_value`, year).Scan(&sequence).Error; err != nil {
			return err
		}

		petition.Year = year
		petition.Sequence = sequence
		petition.Number = model.FormatPetitionNumber(year, sequence)
		petition.Version = 1

		if err := tx.Omit(clause.Associations).Create(petition).Error; err != nil {
			return err
		}
		if err := insertAssignments(tx, petition); err != nil {
			return err
		}
		if logEntry != nil {
			logEntry.PetitionID = petition.ID
			if err := tx.Create(logEntry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PetitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Petition, error) {
	var petition model.Petition
	err := r.db.WithContext(ctx).
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("petition_assignments.created_at ASC")
		}).
		First(&petition, "id = ?", id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &petition, nil
}

func (r *PetitionRepository) List(ctx context.Context, filter PetitionFilter) ([]model.Petition, error) {
	query := r.db.WithContext(ctx).Model(&model.Petition{})
	query = applyScopeFilter(query, filter.Scope)

	if len(filter.Statuses) > 0 {
		query = query.Where("petitions.status IN ?", filter.Statuses)
	}
	if len(filter.Types) > 0 {
		lowered := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			lowered = append(lowered, strings.ToLower(t))
		}
		query = query.Where("LOWER(petitions.type) IN ?", lowered)
	}
	if filter.ZonePrefix != "" {
		prefix := strings.ToLower(strings.Trim(filter.ZonePrefix, "/"))
		query = query.Where("(LOWER(petitions.zone) = ? OR LOWER(petitions.zone) LIKE ?)", prefix, prefix+"/%")
	}
	if len(filter.TimeBounds) > 0 {
		query = query.Where("petitions.time_bound IN ?", filter.TimeBounds)
	}
	if filter.OfficerID != nil {
		query = query.Where(assignedToClause, *filter.OfficerID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("petitions.created_by = ?", *filter.CreatedBy)
	}
	if filter.DateFrom != nil {
		query = query.Where("petitions.created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("petitions.created_at <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where(
			"(petitions.number ILIKE ? OR petitions.petitioner_name ILIKE ? OR petitions.respondent_name ILIKE ? OR petitions.subject ILIKE ? OR petitions.encroachment_address ILIKE ?)",
			search, search, search, search, search,
		)
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	query = query.Limit(filter.EffectiveLimit())

	var petitions []model.Petition
	if err := query.
		Order("petitions.created_at DESC").
		Order("petitions.sequence DESC").
		Preload("Assignments").
		Find(&petitions).Error; err != nil {
		return nil, err
	}
	return petitions, nil
}

// UpdateWorkflow writes the workflow columns guarded by the version the
// caller read. New assignments are appended; existing ones are kept.
func (r *PetitionRepository) UpdateWorkflow(ctx context.Context, petition *model.Petition, expectedVersion int, logEntry *model.PetitionStatusLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&model.Petition{}).
			Where("id = ? AND version = ?", petition.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":                  petition.Status,
				"assignment_instructions": petition.AssignmentInstructions,
				"assigned_by":             petition.AssignedBy,
				"assigned_at":             petition.AssignedAt,
				"investigation_report":    petition.InvestigationReport,
				"recommendation":          petition.Recommendation,
				"reported_by":             petition.ReportedBy,
				"reported_at":             petition.ReportedAt,
				"decision_status":         petition.DecisionStatus,
				"decision_remarks":        petition.DecisionRemarks,
				"decided_by":              petition.DecidedBy,
				"decision_date":           petition.DecisionDate,
				"version":                 expectedVersion + 1,
				"updated_at":              now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.Petition{}).Where("id = ?", petition.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrVersionConflict
		}

		if err := insertAssignments(tx, petition); err != nil {
			return err
		}
		if logEntry != nil {
			logEntry.PetitionID = petition.ID
			if err := tx.Create(logEntry).Error; err != nil {
				return err
			}
		}

		petition.Version = expectedVersion + 1
		petition.UpdatedAt = now
		return nil
	})
}

func (r *PetitionRepository) ListStatusLog(ctx context.Context, petitionID uuid.UUID) ([]model.PetitionStatusLog, error) {
	var logs []model.PetitionStatusLog
	if err := r.db.WithContext(ctx).
		Where("petition_id = ?", petitionID).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *PetitionRepository) Stats(ctx context.Context) (*model.PetitionStats, error) {
	stats := &model.PetitionStats{GeneratedAt: time.Now()}
	if err := r.db.WithContext(ctx).Model(&model.Petition{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	groups := []struct {
		expr  string
		where string
		dest  *[]model.CountEntry
	}{
		{expr: "status", dest: &stats.ByStatus},
		{expr: "type", dest: &stats.ByType},
		{expr: "split_part(zone, '/', 1)", dest: &stats.ByZone},
		{expr: "decision_status", where: "decision_status IS NOT NULL", dest: &stats.ByDecision},
		{expr: "time_bound", dest: &stats.ByTimeBound},
		{expr: "to_char(created_at, 'YYYY-MM')", dest: &stats.ByMonth},
	}
	for _, g := range groups {
		query := r.db.WithContext(ctx).
			Model(&model.Petition{}).
			Select(g.expr + ` AS "key", COUNT(*) AS "count"`).
			Group(g.expr)
		if g.where != "" {
			query = query.Where(g.where)
		}
		var rows []model.CountEntry
		if err := query.Scan(&rows).Error; err != nil {
			return nil, err
		}
		sortCounts(rows)
		*g.dest = rows
	}
	sortByKey(stats.ByMonth)
	return stats, nil
}

const assignedToClause = "EXISTS (SELECT 1 FROM petition_assignments pa WHERE pa.petition_id = petitions.id AND pa.officer_id = ?)"

func applyScopeFilter(query *gorm.DB, scope model.Scope) *gorm.DB {
	switch scope.Type {
	case model.ScopeAll:
		return query
	case model.ScopeAssigned:
		if scope.OfficerID == nil {
			return query.Where("1=0")
		}
		return query.Where(assignedToClause, *scope.OfficerID)
	default:
		return query.Where("1=0")
	}
}

func insertAssignments(tx *gorm.DB, petition *model.Petition) error {
	if len(petition.Assignments) == 0 {
		return nil
	}
	for i := range petition.Assignments {
		petition.Assignments[i].PetitionID = petition.ID
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&petition.Assignments).Error
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
