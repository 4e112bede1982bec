// Package mappers converts between domain entities and persistence models.
package mappers

import (
	"strings"

	"authgate/internal/domain/session"
	"authgate/internal/infrastructure/persistence/models"
)

// GroupsDelimiter separates group names inside the persisted group columns.
const GroupsDelimiter = ";"

// SessionRecordMapper handles the conversion between session records and
// their persistence models.
type SessionRecordMapper interface {
	ToModel(record *session.Record) *models.SessionRecordModel
	ToDomain(model *models.SessionRecordModel) *session.Record
}

type sessionRecordMapperImpl struct{}

// NewSessionRecordMapper creates a new SessionRecordMapper.
func NewSessionRecordMapper() SessionRecordMapper {
	return &sessionRecordMapperImpl{}
}

func (m *sessionRecordMapperImpl) ToModel(record *session.Record) *models.SessionRecordModel {
	if record == nil {
		return nil
	}
	return &models.SessionRecordModel{
		ID:         record.ID,
		Token:      record.Token,
		UserName:   record.UserName,
		Groups:     JoinGroups(record.Groups),
		LastAccess: record.LastAccess,
	}
}

func (m *sessionRecordMapperImpl) ToDomain(model *models.SessionRecordModel) *session.Record {
	if model == nil {
		return nil
	}
	return &session.Record{
		ID:         model.ID,
		Token:      model.Token,
		UserName:   model.UserName,
		Groups:     SplitGroups(model.Groups),
		LastAccess: model.LastAccess,
	}
}

// JoinGroups renders a group list into the delimited column format.
func JoinGroups(groups []string) string {
	return strings.Join(groups, GroupsDelimiter)
}

// SplitGroups parses the delimited column format back into a group list. An
// empty column yields no groups rather than one empty group.
func SplitGroups(column string) []string {
	if column == "" {
		return nil
	}
	return strings.Split(column, GroupsDelimiter)
}
