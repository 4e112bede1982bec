package mappers

import (
	"authgate/internal/domain/session"
	"authgate/internal/infrastructure/persistence/models"
)

// PersonalAccessTokenMapper handles the conversion between personal access
// tokens and their persistence models.
type PersonalAccessTokenMapper interface {
	ToModel(token *session.PersonalAccessToken) *models.PersonalAccessTokenModel
	ToDomain(model *models.PersonalAccessTokenModel) *session.PersonalAccessToken
}

type personalAccessTokenMapperImpl struct{}

// NewPersonalAccessTokenMapper creates a new PersonalAccessTokenMapper.
func NewPersonalAccessTokenMapper() PersonalAccessTokenMapper {
	return &personalAccessTokenMapperImpl{}
}

func (m *personalAccessTokenMapperImpl) ToModel(token *session.PersonalAccessToken) *models.PersonalAccessTokenModel {
	if token == nil {
		return nil
	}
	return &models.PersonalAccessTokenModel{
		UserName:   token.UserName,
		Token:      token.Token,
		Groups:     JoinGroups(token.Groups),
		Expiration: token.Expiration,
	}
}

func (m *personalAccessTokenMapperImpl) ToDomain(model *models.PersonalAccessTokenModel) *session.PersonalAccessToken {
	if model == nil {
		return nil
	}
	return &session.PersonalAccessToken{
		UserName:   model.UserName,
		Token:      model.Token,
		Groups:     SplitGroups(model.Groups),
		Expiration: model.Expiration,
	}
}
