package mapper

import (
	"encoding/json"

	"cdc-educa-be/internal/entity"
	"cdc-educa-be/internal/model"

	"gorm.io/datatypes"
)

type QALogMapper struct{}

func NewQALogMapper() *QALogMapper {
	return &QALogMapper{}
}

func (m *QALogMapper) ToEntity(e *model.QALog) *entity.QALog {
	if e == nil {
		return nil
	}
	return &entity.QALog{
		Id:           e.Id,
		Query:        e.Query,
		CleanedQuery: e.CleanedQuery,
		Blocked:      e.Blocked,
		BlockCode:    e.BlockCode,
		Blocks:       json.RawMessage(e.Blocks),
		Meta:         json.RawMessage(e.Meta),
		SourceCount:  e.SourceCount,
		RetryCount:   e.RetryCount,
		CreatedAt:    e.CreatedAt,
	}
}

func (m *QALogMapper) ToModel(e *entity.QALog) *model.QALog {
	if e == nil {
		return nil
	}
	return &model.QALog{
		Id:           e.Id,
		Query:        e.Query,
		CleanedQuery: e.CleanedQuery,
		Blocked:      e.Blocked,
		BlockCode:    e.BlockCode,
		Blocks:       datatypes.JSON(e.Blocks),
		Meta:         datatypes.JSON(e.Meta),
		SourceCount:  e.SourceCount,
		RetryCount:   e.RetryCount,
		CreatedAt:    e.CreatedAt,
	}
}

func (m *QALogMapper) ToEntities(logs []*model.QALog) []*entity.QALog {
	entities := make([]*entity.QALog, len(logs))
	for i, l := range logs {
		entities[i] = m.ToEntity(l)
	}
	return entities
}
