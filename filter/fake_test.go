package filter

import "slices"

type fakeModel struct {
	name          string
	columnList    []string
	relationships map[string]*fakeModel
}

func newFakeModel(name string, columns ...string) *fakeModel {
	return &fakeModel{name: name, columnList: columns, relationships: map[string]*fakeModel{}}
}

func (m *fakeModel) relate(name string, target *fakeModel) *fakeModel {
	m.relationships[name] = target
	return m
}

func (m *fakeModel) Name() string          { return m.name }
func (m *fakeModel) ColumnNames() []string { return m.columnList }

func (m *fakeModel) RelationshipNames() []string {
	nameList := make([]string, 0, len(m.relationships))
	for name := range m.relationships {
		nameList = append(nameList, name)
	}
	slices.Sort(nameList)
	return nameList
}

func (m *fakeModel) RelatedModel(name string) (Model, bool) {
	target, ok := m.relationships[name]
	if !ok {
		return nil, false
	}
	return target, true
}

// fakeQuery joins relationships unless they are listed in refuse.
type fakeQuery struct {
	modelList []Model
	refuse    map[string]bool
	attempts  *[]string
}

func newFakeQuery(models ...Model) *fakeQuery {
	return &fakeQuery{modelList: models, refuse: map[string]bool{}, attempts: &[]string{}}
}

func (q *fakeQuery) Models() []Model { return q.modelList }

func (q *fakeQuery) with(model Model) *fakeQuery {
	return &fakeQuery{
		modelList: append(slices.Clone(q.modelList), model),
		refuse:    q.refuse,
		attempts:  q.attempts,
	}
}

func (q *fakeQuery) JoinRelation(parent Model, relationship string) (*fakeQuery, JoinResult) {
	*q.attempts = append(*q.attempts, parent.Name()+"."+relationship)
	if q.refuse[relationship] {
		return q, NotJoinable
	}
	target, ok := parent.RelatedModel(relationship)
	if !ok {
		return q, NotJoinable
	}
	if _, present := ModelsInQuery(q)[target.Name()]; present {
		return q, AlreadyPresent
	}
	return q.with(target), Joined
}

func (q *fakeQuery) JoinModel(target Model) (*fakeQuery, JoinResult) {
	*q.attempts = append(*q.attempts, target.Name())
	if q.refuse[target.Name()] {
		return q, NotJoinable
	}
	return q.with(target), Joined
}

type fakeRegistry map[string]Model

func (r fakeRegistry) Lookup(name string) (Model, bool) {
	model, ok := r[name]
	return model, ok
}

func modelNames(q ModelSource) []string {
	nameList := []string{}
	for _, model := range q.Models() {
		nameList = append(nameList, model.Name())
	}
	return nameList
}
