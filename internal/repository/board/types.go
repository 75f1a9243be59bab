package board

import (
	"encoding/json"
	"taskBoard/internal/models/task"
)

type ColumnValue struct {
	ID    string          `json:"id"`
	Text  *string         `json:"text"`
	Value json.RawMessage `json:"value"`
}

type itemGroup struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Item struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Group        *itemGroup    `json:"group"`
	ColumnValues []ColumnValue `json:"column_values"`
}

type Group struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
}

func (it Item) ToTask() *task.Task {
	t := &task.Task{
		ID:     it.ID,
		Title:  it.Name,
		Origin: task.OriginBoard,
	}
	if it.Group != nil {
		t.ProjectID = it.Group.ID
		t.GroupTitle = it.Group.Title
	}
	Decode(t, it.ColumnValues)
	// имя элемента главнее колонки name
	t.Title = it.Name
	return t
}

const itemFields = `
	id
	name
	group {
		id
		title
	}
	column_values {
		id
		text
		value
	}`
