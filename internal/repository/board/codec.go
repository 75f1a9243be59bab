package board

import (
	"taskBoard/internal/models/task"
)

const (
	ColumnPriority    = "color_mm0mx10q"
	ColumnProject     = "color_mm0mv81k"
	ColumnDeadline    = "date4"
	ColumnStatus      = "status"
	ColumnDescription = "text_mkqzaznf"
	ColumnName        = "name"
)

// Column связывает поле задачи с колонкой доски.
// Encode возвращает false, если поле в патче не передано.
type Column struct {
	Key    string
	Encode func(p task.Patch) (any, bool)
	Decode func(t *task.Task, text string)
}

var Columns = []Column{
	{
		Key: ColumnName,
		Encode: func(p task.Patch) (any, bool) {
			if p.Title == nil {
				return nil, false
			}
			return *p.Title, true
		},
		Decode: func(t *task.Task, text string) { t.Title = text },
	},
	{
		Key: ColumnPriority,
		Encode: func(p task.Patch) (any, bool) {
			if p.Priority == nil {
				return nil, false
			}
			return map[string]any{"index": PriorityIndex(*p.Priority)}, true
		},
		Decode: func(t *task.Task, text string) { t.Priority = task.Priority(text) },
	},
	{
		Key: ColumnProject,
		Encode: func(p task.Patch) (any, bool) {
			if p.Label == nil {
				return nil, false
			}
			return map[string]any{"label": *p.Label}, true
		},
		Decode: func(t *task.Task, text string) { t.Label = text },
	},
	{
		Key: ColumnDeadline,
		Encode: func(p task.Patch) (any, bool) {
			if p.ClearDeadline {
				return map[string]any{}, true
			}
			if p.Deadline == nil {
				return nil, false
			}
			return map[string]any{"date": *p.Deadline}, true
		},
		Decode: func(t *task.Task, text string) { t.Deadline = &text },
	},
	{
		Key: ColumnStatus,
		Encode: func(p task.Patch) (any, bool) {
			if p.Status == nil {
				return nil, false
			}
			return map[string]any{"label": string(*p.Status)}, true
		},
		Decode: func(t *task.Task, text string) { t.Status = task.Status(text) },
	},
	{
		Key: ColumnDescription,
		Encode: func(p task.Patch) (any, bool) {
			if p.Description == nil {
				return nil, false
			}
			return *p.Description, true
		},
		Decode: func(t *task.Task, text string) { t.Description = text },
	},
}

var columnsByKey = func() map[string]Column {
	m := make(map[string]Column, len(Columns))
	for _, c := range Columns {
		m[c.Key] = c
	}
	return m
}()

func PriorityIndex(p task.Priority) int {
	switch p {
	case task.PriorityHigh:
		return 0
	case task.PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Encode переводит патч в значения колонок. Пустой результат значит, что менять нечего.
func Encode(p task.Patch) map[string]any {
	values := make(map[string]any)
	for _, c := range Columns {
		if v, ok := c.Encode(p); ok {
			values[c.Key] = v
		}
	}
	return values
}

// Decode заполняет поля задачи по тексту колонок, неизвестные и пустые колонки пропускаются
func Decode(t *task.Task, values []ColumnValue) {
	for _, v := range values {
		c, ok := columnsByKey[v.ID]
		if !ok || v.Text == nil || *v.Text == "" {
			continue
		}
		c.Decode(t, *v.Text)
	}
}
