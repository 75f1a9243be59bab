package repository

import (
	"strconv"
	"strings"
	"taskBoard/internal/models/task"
)

type Placeholder int

const (
	Dollar   Placeholder = iota // $1, $2 ... (PostgreSQL)
	Question                    // ? (SQLite)
)

const TaskColumns = "id, title, description, assignee_id, project_id, deadline, status, created_at, closed_at, owner_id"
const ProjectColumns = "id, name, emoji, gradient, owner_id"

type Query struct {
	SQL  string
	Args []any
}

type builder struct {
	ph   Placeholder
	args []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	if b.ph == Question {
		return "?"
	}
	return "$" + strconv.Itoa(len(b.args))
}

// UpdateTask собирает один UPDATE ... RETURNING только из переданных полей патча.
// closedAt - значение времени закрытия в формате драйвера.
// Если патч не меняет ни одного поля, ok == false.
func UpdateTask(ph Placeholder, id string, p task.Patch, closedAt any) (Query, bool) {
	b := &builder{ph: ph}
	var sets []string

	set := func(column string, v any) {
		sets = append(sets, column+" = "+b.bind(v))
	}

	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.AssigneeID != nil {
		set("assignee_id", *p.AssigneeID)
	}
	if p.ProjectID != nil {
		set("project_id", *p.ProjectID)
	}
	if p.ClearDeadline {
		sets = append(sets, "deadline = NULL")
	} else if p.Deadline != nil {
		set("deadline", *p.Deadline)
	}
	if p.Status != nil {
		set("status", string(*p.Status))
		if *p.Status == task.StatusDone {
			sets = append(sets, "closed_at = CASE WHEN closed_at IS NULL THEN "+b.bind(closedAt)+" ELSE closed_at END")
		} else {
			sets = append(sets, "closed_at = NULL")
		}
	}

	if len(sets) == 0 {
		return Query{}, false
	}

	sql := "UPDATE tasks SET " + strings.Join(sets, ", ") +
		" WHERE id = " + b.bind(id) +
		" RETURNING " + TaskColumns

	return Query{SQL: sql, Args: b.args}, true
}

// ListTasks - выборка по фильтру (AND), новые задачи первыми.
// Фильтр по владельцу оставляет и общие записи без владельца.
func ListTasks(ph Placeholder, f task.Filter) Query {
	b := &builder{ph: ph}
	var where []string

	if f.Status != "" {
		where = append(where, "status = "+b.bind(f.Status))
	}
	if f.ProjectID != "" {
		where = append(where, "project_id = "+b.bind(f.ProjectID))
	}
	if f.OwnerID != "" {
		where = append(where, "(owner_id = "+b.bind(f.OwnerID)+" OR owner_id IS NULL)")
	}

	sql := "SELECT " + TaskColumns + " FROM tasks"
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY created_at DESC"

	return Query{SQL: sql, Args: b.args}
}

func ListProjects(ph Placeholder, ownerID string) Query {
	b := &builder{ph: ph}
	sql := "SELECT " + ProjectColumns + " FROM projects"
	if ownerID != "" {
		sql += " WHERE (owner_id = " + b.bind(ownerID) + " OR owner_id IS NULL)"
	}
	sql += " ORDER BY name"
	return Query{SQL: sql, Args: b.args}
}
