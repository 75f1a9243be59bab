package task

import (
	"fmt"
	"time"
)

type Task struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	AssigneeID  string     `json:"assigneeId" db:"assignee_id"`
	ProjectID   string     `json:"projectId" db:"project_id"`
	Deadline    *string    `json:"deadline" db:"deadline"`
	Status      Status     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	ClosedAt    *time.Time `json:"closedAt" db:"closed_at"`
	OwnerID     *string    `json:"ownerId,omitempty" db:"owner_id"`

	// заполняются только для задач с доски
	GroupTitle string   `json:"-"`
	Priority   Priority `json:"-"`
	Label      string   `json:"-"`

	Origin Origin `json:"-"`
}

type Status string
type Priority string
type Origin string

const StatusTodo Status = "todo"
const StatusDone Status = "done"

const PriorityHigh Priority = "High"
const PriorityMedium Priority = "Medium"
const PriorityLow Priority = "Low"

const OriginLocal Origin = "local"
const OriginBoard Origin = "board"

const DeadlineLayout = "2006-01-02"

func (s Status) IsLocal() bool {
	return s == StatusTodo || s == StatusDone
}

// Apply применяет частичное обновление к задаче в памяти.
// closedAt выставляется только при первом переходе в done и сбрасывается при любом другом статусе.
func (t *Task) Apply(p Patch, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.AssigneeID != nil {
		t.AssigneeID = *p.AssigneeID
	}
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.ClearDeadline {
		t.Deadline = nil
	} else if p.Deadline != nil {
		d := *p.Deadline
		t.Deadline = &d
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Label != nil {
		t.Label = *p.Label
	}
	if p.Status != nil {
		t.Status = *p.Status
		if t.Status == StatusDone {
			if t.ClosedAt == nil {
				closed := now
				t.ClosedAt = &closed
			}
		} else {
			t.ClosedAt = nil
		}
	}
}

// Clone возвращает копию без общих указателей
func (t *Task) Clone() *Task {
	c := *t
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	if t.ClosedAt != nil {
		cl := *t.ClosedAt
		c.ClosedAt = &cl
	}
	if t.OwnerID != nil {
		o := *t.OwnerID
		c.OwnerID = &o
	}
	return &c
}

type NewTask struct {
	Title       string
	Description string
	AssigneeID  string
	ProjectID   string
	Deadline    *string
	Status      *Status
	Priority    *Priority
	Label       *string
}

type Filter struct {
	Status    string
	ProjectID string
	OwnerID   string
	Group     string
}

func ValidateDeadline(deadline string) error {
	if _, err := time.Parse(DeadlineLayout, deadline); err != nil {
		return fmt.Errorf("ожидается дата в формате YYYY-MM-DD: %w", err)
	}
	return nil
}
