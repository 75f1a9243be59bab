package task

// Patch - частичное обновление: nil означает "поле не передано"
type Patch struct {
	Title         *string
	Description   *string
	AssigneeID    *string
	ProjectID     *string
	Deadline      *string
	ClearDeadline bool
	Status        *Status
	Priority      *Priority
	Label         *string

	// перенос в другую группу доски
	MoveToGroup *string
}

type PatchOption func(*Patch)

func NewPatch(opts ...PatchOption) Patch {
	var p Patch
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

func WithTitle(title string) PatchOption {
	return func(p *Patch) {
		p.Title = &title
	}
}

func WithDescription(description string) PatchOption {
	return func(p *Patch) {
		p.Description = &description
	}
}

func WithAssignee(assigneeID string) PatchOption {
	return func(p *Patch) {
		p.AssigneeID = &assigneeID
	}
}

func WithProject(projectID string) PatchOption {
	return func(p *Patch) {
		p.ProjectID = &projectID
	}
}

func WithDeadline(deadline string) PatchOption {
	return func(p *Patch) {
		p.Deadline = &deadline
		p.ClearDeadline = false
	}
}

func WithoutDeadline() PatchOption {
	return func(p *Patch) {
		p.Deadline = nil
		p.ClearDeadline = true
	}
}

func WithStatus(status Status) PatchOption {
	if status == "" {
		return nil
	}
	return func(p *Patch) {
		p.Status = &status
	}
}

func WithPriority(priority Priority) PatchOption {
	return func(p *Patch) {
		p.Priority = &priority
	}
}

func WithLabel(label string) PatchOption {
	return func(p *Patch) {
		p.Label = &label
	}
}

func WithMoveToGroup(groupID string) PatchOption {
	return func(p *Patch) {
		p.MoveToGroup = &groupID
	}
}

// HasFields сообщает, меняет ли патч хоть одно поле задачи (перенос не считается)
func (p Patch) HasFields() bool {
	return p.Title != nil ||
		p.Description != nil ||
		p.AssigneeID != nil ||
		p.ProjectID != nil ||
		p.Deadline != nil ||
		p.ClearDeadline ||
		p.Status != nil ||
		p.Priority != nil ||
		p.Label != nil
}

// Fields - поля новой задачи, которые доска хранит в колонках
func (n NewTask) Fields() Patch {
	p := Patch{
		Deadline: n.Deadline,
		Status:   n.Status,
		Priority: n.Priority,
		Label:    n.Label,
	}
	if n.Description != "" {
		p.Description = &n.Description
	}
	return p
}
