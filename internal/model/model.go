// Package model defines the core domain types shared by the bot, the
// REST API and the storage layer: tasks, users, sprints and projects.
package model

import "time"

// Priority is the urgency bucket of a task.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lists all valid priorities in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// ValidPriority reports whether s is one of the fixed priority strings.
func ValidPriority(s string) bool {
	for _, p := range Priorities {
		if string(p) == s {
			return true
		}
	}
	return false
}

// TaskType classifies the kind of work a task represents.
type TaskType string

const (
	TypeBug         TaskType = "Bug"
	TypeFeature     TaskType = "Feature"
	TypeTask        TaskType = "Task"
	TypeEnhancement TaskType = "Enhancement"
	TypeResearch    TaskType = "Research"
)

// TaskTypes lists all valid task types in display order.
var TaskTypes = []TaskType{TypeBug, TypeFeature, TypeTask, TypeEnhancement, TypeResearch}

// ValidTaskType reports whether s is one of the fixed type strings.
func ValidTaskType(s string) bool {
	for _, t := range TaskTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// StoryPoints bounds for task estimation.
const (
	MinStoryPoints = 1
	MaxStoryPoints = 13
)

// DefaultTaskDuration is the window applied when no end date is given.
const DefaultTaskDuration = 7 * 24 * time.Hour

// User is a registered team member.
type User struct {
	ID               int64  `json:"userId"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	PasswordHash     string `json:"-"`
	Role             string `json:"role,omitempty"`
	TelegramUsername string `json:"telegramUsername,omitempty"`
	Deleted          bool   `json:"-"`
}

// DisplayName is the "<first> <last>" form the bot uses for selection.
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// Project groups sprints under a named initiative with a responsible
// owner.
type Project struct {
	ID          int64     `json:"projectId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Status      string    `json:"status,omitempty"`
	Owner       *User     `json:"owner,omitempty"`
	Deleted     bool      `json:"-"`
}

// Sprint is a bounded time period tasks are scheduled into.
type Sprint struct {
	ID        int64     `json:"sprintId"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status,omitempty"`
	Project   *Project  `json:"project,omitempty"`
	Deleted   bool      `json:"-"`
}

// Task is a unit of tracked work, either a draft being accumulated by the
// bot wizard or a persisted row.
type Task struct {
	ID             int64     `json:"taskId"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         Status    `json:"status"`
	Priority       Priority  `json:"priority"`
	Type           TaskType  `json:"type"`
	StoryPoints    int       `json:"storyPoints"`
	EstimatedHours float64   `json:"estimatedHours"`
	ActualHours    float64   `json:"actualHours"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Assignee       *User     `json:"assignee,omitempty"`
	Sprint         *Sprint   `json:"sprint,omitempty"`
	Deleted        bool      `json:"-"`
}

// NewDraftTask returns a fresh task draft with default status and dates
// (start today, due in a week).
func NewDraftTask() *Task {
	now := time.Now()
	return &Task{
		Status:    StatusPending,
		StartDate: now,
		EndDate:   now.Add(DefaultTaskDuration),
	}
}

// ApplyDateDefaults fills unset start/end dates at submission time.
func (t *Task) ApplyDateDefaults(now time.Time) {
	if t.StartDate.IsZero() {
		t.StartDate = now
	}
	if t.EndDate.IsZero() {
		t.EndDate = now.Add(DefaultTaskDuration)
	}
}

// KPISummary holds the aggregate metrics served to the bot and the API.
type KPISummary struct {
	TotalTasks           int     `json:"totalTasks"`
	Pending              int     `json:"pending"`
	InProgress           int     `json:"inProgress"`
	Completed            int     `json:"completed"`
	CompletionRate       float64 `json:"completionRate"`
	TotalStoryPoints     int     `json:"totalStoryPoints"`
	CompletedStoryPoints int     `json:"completedStoryPoints"`
	EstimatedHours       float64 `json:"estimatedHours"`
	ActualHours          float64 `json:"actualHours"`

	BySprint []SprintKPI `json:"bySprint,omitempty"`
}

// SprintKPI is the per-sprint slice of the KPI summary.
type SprintKPI struct {
	SprintID   int64  `json:"sprintId"`
	SprintName string `json:"sprintName"`
	Total      int    `json:"total"`
	Completed  int    `json:"completed"`
}
