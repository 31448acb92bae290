package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/teamflow/sprintbot/internal/model"
)

const dateFormat = "02/01/2006"

// mainMenuReply builds the menu for the chat's auth status. Unauthenticated
// chats only get the login hint.
func mainMenuReply(authenticated bool) Reply {
	if !authenticated {
		return promptReply(MsgWelcome)
	}
	return Reply{
		Text: MsgMainMenu,
		Keyboard: [][]string{
			{LabelCreateTask, LabelListTasks},
			{LabelFinishTask, LabelVoiceTask},
			{LabelKPIs, LabelHideKeyboard},
		},
	}
}

// priorityKeyboard lists the fixed priority options, one row.
func priorityKeyboard() [][]string {
	row := make([]string, 0, len(model.Priorities))
	for _, p := range model.Priorities {
		row = append(row, string(p))
	}
	return [][]string{row}
}

// typeKeyboard lists the fixed task type options, two per row.
func typeKeyboard() [][]string {
	var rows [][]string
	var row []string
	for _, t := range model.TaskTypes {
		row = append(row, string(t))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// userKeyboard lists each user as its own row, labeled "<first> <last>".
func userKeyboard(users []model.User) [][]string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.DisplayName()})
	}
	return rows
}

// sprintKeyboard lists each sprint as its own row, labeled "Sprint <name>".
func sprintKeyboard(sprints []model.Sprint) [][]string {
	rows := make([][]string, 0, len(sprints))
	for _, s := range sprints {
		rows = append(rows, []string{"Sprint " + s.Name})
	}
	return rows
}

// finishTaskLabel is the row label offered for completing a task.
func finishTaskLabel(t model.Task) string {
	return fmt.Sprintf("#%d %s", t.ID, t.Title)
}

// finishTaskKeyboard lists each open task as its own row.
func finishTaskKeyboard(tasks []model.Task) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{finishTaskLabel(t)})
	}
	return rows
}

func priorityEmoji(p model.Priority) string {
	switch p {
	case model.PriorityCritical:
		return "🚨"
	case model.PriorityHigh:
		return "🔴"
	case model.PriorityMedium:
		return "🟠"
	case model.PriorityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

func typeEmoji(t model.TaskType) string {
	switch t {
	case model.TypeBug:
		return "🐞"
	case model.TypeFeature:
		return "✨"
	case model.TypeEnhancement:
		return "📈"
	case model.TypeResearch:
		return "🔬"
	default:
		return "🔹"
	}
}

func statusEmoji(s model.Status) string {
	switch s {
	case model.StatusCompleted:
		return "✅"
	case model.StatusInProgress:
		return "⚙️"
	default:
		return "⏳"
	}
}

// dueIndicator renders how close a task is to its end date.
func dueIndicator(endDate time.Time, now time.Time) string {
	if endDate.IsZero() {
		return ""
	}
	days := int(endDate.Sub(now).Hours() / 24)
	switch {
	case days < 0:
		return "⚠️ OVERDUE"
	case days == 0:
		return "🔔 DUE TODAY"
	case days <= 2:
		return "⏰ DUE SOON"
	default:
		return "📆 on track"
	}
}

// formatTaskLine renders one task entry for the paginated list.
func formatTaskLine(t model.Task, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔹 #%d %s\n", t.ID, t.Title)
	fmt.Fprintf(&sb, "   Status: %s %s\n", statusEmoji(t.Status), t.Status)
	fmt.Fprintf(&sb, "   Priority: %s %s\n", priorityEmoji(t.Priority), t.Priority)
	if t.Assignee != nil {
		fmt.Fprintf(&sb, "   Assignee: %s\n", t.Assignee.DisplayName())
	}
	if t.Sprint != nil {
		fmt.Fprintf(&sb, "   Sprint: %s\n", t.Sprint.Name)
	}
	fmt.Fprintf(&sb, "   Hours: %.1f est / %.1f actual\n", t.EstimatedHours, t.ActualHours)
	if !t.EndDate.IsZero() {
		fmt.Fprintf(&sb, "   Due: %s %s\n", t.EndDate.Format(dateFormat), dueIndicator(t.EndDate, now))
	}
	return sb.String()
}

// formatTaskConfirmation renders the summary sent after a task is created.
func formatTaskConfirmation(t *model.Task) string {
	var sb strings.Builder
	sb.WriteString("✅ TASK CREATED\n\n")
	fmt.Fprintf(&sb, "🆔 #%d %s %s\n\n", t.ID, priorityEmoji(t.Priority), typeEmoji(t.Type))
	fmt.Fprintf(&sb, "📌 %s\n%s\n\n", t.Title, t.Description)

	sb.WriteString("📊 PLANNING\n")
	if t.Sprint != nil {
		fmt.Fprintf(&sb, "• Sprint: %s\n", t.Sprint.Name)
	}
	fmt.Fprintf(&sb, "• Story points: %d\n", t.StoryPoints)
	fmt.Fprintf(&sb, "• Hours: %.1f est / %.1f actual\n", t.EstimatedHours, t.ActualHours)
	fmt.Fprintf(&sb, "• Status: %s %s\n\n", statusEmoji(t.Status), t.Status)

	if t.Assignee != nil {
		fmt.Fprintf(&sb, "👤 Assignee: %s\n\n", t.Assignee.DisplayName())
	}

	fmt.Fprintf(&sb, "📅 %s → %s %s\n",
		t.StartDate.Format(dateFormat), t.EndDate.Format(dateFormat),
		dueIndicator(t.EndDate, time.Now()))
	return sb.String()
}

// formatKPISummary renders the aggregate metrics report.
func formatKPISummary(s *model.KPISummary) string {
	var sb strings.Builder
	sb.WriteString("📊 TEAM KPIs\n\n")
	fmt.Fprintf(&sb, "Tasks: %d total\n", s.TotalTasks)
	fmt.Fprintf(&sb, "• ⏳ Pending: %d\n", s.Pending)
	fmt.Fprintf(&sb, "• ⚙️ In progress: %d\n", s.InProgress)
	fmt.Fprintf(&sb, "• ✅ Completed: %d (%.0f%%)\n\n", s.Completed, s.CompletionRate*100)
	fmt.Fprintf(&sb, "Story points: %d/%d completed\n", s.CompletedStoryPoints, s.TotalStoryPoints)
	fmt.Fprintf(&sb, "Hours: %.1f estimated / %.1f actual\n", s.EstimatedHours, s.ActualHours)

	if len(s.BySprint) > 0 {
		sb.WriteString("\nBy sprint:\n")
		for _, sp := range s.BySprint {
			fmt.Fprintf(&sb, "• %s: %d/%d done\n", sp.SprintName, sp.Completed, sp.Total)
		}
	}
	return sb.String()
}
