// Package output provides styled terminal output helpers using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskpro/taskpro/internal/billing"
	"github.com/taskpro/taskpro/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))

	priorityStyles = map[int]lipgloss.Style{
		1: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		2: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		3: lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		4: subtleStyle,
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// TaskLine renders a one-line task summary: checkbox, priority marker,
// title, then due date and project in subtle text.
func TaskLine(task *models.Task, projectNames map[string]string, now time.Time) string {
	var b strings.Builder

	if task.Completed {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}

	if style, ok := priorityStyles[task.Priority]; ok && task.Priority < models.PriorityDefault {
		b.WriteString(style.Render(fmt.Sprintf("p%d", task.Priority)))
		b.WriteString(" ")
	}

	title := task.Title
	if task.Completed {
		title = doneStyle.Render(title)
	}
	b.WriteString(title)

	if task.Favorite {
		b.WriteString(" " + warningStyle.Render("*"))
	}

	var meta []string
	if task.DueDate != nil {
		due := task.DueDate.Format("2006-01-02")
		if !task.Completed && task.DueDate.Before(now) {
			meta = append(meta, overdueStyle.Render("due "+due))
		} else {
			meta = append(meta, "due "+due)
		}
	}
	if task.ProjectID != "" {
		name := projectNames[task.ProjectID]
		if name == "" {
			name = task.ProjectID
		}
		meta = append(meta, "#"+name)
	}
	if len(meta) > 0 {
		b.WriteString(" " + subtleStyle.Render(strings.Join(meta, " ")))
	}

	b.WriteString(subtleStyle.Render("  " + task.ID))
	return b.String()
}

// FormatTimeAgo renders a timestamp as a relative age string.
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// GroupHeader renders a group key as a section header.
func GroupHeader(key string) string {
	return headerStyle.Render(key)
}

// Title renders a bold heading.
func Title(text string) string {
	return titleStyle.Render(text)
}

// SubscriptionSummary renders the access projection for the CLI.
func SubscriptionSummary(p billing.Projection) string {
	var b strings.Builder

	status := string(p.Status)
	switch {
	case p.IsTrialActive:
		b.WriteString(warningStyle.Render("trial"))
		b.WriteString(fmt.Sprintf(" - %d day(s) remaining", p.DaysRemaining))
	case p.IsActive:
		b.WriteString(successStyle.Render(status))
		if p.PlanType != "" {
			b.WriteString(" (" + string(p.PlanType) + ")")
		}
		b.WriteString(fmt.Sprintf(" - %d day(s) remaining", p.DaysRemaining))
	default:
		b.WriteString(errorStyle.Render(status))
	}

	if p.ExpiresAt != nil {
		b.WriteString(subtleStyle.Render("  until " + p.ExpiresAt.Format("2006-01-02")))
	}
	return b.String()
}
