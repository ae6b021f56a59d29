package service

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CalendarService renders a student's deadlines as an iCalendar feed.
// Tasks with a due date and colleges with an application deadline each
// become a VEVENT, so the feed can be subscribed to from any calendar app.
type CalendarService struct {
	tasks    TaskStore
	colleges CollegeStore
}

func NewCalendarService(tasks TaskStore, colleges CollegeStore) *CalendarService {
	return &CalendarService{
		tasks:    tasks,
		colleges: colleges,
	}
}

// BuildICS returns the student's deadline feed as an ICS document.
func (s *CalendarService) BuildICS(ctx context.Context, studentID string) (string, error) {
	tasks, err := s.tasks.ListByStudent(ctx, studentID)
	if err != nil {
		return "", fmt.Errorf("failed to load tasks: %w", err)
	}
	colleges, err := s.colleges.ListByStudent(ctx, studentID)
	if err != nil {
		return "", fmt.Errorf("failed to load colleges: %w", err)
	}

	var b strings.Builder
	writeICSLine(&b, "BEGIN:VCALENDAR")
	writeICSLine(&b, "VERSION:2.0")
	writeICSLine(&b, "PRODID:-//collegetrack//deadlines//EN")
	writeICSLine(&b, "CALSCALE:GREGORIAN")

	now := time.Now().UTC()

	for _, task := range tasks {
		if task.DueAt <= 0 {
			continue
		}
		writeEvent(&b, icsEvent{
			uid:         "task-" + task.ID.Hex(),
			summary:     task.Title,
			description: task.Description,
			at:          time.Unix(int64(task.DueAt), 0).UTC(),
			stamp:       now,
		})
	}

	for _, college := range colleges {
		if college.Deadline <= 0 {
			continue
		}
		writeEvent(&b, icsEvent{
			uid:         "college-" + college.ID.Hex(),
			summary:     college.Name + " application deadline",
			description: college.ApplicationType,
			at:          time.Unix(int64(college.Deadline), 0).UTC(),
			stamp:       now,
		})
	}

	writeICSLine(&b, "END:VCALENDAR")
	return b.String(), nil
}

type icsEvent struct {
	uid         string
	summary     string
	description string
	at          time.Time
	stamp       time.Time
}

const icsTimeLayout = "20060102T150405Z"

func writeEvent(b *strings.Builder, ev icsEvent) {
	writeICSLine(b, "BEGIN:VEVENT")
	writeICSLine(b, "UID:"+ev.uid+"@collegetrack")
	writeICSLine(b, "DTSTAMP:"+ev.stamp.Format(icsTimeLayout))
	writeICSLine(b, "DTSTART:"+ev.at.Format(icsTimeLayout))
	writeICSLine(b, "SUMMARY:"+escapeICSText(ev.summary))
	if ev.description != "" {
		writeICSLine(b, "DESCRIPTION:"+escapeICSText(ev.description))
	}
	writeICSLine(b, "END:VEVENT")
}

// writeICSLine terminates with CRLF and folds lines longer than 75 octets
// as RFC 5545 requires.
func writeICSLine(b *strings.Builder, line string) {
	const limit = 75
	capacity := limit
	for len(line) > capacity {
		cut := capacity
		// Do not split a multi-byte rune across the fold.
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines spend one octet on the leading space.
		capacity = limit - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func escapeICSText(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return replacer.Replace(text)
}
