package sms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/coachdesk/core/academy"
)

func fPtr(f float64) *float64 { return &f }

func TestRender(t *testing.T) {
	arif := &academy.Student{Name: "Arif", Code: "CD-101", Roll: "7"}
	midterm := &academy.Result{
		Type:     "Midterm",
		ExamDate: "2024-03-10",
		Subjects: []academy.SubjectMark{{ClassName: "Physics", MCQTotal: 25, MCQGain: 20, QuesTotal: 50, QuesGain: 40}},
	}
	multi := &academy.Result{
		Type: "Final",
		Subjects: []academy.SubjectMark{
			{ClassName: "Physics", MCQTotal: 25, MCQGain: 20, QuesTotal: 50, QuesGain: 40},
			{ClassName: "Math", MCQTotal: 30, MCQGain: 22.5, QuesTotal: 70, QuesGain: 50, TotalMarks: fPtr(100), TotalGain: fPtr(80)},
		},
	}
	precomputed := &academy.Result{
		Subjects:   []academy.SubjectMark{{ClassName: "Chemistry", MCQTotal: 25, MCQGain: 20}},
		TotalMarks: fPtr(200),
		TotalGain:  fPtr(150.5),
	}

	tests := []struct {
		name string
		body string
		rc   RenderContext
		want string
	}{
		{
			name: "example",
			body: "Dear [student-name], your [exam-type] result is [gain-mark/total-mark].",
			rc:   RenderContext{Student: arif, Result: midterm},
			want: "Dear Arif, your Midterm result is 60/75.",
		},
		{
			name: "student fields & coaching name",
			body: "[coaching-name]: [student-name] ([student-id]) roll [student-roll] sat on [exam-date]",
			rc:   RenderContext{CoachingName: "Udvash", Student: arif, Result: midterm},
			want: "Udvash: Arif (CD-101) roll 7 sat on 2024-03-10",
		},
		{
			name: "repeated tokens",
			body: "[student-name] [student-name]",
			rc:   RenderContext{Student: arif},
			want: "Arif Arif",
		},
		{
			name: "subject is the first subject of many",
			body: "[subject] | [subjects] | [gain-mark/total-mark]",
			rc:   RenderContext{Result: multi},
			want: "Physics | Physics-60/75, Math-80/100 | 140/175",
		},
		{
			name: "precomputed result totals win",
			body: "[gain-mark/total-mark]",
			rc:   RenderContext{Result: precomputed},
			want: "150.5/200",
		},
		{
			name: "missing context renders empty",
			body: "Hi [student-name][exam-type]. [subject][subjects][gain-mark/total-mark][coaching-name]",
			rc:   RenderContext{},
			want: "Hi .",
		},
		{
			name: "unknown tokens are kept",
			body: "[teacher-name] [student-name",
			rc:   RenderContext{Student: arif},
			want: "[teacher-name] [student-name",
		},
		{
			name: "tokens in values are neutralized",
			body: "[student-name] / [coaching-name]",
			rc:   RenderContext{CoachingName: "[student-name] Academy", Student: &academy.Student{Name: "[exam-type]"}},
			want: "(exam-type) / (student-name) Academy",
		},
		{
			name: "trimmed",
			body: "  \n [student-name] \t",
			rc:   RenderContext{Student: arif},
			want: "Arif",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.body, tt.rc)
			assert.Equal(t, tt.want, got)
			// idempotent
			assert.Equal(t, got, Render(got, tt.rc))
		})
	}
}

func TestRender_allPlaceholdersResolved(t *testing.T) {
	body := strings.Join(Placeholders, " ")
	rc := RenderContext{
		CoachingName: "Udvash",
		Student:      &academy.Student{Name: "Arif", Code: "CD-101", Roll: "7"},
		Result: &academy.Result{
			Type: "Midterm", ExamDate: "2024-03-10",
			Subjects: []academy.SubjectMark{{ClassName: "Physics", MCQTotal: 25, MCQGain: 20}},
		},
	}

	for _, ctx := range []RenderContext{rc, {}} {
		got := Render(body, ctx)
		for _, tok := range Placeholders {
			assert.NotContains(t, got, tok)
		}
	}
}
