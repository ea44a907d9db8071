package academy

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coachdesk/core"
)

// Teacher statuses
const (
	TeacherActive    = "active"
	TeacherSuspended = "suspended"
)

type Batch struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	ClassName string    `json:"class_name" bson:"class_name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type Student struct {
	ID            string    `json:"id" bson:"_id"`
	Code          string    `json:"code" bson:"code"` // public student id
	Name          string    `json:"name" bson:"name"`
	Roll          string    `json:"roll" bson:"roll"`
	BatchID       string    `json:"batch_id" bson:"batch_id"`
	GuardianPhone string    `json:"guardian_phone" bson:"guardian_phone"`
	Phone         string    `json:"phone" bson:"phone"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

type Teacher struct {
	ID        string    `json:"id" bson:"_id"`
	Code      string    `json:"code" bson:"code"`
	Name      string    `json:"name" bson:"name"`
	Phone     string    `json:"phone" bson:"phone"`
	Subject   string    `json:"subject" bson:"subject"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (t Teacher) IsSuspended() bool { return t.Status == TeacherSuspended }

// Label names the teacher in delivery summaries.
func (t Teacher) Label() string {
	if t.Code == "" {
		return t.Name
	}
	return t.Name + " (" + t.Code + ")"
}

type SubjectMark struct {
	ClassName  string   `json:"class_name" bson:"class_name" validate:"required"`
	MCQTotal   float64  `json:"mcq_total" bson:"mcq_total" validate:"gte=0"`
	MCQGain    float64  `json:"mcq_gain" bson:"mcq_gain" validate:"gte=0"`
	QuesTotal  float64  `json:"ques_total" bson:"ques_total" validate:"gte=0"`
	QuesGain   float64  `json:"ques_gain" bson:"ques_gain" validate:"gte=0"`
	TotalMarks *float64 `json:"total_marks,omitempty" bson:"total_marks,omitempty" validate:"omitempty,gte=0"`
	TotalGain  *float64 `json:"total_gain,omitempty" bson:"total_gain,omitempty" validate:"omitempty,gte=0"`
}

// Totals returns the precomputed totals, or mcq + written marks when absent.
func (s SubjectMark) Totals() (gain, total float64) {
	gain = s.MCQGain + s.QuesGain
	if s.TotalGain != nil {
		gain = *s.TotalGain
	}
	total = s.MCQTotal + s.QuesTotal
	if s.TotalMarks != nil {
		total = *s.TotalMarks
	}
	return gain, total
}

type Result struct {
	ID         string        `json:"id" bson:"_id"`
	BatchID    string        `json:"batch_id" bson:"batch_id"`
	StudentID  string        `json:"student_id,omitempty" bson:"student_id,omitempty"`
	Type       string        `json:"type" bson:"type"`
	ExamDate   string        `json:"exam_date" bson:"exam_date"` // YYYY-MM-DD
	Subjects   []SubjectMark `json:"subjects" bson:"subjects"`
	TotalMarks *float64      `json:"total_marks,omitempty" bson:"total_marks,omitempty"`
	TotalGain  *float64      `json:"total_gain,omitempty" bson:"total_gain,omitempty"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" bson:"updated_at"`
}

// Totals returns the precomputed totals, or the sum of the subjects' totals when absent.
func (r Result) Totals() (gain, total float64) {
	for _, s := range r.Subjects {
		g, t := s.Totals()
		gain += g
		total += t
	}
	if r.TotalGain != nil {
		gain = *r.TotalGain
	}
	if r.TotalMarks != nil {
		total = *r.TotalMarks
	}
	return gain, total
}

// Inputs

type BatchInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	ClassName string `json:"class_name" validate:"max=100"`
}

func (in *BatchInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.ClassName = core.CleanString(in.ClassName)
	return validate.Struct(in)
}

type StudentInput struct {
	Code          string `json:"code" validate:"required,max=50"`
	Name          string `json:"name" validate:"required,max=150"`
	Roll          string `json:"roll" validate:"max=20"`
	BatchID       string `json:"batch_id" validate:"required,objid"`
	GuardianPhone string `json:"guardian_phone" validate:"max=20"`
	Phone         string `json:"phone" validate:"max=20"`
}

func (in *StudentInput) Validate(validate *validator.Validate) error {
	in.Code = core.CleanString(in.Code)
	in.Name = core.CleanString(in.Name)
	in.Roll = core.CleanString(in.Roll)
	in.BatchID = core.CleanString(in.BatchID)
	in.GuardianPhone = core.CleanString(in.GuardianPhone)
	in.Phone = core.CleanString(in.Phone)
	return validate.Struct(in)
}

// TeacherInput accepts the phone under `phone`, `mobile` or `contact_number`; the first non-empty one is kept.
type TeacherInput struct {
	Code          string `json:"code" validate:"required,max=50"`
	Name          string `json:"name" validate:"required,max=150"`
	Phone         string `json:"phone" validate:"max=20"`
	Mobile        string `json:"mobile,omitempty" validate:"max=20"`
	ContactNumber string `json:"contact_number,omitempty" validate:"max=20"`
	Subject       string `json:"subject" validate:"max=100"`
	Status        string `json:"status" validate:"omitempty,oneof=active suspended"`
}

func (in *TeacherInput) Validate(validate *validator.Validate) error {
	in.Code = core.CleanString(in.Code)
	in.Name = core.CleanString(in.Name)
	in.Phone = core.FirstNonEmpty(in.Phone, in.Mobile, in.ContactNumber)
	in.Subject = core.CleanString(in.Subject)
	in.Status = core.CleanString(in.Status, true /* lower */)
	if in.Status == "" {
		in.Status = TeacherActive
	}
	return validate.Struct(in)
}

type ResultInput struct {
	BatchID    string        `json:"batch_id" validate:"required,objid"`
	StudentID  string        `json:"student_id" validate:"omitempty,objid"`
	Type       string        `json:"type" validate:"required,max=100"`
	ExamDate   string        `json:"exam_date" validate:"omitempty,datetime=2006-01-02"`
	Subjects   []SubjectMark `json:"subjects" validate:"required,min=1,dive"`
	TotalMarks *float64      `json:"total_marks" validate:"omitempty,gte=0"`
	TotalGain  *float64      `json:"total_gain" validate:"omitempty,gte=0"`
}

func (in *ResultInput) Validate(validate *validator.Validate) error {
	in.Type = core.CleanString(in.Type)
	in.ExamDate = core.CleanString(in.ExamDate)
	for i := range in.Subjects {
		in.Subjects[i].ClassName = core.CleanString(in.Subjects[i].ClassName)
	}
	return validate.Struct(in)
}

// Filters

type StudentFilter struct {
	BatchID string `query:"batch_id"`
}

type TeacherFilter struct {
	Status           string `query:"status"`
	ExcludeSuspended bool   `query:"-"`
}

type ResultFilter struct {
	BatchID string `query:"batch_id"`
}
