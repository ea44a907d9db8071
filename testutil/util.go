package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"
	"time"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/academy"
	"github.com/trezcool/coachdesk/core/admin"
	"github.com/trezcool/coachdesk/core/sms"
	logsvc "github.com/trezcool/coachdesk/services/logger"
)

// NewConfig returns a TEST config with every required setting.
func NewConfig() *core.Config {
	conf := &core.Config{
		Env:              core.EnvTest,
		Build:            "test",
		AppName:          "CoachDesk",
		TestMode:         true,
		BaseURL:          "http://localhost:8000",
		CoachingName:     "Udvash Coaching",
		DefaultFromEmail: mail.Address{Name: "CoachDesk", Address: "noreply@localhost"},
	}
	conf.Server.LoginBurst = 5
	conf.Server.LoginEvery = 12 * time.Second
	conf.Session.Secret = "test-secret"
	conf.Session.TTL = 7 * 24 * time.Hour
	conf.Session.CookieName = "coachdesk_session"
	conf.Mongo.URI = "mongodb://localhost:27017"
	conf.Mongo.Name = "coachdesk_test"
	conf.SMS.SenderID = "8809617000000"
	conf.SMS.Timeout = time.Second
	conf.Admin = core.AdminConfig{
		Email:      "boss@coachdesk.test",
		Username:   "boss",
		Password:   "s3cure-Pass!",
		SeedSecret: "seed-secret",
	}
	return conf
}

// NewLogger returns a logger that writes nowhere.
func NewLogger() core.Logger {
	conf := NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

func CreateAdmin(t *testing.T, repo admin.Repository, uname, email, pwd string) admin.Administrator {
	now := time.Now().UTC()
	adm := admin.Administrator{
		ID:        core.NewID(),
		Username:  uname,
		Email:     email,
		Role:      admin.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := adm.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAdmin() failed: %v", err)
		}
	}
	adm, err := repo.CreateAdmin(context.Background(), adm)
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	return adm
}

func CreateBatch(t *testing.T, repo academy.Repository, name string) academy.Batch {
	now := time.Now().UTC()
	b, err := repo.CreateBatch(context.Background(), academy.Batch{ID: core.NewID(), Name: name, ClassName: "HSC", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateBatch() failed: %v", err)
	}
	return b
}

func CreateStudent(t *testing.T, repo academy.Repository, batchID, code, name, roll, guardianPhone string) academy.Student {
	now := time.Now().UTC()
	s, err := repo.CreateStudent(context.Background(), academy.Student{
		ID:            core.NewID(),
		Code:          code,
		Name:          name,
		Roll:          roll,
		BatchID:       batchID,
		GuardianPhone: guardianPhone,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateTeacher(t *testing.T, repo academy.Repository, code, name, phone, status string) academy.Teacher {
	now := time.Now().UTC()
	tch, err := repo.CreateTeacher(context.Background(), academy.Teacher{
		ID:        core.NewID(),
		Code:      code,
		Name:      name,
		Phone:     phone,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tch
}

func CreateResult(t *testing.T, repo academy.Repository, batchID, typ string, subjects ...academy.SubjectMark) academy.Result {
	now := time.Now().UTC()
	r, err := repo.CreateResult(context.Background(), academy.Result{
		ID:        core.NewID(),
		BatchID:   batchID,
		Type:      typ,
		ExamDate:  "2024-03-10",
		Subjects:  subjects,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateResult() failed: %v", err)
	}
	return r
}

func CreateTemplate(t *testing.T, repo sms.TemplateRepository, name, body string) sms.Template {
	now := time.Now().UTC()
	tmpl, err := repo.CreateTemplate(context.Background(), sms.Template{ID: core.NewID(), Name: name, Body: body, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateTemplate() failed: %v", err)
	}
	return tmpl
}
