// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/lecture"
	"github.com/darasahq/darasa/core/user"
)

// SetupConf loads a throwaway test configuration into core.Conf.
func SetupConf() {
	if core.Conf != nil {
		return
	}
	dir, err := os.MkdirTemp("", "darasa-test")
	if err != nil {
		log.Fatalf("SetupConf(): %v", err)
	}
	core.LoadConf(dir)
	core.Conf.TestMode = true
	core.Conf.Debug = false
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, regNo, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		RegNo:     regNo,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateSummary(
	t *testing.T,
	repo lecture.Repository,
	title, subject, teacherID string,
	status lecture.Status,
	createdAt ...time.Time,
) lecture.Summary {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	sum := lecture.Summary{
		Title:     title,
		Subject:   subject,
		TeacherID: teacherID,
		AudioFile: lecture.AudioFile{
			URL:      "/uploads/" + title + ".mp3",
			Filename: title + ".mp3",
		},
		Status:    status,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if status == lecture.StatusPublished {
		pubAt := tstamp
		sum.PublishedAt = &pubAt
	}
	sum, err := repo.CreateSummary(context.Background(), sum)
	if err != nil {
		t.Fatalf("CreateSummary(): %v", err)
	}
	return sum
}
