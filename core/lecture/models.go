package lecture

import (
	"time"

	"github.com/darasahq/darasa/core"
)

// Status is the lifecycle state of a Summary. A recording starts out pending
// (uploaded, awaiting processing) and becomes visible to students and parents
// only once its owning teacher publishes it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
)

type (
	// AudioFile references the uploaded recording in blob storage.
	// Immutable after creation.
	AudioFile struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	}

	// Content is the processed summary of a recording. It is produced by a
	// separate pipeline and may be absent.
	Content struct {
		Overview            string   `json:"overview"`
		KeyPoints           []string `json:"keyPoints"`
		DetailedExplanation string   `json:"detailedExplanation"`
	}

	// Summary is a lecture recording with its (eventual) transcription and
	// summary content. TeacherID always comes from the authenticated caller
	// at creation time and never changes afterwards.
	Summary struct {
		ID            string     `json:"id"`
		Title         string     `json:"title"`
		Subject       string     `json:"subject"`
		TeacherID     string     `json:"teacher_id"`
		AudioFile     AudioFile  `json:"audio_file"`
		Transcription string     `json:"transcription,omitempty"`
		Content       *Content   `json:"summary,omitempty"`
		Status        Status     `json:"status"`
		PublishedAt   *time.Time `json:"published_at,omitempty"` // UTC; set iff Status == published
		CreatedAt     time.Time  `json:"created_at"`             // UTC
		UpdatedAt     time.Time  `json:"updated_at"`             // UTC
	}
)

func (s *Summary) IsPublished() bool {
	return s.Status == StatusPublished
}

// NewSummary contains information needed to ingest a new recording.
// Title and Subject fall back to defaults when omitted; the AudioFile
// reference is mandatory.
type NewSummary struct {
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	AudioFile AudioFile `json:"audio_file"`
}

func (ns *NewSummary) Validate() error {
	ns.Title = core.CleanString(ns.Title)
	ns.Subject = core.CleanString(ns.Subject)

	if ns.AudioFile.URL == "" || ns.AudioFile.Filename == "" {
		return core.NewValidationError(errNoAudioFile, core.FieldError{Field: "audio", Error: errNoAudioFile.Error()})
	}
	if ns.Title == "" {
		ns.Title = "Untitled Lecture"
	}
	if ns.Subject == "" {
		ns.Subject = "General"
	}
	return nil
}

// GetFilter narrows a summary lookup. When TeacherID is set alongside ID,
// both must match in the store query itself; a summary owned by someone else
// is indistinguishable from a missing one.
type GetFilter struct {
	ID        string
	TeacherID string
}
