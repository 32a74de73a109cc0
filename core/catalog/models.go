package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/darasa-app/darasa/core"
)

type Course struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       core.Amount `json:"price"`
	Owner       null.String `json:"owner"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC

	LessonsCount int `json:"lessons_count"`
}

// CourseDetail is the retrieve-view shape: the course plus its lessons and the
// requesting actor's subscription state.
type CourseDetail struct {
	Course
	Lessons      []Lesson `json:"lessons"`
	IsSubscribed bool     `json:"is_subscribed"`
}

type Lesson struct {
	ID          string      `json:"id"`
	CourseID    string      `json:"course"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Position    int         `json:"position"`
	VideoURL    null.String `json:"video_url"`
	Owner       null.String `json:"owner"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	CourseID  string    `json:"course"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
// The owner is always the creating actor.
type NewCourse struct {
	Title       string      `json:"title" validate:"required,max=255"`
	Description string      `json:"description"`
	Price       core.Amount `json:"price" validate:"omitempty,gte=0"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	return validate.Struct(nc)
}

// UpdateCourse defines what may be changed on an existing Course. Owner is not
// reassignable.
type UpdateCourse struct {
	Title       *string      `json:"title" validate:"omitempty,max=255"`
	Description *string      `json:"description"`
	Price       *core.Amount `json:"price" validate:"omitempty,gte=0"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	if uc.Title != nil {
		title := core.CleanString(*uc.Title)
		uc.Title = &title
	}
	return validate.Struct(uc)
}

// NewLesson contains information needed to create a new Lesson.
type NewLesson struct {
	CourseID    string      `json:"course" validate:"required"`
	Title       string      `json:"title" validate:"required,max=255"`
	Description string      `json:"description"`
	Position    int         `json:"position" validate:"omitempty,gte=0"`
	VideoURL    string      `json:"video_url" validate:"omitempty,youtube_url"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	nl.VideoURL = core.CleanString(nl.VideoURL)
	return validate.Struct(nl)
}

// UpdateLesson defines what may be changed on an existing Lesson. The course
// relation and owner are fixed at creation.
type UpdateLesson struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Position    *int    `json:"position" validate:"omitempty,gte=0"`
	VideoURL    *string `json:"video_url" validate:"omitempty,youtube_url"`
}

func (ul *UpdateLesson) Validate(validate *validator.Validate) error {
	if ul.Title != nil {
		title := core.CleanString(*ul.Title)
		ul.Title = &title
	}
	if ul.VideoURL != nil {
		u := core.CleanString(*ul.VideoURL)
		ul.VideoURL = &u
	}
	return validate.Struct(ul)
}

// SubscriptionStatus reports the outcome of a subscribe/unsubscribe toggle.
// Both repeat operations are successful no-ops; Changed tells them apart.
type SubscriptionStatus struct {
	Status  string `json:"status"`
	Changed bool   `json:"-"`
}
