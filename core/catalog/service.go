package catalog

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasa-app/darasa/core/access"
)

var (
	// errors
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

// subscription toggle statuses
const (
	StatusSubscribed        = "subscribed"
	StatusAlreadySubscribed = "already_subscribed"
	StatusUnsubscribed      = "unsubscribed"
	StatusNotSubscribed     = "not_subscribed"
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, course Course) (Course, error)
		// QueryCourses returns a page of visible courses plus the total count
		// of the visible set.
		QueryCourses(ctx context.Context, scope access.Scope, actorID string, limit, offset int) ([]Course, int, error)
		GetCourse(ctx context.Context, scope access.Scope, actorID, id string) (Course, error)
		GetCourseLessons(ctx context.Context, courseID string) ([]Lesson, error)
		UpdateCourse(ctx context.Context, course Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error

		CreateLesson(ctx context.Context, lesson Lesson) (Lesson, error)
		QueryLessons(ctx context.Context, scope access.Scope, actorID string, limit, offset int) ([]Lesson, int, error)
		GetLesson(ctx context.Context, scope access.Scope, actorID, id string) (Lesson, error)
		UpdateLesson(ctx context.Context, lesson Lesson) (Lesson, error)
		DeleteLesson(ctx context.Context, id string) error

		// CreateSubscription inserts the (user, course) pair, relying on the
		// storage unique constraint: it reports created=false when the pair
		// already existed, without treating the collision as an error.
		CreateSubscription(ctx context.Context, sub Subscription) (created bool, err error)
		DeleteSubscription(ctx context.Context, userID, courseID string) (deleted bool, err error)
		SubscriptionExists(ctx context.Context, userID, courseID string) (bool, error)
	}

	Service interface {
		CreateCourse(actor access.Actor, nc NewCourse) (Course, error)
		QueryCourses(actor access.Actor, limit, offset int) ([]Course, int, error)
		GetCourse(actor access.Actor, id string) (CourseDetail, error)
		UpdateCourse(actor access.Actor, id string, uc UpdateCourse) (Course, error)
		DeleteCourse(actor access.Actor, id string) error
		CourseLessons(actor access.Actor, courseID string) ([]Lesson, error)

		CreateLesson(actor access.Actor, nl NewLesson) (Lesson, error)
		QueryLessons(actor access.Actor, limit, offset int) ([]Lesson, int, error)
		GetLesson(actor access.Actor, id string) (Lesson, error)
		UpdateLesson(actor access.Actor, id string, ul UpdateLesson) (Lesson, error)
		DeleteLesson(actor access.Actor, id string) error

		Subscribe(actor access.Actor, courseID string) (SubscriptionStatus, error)
		Unsubscribe(actor access.Actor, courseID string) (SubscriptionStatus, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateCourse(actor access.Actor, nc NewCourse) (Course, error) {
	if !actor.Authenticated {
		return Course{}, access.ErrUnauthenticated
	}
	if !actor.Can(access.ActionCreate, null.String{}) {
		return Course{}, access.ErrForbidden
	}

	now := time.Now().UTC()
	course := Course{
		Title:       nc.Title,
		Description: nc.Description,
		Price:       nc.Price,
		Owner:       null.StringFrom(actor.ID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(context.Background(), course)
}

func (svc *service) QueryCourses(actor access.Actor, limit, offset int) ([]Course, int, error) {
	if !actor.Authenticated {
		return nil, 0, access.ErrUnauthenticated
	}
	return svc.repo.QueryCourses(context.Background(), access.CatalogScope(actor), actor.ID, limit, offset)
}

func (svc *service) GetCourse(actor access.Actor, id string) (CourseDetail, error) {
	if !actor.Authenticated {
		return CourseDetail{}, access.ErrUnauthenticated
	}
	ctx := context.Background()

	course, err := svc.repo.GetCourse(ctx, access.CatalogScope(actor), actor.ID, id)
	if err != nil {
		return CourseDetail{}, err
	}
	lessons, err := svc.repo.GetCourseLessons(ctx, course.ID)
	if err != nil {
		return CourseDetail{}, errors.Wrap(err, "fetching course lessons")
	}
	subscribed, err := svc.repo.SubscriptionExists(ctx, actor.ID, course.ID)
	if err != nil {
		return CourseDetail{}, errors.Wrap(err, "checking subscription")
	}

	course.LessonsCount = len(lessons)
	return CourseDetail{Course: course, Lessons: lessons, IsSubscribed: subscribed}, nil
}

func (svc *service) UpdateCourse(actor access.Actor, id string, uc UpdateCourse) (Course, error) {
	if !actor.Authenticated {
		return Course{}, access.ErrUnauthenticated
	}
	ctx := context.Background()

	course, err := svc.repo.GetCourse(ctx, access.CatalogScope(actor), actor.ID, id)
	if err != nil {
		return Course{}, err
	}
	if !actor.Can(access.ActionUpdate, course.Owner) {
		return Course{}, access.ErrForbidden
	}

	if uc.Title != nil {
		course.Title = *uc.Title
	}
	if uc.Description != nil {
		course.Description = *uc.Description
	}
	if uc.Price != nil {
		course.Price = *uc.Price
	}
	course.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, course)
}

func (svc *service) DeleteCourse(actor access.Actor, id string) error {
	if !actor.Authenticated {
		return access.ErrUnauthenticated
	}
	ctx := context.Background()

	course, err := svc.repo.GetCourse(ctx, access.CatalogScope(actor), actor.ID, id)
	if err != nil {
		return err
	}
	if !actor.Can(access.ActionDelete, course.Owner) {
		return access.ErrForbidden
	}
	return svc.repo.DeleteCourse(ctx, course.ID)
}

func (svc *service) CourseLessons(actor access.Actor, courseID string) ([]Lesson, error) {
	if !actor.Authenticated {
		return nil, access.ErrUnauthenticated
	}
	ctx := context.Background()

	course, err := svc.repo.GetCourse(ctx, access.CatalogScope(actor), actor.ID, courseID)
	if err != nil {
		return nil, err
	}
	return svc.repo.GetCourseLessons(ctx, course.ID)
}

func (svc *service) CreateLesson(actor access.Actor, nl NewLesson) (Lesson, error) {
	if !actor.Authenticated {
		return Lesson{}, access.ErrUnauthenticated
	}
	if !actor.Can(access.ActionCreate, null.String{}) {
		return Lesson{}, access.ErrForbidden
	}
	ctx := context.Background()

	// the course must exist and be visible to the actor
	course, err := svc.repo.GetCourse(ctx, access.CatalogScope(actor), actor.ID, nl.CourseID)
	if err != nil {
		return Lesson{}, err
	}

	now := time.Now().UTC()
	lesson := Lesson{
		CourseID:    course.ID,
		Title:       nl.Title,
		Description: nl.Description,
		Position:    nl.Position,
		VideoURL:    null.NewString(nl.VideoURL, nl.VideoURL != ""),
		Owner:       null.StringFrom(actor.ID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateLesson(ctx, lesson)
}

func (svc *service) QueryLessons(actor access.Actor, limit, offset int) ([]Lesson, int, error) {
	if !actor.Authenticated {
		return nil, 0, access.ErrUnauthenticated
	}
	return svc.repo.QueryLessons(context.Background(), access.CatalogScope(actor), actor.ID, limit, offset)
}

func (svc *service) GetLesson(actor access.Actor, id string) (Lesson, error) {
	if !actor.Authenticated {
		return Lesson{}, access.ErrUnauthenticated
	}
	return svc.repo.GetLesson(context.Background(), access.CatalogScope(actor), actor.ID, id)
}

func (svc *service) UpdateLesson(actor access.Actor, id string, ul UpdateLesson) (Lesson, error) {
	if !actor.Authenticated {
		return Lesson{}, access.ErrUnauthenticated
	}
	ctx := context.Background()

	lesson, err := svc.repo.GetLesson(ctx, access.CatalogScope(actor), actor.ID, id)
	if err != nil {
		return Lesson{}, err
	}
	if !actor.Can(access.ActionUpdate, lesson.Owner) {
		return Lesson{}, access.ErrForbidden
	}

	if ul.Title != nil {
		lesson.Title = *ul.Title
	}
	if ul.Description != nil {
		lesson.Description = *ul.Description
	}
	if ul.Position != nil {
		lesson.Position = *ul.Position
	}
	if ul.VideoURL != nil {
		lesson.VideoURL = null.NewString(*ul.VideoURL, *ul.VideoURL != "")
	}
	lesson.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLesson(ctx, lesson)
}

func (svc *service) DeleteLesson(actor access.Actor, id string) error {
	if !actor.Authenticated {
		return access.ErrUnauthenticated
	}
	ctx := context.Background()

	lesson, err := svc.repo.GetLesson(ctx, access.CatalogScope(actor), actor.ID, id)
	if err != nil {
		return err
	}
	if !actor.Can(access.ActionDelete, lesson.Owner) {
		return access.ErrForbidden
	}
	return svc.repo.DeleteLesson(ctx, lesson.ID)
}

// Subscribe transitions the (actor, course) pair from absent to subscribed.
// Subscribing twice is not an error: the second call reports
// already_subscribed and changes nothing.
func (svc *service) Subscribe(actor access.Actor, courseID string) (SubscriptionStatus, error) {
	if !actor.Authenticated {
		return SubscriptionStatus{}, access.ErrUnauthenticated
	}
	ctx := context.Background()

	course, err := svc.repo.GetCourse(ctx, access.CatalogScope(actor), actor.ID, courseID)
	if err != nil {
		return SubscriptionStatus{}, err
	}

	created, err := svc.repo.CreateSubscription(ctx, Subscription{
		UserID:    actor.ID,
		CourseID:  course.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return SubscriptionStatus{}, errors.Wrap(err, "creating subscription")
	}
	if !created {
		return SubscriptionStatus{Status: StatusAlreadySubscribed}, nil
	}
	return SubscriptionStatus{Status: StatusSubscribed, Changed: true}, nil
}

// Unsubscribe is the reverse toggle; unsubscribing when absent reports
// not_subscribed and is equally successful.
func (svc *service) Unsubscribe(actor access.Actor, courseID string) (SubscriptionStatus, error) {
	if !actor.Authenticated {
		return SubscriptionStatus{}, access.ErrUnauthenticated
	}
	ctx := context.Background()

	course, err := svc.repo.GetCourse(ctx, access.CatalogScope(actor), actor.ID, courseID)
	if err != nil {
		return SubscriptionStatus{}, err
	}

	deleted, err := svc.repo.DeleteSubscription(ctx, actor.ID, course.ID)
	if err != nil {
		return SubscriptionStatus{}, errors.Wrap(err, "deleting subscription")
	}
	if !deleted {
		return SubscriptionStatus{Status: StatusNotSubscribed}, nil
	}
	return SubscriptionStatus{Status: StatusUnsubscribed, Changed: true}, nil
}
