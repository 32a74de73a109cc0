package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/darasa-app/darasa/core/access"
	"github.com/darasa-app/darasa/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func visible(scope access.Scope, actorID string, owner string, ownerSet bool) bool {
	switch scope {
	case access.ScopeAll:
		return true
	case access.ScopeOwned:
		return ownerSet && owner == actorID
	default:
		return false
	}
}

func paginate(total, limit, offset int) (lo, hi int) {
	if offset > total {
		offset = total
	}
	hi = offset + limit
	if limit <= 0 || hi > total {
		hi = total
	}
	return offset, hi
}

func (repo *catalogRepository) lessonsCount(courseID string) int {
	n := 0
	for _, rec := range repo.db.lessons {
		if rec.CourseID == courseID {
			n++
		}
	}
	return n
}

func (repo *catalogRepository) CreateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	course.ID = uuid.New().String()
	repo.db.courses[course.ID] = courseRec{Course: course, seq: repo.db.nextSeq()}
	return course, nil
}

func (repo *catalogRepository) QueryCourses(ctx context.Context, scope access.Scope, actorID string, limit, offset int) ([]catalog.Course, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := make([]courseRec, 0, len(repo.db.courses))
	for _, rec := range repo.db.courses {
		if visible(scope, actorID, rec.Owner.String, rec.Owner.Valid) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	total := len(recs)
	lo, hi := paginate(total, limit, offset)

	courses := make([]catalog.Course, 0, hi-lo)
	for _, rec := range recs[lo:hi] {
		course := rec.Course
		course.LessonsCount = repo.lessonsCount(course.ID)
		courses = append(courses, course)
	}
	return courses, total, nil
}

func (repo *catalogRepository) GetCourse(ctx context.Context, scope access.Scope, actorID, id string) (catalog.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rec, ok := repo.db.courses[id]
	if !ok || !visible(scope, actorID, rec.Owner.String, rec.Owner.Valid) {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	course := rec.Course
	course.LessonsCount = repo.lessonsCount(course.ID)
	return course, nil
}

func (repo *catalogRepository) GetCourseLessons(ctx context.Context, courseID string) ([]catalog.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := make([]lessonRec, 0)
	for _, rec := range repo.db.lessons {
		if rec.CourseID == courseID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Position != recs[j].Position {
			return recs[i].Position < recs[j].Position
		}
		return recs[i].seq < recs[j].seq
	})

	lessons := make([]catalog.Lesson, 0, len(recs))
	for _, rec := range recs {
		lessons = append(lessons, rec.Lesson)
	}
	return lessons, nil
}

func (repo *catalogRepository) UpdateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec, ok := repo.db.courses[course.ID]
	if !ok {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	rec.Course = course
	repo.db.courses[course.ID] = rec
	return course, nil
}

func (repo *catalogRepository) DeleteCourse(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.courses, id)
	for lid, rec := range repo.db.lessons {
		if rec.CourseID == id {
			delete(repo.db.lessons, lid)
		}
	}
	for key, sub := range repo.db.subscriptions {
		if sub.CourseID == id {
			delete(repo.db.subscriptions, key)
		}
	}
	return nil
}

func (repo *catalogRepository) CreateLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	lesson.ID = uuid.New().String()
	repo.db.lessons[lesson.ID] = lessonRec{Lesson: lesson, seq: repo.db.nextSeq()}
	return lesson, nil
}

func (repo *catalogRepository) QueryLessons(ctx context.Context, scope access.Scope, actorID string, limit, offset int) ([]catalog.Lesson, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := make([]lessonRec, 0, len(repo.db.lessons))
	for _, rec := range repo.db.lessons {
		if visible(scope, actorID, rec.Owner.String, rec.Owner.Valid) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	total := len(recs)
	lo, hi := paginate(total, limit, offset)

	lessons := make([]catalog.Lesson, 0, hi-lo)
	for _, rec := range recs[lo:hi] {
		lessons = append(lessons, rec.Lesson)
	}
	return lessons, total, nil
}

func (repo *catalogRepository) GetLesson(ctx context.Context, scope access.Scope, actorID, id string) (catalog.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rec, ok := repo.db.lessons[id]
	if !ok || !visible(scope, actorID, rec.Owner.String, rec.Owner.Valid) {
		return catalog.Lesson{}, catalog.ErrLessonNotFound
	}
	return rec.Lesson, nil
}

func (repo *catalogRepository) UpdateLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec, ok := repo.db.lessons[lesson.ID]
	if !ok {
		return catalog.Lesson{}, catalog.ErrLessonNotFound
	}
	rec.Lesson = lesson
	repo.db.lessons[lesson.ID] = rec
	return lesson, nil
}

func (repo *catalogRepository) DeleteLesson(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.lessons, id)
	return nil
}

func (repo *catalogRepository) CreateSubscription(ctx context.Context, sub catalog.Subscription) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := subKey(sub.UserID, sub.CourseID)
	if _, ok := repo.db.subscriptions[key]; ok {
		return false, nil
	}
	sub.ID = uuid.New().String()
	repo.db.subscriptions[key] = sub
	return true, nil
}

func (repo *catalogRepository) DeleteSubscription(ctx context.Context, userID, courseID string) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := subKey(userID, courseID)
	if _, ok := repo.db.subscriptions[key]; !ok {
		return false, nil
	}
	delete(repo.db.subscriptions, key)
	return true, nil
}

func (repo *catalogRepository) SubscriptionExists(ctx context.Context, userID, courseID string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, ok := repo.db.subscriptions[subKey(userID, courseID)]
	return ok, nil
}
