package sqlxrepos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/access"
	"github.com/darasa-app/darasa/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

type courseRow struct {
	ID           string      `db:"id"`
	Title        string      `db:"title"`
	Description  string      `db:"description"`
	Price        core.Amount `db:"price"`
	OwnerID      null.String `db:"owner_id"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LessonsCount int         `db:"lessons_count"`
}

func (r courseRow) toDomain() catalog.Course {
	return catalog.Course{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Price:        r.Price,
		Owner:        r.OwnerID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LessonsCount: r.LessonsCount,
	}
}

type lessonRow struct {
	ID          string      `db:"id"`
	CourseID    string      `db:"course_id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	Position    int         `db:"position"`
	VideoURL    null.String `db:"video_url"`
	OwnerID     null.String `db:"owner_id"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r lessonRow) toDomain() catalog.Lesson {
	return catalog.Lesson{
		ID:          r.ID,
		CourseID:    r.CourseID,
		Title:       r.Title,
		Description: r.Description,
		Position:    r.Position,
		VideoURL:    r.VideoURL,
		Owner:       r.OwnerID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// scopeClause renders the visibility filter for a scoped query. The clause is
// appended to an existing WHERE; args are the positional parameters it needs,
// numbered from argOffset+1.
func scopeClause(scope access.Scope, actorID string, argOffset int) (string, []interface{}) {
	switch scope {
	case access.ScopeAll:
		return "TRUE", nil
	case access.ScopeOwned:
		return fmt.Sprintf("owner_id = $%d", argOffset+1), []interface{}{actorID}
	default:
		return "FALSE", nil
	}
}

const courseColumns = `id, title, description, price, owner_id, created_at, updated_at,
	(SELECT COUNT(*) FROM lesson l WHERE l.course_id = course.id) AS lessons_count`

func (repo catalogRepository) CreateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	course.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO course (id, title, description, price, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		course.ID, course.Title, course.Description, course.Price, course.Owner,
		course.CreatedAt.UTC(), course.UpdatedAt.UTC(),
	)
	if err != nil {
		return catalog.Course{}, errors.Wrap(err, "inserting course")
	}
	return course, nil
}

func (repo catalogRepository) QueryCourses(ctx context.Context, scope access.Scope, actorID string, limit, offset int) ([]catalog.Course, int, error) {
	clause, args := scopeClause(scope, actorID, 0)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM course WHERE %s`, clause)
	if err := repo.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting courses")
	}

	query := fmt.Sprintf(
		`SELECT %s FROM course WHERE %s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		courseColumns, clause, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying courses")
	}

	courses := make([]catalog.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toDomain())
	}
	return courses, total, nil
}

func (repo catalogRepository) GetCourse(ctx context.Context, scope access.Scope, actorID, id string) (catalog.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	clause, args := scopeClause(scope, actorID, 1)
	args = append([]interface{}{id}, args...)

	var row courseRow
	query := fmt.Sprintf(`SELECT %s FROM course WHERE id = $1 AND %s`, courseColumns, clause)
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return catalog.Course{}, trapNoRowsErr(err, catalog.ErrCourseNotFound, "finding course by ID")
	}
	return row.toDomain(), nil
}

func (repo catalogRepository) GetCourseLessons(ctx context.Context, courseID string) ([]catalog.Lesson, error) {
	var rows []lessonRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM lesson WHERE course_id = $1 ORDER BY position, created_at, id`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course lessons")
	}

	lessons := make([]catalog.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toDomain())
	}
	return lessons, nil
}

func (repo catalogRepository) UpdateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE course SET title = $2, description = $3, price = $4, updated_at = $5 WHERE id = $1`,
		course.ID, course.Title, course.Description, course.Price, course.UpdatedAt.UTC(),
	)
	if err != nil {
		return catalog.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	return course, nil
}

func (repo catalogRepository) DeleteCourse(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

func (repo catalogRepository) CreateLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	lesson.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO lesson (id, course_id, title, description, position, video_url, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		lesson.ID, lesson.CourseID, lesson.Title, lesson.Description, lesson.Position,
		lesson.VideoURL, lesson.Owner, lesson.CreatedAt.UTC(), lesson.UpdatedAt.UTC(),
	)
	if err != nil {
		return catalog.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return lesson, nil
}

func (repo catalogRepository) QueryLessons(ctx context.Context, scope access.Scope, actorID string, limit, offset int) ([]catalog.Lesson, int, error) {
	clause, args := scopeClause(scope, actorID, 0)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM lesson WHERE %s`, clause)
	if err := repo.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting lessons")
	}

	query := fmt.Sprintf(
		`SELECT * FROM lesson WHERE %s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		clause, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	var rows []lessonRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying lessons")
	}

	lessons := make([]catalog.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toDomain())
	}
	return lessons, total, nil
}

func (repo catalogRepository) GetLesson(ctx context.Context, scope access.Scope, actorID, id string) (catalog.Lesson, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Lesson{}, catalog.ErrLessonNotFound
	}
	clause, args := scopeClause(scope, actorID, 1)
	args = append([]interface{}{id}, args...)

	var row lessonRow
	query := fmt.Sprintf(`SELECT * FROM lesson WHERE id = $1 AND %s`, clause)
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return catalog.Lesson{}, trapNoRowsErr(err, catalog.ErrLessonNotFound, "finding lesson by ID")
	}
	return row.toDomain(), nil
}

func (repo catalogRepository) UpdateLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE lesson SET title = $2, description = $3, position = $4, video_url = $5, updated_at = $6 WHERE id = $1`,
		lesson.ID, lesson.Title, lesson.Description, lesson.Position, lesson.VideoURL, lesson.UpdatedAt.UTC(),
	)
	if err != nil {
		return catalog.Lesson{}, errors.Wrap(err, "updating lesson")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.Lesson{}, catalog.ErrLessonNotFound
	}
	return lesson, nil
}

func (repo catalogRepository) DeleteLesson(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM lesson WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return nil
}

// CreateSubscription leans on the (user_id, course_id) unique constraint so a
// duplicate subscribe is a no-op rather than an error.
func (repo catalogRepository) CreateSubscription(ctx context.Context, sub catalog.Subscription) (bool, error) {
	res, err := repo.db.ExecContext(ctx,
		`INSERT INTO subscription (id, user_id, course_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, course_id) DO NOTHING`,
		uuid.New().String(), sub.UserID, sub.CourseID, sub.CreatedAt.UTC(),
	)
	if err != nil {
		return false, errors.Wrap(err, "inserting subscription")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "inserting subscription")
	}
	return n > 0, nil
}

func (repo catalogRepository) DeleteSubscription(ctx context.Context, userID, courseID string) (bool, error) {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM subscription WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return false, errors.Wrap(err, "deleting subscription")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "deleting subscription")
	}
	return n > 0, nil
}

func (repo catalogRepository) SubscriptionExists(ctx context.Context, userID, courseID string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM subscription WHERE user_id = $1 AND course_id = $2)`, userID, courseID)
	if err != nil {
		return false, errors.Wrap(err, "checking subscription")
	}
	return exists, nil
}
