package main

import (
	"context"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/access"
	"github.com/darasa-app/darasa/core/billing"
	"github.com/darasa-app/darasa/core/catalog"
	"github.com/darasa-app/darasa/core/user"
)

// seed loads a small demo dataset: a moderator, two members, a couple of
// courses with lessons, a subscription and some payments. Safe to run on an
// empty database only.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	now := time.Now().UTC()

	newUser := func(email, firstName string, role access.Role) (user.User, error) {
		usr := user.User{
			Email:     email,
			FirstName: firstName,
			Role:      role,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := usr.SetPassword("passer123"); err != nil {
			return user.User{}, err
		}
		return cli.usrRepo.CreateUser(ctx, usr)
	}

	moderator, err := newUser("moderator@darasa.app", "Mod", access.RoleModerator)
	if err != nil {
		return err
	}
	alice, err := newUser("alice@darasa.app", "Alice", access.RoleMember)
	if err != nil {
		return err
	}
	bob, err := newUser("bob@darasa.app", "Bob", access.RoleMember)
	if err != nil {
		return err
	}

	newCourse := func(owner user.User, title string, price core.Amount) (catalog.Course, error) {
		return cli.catRepo.CreateCourse(ctx, catalog.Course{
			Title:       title,
			Description: title + " from scratch.",
			Price:       price,
			Owner:       null.StringFrom(owner.ID),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	goCourse, err := newCourse(alice, "Go for backend developers", 15000_00)
	if err != nil {
		return err
	}
	pyCourse, err := newCourse(bob, "Python for data analysis", 12000_00)
	if err != nil {
		return err
	}

	for i, title := range []string{"Getting started", "Tooling", "Concurrency"} {
		if _, err = cli.catRepo.CreateLesson(ctx, catalog.Lesson{
			CourseID:    goCourse.ID,
			Title:       title,
			Description: fmt.Sprintf("Part %d of the series.", i+1),
			Position:    i + 1,
			VideoURL:    null.StringFrom("https://www.youtube.com/watch?v=demo"),
			Owner:       null.StringFrom(alice.ID),
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return err
		}
	}

	if _, err = cli.catRepo.CreateSubscription(ctx, catalog.Subscription{
		UserID:    bob.ID,
		CourseID:  goCourse.ID,
		CreatedAt: now,
	}); err != nil {
		return err
	}

	payments := []billing.Payment{
		{UserID: bob.ID, CourseID: null.StringFrom(goCourse.ID), Amount: 15000_00, PaymentMethod: billing.MethodTransfer, PaymentDate: now.AddDate(0, 0, -3)},
		{UserID: alice.ID, CourseID: null.StringFrom(pyCourse.ID), Amount: 12000_00, PaymentMethod: billing.MethodCash, PaymentDate: now.AddDate(0, 0, -1)},
	}
	for _, pmt := range payments {
		if _, err = cli.payRepo.CreatePayment(ctx, pmt); err != nil {
			return err
		}
	}

	fmt.Printf("seeded: moderator=%s members=%s,%s courses=%d payments=%d\n",
		moderator.Email, alice.Email, bob.Email, 2, len(payments))
	return nil
}
