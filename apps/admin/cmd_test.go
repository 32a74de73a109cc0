package main

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/darasa-app/darasa/core/access"
	inmemdb "github.com/darasa-app/darasa/storage/database/inmem"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	db := inmemdb.NewDB()
	return &commandLine{
		usrRepo: inmemdb.NewUserRepository(db),
		catRepo: inmemdb.NewCatalogRepository(db),
		payRepo: inmemdb.NewPaymentRepository(db),
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	migrateFunc = func(db *sqlx.DB) error { return nil }

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate", args: []string{"migrate"}},
		{name: "addsuperuser: no email", args: []string{"addsuperuser"}, wantErr: errHelp},
		{name: "addsuperuser: no password", args: []string{"addsuperuser", "-email", "boss@test.cd"}, wantErr: errHelp},
		{name: "addsuperuser", args: []string{"addsuperuser", "-email", "boss@test.cd"}, pwd: "passer123"},
		{name: "seed", args: []string{"seed"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addSuperuser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	// creates a fresh account
	if err := cli.addSuperuser("Boss@Test.CD", "passer123"); err != nil {
		t.Fatalf("addSuperuser(): %v", err)
	}
	usr, err := cli.usrRepo.GetUserByEmail(ctx, "boss@test.cd")
	if err != nil {
		t.Fatalf("GetUserByEmail(): %v", err)
	}
	if !usr.IsSuperuser || !usr.IsStaff || !usr.IsActive {
		t.Errorf("flags not set: %+v", usr)
	}
	if err = usr.CheckPassword("passer123"); err != nil {
		t.Error("password not set")
	}

	// promotes an existing account, same email
	if err = cli.addSuperuser("boss@test.cd", "newpass456"); err != nil {
		t.Fatalf("addSuperuser(): %v", err)
	}
	again, err := cli.usrRepo.GetUserByEmail(ctx, "boss@test.cd")
	if err != nil {
		t.Fatalf("GetUserByEmail(): %v", err)
	}
	if again.ID != usr.ID {
		t.Errorf("expected update, got a new account: %s != %s", again.ID, usr.ID)
	}
	if err = again.CheckPassword("newpass456"); err != nil {
		t.Error("password not updated")
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)

	if err := cli.seed(); err != nil {
		t.Fatalf("seed(): %v", err)
	}

	mod, err := cli.usrRepo.GetUserByEmail(context.Background(), "moderator@darasa.app")
	if err != nil {
		t.Fatalf("GetUserByEmail(): %v", err)
	}
	if mod.Role != access.RoleModerator {
		t.Errorf("Role = %v, want moderator", mod.Role)
	}
}
