package testutil

import (
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/records"
	"github.com/trezcool/masomo-portal/core/user"
	inmemdb "github.com/trezcool/masomo-portal/storage/database/inmem"
)

// Backend is what the development records API runs on.
type Backend struct {
	DB         *inmemdb.DB
	Users      *user.Service
	Validate   *validator.Validate
	Translator ut.Translator
}

// SeedBackend opens an in-memory database over records.Seed and registers the demo accounts.
func SeedBackend(t *testing.T) Backend {
	db := inmemdb.OpenWith(records.Seed())
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	users := user.NewService(inmemdb.NewUserRepository(db), validate)
	if err := users.SeedDemoAccounts(); err != nil {
		t.Fatalf("SeedDemoAccounts() failed: %v", err)
	}
	return Backend{DB: db, Users: users, Validate: validate, Translator: translator}
}
