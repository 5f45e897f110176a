package sandbox

import (
	"context"
	"errors"
	"testing"

	"github.com/evoludigit/elo/elort"
	"github.com/matryer/is"
)

const account = `package checks

import "github.com/evoludigit/elo/elort"

type Account struct {
	Balance int64  ` + "`json:\"balance\"`" + `
	Owner   string ` + "`json:\"owner\"`" + `
}

func CheckAccount(input *Account) error {
	if input == nil {
		return elort.ValidationErrors{elort.ValidationError{Rule: "input_check", Message: "input is nil"}}
	}
	var errs elort.ValidationErrors
	if !(input.Balance >= 0) {
		errs.Add("balance", "balance_check", "expected balance >= 0")
	}
	if input.Owner == "panic" {
		panic("boom")
	}
	return errs.Err()
}

var Loaded = true
`

func TestValidate(t *testing.T) {
	is := is.New(t)
	v, err := Load(context.Background(), account, "CheckAccount", "Account")
	is.NoErr(err)

	errs, err := v.Validate([]byte(`{"balance": -1}`))
	is.NoErr(err)
	is.Equal(errs, elort.ValidationErrors{{Path: "balance", Rule: "balance_check", Message: "expected balance >= 0"}})

	errs, err = v.Validate([]byte(`{"balance": 5}`))
	is.NoErr(err)
	is.Equal(len(errs), 0)

	errs, err = v.ValidateNil()
	is.NoErr(err)
	is.Equal(errs[0].Rule, "input_check")
}

func TestValidateErrors(t *testing.T) {
	is := is.New(t)
	v, err := Load(context.Background(), account, "CheckAccount", "Account")
	is.NoErr(err)

	_, err = v.Validate([]byte(`{"balance": "lots"}`))
	is.True(errors.Is(err, ErrDecode))

	_, err = v.Validate([]byte(`{"owner": "panic"}`))
	is.True(errors.Is(err, ErrPanic))
}

func TestSymbol(t *testing.T) {
	is := is.New(t)
	v, err := Load(context.Background(), account, "CheckAccount", "Account")
	is.NoErr(err)

	loaded, err := v.Symbol("Loaded")
	is.NoErr(err)
	is.Equal(loaded.Interface(), true)

	_, err = v.Symbol("Missing")
	is.True(err != nil)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"no package clause": "func F() {}",
		"does not compile":  "package p\n\nfunc CheckAccount(input *Account) error { return undefined }\n",
	}

	for key, src := range cases {
		if _, err := Load(context.Background(), src, "CheckAccount", "Account"); err == nil {
			t.Errorf("case %s: wanted an error", key)
		}
	}
}
