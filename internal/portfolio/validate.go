package portfolio

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/bettertrack/bettertrack/internal/model"
)

// ErrValidation marks every error produced by Validate.
var ErrValidation = errors.New("invalid portfolio")

// ValidationError describes a single problem found in a portfolio document.
type ValidationError struct {
	Field   string
	Message string
	Err     error // optional domain sentinel, e.g. model.ErrUnsupportedConfiguration
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is the full list of problems in a document.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(msgs, "; "))
}

// Unwrap exposes ErrValidation and any domain sentinels to errors.Is.
func (v ValidationErrors) Unwrap() []error {
	errs := []error{ErrValidation}
	for _, e := range v {
		if e.Err != nil {
			errs = append(errs, e.Err)
		}
	}
	return errs
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("account_type", func(fl validator.FieldLevel) bool {
		return model.AccountType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("asset_type", func(fl validator.FieldLevel) bool {
		return model.AssetType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("liability_type", func(fl validator.FieldLevel) bool {
		return model.LiabilityType(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks the whole document. It returns ValidationErrors (which
// matches ErrValidation) listing every problem found.
func (p *PortfolioConfig) Validate() error {
	var errs ValidationErrors

	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Field:   strings.TrimPrefix(fe.Namespace(), "PortfolioConfig."),
				Message: describe(fe),
			})
		}
	}

	ids := make(map[string]int, len(p.Accounts))
	for i, acct := range p.Accounts {
		if acct.ID == "" {
			continue
		}
		if j, dup := ids[acct.ID]; dup {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("accounts[%d].id", i),
				Message: fmt.Sprintf("duplicate of accounts[%d]", j),
			})
			continue
		}
		ids[acct.ID] = i
	}

	for i, acct := range p.Accounts {
		errs = append(errs, validateAccount(i, acct)...)

		if acct.ConnectedBank == "" {
			continue
		}
		field := fmt.Sprintf("accounts[%d].connected_bank", i)
		j, ok := ids[acct.ConnectedBank]
		switch {
		case !ok:
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("unknown account %q", acct.ConnectedBank)})
		case j == i:
			errs = append(errs, ValidationError{Field: field, Message: "account cannot connect to itself"})
		case !p.Accounts[j].Type.IsBank():
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("%s account is not a bank", p.Accounts[j].Type)})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateAccount(i int, acct AccountConfig) []ValidationError {
	var errs []ValidationError
	prefix := fmt.Sprintf("accounts[%d]", i)

	tickers := make(map[string]bool)
	debts := 0
	for k, h := range acct.Holdings {
		field := fmt.Sprintf("%s.acc_holdings[%d]", prefix, k)
		switch {
		case h.Asset != nil && h.Debt != nil:
			errs = append(errs, ValidationError{Field: field, Message: "holding is both an asset and a debt"})
		case h.Asset == nil && h.Debt == nil:
			errs = append(errs, ValidationError{Field: field, Message: "empty holding"})
		case h.Asset != nil:
			t := model.NormalizeTicker(h.Asset.Ticker)
			if tickers[t] {
				errs = append(errs, ValidationError{Field: field + ".ticker", Message: fmt.Sprintf("duplicate ticker %q", h.Asset.Ticker)})
			}
			tickers[t] = true
		default:
			debts++
		}
	}

	switch acct.Kind() {
	case model.KindAsset:
		if debts > 0 {
			errs = append(errs, ValidationError{Field: prefix, Message: "asset account cannot hold debts"})
		}
	case model.KindDebt:
		if len(tickers) > 0 {
			errs = append(errs, ValidationError{Field: prefix, Message: "debt account cannot hold assets"})
		}
		if !acct.Cash.IsZero() {
			errs = append(errs, ValidationError{Field: prefix + ".cash", Message: fmt.Sprintf("debt account cannot hold cash, got %s", acct.Cash)})
		}
		if debts > 1 {
			errs = append(errs, ValidationError{
				Field:   prefix,
				Message: fmt.Sprintf("%d debts in one account, at most one is supported", debts),
				Err:     model.ErrUnsupportedConfiguration,
			})
		}
	}
	return errs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	case "account_type", "asset_type", "liability_type":
		return fmt.Sprintf("unknown %s %q", strings.ReplaceAll(fe.Tag(), "_", " "), fe.Value())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
