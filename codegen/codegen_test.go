package codegen_test

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/evoludigit/elo/codegen"
	"github.com/evoludigit/elo/diag"
	"github.com/evoludigit/elo/elort"
	"github.com/evoludigit/elo/infer"
	"github.com/evoludigit/elo/internal/sandbox"
	"github.com/evoludigit/elo/optimize"
	"github.com/evoludigit/elo/parser"
	"github.com/evoludigit/elo/schema"
	"github.com/matryer/is"
)

func testContext(t *testing.T) *schema.TypeContext {
	t.Helper()
	c, err := schema.NewTypeContext(
		schema.Schema{
			Name: "User",
			Fields: []schema.Field{
				{Name: "age", Type: schema.Integer{}},
				{Name: "divisor", Type: schema.Integer{}},
				{Name: "score", Type: schema.Float{}},
				{Name: "name", Type: schema.String{}},
				{Name: "email", Type: schema.String{}},
				{Name: "nickname", Type: schema.Option{Elem: schema.String{}}},
				{Name: "active", Type: schema.Boolean{}},
				{Name: "birth", Type: schema.Date{}},
				{Name: "created", Type: schema.DateTime{}},
				{Name: "ttl", Type: schema.Duration{}},
				{Name: "items", Type: schema.Array{Elem: schema.Custom{Name: "Item"}}},
				{Name: "tags", Type: schema.Array{Elem: schema.String{}}},
				{Name: "meta", Type: schema.Unknown{}},
				{Name: "address", Type: schema.Option{Elem: schema.Custom{Name: "Address"}}},
			},
		},
		schema.Schema{
			Name: "Item",
			Fields: []schema.Field{
				{Name: "quantity", Type: schema.Integer{}},
				{Name: "price", Type: schema.Float{}},
				{Name: "sku", Type: schema.String{}},
			},
		},
		schema.Schema{
			Name:   "Address",
			Fields: []schema.Field{{Name: "city", Type: schema.String{}}},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// generate runs the compiler stages on src and returns a file that declares
// the validator and the test types.
func generate(t *testing.T, src string, opts ...codegen.Option) string {
	t.Helper()
	out, err := tryGenerate(t, src, opts...)
	if err != nil {
		t.Fatalf("generating %q: %v", src, err)
	}
	return out
}

func tryGenerate(t *testing.T, src string, opts ...codegen.Option) (string, error) {
	t.Helper()
	ctx := testContext(t)
	e, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parsing %q: %v", src, err)
	}
	info, err := infer.Infer(e, ctx, "User")
	if err != nil {
		t.Fatalf("checking %q: %v", src, err)
	}
	if opt := optimize.Optimize(e, info); opt != e {
		e = opt
		if info, err = infer.Infer(e, ctx, "User"); err != nil {
			t.Fatalf("checking optimized %q: %v", src, err)
		}
	}
	opts = append([]codegen.Option{codegen.WithTypes(ctx), codegen.WithSource(src)}, opts...)
	return codegen.Generate(e, info, "ValidateUser", "User", opts...)
}

func load(t *testing.T, src string) *sandbox.Validator {
	t.Helper()
	v, err := sandbox.Load(context.Background(), src, "ValidateUser", "User")
	if err != nil {
		t.Fatalf("loading generated code: %v\n%s", err, src)
	}
	return v
}

// validate checks one JSON document and returns the failed rule names.
func validate(t *testing.T, v *sandbox.Validator, doc string) []string {
	t.Helper()
	errs, err := v.Validate([]byte(doc))
	if err != nil {
		t.Fatalf("validating %s: %v", doc, err)
	}
	var rules []string
	for _, e := range errs {
		rules = append(rules, e.Rule)
	}
	return rules
}

func TestAgeCheck(t *testing.T) {
	is := is.New(t)
	src := generate(t, "age >= 18")
	v := load(t, src)

	errs, err := v.Validate([]byte(`{"age": 17}`))
	is.NoErr(err)
	is.Equal(errs, elort.ValidationErrors{{Path: "age", Rule: "age_check", Message: "expected age >= 18"}})

	errs, err = v.Validate([]byte(`{"age": 18}`))
	is.NoErr(err)
	is.Equal(len(errs), 0)
}

func TestGeneratedShape(t *testing.T) {
	is := is.New(t)
	src := generate(t, "age >= 18")

	is.True(strings.HasPrefix(src, "// Code generated by elo. DO NOT EDIT."))
	is.True(strings.Contains(src, "package validators\n"))
	is.True(strings.Contains(src, "// ValidateUser validates User against: age >= 18\n"))
	is.True(strings.Contains(src, "func ValidateUser(input *User) error {"))
	is.True(strings.Contains(src, "if !(input.Age >= 18) {"))
	is.True(strings.Contains(src, `"github.com/evoludigit/elo/elort"`))
	is.True(!strings.Contains(src, `"regexp"`)) // no pattern table without patterns
	is.True(!strings.Contains(src, "eloPatterns"))
}

func TestPackageOption(t *testing.T) {
	is := is.New(t)
	src := generate(t, "age >= 18", codegen.WithPackage("rules"))
	is.True(strings.Contains(src, "package rules\n"))
}

func TestIndependentChecks(t *testing.T) {
	is := is.New(t)
	v := load(t, generate(t, `age >= 18 && email matches "^[^@]+@[^@]+$" && active`))

	is.Equal(validate(t, v, `{"age": 17, "email": "nope"}`), []string{"age_check", "email_check", "active_check"})
	is.Equal(validate(t, v, `{"age": 30, "email": "a@b.c", "active": true}`), []string(nil))
	is.Equal(validate(t, v, `{"age": 30, "email": "a@b.c"}`), []string{"active_check"})
}

func TestMessages(t *testing.T) {
	is := is.New(t)
	v := load(t, generate(t, `email matches "^[a-z]+$" && length(name) > 2`))
	errs, err := v.Validate([]byte(`{"email": "X", "name": "al"}`))
	is.NoErr(err)
	is.Equal(len(errs), 2)
	is.Equal(errs[0].Message, `expected email matches "^[a-z]+$"`)
	is.Equal(errs[1].Path, "name")
	is.Equal(errs[1].Message, "expected length(name) > 2")
}

func TestAllItems(t *testing.T) {
	is := is.New(t)
	v := load(t, generate(t, "all(items, quantity > 0)"))

	is.Equal(validate(t, v, `{"items": [{"quantity": 1}, {"quantity": 3}]}`), []string(nil))
	is.Equal(validate(t, v, `{"items": [{"quantity": 1}, {"quantity": 0}]}`), []string{"items_check"})
	is.Equal(validate(t, v, `{"items": []}`), []string(nil)) // vacuously true

	piped := load(t, generate(t, "items |> all(quantity > 0)"))
	is.Equal(validate(t, piped, `{"items": [{"quantity": 1}, {"quantity": 0}]}`), []string{"items_check"})
	is.Equal(validate(t, piped, `{"items": [{"quantity": 2}]}`), []string(nil))
}

func TestQuantifiers(t *testing.T) {
	cases := map[string]struct {
		rule string
		doc  string
		pass bool
	}{
		"any lambda":         {`any(tags, fn(t ~> t == "vip"))`, `{"tags": ["new", "vip"]}`, true},
		"any lambda fails":   {`any(tags, fn(t ~> t == "vip"))`, `{"tags": ["new"]}`, false},
		"any empty":          {`any(tags, fn(t ~> t == "vip"))`, `{}`, false},
		"all element fields": {`all(items, price > 0.5 && sku != "")`, `{"items": [{"price": 1, "sku": "a"}]}`, true},
		"unused parameter":   {`all(items, fn(i ~> true))`, `{"items": [{}]}`, true},
		"nested":             {`any(items, fn(i ~> any(tags, fn(t ~> t == i.sku))))`, `{"items": [{"sku": "b"}], "tags": ["a", "b"]}`, true},
		"contains":           {`contains(tags, "vip")`, `{"tags": ["vip"]}`, true},
		"contains fails":     {`contains(tags, "vip")`, `{"tags": ["x"]}`, false},
	}

	for key, c := range cases {
		v := load(t, generate(t, c.rule))
		got := validate(t, v, c.doc)
		if (len(got) == 0) != c.pass {
			t.Errorf("case %s: wanted pass=%t, got failures %v", key, c.pass, got)
		}
	}
}

func TestPatterns(t *testing.T) {
	is := is.New(t)
	src := generate(t, `name matches "^a" && email matches "^a" && name matches "(a+)+" && name matches "(["`)
	is.True(strings.Contains(src, "var eloPatterns = [...]*regexp.Regexp{"))
	is.Equal(strings.Count(src, "elort.CompilePattern("), 3) // identical patterns share an entry

	v := load(t, src)
	// Nested repetition and invalid patterns never match, and never panic.
	errs, err := v.Validate([]byte(`{"name": "aaaa", "email": "a@b"}`))
	is.NoErr(err)
	is.Equal(len(errs), 2)
	is.Equal(errs[0].Message, `expected name matches "(a+)+"`)
	is.Equal(errs[1].Message, `expected name matches "(["`)
}

func TestDynamicPattern(t *testing.T) {
	is := is.New(t)
	src := generate(t, `name matches email`)
	is.True(strings.Contains(src, "elort.Matches(input.Name, input.Email)"))

	v := load(t, src)
	is.Equal(validate(t, v, `{"name": "abc", "email": "b"}`), []string(nil))
	is.Equal(validate(t, v, `{"name": "abc", "email": "x"}`), []string{"name_check"})
}

// TestShortCircuit counts the regular expression matches made by a check:
// the right operand of || runs only when the left one is false.
func TestShortCircuit(t *testing.T) {
	is := is.New(t)
	src := generate(t, `age >= 18 || name matches "^a"`)
	is.True(strings.Contains(src, "elort.Match(eloPatterns[0], input.Name)"))

	src = strings.Replace(src, "elort.Match(", "countMatch(", 1) + `
var matchCalls int

func countMatch(re *regexp.Regexp, s string) bool {
	matchCalls++
	return elort.Match(re, s)
}

func MatchCalls() int { return matchCalls }
`
	v := load(t, src)
	calls := func() int {
		fn, err := v.Symbol("MatchCalls")
		is.NoErr(err)
		return fn.Interface().(func() int)()
	}

	is.Equal(validate(t, v, `{"age": 20, "name": "bob"}`), []string(nil))
	is.Equal(calls(), 0)

	is.Equal(validate(t, v, `{"age": 10, "name": "bob"}`), []string{"age_check"})
	is.Equal(calls(), 1)
}

func TestDeterministic(t *testing.T) {
	is := is.New(t)
	rule := `age >= 18 && email matches "^x" && all(items, quantity > 0) && any(tags, fn(t ~> t matches "^v"))`
	first := generate(t, rule)
	for i := 0; i < 5; i++ {
		is.Equal(generate(t, rule), first)
	}
}

func TestNilInput(t *testing.T) {
	is := is.New(t)
	v := load(t, generate(t, "age >= 18"))
	errs, err := v.ValidateNil()
	is.NoErr(err)
	is.Equal(len(errs), 1)
	is.Equal(errs[0].Rule, "input_check")
}

func TestPartialOperations(t *testing.T) {
	cases := map[string]struct {
		rule string
		doc  string
		pass bool
	}{
		"division":             {"age / divisor >= 1", `{"age": 5, "divisor": 1}`, true},
		"division by zero":     {"age / divisor >= 1", `{"age": 5, "divisor": 0}`, false},
		"modulo by zero":       {"age % divisor == 0", `{"age": 5}`, false},
		"literal zero":         {"age / 0 == 1", `{"age": 5}`, false},
		"power out of range":   {"2 ^ age > 0", `{"age": 100}`, false},
		"power":                {"2 ^ age == 8", `{"age": 3}`, true},
		"bad date":             {"date(name) < today", `{"name": "yesterday"}`, false},
		"good date":            {"date(name) < today", `{"name": "2001-02-03"}`, true},
		"abs of min int":       {"abs(age) > 0", `{"age": -9223372036854775808}`, false},
		"constant overflow":    {"9223372036854775807 + 1 < 0 || age > 0", `{"age": 1}`, true},
		"duration by zero":     {"ttl / divisor > @PT1S", `{"ttl": 5000000000}`, false},
		"float division by 0":  {"score / 0.0 > 1.0", `{"score": 1}`, true},
		"guarded let":          {"let r = age / divisor in r > 1", `{"age": 4, "divisor": 0}`, false},
		"guarded let succeeds": {"let r = age / divisor in r > 1", `{"age": 4, "divisor": 2}`, true},
	}

	for key, c := range cases {
		v := load(t, generate(t, c.rule))
		got, err := v.Validate([]byte(c.doc))
		if err != nil {
			t.Errorf("case %s: %v", key, err)
			continue
		}
		if (len(got) == 0) != c.pass {
			t.Errorf("case %s: wanted pass=%t, got %v", key, c.pass, got)
		}
	}
}

func TestGuard(t *testing.T) {
	is := is.New(t)
	v := load(t, generate(t, "guard is_some(nickname) in length(nickname) > 2"))

	errs, err := v.Validate([]byte(`{}`))
	is.NoErr(err)
	is.Equal(errs, elort.ValidationErrors{{Path: "nickname", Rule: "nickname_check", Message: "precondition failed: is_some(nickname)"}})

	errs, err = v.Validate([]byte(`{"nickname": "bo"}`))
	is.NoErr(err)
	is.Equal(errs, elort.ValidationErrors{{Path: "nickname", Rule: "nickname_check", Message: "expected length(nickname) > 2"}})

	is.Equal(validate(t, v, `{"nickname": "bob"}`), []string(nil))
}

// A conjunct that relies on an earlier one for presence only runs when the
// earlier one holds.
func TestNarrowedConjuncts(t *testing.T) {
	is := is.New(t)
	v := load(t, generate(t, `is_some(nickname) && length(nickname) > 2 && is_some(address) && address.city != ""`))

	is.Equal(validate(t, v, `{}`), []string{"nickname_check", "address_check"})
	is.Equal(validate(t, v, `{"nickname": "bo", "address": {"city": ""}}`), []string{"nickname_check", "address_city_check"})
	is.Equal(validate(t, v, `{"nickname": "bob", "address": {"city": "Oslo"}}`), []string(nil))
}

// A conjunct that narrows its own optional values is independent of the
// checks before it.
func TestSelfNarrowedConjuncts(t *testing.T) {
	cases := map[string]struct {
		rule string
		doc  string
		want []string
	}{
		"guard":        {`age > 1 && guard is_some(address) in address.city == "x"`, `{"age": 0}`, []string{"age_check", "address_check"}},
		"guard passes": {`age > 1 && guard is_some(address) in address.city == "x"`, `{"age": 0, "address": {"city": "x"}}`, []string{"age_check"}},
		"if":           {`age > 1 && (if is_some(nickname) then length(nickname) > 3 else false)`, `{"age": 0}`, []string{"age_check", "nickname_check"}},
		"if present":   {`age > 1 && (if is_some(nickname) then length(nickname) > 3 else false)`, `{"age": 0, "nickname": "bo"}`, []string{"age_check", "nickname_check"}},
		"left narrows": {`is_some(nickname) && age > 1 && length(nickname) > 3`, `{"age": 0}`, []string{"nickname_check", "age_check"}},
	}

	for key, c := range cases {
		v := load(t, generate(t, c.rule))
		got := validate(t, v, c.doc)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("case %s: wanted %v, got %v", key, c.want, got)
		}
	}
}

func TestLetPaths(t *testing.T) {
	is := is.New(t)

	v := load(t, generate(t, `let n = age + 1 in n > 18`))
	is.Equal(validate(t, v, `{"age": 1}`), []string{"age_check"})
	is.Equal(validate(t, v, `{"age": 30}`), []string(nil))

	v = load(t, generate(t, `let a = address in is_some(a) && a.city == "x"`))
	is.Equal(validate(t, v, `{}`), []string{"address_check"})
	is.Equal(validate(t, v, `{"address": {"city": "y"}}`), []string{"address_city_check"})
}

func TestOptionalValues(t *testing.T) {
	cases := map[string]struct {
		rule string
		doc  string
		pass bool
	}{
		"equal absent":        {`nickname == "bob"`, `{}`, false},
		"equal present":       {`nickname == "bob"`, `{"nickname": "bob"}`, true},
		"not equal absent":    {`nickname != "bob"`, `{}`, true},
		"is null":             {`nickname == null`, `{}`, true},
		"is not null":         {`nickname != null`, `{"nickname": ""}`, true},
		"fallback":            {`(nickname ?| name) == "al"`, `{"name": "al"}`, true},
		"fallback unused":     {`(nickname ?| name) == "al"`, `{"name": "al", "nickname": "x"}`, false},
		"is_null non-option":  {`is_null(name)`, `{}`, false},
		"is_some non-option":  {`is_some(name)`, `{}`, true},
		"if with narrowing":   {`if is_some(nickname) then length(nickname) > 1 else true`, `{"nickname": "a"}`, false},
		"if absent":           {`if is_some(nickname) then length(nickname) > 1 else true`, `{}`, true},
		"is_string on option": {`is_string(nickname)`, `{"nickname": "a"}`, true},
	}

	for key, c := range cases {
		v := load(t, generate(t, c.rule))
		got := validate(t, v, c.doc)
		if (len(got) == 0) != c.pass {
			t.Errorf("case %s: wanted pass=%t, got %v", key, c.pass, got)
		}
	}
}

func TestTemporal(t *testing.T) {
	cases := map[string]struct {
		rule string
		doc  string
		pass bool
	}{
		"age":               {"age(birth) >= 18", `{"birth": "2000-01-01T00:00:00Z"}`, true},
		"age too young":     {"age(birth) >= 18", `{"birth": "2100-01-01T00:00:00Z"}`, false},
		"before now":        {"created < now", `{"created": "2001-01-01T10:00:00Z"}`, true},
		"literal date":      {"birth >= @2000-01-01", `{"birth": "2000-01-01T00:00:00Z"}`, true},
		"literal before":    {"birth >= @2000-01-01", `{"birth": "1999-12-31T00:00:00Z"}`, false},
		"date arithmetic":   {"birth + @P1D == @2000-01-02", `{"birth": "2000-01-01T00:00:00Z"}`, true},
		"datetime equality": {"created == @2001-01-01T10:00:00Z", `{"created": "2001-01-01T12:00:00+02:00"}`, true},
		"duration":          {"ttl > @PT1H", `{"ttl": 7200000000000}`, true},
		"days_since":        {"days_since(created) > 30", `{"created": "2001-01-01T10:00:00Z"}`, true},
		"time difference":   {"now - created > @P1D", `{"created": "2001-01-01T10:00:00Z"}`, true},
	}

	for key, c := range cases {
		v := load(t, generate(t, c.rule))
		got := validate(t, v, c.doc)
		if (len(got) == 0) != c.pass {
			t.Errorf("case %s: wanted pass=%t, got %v", key, c.pass, got)
		}
	}
}

func TestUnknownValues(t *testing.T) {
	cases := map[string]struct {
		rule string
		doc  string
		pass bool
	}{
		"compare":         {"meta.level > 3", `{"meta": {"level": 5}}`, true},
		"compare fails":   {"meta.level > 3", `{"meta": {"level": 1}}`, false},
		"missing":         {"meta.level > 3", `{}`, false},
		"equal":           {`meta.kind == "a"`, `{"meta": {"kind": "a"}}`, true},
		"arithmetic":      {"meta.level + 1 == 6", `{"meta": {"level": 5}}`, true},
		"null":            {"is_null(meta.level)", `{"meta": {}}`, true},
		"string function": {`starts_with(meta.kind, "a")`, `{"meta": {"kind": "abc"}}`, true},
		"length":          {"length(meta.list) == 2", `{"meta": {"list": [1, 2]}}`, true},
		"truthy":          {"meta.flag", `{"meta": {"flag": true}}`, true},
		"type test":       {"is_number(meta.level)", `{"meta": {"level": "x"}}`, false},
		"any over value":  {"any(meta.list, fn(x ~> x == 2))", `{"meta": {"list": [1, 2]}}`, true},
		"fallback":        {"(meta.level ?| 0) == 0", `{}`, true},
	}

	for key, c := range cases {
		v := load(t, generate(t, c.rule))
		got := validate(t, v, c.doc)
		if (len(got) == 0) != c.pass {
			t.Errorf("case %s: wanted pass=%t, got %v", key, c.pass, got)
		}
	}
}

func TestExpressions(t *testing.T) {
	cases := map[string]struct {
		rule string
		doc  string
		pass bool
	}{
		"let":              {"let limit = age * 2 in limit > 30 && limit < 100", `{"age": 20}`, true},
		"let fails":        {"let limit = age * 2 in limit > 30", `{"age": 10}`, false},
		"unused let":       {"let x = 1 in age > 0", `{"age": 1}`, true},
		"nested let":       {"age > 0 || (let d = age * 2 in d == -4)", `{"age": -2}`, true},
		"if":               {`(if active then "on" else "off") == "on"`, `{"active": true}`, true},
		"mixed numbers":    {"score > age", `{"score": 2.5, "age": 2}`, true},
		"widened equality": {"score == age", `{"score": 2, "age": 2}`, true},
		"float power":      {"score ^ 2.0 == 6.25", `{"score": 2.5}`, true},
		"negative literal": {"age > -5", `{"age": -2}`, true},
		"string concat":    {`name + "!" == "hi!"`, `{"name": "hi"}`, true},
		"array literal":    {`contains(["a", "b"], name)`, `{"name": "b"}`, true},
		"math":             {"max(age, 3) == 3 && round(score) == 3", `{"age": 1, "score": 2.6}`, true},
		"min mixed":        {"min(score, age) == 1.5", `{"age": 3, "score": 1.5}`, true},
		"string functions": {`uppercase(trim(name)) == "AL" && ends_with(email, ".org")`, `{"name": " al ", "email": "a@b.org"}`, true},
		"unicode length":   {`length(name) == 2`, `{"name": "né"}`, true},
		"guard in expr":    {"active || (guard is_some(nickname) in length(nickname) > 1)", `{}`, false},
		"not":              {"!active", `{"active": false}`, true},
	}

	for key, c := range cases {
		v := load(t, generate(t, c.rule))
		got := validate(t, v, c.doc)
		if (len(got) == 0) != c.pass {
			t.Errorf("case %s: wanted pass=%t, got %v", key, c.pass, got)
		}
	}
}

func TestRuleNames(t *testing.T) {
	is := is.New(t)
	v := load(t, generate(t, `is_some(address) && address.city != "" && now < @2000-01-01T00:00:00Z`))
	errs, err := v.Validate([]byte(`{"address": {"city": ""}}`))
	is.NoErr(err)
	is.Equal(len(errs), 2)
	is.Equal(errs[0].Path, "address.city")
	is.Equal(errs[0].Rule, "address_city_check")
	is.Equal(errs[1].Path, "")
	is.Equal(errs[1].Rule, "validate_user_check") // no field: named after the function
}

func TestGenerateErrors(t *testing.T) {
	ctx := testContext(t)
	e, err := parser.Parse("age > 1")
	if err != nil {
		t.Fatal(err)
	}
	info, err := infer.Infer(e, ctx, "User")
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]struct {
		fn, input string
		opts      []codegen.Option
	}{
		"unexported function": {fn: "validateUser", input: "User"},
		"not an identifier":   {fn: "Validate-User", input: "User"},
		"wrong input type":    {fn: "ValidateUser", input: "Item"},
		"bad package":         {fn: "ValidateUser", input: "User", opts: []codegen.Option{codegen.WithPackage("my-pkg")}},
	}

	for key, c := range cases {
		_, err := codegen.Generate(e, info, c.fn, c.input, c.opts...)
		var d *diag.Diagnostic
		if !errors.As(err, &d) {
			t.Errorf("case %s: wanted a diagnostic, got %v", key, err)
			continue
		}
		if d.Kind != diag.CodeGenError {
			t.Errorf("case %s: wanted a codegen error, got %s", key, d.Kind)
		}
	}
}

func TestStrictUnknown(t *testing.T) {
	is := is.New(t)
	_, err := tryGenerate(t, "meta.level > 3", codegen.WithStrictUnknown())
	var d *diag.Diagnostic
	is.True(errors.As(err, &d))
	is.Equal(d.Kind, diag.TypeError)
	is.Equal(d.Code, diag.UnresolvedType)

	_, err = tryGenerate(t, "age > 3", codegen.WithStrictUnknown())
	is.NoErr(err)
}

func TestGenerateTypes(t *testing.T) {
	is := is.New(t)
	src, err := codegen.GenerateTypes(testContext(t), "models")
	is.NoErr(err)

	is.True(strings.Contains(src, "package models\n"))
	is.True(strings.Contains(src, `"time"`))
	for _, want := range []string{
		`type User struct {`,
		`Nickname\s+\*string\s+` + "`" + `json:"nickname,omitempty"` + "`",
		`Items\s+\[\]Item\s+` + "`" + `json:"items"` + "`",
		`Birth\s+time\.Time\s+`,
		`Meta\s+any\s+`,
		`type Item struct {`,
		`type Address struct {`,
	} {
		if !regexp.MustCompile(want).MatchString(src) {
			t.Errorf("missing %s in\n%s", want, src)
		}
	}

	_, err = codegen.GenerateTypes(testContext(t), "not valid")
	is.True(err != nil)
}
