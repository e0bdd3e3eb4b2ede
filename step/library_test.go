package step

import (
	"context"
	"errors"
	"testing"

	"github.com/hairizuan-noorazman/steprunner/outcome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginSteps struct {
	lib      *Library
	typed    []string
	attempts int
}

func (s *loginSteps) StepTags() map[string]Tag {
	return map[string]Tag{
		"OpenLoginPage": Step(""),
		"TypeUsername":  Step("type username {0}"),
		"ClickSubmit":   Step("click submit"),
		"VerifyURL":     Step(""),
		"ResetPassword": Step("reset password").Pending(),
		"LegacyCheck":   Step("legacy check").Ignored(),
		"LoginAs":       Group("log in as {0}"),
	}
}

func (s *loginSteps) OpenLoginPage() error {
	return nil
}

func (s *loginSteps) TypeUsername(name string) error {
	s.typed = append(s.typed, name)
	return nil
}

func (s *loginSteps) ClickSubmit() error {
	s.attempts++
	return errors.New("submit button not found")
}

func (s *loginSteps) VerifyURL() error {
	return nil
}

func (s *loginSteps) ResetPassword() error {
	s.attempts++
	return nil
}

func (s *loginSteps) LegacyCheck() error {
	s.attempts++
	return nil
}

func (s *loginSteps) LoginAs(name string) error {
	if _, err := s.lib.Call("TypeUsername", name); err != nil {
		return err
	}
	_, err := s.lib.Call("ClickSubmit")
	return err
}

// Credentials is a helper: it has no tag.
func (s *loginSteps) Credentials(name string, retries int) (string, int, error) {
	if name == "" {
		return "", 0, errors.New("no user")
	}
	return name + ":secret", retries, nil
}

func newLibrary(t *testing.T) (*Context, *loginSteps) {
	t.Helper()
	ec := newTestInterceptor().Begin(context.Background(), "login", nil)
	steps := &loginSteps{}
	steps.lib = ec.Wrap(steps)
	return ec, steps
}

func TestLibrary_TaggedStepsAreRecorded(t *testing.T) {
	ec, steps := newLibrary(t)

	for _, call := range []struct {
		method string
		args   []interface{}
	}{
		{"OpenLoginPage", nil},
		{"TypeUsername", []interface{}{"alice"}},
		{"ResetPassword", nil},
		{"LegacyCheck", nil},
		{"VerifyURL", nil},
	} {
		_, err := steps.lib.Call(call.method, call.args...)
		require.NoError(t, err)
	}

	out, err := finish(t, ec)
	require.NoError(t, err)

	var descriptions []string
	for _, r := range out.Records {
		descriptions = append(descriptions, r.Description)
	}
	assert.Equal(t, []string{"Open login page", "type username alice", "reset password", "legacy check", "Verify URL"}, descriptions)
	assert.Equal(t, []outcome.Result{
		outcome.ResultSuccess,
		outcome.ResultSuccess,
		outcome.ResultPending,
		outcome.ResultIgnored,
		outcome.ResultSuccess,
	}, results(out.Records))
	assert.Equal(t, []string{"alice"}, steps.typed)
	assert.Equal(t, 0, steps.attempts)
}

func TestLibrary_GroupMethod(t *testing.T) {
	ec, steps := newLibrary(t)

	_, err := steps.lib.Call("LoginAs", "bob")
	require.NoError(t, err)
	_, err = steps.lib.Call("VerifyURL")
	require.NoError(t, err)

	out, doneErr := finish(t, ec)
	assert.Error(t, doneErr)
	require.Len(t, out.Records, 2)

	group := out.Records[0]
	assert.Equal(t, "log in as bob", group.Description)
	assert.Equal(t, outcome.ResultFailure, group.Result)
	assert.Equal(t, []outcome.Result{outcome.ResultSuccess, outcome.ResultFailure}, results(group.Children))
	assert.Equal(t, outcome.ResultSkipped, out.Records[1].Result)
	assert.Equal(t, 1, steps.attempts)
}

func TestLibrary_HelpersCallThrough(t *testing.T) {
	ec, steps := newLibrary(t)

	got, err := steps.lib.Call("Credentials", "carol", 3)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"carol:secret", 3}, got)

	_, err = steps.lib.Call("Credentials", "", 1)
	assert.EqualError(t, err, "no user")

	out, doneErr := finish(t, ec)
	assert.NoError(t, doneErr)
	assert.Empty(t, out.Records)
}

func TestLibrary_CallErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		args   []interface{}
		want   error
	}{
		{"unknown method", "Logout", nil, ErrUnknownMethod},
		{"too few arguments", "TypeUsername", nil, ErrArgumentMismatch},
		{"too many arguments", "OpenLoginPage", []interface{}{"x"}, ErrArgumentMismatch},
		{"wrong type", "TypeUsername", []interface{}{42}, ErrArgumentMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec, steps := newLibrary(t)

			_, err := steps.lib.Call(tt.method, tt.args...)
			assert.ErrorIs(t, err, tt.want)

			out, _ := finish(t, ec)
			assert.Empty(t, out.Records)
		})
	}
}

func TestLibrary_Tag(t *testing.T) {
	_, steps := newLibrary(t)

	assert.Equal(t, KindStep, steps.lib.Tag("ClickSubmit").Kind)
	assert.Equal(t, KindGroup, steps.lib.Tag("LoginAs").Kind)
	assert.Equal(t, ModePending, steps.lib.Tag("ResetPassword").Mode)
	assert.Equal(t, KindHelper, steps.lib.Tag("Credentials").Kind)
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"OpenLoginPage", "Open login page"},
		{"VerifyURL", "Verify URL"},
		{"ParseHTMLBody", "Parse HTML body"},
		{"Step2Done", "Step2 done"},
		{"login", "login"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Humanize(tt.in))
		})
	}
}
