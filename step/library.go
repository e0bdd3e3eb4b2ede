package step

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Library wraps a step library instance so its methods can be called by name with the tags
// it declares through Tagged. Untagged methods are called straight through.
type Library struct {
	ec     *Context
	target reflect.Value
	tags   map[string]Tag
}

// Wrap binds lib to the scenario run. lib should implement Tagged; a value that does not is
// treated as a library of helpers only.
func (ec *Context) Wrap(lib interface{}) *Library {
	tags := map[string]Tag{}
	if tagged, ok := lib.(Tagged); ok {
		for name, tag := range tagged.StepTags() {
			tags[name] = tag
		}
	}
	return &Library{
		ec:     ec,
		target: reflect.ValueOf(lib),
		tags:   tags,
	}
}

// Tag returns the tag declared for method, or a helper tag.
func (l *Library) Tag(method string) Tag {
	if tag, ok := l.tags[method]; ok {
		return tag
	}
	return Tag{Kind: KindHelper}
}

// Call invokes method with args through the interceptor. It returns the method's non-error
// results, which are nil when the step body did not run.
func (l *Library) Call(method string, args ...interface{}) ([]interface{}, error) {
	m := l.target.MethodByName(method)
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	in, err := arguments(m.Type(), args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	tag := l.Tag(method)
	if tag.Description == "" {
		tag.Description = Humanize(method)
	}
	tag.Description = describe(tag.Description, args)

	var results []interface{}
	body := func() error {
		out := m.Call(in)
		var callErr error
		for _, v := range out {
			if v.Type() == errorType {
				if !v.IsNil() {
					callErr = v.Interface().(error)
				}
				continue
			}
			results = append(results, v.Interface())
		}
		return callErr
	}

	err = l.ec.interceptor.Invoke(l.ec, tag, body)
	return results, err
}

func arguments(t reflect.Type, args []interface{}) ([]reflect.Value, error) {
	n := t.NumIn()
	if t.IsVariadic() {
		if len(args) < n-1 {
			return nil, errors.Wrapf(ErrArgumentMismatch, "want at least %d arguments, got %d", n-1, len(args))
		}
	} else if len(args) != n {
		return nil, errors.Wrapf(ErrArgumentMismatch, "want %d arguments, got %d", n, len(args))
	}

	values := make([]reflect.Value, len(args))
	for i, arg := range args {
		var want reflect.Type
		if t.IsVariadic() && i >= n-1 {
			want = t.In(n - 1).Elem()
		} else {
			want = t.In(i)
		}
		if arg == nil {
			values[i] = reflect.Zero(want)
			continue
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(want) {
			if !v.Type().ConvertibleTo(want) || v.Kind() != want.Kind() {
				return nil, errors.Wrapf(ErrArgumentMismatch, "argument %d is %s, want %s", i, v.Type(), want)
			}
			v = v.Convert(want)
		}
		values[i] = v
	}
	return values, nil
}

// describe replaces {0}, {1}... in description with the matching arguments.
func describe(description string, args []interface{}) string {
	if !strings.Contains(description, "{") {
		return description
	}
	for i, arg := range args {
		description = strings.ReplaceAll(description, "{"+strconv.Itoa(i)+"}", fmt.Sprint(arg))
	}
	return description
}

// Humanize turns a method name such as "OpenLoginPage" into "Open login page".
func Humanize(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				b.WriteRune(' ')
			}
			if nextLower {
				r = unicode.ToLower(r)
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
