package dispatch

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

func noopCommand(_ context.Context, _ *telegram.Update, _ *string) (any, error) {
	return nil, nil
}

func textUpdate(text string) *telegram.Update {
	return &telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			MessageID: 10,
			Chat:      &telegram.Chat{ID: 100},
			Text:      text,
		},
	}
}

func TestCommandFilter_Variants(t *testing.T) {
	f := NewCommandFilter("foo", "bot", noopCommand)
	got := f.CommandStrings()

	for _, want := range []string{"/foo", "command:///foo", "/foo@bot", "command:///foo@bot"} {
		if !slices.Contains(got, want) {
			t.Errorf("missing variant %q in %v", want, got)
		}
	}
}

func TestCommandFilter_NoUsernameVariants(t *testing.T) {
	f := NewCommandFilter("foo", "", noopCommand)
	got := f.CommandStrings()

	if !slices.Contains(got, "/foo") {
		t.Errorf("missing /foo in %v", got)
	}
	for _, s := range got {
		if s == "/foo@bot" {
			t.Error("username variant present without a username")
		}
	}
}

func TestCommandFilter_CacheInvalidatedOnWrite(t *testing.T) {
	f := NewCommandFilter("foo", "", noopCommand)
	f.SetUsername("mybot")

	if got := f.CommandStrings(); !slices.Contains(got, "/foo@mybot") {
		t.Errorf("cache not rebuilt after SetUsername: %v", got)
	}

	f.SetCommand("bar")
	got := f.CommandStrings()
	if !slices.Contains(got, "/bar@mybot") || slices.Contains(got, "/foo") {
		t.Errorf("cache not rebuilt after SetCommand: %v", got)
	}
}

func TestCommandFilter_Match(t *testing.T) {
	f := NewCommandFilter("foo", "", noopCommand)

	match, err := f.Match(textUpdate("/foo"))
	if err != nil {
		t.Fatalf("bare command: %v", err)
	}
	if match != nil {
		t.Errorf("bare command result = %v, want nil", match)
	}

	match, err = f.Match(textUpdate("/foo bar baz"))
	if err != nil {
		t.Fatalf("command with args: %v", err)
	}
	if match != "bar baz" {
		t.Errorf("args = %v, want %q", match, "bar baz")
	}

	if _, err := f.Match(textUpdate("/foobar")); !errors.Is(err, ErrNoMatch) {
		t.Errorf("/foobar must not match: %v", err)
	}
	if _, err := f.Match(textUpdate("foo")); !errors.Is(err, ErrNoMatch) {
		t.Errorf("missing slash must not match: %v", err)
	}
	if _, err := f.Match(&telegram.Update{UpdateID: 1}); !errors.Is(err, ErrNoMatch) {
		t.Errorf("update without message must not match: %v", err)
	}
}

func TestCommandFilter_MatchAtVariant(t *testing.T) {
	f := NewCommandFilter("start", "helper_bot", noopCommand)

	if _, err := f.Match(textUpdate("/start@helper_bot")); err != nil {
		t.Errorf("username-suffixed command must match: %v", err)
	}
	if _, err := f.Match(textUpdate("/start@other_bot")); !errors.Is(err, ErrNoMatch) {
		t.Errorf("foreign bot suffix must not match: %v", err)
	}
}

func TestUpdateFilter_RequiredFields(t *testing.T) {
	fn := func(_ context.Context, _ *telegram.Update) (any, error) { return nil, nil }

	all := NewUpdateFilter(fn)
	if _, err := all.Match(&telegram.Update{}); err != nil {
		t.Errorf("no required fields must match all: %v", err)
	}

	f := NewUpdateFilter(fn, "callback_query")
	if _, err := f.Match(textUpdate("hi")); !errors.Is(err, ErrNoMatch) {
		t.Errorf("missing callback_query must not match: %v", err)
	}
	u := &telegram.Update{CallbackQuery: &telegram.CallbackQuery{ID: "1"}}
	if _, err := f.Match(u); err != nil {
		t.Errorf("present callback_query must match: %v", err)
	}
}

func TestMessageFilter_RequiredMessageFields(t *testing.T) {
	fn := func(_ context.Context, _ *telegram.Update, _ *telegram.Message) (any, error) {
		return nil, nil
	}

	f := NewMessageFilter(fn, "photo")
	if _, err := f.Match(textUpdate("hi")); !errors.Is(err, ErrNoMatch) {
		t.Errorf("text message must not match photo filter: %v", err)
	}

	u := &telegram.Update{Message: &telegram.Message{
		Chat:  &telegram.Chat{ID: 1},
		Photo: []telegram.PhotoSize{{FileID: "p"}},
	}}
	if _, err := f.Match(u); err != nil {
		t.Errorf("photo message must match: %v", err)
	}

	if _, err := f.Match(&telegram.Update{InlineQuery: &telegram.InlineQuery{ID: "q"}}); !errors.Is(err, ErrNoMatch) {
		t.Errorf("message filter requires a message: %v", err)
	}
}
