package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/tinyland-inc/picorelay/pkg/messages"
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// captureAPI records every outbound request.
type captureAPI struct {
	requests []telegram.Request
	nextID   int64
}

func (c *captureAPI) Do(_ context.Context, req telegram.Request) (*telegram.Result, error) {
	c.requests = append(c.requests, req)
	c.nextID++
	return &telegram.Result{Message: &telegram.Message{MessageID: c.nextID}}, nil
}

func (c *captureAPI) texts() []string {
	var out []string
	for _, req := range c.requests {
		if req.Method == "sendMessage" {
			out = append(out, req.Params["text"].(string))
		}
	}
	return out
}

func TestDispatcher_CommandScenario(t *testing.T) {
	api := &captureAPI{}
	d := NewDispatcher(api)

	var gotArgs *string
	called := false
	d.OnCommand("start", "", func(_ context.Context, _ *telegram.Update, args *string) (any, error) {
		called = true
		gotArgs = args
		return "Welcome!", nil
	})

	d.ProcessUpdate(context.Background(), textUpdate("/start"))

	if !called {
		t.Fatal("handler not called")
	}
	if gotArgs != nil {
		t.Errorf("bare command args = %v, want nil", *gotArgs)
	}
	if got := api.texts(); len(got) != 1 || got[0] != "Welcome!" {
		t.Errorf("sends = %v", got)
	}
	if api.requests[0].Params["chat_id"] != int64(100) {
		t.Errorf("chat_id = %v", api.requests[0].Params["chat_id"])
	}
	if api.requests[0].Params["reply_to_message_id"] != int64(10) {
		t.Errorf("reply id = %v", api.requests[0].Params["reply_to_message_id"])
	}
}

func TestDispatcher_CommandArgs(t *testing.T) {
	api := &captureAPI{}
	d := NewDispatcher(api)

	var gotArgs *string
	d.OnCommand("start", "", func(_ context.Context, _ *telegram.Update, args *string) (any, error) {
		gotArgs = args
		return nil, nil
	})

	d.ProcessUpdate(context.Background(), textUpdate("/start extra args"))

	if gotArgs == nil || *gotArgs != "extra args" {
		t.Errorf("args = %v, want %q", gotArgs, "extra args")
	}
}

func TestDispatcher_RegistrationOrderAndIsolation(t *testing.T) {
	api := &captureAPI{}
	d := NewDispatcher(api)

	d.OnMessage(func(_ context.Context, _ *telegram.Update, _ *telegram.Message) (any, error) {
		return "first", nil
	}, "text")
	d.OnMessage(func(_ context.Context, _ *telegram.Update, _ *telegram.Message) (any, error) {
		return nil, errors.New("boom")
	}, "text")
	d.OnMessage(func(_ context.Context, _ *telegram.Update, _ *telegram.Message) (any, error) {
		return "third", nil
	}, "text")

	d.ProcessUpdate(context.Background(), textUpdate("hello"))

	got := api.texts()
	if len(got) != 2 || got[0] != "first" || got[1] != "third" {
		t.Errorf("expected first and third to send in order, got %v", got)
	}
}

func TestDispatcher_AbortShortCircuits(t *testing.T) {
	api := &captureAPI{}
	d := NewDispatcher(api)

	d.OnMessage(func(_ context.Context, _ *telegram.Update, _ *telegram.Message) (any, error) {
		return nil, Abort("done here")
	}, "text")
	reached := false
	d.OnMessage(func(_ context.Context, _ *telegram.Update, _ *telegram.Message) (any, error) {
		reached = true
		return "never", nil
	}, "text")

	d.ProcessUpdate(context.Background(), textUpdate("hello"))

	if reached {
		t.Error("filters after abort must not run")
	}
	if got := api.texts(); len(got) != 1 || got[0] != "done here" {
		t.Errorf("substitute value must still be sent, got %v", got)
	}
}

func TestDispatcher_AbortWithoutValue(t *testing.T) {
	api := &captureAPI{}
	d := NewDispatcher(api)

	d.OnMessage(func(_ context.Context, _ *telegram.Update, _ *telegram.Message) (any, error) {
		return nil, Abort(nil)
	}, "text")

	d.ProcessUpdate(context.Background(), textUpdate("hello"))

	if len(api.requests) != 0 {
		t.Errorf("abort without value must send nothing, got %d", len(api.requests))
	}
}

func TestDispatcher_ResultCoercion(t *testing.T) {
	api := &captureAPI{}
	d := NewDispatcher(api)

	sticker := messages.NewSticker(messages.FileRef{FileID: "s1"})
	d.OnMessage(func(_ context.Context, _ *telegram.Update, _ *telegram.Message) (any, error) {
		return []any{"one", sticker, "two"}, nil
	}, "text")
	d.OnMessage(func(_ context.Context, _ *telegram.Update, _ *telegram.Message) (any, error) {
		return false, nil
	}, "text")
	d.OnMessage(func(_ context.Context, _ *telegram.Update, _ *telegram.Message) (any, error) {
		return 12345, nil // unexpected type, dropped
	}, "text")

	d.ProcessUpdate(context.Background(), textUpdate("hello"))

	if len(api.requests) != 3 {
		t.Fatalf("expected 3 sends, got %d", len(api.requests))
	}
	if api.requests[0].Params["text"] != "one" ||
		api.requests[1].Method != "sendSticker" ||
		api.requests[2].Params["text"] != "two" {
		t.Errorf("coerced batch out of order: %+v", api.requests)
	}
}

func TestDispatcher_RemoveFilter(t *testing.T) {
	api := &captureAPI{}
	d := NewDispatcher(api)

	f := d.OnMessage(func(_ context.Context, _ *telegram.Update, _ *telegram.Message) (any, error) {
		return "still here", nil
	}, "text")
	d.Remove(f)

	d.ProcessUpdate(context.Background(), textUpdate("hello"))

	if len(api.requests) != 0 {
		t.Error("removed filter must not fire")
	}
}

func TestDispatcher_StartupHooksRunInOrder(t *testing.T) {
	d := NewDispatcher(&captureAPI{})

	var order []int
	d.RegisterStartup(func(_ context.Context) error {
		order = append(order, 1)
		return nil
	})
	d.RegisterStartup(func(_ context.Context) error {
		order = append(order, 2)
		return errors.New("hook failed")
	})
	d.RegisterStartup(func(_ context.Context) error {
		order = append(order, 3)
		return nil
	})

	d.Startup(context.Background())

	if len(order) != 3 || order[0] != 1 || order[2] != 3 {
		t.Errorf("hooks out of order or skipped: %v", order)
	}
}

func TestDeriveTarget_Priority(t *testing.T) {
	u := &telegram.Update{
		ChannelPost: &telegram.Message{MessageID: 5, Chat: &telegram.Chat{ID: 50}},
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb",
			From: &telegram.User{ID: 7},
		},
	}
	target := DeriveTarget(u)
	if target.ChatID.Param() != int64(50) || target.ReplyTo != 5 {
		t.Errorf("channel post must win over callback query: %+v", target)
	}

	cb := &telegram.Update{CallbackQuery: &telegram.CallbackQuery{
		ID:   "cb",
		From: &telegram.User{ID: 7},
	}}
	target = DeriveTarget(cb)
	if target.ChatID.Param() != int64(7) || target.ReplyTo != 0 {
		t.Errorf("bare callback query targets the sender: %+v", target)
	}

	iq := &telegram.Update{InlineQuery: &telegram.InlineQuery{ID: "q", From: &telegram.User{ID: 9}}}
	target = DeriveTarget(iq)
	if target.ChatID.Param() != int64(9) {
		t.Errorf("inline query targets the sender: %+v", target)
	}
}
