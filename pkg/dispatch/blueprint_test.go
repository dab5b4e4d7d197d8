package dispatch

import (
	"context"
	"testing"

	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

func TestBlueprint_DeferredRegistrationReplays(t *testing.T) {
	bp := NewBlueprint("admin")

	called := false
	bp.OnCommand("kick", "", func(_ context.Context, _ *telegram.Update, _ *string) (any, error) {
		called = true
		return nil, nil
	})

	startupRan := false
	bp.RegisterStartup(func(_ context.Context) error {
		startupRan = true
		return nil
	})

	api := &captureAPI{}
	d := NewDispatcher(api)
	bp.Attach(d)

	d.Startup(context.Background())
	d.ProcessUpdate(context.Background(), textUpdate("/kick"))

	if !called {
		t.Error("deferred filter not replayed onto dispatcher")
	}
	if !startupRan {
		t.Error("deferred startup hook not replayed")
	}
}

func TestBlueprint_PostAttachRegistersDirectly(t *testing.T) {
	bp := NewBlueprint("admin")
	api := &captureAPI{}
	d := NewDispatcher(api)
	bp.Attach(d)

	called := false
	bp.OnCommand("ban", "", func(_ context.Context, _ *telegram.Update, _ *string) (any, error) {
		called = true
		return nil, nil
	})

	d.ProcessUpdate(context.Background(), textUpdate("/ban"))

	if !called {
		t.Error("post-attach registration must reach the dispatcher")
	}
}
