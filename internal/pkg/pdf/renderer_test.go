package pdf

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewChromeRenderer_DefaultTimeout(t *testing.T) {
	r := NewChromeRenderer(Options{})
	if r.opts.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", r.opts.Timeout)
	}
}

func TestRender_AfterClose(t *testing.T) {
	r := NewChromeRenderer(Options{Timeout: time.Second})
	r.Close()

	if _, err := r.Render(context.Background(), "<html></html>", PaperA4); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("expected ErrRendererClosed, got %v", err)
	}
}

func TestPaperSizes(t *testing.T) {
	if PaperIDCard.WidthIn <= PaperIDCard.HeightIn {
		t.Errorf("id card should be landscape: %+v", PaperIDCard)
	}
	if PaperA4.HeightIn <= PaperA4.WidthIn {
		t.Errorf("A4 should be portrait: %+v", PaperA4)
	}
}

type fakeBrowser struct {
	launches     int
	allocCancels int
	cancels      []context.CancelFunc
}

func (f *fakeBrowser) launch(Options) (context.Context, context.CancelFunc, context.CancelFunc, error) {
	f.launches++
	ctx, cancel := context.WithCancel(context.Background())
	f.cancels = append(f.cancels, cancel)
	return ctx, cancel, func() { f.allocCancels++ }, nil
}

func TestBrowser_RelaunchesAfterCrash(t *testing.T) {
	fake := &fakeBrowser{}
	r := NewChromeRenderer(Options{Timeout: time.Second})
	r.launch = fake.launch

	first, err := r.browser()
	if err != nil {
		t.Fatalf("browser: %v", err)
	}
	again, err := r.browser()
	if err != nil || again != first || fake.launches != 1 {
		t.Fatalf("live browser should be reused: launches=%d err=%v", fake.launches, err)
	}

	// chromedp cancels the browser context when the process dies
	fake.cancels[0]()

	second, err := r.browser()
	if err != nil {
		t.Fatalf("browser after crash: %v", err)
	}
	if second == first || second.Err() != nil {
		t.Errorf("expected a fresh browser context")
	}
	if fake.launches != 2 {
		t.Errorf("launches = %d, want 2", fake.launches)
	}
	if fake.allocCancels != 1 {
		t.Errorf("old allocator cancels = %d, want 1", fake.allocCancels)
	}
}

func TestBrowser_LaunchFailure(t *testing.T) {
	r := NewChromeRenderer(Options{})
	r.launch = func(Options) (context.Context, context.CancelFunc, context.CancelFunc, error) {
		return nil, nil, nil, errors.New("no chrome")
	}
	if _, err := r.browser(); err == nil {
		t.Fatal("expected launch error")
	}
	if r.browserCtx != nil {
		t.Errorf("failed launch must not cache a context")
	}
}

func TestClose_CancelsBrowser(t *testing.T) {
	fake := &fakeBrowser{}
	r := NewChromeRenderer(Options{})
	r.launch = fake.launch

	ctx, err := r.browser()
	if err != nil {
		t.Fatalf("browser: %v", err)
	}
	r.Close()
	if ctx.Err() == nil || fake.allocCancels != 1 {
		t.Errorf("Close should cancel browser and allocator")
	}
}
