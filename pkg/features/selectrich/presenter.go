package selectrich

import "context"

// Presenter shows and hides the listbox overlay. Show returns once the
// overlay has settled or ctx is done.
type Presenter interface {
	Show(ctx context.Context) error
	Hide(ctx context.Context) error
}

// PresenterFuncs adapts a pair of functions to Presenter. Nil functions
// settle immediately.
type PresenterFuncs struct {
	ShowFunc func(ctx context.Context) error
	HideFunc func(ctx context.Context) error
}

// Show calls ShowFunc.
func (p PresenterFuncs) Show(ctx context.Context) error {
	if p.ShowFunc == nil {
		return nil
	}
	return p.ShowFunc(ctx)
}

// Hide calls HideFunc.
func (p PresenterFuncs) Hide(ctx context.Context) error {
	if p.HideFunc == nil {
		return nil
	}
	return p.HideFunc(ctx)
}
