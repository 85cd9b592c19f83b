package selectz

import (
	"context"
	"errors"
	"fmt"
)

// WidgetFactory builds the widget for a host component, typically by
// initializing a dropdown library on the component's DOM node.
type WidgetFactory func() (Widget, error)

// Binding wires a Controller into a host UI component's lifecycle. Hosts call
// Created when the component is created, Rendered on every re-render, and
// Destroyed when it is torn down.
type Binding struct {
	ctx        context.Context
	controller *Controller
	source     Source
	factory    WidgetFactory
	widget     Widget
}

// NewBinding creates a Binding.
func NewBinding(ctx context.Context, controller *Controller, source Source, factory WidgetFactory) *Binding {
	return &Binding{
		ctx:        ctx,
		controller: controller,
		source:     source,
		factory:    factory,
	}
}

// Created builds the widget and attaches the controller to it.
func (b *Binding) Created(initialSelection ...string) error {
	if b.widget != nil {
		return ErrAlreadyAttached
	}
	w, err := b.factory()
	if err != nil {
		return fmt.Errorf("failed to create widget: %w", err)
	}
	b.widget = w
	return b.controller.Attach(b.ctx, b.source, w, initialSelection...)
}

// Rendered asks the controller to reconcile against the source's current value.
func (b *Binding) Rendered() {
	b.controller.OnSourceChanged()
}

// Destroyed detaches the controller and destroys the widget. It is safe to
// call more than once.
func (b *Binding) Destroyed() error {
	b.controller.Detach()
	if b.widget == nil {
		return nil
	}
	w := b.widget
	b.widget = nil
	if err := w.Destroy(); err != nil && !errors.Is(err, ErrWidgetUnavailable) {
		return fmt.Errorf("failed to destroy widget: %w", err)
	}
	return nil
}

// Widget returns the widget built by Created, or nil.
func (b *Binding) Widget() Widget {
	return b.widget
}
