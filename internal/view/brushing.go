package view

import (
	"context"

	"github.com/listenupapp/moviescope/internal/brush"
	"github.com/listenupapp/moviescope/internal/errors"
)

// Brush narrows one axis of a scatter view to the domain under a pixel
// interval and redraws it. A linked focus view follows the new window.
func (c *Coordinator) Brush(ctx context.Context, axis brush.Axis, px brush.Range) error {
	return c.applyBrush(ctx, func(b *brush.Controller) error {
		_, err := b.Brush(axis, px)
		return err
	})
}

// Brush2D narrows both axes of a scatter view at once.
func (c *Coordinator) Brush2D(ctx context.Context, xPx, yPx brush.Range) error {
	return c.applyBrush(ctx, func(b *brush.Controller) error {
		b.Brush2D(xPx, yPx)
		return nil
	})
}

// ClearBrush returns a scatter view to its full domain.
func (c *Coordinator) ClearBrush(ctx context.Context) error {
	return c.applyBrush(ctx, func(b *brush.Controller) error {
		b.Clear()
		return nil
	})
}

func (c *Coordinator) applyBrush(ctx context.Context, fn func(*brush.Controller) error) error {
	if c.brush == nil {
		return errors.Validationf("view %s cannot be brushed", c.cfg.ID)
	}

	c.mu.Lock()
	if err := fn(c.brush); err != nil {
		c.mu.Unlock()
		return err
	}
	frame := c.buildFrameLocked(CauseBrush)
	focus := c.focus
	c.mu.Unlock()

	err := c.render(ctx, frame)
	if focus != nil {
		err = errors.Join(err, focus.follow(ctx, c.brush.State(), c.brush.Window()))
	}
	return err
}

// follow makes a focus view show the window of its context view.
func (c *Coordinator) follow(ctx context.Context, state brush.State, w brush.Window) error {
	c.mu.Lock()
	if state == brush.Unbrushed {
		c.brush.Clear()
	} else {
		c.brush.Set(w)
	}
	frame := c.buildFrameLocked(CauseBrush)
	c.mu.Unlock()

	return c.render(ctx, frame)
}

// setFocus links c as the context view of focus.
func (c *Coordinator) setFocus(focus *Coordinator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus = focus
}

// Focus returns the id of the view this view's brush drives.
func (c *Coordinator) Focus() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.focus == nil {
		return "", false
	}
	return c.focus.cfg.ID, true
}
