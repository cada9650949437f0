package plugin

// OnPanic sets the callback run on low memory, normally all-notes-off
func (b *Base) OnPanic(fn func()) {
	b.onPanic = fn
}

// OnBackgroundFunc sets a callback for when the host goes to the background
func (b *Base) OnBackgroundFunc(fn func()) {
	b.onBackground = fn
}

// OnForegroundFunc sets a callback for when the host returns
func (b *Base) OnForegroundFunc(fn func()) {
	b.onForeground = fn
}

// OnBackground implements the Plugin hook. Default no-op.
func (b *Base) OnBackground() {
	if b.onBackground != nil {
		b.onBackground()
	}
}

// OnForeground implements the Plugin hook. Default no-op.
func (b *Base) OnForeground() {
	if b.onForeground != nil {
		b.onForeground()
	}
}

// OnLowMemory implements the Plugin hook by running the panic callback
func (b *Base) OnLowMemory() {
	if b.onPanic != nil {
		b.onPanic()
	}
}
