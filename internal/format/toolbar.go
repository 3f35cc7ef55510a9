package format

// Toolbar helpers. Each computes the value from CurrentFormat and applies it
// to the active selection, the way the editor's buttons do.

func (m *Model) ToggleBold() error {
	return m.ApplyFormat(m.sel, PropBold, !m.current.Bold)
}

func (m *Model) ToggleItalic() error {
	return m.ApplyFormat(m.sel, PropItalic, !m.current.Italic)
}

func (m *Model) ToggleUnderline() error {
	return m.ApplyFormat(m.sel, PropUnderline, !m.current.Underline)
}

func (m *Model) SetHeading(h Heading) error {
	return m.ApplyFormat(m.sel, PropHeading, h)
}

func (m *Model) SetAlignment(a Alignment) error {
	return m.ApplyFormat(m.sel, PropAlignment, a)
}

func (m *Model) IncreaseFontSize() error {
	size := min(m.current.FontSize+m.opts.FontSizeStep, m.opts.MaxFontSize)
	return m.ApplyFormat(m.sel, PropFontSize, size)
}

func (m *Model) DecreaseFontSize() error {
	size := max(m.current.FontSize-m.opts.FontSizeStep, m.opts.MinFontSize)
	return m.ApplyFormat(m.sel, PropFontSize, size)
}

// ToggleTextColor switches between unset and the configured text color.
func (m *Model) ToggleTextColor() error {
	c := m.opts.TextColor
	if m.current.TextColor != "" {
		c = ""
	}
	return m.ApplyFormat(m.sel, PropTextColor, c)
}

// ToggleBackgroundColor switches between unset and the configured highlight.
func (m *Model) ToggleBackgroundColor() error {
	c := m.opts.BackgroundColor
	if m.current.BackgroundColor != "" {
		c = ""
	}
	return m.ApplyFormat(m.sel, PropBackgroundColor, c)
}
