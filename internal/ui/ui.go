package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ANSI colors used for messages and badges.
const (
	colorRed    = "1"
	colorGreen  = "2"
	colorYellow = "3"
	colorBlue   = "4"
)

type UI struct {
	Out          io.Writer
	Err          io.Writer
	Output       *termenv.Output
	ErrOutput    *termenv.Output
	ColorEnabled bool
}

func New(out io.Writer, err io.Writer, mode ColorMode, disableColor bool) *UI {
	output := termenv.NewOutput(out)
	errOutput := termenv.NewOutput(err)

	return &UI{
		Out:          out,
		Err:          err,
		Output:       output,
		ErrOutput:    errOutput,
		ColorEnabled: shouldEnableColor(output, mode, disableColor),
	}
}

func shouldEnableColor(output *termenv.Output, mode ColorMode, disableColor bool) bool {
	if disableColor {
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return output.ColorProfile() != termenv.Ascii
	}
}

func (u *UI) Errorf(format string, args ...any) {
	u.println(u.Err, u.ErrOutput, colorRed, format, args...)
}

func (u *UI) Warnf(format string, args ...any) {
	u.println(u.Err, u.ErrOutput, colorYellow, format, args...)
}

func (u *UI) Infof(format string, args ...any) {
	u.println(u.Out, u.Output, colorBlue, format, args...)
}

func (u *UI) Successf(format string, args ...any) {
	u.println(u.Out, u.Output, colorGreen, format, args...)
}

func (u *UI) println(w io.Writer, output *termenv.Output, color string, format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintln(w, u.paint(output, msg, color))
}

// Badge colors text red when alarming and green otherwise, for stderr.
func (u *UI) Badge(alarming bool, text string) string {
	color := colorGreen
	if alarming {
		color = colorRed
	}
	return u.paint(u.ErrOutput, text, color)
}

func (u *UI) paint(output *termenv.Output, text string, color string) string {
	if !u.ColorEnabled || output == nil {
		return text
	}
	return output.String(text).Foreground(output.Color(color)).String()
}

func NormalizeColorMode(value string) ColorMode {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case string(ColorAlways):
		return ColorAlways
	case string(ColorNever):
		return ColorNever
	default:
		return ColorAuto
	}
}
