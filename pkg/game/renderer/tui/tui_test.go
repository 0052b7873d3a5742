package tui

import (
	"bytes"
	"strings"
	"testing"

	"rando/pkg/engine/terminal"
	"rando/pkg/game/renderer"
)

func TestFormatText_Plain(t *testing.T) {
	r := New(&bytes.Buffer{}, false)
	r.Init()

	tests := []struct {
		msg  string
		args []any
		want string
	}{
		{msg: "PICKUP{%s} at LOC{%s}", args: []any{"Bomb", "Main/Hall/L1"}, want: "Bomb at Main/Hall/L1"},
		{msg: "GT{Seed} %d", args: []any{7}, want: "Seed 7"},
		{msg: "OK{done}, DENIED{stuck}", want: "done, stuck"},
		{msg: "unknown{kept}", want: "unknown{kept}"},
	}
	for _, tt := range tests {
		if got := r.FormatText(tt.msg, tt.args...); got != tt.want {
			t.Errorf("FormatText(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
	if got := r.StyleText("x", renderer.StyleHeading); got != "x" {
		t.Errorf("StyleText = %q, want plain text when not interactive", got)
	}
}

func TestShowStatus(t *testing.T) {
	t.Run("interactive", func(t *testing.T) {
		var buf bytes.Buffer
		r := New(&buf, true)
		r.Init()
		r.ShowStatus("abc")
		r.ShowStatus("x")
		r.ShowMessage("done")
		if got, want := buf.String(), "\rabc\rx  \ndone\n"; got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
	})
	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		r := New(&buf, false)
		r.Init()
		r.ShowStatus("abc")
		r.ShowStatus("x")
		r.EndStatus()
		if got, want := buf.String(), "abc\nx\n"; got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
	})
	t.Run("truncated to the writer width", func(t *testing.T) {
		var buf bytes.Buffer
		r := New(&buf, true)
		r.Init()
		r.ShowStatus(strings.Repeat("y", 2*terminal.DefaultWidth))
		want := "\r" + strings.Repeat("y", terminal.DefaultWidth-1)
		if got := buf.String(); got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
	})
}
