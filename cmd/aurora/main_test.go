package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sabinadams/aurora/cmd/aurora/commands"
	"github.com/sabinadams/aurora/pkg/engine"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: exitOK},
		{
			name: "no input",
			err:  engine.NewInformationalError(engine.ErrCodeNoInputFragments, "no schema fragments matched"),
			want: exitOK,
		},
		{name: "drift", err: fmt.Errorf("%w: schema.prisma", commands.ErrDrift), want: exitDrift},
		{
			name: "conflict",
			err:  engine.NewConflictError(engine.ErrCodeGeneratorConflict, "failed to consolidate fragments", nil).WithPath("b.prisma"),
			want: exitFailed,
		},
		{
			name: "invalid fragment",
			err:  engine.NewPermanentError(engine.ErrCodeFragmentInvalid, "failed to load schema fragment", errors.New("a.prisma:3:1: unexpected '}'")),
			want: exitFailed,
		},
		{name: "usage", err: errors.New(`unknown flag: --outptu`), want: exitFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
