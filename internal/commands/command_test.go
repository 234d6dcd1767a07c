package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent @18:30", TypeAdd},
		{"done 2 paid online", TypeDone},
		{"reopen", TypeReopen},
		{"delete #3", TypeDelete},
		{"repeat weekdays", TypeRepeat},
		{"show 2024-03-08", TypeShow},
		{"/prev", TypePrev},
		{"next", TypeNext},
		{"TODAY", TypeToday},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseArguments(t *testing.T) {
	cmd, err := Parse("/add pay rent @18:30")
	if err != nil {
		t.Fatalf("parse add: %v", err)
	}
	if cmd.Add.Name != "pay rent" || cmd.Add.At != "18:30" {
		t.Fatalf("unexpected add args: %+v", cmd.Add)
	}

	cmd, err = Parse("done 2 paid online")
	if err != nil {
		t.Fatalf("parse done: %v", err)
	}
	if cmd.Status.Target != "2" || cmd.Status.Comment != "paid online" || Target(cmd.Status.Target) != 2 {
		t.Fatalf("unexpected done args: %+v", cmd.Status)
	}

	cmd, err = Parse("done paid online")
	if err != nil {
		t.Fatalf("parse done without target: %v", err)
	}
	if cmd.Status.Target != TargetSelected || Target(cmd.Status.Target) != 0 || cmd.Status.Comment != "paid online" {
		t.Fatalf("unexpected done args: %+v", cmd.Status)
	}

	cmd, err = Parse("repeat #4 Every-2-Weeks")
	if err != nil {
		t.Fatalf("parse repeat: %v", err)
	}
	if cmd.Repeat.Target != "#4" || cmd.Repeat.Rule != "every-2-weeks" {
		t.Fatalf("unexpected repeat args: %+v", cmd.Repeat)
	}
}

func TestParseRejectsBadArguments(t *testing.T) {
	for _, in := range []string{"add", "add lunch @25:00", "repeat", "repeat 2 daily extra", "show", "delete 2 3", "prev 1"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if _, err := Parse("  / "); !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
		t.Fatalf("expected empty input error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Name != "write docs" || a.At != "" {
				t.Fatalf("unexpected args: %+v", a)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}

	cmd, _ = Parse("next")
	res, err = Execute(cmd, Handlers{Next: func() (Result, error) { return Result{Message: "moved"}, nil }})
	if err != nil || res.Message != "moved" {
		t.Fatalf("navigation dispatch failed: %+v %v", res, err)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("show today")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
