package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeReopen Type = "reopen"
	TypeDelete Type = "delete"
	TypeRepeat Type = "repeat"
	TypeShow   Type = "show"
	TypePrev   Type = "prev"
	TypeNext   Type = "next"
	TypeToday  Type = "today"
)

// TargetSelected addresses the highlighted task.
const TargetSelected = "selected"

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Name string
	// At is an optional HH:MM due time; empty means end of day.
	At string
}

// StatusArgs serves done and reopen.
type StatusArgs struct {
	Target  string
	Comment string
}

type DeleteArgs struct {
	Target string
}

type RepeatArgs struct {
	Target string
	Rule   string
}

type ShowArgs struct {
	Day string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Status *StatusArgs
	Delete *DeleteArgs
	Repeat *RepeatArgs
	Show   *ShowArgs
}

// Target returns the 1-based list position named by target, or 0 for the
// selected task.
func Target(target string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(target, "#"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone, TypeReopen:
		return parseStatus(input, Type(head), args)
	case TypeDelete:
		return parseDelete(input, args)
	case TypeRepeat:
		return parseRepeat(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypePrev, TypeNext, TypeToday:
		if len(args) > 0 {
			return Command{}, invalid("%s takes no arguments", head)
		}
		return Command{Type: Type(head), Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	out := AddArgs{}
	if n := len(args); n > 0 && strings.HasPrefix(args[n-1], "@") {
		at := strings.TrimPrefix(args[n-1], "@")
		if _, err := time.Parse("15:04", at); err != nil {
			return Command{}, invalid("add time must be HH:MM, got %q", at)
		}
		out.At = at
		args = args[:n-1]
	}
	out.Name = strings.TrimSpace(strings.Join(args, " "))
	if out.Name == "" {
		return Command{}, invalid("add requires a name")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func splitTarget(args []string) (string, []string) {
	if len(args) > 0 && Target(args[0]) > 0 {
		return args[0], args[1:]
	}
	return TargetSelected, args
}

func parseStatus(raw string, kind Type, args []string) (Command, error) {
	target, rest := splitTarget(args)
	return Command{Type: kind, Raw: raw, Status: &StatusArgs{Target: target, Comment: strings.Join(rest, " ")}}, nil
}

func parseDelete(raw string, args []string) (Command, error) {
	target, rest := splitTarget(args)
	if len(rest) > 0 {
		return Command{}, invalid("delete takes at most a task number")
	}
	return Command{Type: TypeDelete, Raw: raw, Delete: &DeleteArgs{Target: target}}, nil
}

func parseRepeat(raw string, args []string) (Command, error) {
	target, rest := splitTarget(args)
	if len(rest) != 1 {
		return Command{}, invalid("repeat requires a rule, e.g. daily, weekdays, every-2-weeks or no-repeat")
	}
	return Command{Type: TypeRepeat, Raw: raw, Repeat: &RepeatArgs{Target: target, Rule: strings.ToLower(rest[0])}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("show requires a day: today, yesterday, tomorrow or YYYY-MM-DD")
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Day: strings.ToLower(args[0])}}, nil
}
