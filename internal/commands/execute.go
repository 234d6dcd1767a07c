package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add    func(AddArgs) (Result, error)
	Done   func(StatusArgs) (Result, error)
	Reopen func(StatusArgs) (Result, error)
	Delete func(DeleteArgs) (Result, error)
	Repeat func(RepeatArgs) (Result, error)
	Show   func(ShowArgs) (Result, error)
	Prev   func() (Result, error)
	Next   func() (Result, error)
	Today  func() (Result, error)
}

func missing(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing("add")
		}
		return handlers.Add(*cmd.Add)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing("done")
		}
		return handlers.Done(*cmd.Status)
	case TypeReopen:
		if handlers.Reopen == nil {
			return Result{}, missing("reopen")
		}
		return handlers.Reopen(*cmd.Status)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing("delete")
		}
		return handlers.Delete(*cmd.Delete)
	case TypeRepeat:
		if handlers.Repeat == nil {
			return Result{}, missing("repeat")
		}
		return handlers.Repeat(*cmd.Repeat)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing("show")
		}
		return handlers.Show(*cmd.Show)
	case TypePrev, TypeNext, TypeToday:
		h := map[Type]func() (Result, error){TypePrev: handlers.Prev, TypeNext: handlers.Next, TypeToday: handlers.Today}[cmd.Type]
		if h == nil {
			return Result{}, missing(string(cmd.Type))
		}
		return h()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
