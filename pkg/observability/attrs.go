package observability

import (
	"log/slog"

	"github.com/aretw0/docflows/pkg/domain"
)

func Workflow[T ~string](name T) slog.Attr {
	return slog.String("workflow", string(name))
}

func Entity[T ~string](label T) slog.Attr {
	return slog.String("entity", string(label))
}

func Transition[T ~string](name T) slog.Attr {
	return slog.String("transition", string(name))
}

func Actor[T ~string](name T) slog.Attr {
	return slog.String("actor", string(name))
}

func Event[T ~string](kind T) slog.Attr {
	return slog.String("evt", string(kind))
}

// State logs the state title, which is what people read.
func State(key string, s domain.State) slog.Attr {
	return slog.String(key, s.Title)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
