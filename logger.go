package tinyx

import (
	"context"
	"log/slog"
)

// Logger logs every commit to l: the transaction name, the commit path, the
// payload when there is one, and the diffs. Commits that changed nothing are
// logged at debug level, failures at error level.
func Logger(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}
	return CommitMiddleware(func(next CommitFunc) CommitFunc {
		return func(t *Transaction, payload any, path ...any) (Changes, error) {
			changes, err := next(t, payload, path...)
			attrs := []slog.Attr{slog.String("tx", t.String())}
			if len(path) > 0 {
				attrs = append(attrs, slog.String("path", Path(path).String()))
			}
			if payload != nil {
				attrs = append(attrs, slog.Any("payload", ToNative(payload)))
			}
			level := slog.LevelInfo
			switch {
			case err != nil:
				level = slog.LevelError
				attrs = append(attrs, slog.Any("err", err))
			case len(changes) == 0:
				level = slog.LevelDebug
			}
			attrs = append(attrs, slog.Int("changes", len(changes)))
			if l.Enabled(context.Background(), slog.LevelDebug) {
				diffs := make([]string, len(changes))
				for i, d := range changes {
					diffs[i] = d.String()
				}
				attrs = append(attrs, slog.Any("diffs", diffs))
			}
			l.LogAttrs(context.Background(), level, "commit", attrs...)
			return changes, err
		}
	})
}
