package logsvc

import (
	"fmt"
	"log"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

// RollbarLogger reports to Rollbar and mirrors every entry to a standard logger.
// A user.User among the args becomes the Rollbar person of the report.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.Debug)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// personExtras is attached to the report of a user's request.
func personExtras(usr user.User) map[string]interface{} {
	return map[string]interface{}{
		"user_role":   usr.Role,
		"user_active": usr.IsActive,
	}
}

// splitArgs separates the reported user from the other args.
// Only the first user counts, a report has a single person.
func splitArgs(args []interface{}) (*user.User, []interface{}) {
	var usr *user.User
	rest := make([]interface{}, 0, len(args))
	for _, arg := range args {
		u, ok := arg.(user.User)
		if !ok {
			rest = append(rest, arg)
			continue
		}
		if usr == nil {
			usr = &u
		}
	}
	return usr, rest
}

// expected fmt: msg | error, map[string]interface{}, *http.Request, user.User
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	usr, rest := splitArgs(args)
	newArgs := make([]interface{}, 0, len(rest)+2)
	newArgs = append(newArgs, msg)
	if usr == nil {
		rollbar.ClearPerson()
		return append(newArgs, rest...)
	}

	rollbar.SetPerson(usr.ID, usr.FullName, usr.Email)
	var merged bool
	for _, arg := range rest {
		if extras, ok := arg.(map[string]interface{}); ok && !merged {
			combined := personExtras(*usr)
			for k, v := range extras {
				combined[k] = v
			}
			arg, merged = combined, true
		}
		newArgs = append(newArgs, arg)
	}
	if !merged {
		newArgs = append(newArgs, personExtras(*usr))
	}
	return newArgs
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	usr, rest := splitArgs(args)
	line := fmt.Sprintf("%-5s %s", strings.ToUpper(level), msg)
	if usr != nil {
		line += fmt.Sprintf(" [user=%s role=%s]", usr.ID, usr.Role)
	}
	l.std.Println(line)
	for _, arg := range rest {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(rollbar.DEBUG, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(rollbar.INFO, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(rollbar.WARN, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(rollbar.ERR, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
