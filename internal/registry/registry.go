// Package registry holds the client-side job and team collections. Every
// mutation is sent to the API first and committed locally only after the
// round-trip succeeds; each outcome is reported exactly once to the
// notifier.
package registry

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/notify"
)

// Option configures a registry.
type Option func(*options)

type options struct {
	location *time.Location
	logger   *logger.Logger
}

// WithLocation sets the timezone used to normalize dates.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{location: time.Local, logger: logger.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// action pairs an operation with its user-facing outcome messages.
type action struct {
	name    string
	success string
	failure string
}

var (
	actAddJob       = action{"add_job", "Job added", "Failed to add job"}
	actDeleteJob    = action{"delete_job", "Job deleted", "Failed to delete job"}
	actUpdateJob    = action{"update_job", "Job updated", "Failed to update job"}
	actAssignMember = action{"assign_member", "Team member assigned", "Failed to assign team member"}
	actUnassign     = action{"unassign_member", "Team member removed from job", "Failed to remove team member from job"}
	actToggleSched  = action{"toggle_schedule", "Job schedule updated", "Failed to update job schedule"}
	actAddTodo      = action{"add_todo", "Todo added", "Failed to add todo"}
	actToggleTodo   = action{"toggle_todo", "Todo status updated", "Failed to update todo status"}
	actDeleteTodo   = action{"delete_todo", "Todo deleted", "Failed to delete todo"}
	actAddMember    = action{"add_member", "Team member added", "Failed to add team member"}
	actDeleteMember = action{"delete_member", "Team member deleted", "Failed to delete team member"}
	actUpdateMember = action{"update_member", "Team member updated", "Failed to update team member"}
	actToggleAvail  = action{"toggle_availability", "Availability updated", "Failed to update availability"}
)

// reporter logs failures and forwards outcomes to the notifier.
type reporter struct {
	notifier notify.Notifier
	logger   *logger.Logger
}

func (r reporter) fail(a action, err error) error {
	r.logger.Errorw("Registry operation failed", "action", a.name, "error", err)
	r.notifier.Notify(a.failure, notify.SeverityError)
	return err
}

func (r reporter) succeed(a action) {
	r.logger.Debugw("Registry operation succeeded", "action", a.name)
	r.notifier.Notify(a.success, notify.SeveritySuccess)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validate runs struct validation and reports the first problem as a
// ValidationError.
func validate(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := "is invalid"
		switch fe.Tag() {
		case "required":
			reason = "is required"
		case "oneof":
			reason = "must be one of: " + fe.Param()
		case "email":
			reason = "must be an email address"
		case "hexcolor":
			reason = "must be a hex color"
		}
		return &entities.ValidationError{Field: fe.Field(), Reason: reason}
	}
	return &entities.ValidationError{Reason: err.Error()}
}

func normalizeDay(day entities.DateKey, field string, loc *time.Location) (entities.DateKey, error) {
	k, err := entities.ParseDateKey(string(day), loc)
	if err != nil {
		return "", &entities.ValidationError{Field: field, Reason: "must be a YYYY-MM-DD date"}
	}
	return k, nil
}
