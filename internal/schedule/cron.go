// Package schedule manages SageMaker monitoring schedules: creation,
// inspection, execution listing, and deletion.
package schedule

import (
	"fmt"
	"regexp"
	"strings"

	monerrors "github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/errors"
)

// Canned schedule expressions matching the managed SDK's generator.
const (
	CronHourly = "cron(0 * ? * * *)"
	CronDaily  = "cron(0 0 ? * * *)"
)

var cronFieldPattern = regexp.MustCompile(`^[0-9A-Za-z*?,\-/#LW]+$`)

// scheduleNamePattern matches valid SageMaker resource names.
var scheduleNamePattern = regexp.MustCompile(`^[a-zA-Z0-9](-*[a-zA-Z0-9]){0,62}$`)

// DailyAt returns a schedule expression firing daily at the given UTC hour.
func DailyAt(hour int) (string, error) {
	if hour < 0 || hour > 23 {
		return "", monerrors.NewScheduleError(monerrors.CodeInvalidCron,
			fmt.Sprintf("hour must be in [0,23], got %d", hour), nil)
	}
	return fmt.Sprintf("cron(0 %d ? * * *)", hour), nil
}

// ValidateCron checks a SageMaker cron expression: the cron(...) wrapper
// and six whitespace-separated fields (minutes hours day-of-month month
// day-of-week year). Field grammar is checked for charset only; the full
// semantics belong to the managed service.
func ValidateCron(expr string) error {
	if !strings.HasPrefix(expr, "cron(") || !strings.HasSuffix(expr, ")") {
		return monerrors.NewScheduleError(monerrors.CodeInvalidCron,
			fmt.Sprintf("expression %q must have the form cron(...)", expr), nil)
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(expr, "cron("), ")")
	fields := strings.Fields(inner)
	if len(fields) != 6 {
		return monerrors.NewScheduleError(monerrors.CodeInvalidCron,
			fmt.Sprintf("expression %q has %d fields, want 6", expr, len(fields)), nil)
	}

	for i, f := range fields {
		if !cronFieldPattern.MatchString(f) {
			return monerrors.NewScheduleError(monerrors.CodeInvalidCron,
				fmt.Sprintf("expression %q field %d (%q) has invalid characters", expr, i+1, f), nil)
		}
	}

	// Day-of-month and day-of-week cannot both be concrete.
	if fields[2] != "?" && fields[4] != "?" {
		return monerrors.NewScheduleError(monerrors.CodeInvalidCron,
			fmt.Sprintf("expression %q: one of day-of-month and day-of-week must be ?", expr), nil)
	}

	return nil
}

// ValidateName checks a monitoring schedule name against the SageMaker
// resource name rules: alphanumerics and hyphens, 1-63 characters, no
// leading or trailing hyphen.
func ValidateName(name string) error {
	if !scheduleNamePattern.MatchString(name) {
		return monerrors.NewScheduleError(monerrors.CodeInvalidName,
			fmt.Sprintf("schedule name %q must be 1-63 alphanumerics or hyphens and start/end with an alphanumeric", name), nil)
	}
	return nil
}
