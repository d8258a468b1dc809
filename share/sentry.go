package share

import (
	"net/http"
	"strconv"

	"cast_check/analysis"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// InitSentry installs the sentry client. An empty dsn keeps sentry disabled.
func InitSentry(dsn string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(
		sentry.ClientOptions{
			Dsn:           dsn,
			HTTPTransport: new(http.Transport),
		},
	)
}

// CaptureFailures reports every per-ability failure of r.
func CaptureFailures(r *analysis.Report) {
	if r == nil {
		return
	}

	for _, f := range r.Failures {
		logrus.Errorf("ability %d (%s): %+v", f.AbilityID, f.Name, f.Err)

		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("ability_id", strconv.Itoa(f.AbilityID))
			scope.SetTag("ability_name", f.Name)
			sentry.CaptureException(f.Err)
		})
	}
}
